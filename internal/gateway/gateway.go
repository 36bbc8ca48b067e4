package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/qc-admin/internal/config"
	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
)

// CorrelationHeader заголовок с корреляционным идентификатором запроса,
// который бэкенд использует для идемпотентных повторов и трассировки.
const CorrelationHeader = "X-Request-ID"

// Client авторизованный HTTP-клиент бэкенда.
//
// Токен общий для всех запросов клиента и меняется через SetToken
// при входе, выходе и обнаружении истечения срока действия.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	downloadClient *http.Client
	limiter        *rate.Limiter
	log            *slog.Logger

	mu    sync.RWMutex
	token string
}

// New создаёт Client поверх базового URL бэкенда.
// При RequestsPerSecond > 0 исходящие запросы ограничиваются по частоте.
func New(baseURL string, cfg config.HTTPClient, log *slog.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		downloadClient: &http.Client{Timeout: cfg.DownloadTimeout},
		limiter:        limiter,
		log:            log,
	}
}

// SetToken обновляет bearer-токен для всех последующих запросов.
// Пустая строка убирает заголовок Authorization полностью.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token возвращает текущий токен (пустая строка — токена нет).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// requestOptions настройки одного запроса.
type requestOptions struct {
	fallback      string
	correlationID string
}

// Option настраивает один запрос шлюза.
type Option func(*requestOptions)

// WithFallback задаёт запасной текст ошибки операции,
// используемый когда бэкенд не прислал своего сообщения.
func WithFallback(msg string) Option {
	return func(o *requestOptions) { o.fallback = msg }
}

// WithCorrelationID добавляет к запросу заголовок X-Request-ID.
func WithCorrelationID(id string) Option {
	return func(o *requestOptions) { o.correlationID = id }
}

// JSON выполняет запрос с JSON-телом и разбирает JSON-ответ в out (если out != nil).
//
// Любой сбой — сетевая ошибка, 4xx, 5xx, нечитаемое тело — превращается
// в Result с сообщением; наружу ошибки не пробрасываются.
func (c *Client) JSON(ctx context.Context, method, path string, body, out any, opts ...Option) Result {
	const op = "gateway.JSON"

	o := requestOptions{fallback: "request failed"}
	for _, apply := range opts {
		apply(&o)
	}

	req, err := c.newRequest(ctx, method, path, body, o)
	if err != nil {
		c.log.Error("failed to build request", sl.Op(op), sl.Err(err))
		return Fail(o.fallback)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Fail(o.fallback)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed", sl.Op(op), slog.String("path", path), sl.Err(err))
		return Fail(o.fallback)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return Fail(c.extractError(resp, o.fallback))
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.log.Error("failed to decode response", sl.Op(op), slog.String("path", path), sl.Err(err))
			return Fail(o.fallback)
		}
	}
	return Success()
}

// newRequest собирает запрос с JSON-телом и служебными заголовками.
func (c *Client) newRequest(ctx context.Context, method, path string, body any, o requestOptions) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	if o.correlationID != "" {
		req.Header.Set(CorrelationHeader, o.correlationID)
	}
	return req, nil
}

// authorize подставляет текущий bearer-токен, если он задан.
func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// extractError достаёт наиболее специфичное сообщение из ответа с ошибкой.
func (c *Client) extractError(resp *http.Response, fallback string) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var body errorBody
		if jsonErr := json.Unmarshal(raw, &body); jsonErr == nil {
			if msg := body.message(); msg != "" {
				return msg
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return http.StatusText(resp.StatusCode)
}
