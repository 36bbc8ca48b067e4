package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
)

// Multipart выполняет POST с multipart/form-data телом (загрузка файла).
//
// Второе возвращаемое значение ambiguous == true означает, что тело было
// отправлено, но ответ потерян из-за сетевой ошибки: исход записи на бэкенде
// неизвестен. Политику обращения с такими исходами выбирает вызывающий.
func (c *Client) Multipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader, out any, opts ...Option) (res Result, ambiguous bool) {
	const op = "gateway.Multipart"

	o := requestOptions{fallback: "upload failed"}
	for _, apply := range opts {
		apply(&o)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			c.log.Error("failed to write form field", sl.Op(op), sl.Err(err))
			return Fail(o.fallback), false
		}
	}
	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		c.log.Error("failed to create form file", sl.Op(op), sl.Err(err))
		return Fail(o.fallback), false
	}
	if _, err := io.Copy(part, file); err != nil {
		c.log.Error("failed to read file", sl.Op(op), sl.Err(err))
		return Fail(o.fallback), false
	}
	if err := writer.Close(); err != nil {
		return Fail(o.fallback), false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return Fail(o.fallback), false
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)
	if o.correlationID != "" {
		req.Header.Set(CorrelationHeader, o.correlationID)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Fail(o.fallback), false
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Тело собрано и отправлено, ответа нет: бэкенд мог успеть записать файл.
		c.log.Warn("upload outcome unknown", sl.Op(op), slog.String("path", path), sl.Err(err))
		return Fail(o.fallback), true
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return Fail(c.extractError(resp, o.fallback)), false
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.log.Error("failed to decode response", sl.Op(op), sl.Err(err))
			return Fail(o.fallback), false
		}
	}
	return Success(), false
}
