// Package labelstudio реализует клиентскую часть интеграции с инструментом
// разметки Label Studio через бэкенд: проверку настроенного ключа,
// пробу соединения с опросом, создание проектов и импорт снимков.
//
// Создание проекта и импорт — долгие операции с побочными эффектами,
// поэтому они однополётные: на сервис допускается не больше одного
// незавершённого вызова. Повтор того же логического действия сначала
// отменяет предыдущий запрос, другое действие во время полёта игнорируется.
package labelstudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/qc-admin/internal/gateway"
	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
)

// ErrBusy другое однополётное действие ещё не завершилось;
// новый вызов игнорируется, а не ставится в очередь.
var ErrBusy = errors.New("another annotation operation is in flight")

// Gateway описывает контракт шлюза, нужный сервису.
type Gateway interface {
	JSON(ctx context.Context, method, path string, body, out any, opts ...gateway.Option) gateway.Result
}

// Project проект разметки, как его отдаёт бэкенд.
type Project struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// CreateProjectResult исход создания проекта.
// Existing == true означает, что проект с таким названием уже был
// и бэкенд вернул его вместо создания дубликата.
type CreateProjectResult struct {
	ProjectID int    `json:"project_id"`
	Title     string `json:"title"`
	Existing  bool   `json:"existing,omitempty"`
}

// ImportResult исход импорта снимков в проект.
type ImportResult struct {
	ProjectID int `json:"project_id"`
	Imported  int `json:"imported"`
}

// inflight описывает текущий однополётный вызов.
type inflight struct {
	key    string
	cancel context.CancelFunc
}

// Service клиент интеграции с инструментом разметки.
type Service struct {
	log *slog.Logger
	gw  Gateway

	mu      sync.Mutex
	current *inflight
}

// New создаёт Service поверх шлюза.
func New(log *slog.Logger, gw Gateway) *Service {
	return &Service{log: log, gw: gw}
}

// KeyStatus сообщает, настроен ли у пользователя ключ инструмента разметки.
// Сам ключ бэкенд не раскрывает.
func (s *Service) KeyStatus(ctx context.Context) (bool, error) {
	var resp struct {
		HasAPIKey bool `json:"has_api_key"`
	}
	res := s.gw.JSON(ctx, http.MethodGet, "/user/label-studio-api-key", nil, &resp,
		gateway.WithFallback("could not check annotation tool key"))
	if !res.OK {
		return false, errors.New(res.Err)
	}
	return resp.HasAPIKey, nil
}

// SetKey сохраняет ключ инструмента разметки для текущего пользователя.
func (s *Service) SetKey(ctx context.Context, key string) error {
	body := map[string]string{"api_key": key}
	res := s.gw.JSON(ctx, http.MethodPost, "/user/label-studio-api-key", body, nil,
		gateway.WithFallback("could not save annotation tool key"))
	if !res.OK {
		return errors.New(res.Err)
	}
	return nil
}

// connectionStatus форма ответа на пробу соединения.
type connectionStatus struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
}

// TestConnection проверяет доступность инструмента разметки через бэкенд.
func (s *Service) TestConnection(ctx context.Context) (bool, error) {
	var resp connectionStatus
	res := s.gw.JSON(ctx, http.MethodPost, "/label-studio/test-connection", nil, &resp,
		gateway.WithFallback("could not reach annotation tool"))
	if !res.OK {
		return false, errors.New(res.Err)
	}
	return resp.Connected, nil
}

// Poll периодически проверяет соединение и сообщает исход в report,
// пока контекст не отменён. Ошибка пробы считается потерей соединения.
func (s *Service) Poll(ctx context.Context, interval time.Duration, report func(connected bool)) {
	const op = "labelstudio.Poll"

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		connected, err := s.TestConnection(ctx)
		if err != nil {
			s.log.Info("connection probe failed", sl.Op(op), sl.Err(err))
		}
		report(connected && err == nil)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ExistingProjects возвращает уже созданные проекты разметки.
func (s *Service) ExistingProjects(ctx context.Context) ([]Project, error) {
	var resp struct {
		Projects []Project `json:"projects"`
	}
	res := s.gw.JSON(ctx, http.MethodGet, "/label-studio/existing-projects", nil, &resp,
		gateway.WithFallback("could not load annotation projects"))
	if !res.OK {
		return nil, errors.New(res.Err)
	}
	return resp.Projects, nil
}

// CreateProject создаёт проект разметки для продукта. Однополётная операция:
// повторный вызов для того же продукта отменяет предыдущий запрос.
func (s *Service) CreateProject(ctx context.Context, productID int) (*CreateProjectResult, error) {
	const op = "labelstudio.CreateProject"

	var result CreateProjectResult
	err := s.single(ctx, fmt.Sprintf("create-project:%d", productID), func(callCtx context.Context, correlationID string) error {
		body := map[string]int{"product_id": productID}
		res := s.gw.JSON(callCtx, http.MethodPost, "/label-studio/create-project", body, &result,
			gateway.WithFallback("could not create annotation project"),
			gateway.WithCorrelationID(correlationID))
		if !res.OK {
			return errors.New(res.Err)
		}
		s.log.Info("annotation project ready", sl.Op(op),
			slog.Int("project_id", result.ProjectID), sl.CorrelationID(correlationID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ImportImages импортирует снимки продукта в проект разметки.
// Однополётная операция с теми же правилами, что и CreateProject.
func (s *Service) ImportImages(ctx context.Context, productID, projectID int) (*ImportResult, error) {
	const op = "labelstudio.ImportImages"

	var result ImportResult
	err := s.single(ctx, fmt.Sprintf("import-images:%d:%d", productID, projectID), func(callCtx context.Context, correlationID string) error {
		body := map[string]int{"product_id": productID, "project_id": projectID}
		res := s.gw.JSON(callCtx, http.MethodPost, "/label-studio/import-images", body, &result,
			gateway.WithFallback("could not import images"),
			gateway.WithCorrelationID(correlationID))
		if !res.OK {
			return errors.New(res.Err)
		}
		s.log.Info("images imported", sl.Op(op),
			slog.Int("imported", result.Imported), sl.CorrelationID(correlationID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// single выполняет fn под однополётной дисциплиной.
//
// Совпадающий key отменяет предыдущий вызов и занимает его место,
// другой key при занятом сервисе возвращает ErrBusy. Каждая попытка
// получает свежий корреляционный идентификатор.
func (s *Service) single(ctx context.Context, key string, fn func(ctx context.Context, correlationID string) error) error {
	s.mu.Lock()
	if s.current != nil {
		if s.current.key != key {
			s.mu.Unlock()
			return ErrBusy
		}
		s.current.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	call := &inflight{key: key, cancel: cancel}
	s.current = call
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.current == call {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	return fn(callCtx, uuid.NewString())
}
