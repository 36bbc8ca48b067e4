package labelstudio

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/qc-admin/internal/config"
	"github.com/magabrotheeeer/qc-admin/internal/gateway"
)

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger, gateway.New(srv.URL, config.HTTPClient{}, logger))
}

func TestKeyStatus(t *testing.T) {
	tests := []struct {
		name   string
		hasKey bool
	}{
		{name: "ключ настроен", hasKey: true},
		{name: "ключа нет", hasKey: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Get("/user/label-studio-api-key", func(w http.ResponseWriter, r *http.Request) {
				render.JSON(w, r, map[string]bool{"has_api_key": tt.hasKey})
			})

			svc := newService(t, router)
			hasKey, err := svc.KeyStatus(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.hasKey, hasKey)
		})
	}
}

func TestSetKey_PassesBackendError(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/user/label-studio-api-key", func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "API key cannot be empty"})
	})

	svc := newService(t, router)
	err := svc.SetKey(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "API key cannot be empty", err.Error())
}

func TestTestConnection(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/label-studio/test-connection", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{"connected": true, "message": "ok"})
	})

	svc := newService(t, router)
	connected, err := svc.TestConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, connected)
}

func TestPoll_ReportsUntilCancelled(t *testing.T) {
	var probes atomic.Int32
	router := chi.NewRouter()
	router.Post("/label-studio/test-connection", func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		render.JSON(w, r, map[string]bool{"connected": true})
	})

	svc := newService(t, router)

	ctx, cancel := context.WithCancel(context.Background())
	reports := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Poll(ctx, 10*time.Millisecond, func(connected bool) {
			assert.True(t, connected)
			reports++
			if reports >= 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, reports, 3)
	assert.GreaterOrEqual(t, probes.Load(), int32(3))
}

func TestCreateProject_RapidRepeatCancelsFirst(t *testing.T) {
	var calls atomic.Int32
	firstStarted := make(chan struct{})

	var mu sync.Mutex
	var correlationIDs []string

	router := chi.NewRouter()
	router.Post("/label-studio/create-project", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		correlationIDs = append(correlationIDs, r.Header.Get(gateway.CorrelationHeader))
		mu.Unlock()

		if calls.Add(1) == 1 {
			close(firstStarted)
			// Висим, пока клиент не отменит первый запрос
			<-r.Context().Done()
			return
		}
		render.JSON(w, r, map[string]any{"project_id": 7, "title": "Widget"})
	})

	svc := newService(t, router)

	var firstErr error
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, firstErr = svc.CreateProject(context.Background(), 3)
	}()

	<-firstStarted

	// Повторный клик по тому же продукту: первый запрос отменяется
	result, err := svc.CreateProject(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 7, result.ProjectID)

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("first call did not finish after cancellation")
	}
	require.Error(t, firstErr)

	// Ровно одно успешное завершение и разные корреляционные идентификаторы
	assert.Equal(t, int32(2), calls.Load())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, correlationIDs, 2)
	assert.NotEmpty(t, correlationIDs[0])
	assert.NotEmpty(t, correlationIDs[1])
	assert.NotEqual(t, correlationIDs[0], correlationIDs[1])
}

func TestCreateProject_DifferentActionIsIgnoredWhileBusy(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	router := chi.NewRouter()
	router.Post("/label-studio/create-project", func(w http.ResponseWriter, r *http.Request) {
		close(firstStarted)
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		render.JSON(w, r, map[string]any{"project_id": 1, "title": "Widget"})
	})

	svc := newService(t, router)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := svc.CreateProject(context.Background(), 1)
		assert.NoError(t, err)
	}()

	<-firstStarted

	// Другое логическое действие во время полёта игнорируется, не ставится в очередь
	_, err := svc.CreateProject(context.Background(), 2)
	assert.ErrorIs(t, err, ErrBusy)

	_, err = svc.ImportImages(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("first call did not finish")
	}
}

func TestImportImages_Success(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/label-studio/import-images", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]int{"project_id": 7, "imported": 12})
	})

	svc := newService(t, router)
	result, err := svc.ImportImages(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Imported)
	assert.Equal(t, 7, result.ProjectID)
}

func TestExistingProjects(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/label-studio/existing-projects", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"projects": []map[string]any{
				{"id": 1, "title": "Widget"},
				{"id": 2, "title": "Gadget"},
			},
		})
	})

	svc := newService(t, router)
	projects, err := svc.ExistingProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Widget", projects[0].Title)
}
