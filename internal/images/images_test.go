package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/qc-admin/internal/config"
	"github.com/magabrotheeeer/qc-admin/internal/gateway"
	"github.com/magabrotheeeer/qc-admin/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(testLogger(), gateway.New(srv.URL, config.HTTPClient{}, testLogger()))
}

func TestGroupByProduct(t *testing.T) {
	items := []models.CapturedImage{
		{ID: 1, ProductID: 3, Filename: "a.jpg"},
		{ID: 2, ProductID: 1, Filename: "b.jpg"},
		{ID: 3, ProductID: 3, Filename: "c.jpg"},
		{ID: 4, ProductID: 2, Filename: "d.jpg"},
	}

	groups := GroupByProduct(items)

	require.Len(t, groups, 3)
	// Порядок групп — порядок первого появления продукта
	assert.Equal(t, 3, groups[0].ProductID)
	assert.Len(t, groups[0].Images, 2)
	assert.Equal(t, 1, groups[1].ProductID)
	assert.Equal(t, 2, groups[2].ProductID)
}

func TestGroupByProduct_Empty(t *testing.T) {
	assert.Empty(t, GroupByProduct(nil))
}

func TestList(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/images", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, []map[string]any{
			{"id": 1, "filename": "a.jpg", "product_id": 3},
		})
	})

	svc := newService(t, router)
	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a.jpg", items[0].Filename)
}

func TestUpload_Success(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/images", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "3", r.FormValue("product_id"))
		assert.Equal(t, "2", r.FormValue("step_id"))
		assert.NotEmpty(t, r.Header.Get(gateway.CorrelationHeader))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"id": 10, "filename": "shot.jpg", "product_id": 3})
	})

	svc := newService(t, router)
	outcome, err := svc.Upload(context.Background(), 3, 2, "shot.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.Empty(t, outcome.Warning)
	require.NotNil(t, outcome.Image)
	assert.Equal(t, 10, outcome.Image.ID)
}

func TestUpload_BackendRejection(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/images", func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Product not found"})
	})

	svc := newService(t, router)
	outcome, err := svc.Upload(context.Background(), 99, 0, "shot.jpg", strings.NewReader("jpeg-bytes"))

	assert.Nil(t, outcome)
	require.Error(t, err)
	assert.Equal(t, "Product not found", err.Error())
}

// MockGateway реализует интерфейс images.Gateway для проверки оптимистичной политики.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) JSON(ctx context.Context, method, path string, body, out any, _ ...gateway.Option) gateway.Result {
	args := m.Called(ctx, method, path, body, out)
	return args.Get(0).(gateway.Result)
}

func (m *MockGateway) Multipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader, out any, _ ...gateway.Option) (gateway.Result, bool) {
	args := m.Called(ctx, path, fields, fileField, filename, file, out)
	return args.Get(0).(gateway.Result), args.Bool(1)
}

func (m *MockGateway) Download(ctx context.Context, path, destDir string, _ ...gateway.Option) (string, gateway.Result) {
	args := m.Called(ctx, path, destDir)
	return args.String(0), args.Get(1).(gateway.Result)
}

func TestUpload_AmbiguousOutcomeIsOptimisticSuccess(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Multipart", mock.Anything, "/images", mock.Anything, "image", "shot.jpg",
		mock.Anything, mock.Anything).
		Return(gateway.Fail("could not upload image"), true)

	svc := New(testLogger(), gw)
	outcome, err := svc.Upload(context.Background(), 3, 0, "shot.jpg", strings.NewReader("jpeg-bytes"))

	// Исход неизвестен: считаем успехом с предупреждением, а не ошибкой
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, AmbiguousUploadWarning, outcome.Warning)
	assert.Nil(t, outcome.Image)
}

func TestDownloadAll(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/download/images/all", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename=all_images_20240101_120000.zip`)
		_, _ = w.Write([]byte("zip-bytes"))
	})

	svc := newService(t, router)
	path, err := svc.DownloadAll(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "all_images_20240101_120000.zip"))
}

func TestDelete_PassesBackendError(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/images/{id}", func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Image not found"})
	})

	svc := newService(t, router)
	err := svc.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, "Image not found", err.Error())
}

func TestStorageStats(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/storage/stats", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{"total_images": 42, "total_size": 1024, "bucket_name": "qc-images"})
	})

	svc := newService(t, router)
	stats, err := svc.StorageStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalImages)
	assert.Equal(t, int64(1024), stats.TotalSize)
}
