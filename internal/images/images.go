// Package images реализует работу со снимками контроля качества:
// списки и группировку по продуктам, загрузку файлов, удаление,
// массовое скачивание архива и сводку хранилища.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/qc-admin/internal/gateway"
	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
	"github.com/magabrotheeeer/qc-admin/internal/models"
)

// Gateway описывает контракт шлюза, нужный сервису снимков.
type Gateway interface {
	JSON(ctx context.Context, method, path string, body, out any, opts ...gateway.Option) gateway.Result
	Multipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader, out any, opts ...gateway.Option) (gateway.Result, bool)
	Download(ctx context.Context, path, destDir string, opts ...gateway.Option) (string, gateway.Result)
}

// AmbiguousUploadWarning текст примечания к загрузке с потерянным ответом.
//
// Политика намеренная: тело уже ушло на бэкенд, и ложное сообщение о провале
// хуже изредка пропущенного настоящего. Исход помечается предупреждением,
// а не ошибкой.
const AmbiguousUploadWarning = "Upload response was lost to a network error; the image most likely reached the server"

// UploadOutcome исход загрузки снимка.
// Warning непустой у загрузок с неизвестным исходом (см. AmbiguousUploadWarning).
type UploadOutcome struct {
	Image   *models.CapturedImage
	Warning string
}

// Service клиентский сервис снимков.
type Service struct {
	log *slog.Logger
	gw  Gateway
}

// New создаёт Service поверх шлюза.
func New(log *slog.Logger, gw Gateway) *Service {
	return &Service{log: log, gw: gw}
}

// List возвращает все снимки.
func (s *Service) List(ctx context.Context) ([]models.CapturedImage, error) {
	var items []models.CapturedImage
	res := s.gw.JSON(ctx, http.MethodGet, "/images", nil, &items,
		gateway.WithFallback("could not load images"))
	if !res.OK {
		return nil, errors.New(res.Err)
	}
	return items, nil
}

// ListByCompany возвращает снимки всех продуктов одной компании.
func (s *Service) ListByCompany(ctx context.Context, companyID int) ([]models.CapturedImage, error) {
	var items []models.CapturedImage
	path := fmt.Sprintf("/companies/%d/images", companyID)
	res := s.gw.JSON(ctx, http.MethodGet, path, nil, &items,
		gateway.WithFallback("could not load company images"))
	if !res.OK {
		return nil, errors.New(res.Err)
	}
	return items, nil
}

// GroupByProduct группирует снимки по продуктам, сохраняя порядок
// первого появления продукта в исходном списке.
func GroupByProduct(items []models.CapturedImage) []models.ProductImages {
	index := make(map[int]int)
	var groups []models.ProductImages
	for _, img := range items {
		i, ok := index[img.ProductID]
		if !ok {
			i = len(groups)
			index[img.ProductID] = i
			groups = append(groups, models.ProductImages{ProductID: img.ProductID})
		}
		groups[i].Images = append(groups[i].Images, img)
	}
	return groups
}

// Upload загружает снимок и привязывает его к продукту и шагу.
//
// Сетевая ошибка после отправки тела трактуется оптимистично:
// исход считается успешным с предупреждением AmbiguousUploadWarning,
// без данных о созданной записи.
func (s *Service) Upload(ctx context.Context, productID, stepID int, filename string, file io.Reader) (*UploadOutcome, error) {
	const op = "images.Upload"

	fields := map[string]string{
		"product_id": strconv.Itoa(productID),
	}
	if stepID > 0 {
		fields["step_id"] = strconv.Itoa(stepID)
	}

	correlationID := uuid.NewString()
	var created models.CapturedImage
	res, ambiguous := s.gw.Multipart(ctx, "/images", fields, "image", filename, file, &created,
		gateway.WithFallback("could not upload image"),
		gateway.WithCorrelationID(correlationID))
	if !res.OK {
		if ambiguous {
			s.log.Warn("upload outcome unknown, treating as success", sl.Op(op),
				slog.String("filename", filename), sl.CorrelationID(correlationID))
			return &UploadOutcome{Warning: AmbiguousUploadWarning}, nil
		}
		return nil, errors.New(res.Err)
	}
	return &UploadOutcome{Image: &created}, nil
}

// Delete удаляет снимок по идентификатору.
func (s *Service) Delete(ctx context.Context, imageID int) error {
	path := fmt.Sprintf("/images/%d", imageID)
	res := s.gw.JSON(ctx, http.MethodDelete, path, nil, nil,
		gateway.WithFallback("could not delete image"))
	if !res.OK {
		return errors.New(res.Err)
	}
	return nil
}

// DownloadAll скачивает архив со всеми снимками в каталог destDir
// и возвращает путь к сохранённому файлу.
func (s *Service) DownloadAll(ctx context.Context, destDir string) (string, error) {
	path, res := s.gw.Download(ctx, "/download/images/all", destDir,
		gateway.WithFallback("could not download images"))
	if !res.OK {
		return "", errors.New(res.Err)
	}
	return path, nil
}

// StorageStats возвращает сводку объектного хранилища снимков.
func (s *Service) StorageStats(ctx context.Context) (*models.StorageStats, error) {
	var stats models.StorageStats
	res := s.gw.JSON(ctx, http.MethodGet, "/storage/stats", nil, &stats,
		gateway.WithFallback("could not load storage stats"))
	if !res.OK {
		return nil, errors.New(res.Err)
	}
	return &stats, nil
}
