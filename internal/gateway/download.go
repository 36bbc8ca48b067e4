package gateway

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
)

// DefaultDownloadName имя файла, когда бэкенд не прислал
// заголовок Content-Disposition или его не удалось разобрать.
const DefaultDownloadName = "qc_images.zip"

// Download скачивает файловый поток в каталог destDir.
//
// Имя файла берётся из заголовка Content-Disposition ответа;
// при его отсутствии используется DefaultDownloadName.
// Возвращает путь к сохранённому файлу и Result в том же формате,
// что и остальные операции шлюза.
func (c *Client) Download(ctx context.Context, path, destDir string, opts ...Option) (string, Result) {
	const op = "gateway.Download"

	o := requestOptions{fallback: "download failed"}
	for _, apply := range opts {
		apply(&o)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		c.log.Error("failed to build request", sl.Op(op), sl.Err(err))
		return "", Fail(o.fallback)
	}
	c.authorize(req)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", Fail(o.fallback)
		}
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		c.log.Error("download failed", sl.Op(op), slog.String("path", path), sl.Err(err))
		return "", Fail(o.fallback)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", Fail(c.extractError(resp, o.fallback))
	}

	dest := filepath.Join(destDir, filenameFromHeader(resp.Header.Get("Content-Disposition")))
	file, err := os.Create(dest)
	if err != nil {
		c.log.Error("failed to create file", sl.Op(op), slog.String("dest", dest), sl.Err(err))
		return "", Fail(o.fallback)
	}
	defer func() { _ = file.Close() }()

	if _, err := io.Copy(file, resp.Body); err != nil {
		c.log.Error("failed to write file", sl.Op(op), slog.String("dest", dest), sl.Err(err))
		return "", Fail(o.fallback)
	}
	return dest, Success()
}

// filenameFromHeader разбирает Content-Disposition и возвращает имя файла.
// Любая проблема с заголовком приводит к запасному имени, а не к ошибке.
func filenameFromHeader(header string) string {
	if header == "" {
		return DefaultDownloadName
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return DefaultDownloadName
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultDownloadName
	}
	return name
}
