// Package storage uploads and deletes resource files in object storage and
// hands back their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Kind is the category of an uploaded file.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

const (
	MaxPDFSize   = 10 * 1024 * 1024
	MaxImageSize = 5 * 1024 * 1024

	sniffLen = 512
)

var allowedImageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "svg": true,
}

// ErrNotHosted is returned when a URL does not point into the configured bucket.
var ErrNotHosted = errors.New("url is not hosted in file storage")

// ParseKind validates a kind query value.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindPDF, KindImage:
		return Kind(s), true
	}
	return "", false
}

// MaxSize returns the size ceiling for files of this kind.
func (k Kind) MaxSize() int64 {
	if k == KindPDF {
		return MaxPDFSize
	}
	return MaxImageSize
}

func (k Kind) folder() string {
	return string(k) + "s"
}

func (k Kind) accepts(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if k == KindPDF {
		return contentType == "application/pdf"
	}
	return strings.HasPrefix(contentType, "image/")
}

// ObjectStore is a bucket backend. Put returns the object's public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error)
	Remove(ctx context.Context, key string) error
}

// Upload describes one incoming file.
type Upload struct {
	Filename     string
	DeclaredType string
	// Size is the client-reported size; -1 when unknown.
	Size int64
	Body io.Reader
}

// Gateway validates uploads before they reach the backend and maps public
// URLs back to object keys.
type Gateway struct {
	backend       ObjectStore
	publicBaseURL string
	now           func() time.Time
	token         func() string
	metrics       *storageMetrics
}

func NewGateway(backend ObjectStore, publicBaseURL string) *Gateway {
	return &Gateway{
		backend:       backend,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
		token:         randomToken,
		metrics:       newStorageMetrics(),
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

// Upload checks kind, size and MIME type, then stores the file under
// <kind>s/<unix-millis>-<token>.<ext> and returns its public URL.
func (g *Gateway) Upload(ctx context.Context, kind Kind, up Upload) (string, error) {
	if _, ok := ParseKind(string(kind)); !ok {
		return "", apperrors.ValidationFailed("Invalid file kind", fmt.Sprintf("kind %q must be pdf or image", kind))
	}
	limit := kind.MaxSize()
	if up.Size > limit {
		g.metrics.record("upload", "rejected")
		return "", tooLarge(kind, up.Size)
	}
	if up.DeclaredType != "" && !kind.accepts(up.DeclaredType) {
		g.metrics.record("upload", "rejected")
		return "", wrongType(kind, up.DeclaredType)
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, limit+1))
	if err != nil {
		return "", apperrors.ValidationFailed("Could not read file", err.Error())
	}
	if int64(len(data)) > limit {
		g.metrics.record("upload", "rejected")
		return "", tooLarge(kind, int64(len(data)))
	}
	if len(data) == 0 {
		g.metrics.record("upload", "rejected")
		return "", apperrors.ValidationFailed("Empty file", "the uploaded file has no content")
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	detected := mimetype.Detect(head)
	if !kind.accepts(detected.String()) {
		g.metrics.record("upload", "rejected")
		return "", wrongType(kind, detected.String())
	}

	key := path.Join(kind.folder(), fmt.Sprintf("%d-%s.%s", g.now().UnixMilli(), g.token(), extensionFor(kind, up.Filename, detected)))
	publicURL, err := g.backend.Put(ctx, key, detected.String(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		g.metrics.record("upload", "error")
		return "", apperrors.NewStorageError("Failed to upload file", err)
	}

	g.metrics.record("upload", "ok")
	logger.GetLogger().Infow("Uploaded file", "key", key, "kind", kind, "bytes", len(data))
	return publicURL, nil
}

func extensionFor(kind Kind, filename string, detected *mimetype.MIME) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if kind == KindPDF {
		return "pdf"
	}
	if allowedImageExtensions[ext] {
		return ext
	}
	return strings.TrimPrefix(detected.Extension(), ".")
}

func tooLarge(kind Kind, size int64) error {
	return apperrors.ValidationFailed("File too large",
		fmt.Sprintf("%s files must be at most %d MB, got %d bytes", kind, kind.MaxSize()/(1024*1024), size))
}

func wrongType(kind Kind, contentType string) error {
	expected := "application/pdf"
	if kind == KindImage {
		expected = "image/*"
	}
	return apperrors.ValidationFailed("Invalid file type",
		fmt.Sprintf("expected %s, got %s", expected, contentType))
}

// IsHosted reports whether link points at a file in this gateway's bucket.
func (g *Gateway) IsHosted(link string) bool {
	return g.publicBaseURL != "" && strings.Contains(link, g.publicBaseURL)
}

// KeyFromURL extracts <folder>/<file> from the last two segments of a
// public URL.
func KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse storage url: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", fmt.Errorf("storage url %q has no folder and file name", rawURL)
	}
	folder, file := segments[len(segments)-2], segments[len(segments)-1]
	if folder == "" || file == "" || folder == ".." || file == ".." {
		return "", fmt.Errorf("storage url %q has an invalid key", rawURL)
	}
	return folder + "/" + file, nil
}

// Delete removes the object behind a public URL. The error is returned so the
// caller can decide whether to queue a retry.
func (g *Gateway) Delete(ctx context.Context, publicURL string) error {
	if !g.IsHosted(publicURL) {
		return ErrNotHosted
	}
	key, err := KeyFromURL(publicURL)
	if err != nil {
		return err
	}
	if err := g.backend.Remove(ctx, key); err != nil {
		g.metrics.record("delete", "error")
		return fmt.Errorf("remove %s: %w", key, err)
	}
	g.metrics.record("delete", "ok")
	return nil
}

type storageMetrics struct {
	operations *prometheus.CounterVec
}

var (
	storageMetricsInstance *storageMetrics
	storageMetricsOnce     sync.Once
)

func newStorageMetrics() *storageMetrics {
	storageMetricsOnce.Do(func() {
		storageMetricsInstance = &storageMetrics{
			operations: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "file_storage_operations_total",
				Help: "File storage operations by type and result",
			}, []string{"operation", "result"}),
		}
	})
	return storageMetricsInstance
}

func (m *storageMetrics) record(operation, result string) {
	if m != nil {
		m.operations.WithLabelValues(operation, result).Inc()
	}
}
