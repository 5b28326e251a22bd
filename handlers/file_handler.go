package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the room left for form boundaries and headers on top
// of the largest accepted file.
const multipartOverhead = 1024 * 1024

// FileHandler uploads and removes files in object storage.
type FileHandler struct {
	files FileGateway
}

// NewFileHandler accepts a nil gateway when storage is disabled; every call
// then fails with a configuration error.
func NewFileHandler(files FileGateway) *FileHandler {
	return &FileHandler{files: files}
}

type deleteFileRequest struct {
	URL string `json:"url" binding:"required"`
}

// UploadFileHandler stores a multipart "file" field and returns its public URL.
// POST /v1/admin/archivos?kind=pdf|image
func (h *FileHandler) UploadFileHandler(c *gin.Context) {
	if h.files == nil {
		_ = c.Error(apperrors.MissingConfiguration("File storage is not configured"))
		return
	}

	kind, ok := storage.ParseKind(c.Query("kind"))
	if !ok {
		_ = c.Error(apperrors.ValidationFailed("Invalid file kind", "kind must be pdf or image"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, kind.MaxSize()+multipartOverhead)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			_ = c.Error(apperrors.ValidationFailed("File too large", "the request body exceeds the size limit"))
			return
		}
		_ = c.Error(apperrors.ValidationFailed("Missing file", "file field is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid file", "failed to open uploaded file"))
		return
	}
	defer file.Close()

	url, err := h.files.Upload(c.Request.Context(), kind, storage.Upload{
		Filename:     fileHeader.Filename,
		DeclaredType: fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Body:         file,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// DeleteFileHandler removes a hosted file by its public URL.
// DELETE /v1/admin/archivos
func (h *FileHandler) DeleteFileHandler(c *gin.Context) {
	if h.files == nil {
		_ = c.Error(apperrors.MissingConfiguration("File storage is not configured"))
		return
	}

	var req deleteFileRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	err := h.files.Delete(c.Request.Context(), req.URL)
	switch {
	case errors.Is(err, storage.ErrNotHosted):
		_ = c.Error(apperrors.ValidationFailed("Invalid file URL", "the URL does not point into file storage"))
		return
	case err != nil:
		_ = c.Error(apperrors.NewStorageError("Failed to delete file", err))
		return
	}
	c.Status(http.StatusNoContent)
}
