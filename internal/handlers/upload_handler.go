package handlers

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hat-forum/backend/internal/middleware"
	"github.com/hat-forum/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

// maxUploadSize caps uploads at 5 MiB, boundary inclusive.
const maxUploadSize = 5 * 1024 * 1024

// uploadPrefix is the logical prefix every stored object lives under.
const uploadPrefix = "user_upload/"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadHandler accepts image uploads and forwards them to the blob store.
type UploadHandler struct {
	store      storage.BlobStore
	attempts   int
	retryDelay time.Duration
}

// NewUploadHandler creates an UploadHandler with the store retry policy:
// 3 attempts total with a fixed 1-second pause between them.
func NewUploadHandler(store storage.BlobStore) *UploadHandler {
	return &UploadHandler{
		store:      store,
		attempts:   3,
		retryDelay: time.Second,
	}
}

// RegisterUploadRoutes registers the upload route
func (h *UploadHandler) RegisterUploadRoutes(protected *echo.Group) {
	protected.POST("/upload", h.Upload)
}

// Upload validates one multipart image file and stores it under a freshly
// generated name. Validation runs before any store access. The stored name
// never derives from the client-supplied filename beyond its extension.
func (h *UploadHandler) Upload(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return echo.NewHTTPError(http.StatusBadRequest, "File type not allowed")
	}

	if fileHeader.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "File size exceeds the limit (5MB)")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}

	objectName := uploadPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))

	// Retry on store failure: fixed pause, no backoff, no distinction
	// between retryable and non-retryable failures. The first failure is
	// the one reported when every attempt is exhausted.
	var firstErr error
	for attempt := 0; attempt < h.attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(h.retryDelay)
		}
		err = h.store.Upload(c.Request().Context(), objectName, data, contentType)
		if err == nil {
			firstErr = nil
			break
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		log.Printf("Blob store error after %d attempts: %v", h.attempts, firstErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to upload file",
			"details": firstErr.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"url": h.store.PublicURL(objectName)})
}
