package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/hat-forum/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBlobStore fails the first failures uploads, then succeeds.
type flakyBlobStore struct {
	mu       sync.Mutex
	failures int
	calls    int
	err      error
	lastName string
	lastType string
}

func (s *flakyBlobStore) Upload(_ context.Context, objectName string, _ []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastName = objectName
	s.lastType = contentType
	if s.calls <= s.failures {
		return s.err
	}
	return nil
}

func (s *flakyBlobStore) PublicURL(objectName string) string {
	return "http://blobs.test/hat-images/" + objectName
}

func newUploadContext(t *testing.T, filename, contentType string, size int) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionContextKey, &middleware.Session{Email: "alice@example.com"})
	return c, rec
}

func newTestUploadHandler(store *flakyBlobStore) *UploadHandler {
	return &UploadHandler{store: store, attempts: 3, retryDelay: 20 * time.Millisecond}
}

func TestUploadHandler_Validation(t *testing.T) {
	t.Run("oversized file returns 400 with zero store calls", func(t *testing.T) {
		store := &flakyBlobStore{}
		h := newTestUploadHandler(store)

		c, _ := newUploadContext(t, "big.png", "image/png", maxUploadSize+1)

		err := h.Upload(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("file at exactly the 5MiB boundary is accepted", func(t *testing.T) {
		store := &flakyBlobStore{}
		h := newTestUploadHandler(store)

		c, rec := newUploadContext(t, "exact.png", "image/png", maxUploadSize)

		require.NoError(t, h.Upload(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, store.calls)
	})

	t.Run("disallowed type returns 400 with zero store calls", func(t *testing.T) {
		store := &flakyBlobStore{}
		h := newTestUploadHandler(store)

		c, _ := newUploadContext(t, "notes.pdf", "application/pdf", 128)

		err := h.Upload(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("missing file part returns 400", func(t *testing.T) {
		h := newTestUploadHandler(&flakyBlobStore{})

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.SessionContextKey, &middleware.Session{Email: "alice@example.com"})

		err := h.Upload(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("no session returns 401", func(t *testing.T) {
		h := newTestUploadHandler(&flakyBlobStore{})

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Upload(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestUploadHandler_Retry(t *testing.T) {
	t.Run("succeeds on the third attempt after two pauses", func(t *testing.T) {
		store := &flakyBlobStore{failures: 2, err: assert.AnError}
		h := newTestUploadHandler(store)

		c, rec := newUploadContext(t, "hat.webp", "image/webp", 1024)

		start := time.Now()
		require.NoError(t, h.Upload(c))
		elapsed := time.Since(start)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, store.calls)
		assert.GreaterOrEqual(t, elapsed, 2*h.retryDelay)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "http://blobs.test/hat-images/"+store.lastName, resp["url"])
		assert.Equal(t, "image/webp", store.lastType)
	})

	t.Run("exhausted attempts report the first failure", func(t *testing.T) {
		store := &flakyBlobStore{failures: 3, err: assert.AnError}
		h := newTestUploadHandler(store)

		c, rec := newUploadContext(t, "hat.gif", "image/gif", 1024)

		require.NoError(t, h.Upload(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, 3, store.calls)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Failed to upload file", resp["error"])
		assert.Equal(t, assert.AnError.Error(), resp["details"])
	})

	t.Run("stored name keeps the extension, never the client filename", func(t *testing.T) {
		store := &flakyBlobStore{}
		h := newTestUploadHandler(store)

		c, _ := newUploadContext(t, "My Fancy Hat.JPG", "image/jpeg", 64)

		require.NoError(t, h.Upload(c))
		assert.True(t, len(store.lastName) > len(uploadPrefix))
		assert.Contains(t, store.lastName, uploadPrefix)
		assert.NotContains(t, store.lastName, "My Fancy Hat")
		assert.Contains(t, store.lastName, ".jpg")
	})
}
