package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupUploadRouter serves a LocalFileStore rooted in a temp dir
func setupUploadRouter(t *testing.T) (*gin.Engine, string) {
	tmpDir := t.TempDir()
	store := services.NewLocalFileStore(tmpDir, services.LocalURLPrefix)

	router := gin.New()
	router.GET("/uploads/*filepath", NewUploadController(store).GetUpload)
	return router, tmpDir
}

func writeUpload(t *testing.T, root, key string, content []byte) {
	full := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, content, 0644))
}

func TestGetUpload_Success(t *testing.T) {
	router, root := setupUploadRouter(t)

	testContent := []byte("fake PNG content")
	writeUpload(t, root, "products/rose-dhoop/front.png", testContent)

	req := httptest.NewRequest("GET", "/uploads/products/rose-dhoop/front.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	assert.Equal(t, testContent, w.Body.Bytes())
}

func TestGetUpload_CaseInsensitiveExtension(t *testing.T) {
	router, root := setupUploadRouter(t)
	writeUpload(t, root, "products/rose-dhoop/side.JPG", []byte("jpg"))

	req := httptest.NewRequest("GET", "/uploads/products/rose-dhoop/side.JPG", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
}

func TestGetUpload_FileNotFound(t *testing.T) {
	router, _ := setupUploadRouter(t)

	req := httptest.NewRequest("GET", "/uploads/products/rose-dhoop/missing.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_NOT_FOUND")
	assert.Contains(t, w.Body.String(), "Image not found")
}

func TestGetUpload_EmptyFilename(t *testing.T) {
	router, _ := setupUploadRouter(t)

	req := httptest.NewRequest("GET", "/uploads/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestGetUpload_RejectedKeys(t *testing.T) {
	router, root := setupUploadRouter(t)
	writeUpload(t, root, "reply_attachments/2026/10/abc-prices.png", []byte("private"))
	writeUpload(t, root, "quote_logos/2026/10/abc-logo.png", []byte("private"))

	testCases := []struct {
		name     string
		filename string
	}{
		{"Parent directory traversal", "products/../../etc/passwd.png"},
		{"Non-canonical path", "products//rose-dhoop/front.png"},
		{"Backslash in key", "products\\rose-dhoop\\front.png"},
		{"Reply attachments are private", "reply_attachments/2026/10/abc-prices.png"},
		{"Quote logos are private", "quote_logos/2026/10/abc-logo.png"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/uploads/"+tc.filename, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_FILENAME")
		})
	}
}

func TestGetUpload_InvalidFileType(t *testing.T) {
	router, _ := setupUploadRouter(t)

	testCases := []struct {
		name     string
		filename string
	}{
		{"GIF file", "products/a/image.gif"},
		{"No extension", "products/a/image"},
		{"Text file", "products/a/document.txt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/uploads/"+tc.filename, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_FILE_TYPE")
		})
	}
}

// Uploads written through the store are served at the URL the store reports
func TestGetUpload_RoundTripThroughStoreURL(t *testing.T) {
	tmpDir := t.TempDir()
	store := services.NewLocalFileStore(tmpDir, "/api/v1/uploads")
	router := gin.New()
	router.GET("/api/v1/uploads/*filepath", NewUploadController(store).GetUpload)

	key := "products/rose-dhoop/rose dhoop.webp"
	writeUpload(t, tmpDir, key, []byte("webp"))
	url, err := store.URL(context.Background(), key)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("webp"), w.Body.Bytes())
}
