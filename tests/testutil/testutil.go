package testutil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/nageshcare/nageshcare-api/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// It fails the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
// Use this in TestMain or suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
}

// SetupTestDB opens a migrated in-memory SQLite database. A single
// connection keeps every query on the same in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase(":memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.AutoMigrate(db))
	return db
}

// TestFile is one file part of a multipart request
type TestFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

func writeMultipart(t *testing.T, fields map[string]string, files []TestFile) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Filename+`"`)
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// CreateTestFileHeader builds a real multipart.FileHeader for service tests
func CreateTestFileHeader(t *testing.T, file TestFile) *multipart.FileHeader {
	t.Helper()

	if file.Field == "" {
		file.Field = "file"
	}
	body, contentType := writeMultipart(t, nil, []TestFile{file})

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(32<<20))

	headers := req.MultipartForm.File[file.Field]
	require.Len(t, headers, 1)
	return headers[0]
}

// NewMultipartRequest builds a multipart/form-data request
func NewMultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...TestFile) *http.Request {
	t.Helper()

	body, contentType := writeMultipart(t, fields, files)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	return req
}
