package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/config"
	"github.com/nageshcare/nageshcare-api/services"
	"github.com/nageshcare/nageshcare-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("GO_ENV") == "" {
		os.Setenv("GO_ENV", "test")
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:        ":memory:",
		Port:               "0",
		GoEnv:              "test",
		StaffScope:         "staff",
		StorageBackend:     config.StorageLocal,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "error",
	}
}

// newTestApp builds an App over an in-memory database with mocked mail and storage
func newTestApp(t *testing.T) (*App, *services.MockMailer) {
	t.Helper()
	testutil.RequireTestEnvironment(t)

	db := testutil.SetupTestDB(t)
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(nil) })

	mailer := services.NewMockMailer()
	return &App{
		Config:    testConfig(),
		DB:        db,
		Store:     services.NewMockFileStore(),
		Mailer:    mailer,
		StaffAuth: testutil.MockStaffAuth("auth0|staff1", "priya@nageshcare.com", "staff"),
	}, mailer
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp(t)
	router, err := NewRouter(app)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 2)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "NageshCare API is running", response["message"])
}

func TestHealthEndpointMethod(t *testing.T) {
	app, _ := newTestApp(t)
	router, err := NewRouter(app)
	require.NoError(t, err)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s should not be routed", method)
	}
}

func TestDatabaseStatus(t *testing.T) {
	app, _ := newTestApp(t)
	router, err := NewRouter(app)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/database/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var response struct {
		Success bool     `json:"success"`
		Tables  []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Contains(t, response.Tables, "contact_messages")
	assert.Contains(t, response.Tables, "inquiry_replies")
}

func TestCORSConfig(t *testing.T) {
	t.Run("wildcard allows every origin", func(t *testing.T) {
		cfg := corsConfig([]string{"https://nageshcare.com", "*"})
		assert.True(t, cfg.AllowAllOrigins)
		assert.Empty(t, cfg.AllowOrigins)
	})

	t.Run("explicit origins", func(t *testing.T) {
		cfg := corsConfig([]string{"https://nageshcare.com"})
		assert.False(t, cfg.AllowAllOrigins)
		assert.Equal(t, []string{"https://nageshcare.com"}, cfg.AllowOrigins)
		assert.Contains(t, cfg.AllowHeaders, "Authorization")
		assert.Contains(t, cfg.ExposeHeaders, "Content-Disposition")
	})

	t.Run("preflight from an allowed origin", func(t *testing.T) {
		app, _ := newTestApp(t)
		app.Config.CORSAllowedOrigins = []string{"https://nageshcare.com"}
		router, err := NewRouter(app)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
		req.Header.Set("Origin", "https://nageshcare.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://nageshcare.com", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestStaffRoutesDisabledWithoutAuth(t *testing.T) {
	app, _ := newTestApp(t)
	app.StaffAuth = nil
	router, err := NewRouter(app)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// public routes stay up
	req = httptest.NewRequest(http.MethodGet, "/api/v1/site", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaffRoutesRequireAuth(t *testing.T) {
	app, _ := newTestApp(t)
	app.StaffAuth = nil
	app.Config.Auth0Domain = "nageshcare.test.auth0.com"
	app.Config.Auth0Audience = "https://api.nageshcare.com"
	router, err := NewRouter(app)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffScopeIsEnforced(t *testing.T) {
	app, _ := newTestApp(t)
	app.StaffAuth = testutil.MockStaffAuth("auth0|visitor", "visitor@example.com")
	router, err := NewRouter(app)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadsRouteOnlyForLocalStore(t *testing.T) {
	app, _ := newTestApp(t)
	router, err := NewRouter(app)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/products/a/b.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "FILE_NOT_FOUND")

	app.Store = services.NewLocalFileStore(t.TempDir(), services.LocalURLPrefix)
	router, err = NewRouter(app)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_NOT_FOUND")
}
