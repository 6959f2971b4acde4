package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nageshcare/nageshcare-api/config"
	"github.com/nageshcare/nageshcare-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth0ServiceProfile(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/userinfo", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"email":"priya@nageshcare.com","name":"Priya"}`))
		default:
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	svc := services.NewAuth0Service(&config.Config{Auth0Domain: server.URL})
	ctx := context.Background()

	t.Run("fetches and caches the profile", func(t *testing.T) {
		profile, err := svc.Profile(ctx, "auth0|staff1", "good")
		require.NoError(t, err)
		assert.Equal(t, "auth0|staff1", profile.Sub)
		assert.Equal(t, "priya@nageshcare.com", profile.Label())

		_, err = svc.Profile(ctx, "auth0|staff1", "good")
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("non-200 response is an error", func(t *testing.T) {
		_, err := svc.Profile(ctx, "auth0|staff2", "bad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestStaffProfileLabel(t *testing.T) {
	assert.Equal(t, "a@b.com", (&services.StaffProfile{Sub: "s", Name: "n", Email: "a@b.com"}).Label())
	assert.Equal(t, "n", (&services.StaffProfile{Sub: "s", Name: "n"}).Label())
	assert.Equal(t, "s", (&services.StaffProfile{Sub: "s"}).Label())
}
