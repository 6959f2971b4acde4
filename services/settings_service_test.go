package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsLoadCreatesDefaults(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	settings, err := h.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SiteSettingsID, settings.ID)
	assert.Equal(t, models.DefaultEmailHost, settings.EmailHost)
	assert.Equal(t, models.DefaultEmailPort, settings.EmailPort)
	assert.True(t, settings.EmailUseTLS)
	assert.Equal(t, models.DefaultReplySignature, settings.EmailReplySignature)

	_, err = h.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.count(t, &models.SiteSettings{}))

	// a fresh service on the same database reads the existing row
	other := services.NewSettingsService(h.db)
	again, err := other.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.BusinessName, again.BusinessName)
	assert.Equal(t, int64(1), h.count(t, &models.SiteSettings{}))
}

func TestSettingsUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	name := "  NageshCare Wholesale "
	useTLS := false
	float := false
	signature := "Regards,\n  Sales"
	updated, err := h.settings.Update(ctx, services.SettingsPatch{
		BusinessName:         &name,
		EmailUseTLS:          &useTLS,
		WhatsappFloatEnabled: &float,
		EmailReplySignature:  &signature,
	})
	require.NoError(t, err)
	assert.Equal(t, "NageshCare Wholesale", updated.BusinessName)
	assert.False(t, updated.EmailUseTLS, "false is written, not skipped")
	assert.False(t, updated.WhatsappFloatEnabled)
	assert.Equal(t, signature, updated.EmailReplySignature)
	assert.Equal(t, models.DefaultEmailHost, updated.EmailHost, "untouched fields keep their value")

	var stored models.SiteSettings
	require.NoError(t, h.db.First(&stored, models.SiteSettingsID).Error)
	assert.False(t, stored.EmailUseTLS)

	bad := "not-an-email"
	_, err = h.settings.Update(ctx, services.SettingsPatch{EmailHostUser: &bad})
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))
}

func TestSettingsUpdateInvalidatesCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.settings.Load(ctx)
	require.NoError(t, err)

	// a write behind the service's back stays invisible until invalidated
	require.NoError(t, h.db.Model(&models.SiteSettings{ID: models.SiteSettingsID}).Update("tagline", "direct").Error)
	cached, err := h.settings.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached.Tagline)

	h.settings.Invalidate()
	fresh, err := h.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "direct", fresh.Tagline)

	// callers get copies of the cached row
	fresh.Tagline = "mutated"
	again, err := h.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "direct", again.Tagline)
}

func TestSettingsMailConfig(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cfg, err := h.settings.MailConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg, "defaults have no SMTP username")

	h.configureMail(t)
	cfg, err = h.settings.MailConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "smtp.test.local", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.Equal(t, "sales@nageshcare.com", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, models.DefaultReplySignature, cfg.Signature)

	blank := ""
	_, err = h.settings.Update(ctx, services.SettingsPatch{EmailHost: &blank})
	require.NoError(t, err)
	cfg, err = h.settings.MailConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestPublicViewHidesCredentials(t *testing.T) {
	h := newHarness(t)
	h.configureMail(t)

	settings, err := h.settings.Load(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(services.PublicView(settings))
	require.NoError(t, err)
	body := string(raw)
	assert.NotContains(t, body, "secret")
	assert.NotContains(t, body, "email_host")
	assert.Contains(t, body, `"whatsapp_float"`)

	full, err := json.Marshal(settings)
	require.NoError(t, err)
	assert.NotContains(t, string(full), "secret", "the password is never serialized")
}

func TestTestEmailConfiguration(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ok, msg, err := h.settings.TestEmailConfiguration(ctx, h.mailer)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, services.MsgMailNotConfiguredTest, msg)

	h.configureMail(t)
	ok, msg, err = h.settings.TestEmailConfiguration(ctx, h.mailer)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Email configuration is valid", msg)

	h.mailer.VerifyErr = errors.New("dial tcp: connection refused")
	ok, msg, err = h.settings.TestEmailConfiguration(ctx, h.mailer)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Email configuration error: dial tcp: connection refused", msg)
}
