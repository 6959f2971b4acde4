package services

import (
	"context"
	"strings"
	"sync"

	"github.com/nageshcare/nageshcare-api/models"
	"gorm.io/gorm"
)

// SettingsPatch carries the site settings fields a staff update may change.
// Nil fields are left untouched.
type SettingsPatch struct {
	BusinessName  *string `json:"business_name"`
	Tagline       *string `json:"tagline"`
	PhonePrimary  *string `json:"phone_primary"`
	PhoneWhatsapp *string `json:"phone_whatsapp"`
	EmailPrimary  *string `json:"email_primary" validate:"omitempty,email"`
	EmailSupport  *string `json:"email_support" validate:"omitempty,email"`
	AddressLine1  *string `json:"address_line1"`
	AddressLine2  *string `json:"address_line2"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	Pincode       *string `json:"pincode" validate:"omitempty,max=10"`
	FacebookURL   *string `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL  *string `json:"instagram_url" validate:"omitempty,url"`
	LinkedinURL   *string `json:"linkedin_url" validate:"omitempty,url"`
	WhatsappURL   *string `json:"whatsapp_url" validate:"omitempty,url"`
	BusinessHours *string `json:"business_hours"`
	GSTNumber     *string `json:"gst_number" validate:"omitempty,max=20"`

	DefaultMetaDescription *string `json:"default_meta_description" validate:"omitempty,max=300"`
	DefaultMetaKeywords    *string `json:"default_meta_keywords" validate:"omitempty,max=500"`

	EmailHost           *string `json:"email_host"`
	EmailPort           *int    `json:"email_port" validate:"omitempty,min=1,max=65535"`
	EmailUseTLS         *bool   `json:"email_use_tls"`
	EmailHostUser       *string `json:"email_host_user" validate:"omitempty,email"`
	EmailHostPassword   *string `json:"email_host_password"`
	EmailReplySignature *string `json:"email_reply_signature"`

	WhatsappFloatEnabled        *bool   `json:"whatsapp_float_enabled"`
	WhatsappFloatMessage        *string `json:"whatsapp_float_message"`
	WhatsappFloatPositionBottom *int    `json:"whatsapp_float_position_bottom" validate:"omitempty,min=0"`
	WhatsappFloatPositionRight  *int    `json:"whatsapp_float_position_right" validate:"omitempty,min=0"`
	WhatsappFloatShowOnMobile   *bool   `json:"whatsapp_float_show_on_mobile"`
	WhatsappFloatShowOnDesktop  *bool   `json:"whatsapp_float_show_on_desktop"`
}

func (p *SettingsPatch) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	setString("business_name", p.BusinessName)
	setString("tagline", p.Tagline)
	setString("phone_primary", p.PhonePrimary)
	setString("phone_whatsapp", p.PhoneWhatsapp)
	setString("email_primary", p.EmailPrimary)
	setString("email_support", p.EmailSupport)
	setString("address_line1", p.AddressLine1)
	setString("address_line2", p.AddressLine2)
	setString("city", p.City)
	setString("state", p.State)
	setString("pincode", p.Pincode)
	setString("facebook_url", p.FacebookURL)
	setString("instagram_url", p.InstagramURL)
	setString("linkedin_url", p.LinkedinURL)
	setString("whatsapp_url", p.WhatsappURL)
	setString("business_hours", p.BusinessHours)
	setString("gst_number", p.GSTNumber)
	setString("default_meta_description", p.DefaultMetaDescription)
	setString("default_meta_keywords", p.DefaultMetaKeywords)
	setString("email_host", p.EmailHost)
	setString("email_host_user", p.EmailHostUser)
	setString("whatsapp_float_message", p.WhatsappFloatMessage)
	// signature and password keep their whitespace
	if p.EmailReplySignature != nil {
		updates["email_reply_signature"] = *p.EmailReplySignature
	}
	if p.EmailHostPassword != nil {
		updates["email_host_password"] = *p.EmailHostPassword
	}
	if p.EmailPort != nil {
		updates["email_port"] = *p.EmailPort
	}
	if p.EmailUseTLS != nil {
		updates["email_use_tls"] = *p.EmailUseTLS
	}
	if p.WhatsappFloatEnabled != nil {
		updates["whatsapp_float_enabled"] = *p.WhatsappFloatEnabled
	}
	if p.WhatsappFloatPositionBottom != nil {
		updates["whatsapp_float_position_bottom"] = *p.WhatsappFloatPositionBottom
	}
	if p.WhatsappFloatPositionRight != nil {
		updates["whatsapp_float_position_right"] = *p.WhatsappFloatPositionRight
	}
	if p.WhatsappFloatShowOnMobile != nil {
		updates["whatsapp_float_show_on_mobile"] = *p.WhatsappFloatShowOnMobile
	}
	if p.WhatsappFloatShowOnDesktop != nil {
		updates["whatsapp_float_show_on_desktop"] = *p.WhatsappFloatShowOnDesktop
	}
	return updates
}

// SettingsService owns the site settings singleton. Reads are served from an
// in-process cache that Update invalidates.
type SettingsService struct {
	db *gorm.DB

	mu     sync.RWMutex
	cached *models.SiteSettings
}

// NewSettingsService creates a settings service on db
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Load returns the settings row, creating it with defaults on first access
func (s *SettingsService) Load(ctx context.Context) (*models.SiteSettings, error) {
	s.mu.RLock()
	if s.cached != nil {
		copied := *s.cached
		s.mu.RUnlock()
		return &copied, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		settings := models.SiteSettings{}
		defaults := models.DefaultSiteSettings()
		err := s.db.WithContext(ctx).
			Where(models.SiteSettings{ID: models.SiteSettingsID}).
			Attrs(defaults).
			FirstOrCreate(&settings).Error
		if err != nil {
			return nil, newDatabaseError("Failed to load site settings", err)
		}
		s.cached = &settings
	}
	copied := *s.cached
	return &copied, nil
}

// Update applies patch and drops the cached copy
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (*models.SiteSettings, error) {
	if err := validateForm(&patch); err != nil {
		return nil, err
	}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}

	updates := patch.columns()
	if len(updates) > 0 {
		err := s.db.WithContext(ctx).
			Model(&models.SiteSettings{ID: models.SiteSettingsID}).
			Updates(updates).Error
		if err != nil {
			return nil, newDatabaseError("Failed to update site settings", err)
		}
	}

	s.Invalidate()
	return s.Load(ctx)
}

// Invalidate drops the cached settings so the next Load reads the database
func (s *SettingsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// MailConfig returns the SMTP settings, or nil when host or username is blank
func (s *SettingsService) MailConfig(ctx context.Context) (*MailConfig, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.MailConfigured() {
		return nil, nil
	}
	return &MailConfig{
		Host:      settings.EmailHost,
		Port:      settings.EmailPort,
		UseTLS:    settings.EmailUseTLS,
		Username:  settings.EmailHostUser,
		Password:  settings.EmailHostPassword,
		Signature: settings.EmailReplySignature,
	}, nil
}

// PublicSettings is the settings subset exposed to anonymous visitors
type PublicSettings struct {
	BusinessName           string `json:"business_name"`
	Tagline                string `json:"tagline"`
	PhonePrimary           string `json:"phone_primary"`
	PhoneWhatsapp          string `json:"phone_whatsapp"`
	EmailPrimary           string `json:"email_primary"`
	EmailSupport           string `json:"email_support"`
	AddressLine1           string `json:"address_line1"`
	AddressLine2           string `json:"address_line2"`
	City                   string `json:"city"`
	State                  string `json:"state"`
	Pincode                string `json:"pincode"`
	FacebookURL            string `json:"facebook_url"`
	InstagramURL           string `json:"instagram_url"`
	LinkedinURL            string `json:"linkedin_url"`
	WhatsappURL            string `json:"whatsapp_url"`
	BusinessHours          string `json:"business_hours"`
	GSTNumber              string `json:"gst_number"`
	CINNumber              string `json:"cin_number"`
	MSMENumber             string `json:"msme_number"`
	EstablishedYear        string `json:"established_year"`
	DefaultMetaDescription string `json:"default_meta_description"`
	DefaultMetaKeywords    string `json:"default_meta_keywords"`

	WhatsappFloat struct {
		Enabled        bool   `json:"enabled"`
		Message        string `json:"message"`
		PositionBottom int    `json:"position_bottom"`
		PositionRight  int    `json:"position_right"`
		ShowOnMobile   bool   `json:"show_on_mobile"`
		ShowOnDesktop  bool   `json:"show_on_desktop"`
	} `json:"whatsapp_float"`
}

// PublicView strips the SMTP block from settings
func PublicView(s *models.SiteSettings) PublicSettings {
	v := PublicSettings{
		BusinessName:           s.BusinessName,
		Tagline:                s.Tagline,
		PhonePrimary:           s.PhonePrimary,
		PhoneWhatsapp:          s.PhoneWhatsapp,
		EmailPrimary:           s.EmailPrimary,
		EmailSupport:           s.EmailSupport,
		AddressLine1:           s.AddressLine1,
		AddressLine2:           s.AddressLine2,
		City:                   s.City,
		State:                  s.State,
		Pincode:                s.Pincode,
		FacebookURL:            s.FacebookURL,
		InstagramURL:           s.InstagramURL,
		LinkedinURL:            s.LinkedinURL,
		WhatsappURL:            s.WhatsappURL,
		BusinessHours:          s.BusinessHours,
		GSTNumber:              s.GSTNumber,
		CINNumber:              s.CINNumber,
		MSMENumber:             s.MSMENumber,
		EstablishedYear:        s.EstablishedYear,
		DefaultMetaDescription: s.DefaultMetaDescription,
		DefaultMetaKeywords:    s.DefaultMetaKeywords,
	}
	v.WhatsappFloat.Enabled = s.WhatsappFloatEnabled
	v.WhatsappFloat.Message = s.WhatsappFloatMessage
	v.WhatsappFloat.PositionBottom = s.WhatsappFloatPositionBottom
	v.WhatsappFloat.PositionRight = s.WhatsappFloatPositionRight
	v.WhatsappFloat.ShowOnMobile = s.WhatsappFloatShowOnMobile
	v.WhatsappFloat.ShowOnDesktop = s.WhatsappFloatShowOnDesktop
	return v
}

// TestEmailConfiguration checks the stored SMTP settings by connecting to the
// server. It returns a human readable outcome.
func (s *SettingsService) TestEmailConfiguration(ctx context.Context, mailer Mailer) (bool, string, error) {
	cfg, err := s.MailConfig(ctx)
	if err != nil {
		return false, "", err
	}
	if cfg == nil {
		return false, MsgMailNotConfiguredTest, nil
	}
	if err := mailer.Verify(ctx, *cfg); err != nil {
		return false, "Email configuration error: " + err.Error(), nil
	}
	return true, "Email configuration is valid", nil
}
