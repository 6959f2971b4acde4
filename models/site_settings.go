package models

import (
	"time"
)

// SiteSettingsID is the primary key of the settings singleton
const SiteSettingsID uint = 1

// Default mail settings for a fresh install
const (
	DefaultEmailHost      = "smtp.gmail.com"
	DefaultEmailPort      = 587
	DefaultReplySignature = "Best regards,\nNageshCare Team\nwww.nageshcare.com"
)

// SiteSettings holds site-wide business details, SEO defaults and the SMTP
// credentials used for staff replies. There is exactly one row (id=1).
type SiteSettings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BusinessName string `gorm:"size:200;not null;default:'NageshCare'" json:"business_name"`
	Tagline      string `gorm:"size:300" json:"tagline"`

	PhonePrimary  string `gorm:"size:20" json:"phone_primary"`
	PhoneWhatsapp string `gorm:"size:20" json:"phone_whatsapp"`
	EmailPrimary  string `gorm:"size:254" json:"email_primary"`
	EmailSupport  string `gorm:"size:254" json:"email_support"`

	AddressLine1 string `gorm:"size:200" json:"address_line1"`
	AddressLine2 string `gorm:"size:200" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	Pincode      string `gorm:"size:10" json:"pincode"`

	FacebookURL  string `gorm:"size:200" json:"facebook_url"`
	InstagramURL string `gorm:"size:200" json:"instagram_url"`
	LinkedinURL  string `gorm:"size:200" json:"linkedin_url"`
	WhatsappURL  string `gorm:"size:200" json:"whatsapp_url"`

	BusinessHours   string `gorm:"size:200" json:"business_hours"`
	GSTNumber       string `gorm:"size:20" json:"gst_number"`
	CINNumber       string `gorm:"size:30" json:"cin_number"`
	MSMENumber      string `gorm:"size:30" json:"msme_number"`
	EstablishedYear string `gorm:"size:4" json:"established_year"`

	DefaultMetaDescription string `gorm:"size:300" json:"default_meta_description"`
	DefaultMetaKeywords    string `gorm:"size:500" json:"default_meta_keywords"`

	// SMTP
	EmailHost           string `gorm:"size:200" json:"email_host"`
	EmailPort           int    `gorm:"not null" json:"email_port"`
	EmailUseTLS         bool   `gorm:"not null" json:"email_use_tls"`
	EmailHostUser       string `gorm:"size:254" json:"email_host_user"`
	EmailHostPassword   string `gorm:"size:200" json:"-"`
	EmailReplySignature string `gorm:"type:text" json:"email_reply_signature"`

	// Floating WhatsApp button
	WhatsappFloatEnabled        bool   `gorm:"not null" json:"whatsapp_float_enabled"`
	WhatsappFloatMessage        string `gorm:"type:text" json:"whatsapp_float_message"`
	WhatsappFloatPositionBottom int    `gorm:"not null" json:"whatsapp_float_position_bottom"`
	WhatsappFloatPositionRight  int    `gorm:"not null" json:"whatsapp_float_position_right"`
	WhatsappFloatShowOnMobile   bool   `gorm:"not null" json:"whatsapp_float_show_on_mobile"`
	WhatsappFloatShowOnDesktop  bool   `gorm:"not null" json:"whatsapp_float_show_on_desktop"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the SiteSettings model
func (SiteSettings) TableName() string {
	return "site_settings"
}

// DefaultSiteSettings returns the row created on first access
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:                          SiteSettingsID,
		BusinessName:                "NageshCare",
		BusinessHours:               "Mon-Sat: 9:00 AM - 6:00 PM",
		EmailHost:                   DefaultEmailHost,
		EmailPort:                   DefaultEmailPort,
		EmailUseTLS:                 true,
		EmailReplySignature:         DefaultReplySignature,
		WhatsappFloatEnabled:        true,
		WhatsappFloatMessage:        "Hi, I'm interested in your wholesale products. Please share more details.",
		WhatsappFloatPositionBottom: 100,
		WhatsappFloatPositionRight:  20,
		WhatsappFloatShowOnDesktop:  true,
	}
}

// MailConfigured reports whether enough SMTP settings exist to attempt a send
func (s *SiteSettings) MailConfigured() bool {
	return s.EmailHost != "" && s.EmailHostUser != ""
}
