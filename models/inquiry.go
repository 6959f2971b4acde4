package models

import (
	"time"
)

// Inquiry is a product-specific inquiry sent from a product detail page
type Inquiry struct {
	ID                     uint          `gorm:"primaryKey" json:"id"`
	ProductID              *uint         `gorm:"index" json:"product_id"` // nullable, cleared when the product is deleted
	Product                *Product      `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"product,omitempty"`
	Name                   string        `gorm:"size:200;not null" json:"name"`
	BusinessName           string        `gorm:"size:200;not null" json:"business_name"`
	Email                  string        `gorm:"size:254;not null" json:"email"`
	Phone                  string        `gorm:"size:20;not null" json:"phone"`
	WhatsappNumber         string        `gorm:"size:20" json:"whatsapp_number"`
	QuantityNeeded         string        `gorm:"size:100;not null" json:"quantity_needed"`
	PreferredVariant       string        `gorm:"size:200" json:"preferred_variant"`
	FragrancePreference    string        `gorm:"size:200" json:"fragrance_preference"`
	CustomBrandingRequired bool          `gorm:"not null;default:false" json:"custom_branding_required"`
	DeliveryLocation       string        `gorm:"size:300;not null" json:"delivery_location"`
	AdditionalRequirements string        `gorm:"type:text" json:"additional_requirements"`
	Status                 InquiryStatus `gorm:"size:20;not null;default:'new';index" json:"status"`
	AdminNotes             string        `gorm:"type:text" json:"admin_notes"`
	CreatedAt              time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Inquiry model
func (Inquiry) TableName() string {
	return "inquiries"
}
