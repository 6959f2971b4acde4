package models

import (
	"crypto/rand"
	"math/big"
	"time"

	"gorm.io/gorm"
)

const (
	// ReferenceIDPrefix starts every quote reference
	ReferenceIDPrefix = "QR"
	// ReferenceIDLength is the number of random characters after the prefix
	ReferenceIDLength = 8

	referenceIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// QuoteRequest is a detailed bulk-order inquiry
type QuoteRequest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Business
	Name            string `gorm:"size:200;not null" json:"name"`
	BusinessName    string `gorm:"size:300;not null" json:"business_name"`
	BusinessType    string `gorm:"size:50;not null;index" json:"business_type"`
	YearsInBusiness string `gorm:"size:50" json:"years_in_business"`
	BusinessWebsite string `gorm:"size:200" json:"business_website"`
	GSTNumber       string `gorm:"size:50" json:"gst_number"`

	// Contact
	Email                  string `gorm:"size:254;not null;index" json:"email"`
	Phone                  string `gorm:"size:20;not null" json:"phone"`
	WhatsappNumber         string `gorm:"size:20" json:"whatsapp_number"`
	AlternativeContact     string `gorm:"size:20" json:"alternative_contact"`
	PreferredContactMethod string `gorm:"size:20;not null;default:'email'" json:"preferred_contact_method"` // email, phone, whatsapp, any
	BestTimeToReach        string `gorm:"size:200" json:"best_time_to_reach"`

	// Products
	ProductInterests string `gorm:"type:text;not null" json:"product_interests"`
	TissueVariant    string `gorm:"size:200" json:"tissue_variant"`
	TissueFragrance  string `gorm:"size:200" json:"tissue_fragrance"`
	TissueQuantity   string `gorm:"size:200" json:"tissue_quantity"`
	DhoopPackSize    string `gorm:"size:200" json:"dhoop_pack_size"`
	DhoopFragrance   string `gorm:"size:200" json:"dhoop_fragrance"`
	DhoopQuantity    string `gorm:"size:200" json:"dhoop_quantity"`

	// Order
	OrderFrequency   string `gorm:"size:50" json:"order_frequency"`
	Timeline         string `gorm:"size:100" json:"timeline"`
	SampleOrderFirst bool   `gorm:"not null;default:false" json:"sample_order_first"`

	// Branding
	CustomBrandingRequired bool    `gorm:"not null;default:false" json:"custom_branding_required"`
	BrandName              string  `gorm:"size:200" json:"brand_name"`
	HasLogo                bool    `gorm:"not null;default:false" json:"has_logo"`
	BrandingRequirements   string  `gorm:"type:text" json:"branding_requirements"`
	LogoKey                *string `gorm:"size:500" json:"logo_key,omitempty"`

	// Delivery
	DeliveryCity                string `gorm:"size:100;not null" json:"delivery_city"`
	DeliveryState               string `gorm:"size:100;not null" json:"delivery_state"`
	DeliveryPin                 string `gorm:"size:10;not null" json:"delivery_pin"`
	DeliveryAddressType         string `gorm:"size:100" json:"delivery_address_type"`
	SpecialDeliveryRequirements string `gorm:"type:text" json:"special_delivery_requirements"`

	// Budget
	BudgetRange            string `gorm:"size:100" json:"budget_range"`
	PaymentTermsPreference string `gorm:"size:200" json:"payment_terms_preference"`

	// Additional
	HowHeardAboutUs      string `gorm:"size:200" json:"how_heard_about_us"`
	SpecificRequirements string `gorm:"type:text" json:"specific_requirements"`
	WantsCallDiscussion  bool   `gorm:"not null;default:false" json:"wants_call_discussion"`

	// Consent
	AgreedToContact bool `gorm:"not null" json:"agreed_to_contact"`
	WantsUpdates    bool `gorm:"not null;default:false" json:"wants_updates"`

	Status      QuoteStatus    `gorm:"size:20;not null;default:'new';index" json:"status"`
	ReferenceID string         `gorm:"size:20;not null;uniqueIndex" json:"reference_id"`
	AdminNotes  string         `gorm:"type:text" json:"admin_notes"`
	Replies     []InquiryReply `gorm:"foreignKey:QuoteRequestID" json:"replies,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the QuoteRequest model
func (QuoteRequest) TableName() string {
	return "quote_requests"
}

// BeforeCreate assigns the reference ID on first save
func (q *QuoteRequest) BeforeCreate(tx *gorm.DB) error {
	if q.ReferenceID != "" {
		return nil
	}
	id, err := NewReferenceID()
	if err != nil {
		return err
	}
	q.ReferenceID = id
	return nil
}

// NewReferenceID returns "QR" followed by 8 random upper-case alphanumerics
func NewReferenceID() (string, error) {
	max := big.NewInt(int64(len(referenceIDCharset)))
	buf := make([]byte, ReferenceIDLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = referenceIDCharset[n.Int64()]
	}
	return ReferenceIDPrefix + string(buf), nil
}
