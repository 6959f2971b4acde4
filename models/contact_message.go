package models

import (
	"time"
)

// Contact message subjects
const (
	SubjectGeneral        = "general"
	SubjectProductInfo    = "product_info"
	SubjectBulkOrder      = "bulk_order"
	SubjectCustomBranding = "custom_branding"
	SubjectPartnership    = "partnership"
	SubjectComplaint      = "complaint"
	SubjectOther          = "other"
)

// ContactMessage is a general inquiry submitted through the public contact form
type ContactMessage struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	Name                   string         `gorm:"size:200;not null" json:"name"`
	Email                  string         `gorm:"size:254;not null;index" json:"email"`
	Phone                  string         `gorm:"size:20;not null" json:"phone"`
	BusinessName           string         `gorm:"size:200" json:"business_name"`
	Subject                string         `gorm:"size:50;not null;index" json:"subject"`
	ProductInterest        string         `gorm:"size:200" json:"product_interest"`
	Message                string         `gorm:"type:text;not null" json:"message"`
	PreferredContactMethod string         `gorm:"size:20;not null;default:'email'" json:"preferred_contact_method"` // email, phone, whatsapp
	BestTimeToCall         string         `gorm:"size:100" json:"best_time_to_call"`
	Status                 ContactStatus  `gorm:"size:20;not null;default:'new';index" json:"status"`
	IsRead                 bool           `gorm:"not null;default:false;index" json:"is_read"`
	AdminNotes             string         `gorm:"type:text" json:"admin_notes"`
	Replies                []InquiryReply `gorm:"foreignKey:ContactMessageID" json:"replies,omitempty"`
	CreatedAt              time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the ContactMessage model
func (ContactMessage) TableName() string {
	return "contact_messages"
}
