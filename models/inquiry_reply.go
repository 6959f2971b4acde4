package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// InquiryType tags which parent record an InquiryReply belongs to
type InquiryType string

const (
	InquiryTypeContact InquiryType = "contact"
	InquiryTypeQuote   InquiryType = "quote"
)

// Valid reports whether t names a reply-capable inquiry type
func (t InquiryType) Valid() bool {
	return t == InquiryTypeContact || t == InquiryTypeQuote
}

// ErrReplyParent is returned when a reply does not reference exactly one parent matching its type
var ErrReplyParent = errors.New("inquiry reply must reference exactly one parent matching its inquiry type")

// InquiryReply records one outbound email attempt and its outcome
type InquiryReply struct {
	ID                    uint        `gorm:"primaryKey" json:"id"`
	InquiryType           InquiryType `gorm:"size:20;not null;index" json:"inquiry_type"`
	ContactMessageID      *uint       `gorm:"index" json:"contact_message_id,omitempty"`
	QuoteRequestID        *uint       `gorm:"index" json:"quote_request_id,omitempty"`
	ReplyFrom             string      `gorm:"size:254;not null" json:"reply_from"`
	ReplyTo               string      `gorm:"size:254;not null" json:"reply_to"`
	ReplySubject          string      `gorm:"size:300;not null" json:"reply_subject"`
	ReplyMessage          string      `gorm:"type:text;not null" json:"reply_message"`
	AttachmentKey         *string     `gorm:"size:500" json:"-"`
	AttachmentName        string      `gorm:"size:255" json:"attachment_name,omitempty"`
	RepliedBy             string      `gorm:"size:200" json:"replied_by"`
	RepliedAt             time.Time   `gorm:"autoCreateTime;index" json:"replied_at"`
	EmailSentSuccessfully bool        `gorm:"not null;default:false" json:"email_sent_successfully"`
	ErrorMessage          string      `gorm:"type:text" json:"error_message,omitempty"`
}

// TableName specifies the table name for the InquiryReply model
func (InquiryReply) TableName() string {
	return "inquiry_replies"
}

// HasAttachment reports whether a file was stored with the reply
func (r *InquiryReply) HasAttachment() bool {
	return r.AttachmentKey != nil && *r.AttachmentKey != ""
}

// BeforeSave enforces the single-parent invariant
func (r *InquiryReply) BeforeSave(tx *gorm.DB) error {
	switch r.InquiryType {
	case InquiryTypeContact:
		if r.ContactMessageID == nil || r.QuoteRequestID != nil {
			return ErrReplyParent
		}
	case InquiryTypeQuote:
		if r.QuoteRequestID == nil || r.ContactMessageID != nil {
			return ErrReplyParent
		}
	default:
		return ErrReplyParent
	}
	return nil
}
