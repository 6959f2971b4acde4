package models

import (
	"time"
)

// Page names that carry editable content
const (
	PageHome          = "home"
	PageAbout         = "about"
	PageContact       = "contact"
	PageProducts      = "products"
	PageRequestQuote  = "request-quote"
	PageProductDetail = "product_detail" // call-to-action only
)

// ContentPages are the pages served by the content endpoint
var ContentPages = []string{PageHome, PageAbout, PageContact, PageProducts, PageRequestQuote}

// IsContentPage reports whether page is served by the content endpoint
func IsContentPage(page string) bool {
	for _, p := range ContentPages {
		if p == page {
			return true
		}
	}
	return false
}

// HeroSection is the banner at the top of a page
type HeroSection struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	PageName           string    `gorm:"size:50;not null;uniqueIndex" json:"page_name"`
	Title              string    `gorm:"size:300;not null" json:"title"`
	Subtitle           string    `gorm:"size:300" json:"subtitle"`
	Description        string    `gorm:"type:text" json:"description"`
	ContentAlignment   string    `gorm:"size:10;not null;default:'left'" json:"content_alignment"` // left, center, right
	Button1Text        string    `gorm:"size:100" json:"button1_text"`
	Button1URL         string    `gorm:"size:200" json:"button1_url"`
	Button2Text        string    `gorm:"size:100" json:"button2_text"`
	Button2URL         string    `gorm:"size:200" json:"button2_url"`
	BackgroundImageKey *string   `gorm:"size:500" json:"-"`
	BackgroundImageURL string    `gorm:"-" json:"background_image_url,omitempty"` // computed from the blob store
	IsActive           bool      `gorm:"not null" json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for the HeroSection model
func (HeroSection) TableName() string {
	return "hero_sections"
}

// TextContent is a free-form text block addressed by page and section
type TextContent struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PageName          string    `gorm:"size:50;not null;index" json:"page_name"`
	SectionIdentifier string    `gorm:"size:100;not null" json:"section_identifier"`
	ContentKey        string    `gorm:"size:100;not null;uniqueIndex" json:"content_key"`
	Title             string    `gorm:"size:300" json:"title"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	IsActive          bool      `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for the TextContent model
func (TextContent) TableName() string {
	return "text_contents"
}

// CallToAction is the closing banner of a page
type CallToAction struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	PageName            string    `gorm:"size:50;not null;uniqueIndex" json:"page_name"`
	Title               string    `gorm:"size:300;not null" json:"title"`
	Description         string    `gorm:"type:text;not null" json:"description"`
	PrimaryButtonText   string    `gorm:"size:100;not null" json:"primary_button_text"`
	PrimaryButtonURL    string    `gorm:"size:200;not null" json:"primary_button_url"`
	SecondaryButtonText string    `gorm:"size:100" json:"secondary_button_text"`
	SecondaryButtonURL  string    `gorm:"size:200" json:"secondary_button_url"`
	BackgroundColor     string    `gorm:"size:50" json:"background_color"`
	IsActive            bool      `gorm:"not null" json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name for the CallToAction model
func (CallToAction) TableName() string {
	return "call_to_actions"
}
