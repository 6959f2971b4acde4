package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Category groups products on the catalog page
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IconKey     *string   `gorm:"size:500" json:"-"`
	IconURL     string    `gorm:"-" json:"icon_url,omitempty"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate derives the slug from the name when none is set
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

// Product is a wholesale catalog entry
type Product struct {
	ID                   uint              `gorm:"primaryKey" json:"id"`
	Name                 string            `gorm:"size:300;not null" json:"name"`
	Slug                 string            `gorm:"size:300;not null;uniqueIndex" json:"slug"`
	CategoryID           uint              `gorm:"not null;index" json:"category_id"`
	Category             *Category         `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Tagline              string            `gorm:"size:200" json:"tagline"`
	ShortDescription     string            `gorm:"type:text;not null" json:"short_description"`
	FullDescription      string            `gorm:"type:text;not null" json:"full_description"`
	Features             string            `gorm:"type:text" json:"-"` // one per line
	FeatureList          []string          `gorm:"-" json:"features"`
	BrandName            string            `gorm:"size:200" json:"brand_name"`
	MinimumOrderQuantity string            `gorm:"size:200" json:"minimum_order_quantity"`
	IsFeatured           bool              `gorm:"not null;default:false;index" json:"is_featured"`
	IsComingSoon         bool              `gorm:"not null;default:false" json:"is_coming_soon"`
	IsActive             bool              `gorm:"not null;index" json:"is_active"`
	MetaTitle            string            `gorm:"size:200" json:"meta_title"`
	MetaDescription      string            `gorm:"size:300" json:"meta_description"`
	MetaKeywords         string            `gorm:"size:500" json:"meta_keywords"`
	Images               []ProductImage    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Variants             []ProductVariant  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Fragrances           []FragranceOption `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"fragrances,omitempty"`
	CreatedAt            time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// BeforeCreate derives the slug from the name when none is set
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

// AfterFind expands the newline-separated features
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.FeatureList = SplitLines(p.Features)
	return nil
}

// PrimaryImage returns the primary image, else the first loaded image, else nil
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// ProductImage is one photo of a product
type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	ImageKey  string `gorm:"size:500;not null" json:"image_key"`
	ImageURL  string `gorm:"-" json:"image_url,omitempty"` // computed from the blob store
	IsPrimary bool   `gorm:"not null;default:false" json:"is_primary"`
	AltText   string `gorm:"size:200" json:"alt_text"`
	Order     int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name for the ProductImage model
func (ProductImage) TableName() string {
	return "product_images"
}

// BeforeSave keeps at most one primary image per product
func (i *ProductImage) BeforeSave(tx *gorm.DB) error {
	if !i.IsPrimary {
		return nil
	}
	q := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
		Model(&ProductImage{}).
		Where("product_id = ? AND is_primary = ?", i.ProductID, true)
	if i.ID != 0 {
		q = q.Where("id <> ?", i.ID)
	}
	return q.Update("is_primary", false).Error
}

// ProductVariant is a pack size or packaging option
type ProductVariant struct {
	ID                uint     `gorm:"primaryKey" json:"id"`
	ProductID         uint     `gorm:"not null;index" json:"product_id"`
	VariantName       string   `gorm:"size:200;not null" json:"variant_name"`
	Description       string   `gorm:"type:text" json:"description"`
	Specifications    string   `gorm:"type:text" json:"-"` // one per line
	SpecificationList []string `gorm:"-" json:"specifications"`
	Order             int      `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

// AfterFind expands the newline-separated specifications
func (v *ProductVariant) AfterFind(tx *gorm.DB) error {
	v.SpecificationList = SplitLines(v.Specifications)
	return nil
}

// FragranceOption is a scent offered for a product
type FragranceOption struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ProductID   uint   `gorm:"not null;index" json:"product_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100" json:"category"`
	Order       int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// TableName specifies the table name for the FragranceOption model
func (FragranceOption) TableName() string {
	return "fragrance_options"
}

// SplitLines returns the trimmed non-empty lines of s
func SplitLines(s string) []string {
	lines := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
