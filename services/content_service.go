package services

import (
	"context"
	"errors"

	"github.com/nageshcare/nageshcare-api/models"
	"gorm.io/gorm"
)

// MsgPageNotFound is returned for page names outside the content pages
const MsgPageNotFound = "Page not found"

// PageContent is everything a page renders from the CMS
type PageContent struct {
	Page             string               `json:"page"`
	Hero             *models.HeroSection  `json:"hero"`
	Texts            []models.TextContent `json:"texts"`
	CallToAction     *models.CallToAction `json:"call_to_action"`
	FeaturedProducts []models.Product     `json:"featured_products,omitempty"`
}

// ContentService serves page content blocks
type ContentService struct {
	db      *gorm.DB
	catalog *CatalogService
}

// NewContentService creates a content service
func NewContentService(db *gorm.DB, catalog *CatalogService) *ContentService {
	return &ContentService{db: db, catalog: catalog}
}

// Page returns the active hero, text blocks and call-to-action for page.
// The home page also carries the featured products.
func (s *ContentService) Page(ctx context.Context, page string) (*PageContent, error) {
	if !models.IsContentPage(page) {
		return nil, NewNotFoundError(MsgPageNotFound)
	}
	db := s.db.WithContext(ctx)
	content := &PageContent{Page: page, Texts: []models.TextContent{}}

	var hero models.HeroSection
	err := db.Where("page_name = ? AND is_active = ?", page, true).First(&hero).Error
	switch {
	case err == nil:
		hero.BackgroundImageURL = s.catalog.url(ctx, hero.BackgroundImageKey)
		content.Hero = &hero
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, newDatabaseError("Failed to retrieve hero section", err)
	}

	err = db.Where("page_name = ? AND is_active = ?", page, true).
		Order("section_identifier").Order("id").
		Find(&content.Texts).Error
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve text content", err)
	}

	if content.CallToAction, err = s.CallToAction(ctx, page); err != nil {
		return nil, err
	}

	if page == models.PageHome {
		if content.FeaturedProducts, err = s.catalog.FeaturedProducts(ctx, FeaturedLimit); err != nil {
			return nil, err
		}
	}
	return content, nil
}

// CallToAction returns the active call-to-action for page, or nil when none is set
func (s *ContentService) CallToAction(ctx context.Context, page string) (*models.CallToAction, error) {
	var cta models.CallToAction
	err := s.db.WithContext(ctx).Where("page_name = ? AND is_active = ?", page, true).First(&cta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve call to action", err)
	}
	return &cta, nil
}
