package services

import (
	"context"
	"errors"
	"strings"

	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/models"
	"gorm.io/gorm"
)

const (
	MsgCategoryNotFound = "Category not found"
	MsgProductNotFound  = "Product not found"
	// FeaturedLimit is the number of featured products shown on the home page
	FeaturedLimit = 6
)

// CatalogService serves the public product catalog
type CatalogService struct {
	db    *gorm.DB
	store FileStore
}

// NewCatalogService creates a catalog service
func NewCatalogService(db *gorm.DB, store FileStore) *CatalogService {
	return &CatalogService{db: db, store: store}
}

// ProductFilter narrows the public product list
type ProductFilter struct {
	CategorySlug string
	Featured     *bool
	ComingSoon   *bool
	Search       string
}

// ListCategories returns active categories ordered by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&categories).Error; err != nil {
		return nil, newDatabaseError("Failed to retrieve categories", err)
	}
	for i := range categories {
		categories[i].IconURL = s.url(ctx, categories[i].IconKey)
	}
	return categories, nil
}

// GetCategory returns an active category and its active products
func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*models.Category, []models.Product, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, NewNotFoundError(MsgCategoryNotFound)
	}
	if err != nil {
		return nil, nil, newDatabaseError("Failed to retrieve category", err)
	}
	category.IconURL = s.url(ctx, category.IconKey)

	products, err := s.ListProducts(ctx, ProductFilter{CategorySlug: slug})
	if err != nil {
		return nil, nil, err
	}
	return &category, products, nil
}

// ListProducts returns active products, featured first then newest
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", imagesInDisplayOrder).
		Where("products.is_active = ?", true)

	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ? AND categories.is_active = ?", filter.CategorySlug, true)
	}
	if filter.Featured != nil {
		q = q.Where("products.is_featured = ?", *filter.Featured)
	}
	if filter.ComingSoon != nil {
		q = q.Where("products.is_coming_soon = ?", *filter.ComingSoon)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	products := []models.Product{}
	err := q.Order("products.is_featured DESC").
		Order("products.created_at DESC").
		Order("products.id DESC").
		Find(&products).Error
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve products", err)
	}
	for i := range products {
		s.resolveImages(ctx, products[i].Images)
	}
	return products, nil
}

// FeaturedProducts returns up to limit active featured products
func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	featured := true
	products, err := s.ListProducts(ctx, ProductFilter{Featured: &featured})
	if err != nil {
		return nil, err
	}
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// GetProduct returns an active product with its category, images, variants and fragrances
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", imagesInDisplayOrder).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order").Order("id") }).
		Preload("Fragrances", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order").Order("name") }).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError(MsgProductNotFound)
	}
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve product", err)
	}
	s.resolveImages(ctx, product.Images)
	return &product, nil
}

func imagesInDisplayOrder(db *gorm.DB) *gorm.DB {
	return db.Order("is_primary DESC").Order("sort_order").Order("id")
}

func (s *CatalogService) resolveImages(ctx context.Context, images []models.ProductImage) {
	for i := range images {
		images[i].ImageURL = s.url(ctx, &images[i].ImageKey)
	}
}

// url resolves a blob key, leaving the URL empty when it cannot be built
func (s *CatalogService) url(ctx context.Context, key *string) string {
	if key == nil || *key == "" {
		return ""
	}
	u, err := s.store.URL(ctx, *key)
	if err != nil {
		logging.LogKV("warn", "failed to resolve media URL", map[string]interface{}{
			"key":   *key,
			"error": err.Error(),
		})
		return ""
	}
	return u
}
