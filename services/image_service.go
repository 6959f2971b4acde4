package services

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/utils"
	"gorm.io/gorm"
)

// MsgImageNotFound is returned when a product image does not exist
const MsgImageNotFound = "Product image not found"

// ImageOptions are the optional attributes of an uploaded product image
type ImageOptions struct {
	IsPrimary bool
	AltText   string
	// Order defaults to the number of images the product already has
	Order *int
}

// ProductImageService stores product photos in the blob store and keeps
// their rows in step
type ProductImageService struct {
	db    *gorm.DB
	store FileStore
	now   func() time.Time
}

// NewProductImageService creates a product image service
func NewProductImageService(db *gorm.DB, store FileStore) *ProductImageService {
	return &ProductImageService{
		db:    db,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates and stores an image for a product. Uploading a primary
// image clears the primary flag on the product's other images.
func (s *ProductImageService) Upload(ctx context.Context, productID uint, fileHeader *multipart.FileHeader, opts ImageOptions) (*models.ProductImage, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Select("id", "slug").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError(MsgProductNotFound)
	}
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve product", err)
	}

	if fileHeader == nil {
		return nil, NewValidationError(map[string]string{"image": "This field is required."})
	}
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, NewValidationError(map[string]string{"image": err.Error()})
	}

	order := 0
	if opts.Order != nil {
		order = *opts.Order
	} else {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
			return nil, newDatabaseError("Failed to count product images", err)
		}
		order = int(count)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, newStorageError("Failed to read uploaded file", err)
	}
	defer src.Close()

	key := utils.ProductImageKey(product.Slug, fileHeader.Filename, s.now())
	if err := s.store.Save(ctx, key, src, utils.ContentType(fileHeader)); err != nil {
		return nil, newStorageError("Failed to upload image", err)
	}

	image := models.ProductImage{
		ProductID: productID,
		ImageKey:  key,
		IsPrimary: opts.IsPrimary,
		AltText:   opts.AltText,
		Order:     order,
	}
	if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
		deleteBlobs(ctx, s.store, []string{key})
		return nil, newDatabaseError("Failed to save product image", err)
	}

	if image.ImageURL, err = s.store.URL(ctx, key); err != nil {
		logging.LogKV("warn", "failed to resolve image URL", map[string]interface{}{"key": key, "error": err.Error()})
	}
	logging.LogKV("info", "product image uploaded", map[string]interface{}{
		"product_id": productID,
		"image_id":   image.ID,
		"key":        key,
	})
	return &image, nil
}

// SetPrimary marks one image as the product's primary image
func (s *ProductImageService) SetPrimary(ctx context.Context, imageID uint) (*models.ProductImage, error) {
	image, err := s.find(ctx, imageID)
	if err != nil {
		return nil, err
	}
	image.IsPrimary = true
	if err := s.db.WithContext(ctx).Save(image).Error; err != nil {
		return nil, newDatabaseError("Failed to update product image", err)
	}
	return image, nil
}

// Delete removes the image row and its blob
func (s *ProductImageService) Delete(ctx context.Context, imageID uint) error {
	image, err := s.find(ctx, imageID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(image).Error; err != nil {
		return newDatabaseError("Failed to delete product image", err)
	}
	deleteBlobs(ctx, s.store, []string{image.ImageKey})
	return nil
}

func (s *ProductImageService) find(ctx context.Context, imageID uint) (*models.ProductImage, error) {
	var image models.ProductImage
	err := s.db.WithContext(ctx).First(&image, imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError(MsgImageNotFound)
	}
	if err != nil {
		return nil, newDatabaseError("Failed to retrieve product image", err)
	}
	return &image, nil
}
