package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/models"
	"github.com/nageshcare/nageshcare-api/services"
)

// CatalogController serves categories and products, and the staff image endpoints
type CatalogController struct {
	catalog *services.CatalogService
	images  *services.ProductImageService
	content *services.ContentService
}

// NewCatalogController creates a catalog controller
func NewCatalogController(catalog *services.CatalogService, images *services.ProductImageService, content *services.ContentService) *CatalogController {
	return &CatalogController{catalog: catalog, images: images, content: content}
}

// ListCategories handles GET /api/v1/categories
func (cc *CatalogController) ListCategories(c *gin.Context) {
	categories, err := cc.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// GetCategory handles GET /api/v1/categories/:slug
func (cc *CatalogController) GetCategory(c *gin.Context) {
	category, products, err := cc.catalog.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"category": category,
			"products": products,
		},
	})
}

// ListProducts handles GET /api/v1/products?category=&featured=&coming_soon=&search=
func (cc *CatalogController) ListProducts(c *gin.Context) {
	filter := services.ProductFilter{
		CategorySlug: c.Query("category"),
		Featured:     optionalBool(c.Query("featured")),
		ComingSoon:   optionalBool(c.Query("coming_soon")),
		Search:       c.Query("search"),
	}
	products, err := cc.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProduct handles GET /api/v1/products/:slug
func (cc *CatalogController) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	product, err := cc.catalog.GetProduct(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	cta, err := cc.content.CallToAction(ctx, models.PageProductDetail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"product":        product,
			"call_to_action": cta,
		},
	})
}

// UploadProductImage handles POST /api/v1/staff/products/:id/images
func (cc *CatalogController) UploadProductImage(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	// A missing file is reported by the service as a field error
	fileHeader, _ := c.FormFile("image")

	opts := services.ImageOptions{
		AltText: c.PostForm("alt_text"),
	}
	if primary := optionalBool(c.PostForm("is_primary")); primary != nil {
		opts.IsPrimary = *primary
	}
	if raw := c.PostForm("order"); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil || order < 0 {
			respondError(c, services.NewValidationError(map[string]string{"order": "Enter a whole number."}))
			return
		}
		opts.Order = &order
	}

	image, err := cc.images.Upload(c.Request.Context(), productID, fileHeader, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Image uploaded successfully!",
		"data":    image,
	})
}

// SetPrimaryImage handles POST /api/v1/staff/product-images/:id/primary
func (cc *CatalogController) SetPrimaryImage(c *gin.Context) {
	imageID, ok := parseID(c, "id")
	if !ok {
		return
	}
	image, err := cc.images.SetPrimary(c.Request.Context(), imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Primary image updated successfully!",
		"data":    image,
	})
}

// DeleteProductImage handles DELETE /api/v1/staff/product-images/:id
func (cc *CatalogController) DeleteProductImage(c *gin.Context) {
	imageID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := cc.images.Delete(c.Request.Context(), imageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Image deleted successfully!",
	})
}
