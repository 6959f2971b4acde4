package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/config"
	"github.com/nageshcare/nageshcare-api/controllers"
	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/metrics"
	"github.com/nageshcare/nageshcare-api/middleware"
	"github.com/nageshcare/nageshcare-api/services"
	"gorm.io/gorm"
)

// App holds what the router is built from
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Store  services.FileStore
	Mailer services.Mailer

	// StaffAuth replaces JWT validation when set (tests)
	StaffAuth gin.HandlerFunc
	// Profiles resolves staff labels when the token carries no email or name
	Profiles middleware.ProfileLookup
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Disposition"},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// staffAuth returns the middleware chain guarding /staff, or nil when no
// issuer is configured
func (app *App) staffAuth() ([]gin.HandlerFunc, error) {
	scope := app.Config.StaffScope
	if app.StaffAuth != nil {
		return []gin.HandlerFunc{app.StaffAuth, middleware.RequireScope(scope), middleware.StaffIdentity(app.Profiles)}, nil
	}
	if !app.Config.StaffAuthEnabled() {
		return nil, nil
	}
	validate, err := middleware.EnsureValidToken(app.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to set up staff authentication: %w", err)
	}
	return []gin.HandlerFunc{validate, middleware.RequireScope(scope), middleware.StaffIdentity(app.Profiles)}, nil
}

// NewRouter builds the HTTP API
func NewRouter(app *App) (*gin.Engine, error) {
	settings := services.NewSettingsService(app.DB)
	inquiries := services.NewInquiryService(app.DB, settings, app.Mailer, app.Store)
	catalog := services.NewCatalogService(app.DB, app.Store)
	content := services.NewContentService(app.DB, catalog)
	images := services.NewProductImageService(app.DB, app.Store)

	site := controllers.NewSiteController(settings, content)
	public := controllers.NewInquiryController(inquiries)
	products := controllers.NewCatalogController(catalog, images, content)
	staff := controllers.NewStaffInquiryController(inquiries)
	siteSettings := controllers.NewSettingsController(settings, app.Mailer)

	router := gin.New()
	router.Use(gin.Recovery(), logging.JSONLogger(), metrics.Middleware(), cors.New(corsConfig(app.Config.CORSAllowedOrigins)))

	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)

		v1.GET("/site", site.GetSite)
		v1.GET("/pages/:page", site.GetPage)

		v1.GET("/categories", products.ListCategories)
		v1.GET("/categories/:slug", products.GetCategory)
		v1.GET("/products", products.ListProducts)
		v1.GET("/products/:slug", products.GetProduct)

		v1.POST("/contact", public.SubmitContact)
		v1.POST("/quote-requests", public.SubmitQuoteRequest)
		v1.POST("/inquiries", public.SubmitProductInquiry)

		if _, ok := app.Store.(*services.LocalFileStore); ok {
			v1.GET("/uploads/*filepath", controllers.NewUploadController(app.Store).GetUpload)
		}
	}

	auth, err := app.staffAuth()
	if err != nil {
		return nil, err
	}
	if auth == nil {
		logging.LogKV("warn", "AUTH0_DOMAIN or AUTH0_AUDIENCE not set, staff API disabled", nil)
		return router, nil
	}

	sg := v1.Group("/staff", auth...)
	{
		sg.GET("/dashboard", staff.Dashboard)

		sg.GET("/contact-messages", staff.ListContactMessages)
		sg.GET("/contact-messages/export", staff.ExportContactMessages)
		sg.POST("/contact-messages/bulk", staff.BulkContactMessages)
		sg.GET("/contact-messages/:id", staff.GetContactMessage)
		sg.POST("/contact-messages/:id", staff.PostContactMessage)
		sg.DELETE("/contact-messages/:id", staff.DeleteContactMessage)

		sg.GET("/quote-requests", staff.ListQuoteRequests)
		sg.GET("/quote-requests/export", staff.ExportQuoteRequests)
		sg.POST("/quote-requests/bulk", staff.BulkQuoteRequests)
		sg.GET("/quote-requests/:id", staff.GetQuoteRequest)
		sg.POST("/quote-requests/:id", staff.PostQuoteRequest)
		sg.DELETE("/quote-requests/:id", staff.DeleteQuoteRequest)
		sg.GET("/quote-requests/:id/logo", staff.GetQuoteLogo)

		sg.GET("/inquiries", staff.ListInquiries)
		sg.POST("/inquiries/bulk", staff.BulkInquiries)
		sg.GET("/inquiries/:id", staff.GetInquiry)
		sg.POST("/inquiries/:id", staff.PostInquiry)

		sg.GET("/replies/:id/attachment", staff.DownloadReplyAttachment)

		sg.GET("/settings", siteSettings.GetSettings)
		sg.PUT("/settings", siteSettings.UpdateSettings)
		sg.POST("/settings/test-email", siteSettings.TestEmail)

		sg.POST("/products/:id/images", products.UploadProductImage)
		sg.POST("/product-images/:id/primary", products.SetPrimaryImage)
		sg.DELETE("/product-images/:id", products.DeleteProductImage)
	}

	return router, nil
}
