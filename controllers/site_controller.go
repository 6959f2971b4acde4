package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/services"
)

// SiteController serves the public site settings and page content
type SiteController struct {
	settings *services.SettingsService
	content  *services.ContentService
}

// NewSiteController creates a site controller
func NewSiteController(settings *services.SettingsService, content *services.ContentService) *SiteController {
	return &SiteController{settings: settings, content: content}
}

// GetSite handles GET /api/v1/site - business details without SMTP credentials
func (sc *SiteController) GetSite(c *gin.Context) {
	settings, err := sc.settings.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.PublicView(settings),
	})
}

// GetPage handles GET /api/v1/pages/:page
func (sc *SiteController) GetPage(c *gin.Context) {
	content, err := sc.content.Page(c.Request.Context(), c.Param("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    content,
	})
}
