package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/services"
)

// MsgSettingsUpdated confirms a site settings update
const MsgSettingsUpdated = "Site settings updated successfully!"

// SettingsController serves the staff site settings editor
type SettingsController struct {
	settings *services.SettingsService
	mailer   services.Mailer
}

// NewSettingsController creates a settings controller
func NewSettingsController(settings *services.SettingsService, mailer services.Mailer) *SettingsController {
	return &SettingsController{settings: settings, mailer: mailer}
}

// GetSettings handles GET /api/v1/staff/settings. The SMTP password is never returned.
func (sc *SettingsController) GetSettings(c *gin.Context) {
	settings, err := sc.settings.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// UpdateSettings handles PUT /api/v1/staff/settings. Only fields present in
// the body are changed.
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var patch services.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	settings, err := sc.settings.Update(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": MsgSettingsUpdated,
		"data":    settings,
	})
}

// TestEmail handles POST /api/v1/staff/settings/test-email
func (sc *SettingsController) TestEmail(c *gin.Context) {
	ok, message, err := sc.settings.TestEmailConfiguration(c.Request.Context(), sc.mailer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": ok,
		"message": message,
	})
}
