package controllers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/services"
	"github.com/nageshcare/nageshcare-api/utils"
)

// publicUploadPrefix is the only key prefix served without authentication.
// Quote logos and reply attachments go through the staff download endpoints.
const publicUploadPrefix = "products/"

// UploadController serves catalog media from the local blob store
type UploadController struct {
	store services.FileStore
}

// NewUploadController creates an upload controller over store
func NewUploadController(store services.FileStore) *UploadController {
	return &UploadController{store: store}
}

// GetUpload handles GET /api/v1/uploads/*filepath - serves catalog images
func (uc *UploadController) GetUpload(c *gin.Context) {
	raw := strings.TrimPrefix(c.Param("filepath"), "/")

	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Filename is required",
			},
		})
		return
	}

	// Security: Prevent directory traversal attacks
	key, err := services.CleanKey(raw)
	if err != nil || key != raw || !strings.HasPrefix(key, publicUploadPrefix) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILENAME",
				"message": "Invalid filename",
			},
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(key))
	if !isImageExtension(ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only " + strings.Join(utils.ImageExtensions, ", ") + " files are supported",
			},
		})
		return
	}

	content, err := uc.store.Open(c.Request.Context(), key)
	if errors.Is(err, services.ErrBlobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_NOT_FOUND",
				"message": "Image not found",
			},
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	defer content.Close()

	c.DataFromReader(http.StatusOK, -1, mime.TypeByExtension(ext), content, map[string]string{
		"Cache-Control": "public, max-age=86400", // Cache for 24 hours
	})
}

func isImageExtension(ext string) bool {
	for _, allowed := range utils.ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
