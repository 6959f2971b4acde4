package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/services"
)

// statusFor maps a service error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case services.ErrCodeValidation:
		return http.StatusBadRequest
	case services.ErrCodeNotFound:
		return http.StatusNotFound
	case services.ErrCodeMailNotConfigured:
		return http.StatusServiceUnavailable
	case services.ErrCodeMailSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func asServiceError(err error) *services.ServiceError {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = &services.ServiceError{Code: services.ErrCodeDatabase, Message: "Internal server error", Err: err}
	}
	return svcErr
}

// errorBody is the "error" object of the envelope
func errorBody(svcErr *services.ServiceError) gin.H {
	body := gin.H{
		"code":    svcErr.Code,
		"message": svcErr.Message,
	}
	if len(svcErr.Fields) > 0 {
		body["fields"] = svcErr.Fields
	}
	return body
}

// respondError writes err in the standard error envelope
func respondError(c *gin.Context, err error) {
	svcErr := asServiceError(err)

	status := statusFor(svcErr.Code)
	if status >= http.StatusInternalServerError {
		logging.LogKV("error", "request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"code":  svcErr.Code,
			"error": svcErr.Error(),
		})
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   errorBody(svcErr),
	})
}

// respondBindError reports a request body that could not be decoded
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    services.ErrCodeValidation,
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid " + name,
			},
		})
		return 0, false
	}
	return uint(id), true
}

// optionalBool parses a true/false query value; anything else means unset
func optionalBool(value string) *bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &b
}

// listParams reads search, status and paging query parameters
func listParams(c *gin.Context) services.ListParams {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return services.ListParams{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}
}
