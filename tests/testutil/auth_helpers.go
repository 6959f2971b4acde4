package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/middleware"
)

// TestIssuer is the issuer placed in mock claims
const TestIssuer = "https://test.auth0.com/"

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, email string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  TestIssuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Email: email,
		},
	}
}

// SetMockStaffContext sets up a mock authenticated staff context for testing
func SetMockStaffContext(c *gin.Context, subject, email string, scopes []string) {
	c.Set(middleware.ContextStaffID, subject)
	c.Set(middleware.ContextClaims, MockValidatedClaims(subject, email, scopes))
}

// MockStaffAuth stands in for EnsureValidToken in router tests
func MockStaffAuth(subject, email string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockStaffContext(c, subject, email, scopes)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
