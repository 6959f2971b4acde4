package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/nageshcare/nageshcare-api/config"
	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/services"
)

// Context keys set by the auth middleware
const (
	ContextStaffID     = "staff_id"
	ContextClaims      = "validated_claims"
	ContextAccessToken = "access_token"
	ContextStaffEmail  = logging.ContextStaffEmail
)

// CustomClaims contains the custom data we read from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate is required by validator.CustomClaims; there is nothing extra to check.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == expectedScope {
			return true
		}
	}
	return false
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logging.LogKV("warn", "jwt validation failed", map[string]interface{}{
			"path":  r.URL.Path,
			"error": err.Error(),
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`))
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set(ContextStaffID, token.RegisteredClaims.Subject)
			c.Set(ContextClaims, token)
			if raw, err := jwtmiddleware.AuthHeaderTokenExtractor(r); err == nil {
				c.Set(ContextAccessToken, raw)
			}
			c.Request = r
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}, nil
}

// GetStaffID extracts the token subject from the Gin context
func GetStaffID(c *gin.Context) (string, error) {
	staffID, exists := c.Get(ContextStaffID)
	if !exists {
		return "", &AuthError{Code: "MISSING_STAFF_ID", Message: "Staff ID not found in context"}
	}

	staffIDStr, ok := staffID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_STAFF_ID", Message: "Staff ID is not a string"}
	}

	return staffIDStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CLAIMS",
					"message": "Could not retrieve token claims",
				},
			})
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_SCOPE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}

// ProfileLookup resolves a staff profile from the identity provider
type ProfileLookup interface {
	Profile(ctx context.Context, sub, accessToken string) (*services.StaffProfile, error)
}

// StaffIdentity stores the label recorded as replied_by. Token claims are used
// when they carry an email or name; otherwise lookup is consulted, and the
// subject is the last resort. lookup may be nil.
func StaffIdentity(lookup ProfileLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, _ := GetStaffID(c)
		profile := services.StaffProfile{Sub: sub}

		if claims, err := GetClaims(c); err == nil {
			if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
				profile.Email = custom.Email
				profile.Name = custom.Name
			}
		}

		if profile.Email == "" && profile.Name == "" && lookup != nil {
			token := c.GetString(ContextAccessToken)
			if token != "" && sub != "" {
				resolved, err := lookup.Profile(c.Request.Context(), sub, token)
				if err != nil {
					logging.LogKV("warn", "staff profile lookup failed", map[string]interface{}{
						"staff_id": sub,
						"error":    err.Error(),
					})
				} else {
					profile = *resolved
				}
			}
		}

		if label := profile.Label(); label != "" {
			c.Set(ContextStaffEmail, label)
		}
		c.Next()
	}
}

// GetStaffIdentity returns the label set by StaffIdentity, or "" when absent
func GetStaffIdentity(c *gin.Context) string {
	return c.GetString(ContextStaffEmail)
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
