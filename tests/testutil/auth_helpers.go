package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/warsztat/workshop-api/middleware"
	"github.com/warsztat/workshop-api/models"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Role: role,
		},
	}
}

// MockTokenMiddleware simulates EnsureValidToken for a subject and role claim
func MockTokenMiddleware(subject, role string) gin.HandlerFunc {
	return MockScopedTokenMiddleware(subject, role, "")
}

// MockScopedTokenMiddleware is MockTokenMiddleware with a scope claim
func MockScopedTokenMiddleware(subject, role, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := MockValidatedClaims(subject, role)
		claims.CustomClaims.(*middleware.CustomClaims).Scope = scope

		c.Set(middleware.UserIDKey, subject)
		c.Set(middleware.AccessTokenKey, "mock-token")
		c.Set(middleware.ClaimsKey, claims)
		c.Next()
	}
}

// MockIdentityMiddleware places a resolved identity into the context,
// skipping token validation and the database lookup
func MockIdentityMiddleware(id models.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, id)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
