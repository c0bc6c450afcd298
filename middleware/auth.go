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
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/config"
	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/scheduling"
)

// Gin context keys
const (
	UserIDKey      = "user_id"
	AccessTokenKey = "access_token"
	ClaimsKey      = "validated_claims"
	IdentityKey    = "identity"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
	// Role is added to the access token by an Auth0 post-login action
	Role string `json:"https://warsztat.app/role"`
}

// Validate does nothing, but we need it to satisfy validator.CustomClaims interface.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope reports whether the space separated scope claim grants scope
func (c CustomClaims) HasScope(scope string) bool {
	for _, granted := range strings.Fields(c.Scope) {
		if granted == scope {
			return true
		}
	}
	return false
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	log := zap.L().Named("auth")

	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		log.Fatal("Failed to parse the issuer url", zap.Error(err))
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
		log.Fatal("Failed to set up the jwt validator", zap.Error(err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Debug("Rejected JWT", zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			log.Warn("Failed to write error response", zap.Error(writeErr))
		}
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

			c.Set(UserIDKey, token.RegisteredClaims.Subject)
			c.Set(ClaimsKey, token)
			// kept for calls to the Auth0 /userinfo endpoint
			c.Set(AccessTokenKey, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetAccessToken extracts the raw bearer token from the Gin context
func GetAccessToken(c *gin.Context) (string, error) {
	token, exists := c.Get(AccessTokenKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_ACCESS_TOKEN", Message: "Access token not found in context"}
	}

	tokenStr, ok := token.(string)
	if !ok || tokenStr == "" {
		return "", &AuthError{Code: "INVALID_ACCESS_TOKEN", Message: "Access token is not a string"}
	}

	return tokenStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// ClaimedRole returns the role carried by the token. Tokens without a role
// claim belong to clients.
func ClaimedRole(claims *validator.ValidatedClaims) (models.Role, error) {
	custom, ok := claims.CustomClaims.(*CustomClaims)
	if !ok || custom.Role == "" {
		return models.RoleClient, nil
	}
	role, ok := models.ParseRole(custom.Role)
	if !ok {
		return "", &AuthError{Code: "INVALID_ROLE", Message: "Unknown role claim"}
	}
	return role, nil
}

// IdentityLookup finds the local account behind an Auth0 subject
type IdentityLookup interface {
	FindClientByAuth0ID(ctx context.Context, auth0ID string) (*models.Client, error)
	FindEmployeeByAuth0ID(ctx context.Context, auth0ID string) (*models.Employee, error)
}

// ResolveIdentity maps the validated token onto a local client or employee
// and stores the resulting models.Identity in the context. The manager role
// is taken from the employee record, never from the token alone.
func ResolveIdentity(lookup IdentityLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := GetUserID(c)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, err)
			return
		}
		claims, err := GetClaims(c)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, err)
			return
		}
		role, err := ClaimedRole(claims)
		if err != nil {
			abortAuth(c, http.StatusForbidden, err)
			return
		}

		ctx := c.Request.Context()
		var identity models.Identity
		if role == models.RoleClient {
			client, err := lookup.FindClientByAuth0ID(ctx, subject)
			if err != nil {
				abortLookup(c, err)
				return
			}
			identity = models.Identity{UserID: client.ID, Role: models.RoleClient}
		} else {
			employee, err := lookup.FindEmployeeByAuth0ID(ctx, subject)
			if err != nil {
				abortLookup(c, err)
				return
			}
			identity = models.Identity{UserID: employee.ID, Role: models.RoleEmployee}
			if employee.IsManager {
				identity.Role = models.RoleManager
			}
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// GetIdentity extracts the resolved caller identity from the Gin context
func GetIdentity(c *gin.Context) (models.Identity, error) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return models.Identity{}, &AuthError{Code: "MISSING_IDENTITY", Message: "Identity not found in context"}
	}

	identity, ok := value.(models.Identity)
	if !ok {
		return models.Identity{}, &AuthError{Code: "INVALID_IDENTITY", Message: "Identity is not in the expected format"}
	}

	return identity, nil
}

// RequireScope rejects tokens whose scope claim lacks scope. An empty
// scope disables the check.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if scope == "" {
			c.Next()
			return
		}
		claims, err := GetClaims(c)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, err)
			return
		}
		custom, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !custom.HasScope(scope) {
			abortAuth(c, http.StatusForbidden, &AuthError{Code: "INSUFFICIENT_SCOPE", Message: "Token lacks the " + scope + " scope"})
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, err error) {
	code := "UNAUTHORIZED"
	var authErr *AuthError
	if errors.As(err, &authErr) {
		code = authErr.Code
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func abortLookup(c *gin.Context, err error) {
	if errors.Is(err, scheduling.ErrNotFound) {
		abortAuth(c, http.StatusForbidden, &AuthError{Code: "USER_NOT_REGISTERED", Message: "No account is registered for this user"})
		return
	}
	zap.L().Error("Identity lookup failed", zap.Error(err))
	abortAuth(c, http.StatusInternalServerError, &AuthError{Code: "DATABASE_ERROR", Message: "Failed to resolve user"})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
