package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warsztat/workshop-api/middleware"
	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/services"
)

// ClientProfileRequest carries the profile fields a client may set
type ClientProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

func (r ClientProfileRequest) profile() services.ClientProfile {
	return services.ClientProfile{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	}
}

// RegisterClient creates the client account of the authenticated user.
// The email is taken from Auth0, the body may supply names and a phone.
// POST /api/v1/clients
func RegisterClient(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Could not retrieve user ID from token"))
		return
	}
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Could not retrieve access token"))
		return
	}
	claims, err := middleware.GetClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Could not retrieve token claims"))
		return
	}
	role, err := middleware.ClaimedRole(claims)
	if err != nil {
		c.JSON(http.StatusForbidden, errorBody("INVALID_ROLE", err.Error()))
		return
	}
	if role != models.RoleClient {
		c.JSON(http.StatusForbidden, errorBody("UNAUTHORIZED", "Only clients can register"))
		return
	}

	var req ClientProfileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	client, err := services.GetClientService().Register(c.Request.Context(), auth0ID, accessToken, req.profile())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": client})
}

// GetMyProfile returns the caller's client profile
// GET /api/v1/clients/me
func GetMyProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	client, err := services.GetClientService().GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": client})
}

// UpdateMyProfile changes the caller's profile
// PUT /api/v1/clients/me
func UpdateMyProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req ClientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	client, err := services.GetClientService().UpdateProfile(c.Request.Context(), id, req.profile())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": client})
}

// DeleteMyAccount removes the caller's account
// DELETE /api/v1/clients/me
func DeleteMyAccount(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := services.GetClientService().DeleteAccount(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": id.UserID, "deleted": true}})
}
