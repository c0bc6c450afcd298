package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warsztat/workshop-api/services"
)

// ProtocolDescriptionRequest is the body of POST /orders/:id/protocol/description
type ProtocolDescriptionRequest struct {
	Description string `json:"description" binding:"required"`
}

// GetProtocol returns the handover protocol of an order
// GET /api/v1/orders/:id/protocol
func GetProtocol(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	protocol, err := services.GetProtocolService().GetProtocol(c.Request.Context(), id, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": protocol})
}

// SetProtocolDescription writes the condition notes of a handover protocol
// POST /api/v1/orders/:id/protocol/description
func SetProtocolDescription(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ProtocolDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	protocol, err := services.GetProtocolService().SetDescription(c.Request.Context(), id, orderID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": protocol})
}

// AddProtocolPhoto attaches a PNG photo to a handover protocol
// POST /api/v1/orders/:id/protocol/photos (multipart field "photo")
func AddProtocolPhoto(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "A photo file is required"))
		return
	}

	photo, err := services.GetProtocolService().AddPhoto(c.Request.Context(), id, orderID, fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": photo})
}

// GenerateProtocolDocument renders the protocol and stores its document key
// POST /api/v1/orders/:id/protocol/document
func GenerateProtocolDocument(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	key, err := services.GetProtocolService().GenerateDocument(c.Request.Context(), id, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"protocol_key": key}})
}
