package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/warsztat/workshop-api/services"
)

// PartRequest is the body for adding or updating a part
type PartRequest struct {
	Name         string          `json:"name"`
	SerialNumber string          `json:"serial_number"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

func (r PartRequest) input() services.PartInput {
	return services.PartInput{
		Name:         r.Name,
		SerialNumber: r.SerialNumber,
		Quantity:     r.Quantity,
		Price:        r.Price,
	}
}

// ListParts returns the parts used on an order
// GET /api/v1/orders/:id/parts
func ListParts(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	parts, err := services.GetPartService().ListParts(c.Request.Context(), id, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": parts})
}

// AddPart records a part used on an order
// POST /api/v1/orders/:id/parts
func AddPart(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req PartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	part, err := services.GetPartService().AddPart(c.Request.Context(), id, orderID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": part})
}

// UpdatePart changes a part on an order
// PUT /api/v1/orders/:id/parts/:partId
func UpdatePart(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	partID, ok := idParam(c, "partId")
	if !ok {
		return
	}

	var req PartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	part, err := services.GetPartService().UpdatePart(c.Request.Context(), id, orderID, partID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": part})
}

// DeletePart removes a part from an order
// DELETE /api/v1/orders/:id/parts/:partId
func DeletePart(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	partID, ok := idParam(c, "partId")
	if !ok {
		return
	}

	if err := services.GetPartService().DeletePart(c.Request.Context(), id, orderID, partID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": partID, "deleted": true}})
}
