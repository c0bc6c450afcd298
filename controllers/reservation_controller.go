package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warsztat/workshop-api/services"
)

// FinalizeReservationRequest is the body of POST /reservations/finalize
type FinalizeReservationRequest struct {
	VehicleID  uint      `json:"vehicle_id" binding:"required"`
	ServiceIDs []uint    `json:"service_ids" binding:"required,min=1"`
	StartDate  time.Time `json:"start_date" binding:"required"`
}

// DateRangeQuery reads an RFC 3339 range from the query string
type DateRangeQuery struct {
	StartDate time.Time `form:"start_date" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   time.Time `form:"end_date" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ListServices returns the service catalog
// GET /api/v1/services
func ListServices(c *gin.Context) {
	catalog, err := services.GetReservationService().ListServices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": catalog})
}

// GetOccupiedSlots returns the busy windows overlapping a date range
// GET /api/v1/reservations/occupied-slots?start_date=...&end_date=...
func GetOccupiedSlots(c *gin.Context) {
	var query DateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidationError(c, err)
		return
	}

	slots, err := services.GetReservationService().OccupiedSlots(c.Request.Context(), query.StartDate, query.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": slots})
}

// GetReservationInit returns what a client needs to start booking
// GET /api/v1/reservations/init
func GetReservationInit(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	data, err := services.GetReservationService().ReservationInit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// FinalizeReservation books a repair for one of the caller's vehicles
// POST /api/v1/reservations/finalize
func FinalizeReservation(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req FinalizeReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := services.GetReservationService().FinalizeReservation(c.Request.Context(), id, services.FinalizeRequest{
		VehicleID:      req.VehicleID,
		ServiceIDs:     req.ServiceIDs,
		PreferredStart: req.StartDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": result})
}

// GetClientReservations lists the caller's own reservations
// GET /api/v1/reservations/client
func GetClientReservations(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	orders, err := services.GetReservationService().GetClientReservations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// GetReservation returns a single reservation
// GET /api/v1/reservations/:id
func GetReservation(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := services.GetReservationService().GetOrder(c.Request.Context(), id, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// DeleteReservation cancels a reservation
// DELETE /api/v1/reservations/:id
func DeleteReservation(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetReservationService().DeleteOrder(c.Request.Context(), id, orderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": orderID, "deleted": true}})
}
