package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warsztat/workshop-api/services"
)

// VehicleRequest is the body for adding or updating a vehicle
type VehicleRequest struct {
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	ProductionYear     int    `json:"production_year"`
	VIN                string `json:"vin"`
	RegistrationNumber string `json:"registration_number"`
}

func (r VehicleRequest) input() services.VehicleInput {
	return services.VehicleInput{
		Brand:              r.Brand,
		Model:              r.Model,
		ProductionYear:     r.ProductionYear,
		VIN:                r.VIN,
		RegistrationNumber: r.RegistrationNumber,
	}
}

// ListVehicles returns the caller's vehicles
// GET /api/v1/vehicles
func ListVehicles(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	vehicles, err := services.GetVehicleService().ListVehicles(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": vehicles})
}

// AddVehicle registers a vehicle for the caller
// POST /api/v1/vehicles
func AddVehicle(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	vehicle, err := services.GetVehicleService().AddVehicle(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": vehicle})
}

// UpdateVehicle changes the non-empty fields of one of the caller's vehicles
// PUT /api/v1/vehicles/:id
func UpdateVehicle(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	vehicleID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	vehicle, err := services.GetVehicleService().UpdateVehicle(c.Request.Context(), id, vehicleID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": vehicle})
}

// DeleteVehicle removes one of the caller's vehicles
// DELETE /api/v1/vehicles/:id
func DeleteVehicle(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	vehicleID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetVehicleService().DeleteVehicle(c.Request.Context(), id, vehicleID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": vehicleID, "deleted": true}})
}
