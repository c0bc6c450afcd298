package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warsztat/workshop-api/services"
)

// GetAvailableEmployees lists mechanics free for the whole range
// GET /api/v1/employees/available?start_date=...&end_date=...
func GetAvailableEmployees(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var query DateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidationError(c, err)
		return
	}

	employees, err := services.GetReservationService().AvailableEmployees(c.Request.Context(), id, query.StartDate, query.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": employees})
}

// GetEmployeeReservations lists the open orders of one employee
// GET /api/v1/employees/:id/reservations
func GetEmployeeReservations(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	employeeID, ok := idParam(c, "id")
	if !ok {
		return
	}

	orders, err := services.GetReservationService().EmployeeReservations(c.Request.Context(), id, employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}
