package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/scheduling"
	"github.com/warsztat/workshop-api/services"
)

// UpdateOrderRequest is a partial order update. Absent fields are left alone.
type UpdateOrderRequest struct {
	Status        *string `json:"status"`
	Comment       *string `json:"comment"`
	PaymentStatus *int    `json:"payment_status"`
	InvoiceKey    *string `json:"invoice_key"`
}

// AssignEmployeeRequest is the body of POST /orders/:id/assign
type AssignEmployeeRequest struct {
	EmployeeID uint `json:"employee_id" binding:"required"`
}

type listFunc func(ctx context.Context, id models.Identity) ([]services.OrderSummary, error)

func listOrders(c *gin.Context, list listFunc) {
	id, ok := identity(c)
	if !ok {
		return
	}

	orders, err := list(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// GetAllOrders lists every order
// GET /api/v1/orders
func GetAllOrders(c *gin.Context) {
	listOrders(c, services.GetReservationService().GetAll)
}

// GetPendingOrders lists orders waiting for an employee
// GET /api/v1/orders/pending
func GetPendingOrders(c *gin.Context) {
	listOrders(c, services.GetReservationService().GetPending)
}

// GetSchedule lists open work
// GET /api/v1/orders/schedule
func GetSchedule(c *gin.Context) {
	listOrders(c, services.GetReservationService().GetSchedule)
}

// GetHistory lists completed and paid orders
// GET /api/v1/orders/history
func GetHistory(c *gin.Context) {
	listOrders(c, services.GetReservationService().GetHistory)
}

type orderAction func(ctx context.Context, id models.Identity, orderID uint) (*models.Order, error)

func runOrderAction(c *gin.Context, action orderAction) {
	id, ok := identity(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := action(c.Request.Context(), id, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": services.Summarize(*order)})
}

// UpdateOrder applies a partial update to an order
// PATCH /api/v1/orders/:id
func UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runOrderAction(c, func(ctx context.Context, id models.Identity, orderID uint) (*models.Order, error) {
		return services.GetReservationService().UpdateOrder(ctx, id, orderID, scheduling.OrderUpdate{
			Status:        req.Status,
			Comment:       req.Comment,
			PaymentStatus: req.PaymentStatus,
			InvoiceKey:    req.InvoiceKey,
		})
	})
}

// AssignEmployee confirms an order by assigning a mechanic to it
// POST /api/v1/orders/:id/assign
func AssignEmployee(c *gin.Context) {
	var req AssignEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	runOrderAction(c, func(ctx context.Context, id models.Identity, orderID uint) (*models.Order, error) {
		return services.GetReservationService().AssignEmployee(ctx, id, orderID, req.EmployeeID)
	})
}

// CompleteOrder completes an order and issues its invoice
// POST /api/v1/orders/:id/complete
func CompleteOrder(c *gin.Context) {
	runOrderAction(c, services.GetReservationService().CompleteOrder)
}

// MarkOrderPaid records payment for an order
// POST /api/v1/orders/:id/mark-paid
func MarkOrderPaid(c *gin.Context) {
	runOrderAction(c, services.GetReservationService().MarkPaid)
}
