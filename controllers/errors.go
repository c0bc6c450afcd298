package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/middleware"
	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/scheduling"
	"github.com/warsztat/workshop-api/utils"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order, so specific errors come before the
// category they wrap.
var errorMappings = []errorMapping{
	{scheduling.ErrAlreadyRegistered, http.StatusConflict, "ALREADY_REGISTERED"},
	{scheduling.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{scheduling.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{scheduling.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
	{scheduling.ErrEmployeeUnavailable, http.StatusConflict, "EMPLOYEE_UNAVAILABLE"},
	{scheduling.ErrInvalidServiceSelection, http.StatusBadRequest, "INVALID_SERVICE_SELECTION"},
	{scheduling.ErrInvalidPaymentStatus, http.StatusBadRequest, "INVALID_PAYMENT_STATUS"},
	{scheduling.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{scheduling.ErrAlreadyPaid, http.StatusConflict, "ALREADY_PAID"},
	{scheduling.ErrDocumentGenerationFailed, http.StatusBadGateway, "DOCUMENT_GENERATION_FAILED"},
	{scheduling.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{scheduling.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
	{scheduling.ErrDuplicate, http.StatusConflict, "CONFLICT"},
}

func errorBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// respondError maps a service error onto the JSON error envelope
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, errorBody(m.code, err.Error()))
			return
		}
	}

	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		c.JSON(http.StatusBadRequest, errorBody(uploadErr.Code, uploadErr.Message))
		return
	}

	zap.L().Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorBody("DATABASE_ERROR", "Internal error"))
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// idParam reads a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ID", "Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// identity returns the caller resolved by middleware.ResolveIdentity
func identity(c *gin.Context) (models.Identity, bool) {
	id, err := middleware.GetIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Could not resolve the caller"))
		return models.Identity{}, false
	}
	return id, true
}
