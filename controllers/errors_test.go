package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warsztat/workshop-api/scheduling"
	"github.com/warsztat/workshop-api/utils"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"order not found", scheduling.ErrOrderNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"vehicle not owned", scheduling.ErrVehicleNotOwned, http.StatusForbidden, "UNAUTHORIZED"},
		{"not assigned", errors.Wrap(scheduling.ErrNotAssignedEmployee, "order 4"), http.StatusForbidden, "UNAUTHORIZED"},
		{"capacity", scheduling.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"employee busy", scheduling.ErrEmployeeUnavailable, http.StatusConflict, "EMPLOYEE_UNAVAILABLE"},
		{"services", scheduling.ErrInvalidServiceSelection, http.StatusBadRequest, "INVALID_SERVICE_SELECTION"},
		{"payment", scheduling.ErrInvalidPaymentStatus, http.StatusBadRequest, "INVALID_PAYMENT_STATUS"},
		{"status", scheduling.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
		{"already paid", scheduling.ErrAlreadyPaid, http.StatusConflict, "ALREADY_PAID"},
		{"document", scheduling.ErrDocumentGenerationFailed, http.StatusBadGateway, "DOCUMENT_GENERATION_FAILED"},
		{"transition", scheduling.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{"input", scheduling.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"registered", scheduling.ErrAlreadyRegistered, http.StatusConflict, "ALREADY_REGISTERED"},
		{"vehicle exists", scheduling.ErrVehicleExists, http.StatusConflict, "CONFLICT"},
		{"upload", &utils.FileUploadError{Code: "INVALID_FILE_TYPE", Message: "PNG only"}, http.StatusBadRequest, "INVALID_FILE_TYPE"},
		{"anything else", errors.New("connection reset"), http.StatusInternalServerError, "DATABASE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/fail", func(c *gin.Context) {
				respondError(c, tt.err)
			})

			req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, false, response["success"])
			assert.Equal(t, tt.expectedCode, errorCode(response))
		})
	}
}

func TestIDParam(t *testing.T) {
	router := setupTestRouter()
	router.GET("/orders/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": id})
	})

	for _, path := range []string{"/orders/abc", "/orders/0", "/orders/-3"} {
		status, response := performRequest(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, "INVALID_ID", errorCode(response))
	}

	status, response := performRequest(t, router, http.MethodGet, "/orders/42", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(42), response["data"])
}

func TestHandlersRequireIdentity(t *testing.T) {
	router := setupTestRouter()
	router.GET("/vehicles", ListVehicles)

	status, response := performRequest(t, router, http.MethodGet, "/vehicles", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(response))
}
