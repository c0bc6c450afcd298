package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/controllers"
	"github.com/warsztat/workshop-api/middleware"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/tests/testutil"
)

const (
	subjectHeader = "X-Test-Subject"
	roleHeader    = "X-Test-Role"
)

// headerToken simulates EnsureValidToken with the subject and role claim
// taken from test headers
func headerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader(subjectHeader)
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing token"},
			})
			return
		}
		testutil.MockTokenMiddleware(subject, c.GetHeader(roleHeader))(c)
	}
}

// newAPIRouter registers the workshop routes behind the header token and the
// real identity resolution
func newAPIRouter(store repository.Store) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(zap.NewNop()))

	v1 := router.Group("/api/v1")
	v1.POST("/clients", headerToken(), controllers.RegisterClient)

	api := v1.Group("", headerToken(), middleware.ResolveIdentity(store))
	{
		api.GET("/clients/me", controllers.GetMyProfile)
		api.DELETE("/clients/me", controllers.DeleteMyAccount)
		api.GET("/vehicles", controllers.ListVehicles)
		api.POST("/vehicles", controllers.AddVehicle)
		api.POST("/reservations/finalize", controllers.FinalizeReservation)
		api.GET("/reservations/client", controllers.GetClientReservations)
		api.GET("/reservations/occupied-slots", controllers.GetOccupiedSlots)
		api.GET("/reservations/:id", controllers.GetReservation)
		api.DELETE("/reservations/:id", controllers.DeleteReservation)
		api.GET("/orders/schedule", controllers.GetSchedule)
		api.POST("/orders/:id/assign", controllers.AssignEmployee)
		api.POST("/orders/:id/complete", controllers.CompleteOrder)
		api.POST("/orders/:id/mark-paid", controllers.MarkOrderPaid)
		api.GET("/orders/:id/protocol", controllers.GetProtocol)
		api.POST("/orders/:id/protocol/description", controllers.SetProtocolDescription)
		api.POST("/orders/:id/protocol/photos", controllers.AddProtocolPhoto)
		api.POST("/orders/:id/protocol/document", controllers.GenerateProtocolDocument)
	}
	return router
}

type caller struct {
	subject string
	role    string
}

func doJSON(t *testing.T, router http.Handler, method, path string, who caller, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.subject != "" {
		req.Header.Set(subjectHeader, who.subject)
		req.Header.Set(roleHeader, who.role)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return w.Code, response
}

func errorCode(response map[string]interface{}) string {
	errObj, _ := response["error"].(map[string]interface{})
	code, _ := errObj["code"].(string)
	return code
}
