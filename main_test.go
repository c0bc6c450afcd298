package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warsztat/workshop-api/config"
	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/tests/testutil"
)

// TestHealthCheck is a unit test for the healthCheck handler function
func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status code 200")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")

	assert.Equal(t, true, response["success"], "Expected success to be true")
	assert.Equal(t, "Workshop API is running", response["message"], "Expected correct message")
	assert.Len(t, response, 2, "Response should have exactly 2 fields")
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestDatabaseStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.SetDB(testutil.NewTestDB(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/database/status", nil)

	databaseStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Success bool     `json:"success"`
		Tables  []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Contains(t, response.Tables, "orders")
	assert.Contains(t, response.Tables, "order_services")
}

func TestCorsConfig(t *testing.T) {
	open := corsConfig(&config.Config{CORSOrigins: []string{"*"}})
	assert.True(t, open.AllowAllOrigins)
	assert.Empty(t, open.AllowOrigins)
	assert.False(t, open.AllowCredentials)

	restricted := corsConfig(&config.Config{CORSOrigins: []string{"https://warsztat.example"}})
	assert.False(t, restricted.AllowAllOrigins)
	assert.Equal(t, []string{"https://warsztat.example"}, restricted.AllowOrigins)
	assert.True(t, restricted.AllowCredentials)
	assert.Contains(t, restricted.AllowHeaders, "Authorization")
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed"}, names)

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.NotNil(t, seed.Flags().Lookup("services-file"))
	assert.NotNil(t, seed.Flags().Lookup("manager"))
}

func TestSeedDatabase(t *testing.T) {
	db := testutil.NewTestDB(t)
	staff := []models.Employee{{
		Auth0ID: "auth0|boss", Email: "boss@example.com", FirstName: "Adam", LastName: "Nowicki", IsManager: true,
	}}

	require.NoError(t, seedDatabase(db, defaultCatalog, staff))
	// seeding twice does not duplicate anything
	require.NoError(t, seedDatabase(db, defaultCatalog, staff))

	var services []models.Service
	require.NoError(t, db.Find(&services).Error)
	assert.Len(t, services, len(defaultCatalog))

	var employees []models.Employee
	require.NoError(t, db.Find(&employees).Error)
	require.Len(t, employees, 1)
	assert.True(t, employees[0].IsManager)

	err := seedDatabase(db, []serviceJSON{{Name: "Broken", RepairTime: -5}}, nil)
	assert.Error(t, err)
}

func TestReadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "Wheel alignment", "price": "180.00", "repair_time": 45, "description": "Both axles"}
	]`), 0o600))

	catalog, err := readCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Wheel alignment", catalog[0].Name)
	assert.True(t, decimal.RequireFromString("180").Equal(catalog[0].Price))
	assert.Equal(t, 45, catalog[0].RepairTime)

	_, err = readCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
