package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/warsztat/workshop-api/config"
	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/scheduling"
	"github.com/warsztat/workshop-api/services"
	"github.com/warsztat/workshop-api/tests/testutil"
)

type testEnv struct {
	db   *gorm.DB
	f    *testutil.Fixtures
	s3   *services.MockS3Service
	docs *services.MockDocumentGenerator
}

// setupTestEnv seeds a fresh database and installs services backed by it
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	config.SetDB(db)
	env := &testEnv{
		db:   db,
		f:    testutil.Seed(t, db),
		s3:   services.NewMockS3Service(),
		docs: services.NewMockDocumentGenerator(),
	}

	store := repository.NewGormStore(db)
	log := zap.NewNop()
	images := services.NewS3ImageService(env.s3)
	services.SetReservationService(services.NewReservationService(store, env.docs, log, scheduling.MaxWorkstations))
	services.SetVehicleService(services.NewVehicleService(store))
	services.SetPartService(services.NewPartService(store))
	services.SetProtocolService(services.NewProtocolService(store, images, env.docs, log))
	return env
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// routerAs returns a router whose requests are made by the given identity
func routerAs(id models.Identity) *gin.Engine {
	router := setupTestRouter()
	router.Use(testutil.MockIdentityMiddleware(id))
	return router
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", response["data"])
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "data is not a list: %v", response["data"])
	return data
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
