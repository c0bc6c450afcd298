package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/tests/testutil"
)

var pngContent = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func protocolRouter(id models.Identity) *gin.Engine {
	router := routerAs(id)
	router.GET("/orders/:id/protocol", GetProtocol)
	router.POST("/orders/:id/protocol/description", SetProtocolDescription)
	router.POST("/orders/:id/protocol/photos", AddProtocolPhoto)
	router.POST("/orders/:id/protocol/document", GenerateProtocolDocument)
	return router
}

func uploadPhoto(t *testing.T, router *gin.Engine, path, filename string, content []byte) (int, map[string]interface{}) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("photo", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestProtocolEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	order := env.order(t, models.StatusConfirmed, &env.f.Mechanic)
	base := "/orders/" + itoa(order.ID) + "/protocol"
	staff := protocolRouter(testutil.EmployeeIdentity(env.f.Mechanic))

	status, response := performRequest(t, staff, http.MethodPost, base+"/document", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(response))

	status, response = performRequest(t, staff, http.MethodPost, base+"/description", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))

	status, response = performRequest(t, staff, http.MethodPost, base+"/description",
		map[string]interface{}{"description": "Dent on the driver door"})
	require.Equal(t, http.StatusOK, status, response)
	assert.Equal(t, "Dent on the driver door", dataMap(t, response)["description"])

	status, response = uploadPhoto(t, staff, base+"/photos", "door.png", pngContent)
	require.Equal(t, http.StatusCreated, status, response)
	photo := dataMap(t, response)
	assert.True(t, strings.HasPrefix(photo["s3_key"].(string), "protocols/"))
	assert.NotEmpty(t, photo["url"])

	status, response = performRequest(t, staff, http.MethodPost, base+"/document", nil)
	require.Equal(t, http.StatusCreated, status, response)
	assert.Equal(t, "documents/protocol/"+itoa(order.ID)+"/mock.txt", dataMap(t, response)["protocol_key"])

	status, response = performRequest(t, protocolRouter(testutil.ClientIdentity(env.f.Client)), http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status, response)
	photos, ok := dataMap(t, response)["photos"].([]interface{})
	require.True(t, ok)
	assert.Len(t, photos, 1)

	status, _ = performRequest(t, protocolRouter(testutil.ClientIdentity(env.f.OtherClient)), http.MethodGet, base, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAddProtocolPhoto_Rejections(t *testing.T) {
	env := setupTestEnv(t)
	order := env.order(t, models.StatusConfirmed, &env.f.Mechanic)
	path := "/orders/" + itoa(order.ID) + "/protocol/photos"
	staff := protocolRouter(testutil.EmployeeIdentity(env.f.Mechanic))

	tests := []struct {
		name         string
		filename     string
		content      []byte
		expectedCode string
	}{
		{"no file", "", nil, "VALIDATION_ERROR"},
		{"wrong extension", "door.jpg", pngContent, "INVALID_FILE_FORMAT"},
		{"not a png", "door.png", []byte("GIF89a"), "INVALID_FILE_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := uploadPhoto(t, staff, path, tt.filename, tt.content)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.expectedCode, errorCode(response))
		})
	}
	assert.Empty(t, env.s3.Keys())

	status, response := uploadPhoto(t, protocolRouter(testutil.ClientIdentity(env.f.Client)), path, "door.png", pngContent)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(response))
}
