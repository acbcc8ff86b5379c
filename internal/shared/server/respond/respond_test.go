package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

func TestErrorEnvelopeAndLogLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hook := test.NewLocal(telemetry.Logger())
	defer hook.Reset()

	r := gin.New()
	r.GET("/missing", func(c *gin.Context) {
		Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	})
	r.GET("/down", func(c *gin.Context) {
		Error(c, http.StatusBadGateway, "external_service_error", "provider down", gin.H{"retry": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"code":"not_found","message":"resume not found"}}`, w.Body.String())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/down", nil))
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "external_service_error", body.Error.Code)
	assert.Equal(t, map[string]any{"retry": true}, body.Error.Details)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestCreatedSetsLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/things", func(c *gin.Context) { Created(c, "/things/1", gin.H{"id": "1"}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/things/1", w.Header().Get("Location"))
}
