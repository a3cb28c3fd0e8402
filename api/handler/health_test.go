package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/xfeed/models"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tr := &Tracker{}
	tr.begin()
	tr.begin()
	tr.end()

	r := gin.New()
	r.GET("/healthz", Health(tr, time.Now().Add(-90*time.Second)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.ActiveScrapes)
	assert.Equal(t, "1m30s", body.Uptime)
	assert.Equal(t, Version, body.Version)
}

func TestTracker_NilIsZero(t *testing.T) {
	var tr *Tracker
	tr.begin()
	tr.end()
	assert.Zero(t, tr.Active())
}

func TestBanner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", Banner())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")
}
