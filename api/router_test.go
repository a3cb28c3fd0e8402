package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/xfeed/api/handler"
	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/models"
)

type stubRunner struct{}

func (stubRunner) Run(context.Context, *models.ScrapeRequest) (*models.ScrapeResult, error) {
	return &models.ScrapeResult{ModeUsed: models.ModeGuest}, nil
}

func routerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Scraper = config.ScraperConfig{MaxTimeout: time.Minute, MaxLimit: 100, MaxScrolls: 10, MaxDelay: time.Second}
	cfg.Defaults = config.DefaultsConfig{Limit: 10, Timeout: time.Minute, Scrolls: 1}
	return cfg
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := NewRouter(routerConfig(), Deps{Runner: stubRunner{}, Tracker: &handler.Tracker{}, StartTime: time.Now()})

	assert.Equal(t, http.StatusOK, get(r, "/").Code)
	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)

	m := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "xfeed_http_requests_total")

	assert.Equal(t, http.StatusBadRequest, get(r, "/scrape").Code)
	assert.JSONEq(t, `{"count":0,"items":[]}`, get(r, "/scrape?url=https://x.com/nasa").Body.String())
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/scrape").Code)
}

func TestRouter_AuthProtectsOnlyScrape(t *testing.T) {
	cfg := routerConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	r := NewRouter(cfg, Deps{Runner: stubRunner{}, Tracker: &handler.Tracker{}, StartTime: time.Now()})

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/scrape?url=https://x.com/nasa").Code)
	assert.Equal(t, http.StatusOK, get(r, "/scrape?url=https://x.com/nasa", "X-API-Key", "secret").Code)
}
