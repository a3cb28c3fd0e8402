package config

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/xfeed/models"
)

func testConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			MaxTimeout: 120 * time.Second,
			MaxLimit:   500,
			MaxScrolls: 60,
			MaxDelay:   10 * time.Second,
		},
		Defaults: DefaultsConfig{
			Limit:      50,
			WithUser:   true,
			Headless:   true,
			Timeout:    90 * time.Second,
			Scrolls:    10,
			Delay:      1200 * time.Millisecond,
			UseCookies: true,
		},
	}
}

func TestParseScrapeRequest_Defaults(t *testing.T) {
	req, err := testConfig().ParseScrapeRequest(url.Values{"url": {"https://x.com/nasa"}})

	require.NoError(t, err)
	assert.Equal(t, "https://x.com/nasa", req.TargetURL)
	assert.Equal(t, 50, req.Limit)
	assert.True(t, req.WantAuthor)
	assert.False(t, req.KeepEngagementCounters)
	assert.True(t, req.Headless)
	assert.Equal(t, 90*time.Second, req.Timeout)
	assert.Equal(t, 10, req.MaxRevealRounds)
	assert.Equal(t, 1200*time.Millisecond, req.RevealDelay)
	assert.Equal(t, models.ModeAuthenticated, req.PreferredMode)
	assert.False(t, req.Debug)
	assert.Zero(t, req.MaxAge)
}

func TestParseScrapeRequest_Overrides(t *testing.T) {
	q := url.Values{
		"url":             {"https://x.com/i/lists/123"},
		"limit":           {"7"},
		"withUser":        {"false"},
		"includeCounters": {"yes"},
		"headless":        {"0"},
		"timeout":         {"5000"},
		"scrolls":         {"3"},
		"delay":           {"250"},
		"useCookies":      {"off"},
		"debug":           {"TRUE"},
		"maxAge":          {"60000"},
	}

	req, err := testConfig().ParseScrapeRequest(q)

	require.NoError(t, err)
	assert.Equal(t, 7, req.Limit)
	assert.False(t, req.WantAuthor)
	assert.True(t, req.KeepEngagementCounters)
	assert.False(t, req.Headless)
	assert.Equal(t, 5*time.Second, req.Timeout)
	assert.Equal(t, 3, req.MaxRevealRounds)
	assert.Equal(t, 250*time.Millisecond, req.RevealDelay)
	assert.Equal(t, models.ModeGuest, req.PreferredMode)
	assert.True(t, req.Debug)
	assert.Equal(t, time.Minute, req.MaxAge)
}

func TestParseScrapeRequest_Aliases(t *testing.T) {
	q := url.Values{"url": {"https://x.com/nasa"}, "maxScrolls": {"2"}, "delayMs": {"100"}}

	req, err := testConfig().ParseScrapeRequest(q)

	require.NoError(t, err)
	assert.Equal(t, 2, req.MaxRevealRounds)
	assert.Equal(t, 100*time.Millisecond, req.RevealDelay)
}

func TestParseScrapeRequest_TimeoutClamped(t *testing.T) {
	q := url.Values{"url": {"https://x.com/nasa"}, "timeout": {"999999"}}

	req, err := testConfig().ParseScrapeRequest(q)

	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, req.Timeout)
}

func TestParseScrapeRequest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		q       url.Values
		message string
	}{
		{"missing url", url.Values{}, "Missing ?url="},
		{"blank url", url.Values{"url": {"  "}}, "Missing ?url="},
		{"relative url", url.Values{"url": {"/nasa"}}, `url must be an absolute http(s) URL: "/nasa"`},
		{"zero limit", url.Values{"url": {"https://x.com/a"}, "limit": {"0"}}, "limit must be between 1 and 500, got 0"},
		{"text limit", url.Values{"url": {"https://x.com/a"}, "limit": {"ten"}}, `limit must be an integer, got "ten"`},
		{"negative scrolls", url.Values{"url": {"https://x.com/a"}, "scrolls": {"-1"}}, "scrolls must be between 0 and 60, got -1"},
		{"bad bool", url.Values{"url": {"https://x.com/a"}, "headless": {"sometimes"}}, `headless must be a boolean, got "sometimes"`},
		{"zero timeout", url.Values{"url": {"https://x.com/a"}, "timeout": {"0"}}, "timeout must be >= 1, got 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testConfig().ParseScrapeRequest(tt.q)

			var se *models.ScrapeError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, models.ErrCodeInvalidInput, se.Code)
			assert.Equal(t, tt.message, se.Message)
		})
	}
}
