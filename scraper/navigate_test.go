package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/xfeed/models"
)

func TestIsAuthWall(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://x.com/login", true},
		{"https://x.com/i/flow/login?redirect_after_login=%2Fnasa", true},
		{"https://x.com/i/flow/signup", true},
		{"https://x.com/account/access", true},
		{"https://mobile.x.com/i/flow/consent_flow/", true},
		{"https://x.com/LOGIN", true},
		{"https://x.com/nasa", false},
		{"https://x.com/loginhelper", false},
		{"https://x.com/i/lists/123", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthWall(tt.url))
		})
	}
}

func TestCategorizeError(t *testing.T) {
	timeout := categorizeError(fmt.Errorf("nav: %w", context.DeadlineExceeded), "navigation timed out")
	assert.Equal(t, models.ErrCodeTimeout, timeout.Code)
	assert.Equal(t, "navigation timed out", timeout.Message)

	canceled := categorizeError(context.Canceled, "x")
	assert.Equal(t, models.ErrCodeTimeout, canceled.Code)

	nav := categorizeError(errors.New("net::ERR_NAME_NOT_RESOLVED"), "navigation failed")
	assert.Equal(t, models.ErrCodeNavigation, nav.Code)

	typed := models.NewScrapeError(models.ErrCodeBrowserCrash, "gone", nil)
	assert.Same(t, typed, categorizeError(fmt.Errorf("wrapped: %w", typed), "ignored"))
}
