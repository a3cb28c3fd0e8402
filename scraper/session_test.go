package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/models"
)

func sessionConfig(token, csrf string) SessionConfig {
	return SessionConfig{
		DesktopUserAgent: "desktop-ua",
		MobileUserAgent:  "mobile-ua",
		Credentials:      config.CredentialsConfig{AuthToken: token, CSRFToken: csrf},
	}
}

func TestPlanSession_AuthenticatedTimeline(t *testing.T) {
	plan := PlanSession(models.ModeAuthenticated, models.TargetTimeline, sessionConfig("tok", "csrf"))

	assert.Equal(t, models.ModeAuthenticated, plan.Mode)
	assert.False(t, plan.Degraded)
	assert.Equal(t, "desktop", plan.Profile.Name)
	assert.Equal(t, 1366, plan.Profile.Width)
	assert.False(t, plan.Profile.Mobile)
	assert.Equal(t, "desktop-ua", plan.Profile.UserAgent)
	assert.Empty(t, plan.Host)
	assert.Equal(t, map[string]string{"x-csrf-token": "csrf"}, plan.Headers)

	require.Len(t, plan.Cookies, 4)
	domains := map[string][]string{}
	for _, c := range plan.Cookies {
		assert.True(t, c.HTTPOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		domains[c.Domain] = append(domains[c.Domain], c.Name+"="+c.Value)
	}
	assert.Equal(t, map[string][]string{
		".x.com":       {"auth_token=tok", "ct0=csrf"},
		".twitter.com": {"auth_token=tok", "ct0=csrf"},
	}, domains)
}

func TestPlanSession_AuthenticatedListUsesMobile(t *testing.T) {
	plan := PlanSession(models.ModeAuthenticated, models.TargetList, sessionConfig("tok", "csrf"))

	assert.Equal(t, "mobile", plan.Profile.Name)
	assert.True(t, plan.Profile.Mobile)
	assert.Equal(t, 412, plan.Profile.Width)
	assert.Equal(t, "mobile-ua", plan.Profile.UserAgent)
	assert.Equal(t, "mobile.x.com", plan.Host)
	require.Len(t, plan.Cookies, 6)
	assert.Equal(t, "mobile.x.com", plan.Cookies[4].Domain)
}

func TestPlanSession_MissingCredentialsDegrade(t *testing.T) {
	for _, cfg := range []SessionConfig{sessionConfig("", "csrf"), sessionConfig("tok", ""), sessionConfig("", "")} {
		plan := PlanSession(models.ModeAuthenticated, models.TargetTimeline, cfg)

		assert.Equal(t, models.ModeGuest, plan.Mode)
		assert.True(t, plan.Degraded)
		assert.Empty(t, plan.Cookies)
		assert.Empty(t, plan.Headers)
	}
}

func TestPlanSession_GuestCarriesNothing(t *testing.T) {
	plan := PlanSession(models.ModeGuest, models.TargetList, sessionConfig("tok", "csrf"))

	assert.Equal(t, models.ModeGuest, plan.Mode)
	assert.False(t, plan.Degraded)
	assert.Empty(t, plan.Cookies)
	assert.Empty(t, plan.Headers)
	assert.True(t, plan.Profile.Mobile)
}

func TestSessionPlan_TargetURL(t *testing.T) {
	list := PlanSession(models.ModeGuest, models.TargetList, sessionConfig("", ""))
	timeline := PlanSession(models.ModeGuest, models.TargetTimeline, sessionConfig("", ""))

	tests := []struct {
		name string
		plan SessionPlan
		in   string
		want string
	}{
		{"list on x.com", list, "https://x.com/i/lists/42", "https://mobile.x.com/i/lists/42"},
		{"list on twitter", list, "http://twitter.com/jack/lists/7?s=1", "https://mobile.x.com/jack/lists/7?s=1"},
		{"foreign host", list, "https://example.com/i/lists/42", "https://example.com/i/lists/42"},
		{"timeline untouched", timeline, "https://x.com/nasa", "https://x.com/nasa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.plan.TargetURL(tt.in))
		})
	}
}
