package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/models"
)

// Cookie and header names the site expects from a signed-in browser.
const (
	authCookie = "auth_token"
	csrfCookie = "ct0"
	csrfHeader = "x-csrf-token"
	mobileHost = "mobile.x.com"
)

// cookieDomains are the domains the session cookies are accepted on.
var cookieDomains = []string{".x.com", ".twitter.com"}

// rewritableHosts are the hosts a list URL may arrive with.
var rewritableHosts = map[string]struct{}{
	"x.com":              {},
	"www.x.com":          {},
	"twitter.com":        {},
	"www.twitter.com":    {},
	"mobile.twitter.com": {},
	mobileHost:           {},
}

// Profile is the device a page pretends to be.
type Profile struct {
	Name              string
	Width             int
	Height            int
	DeviceScaleFactor float64
	Mobile            bool
	UserAgent         string
}

// SessionConfig is everything PlanSession needs besides the mode and target.
type SessionConfig struct {
	DesktopUserAgent string
	MobileUserAgent  string
	Credentials      config.CredentialsConfig
}

// SessionPlan describes how a fresh page must be dressed before navigating.
type SessionPlan struct {
	// Mode is the effective mode. It differs from the requested mode when
	// credentials are missing.
	Mode models.SessionMode

	// Degraded is set when Authenticated was requested but could not be
	// honoured.
	Degraded bool

	Kind    models.TargetKind
	Profile Profile
	Cookies []*proto.NetworkCookieParam
	Headers map[string]string

	// Host replaces the target host when non-empty.
	Host string
}

// PlanSession decides the profile, cookies and headers of a session. It
// has no side effects.
func PlanSession(mode models.SessionMode, kind models.TargetKind, cfg SessionConfig) SessionPlan {
	plan := SessionPlan{Mode: mode, Kind: kind}

	if kind == models.TargetList {
		plan.Profile = Profile{
			Name:              "mobile",
			Width:             412,
			Height:            915,
			DeviceScaleFactor: 2.625,
			Mobile:            true,
			UserAgent:         cfg.MobileUserAgent,
		}
		plan.Host = mobileHost
	} else {
		plan.Profile = Profile{
			Name:              "desktop",
			Width:             1366,
			Height:            900,
			DeviceScaleFactor: 1,
			UserAgent:         cfg.DesktopUserAgent,
		}
	}

	if mode != models.ModeAuthenticated {
		return plan
	}
	if !cfg.Credentials.Complete() {
		plan.Mode = models.ModeGuest
		plan.Degraded = true
		return plan
	}

	domains := cookieDomains
	if kind == models.TargetList {
		domains = append(append([]string{}, cookieDomains...), mobileHost)
	}
	for _, d := range domains {
		plan.Cookies = append(plan.Cookies,
			sessionCookie(authCookie, cfg.Credentials.AuthToken, d),
			sessionCookie(csrfCookie, cfg.Credentials.CSRFToken, d),
		)
	}
	plan.Headers = map[string]string{csrfHeader: cfg.Credentials.CSRFToken}
	return plan
}

func sessionCookie(name, value, domain string) *proto.NetworkCookieParam {
	return &proto.NetworkCookieParam{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
	}
}

// TargetURL rewrites raw onto the plan's host. URLs on foreign hosts and
// unparsable URLs are returned unchanged.
func (p SessionPlan) TargetURL(raw string) string {
	if p.Host == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if _, ok := rewritableHosts[strings.ToLower(u.Hostname())]; !ok {
		return raw
	}
	u.Host = p.Host
	u.Scheme = "https"
	return u.String()
}
