package config

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/xfeed/models"
)

// param is one recognised query parameter: its accepted names (first is
// canonical) and how its value is coerced into the request.
type param struct {
	names []string
	apply func(raw string, req *models.ScrapeRequest, lim ScraperConfig) error
}

// scrapeParams is the complete table of GET /scrape parameters. Anything
// not listed here is ignored.
var scrapeParams = []param{
	{[]string{"url"}, func(raw string, req *models.ScrapeRequest, _ ScraperConfig) error {
		req.TargetURL = strings.TrimSpace(raw)
		return nil
	}},
	{[]string{"limit"}, func(raw string, req *models.ScrapeRequest, lim ScraperConfig) error {
		n, err := intParam("limit", raw, 1, lim.MaxLimit)
		req.Limit = n
		return err
	}},
	{[]string{"withUser"}, func(raw string, req *models.ScrapeRequest, _ ScraperConfig) error {
		return boolParam("withUser", raw, &req.WantAuthor)
	}},
	{[]string{"includeCounters"}, func(raw string, req *models.ScrapeRequest, _ ScraperConfig) error {
		return boolParam("includeCounters", raw, &req.KeepEngagementCounters)
	}},
	{[]string{"headless"}, func(raw string, req *models.ScrapeRequest, _ ScraperConfig) error {
		return boolParam("headless", raw, &req.Headless)
	}},
	{[]string{"timeout"}, func(raw string, req *models.ScrapeRequest, lim ScraperConfig) error {
		ms, err := intParam("timeout", raw, 1, -1)
		if err != nil {
			return err
		}
		req.Timeout = min(time.Duration(ms)*time.Millisecond, lim.MaxTimeout)
		return nil
	}},
	{[]string{"scrolls", "maxScrolls"}, func(raw string, req *models.ScrapeRequest, lim ScraperConfig) error {
		n, err := intParam("scrolls", raw, 0, lim.MaxScrolls)
		req.MaxRevealRounds = n
		return err
	}},
	{[]string{"delay", "delayMs"}, func(raw string, req *models.ScrapeRequest, lim ScraperConfig) error {
		ms, err := intParam("delay", raw, 0, int(lim.MaxDelay/time.Millisecond))
		req.RevealDelay = time.Duration(ms) * time.Millisecond
		return err
	}},
	{[]string{"useCookies"}, func(raw string, req *models.ScrapeRequest, _ ScraperConfig) error {
		var use bool
		if err := boolParam("useCookies", raw, &use); err != nil {
			return err
		}
		req.PreferredMode = modeFor(use)
		return nil
	}},
	{[]string{"debug"}, func(raw string, req *models.ScrapeRequest, _ ScraperConfig) error {
		return boolParam("debug", raw, &req.Debug)
	}},
	{[]string{"maxAge"}, func(raw string, req *models.ScrapeRequest, _ ScraperConfig) error {
		ms, err := intParam("maxAge", raw, 0, -1)
		req.MaxAge = time.Duration(ms) * time.Millisecond
		return err
	}},
}

// NewScrapeRequest returns a request populated with the configured defaults.
func (c *Config) NewScrapeRequest() *models.ScrapeRequest {
	d := c.Defaults
	return &models.ScrapeRequest{
		Limit:                  d.Limit,
		WantAuthor:             d.WithUser,
		KeepEngagementCounters: d.IncludeCounters,
		Headless:               d.Headless,
		Timeout:                min(d.Timeout, c.Scraper.MaxTimeout),
		MaxRevealRounds:        d.Scrolls,
		RevealDelay:            d.Delay,
		PreferredMode:          modeFor(d.UseCookies),
		MaxAge:                 d.CacheMaxAge,
	}
}

// ParseScrapeRequest builds a validated request from query parameters
// layered over the configured defaults. Empty values keep the default.
// All failures are INVALID_INPUT errors.
func (c *Config) ParseScrapeRequest(q url.Values) (*models.ScrapeRequest, error) {
	req := c.NewScrapeRequest()
	for _, p := range scrapeParams {
		raw, ok := lookup(q, p.names)
		if !ok {
			continue
		}
		if err := p.apply(raw, req, c.Scraper); err != nil {
			return nil, err
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func lookup(q url.Values, names []string) (string, bool) {
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return v, true
		}
	}
	return "", false
}

// intParam parses a base-10 integer within [lo, hi]; hi < 0 means no upper
// bound.
func intParam(name, raw string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.InvalidInput("%s must be an integer, got %q", name, raw)
	}
	if n < lo || (hi >= 0 && n > hi) {
		if hi >= 0 {
			return 0, models.InvalidInput("%s must be between %d and %d, got %d", name, lo, hi, n)
		}
		return 0, models.InvalidInput("%s must be >= %d, got %d", name, lo, n)
	}
	return n, nil
}

func boolParam(name, raw string, dst *bool) error {
	b, ok := parseBool(raw)
	if !ok {
		return models.InvalidInput("%s must be a boolean, got %q", name, raw)
	}
	*dst = b
	return nil
}

// parseBool accepts the strconv literals plus yes/no and on/off.
func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, true
	case "0", "f", "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

func modeFor(useCookies bool) models.SessionMode {
	if useCookies {
		return models.ModeAuthenticated
	}
	return models.ModeGuest
}
