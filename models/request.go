package models

import (
	"net/url"
	"strings"
	"time"
)

// ScrapeRequest is the validated input of one scrape. It is built by
// config.ParseScrapeRequest from query parameters and environment defaults.
type ScrapeRequest struct {
	// TargetURL is the feed page to scrape. Required.
	TargetURL string

	// Limit is the maximum number of records returned. Must be > 0.
	Limit int

	// WantAuthor enables author extraction.
	WantAuthor bool

	// KeepEngagementCounters disables stripping of trailing counter
	// tokens from record text.
	KeepEngagementCounters bool

	// Headless controls whether the browser runs headless.
	Headless bool

	// Timeout bounds the initial navigation of each session.
	Timeout time.Duration

	// MaxRevealRounds caps the number of scroll rounds after the first
	// extraction pass. Zero disables revealing.
	MaxRevealRounds int

	// RevealDelay is the pause after each scroll step.
	RevealDelay time.Duration

	// PreferredMode is the session mode tried first.
	PreferredMode SessionMode

	// Debug adds the meta block to the response.
	Debug bool

	// MaxAge allows serving a cached result younger than this. Zero
	// disables the cache for this request.
	MaxAge time.Duration
}

// Validate checks the request invariants.
func (r *ScrapeRequest) Validate() error {
	if strings.TrimSpace(r.TargetURL) == "" {
		return InvalidInput("Missing ?url=")
	}
	u, err := url.Parse(r.TargetURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return InvalidInput("url must be an absolute http(s) URL: %q", r.TargetURL)
	}
	if r.Limit <= 0 {
		return InvalidInput("limit must be > 0, got %d", r.Limit)
	}
	if r.Timeout <= 0 {
		return InvalidInput("timeout must be > 0")
	}
	if r.MaxRevealRounds < 0 {
		return InvalidInput("scrolls must be >= 0, got %d", r.MaxRevealRounds)
	}
	if r.RevealDelay < 0 {
		return InvalidInput("delay must be >= 0")
	}
	if r.PreferredMode != ModeAuthenticated && r.PreferredMode != ModeGuest {
		return InvalidInput("unknown session mode %q", r.PreferredMode)
	}
	return nil
}

// TargetKindOf classifies a target URL. List pages live under
// /i/lists/<id> or /<user>/lists/<id>.
func TargetKindOf(rawURL string) TargetKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return TargetTimeline
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "lists" && parts[i+1] != "" && i > 0 {
			return TargetList
		}
	}
	return TargetTimeline
}
