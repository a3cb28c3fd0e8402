package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/xfeed/models"
)

// settleIdle is how long the network must stay quiet to count as settled.
const settleIdle = 500 * time.Millisecond

// authWallPaths are the pages the site redirects to when it refuses to show
// content to the current session.
var authWallPaths = []string{
	"/login",
	"/i/flow/login",
	"/i/flow/signup",
	"/i/flow/consent_flow",
	"/account/access",
	"/account/suspended",
}

// Navigation is the outcome of one navigation.
type Navigation struct {
	FinalURL    string
	HitAuthWall bool
}

// Navigate loads target in the session's page. Reaching DOMContentLoaded
// within timeout is required; network quiescence afterwards is waited for
// on a best-effort basis. Navigate never retries.
func (s *Session) Navigate(ctx context.Context, target string, timeout time.Duration) (Navigation, error) {
	target = s.plan.TargetURL(target)

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := s.page.Context(navCtx)
	waitDOM := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(target); err != nil {
		return Navigation{}, categorizeError(err, "navigation to target URL failed")
	}
	waitDOM()
	if err := navCtx.Err(); err != nil {
		return Navigation{}, categorizeError(err, "navigation to target URL timed out")
	}

	s.settleNetwork(ctx)

	final := s.currentURL(s.page.Context(ctx))
	if final == "" {
		final = target
	}
	nav := Navigation{FinalURL: final, HitAuthWall: IsAuthWall(final)}
	slog.Debug("navigated", "target", target, "finalUrl", nav.FinalURL,
		"mode", s.plan.Mode, "authWall", nav.HitAuthWall)
	return nav, nil
}

// settleNetwork waits for the network to go quiet, giving up silently
// after the settle timeout.
func (s *Session) settleNetwork(ctx context.Context) {
	if s.settle <= 0 {
		return
	}
	settleCtx, cancel := context.WithTimeout(ctx, s.settle)
	defer cancel()
	s.page.Context(settleCtx).WaitRequestIdle(settleIdle, nil, nil, nil)()
	if settleCtx.Err() != nil {
		slog.Debug("network did not settle, continuing", "timeout", s.settle)
	}
}

// IsAuthWall reports whether rawURL is a login or access-restricted page.
func IsAuthWall(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(strings.TrimRight(u.Path, "/"))
	for _, wall := range authWallPaths {
		if path == wall || strings.HasPrefix(path, wall+"/") {
			return true
		}
	}
	return false
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
