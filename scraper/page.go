package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/xfeed/extractor"
	"github.com/use-agent/xfeed/models"
	"github.com/ysmood/gson"
)

// Session is one isolated page used for a single navigate, reveal and
// extract cycle. It is not safe for concurrent use.
type Session struct {
	browser     *rod.Browser
	contextID   proto.BrowserBrowserContextID
	page        *rod.Page
	plan        SessionPlan
	settle      time.Duration
	extractWait time.Duration
}

// Mode returns the effective session mode.
func (s *Session) Mode() models.SessionMode { return s.plan.Mode }

// Plan returns the plan the session was dressed with.
func (s *Session) Plan() SessionPlan { return s.plan }

// Snapshot captures the rendered DOM and the current URL.
func (s *Session) Snapshot(ctx context.Context) (extractor.Snapshot, error) {
	p := s.page.Context(ctx)
	html, err := p.HTML()
	if err != nil {
		return extractor.Snapshot{}, categorizeError(err, "failed to extract page HTML")
	}
	return extractor.Snapshot{HTML: html, URL: s.currentURL(p)}, nil
}

// Extract snapshots the page and extracts a batch, retrying once after the
// configured wait when nothing matched.
func (s *Session) Extract(ctx context.Context, opts extractor.Options) (models.Batch, error) {
	return extractor.Collect(ctx, s, opts, s.extractWait)
}

// Close closes the page and disposes of its browser context.
func (s *Session) Close() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.contextID != "" {
		if err := (proto.TargetDisposeBrowserContext{BrowserContextID: s.contextID}).Call(s.browser); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		slog.Debug("session close", "error", err)
	}
	return err
}

// currentURL reads the page URL, falling back to location.href.
func (s *Session) currentURL(p *rod.Page) string {
	if info, err := p.Info(); err == nil && info.URL != "" {
		return info.URL
	}
	return evalStringOrEmpty(p, `() => window.location.href`)
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
