// Package scraper drives a real browser against the feed: it launches a
// browser per request, dresses isolated pages for a session mode, navigates
// them and scrolls them to reveal more posts.
package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/models"
)

// Launcher starts browsers configured for scraping. It holds no process
// state and is safe for concurrent use.
type Launcher struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	sessionCfg SessionConfig
}

// NewLauncher returns a launcher for the given configuration.
func NewLauncher(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, creds config.CredentialsConfig) *Launcher {
	return &Launcher{
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		sessionCfg: SessionConfig{
			DesktopUserAgent: browserCfg.DesktopUserAgent,
			MobileUserAgent:  browserCfg.MobileUserAgent,
			Credentials:      creds,
		},
	}
}

// Browser is one launched browser process. Close must be called on every
// path once the request is done with it.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *Launcher
}

// Launch starts a new browser process and connects to it.
func (l *Launcher) Launch(ctx context.Context, headless bool) (*Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err, "browser launch aborted")
	}

	ln := launcher.New().
		Headless(headless).
		NoSandbox(l.browserCfg.NoSandbox)

	if l.browserCfg.BrowserBin != "" {
		ln = ln.Bin(l.browserCfg.BrowserBin)
	}
	if l.browserCfg.DefaultProxy != "" {
		ln = ln.Proxy(l.browserCfg.DefaultProxy)
	}

	ln.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	ln.Delete(flags.Flag("enable-automation"))
	ln.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	ln.Set(flags.Flag("disable-background-timer-throttling"))
	ln.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	ln.Set(flags.Flag("disable-renderer-backgrounding"))
	ln.Set(flags.Flag("disable-component-update"))
	ln.Set(flags.Flag("disable-default-apps"))
	ln.Set(flags.Flag("disable-dev-shm-usage"))
	ln.Set(flags.Flag("disable-extensions"))
	ln.Set(flags.Flag("no-first-run"))

	controlURL, err := ln.Launch()
	if err != nil {
		ln.Cleanup()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Debug("browser launched", "controlURL", controlURL, "headless", headless)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Browser{browser: browser, launcher: ln, cfg: l}, nil
}

// Open creates an isolated browser context and a page dressed according to
// PlanSession. Nothing is navigated yet.
func (b *Browser) Open(ctx context.Context, mode models.SessionMode, kind models.TargetKind) (*Session, error) {
	plan := PlanSession(mode, kind, b.cfg.sessionCfg)
	if plan.Degraded {
		slog.Warn("credentials missing, continuing as guest", "kind", kind.String())
	}

	inc, err := b.browser.Incognito()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to create browser context",
			err,
		)
	}
	s := &Session{
		browser:     b.browser,
		contextID:   inc.BrowserContextID,
		plan:        plan,
		settle:      b.cfg.scraperCfg.SettleTimeout,
		extractWait: b.cfg.scraperCfg.ExtractRetryWait,
	}

	page, err := inc.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to create page",
			err,
		)
	}
	s.page = page

	if err := s.dress(page.Context(ctx), b.cfg.browserCfg); err != nil {
		_ = s.Close()
		return nil, categorizeError(err, "failed to prepare page")
	}
	return s, nil
}

// dress applies the plan to a blank page. Stealth and blocking failures
// are tolerated; the device profile and credentials are not.
func (s *Session) dress(p *rod.Page, cfg config.BrowserConfig) error {
	prof := s.plan.Profile

	if cfg.Stealth {
		if _, err := p.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             prof.Width,
		Height:            prof.Height,
		DeviceScaleFactor: prof.DeviceScaleFactor,
		Mobile:            prof.Mobile,
	}); err != nil {
		return err
	}
	if prof.Mobile {
		_ = proto.EmulationSetTouchEmulationEnabled{Enabled: true}.Call(p)
	}
	if prof.UserAgent != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: prof.UserAgent}); err != nil {
			return err
		}
	}

	if err := (proto.NetworkEnable{}).Call(p); err != nil {
		return err
	}
	if err := (proto.NetworkSetBlockedURLs{Urls: blockPatterns(cfg.BlockedURLs)}).Call(p); err != nil {
		slog.Warn("set blocked urls failed", "error", err)
	}

	if len(s.plan.Cookies) > 0 {
		if err := p.SetCookies(s.plan.Cookies); err != nil {
			return err
		}
	}
	if len(s.plan.Headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(s.plan.Headers)}).Call(p); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts the browser down and removes its profile directory.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
