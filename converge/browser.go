package converge

import (
	"context"
	"time"

	"github.com/use-agent/xfeed/extractor"
	"github.com/use-agent/xfeed/models"
	"github.com/use-agent/xfeed/scraper"
)

// Launcher starts one browser per scrape.
type Launcher interface {
	Launch(ctx context.Context, headless bool) (Browser, error)
}

// Browser opens isolated sessions. Close releases the process.
type Browser interface {
	Open(ctx context.Context, mode models.SessionMode, kind models.TargetKind) (Session, error)
	Close() error
}

// Session is one isolated page for a single navigate, reveal and extract
// cycle.
type Session interface {
	// Mode is the effective mode, which may be Guest even when
	// Authenticated was requested.
	Mode() models.SessionMode
	Navigate(ctx context.Context, url string, timeout time.Duration) (scraper.Navigation, error)
	Reveal(ctx context.Context, plan scraper.RevealPlan) error
	Extract(ctx context.Context, opts extractor.Options) (models.Batch, error)
	Close() error
}

// RodLauncher adapts the rod-backed scraper to the policy.
func RodLauncher(l *scraper.Launcher) Launcher {
	return rodLauncher{l}
}

type rodLauncher struct{ l *scraper.Launcher }

func (r rodLauncher) Launch(ctx context.Context, headless bool) (Browser, error) {
	b, err := r.l.Launch(ctx, headless)
	if err != nil {
		return nil, err
	}
	return rodBrowser{b}, nil
}

type rodBrowser struct{ b *scraper.Browser }

func (r rodBrowser) Open(ctx context.Context, mode models.SessionMode, kind models.TargetKind) (Session, error) {
	s, err := r.b.Open(ctx, mode, kind)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r rodBrowser) Close() error { return r.b.Close() }
