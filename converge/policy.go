// Package converge drives browser sessions until a feed page yields a
// stable, deduplicated set of records. It owns the fallback between
// authenticated and guest sessions and the reveal-extract loop; everything
// that touches the browser sits behind the Session interface.
package converge

import (
	"context"
	"log/slog"

	"github.com/use-agent/xfeed/cleaner"
	"github.com/use-agent/xfeed/extractor"
	"github.com/use-agent/xfeed/metrics"
	"github.com/use-agent/xfeed/models"
	"github.com/use-agent/xfeed/scraper"
)

// Policy runs scrapes. It holds no per-request state and is safe for
// concurrent use.
type Policy struct {
	launcher Launcher
}

// New returns a policy launching browsers through l.
func New(l Launcher) *Policy {
	metrics.Init()
	return &Policy{launcher: l}
}

// outcome is what one completed attempt produced.
type outcome struct {
	mode     models.SessionMode
	finalURL string
	records  []models.Record
	rounds   int
	hitWall  bool
}

// run is the state of one scrape.
type run struct {
	req     *models.ScrapeRequest
	kind    models.TargetKind
	plan    scraper.RevealPlan
	browser Browser

	attempts []models.Attempt
}

// Run scrapes req.TargetURL. The returned records are unique, at most
// req.Limit long and already post-processed. An auth wall is reported in
// the result, not as an error.
func (p *Policy) Run(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	kind := models.TargetKindOf(req.TargetURL)
	r := &run{
		req:  req,
		kind: kind,
		plan: scraper.PlanReveal(req.Limit, req.MaxRevealRounds, req.RevealDelay, kind),
	}

	b, err := p.launcher.Launch(ctx, req.Headless)
	if err != nil {
		return nil, err
	}
	defer closeQuietly("browser", b)
	r.browser = b

	chosen, err := r.attempt(ctx, req.PreferredMode)
	if err != nil {
		return nil, err
	}

	if chosen.mode == models.ModeAuthenticated && len(chosen.records) < req.Limit {
		guest, err := r.attempt(ctx, models.ModeGuest)
		switch {
		case err != nil:
			slog.Warn("guest comparison attempt failed, keeping authenticated result",
				"url", req.TargetURL, "error", err)
		case len(guest.records) > len(chosen.records):
			slog.Info("guest session yielded more records",
				"url", req.TargetURL,
				"authenticated", len(chosen.records),
				"guest", len(guest.records))
			chosen = guest
		}
	}

	records := chosen.records
	if len(records) > req.Limit {
		records = records[:req.Limit]
	}
	for i := range records {
		records[i].Text = cleaner.StripCounters(records[i].Text, req.KeepEngagementCounters)
	}

	return &models.ScrapeResult{
		Records:      records,
		ModeUsed:     chosen.mode,
		HitAuthWall:  chosen.hitWall,
		FinalURL:     chosen.finalURL,
		RevealRounds: chosen.rounds,
		Attempts:     r.attempts,
	}, nil
}

// attempt opens a fresh session in mode, navigates and collects. An
// authenticated session that lands on an auth wall is replaced by a fresh
// guest session; a guest session on an auth wall is collected as is. The
// outcome reports a wall hit anywhere on its own path.
func (r *run) attempt(ctx context.Context, mode models.SessionMode) (*outcome, error) {
	sess, err := r.browser.Open(ctx, mode, r.kind)
	if err != nil {
		r.record(models.Attempt{Mode: mode, Err: err.Error()})
		return nil, err
	}
	mode = sess.Mode()
	metrics.ObserveAttempt(string(mode))

	nav, err := sess.Navigate(ctx, r.req.TargetURL, r.req.Timeout)
	if err != nil {
		closeQuietly("session", sess)
		r.record(models.Attempt{Mode: mode, Err: err.Error()})
		return nil, err
	}

	if nav.HitAuthWall {
		metrics.ObserveAuthWall(string(mode))
		if mode == models.ModeAuthenticated {
			closeQuietly("session", sess)
			r.record(models.Attempt{Mode: mode, FinalURL: nav.FinalURL, HitAuthWall: true})
			slog.Info("auth wall with credentials, retrying as guest",
				"url", r.req.TargetURL, "finalUrl", nav.FinalURL)
			out, err := r.attempt(ctx, models.ModeGuest)
			if err != nil {
				return nil, err
			}
			out.hitWall = true
			return out, nil
		}
	}

	out, err := r.collect(ctx, sess)
	closeQuietly("session", sess)
	if err != nil {
		r.record(models.Attempt{Mode: mode, FinalURL: nav.FinalURL, HitAuthWall: nav.HitAuthWall, Err: err.Error()})
		return nil, err
	}
	out.mode = mode
	out.finalURL = nav.FinalURL
	out.hitWall = nav.HitAuthWall
	r.record(models.Attempt{
		Mode:         mode,
		FinalURL:     nav.FinalURL,
		HitAuthWall:  nav.HitAuthWall,
		Unique:       len(out.records),
		RevealRounds: out.rounds,
	})
	return out, nil
}

// collect runs the first extraction pass and then reveal rounds until the
// limit is reached or the plan is exhausted. A failing first pass fails
// the attempt; a failure in a later round ends collection with what was
// already gathered.
func (r *run) collect(ctx context.Context, sess Session) (*outcome, error) {
	acc := newAccumulator(r.req.Limit)

	batch, err := sess.Extract(ctx, r.extractOptions(acc))
	if err != nil {
		return nil, err
	}
	acc.merge(batch.Records)

	rounds := 0
	for !acc.full() && rounds < r.plan.Rounds {
		if err := sess.Reveal(ctx, r.plan); err != nil {
			slog.Warn("reveal failed, keeping collected records",
				"round", rounds+1, "unique", acc.len(), "error", err)
			break
		}
		rounds++

		batch, err := sess.Extract(ctx, r.extractOptions(acc))
		if err != nil {
			slog.Warn("extraction failed, keeping collected records",
				"round", rounds, "unique", acc.len(), "error", err)
			break
		}
		added := acc.merge(batch.Records)
		slog.Debug("reveal round",
			"round", rounds, "blocks", batch.Blocks, "scheme", batch.Scheme,
			"added", added, "unique", acc.len())
	}

	return &outcome{records: acc.records, rounds: rounds}, nil
}

// extractOptions sizes a pass so that records already held cannot crowd
// new ones out of the snapshot.
func (r *run) extractOptions(acc *accumulator) extractor.Options {
	return extractor.Options{
		Limit:      r.req.Limit + acc.len(),
		WantAuthor: r.req.WantAuthor,
	}
}

func (r *run) record(a models.Attempt) {
	r.attempts = append(r.attempts, a)
}

type closer interface{ Close() error }

// closeQuietly releases c, logging and discarding any error.
func closeQuietly(what string, c closer) {
	if err := c.Close(); err != nil {
		slog.Debug("close failed", "resource", what, "error", err)
	}
}
