package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/xfeed/models"
)

// Reveal tuning. Lists on the mobile host only load more rows after a
// short scroll back and forth.
const (
	postsPerStep = 25
	maxSteps     = 4
	danceBack    = 0.4
	danceForward = 0.6
	dancePause   = 250 * time.Millisecond
)

// RevealPlan is the scrolling schedule of one attempt.
type RevealPlan struct {
	// Rounds is the maximum number of reveal-and-extract rounds.
	Rounds int

	// Steps is the number of viewport scrolls per round.
	Steps int

	// Delay is the pause after each forward scroll.
	Delay time.Duration

	// Dance adds a partial scroll back and forth after each step.
	Dance      bool
	DancePause time.Duration
}

// PlanReveal derives the schedule from the request. It has no side effects.
func PlanReveal(limit, maxRounds int, delay time.Duration, kind models.TargetKind) RevealPlan {
	plan := RevealPlan{
		Rounds: max(maxRounds, 0),
		Steps:  min(max(ceilDiv(limit, postsPerStep), 1), maxSteps),
		Delay:  max(delay, 0),
	}
	if kind == models.TargetList {
		plan.Dance = true
		plan.DancePause = dancePause
	}
	return plan
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Reveal runs one round of plan at the centre of the viewport.
func (s *Session) Reveal(ctx context.Context, plan RevealPlan) error {
	p := s.page.Context(ctx)

	height := float64(s.plan.Profile.Height)
	if res, err := p.Eval(`() => window.innerHeight`); err == nil && res.Value.Int() > 0 {
		height = float64(res.Value.Int())
	}
	at := proto.Point{X: float64(s.plan.Profile.Width) / 2, Y: height / 2}
	_ = proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved,
		X:    at.X,
		Y:    at.Y,
	}.Call(p)

	return runSteps(ctx, plan, height, func(dy float64) error {
		return scrollBy(p, at, dy)
	})
}

// runSteps drives plan.Steps forward scrolls of one viewport each, every
// one followed by the delay and, for lists, the dance. It stops at the
// first failed scroll or when ctx is done.
func runSteps(ctx context.Context, plan RevealPlan, height float64, scroll func(dy float64) error) error {
	for i := 0; i < plan.Steps; i++ {
		if err := scroll(height); err != nil {
			return categorizeError(fmt.Errorf("scroll step %d: %w", i, err), "reveal failed")
		}
		if err := sleepCtx(ctx, plan.Delay); err != nil {
			return categorizeError(err, "reveal interrupted")
		}
		if !plan.Dance {
			continue
		}
		if err := scroll(-height * danceBack); err != nil {
			return categorizeError(err, "reveal failed")
		}
		if err := sleepCtx(ctx, plan.DancePause); err != nil {
			return categorizeError(err, "reveal interrupted")
		}
		if err := scroll(height * danceForward); err != nil {
			return categorizeError(err, "reveal failed")
		}
	}
	return nil
}

// scrollBy dispatches a wheel event at the given point, falling back to
// window.scrollBy when input dispatch fails. Events go through p itself
// rather than p.Mouse, which stays bound to the page's original context.
func scrollBy(p *rod.Page, at proto.Point, dy float64) error {
	err := proto.InputDispatchMouseEvent{
		Type:   proto.InputDispatchMouseEventTypeMouseWheel,
		X:      at.X,
		Y:      at.Y,
		DeltaY: dy,
	}.Call(p)
	if err == nil {
		return nil
	}
	if ctxErr := p.GetContext().Err(); ctxErr != nil {
		return ctxErr
	}
	_, err = p.Eval(`(dy) => window.scrollBy(0, dy)`, dy)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
