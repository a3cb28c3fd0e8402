package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/xfeed/models"
)

func TestPlanReveal(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		maxRounds int
		kind      models.TargetKind
		rounds    int
		steps     int
	}{
		{"default request", 50, 10, models.TargetTimeline, 10, 2},
		{"small limit keeps every round", 5, 10, models.TargetTimeline, 10, 1},
		{"large limit caps steps", 500, 60, models.TargetTimeline, 60, 4},
		{"zero rounds disables reveal", 50, 0, models.TargetTimeline, 0, 2},
		{"one post", 1, 10, models.TargetTimeline, 10, 1},
		{"limit 26", 26, 10, models.TargetList, 10, 2},
		{"negative rounds", 50, -1, models.TargetTimeline, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanReveal(tt.limit, tt.maxRounds, 1200*time.Millisecond, tt.kind)

			assert.Equal(t, tt.rounds, plan.Rounds)
			assert.Equal(t, tt.steps, plan.Steps)
			assert.Equal(t, 1200*time.Millisecond, plan.Delay)
		})
	}
}

func TestPlanReveal_DanceOnlyForLists(t *testing.T) {
	list := PlanReveal(50, 10, 0, models.TargetList)
	timeline := PlanReveal(50, 10, 0, models.TargetTimeline)

	assert.True(t, list.Dance)
	assert.Equal(t, 250*time.Millisecond, list.DancePause)
	assert.False(t, timeline.Dance)
	assert.Zero(t, timeline.DancePause)
}

func TestRunSteps_Deltas(t *testing.T) {
	tests := []struct {
		name string
		plan RevealPlan
		want []float64
	}{
		{"timeline", RevealPlan{Steps: 2}, []float64{800, 800}},
		{"list dance", RevealPlan{Steps: 1, Dance: true}, []float64{800, -320, 480}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []float64
			err := runSteps(context.Background(), tt.plan, 800, func(dy float64) error {
				got = append(got, dy)
				return nil
			})

			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestRunSteps_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scrolls := 0
	plan := RevealPlan{Steps: 4, Delay: time.Hour}

	err := runSteps(ctx, plan, 800, func(float64) error {
		scrolls++
		cancel()
		return nil
	})

	var se *models.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.ErrCodeTimeout, se.Code)
	assert.Equal(t, 1, scrolls)
}

func TestRunSteps_ScrollFailure(t *testing.T) {
	scrolls := 0
	err := runSteps(context.Background(), RevealPlan{Steps: 3}, 800, func(float64) error {
		scrolls++
		return errors.New("target closed")
	})

	var se *models.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.ErrCodeNavigation, se.Code)
	assert.Equal(t, 1, scrolls)
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), 0))
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}
