package extractor

import (
	"context"
	"time"

	"github.com/use-agent/xfeed/models"
)

// Snapshot is the rendered state of a page at one instant.
type Snapshot struct {
	HTML string
	URL  string
}

// Source produces snapshots of a live page.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Collect snapshots src and extracts a batch. When no selector scheme
// matches any block it waits retryWait once and tries again; an empty
// page after the retry is a valid, empty batch.
func Collect(ctx context.Context, src Source, opts Options, retryWait time.Duration) (models.Batch, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return models.Batch{}, err
	}
	batch := Extract(snap.HTML, snap.URL, opts)
	if batch.Blocks > 0 || retryWait <= 0 {
		return batch, nil
	}

	timer := time.NewTimer(retryWait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return batch, nil
	}

	snap, err = src.Snapshot(ctx)
	if err != nil {
		return models.Batch{}, err
	}
	return Extract(snap.HTML, snap.URL, opts), nil
}
