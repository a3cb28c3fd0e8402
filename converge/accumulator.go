package converge

import (
	"github.com/use-agent/xfeed/extractor"
	"github.com/use-agent/xfeed/models"
)

// accumulator merges batches into an insertion-ordered set of unique
// records capped at limit.
type accumulator struct {
	limit   int
	seen    map[string]struct{}
	records []models.Record
}

func newAccumulator(limit int) *accumulator {
	return &accumulator{
		limit:   limit,
		seen:    make(map[string]struct{}, limit),
		records: make([]models.Record, 0, limit),
	}
}

// merge inserts unseen records in order and reports how many were added.
// It stops as soon as the accumulator is full.
func (a *accumulator) merge(recs []models.Record) int {
	added := 0
	for _, r := range recs {
		if a.full() {
			break
		}
		id := extractor.NormalizeID(r.ID)
		if id == "" {
			continue
		}
		if _, dup := a.seen[id]; dup {
			continue
		}
		a.seen[id] = struct{}{}
		r.ID = id
		a.records = append(a.records, r)
		added++
	}
	return added
}

func (a *accumulator) full() bool { return len(a.records) >= a.limit }

func (a *accumulator) len() int { return len(a.records) }
