// Package rank scores and selects the most relevant memories for a turn.
package rank

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/store"
)

// DefaultLimit caps results when the caller passes no limit.
const DefaultLimit = 10

// Composite score weights.
const (
	weightImportance    = 0.4
	weightRecency       = 0.3
	weightAccess        = 0.2
	weightEffectiveness = 0.1
)

// Filter narrows the candidate set before scoring.
type Filter struct {
	Emotion string       // matches emotion captured with the memory
	Topics  []string     // any-overlap with memory tags
	Kinds   []model.Kind // restrict to these kinds
}

// Ranker selects top-K memories for an owner.
type Ranker struct {
	store store.Store
	now   func() time.Time
}

// New creates a Ranker over the given store.
func New(st store.Store) *Ranker {
	return &Ranker{store: st, now: time.Now}
}

// Rank returns at most limit active memories for the owner, best first.
// Ordering is deterministic: score descending, then updated_at
// descending, then id ascending.
//
// Being ranked counts as being used: every returned memory has its
// access count incremented and last-accessed time advanced. When that
// bookkeeping write fails the memories are still returned alongside the
// error.
func (r *Ranker) Rank(ctx context.Context, ownerID string, f Filter, limit int) ([]model.Memory, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	memories, err := r.store.List(ctx, store.ListParams{
		OwnerID: ownerID,
		Kinds:   f.Kinds,
		Emotion: f.Emotion,
		Tags:    f.Topics,
	})
	if err != nil {
		return nil, &model.StorageError{Op: "list", Err: err}
	}
	if len(memories) == 0 {
		return nil, nil
	}

	now := r.now()
	sort.Slice(memories, func(i, j int) bool {
		si, sj := Score(&memories[i], now), Score(&memories[j], now)
		if si != sj {
			return si > sj
		}
		if !memories[i].UpdatedAt.Equal(memories[j].UpdatedAt) {
			return memories[i].UpdatedAt.After(memories[j].UpdatedAt)
		}
		return memories[i].ID < memories[j].ID
	})

	if len(memories) > limit {
		memories = memories[:limit]
	}

	ids := make([]string, len(memories))
	for i := range memories {
		ids[i] = memories[i].ID
		memories[i].Usage.AccessCount++
		if now.After(memories[i].Usage.LastAccessedAt) {
			memories[i].Usage.LastAccessedAt = now.UTC()
		}
	}
	if err := r.store.MarkAccessed(ctx, ids, now); err != nil {
		return memories, &model.StorageError{Op: "mark accessed", Err: err}
	}
	return memories, nil
}

// Score computes the composite relevance score at the given time.
func Score(m *model.Memory, now time.Time) float64 {
	importance := float64(m.Emotional.Importance-1) / 9
	access := math.Min(float64(m.Usage.AccessCount), 10) / 10
	return weightImportance*importance +
		weightRecency*recencyScore(now.Sub(m.Usage.LastAccessedAt)) +
		weightAccess*access +
		weightEffectiveness*m.Usage.Effectiveness
}

// recencyScore buckets age since last access.
func recencyScore(age time.Duration) float64 {
	const day = 24 * time.Hour
	switch {
	case age < day:
		return 1.0
	case age < 7*day:
		return 0.8
	case age < 30*day:
		return 0.6
	case age < 90*day:
		return 0.4
	case age < 365*day:
		return 0.2
	}
	return 0.1
}
