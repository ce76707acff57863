// Package feedback maintains memory usefulness scores and evicts
// low-value memories.
package feedback

import (
	"context"
	"time"

	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/store"
)

// Alpha is the smoothing factor of the effectiveness moving average.
const Alpha = 0.2

// Policy holds the eviction thresholds. Importance pins; staleness and
// low effectiveness evict.
type Policy struct {
	StaleAfter         time.Duration // last access older than this is stale
	MaxImportance      int           // soft-delete only below this importance
	MaxEffectiveness   float64       // soft-delete only below this effectiveness
	SyntheticMaxAccess int           // hard-delete synthetic only below this access count
}

// DefaultPolicy returns the standard eviction thresholds.
func DefaultPolicy() Policy {
	return Policy{
		StaleAfter:         365 * 24 * time.Hour,
		MaxImportance:      3,
		MaxEffectiveness:   0.3,
		SyntheticMaxAccess: 2,
	}
}

// Manager applies feedback updates and runs eviction sweeps.
type Manager struct {
	store  store.Store
	policy Policy
	now    func() time.Time
}

// New creates a Manager with the given policy.
func New(st store.Store, policy Policy) *Manager {
	return &Manager{store: st, policy: policy, now: time.Now}
}

// ApplyFeedback folds an explicit usefulness signal into the memory's
// effectiveness via an exponential moving average. The signal must be
// in [0,1]; the stored result is clamped there regardless.
func (m *Manager) ApplyFeedback(ctx context.Context, memoryID string, signal float64) (*model.Memory, error) {
	if signal < 0 || signal > 1 {
		return nil, &model.ValidationError{Field: "signal", Reason: "must be in [0,1]"}
	}

	mem, err := m.store.Get(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	eff := Alpha*signal + (1-Alpha)*mem.Usage.Effectiveness
	if eff < 0 {
		eff = 0
	}
	if eff > 1 {
		eff = 1
	}

	updated, err := m.store.UpdateEffectiveness(ctx, memoryID, eff)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SweepResult reports what an eviction pass removed.
type SweepResult struct {
	SoftDeleted int `json:"soft_deleted"`
	HardDeleted int `json:"hard_deleted"`
}

// Sweep evicts low-value memories. Empty ownerID sweeps all owners.
// Low-importance, stale, ineffective memories are soft-deleted and kept
// for audit; abandoned synthetic memories are the only kind ever
// hard-deleted. Both passes are single row-level SQL statements, so a
// global sweep never blocks live per-owner traffic.
func (m *Manager) Sweep(ctx context.Context, ownerID string) (SweepResult, error) {
	cutoff := m.now().Add(-m.policy.StaleAfter)

	soft, err := m.store.DeactivateStale(ctx, store.StaleParams{
		OwnerID:          ownerID,
		NotAccessedSince: cutoff,
		MaxImportance:    m.policy.MaxImportance,
		MaxEffectiveness: m.policy.MaxEffectiveness,
	})
	if err != nil {
		return SweepResult{}, &model.StorageError{Op: "deactivate stale", Err: err}
	}

	hard, err := m.store.PurgeSynthetic(ctx, store.PurgeParams{
		OwnerID:          ownerID,
		NotAccessedSince: cutoff,
		MaxAccessCount:   m.policy.SyntheticMaxAccess,
	})
	if err != nil {
		return SweepResult{SoftDeleted: soft}, &model.StorageError{Op: "purge synthetic", Err: err}
	}

	return SweepResult{SoftDeleted: soft, HardDeleted: hard}, nil
}
