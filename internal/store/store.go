// Package store provides the memory storage interface and SQLite implementation.
package store

import (
	"context"
	"time"

	"github.com/mnemo-ai/mnemo/internal/model"
)

// ListParams holds parameters for listing memories.
type ListParams struct {
	OwnerID         string
	Kinds           []model.Kind
	Emotion         string   // matches emotional.emotion_when_captured
	Tags            []string // any-overlap with memory tags
	IncludeInactive bool
	Limit           int // 0 means no limit
}

// StaleParams selects low-value memories for soft deletion.
type StaleParams struct {
	OwnerID          string // empty means all owners
	NotAccessedSince time.Time
	MaxImportance    int     // exclusive upper bound
	MaxEffectiveness float64 // exclusive upper bound
}

// PurgeParams selects abandoned synthetic memories for hard deletion.
type PurgeParams struct {
	OwnerID          string // empty means all owners
	NotAccessedSince time.Time
	MaxAccessCount   int // exclusive upper bound
}

// Store defines the memory storage interface used by the core components.
type Store interface {
	// Insert validates and stores a new memory, assigning its id and
	// timestamps. Returns the stored memory.
	Insert(ctx context.Context, m *model.Memory) (*model.Memory, error)

	// Get retrieves an active memory by id. Returns model.ErrNotFound
	// for missing or soft-deleted ids.
	Get(ctx context.Context, id string) (*model.Memory, error)

	// FindSimilar returns the most recently updated active memory of the
	// same owner and kind whose content overlaps the given content
	// (substring either direction) or whose tags intersect the given
	// tags. Returns nil, nil when nothing matches.
	FindSimilar(ctx context.Context, ownerID string, kind model.Kind, content string, tags []string) (*model.Memory, error)

	// List returns memories matching the given filters, most recently
	// updated first.
	List(ctx context.Context, p ListParams) ([]model.Memory, error)

	// UpdateContent applies a correction: archives the previous content
	// as a revision, overwrites content, raises importance to
	// max(old, new), unions tags, and bumps updated_at.
	UpdateContent(ctx context.Context, id, content string, importance int, tags []string) (*model.Memory, error)

	// UpdateEffectiveness sets the effectiveness score of an active memory.
	UpdateEffectiveness(ctx context.Context, id string, effectiveness float64) (*model.Memory, error)

	// MarkAccessed increments access counts and advances last_accessed_at
	// for the given ids. last_accessed_at never moves backwards.
	MarkAccessed(ctx context.Context, ids []string, at time.Time) error

	// Deactivate soft-deletes a memory, retaining it for audit.
	Deactivate(ctx context.Context, id string) error

	// DeactivateStale soft-deletes memories matching the staleness
	// criteria. Returns the number of rows affected.
	DeactivateStale(ctx context.Context, p StaleParams) (int, error)

	// PurgeSynthetic hard-deletes abandoned synthetic memories. Returns
	// the number of rows deleted. Only synthetic memories may ever be
	// hard-deleted through the sweep.
	PurgeSynthetic(ctx context.Context, p PurgeParams) (int, error)

	// Revisions returns the correction history of a memory, newest first.
	Revisions(ctx context.Context, memoryID string) ([]model.Revision, error)

	// Close closes the store.
	Close() error
}
