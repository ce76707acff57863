// Package resolve decides whether an insight candidate updates an
// existing memory or creates a new one.
package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/mnemo-ai/mnemo/internal/extract"
	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/store"
)

// Resolver merges candidates into the store.
type Resolver struct {
	store store.Store
}

// New creates a Resolver over the given store.
func New(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Outcome reports what Resolve did with a candidate.
type Outcome struct {
	Memory  *model.Memory
	Updated bool // true when an existing memory was corrected
}

// Resolve looks for an active memory of the same owner and kind with
// similar content. Similarity is lexical: substring either direction for
// personal facts, tag intersection otherwise. A match is treated as a
// correction: the newer statement wins, importance is raised to the
// max of old and new, and the prior content is archived. No match
// creates a fresh memory.
//
// Callers in the conversation path must treat a returned StorageError as
// non-fatal: the turn proceeds without the write.
func (r *Resolver) Resolve(ctx context.Context, ownerID string, c extract.Candidate) (Outcome, error) {
	existing, err := r.store.FindSimilar(ctx, ownerID, c.Kind, c.Content, c.Tags)
	if err != nil {
		return Outcome{}, &model.StorageError{Op: "find similar", Err: err}
	}

	if existing != nil {
		updated, err := r.store.UpdateContent(ctx, existing.ID, c.Content, c.Importance, c.Tags)
		if err != nil {
			return Outcome{}, &model.StorageError{Op: "update", Err: err}
		}
		return Outcome{Memory: updated, Updated: true}, nil
	}

	now := time.Now().UTC()
	m := &model.Memory{
		OwnerID: ownerID,
		Kind:    c.Kind,
		Content: c.Content,
		Emotional: model.Emotional{
			Importance:          c.Importance,
			Sentiment:           c.Sentiment,
			EmotionWhenCaptured: c.Emotion,
		},
		Temporal: model.Temporal{
			Timeframe: c.Timeframe,
			Recency:   c.Recency,
			Frequency: c.Frequency,
		},
		Usage: model.Usage{
			AccessCount:    0,
			LastAccessedAt: now,
			Effectiveness:  model.DefaultEffectiveness,
		},
		Tags:   c.Tags,
		Active: true,
	}

	created, err := r.store.Insert(ctx, m)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return Outcome{}, err
		}
		return Outcome{}, &model.StorageError{Op: "insert", Err: err}
	}
	return Outcome{Memory: created}, nil
}
