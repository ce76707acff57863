// Package memory wires the extraction, resolution, ranking and feedback
// components into the interface the conversation pipeline consumes.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mnemo-ai/mnemo/internal/extract"
	"github.com/mnemo-ai/mnemo/internal/feedback"
	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/rank"
	"github.com/mnemo-ai/mnemo/internal/resolve"
	"github.com/mnemo-ai/mnemo/internal/store"
)

// Service is the memory subsystem facade. All dependencies are injected;
// there is no ambient shared state.
type Service struct {
	store    store.Store
	resolver *resolve.Resolver
	ranker   *rank.Ranker
	manager  *feedback.Manager
	log      *slog.Logger

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

// New creates a Service over the given store. A nil logger falls back to
// slog.Default.
func New(st store.Store, policy feedback.Policy, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    st,
		resolver: resolve.New(st),
		ranker:   rank.New(st),
		manager:  feedback.New(st, policy),
		log:      log,
		owners:   map[string]*sync.Mutex{},
	}
}

// ownerLock serializes resolution per owner so duplicate submissions
// cannot race the merge-or-create decision. Locks are kept for the
// process lifetime; owner cardinality is bounded by real users.
func (s *Service) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lk, ok := s.owners[ownerID]
	if !ok {
		lk = &sync.Mutex{}
		s.owners[ownerID] = lk
	}
	return lk
}

// RecordTurn extracts insights from one utterance and merges them into
// the owner's memories. It returns every memory touched this turn.
//
// Memory writes are best-effort: individual failures are logged and
// skipped, and an error is returned only when nothing could be written.
// Writes run on a detached context so a disconnecting client does not
// lose a half-recorded turn.
func (s *Service) RecordTurn(ctx context.Context, ownerID, utterance string, tc extract.TurnContext) ([]model.Memory, error) {
	if ownerID == "" {
		return nil, &model.ValidationError{Field: "owner_id", Reason: "must not be empty"}
	}

	candidates := extract.Extract(utterance, tc)
	if len(candidates) == 0 {
		return nil, nil
	}

	wctx := context.WithoutCancel(ctx)

	lk := s.ownerLock(ownerID)
	lk.Lock()
	defer lk.Unlock()

	var touched []model.Memory
	var firstErr error
	for _, c := range candidates {
		out, err := s.resolver.Resolve(wctx, ownerID, c)
		if err != nil {
			s.log.Warn("memory write failed",
				"owner", ownerID, "kind", c.Kind, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		touched = append(touched, *out.Memory)
	}

	if len(touched) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return touched, nil
}

// RetrieveContext ranks the owner's memories for the next generation
// prompt. Reads take no owner lock: stale reads are acceptable, and a
// turn's own writes are committed before RecordTurn returns, so
// read-your-writes holds within a request.
func (s *Service) RetrieveContext(ctx context.Context, ownerID string, f rank.Filter, limit int) ([]model.Memory, error) {
	memories, err := s.ranker.Rank(ctx, ownerID, f, limit)
	if err != nil && len(memories) > 0 {
		// Ranked fine but access bookkeeping failed; usable result.
		s.log.Warn("access tracking failed", "owner", ownerID, "err", err)
		return memories, nil
	}
	return memories, err
}

// RecordFeedback forwards an explicit usefulness signal into the
// effectiveness moving average.
func (s *Service) RecordFeedback(ctx context.Context, memoryID string, signal float64) (*model.Memory, error) {
	return s.manager.ApplyFeedback(ctx, memoryID, signal)
}

// Cleanup runs one eviction sweep. Empty ownerID sweeps all owners.
func (s *Service) Cleanup(ctx context.Context, ownerID string) (feedback.SweepResult, error) {
	return s.manager.Sweep(ctx, ownerID)
}
