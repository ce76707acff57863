// Package synth fabricates clearly-tagged continuity memories for
// emotional consistency. Synthetic memories are never derived from real
// user statements and are always filterable out by kind.
package synth

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/store"
)

// Default generation policy: only for well-established owners, and only
// sometimes.
const (
	TrustThreshold = 7.0
	Probability    = 0.3
)

// Policy controls when a synthetic memory may be generated.
type Policy struct {
	TrustThreshold float64 // owner trust must exceed this
	Probability    float64 // per-call chance of generating
}

// DefaultPolicy returns the built-in thresholds.
func DefaultPolicy() Policy {
	return Policy{TrustThreshold: TrustThreshold, Probability: Probability}
}

// Fixed scores for every synthetic memory.
const (
	importance = 7
	sentiment  = 0.5
)

var toneStatements = map[string][]string{
	"supportive": {
		"User has been through a lot and keeps showing up anyway",
		"User appreciates being checked in on during hard stretches",
		"User has handled difficult conversations before",
	},
	"encouraging": {
		"User makes steady progress when they break things into small steps",
		"User has bounced back from setbacks before",
		"User tends to underestimate how far they've come",
	},
	"empathetic": {
		"User opens up more when given room to talk",
		"User values being heard more than being advised",
		"User has mentioned feeling overwhelmed before and got through it",
	},
}

var fallbackStatements = []string{
	"User values consistency in conversations",
	"User has shared meaningful things in past conversations",
}

// Generator produces synthetic continuity memories.
type Generator struct {
	store  store.Store
	policy Policy
	rng    *rand.Rand
}

// New creates a Generator. The random source is injected so tests can
// force either branch of the generation policy; nil gets a time-seeded
// source.
func New(st store.Store, policy Policy, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{store: st, policy: policy, rng: rng}
}

// MaybeGenerate stores and returns one synthetic memory, or nil when the
// trust/randomness policy says to skip. Call it only after a real turn
// has completed.
func (g *Generator) MaybeGenerate(ctx context.Context, ownerID string, trustLevel float64, toneHint string) (*model.Memory, error) {
	if trustLevel <= g.policy.TrustThreshold {
		return nil, nil
	}
	if g.rng.Float64() >= g.policy.Probability {
		return nil, nil
	}

	tone := strings.ToLower(strings.TrimSpace(toneHint))
	pool, ok := toneStatements[tone]
	if !ok {
		pool = fallbackStatements
	}
	content := pool[g.rng.Intn(len(pool))]

	tags := []string{"generated"}
	if tone != "" {
		tags = append([]string{tone}, tags...)
	}

	now := time.Now().UTC()
	m := &model.Memory{
		OwnerID: ownerID,
		Kind:    model.KindSynthetic,
		Content: content,
		Emotional: model.Emotional{
			Importance: importance,
			Sentiment:  sentiment,
		},
		Temporal: model.Temporal{
			Timeframe: model.TimeframePast,
			Recency:   model.RecencyMonthsAgo,
			Frequency: model.FrequencyOccasional,
		},
		Usage: model.Usage{
			LastAccessedAt: now,
			Effectiveness:  model.DefaultEffectiveness,
		},
		Tags:   tags,
		Active: true,
	}

	created, err := g.store.Insert(ctx, m)
	if err != nil {
		return nil, &model.StorageError{Op: "insert synthetic", Err: err}
	}
	return created, nil
}
