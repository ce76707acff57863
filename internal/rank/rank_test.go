package rank

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/store"
)

func newTestRanker(t *testing.T) (*Ranker, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func insertMemory(t *testing.T, s *store.SQLiteStore, owner, content string, importance int, mut func(*model.Memory)) *model.Memory {
	t.Helper()
	m := &model.Memory{
		OwnerID: owner,
		Kind:    model.KindPersonalFact,
		Content: content,
		Emotional: model.Emotional{
			Importance: importance,
		},
		Temporal: model.Temporal{
			Timeframe: model.TimeframePresent,
			Recency:   model.RecencyRecent,
			Frequency: model.FrequencyOneTime,
		},
		Usage: model.Usage{
			Effectiveness: model.DefaultEffectiveness,
		},
		Active: true,
	}
	if mut != nil {
		mut(m)
	}
	got, err := s.Insert(context.Background(), m)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return got
}

func TestRecencyBuckets(t *testing.T) {
	const day = 24 * time.Hour
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{time.Hour, 1.0},
		{day - time.Minute, 1.0},
		{day + time.Minute, 0.8},
		{6 * day, 0.8},
		{8 * day, 0.6},
		{29 * day, 0.6},
		{31 * day, 0.4},
		{89 * day, 0.4},
		{91 * day, 0.2},
		{364 * day, 0.2},
		{366 * day, 0.1},
		{10 * 365 * day, 0.1},
	}
	for _, tt := range tests {
		if got := recencyScore(tt.age); got != tt.want {
			t.Errorf("recencyScore(%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestScoreFormula(t *testing.T) {
	now := time.Now()
	m := &model.Memory{
		Emotional: model.Emotional{Importance: 10},
		Usage: model.Usage{
			AccessCount:    5,
			LastAccessedAt: now.Add(-time.Hour),
			Effectiveness:  0.5,
		},
	}
	// 0.4*1.0 + 0.3*1.0 + 0.2*0.5 + 0.1*0.5
	want := 0.85
	if got := Score(m, now); math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}

	// Access count saturates at 10
	m.Usage.AccessCount = 50
	want = 0.4 + 0.3 + 0.2 + 0.05
	if got := Score(m, now); math.Abs(got-want) > 1e-9 {
		t.Errorf("saturated Score = %v, want %v", got, want)
	}
}

func TestRankOrdering(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRanker(t)

	recent := time.Now()
	stale := recent.Add(-100 * 24 * time.Hour)

	insertMemory(t, s, "u1", "low and stale", 2, func(m *model.Memory) {
		m.Usage.LastAccessedAt = stale
	})
	insertMemory(t, s, "u1", "high and fresh", 9, func(m *model.Memory) {
		m.Usage.LastAccessedAt = recent
	})

	got, err := r.Rank(ctx, "u1", Filter{}, 10)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].Content != "high and fresh" {
		t.Errorf("best first: got %q", got[0].Content)
	}
}

func TestRankDeterministic(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRanker(t)

	// Identical scores force the updated_at/id tie-breaks.
	for i := 0; i < 5; i++ {
		insertMemory(t, s, "u1", "same score", 5, nil)
	}

	fixed := time.Now()
	r.now = func() time.Time { return fixed }

	first, err := r.Rank(ctx, "u1", Filter{}, 10)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	// Repeated calls bump access counts uniformly, so ordering holds.
	for i := 0; i < 3; i++ {
		again, err := r.Rank(ctx, "u1", Filter{}, 10)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("ordering changed on call %d at %d", i, j)
			}
		}
	}
}

func TestRankAccessSideEffect(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRanker(t)

	mem := insertMemory(t, s, "u1", "a fact", 5, nil)

	got, _ := r.Rank(ctx, "u1", Filter{}, 10)
	if got[0].Usage.AccessCount != 1 {
		t.Errorf("returned access_count = %d, want 1", got[0].Usage.AccessCount)
	}

	stored, _ := s.Get(ctx, mem.ID)
	if stored.Usage.AccessCount != 1 {
		t.Errorf("stored access_count = %d, want 1", stored.Usage.AccessCount)
	}
}

func TestRankLimitAndDefault(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRanker(t)

	for i := 0; i < 15; i++ {
		insertMemory(t, s, "u1", "fact", 5, nil)
	}

	got, _ := r.Rank(ctx, "u1", Filter{}, 3)
	if len(got) != 3 {
		t.Errorf("expected 3, got %d", len(got))
	}

	got, _ = r.Rank(ctx, "u1", Filter{}, 0)
	if len(got) != DefaultLimit {
		t.Errorf("expected default %d, got %d", DefaultLimit, len(got))
	}
}

func TestRankFilters(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRanker(t)

	insertMemory(t, s, "u1", "sad moment", 5, func(m *model.Memory) {
		m.Kind = model.KindEmotionalPattern
		m.Emotional.EmotionWhenCaptured = "sad"
		m.Tags = []string{"emotion", "sad"}
	})
	insertMemory(t, s, "u1", "likes hiking", 5, func(m *model.Memory) {
		m.Kind = model.KindPreference
		m.Tags = []string{"outdoors"}
	})

	byEmotion, _ := r.Rank(ctx, "u1", Filter{Emotion: "sad"}, 10)
	if len(byEmotion) != 1 || byEmotion[0].Content != "sad moment" {
		t.Errorf("emotion filter failed: %+v", byEmotion)
	}

	byTopic, _ := r.Rank(ctx, "u1", Filter{Topics: []string{"outdoors"}}, 10)
	if len(byTopic) != 1 || byTopic[0].Content != "likes hiking" {
		t.Errorf("topic filter failed: %+v", byTopic)
	}

	byKind, _ := r.Rank(ctx, "u1", Filter{Kinds: []model.Kind{model.KindPreference}}, 10)
	if len(byKind) != 1 || byKind[0].Kind != model.KindPreference {
		t.Errorf("kind filter failed: %+v", byKind)
	}
}

func TestRankOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRanker(t)

	insertMemory(t, s, "u1", "u1 fact", 5, nil)

	got, err := r.Rank(ctx, "u2", Filter{}, 10)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("u2 must not see u1 memories, got %+v", got)
	}
}
