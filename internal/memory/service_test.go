package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mnemo-ai/mnemo/internal/extract"
	"github.com/mnemo-ai/mnemo/internal/feedback"
	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/rank"
	"github.com/mnemo-ai/mnemo/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, feedback.DefaultPolicy(), nil), s
}

func TestRecordTurnCreatesMemories(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	touched, err := svc.RecordTurn(ctx, "u1", "My name is Dana and I love hiking", extract.TurnContext{})
	if err != nil {
		t.Fatalf("record turn: %v", err)
	}
	if len(touched) < 2 {
		t.Fatalf("expected at least 2 memories, got %d", len(touched))
	}
}

func TestRecordTurnEmptyOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.RecordTurn(ctx, "", "My name is Dana", extract.TurnContext{})
	if err == nil {
		t.Fatal("expected validation error for empty owner")
	}
}

func TestRecordTurnNothingExtracted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	touched, err := svc.RecordTurn(ctx, "u1", "the weather is nice", extract.TurnContext{})
	if err != nil {
		t.Fatalf("record turn: %v", err)
	}
	if len(touched) != 0 {
		t.Errorf("expected no memories, got %d", len(touched))
	}
}

func TestRecordTurnSurvivesCancelledContext(t *testing.T) {
	svc, _ := newTestService(t)

	// Client disconnects mid-turn; the write still lands.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	touched, err := svc.RecordTurn(ctx, "u1", "My name is Dana", extract.TurnContext{})
	if err != nil {
		t.Fatalf("record turn: %v", err)
	}
	if len(touched) != 1 {
		t.Fatalf("expected 1 memory despite cancellation, got %d", len(touched))
	}
}

func TestReadYourWrites(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.RecordTurn(ctx, "u1", "My name is Dana", extract.TurnContext{}); err != nil {
		t.Fatalf("record turn: %v", err)
	}

	memories, err := svc.RetrieveContext(ctx, "u1", rank.Filter{}, 10)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(memories) != 1 || !strings.Contains(memories[0].Content, "Dana") {
		t.Errorf("a turn's writes must be visible to its own ranking call: %+v", memories)
	}
}

func TestOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	svc.RecordTurn(ctx, "a", "My name is Dana", extract.TurnContext{})
	svc.RecordTurn(ctx, "b", "My name is Robin", extract.TurnContext{})

	forB, err := svc.RetrieveContext(ctx, "b", rank.Filter{}, 10)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	for _, m := range forB {
		if m.OwnerID != "b" || strings.Contains(m.Content, "Dana") {
			t.Errorf("owner b saw owner a's memory: %+v", m)
		}
	}
}

func TestConcurrentSameOwnerTurns(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RecordTurn(ctx, "u1", "My name is Dana", extract.TurnContext{})
		}()
	}
	wg.Wait()

	active, _ := s.List(ctx, store.ListParams{OwnerID: "u1", Kinds: []model.Kind{model.KindPersonalFact}})
	if len(active) != 1 {
		t.Errorf("duplicate submissions must merge to 1 active fact, got %d", len(active))
	}
}

func TestCorrectionEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)

	svc.RecordTurn(ctx, "u1", "I'm 25 years old", extract.TurnContext{})
	svc.RecordTurn(ctx, "u1", "Actually, I'm 30", extract.TurnContext{})

	active, _ := s.List(ctx, store.ListParams{OwnerID: "u1", Kinds: []model.Kind{model.KindPersonalFact}})
	if len(active) != 1 {
		t.Fatalf("expected exactly 1 active age fact, got %d", len(active))
	}
	if !strings.Contains(active[0].Content, "30") {
		t.Errorf("content = %q, want the correction to win", active[0].Content)
	}
}

func TestRecallAfterManyTurns(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.RecordTurn(ctx, "u1", "My favorite color is blue and I study at MIT", extract.TurnContext{}); err != nil {
		t.Fatalf("record turn: %v", err)
	}

	for i := 0; i < 12; i++ {
		svc.RecordTurn(ctx, "u1", fmt.Sprintf("unrelated chatter number %d about nothing", i), extract.TurnContext{})
	}

	memories, err := svc.RetrieveContext(ctx, "u1", rank.Filter{}, 10)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	var haveBlue, haveMIT bool
	for _, m := range memories {
		if strings.Contains(m.Content, "blue") {
			haveBlue = true
		}
		if strings.Contains(m.Content, "MIT") {
			haveMIT = true
		}
	}
	if !haveBlue || !haveMIT {
		t.Errorf("expected both facts in context (blue=%v, MIT=%v): %+v", haveBlue, haveMIT, memories)
	}
}

func TestRecordFeedbackRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	touched, _ := svc.RecordTurn(ctx, "u1", "My name is Dana", extract.TurnContext{})
	mem, err := svc.RecordFeedback(ctx, touched[0].ID, 1.0)
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if mem.Usage.Effectiveness <= model.DefaultEffectiveness {
		t.Errorf("positive feedback should raise effectiveness, got %v", mem.Usage.Effectiveness)
	}
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	res, err := svc.Cleanup(ctx, "")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if res.SoftDeleted != 0 || res.HardDeleted != 0 {
		t.Errorf("fresh store should sweep nothing, got %+v", res)
	}
}
