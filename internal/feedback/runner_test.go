package feedback

import (
	"context"
	"testing"
	"time"
)

func TestRunnerStopsOnCancel(t *testing.T) {
	m, _ := newTestManager(t)
	r := NewRunner(m, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}
