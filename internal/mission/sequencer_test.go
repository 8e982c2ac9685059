package mission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycircuit/hoopmission/internal/types"
)

type stubMode struct {
	name          string
	completeAfter int

	checks int
	calls  []string
}

func (s *stubMode) Name() string { return s.name }

func (s *stubMode) Enter() { s.calls = append(s.calls, "enter") }

func (s *stubMode) Update(dt time.Duration) { s.calls = append(s.calls, "update") }

func (s *stubMode) CheckStatus() Status {
	s.calls = append(s.calls, "check")
	s.checks++
	if s.checks >= s.completeAfter {
		return StatusComplete
	}
	return StatusContinue
}

func (s *stubMode) Exit() { s.calls = append(s.calls, "exit") }

type eventRecorder struct {
	mu     sync.Mutex
	events []types.Event
}

func (r *eventRecorder) post(ev types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType
	}
	return out
}

func TestSequencer_RunsModesInOrder(t *testing.T) {
	first := &stubMode{name: "first", completeAfter: 2}
	second := &stubMode{name: "second", completeAfter: 1}
	rec := &eventRecorder{}

	seq := NewSequencer("test-drone", time.Millisecond, &Context{}, rec.post, first, second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	seq.Run(ctx, &wg)
	wg.Wait()

	assert.Equal(t, []string{"enter", "update", "check", "update", "check", "exit"}, first.calls)
	assert.Equal(t, []string{"enter", "update", "check", "exit"}, second.calls)

	assert.Equal(t, []string{
		"mode-entered", "mode-completed",
		"mode-entered", "mode-completed",
		"mission-completed",
	}, rec.eventTypes())
}

func TestSequencer_UpdateRunsBeforeCheckEachTick(t *testing.T) {
	m := &stubMode{name: "only", completeAfter: 3}
	rec := &eventRecorder{}
	seq := NewSequencer("test-drone", time.Millisecond, &Context{}, rec.post, m)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	seq.Run(ctx, &wg)
	wg.Wait()

	// Every check is preceded by an update from the same tick.
	for i, call := range m.calls {
		if call == "check" {
			require.Greater(t, i, 0)
			assert.Equal(t, "update", m.calls[i-1])
		}
	}
}

func TestSequencer_CancellationExitsActiveMode(t *testing.T) {
	stuck := &stubMode{name: "stuck", completeAfter: 1 << 30}
	never := &stubMode{name: "never", completeAfter: 1}
	rec := &eventRecorder{}
	seq := NewSequencer("test-drone", time.Millisecond, &Context{}, rec.post, stuck, never)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	done := make(chan struct{})
	go func() {
		seq.Run(ctx, &wg)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sequencer did not stop after cancellation")
	}
	wg.Wait()

	assert.Equal(t, "exit", stuck.calls[len(stuck.calls)-1])
	assert.Empty(t, never.calls)
	assert.NotContains(t, rec.eventTypes(), "mission-completed")
}

func TestSequencer_ReportsMissionProgress(t *testing.T) {
	m := &stubMode{name: "only", completeAfter: 1}
	rec := &eventRecorder{}
	mc := &Context{}
	seq := NewSequencer("drone-7", time.Millisecond, mc, rec.post, m)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	seq.Run(ctx, &wg)
	wg.Wait()

	require.NotEmpty(t, rec.events)
	for _, ev := range rec.events {
		assert.Equal(t, "drone-7", ev.Drone)
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.Timestamp.IsZero())
	}
}
