package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingEvicter struct {
	mu      sync.Mutex
	cutoffs []time.Time
	fired   chan struct{}
}

func (r *recordingEvicter) EvictIdle(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	r.cutoffs = append(r.cutoffs, cutoff)
	r.mu.Unlock()
	select {
	case r.fired <- struct{}{}:
	default:
	}
	return 1, nil
}

func TestEvictComputesCutoff(t *testing.T) {
	s := New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ev := &recordingEvicter{fired: make(chan struct{}, 1)}

	s.evict(ev, 90*time.Minute)

	if len(ev.cutoffs) != 1 || !ev.cutoffs[0].Equal(now.Add(-90*time.Minute)) {
		t.Fatalf("unexpected cutoffs %v", ev.cutoffs)
	}
}

func TestScheduledEvictionRuns(t *testing.T) {
	s := New()
	ev := &recordingEvicter{fired: make(chan struct{}, 1)}
	if err := s.AddEviction("@every 1s", time.Hour, ev); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Start()
	defer s.Stop()

	select {
	case <-ev.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("eviction job did not run")
	}
}

func TestAddEvictionValidation(t *testing.T) {
	s := New()
	ev := &recordingEvicter{fired: make(chan struct{}, 1)}
	if err := s.AddEviction("not a schedule", time.Hour, ev); err == nil {
		t.Fatal("expected error for bad schedule")
	}
	if err := s.AddEviction("@every 1m", 0, ev); err != nil {
		t.Fatalf("disabled eviction should not fail: %v", err)
	}
	if s.Jobs() != 0 {
		t.Fatalf("expected no jobs, got %d", s.Jobs())
	}
}
