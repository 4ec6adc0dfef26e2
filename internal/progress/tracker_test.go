package progress_test

import (
	"sync"
	"testing"
	"time"

	"stylegen/internal/progress"
)

func fixedClock() func() time.Time {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return start }
}

func TestResetInitializesState(t *testing.T) {
	tr := progress.NewTracker(progress.WithClock(fixedClock()))
	tr.Advance(3, "old", "")
	tr.Reset(5)

	s := tr.Snapshot()
	if s.Current != 0 || s.Total != 5 || s.Complete {
		t.Fatalf("unexpected state after reset: %+v", s)
	}
	if !s.StartedAt.Equal(fixedClock()()) {
		t.Fatalf("unexpected start time %v", s.StartedAt)
	}
}

func TestAdvanceIsMonotonicAndClamped(t *testing.T) {
	tr := progress.NewTracker()
	tr.Reset(3)

	tr.Advance(2, "template_match", "b.jpg")
	tr.Advance(1, "style_analysis", "a.jpg")
	s := tr.Snapshot()
	if s.Current != 2 {
		t.Fatalf("counter decreased: %d", s.Current)
	}
	if s.Stage != "style_analysis" || s.Detail != "a.jpg" {
		t.Fatalf("label should still update: %+v", s)
	}

	tr.Advance(99, "done", "")
	if got := tr.Snapshot().Current; got != 3 {
		t.Fatalf("expected clamp to total, got %d", got)
	}
	tr.Advance(-4, "", "")
	if got := tr.Snapshot().Current; got != 3 {
		t.Fatalf("negative index should not move counter, got %d", got)
	}
}

func TestDescribeKeepsCounter(t *testing.T) {
	tr := progress.NewTracker()
	tr.Reset(2)
	tr.Advance(1, "load", "a.jpg")
	tr.Describe("style_analysis", "b.jpg")
	s := tr.Snapshot()
	if s.Current != 1 || s.Stage != "style_analysis" || s.Detail != "b.jpg" {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestCompleteSetsCurrentToTotal(t *testing.T) {
	tr := progress.NewTracker()
	tr.Reset(4)
	tr.Advance(1, "load", "")
	tr.Complete()
	tr.Complete()
	s := tr.Snapshot()
	if !s.Complete || s.Current != 4 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestEmptyBatchCompletes(t *testing.T) {
	tr := progress.NewTracker()
	tr.Reset(0)
	tr.Complete()
	s := tr.Snapshot()
	if s.Total != 0 || !s.Complete || s.Current != 0 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestSubscribeDeliversLatest(t *testing.T) {
	tr := progress.NewTracker()
	tr.Reset(10)
	ch, cancel := tr.Subscribe()
	defer cancel()

	for i := 1; i <= 5; i++ {
		tr.Advance(i, "load", "")
	}
	s := <-ch
	if s.Current != 5 {
		t.Fatalf("expected latest snapshot, got %+v", s)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected no buffered backlog, got %+v", extra)
	default:
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	tr := progress.NewTracker()
	ch, cancel := tr.Subscribe()
	<-ch
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	tr.Advance(1, "load", "")
}

func TestConcurrentWritersNeverDecrease(t *testing.T) {
	tr := progress.NewTracker()
	const total = 200
	tr.Reset(total)

	ch, cancel := tr.Subscribe()
	defer cancel()

	done := make(chan struct{})
	violations := make(chan int, 1)
	go func() {
		defer close(done)
		last := 0
		for s := range ch {
			if s.Current < last {
				select {
				case violations <- s.Current:
				default:
				}
			}
			last = s.Current
			if s.Complete {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 1; i <= total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Advance(i, "load", "")
		}(i)
	}
	wg.Wait()
	tr.Complete()
	<-done

	select {
	case v := <-violations:
		t.Fatalf("observed decreasing counter: %d", v)
	default:
	}
}
