package utils

import (
	"sync"
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(100)
	for i := 1; i <= 100; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}

	// index = 0.50 * 99 = 49, the 50th sorted sample.
	if got := tracker.Percentile(50); got != 50*time.Millisecond {
		t.Fatalf("p50 = %v", got)
	}
	if got := tracker.Percentile(95); got != 95*time.Millisecond {
		t.Fatalf("p95 = %v", got)
	}
	if got := tracker.Percentile(0); got != time.Millisecond {
		t.Fatalf("p0 = %v", got)
	}
	if got := tracker.Percentile(100); got != 100*time.Millisecond {
		t.Fatalf("p100 = %v", got)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	tracker := NewLatencyTracker(10)
	if got := tracker.Percentile(95); got != 0 {
		t.Fatalf("empty tracker p95 = %v", got)
	}
	if got := tracker.Count(); got != 0 {
		t.Fatalf("empty tracker count = %d", got)
	}
}

func TestLatencyTrackerBounded(t *testing.T) {
	tracker := NewLatencyTracker(5)
	for i := 1; i <= 20; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}
	if got := tracker.Count(); got != 5 {
		t.Fatalf("count = %d, want 5", got)
	}
	// Oldest samples are dropped, so the minimum is from the recent window.
	if got := tracker.Percentile(0); got != 16*time.Millisecond {
		t.Fatalf("p0 = %v, want 16ms", got)
	}
}

func TestLatencyTrackerConcurrent(t *testing.T) {
	tracker := NewLatencyTracker(256)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tracker.Observe(time.Duration(i) * time.Microsecond)
				tracker.Percentile(95)
			}
		}()
	}
	wg.Wait()

	if got := tracker.Count(); got != 256 {
		t.Fatalf("count = %d, want 256", got)
	}
}
