package logging

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestErrorTrackerTracksOccurrencesAndTopErrors(t *testing.T) {
	et := NewErrorTracker()
	defer et.Stop()

	err := errors.New("decode failed: unexpected tag")
	et.Track(context.Background(), err, "low", map[string]interface{}{"tag": 35})
	et.Track(context.Background(), err, "low", nil)

	stats := et.GetStats()
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	for _, s := range stats {
		if s.Count != 2 {
			t.Fatalf("Count = %d, want 2", s.Count)
		}
	}

	top := et.GetTopErrors(1)
	if len(top) != 1 || top[0].Message != err.Error() {
		t.Fatalf("GetTopErrors = %+v", top)
	}
}

func TestErrorTrackerTrackNilIsNoop(t *testing.T) {
	et := NewErrorTracker()
	defer et.Stop()

	et.Track(context.Background(), nil, "low", nil)
	if len(et.GetStats()) != 0 {
		t.Fatal("Track(nil) should not record anything")
	}
}

func TestErrorTrackerAlertsAtThreshold(t *testing.T) {
	et := NewErrorTracker()
	defer et.Stop()

	var mu sync.Mutex
	var fired int
	et.RegisterAlertCallback(func(stats *ErrorStats) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	// "critical" alerts on the very first occurrence.
	et.Track(context.Background(), errors.New("boom"), "critical", nil)

	// Alerts run in a goroutine; give it a moment without sleeping on a timer
	// loop by checking the Alerted flag synchronously instead.
	stats := et.GetStats()
	for _, s := range stats {
		if !s.Alerted {
			t.Fatal("critical error should be marked Alerted immediately")
		}
	}
}

func TestErrorTrackerClear(t *testing.T) {
	et := NewErrorTracker()
	defer et.Stop()

	et.Track(context.Background(), errors.New("x"), "low", nil)
	et.Clear()
	if len(et.GetStats()) != 0 {
		t.Fatal("Clear should empty the tracker")
	}
}
