package logging

import (
	"context"
	"testing"
	"time"
)

func TestPerformanceMetricsRecordsSlowQueryAboveThreshold(t *testing.T) {
	pm := NewPerformanceMetrics()
	pm.SetSlowQueryThreshold(10 * time.Millisecond)
	logger := NewLogger(ERROR) // suppress WARN output from cluttering test logs

	pm.LogSlowQuery(context.Background(), "SELECT 1", 5*time.Millisecond, logger)
	if got := pm.GetSlowQueries(); len(got) != 0 {
		t.Fatalf("len(slow queries) = %d, want 0 below threshold", len(got))
	}

	pm.LogSlowQuery(context.Background(), "SELECT 1", 50*time.Millisecond, logger)
	got := pm.GetSlowQueries()
	if len(got) != 1 || got[0].Query != "SELECT 1" {
		t.Fatalf("GetSlowQueries = %+v", got)
	}
}

func TestPerformanceMetricsRecordsSlowEndpoint(t *testing.T) {
	pm := NewPerformanceMetrics()
	pm.SetSlowEndpointThreshold(10 * time.Millisecond)
	logger := NewLogger(ERROR)

	pm.LogSlowEndpoint("GET", "/sessions", 50*time.Millisecond, 200, "req-1", logger)
	got := pm.GetSlowEndpoints()
	if len(got) != 1 || got[0].Path != "/sessions" || got[0].StatusCode != 200 {
		t.Fatalf("GetSlowEndpoints = %+v", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Fatalf("truncateString(short) = %q", got)
	}
	if got := truncateString("a very long query string", 10); got != "a very lon..." {
		t.Fatalf("truncateString(long) = %q", got)
	}
}
