package logging

import (
	"sync"
	"time"
)

// PerformanceMetrics tracks how long the session-core actor spends encoding
// outbound frames and dispatching inbound ones (spec.md §5's single
// serialization point). A FIX session has no analog to a slow SQL query or
// HTTP endpoint; the two operations that actually gate throughput here are
// sendOrDone's encode-archive-enqueue path and handleInbound's
// classify-and-dispatch path, so those are what this file tracks instead.
// The default thresholds are a fraction of a typical 30s HeartBtInt: a send
// or dispatch taking more than 50ms is already eating meaningfully into the
// budget before the next heartbeat is due.
type PerformanceMetrics struct {
	mu                    sync.RWMutex
	slowSends             []*SlowSend
	slowDispatches        []*SlowDispatch
	slowSendThreshold     time.Duration
	slowDispatchThreshold time.Duration
}

// SlowSend represents an outbound message whose encode+archive+enqueue took
// longer than slowSendThreshold.
type SlowSend struct {
	SessionID  string
	MsgType    string
	Duration   time.Duration
	Timestamp  time.Time
	StackTrace string
}

// SlowDispatch represents an inbound message whose gap-classification and
// handler dispatch took longer than slowDispatchThreshold.
type SlowDispatch struct {
	SessionID string
	MsgType   string
	Duration  time.Duration
	Timestamp time.Time
}

// NewPerformanceMetrics creates a new performance metrics tracker
func NewPerformanceMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{
		slowSends:             make([]*SlowSend, 0),
		slowDispatches:        make([]*SlowDispatch, 0),
		slowSendThreshold:     50 * time.Millisecond,
		slowDispatchThreshold: 50 * time.Millisecond,
	}
}

// LogSlowSend records and logs an outbound send that crossed the threshold.
func (pm *PerformanceMetrics) LogSlowSend(sessionID, msgType string, duration time.Duration, logger *Logger) {
	if duration < pm.slowSendThreshold {
		return
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	ss := &SlowSend{
		SessionID:  sessionID,
		MsgType:    msgType,
		Duration:   duration,
		Timestamp:  time.Now(),
		StackTrace: getStackTrace(),
	}

	pm.slowSends = append(pm.slowSends, ss)
	if len(pm.slowSends) > 100 {
		pm.slowSends = pm.slowSends[1:]
	}

	logger.Warn("slow outbound send",
		SessionID(sessionID),
		MsgType(msgType),
		Float64("duration_ms", float64(duration.Milliseconds())),
		String("threshold_ms", pm.slowSendThreshold.String()),
	)
}

// LogSlowDispatch records and logs an inbound classify-and-dispatch that
// crossed the threshold.
func (pm *PerformanceMetrics) LogSlowDispatch(sessionID, msgType string, duration time.Duration, logger *Logger) {
	if duration < pm.slowDispatchThreshold {
		return
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	sd := &SlowDispatch{
		SessionID: sessionID,
		MsgType:   msgType,
		Duration:  duration,
		Timestamp: time.Now(),
	}

	pm.slowDispatches = append(pm.slowDispatches, sd)
	if len(pm.slowDispatches) > 100 {
		pm.slowDispatches = pm.slowDispatches[1:]
	}

	logger.Warn("slow inbound dispatch",
		SessionID(sessionID),
		MsgType(msgType),
		Float64("duration_ms", float64(duration.Milliseconds())),
		String("threshold_ms", pm.slowDispatchThreshold.String()),
	)
}

// GetSlowSends returns recent slow sends
func (pm *PerformanceMetrics) GetSlowSends() []*SlowSend {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	sends := make([]*SlowSend, len(pm.slowSends))
	copy(sends, pm.slowSends)
	return sends
}

// GetSlowDispatches returns recent slow dispatches
func (pm *PerformanceMetrics) GetSlowDispatches() []*SlowDispatch {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	dispatches := make([]*SlowDispatch, len(pm.slowDispatches))
	copy(dispatches, pm.slowDispatches)
	return dispatches
}

// SetSlowSendThreshold sets the threshold for slow-send detection
func (pm *PerformanceMetrics) SetSlowSendThreshold(threshold time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.slowSendThreshold = threshold
}

// SetSlowDispatchThreshold sets the threshold for slow-dispatch detection
func (pm *PerformanceMetrics) SetSlowDispatchThreshold(threshold time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.slowDispatchThreshold = threshold
}

// Global performance metrics instance, shared across every Engine in the
// process the same way globalErrorTracker and globalMasker are.
var globalPerfMetrics = NewPerformanceMetrics()

// LogSlowSend logs a slow outbound send using the global metrics tracker.
func LogSlowSend(sessionID, msgType string, duration time.Duration) {
	globalPerfMetrics.LogSlowSend(sessionID, msgType, duration, defaultLogger)
}

// LogSlowDispatch logs a slow inbound dispatch using the global metrics
// tracker.
func LogSlowDispatch(sessionID, msgType string, duration time.Duration) {
	globalPerfMetrics.LogSlowDispatch(sessionID, msgType, duration, defaultLogger)
}

// GetSlowSends returns global slow sends
func GetSlowSends() []*SlowSend {
	return globalPerfMetrics.GetSlowSends()
}

// GetSlowDispatches returns global slow dispatches
func GetSlowDispatches() []*SlowDispatch {
	return globalPerfMetrics.GetSlowDispatches()
}
