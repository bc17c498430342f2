package logging

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ErrorTracker aggregates session-fatal and recoverable protocol errors so
// an operator dashboard can alert on a spike instead of scrolling logs.
// Severities follow the session lifecycle (spec.md §4.7/§4.7b), not a
// generic web-backend scale: a session-fatal error (the actor engine's Run
// returning) is rarer and more urgent than a sequence gap, which is itself
// rarer than an expected duplicate.
type ErrorTracker struct {
	mu              sync.RWMutex
	errors          map[string]*ErrorStats
	alertThresholds map[string]int
	alertCallbacks  []AlertCallback
	cleanupInterval time.Duration
	retentionPeriod time.Duration
	stopChan        chan struct{}
}

// ErrorStats tracks statistics for a specific error
type ErrorStats struct {
	ErrorType        string
	Message          string
	Count            int64
	FirstSeen        time.Time
	LastSeen         time.Time
	Occurrences      []time.Time
	Contexts         []map[string]interface{}
	StackTraces      []string
	AffectedSessions map[string]bool
	Severity         string
	Alerted          bool
}

// AlertCallback is called when an error threshold is exceeded
type AlertCallback func(stats *ErrorStats)

// NewErrorTracker creates a tracker with FIX session severities: a single
// session-fatal error alerts immediately (it means an engine actor died),
// gaps and resends alert at a handful of occurrences, and the often-benign
// duplicate-message case only alerts once it's frequent enough to suggest a
// counterparty retransmit storm rather than ordinary PossDup traffic.
func NewErrorTracker() *ErrorTracker {
	et := &ErrorTracker{
		errors: make(map[string]*ErrorStats),
		alertThresholds: map[string]int{
			"session-fatal": 1,
			"gap":           3,
			"resend":        5,
			"duplicate":     50,
		},
		cleanupInterval: 5 * time.Minute,
		retentionPeriod: 1 * time.Hour,
		stopChan:        make(chan struct{}),
	}

	go et.cleanupLoop()

	return et
}

// Track records an error occurrence
func (et *ErrorTracker) Track(ctx context.Context, err error, severity string, extra map[string]interface{}) {
	if err == nil {
		return
	}

	errorKey := fmt.Sprintf("%s:%s", severity, err.Error())

	et.mu.Lock()
	defer et.mu.Unlock()

	stats, exists := et.errors[errorKey]
	if !exists {
		stats = &ErrorStats{
			ErrorType:        getErrorType(err),
			Message:          err.Error(),
			FirstSeen:        time.Now(),
			Contexts:         make([]map[string]interface{}, 0),
			StackTraces:      make([]string, 0),
			AffectedSessions: make(map[string]bool),
			Severity:         severity,
		}
		et.errors[errorKey] = stats
	}

	stats.Count++
	stats.LastSeen = time.Now()
	stats.Occurrences = append(stats.Occurrences, time.Now())

	if extra != nil {
		stats.Contexts = append(stats.Contexts, extra)
	}

	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok && sessionID != "" {
		stats.AffectedSessions[sessionID] = true
	}

	// Store stack trace for new occurrences (limit to last 10)
	if len(stats.StackTraces) < 10 {
		stats.StackTraces = append(stats.StackTraces, getStackTrace())
	}

	threshold := et.alertThresholds[severity]
	if !stats.Alerted && stats.Count >= int64(threshold) {
		stats.Alerted = true
		et.triggerAlerts(stats)
	}
}

// RegisterAlertCallback adds a callback for error alerts
func (et *ErrorTracker) RegisterAlertCallback(callback AlertCallback) {
	et.mu.Lock()
	defer et.mu.Unlock()
	et.alertCallbacks = append(et.alertCallbacks, callback)
}

// GetStats returns current error statistics
func (et *ErrorTracker) GetStats() map[string]*ErrorStats {
	et.mu.RLock()
	defer et.mu.RUnlock()

	stats := make(map[string]*ErrorStats)
	for k, v := range et.errors {
		statsCopy := *v
		stats[k] = &statsCopy
	}

	return stats
}

// GetTopErrors returns the top N errors by count
func (et *ErrorTracker) GetTopErrors(n int) []*ErrorStats {
	et.mu.RLock()
	defer et.mu.RUnlock()

	var errors []*ErrorStats
	for _, stats := range et.errors {
		errors = append(errors, stats)
	}

	for i := 0; i < len(errors)-1; i++ {
		for j := i + 1; j < len(errors); j++ {
			if errors[j].Count > errors[i].Count {
				errors[i], errors[j] = errors[j], errors[i]
			}
		}
	}

	if n > len(errors) {
		n = len(errors)
	}

	return errors[:n]
}

// Clear resets all error statistics
func (et *ErrorTracker) Clear() {
	et.mu.Lock()
	defer et.mu.Unlock()
	et.errors = make(map[string]*ErrorStats)
}

// Stop stops the error tracker cleanup loop
func (et *ErrorTracker) Stop() {
	close(et.stopChan)
}

func (et *ErrorTracker) triggerAlerts(stats *ErrorStats) {
	for _, callback := range et.alertCallbacks {
		go callback(stats)
	}
}

func (et *ErrorTracker) cleanupLoop() {
	ticker := time.NewTicker(et.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			et.cleanup()
		case <-et.stopChan:
			return
		}
	}
}

func (et *ErrorTracker) cleanup() {
	et.mu.Lock()
	defer et.mu.Unlock()

	cutoff := time.Now().Add(-et.retentionPeriod)
	for key, stats := range et.errors {
		if stats.LastSeen.Before(cutoff) {
			delete(et.errors, key)
		}
	}
}

func getErrorType(err error) string {
	return fmt.Sprintf("%T", err)
}

// Global error tracker, shared by every Engine in the process so the admin
// API can surface one cross-session error feed.
var globalErrorTracker = NewErrorTracker()

// TrackError tracks an error in the global tracker. severity should be one
// of "session-fatal", "gap", "resend", or "duplicate" to match the
// configured alert thresholds.
func TrackError(ctx context.Context, err error, severity string, extra map[string]interface{}) {
	globalErrorTracker.Track(ctx, err, severity, extra)
}

// GetErrorStats returns global error statistics
func GetErrorStats() map[string]*ErrorStats {
	return globalErrorTracker.GetStats()
}

// GetTopErrors returns top errors from global tracker
func GetTopErrors(n int) []*ErrorStats {
	return globalErrorTracker.GetTopErrors(n)
}

// RegisterErrorAlert registers a global error alert callback
func RegisterErrorAlert(callback AlertCallback) {
	globalErrorTracker.RegisterAlertCallback(callback)
}
