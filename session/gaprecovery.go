package session

import (
	"fmt"
	"sync"
	"time"
)

// GapStatus classifies an inbound sequence number against the expected next
// target (spec.md §4.7b / §7 "Sequence errors"). Grounded on
// fix/internal/session/gap_recovery.go's GapRecoveryManager.CheckMessage,
// adapted from a standalone per-connection manager into a field the
// session-core owns directly, since spec.md §5 makes the session-core the
// sole writer of session state.
type GapStatus int

const (
	// StatusInSync means receivedSeqNum == expected; advance normally.
	StatusInSync GapStatus = iota
	// StatusGap means receivedSeqNum > expected; a ResendRequest is due
	// once the gap has outlived gapTimeout (out-of-order delivery grace).
	StatusGap
	// StatusDuplicate means receivedSeqNum < expected; legitimate only
	// when the inbound message carries PossDupFlag=Y.
	StatusDuplicate
)

const (
	defaultGapTimeout = 500 * time.Millisecond
	defaultMaxGapSize = 1000
)

// SequenceGap records an outstanding hole in the target sequence stream.
type SequenceGap struct {
	Begin       uint64
	End         uint64
	DetectedAt  time.Time
	RequestSent bool
}

// GapRecovery tracks one session's inbound gap state across the reader
// actor's message-by-message classification. It holds no network state —
// only sequence bookkeeping — so it can be driven synchronously from the
// session-core actor (spec.md §5).
type GapRecovery struct {
	mu          sync.Mutex
	gapTimeout  time.Duration
	maxGapSize  uint64
	currentGap  *SequenceGap
	now         func() time.Time
}

// NewGapRecovery returns a recovery tracker with the teacher's defaults
// (500ms out-of-order grace period, 1000-message max gap before refusing to
// resend-request and instead forcing a disconnect).
func NewGapRecovery() *GapRecovery {
	return &GapRecovery{gapTimeout: defaultGapTimeout, maxGapSize: defaultMaxGapSize, now: time.Now}
}

// Classify compares receivedSeqNum to expected and updates the tracked gap.
func (g *GapRecovery) Classify(expected, receivedSeqNum uint64) (GapStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case receivedSeqNum < expected:
		return StatusDuplicate, nil
	case receivedSeqNum > expected:
		size := receivedSeqNum - expected
		if size > g.maxGapSize {
			return StatusGap, fmt.Errorf("session: gap too large: %d (max=%d)", size, g.maxGapSize)
		}
		if g.currentGap == nil {
			g.currentGap = &SequenceGap{Begin: expected, End: receivedSeqNum - 1, DetectedAt: g.now()}
		} else if receivedSeqNum-1 > g.currentGap.End {
			g.currentGap.End = receivedSeqNum - 1
		}
		return StatusGap, nil
	default:
		g.currentGap = nil
		return StatusInSync, nil
	}
}

// ShouldSendResendRequest reports whether the tracked gap has aged past the
// out-of-order grace period and hasn't already been requested.
func (g *GapRecovery) ShouldSendResendRequest() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentGap == nil || g.currentGap.RequestSent {
		return false
	}
	return g.now().Sub(g.currentGap.DetectedAt) >= g.gapTimeout
}

// MarkResendRequestSent records that a ResendRequest was issued for the
// currently tracked gap, so ShouldSendResendRequest won't fire again.
func (g *GapRecovery) MarkResendRequestSent() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentGap != nil {
		g.currentGap.RequestSent = true
	}
}

// CurrentGap returns the tracked gap, or nil if the stream is in sync.
func (g *GapRecovery) CurrentGap() *SequenceGap {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentGap == nil {
		return nil
	}
	cp := *g.currentGap
	return &cp
}

// Reset clears gap tracking, used after a reconnect or a hard sequence
// reset.
func (g *GapRecovery) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentGap = nil
}
