// Package monitoring exposes Prometheus metrics for the FIX session engine
// and codec (spec.md §6.6's operator surface). Grounded on the teacher's
// monitoring/prometheus.go: same promauto/promhttp registration idiom and
// free Record*/Set* function style, re-pointed at session/codec concerns
// instead of order execution and P&L.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session lifecycle metrics
	sessionPhase = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hotfix_session_phase",
			Help: "Current session phase as an enum (0=Disconnected,1=AwaitingLogon,2=Active,3=LoggedOut)",
		},
		[]string{"session_id"},
	)

	sessionReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotfix_session_reconnects_total",
			Help: "Total reconnect attempts by session",
		},
		[]string{"session_id"},
	)

	// Message throughput metrics
	messagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotfix_messages_sent_total",
			Help: "Total messages sent, by session and MsgType",
		},
		[]string{"session_id", "msg_type"},
	)

	messagesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotfix_messages_received_total",
			Help: "Total messages received, by session and MsgType",
		},
		[]string{"session_id", "msg_type"},
	)

	// Codec latency (C3/C6/C7)
	decodeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotfix_decode_latency_microseconds",
			Help:    "Raw-frame-to-Message decode latency in microseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"msg_type"},
	)

	encodeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotfix_encode_latency_microseconds",
			Help:    "Message-to-wire encode latency in microseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"msg_type"},
	)

	// Sequence/gap metrics
	sequenceGapsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotfix_sequence_gaps_detected_total",
			Help: "Total inbound sequence gaps detected",
		},
		[]string{"session_id"},
	)

	resendRequestsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotfix_resend_requests_sent_total",
			Help: "Total ResendRequests sent",
		},
		[]string{"session_id"},
	)

	duplicatesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotfix_duplicates_received_total",
			Help: "Total duplicate (already-processed) sequence numbers received",
		},
		[]string{"session_id"},
	)

	// Heartbeat/connectivity
	heartbeatsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotfix_heartbeats_sent_total",
			Help: "Total Heartbeats sent",
		},
		[]string{"session_id"},
	)

	lastMessageReceivedUnix = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hotfix_last_message_received_unix_seconds",
			Help: "Unix timestamp of the last message received from the counterparty",
		},
		[]string{"session_id"},
	)
)

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetSessionPhase records a session's current Phase as an enum gauge.
func SetSessionPhase(sessionID string, phase int) {
	sessionPhase.WithLabelValues(sessionID).Set(float64(phase))
}

// RecordReconnect increments the reconnect counter for a session.
func RecordReconnect(sessionID string) {
	sessionReconnectsTotal.WithLabelValues(sessionID).Inc()
}

// RecordMessageSent records one outbound message.
func RecordMessageSent(sessionID, msgType string) {
	messagesSentTotal.WithLabelValues(sessionID, msgType).Inc()
}

// RecordMessageReceived records one inbound message and updates the
// last-seen gauge.
func RecordMessageReceived(sessionID, msgType string) {
	messagesReceivedTotal.WithLabelValues(sessionID, msgType).Inc()
	lastMessageReceivedUnix.WithLabelValues(sessionID).Set(float64(time.Now().Unix()))
}

// RecordDecodeLatency observes a decode duration.
func RecordDecodeLatency(msgType string, d time.Duration) {
	decodeLatency.WithLabelValues(msgType).Observe(float64(d.Microseconds()))
}

// RecordEncodeLatency observes an encode duration.
func RecordEncodeLatency(msgType string, d time.Duration) {
	encodeLatency.WithLabelValues(msgType).Observe(float64(d.Microseconds()))
}

// RecordSequenceGap increments the gap-detected counter for a session.
func RecordSequenceGap(sessionID string) {
	sequenceGapsDetected.WithLabelValues(sessionID).Inc()
}

// RecordResendRequestSent increments the ResendRequest counter.
func RecordResendRequestSent(sessionID string) {
	resendRequestsSentTotal.WithLabelValues(sessionID).Inc()
}

// RecordDuplicate increments the duplicate-message counter.
func RecordDuplicate(sessionID string) {
	duplicatesReceivedTotal.WithLabelValues(sessionID).Inc()
}

// RecordHeartbeatSent increments the heartbeat counter.
func RecordHeartbeatSent(sessionID string) {
	heartbeatsSentTotal.WithLabelValues(sessionID).Inc()
}
