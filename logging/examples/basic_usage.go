package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/ShabbirHasan1/hotfix/logging"
)

func main() {
	basicLogging()
	contextLogging()
	httpMiddleware()
	auditLogging()
	performanceMonitoring()
	errorTracking()
	productionSetup()
}

// Example 1: Basic Logging
func basicLogging() {
	logging.Info("engine started", logging.String("version", "1.0.0"))

	logging.Info("logon accepted",
		logging.SessionID("FIXINIT-FIXACPT"),
		logging.MsgType("A"),
		logging.String("sender_comp_id", "FIXINIT"),
	)

	logging.Warn("sequence gap detected",
		logging.SessionID("FIXINIT-FIXACPT"),
		logging.Int64("expected", 102),
		logging.Int64("received", 105),
	)

	err := errors.New("connection timeout")
	logging.Error("failed to connect to counterparty", err,
		logging.Component("transport"),
		logging.SessionID("FIXINIT-FIXACPT"),
	)

	logging.Debug("decoded frame",
		logging.SessionID("FIXINIT-FIXACPT"),
		logging.MsgType("D"),
	)
}

// Example 2: Logging with Context
func contextLogging() {
	ctx := context.Background()
	ctx = logging.ContextWithRequestID(ctx, "req-123-456")
	ctx = logging.ContextWithUserID(ctx, "user-789")
	ctx = logging.ContextWithSessionID(ctx, "FIXINIT-FIXACPT")

	logging.WithContext(ctx).Info("dispatching to application",
		logging.MsgType("D"),
	)

	logging.WithContext(ctx).Error("resend request failed", errors.New("store unavailable"),
		logging.Int64("begin_seq_num", 10),
		logging.Int64("end_seq_num", 20),
	)
}

// Example 3: HTTP Middleware
func httpMiddleware() {
	logger := logging.NewLogger(logging.INFO)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		sentryHook, err := logging.NewSentryHook(dsn, "production")
		if err == nil {
			logger.AddHook(sentryHook)
		}
	}

	// Note: wired into the admin API's net/http mux, not shown here.
	// loggingMiddleware := logging.HTTPLoggingMiddleware(logger)
	// panicMiddleware := logging.PanicRecoveryMiddleware(logger)
}

// Example 4: Audit Logging
func auditLogging() {
	auditLogger, err := logging.NewAuditLogger("./logs/audit")
	if err != nil {
		logging.Error("failed to initialize audit logger", err)
		return
	}
	defer auditLogger.Close()

	ctx := context.Background()
	ctx = logging.ContextWithUserID(ctx, "operator-1")
	ctx = logging.ContextWithSessionID(ctx, "FIXINIT-FIXACPT")

	auditLogger.LogLogon(ctx, "FIXINIT-FIXACPT", false, 1)
	auditLogger.LogGapDetected(ctx, "FIXINIT-FIXACPT", 102, 105)
	auditLogger.LogResendRequest(ctx, "FIXINIT-FIXACPT", 102, 104)
	auditLogger.LogSequenceReset(ctx, "FIXINIT-FIXACPT", 105, true)

	auditLogger.LogAdminAction(
		ctx,
		"operator-1",
		"force_reconnect",
		"session",
		"FIXINIT-FIXACPT",
		map[string]interface{}{"phase": "LoggedOut"},
		map[string]interface{}{"phase": "AwaitingLogon"},
	)

	auditLogger.LogLogout(ctx, "FIXINIT-FIXACPT", "operator requested")
}

// Example 5: Performance Monitoring
func performanceMonitoring() {
	start := time.Now()
	time.Sleep(150 * time.Millisecond)
	duration := time.Since(start)

	logging.LogSlowSend("FIXINIT-FIXACPT", "D", duration)
	logging.LogSlowDispatch("FIXINIT-FIXACPT", "8", 80*time.Millisecond)

	slowSends := logging.GetSlowSends()
	logging.Info("slow send count", logging.Int("count", len(slowSends)))

	slowDispatches := logging.GetSlowDispatches()
	logging.Info("slow dispatch count", logging.Int("count", len(slowDispatches)))
}

// Example 6: Error Tracking
func errorTracking() {
	ctx := logging.ContextWithUserID(context.Background(), "operator-1")

	err := errors.New("postgres connection failed")
	logging.TrackError(ctx, err, "critical", map[string]interface{}{
		"host":     "localhost",
		"port":     5432,
		"database": "hotfix",
	})

	logging.RegisterErrorAlert(func(stats *logging.ErrorStats) {
		logging.Warn("error threshold exceeded",
			logging.String("error", stats.Message),
			logging.Int64("count", stats.Count),
			logging.String("severity", stats.Severity),
		)
	})

	stats := logging.GetErrorStats()
	for key, errorStat := range stats {
		logging.Info("error statistics",
			logging.String("key", key),
			logging.Int64("count", errorStat.Count),
			logging.String("severity", errorStat.Severity),
		)
	}

	topErrors := logging.GetTopErrors(5)
	for i, errorStat := range topErrors {
		logging.Info("top error",
			logging.Int("rank", i+1),
			logging.String("error", errorStat.Message),
			logging.Int64("count", errorStat.Count),
		)
	}
}

// Example 7: Production Setup
func productionSetup() {
	rotatingWriter, err := logging.NewRotatingFileWriter(logging.RotationConfig{
		Filename:           "./logs/production.log",
		MaxSizeMB:          100,
		MaxAge:             7 * 24 * time.Hour,
		MaxBackups:         30,
		CompressionEnabled: true,
	})
	if err != nil {
		panic(err)
	}
	defer rotatingWriter.Close()

	multiWriter := logging.NewMultiWriter(rotatingWriter, os.Stdout)

	logger := logging.NewLogger(logging.INFO, multiWriter)
	logger.EnableSampling(0.1, true)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		sentryHook, err := logging.NewSentryHook(dsn, "production")
		if err == nil {
			logger.AddHook(sentryHook)
			logging.Info("sentry integration enabled")
		}
	}

	logging.SetLevel(logging.INFO)

	logging.Info("production logging initialized",
		logging.String("environment", "production"),
		logging.String("log_file", "./logs/production.log"),
		logging.Bool("sampling_enabled", true),
		logging.Float64("sampling_rate", 0.1),
	)
}
