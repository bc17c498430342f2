// Command fixinitiator runs one or more FIX 4.x initiator sessions defined
// in a YAML session file (spec.md §6.2), exposing Prometheus metrics, an
// operator websocket feed, and a JWT-protected admin HTTP surface.
//
// Grounded on the teacher's cmd/server/main.go: config.Load at startup,
// registering HTTP routes on the default mux, a startup banner via
// log.Println, and http.ListenAndServe as the last call in main — narrowed
// from a full broker HTTP/websocket API down to the admin/metrics/monitor
// surface a FIX initiator needs, with the trading engine's single process
// loop replaced by one goroutine per configured session running its own
// transport.Supervisor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ShabbirHasan1/hotfix/adminapi"
	"github.com/ShabbirHasan1/hotfix/config"
	"github.com/ShabbirHasan1/hotfix/dictionary"
	"github.com/ShabbirHasan1/hotfix/fixapp"
	"github.com/ShabbirHasan1/hotfix/logging"
	"github.com/ShabbirHasan1/hotfix/monitor"
	"github.com/ShabbirHasan1/hotfix/monitoring"
	"github.com/ShabbirHasan1/hotfix/session"
	"github.com/ShabbirHasan1/hotfix/storepg"
	"github.com/ShabbirHasan1/hotfix/storeredis"
	"github.com/ShabbirHasan1/hotfix/transport"
)

// runningSession bundles one configured session's engine with the transport
// supervisor driving it, so adminapi can report phase and force a reconnect.
type runningSession struct {
	id     string
	engine *session.Engine
	cancel context.CancelFunc
}

// registry implements adminapi.SessionSupervisor over the set of sessions
// this process owns.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*runningSession
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*runningSession)}
}

func (r *registry) add(rs *runningSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[rs.id] = rs
}

func (r *registry) Sessions() map[string]session.Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]session.Phase, len(r.sessions))
	for id, rs := range r.sessions {
		out[id] = rs.engine.Phase()
	}
	return out
}

func (r *registry) Reconnect(sessionID string) error {
	r.mu.RLock()
	rs, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("fixinitiator: unknown session %q", sessionID)
	}
	rs.cancel()
	return nil
}

func main() {
	sessionsPath := flag.String("sessions", "sessions.yaml", "path to the session configuration file")
	masterPassphrase := flag.String("passphrase", os.Getenv("HOTFIX_MASTER_PASSPHRASE"), "master passphrase for decrypting session credentials")
	flag.Parse()

	cfg, err := config.Load(*sessionsPath)
	if err != nil {
		log.Fatalf("fixinitiator: loading config: %v", err)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("fixinitiator: initializing logger: %v", err)
	}
	if *masterPassphrase == "" {
		logger.Warn("no master passphrase set; session credentials cannot be decrypted")
	}
	box := session.NewSecretBox(*masterPassphrase)
	dict := dictionary.FIX44()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := monitor.NewHub()
	go hub.Run()

	reg := newRegistry()
	var wg sync.WaitGroup

	for _, entry := range cfg.Sessions {
		sessCfg := entry.ToSessionConfig()
		store, err := buildStore(ctx, cfg, sessCfg)
		if err != nil {
			log.Fatalf("fixinitiator: building store for %s-%s: %v", sessCfg.SenderCompID, sessCfg.TargetCompID, err)
		}

		engine := session.NewEngine(sessCfg, dict, store, box, fixapp.NewQueueAdapter(ctx, &fixapp.NopApplication{}), logger)
		engine.SetObserver(hub)

		sessionCtx, cancel := context.WithCancel(ctx)
		rs := &runningSession{
			id:     sessCfg.SenderCompID + "-" + sessCfg.TargetCompID,
			engine: engine,
			cancel: cancel,
		}
		reg.add(rs)

		sup := &transport.Supervisor{
			Host:              sessCfg.ConnectionHost,
			Port:              sessCfg.ConnectionPort,
			CACertPath:        sessCfg.TLSCACertPath,
			ReconnectInterval: sessCfg.ReconnectInterval,
			Logger:            logger,
		}

		wg.Add(1)
		go func(sessionCtx context.Context, rs *runningSession, sup *transport.Supervisor) {
			defer wg.Done()
			err := sup.Run(sessionCtx, func(runCtx context.Context, conn net.Conn) error {
				monitoring.RecordReconnect(rs.id)
				return rs.engine.Run(runCtx, conn)
			})
			if err != nil && sessionCtx.Err() == nil {
				logger.Error("session supervisor exited", err, logging.SessionID(rs.id))
			}
		}(sessionCtx, rs, sup)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		monitor.ServeWs(hub, w, r)
	})
	adminapi.NewHandler(reg).Register(mux)

	srv := &http.Server{Addr: cfg.AdminAPI.Addr, Handler: mux}

	log.Println("")
	log.Println("============================================================")
	log.Println("  FIX INITIATOR READY")
	log.Println("============================================================")
	log.Printf("  Admin API:   http://localhost%s/healthz", cfg.AdminAPI.Addr)
	log.Printf("  Metrics:     http://localhost%s/metrics", cfg.AdminAPI.Addr)
	log.Printf("  Monitor WS:  ws://localhost%s/ws", cfg.AdminAPI.Addr)
	log.Printf("  Sessions:    %d configured", len(cfg.Sessions))
	log.Println("============================================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("fixinitiator: admin server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("fixinitiator: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	wg.Wait()
}

// buildLogger wires logging.RotatingFileWriter in alongside stdout when
// LoggingConfig.LogFile is set, so log rotation (and the platform FileLock
// behind it) is driven by the running process rather than only by its own
// tests. An empty LogFile keeps the teacher's stdout-only default.
func buildLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	if cfg.LogFile == "" {
		return logging.NewLogger(logging.INFO), nil
	}

	rotatingWriter, err := logging.NewRotatingFileWriter(logging.RotationConfig{
		Filename:           cfg.LogFile,
		Component:          "fixinitiator",
		MaxSizeMB:          cfg.LogMaxSizeMB,
		MaxAge:             time.Duration(cfg.LogMaxAgeDays) * 24 * time.Hour,
		MaxBackups:         cfg.LogMaxBackups,
		CompressionEnabled: cfg.LogCompress,
	})
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
	}

	return logging.NewLogger(logging.INFO, logging.NewMultiWriter(rotatingWriter, os.Stdout)), nil
}

func buildStore(ctx context.Context, cfg *config.Config, sessCfg session.Config) (session.Store, error) {
	sessionID := sessCfg.SenderCompID + "-" + sessCfg.TargetCompID
	if cfg.Postgres.DSN == "" {
		return session.NewMemoryStore(), nil
	}
	pg, err := storepg.Open(ctx, cfg.Postgres.DSN, sessionID)
	if err != nil {
		return nil, err
	}
	if cfg.Redis.Addr == "" {
		return pg, nil
	}
	return storeredis.Open(ctx, cfg.Redis.Addr, sessionID, pg)
}
