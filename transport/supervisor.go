package transport

import (
	"context"
	"net"
	"time"

	"github.com/ShabbirHasan1/hotfix/logging"
)

// ConnHandler runs one connection's lifetime and returns when it should be
// replaced (error, clean shutdown, or ctx cancellation).
type ConnHandler func(ctx context.Context, conn net.Conn) error

// Supervisor repeatedly dials and hands the connection to a ConnHandler,
// reconnecting after ReconnectInterval whenever the handler returns (spec.md
// §4.8: the initiator "must reconnect on a fixed interval, not with
// unbounded exponential backoff" — this is an initiator to a known
// counterparty, not a public-internet client that needs jitter).
type Supervisor struct {
	Host              string
	Port              uint16
	CACertPath        string
	ReconnectInterval time.Duration
	Logger            *logging.Logger
}

// Run dials, runs handler, and on any return reconnects after
// ReconnectInterval, until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context, handler ConnHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := Dial(ctx, s.Host, s.Port, s.CACertPath)
		if err != nil {
			s.logf("dial failed", err)
			if !s.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		err = handler(ctx, conn)
		conn.Close()
		if err == nil {
			return nil
		}
		s.logf("session ended, reconnecting", err)

		if !s.sleep(ctx) {
			return ctx.Err()
		}
	}
}

func (s *Supervisor) sleep(ctx context.Context) bool {
	interval := s.ReconnectInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Supervisor) logf(msg string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Error(msg, err, logging.Component("transport"), logging.String("host", s.Host))
}
