package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ShabbirHasan1/hotfix/dictionary"
	"github.com/ShabbirHasan1/hotfix/fixapp"
	"github.com/ShabbirHasan1/hotfix/logging"
	"github.com/ShabbirHasan1/hotfix/message"
	"github.com/ShabbirHasan1/hotfix/monitoring"
	"github.com/ShabbirHasan1/hotfix/wire"
)

// actorQueueDepth is the bounded FIFO depth shared by every inter-actor
// channel (spec.md §5: "depth 10, so a slow application cannot cause
// unbounded memory growth in the session-core").
const actorQueueDepth = 10

// errLoggedOut is handleInbound's signal that the counterparty sent a
// Logout: coreLoop treats it as a clean shutdown, the same way it treats an
// io.EOF read, rather than a session-fatal error.
var errLoggedOut = errors.New("session: received Logout")

// Conn is the narrow transport surface the engine needs: a byte stream plus
// a way to tear it down. transport.Dial and transport.Supervisor produce
// values satisfying this.
type Conn interface {
	io.Reader
	io.Writer
	Close() error
}

// inboundEnvelope carries a raw parsed message from the reader actor to the
// session-core actor.
type inboundEnvelope struct {
	msg *message.Message
	err error
}

// outboundEnvelope carries an encoded frame from the session-core actor to
// the writer actor.
type outboundEnvelope struct {
	data []byte
}

// Engine wires the reader, writer, session-core, and application actors
// together over bounded channels (spec.md §5's four-actor model). One
// Engine instance drives one Conn for its lifetime; Supervisor (transport
// package) is responsible for constructing a new Engine on reconnect.
type Engine struct {
	cfg    Config
	dict   *dictionary.Dictionary
	store  Store
	box    *SecretBox
	app    fixapp.Application
	logger *logging.Logger
	gap    *GapRecovery
	perf   *logging.PerformanceMetrics

	machine   *Machine
	sessionID string
	observer  Observer

	inbound     chan inboundEnvelope
	outbound    chan outboundEnvelope
	appOutbound chan *message.Message
	done        chan struct{}

	// heartbeatTimer is owned by coreLoop's goroutine alone; sendOrDone,
	// which also only ever runs on that goroutine, re-arms it on every send
	// (spec.md §4.7: "the timer is reset whenever any message is sent").
	heartbeatTimer *time.Timer
}

// Observer receives session lifecycle notifications for operator-facing
// surfaces (the monitor package's websocket hub). It is optional: an Engine
// with no observer set simply skips these calls.
type Observer interface {
	OnSessionEvent(sessionID, eventType string, detail map[string]interface{})
}

// SetObserver attaches an Observer for session lifecycle notifications.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

func (e *Engine) notify(eventType string, detail map[string]interface{}) {
	if e.observer != nil {
		e.observer.OnSessionEvent(e.sessionID, eventType, detail)
	}
}

// NewEngine builds an Engine ready to Run against a Conn.
func NewEngine(cfg Config, dict *dictionary.Dictionary, store Store, box *SecretBox, app fixapp.Application, logger *logging.Logger) *Engine {
	cfg = cfg.WithDefaults()
	return &Engine{
		cfg:         cfg,
		dict:        dict,
		store:       store,
		box:         box,
		app:         app,
		logger:      logger,
		gap:         NewGapRecovery(),
		perf:        logging.NewPerformanceMetrics(),
		machine:     NewMachine(cfg, dict, store, box),
		sessionID:   cfg.SenderCompID + "-" + cfg.TargetCompID,
		inbound:     make(chan inboundEnvelope, actorQueueDepth),
		outbound:    make(chan outboundEnvelope, actorQueueDepth),
		appOutbound: make(chan *message.Message, actorQueueDepth),
		done:        make(chan struct{}),
	}
}

// Phase exposes the session-core's current state.
func (e *Engine) Phase() Phase { return e.machine.Phase() }

// Send submits a user application message for transmission once the
// session is Active (spec.md §4.7's outbound rule and §6.5's
// on_message_from_app hook). It blocks until the session-core actor has
// accepted the message or ctx is cancelled; the pre-encode hook, sequence
// assignment, encoding, and archiving all happen on the session-core
// actor, not on the caller's goroutine.
func (e *Engine) Send(ctx context.Context, msg *message.Message) error {
	select {
	case e.appOutbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the reader/writer/session-core actors against conn until ctx
// is cancelled, conn errors, or the session logs out. It blocks until all
// three actors have exited.
func (e *Engine) Run(ctx context.Context, conn Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logon, err := e.machine.BuildLogon()
	if err != nil {
		return err
	}
	logonData := message.Encode(logon, message.DefaultConfig())
	if seqStr, ok := logon.Header.Get(dictionary.MsgSeqNum); ok {
		if seq := parseUint(seqStr); seq > 0 {
			if err := e.store.Add(seq, logonData); err != nil {
				return err
			}
		}
	}
	e.heartbeatTimer = time.NewTimer(e.cfg.HeartbeatInterval)

	var wg sync.WaitGroup
	var readerErr, writerErr, coreErr error

	wg.Add(4)
	go func() {
		defer wg.Done()
		readerErr = e.readerLoop(ctx, conn)
	}()
	go func() {
		defer wg.Done()
		writerErr = e.writerLoop(ctx, conn)
	}()
	go func() {
		defer wg.Done()
		coreErr = e.coreLoop(ctx)
	}()
	// readerLoop's conn.Read blocks indefinitely on an idle counterparty; it
	// has no deadline and cannot observe ctx cancellation or a clean Logout
	// on its own (spec.md §9: "Shutdown propagates by dropping the session
	// handle, which closes all queues and terminates every actor"). Closing
	// conn here is what actually unblocks that Read.
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-e.done:
		}
		conn.Close()
	}()

	select {
	case e.outbound <- outboundEnvelope{data: logonData}:
		monitoring.RecordMessageSent(e.sessionID, logon.MsgType())
	case <-ctx.Done():
		wg.Wait()
		return ctx.Err()
	}
	monitoring.SetSessionPhase(e.sessionID, int(e.Phase()))
	e.notify("phase", map[string]interface{}{"phase": e.Phase().String()})

	wg.Wait()
	trackCtx := logging.ContextWithSessionID(ctx, e.sessionID)
	if coreErr != nil {
		logging.TrackError(trackCtx, coreErr, "session-fatal", map[string]interface{}{"actor": "core"})
		return coreErr
	}
	if readerErr != nil && !errors.Is(readerErr, io.EOF) {
		logging.TrackError(trackCtx, readerErr, "session-fatal", map[string]interface{}{"actor": "reader"})
		return readerErr
	}
	if writerErr != nil {
		logging.TrackError(trackCtx, writerErr, "session-fatal", map[string]interface{}{"actor": "writer"})
	}
	return writerErr
}

// readerLoop is actor C11: pulls bytes off the wire, frames them with a
// StreamingDecoder, parses each frame, and forwards it to the core actor.
func (e *Engine) readerLoop(ctx context.Context, conn Conn) error {
	dec := wire.NewStreamingDecoder(wire.SOH, true)
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return nil
		default:
		}

		n, err := conn.Read(buf)
		if n > 0 {
			dest := dec.Fillable()
			copied := copy(dest, buf[:n])
			dec.Commit(copied)

			for {
				ok, perr := dec.TryParse()
				if perr != nil {
					e.deliverInbound(ctx, inboundEnvelope{err: perr})
					return perr
				}
				if !ok {
					break
				}
				frame, ferr := dec.RawFrame()
				if ferr != nil {
					e.deliverInbound(ctx, inboundEnvelope{err: ferr})
					return ferr
				}
				msg, perr := message.ParseFrame(e.dict, message.Config{Separator: wire.SOH}, frame)
				e.deliverInbound(ctx, inboundEnvelope{msg: msg, err: perr})
				dec.Advance()
			}
		}
		if err != nil {
			e.deliverInbound(ctx, inboundEnvelope{err: err})
			return err
		}
	}
}

func (e *Engine) deliverInbound(ctx context.Context, env inboundEnvelope) {
	select {
	case e.inbound <- env:
	case <-ctx.Done():
	}
}

// writerLoop is actor C12: serializes outbound frames to the wire in the
// order the core actor produced them. It exits either on ctx cancellation
// or when the session-core actor closes e.done (a clean Logout shutdown),
// whichever comes first.
func (e *Engine) writerLoop(ctx context.Context, conn Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return nil
		case env := <-e.outbound:
			if _, err := conn.Write(env.data); err != nil {
				return err
			}
		}
	}
}

// coreLoop is actor C13 combined with the session-core of spec.md §5: the
// single serialization point for sequence numbers and phase transitions. It
// also runs the heartbeat timer and dispatches admin-vs-application
// messages to the fixapp.Application adapter.
func (e *Engine) coreLoop(ctx context.Context) error {
	defer e.heartbeatTimer.Stop()
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-e.heartbeatTimer.C:
			hb, err := e.machine.BuildHeartbeat(nil)
			if err != nil {
				return err
			}
			if err := e.sendOrDone(ctx, hb); err != nil {
				return err
			}
			monitoring.RecordHeartbeatSent(e.sessionID)
			e.notify("heartbeat", nil)

		case msg := <-e.appOutbound:
			if err := e.handleOutbound(ctx, msg); err != nil {
				return err
			}

		case env := <-e.inbound:
			if env.err != nil {
				if errors.Is(env.err, io.EOF) {
					return nil
				}
				e.logger.Error("session read failed", env.err, logging.Component("session"))
				return env.err
			}
			dispatchStart := time.Now()
			err := e.handleInbound(ctx, env.msg)
			e.perf.LogSlowDispatch(e.sessionID, env.msg.MsgType(), time.Since(dispatchStart), e.logger)
			if err != nil {
				if errors.Is(err, errLoggedOut) {
					return nil
				}
				return err
			}
		}
	}
}

// handleOutbound is the session-core half of an application send: it runs
// the pre-encode hook, then hands the message to the state machine for
// sequencing and on to sendOrDone for encoding, archiving, and enqueueing
// (spec.md §4.7's "Active | outbound application message | encode, archive,
// send"). An application-level rejection is logged and dropped rather than
// treated as a session-fatal error.
func (e *Engine) handleOutbound(ctx context.Context, msg *message.Message) error {
	if err := e.app.OnMessageFromApp(msg); err != nil {
		e.logger.Error("application rejected outbound message", err, logging.Component("session"))
		return nil
	}
	built, err := e.machine.BuildApplicationMessage(msg)
	if err != nil {
		e.logger.Error("cannot send application message", err, logging.Component("session"))
		return nil
	}
	return e.sendOrDone(ctx, built)
}

// sendOrDone is the single funnel every outbound frame passes through: it
// encodes the message, archives it under its MsgSeqNum (spec.md §4.7's
// outbound rule: "read next_sender ... increment ... then archive the
// encoded bytes under that sender number"), enqueues it for the writer, and
// re-arms the heartbeat timer. BuildGapFill's SequenceReset carries a
// borrowed MsgSeqNum that was already archived under its original send, so
// archiving is skipped whenever GapFillFlag=Y to avoid clobbering that
// entry.
func (e *Engine) sendOrDone(ctx context.Context, msg *message.Message) error {
	start := time.Now()
	data := message.Encode(msg, message.DefaultConfig())
	monitoring.RecordEncodeLatency(msg.MsgType(), time.Since(start))

	if gapFill, _ := msg.Get(dictionary.GapFillFlag); string(gapFill) != "Y" {
		if seqStr, ok := msg.Header.Get(dictionary.MsgSeqNum); ok {
			if seq := parseUint(seqStr); seq > 0 {
				if err := e.store.Add(seq, data); err != nil {
					return err
				}
			}
		}
	}

	select {
	case e.outbound <- outboundEnvelope{data: data}:
		monitoring.RecordMessageSent(e.sessionID, msg.MsgType())
		e.resetHeartbeatTimer()
	case <-ctx.Done():
	}
	e.perf.LogSlowSend(e.sessionID, msg.MsgType(), time.Since(start), e.logger)
	return nil
}

// resetHeartbeatTimer re-arms the heartbeat deadline from now (spec.md
// §4.7: arming a new deadline on every send means a busy session never
// emits a redundant heartbeat). Only coreLoop's own goroutine ever touches
// e.heartbeatTimer, so no synchronization beyond the usual
// Stop-then-drain-then-Reset sequence is needed.
func (e *Engine) resetHeartbeatTimer() {
	if !e.heartbeatTimer.Stop() {
		select {
		case <-e.heartbeatTimer.C:
		default:
		}
	}
	e.heartbeatTimer.Reset(e.cfg.HeartbeatInterval)
}

// handleInbound classifies and dispatches one parsed inbound message
// (spec.md §4.7/§4.7b).
func (e *Engine) handleInbound(ctx context.Context, msg *message.Message) error {
	seqStr, _ := msg.Header.Get(dictionary.MsgSeqNum)
	received := parseUint(seqStr)
	expected, err := e.store.NextTargetSeq()
	if err != nil {
		return err
	}

	status, gerr := e.gap.Classify(expected, received)
	if gerr != nil {
		return gerr
	}
	monitoring.RecordMessageReceived(e.sessionID, msg.MsgType())

	trackCtx := logging.ContextWithSessionID(ctx, e.sessionID)

	switch status {
	case StatusDuplicate:
		monitoring.RecordDuplicate(e.sessionID)
		possDup, _ := msg.Header.Get(dictionary.PossDupFlag)
		if string(possDup) != "Y" {
			e.logger.Warn("duplicate message without PossDupFlag", logging.Int("seq", int(received)))
			logging.TrackError(trackCtx, fmt.Errorf("duplicate MsgSeqNum %d without PossDupFlag", received), "duplicate", nil)
		}
		return nil
	case StatusGap:
		monitoring.RecordSequenceGap(e.sessionID)
		e.notify("gap_detected", map[string]interface{}{"expected": expected, "received": received})
		logging.TrackError(trackCtx, fmt.Errorf("sequence gap: expected %d, received %d", expected, received), "gap", map[string]interface{}{"expected": expected, "received": received})
		if e.gap.ShouldSendResendRequest() {
			rr, err := e.machine.BuildResendRequest(expected, 0)
			if err != nil {
				return err
			}
			if err := e.sendOrDone(ctx, rr); err != nil {
				return err
			}
			e.gap.MarkResendRequestSent()
			monitoring.RecordResendRequestSent(e.sessionID)
			e.notify("resend_request_sent", map[string]interface{}{"begin": expected})
		}
		return nil
	}

	if err := e.machine.OnInboundAdmin(); err != nil {
		return err
	}

	switch msg.MsgType() {
	case dictionary.MsgTypeLogon:
		err := e.machine.OnLogonReceived()
		if err == nil {
			monitoring.SetSessionPhase(e.sessionID, int(e.Phase()))
			e.notify("phase", map[string]interface{}{"phase": e.Phase().String()})
		}
		return err
	case dictionary.MsgTypeTestRequest:
		testReqID, _ := msg.Header.Get(dictionary.TestReqID)
		hb, err := e.machine.BuildHeartbeat(testReqID)
		if err != nil {
			return err
		}
		return e.sendOrDone(ctx, hb)
	case dictionary.MsgTypeHeartbeat:
		return nil
	case dictionary.MsgTypeResendRequest:
		return e.handleResendRequest(ctx, msg)
	case dictionary.MsgTypeSequenceReset:
		return e.handleSequenceReset(msg)
	case dictionary.MsgTypeLogout:
		e.machine.OnLogoutReceived()
		monitoring.SetSessionPhase(e.sessionID, int(e.Phase()))
		text, _ := msg.Get(dictionary.Text)
		e.app.OnLogout(string(text))
		e.notify("logout", map[string]interface{}{"reason": string(text)})
		return errLoggedOut
	case dictionary.MsgTypeReject:
		text, _ := msg.Get(dictionary.Text)
		e.logger.Warn("received session Reject", logging.String("text", string(text)))
		return nil
	default:
		return e.app.OnMessageToApp(msg)
	}
}

// handleResendRequest replays the requested range (spec.md §4.7b):
// administrative messages are gap-filled with a single SequenceReset,
// application messages are replayed verbatim with PossDupFlag=Y and
// OrigSendingTime set to their original SendingTime.
func (e *Engine) handleResendRequest(ctx context.Context, msg *message.Message) error {
	beginStr, _ := msg.Get(dictionary.BeginSeqNo)
	endStr, _ := msg.Get(dictionary.EndSeqNo)
	begin := parseUint(beginStr)
	end := parseUint(endStr)
	if end == 0 {
		next, err := e.store.NextSenderSeq()
		if err != nil {
			return err
		}
		end = next - 1
	}

	raws, err := e.store.GetRange(begin, end)
	if err != nil {
		return err
	}

	gapStart := begin
	flushGap := func(upTo uint64) error {
		if upTo > gapStart {
			reset := e.machine.BuildGapFill(gapStart, upTo)
			return e.sendOrDone(ctx, reset)
		}
		return nil
	}

	for _, raw := range raws {
		frame, err := wire.Decode(raw, wire.SOH, false)
		if err != nil {
			continue
		}
		parsed, err := message.ParseFrame(e.dict, message.Config{Separator: wire.SOH}, frame)
		if err != nil {
			continue
		}
		seqStr, _ := parsed.Header.Get(dictionary.MsgSeqNum)
		seq := parseUint(seqStr)

		if dictionary.IsAdministrative(parsed.MsgType()) {
			continue
		}

		if err := flushGap(seq); err != nil {
			return err
		}
		gapStart = seq + 1

		sendingTime, _ := parsed.Header.Get(dictionary.SendingTime)
		parsed.Header.Set(dictionary.PossDupFlag, []byte("Y"))
		parsed.Header.Set(dictionary.OrigSendingTime, sendingTime)
		if err := e.sendOrDone(ctx, parsed); err != nil {
			return err
		}
	}
	return flushGap(end + 1)
}

// handleSequenceReset applies either a gap-fill or a hard reset to the
// target sequence counter (spec.md §4.7).
func (e *Engine) handleSequenceReset(msg *message.Message) error {
	newSeqStr, _ := msg.Get(dictionary.NewSeqNo)
	newSeq := parseUint(newSeqStr)
	if newSeq == 0 {
		return nil
	}
	current, err := e.store.NextTargetSeq()
	if err != nil {
		return err
	}
	for current < newSeq {
		if err := e.store.IncrementTarget(); err != nil {
			return err
		}
		current++
	}
	e.gap.Reset()
	return nil
}

func parseUint(b []byte) uint64 {
	var n uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + uint64(c-'0')
	}
	return n
}
