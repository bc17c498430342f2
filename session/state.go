package session

import (
	"fmt"
	"time"

	"github.com/ShabbirHasan1/hotfix/dictionary"
	"github.com/ShabbirHasan1/hotfix/message"
)

// Phase is one of the four session states of spec.md §4.7.
type Phase int

const (
	Disconnected Phase = iota
	AwaitingLogon
	Active
	LoggedOut
)

func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "Disconnected"
	case AwaitingLogon:
		return "AwaitingLogon"
	case Active:
		return "Active"
	case LoggedOut:
		return "LoggedOut"
	default:
		return "Unknown"
	}
}

// Clock abstracts time.Now so tests can drive the state machine with fixed
// timestamps instead of racing the wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Machine is the single-threaded session-core state machine (spec.md §5:
// "the session-core actor is the only writer of session state"). It holds
// no socket; Engine drives it from the reader/writer actors.
type Machine struct {
	cfg   Config
	dict  *dictionary.Dictionary
	store Store
	clock Clock
	box   *SecretBox

	phase           Phase
	lastSentAt      time.Time
	lastReceivedAt  time.Time
	awaitingTestReq string
}

// NewMachine builds a Disconnected state machine. box may be nil when the
// session's Config carries no Password.
func NewMachine(cfg Config, dict *dictionary.Dictionary, store Store, box *SecretBox) *Machine {
	return &Machine{cfg: cfg.WithDefaults(), dict: dict, store: store, box: box, clock: systemClock{}, phase: Disconnected}
}

func (m *Machine) Phase() Phase { return m.phase }

// timestamp renders a FIX 4.4 SendingTime/TransactTime (UTCTimestamp,
// millisecond precision omitted — spec.md's scenarios use whole seconds).
func (m *Machine) timestamp() []byte {
	return []byte(m.clock.Now().UTC().Format("20060102-15:04:05"))
}

// newOutbound starts a message with BeginString/MsgType/SenderCompID/
// TargetCompID/SendingTime already populated; MsgSeqNum is filled by the
// caller once the sender sequence number is known.
func (m *Machine) newOutbound(msgType string) *message.Message {
	msg := message.New(m.cfg.BeginString, msgType)
	msg.Set(m.dict, dictionary.SenderCompID, []byte(m.cfg.SenderCompID))
	msg.Set(m.dict, dictionary.TargetCompID, []byte(m.cfg.TargetCompID))
	msg.Set(m.dict, dictionary.SendingTime, m.timestamp())
	return msg
}

// BuildLogon constructs the initial Logon (spec.md §4.7: EncryptMethod=0,
// HeartBtInt, ResetSeqNumFlag when configured, NextExpectedMsgSeqNum set to
// the store's current target sequence so the counterparty can detect a gap
// immediately rather than waiting for the first ResendRequest). When
// ResetOnLogon is set, both counters and the archive are zeroed before the
// Logon's own sequence number is assigned, so the Logon itself goes out as
// MsgSeqNum=1.
func (m *Machine) BuildLogon() (*message.Message, error) {
	if m.cfg.ResetOnLogon {
		if err := m.store.Reset(); err != nil {
			return nil, err
		}
	}

	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	nextTarget, err := m.store.NextTargetSeq()
	if err != nil {
		return nil, err
	}

	msg := m.newOutbound(dictionary.MsgTypeLogon)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	msg.Set(m.dict, dictionary.EncryptMethod, []byte("0"))
	msg.Set(m.dict, dictionary.HeartBtInt, []byte(itoa64(uint64(m.cfg.HeartbeatInterval/time.Second))))
	if m.cfg.ResetOnLogon {
		msg.Set(m.dict, dictionary.ResetSeqNumFlag, []byte("Y"))
	}
	msg.Set(m.dict, dictionary.NextExpectedMsgSeqNum, []byte(itoa64(nextTarget)))

	if m.cfg.Username != "" {
		msg.Set(m.dict, dictionary.Username, []byte(m.cfg.Username))
	}
	if m.cfg.Password != "" {
		password := m.cfg.Password
		if m.box != nil {
			plain, err := m.box.Decrypt(m.cfg.Password)
			if err == nil {
				password = plain
			}
		}
		msg.Set(m.dict, dictionary.Password, []byte(password))
	}

	m.phase = AwaitingLogon
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	return msg, nil
}

// OnLogonReceived transitions AwaitingLogon -> Active once the
// counterparty's Logon has been accepted by the caller (it is responsible
// for sequence validation before calling this).
func (m *Machine) OnLogonReceived() error {
	if m.phase != AwaitingLogon && m.phase != Disconnected {
		return fmt.Errorf("session: unexpected Logon in phase %s", m.phase)
	}
	m.phase = Active
	m.lastReceivedAt = m.clock.Now()
	return nil
}

// OnLogoutReceived transitions to LoggedOut when the counterparty ends the
// session (spec.md §4.7: "Active | inbound Logout | LoggedOut"). Unlike
// BuildLogout it builds nothing and consumes no sender sequence number; it
// only records the phase change for a Logout the engine did not initiate.
func (m *Machine) OnLogoutReceived() {
	m.phase = LoggedOut
	m.lastReceivedAt = m.clock.Now()
}

// BuildApplicationMessage finalizes a caller-supplied application message
// for transmission (spec.md §4.7's outbound rule and §6.5's
// on_message_from_app hook): it stamps the standard header fields, assigns
// the next sender sequence number, and advances the counter. The message
// must already carry its MsgType and business fields.
func (m *Machine) BuildApplicationMessage(msg *message.Message) (*message.Message, error) {
	if m.phase != Active {
		return nil, fmt.Errorf("session: cannot send application message in phase %s", m.phase)
	}
	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	msg.Set(m.dict, dictionary.SenderCompID, []byte(m.cfg.SenderCompID))
	msg.Set(m.dict, dictionary.TargetCompID, []byte(m.cfg.TargetCompID))
	msg.Set(m.dict, dictionary.SendingTime, m.timestamp())
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	m.lastSentAt = m.clock.Now()
	return msg, nil
}

// BuildHeartbeat constructs a Heartbeat, optionally reflecting a TestReqID
// (spec.md §4.7: a Heartbeat sent in response to a TestRequest must carry
// the same TestReqID back).
func (m *Machine) BuildHeartbeat(testReqID []byte) (*message.Message, error) {
	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	msg := m.newOutbound(dictionary.MsgTypeHeartbeat)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	if len(testReqID) > 0 {
		msg.Set(m.dict, dictionary.TestReqID, testReqID)
	}
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	m.lastSentAt = m.clock.Now()
	return msg, nil
}

// BuildTestRequest constructs a TestRequest to probe a silent connection.
func (m *Machine) BuildTestRequest(testReqID string) (*message.Message, error) {
	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	msg := m.newOutbound(dictionary.MsgTypeTestRequest)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	msg.Set(m.dict, dictionary.TestReqID, []byte(testReqID))
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	m.awaitingTestReq = testReqID
	return msg, nil
}

// BuildResendRequest asks the counterparty to replay [begin, end]. end=0
// means "everything up to now" (FIX's open-ended EndSeqNo convention).
func (m *Machine) BuildResendRequest(begin, end uint64) (*message.Message, error) {
	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	msg := m.newOutbound(dictionary.MsgTypeResendRequest)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	msg.Set(m.dict, dictionary.BeginSeqNo, []byte(itoa64(begin)))
	msg.Set(m.dict, dictionary.EndSeqNo, []byte(itoa64(end)))
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	return msg, nil
}

// BuildGapFill constructs a SequenceReset used as an administrative-message
// gap-fill (spec.md §4.7b): GapFillFlag=Y, NewSeqNo is the sequence number
// the counterparty should expect next (the first application message after
// the skipped range). The SequenceReset itself does not consume a sender
// sequence number under gap-fill semantics — callers pass the MsgSeqNum it
// should carry (the first number of the gap being filled).
func (m *Machine) BuildGapFill(msgSeqNum, newSeqNo uint64) *message.Message {
	msg := m.newOutbound(dictionary.MsgTypeSequenceReset)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(msgSeqNum)))
	msg.Set(m.dict, dictionary.GapFillFlag, []byte("Y"))
	msg.Set(m.dict, dictionary.NewSeqNo, []byte(itoa64(newSeqNo)))
	return msg
}

// BuildHardReset constructs a SequenceReset that forces a new sequence
// number without gap-fill semantics (GapFillFlag=N or absent), used on
// ResetSeqNumFlag=Y Logon exchanges.
func (m *Machine) BuildHardReset(newSeqNo uint64) (*message.Message, error) {
	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	msg := m.newOutbound(dictionary.MsgTypeSequenceReset)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	msg.Set(m.dict, dictionary.NewSeqNo, []byte(itoa64(newSeqNo)))
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	return msg, nil
}

// BuildReject constructs a session-level Reject (MsgType 3) referencing the
// offending inbound message's sequence number, tag, and reason code.
func (m *Machine) BuildReject(refSeqNum uint64, refTagID dictionary.Tag, refMsgType string, reasonCode int, text string) (*message.Message, error) {
	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	msg := m.newOutbound(dictionary.MsgTypeReject)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	msg.Set(m.dict, dictionary.RefSeqNum, []byte(itoa64(refSeqNum)))
	if refTagID != 0 {
		msg.Set(m.dict, dictionary.RefTagID, []byte(itoa64(uint64(refTagID))))
	}
	if refMsgType != "" {
		msg.Set(m.dict, dictionary.RefMsgType, []byte(refMsgType))
	}
	msg.Set(m.dict, dictionary.SessionRejectReason, []byte(itoa64(uint64(reasonCode))))
	if text != "" {
		msg.Set(m.dict, dictionary.Text, []byte(text))
	}
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	return msg, nil
}

// BuildLogout constructs a Logout, transitioning to LoggedOut.
func (m *Machine) BuildLogout(text string) (*message.Message, error) {
	seq, err := m.store.NextSenderSeq()
	if err != nil {
		return nil, err
	}
	msg := m.newOutbound(dictionary.MsgTypeLogout)
	msg.Set(m.dict, dictionary.MsgSeqNum, []byte(itoa64(seq)))
	if text != "" {
		msg.Set(m.dict, dictionary.Text, []byte(text))
	}
	if err := m.store.IncrementSender(); err != nil {
		return nil, err
	}
	m.phase = LoggedOut
	return msg, nil
}

// OnInboundAdmin advances the target sequence counter and records receipt
// time; it does not classify gaps (Engine does that via ClassifyGap before
// calling this, only for in-sync or already-queued messages).
func (m *Machine) OnInboundAdmin() error {
	m.lastReceivedAt = m.clock.Now()
	return m.store.IncrementTarget()
}

func itoa64(n uint64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
