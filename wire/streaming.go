package wire

import "fmt"

// decoderState is the streaming decoder's three-state machine (spec.md
// §4.2): Empty, HeaderSeen{expected_total_len}, Failed.
type decoderState int

const (
	stateEmpty decoderState = iota
	stateHeaderSeen
	stateFailed
)

// defaultFillChunk is how much spare capacity Fillable() offers once the
// decoder already knows the exact total frame length minus what it has, or
// an arbitrary read chunk while still in Empty.
const defaultFillChunk = 4096

// StreamingDecoder consumes bytes incrementally (e.g. from a TCP reader
// loop, C11) and reports when a complete frame is available. It owns its
// buffer; the reader loop reads into Fillable(), calls Commit(n), then
// TryParse() in a loop.
type StreamingDecoder struct {
	separator      byte
	verifyChecksum bool

	buf           []byte
	state         decoderState
	expectedTotal int
}

// NewStreamingDecoder constructs a fresh decoder in the Empty state.
func NewStreamingDecoder(separator byte, verifyChecksum bool) *StreamingDecoder {
	return &StreamingDecoder{separator: separator, verifyChecksum: verifyChecksum}
}

// NumBytesRequired returns the minimum frame size when Empty, the remaining
// bytes needed to complete the known frame when HeaderSeen, or zero when
// Failed (spec.md §4.2). This is used by callers to size reads; it is not
// itself an error signal.
func (d *StreamingDecoder) NumBytesRequired() int {
	switch d.state {
	case stateEmpty:
		need := minViableFrame - len(d.buf)
		if need < 1 {
			need = 1
		}
		return need
	case stateHeaderSeen:
		need := d.expectedTotal - len(d.buf)
		if need < 1 {
			need = 1
		}
		return need
	default: // stateFailed
		return 0
	}
}

// Fillable returns a non-empty writable tail of the internal buffer sized to
// reach the next decision point, growing the buffer's backing array as
// needed. The caller reads into this slice and then calls Commit with the
// number of bytes actually read.
func (d *StreamingDecoder) Fillable() []byte {
	need := d.NumBytesRequired()
	if need <= 0 {
		need = defaultFillChunk
	}
	if cap(d.buf)-len(d.buf) < need {
		grown := make([]byte, len(d.buf), len(d.buf)+need)
		copy(grown, d.buf)
		d.buf = grown
	}
	return d.buf[len(d.buf) : len(d.buf)+need]
}

// Commit records that n bytes were written into the slice last returned by
// Fillable.
func (d *StreamingDecoder) Commit(n int) {
	d.buf = d.buf[:len(d.buf)+n]
}

// TryParse attempts to advance the state machine using whatever bytes are
// currently buffered. It returns (true, nil) once a complete frame is ready
// (callers then use RawFrame and, once done, Advance); (false, nil) when
// more bytes are needed; or a non-nil error once the decoder has entered
// Failed.
//
// Calling TryParse again after Failed returns ErrDecoderPoisoned rather than
// panicking — the original Rust implementation panics here, but spec.md's
// Open Questions section explicitly mandates a hard error instead (see
// DESIGN.md).
func (d *StreamingDecoder) TryParse() (bool, error) {
	if d.state == stateFailed {
		return false, ErrDecoderPoisoned
	}

	if d.state == stateEmpty {
		if len(d.buf) < minViableFrame {
			return false, nil
		}
		hdr, err := parseHeader(d.buf, d.separator)
		if err != nil {
			d.state = stateFailed
			return false, err
		}
		d.expectedTotal = hdr.payloadStart + hdr.bodyLength + len("10=000") + 1
		d.state = stateHeaderSeen
	}

	if len(d.buf) < d.expectedTotal {
		return false, nil
	}

	if _, err := Decode(d.buf[:d.expectedTotal], d.separator, d.verifyChecksum); err != nil {
		d.state = stateFailed
		return false, err
	}
	return true, nil
}

// RawFrame returns the complete frame located by the most recent successful
// TryParse. It is an error, not a panic, to call this before TryParse has
// returned true — malformed caller sequencing should not crash a
// long-running session engine.
func (d *StreamingDecoder) RawFrame() (*RawFrame, error) {
	if d.state != stateHeaderSeen || len(d.buf) < d.expectedTotal {
		return nil, fmt.Errorf("wire: RawFrame called before TryParse reported a complete frame")
	}
	return Decode(d.buf[:d.expectedTotal], d.separator, d.verifyChecksum)
}

// Advance discards the consumed frame's bytes, retaining any bytes already
// buffered for the next frame (pipelined messages), and resets the state
// machine to Empty.
func (d *StreamingDecoder) Advance() {
	leftover := len(d.buf) - d.expectedTotal
	if leftover > 0 {
		copy(d.buf, d.buf[d.expectedTotal:])
	}
	d.buf = d.buf[:leftover]
	d.state = stateEmpty
	d.expectedTotal = 0
}

// Poisoned reports whether the decoder has entered the Failed state.
func (d *StreamingDecoder) Poisoned() bool {
	return d.state == stateFailed
}
