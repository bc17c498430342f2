package wire

import "errors"

// Error kinds for framing (spec.md §4.1, §7). These are sentinel-wrapped
// errors rather than an enum type, matching how the rest of this module
// reports errors (compare logging.ErrorTracker's kind strings).
var (
	// ErrInvalidFrame covers malformed framing: too short, missing markers,
	// BodyLength/buffer mismatch.
	ErrInvalidFrame = errors.New("wire: invalid frame")

	// ErrChecksum is returned only when checksum verification is enabled
	// and the computed checksum does not match the trailing CheckSum field.
	ErrChecksum = errors.New("wire: checksum mismatch")

	// ErrDecoderPoisoned is returned by StreamingDecoder.TryParse once the
	// decoder has entered the Failed state. The original Rust
	// implementation panics here; spec.md's Open Questions section
	// explicitly overrides that with a hard error instead — see DESIGN.md.
	ErrDecoderPoisoned = errors.New("wire: decoder is poisoned, discard and create a new one")
)
