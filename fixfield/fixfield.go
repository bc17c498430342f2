// Package fixfield implements the FIX field codec (spec.md §4.4): per-type
// serialize/deserialize pairs operating on raw bytes, mirroring the
// FieldType trait shape from hotfix-encoding (serialize/serialize_with/
// deserialize/deserialize_lossy/to_bytes), translated into a plain Go
// generic interface rather than a trait object.
package fixfield

import "fmt"

// FieldType is implemented by every Go type this codec knows how to turn
// into and out of FIX wire bytes.
type FieldType interface {
	// Serialize appends the wire representation to buf and returns it.
	Serialize(buf []byte) []byte
}

// Deserializer is a free function pair, not a method set, because Go has no
// static "deserialize into Self" dispatch the way the Rust trait does;
// callers pick the function for the type they expect.
type Deserializer[T any] func(data []byte) (T, error)

// LossyDeserializer is allowed to skip some input validation for
// performance-sensitive numeric types, but must never panic or read out of
// bounds on malformed input (spec.md §4.4).
type LossyDeserializer[T any] func(data []byte) (T, error)

// ErrEmptyField is returned when deserializing a zero-length value where the
// type requires at least one byte.
var ErrEmptyField = fmt.Errorf("fixfield: empty field value")

// FormatError wraps a deserialize failure with the offending bytes for
// diagnostics, without ever panicking on attacker-controlled input.
type FormatError struct {
	TypeName string
	Value    []byte
	Cause    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("fixfield: invalid %s value %q: %v", e.TypeName, e.Value, e.Cause)
}

func (e *FormatError) Unwrap() error { return e.Cause }
