package fixfield

import (
	"fmt"
	"strconv"
	"time"

	"github.com/govalues/decimal"
)

// String serializes/deserializes an ASCII string field — the identity
// mapping at the byte level.
func SerializeString(v string, buf []byte) []byte {
	return append(buf, v...)
}

func DeserializeString(data []byte) (string, error) {
	return string(data), nil
}

// Bytes is the raw, uninterpreted byte-slice type (e.g. RawDataLength
// payloads). It copies out of the shared decode buffer so callers may hold
// onto it past the buffer's next reuse.
func SerializeBytes(v []byte, buf []byte) []byte {
	return append(buf, v...)
}

func DeserializeBytes(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Boolean is FIX's single-character Y/N convention.
func SerializeBoolean(v bool, buf []byte) []byte {
	if v {
		return append(buf, 'Y')
	}
	return append(buf, 'N')
}

func DeserializeBoolean(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, &FormatError{TypeName: "Boolean", Value: data, Cause: fmt.Errorf("expected exactly one byte")}
	}
	switch data[0] {
	case 'Y':
		return true, nil
	case 'N':
		return false, nil
	default:
		return false, &FormatError{TypeName: "Boolean", Value: data, Cause: fmt.Errorf("must be Y or N")}
	}
}

// Int covers FIX's variable-width signed integer fields (SeqNum, Qty counts,
// etc. that are not fixed-precision decimals).
func SerializeInt(v int64, buf []byte) []byte {
	return strconv.AppendInt(buf, v, 10)
}

func DeserializeInt(data []byte) (int64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyField
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, &FormatError{TypeName: "Int", Value: data, Cause: err}
	}
	return n, nil
}

// DeserializeIntLossy accumulates digits with wrapping arithmetic instead of
// validating via strconv, matching the raw decoder's BodyLength accumulation
// policy (spec.md §4.1: "non-digit bytes ... use saturating/wrapping decimal
// accumulation"). Used on the hot BodyLength-scanning path, never for
// application-level field access.
func DeserializeIntLossy(data []byte) (int64, error) {
	var n int64
	for _, c := range data {
		if c < '0' || c > '9' {
			continue
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

// Float covers IEEE-754 floating-point fields that aren't exact decimals.
func SerializeFloat(v float64, buf []byte) []byte {
	return strconv.AppendFloat(buf, v, 'f', -1, 64)
}

func DeserializeFloat(data []byte) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyField
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return 0, &FormatError{TypeName: "Float", Value: data, Cause: err}
	}
	return f, nil
}

// Decimal is FIX's fixed-precision numeric type (Price, Qty, Amt fields).
// Backed by govalues/decimal for exact arithmetic instead of float64, so
// that round-tripping never introduces binary-fraction drift.
func SerializeDecimal(v decimal.Decimal, buf []byte) []byte {
	return append(buf, v.String()...)
}

func DeserializeDecimal(data []byte) (decimal.Decimal, error) {
	if len(data) == 0 {
		return decimal.Decimal{}, ErrEmptyField
	}
	d, err := decimal.Parse(string(data))
	if err != nil {
		return decimal.Decimal{}, &FormatError{TypeName: "Decimal", Value: data, Cause: err}
	}
	return d, nil
}

// Currency is a closed 3-letter ISO 4217 code, stored as plain ASCII.
func SerializeCurrency(v string, buf []byte) []byte {
	return append(buf, v...)
}

func DeserializeCurrency(data []byte) (string, error) {
	if len(data) != 3 {
		return "", &FormatError{TypeName: "Currency", Value: data, Cause: fmt.Errorf("must be exactly 3 letters")}
	}
	return string(data), nil
}

const (
	dateLayout      = "20060102"
	timeLayoutNoMS  = "15:04:05"
	timeLayoutMS    = "15:04:05.000"
	timestampSep    = "-"
)

// Date serializes as YYYYMMDD.
func SerializeDate(v time.Time, buf []byte) []byte {
	return append(buf, v.UTC().Format(dateLayout)...)
}

func DeserializeDate(data []byte) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, string(data), time.UTC)
	if err != nil {
		return time.Time{}, &FormatError{TypeName: "Date", Value: data, Cause: err}
	}
	return t, nil
}

// TimeOfDay serializes as HH:MM:SS or HH:MM:SS.sss when sub-second precision
// is non-zero.
func SerializeTimeOfDay(v time.Time, buf []byte) []byte {
	if v.Nanosecond() == 0 {
		return append(buf, v.UTC().Format(timeLayoutNoMS)...)
	}
	return append(buf, v.UTC().Format(timeLayoutMS)...)
}

func DeserializeTimeOfDay(data []byte) (time.Time, error) {
	s := string(data)
	layout := timeLayoutNoMS
	if len(s) > len(timeLayoutNoMS) {
		layout = timeLayoutMS
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, &FormatError{TypeName: "TimeOfDay", Value: data, Cause: err}
	}
	return t, nil
}

// Timestamp joins Date and TimeOfDay with "-" per FIX convention, e.g.
// 20231107-11:00:00.
func SerializeTimestamp(v time.Time, buf []byte) []byte {
	buf = SerializeDate(v, buf)
	buf = append(buf, timestampSep...)
	return SerializeTimeOfDay(v, buf)
}

func DeserializeTimestamp(data []byte) (time.Time, error) {
	idx := -1
	for i, c := range data {
		if c == '-' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return time.Time{}, &FormatError{TypeName: "Timestamp", Value: data, Cause: fmt.Errorf("missing date-time separator")}
	}
	d, err := DeserializeDate(data[:idx])
	if err != nil {
		return time.Time{}, err
	}
	t, err := DeserializeTimeOfDay(data[idx+1:])
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

// Enum is a closed variant set with a catch-all Other(bytes) fallback
// (spec.md §4.4), modeled as a small generic wrapper rather than one type
// per enumerated field.
type Enum struct {
	known map[string]bool
}

// NewEnum builds an Enum validator over the given closed set of codes.
func NewEnum(codes ...string) Enum {
	known := make(map[string]bool, len(codes))
	for _, c := range codes {
		known[c] = true
	}
	return Enum{known: known}
}

// EnumValue is either one of the closed variants or Other.
type EnumValue struct {
	Code  string
	Other bool
}

func (e Enum) Deserialize(data []byte) EnumValue {
	s := string(data)
	if e.known[s] {
		return EnumValue{Code: s}
	}
	return EnumValue{Code: s, Other: true}
}

func SerializeEnum(v EnumValue, buf []byte) []byte {
	return append(buf, v.Code...)
}
