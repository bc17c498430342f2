// Package wire implements the raw and streaming frame decoders (spec.md
// §4.1, §4.2 / components C3-C4): locating BeginString/BodyLength/payload/
// CheckSum in a byte buffer without any dictionary knowledge.
package wire

import "fmt"

// SOH is the default FIX field separator, ASCII 0x01.
const SOH byte = 0x01

// minViableFrame is the shortest byte count that could possibly hold
// "8=X<sep>9=0<sep>10=000<sep>" — used to fast-reject absurdly short input
// before scanning.
const minViableFrame = len("8=X") + 1 + len("9=0") + 1 + len("10=000") + 1

// Range is a [Start, End) byte range into a RawFrame's Data.
type Range struct {
	Start, End int
}

func (r Range) Len() int { return r.End - r.Start }

// RawFrame is the result of locating (but not parsing) a FIX message's
// structural markers within a byte buffer.
type RawFrame struct {
	Data []byte

	// BeginString is the range of tag 8's value (excludes "8=" and the
	// trailing separator).
	BeginString Range

	// Payload is everything from right after BodyLength's separator up to
	// but excluding the final "10=" field (spec.md §4.1).
	Payload Range
}

// BeginStringValue returns the BeginString field's value bytes.
func (f *RawFrame) BeginStringValue() []byte {
	return f.Data[f.BeginString.Start:f.BeginString.End]
}

// PayloadBytes returns the payload bytes (everything the dictionary-driven
// parser walks).
func (f *RawFrame) PayloadBytes() []byte {
	return f.Data[f.Payload.Start:f.Payload.End]
}

// headerInfo is the result of locating BeginString and BodyLength, the
// first pass of Decode.
type headerInfo struct {
	beginString    Range
	bodyLength     int
	payloadStart   int
}

// parseHeader scans for the first two fields: BeginString then BodyLength.
// Mirrors hotfix_encoding::raw_decoder::HeaderInfo::parse: scan for '=' then
// separator, twice.
func parseHeader(data []byte, separator byte) (headerInfo, error) {
	// Field 1: "8=<value><sep>"
	eq1 := indexByte(data, '=', 0)
	if eq1 < 0 {
		return headerInfo{}, ErrInvalidFrame
	}
	sep1 := indexByte(data, separator, eq1+1)
	if sep1 < 0 {
		return headerInfo{}, ErrInvalidFrame
	}
	beginString := Range{Start: eq1 + 1, End: sep1}

	// Field 2: "9=<digits><sep>"
	if sep1+1 >= len(data) {
		return headerInfo{}, ErrInvalidFrame
	}
	eq2 := indexByte(data, '=', sep1+1)
	if eq2 < 0 {
		return headerInfo{}, ErrInvalidFrame
	}
	sep2 := indexByte(data, separator, eq2+1)
	if sep2 < 0 {
		return headerInfo{}, ErrInvalidFrame
	}

	bodyLength := 0
	for _, c := range data[eq2+1 : sep2] {
		if c < '0' || c > '9' {
			continue // caught by the buffer-length check below
		}
		// Wrapping accumulation: a hostile/garbled BodyLength can never
		// panic, it just produces a value the subsequent length check
		// will reject (spec.md §4.1 edge policy).
		bodyLength = bodyLength*10 + int(c-'0')
	}

	return headerInfo{
		beginString:  beginString,
		bodyLength:   bodyLength,
		payloadStart: sep2 + 1,
	}, nil
}

// Decode locates BeginString/BodyLength/payload/CheckSum in data and
// optionally verifies the checksum. Checksum verification is skipped
// whenever separator is not SOH (human-readable '|'-delimited test
// messages), matching spec.md §4.1.
func Decode(data []byte, separator byte, verifyChecksum bool) (*RawFrame, error) {
	if len(data) < minViableFrame {
		return nil, ErrInvalidFrame
	}

	hdr, err := parseHeader(data, separator)
	if err != nil {
		return nil, err
	}

	payloadEnd := hdr.payloadStart + hdr.bodyLength
	if payloadEnd < hdr.payloadStart || payloadEnd > len(data) {
		return nil, ErrInvalidFrame
	}

	// Trailer must be exactly "10=DDD<sep>" starting right at payloadEnd.
	const trailerLen = len("10=") + 3 + 1
	if len(data) != payloadEnd+trailerLen {
		return nil, ErrInvalidFrame
	}
	trailer := data[payloadEnd:]
	if trailer[0] != '1' || trailer[1] != '0' || trailer[2] != '=' {
		return nil, ErrInvalidFrame
	}
	checksumDigits := trailer[3:6]
	for _, c := range checksumDigits {
		if c < '0' || c > '9' {
			return nil, ErrInvalidFrame
		}
	}
	if trailer[6] != separator {
		return nil, ErrInvalidFrame
	}

	if separator == SOH && verifyChecksum {
		var sum byte
		for _, b := range data[:payloadEnd] {
			sum += b
		}
		want := fmt.Sprintf("%03d", sum)
		if string(checksumDigits) != want {
			return nil, ErrChecksum
		}
	}

	return &RawFrame{
		Data:        data,
		BeginString: hdr.beginString,
		Payload:     Range{Start: hdr.payloadStart, End: payloadEnd},
	}, nil
}

func indexByte(data []byte, b byte, from int) int {
	for i := from; i < len(data); i++ {
		if data[i] == b {
			return i
		}
	}
	return -1
}
