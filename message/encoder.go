package message

import (
	"fmt"
	"strconv"

	"github.com/ShabbirHasan1/hotfix/dictionary"
	"github.com/ShabbirHasan1/hotfix/fixfield"
)

// encodeBufferPool recycles the scratch buffer Encode builds a frame into
// (SPEC_FULL.md §4.1a), grounded on fixfield.BufferPool. 256 bytes covers a
// typical admin message without growing; larger application messages simply
// reallocate past that, the same tradeoff fix/message_pool.go makes.
var encodeBufferPool = fixfield.NewBufferPool(256)

// Config carries wire-format settings shared by the parser and the encoder.
type Config struct {
	// Separator is the byte that terminates every field. SOH (0x01) in
	// production; tests commonly use '|' for readability.
	Separator byte
}

// DefaultConfig uses SOH as the separator.
func DefaultConfig() Config {
	return Config{Separator: 0x01}
}

// fieldLength is a field's encoded byte contribution: tag digits + '=' +
// value bytes + separator (spec.md §4.6).
func fieldLength(tag dictionary.Tag, value []byte) int {
	return len(strconv.FormatUint(uint64(tag), 10)) + 1 + len(value) + 1
}

// calculateLength sums the encoded length of every field and nested group in
// fm, skipping any tag present in exclude (Header skips BeginString/
// BodyLength; Trailer skips CheckSum — spec.md §4.6 rule 2).
func calculateLength(fm *FieldMap, exclude map[dictionary.Tag]bool) int {
	total := 0
	fm.Fields(func(f Field) {
		if exclude[f.Tag] {
			return
		}
		total += fieldLength(f.Tag, f.Data)
		if groups, ok := fm.Group(f.Tag); ok {
			for _, g := range groups {
				total += calculateLength(g.Fields, nil)
			}
		}
	})
	return total
}

var headerExclude = map[dictionary.Tag]bool{dictionary.BeginString: true, dictionary.BodyLength: true}
var trailerExclude = map[dictionary.Tag]bool{dictionary.CheckSum: true}

// writeFieldMap appends fm's fields (and any nested groups) to buf in
// insertion order, except that tags in preFields are written first, in the
// order given (used for the header's BeginString/BodyLength/MsgType
// prelude).
func writeFieldMap(buf []byte, fm *FieldMap, cfg Config, preFields []dictionary.Tag) []byte {
	write := func(f Field) {
		buf = append(buf, strconv.FormatUint(uint64(f.Tag), 10)...)
		buf = append(buf, '=')
		buf = append(buf, f.Data...)
		buf = append(buf, cfg.Separator)
		if groups, ok := fm.Group(f.Tag); ok {
			for _, g := range groups {
				buf = writeFieldMap(buf, g.Fields, cfg, nil)
			}
		}
	}

	written := make(map[dictionary.Tag]bool, len(preFields))
	for _, tag := range preFields {
		if v, ok := fm.Get(tag); ok {
			write(Field{Tag: tag, Data: v})
			written[tag] = true
		}
	}
	fm.Fields(func(f Field) {
		if written[f.Tag] {
			return
		}
		write(f)
	})
	return buf
}

// Encode canonically re-serializes m: computes BodyLength, writes the
// header prelude first, then body, then trailer, then appends a freshly
// computed CheckSum (spec.md §4.6).
func Encode(m *Message, cfg Config) []byte {
	m.Trailer.Pop(dictionary.CheckSum)

	bodyLength := calculateLength(m.Header, headerExclude) +
		calculateLength(m.Body, nil) +
		calculateLength(m.Trailer, trailerExclude)
	m.Header.Set(dictionary.BodyLength, []byte(strconv.Itoa(bodyLength)))

	buf := encodeBufferPool.Get()
	buf = writeFieldMap(buf, m.Header, cfg, headerPrelude)
	buf = writeFieldMap(buf, m.Body, cfg, nil)
	buf = writeFieldMap(buf, m.Trailer, cfg, nil)

	var checksum byte
	for _, b := range buf {
		checksum += b
	}
	checksumStr := fmt.Sprintf("%03d", checksum)
	m.Trailer.Set(dictionary.CheckSum, []byte(checksumStr))

	buf = append(buf, "10="...)
	buf = append(buf, checksumStr...)
	buf = append(buf, cfg.Separator)

	// The pooled buffer is reused by the next Encode call, but callers of
	// Encode archive and transmit these bytes past that point (session.Store,
	// the writer actor's queue) — they must own a copy, not a pool-aliased
	// slice.
	out := make([]byte, len(buf))
	copy(out, buf)
	encodeBufferPool.Put(buf)
	return out
}
