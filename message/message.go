package message

import "github.com/ShabbirHasan1/hotfix/dictionary"

// Message is the parsed/built tree: three field maps plus their nested
// repeating groups (spec.md §3).
type Message struct {
	Header  *FieldMap
	Body    *FieldMap
	Trailer *FieldMap
}

// New constructs an empty message with BeginString and MsgType already set,
// mirroring hotfix-message's Message::new.
func New(beginString, msgType string) *Message {
	m := &Message{Header: NewFieldMap(), Body: NewFieldMap(), Trailer: NewFieldMap()}
	m.Header.Set(dictionary.BeginString, []byte(beginString))
	m.Header.Set(dictionary.MsgType, []byte(msgType))
	return m
}

// MsgType returns the header's MsgType value, or "" if absent.
func (m *Message) MsgType() string {
	v, _ := m.Header.Get(dictionary.MsgType)
	return string(v)
}

// fieldMapFor returns the field map for a field's dictionary section.
func (m *Message) fieldMapFor(section dictionary.Section) *FieldMap {
	switch section {
	case dictionary.Header:
		return m.Header
	case dictionary.Trailer:
		return m.Trailer
	default:
		return m.Body
	}
}

// Set stores a field's value in whichever section the dictionary assigns it
// to.
func (m *Message) Set(dict *dictionary.Dictionary, tag dictionary.Tag, data []byte) {
	fd, ok := dict.FieldByTag(tag)
	section := dictionary.Body
	if ok {
		section = fd.Section
	}
	m.fieldMapFor(section).Set(tag, data)
}

// Get looks a field up wherever it lives (header, body, or trailer) — the
// body is tried first since application fields dominate typical access.
func (m *Message) Get(tag dictionary.Tag) ([]byte, bool) {
	if v, ok := m.Body.Get(tag); ok {
		return v, true
	}
	if v, ok := m.Header.Get(tag); ok {
		return v, true
	}
	return m.Trailer.Get(tag)
}

// Group returns the index'th repeating-group instance starting at tag,
// searched across all three sections.
func (m *Message) Group(start dictionary.Tag, index int) (*RepeatingGroup, bool) {
	for _, fm := range []*FieldMap{m.Body, m.Header, m.Trailer} {
		if entry, ok := fm.GroupEntry(start, index); ok {
			return entry, true
		}
	}
	return nil, false
}

// headerPrelude are the three tags the encoder always emits first,
// regardless of insertion order (spec.md §4.6 rule 1).
var headerPrelude = []dictionary.Tag{dictionary.BeginString, dictionary.BodyLength, dictionary.MsgType}
