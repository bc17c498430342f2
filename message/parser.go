package message

import (
	"fmt"
	"strconv"

	"github.com/ShabbirHasan1/hotfix/dictionary"
	"github.com/ShabbirHasan1/hotfix/wire"
)

// ParseError reports a malformed payload: a bad tag number or premature
// end-of-payload (spec.md §4.5 error policy). Unknown tags are never an
// error — they are accepted and attached wherever the walk currently is.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "message: parse error: " + e.Reason }

// parser turns a raw frame's payload into a Message tree, driven entirely
// by the dictionary's header/trailer/group tag sets (spec.md §4.5).
type parser struct {
	dict      *dictionary.Dictionary
	cfg       Config
	data      []byte
	pos       int
	headerSet map[dictionary.Tag]bool
	trailerSet map[dictionary.Tag]bool
}

// headerComponentTags and trailerComponentTags extract the flat tag set of
// a named component's top-level field items (BeginString/BodyLength are
// added explicitly since they arrive via the raw frame, not the payload).
func componentFieldTags(dict *dictionary.Dictionary, name string) map[dictionary.Tag]bool {
	set := make(map[dictionary.Tag]bool)
	c, ok := dict.ComponentByName(name)
	if !ok {
		return set
	}
	for _, item := range c.Items {
		if item.Kind == dictionary.LayoutField {
			set[item.Field] = true
		}
	}
	return set
}

// Parse builds a Message from a raw frame's BeginString value and payload
// bytes (spec.md §4.5). beginString is passed separately since it is
// located by the raw decoder, not walked as a payload field.
func Parse(dict *dictionary.Dictionary, cfg Config, beginString []byte, bodyLength int, payload []byte) (*Message, error) {
	p := &parser{
		dict:       dict,
		cfg:        cfg,
		data:       payload,
		headerSet:  componentFieldTags(dict, "StandardHeader"),
		trailerSet: componentFieldTags(dict, "StandardTrailer"),
	}

	m := &Message{Header: NewFieldMap(), Body: NewFieldMap(), Trailer: NewFieldMap()}
	m.Header.Set(dictionary.BeginString, beginString)
	m.Header.Set(dictionary.BodyLength, []byte(strconv.Itoa(bodyLength)))

	field, err := p.nextField()
	if err != nil {
		return nil, err
	}
	for field != nil && p.headerSet[field.Tag] {
		m.Header.StoreField(*field)
		field, err = p.nextField()
		if err != nil {
			return nil, err
		}
	}

	for field != nil && !p.trailerSet[field.Tag] {
		if dict.IsNumInGroup(field.Tag) {
			groups, next, err := p.parseGroups(field.Tag)
			if err != nil {
				return nil, err
			}
			m.Body.StoreField(*field)
			m.Body.SetGroups(field.Tag, groups)
			field = next
		} else {
			m.Body.StoreField(*field)
			field, err = p.nextField()
			if err != nil {
				return nil, err
			}
		}
	}

	for field != nil {
		m.Trailer.StoreField(*field)
		field, err = p.nextField()
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ParseFrame is a convenience wrapper over a located wire.RawFrame.
func ParseFrame(dict *dictionary.Dictionary, cfg Config, frame *wire.RawFrame) (*Message, error) {
	return Parse(dict, cfg, frame.BeginStringValue(), frame.Payload.Len(), frame.PayloadBytes())
}

// parseGroups parses one or more repeating-group instances starting at
// startTag. The delimiter is the first tag encountered after startTag in
// the byte stream (not looked up in the dictionary — spec.md §4.5: "This
// matches real FIX traffic which may omit optional fields").
func (p *parser) parseGroups(startTag dictionary.Tag) ([]*RepeatingGroup, *Field, error) {
	groupSet, _ := p.dict.GroupTags(startTag)

	first, err := p.nextField()
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return nil, nil, &ParseError{Reason: "message ended while parsing a repeating group"}
	}
	delimiter := first.Tag

	var groups []*RepeatingGroup
	field := first
	for {
		group := NewRepeatingGroup(startTag, delimiter)
		group.StoreField(*field)

		field, err = p.nextField()
		if err != nil {
			return nil, nil, err
		}

		for {
			if field == nil || !groupSet[field.Tag] {
				groups = append(groups, group)
				return groups, field, nil
			}
			if field.Tag == delimiter {
				break // next group instance begins
			}
			if p.dict.IsNumInGroup(field.Tag) {
				nested, next, err := p.parseGroups(field.Tag)
				if err != nil {
					return nil, nil, err
				}
				group.StoreField(*field)
				group.SetGroups(field.Tag, nested)
				field = next
				continue
			}
			group.StoreField(*field)
			field, err = p.nextField()
			if err != nil {
				return nil, nil, err
			}
		}
		groups = append(groups, group)
	}
}

// nextField scans the next (tag, value) pair from the payload, returning
// nil when the payload is exhausted.
func (p *parser) nextField() (*Field, error) {
	if p.pos >= len(p.data) {
		return nil, nil
	}
	eq := indexByte(p.data, '=', p.pos)
	if eq < 0 {
		return nil, &ParseError{Reason: "missing '=' in field"}
	}
	sep := indexByte(p.data, p.cfg.Separator, eq+1)
	if sep < 0 {
		return nil, &ParseError{Reason: "message ended before field separator"}
	}

	tag, err := parseTag(p.data[p.pos:eq])
	if err != nil {
		return nil, err
	}
	value := append([]byte(nil), p.data[eq+1:sep]...)
	p.pos = sep + 1

	return &Field{Tag: tag, Data: value}, nil
}

func parseTag(b []byte) (dictionary.Tag, error) {
	if len(b) == 0 {
		return 0, &ParseError{Reason: "empty tag"}
	}
	var tag uint32
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, &ParseError{Reason: fmt.Sprintf("non-numeric tag %q", b)}
		}
		tag = tag*10 + uint32(c-'0')
	}
	if tag == 0 {
		return 0, &ParseError{Reason: "tag zero is invalid"}
	}
	return dictionary.Tag(tag), nil
}

func indexByte(data []byte, b byte, from int) int {
	for i := from; i < len(data); i++ {
		if data[i] == b {
			return i
		}
	}
	return -1
}
