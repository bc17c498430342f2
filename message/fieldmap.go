// Package message implements the message model tree (spec.md §3, §4.5-§4.6):
// an insertion-ordered field map per section (header/body/trailer), nested
// repeating group instances, and the dictionary-driven parser/encoder pair
// (C5-C7).
package message

import "github.com/ShabbirHasan1/hotfix/dictionary"

// Field is an uninterpreted (tag, raw bytes) pair. Interpretation happens
// through fixfield using dictionary metadata, never at this layer.
type Field struct {
	Tag  dictionary.Tag
	Data []byte
}

// FieldMap is an ordered mapping from tag to field, iteration order is
// insertion order (spec.md §3). This deliberately departs from the Rust
// original's BTreeMap<TagU32, Field> (tag-sorted) — see DESIGN.md's Open
// Question resolution #1: spec.md's explicit insertion-order invariant
// takes precedence.
type FieldMap struct {
	order  []dictionary.Tag
	lookup map[dictionary.Tag]*Field
	groups map[dictionary.Tag][]*RepeatingGroup
}

// NewFieldMap returns an empty field map.
func NewFieldMap() *FieldMap {
	return &FieldMap{
		lookup: make(map[dictionary.Tag]*Field),
		groups: make(map[dictionary.Tag][]*RepeatingGroup),
	}
}

// Set stores a field, overwriting any existing value for the tag in place
// (preserving its original position) or appending if new.
func (fm *FieldMap) Set(tag dictionary.Tag, data []byte) {
	if existing, ok := fm.lookup[tag]; ok {
		existing.Data = data
		return
	}
	f := &Field{Tag: tag, Data: data}
	fm.lookup[tag] = f
	fm.order = append(fm.order, tag)
}

// StoreField inserts a fully-formed Field, same semantics as Set.
func (fm *FieldMap) StoreField(f Field) {
	fm.Set(f.Tag, f.Data)
}

// Get returns a field's raw bytes.
func (fm *FieldMap) Get(tag dictionary.Tag) ([]byte, bool) {
	f, ok := fm.lookup[tag]
	if !ok {
		return nil, false
	}
	return f.Data, true
}

// Pop removes a field, returning its former value if present.
func (fm *FieldMap) Pop(tag dictionary.Tag) ([]byte, bool) {
	f, ok := fm.lookup[tag]
	if !ok {
		return nil, false
	}
	delete(fm.lookup, tag)
	for i, t := range fm.order {
		if t == tag {
			fm.order = append(fm.order[:i], fm.order[i+1:]...)
			break
		}
	}
	return f.Data, true
}

// Fields iterates fields in insertion order, calling visit for each.
func (fm *FieldMap) Fields(visit func(Field)) {
	for _, tag := range fm.order {
		visit(*fm.lookup[tag])
	}
}

// SetGroups attaches repeating-group instances under a NumInGroup start tag.
func (fm *FieldMap) SetGroups(start dictionary.Tag, groups []*RepeatingGroup) {
	fm.groups[start] = groups
}

// Group returns the groups attached under a NumInGroup start tag.
func (fm *FieldMap) Group(start dictionary.Tag) ([]*RepeatingGroup, bool) {
	g, ok := fm.groups[start]
	return g, ok
}

// GroupEntry returns the index'th repeating-group instance under start.
func (fm *FieldMap) GroupEntry(start dictionary.Tag, index int) (*RepeatingGroup, bool) {
	g, ok := fm.groups[start]
	if !ok || index < 0 || index >= len(g) {
		return nil, false
	}
	return g[index], true
}

// RepeatingGroup is one entry of a repeating group: the NumInGroup start
// tag, the delimiter tag marking each entry's first field, and its own
// field map (which may itself hold nested groups).
type RepeatingGroup struct {
	StartTag     dictionary.Tag
	DelimiterTag dictionary.Tag
	Fields       *FieldMap
}

// NewRepeatingGroup returns an empty group entry for the given start/
// delimiter tag pair.
func NewRepeatingGroup(start, delimiter dictionary.Tag) *RepeatingGroup {
	return &RepeatingGroup{StartTag: start, DelimiterTag: delimiter, Fields: NewFieldMap()}
}

func (g *RepeatingGroup) Get(tag dictionary.Tag) ([]byte, bool) {
	return g.Fields.Get(tag)
}

func (g *RepeatingGroup) StoreField(f Field) {
	g.Fields.StoreField(f)
}

func (g *RepeatingGroup) SetGroups(start dictionary.Tag, nested []*RepeatingGroup) {
	g.Fields.SetGroups(start, nested)
}

func (g *RepeatingGroup) Group(start dictionary.Tag) ([]*RepeatingGroup, bool) {
	return g.Fields.Group(start)
}
