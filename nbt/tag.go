// Package nbt reads and writes the named binary tag format used for chunk and level data.
//
// A document is a tree of Tags. Every Tag carries an optional name and a Value, which is one
// of the twelve concrete kinds below. Names only mean something for the children of a
// Compound; List elements are stored without names.
package nbt

import (
	"errors"
	"fmt"
)

// Kind is the type byte that precedes every named tag.
type Kind byte

const (
	TagEnd Kind = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
)

var kindNames = [...]string{
	TagEnd:       "TAG_End",
	TagByte:      "TAG_Byte",
	TagShort:     "TAG_Short",
	TagInt:       "TAG_Int",
	TagLong:      "TAG_Long",
	TagFloat:     "TAG_Float",
	TagDouble:    "TAG_Double",
	TagByteArray: "TAG_Byte_Array",
	TagString:    "TAG_String",
	TagList:      "TAG_List",
	TagCompound:  "TAG_Compound",
	TagIntArray:  "TAG_Int_Array",
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool { return k <= TagIntArray }

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

var (
	ErrInvalidTagType  = errors.New("nbt: invalid tag type")
	ErrMalformedLength = errors.New("nbt: malformed length prefix")
	ErrTooDeep         = errors.New("nbt: nesting too deep")
	ErrListKind        = errors.New("nbt: list element does not match list type")
	ErrStringTooLong   = errors.New("nbt: string longer than 65535 bytes")
)

// Value is the payload of a Tag. The set of implementations is closed; a type switch over
// the twelve kinds is exhaustive.
type Value interface {
	Kind() Kind
	value()
}

type (
	End       struct{}
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
)

// List is a sequence of unnamed values that all share the kind Elem.
type List struct {
	Elem  Kind
	Items []*Tag
}

// Compound is an ordered sequence of named tags.
type Compound struct {
	Tags []*Tag
}

func (End) Kind() Kind       { return TagEnd }
func (Byte) Kind() Kind      { return TagByte }
func (Short) Kind() Kind     { return TagShort }
func (Int) Kind() Kind       { return TagInt }
func (Long) Kind() Kind      { return TagLong }
func (Float) Kind() Kind     { return TagFloat }
func (Double) Kind() Kind    { return TagDouble }
func (ByteArray) Kind() Kind { return TagByteArray }
func (String) Kind() Kind    { return TagString }
func (IntArray) Kind() Kind  { return TagIntArray }
func (*List) Kind() Kind     { return TagList }
func (*Compound) Kind() Kind { return TagCompound }

func (End) value()       {}
func (Byte) value()      {}
func (Short) value()     {}
func (Int) value()       {}
func (Long) value()      {}
func (Float) value()     {}
func (Double) value()    {}
func (ByteArray) value() {}
func (String) value()    {}
func (IntArray) value()  {}
func (*List) value()     {}
func (*Compound) value() {}

// Tag is one node of the tree.
type Tag struct {
	Name  string
	Value Value
}

// New returns a named tag.
func New(name string, v Value) *Tag {
	return &Tag{Name: name, Value: v}
}

// NewCompound returns a named compound holding the given children.
func NewCompound(name string, children ...*Tag) *Tag {
	return &Tag{Name: name, Value: &Compound{Tags: children}}
}

// NewList returns a named list. The element kind is taken from the first item, or is
// TagEnd for an empty list.
func NewList(name string, items ...Value) *Tag {
	l := &List{Elem: TagEnd}
	if len(items) > 0 {
		l.Elem = items[0].Kind()
	}
	for _, v := range items {
		l.Items = append(l.Items, &Tag{Value: v})
	}
	return &Tag{Name: name, Value: l}
}

// Kind returns the kind of the tag's value. A nil tag or value reads as TagEnd.
func (t *Tag) Kind() Kind {
	if t == nil || t.Value == nil {
		return TagEnd
	}
	return t.Value.Kind()
}

// Compound returns the compound payload, or nil if t is not a compound.
func (t *Tag) Compound() *Compound {
	if t == nil {
		return nil
	}
	c, _ := t.Value.(*Compound)
	return c
}

// List returns the list payload, or nil if t is not a list.
func (t *Tag) List() *List {
	if t == nil {
		return nil
	}
	l, _ := t.Value.(*List)
	return l
}

// Bytes returns the payload of a ByteArray tag.
func (t *Tag) Bytes() ([]byte, bool) {
	if t == nil {
		return nil, false
	}
	b, ok := t.Value.(ByteArray)
	return b, ok
}

// Ints returns the payload of an IntArray tag.
func (t *Tag) Ints() ([]int32, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.Value.(IntArray)
	return v, ok
}

// Int widens any integer kind to int64.
func (t *Tag) Int() (int64, bool) {
	if t == nil {
		return 0, false
	}
	switch v := t.Value.(type) {
	case Byte:
		return int64(v), true
	case Short:
		return int64(v), true
	case Int:
		return int64(v), true
	case Long:
		return int64(v), true
	}
	return 0, false
}

// Float widens either floating point kind to float64.
func (t *Tag) Float() (float64, bool) {
	if t == nil {
		return 0, false
	}
	switch v := t.Value.(type) {
	case Float:
		return float64(v), true
	case Double:
		return float64(v), true
	}
	return 0, false
}

// Str returns the payload of a String tag.
func (t *Tag) Str() (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.Value.(String)
	return string(s), ok
}

// Get returns the direct child with the given name.
func (c *Compound) Get(name string) *Tag {
	for _, t := range c.Tags {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Put replaces the direct child with the same name, or appends t if there is none.
func (c *Compound) Put(t *Tag) {
	for i, old := range c.Tags {
		if old.Name == t.Name {
			c.Tags[i] = t
			return
		}
	}
	c.Tags = append(c.Tags, t)
}

// Append adds an element to the list. An empty list of kind TagEnd adopts the kind of its
// first element.
func (l *List) Append(v Value) error {
	if len(l.Items) == 0 && l.Elem == TagEnd {
		l.Elem = v.Kind()
	}
	if v.Kind() != l.Elem {
		return fmt.Errorf("%w: %s in list of %s", ErrListKind, v.Kind(), l.Elem)
	}
	l.Items = append(l.Items, &Tag{Value: v})
	return nil
}
