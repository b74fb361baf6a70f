// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

// PropertyType is the wire type tag of a property ("IntProperty",
// "StructProperty", ...). Array, map and set element types reuse the same
// tag strings, plus the bare "Guid" used for identifier elements.
type PropertyType string

const (
	TypeInt          PropertyType = "IntProperty"
	TypeInt64        PropertyType = "Int64Property"
	TypeUInt16       PropertyType = "UInt16Property"
	TypeUInt32       PropertyType = "UInt32Property"
	TypeUInt64       PropertyType = "UInt64Property"
	TypeFixedPoint64 PropertyType = "FixedPoint64Property"
	TypeFloat        PropertyType = "FloatProperty"
	TypeDouble       PropertyType = "DoubleProperty"
	TypeBool         PropertyType = "BoolProperty"
	TypeStr          PropertyType = "StrProperty"
	TypeName         PropertyType = "NameProperty"
	TypeText         PropertyType = "TextProperty"
	TypeEnum         PropertyType = "EnumProperty"
	TypeByte         PropertyType = "ByteProperty"
	TypeObject       PropertyType = "ObjectProperty"
	TypeSoftObject   PropertyType = "SoftObjectProperty"
	TypeStruct       PropertyType = "StructProperty"
	TypeArray        PropertyType = "ArrayProperty"
	TypeMap          PropertyType = "MapProperty"
	TypeSet          PropertyType = "SetProperty"
	TypeGuid         PropertyType = "Guid"
)

// Value is the payload of a tagged property. It is a closed set: one variant
// per wire shape, *Tree for nested scopes, RawValue for opaque captures and
// the two domain record wrappers.
type Value interface {
	isValue()
}

// Scalar payloads. Integer width and signedness on the wire come from the
// owning property's type tag, not from the Go representation.
type (
	IntValue   int64
	UIntValue  uint64
	FloatValue float64
	BoolValue  bool
	StrValue   string
)

// EnumValue is an EnumProperty payload: the enum type plus the chosen name.
type EnumValue struct {
	EnumType string `json:"type"`
	Name     string `json:"value"`
}

// ByteValue is a ByteProperty payload. When EnumType is "None" the payload
// is a single byte; otherwise it is an enum name string.
type ByteValue struct {
	EnumType string
	Byte     uint8
	Name     string
}

// SoftObjectValue is a SoftObjectProperty payload.
type SoftObjectValue struct {
	Path    string `json:"path"`
	SubPath string `json:"sub_path"`
}

// Fixed-layout struct payloads. Field order matches the wire layout.
type (
	Vector      struct{ X, Y, Z float64 }
	Quat        struct{ X, Y, Z, W float64 }
	Vector2D    struct{ X, Y float64 }
	Vector2F    struct{ X, Y float32 }
	Vector3F    struct{ X, Y, Z float32 }
	IntVector   struct{ X, Y, Z int32 }
	IntPoint    struct{ X, Y int32 }
	LinearColor struct{ R, G, B, A float32 }
	Color       struct{ B, G, R, A uint8 } // stored B,G,R,A on the wire
	Box         struct {
		Min, Max Vector
		Valid    bool
	}
	DateTime uint64
	Timespan int64
)

// StructValue is a StructProperty payload: the struct type name, the 16-byte
// struct identifier, and either a fixed-layout value or a nested *Tree.
type StructValue struct {
	StructType string
	StructID   GUID
	Inner      Value
}

// ArrayStructHeader is the extra header a struct-typed array carries before
// its elements. ExtraID preserves the optional trailing identifier some
// archives store after the flag byte.
type ArrayStructHeader struct {
	PropName   string
	PropType   PropertyType
	StructType string
	ID         GUID
	ExtraID    *GUID
}

// ArrayValue is an ArrayProperty payload. Byte arrays and arrays of unknown
// element types are captured in Bytes; everything else decodes into Elems.
// RawCount preserves the declared element count for the unknown-type capture,
// where the byte length and the element count differ.
type ArrayValue struct {
	ElemType PropertyType
	Struct   *ArrayStructHeader
	Elems    []Value
	Bytes    []byte
	RawCount uint32
}

// MapEntry is one ordered key/value pair of a MapValue.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapValue is a MapProperty payload. Struct-typed keys and values are not
// self-describing on the wire; the struct type hints recorded here come from
// the policy table and are needed again on write. Reserved is a 32-bit wire
// field of unknown meaning, preserved verbatim.
type MapValue struct {
	KeyType         PropertyType
	ValueType       PropertyType
	KeyStructType   string
	ValueStructType string
	Reserved        uint32
	Entries         []MapEntry
}

// SetValue is a SetProperty payload.
type SetValue struct {
	ElemType PropertyType
	Reserved uint32
	Elems    []Value
}

// RawValue is an opaque capture: a property whose payload bytes were copied
// verbatim, either because the policy table skips its path or because the
// type tag is not understood. The metadata fields that precede the payload
// on the wire are kept so re-encoding reproduces the original bytes exactly.
type RawValue struct {
	ElemType   PropertyType // arrays and sets
	KeyType    PropertyType // maps
	ValueType  PropertyType // maps
	StructType string       // structs
	StructID   GUID         // structs
	Data       []byte
}

// GroupDataValue replaces the generic byte-array payload of a group-data
// map entry once the group sub-codec has decoded it.
type GroupDataValue struct {
	ElemType PropertyType
	Record   *GroupRecord
}

// CharacterDataValue replaces the byte-array payload of a character raw-data
// property once the character sub-codec has decoded it.
type CharacterDataValue struct {
	ElemType PropertyType
	Record   *CharacterRecord
}

func (IntValue) isValue()            {}
func (UIntValue) isValue()           {}
func (FloatValue) isValue()          {}
func (BoolValue) isValue()           {}
func (StrValue) isValue()            {}
func (EnumValue) isValue()           {}
func (ByteValue) isValue()           {}
func (SoftObjectValue) isValue()     {}
func (GUID) isValue()                {}
func (Vector) isValue()              {}
func (Quat) isValue()                {}
func (Vector2D) isValue()            {}
func (Vector2F) isValue()            {}
func (Vector3F) isValue()            {}
func (IntVector) isValue()           {}
func (IntPoint) isValue()            {}
func (LinearColor) isValue()         {}
func (Color) isValue()               {}
func (Box) isValue()                 {}
func (DateTime) isValue()            {}
func (Timespan) isValue()            {}
func (*StructValue) isValue()        {}
func (*ArrayValue) isValue()         {}
func (*MapValue) isValue()           {}
func (*SetValue) isValue()           {}
func (*RawValue) isValue()           {}
func (*GroupDataValue) isValue()     {}
func (*CharacterDataValue) isValue() {}
func (*Tree) isValue()               {}

// Property is one named, typed entry in the tree: the wire type tag, the
// optional 16-byte instance identifier, and the typed payload.
type Property struct {
	Type  PropertyType
	ID    *GUID
	Value Value
}

// Tree is an order-preserving property bag. Key order matters: the writer
// emits properties in insertion order, which must match the original archive
// for byte-identical round trips.
type Tree struct {
	names []string
	props map[string]*Property
}

// NewTree returns an empty property bag.
func NewTree() *Tree {
	return &Tree{props: make(map[string]*Property)}
}

// Get returns the property stored under name.
func (t *Tree) Get(name string) (*Property, bool) {
	p, ok := t.props[name]
	return p, ok
}

// Set stores a property, appending the name to the order on first insert.
func (t *Tree) Set(name string, p *Property) {
	if _, exists := t.props[name]; !exists {
		t.names = append(t.names, name)
	}
	t.props[name] = p
}

// Names returns the property names in insertion order. The returned slice
// is shared; callers must not modify it.
func (t *Tree) Names() []string {
	return t.names
}

// Len returns the number of properties in the bag.
func (t *Tree) Len() int {
	return len(t.names)
}
