// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() *Header {
	return &Header{
		SaveGameVersion:         3,
		PackageFileVersionUE4:   522,
		PackageFileVersionUE5:   1009,
		EngineVersionMajor:      5,
		EngineVersionMinor:      1,
		EngineVersionPatch:      1,
		EngineVersionChangelist: 0,
		EngineVersionBranch:     "++UE5+Release-5.1",
		CustomVersionFormat:     3,
		CustomVersions: []CustomVersion{
			{ID: MustParseGUID("01020304-0506-0708-090a-0b0c0d0e0f10"), Version: 7},
		},
		SaveGameClassName: "/Script/Pal.PalWorldSaveGame",
	}
}

// roundTrip marshals, reparses and remarshals a save, asserting the two
// encodings are byte-identical, and returns the reparsed save.
func roundTrip(t *testing.T, s *Save) *Save {
	t.Helper()
	first, err := s.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(first)
	require.NoError(t, err)

	second, err := parsed.Marshal()
	require.NoError(t, err)
	require.Equal(t, first, second, "round trip must be byte-identical")
	return parsed
}

func guidProp(g GUID) *Property {
	return &Property{Type: TypeStruct, Value: &StructValue{StructType: "Guid", Inner: g}}
}

func TestScalarPropertiesRoundTrip(t *testing.T) {
	id := MustParseGUID("aabbccdd-0000-0000-0000-000000000001")

	root := NewTree()
	root.Set("Count", &Property{Type: TypeInt, Value: IntValue(-7)})
	root.Set("BigCount", &Property{Type: TypeInt64, Value: IntValue(1 << 40)})
	root.Set("Small", &Property{Type: TypeUInt16, Value: UIntValue(65535)})
	root.Set("Medium", &Property{Type: TypeUInt32, Value: UIntValue(4000000000)})
	root.Set("Large", &Property{Type: TypeUInt64, Value: UIntValue(1 << 60)})
	root.Set("Ratio", &Property{Type: TypeFloat, Value: FloatValue(0.5)})
	root.Set("Precise", &Property{Type: TypeDouble, Value: FloatValue(-1.25)})
	root.Set("Enabled", &Property{Type: TypeBool, Value: BoolValue(true)})
	root.Set("Disabled", &Property{Type: TypeBool, ID: &id, Value: BoolValue(false)})
	root.Set("Label", &Property{Type: TypeStr, Value: StrValue("hello")})
	root.Set("Tag", &Property{Type: TypeName, Value: StrValue("PalTag")})
	root.Set("Ref", &Property{Type: TypeObject, Value: StrValue("/Game/Pal.Pal_C")})
	root.Set("Mode", &Property{Type: TypeEnum, Value: EnumValue{EnumType: "EPalMode", Name: "EPalMode::Hard"}})
	root.Set("Flags", &Property{Type: TypeByte, Value: ByteValue{EnumType: "None", Byte: 0x7f}})
	root.Set("Rank", &Property{Type: TypeByte, Value: ByteValue{EnumType: "EPalRank", Name: "EPalRank::S"}})
	root.Set("Asset", &Property{Type: TypeSoftObject, Value: SoftObjectValue{Path: "/Game/Maps/Main", SubPath: "PersistentLevel"}})
	root.Set("Fixed", &Property{Type: TypeFixedPoint64, Value: IntValue(1234)})

	parsed := roundTrip(t, &Save{Header: testHeader(), Root: root})

	p, ok := parsed.Root.Get("Count")
	require.True(t, ok)
	assert.Equal(t, IntValue(-7), p.Value)

	p, _ = parsed.Root.Get("Disabled")
	require.NotNil(t, p.ID)
	assert.Equal(t, id, *p.ID)
	assert.Equal(t, BoolValue(false), p.Value)

	p, _ = parsed.Root.Get("Rank")
	assert.Equal(t, ByteValue{EnumType: "EPalRank", Name: "EPalRank::S"}, p.Value)
}

func TestFixedStructsRoundTrip(t *testing.T) {
	structs := map[string]struct {
		structType string
		value      Value
	}{
		"Pos":      {"Vector", Vector{X: 1, Y: -2, Z: 3.5}},
		"Rot":      {"Rotator", Vector{X: 0, Y: 90, Z: 180}},
		"Orient":   {"Quat", Quat{X: 0, Y: 0, Z: 0.707, W: 0.707}},
		"Span2":    {"Vector2D", Vector2D{X: 4, Y: 5}},
		"Span2f":   {"Vector2f", Vector2F{X: 1.5, Y: 2.5}},
		"Span3f":   {"Vector3f", Vector3F{X: 1, Y: 2, Z: 3}},
		"Cell":     {"IntVector", IntVector{X: -1, Y: 0, Z: 1}},
		"Pixel":    {"IntPoint", IntPoint{X: 10, Y: 20}},
		"Tint":     {"LinearColor", LinearColor{R: 0.1, G: 0.2, B: 0.3, A: 1}},
		"Paint":    {"Color", Color{B: 1, G: 2, R: 3, A: 4}},
		"Bounds":   {"Box", Box{Min: Vector{X: -1, Y: -1, Z: -1}, Max: Vector{X: 1, Y: 1, Z: 1}, Valid: true}},
		"Stamp":    {"DateTime", DateTime(638400000000000000)},
		"Cooldown": {"Timespan", Timespan(-6000000000)},
		"Owner":    {"Guid", MustParseGUID("deadbeef-0000-0000-0000-0000000000aa")},
	}

	root := NewTree()
	for name, tc := range structs {
		root.Set(name, &Property{Type: TypeStruct, Value: &StructValue{
			StructType: tc.structType,
			Inner:      tc.value,
		}})
	}

	parsed := roundTrip(t, &Save{Header: testHeader(), Root: root})
	for name, tc := range structs {
		p, ok := parsed.Root.Get(name)
		require.True(t, ok, name)
		sv, ok := p.Value.(*StructValue)
		require.True(t, ok, name)
		assert.Equal(t, tc.structType, sv.StructType, name)
		assert.Equal(t, tc.value, sv.Inner, name)
	}
}

func TestNestedStructRoundTrip(t *testing.T) {
	inner := NewTree()
	inner.Set("Health", &Property{Type: TypeInt, Value: IntValue(100)})
	inner.Set("Spawn", &Property{Type: TypeStruct, Value: &StructValue{
		StructType: "Vector",
		Inner:      Vector{X: 7, Y: 8, Z: 9},
	}})

	root := NewTree()
	root.Set("State", &Property{Type: TypeStruct, Value: &StructValue{
		StructType: "PalState",
		StructID:   MustParseGUID("00000000-0000-0000-0000-0000000000ff"),
		Inner:      inner,
	}})

	parsed := roundTrip(t, &Save{Header: testHeader(), Root: root})
	p, _ := parsed.Root.Get("State")
	sv := p.Value.(*StructValue)
	nested, ok := sv.Inner.(*Tree)
	require.True(t, ok)
	hp, _ := nested.Get("Health")
	assert.Equal(t, IntValue(100), hp.Value)
}

func TestArraysRoundTrip(t *testing.T) {
	extra := MustParseGUID("11111111-2222-3333-4444-555555555555")

	root := NewTree()
	root.Set("Names", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: TypeName,
		Elems:    []Value{StrValue("alpha"), StrValue("beta")},
	}})
	root.Set("Ints", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: TypeInt,
		Elems:    []Value{IntValue(1), IntValue(-2), IntValue(3)},
	}})
	root.Set("Blob", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: TypeByte,
		Bytes:    []byte{1, 2, 3, 4, 5},
	}})
	root.Set("Ids", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: TypeGuid,
		Elems:    []Value{ZeroGUID, extra},
	}})
	root.Set("Flags", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: TypeBool,
		Elems:    []Value{BoolValue(true), BoolValue(false)},
	}})
	root.Set("Points", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: TypeStruct,
		Struct: &ArrayStructHeader{
			PropName:   "Points",
			PropType:   TypeStruct,
			StructType: "Vector",
			ID:         ZeroGUID,
			ExtraID:    &extra,
		},
		Elems: []Value{Vector{X: 1}, Vector{Y: 2}, Vector{Z: 3}},
	}})
	root.Set("Bags", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: TypeStruct,
		Struct: &ArrayStructHeader{
			PropName:   "Bags",
			PropType:   TypeStruct,
			StructType: "PalBag",
			ID:         ZeroGUID,
		},
		Elems: []Value{
			func() Value {
				t := NewTree()
				t.Set("Slot", &Property{Type: TypeInt, Value: IntValue(0)})
				return t
			}(),
		},
	}})
	root.Set("Mystery", &Property{Type: TypeArray, Value: &ArrayValue{
		ElemType: "TextProperty",
		RawCount: 9,
		Bytes:    []byte{0xde, 0xad, 0xbe, 0xef},
	}})

	parsed := roundTrip(t, &Save{Header: testHeader(), Root: root})

	p, _ := parsed.Root.Get("Points")
	av := p.Value.(*ArrayValue)
	require.NotNil(t, av.Struct)
	require.NotNil(t, av.Struct.ExtraID, "optional array identifier must survive")
	assert.Equal(t, extra, *av.Struct.ExtraID)
	assert.Len(t, av.Elems, 3)

	p, _ = parsed.Root.Get("Blob")
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, p.Value.(*ArrayValue).Bytes)

	p, _ = parsed.Root.Get("Mystery")
	av = p.Value.(*ArrayValue)
	assert.Equal(t, uint32(9), av.RawCount, "declared count of an opaque array must survive")
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, av.Bytes)
}

func TestMapAndSetRoundTrip(t *testing.T) {
	statValue := func(n int64) Value {
		t := NewTree()
		t.Set("Value", &Property{Type: TypeInt64, Value: IntValue(n)})
		return t
	}

	root := NewTree()
	root.Set("StatMap", &Property{Type: TypeMap, Value: &MapValue{
		KeyType:   TypeName,
		ValueType: TypeStruct,
		Reserved:  7, // must survive verbatim
		Entries: []MapEntry{
			{Key: StrValue("hp"), Value: statValue(500)},
			{Key: StrValue("mp"), Value: statValue(120)},
		},
	}})
	root.Set("RewardSaveDataMap", &Property{Type: TypeMap, Value: &MapValue{
		KeyType:       TypeStruct,
		ValueType:     TypeInt,
		KeyStructType: "Guid",
		Entries: []MapEntry{
			{Key: MustParseGUID("00000000-0000-0000-0000-000000000042"), Value: IntValue(9)},
		},
	}})
	root.Set("SeenSet", &Property{Type: TypeSet, Value: &SetValue{
		ElemType: TypeName,
		Reserved: 3,
		Elems:    []Value{StrValue("one"), StrValue("two")},
	}})

	parsed := roundTrip(t, &Save{Header: testHeader(), Root: root})

	p, _ := parsed.Root.Get("StatMap")
	mv := p.Value.(*MapValue)
	assert.Equal(t, uint32(7), mv.Reserved)
	require.Len(t, mv.Entries, 2)
	assert.Equal(t, StrValue("hp"), mv.Entries[0].Key)

	p, _ = parsed.Root.Get("RewardSaveDataMap")
	mv = p.Value.(*MapValue)
	assert.Equal(t, "Guid", mv.KeyStructType)
	assert.Equal(t, MustParseGUID("00000000-0000-0000-0000-000000000042"), mv.Entries[0].Key)

	p, _ = parsed.Root.Get("SeenSet")
	sv := p.Value.(*SetValue)
	assert.Equal(t, uint32(3), sv.Reserved)
	assert.Len(t, sv.Elems, 2)
}

func TestSkippedPathCapturedVerbatim(t *testing.T) {
	opaque := []byte{0x10, 0x20, 0x30, 0x40, 0x50}

	root := NewTree()
	root.Set("ItemContainerSaveData", &Property{Type: TypeMap, Value: &RawValue{
		KeyType:   TypeStruct,
		ValueType: TypeStruct,
		Data:      opaque,
	}})
	root.Set("GameTimeSaveData", &Property{Type: TypeStruct, Value: &RawValue{
		StructType: "PalGameTimeSaveData",
		Data:       []byte{9, 8, 7},
	}})

	parsed := roundTrip(t, &Save{Header: testHeader(), Root: root})

	p, _ := parsed.Root.Get("ItemContainerSaveData")
	rv, ok := p.Value.(*RawValue)
	require.True(t, ok, "skip-listed path must stay opaque")
	assert.Equal(t, opaque, rv.Data)
	assert.Equal(t, TypeStruct, rv.KeyType)

	p, _ = parsed.Root.Get("GameTimeSaveData")
	rv = p.Value.(*RawValue)
	assert.Equal(t, "PalGameTimeSaveData", rv.StructType)
	assert.Equal(t, []byte{9, 8, 7}, rv.Data)
}

func TestUnknownPropertyTypeCaptured(t *testing.T) {
	root := NewTree()
	root.Set("Exotic", &Property{Type: "DelegateProperty", Value: &RawValue{
		Data: []byte{1, 2, 3, 4, 5, 6},
	}})

	parsed := roundTrip(t, &Save{Header: testHeader(), Root: root})
	p, _ := parsed.Root.Get("Exotic")
	rv, ok := p.Value.(*RawValue)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, rv.Data)
}

func TestBoolWireLayout(t *testing.T) {
	// The bool value byte precedes the optional identifier and the declared
	// size is zero.
	root := NewTree()
	root.Set("On", &Property{Type: TypeBool, Value: BoolValue(true)})

	w := newWriter()
	e := &treeWriter{w: w}
	require.NoError(t, e.writeTree(root))

	r := newReader(w.output())
	name, err := r.fstring()
	require.NoError(t, err)
	assert.Equal(t, "On", name)
	typ, err := r.fstring()
	require.NoError(t, err)
	assert.Equal(t, "BoolProperty", typ)
	size, err := r.u64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)
	value, err := r.u8()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), value)
	flag, err := r.u8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), flag)
}

func TestEnumSizeExcludesEnumType(t *testing.T) {
	root := NewTree()
	root.Set("Mode", &Property{Type: TypeEnum, Value: EnumValue{
		EnumType: "EPalMode",
		Name:     "EPalMode::Easy",
	}})

	w := newWriter()
	e := &treeWriter{w: w}
	require.NoError(t, e.writeTree(root))

	r := newReader(w.output())
	_, err := r.fstring() // name
	require.NoError(t, err)
	_, err = r.fstring() // type
	require.NoError(t, err)
	size, err := r.u64()
	require.NoError(t, err)

	// Payload is only the value string: 4-byte length + text + NUL.
	assert.Equal(t, uint64(4+len("EPalMode::Easy")+1), size)
}

func TestReaderDepthBound(t *testing.T) {
	w := newWriter()
	for i := 0; i < maxNestingDepth+2; i++ {
		w.fstring("Nested")
		w.fstring("StructProperty")
		w.u64(0)
		w.fstring("PalNode")
		w.writeGUID(ZeroGUID)
		w.u8(0)
	}

	d := &treeReader{r: newReader(w.output()), policy: DefaultPolicy}
	_, err := d.readTree("")
	assert.True(t, errors.Is(err, ErrTooDeep))
}

func TestWriterDepthBound(t *testing.T) {
	leaf := NewTree()
	tree := leaf
	for i := 0; i < maxNestingDepth+2; i++ {
		parent := NewTree()
		parent.Set("Nested", &Property{Type: TypeStruct, Value: &StructValue{
			StructType: "PalNode",
			Inner:      tree,
		}})
		tree = parent
	}

	_, err := (&Save{Header: testHeader(), Root: tree}).Marshal()
	assert.True(t, errors.Is(err, ErrTooDeep))
}

func TestSaveTrailerPreserved(t *testing.T) {
	root := NewTree()
	root.Set("Count", &Property{Type: TypeInt, Value: IntValue(1)})

	s := &Save{Header: testHeader(), Root: root, Trailer: []byte{0, 0, 0, 0}}
	parsed := roundTrip(t, s)
	assert.Equal(t, []byte{0, 0, 0, 0}, parsed.Trailer)
}

func TestMarshalValidation(t *testing.T) {
	_, err := (&Save{Root: NewTree()}).Marshal()
	assert.Error(t, err)
	_, err = (&Save{Header: testHeader()}).Marshal()
	assert.Error(t, err)
}

func TestDecodeEncodeEnvelope(t *testing.T) {
	root := NewTree()
	root.Set("Level", &Property{Type: TypeInt, Value: IntValue(55)})
	s := &Save{Header: testHeader(), Root: root}

	packed, err := s.Encode(VariantDoubleZlib)
	require.NoError(t, err)

	decoded, variant, err := Decode(packed)
	require.NoError(t, err)
	assert.Equal(t, VariantDoubleZlib, variant)
	p, ok := decoded.Root.Get("Level")
	require.True(t, ok)
	assert.Equal(t, IntValue(55), p.Value)
}
