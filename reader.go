// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "github.com/pkg/errors"

// maxNestingDepth bounds reader and writer recursion. Real saves nest a
// couple dozen levels at most; corrupted input must not overflow the stack.
const maxNestingDepth = 256

// treeReader decodes the recursive property stream. The policy table is
// consulted with the dotted path of every property before decoding it.
type treeReader struct {
	r      *reader
	policy *Policy
	depth  int
}

// readTree decodes one property scope: (name, type, size) triples until the
// "None" (or empty) sentinel name.
func (d *treeReader) readTree(path string) (*Tree, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > maxNestingDepth {
		return nil, errors.Wrapf(ErrTooDeep, "at %s", path)
	}

	tree := NewTree()
	for {
		name, err := d.r.fstring()
		if err != nil {
			return nil, errors.Wrapf(err, "property name at %s", path)
		}
		if name == "None" || name == "" {
			return tree, nil
		}
		typ, err := d.r.fstring()
		if err != nil {
			return nil, errors.Wrapf(err, "property type for %s.%s", path, name)
		}
		size, err := d.r.u64()
		if err != nil {
			return nil, errors.Wrapf(err, "property size for %s.%s", path, name)
		}
		propPath := path + "." + name
		prop, err := d.readProperty(PropertyType(typ), int(size), propPath)
		if err != nil {
			return nil, errors.Wrapf(err, "property %s (%s, size=%d)", propPath, typ, size)
		}
		tree.Set(name, prop)
	}
}

func (d *treeReader) readProperty(typ PropertyType, size int, path string) (*Property, error) {
	switch d.policy.Kind(path) {
	case PolicySkip:
		return d.readSkip(typ, size)
	case PolicyGroupData:
		if typ == TypeMap {
			return d.readGroupMap(path)
		}
	}

	switch typ {
	case TypeInt, TypeFixedPoint64:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.i32()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: IntValue(v)}, nil

	case TypeInt64:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.i64()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: IntValue(v)}, nil

	case TypeUInt16:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.u16()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: UIntValue(v)}, nil

	case TypeUInt32:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.u32()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: UIntValue(v)}, nil

	case TypeUInt64:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.u64()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: UIntValue(v)}, nil

	case TypeFloat:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.f32()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: FloatValue(v)}, nil

	case TypeDouble:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.f64()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: FloatValue(v)}, nil

	case TypeStr, TypeName, TypeObject:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		v, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: StrValue(v)}, nil

	case TypeBool:
		// The value byte precedes the optional identifier, unlike every
		// other scalar. Format irregularity, not a bug.
		v, err := d.r.u8()
		if err != nil {
			return nil, err
		}
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: BoolValue(v != 0)}, nil

	case TypeEnum:
		enumType, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		name, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: EnumValue{EnumType: enumType, Name: name}}, nil

	case TypeByte:
		enumType, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		bv := ByteValue{EnumType: enumType}
		if enumType == "None" {
			if bv.Byte, err = d.r.u8(); err != nil {
				return nil, err
			}
		} else {
			if bv.Name, err = d.r.fstring(); err != nil {
				return nil, err
			}
		}
		return &Property{Type: typ, ID: id, Value: bv}, nil

	case TypeSoftObject:
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		var sv SoftObjectValue
		if sv.Path, err = d.r.fstring(); err != nil {
			return nil, err
		}
		if sv.SubPath, err = d.r.fstring(); err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: sv}, nil

	case TypeStruct:
		structType, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		structID, err := d.r.readGUID()
		if err != nil {
			return nil, err
		}
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		inner, err := d.readStructInner(structType, path)
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: &StructValue{
			StructType: structType,
			StructID:   structID,
			Inner:      inner,
		}}, nil

	case TypeArray:
		return d.readArray(size, path)

	case TypeMap:
		mv, id, err := d.readMap(path)
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: mv}, nil

	case TypeSet:
		return d.readSet(path)

	case TypeText:
		// TextProperty carries localization metadata this engine does not
		// model; capture it verbatim.
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		data, err := d.r.bytes(size)
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: &RawValue{Data: cloneBytes(data)}}, nil

	default:
		// Unrecognized type tag: degrade to raw capture rather than fail.
		id, err := d.r.readOptionalGUID()
		if err != nil {
			return nil, err
		}
		data, err := d.r.bytes(size)
		if err != nil {
			return nil, err
		}
		return &Property{Type: typ, ID: id, Value: &RawValue{Data: cloneBytes(data)}}, nil
	}
}

// readSkip copies a property payload verbatim after reading the
// type-specific metadata that precedes it on the wire.
func (d *treeReader) readSkip(typ PropertyType, size int) (*Property, error) {
	raw := &RawValue{}
	var err error

	switch typ {
	case TypeArray:
		var elemType string
		if elemType, err = d.r.fstring(); err != nil {
			return nil, err
		}
		raw.ElemType = PropertyType(elemType)
	case TypeMap:
		var keyType, valueType string
		if keyType, err = d.r.fstring(); err != nil {
			return nil, err
		}
		if valueType, err = d.r.fstring(); err != nil {
			return nil, err
		}
		raw.KeyType = PropertyType(keyType)
		raw.ValueType = PropertyType(valueType)
	case TypeStruct:
		if raw.StructType, err = d.r.fstring(); err != nil {
			return nil, err
		}
		if raw.StructID, err = d.r.readGUID(); err != nil {
			return nil, err
		}
	case TypeSet:
		var elemType string
		if elemType, err = d.r.fstring(); err != nil {
			return nil, err
		}
		raw.ElemType = PropertyType(elemType)
	}

	id, err := d.r.readOptionalGUID()
	if err != nil {
		return nil, err
	}
	data, err := d.r.bytes(size)
	if err != nil {
		return nil, err
	}
	raw.Data = cloneBytes(data)
	return &Property{Type: typ, ID: id, Value: raw}, nil
}

// readStructInner decodes a struct payload: a fixed-layout value for the
// known geometry/time/color/identifier types, a nested property scope for
// everything else.
func (d *treeReader) readStructInner(structType, path string) (Value, error) {
	r := d.r
	switch structType {
	case "Vector", "Rotator":
		var v Vector
		var err error
		if v.X, err = r.f64(); err != nil {
			return nil, err
		}
		if v.Y, err = r.f64(); err != nil {
			return nil, err
		}
		if v.Z, err = r.f64(); err != nil {
			return nil, err
		}
		return v, nil
	case "Quat", "Vector4", "Plane":
		var v Quat
		var err error
		if v.X, err = r.f64(); err != nil {
			return nil, err
		}
		if v.Y, err = r.f64(); err != nil {
			return nil, err
		}
		if v.Z, err = r.f64(); err != nil {
			return nil, err
		}
		if v.W, err = r.f64(); err != nil {
			return nil, err
		}
		return v, nil
	case "Vector2D":
		var v Vector2D
		var err error
		if v.X, err = r.f64(); err != nil {
			return nil, err
		}
		if v.Y, err = r.f64(); err != nil {
			return nil, err
		}
		return v, nil
	case "Vector2f", "Vector2D_f":
		var v Vector2F
		var err error
		if v.X, err = r.f32(); err != nil {
			return nil, err
		}
		if v.Y, err = r.f32(); err != nil {
			return nil, err
		}
		return v, nil
	case "Vector3f":
		var v Vector3F
		var err error
		if v.X, err = r.f32(); err != nil {
			return nil, err
		}
		if v.Y, err = r.f32(); err != nil {
			return nil, err
		}
		if v.Z, err = r.f32(); err != nil {
			return nil, err
		}
		return v, nil
	case "IntVector":
		var v IntVector
		var err error
		if v.X, err = r.i32(); err != nil {
			return nil, err
		}
		if v.Y, err = r.i32(); err != nil {
			return nil, err
		}
		if v.Z, err = r.i32(); err != nil {
			return nil, err
		}
		return v, nil
	case "IntPoint":
		var v IntPoint
		var err error
		if v.X, err = r.i32(); err != nil {
			return nil, err
		}
		if v.Y, err = r.i32(); err != nil {
			return nil, err
		}
		return v, nil
	case "LinearColor":
		var v LinearColor
		var err error
		if v.R, err = r.f32(); err != nil {
			return nil, err
		}
		if v.G, err = r.f32(); err != nil {
			return nil, err
		}
		if v.B, err = r.f32(); err != nil {
			return nil, err
		}
		if v.A, err = r.f32(); err != nil {
			return nil, err
		}
		return v, nil
	case "Color":
		b, err := r.bytes(4)
		if err != nil {
			return nil, err
		}
		return Color{B: b[0], G: b[1], R: b[2], A: b[3]}, nil
	case "Box":
		var v Box
		fs := []*float64{&v.Min.X, &v.Min.Y, &v.Min.Z, &v.Max.X, &v.Max.Y, &v.Max.Z}
		for _, f := range fs {
			val, err := r.f64()
			if err != nil {
				return nil, err
			}
			*f = val
		}
		valid, err := r.u8()
		if err != nil {
			return nil, err
		}
		v.Valid = valid != 0
		return v, nil
	case "DateTime":
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		return DateTime(v), nil
	case "Timespan":
		v, err := r.i64()
		if err != nil {
			return nil, err
		}
		return Timespan(v), nil
	case "Guid":
		return r.readGUID()
	default:
		return d.readTree(path)
	}
}

func (d *treeReader) readArray(size int, path string) (*Property, error) {
	elemType, err := d.r.fstring()
	if err != nil {
		return nil, err
	}
	id, err := d.r.readOptionalGUID()
	if err != nil {
		return nil, err
	}

	if d.policy.Kind(path) == PolicyCharacterData && PropertyType(elemType) == TypeByte {
		return d.readCharacterData(PropertyType(elemType), id)
	}

	elemCount, err := d.r.u32()
	if err != nil {
		return nil, err
	}
	count := int(elemCount)
	av := &ArrayValue{ElemType: PropertyType(elemType)}

	switch av.ElemType {
	case TypeStruct:
		hdr := &ArrayStructHeader{}
		if hdr.PropName, err = d.r.fstring(); err != nil {
			return nil, err
		}
		propType, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		hdr.PropType = PropertyType(propType)
		if _, err = d.r.u64(); err != nil { // cumulative element byte length
			return nil, err
		}
		if hdr.StructType, err = d.r.fstring(); err != nil {
			return nil, err
		}
		if hdr.ID, err = d.r.readGUID(); err != nil {
			return nil, err
		}
		flag, err := d.r.u8()
		if err != nil {
			return nil, err
		}
		if flag != 0 {
			extra, err := d.r.readGUID()
			if err != nil {
				return nil, err
			}
			hdr.ExtraID = &extra
		}
		av.Struct = hdr
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			elem, err := d.readStructInner(hdr.StructType, path)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			av.Elems = append(av.Elems, elem)
		}

	case TypeEnum, TypeName, TypeStr, TypeObject:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			s, err := d.r.fstring()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, StrValue(s))
		}

	case TypeGuid:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			g, err := d.r.readGUID()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, g)
		}

	case TypeSoftObject:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			var sv SoftObjectValue
			if sv.Path, err = d.r.fstring(); err != nil {
				return nil, err
			}
			if sv.SubPath, err = d.r.fstring(); err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, sv)
		}

	case TypeByte:
		// A byte array whose declared payload size is count+4 is a raw
		// blob; copy it in one read. Other byte arrays decode the same
		// way element by element, so a single read covers both.
		data, err := d.r.bytes(count)
		if err != nil {
			return nil, err
		}
		av.Bytes = cloneBytes(data)

	case TypeInt:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			v, err := d.r.i32()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, IntValue(v))
		}

	case TypeInt64:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			v, err := d.r.i64()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, IntValue(v))
		}

	case TypeUInt32:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			v, err := d.r.u32()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, UIntValue(v))
		}

	case TypeUInt64:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			v, err := d.r.u64()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, UIntValue(v))
		}

	case TypeFloat:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			v, err := d.r.f32()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, FloatValue(v))
		}

	case TypeBool:
		av.Elems = make([]Value, 0, count)
		for i := 0; i < count; i++ {
			v, err := d.r.u8()
			if err != nil {
				return nil, err
			}
			av.Elems = append(av.Elems, BoolValue(v != 0))
		}

	default:
		// Unknown element type: capture the remaining payload verbatim,
		// keeping the declared count for write-back.
		av.RawCount = elemCount
		if size >= 4 {
			data, err := d.r.bytes(size - 4)
			if err != nil {
				return nil, err
			}
			av.Bytes = cloneBytes(data)
		}
	}

	return &Property{Type: TypeArray, ID: id, Value: av}, nil
}

func (d *treeReader) readMap(path string) (*MapValue, *GUID, error) {
	keyType, err := d.r.fstring()
	if err != nil {
		return nil, nil, err
	}
	valueType, err := d.r.fstring()
	if err != nil {
		return nil, nil, err
	}
	id, err := d.r.readOptionalGUID()
	if err != nil {
		return nil, nil, err
	}
	reserved, err := d.r.u32()
	if err != nil {
		return nil, nil, err
	}
	count, err := d.r.u32()
	if err != nil {
		return nil, nil, err
	}

	mv := &MapValue{
		KeyType:         PropertyType(keyType),
		ValueType:       PropertyType(valueType),
		KeyStructType:   d.policy.StructHint(path + ".Key"),
		ValueStructType: d.policy.StructHint(path + ".Value"),
		Reserved:        reserved,
		Entries:         make([]MapEntry, 0, count),
	}
	for i := uint32(0); i < count; i++ {
		key, err := d.readMapElem(mv.KeyType, mv.KeyStructType, path+".Key")
		if err != nil {
			return nil, nil, errors.Wrapf(err, "entry %d key", i)
		}
		val, err := d.readMapElem(mv.ValueType, mv.ValueStructType, path+".Value")
		if err != nil {
			return nil, nil, errors.Wrapf(err, "entry %d value", i)
		}
		mv.Entries = append(mv.Entries, MapEntry{Key: key, Value: val})
	}
	return mv, id, nil
}

// readMapElem decodes a single map key or value. Struct elements are not
// self-describing; structHint comes from the policy table.
func (d *treeReader) readMapElem(typ PropertyType, structHint, path string) (Value, error) {
	switch typ {
	case TypeStruct:
		return d.readStructInner(structHint, path)
	case TypeEnum, TypeName, TypeStr, TypeObject:
		s, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		return StrValue(s), nil
	case TypeInt:
		v, err := d.r.i32()
		return IntValue(v), err
	case TypeInt64:
		v, err := d.r.i64()
		return IntValue(v), err
	case TypeUInt32:
		v, err := d.r.u32()
		return UIntValue(v), err
	case TypeBool:
		v, err := d.r.u8()
		return BoolValue(v != 0), err
	case TypeGuid:
		return d.r.readGUID()
	default:
		// Best effort: decode as a nested property scope.
		return d.readTree(path)
	}
}

func (d *treeReader) readSet(path string) (*Property, error) {
	elemType, err := d.r.fstring()
	if err != nil {
		return nil, err
	}
	id, err := d.r.readOptionalGUID()
	if err != nil {
		return nil, err
	}
	reserved, err := d.r.u32()
	if err != nil {
		return nil, err
	}
	count, err := d.r.u32()
	if err != nil {
		return nil, err
	}

	sv := &SetValue{
		ElemType: PropertyType(elemType),
		Reserved: reserved,
		Elems:    make([]Value, 0, count),
	}
	for i := uint32(0); i < count; i++ {
		elem, err := d.readSetElem(sv.ElemType, path)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		sv.Elems = append(sv.Elems, elem)
	}
	return &Property{Type: TypeSet, ID: id, Value: sv}, nil
}

func (d *treeReader) readSetElem(typ PropertyType, path string) (Value, error) {
	switch typ {
	case TypeName, TypeStr, TypeEnum, TypeObject:
		s, err := d.r.fstring()
		if err != nil {
			return nil, err
		}
		return StrValue(s), nil
	case TypeInt:
		v, err := d.r.i32()
		return IntValue(v), err
	case TypeInt64:
		v, err := d.r.i64()
		return IntValue(v), err
	case TypeUInt32:
		v, err := d.r.u32()
		return UIntValue(v), err
	case TypeUInt64:
		v, err := d.r.u64()
		return UIntValue(v), err
	case TypeGuid:
		return d.r.readGUID()
	case TypeSoftObject:
		var sv SoftObjectValue
		var err error
		if sv.Path, err = d.r.fstring(); err != nil {
			return nil, err
		}
		if sv.SubPath, err = d.r.fstring(); err != nil {
			return nil, err
		}
		return sv, nil
	default:
		// StructProperty and anything unrecognized: nested property bags.
		return d.readTree(path)
	}
}

// readGroupMap decodes the guild/organization map generically, then unpacks
// each entry's raw-data blob with the group sub-codec. A blob the sub-codec
// cannot decode stays a plain byte array rather than failing the map.
func (d *treeReader) readGroupMap(path string) (*Property, error) {
	mv, id, err := d.readMap(path)
	if err != nil {
		return nil, err
	}

	for _, entry := range mv.Entries {
		entryTree, ok := entry.Value.(*Tree)
		if !ok {
			continue
		}
		groupType := groupTypeOf(entryTree)
		rawProp, ok := entryTree.Get("RawData")
		if !ok {
			continue
		}
		av, ok := rawProp.Value.(*ArrayValue)
		if !ok || len(av.Bytes) == 0 {
			continue
		}
		rec, err := decodeGroupRecord(av.Bytes, groupType)
		if err != nil {
			continue // leave the entry undecoded
		}
		rawProp.Value = &GroupDataValue{ElemType: av.ElemType, Record: rec}
	}

	return &Property{Type: TypeMap, ID: id, Value: mv}, nil
}

// groupTypeOf extracts the EnumProperty group type from a decoded map entry.
func groupTypeOf(entry *Tree) string {
	p, ok := entry.Get("GroupType")
	if !ok {
		return ""
	}
	ev, ok := p.Value.(EnumValue)
	if !ok {
		return ""
	}
	return ev.Name
}

// readCharacterData decodes the per-character raw-data byte array with the
// character sub-codec, degrading to a plain byte array on failure.
func (d *treeReader) readCharacterData(elemType PropertyType, id *GUID) (*Property, error) {
	count, err := d.r.u32()
	if err != nil {
		return nil, err
	}
	data, err := d.r.bytes(int(count))
	if err != nil {
		return nil, err
	}
	blob := cloneBytes(data)

	rec, err := decodeCharacterRecord(blob, d.policy, d.depth)
	if err != nil {
		return &Property{Type: TypeArray, ID: id, Value: &ArrayValue{ElemType: elemType, Bytes: blob}}, nil
	}
	return &Property{Type: TypeArray, ID: id, Value: &CharacterDataValue{ElemType: elemType, Record: rec}}, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
