// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "github.com/pkg/errors"

// treeWriter encodes a property tree back to the wire format. It is the
// inverse of treeReader: a tree decoded from an archive and written back
// unmodified reproduces the original bytes.
type treeWriter struct {
	w     *writer
	depth int
}

// writeTree emits one property scope followed by the "None" sentinel. Each
// property body is staged in a scratch buffer first, because the size field
// on the wire counts only the payload and must be known before the payload
// is written.
func (e *treeWriter) writeTree(t *Tree) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxNestingDepth {
		return ErrTooDeep
	}

	for _, name := range t.Names() {
		p, _ := t.Get(name)
		e.w.fstring(name)
		e.w.fstring(string(p.Type))

		body := &treeWriter{w: newWriter(), depth: e.depth}
		size, err := body.writeProperty(p)
		if err != nil {
			return errors.Wrapf(err, "property %s", name)
		}
		e.w.u64(uint64(size))
		e.w.raw(body.w.output())
	}
	e.w.fstring("None")
	return nil
}

// writeProperty emits the property's metadata and payload and returns the
// payload size. Metadata (struct type and identifiers, element type tags,
// the bool value byte) is excluded from the returned size per the format.
func (e *treeWriter) writeProperty(p *Property) (int, error) {
	w := e.w

	// Opaque captures and the domain record wrappers carry their own
	// metadata and bypass the per-type dispatch below.
	switch v := p.Value.(type) {
	case *RawValue:
		return e.writeRaw(p.Type, p.ID, v)
	case *GroupDataValue:
		w.fstring(string(v.ElemType))
		w.writeOptionalGUID(p.ID)
		encoded := encodeGroupRecord(v.Record)
		w.u32(uint32(len(encoded)))
		w.raw(encoded)
		return 4 + len(encoded), nil
	case *CharacterDataValue:
		w.fstring(string(v.ElemType))
		w.writeOptionalGUID(p.ID)
		encoded, err := encodeCharacterRecord(v.Record)
		if err != nil {
			return 0, err
		}
		w.u32(uint32(len(encoded)))
		w.raw(encoded)
		return 4 + len(encoded), nil
	}

	switch p.Type {
	case TypeInt, TypeFixedPoint64:
		v, ok := p.Value.(IntValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		w.i32(int32(v))
		return 4, nil

	case TypeInt64:
		v, ok := p.Value.(IntValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		w.i64(int64(v))
		return 8, nil

	case TypeUInt16:
		v, ok := p.Value.(UIntValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		w.u16(uint16(v))
		return 2, nil

	case TypeUInt32:
		v, ok := p.Value.(UIntValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		w.u32(uint32(v))
		return 4, nil

	case TypeUInt64:
		v, ok := p.Value.(UIntValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		w.u64(uint64(v))
		return 8, nil

	case TypeFloat:
		v, ok := p.Value.(FloatValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		w.f32(float32(v))
		return 4, nil

	case TypeDouble:
		v, ok := p.Value.(FloatValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		w.f64(float64(v))
		return 8, nil

	case TypeStr, TypeName, TypeObject:
		v, ok := p.Value.(StrValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		start := w.len()
		w.fstring(string(v))
		return w.len() - start, nil

	case TypeBool:
		v, ok := p.Value.(BoolValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		if v {
			w.u8(1)
		} else {
			w.u8(0)
		}
		w.writeOptionalGUID(p.ID)
		return 0, nil // value byte is metadata; declared size is zero

	case TypeEnum:
		v, ok := p.Value.(EnumValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.fstring(v.EnumType)
		w.writeOptionalGUID(p.ID)
		start := w.len()
		w.fstring(v.Name)
		return w.len() - start, nil

	case TypeByte:
		v, ok := p.Value.(ByteValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.fstring(v.EnumType)
		w.writeOptionalGUID(p.ID)
		start := w.len()
		if v.EnumType == "None" {
			w.u8(v.Byte)
		} else {
			w.fstring(v.Name)
		}
		return w.len() - start, nil

	case TypeSoftObject:
		v, ok := p.Value.(SoftObjectValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.writeOptionalGUID(p.ID)
		start := w.len()
		w.fstring(v.Path)
		w.fstring(v.SubPath)
		return w.len() - start, nil

	case TypeStruct:
		v, ok := p.Value.(*StructValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.fstring(v.StructType)
		w.writeGUID(v.StructID)
		w.writeOptionalGUID(p.ID)
		start := w.len()
		if err := e.writeStructInner(v.StructType, v.Inner); err != nil {
			return 0, err
		}
		return w.len() - start, nil

	case TypeArray:
		v, ok := p.Value.(*ArrayValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.fstring(string(v.ElemType))
		w.writeOptionalGUID(p.ID)
		start := w.len()
		if err := e.writeArrayBody(v); err != nil {
			return 0, err
		}
		return w.len() - start, nil

	case TypeMap:
		v, ok := p.Value.(*MapValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.fstring(string(v.KeyType))
		w.fstring(string(v.ValueType))
		w.writeOptionalGUID(p.ID)
		start := w.len()
		w.u32(v.Reserved)
		w.u32(uint32(len(v.Entries)))
		for i, entry := range v.Entries {
			if err := e.writeMapElem(v.KeyType, v.KeyStructType, entry.Key); err != nil {
				return 0, errors.Wrapf(err, "entry %d key", i)
			}
			if err := e.writeMapElem(v.ValueType, v.ValueStructType, entry.Value); err != nil {
				return 0, errors.Wrapf(err, "entry %d value", i)
			}
		}
		return w.len() - start, nil

	case TypeSet:
		v, ok := p.Value.(*SetValue)
		if !ok {
			return 0, errors.Errorf("%s payload is %T", p.Type, p.Value)
		}
		w.fstring(string(v.ElemType))
		w.writeOptionalGUID(p.ID)
		start := w.len()
		w.u32(v.Reserved)
		w.u32(uint32(len(v.Elems)))
		for i, elem := range v.Elems {
			if err := e.writeSetElem(v.ElemType, elem); err != nil {
				return 0, errors.Wrapf(err, "element %d", i)
			}
		}
		return w.len() - start, nil

	default:
		return 0, errors.Errorf("unsupported property type %s", p.Type)
	}
}

func (e *treeWriter) writeRaw(typ PropertyType, id *GUID, v *RawValue) (int, error) {
	w := e.w
	switch typ {
	case TypeArray, TypeSet:
		w.fstring(string(v.ElemType))
	case TypeMap:
		w.fstring(string(v.KeyType))
		w.fstring(string(v.ValueType))
	case TypeStruct:
		w.fstring(v.StructType)
		w.writeGUID(v.StructID)
	}
	w.writeOptionalGUID(id)
	w.raw(v.Data)
	return len(v.Data), nil
}

func (e *treeWriter) writeStructInner(structType string, val Value) error {
	w := e.w
	switch structType {
	case "Vector", "Rotator":
		v, ok := val.(Vector)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.f64(v.X)
		w.f64(v.Y)
		w.f64(v.Z)
	case "Quat", "Vector4", "Plane":
		v, ok := val.(Quat)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.f64(v.X)
		w.f64(v.Y)
		w.f64(v.Z)
		w.f64(v.W)
	case "Vector2D":
		v, ok := val.(Vector2D)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.f64(v.X)
		w.f64(v.Y)
	case "Vector2f", "Vector2D_f":
		v, ok := val.(Vector2F)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.f32(v.X)
		w.f32(v.Y)
	case "Vector3f":
		v, ok := val.(Vector3F)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.f32(v.X)
		w.f32(v.Y)
		w.f32(v.Z)
	case "IntVector":
		v, ok := val.(IntVector)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.i32(v.X)
		w.i32(v.Y)
		w.i32(v.Z)
	case "IntPoint":
		v, ok := val.(IntPoint)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.i32(v.X)
		w.i32(v.Y)
	case "LinearColor":
		v, ok := val.(LinearColor)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.f32(v.R)
		w.f32(v.G)
		w.f32(v.B)
		w.f32(v.A)
	case "Color":
		v, ok := val.(Color)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.u8(v.B)
		w.u8(v.G)
		w.u8(v.R)
		w.u8(v.A)
	case "Box":
		v, ok := val.(Box)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.f64(v.Min.X)
		w.f64(v.Min.Y)
		w.f64(v.Min.Z)
		w.f64(v.Max.X)
		w.f64(v.Max.Y)
		w.f64(v.Max.Z)
		if v.Valid {
			w.u8(1)
		} else {
			w.u8(0)
		}
	case "DateTime":
		v, ok := val.(DateTime)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.u64(uint64(v))
	case "Timespan":
		v, ok := val.(Timespan)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.i64(int64(v))
	case "Guid":
		v, ok := val.(GUID)
		if !ok {
			return errors.Errorf("%s payload is %T", structType, val)
		}
		w.writeGUID(v)
	default:
		t, ok := val.(*Tree)
		if !ok {
			return errors.Errorf("struct %q payload is %T", structType, val)
		}
		return e.writeTree(t)
	}
	return nil
}

func (e *treeWriter) writeArrayBody(av *ArrayValue) error {
	w := e.w

	if av.Struct != nil {
		// Struct arrays stage their elements first: the extra header
		// declares the cumulative element byte length before the data.
		elems := &treeWriter{w: newWriter(), depth: e.depth}
		for i, elem := range av.Elems {
			if err := elems.writeStructInner(av.Struct.StructType, elem); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
		w.u32(uint32(len(av.Elems)))
		w.fstring(av.Struct.PropName)
		w.fstring(string(av.Struct.PropType))
		w.u64(uint64(elems.w.len()))
		w.fstring(av.Struct.StructType)
		w.writeGUID(av.Struct.ID)
		if av.Struct.ExtraID != nil {
			w.u8(1)
			w.writeGUID(*av.Struct.ExtraID)
		} else {
			w.u8(0)
		}
		w.raw(elems.w.output())
		return nil
	}

	switch av.ElemType {
	case TypeEnum, TypeName, TypeStr, TypeObject:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			s, ok := elem.(StrValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.fstring(string(s))
		}

	case TypeGuid:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			g, ok := elem.(GUID)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.writeGUID(g)
		}

	case TypeSoftObject:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			sv, ok := elem.(SoftObjectValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.fstring(sv.Path)
			w.fstring(sv.SubPath)
		}

	case TypeByte:
		w.u32(uint32(len(av.Bytes)))
		w.raw(av.Bytes)

	case TypeInt:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			v, ok := elem.(IntValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.i32(int32(v))
		}

	case TypeInt64:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			v, ok := elem.(IntValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.i64(int64(v))
		}

	case TypeUInt32:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			v, ok := elem.(UIntValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.u32(uint32(v))
		}

	case TypeUInt64:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			v, ok := elem.(UIntValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.u64(uint64(v))
		}

	case TypeFloat:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			v, ok := elem.(FloatValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			w.f32(float32(v))
		}

	case TypeBool:
		w.u32(uint32(len(av.Elems)))
		for i, elem := range av.Elems {
			v, ok := elem.(BoolValue)
			if !ok {
				return errors.Errorf("element %d is %T", i, elem)
			}
			if v {
				w.u8(1)
			} else {
				w.u8(0)
			}
		}

	default:
		// Unknown-type capture: the declared count is not derivable from
		// the byte length, so re-emit the recorded one.
		w.u32(av.RawCount)
		w.raw(av.Bytes)
	}
	return nil
}

func (e *treeWriter) writeMapElem(typ PropertyType, structHint string, val Value) error {
	w := e.w
	switch typ {
	case TypeStruct:
		return e.writeStructInner(structHint, val)
	case TypeEnum, TypeName, TypeStr, TypeObject:
		s, ok := val.(StrValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.fstring(string(s))
	case TypeInt:
		v, ok := val.(IntValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.i32(int32(v))
	case TypeInt64:
		v, ok := val.(IntValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.i64(int64(v))
	case TypeUInt32:
		v, ok := val.(UIntValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.u32(uint32(v))
	case TypeBool:
		v, ok := val.(BoolValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		if v {
			w.u8(1)
		} else {
			w.u8(0)
		}
	case TypeGuid:
		g, ok := val.(GUID)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.writeGUID(g)
	default:
		t, ok := val.(*Tree)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		return e.writeTree(t)
	}
	return nil
}

func (e *treeWriter) writeSetElem(typ PropertyType, val Value) error {
	w := e.w
	switch typ {
	case TypeName, TypeStr, TypeEnum, TypeObject:
		s, ok := val.(StrValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.fstring(string(s))
	case TypeInt:
		v, ok := val.(IntValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.i32(int32(v))
	case TypeInt64:
		v, ok := val.(IntValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.i64(int64(v))
	case TypeUInt32:
		v, ok := val.(UIntValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.u32(uint32(v))
	case TypeUInt64:
		v, ok := val.(UIntValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.u64(uint64(v))
	case TypeGuid:
		g, ok := val.(GUID)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.writeGUID(g)
	case TypeSoftObject:
		sv, ok := val.(SoftObjectValue)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		w.fstring(sv.Path)
		w.fstring(sv.SubPath)
	default:
		t, ok := val.(*Tree)
		if !ok {
			return errors.Errorf("%s element is %T", typ, val)
		}
		return e.writeTree(t)
	}
	return nil
}
