// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON renders the save as an indented JSON document: the header, the full
// property tree and the trailer. Opaque captures appear as base64 strings.
func (s *Save) JSON() ([]byte, error) {
	return jsonAPI.MarshalIndent(s, "", "  ")
}

// MarshalJSON emits the tree as a JSON object in property order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := jsonAPI.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := jsonAPI.Marshal(t.props[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonField preserves emission order inside a property object.
type jsonField struct {
	name  string
	value interface{}
}

func marshalFields(fields []jsonField) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := jsonAPI.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := jsonAPI.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON emits the property's type tag, identifier (when present), the
// type-specific metadata and the payload.
func (p *Property) MarshalJSON() ([]byte, error) {
	fields := []jsonField{{"type", string(p.Type)}}
	if p.ID != nil {
		fields = append(fields, jsonField{"id", *p.ID})
	}

	switch v := p.Value.(type) {
	case *StructValue:
		fields = append(fields,
			jsonField{"struct_type", v.StructType},
			jsonField{"struct_id", v.StructID},
			jsonField{"value", v.Inner},
		)

	case *ArrayValue:
		fields = append(fields, jsonField{"array_type", string(v.ElemType)})
		switch {
		case v.Struct != nil:
			inner := []jsonField{
				{"prop_name", v.Struct.PropName},
				{"prop_type", string(v.Struct.PropType)},
				{"struct_type", v.Struct.StructType},
				{"id", v.Struct.ID},
			}
			if v.Struct.ExtraID != nil {
				inner = append(inner, jsonField{"extra_id", *v.Struct.ExtraID})
			}
			inner = append(inner, jsonField{"values", v.Elems})
			body, err := marshalFields(inner)
			if err != nil {
				return nil, err
			}
			fields = append(fields, jsonField{"value", jsoniter.RawMessage(body)})
		case v.Elems == nil:
			fields = append(fields, jsonField{"value", v.Bytes})
		default:
			fields = append(fields, jsonField{"value", v.Elems})
		}

	case *MapValue:
		fields = append(fields,
			jsonField{"key_type", string(v.KeyType)},
			jsonField{"value_type", string(v.ValueType)},
		)
		if v.KeyStructType != "" {
			fields = append(fields, jsonField{"key_struct_type", v.KeyStructType})
		}
		if v.ValueStructType != "" {
			fields = append(fields, jsonField{"value_struct_type", v.ValueStructType})
		}
		entries := make([]interface{}, 0, len(v.Entries))
		for _, e := range v.Entries {
			body, err := marshalFields([]jsonField{{"key", e.Key}, {"value", e.Value}})
			if err != nil {
				return nil, err
			}
			entries = append(entries, jsoniter.RawMessage(body))
		}
		fields = append(fields, jsonField{"value", entries})

	case *SetValue:
		fields = append(fields,
			jsonField{"set_type", string(v.ElemType)},
			jsonField{"value", v.Elems},
		)

	case *RawValue:
		switch p.Type {
		case TypeArray, TypeSet:
			fields = append(fields, jsonField{"array_type", string(v.ElemType)})
		case TypeMap:
			fields = append(fields,
				jsonField{"key_type", string(v.KeyType)},
				jsonField{"value_type", string(v.ValueType)},
			)
		case TypeStruct:
			fields = append(fields,
				jsonField{"struct_type", v.StructType},
				jsonField{"struct_id", v.StructID},
			)
		}
		fields = append(fields,
			jsonField{"skipped", true},
			jsonField{"value", v.Data},
		)

	case *GroupDataValue:
		fields = append(fields,
			jsonField{"array_type", string(v.ElemType)},
			jsonField{"custom_type", "GroupData"},
			jsonField{"value", v.Record},
		)

	case *CharacterDataValue:
		fields = append(fields,
			jsonField{"array_type", string(v.ElemType)},
			jsonField{"custom_type", "CharacterData"},
			jsonField{"value", v.Record},
		)

	default:
		fields = append(fields, jsonField{"value", p.Value})
	}

	return marshalFields(fields)
}

// MarshalJSON emits either the raw byte or the enum name, tagged with the
// enum type, matching the two wire forms.
func (v ByteValue) MarshalJSON() ([]byte, error) {
	if v.EnumType == "None" {
		return marshalFields([]jsonField{{"type", v.EnumType}, {"value", v.Byte}})
	}
	return marshalFields([]jsonField{{"type", v.EnumType}, {"value", v.Name}})
}
