// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveJSONProjection(t *testing.T) {
	doc, err := buildWorldSave().JSON()
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(doc))

	js := gjson.ParseBytes(doc)

	assert.Equal(t, "/Script/Pal.PalWorldSaveGame", js.Get("header.save_game_class_name").String())
	assert.Equal(t, "StructProperty", js.Get("properties.worldSaveData.type").String())
	assert.Equal(t, "WorldSaveData", js.Get("properties.worldSaveData.struct_type").String())

	world := js.Get("properties.worldSaveData.value")

	// Guild record fields, through the custom group projection.
	guild := world.Get("GroupSaveDataMap.value.0.value.RawData")
	assert.Equal(t, "GroupData", guild.Get("custom_type").String())
	assert.Equal(t, "Night Watch", guild.Get("value.guild_name").String())
	assert.Equal(t, testHostUID.String(), guild.Get("value.admin_player_uid").String())

	// Character record, through the custom character projection.
	char := world.Get("CharacterSaveParameterMap.value.0.value.RawData")
	assert.Equal(t, "CharacterData", char.Get("custom_type").String())
	assert.Equal(t, "Host", char.Get("value.object.NickName.value").String())

	// Skipped subtree appears as a base64 capture.
	skipped := world.Get("GameTimeSaveData")
	assert.True(t, skipped.Get("skipped").Bool())
	assert.Equal(t, "AQIDBAUGBwg=", skipped.Get("value").String())
}

func TestTreeJSONPreservesOrder(t *testing.T) {
	tree := NewTree()
	tree.Set("zeta", &Property{Type: TypeInt, Value: IntValue(1)})
	tree.Set("alpha", &Property{Type: TypeInt, Value: IntValue(2)})
	tree.Set("mid", &Property{Type: TypeInt, Value: IntValue(3)})

	doc, err := jsonAPI.Marshal(tree)
	require.NoError(t, err)

	var order []string
	gjson.ParseBytes(doc).ForEach(func(key, _ gjson.Result) bool {
		order = append(order, key.String())
		return true
	})
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, order)
}

func TestPropertyJSONShapes(t *testing.T) {
	id := MustParseGUID("01020304-0506-0708-090a-0b0c0d0e0f10")

	p := &Property{Type: TypeEnum, ID: &id, Value: EnumValue{EnumType: "EPalMode", Name: "EPalMode::Hard"}}
	doc, err := jsonAPI.Marshal(p)
	require.NoError(t, err)
	js := gjson.ParseBytes(doc)
	assert.Equal(t, "EnumProperty", js.Get("type").String())
	assert.Equal(t, id.String(), js.Get("id").String())
	assert.Equal(t, "EPalMode::Hard", js.Get("value.value").String())

	p = &Property{Type: TypeByte, Value: ByteValue{EnumType: "None", Byte: 200}}
	doc, err = jsonAPI.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, int64(200), gjson.GetBytes(doc, "value.value").Int())

	p = &Property{Type: TypeMap, Value: &MapValue{
		KeyType:   TypeName,
		ValueType: TypeInt,
		Entries:   []MapEntry{{Key: StrValue("hp"), Value: IntValue(10)}},
	}}
	doc, err = jsonAPI.Marshal(p)
	require.NoError(t, err)
	js = gjson.ParseBytes(doc)
	assert.Equal(t, "NameProperty", js.Get("key_type").String())
	assert.Equal(t, "hp", js.Get("value.0.key").String())
	assert.Equal(t, int64(10), js.Get("value.0.value").Int())
}
