// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testGuildID  = MustParseGUID("10000000-0000-0000-0000-000000000001")
	testHostUID  = MustParseGUID("20000000-0000-0000-0000-000000000001")
	testGuestUID = MustParseGUID("20000000-0000-0000-0000-000000000002")
	testHostInst = MustParseGUID("30000000-0000-0000-0000-000000000001")
)

func testGuildRecord() *GroupRecord {
	return &GroupRecord{
		Type:    GroupTypeGuild,
		GroupID: testGuildID,
		Name:    "",
		Handles: []CharacterHandle{
			{ID: testHostUID, InstanceID: testHostInst},
			{ID: testGuestUID, InstanceID: MustParseGUID("30000000-0000-0000-0000-000000000002")},
		},
		OrgType:          1,
		Leading:          []byte{0, 0, 0, 0},
		BaseIDs:          []GUID{MustParseGUID("40000000-0000-0000-0000-000000000001")},
		Unknown1:         2,
		BaseCampLevel:    5,
		BaseCampPoints:   []GUID{MustParseGUID("40000000-0000-0000-0000-000000000002")},
		GuildName:        "Night Watch",
		LastNameModifier: testHostUID,
		Unknown2:         []byte{1, 0, 0, 0},
		AdminPlayerUID:   testHostUID,
		Members: []GuildMember{
			{PlayerUID: testHostUID, LastOnlineTime: 638400000000000000, PlayerName: "Host"},
			{PlayerUID: testGuestUID, LastOnlineTime: 638399990000000000, PlayerName: "Guest"},
		},
		Trailer: []byte{0xff, 0xee},
	}
}

func TestGuildRecordRoundTrip(t *testing.T) {
	rec := testGuildRecord()
	encoded := encodeGroupRecord(rec)

	decoded, err := decodeGroupRecord(encoded, GroupTypeGuild)
	require.NoError(t, err)
	assert.Equal(t, rec.GroupID, decoded.GroupID)
	assert.Equal(t, rec.Handles, decoded.Handles)
	assert.Equal(t, rec.GuildName, decoded.GuildName)
	assert.Equal(t, rec.AdminPlayerUID, decoded.AdminPlayerUID)
	assert.Equal(t, rec.Members, decoded.Members)
	assert.Equal(t, rec.Trailer, decoded.Trailer)

	assert.Equal(t, encoded, encodeGroupRecord(decoded))
}

func TestIndependentGuildRecordRoundTrip(t *testing.T) {
	rec := &GroupRecord{
		Type:    GroupTypeIndependentGuild,
		GroupID: testGuildID,
		Name:    "solo",
		Handles: []CharacterHandle{
			{ID: testHostUID, InstanceID: testHostInst},
		},
		OrgType:        2,
		BaseCampLevel:  1,
		BaseCampPoints: []GUID{},
		GuildName:      "Unnamed Guild",
		PlayerUID:      testHostUID,
		GuildName2:     "Unnamed Guild",
		LastOnlineTime: 638400001234567890,
		PlayerName:     "Lone",
	}

	encoded := encodeGroupRecord(rec)
	decoded, err := decodeGroupRecord(encoded, GroupTypeIndependentGuild)
	require.NoError(t, err)
	assert.Equal(t, rec.PlayerUID, decoded.PlayerUID)
	assert.Equal(t, rec.GuildName2, decoded.GuildName2)
	assert.Equal(t, rec.LastOnlineTime, decoded.LastOnlineTime)
	assert.Equal(t, rec.PlayerName, decoded.PlayerName)
	assert.Equal(t, encoded, encodeGroupRecord(decoded))
}

func TestOrganizationRecordRoundTrip(t *testing.T) {
	rec := &GroupRecord{
		Type:    GroupTypeOrganization,
		GroupID: testGuildID,
		Name:    "org",
		Handles: []CharacterHandle{},
		OrgType: 3,
		Trailer: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	}

	encoded := encodeGroupRecord(rec)
	decoded, err := decodeGroupRecord(encoded, GroupTypeOrganization)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), decoded.OrgType)
	assert.Equal(t, rec.Trailer, decoded.Trailer)
	assert.Equal(t, encoded, encodeGroupRecord(decoded))
}

func TestUnknownGroupTypeKeepsCommonPrefix(t *testing.T) {
	// Group types without extra fields carry no org-type byte; anything
	// after the handles is preserved opaquely.
	rec := &GroupRecord{
		Type:    "EPalGroupType::Neutral",
		GroupID: testGuildID,
		Name:    "neutral",
		Handles: []CharacterHandle{},
		Trailer: []byte{0xab, 0xcd},
	}

	encoded := encodeGroupRecord(rec)
	decoded, err := decodeGroupRecord(encoded, "EPalGroupType::Neutral")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), decoded.OrgType)
	assert.Equal(t, []byte{0xab, 0xcd}, decoded.Trailer)
	assert.Equal(t, encoded, encodeGroupRecord(decoded))
}

func TestGroupRecordTruncated(t *testing.T) {
	encoded := encodeGroupRecord(testGuildRecord())
	_, err := decodeGroupRecord(encoded[:20], GroupTypeGuild)
	assert.Error(t, err)
}

func TestGroupRecordSwapIdentity(t *testing.T) {
	rec := testGuildRecord()
	rec.swapIdentity(testHostUID, testGuestUID)

	assert.Equal(t, testGuestUID, rec.AdminPlayerUID)
	assert.Equal(t, testGuestUID, rec.LastNameModifier)
	assert.Equal(t, testGuestUID, rec.Handles[0].ID)
	assert.Equal(t, testHostUID, rec.Handles[1].ID)
	assert.Equal(t, testGuestUID, rec.Members[0].PlayerUID)
	assert.Equal(t, testHostUID, rec.Members[1].PlayerUID)

	// Instance identifiers are not player identities.
	assert.Equal(t, testHostInst, rec.Handles[0].InstanceID)

	// Swapping back restores the original encoding.
	rec.swapIdentity(testHostUID, testGuestUID)
	assert.Equal(t, encodeGroupRecord(testGuildRecord()), encodeGroupRecord(rec))
}
