// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "github.com/pkg/errors"

// Group type enum names that carry extra fields beyond the common prefix.
const (
	GroupTypeGuild            = "EPalGroupType::Guild"
	GroupTypeIndependentGuild = "EPalGroupType::IndependentGuild"
	GroupTypeOrganization     = "EPalGroupType::Organization"
)

// CharacterHandle links a character's player identifier to its world
// instance identifier.
type CharacterHandle struct {
	ID         GUID `json:"guid"`
	InstanceID GUID `json:"instance_id"`
}

// GuildMember is one entry of a guild's member roster.
type GuildMember struct {
	PlayerUID      GUID   `json:"player_uid"`
	LastOnlineTime int64  `json:"last_online_real_time"`
	PlayerName     string `json:"player_name"`
}

// GroupRecord is the decoded raw-data blob of one group map entry. The
// common prefix (identifier, name, character handles) is present for every
// group type; the remaining fields depend on Type. Byte fields of unknown
// meaning are preserved verbatim so encoding reproduces the original blob.
type GroupRecord struct {
	Type    string            `json:"group_type"`
	GroupID GUID              `json:"group_id"`
	Name    string            `json:"group_name"`
	Handles []CharacterHandle `json:"individual_character_handle_ids"`

	// Present for Guild, IndependentGuild and Organization.
	OrgType uint8 `json:"org_type,omitempty"`

	// Guild fields.
	Leading          []byte        `json:"leading_bytes,omitempty"`
	BaseIDs          []GUID        `json:"base_ids,omitempty"`
	Unknown1         int32         `json:"unknown_1,omitempty"`
	GuildName        string        `json:"guild_name,omitempty"`
	LastNameModifier GUID          `json:"last_guild_name_modifier_player_uid,omitempty"`
	Unknown2         []byte        `json:"unknown_2,omitempty"`
	AdminPlayerUID   GUID          `json:"admin_player_uid,omitempty"`
	Members          []GuildMember `json:"players,omitempty"`

	// Guild and IndependentGuild fields.
	BaseCampLevel  int32  `json:"base_camp_level,omitempty"`
	BaseCampPoints []GUID `json:"map_object_instance_ids_base_camp_points,omitempty"`

	// IndependentGuild fields.
	PlayerUID      GUID   `json:"player_uid,omitempty"`
	GuildName2     string `json:"guild_name_2,omitempty"`
	LastOnlineTime int64  `json:"last_online_real_time,omitempty"`
	PlayerName     string `json:"player_name,omitempty"`

	// Whatever follows the typed fields, preserved verbatim.
	Trailer []byte `json:"trailing_bytes,omitempty"`
}

// decodeGroupRecord decodes one group raw-data blob. groupType is the
// EnumProperty value from the owning map entry; it selects which fields
// follow the common prefix.
func decodeGroupRecord(data []byte, groupType string) (*GroupRecord, error) {
	r := newReader(data)
	rec := &GroupRecord{Type: groupType}
	var err error

	if rec.GroupID, err = r.readGUID(); err != nil {
		return nil, errors.Wrap(err, "group id")
	}
	if rec.Name, err = r.fstring(); err != nil {
		return nil, errors.Wrap(err, "group name")
	}

	handleCount, err := r.u32()
	if err != nil {
		return nil, errors.Wrap(err, "handle count")
	}
	rec.Handles = make([]CharacterHandle, 0, handleCount)
	for i := uint32(0); i < handleCount; i++ {
		var h CharacterHandle
		if h.ID, err = r.readGUID(); err != nil {
			return nil, errors.Wrapf(err, "handle %d", i)
		}
		if h.InstanceID, err = r.readGUID(); err != nil {
			return nil, errors.Wrapf(err, "handle %d", i)
		}
		rec.Handles = append(rec.Handles, h)
	}

	isGuild := groupType == GroupTypeGuild
	isIndep := groupType == GroupTypeIndependentGuild
	isOrg := groupType == GroupTypeOrganization

	if isGuild || isIndep || isOrg {
		if rec.OrgType, err = r.u8(); err != nil {
			return nil, errors.Wrap(err, "org type")
		}
	}

	switch {
	case isGuild:
		if err := rec.decodeGuildFields(r); err != nil {
			return nil, err
		}
	case isIndep:
		if err := rec.decodeIndependentFields(r); err != nil {
			return nil, err
		}
	}

	// Remaining bytes, if any, are opaque: 12 bytes for organizations,
	// variable-length tails observed on guilds, usually nothing otherwise.
	rest, err := r.bytes(r.remaining())
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		rec.Trailer = cloneBytes(rest)
	}
	return rec, nil
}

func (rec *GroupRecord) decodeGuildFields(r *reader) error {
	leading, err := r.bytes(4)
	if err != nil {
		return errors.Wrap(err, "leading bytes")
	}
	rec.Leading = cloneBytes(leading)

	baseCount, err := r.u32()
	if err != nil {
		return errors.Wrap(err, "base count")
	}
	rec.BaseIDs = make([]GUID, 0, baseCount)
	for i := uint32(0); i < baseCount; i++ {
		g, err := r.readGUID()
		if err != nil {
			return errors.Wrapf(err, "base id %d", i)
		}
		rec.BaseIDs = append(rec.BaseIDs, g)
	}

	if rec.Unknown1, err = r.i32(); err != nil {
		return err
	}
	if rec.BaseCampLevel, err = r.i32(); err != nil {
		return err
	}
	if rec.BaseCampPoints, err = readGUIDList(r); err != nil {
		return errors.Wrap(err, "base camp points")
	}
	if rec.GuildName, err = r.fstring(); err != nil {
		return errors.Wrap(err, "guild name")
	}
	if rec.LastNameModifier, err = r.readGUID(); err != nil {
		return err
	}
	unknown2, err := r.bytes(4)
	if err != nil {
		return err
	}
	rec.Unknown2 = cloneBytes(unknown2)
	if rec.AdminPlayerUID, err = r.readGUID(); err != nil {
		return err
	}

	memberCount, err := r.u32()
	if err != nil {
		return errors.Wrap(err, "member count")
	}
	rec.Members = make([]GuildMember, 0, memberCount)
	for i := uint32(0); i < memberCount; i++ {
		var m GuildMember
		if m.PlayerUID, err = r.readGUID(); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
		if m.LastOnlineTime, err = r.i64(); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
		if m.PlayerName, err = r.fstring(); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
		rec.Members = append(rec.Members, m)
	}
	return nil
}

func (rec *GroupRecord) decodeIndependentFields(r *reader) error {
	var err error
	if rec.BaseCampLevel, err = r.i32(); err != nil {
		return err
	}
	if rec.BaseCampPoints, err = readGUIDList(r); err != nil {
		return errors.Wrap(err, "base camp points")
	}
	if rec.GuildName, err = r.fstring(); err != nil {
		return errors.Wrap(err, "guild name")
	}
	if rec.PlayerUID, err = r.readGUID(); err != nil {
		return err
	}
	if rec.GuildName2, err = r.fstring(); err != nil {
		return err
	}
	if rec.LastOnlineTime, err = r.i64(); err != nil {
		return err
	}
	if rec.PlayerName, err = r.fstring(); err != nil {
		return err
	}
	return nil
}

func readGUIDList(r *reader) ([]GUID, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	out := make([]GUID, 0, count)
	for i := uint32(0); i < count; i++ {
		g, err := r.readGUID()
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out = append(out, g)
	}
	return out, nil
}

// encodeGroupRecord is the exact inverse of decodeGroupRecord.
func encodeGroupRecord(rec *GroupRecord) []byte {
	w := newWriter()

	w.writeGUID(rec.GroupID)
	w.fstring(rec.Name)
	w.u32(uint32(len(rec.Handles)))
	for _, h := range rec.Handles {
		w.writeGUID(h.ID)
		w.writeGUID(h.InstanceID)
	}

	isGuild := rec.Type == GroupTypeGuild
	isIndep := rec.Type == GroupTypeIndependentGuild
	isOrg := rec.Type == GroupTypeOrganization

	if isGuild || isIndep || isOrg {
		w.u8(rec.OrgType)
	}

	switch {
	case isGuild:
		w.raw(rec.Leading)
		w.u32(uint32(len(rec.BaseIDs)))
		for _, g := range rec.BaseIDs {
			w.writeGUID(g)
		}
		w.i32(rec.Unknown1)
		w.i32(rec.BaseCampLevel)
		writeGUIDList(w, rec.BaseCampPoints)
		w.fstring(rec.GuildName)
		w.writeGUID(rec.LastNameModifier)
		w.raw(rec.Unknown2)
		w.writeGUID(rec.AdminPlayerUID)
		w.u32(uint32(len(rec.Members)))
		for _, m := range rec.Members {
			w.writeGUID(m.PlayerUID)
			w.i64(m.LastOnlineTime)
			w.fstring(m.PlayerName)
		}
	case isIndep:
		w.i32(rec.BaseCampLevel)
		writeGUIDList(w, rec.BaseCampPoints)
		w.fstring(rec.GuildName)
		w.writeGUID(rec.PlayerUID)
		w.fstring(rec.GuildName2)
		w.i64(rec.LastOnlineTime)
		w.fstring(rec.PlayerName)
	}

	w.raw(rec.Trailer)
	return w.output()
}

func writeGUIDList(w *writer, list []GUID) {
	w.u32(uint32(len(list)))
	for _, g := range list {
		w.writeGUID(g)
	}
}

// swapIdentity exchanges every occurrence of the two player identifiers in
// the record's typed fields. Handles swap their player-identifier half only;
// instance identifiers are distinct objects and stay put.
func (rec *GroupRecord) swapIdentity(a, b GUID) {
	swap := func(g *GUID) {
		switch *g {
		case a:
			*g = b
		case b:
			*g = a
		}
	}
	for i := range rec.Handles {
		swap(&rec.Handles[i].ID)
	}
	swap(&rec.LastNameModifier)
	swap(&rec.AdminPlayerUID)
	for i := range rec.Members {
		swap(&rec.Members[i].PlayerUID)
	}
	swap(&rec.PlayerUID)
}
