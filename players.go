// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"fmt"
	"strings"
)

// PlayerInfo is one entry of the roster extracted from a world save: guild
// membership data merged with the player's own character entry.
type PlayerInfo struct {
	UID             GUID   `json:"uid"`
	Name            string `json:"name"`
	Level           int    `json:"level"`
	PalCount        int    `json:"pal_count"`
	GuildName       string `json:"guild_name"`
	LastOnlineTicks int64  `json:"last_online_ticks"`
}

// Filename returns the flat-hex form of the player identifier, which is the
// base name of the matching per-player save file.
func (p PlayerInfo) Filename() string {
	var out [32]byte
	const hex = "0123456789abcdef"
	for i, b := range p.UID {
		out[i*2] = hex[b>>4]
		out[i*2+1] = hex[b&0x0f]
	}
	return string(out[:])
}

// Players builds the player roster from a decoded world save. Guild member
// lists supply names, guild names and last-online times; the character map
// supplies levels, nicknames and per-owner pal counts. A player appearing in
// either source gets a roster entry.
func (s *Save) Players() []PlayerInfo {
	world, ok := lookupTree(s.Root, "worldSaveData")
	if !ok {
		return nil
	}

	type guildEntry struct {
		name       string
		guildName  string
		lastOnline int64
	}
	guildInfo := make(map[GUID]guildEntry)
	var order []GUID
	seen := make(map[GUID]bool)
	note := func(uid GUID) {
		if !seen[uid] {
			seen[uid] = true
			order = append(order, uid)
		}
	}

	if mv, ok := lookupMap(world, "GroupSaveDataMap"); ok {
		for _, entry := range mv.Entries {
			tree, ok := entry.Value.(*Tree)
			if !ok {
				continue
			}
			rd, ok := tree.Get("RawData")
			if !ok {
				continue
			}
			gd, ok := rd.Value.(*GroupDataValue)
			if !ok || gd.Record == nil || gd.Record.Type != GroupTypeGuild {
				continue
			}
			for _, m := range gd.Record.Members {
				if m.PlayerUID.IsZero() {
					continue
				}
				guildInfo[m.PlayerUID] = guildEntry{
					name:       m.PlayerName,
					guildName:  gd.Record.GuildName,
					lastOnline: m.LastOnlineTime,
				}
				note(m.PlayerUID)
			}
		}
	}

	levels := make(map[GUID]int)
	nicknames := make(map[GUID]string)
	palCounts := make(map[GUID]int)

	if mv, ok := lookupMap(world, "CharacterSaveParameterMap"); ok {
		for _, entry := range mv.Entries {
			key, ok := entry.Key.(*Tree)
			if !ok {
				continue
			}
			uid, _ := lookupGUID(key, "PlayerUId")

			value, ok := entry.Value.(*Tree)
			if !ok {
				continue
			}
			rd, ok := value.Get("RawData")
			if !ok {
				continue
			}
			cd, ok := rd.Value.(*CharacterDataValue)
			if !ok || cd.Record == nil || cd.Record.Object == nil {
				continue
			}
			param := cd.Record.Object

			if isPlayer, _ := lookupBool(param, "IsPlayer"); isPlayer {
				if uid.IsZero() {
					continue
				}
				levels[uid] = characterLevel(param)
				if nick, ok := lookupString(param, "NickName"); ok && nick != "" {
					nicknames[uid] = nick
				}
				note(uid)
			} else if owner, ok := lookupGUID(param, "OwnerPlayerUId"); ok && !owner.IsZero() {
				palCounts[owner]++
			}
		}
	}

	roster := make([]PlayerInfo, 0, len(order))
	for _, uid := range order {
		info := PlayerInfo{UID: uid, Level: levels[uid], PalCount: palCounts[uid]}
		if g, ok := guildInfo[uid]; ok {
			info.Name = g.name
			info.GuildName = g.guildName
			info.LastOnlineTicks = g.lastOnline
		}
		if info.Name == "" {
			info.Name = nicknames[uid]
		}
		if info.Name == "" {
			info.Name = info.Filename()
		}
		roster = append(roster, info)
	}
	return roster
}

// FormatLastSeen renders a last-online timestamp relative to the world's
// current clock. Both values are 100-nanosecond ticks from the save data.
func FormatLastSeen(lastOnline, current int64) string {
	if lastOnline <= 0 {
		return "Unknown"
	}
	seconds := (current - lastOnline) / 10_000_000
	if seconds < 60 {
		return "Online now"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d min ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dd ago", hours/24)
}

// Find resolves a dotted path of property names, unwrapping the struct
// envelope at each step, and returns the value at the end of the path.
func Find(t *Tree, path string) (Value, bool) {
	cur := t
	parts := strings.Split(path, ".")
	for i, name := range parts {
		p, ok := cur.Get(name)
		if !ok {
			return nil, false
		}
		v := unwrapStruct(p.Value)
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(*Tree)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

func unwrapStruct(v Value) Value {
	for {
		sv, ok := v.(*StructValue)
		if !ok {
			return v
		}
		v = sv.Inner
	}
}

// Lookup helpers: each drills one level into the tree, unwrapping the struct
// envelope that most save properties carry.

func lookupTree(t *Tree, name string) (*Tree, bool) {
	p, ok := t.Get(name)
	if !ok {
		return nil, false
	}
	switch v := p.Value.(type) {
	case *Tree:
		return v, true
	case *StructValue:
		inner, ok := v.Inner.(*Tree)
		return inner, ok
	}
	return nil, false
}

func lookupMap(t *Tree, name string) (*MapValue, bool) {
	p, ok := t.Get(name)
	if !ok {
		return nil, false
	}
	mv, ok := p.Value.(*MapValue)
	return mv, ok
}

func lookupGUID(t *Tree, name string) (GUID, bool) {
	p, ok := t.Get(name)
	if !ok {
		return ZeroGUID, false
	}
	switch v := p.Value.(type) {
	case GUID:
		return v, true
	case *StructValue:
		g, ok := v.Inner.(GUID)
		return g, ok
	}
	return ZeroGUID, false
}

func lookupBool(t *Tree, name string) (bool, bool) {
	p, ok := t.Get(name)
	if !ok {
		return false, false
	}
	b, ok := p.Value.(BoolValue)
	return bool(b), ok
}

func lookupString(t *Tree, name string) (string, bool) {
	p, ok := t.Get(name)
	if !ok {
		return "", false
	}
	s, ok := p.Value.(StrValue)
	return string(s), ok
}

// characterLevel reads the Level property, which newer saves store as a
// ByteProperty and older ones as an IntProperty.
func characterLevel(param *Tree) int {
	p, ok := param.Get("Level")
	if !ok {
		return 1
	}
	switch v := p.Value.(type) {
	case ByteValue:
		return int(v.Byte)
	case IntValue:
		return int(v)
	}
	return 1
}
