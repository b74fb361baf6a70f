// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "strings"

// PolicyKind selects how the reader handles a property at a given path.
type PolicyKind uint8

const (
	// PolicyDecode is the default: full generic decode.
	PolicyDecode PolicyKind = iota

	// PolicySkip copies the payload verbatim into a RawValue. Applied to
	// high-volume world-state paths whose internal structure this engine
	// does not need; raw capture bounds the format knowledge required and
	// guarantees the bytes survive a round trip.
	PolicySkip

	// PolicyGroupData marks the guild/organization map whose entries carry
	// a raw-data blob decoded by the group sub-codec.
	PolicyGroupData

	// PolicyCharacterData marks the per-character raw-data byte array
	// decoded by the character sub-codec.
	PolicyCharacterData
)

type policyRule struct {
	suffix string
	kind   PolicyKind
}

type structHint struct {
	suffix     string
	structType string
}

// Policy is the immutable path-rule table the reader consults. Rules match
// on dotted-path suffix, first match wins, so specific entries must precede
// catch-alls.
type Policy struct {
	rules []policyRule
	hints []structHint
}

// newPolicy builds a policy from explicit rule lists. Most callers use
// DefaultPolicy; custom policies are mainly useful in tests.
func newPolicy(rules []policyRule, hints []structHint) *Policy {
	return &Policy{rules: rules, hints: hints}
}

// Kind returns the handling for the property at the given dotted path.
func (p *Policy) Kind(path string) PolicyKind {
	for _, r := range p.rules {
		if strings.HasSuffix(path, r.suffix) {
			return r.kind
		}
	}
	return PolicyDecode
}

// StructHint returns the struct type for a map key or value at the given
// path (the path carries a ".Key" or ".Value" suffix). The empty string
// means a generic nested property bag; "Guid" means a bare identifier.
func (p *Policy) StructHint(path string) string {
	for _, h := range p.hints {
		if strings.HasSuffix(path, h.suffix) {
			return h.structType
		}
	}
	return ""
}

// DefaultPolicy covers the Palworld world save (Level.sav) and the per-player
// saves. The skip list is the fixed set of world-state subtrees this engine
// round-trips without decoding; the hints supply the struct element types the
// map wire format leaves out.
var DefaultPolicy = newPolicy(
	[]policyRule{
		{".GroupSaveDataMap", PolicyGroupData},
		{"CharacterSaveParameterMap.Value.RawData", PolicyCharacterData},

		{"FoliageGridSaveDataMap", PolicySkip},
		{"MapObjectSpawnerInStageSaveData", PolicySkip},
		{"WorldLocation", PolicySkip},
		{"WorldRotation", PolicySkip},
		{"WorldScale3D", PolicySkip},
		{"EffectMap", PolicySkip},
		{"ItemContainerSaveData", PolicySkip},
		{"CharacterContainerSaveData", PolicySkip},
		{"DynamicItemSaveData", PolicySkip},
		{"MapObjectSaveData", PolicySkip},
		{"WorkSaveData", PolicySkip},
		{"BaseCampSaveData", PolicySkip},
		{"EnemyCampSaveData", PolicySkip},
		{"DungeonSaveData", PolicySkip},
		{"DungeonPointMarkerSaveData", PolicySkip},
		{"OilrigSaveData", PolicySkip},
		{"InvaderSaveData", PolicySkip},
		{"GameTimeSaveData", PolicySkip},
		{"WorkerDirectorSaveData", PolicySkip},
		{"GuildExtraSaveDataMap", PolicySkip},
		{"CharacterParameterStorageSaveData", PolicySkip},
		{"SupplySaveData", PolicySkip},
		{"InLockerCharacterInstanceIDArray", PolicySkip},
	},
	[]structHint{
		{".CharacterSaveParameterMap.Key", ""},
		{".CharacterSaveParameterMap.Value", ""},
		{".GroupSaveDataMap.Key", "Guid"},
		{".GroupSaveDataMap.Value", ""},
		{".GuildExtraSaveDataMap.Key", "Guid"},
		{".GuildExtraSaveDataMap.Value", ""},
		{".SupplyInfos.Key", "Guid"},
		{".SupplyInfos.Value", ""},
		{".RewardSaveDataMap.Key", "Guid"},
		{".RewardSaveDataMap.Value", ""},
		{".SpawnerDataMapByLevelObjectInstanceId.Key", "Guid"},
		{".SpawnerDataMapByLevelObjectInstanceId.Value", ""},
		{".BaseCampSaveData.Key", "Guid"},
		{".BaseCampSaveData.Value", ""},
		{".InvaderSaveData.Key", "Guid"},
		{".InvaderSaveData.Value", ""},
		{".ItemContainerSaveData.Key", ""},
		{".ItemContainerSaveData.Value", ""},
		{".CharacterContainerSaveData.Key", ""},
		{".CharacterContainerSaveData.Value", ""},
		{".DynamicItemSaveData.Key", ""},
		{".DynamicItemSaveData.Value", ""},
		{".FoliageGridSaveDataMap.Key", ""},
		{".FoliageGridSaveDataMap.Value", ""},
		{".MapObjectSpawnerInStageSaveData.Key", ""},
		{".MapObjectSpawnerInStageSaveData.Value", ""},
		{".InstanceDataMap.Key", ""},
		{".InstanceDataMap.Value", ""},

		// Catch-alls: any other save-data or map suffix decodes its struct
		// keys/values as generic property bags.
		{"SaveData.Key", ""},
		{"SaveData.Value", ""},
		{"Map.Key", ""},
		{"Map.Value", ""},
	},
)
