// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

// Walk visits every property reachable from t in encounter order, recursing
// into struct scopes, array elements, map keys and values, set elements and
// decoded character records. The visitor receives the property's name within
// its owning scope.
func Walk(t *Tree, fn func(name string, p *Property)) {
	for _, name := range t.Names() {
		p, _ := t.Get(name)
		fn(name, p)
		walkValue(p.Value, fn)
	}
}

func walkValue(v Value, fn func(name string, p *Property)) {
	switch v := v.(type) {
	case *Tree:
		Walk(v, fn)
	case *StructValue:
		walkValue(v.Inner, fn)
	case *ArrayValue:
		for _, elem := range v.Elems {
			walkValue(elem, fn)
		}
	case *MapValue:
		for _, entry := range v.Entries {
			walkValue(entry.Key, fn)
			walkValue(entry.Value, fn)
		}
	case *SetValue:
		for _, elem := range v.Elems {
			walkValue(elem, fn)
		}
	case *CharacterDataValue:
		if v.Record != nil && v.Record.Object != nil {
			Walk(v.Record.Object, fn)
		}
	}
}

// Ownership properties exchanged by SwapIdentity wherever they appear.
var identityKeys = map[string]bool{
	"OwnerPlayerUId":          true,
	"owner_player_uid":        true,
	"build_player_uid":        true,
	"private_lock_player_uid": true,
}

// SwapIdentity exchanges two player identifiers across the whole tree: every
// watched ownership property holding one identifier is rewritten to the
// other, symmetrically, and decoded group records swap their typed
// player-identifier fields. Properties under other names, including character
// instance identifiers, are left untouched.
func SwapIdentity(t *Tree, a, b GUID) {
	if a == b {
		return
	}
	aStr, bStr := a.String(), b.String()

	Walk(t, func(name string, p *Property) {
		if gd, ok := p.Value.(*GroupDataValue); ok && gd.Record != nil {
			gd.Record.swapIdentity(a, b)
			return
		}
		if !identityKeys[name] {
			return
		}
		switch v := p.Value.(type) {
		case *StructValue:
			// Wrapped form: a Guid-typed struct payload.
			if g, ok := v.Inner.(GUID); ok {
				switch g {
				case a:
					v.Inner = b
				case b:
					v.Inner = a
				}
			}
		case GUID:
			switch v {
			case a:
				p.Value = b
			case b:
				p.Value = a
			}
		case StrValue:
			// Bare form: the identifier stored as its dashed string.
			switch string(v) {
			case aStr:
				p.Value = StrValue(bStr)
			case bStr:
				p.Value = StrValue(aStr)
			}
		}
	})
}
