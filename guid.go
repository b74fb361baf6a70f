// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// GUID is a 16-byte Unreal identifier held in canonical (display) byte
// order. On the wire the bytes are stored in a fixed swizzled order; readGUID
// and writeGUID apply inverse permutations of each other.
type GUID [16]byte

// ZeroGUID is the all-zero identifier, used by the format as "no owner".
var ZeroGUID GUID

// guidSwizzle maps canonical byte index -> wire byte index.
var guidSwizzle = [16]int{3, 2, 1, 0, 7, 6, 5, 4, 11, 10, 9, 8, 15, 14, 13, 12}

// ParseGUID parses a dashed or undashed 32-digit hex identifier.
func ParseGUID(s string) (GUID, error) {
	var g GUID
	cleaned := strings.ReplaceAll(s, "-", "")
	if len(cleaned) != 32 {
		return g, errors.Errorf("invalid guid %q: want 32 hex digits, got %d", s, len(cleaned))
	}
	if _, err := hex.Decode(g[:], []byte(cleaned)); err != nil {
		return g, errors.Wrapf(err, "invalid guid %q", s)
	}
	return g, nil
}

// MustParseGUID is ParseGUID for known-good literals; it panics on error.
func MustParseGUID(s string) GUID {
	g, err := ParseGUID(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String returns the canonical dashed lowercase hex form.
func (g GUID) String() string {
	var b [36]byte
	hex.Encode(b[0:8], g[0:4])
	b[8] = '-'
	hex.Encode(b[9:13], g[4:6])
	b[13] = '-'
	hex.Encode(b[14:18], g[6:8])
	b[18] = '-'
	hex.Encode(b[19:23], g[8:10])
	b[23] = '-'
	hex.Encode(b[24:36], g[10:16])
	return string(b[:])
}

// IsZero reports whether the identifier is all zero.
func (g GUID) IsZero() bool {
	return g == ZeroGUID
}

func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *GUID) UnmarshalText(text []byte) error {
	parsed, err := ParseGUID(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// readGUID reads 16 wire bytes and un-swizzles them into canonical order.
func (r *reader) readGUID() (GUID, error) {
	b, err := r.bytes(16)
	if err != nil {
		return ZeroGUID, err
	}
	var g GUID
	for i, j := range guidSwizzle {
		g[i] = b[j]
	}
	return g, nil
}

// writeGUID swizzles a canonical identifier back into wire order.
func (w *writer) writeGUID(g GUID) {
	var b [16]byte
	for i, j := range guidSwizzle {
		b[j] = g[i]
	}
	w.raw(b[:])
}

// readOptionalGUID reads the flag byte and, when non-zero, the identifier.
func (r *reader) readOptionalGUID() (*GUID, error) {
	flag, err := r.u8()
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}
	g, err := r.readGUID()
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (w *writer) writeOptionalGUID(g *GUID) {
	if g == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.writeGUID(*g)
}
