// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGUIDWireOrder(t *testing.T) {
	g := MustParseGUID("01020304-0506-0708-090a-0b0c0d0e0f10")

	w := newWriter()
	w.writeGUID(g)

	// Each 4-byte group is stored reversed on the wire.
	want := []byte{
		0x04, 0x03, 0x02, 0x01,
		0x08, 0x07, 0x06, 0x05,
		0x0c, 0x0b, 0x0a, 0x09,
		0x10, 0x0f, 0x0e, 0x0d,
	}
	assert.Equal(t, want, w.output())

	back, err := newReader(w.output()).readGUID()
	require.NoError(t, err)
	assert.Equal(t, g, back)
}

func TestGUIDParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01020304-0506-0708-090a-0b0c0d0e0f10", "01020304-0506-0708-090a-0b0c0d0e0f10"},
		{"0102030405060708090A0B0C0D0E0F10", "01020304-0506-0708-090a-0b0c0d0e0f10"},
		{"00000000-0000-0000-0000-000000000000", "00000000-0000-0000-0000-000000000000"},
	}
	for _, tt := range tests {
		g, err := ParseGUID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, g.String())
	}

	_, err := ParseGUID("not-a-guid")
	assert.Error(t, err)
	_, err = ParseGUID("01020304-0506-0708-090a-0b0c0d0e0f")
	assert.Error(t, err)
}

func TestGUIDIsZero(t *testing.T) {
	assert.True(t, ZeroGUID.IsZero())
	assert.False(t, MustParseGUID("01020304-0506-0708-090a-0b0c0d0e0f10").IsZero())
}

func TestOptionalGUIDRoundTrip(t *testing.T) {
	g := MustParseGUID("deadbeef-0000-0000-0000-000000000001")

	w := newWriter()
	w.writeOptionalGUID(&g)
	w.writeOptionalGUID(nil)

	r := newReader(w.output())
	got, err := r.readOptionalGUID()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, g, *got)

	got, err = r.readOptionalGUID()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, r.remaining())
}
