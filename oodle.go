// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

// OodleDecompressor decompresses an Oodle (Kraken/Mermaid family) payload
// into a buffer of the given expected length. Implementations typically bind
// the game's oo2core library or a port of its decoders; this package ships
// none, so builds without a registered decompressor fail VariantOodle
// archives with ErrOodleUnavailable.
type OodleDecompressor func(compressed []byte, uncompressedLen int) ([]byte, error)

var oodleDecompressor OodleDecompressor

// RegisterOodleDecompressor installs the decompressor used for VariantOodle
// archives. Call it once during program init; the codec itself never mutates
// the registration.
func RegisterOodleDecompressor(fn OodleDecompressor) {
	oodleDecompressor = fn
}

func oodleDecompress(compressed []byte, uncompressedLen int) ([]byte, error) {
	if oodleDecompressor == nil {
		return nil, ErrOodleUnavailable
	}
	return oodleDecompressor(compressed, uncompressedLen)
}
