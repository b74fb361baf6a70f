// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Variant identifies the compression framing of a .sav envelope. The variant
// byte fully determines how the payload is packed.
type Variant uint8

const (
	// VariantSingleZlib is one zlib pass. Standalone it carries the "PlZ"
	// magic; chunked world exports wrap it behind a "CNK" outer header.
	VariantSingleZlib Variant = 0x30

	// VariantOodle is the proprietary single-pass compressor ("PlM").
	// Decode-only: see RegisterOodleDecompressor.
	VariantOodle Variant = 0x31

	// VariantDoubleZlib is two sequential zlib passes ("PlZ").
	VariantDoubleZlib Variant = 0x32
)

func (v Variant) String() string {
	switch v {
	case VariantSingleZlib:
		return "single-zlib"
	case VariantOodle:
		return "oodle"
	case VariantDoubleZlib:
		return "double-zlib"
	default:
		return "unknown"
	}
}

// Writable reports whether Compress can produce this variant.
func (v Variant) Writable() bool {
	return v == VariantSingleZlib || v == VariantDoubleZlib
}

const (
	savHeaderSize = 12 // uncompressed len + compressed len + magic + variant
	cnkHeaderSize = 24 // outer wrapper followed by a duplicate inner header

	gvasMagic = "GVAS"
)

var (
	magicPlZ = [3]byte{'P', 'l', 'Z'}
	magicPlM = [3]byte{'P', 'l', 'M'}
	magicCNK = [3]byte{'C', 'N', 'K'}
)

type savHeader struct {
	uncompressedLen uint32
	compressedLen   uint32
	magic           [3]byte
	variant         Variant
}

func readSavHeader(r *reader) (savHeader, error) {
	var h savHeader
	var err error
	if h.uncompressedLen, err = r.u32(); err != nil {
		return h, err
	}
	if h.compressedLen, err = r.u32(); err != nil {
		return h, err
	}
	m, err := r.bytes(3)
	if err != nil {
		return h, err
	}
	copy(h.magic[:], m)
	v, err := r.u8()
	if err != nil {
		return h, err
	}
	h.variant = Variant(v)
	return h, nil
}

// Decompress unpacks a .sav envelope into raw GVAS bytes and reports the
// variant the archive was stored with.
func Decompress(data []byte) ([]byte, Variant, error) {
	if len(data) < savHeaderSize {
		return nil, 0, errors.Wrapf(ErrTruncated, "sav header: %d bytes", len(data))
	}
	r := newReader(data)
	h, err := readSavHeader(r)
	if err != nil {
		return nil, 0, errors.Wrap(err, "sav header")
	}

	// The CNK wrapper duplicates the real header after the outer one.
	if h.magic == magicCNK {
		if len(data) < cnkHeaderSize {
			return nil, 0, errors.Wrapf(ErrTruncated, "cnk inner header: %d bytes", len(data))
		}
		if h, err = readSavHeader(r); err != nil {
			return nil, 0, errors.Wrap(err, "cnk inner header")
		}
	}

	if h.magic != magicPlZ && h.magic != magicPlM && h.magic != magicCNK {
		return nil, 0, errors.Wrapf(ErrBadMagic, "sav magic %q", h.magic[:])
	}

	payload := data[r.pos:]
	switch h.variant {
	case VariantDoubleZlib:
		first, err := inflate(payload)
		if err != nil {
			return nil, 0, errors.Wrap(err, "zlib pass 1")
		}
		gvas, err := inflate(first)
		if err != nil {
			return nil, 0, errors.Wrap(err, "zlib pass 2")
		}
		return gvas, h.variant, nil

	case VariantOodle:
		compressed := payload
		if n := int(h.compressedLen); n > 0 && n <= len(payload) {
			compressed = payload[:n]
		}
		gvas, err := oodleDecompress(compressed, int(h.uncompressedLen))
		if err != nil {
			return nil, 0, err
		}
		if len(gvas) < 4 || string(gvas[:4]) != gvasMagic {
			return nil, 0, errors.Wrap(ErrBadMagic, "oodle output is not a GVAS stream")
		}
		return gvas, h.variant, nil

	case VariantSingleZlib:
		gvas, err := inflate(payload)
		if err != nil {
			return nil, 0, errors.Wrap(err, "zlib")
		}
		return gvas, h.variant, nil

	default:
		return nil, 0, errors.Wrapf(ErrUnknownVariant, "0x%02X", uint8(h.variant))
	}
}

// Compress packs raw GVAS bytes into a .sav envelope. Only the zlib variants
// are writable; VariantOodle is downgraded to VariantDoubleZlib because the
// Oodle encoder needs the closed SDK and the game accepts either framing.
func Compress(gvas []byte, v Variant) ([]byte, error) {
	if v == VariantOodle {
		v = VariantDoubleZlib
	}

	switch v {
	case VariantDoubleZlib:
		first, err := deflate(gvas)
		if err != nil {
			return nil, errors.Wrap(err, "zlib pass 1")
		}
		second, err := deflate(first)
		if err != nil {
			return nil, errors.Wrap(err, "zlib pass 2")
		}
		w := newWriter()
		w.u32(uint32(len(gvas)))
		w.u32(uint32(len(first)))
		w.raw(magicPlZ[:])
		w.u8(uint8(v))
		w.raw(second)
		return w.output(), nil

	case VariantSingleZlib:
		compressed, err := deflate(gvas)
		if err != nil {
			return nil, errors.Wrap(err, "zlib")
		}
		w := newWriter()
		w.u32(uint32(len(gvas)))
		w.u32(uint32(len(compressed)))
		w.raw(magicPlZ[:])
		w.u8(uint8(v))
		w.raw(compressed)
		return w.output(), nil

	default:
		return nil, errors.Wrapf(ErrUnknownVariant, "0x%02X is not writable", uint8(v))
	}
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
