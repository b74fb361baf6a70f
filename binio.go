// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// reader is a little-endian cursor over an in-memory buffer. All multi-byte
// integers in the archive format are little-endian.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

// bytes returns the next n bytes without copying. Callers that retain the
// slice past the life of the input buffer must copy it themselves.
func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, r.pos, r.remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	return math.Float32frombits(v), err
}

func (r *reader) f64() (float64, error) {
	v, err := r.u64()
	return math.Float64frombits(v), err
}

// fstring reads a length-prefixed string. A positive length means that many
// single-byte characters including a trailing NUL; a negative length means
// -length UTF-16LE code units including a trailing NUL pair; zero means the
// empty string.
func (r *reader) fstring() (string, error) {
	size, err := r.i32()
	if err != nil {
		return "", err
	}
	switch {
	case size == 0:
		return "", nil
	case size < 0:
		count := int(-size)
		b, err := r.bytes(count * 2)
		if err != nil {
			return "", err
		}
		units := make([]uint16, 0, count)
		for i := 0; i < len(b)-2; i += 2 {
			units = append(units, binary.LittleEndian.Uint16(b[i:]))
		}
		return string(utf16.Decode(units)), nil
	default:
		b, err := r.bytes(int(size))
		if err != nil {
			return "", err
		}
		if n := len(b); n > 0 && b[n-1] == 0 {
			b = b[:n-1]
		}
		return string(b), nil
	}
}

// writer accumulates little-endian output. Writes into the in-memory buffer
// cannot fail, so the primitive methods return nothing; size accounting is
// done by measuring len() before and after a payload.
type writer struct {
	buf bytes.Buffer
}

func newWriter() *writer {
	return &writer{}
}

func (w *writer) len() int {
	return w.buf.Len()
}

func (w *writer) output() []byte {
	return w.buf.Bytes()
}

func (w *writer) raw(b []byte) {
	w.buf.Write(b)
}

func (w *writer) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *writer) i64(v int64) {
	w.u64(uint64(v))
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) f64(v float64) {
	w.u64(math.Float64bits(v))
}

// fstring writes a length-prefixed string, choosing the single-byte encoding
// for ASCII content and UTF-16LE otherwise. The game's reader requires the
// NUL terminator for non-empty strings.
func (w *writer) fstring(s string) {
	if s == "" {
		w.i32(0)
		return
	}
	if isASCII(s) {
		w.i32(int32(len(s) + 1))
		w.buf.WriteString(s)
		w.buf.WriteByte(0)
		return
	}
	units := utf16.Encode([]rune(s))
	w.i32(-int32(len(units) + 1))
	for _, u := range units {
		w.u16(u)
	}
	w.u16(0)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
