// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "github.com/pkg/errors"

// Save is a fully decoded save file: the GVAS header, the property tree and
// whatever bytes follow the root scope's terminator.
type Save struct {
	Header  *Header `json:"header"`
	Root    *Tree   `json:"properties"`
	Trailer []byte  `json:"trailer"`
}

// Parse decodes raw GVAS bytes (an already decompressed stream) using the
// default path policy.
func Parse(gvas []byte) (*Save, error) {
	return ParseWithPolicy(gvas, DefaultPolicy)
}

// ParseWithPolicy decodes raw GVAS bytes with a custom path policy.
func ParseWithPolicy(gvas []byte, policy *Policy) (*Save, error) {
	r := newReader(gvas)
	header, err := readHeader(r)
	if err != nil {
		return nil, errors.Wrap(err, "gvas header")
	}

	d := &treeReader{r: r, policy: policy}
	root, err := d.readTree("")
	if err != nil {
		return nil, err
	}

	s := &Save{Header: header, Root: root}
	if n := r.remaining(); n > 0 {
		rest, err := r.bytes(n)
		if err != nil {
			return nil, err
		}
		s.Trailer = cloneBytes(rest)
	}
	return s, nil
}

// Marshal encodes the save back to raw GVAS bytes. A save decoded by Parse
// and marshalled unchanged reproduces the input byte for byte.
func (s *Save) Marshal() ([]byte, error) {
	if s.Header == nil {
		return nil, errors.New("save has no header")
	}
	if s.Root == nil {
		return nil, errors.New("save has no property tree")
	}

	w := newWriter()
	writeHeader(w, s.Header)
	e := &treeWriter{w: w}
	if err := e.writeTree(s.Root); err != nil {
		return nil, err
	}
	w.raw(s.Trailer)
	return w.output(), nil
}

// Decode unpacks a compressed .sav file and parses the GVAS stream inside.
// The returned variant is the envelope the file was stored with; pass it to
// Encode to keep the same framing (Oodle inputs re-encode as double zlib).
func Decode(sav []byte) (*Save, Variant, error) {
	gvas, variant, err := Decompress(sav)
	if err != nil {
		return nil, 0, err
	}
	s, err := Parse(gvas)
	if err != nil {
		return nil, 0, err
	}
	return s, variant, nil
}

// Encode marshals the save and packs it into a .sav envelope.
func (s *Save) Encode(v Variant) ([]byte, error) {
	gvas, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	return Compress(gvas, v)
}
