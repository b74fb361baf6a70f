// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "github.com/pkg/errors"

// CharacterRecord is the decoded raw-data blob of one character map entry:
// a nested property scope followed by a short fixed tail. Blobs too short to
// carry the tail keep their remainder in Trailer with Reserved left nil.
type CharacterRecord struct {
	Object   *Tree  `json:"object"`
	Reserved []byte `json:"unknown_bytes"`
	GroupID  GUID   `json:"group_id"`
	Trailer  []byte `json:"trailing_bytes"`
}

// characterTailSize is the minimum byte count after the property scope for
// the reserved-bytes/group-id tail to be present.
const characterTailSize = 24

// decodeCharacterRecord decodes a character raw-data blob. depth carries the
// nesting level of the surrounding decode so the global bound still holds
// inside the blob.
func decodeCharacterRecord(data []byte, policy *Policy, depth int) (*CharacterRecord, error) {
	d := &treeReader{r: newReader(data), policy: policy, depth: depth}
	tree, err := d.readTree("")
	if err != nil {
		return nil, errors.Wrap(err, "character object")
	}

	rec := &CharacterRecord{Object: tree}
	if d.r.remaining() >= characterTailSize {
		reserved, err := d.r.bytes(4)
		if err != nil {
			return nil, err
		}
		rec.Reserved = cloneBytes(reserved)
		if rec.GroupID, err = d.r.readGUID(); err != nil {
			return nil, err
		}
	}
	rest, err := d.r.bytes(d.r.remaining())
	if err != nil {
		return nil, err
	}
	rec.Trailer = cloneBytes(rest)
	return rec, nil
}

// encodeCharacterRecord is the exact inverse of decodeCharacterRecord.
func encodeCharacterRecord(rec *CharacterRecord) ([]byte, error) {
	e := &treeWriter{w: newWriter()}
	if err := e.writeTree(rec.Object); err != nil {
		return nil, errors.Wrap(err, "character object")
	}
	if len(rec.Reserved) > 0 {
		e.w.raw(rec.Reserved)
		e.w.writeGUID(rec.GroupID)
	}
	e.w.raw(rec.Trailer)
	return e.w.output(), nil
}
