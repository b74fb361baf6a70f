// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "github.com/pkg/errors"

// Sentinel errors returned by the envelope codec and the tree reader.
// Wrapped errors carry positional context; test with errors.Is.
var (
	// ErrTruncated indicates the input ended before a complete header,
	// string, identifier or property payload could be read.
	ErrTruncated = errors.New("unexpected end of data")

	// ErrBadMagic indicates the envelope or GVAS magic did not match.
	ErrBadMagic = errors.New("bad magic")

	// ErrUnknownVariant indicates a save-type byte this package does not
	// know how to frame.
	ErrUnknownVariant = errors.New("unknown save variant")

	// ErrOodleUnavailable is returned when an Oodle-compressed archive is
	// decoded and no decompressor has been registered with
	// RegisterOodleDecompressor.
	ErrOodleUnavailable = errors.New("oodle decompressor not available")

	// ErrTooDeep indicates the property tree nests deeper than
	// maxNestingDepth. Legitimate saves stay far below the bound; this
	// guards against corrupted input driving unbounded recursion.
	ErrTooDeep = errors.New("property tree nested too deeply")
)
