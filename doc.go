// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

/*
Package palsav reads and writes Palworld .sav files.

Palworld stores its state as zlib-compressed Unreal Engine GVAS streams: a
versioned header followed by a recursive tree of named, typed properties.
This package decompresses the envelope, decodes the tree into typed Go
values, and encodes it back byte for byte, so saves can be inspected and
edited without touching the parts that were not changed.

# Features

  - All three envelope framings: single zlib, double zlib and Oodle
    (Oodle is decode-only, via a pluggable decompressor)
  - Full property-tree codec with byte-identical round trips
  - Policy-driven raw passthrough for the huge world-state subtrees
  - Decoded guild/organization and character records
  - Player roster extraction and player-identity swapping
  - JSON projection of the whole save

# Basic Usage

Decoding a save:

	data, err := os.ReadFile("Level.sav")
	if err != nil {
		log.Fatal(err)
	}
	save, variant, err := palsav.Decode(data)
	if err != nil {
		log.Fatal(err)
	}

Editing and writing it back with the same framing:

	palsav.SwapIdentity(save.Root, hostUID, guestUID)

	out, err := save.Encode(variant)
	if err != nil {
		log.Fatal(err)
	}
	err = os.WriteFile("Level.sav", out, 0o644)

# Path Policy

The reader consults a path-rule table before decoding each property. The
default policy fully decodes the character and group maps and copies the
other worldSaveData subtrees through as raw bytes; ParseWithPolicy accepts a
custom table.

# Limitations

  - No Oodle encoder: Oodle-framed saves re-encode as double zlib, which the
    game accepts
  - Raw-captured subtrees round-trip verbatim but cannot be edited
  - TextProperty payloads are carried opaquely
*/
package palsav
