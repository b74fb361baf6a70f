// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

package palsav

import "github.com/pkg/errors"

const gvasMagicLE = 0x53415647 // "GVAS"

// CustomVersion is one (identifier, version) pair from the header's custom
// version list.
type CustomVersion struct {
	ID      GUID  `json:"id"`
	Version int32 `json:"version"`
}

// Header is the GVAS stream header. It is decoded once and copied through
// unchanged on write unless the caller edits it.
type Header struct {
	SaveGameVersion         int32           `json:"save_game_version"`
	PackageFileVersionUE4   int32           `json:"package_file_version_ue4"`
	PackageFileVersionUE5   int32           `json:"package_file_version_ue5"`
	EngineVersionMajor      uint16          `json:"engine_version_major"`
	EngineVersionMinor      uint16          `json:"engine_version_minor"`
	EngineVersionPatch      uint16          `json:"engine_version_patch"`
	EngineVersionChangelist uint32          `json:"engine_version_changelist"`
	EngineVersionBranch     string          `json:"engine_version_branch"`
	CustomVersionFormat     int32           `json:"custom_version_format"`
	CustomVersions          []CustomVersion `json:"custom_versions"`
	SaveGameClassName       string          `json:"save_game_class_name"`
}

func readHeader(r *reader) (*Header, error) {
	magic, err := r.i32()
	if err != nil {
		return nil, err
	}
	if magic != gvasMagicLE {
		return nil, errors.Wrapf(ErrBadMagic, "gvas magic 0x%08X", uint32(magic))
	}

	h := &Header{}
	if h.SaveGameVersion, err = r.i32(); err != nil {
		return nil, err
	}
	if h.PackageFileVersionUE4, err = r.i32(); err != nil {
		return nil, err
	}
	if h.PackageFileVersionUE5, err = r.i32(); err != nil {
		return nil, err
	}
	if h.EngineVersionMajor, err = r.u16(); err != nil {
		return nil, err
	}
	if h.EngineVersionMinor, err = r.u16(); err != nil {
		return nil, err
	}
	if h.EngineVersionPatch, err = r.u16(); err != nil {
		return nil, err
	}
	if h.EngineVersionChangelist, err = r.u32(); err != nil {
		return nil, err
	}
	if h.EngineVersionBranch, err = r.fstring(); err != nil {
		return nil, err
	}
	if h.CustomVersionFormat, err = r.i32(); err != nil {
		return nil, err
	}

	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	h.CustomVersions = make([]CustomVersion, 0, count)
	for i := uint32(0); i < count; i++ {
		id, err := r.readGUID()
		if err != nil {
			return nil, errors.Wrapf(err, "custom version %d", i)
		}
		ver, err := r.i32()
		if err != nil {
			return nil, errors.Wrapf(err, "custom version %d", i)
		}
		h.CustomVersions = append(h.CustomVersions, CustomVersion{ID: id, Version: ver})
	}

	if h.SaveGameClassName, err = r.fstring(); err != nil {
		return nil, err
	}
	return h, nil
}

func writeHeader(w *writer, h *Header) {
	w.i32(gvasMagicLE)
	w.i32(h.SaveGameVersion)
	w.i32(h.PackageFileVersionUE4)
	w.i32(h.PackageFileVersionUE5)
	w.u16(h.EngineVersionMajor)
	w.u16(h.EngineVersionMinor)
	w.u16(h.EngineVersionPatch)
	w.u32(h.EngineVersionChangelist)
	w.fstring(h.EngineVersionBranch)
	w.i32(h.CustomVersionFormat)
	w.u32(uint32(len(h.CustomVersions)))
	for _, cv := range h.CustomVersions {
		w.writeGUID(cv.ID)
		w.i32(cv.Version)
	}
	w.fstring(h.SaveGameClassName)
}
