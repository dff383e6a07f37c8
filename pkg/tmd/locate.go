// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package tmd

import (
	"encoding/binary"
	"fmt"
	"os"
	fp "path/filepath"
	"strings"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/strs"
)

//Byte offset of the launcher title id in the hardware info file.
const titleIDOffset = 0xA0

// Launcher app file names are exactly 12 chars: a 7-char run of zeroes, one
// version digit, and the .app suffix.
const (
	appNameLen    = 12
	appNamePrefix = "0000000"
	appNameSuffix = ".app"
	maxVersionDig = 7
)

// The three paths the rest of the run operates on. Derived once, then
// treated as immutable.
type PathTriple struct {
	//known-good copy, ships in the application's embedded filesystem
	Reference string
	//the corruption target, lives on NAND
	Installed string
	// Large launcher binary co-located with Installed. Never written by this
	// tool, but its read-only attribute may have been set together with the
	// tmd's and must be cleared together with it.
	LauncherApp string
}

// ReadTitleID reads the 4-byte launcher title id from the fixed offset in the
// hardware info file. The file is little-endian, as written by the firmware.
func ReadTitleID(configPath string) (uint32, error) {
	f, err := os.Open(configPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrConfigUnavailable, err)
	}
	defer f.Close()
	var raw [4]byte
	if _, err := f.ReadAt(raw[:], titleIDOffset); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrConfigTruncated, err)
	}
	return binary.LittleEndian.Uint32(raw[:]), nil
}

//Content dir of the launcher title on NAND.
func ContentDir(titleID uint32) string {
	return fp.Join(strs.TitleBase(), fmt.Sprintf("%08x", titleID), "content")
}

// FindLauncherApp scans the title content dir for the single launcher app
// entry and decodes its version digit. Iteration order is unspecified by the
// platform; selection is on name content, not position. The dir structurally
// contains at most one matching entry, so first match wins - no tie-break.
func FindLauncherApp(contentDir string) (version uint16, name string, err error) {
	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s", ErrAppNotFound, err)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		n := ent.Name()
		if len(n) != appNameLen || !strings.HasPrefix(n, appNamePrefix) || !strings.HasSuffix(n, appNameSuffix) {
			continue
		}
		digit := n[len(appNamePrefix)] - '0'
		if digit > maxVersionDig {
			return 0, "", fmt.Errorf("%w: %d", ErrVersionUnsupported, digit)
		}
		log.Logf("launcher app %s in %s", n, contentDir)
		return 256 * uint16(digit), n, nil
	}
	return 0, "", fmt.Errorf("%w: no entry in %s", ErrAppNotFound, contentDir)
}

// DerivePaths builds the path triple from the title id, the decoded launcher
// version and the app file name. Pure string construction, no I/O.
func DerivePaths(titleID uint32, version uint16, appName string) PathTriple {
	content := ContentDir(titleID)
	return PathTriple{
		Reference:   fp.Join(strs.NitroRoot(), fmt.Sprintf("%08x", titleID), fmt.Sprintf("tmd.%d", version)),
		Installed:   fp.Join(content, "title.tmd"),
		LauncherApp: fp.Join(content, appName),
	}
}

// Region letter encoded in the reference path - the low byte of the title id
// is the region character, and its two hex digits sit right before the final
// path separator of the dir name. Display only.
func (p PathTriple) Region() string {
	dir := fp.Base(fp.Dir(p.Reference))
	if len(dir) != 8 {
		return "UNK"
	}
	return Region(dir[6:])
}
