// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package tmd

import (
	"fmt"
	"io"
	"os"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
)

type Action int

const (
	//installed tmd already matches the reference; nothing to write
	AlreadyCorrect Action = iota
	//installed tmd diverges; Replacement holds the validated bytes to write
	NeedsRestore
)

// Verdict of the verification stage. When Action is NeedsRestore, Replacement
// is the only channel by which reference bytes reach the restore stage - the
// restore stage never re-reads or re-trusts the reference file itself.
type Verdict struct {
	Action      Action
	Replacement Record
}

// Verify decides whether the installed tmd needs restoring. Order matters:
//
//  1. read the reference's declared digest from its companion .sha1 file
//  2. digest the installed copy as-is, whatever its size
//  3. equal -> AlreadyCorrect, and write access is never unlocked
//  4. otherwise read the reference record and check it against its own
//     declared digest; a mismatch here means the fix-it media itself is bad
//     (ErrReferenceCorrupt) and the run must stop before any mutation
//  5. hand the validated bytes to the caller
//
// The reference's digest is cross-checked every run - it ships on removable
// media that could be stale or tampered, and the whole safety argument for
// writing to NAND rests on this one validated byte sequence.
func Verify(paths PathTriple) (Verdict, error) {
	declared, err := ReadDigestFile(paths.Reference + ".sha1")
	if err != nil {
		return Verdict{}, err
	}

	installed, err := os.ReadFile(paths.Installed)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s", ErrTargetOpenFailed, err)
	}
	actual := ComputeDigest(installed)
	log.Logf("installed tmd: %d bytes, sha1 %s", len(installed), actual)
	log.Logf("declared reference sha1: %s", declared)

	if actual == declared {
		return Verdict{Action: AlreadyCorrect}, nil
	}

	var rec Record
	f, err := os.Open(paths.Reference)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s", ErrReferenceUnreadable, err)
	}
	defer f.Close()
	if _, err := io.ReadFull(f, rec[:]); err != nil {
		return Verdict{}, fmt.Errorf("%w: %s", ErrReferenceUnreadable, err)
	}
	if ComputeDigest(rec[:]) != declared {
		return Verdict{}, fmt.Errorf("%w: %s", ErrReferenceCorrupt, paths.Reference)
	}
	return Verdict{Action: NeedsRestore, Replacement: rec}, nil
}
