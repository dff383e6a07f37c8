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

// Flasher is the storage collaborator the restore stage needs: block-level
// write-protect elevation and per-file read-only attribute control. The
// default state is locked; elevation is scoped to a single restore.
type Flasher interface {
	UnlockWriting() error
	SetReadOnly(path string, ro bool) error
}

// The subset of *os.File the restore stage touches. Letting the open be
// swapped makes storage-level write failures injectable.
type targetFile interface {
	io.WriterAt
	io.Closer
	Truncate(size int64) error
	Sync() error
}

var openTarget = func(path string) (targetFile, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

// Restore overwrites the installed tmd with the validated replacement bytes.
// The caller must hold a NeedsRestore verdict and explicit user confirmation;
// this function assumes neither on its own.
//
// Each step is a hard stop on failure. There is no rollback: once truncation
// occurs, the only forward path is a successful complete write. That risk is
// accepted - the target is already corrupt - and mitigated by doing all
// validation strictly before calling this.
func Restore(paths PathTriple, v Verdict, fl Flasher) error {
	if v.Action != NeedsRestore {
		return fmt.Errorf("restore without a needs-restore verdict")
	}
	if err := fl.UnlockWriting(); err != nil {
		return err
	}

	// An external maintenance tool may have marked both the tmd and the
	// launcher app read-only together; clearing only one would be an
	// inconsistent half-repair, so both are cleared even though the app
	// itself is never written here.
	if err := fl.SetReadOnly(paths.Installed, false); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrAttributeChange, paths.Installed, err)
	}
	if err := fl.SetReadOnly(paths.LauncherApp, false); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrAttributeChange, paths.LauncherApp, err)
	}

	f, err := openTarget(paths.Installed)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTargetOpenFailed, err)
	}
	defer f.Close()
	//normalizes any prior corrupted size
	if err := f.Truncate(RecordLen); err != nil {
		return fmt.Errorf("%w: %s", ErrTruncateFailed, err)
	}
	n, err := f.WriteAt(v.Replacement[:], 0)
	if err != nil {
		return fmt.Errorf("%w: %d of %d bytes: %s", ErrShortWrite, n, RecordLen, err)
	}
	if n != RecordLen {
		// A partial write leaves the tmd truncated; surfacing that beats
		// retrying against NAND without re-validating.
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, RecordLen)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %s", ErrShortWrite, err)
	}
	log.Logf("wrote %d bytes to %s", n, paths.Installed)
	return nil
}
