// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package nand is the storage collaborator: mounting and unmounting the
// NAND, sd card and nitro (application image) filesystems, and the
// write-protection contract beneath them. The NAND block device defaults to
// read-only at the block level; UnlockWriting lifts that for the restore
// stage and Shutdown restores it.
package nand

import (
	"errors"
	"fmt"
	"os"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/strs"

	"github.com/u-root/u-root/pkg/mount"
	"golang.org/x/sys/unix"
)

var (
	ErrMountFailed  = errors.New("mount failed")
	ErrUnlockFailed = errors.New("cannot make NAND writable")
)

type Volume struct {
	blkdev     string //block device, or image file for the nitro overlay
	mountPoint string
	mountType  string
	mountOpts  string
	flags      uintptr
	mounted    bool
}

//The internal NAND filesystem. Default state is read-only at the block level.
func NandVolume() *Volume {
	return &Volume{
		blkdev:     strs.NandBlockDev(),
		mountPoint: strs.NandRoot(),
		mountType:  "vfat",
		mountOpts:  "relatime",
	}
}

//The removable sd card.
func SDVolume() *Volume {
	return &Volume{
		blkdev:     strs.SDBlockDev(),
		mountPoint: strs.SDRoot(),
		mountType:  "vfat",
		mountOpts:  "relatime",
	}
}

// The application's embedded filesystem, overlaid from the application image
// itself. Always read-only.
func NitroVolume(appPath string) *Volume {
	return &Volume{
		blkdev:     appPath,
		mountPoint: strs.NitroRoot(),
		mountType:  "nitrofs",
		mountOpts:  "loop",
		flags:      unix.MS_RDONLY,
	}
}

func (v *Volume) Path() string   { return v.mountPoint }
func (v *Volume) Device() string { return v.blkdev }

var mounted []*Volume

func (v *Volume) Mount() error {
	if err := os.MkdirAll(v.mountPoint, 0755); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrMountFailed, v.mountPoint, err)
	}
	if _, err := mount.Mount(v.blkdev, v.mountPoint, v.mountType, v.mountOpts, v.flags); err != nil {
		return fmt.Errorf("%w: %s on %s: %s", ErrMountFailed, v.blkdev, v.mountPoint, err)
	}
	v.mounted = true
	mounted = append(mounted, v)
	log.Logf("mounted %s on %s (%s)", v.blkdev, v.mountPoint, v.mountType)
	return nil
}

func (v *Volume) Unmount() error {
	if !v.mounted {
		return nil
	}
	if err := mount.Unmount(v.mountPoint, false, true); err != nil {
		return err
	}
	v.mounted = false
	return nil
}

// UnmountAll unmounts every volume mounted through this package, in reverse
// mount order. Used by the shutdown sequence; errors are logged, not
// returned, as nothing can be done about them that late.
func UnmountAll() {
	for i := len(mounted) - 1; i >= 0; i-- {
		v := mounted[i]
		if err := v.Unmount(); err != nil {
			log.Logf("unmounting %s: %s", v.mountPoint, err)
		}
	}
	mounted = nil
}

// Shutdown flushes staged writes to the NAND and restores the block-level
// write protection. Idempotent; safe to call whether or not writing was
// ever unlocked.
func (v *Volume) Shutdown() {
	log.Msg("Merging stages...")
	unix.Sync()
	if err := v.setBlockRO(true); err != nil {
		log.Logf("relocking %s: %s", v.blkdev, err)
	}
}
