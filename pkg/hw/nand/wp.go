// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package nand

import (
	"fmt"
	"os"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"

	"golang.org/x/sys/unix"
)

// setBlockRO toggles the kernel's block-level read-only flag on the
// volume's backing device.
func (v *Volume) setBlockRO(ro bool) error {
	f, err := os.OpenFile(v.blkdev, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	val := 0
	if ro {
		val = 1
	}
	return unix.IoctlSetPointerInt(int(f.Fd()), unix.BLKROSET, val)
}

// UnlockWriting lifts the block-level write protection and remounts the
// filesystem read-write. Part of the tmd.Flasher contract.
func (v *Volume) UnlockWriting() error {
	if err := v.setBlockRO(false); err != nil {
		return fmt.Errorf("%w: %s", ErrUnlockFailed, err)
	}
	if err := mountRemountRW(v); err != nil {
		return fmt.Errorf("%w: %s", ErrUnlockFailed, err)
	}
	log.Logf("write protection lifted on %s", v.blkdev)
	return nil
}

func mountRemountRW(v *Volume) error {
	return unix.Mount(v.blkdev, v.mountPoint, v.mountType, unix.MS_REMOUNT, v.mountOpts)
}
