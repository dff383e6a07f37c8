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

//FAT attribute bits, as exposed by the vfat driver's attribute ioctls.
const (
	attrReadOnly = 0x1
)

//ioctl request numbers from linux/msdos_fs.h
const (
	fatIoctlGetAttributes = 0x80047210
	fatIoctlSetAttributes = 0x40047211
)

// SetReadOnly sets or clears the FAT read-only attribute on path. The
// change is read back to confirm the driver honored it. Part of the
// tmd.Flasher contract.
func (v *Volume) SetReadOnly(path string, ro bool) error {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	fd := int(f.Fd())
	attrs, err := unix.IoctlGetUint32(fd, fatIoctlGetAttributes)
	if err != nil {
		return fmt.Errorf("get attributes of %s: %s", path, err)
	}
	want := attrs &^ attrReadOnly
	if ro {
		want = attrs | attrReadOnly
	}
	if want == attrs {
		return nil
	}
	if err := unix.IoctlSetPointerInt(fd, fatIoctlSetAttributes, int(want)); err != nil {
		return fmt.Errorf("set attributes of %s: %s", path, err)
	}
	got, err := unix.IoctlGetUint32(fd, fatIoctlGetAttributes)
	if err != nil {
		return fmt.Errorf("verify attributes of %s: %s", path, err)
	}
	if got != want {
		return fmt.Errorf("attributes of %s: wrote %#x, read back %#x", path, want, got)
	}
	log.Logf("attributes of %s now %#x", path, got)
	return nil
}
