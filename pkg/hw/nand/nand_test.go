// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package nand

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log/testlog"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/strs"

	"golang.org/x/sys/unix"
)

//use 'go test'
func TestVolumes(t *testing.T) {
	strs.SetStringer(&strs.Custom{
		Nand:     "/mnt/nand",
		SD:       "/mnt/sd",
		Nitro:    "/mnt/app",
		BlockDev: "/dev/nandblk",
		SDDev:    "/dev/sdblk",
	})
	defer strs.SetStringer(nil)

	n := NandVolume()
	if n.Device() != "/dev/nandblk" || n.Path() != "/mnt/nand" {
		t.Errorf("nand volume: %s on %s", n.Device(), n.Path())
	}
	if n.mountType != "vfat" {
		t.Errorf("nand fs type %s", n.mountType)
	}
	s := SDVolume()
	if s.Device() != "/dev/sdblk" || s.Path() != "/mnt/sd" {
		t.Errorf("sd volume: %s on %s", s.Device(), s.Path())
	}
	a := NitroVolume("/mnt/sd/launcher.nds")
	if a.Device() != "/mnt/sd/launcher.nds" || a.Path() != "/mnt/app" {
		t.Errorf("nitro volume: %s on %s", a.Device(), a.Path())
	}
	if a.flags&unix.MS_RDONLY == 0 {
		t.Error("nitro volume must be read-only")
	}
}

func TestUnmountNotMounted(t *testing.T) {
	v := NandVolume()
	if err := v.Unmount(); err != nil {
		t.Errorf("unmount of never-mounted volume: %s", err)
	}
}

//use 'go test'
func TestMountBadDevice(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	v := &Volume{
		blkdev:     "/dev/does-not-exist",
		mountPoint: filepath.Join(t.TempDir(), "mnt"),
		mountType:  "vfat",
	}
	err := v.Mount()
	if !errors.Is(err, ErrMountFailed) {
		t.Errorf("got %v, want ErrMountFailed", err)
	}
	if v.mounted {
		t.Error("volume marked mounted after failed mount")
	}
}

// The attribute ioctls only exist on vfat; on any other filesystem the
// kernel rejects them, which at least drives the code all the way to the
// ioctl. Toggling for real needs a FAT fixture, which unit tests don't have.
func TestSetReadOnlyNonFat(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	v := NandVolume()
	path := filepath.Join(t.TempDir(), "title.tmd")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := v.SetReadOnly(path, true); err == nil {
		t.Error("expected an error from the attribute ioctl on a non-FAT file")
	}
	if err := v.SetReadOnly(filepath.Join(t.TempDir(), "missing"), true); err == nil {
		t.Error("expected an error for a missing file")
	}
}
