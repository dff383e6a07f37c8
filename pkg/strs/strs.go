// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Abstraction for strings that implementors will likely wish to change.
package strs

import (
	fp "path/filepath"
)

//Abstraction for strings that implementors will likely wish to change.
type Stringer interface {
	//Mount point of the internal NAND filesystem.
	NandRoot() string
	//Mount point of the application's embedded (nitro) filesystem.
	NitroRoot() string
	//Mount point of the removable sd card.
	SDRoot() string
	//Block device backing the NAND filesystem.
	NandBlockDev() string
	//Block device backing the sd card filesystem.
	SDBlockDev() string
	//Path of the fixed-layout hardware info file holding the title id.
	HWInfoFile() string
	//Dir on NAND under which launcher titles live.
	TitleBase() string
	//Device node for the arm7 inter-processor channel.
	FifoDev() string
	//File identifying the console class; must read as a DSi for the tool to run.
	ConsoleIDFile() string
	//Application image to fall back to when no path is given.
	DefaultAppPath() string
	//Prefix used for the log file name.
	LogPrefix() string
}

var stringImpl Stringer

//Override defaults. Pass nil to restore them.
func SetStringer(b Stringer) {
	stringImpl = b
}

//Mount point of the internal NAND filesystem.
func NandRoot() string {
	if stringImpl != nil {
		return stringImpl.NandRoot()
	}
	return "/nand"
}

//Mount point of the application's embedded (nitro) filesystem.
func NitroRoot() string {
	if stringImpl != nil {
		return stringImpl.NitroRoot()
	}
	return "/nitro"
}

//Mount point of the removable sd card.
func SDRoot() string {
	if stringImpl != nil {
		return stringImpl.SDRoot()
	}
	return "/sd"
}

//Block device backing the NAND filesystem.
func NandBlockDev() string {
	if stringImpl != nil {
		return stringImpl.NandBlockDev()
	}
	return "/dev/nand"
}

//Block device backing the sd card filesystem.
func SDBlockDev() string {
	if stringImpl != nil {
		return stringImpl.SDBlockDev()
	}
	return "/dev/mmcblk0p1"
}

//Path of the fixed-layout hardware info file holding the title id.
func HWInfoFile() string {
	if stringImpl != nil {
		return stringImpl.HWInfoFile()
	}
	return fp.Join(NandRoot(), "sys", "HWINFO_S.dat")
}

//Dir on NAND under which launcher titles live. The hex constant is the
//launcher title's fixed high word.
func TitleBase() string {
	if stringImpl != nil {
		return stringImpl.TitleBase()
	}
	return fp.Join(NandRoot(), "title", "00030017")
}

//Device node for the arm7 inter-processor channel.
func FifoDev() string {
	if stringImpl != nil {
		return stringImpl.FifoDev()
	}
	return "/dev/arm7fifo"
}

//File identifying the console class.
func ConsoleIDFile() string {
	if stringImpl != nil {
		return stringImpl.ConsoleIDFile()
	}
	return "/sys/firmware/console_type"
}

//Application image to fall back to when no path is given.
func DefaultAppPath() string {
	if stringImpl != nil {
		return stringImpl.DefaultAppPath()
	}
	return fp.Join(SDRoot(), "ntrboot.nds")
}

//Prefix used for the log file name.
func LogPrefix() string {
	if stringImpl != nil {
		return stringImpl.LogPrefix()
	}
	return "tmd-restorer."
}

// Custom implements Stringer with plain fields, for tests and for callers
// that relocate a few paths without writing a full implementation. Empty
// fields fall back to the defaults above.
type Custom struct {
	Nand, Nitro, SD      string
	BlockDev, SDDev      string
	HWInfo               string
	Titles, Fifo         string
	ConsoleID, App, LPfx string
}

var _ Stringer = (*Custom)(nil)

func (c *Custom) NandRoot() string {
	if c.Nand != "" {
		return c.Nand
	}
	return "/nand"
}
func (c *Custom) NitroRoot() string {
	if c.Nitro != "" {
		return c.Nitro
	}
	return "/nitro"
}
func (c *Custom) SDRoot() string {
	if c.SD != "" {
		return c.SD
	}
	return "/sd"
}
func (c *Custom) NandBlockDev() string {
	if c.BlockDev != "" {
		return c.BlockDev
	}
	return "/dev/nand"
}
func (c *Custom) SDBlockDev() string {
	if c.SDDev != "" {
		return c.SDDev
	}
	return "/dev/mmcblk0p1"
}
func (c *Custom) HWInfoFile() string {
	if c.HWInfo != "" {
		return c.HWInfo
	}
	return fp.Join(c.NandRoot(), "sys", "HWINFO_S.dat")
}
func (c *Custom) TitleBase() string {
	if c.Titles != "" {
		return c.Titles
	}
	return fp.Join(c.NandRoot(), "title", "00030017")
}
func (c *Custom) FifoDev() string {
	if c.Fifo != "" {
		return c.Fifo
	}
	return "/dev/arm7fifo"
}
func (c *Custom) ConsoleIDFile() string {
	if c.ConsoleID != "" {
		return c.ConsoleID
	}
	return "/sys/firmware/console_type"
}
func (c *Custom) DefaultAppPath() string {
	if c.App != "" {
		return c.App
	}
	return fp.Join(c.SDRoot(), "ntrboot.nds")
}
func (c *Custom) LogPrefix() string {
	if c.LPfx != "" {
		return c.LPfx
	}
	return "tmd-restorer."
}
