// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package kmsg is a log sink writing to the kernel ring buffer. The process
// is pid-1-adjacent on this platform and its stdout dies with it; the ring
// buffer survives until poweroff and shows up in any serial or debugger
// capture, which makes it the post-mortem trace of choice. Process must run
// as root.
package kmsg

import (
	"fmt"
	"os"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log/flags"
)

type Priority uint

//Convert facility/severity into priority
func Prio(f Facility, s Severity) Priority {
	return Priority(f*8) + Priority(s)
}

//Facility values a la RFC5424. Incomplete list.
type Facility uint

const (
	FacUser Facility = 1
	FacSys  Facility = 3
)

//Severity values a la RFC5424. Incomplete list.
type Severity uint

const (
	SevEmerg Severity = iota
	SevAlert
	SevCrit
	SevError
	SevWarn
	SevNotice
)

type kmsgLog struct {
	f     *os.File
	prio  Priority
	flags flags.Flag
	next  log.StackableLogger
}

// AddKmsgLog adds a ring buffer sink to the log stack. Flags select which
// entries are written, as with the console sink. Fails quietly when
// /dev/kmsg cannot be opened - a trace sink is never worth stopping for.
func AddKmsgLog(fl flags.Flag) {
	f, err := os.OpenFile("/dev/kmsg", os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Logf("opening /dev/kmsg: %s", err)
		return
	}
	k := &kmsgLog{
		f:     f,
		prio:  Prio(FacUser, SevNotice),
		flags: fl,
	}
	if err := log.AddLogger(k, true); err != nil {
		log.Logf("kmsg sink: %s", err)
		_ = f.Close()
	}
}

var _ log.StackableLogger = (*kmsgLog)(nil)

func (k *kmsgLog) AddEntry(e log.LogEntry) {
	if k.f != nil && (k.flags == 0 || e.Flags&k.flags > 0) {
		prio := k.prio
		if e.Flags&flags.Fatal != 0 {
			prio = Prio(FacUser, SevError)
		}
		//each write is one ring buffer record; no trailing newline needed
		fmt.Fprintf(k.f, "<%d>%s%s", prio, log.GetPrefix(), e.String())
	}
	if k.next != nil {
		k.next.AddEntry(e)
	}
}

func (k *kmsgLog) ForwardTo(sl log.StackableLogger) {
	if k.next == nil || sl == nil {
		k.next = sl
	} else {
		panic("next already set")
	}
}

const KmsgLogIdent = "kmsgLog"

func (*kmsgLog) Ident() string               { return KmsgLogIdent }
func (k *kmsgLog) Next() log.StackableLogger { return k.next }

func (k *kmsgLog) Finalize() {
	if k.f != nil {
		_ = k.f.Close()
		k.f = nil
	}
	if k.next != nil {
		k.next.Finalize()
	}
}
