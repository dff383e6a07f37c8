// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package restorer

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/console"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/hw/fifo"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/hw/nand"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log/testlog"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/shutdown"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/strs"
)

//use 'go test'
func TestResolveAppPath(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	if got := resolveAppPath([]string{"/sd/tool.nds"}); got != "/sd/tool.nds" {
		t.Errorf("got %s", got)
	}
	app := filepath.Join(t.TempDir(), "tool.nds")
	if err := os.WriteFile(app, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	strs.SetStringer(&strs.Custom{App: app})
	defer strs.SetStringer(nil)
	if got := resolveAppPath(nil); got != app {
		t.Errorf("got %s", got)
	}
}

// An abort before any mount succeeds must still run the full teardown,
// including the exit signal to the companion. The fifo device is a regular
// file pre-seeded with the companion's ack frame; the exit frame must land
// after it.
func TestEarlyAbortStillSignalsCompanion(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	shutdown.Tasks.Clear()
	defer shutdown.Tasks.Clear()

	dir := t.TempDir()
	fifoPath := filepath.Join(dir, "arm7fifo")
	ack := make([]byte, 8)
	binary.LittleEndian.PutUint32(ack[:4], fifo.ChanExitAck)
	binary.LittleEndian.PutUint32(ack[4:], fifo.ExitMagic)
	if err := os.WriteFile(fifoPath, ack, 0644); err != nil {
		t.Fatal(err)
	}
	strs.SetStringer(&strs.Custom{
		Fifo:     fifoPath,
		BlockDev: filepath.Join(dir, "no-such-dev"),
	})
	defer strs.SetStringer(nil)
	out := new(bytes.Buffer)
	console.Default = console.New(strings.NewReader(""), out)
	defer func() { console.Default = console.New(os.Stdin, os.Stdout) }()

	_, rdv, _ := openFifo()
	addShutdownTasks(nand.NandVolume())

	//wait for the dispatcher to consume the pre-seeded ack
	deadline := time.Now().Add(2 * time.Second)
	for !rdv.Acked() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !rdv.Acked() {
		t.Fatal("ack frame never dispatched")
	}

	//the abort path: no mounts ever happened
	shutdown.Tasks.Perform(false)

	raw, err := os.ReadFile(fifoPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 16 {
		t.Fatalf("fifo stream is %d bytes, want 16", len(raw))
	}
	if binary.LittleEndian.Uint32(raw[8:12]) != fifo.ChanExit ||
		binary.LittleEndian.Uint32(raw[12:16]) != fifo.ExitMagic {
		t.Errorf("no exit frame written: % x", raw[8:])
	}
}

//use 'go test'
func TestBatteryGate(t *testing.T) {
	power := func(level uint32, charging bool) *fifo.PowerStatus {
		s := new(fifo.PowerStatus)
		if charging {
			level |= 1 << 7
		}
		s.Update(level)
		return s
	}
	testdata := []struct {
		name    string
		status  *fifo.PowerStatus
		input   string
		want    bool
		wantAsk bool
	}{
		{"no_status", nil, "", true, false},
		{"full", power(15, false), "", true, false},
		{"low_charging", power(2, true), "", true, false},
		{"low_continue", power(2, false), "ok\nyes\n", true, true},
		{"low_refuse", power(2, false), "ok\nno\n", false, true},
		//declining must not be a fatal event - tlog would flag one via t.Errorf
	}
	for _, td := range testdata {
		t.Run(td.name, func(t *testing.T) {
			testlog.NewTestLog(t, true, false)
			out := new(bytes.Buffer)
			console.Default = console.New(strings.NewReader(td.input), out)
			defer func() { console.Default = console.New(os.Stdin, os.Stdout) }()
			if got := batteryGate(td.status); got != td.want {
				t.Errorf("got %v, want %v", got, td.want)
			}
			asked := strings.Contains(out.String(), "[yes/no]")
			if asked != td.wantAsk {
				t.Errorf("asked=%v, want %v\noutput: %q", asked, td.wantAsk, out.String())
			}
		})
	}
}
