// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package restorer

import (
	"os"
	"time"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/console"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/hw/dsi"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/hw/fifo"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/hw/nand"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log/flags"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log/kmsg"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/shutdown"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/strs"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/tmd"
)

//Battery levels below this are refused unless the charger is connected.
const minBatteryLevel = 7

// Main runs the whole repair flow: platform gate, battery gate, mounts,
// locate, verify, confirm, restore, teardown. args holds the positional
// command line args, normally the path of the running application image.
// With verbose set, technical events reach the console as well; otherwise
// the console shows end-user messages only and the full trace goes to the
// sd card log and the kernel ring buffer.
//
// Main returns instead of exiting so the caller owns the process exit; every
// early stop goes through log.Fatalf and the configured FailAction.
func Main(args []string, verbose bool) {
	log.SetPrefix(strs.LogPrefix())
	consFlags := flags.EndUser
	if verbose {
		consFlags = flags.NA
	}
	log.AddConsoleLog(consFlags)
	kmsg.AddKmsgLog(flags.NA)
	log.SetFatalAction(RestoreFatal)

	console.Printf("launcher tmd restorer\n\n")

	// Teardown must run on every exit path, including the earliest aborts,
	// so all of it is registered before anything can fail.
	_, _, status := openFifo()
	nv := nand.NandVolume()
	addShutdownTasks(nv)

	if err := dsi.Check(); err != nil {
		log.Fatalf("This tool can only run on a DSi console")
	}

	if !batteryGate(status) {
		log.Log("battery low, user declined to continue")
		console.Message("Aborted")
		shutdown.Tasks.Perform(false)
		return
	}

	sd := nand.SDVolume()
	if err := sd.Mount(); err != nil {
		log.Fatalf("Cannot access the sd card: %s", err)
	}
	//full trace on the sd card, replaying everything buffered so far
	if fname, err := log.AddFileLog(sd.Path()); err != nil {
		log.Logf("sd card log: %s", err)
	} else {
		log.Logf("logging to %s", fname)
	}
	if err := nv.Mount(); err != nil {
		log.Fatalf("Cannot access the NAND: %s", err)
	}

	app := resolveAppPath(args)
	nitro := nand.NitroVolume(app)
	if err := nitro.Mount(); err != nil {
		log.Fatalf("Cannot open the filesystem embedded in %s: %s", app, err)
	}

	tid, err := tmd.ReadTitleID(strs.HWInfoFile())
	if err != nil {
		log.Fatalf("Cannot read the launcher title id: %s", err)
	}
	version, appName, err := tmd.FindLauncherApp(tmd.ContentDir(tid))
	if err != nil {
		log.Fatalf("Cannot locate the installed launcher: %s", err)
	}
	paths := tmd.DerivePaths(tid, version, appName)
	console.Printf("Launcher title: %08x\nVersion: %d\nRegion: %s\n", tid, version, paths.Region())

	verdict, err := tmd.Verify(paths)
	if err != nil {
		log.Fatalf("Verification failed: %s", err)
	}
	if verdict.Action == tmd.NeedsRestore {
		log.Logf("replacement tmd: version %q, region %s",
			verdict.Replacement.VersionString(), verdict.Replacement.Region())
	}
	if verdict.Action == tmd.AlreadyCorrect {
		log.Log("no divergence, nothing to write")
		console.Message("The tmd is correct, no further action needed")
		shutdown.Tasks.Perform(true)
		return
	}

	console.Message("Warning: this tool is about to write to the console's NAND.\n" +
		"Do not power off the console until it says it is done.")
	if console.Choice("Do you want to restore the launcher's tmd?") != console.ANSWER_YES {
		log.Log("user declined, nothing written")
		console.Message("Aborted")
		shutdown.Tasks.Perform(false)
		return
	}

	if err := tmd.Restore(paths, verdict, nv); err != nil {
		log.Fatalf("Restore failed: %s", err)
	}
	log.Log("restore complete")
	console.Message("Done")
	shutdown.Tasks.Perform(true)
}

// openFifo connects to the companion processor, starts dispatching its
// inbound traffic, and registers the exit handshake so it runs on every
// exit path. A missing device node is tolerated - the battery check is
// skipped and no handshake is registered.
func openFifo() (conn *fifo.Conn, rdv *fifo.Rendezvous, status *fifo.PowerStatus) {
	rdv = new(fifo.Rendezvous)
	status = new(fifo.PowerStatus)
	conn, closer, err := fifo.Open(strs.FifoDev())
	if err != nil {
		log.Logf("opening %s: %s", strs.FifoDev(), err)
		return nil, rdv, nil
	}
	shutdown.Tasks.Add(&shutdown.Task{Name: "fifo close", Func: func(_ bool) {
		_ = closer.Close()
	}})
	conn.Handle(fifo.ChanPower, status.Update)
	conn.Handle(fifo.ChanExitAck, func(v uint32) {
		if v == fifo.ExitMagic {
			rdv.Ack()
		}
	})
	go conn.Serve()
	shutdown.Tasks.Add(&shutdown.Task{Name: "exit handshake", Func: func(_ bool) {
		if err := conn.NotifyExit(); err != nil {
			log.Logf("exit notification: %s", err)
			return
		}
		rdv.Wait()
	}})
	return conn, rdv, status
}

// batteryGate decides whether to proceed given the battery state: a low,
// discharging battery needs the user to either plug the charger in or
// insist. A power loss mid-restore is the one failure mode this tool cannot
// undo. False means the user declined; the caller aborts gracefully.
func batteryGate(status *fifo.PowerStatus) bool {
	if status == nil {
		log.Log("no power status available, skipping battery check")
		return true
	}
	//the companion broadcasts power state shortly after boot
	if !status.WaitReport(time.Second) {
		log.Log("no power report from companion, skipping battery check")
		return true
	}
	if status.Charging() || status.Level() >= minBatteryLevel {
		return true
	}
	log.Logf("battery level %d, not charging", status.Level())
	console.Message("The battery is low and the console is not charging.\n" +
		"Connect the charger before continuing.")
	//charger may have been plugged in while the message was up
	if status.Charging() {
		return true
	}
	return console.Choice("Continue on battery anyway?") == console.ANSWER_YES
}

// resolveAppPath finds the running application's own image file, which
// carries the reference tmd copies. The launcher passes the image path as
// the first positional arg; without one, fall back to the fixed sd card
// path.
func resolveAppPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	app := strs.DefaultAppPath()
	if _, err := os.Stat(app); err != nil {
		log.Fatalf("Cannot locate the application image: %s", err)
	}
	log.Logf("no image path given, using %s", app)
	return app
}

// addShutdownTasks fills the storage half of the teardown list. Perform runs
// last-added first, so execution is: finalize the log (its file lives on the
// sd card and must close before the unmount), unmount everything, merge
// staged writes and relock - then the handshake tasks openFifo registered
// earlier hand control back to the companion.
func addShutdownTasks(nv *nand.Volume) {
	shutdown.Tasks.Add(&shutdown.Task{Name: "merge stages", Func: func(_ bool) {
		nv.Shutdown()
	}})
	shutdown.Tasks.Add(&shutdown.Task{Name: "umount", Func: func(_ bool) {
		console.Printf("Unmounting filesystems...\n")
		nand.UnmountAll()
	}})
	shutdown.Tasks.Add(&shutdown.Task{Name: "log.Finalize", Func: func(_ bool) {
		log.Finalize()
	}})
}
