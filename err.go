// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package restorer

import (
	"fmt"
	"os"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/console"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/shutdown"
)

// RestoreFatal shows the failure to the user, waits for acknowledgment, and
// tears down. No failure in this tool is one the process can report through
// its exit status - the launcher that spawned it ignores it - so the
// terminator exits 0 after the shutdown tasks ran.
var RestoreFatal = log.FailAction{
	MsgPfx: "Error: ",
	Pre: func(f string, va ...interface{}) {
		if log.GetPrefix() == "test" {
			panic("Fatalf called from 'go test'")
		}
		console.Message(fmt.Sprintf(f, va...))
	},
	Terminator: func() {
		shutdown.Tasks.Perform(false)
		//exit status is meaningless to the launcher; never report nonzero
		os.Exit(0)
	},
}
