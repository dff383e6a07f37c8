// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Command tmd-restorer verifies the DSi launcher's tmd against the reference
// copy shipped in its application image and, with user confirmation,
// restores it. See github.com/edo9300/dsi-launcher-tmd-restorer for details.
package main

import (
	"flag"
	"os"

	restorer "github.com/edo9300/dsi-launcher-tmd-restorer"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
)

//in any binary with main.buildId string, it is set at compile time to $BUILD_INFO
var buildId string

func main() {
	verbose := flag.Bool("v", false, "show technical log events on the console")
	flag.Parse()
	log.Logf("buildId: %s", buildId)
	restorer.Main(flag.Args(), *verbose)
	//the launcher ignores the exit status; always report success
	os.Exit(0)
}
