// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package dsi identifies the console model. The launcher title layout this
// tool repairs only exists on DSi units; running anywhere else would at
// best find nothing and at worst touch the wrong title.
package dsi

import (
	"bytes"
	"errors"
	"os"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/strs"
)

var ErrNotDSi = errors.New("this console is not a DSi")

// Check reads the firmware-reported console type and returns ErrNotDSi
// unless it identifies a DSi. An unreadable identification file is treated
// the same way.
func Check() error {
	data, err := os.ReadFile(strs.ConsoleIDFile())
	if err != nil {
		log.Logf("reading console type: %s", err)
		return ErrNotDSi
	}
	model := string(bytes.TrimSpace(data))
	log.Logf("console type: %s", model)
	if model != "DSi" {
		return ErrNotDSi
	}
	return nil
}
