// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Subpackages implement a repair tool for the DSi launcher's title metadata
// (tmd) file. The launcher's tmd lives on internal NAND; certain third-party
// tools are known to corrupt or truncate it, leaving the console unable to
// boot without external help.
//
// The tool ships a known-good copy of the tmd for every launcher version and
// region inside its own application image. At runtime it:
//
//    - locates the installed tmd and the matching reference copy,
//    - compares SHA-1 digests to decide whether anything diverged,
//    - cross-checks the reference bytes against their declared digest, and
//    - only then - with explicit user confirmation - lifts the NAND write
//      protection and rewrites the installed tmd in place.
//
// All validation happens strictly before any mutation. If any step fails,
// the run stops and the console is returned to a safe idle state; the one
// risk knowingly accepted is a failure between truncation and the final
// write, which cannot leave the tmd more broken than a corrupt tmd already
// is.
//
// The binary lives in cmd/tmd-restorer. Core verify/restore logic is in
// pkg/tmd; hardware collaborators (NAND access, inter-processor FIFO,
// platform gating) are under pkg/hw and are injectable for tests.
package restorer
