// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package tmd

import "errors"

// Every error in this package is fatal to the run: there is no local recovery
// or retry anywhere, because the terminal action writes to boot-critical
// storage and any uncertainty must stop the run before reaching it. The
// driver is the only place errors are converted to user-visible messages.
var (
	//hardware info file could not be opened
	ErrConfigUnavailable = errors.New("hardware info file unavailable")
	//hardware info file too short to hold a title id
	ErrConfigTruncated = errors.New("hardware info file truncated")
	//no launcher app in the title content dir
	ErrAppNotFound = errors.New("launcher app not found")
	//launcher app encodes a version this tool has no reference tmd for
	ErrVersionUnsupported = errors.New("unsupported launcher version")
	//digest text is not 40 hex chars
	ErrMalformedDigest = errors.New("malformed digest")
	//reference tmd's companion .sha1 file is missing
	ErrDigestFileMissing = errors.New("reference tmd sha1 not found")
	//reference tmd could not be read in full
	ErrReferenceUnreadable = errors.New("reference tmd unreadable")
	// Reference tmd's bytes fail their own declared digest. Most severe:
	// the media we would restore from is itself bad, and writing unverified
	// bytes to NAND is the one outcome this tool must never risk.
	ErrReferenceCorrupt = errors.New("reference tmd corrupt")
	//installed tmd could not be opened
	ErrTargetOpenFailed = errors.New("cannot open installed tmd")
	//read-only attribute could not be cleared
	ErrAttributeChange = errors.New("cannot change read-only attribute")
	//installed tmd could not be truncated to the record size
	ErrTruncateFailed = errors.New("cannot truncate installed tmd")
	//fewer bytes than the full record were accepted by the write
	ErrShortWrite = errors.New("short write to installed tmd")
)
