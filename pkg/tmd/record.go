// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package tmd

import "bytes"

//Size of a launcher tmd record, in bytes. The installed copy is normalized to
//this size during restore regardless of its prior (possibly corrupted) size.
const RecordLen = 520

//A launcher tmd record. Opaque except for the display-only fields below.
type Record [RecordLen]byte

const (
	regionOff  = 13
	versionOff = 20
)

// Region maps the two-character hex pair embedded in the launcher title id
// (and thus in the derived paths and the record itself) to a region letter.
// Unknown pairs decode as "UNK".
func Region(pair string) string {
	switch pair {
	case "43":
		return "C"
	case "45":
		return "U"
	case "4a":
		return "J"
	case "4b":
		return "K"
	case "50":
		return "E"
	case "55":
		return "A"
	}
	return "UNK"
}

//Region letter encoded in the record. Display only.
func (r *Record) Region() string {
	return Region(string(r[regionOff : regionOff+2]))
}

//Version string encoded in the record, NUL-terminated ascii. Display only.
func (r *Record) VersionString() string {
	s := r[versionOff:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}
