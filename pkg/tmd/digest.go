// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package tmd implements the verify-then-restore protocol for the launcher's
//title metadata file: locating the installed copy and the known-good
//reference, deciding whether they diverge, and overwriting the installed copy
//with pre-validated bytes.
package tmd

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

//Length of a sha1 digest, in bytes.
const DigestLen = sha1.Size

//A sha1 content fingerprint. Comparable; equality is byte-wise. This is an
//integrity check against accidental corruption, not an authentication
//mechanism, so no constant-time comparison is needed.
type Digest [DigestLen]byte

//ComputeDigest returns the sha1 digest of buf.
func ComputeDigest(buf []byte) Digest {
	return sha1.Sum(buf)
}

// ParseDigest decodes the canonical hex encoding of a digest: exactly 40 hex
// characters, upper or lower case, with trailing whitespace tolerated. Any
// other input fails with ErrMalformedDigest.
func ParseDigest(text string) (Digest, error) {
	var d Digest
	text = strings.TrimRight(text, " \t\r\n")
	if len(text) != 2*DigestLen {
		return d, fmt.Errorf("%w: got %d chars, want %d", ErrMalformedDigest, len(text), 2*DigestLen)
	}
	raw, err := hex.DecodeString(text)
	if err != nil {
		return d, fmt.Errorf("%w: %s", ErrMalformedDigest, err)
	}
	copy(d[:], raw)
	return d, nil
}

//Canonical lower-hex encoding, as stored in companion digest files.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ReadDigestFile reads a companion digest file: utf-8 text holding one
// hex-encoded digest, optionally followed by whitespace.
func ReadDigestFile(path string) (Digest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %s", ErrDigestFileMissing, err)
	}
	return ParseDigest(string(raw))
}
