// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package tmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log/testlog"
)

// Fake Flasher recording the order of collaborator calls.
type fakeFlasher struct {
	calls      []string
	unlockErr  error
	roErrPaths map[string]bool
}

func (f *fakeFlasher) UnlockWriting() error {
	f.calls = append(f.calls, "unlock")
	return f.unlockErr
}

func (f *fakeFlasher) SetReadOnly(path string, ro bool) error {
	f.calls = append(f.calls, fmt.Sprintf("ro(%s,%t)", path, ro))
	if f.roErrPaths[path] {
		return errors.New("attribute stuck")
	}
	return nil
}

// Target file whose writes are accepted only partially, as a dying NAND
// might.
type shortWriter struct {
	f *os.File
}

func (s *shortWriter) WriteAt(p []byte, off int64) (int, error) {
	n := len(p) / 2
	return s.f.WriteAt(p[:n], off)
}
func (s *shortWriter) Truncate(size int64) error { return s.f.Truncate(size) }
func (s *shortWriter) Sync() error               { return s.f.Sync() }
func (s *shortWriter) Close() error              { return s.f.Close() }

func TestRestore(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	paths, ref := verifyFixture(t, make([]byte, RecordLen), "")
	//the launcher app exists on the real fs; create it so attr calls are realistic
	if err := os.WriteFile(paths.LauncherApp, []byte{0xff}, 0644); err != nil {
		t.Fatal(err)
	}
	v, err := Verify(paths)
	if err != nil {
		t.Fatal(err)
	}

	fl := &fakeFlasher{}
	if err := Restore(paths, v, fl); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(paths.Installed)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != RecordLen {
		t.Errorf("size: want %d, got %d", RecordLen, len(got))
	}
	if !bytes.Equal(got, ref[:]) {
		t.Error("installed bytes differ from reference after restore")
	}
	if ComputeDigest(got) != ComputeDigest(ref[:]) {
		t.Error("digest mismatch after restore")
	}

	want := []string{
		"unlock",
		fmt.Sprintf("ro(%s,false)", paths.Installed),
		fmt.Sprintf("ro(%s,false)", paths.LauncherApp),
	}
	if len(fl.calls) != len(want) {
		t.Fatalf("calls: want %v, got %v", want, fl.calls)
	}
	for i := range want {
		if fl.calls[i] != want[i] {
			t.Errorf("call %d: want %s, got %s", i, want[i], fl.calls[i])
		}
	}
}

func TestRestoreNormalizesSize(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	//installed copy bloated well past the record size
	paths, ref := verifyFixture(t, make([]byte, 4096), "")
	v, err := Verify(paths)
	if err != nil {
		t.Fatal(err)
	}
	if err := Restore(paths, v, &fakeFlasher{}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(paths.Installed)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != RecordLen || !bytes.Equal(got, ref[:]) {
		t.Errorf("want %d reference bytes, got %d bytes", RecordLen, len(got))
	}
}

func TestRestoreFailures(t *testing.T) {
	testlog.NewTestLog(t, true, false)

	t.Run("wrong_verdict", func(t *testing.T) {
		fl := &fakeFlasher{}
		err := Restore(PathTriple{}, Verdict{Action: AlreadyCorrect}, fl)
		if err == nil {
			t.Fatal("want error")
		}
		if len(fl.calls) != 0 {
			t.Errorf("collaborator touched without a verdict: %v", fl.calls)
		}
	})

	t.Run("unlock_fails", func(t *testing.T) {
		paths, _ := verifyFixture(t, make([]byte, RecordLen), "")
		v, err := Verify(paths)
		if err != nil {
			t.Fatal(err)
		}
		fl := &fakeFlasher{unlockErr: errors.New("still locked")}
		if err := Restore(paths, v, fl); err == nil {
			t.Fatal("want error")
		}
		if len(fl.calls) != 1 {
			t.Errorf("attribute calls after failed unlock: %v", fl.calls)
		}
	})

	t.Run("attr_fails", func(t *testing.T) {
		paths, _ := verifyFixture(t, make([]byte, RecordLen), "")
		v, err := Verify(paths)
		if err != nil {
			t.Fatal(err)
		}
		fl := &fakeFlasher{roErrPaths: map[string]bool{paths.Installed: true}}
		err = Restore(paths, v, fl)
		if !errors.Is(err, ErrAttributeChange) {
			t.Errorf("want ErrAttributeChange, got %v", err)
		}
		//target untouched - still the corrupt original
		got, err := os.ReadFile(paths.Installed)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, make([]byte, RecordLen)) {
			t.Error("installed file modified despite attribute failure")
		}
	})

	t.Run("short_write", func(t *testing.T) {
		paths, _ := verifyFixture(t, make([]byte, RecordLen), "")
		v, err := Verify(paths)
		if err != nil {
			t.Fatal(err)
		}
		prev := openTarget
		openTarget = func(path string) (targetFile, error) {
			f, err := os.OpenFile(path, os.O_RDWR, 0)
			if err != nil {
				return nil, err
			}
			return &shortWriter{f: f}, nil
		}
		defer func() { openTarget = prev }()
		fl := &fakeFlasher{}
		err = Restore(paths, v, fl)
		if !errors.Is(err, ErrShortWrite) {
			t.Errorf("want ErrShortWrite, got %v", err)
		}
		// The error must report, not retry: protection was already lifted and
		// attributes cleared before the write was attempted.
		want := []string{
			"unlock",
			fmt.Sprintf("ro(%s,false)", paths.Installed),
			fmt.Sprintf("ro(%s,false)", paths.LauncherApp),
		}
		if len(fl.calls) != len(want) {
			t.Errorf("calls: want %v, got %v", want, fl.calls)
		}
	})

	t.Run("target_missing", func(t *testing.T) {
		paths, _ := verifyFixture(t, make([]byte, RecordLen), "")
		v, err := Verify(paths)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Remove(paths.Installed); err != nil {
			t.Fatal(err)
		}
		err = Restore(paths, v, &fakeFlasher{})
		if !errors.Is(err, ErrTargetOpenFailed) {
			t.Errorf("want ErrTargetOpenFailed, got %v", err)
		}
	})
}
