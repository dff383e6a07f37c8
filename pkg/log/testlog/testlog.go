// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package testlog hijacks the output of the log package. By default, this
// output prints through testing functions but it can be stored in a buffer as
// well - for example, for analysis as part of the test.
//
// NewTestLog also neutralizes log.Fatalf's terminator so that code under test
// cannot exit the test process; Fatal events are counted (and by default
// reported via t.Errorf) instead.
package testlog

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log/flags"
)

const stampMilli = "15:04:05.000"

//Conforms to log.StackableLogger. Constructed via NewTestLog().
type TstLog struct {
	t             *testing.T    //log here if Buf is nil
	Buf           *bytes.Buffer //if non-nil, Msgf()/Logf() output goes here
	MsgCount      int           //counts number of calls to log.Msgf()
	LogCount      int           //counts number of calls to log.Logf()
	FatalCount    int           //counts number of calls to log.Fatalf()
	FatalIsNotErr bool          //if true, do not call t.Errorf() for Fatal()
	stderr        bool          //also immediately write to stderr
	mu            sync.Mutex
}

// Returns a new TstLog. If bufferLog is true, logging goes to a buffer rather
// than passing directly to t.Log()/t.Error(). Do not share one TstLog between
// tests - create a new one each time.
func NewTestLog(t *testing.T, bufferLog, stderr bool) (tlog *TstLog) {
	tlog = &TstLog{
		t:      t,
		stderr: stderr,
	}
	if bufferLog {
		tlog.Buf = new(bytes.Buffer)
	}
	log.NewLogStack(tlog)
	log.SetFatalAction(log.FailAction{Terminator: func() {}})
	return
}

var _ log.StackableLogger = (*TstLog)(nil)

func (tlog *TstLog) AddEntry(e log.LogEntry) {
	tlog.mu.Lock()
	defer tlog.mu.Unlock()
	switch e.Flags {
	case flags.EndUser:
		tlog.MsgCount++
		e.Msg = "MSG:" + e.Msg
	case flags.Fatal:
		tlog.FatalCount++
		if !tlog.FatalIsNotErr {
			tlog.t.Errorf("@%s: "+e.Msg, append([]interface{}{e.Time.Format(stampMilli)}, e.Args...)...)
			return
		}
		e.Msg = ">>FATAL()<< " + e.Msg
	default:
		tlog.LogCount++
		e.Msg = "LOG:" + e.Msg
	}
	f := fmt.Sprintf("@"+e.Time.Format(stampMilli)+": "+e.Msg, e.Args...)
	if tlog.stderr {
		fmt.Fprintln(os.Stderr, f)
	}
	if tlog.Buf != nil {
		fmt.Fprintln(tlog.Buf, f)
		return
	}
	tlog.t.Log(f)
}

const TstLogIdent = "tstLog"

func (*TstLog) Ident() string                      { return TstLogIdent }
func (tl *TstLog) Next() log.StackableLogger       { return nil }
func (*TstLog) Finalize()                          {}
func (tl *TstLog) ForwardTo(_ log.StackableLogger) {}
