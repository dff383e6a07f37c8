// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package console is the presentation collaborator: blocking message boxes
// and yes/no choice boxes on the bottom screen. The core never writes to the
// screen directly; everything user-visible goes through here or through a
// log sink.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type Answer int

const (
	ANSWER_NA Answer = iota //no answer - input closed
	ANSWER_NO
	ANSWER_YES
)

type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// The process-wide console. Tests swap this for one backed by buffers.
var Default = New(os.Stdin, os.Stdout)

//Printf writes formatted text without waiting for acknowledgment.
func (c *Console) Printf(f string, va ...interface{}) {
	fmt.Fprintf(c.out, f, va...)
}

// Message displays txt and blocks until the user acknowledges it. Closed
// input counts as acknowledgment so a headless run cannot hang here.
func (c *Console) Message(txt string) {
	fmt.Fprintf(c.out, "\n%s\n[ok]\n", txt)
	_, _ = c.in.ReadString('\n')
}

// Choice displays txt and blocks until the user answers yes or no.
// Unrecognized input re-asks; closed input returns ANSWER_NA.
func (c *Console) Choice(txt string) Answer {
	for {
		fmt.Fprintf(c.out, "\n%s\n[yes/no]\n", txt)
		line, err := c.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return ANSWER_YES
		case "n", "no":
			return ANSWER_NO
		}
		if err != nil {
			return ANSWER_NA
		}
	}
}

//Package-level helpers using the Default console.
func Printf(f string, va ...interface{}) { Default.Printf(f, va...) }
func Message(txt string)                 { Default.Message(txt) }
func Choice(txt string) Answer           { return Default.Choice(txt) }
