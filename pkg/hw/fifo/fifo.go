// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package fifo talks to the companion processor that owns power and input.
// The protocol is 32-bit values on numbered user channels; this tool uses
// exactly three: an outbound exit notification, an inbound acknowledgment of
// it, and inbound battery/charging updates. Inbound values carry no logic
// beyond storing the latest state.
package fifo

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/edo9300/dsi-launcher-tmd-restorer/pkg/log"
)

const (
	//inbound: companion confirms it is shutting down
	ChanExitAck uint32 = 0x01
	//outbound: tell the companion this process is exiting
	ChanExit uint32 = 0x02
	//inbound: battery level + charging state
	ChanPower uint32 = 0x03
)

//'EXIT', sent on ChanExit and echoed back on ChanExitAck
const ExitMagic uint32 = 0x54495845

type Handler func(value uint32)

// Conn frames 32-bit channel/value pairs over a bidirectional byte stream,
// normally the character device the kernel exposes for the companion
// processor. Handlers must all be registered before Serve starts.
type Conn struct {
	rw       io.ReadWriter
	handlers map[uint32]Handler
	wmu      sync.Mutex
}

func New(rw io.ReadWriter) *Conn {
	return &Conn{
		rw:       rw,
		handlers: make(map[uint32]Handler),
	}
}

//Open opens the companion channel device node.
func Open(path string) (*Conn, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	return New(f), f, nil
}

// Handle registers h for values arriving on channel ch. Not safe to call
// once Serve has started.
func (c *Conn) Handle(ch uint32, h Handler) {
	c.handlers[ch] = h
}

// Serve dispatches inbound values until the stream errors out (device
// closed, companion gone). Run it in its own goroutine.
func (c *Conn) Serve() {
	var frame [8]byte
	for {
		if _, err := io.ReadFull(c.rw, frame[:]); err != nil {
			if err != io.EOF {
				log.Logf("fifo: read: %s", err)
			}
			return
		}
		ch := binary.LittleEndian.Uint32(frame[:4])
		val := binary.LittleEndian.Uint32(frame[4:])
		if h := c.handlers[ch]; h != nil {
			h(val)
		} else {
			log.Logf("fifo: no handler for channel %d (value 0x%08x)", ch, val)
		}
	}
}

//Send writes one value to the given channel.
func (c *Conn) Send(ch, value uint32) error {
	var frame [8]byte
	binary.LittleEndian.PutUint32(frame[:4], ch)
	binary.LittleEndian.PutUint32(frame[4:], value)
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.rw.Write(frame[:]); err != nil {
		return fmt.Errorf("fifo send: %w", err)
	}
	return nil
}

//NotifyExit sends the fire-and-forget exit signal.
func (c *Conn) NotifyExit() error {
	return c.Send(ChanExit, ExitMagic)
}
