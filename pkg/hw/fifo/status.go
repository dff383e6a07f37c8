// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package fifo

import (
	"sync/atomic"
	"time"
)

// PowerStatus is a process-wide status cell holding the last battery value
// received from the companion. One writer (the inbound handler), one reader
// context (startup gating); atomic single-word access is all the
// synchronization needed.
type PowerStatus struct {
	raw atomic.Uint32
}

const chargingBit = 1 << 7

//Update stores a raw power value. Registered as the ChanPower handler.
func (s *PowerStatus) Update(value uint32) {
	s.raw.Store(value)
}

//Battery level, 0-15.
func (s *PowerStatus) Level() uint8 {
	return uint8(s.raw.Load() & 0xF)
}

func (s *PowerStatus) Charging() bool {
	return s.raw.Load()&chargingBit != 0
}

// WaitReport waits up to timeout for the first power frame, returning false
// on timeout. An all-zero frame is indistinguishable from silence, but a
// console with a flat, discharging battery would not be running this code.
func (s *PowerStatus) WaitReport(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for s.raw.Load() == 0 {
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(ackPoll)
	}
	return true
}

// Rendezvous is the exit handshake with the companion: set once by the
// inbound ack handler, polled by the shutdown sequence. There is
// deliberately no timeout - the companion always acknowledges on this
// platform, and exiting without the ack risks cutting power mid-write.
type Rendezvous struct {
	acked atomic.Bool
}

func (r *Rendezvous) Ack()        { r.acked.Store(true) }
func (r *Rendezvous) Acked() bool { return r.acked.Load() }

//one vblank period
const ackPoll = 17 * time.Millisecond

//Wait blocks, polling, until Ack has been called.
func (r *Rendezvous) Wait() {
	for !r.acked.Load() {
		time.Sleep(ackPoll)
	}
}
