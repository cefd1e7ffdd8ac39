// go-mcprotocol
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mcprotocol.
//
// go-mcprotocol is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mcprotocol is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mcprotocol; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package testing

import "github.com/ZaparooProject/go-mcprotocol/device"

// Snapshot is a consistent view of the PLC's operating state.
type Snapshot struct {
	CPUName  string `json:"cpu_name"`
	Family   string `json:"family"`
	State    string `json:"state"`
	Requests int    `json:"requests"`
	Pending  int    `json:"pending_end_codes"`
	CPUCode  uint16 `json:"cpu_code"`
	Locked   bool   `json:"locked"`
}

// Snapshot returns the current state under the PLC's lock.
func (p *VirtualPLC) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		CPUName:  p.CPUName,
		CPUCode:  p.CPUCode,
		Family:   p.Family.String(),
		State:    p.State.String(),
		Requests: p.Requests,
		Pending:  len(p.pending),
		Locked:   p.Locked,
	}
}

// ReadWords returns count word-unit values starting at ref as signed 16-bit
// integers, the way a batch word read decodes them.
func (p *VirtualPLC) ReadWords(ref device.Reference, count int) []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, count)
	for i := range out {
		out[i] = int(int16(p.load(ref.Code, wordIndex(ref, i), 16)))
	}
	return out
}

// ReadBits returns count bit-unit points starting at ref.
func (p *VirtualPLC) ReadBits(ref device.Reference, count int) []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bool, count)
	for i := range out {
		out[i] = p.memory[ref.Code][pointIndex(ref, i)]
	}
	return out
}

// WriteWords stores word-unit values starting at ref.
func (p *VirtualPLC) WriteWords(ref device.Reference, values []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, v := range values {
		p.store(ref.Code, wordIndex(ref, i), 16, uint64(uint16(v)))
	}
}

// WriteBits stores bit-unit points starting at ref.
func (p *VirtualPLC) WriteBits(ref device.Reference, values []bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, v := range values {
		p.setBit(ref.Code, pointIndex(ref, i), v)
	}
}
