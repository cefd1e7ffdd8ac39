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

// Package testing provides an in-memory PLC and canned frames for tests.
package testing

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// End codes returned by the virtual PLC besides success and 0xC059.
const (
	EndCodeRequestError     uint16 = 0xC05C
	EndCodePasswordMismatch uint16 = 0xC810
)

// ErrNoReply is returned by Handle when the PLC drops a request without
// answering, as a CPU does while it resets.
var ErrNoReply = errors.New("virtual plc sent no reply")

// CPUState is the operating state changed by remote commands.
type CPUState int

const (
	StateRun CPUState = iota
	StateStop
	StatePause
)

func (s CPUState) String() string {
	switch s {
	case StateRun:
		return "RUN"
	case StateStop:
		return "STOP"
	case StatePause:
		return "PAUSE"
	default:
		return fmt.Sprintf("CPUState(%d)", int(s))
	}
}

// VirtualPLC simulates a CPU for one family. Device memory is bit
// addressed per device code: bit device point n is bit n, word device
// offset n covers bits 16n to 16n+15. Reading M40 as a word therefore sees
// M40..M55, the same way a real CPU does.
type VirtualPLC struct {
	memory map[uint16]map[uint32]bool
	// CPUName and CPUCode answer the CPU type query.
	CPUName string
	// Password is compared by remote lock and unlock.
	Password   string
	pending    []uint16
	Family     device.Family
	Requests   int
	State      CPUState
	CPUCode    uint16
	mu         sync.Mutex
	Locked     bool
	ResetReply bool
}

// NewVirtualPLC creates a running PLC of the given family with empty
// device memory.
func NewVirtualPLC(family device.Family) *VirtualPLC {
	name, code := "Q03UDVCPU", uint16(0x0366)
	if family == device.FamilyIQR {
		name, code = "R04CPU", uint16(0x4800)
	}
	return &VirtualPLC{
		memory:  make(map[uint16]map[uint32]bool),
		Family:  family,
		CPUName: name,
		CPUCode: code,
	}
}

// InjectEndCode makes the next request fail with code. Calls queue.
func (p *VirtualPLC) InjectEndCode(code uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, code)
}

// Bit returns one point of device memory.
func (p *VirtualPLC) Bit(code uint16, index uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memory[code][index]
}

// SetBit sets one point of device memory.
func (p *VirtualPLC) SetBit(code uint16, index uint32, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setBit(code, index, on)
}

// Handle answers one request frame with one response frame. It returns
// ErrNoReply when the PLC stays silent, and an error for frames it cannot
// even parse.
func (p *VirtualPLC) Handle(raw []byte) ([]byte, error) {
	req, err := frame.ParseRequest(raw)
	if err != nil {
		return nil, fmt.Errorf("virtual plc: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests++

	if len(p.pending) > 0 {
		code := p.pending[0]
		p.pending = p.pending[1:]
		return frame.AssembleResponse(req.Header, code, nil), nil
	}

	r := &reader{rep: req.Header.Representation, family: p.Family, data: req.Payload}
	command := uint16(r.uint(frame.Word))
	subcommand := uint16(r.uint(frame.Word))
	if r.err != nil {
		return frame.AssembleResponse(req.Header, EndCodeRequestError, nil), nil
	}

	data, status := p.dispatch(r, command, subcommand)
	if status == frame.EndCodeOK && r.err != nil {
		status = EndCodeRequestError
		data = nil
	}
	if command == frame.CmdRemoteReset && status == frame.EndCodeOK && !p.ResetReply {
		return nil, ErrNoReply
	}
	return frame.AssembleResponse(req.Header, status, data), nil
}

func (p *VirtualPLC) dispatch(r *reader, command, subcommand uint16) ([]byte, uint16) {
	caps := device.Capabilities(p.Family)
	rep := r.rep

	switch command {
	case frame.CmdBatchRead, frame.CmdBatchWrite, frame.CmdRandomRead, frame.CmdRandomWrite:
		if subcommand != caps.WordSubcommand && subcommand != caps.BitSubcommand {
			return nil, frame.EndCodeUnsupportedCommand
		}
	}
	bitUnits := subcommand == caps.BitSubcommand

	switch command {
	case frame.CmdBatchRead:
		ref := r.device()
		count := int(r.uint(frame.Word))
		if r.err != nil {
			return nil, EndCodeRequestError
		}
		if bitUnits {
			bits := make([]bool, count)
			for i := range bits {
				bits[i] = p.memory[ref.Code][pointIndex(ref, 0)+uint32(i)]
			}
			return frame.AppendBits(nil, rep, bits), frame.EndCodeOK
		}
		var out []byte
		for i := 0; i < count; i++ {
			out = frame.AppendValue(out, rep, p.load(ref.Code, wordIndex(ref, i), 16), frame.Word)
		}
		return out, frame.EndCodeOK

	case frame.CmdBatchWrite:
		ref := r.device()
		count := int(r.uint(frame.Word))
		if r.err != nil {
			return nil, EndCodeRequestError
		}
		if bitUnits {
			bits, err := frame.DecodeBits(rep, r.rest(), count)
			if err != nil {
				return nil, EndCodeRequestError
			}
			for i, on := range bits {
				p.setBit(ref.Code, pointIndex(ref, 0)+uint32(i), on)
			}
			return nil, frame.EndCodeOK
		}
		for i := 0; i < count; i++ {
			v := r.uint(frame.Word)
			if r.err != nil {
				return nil, EndCodeRequestError
			}
			p.store(ref.Code, wordIndex(ref, i), 16, v)
		}
		return nil, frame.EndCodeOK

	case frame.CmdRandomRead:
		words := int(r.uint(frame.Byte))
		dwords := int(r.uint(frame.Byte))
		var out []byte
		for i := 0; i < words+dwords; i++ {
			ref := r.device()
			if r.err != nil {
				return nil, EndCodeRequestError
			}
			if i < words {
				out = frame.AppendValue(out, rep, p.load(ref.Code, wordIndex(ref, 0), 16), frame.Word)
			} else {
				out = frame.AppendValue(out, rep, p.load(ref.Code, wordIndex(ref, 0), 32), frame.DWord)
			}
		}
		return out, frame.EndCodeOK

	case frame.CmdRandomWrite:
		if bitUnits {
			count := int(r.uint(frame.Byte))
			for i := 0; i < count; i++ {
				ref := r.device()
				v := r.uint(caps.RandomBitValueWidth)
				if r.err != nil {
					return nil, EndCodeRequestError
				}
				p.setBit(ref.Code, pointIndex(ref, 0), v != 0)
			}
			return nil, frame.EndCodeOK
		}
		words := int(r.uint(frame.Byte))
		dwords := int(r.uint(frame.Byte))
		for i := 0; i < words+dwords; i++ {
			ref := r.device()
			width := frame.Word
			if i >= words {
				width = frame.DWord
			}
			v := r.uint(width)
			if r.err != nil {
				return nil, EndCodeRequestError
			}
			p.store(ref.Code, wordIndex(ref, 0), width*8, v)
		}
		return nil, frame.EndCodeOK

	case frame.CmdRemoteRun:
		r.uint(frame.Word)
		if mode := r.uint(frame.Byte); mode > 0 {
			p.memory = make(map[uint16]map[uint32]bool)
		}
		p.State = StateRun
		return nil, frame.EndCodeOK

	case frame.CmdRemoteStop, frame.CmdRemoteReset:
		r.uint(frame.Word)
		p.State = StateStop
		if command == frame.CmdRemoteReset {
			p.State = StateRun
		}
		return nil, frame.EndCodeOK

	case frame.CmdRemotePause:
		r.uint(frame.Word)
		p.State = StatePause
		return nil, frame.EndCodeOK

	case frame.CmdRemoteLatchClr:
		r.uint(frame.Word)
		return nil, frame.EndCodeOK

	case frame.CmdReadCPUType:
		name := p.CPUName + strings.Repeat(" ", max(0, frame.CPUNameLength-len(p.CPUName)))
		out := []byte(name[:frame.CPUNameLength])
		return frame.AppendValue(out, rep, uint64(p.CPUCode), frame.Word), frame.EndCodeOK

	case frame.CmdRemoteUnlock, frame.CmdRemoteLock:
		n := int(r.uint(frame.Word))
		password := r.text(n)
		if r.err != nil {
			return nil, EndCodeRequestError
		}
		if password != p.Password {
			return nil, EndCodePasswordMismatch
		}
		p.Locked = command == frame.CmdRemoteLock
		return nil, frame.EndCodeOK

	case frame.CmdLoopbackTest:
		n := int(r.uint(frame.Word))
		data := r.text(n)
		if r.err != nil {
			return nil, EndCodeRequestError
		}
		return append(frame.AppendValue(nil, rep, uint64(n), frame.Word), data...), frame.EndCodeOK

	default:
		return nil, frame.EndCodeUnsupportedCommand
	}
}

// pointIndex is the memory bit of the i-th bit-unit point from ref.
func pointIndex(ref device.Reference, i int) uint32 {
	if ref.Kind == device.KindBit {
		return ref.Offset + uint32(i)
	}
	return ref.Offset*16 + uint32(i)
}

// wordIndex is the first memory bit of the i-th word-unit value from ref.
func wordIndex(ref device.Reference, i int) uint32 {
	if ref.Kind == device.KindBit {
		return ref.Offset + uint32(i)*16
	}
	return (ref.Offset + uint32(i)) * 16
}

func (p *VirtualPLC) load(code uint16, first uint32, bits int) uint64 {
	var v uint64
	for i := 0; i < bits; i++ {
		if p.memory[code][first+uint32(i)] {
			v |= 1 << i
		}
	}
	return v
}

func (p *VirtualPLC) store(code uint16, first uint32, bits int, v uint64) {
	for i := 0; i < bits; i++ {
		p.setBit(code, first+uint32(i), v&(1<<i) != 0)
	}
}

func (p *VirtualPLC) setBit(code uint16, index uint32, on bool) {
	points, ok := p.memory[code]
	if !ok {
		points = make(map[uint32]bool)
		p.memory[code] = points
	}
	if on {
		points[index] = true
	} else {
		delete(points, index)
	}
}

// reader walks a request payload and keeps the first error.
type reader struct {
	err    error
	data   []byte
	rep    frame.Representation
	family device.Family
	pos    int
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = frame.ErrShortFrame
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) uint(width int) uint64 {
	size := width
	if r.rep == frame.ASCII {
		size *= 2
	}
	b := r.take(size)
	if r.err != nil {
		return 0
	}
	v, err := frame.DecodeValue(r.rep, b, width, false)
	if err != nil {
		r.err = err
		return 0
	}
	return uint64(v)
}

func (r *reader) device() device.Reference {
	b := r.take(frame.DeviceFieldSize(r.rep, r.family))
	if r.err != nil {
		return device.Reference{}
	}
	ref, err := frame.ParseDevice(r.rep, r.family, b)
	if err != nil {
		r.err = err
	}
	return ref
}

func (r *reader) text(n int) string {
	return string(r.take(n))
}

func (r *reader) rest() []byte {
	if r.err != nil {
		return nil
	}
	return r.data[r.pos:]
}
