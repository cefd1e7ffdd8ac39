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

// Package frame provides frame encoding, decoding and protocol constants for
// MC protocol 3E and 4E communication
package frame

import "fmt"

// Representation selects how numeric fields are carried on the wire.
type Representation int

const (
	// Binary carries fixed-width little-endian fields.
	Binary Representation = iota
	// ASCII carries fixed-width upper-case hexadecimal text fields.
	ASCII
)

// String returns "binary" or "ascii".
func (r Representation) String() string {
	switch r {
	case Binary:
		return "binary"
	case ASCII:
		return "ascii"
	default:
		return fmt.Sprintf("Representation(%d)", int(r))
	}
}

// Valid reports whether r is Binary or ASCII.
func (r Representation) Valid() bool {
	return r == Binary || r == ASCII
}

// scale is the number of wire bytes used per logical byte.
func (r Representation) scale() int {
	if r == ASCII {
		return 2
	}
	return 1
}

// WordSize is the wire size of one 16-bit field.
func (r Representation) WordSize() int {
	return 2 * r.scale()
}

// Subheader tags. Binary requests put these on the wire high byte first.
const (
	Subheader3E uint16 = 0x5000
	Subheader4E uint16 = 0x5400

	ResponseSubheader3E uint16 = 0xD000
	ResponseSubheader4E uint16 = 0xD400
)

// Command codes.
const (
	CmdBatchRead      uint16 = 0x0401
	CmdBatchWrite     uint16 = 0x1401
	CmdRandomRead     uint16 = 0x0403
	CmdRandomWrite    uint16 = 0x1402
	CmdRemoteRun      uint16 = 0x1001
	CmdRemoteStop     uint16 = 0x1002
	CmdRemotePause    uint16 = 0x1003
	CmdRemoteLatchClr uint16 = 0x1005
	CmdRemoteReset    uint16 = 0x1006
	CmdReadCPUType    uint16 = 0x0101
	CmdRemoteUnlock   uint16 = 0x1630
	CmdRemoteLock     uint16 = 0x1631
	CmdLoopbackTest   uint16 = 0x0619
	SubcommandNone    uint16 = 0x0000
)

// End codes.
const (
	EndCodeOK                 uint16 = 0x0000
	EndCodeUnsupportedCommand uint16 = 0xC059
)

// Limits.
const (
	// MaxFrameLength bounds any frame read from a stream.
	MaxFrameLength = 8192
	// CPUNameLength is the fixed width of the model name in a CPU type reply.
	CPUNameLength = 16
)
