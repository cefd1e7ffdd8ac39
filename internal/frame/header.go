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

package frame

import (
	"fmt"
)

// Variant is the frame header format.
type Variant int

const (
	// Frame3E has a 2-byte subheader followed directly by routing fields.
	Frame3E Variant = iota
	// Frame4E adds a serial number and a reserved word after the subheader.
	Frame4E
)

// String returns "3E" or "4E".
func (v Variant) String() string {
	switch v {
	case Frame3E:
		return "3E"
	case Frame4E:
		return "4E"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Valid reports whether v is Frame3E or Frame4E.
func (v Variant) Valid() bool {
	return v == Frame3E || v == Frame4E
}

// Layout describes where the header fields of one variant sit. Both
// variants share every field encoder; they differ only in the tags and in
// whether the serial block is present.
type Layout struct {
	RequestTag  uint16
	ResponseTag uint16
	Variant     Variant
	HasSerial   bool
}

var layouts = [...]Layout{
	Frame3E: {Variant: Frame3E, RequestTag: Subheader3E, ResponseTag: ResponseSubheader3E},
	Frame4E: {Variant: Frame4E, RequestTag: Subheader4E, ResponseTag: ResponseSubheader4E, HasSerial: true},
}

// LayoutFor returns the layout of a variant. Unknown variants get the 3E
// layout; callers validate variants before building frames.
func LayoutFor(v Variant) Layout {
	if v.Valid() {
		return layouts[v]
	}
	return layouts[Frame3E]
}

// headerBytes is the logical size of everything up to and including the
// data length field: subheader, optional serial block, five routing bytes
// and the length word.
func (l Layout) headerBytes() int {
	n := 2 + 5 + 2
	if l.HasSerial {
		n += 4
	}
	return n
}

// HeaderSize is the wire size of the header up to and including the data
// length field.
func (l Layout) HeaderSize(rep Representation) int {
	return l.headerBytes() * rep.scale()
}

// StatusOffset is where the end code starts in a response: 9 (3E binary),
// 18 (3E ascii), 13 (4E binary) or 26 (4E ascii).
func (l Layout) StatusOffset(rep Representation) int {
	return l.HeaderSize(rep)
}

// PayloadOffset is where response data starts, right after the end code.
func (l Layout) PayloadOffset(rep Representation) int {
	return l.StatusOffset(rep) + rep.WordSize()
}

// Routing addresses the target CPU and carries the monitoring timer.
type Routing struct {
	Network       uint8
	Station       uint8
	ModuleIO      uint16
	ModuleStation uint8
	// Timer is the PLC-side monitoring timer in 250 ms units; 0 waits forever.
	Timer uint16
}

// DefaultRouting addresses the directly connected CPU with a one second
// monitoring timer.
func DefaultRouting() Routing {
	return Routing{
		Network:       0x00,
		Station:       0xFF,
		ModuleIO:      0x03FF,
		ModuleStation: 0x00,
		Timer:         4,
	}
}

// Header holds the per-frame header values.
type Header struct {
	Routing        Routing
	Variant        Variant
	Representation Representation
	Serial         uint16
}

// appendTag writes a subheader. Binary tags go high byte first, unlike
// every other field.
func appendTag(dst []byte, rep Representation, tag uint16) []byte {
	if rep == ASCII {
		return AppendValue(dst, ASCII, uint64(tag), Word)
	}
	return append(dst, byte(tag>>8), byte(tag))
}

// Assemble builds a complete request frame around payload, which must
// already be encoded in h.Representation.
func Assemble(h Header, payload []byte) []byte {
	layout := LayoutFor(h.Variant)
	rep := h.Representation

	out := make([]byte, 0, layout.HeaderSize(rep)+rep.WordSize()+len(payload))
	out = appendTag(out, rep, layout.RequestTag)
	if layout.HasSerial {
		out = AppendValue(out, rep, uint64(h.Serial), Word)
		out = AppendValue(out, rep, 0, Word)
	}
	out = AppendValue(out, rep, uint64(h.Routing.Network), Byte)
	out = AppendValue(out, rep, uint64(h.Routing.Station), Byte)
	out = AppendValue(out, rep, uint64(h.Routing.ModuleIO), Word)
	out = AppendValue(out, rep, uint64(h.Routing.ModuleStation), Byte)
	out = AppendValue(out, rep, uint64(rep.WordSize()+len(payload)), Word)
	out = AppendValue(out, rep, uint64(h.Routing.Timer), Word)
	return append(out, payload...)
}

// AssembleResponse builds a response frame; used by the virtual PLC.
func AssembleResponse(h Header, status uint16, payload []byte) []byte {
	layout := LayoutFor(h.Variant)
	rep := h.Representation

	out := make([]byte, 0, layout.PayloadOffset(rep)+len(payload))
	out = appendTag(out, rep, layout.ResponseTag)
	if layout.HasSerial {
		out = AppendValue(out, rep, uint64(h.Serial), Word)
		out = AppendValue(out, rep, 0, Word)
	}
	out = AppendValue(out, rep, uint64(h.Routing.Network), Byte)
	out = AppendValue(out, rep, uint64(h.Routing.Station), Byte)
	out = AppendValue(out, rep, uint64(h.Routing.ModuleIO), Word)
	out = AppendValue(out, rep, uint64(h.Routing.ModuleStation), Byte)
	out = AppendValue(out, rep, uint64(rep.WordSize()+len(payload)), Word)
	out = AppendValue(out, rep, uint64(status), Word)
	return append(out, payload...)
}
