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

import (
	"strings"

	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// header mirrors the request header the client sends by default.
func header(v frame.Variant, rep frame.Representation, serial uint16) frame.Header {
	return frame.Header{Variant: v, Representation: rep, Routing: frame.DefaultRouting(), Serial: serial}
}

// BuildResponse creates a successful response carrying data, which must be
// encoded in rep already.
func BuildResponse(v frame.Variant, rep frame.Representation, serial uint16, data []byte) []byte {
	return frame.AssembleResponse(header(v, rep, serial), frame.EndCodeOK, data)
}

// BuildErrorResponse creates a response with a non-zero end code
func BuildErrorResponse(v frame.Variant, rep frame.Representation, serial uint16, code uint16) []byte {
	return frame.AssembleResponse(header(v, rep, serial), code, nil)
}

// BuildWordsResponse creates a batch or random read response for words
func BuildWordsResponse(v frame.Variant, rep frame.Representation, words ...int) []byte {
	var data []byte
	for _, w := range words {
		data = frame.AppendValue(data, rep, uint64(w), frame.Word)
	}
	return BuildResponse(v, rep, 0, data)
}

// BuildCPUTypeResponse creates a CPU type reply with the name padded to
// sixteen characters
func BuildCPUTypeResponse(v frame.Variant, rep frame.Representation, name string, code uint16) []byte {
	data := []byte(name + strings.Repeat(" ", frame.CPUNameLength-len(name)))
	data = frame.AppendValue(data, rep, uint64(code), frame.Word)
	return BuildResponse(v, rep, 0, data)
}

// Sample device tokens for testing
const (
	TestWordDevice  = "D1000"
	TestBitDevice   = "M30"
	TestHexDevice   = "X0FFF"
	TestIQRPassword = "mcpass"
	TestQPassword   = "abcd"
)
