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

import "fmt"

// Bit-unit transfers in binary carry two points per byte: the even point in
// the high nibble, the odd point in the low nibble.
const (
	evenBitShift = 4
	oddBitShift  = 0
)

// BitDataSize is the wire size of count bit points.
func BitDataSize(rep Representation, count int) int {
	if rep == ASCII {
		return count
	}
	return (count + 1) / 2
}

// AppendBits appends bit points in bit-unit layout: packed nibbles in
// binary, one '0'/'1' digit per point in ASCII.
func AppendBits(dst []byte, rep Representation, bits []bool) []byte {
	if rep == ASCII {
		for _, on := range bits {
			dst = append(dst, EncodeBitDigit(on))
		}
		return dst
	}

	packed := make([]byte, BitDataSize(Binary, len(bits)))
	for i, on := range bits {
		if !on {
			continue
		}
		shift := evenBitShift
		if i%2 == 1 {
			shift = oddBitShift
		}
		packed[i/2] |= 1 << shift
	}
	return append(dst, packed...)
}

// DecodeBits reads count bit points laid out as AppendBits writes them.
func DecodeBits(rep Representation, payload []byte, count int) ([]bool, error) {
	if len(payload) < BitDataSize(rep, count) {
		return nil, fmt.Errorf("%w: %d bit points need %d bytes, got %d",
			ErrShortFrame, count, BitDataSize(rep, count), len(payload))
	}

	bits := make([]bool, count)
	for i := range bits {
		if rep == ASCII {
			on, err := DecodeBitDigit(payload[i])
			if err != nil {
				return nil, err
			}
			bits[i] = on
			continue
		}
		shift := evenBitShift
		if i%2 == 1 {
			shift = oddBitShift
		}
		bits[i] = payload[i/2]&(1<<shift) != 0
	}
	return bits, nil
}
