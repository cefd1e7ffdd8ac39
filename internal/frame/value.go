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
	"encoding/binary"
	"fmt"
	"strconv"
)

// Field widths in logical bytes.
const (
	Byte  = 1
	Word  = 2
	DWord = 4
)

// ValueRangeError reports a value that cannot be carried in a field, or
// field bytes that cannot be decoded.
type ValueRangeError struct {
	Reason string
	Value  int64
	Width  int
	Signed bool
}

func (e *ValueRangeError) Error() string {
	kind := "unsigned"
	if e.Signed {
		kind = "signed"
	}
	if e.Reason != "" {
		return fmt.Sprintf("value out of range for %d-byte %s field: %s", e.Width, kind, e.Reason)
	}
	return fmt.Sprintf("value %d out of range for %d-byte %s field", e.Value, e.Width, kind)
}

func validWidth(width int) bool {
	return width == Byte || width == Word || width == DWord
}

// valueBounds returns the inclusive range a field can hold.
func valueBounds(width int, signed bool) (lo, hi int64) {
	bits := uint(width * 8)
	if signed {
		return -(int64(1) << (bits - 1)), int64(1)<<(bits-1) - 1
	}
	return 0, int64(1)<<bits - 1
}

// CheckRange reports whether v fits a width/signedness without encoding it.
func CheckRange(v int64, width int, signed bool) error {
	if !validWidth(width) {
		return &ValueRangeError{Value: v, Width: width, Signed: signed, Reason: "unsupported width"}
	}
	lo, hi := valueBounds(width, signed)
	if v < lo || v > hi {
		return &ValueRangeError{Value: v, Width: width, Signed: signed}
	}
	return nil
}

// EncodeValue renders v as a width-byte field. Binary output is
// little-endian two's complement; ASCII output is the same bit pattern as
// 2*width upper-case hex digits.
func EncodeValue(rep Representation, v int64, width int, signed bool) ([]byte, error) {
	if err := CheckRange(v, width, signed); err != nil {
		return nil, err
	}
	return AppendValue(nil, rep, uint64(v)&mask(width), width), nil
}

// AppendValue appends an already range-checked unsigned field to dst.
func AppendValue(dst []byte, rep Representation, v uint64, width int) []byte {
	v &= mask(width)
	if rep == ASCII {
		return fmt.Appendf(dst, "%0*X", 2*width, v)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:width]...)
}

// DecodeValue reads a width-byte field. When signed is set the value is
// sign-extended from the field's top bit.
func DecodeValue(rep Representation, data []byte, width int, signed bool) (int64, error) {
	if !validWidth(width) {
		return 0, &ValueRangeError{Width: width, Signed: signed, Reason: "unsupported width"}
	}

	var raw uint64
	switch rep {
	case ASCII:
		if len(data) != 2*width {
			return 0, &ValueRangeError{Width: width, Signed: signed,
				Reason: fmt.Sprintf("need %d hex digits, got %d", 2*width, len(data))}
		}
		parsed, err := strconv.ParseUint(string(data), 16, 64)
		if err != nil {
			return 0, &ValueRangeError{Width: width, Signed: signed,
				Reason: fmt.Sprintf("%q is not hexadecimal", data)}
		}
		raw = parsed
	default:
		if len(data) != width {
			return 0, &ValueRangeError{Width: width, Signed: signed,
				Reason: fmt.Sprintf("need %d bytes, got %d", width, len(data))}
		}
		var buf [8]byte
		copy(buf[:], data)
		raw = binary.LittleEndian.Uint64(buf[:])
	}

	if signed {
		return signExtend(raw, width), nil
	}
	return int64(raw), nil
}

// EncodeBitDigit renders a bit as the single ASCII digit used by text-mode
// bit transfers.
func EncodeBitDigit(on bool) byte {
	if on {
		return '1'
	}
	return '0'
}

// DecodeBitDigit parses a text-mode bit digit.
func DecodeBitDigit(c byte) (bool, error) {
	switch c {
	case '0':
		return false, nil
	case '1':
		return true, nil
	default:
		return false, &ValueRangeError{Width: Byte, Reason: fmt.Sprintf("bit digit %q is not 0 or 1", c)}
	}
}

func mask(width int) uint64 {
	return uint64(1)<<(uint(width)*8) - 1
}

func signExtend(raw uint64, width int) int64 {
	shift := 64 - uint(width)*8
	return int64(raw<<shift) >> shift
}
