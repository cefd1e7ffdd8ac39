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
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-mcprotocol/device"
)

// DeviceFieldSize is the wire size of an encoded device reference.
func DeviceFieldSize(rep Representation, family device.Family) int {
	caps := device.Capabilities(family)
	if rep == ASCII {
		return caps.MnemonicWidth + caps.TextNumberWidth
	}
	return caps.NumberWidth + caps.CodeWidth
}

// AppendDevice appends the device number and code of ref to dst.
//
// Binary: number (3 bytes, 4 on iQ-R) then code (1 byte, 2 on iQ-R), both
// little-endian. ASCII: padded mnemonic then the number in the device's own
// base, zero-padded to 6 characters (8 on iQ-R).
func AppendDevice(dst []byte, rep Representation, family device.Family, ref device.Reference) ([]byte, error) {
	caps := device.Capabilities(family)

	if rep == ASCII {
		number := strings.ToUpper(strconv.FormatUint(uint64(ref.Offset), ref.Base))
		if len(number) > caps.TextNumberWidth {
			return nil, &ValueRangeError{Value: int64(ref.Offset), Width: caps.TextNumberWidth / 2,
				Reason: fmt.Sprintf("device number %s does not fit %d characters", ref, caps.TextNumberWidth)}
		}
		dst = append(dst, ref.Mnemonic...)
		dst = append(dst, strings.Repeat("0", caps.TextNumberWidth-len(number))...)
		return append(dst, number...), nil
	}

	if uint64(ref.Offset) > mask(caps.NumberWidth) {
		return nil, &ValueRangeError{Value: int64(ref.Offset), Width: caps.NumberWidth,
			Reason: fmt.Sprintf("device number %s exceeds %d bytes", ref, caps.NumberWidth)}
	}
	dst = AppendValue(dst, Binary, uint64(ref.Offset), caps.NumberWidth)
	return AppendValue(dst, Binary, uint64(ref.Code), caps.CodeWidth), nil
}

// ParseDevice decodes a device field produced by AppendDevice. It is the
// server-side inverse used by the virtual PLC and frame dumps.
func ParseDevice(rep Representation, family device.Family, data []byte) (device.Reference, error) {
	caps := device.Capabilities(family)
	if len(data) < DeviceFieldSize(rep, family) {
		return device.Reference{}, fmt.Errorf("%w: device field needs %d bytes, got %d",
			ErrShortFrame, DeviceFieldSize(rep, family), len(data))
	}

	if rep == ASCII {
		mnemonic := string(data[:caps.MnemonicWidth])
		desc, ok := device.LookupMnemonic(family, mnemonic)
		if !ok {
			return device.Reference{}, &device.UnknownDeviceError{Name: mnemonic, Family: family}
		}
		digits := string(data[caps.MnemonicWidth : caps.MnemonicWidth+caps.TextNumberWidth])
		offset, err := strconv.ParseUint(digits, desc.Base, 32)
		if err != nil {
			return device.Reference{}, fmt.Errorf("%w: device number %q", ErrMalformedFrame, digits)
		}
		return device.Reference{Descriptor: desc, Offset: uint32(offset)}, nil
	}

	var offset, code uint64
	for i := caps.NumberWidth - 1; i >= 0; i-- {
		offset = offset<<8 | uint64(data[i])
	}
	for i := caps.CodeWidth - 1; i >= 0; i-- {
		code = code<<8 | uint64(data[caps.NumberWidth+i])
	}
	desc, ok := device.LookupCode(family, uint16(code))
	if !ok {
		return device.Reference{}, &device.UnknownDeviceError{Name: fmt.Sprintf("0x%02X", code), Family: family}
	}
	return device.Reference{Descriptor: desc, Offset: uint32(offset)}, nil
}
