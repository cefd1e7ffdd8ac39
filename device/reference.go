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

package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidReference is returned for tokens without a usable device number.
var ErrInvalidReference = errors.New("invalid device reference")

// Reference is a device plus a numeric offset, e.g. D1000 or X1F.
type Reference struct {
	Descriptor
	Offset uint32
}

// String renders the reference the way an operator would type it.
func (r Reference) String() string {
	if r.Base == 16 {
		return r.Name + strings.ToUpper(strconv.FormatUint(uint64(r.Offset), 16))
	}
	return r.Name + strconv.FormatUint(uint64(r.Offset), 10)
}

// ParseReference splits a token such as "D1000" or "x0ff" into device name
// and number and resolves it for the family. The name is the leading run of
// non-digit characters; the remainder is read in the device's base, so hex
// numbers starting with a letter need a leading zero (X0FFF, not XFFF).
func ParseReference(f Family, token string) (Reference, error) {
	token = strings.ToUpper(strings.TrimSpace(token))

	split := strings.IndexAny(token, "0123456789")
	if split < 0 && token != "" {
		// No digits at all: either a bare device name or a hex number
		// glued to the name (XFFF).
		if _, err := Resolve(f, token); err != nil {
			return Reference{}, err
		}
		return Reference{}, fmt.Errorf("%w: %q has no device number", ErrInvalidReference, token)
	}
	if split <= 0 {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, token)
	}

	desc, err := Resolve(f, token[:split])
	if err != nil {
		return Reference{}, err
	}

	offset, err := strconv.ParseUint(token[split:], desc.Base, 32)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %q: device number %q is not base %d",
			ErrInvalidReference, token, token[split:], desc.Base)
	}

	return Reference{Descriptor: desc, Offset: uint32(offset)}, nil
}

// MustParseReference is ParseReference for fixed tokens in tests and
// examples; it panics on error.
func MustParseReference(f Family, token string) Reference {
	ref, err := ParseReference(f, token)
	if err != nil {
		panic(err)
	}
	return ref
}
