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
	"errors"
	"fmt"
)

// Frame errors
var (
	ErrShortFrame      = errors.New("frame too short")
	ErrMalformedFrame  = errors.New("malformed frame")
	ErrUnknownTag      = errors.New("unknown subheader")
	ErrFrameTooLarge   = errors.New("frame exceeds maximum length")
	ErrSerialMismatch  = errors.New("response serial number does not match request")
	ErrVariantMismatch = errors.New("response header variant does not match request")
)

// ProtocolError is a non-zero end code returned by the PLC.
type ProtocolError struct {
	Code uint16
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mc protocol error: end code 0x%04X", e.Code)
}

// UnsupportedCommandError is end code 0xC059: the CPU or the route to it
// does not implement the command/subcommand pair, which usually means the
// wrong PLC family or frame variant is configured. errors.As also matches
// it as a *ProtocolError.
type UnsupportedCommandError struct {
	ProtocolError
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("mc protocol error: end code 0x%04X: command not supported by the target "+
		"(check PLC family and frame type)", e.Code)
}

// Unwrap exposes the generic protocol error.
func (e *UnsupportedCommandError) Unwrap() error {
	return &e.ProtocolError
}

// StatusError converts an end code to an error; zero is success.
func StatusError(code uint16) error {
	switch code {
	case EndCodeOK:
		return nil
	case EndCodeUnsupportedCommand:
		return &UnsupportedCommandError{ProtocolError{Code: code}}
	default:
		return &ProtocolError{Code: code}
	}
}
