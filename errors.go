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

package mcprotocol

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// Common errors
var (
	// ErrShortResponse is returned when a response ends before its status
	// word or before the data the request asked for.
	ErrShortResponse = frame.ErrShortFrame
	// ErrSerialMismatch is returned when a 4E response echoes a different
	// serial number than the request carried.
	ErrSerialMismatch = frame.ErrSerialMismatch
	// ErrMalformedResponse is returned when a response header cannot be
	// decoded or belongs to the wrong frame variant.
	ErrMalformedResponse = frame.ErrMalformedFrame

	ErrNotConnected     = errors.New("transport not connected")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Transport errors
var (
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportClosed  = errors.New("transport closed")
)

// Codec errors re-exported from the frame and device packages so callers
// only need to import mcprotocol.
type (
	// ProtocolError is a non-zero end code returned by the PLC.
	ProtocolError = frame.ProtocolError
	// UnsupportedCommandError is end code 0xC059.
	UnsupportedCommandError = frame.UnsupportedCommandError
	// ValueRangeError is a value that does not fit its wire field.
	ValueRangeError = frame.ValueRangeError
	// UnknownDeviceError is a device name the configured family does not have.
	UnknownDeviceError = device.UnknownDeviceError
)

// ErrorType classifies transport failures.
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by sending again.
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may succeed on a fresh connection.
	ErrorTypeTransient
	// ErrorTypeTimeout errors are a missing or late response.
	ErrorTypeTimeout
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError wraps a failure of the byte stream under the client. The
// original error is kept unchanged and reachable with errors.Is/As.
type TransportError struct {
	Err  error
	Op   string
	Port string
	Type ErrorType
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("transport %s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:   op,
		Port: port,
		Err:  err,
		Type: errType,
	}
}

// NewTimeoutError creates a timeout error for an exchange that got no reply
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// GetErrorType returns the classification of err. Errors that are not
// transport errors are permanent.
func GetErrorType(err error) ErrorType {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead), errors.Is(err, ErrTransportWrite), errors.Is(err, ErrTransportClosed):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	return err != nil && GetErrorType(err) == ErrorTypeTimeout
}

// ConfigurationError reports an invalid client setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes every ConfigurationError match ErrInvalidParameter.
func (*ConfigurationError) Is(target error) bool {
	return target == ErrInvalidParameter
}
