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
	"time"
)

// Transport defines the interface for the byte stream under a Client.
// This can be implemented by TCP or serial backends. Exchange writes one
// complete request frame and returns exactly one complete response frame;
// implementations find the frame end with frame boundaries, not timing.
type Transport interface {
	// Exchange sends a request frame and waits for its response frame
	Exchange(request []byte) ([]byte, error)

	// Close closes the transport connection
	Close() error

	// SetTimeout sets how long Exchange waits for a response
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportTCP represents an Ethernet connection to the PLC or its
	// Ethernet module.
	TransportTCP TransportType = "tcp"
	// TransportSerial represents a serial line or serial-to-Ethernet bridge
	// carrying the same 3E/4E frames.
	TransportSerial TransportType = "serial"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportFactory opens a transport for an address such as "host:port" or
// a serial device path.
type TransportFactory func(address string) (Transport, error)

// TimeoutForTimer is the transport timeout for a monitoring timer: the
// timer itself plus one second, so a PLC that uses the whole timer still
// answers before the socket gives up.
func TimeoutForTimer(timer uint16) time.Duration {
	return time.Duration(timer)*250*time.Millisecond + time.Second
}
