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

/*
Package mcprotocol is a client codec for the MELSEC communication protocol
(MC protocol) spoken by Mitsubishi Q, L, QnA, iQ-L and iQ-R series CPUs and
their Ethernet and serial modules.

It builds 3E and 4E request frames in binary or ASCII representation,
sends them over a Transport, and decodes the response or the PLC's end
code. One request is outstanding per connection at a time.

Features:
  - Batch read and write of words and bits
  - Random read and write of scattered word, double-word and bit devices
  - Remote RUN, STOP, PAUSE, latch clear, reset, lock and unlock
  - CPU model query and loopback test
  - Device tables per CPU family, including the iQ-R long devices
  - TCP and serial transports with timeouts derived from the monitoring timer

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-mcprotocol"
	    "github.com/ZaparooProject/go-mcprotocol/transport/tcp"
	)

	client, err := mcprotocol.Connect("192.168.0.10:5007", tcp.Factory,
	    mcprotocol.WithFamily(mcprotocol.FamilyIQR),
	    mcprotocol.WithHeader(mcprotocol.Frame4E),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer client.Close()

	values, err := client.ReadWords("D1000", 4)
	if err != nil {
	    log.Fatal(err)
	}

	err = client.WriteBits("M0", []bool{true, false, true})

Device Names:

Devices are written the way they appear in GX Works: a name followed by a
number in the device's base, e.g. D100, M0, X1F, W0A0, ZR1000. Hex devices
whose number starts with a letter need a leading zero (X0FF).

Errors:

A non-zero end code from the PLC is returned as *ProtocolError; 0xC059 is
*UnsupportedCommandError. Transport failures are *TransportError values
that match ErrTransportTimeout, ErrTransportClosed and friends with
errors.Is. Invalid arguments are rejected before anything is sent and match
ErrInvalidParameter.

Debug logging of every frame is enabled with SetDebugEnabled(true).
*/
package mcprotocol
