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
	"fmt"

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// Remote operation constants
const (
	remoteModeNormal uint16 = 0x0001
	remoteModeForce  uint16 = 0x0003

	// maxEchoLength is the longest loopback test string a CPU accepts.
	maxEchoLength = 960
)

// ClearMode selects which device memory a remote RUN clears first.
type ClearMode byte

const (
	// ClearNone keeps all device memory.
	ClearNone ClearMode = 0
	// ClearOutsideLatch clears everything except the latch range.
	ClearOutsideLatch ClearMode = 1
	// ClearAll clears all device memory including the latch range.
	ClearAll ClearMode = 2
)

func (m ClearMode) String() string {
	switch m {
	case ClearNone:
		return "none"
	case ClearOutsideLatch:
		return "outside-latch"
	case ClearAll:
		return "all"
	default:
		return fmt.Sprintf("ClearMode(%d)", byte(m))
	}
}

// payloadBuilder accumulates a request body in the client's representation
// and keeps the first error.
type payloadBuilder struct {
	err    error
	buf    []byte
	rep    Representation
	family Family
}

// newPayload starts a request body with its command and subcommand.
func (c *Client) newPayload(command, subcommand uint16) *payloadBuilder {
	b := &payloadBuilder{rep: c.access.Representation, family: c.family}
	b.buf = frame.AppendValue(b.buf, b.rep, uint64(command), frame.Word)
	b.buf = frame.AppendValue(b.buf, b.rep, uint64(subcommand), frame.Word)
	return b
}

// wordSubcommand and bitSubcommand pick the family's device access units.
func (c *Client) wordSubcommand() uint16 {
	return device.Capabilities(c.family).WordSubcommand
}

func (c *Client) bitSubcommand() uint16 {
	return device.Capabilities(c.family).BitSubcommand
}

func (b *payloadBuilder) value(v int64, width int, signed bool) *payloadBuilder {
	if b.err != nil {
		return b
	}
	encoded, err := frame.EncodeValue(b.rep, v, width, signed)
	if err != nil {
		b.err = err
		return b
	}
	b.buf = append(b.buf, encoded...)
	return b
}

func (b *payloadBuilder) device(ref device.Reference) *payloadBuilder {
	if b.err != nil {
		return b
	}
	b.buf, b.err = frame.AppendDevice(b.buf, b.rep, b.family, ref)
	return b
}

func (b *payloadBuilder) bits(values []bool) *payloadBuilder {
	if b.err == nil {
		b.buf = frame.AppendBits(b.buf, b.rep, values)
	}
	return b
}

// raw appends bytes that are the same in both representations.
func (b *payloadBuilder) raw(data []byte) *payloadBuilder {
	if b.err == nil {
		b.buf = append(b.buf, data...)
	}
	return b
}

func (b *payloadBuilder) bytes() ([]byte, error) {
	return b.buf, b.err
}

// parseDevice resolves a device token such as "D100" for the client's family.
func (c *Client) parseDevice(token string) (device.Reference, error) {
	ref, err := device.ParseReference(c.family, token)
	if err != nil {
		return device.Reference{}, fmt.Errorf("device %q: %w", token, err)
	}
	return ref, nil
}

func (c *Client) parseDevices(tokens []string) ([]device.Reference, error) {
	refs := make([]device.Reference, 0, len(tokens))
	for _, token := range tokens {
		ref, err := c.parseDevice(token)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// checkCount rejects point counts that are not positive or do not fit the
// count field.
func checkCount(what string, count, width int) error {
	if count <= 0 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidParameter, what, count)
	}
	if err := frame.CheckRange(int64(count), width, false); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// checkASCII validates text sent verbatim in a request.
func checkASCII(what, s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return fmt.Errorf("%w: %s must be ASCII only", ErrInvalidParameter, what)
		}
	}
	return nil
}
