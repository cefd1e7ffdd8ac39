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
	"context"
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// CPUType is the reply to a CPU model query.
type CPUType struct {
	// Name is the model name with padding spaces removed, e.g. "Q03UDVCPU".
	Name string
	// Code is the four digit model code in upper-case hex, e.g. "0366".
	Code string
}

// ReadCPUType asks the CPU for its model name and code.
func (c *Client) ReadCPUType() (CPUType, error) {
	return c.ReadCPUTypeContext(context.Background())
}

// ReadCPUTypeContext is ReadCPUType with context support.
func (c *Client) ReadCPUTypeContext(ctx context.Context) (CPUType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(frame.CmdReadCPUType, frame.SubcommandNone).bytes()
	if err != nil {
		return CPUType{}, err
	}
	data, err := c.execute(ctx, payload)
	if err != nil {
		return CPUType{}, fmt.Errorf("read cpu type: %w", err)
	}

	rep := c.access.Representation
	if len(data) < frame.CPUNameLength+rep.WordSize() {
		return CPUType{}, fmt.Errorf("%w: cpu type reply has %d bytes", ErrShortResponse, len(data))
	}

	code, err := frame.DecodeValue(rep, data[frame.CPUNameLength:frame.CPUNameLength+rep.WordSize()], frame.Word, false)
	if err != nil {
		return CPUType{}, fmt.Errorf("cpu type code: %w", err)
	}
	return CPUType{
		Name: strings.ReplaceAll(string(data[:frame.CPUNameLength]), " ", ""),
		Code: fmt.Sprintf("%04X", code),
	}, nil
}

// EchoTest sends data through the CPU's loopback test and returns what came
// back. data must be 1 to 960 ASCII characters.
func (c *Client) EchoTest(data string) (string, error) {
	return c.EchoTestContext(context.Background(), data)
}

// EchoTestContext is EchoTest with context support.
func (c *Client) EchoTestContext(ctx context.Context, data string) (string, error) {
	if err := checkASCII("echo data", data); err != nil {
		return "", err
	}
	if len(data) < 1 || len(data) > maxEchoLength {
		return "", fmt.Errorf("%w: echo data must be 1 to %d characters, got %d",
			ErrInvalidParameter, maxEchoLength, len(data))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(frame.CmdLoopbackTest, frame.SubcommandNone).
		value(int64(len(data)), frame.Word, false).
		raw([]byte(data)).
		bytes()
	if err != nil {
		return "", err
	}
	reply, err := c.execute(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("echo test: %w", err)
	}

	rep := c.access.Representation
	if len(reply) < rep.WordSize() {
		return "", fmt.Errorf("%w: echo reply has %d bytes", ErrShortResponse, len(reply))
	}
	n, err := frame.DecodeValue(rep, reply[:rep.WordSize()], frame.Word, false)
	if err != nil {
		return "", fmt.Errorf("echo length: %w", err)
	}
	echoed := reply[rep.WordSize():]
	if int(n) > len(echoed) {
		return "", fmt.Errorf("%w: echo reply announces %d characters, carries %d", ErrShortResponse, n, len(echoed))
	}
	return string(echoed[:n]), nil
}
