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

	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// ReadWords reads count consecutive 16-bit words starting at head, for
// example ReadWords("D1000", 3). Bit devices are read sixteen points per
// word, lowest point in bit 0.
func (c *Client) ReadWords(head string, count int) ([]int, error) {
	return c.ReadWordsContext(context.Background(), head, count)
}

// ReadWordsContext is ReadWords with context support.
func (c *Client) ReadWordsContext(ctx context.Context, head string, count int) ([]int, error) {
	if err := checkCount("word count", count, frame.Word); err != nil {
		return nil, err
	}
	ref, err := c.parseDevice(head)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(frame.CmdBatchRead, c.wordSubcommand()).
		device(ref).
		value(int64(count), frame.Word, false).
		bytes()
	if err != nil {
		return nil, err
	}

	data, err := c.execute(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("batch read %s x%d: %w", ref, count, err)
	}
	return frame.DecodeWords(c.access.Representation, data, count)
}

// ReadBits reads count consecutive bit points starting at head.
func (c *Client) ReadBits(head string, count int) ([]bool, error) {
	return c.ReadBitsContext(context.Background(), head, count)
}

// ReadBitsContext is ReadBits with context support.
func (c *Client) ReadBitsContext(ctx context.Context, head string, count int) ([]bool, error) {
	if err := checkCount("bit count", count, frame.Word); err != nil {
		return nil, err
	}
	ref, err := c.parseDevice(head)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(frame.CmdBatchRead, c.bitSubcommand()).
		device(ref).
		value(int64(count), frame.Word, false).
		bytes()
	if err != nil {
		return nil, err
	}

	data, err := c.execute(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("batch read %s x%d bits: %w", ref, count, err)
	}
	return frame.DecodeBits(c.access.Representation, data, count)
}

// WriteWords writes signed 16-bit values to consecutive words starting at
// head. Values outside -32768..32767 are rejected with a ValueRangeError
// before anything is sent.
func (c *Client) WriteWords(head string, values []int) error {
	return c.WriteWordsContext(context.Background(), head, values)
}

// WriteWordsContext is WriteWords with context support.
func (c *Client) WriteWordsContext(ctx context.Context, head string, values []int) error {
	if err := checkCount("word count", len(values), frame.Word); err != nil {
		return err
	}
	ref, err := c.parseDevice(head)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.newPayload(frame.CmdBatchWrite, c.wordSubcommand()).
		device(ref).
		value(int64(len(values)), frame.Word, false)
	for _, v := range values {
		b.value(int64(v), frame.Word, true)
	}
	payload, err := b.bytes()
	if err != nil {
		return err
	}

	if _, err := c.execute(ctx, payload); err != nil {
		return fmt.Errorf("batch write %s x%d: %w", ref, len(values), err)
	}
	return nil
}

// WriteBits writes consecutive bit points starting at head.
func (c *Client) WriteBits(head string, values []bool) error {
	return c.WriteBitsContext(context.Background(), head, values)
}

// WriteBitsContext is WriteBits with context support.
func (c *Client) WriteBitsContext(ctx context.Context, head string, values []bool) error {
	if err := checkCount("bit count", len(values), frame.Word); err != nil {
		return err
	}
	ref, err := c.parseDevice(head)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(frame.CmdBatchWrite, c.bitSubcommand()).
		device(ref).
		value(int64(len(values)), frame.Word, false).
		bits(values).
		bytes()
	if err != nil {
		return err
	}

	if _, err := c.execute(ctx, payload); err != nil {
		return fmt.Errorf("batch write %s x%d bits: %w", ref, len(values), err)
	}
	return nil
}
