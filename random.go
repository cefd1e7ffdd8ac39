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

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// RandomRead reads scattered devices in one request: each of wordDevices
// as a 16-bit word and each of dwordDevices as a 32-bit double word. Both
// results are signed. Either list may be empty but not both.
func (c *Client) RandomRead(wordDevices, dwordDevices []string) (words, dwords []int, err error) {
	return c.RandomReadContext(context.Background(), wordDevices, dwordDevices)
}

// RandomReadContext is RandomRead with context support.
func (c *Client) RandomReadContext(
	ctx context.Context, wordDevices, dwordDevices []string,
) (words, dwords []int, err error) {
	if err := checkRandomCounts(len(wordDevices), len(dwordDevices)); err != nil {
		return nil, nil, err
	}
	wordRefs, err := c.parseDevices(wordDevices)
	if err != nil {
		return nil, nil, err
	}
	dwordRefs, err := c.parseDevices(dwordDevices)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.newPayload(frame.CmdRandomRead, c.wordSubcommand()).
		value(int64(len(wordRefs)), frame.Byte, false).
		value(int64(len(dwordRefs)), frame.Byte, false)
	for _, ref := range wordRefs {
		b.device(ref)
	}
	for _, ref := range dwordRefs {
		b.device(ref)
	}
	payload, err := b.bytes()
	if err != nil {
		return nil, nil, err
	}

	data, err := c.execute(ctx, payload)
	if err != nil {
		return nil, nil, fmt.Errorf("random read %d words, %d dwords: %w", len(wordRefs), len(dwordRefs), err)
	}

	rep := c.access.Representation
	words, err = frame.DecodeWords(rep, data, len(wordRefs))
	if err != nil {
		return nil, nil, err
	}
	dwords, err = frame.DecodeDWords(rep, data[len(wordRefs)*rep.WordSize():], len(dwordRefs))
	if err != nil {
		return nil, nil, err
	}
	return words, dwords, nil
}

// RandomWrite writes scattered devices in one request. wordValues pair
// with wordDevices and dwordValues with dwordDevices; the lengths must
// match.
func (c *Client) RandomWrite(wordDevices []string, wordValues []int, dwordDevices []string, dwordValues []int) error {
	return c.RandomWriteContext(context.Background(), wordDevices, wordValues, dwordDevices, dwordValues)
}

// RandomWriteContext is RandomWrite with context support.
func (c *Client) RandomWriteContext(
	ctx context.Context, wordDevices []string, wordValues []int, dwordDevices []string, dwordValues []int,
) error {
	if len(wordDevices) != len(wordValues) {
		return fmt.Errorf("%w: %d word devices but %d word values",
			ErrInvalidParameter, len(wordDevices), len(wordValues))
	}
	if len(dwordDevices) != len(dwordValues) {
		return fmt.Errorf("%w: %d dword devices but %d dword values",
			ErrInvalidParameter, len(dwordDevices), len(dwordValues))
	}
	if err := checkRandomCounts(len(wordDevices), len(dwordDevices)); err != nil {
		return err
	}
	wordRefs, err := c.parseDevices(wordDevices)
	if err != nil {
		return err
	}
	dwordRefs, err := c.parseDevices(dwordDevices)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.newPayload(frame.CmdRandomWrite, c.wordSubcommand()).
		value(int64(len(wordRefs)), frame.Byte, false).
		value(int64(len(dwordRefs)), frame.Byte, false)
	for i, ref := range wordRefs {
		b.device(ref).value(int64(wordValues[i]), frame.Word, true)
	}
	for i, ref := range dwordRefs {
		b.device(ref).value(int64(dwordValues[i]), frame.DWord, true)
	}
	payload, err := b.bytes()
	if err != nil {
		return err
	}

	if _, err := c.execute(ctx, payload); err != nil {
		return fmt.Errorf("random write %d words, %d dwords: %w", len(wordRefs), len(dwordRefs), err)
	}
	return nil
}

// RandomWriteBits sets or resets scattered bit devices in one request.
// Every device must be a bit device.
func (c *Client) RandomWriteBits(devices []string, values []bool) error {
	return c.RandomWriteBitsContext(context.Background(), devices, values)
}

// RandomWriteBitsContext is RandomWriteBits with context support.
func (c *Client) RandomWriteBitsContext(ctx context.Context, devices []string, values []bool) error {
	if len(devices) != len(values) {
		return fmt.Errorf("%w: %d bit devices but %d values", ErrInvalidParameter, len(devices), len(values))
	}
	if err := checkCount("bit device count", len(devices), frame.Byte); err != nil {
		return err
	}
	refs, err := c.parseDevices(devices)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if ref.Kind != device.KindBit {
			return fmt.Errorf("%w: %s is a %s device, random bit write needs bit devices",
				ErrInvalidParameter, ref, ref.Kind)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	width := device.Capabilities(c.family).RandomBitValueWidth
	b := c.newPayload(frame.CmdRandomWrite, c.bitSubcommand()).
		value(int64(len(refs)), frame.Byte, false)
	for i, ref := range refs {
		var v int64
		if values[i] {
			v = 1
		}
		b.device(ref).value(v, width, false)
	}
	payload, err := b.bytes()
	if err != nil {
		return err
	}

	if _, err := c.execute(ctx, payload); err != nil {
		return fmt.Errorf("random bit write %d devices: %w", len(refs), err)
	}
	return nil
}

func checkRandomCounts(words, dwords int) error {
	if words+dwords == 0 {
		return fmt.Errorf("%w: random access needs at least one device", ErrInvalidParameter)
	}
	if err := frame.CheckRange(int64(words), frame.Byte, false); err != nil {
		return fmt.Errorf("word device count: %w", err)
	}
	if err := frame.CheckRange(int64(dwords), frame.Byte, false); err != nil {
		return fmt.Errorf("dword device count: %w", err)
	}
	return nil
}
