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
	"errors"
	"fmt"
)

// ErrVerification matches every *VerificationError.
var ErrVerification = errors.New("write verification failed")

// VerificationError reports the first point whose read-back value differs
// from what was written.
type VerificationError struct {
	Device string
	Index  int
	Wrote  int
	Read   int
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %s+%d wrote %d, read back %d", ErrVerification, e.Device, e.Index, e.Wrote, e.Read)
}

// Is makes every VerificationError match ErrVerification.
func (*VerificationError) Is(target error) bool {
	return target == ErrVerification
}

// WriteWordsVerified writes values and reads the range back once. Values
// are compared as 16-bit patterns, so -1 and 0xFFFF match. A CPU program
// that overwrites the range between the two requests also fails the check.
func (c *Client) WriteWordsVerified(head string, values []int) error {
	return c.WriteWordsVerifiedContext(context.Background(), head, values)
}

// WriteWordsVerifiedContext is WriteWordsVerified with context support.
func (c *Client) WriteWordsVerifiedContext(ctx context.Context, head string, values []int) error {
	if err := c.WriteWordsContext(ctx, head, values); err != nil {
		return err
	}
	got, err := c.ReadWordsContext(ctx, head, len(values))
	if err != nil {
		return fmt.Errorf("verify %s: %w", head, err)
	}
	for i, v := range values {
		if uint16(v) != uint16(got[i]) {
			return &VerificationError{Device: head, Index: i, Wrote: v, Read: got[i]}
		}
	}
	return nil
}

// WriteBitsVerified writes bit points and reads them back once.
func (c *Client) WriteBitsVerified(head string, values []bool) error {
	return c.WriteBitsVerifiedContext(context.Background(), head, values)
}

// WriteBitsVerifiedContext is WriteBitsVerified with context support.
func (c *Client) WriteBitsVerifiedContext(ctx context.Context, head string, values []bool) error {
	if err := c.WriteBitsContext(ctx, head, values); err != nil {
		return err
	}
	got, err := c.ReadBitsContext(ctx, head, len(values))
	if err != nil {
		return fmt.Errorf("verify %s: %w", head, err)
	}
	for i, v := range values {
		if v != got[i] {
			return &VerificationError{Device: head, Index: i, Wrote: boolInt(v), Read: boolInt(got[i])}
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
