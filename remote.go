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

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// RemoteRun switches the CPU to RUN. With force set the command also
// succeeds while another station holds the CPU in STOP or PAUSE.
func (c *Client) RemoteRun(clear ClearMode, force bool) error {
	return c.RemoteRunContext(context.Background(), clear, force)
}

// RemoteRunContext is RemoteRun with context support.
func (c *Client) RemoteRunContext(ctx context.Context, clear ClearMode, force bool) error {
	if clear > ClearAll {
		return fmt.Errorf("%w: clear mode %d", ErrInvalidParameter, byte(clear))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(frame.CmdRemoteRun, frame.SubcommandNone).
		value(int64(remoteMode(force)), frame.Word, false).
		value(int64(clear), frame.Byte, false).
		value(0, frame.Byte, false).
		bytes()
	if err != nil {
		return err
	}
	return c.remote(ctx, "remote run", payload)
}

// RemoteStop switches the CPU to STOP.
func (c *Client) RemoteStop() error {
	return c.RemoteStopContext(context.Background())
}

// RemoteStopContext is RemoteStop with context support.
func (c *Client) RemoteStopContext(ctx context.Context) error {
	return c.remoteFixed(ctx, "remote stop", frame.CmdRemoteStop)
}

// RemotePause switches the CPU to PAUSE.
func (c *Client) RemotePause(force bool) error {
	return c.RemotePauseContext(context.Background(), force)
}

// RemotePauseContext is RemotePause with context support.
func (c *Client) RemotePauseContext(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(frame.CmdRemotePause, frame.SubcommandNone).
		value(int64(remoteMode(force)), frame.Word, false).
		bytes()
	if err != nil {
		return err
	}
	return c.remote(ctx, "remote pause", payload)
}

// RemoteLatchClear clears the latch range. The CPU must be in STOP.
func (c *Client) RemoteLatchClear() error {
	return c.RemoteLatchClearContext(context.Background())
}

// RemoteLatchClearContext is RemoteLatchClear with context support.
func (c *Client) RemoteLatchClearContext(ctx context.Context) error {
	return c.remoteFixed(ctx, "remote latch clear", frame.CmdRemoteLatchClr)
}

// RemoteReset resets the CPU. The CPU may restart before it answers, so a
// missing reply is not an error; an explicit error end code still is.
func (c *Client) RemoteReset() error {
	return c.RemoteResetContext(context.Background())
}

// RemoteResetContext is RemoteReset with context support.
func (c *Client) RemoteResetContext(ctx context.Context) error {
	err := c.remoteFixed(ctx, "remote reset", frame.CmdRemoteReset)
	var te *TransportError
	if errors.As(err, &te) {
		debugf("remote reset: no reply (%v), assuming the CPU restarted", te)
		return nil
	}
	return err
}

// RemoteUnlock unlocks a CPU protected by a remote password. The password
// must be ASCII, exactly 4 characters on Q/L/QnA/iQ-L and 6 to 32 on iQ-R.
func (c *Client) RemoteUnlock(password string) error {
	return c.RemoteUnlockContext(context.Background(), password)
}

// RemoteUnlockContext is RemoteUnlock with context support.
func (c *Client) RemoteUnlockContext(ctx context.Context, password string) error {
	return c.remotePassword(ctx, "remote unlock", frame.CmdRemoteUnlock, password)
}

// RemoteLock locks the CPU again after RemoteUnlock.
func (c *Client) RemoteLock(password string) error {
	return c.RemoteLockContext(context.Background(), password)
}

// RemoteLockContext is RemoteLock with context support.
func (c *Client) RemoteLockContext(ctx context.Context, password string) error {
	return c.remotePassword(ctx, "remote lock", frame.CmdRemoteLock, password)
}

func remoteMode(force bool) uint16 {
	if force {
		return remoteModeForce
	}
	return remoteModeNormal
}

// remoteFixed sends a remote command whose only data is the 0x0001 word.
func (c *Client) remoteFixed(ctx context.Context, op string, command uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(command, frame.SubcommandNone).
		value(int64(remoteModeNormal), frame.Word, false).
		bytes()
	if err != nil {
		return err
	}
	return c.remote(ctx, op, payload)
}

func (c *Client) remotePassword(ctx context.Context, op string, command uint16, password string) error {
	if err := c.checkPassword(password); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.newPayload(command, frame.SubcommandNone).
		value(int64(len(password)), frame.Word, false).
		raw([]byte(password)).
		bytes()
	if err != nil {
		return err
	}
	return c.remote(ctx, op, payload)
}

// remote runs a command with no response data. Callers hold c.mu.
func (c *Client) remote(ctx context.Context, op string, payload []byte) error {
	if _, err := c.execute(ctx, payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	debugf("%s accepted", op)
	return nil
}

func (c *Client) checkPassword(password string) error {
	if err := checkASCII("password", password); err != nil {
		return err
	}
	caps := device.Capabilities(c.family)
	if len(password) < caps.PasswordMin || len(password) > caps.PasswordMax {
		if caps.PasswordMin == caps.PasswordMax {
			return fmt.Errorf("%w: %s password must be %d characters, got %d",
				ErrInvalidParameter, c.family, caps.PasswordMin, len(password))
		}
		return fmt.Errorf("%w: %s password must be %d to %d characters, got %d",
			ErrInvalidParameter, c.family, caps.PasswordMin, caps.PasswordMax, len(password))
	}
	return nil
}
