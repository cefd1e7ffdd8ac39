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

package testing

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// Serve answers frames on conn until the peer disconnects. Frames that
// cannot be parsed end the connection.
func (p *VirtualPLC) Serve(conn net.Conn) error {
	defer func() { _ = conn.Close() }()
	for {
		req, err := frame.ReadFrame(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}

		resp, err := p.Handle(req)
		if errors.Is(err, ErrNoReply) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := conn.Write(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

// ServeListener accepts connections on l and serves each one on its own
// goroutine until l is closed. Per-connection errors go to onError, which
// may be nil.
func (p *VirtualPLC) ServeListener(l net.Listener, onError func(error)) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go func() {
			if err := p.Serve(conn); err != nil && onError != nil {
				onError(err)
			}
		}()
	}
}
