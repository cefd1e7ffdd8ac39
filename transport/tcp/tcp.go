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

// Package tcp provides the Ethernet transport for MC protocol clients.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

const (
	// DefaultTimeout is used until the client applies its monitoring timer.
	DefaultTimeout = 2 * time.Second

	// DialTimeout bounds connection setup.
	DialTimeout = 5 * time.Second

	// userTimeout bounds how long unacknowledged data may sit in the kernel
	// send queue before the connection is dropped.
	userTimeout = 10 * time.Second
)

// Transport implements the mcprotocol.Transport interface over a TCP
// connection to a PLC's Ethernet port or module.
type Transport struct {
	conn    net.Conn
	address string
	timeout time.Duration
	mu      sync.Mutex
	closed  atomic.Bool
}

// Dial connects to address ("host:port").
func Dial(address string) (*Transport, error) {
	return DialContext(context.Background(), address)
}

// DialContext connects to address, giving up when ctx ends.
func DialContext(ctx context.Context, address string) (*Transport, error) {
	dialer := &net.Dialer{
		Timeout: DialTimeout,
		Control: controlSocket,
	}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, mcprotocol.NewTransportError("dial", address, err, mcprotocol.ErrorTypeTransient)
	}
	mcprotocol.Debugf("connected to %s", address)
	return New(conn), nil
}

// Factory adapts Dial to mcprotocol.TransportFactory.
func Factory(address string) (mcprotocol.Transport, error) {
	return Dial(address)
}

// New wraps an established connection.
func New(conn net.Conn) *Transport {
	address := ""
	if conn != nil && conn.RemoteAddr() != nil {
		address = conn.RemoteAddr().String()
	}
	return &Transport{
		conn:    conn,
		address: address,
		timeout: DefaultTimeout,
	}
}

// Exchange writes one request frame and reads one response frame.
func (t *Transport) Exchange(request []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil, mcprotocol.NewTransportError("exchange", t.address, mcprotocol.ErrNotConnected,
			mcprotocol.ErrorTypePermanent)
	}

	if err := t.conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, t.classify("deadline", err)
	}
	if _, err := t.conn.Write(request); err != nil {
		return nil, t.classify("write", err)
	}
	resp, err := frame.ReadFrame(t.conn)
	if err != nil {
		return nil, t.classify("read", err)
	}
	return resp, nil
}

// ExchangeContext is Exchange bounded by ctx. When ctx ends first the
// connection is closed, since a late reply would be taken as the answer to
// the next request.
func (t *Transport) ExchangeContext(ctx context.Context, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before sending request: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = t.closeConn()
	})
	resp, err := t.Exchange(request)
	if !stop() {
		return nil, fmt.Errorf("context cancelled while waiting for response: %w", ctx.Err())
	}
	return resp, err
}

// classify turns a socket error into a TransportError.
func (t *Transport) classify(op string, err error) error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return mcprotocol.NewTimeoutError(op, t.address)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return mcprotocol.NewTransportError(op, t.address,
			fmt.Errorf("%w: %w", mcprotocol.ErrTransportClosed, err), mcprotocol.ErrorTypeTransient)
	case errors.Is(err, frame.ErrUnknownTag), errors.Is(err, frame.ErrMalformedFrame),
		errors.Is(err, frame.ErrFrameTooLarge):
		return err
	case op == "write":
		return mcprotocol.NewTransportError(op, t.address,
			fmt.Errorf("%w: %w", mcprotocol.ErrTransportWrite, err), mcprotocol.ErrorTypeTransient)
	default:
		return mcprotocol.NewTransportError(op, t.address,
			fmt.Errorf("%w: %w", mcprotocol.ErrTransportRead, err), mcprotocol.ErrorTypeTransient)
	}
}

// SetTimeout sets the read/write deadline applied to each exchange.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return &mcprotocol.ConfigurationError{Field: "timeout", Reason: "must be positive"}
	}
	t.mu.Lock()
	t.timeout = timeout
	t.mu.Unlock()
	return nil
}

// Close closes the connection. Closing twice is not an error.
func (t *Transport) Close() error {
	return t.closeConn()
}

func (t *Transport) closeConn() error {
	// Close must not wait for an exchange holding t.mu; net.Conn.Close is
	// safe to call concurrently with a blocked read.
	if t.conn == nil || t.closed.Swap(true) {
		return nil
	}
	mcprotocol.Debugf("closing %s", t.address)
	if err := t.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("failed to close %s: %w", t.address, err)
	}
	return nil
}

// IsConnected returns true until Close has been called.
func (t *Transport) IsConnected() bool {
	return t.conn != nil && !t.closed.Load()
}

// Type returns the transport type.
func (*Transport) Type() mcprotocol.TransportType {
	return mcprotocol.TransportTCP
}

// Address returns the remote address.
func (t *Transport) Address() string {
	return t.address
}

// Port returns the numeric port of a "host:port" address.
func Port(address string) (uint16, error) {
	_, port, err := net.SplitHostPort(address)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", address, err)
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port in %q: %w", address, err)
	}
	return uint16(n), nil
}
