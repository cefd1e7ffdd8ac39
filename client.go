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
	"sync"
	"time"

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
)

// Wire settings re-exported from the frame and device packages.
type (
	// Family is the PLC series; it decides device names and field widths.
	Family = device.Family
	// Representation is binary or ASCII field encoding.
	Representation = frame.Representation
	// Variant is the 3E or 4E frame header.
	Variant = frame.Variant
	// Routing addresses the target CPU and carries the monitoring timer.
	Routing = frame.Routing
)

// Families, representations and header variants.
const (
	FamilyQ   = device.FamilyQ
	FamilyL   = device.FamilyL
	FamilyQnA = device.FamilyQnA
	FamilyIQL = device.FamilyIQL
	FamilyIQR = device.FamilyIQR

	Binary = frame.Binary
	ASCII  = frame.ASCII

	Frame3E = frame.Frame3E
	Frame4E = frame.Frame4E
)

// DefaultRouting addresses the directly connected CPU with a one second
// monitoring timer.
func DefaultRouting() Routing {
	return frame.DefaultRouting()
}

// AccessOptions are the per-connection settings that may change between
// calls.
type AccessOptions struct {
	Routing        Routing
	Representation Representation
}

// Client talks MC protocol to one PLC over one Transport.
//
// Thread Safety: calls are serialized with a mutex, so only one request is
// ever in flight. The protocol has no request identifiers, so concurrent
// callers simply queue behind each other.
type Client struct {
	transport Transport
	mu        sync.Mutex
	access    AccessOptions
	family    Family
	variant   Variant
	serial    uint16
}

// New creates a client on an open transport. The defaults are a Q series
// CPU, 3E binary frames and DefaultRouting.
func New(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, &ConfigurationError{Field: "transport", Reason: "must not be nil"}
	}

	c := &Client{
		transport: transport,
		family:    FamilyQ,
		variant:   Frame3E,
		access: AccessOptions{
			Routing:        DefaultRouting(),
			Representation: Binary,
		},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.applyTimeout(); err != nil {
		return nil, err
	}
	debugf("client ready: family=%s frame=%s representation=%s", c.family, c.variant, c.access.Representation)
	return c, nil
}

// Connect opens a transport with factory and creates a client on it. The
// transport is closed again if the options are rejected.
func Connect(address string, factory TransportFactory, opts ...Option) (*Client, error) {
	if factory == nil {
		return nil, &ConfigurationError{Field: "transport factory", Reason: "must not be nil"}
	}

	transport, err := factory(address)
	if err != nil {
		return nil, fmt.Errorf("failed to open transport for %s: %w", address, err)
	}

	c, err := New(transport, opts...)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	return c, nil
}

// Transport returns the underlying transport
func (c *Client) Transport() Transport {
	return c.transport
}

// Family returns the configured PLC family.
func (c *Client) Family() Family {
	return c.family
}

// Variant returns the configured frame header variant.
func (c *Client) Variant() Variant {
	return c.variant
}

// AccessOptions returns the current representation and routing.
func (c *Client) AccessOptions() AccessOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access
}

// SetAccessOptions changes representation and routing for the following
// calls and resizes the transport timeout to the new monitoring timer.
func (c *Client) SetAccessOptions(opts AccessOptions) error {
	if !opts.Representation.Valid() {
		return &ConfigurationError{Field: "representation", Reason: opts.Representation.String()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = opts
	return c.applyTimeout()
}

// applyTimeout must run with c.mu held or before the client is shared.
func (c *Client) applyTimeout() error {
	timeout := TimeoutForTimer(c.access.Routing.Timer)
	if err := c.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// Timeout is the transport timeout that goes with the current timer.
func (c *Client) Timeout() time.Duration {
	return TimeoutForTimer(c.AccessOptions().Routing.Timer)
}

// Close closes the client connection
func (c *Client) Close() error {
	if c.transport == nil {
		return nil
	}
	if err := c.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

// header builds the frame header for the next request.
func (c *Client) header() frame.Header {
	return frame.Header{
		Routing:        c.access.Routing,
		Variant:        c.variant,
		Representation: c.access.Representation,
		Serial:         c.serial,
	}
}

// execute sends one request payload and returns the checked response data.
// Callers hold c.mu.
func (c *Client) execute(ctx context.Context, payload []byte) ([]byte, error) {
	if !c.transport.IsConnected() {
		return nil, ErrNotConnected
	}

	h := c.header()
	request := frame.Assemble(h, payload)
	debugf("TX %s %s: %s", h.Variant, h.Representation, dumpFrame(h.Representation, request))

	response, err := AsTransportContext(c.transport).ExchangeContext(ctx, request)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	debugf("RX %s %s: %s", h.Variant, h.Representation, dumpFrame(h.Representation, response))

	data, err := frame.CheckResponse(response, h)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func wrapTransportError(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return NewTransportError("exchange", "", err, GetErrorType(err))
}

func dumpFrame(rep Representation, data []byte) string {
	if rep == ASCII {
		return string(data)
	}
	return fmt.Sprintf("% X", data)
}
