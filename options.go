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
)

// Option is a functional option for configuring a Client
type Option func(*Client) error

// WithFamily sets the PLC family
func WithFamily(family Family) Option {
	return func(c *Client) error {
		if !family.Valid() {
			return &ConfigurationError{Field: "family", Reason: family.String()}
		}
		c.family = family
		return nil
	}
}

// WithRepresentation selects binary or ASCII frames
func WithRepresentation(rep Representation) Option {
	return func(c *Client) error {
		if !rep.Valid() {
			return &ConfigurationError{Field: "representation", Reason: rep.String()}
		}
		c.access.Representation = rep
		return nil
	}
}

// WithHeader selects the 3E or 4E frame header
func WithHeader(variant Variant) Option {
	return func(c *Client) error {
		if !variant.Valid() {
			return &ConfigurationError{Field: "frame", Reason: variant.String()}
		}
		c.variant = variant
		return nil
	}
}

// WithRouting sets network, station and module routing and the timer
func WithRouting(routing Routing) Option {
	return func(c *Client) error {
		c.access.Routing = routing
		return nil
	}
}

// WithTimer sets the PLC monitoring timer, in 250 ms units. Zero makes the
// PLC wait indefinitely.
func WithTimer(quarterSeconds uint16) Option {
	return func(c *Client) error {
		c.access.Routing.Timer = quarterSeconds
		return nil
	}
}

// WithSerial sets the serial number carried by 4E frames
func WithSerial(serial uint16) Option {
	return func(c *Client) error {
		c.serial = serial
		return nil
	}
}

// WithAccessOptions sets representation and routing in one step
func WithAccessOptions(opts AccessOptions) Option {
	return func(c *Client) error {
		if err := WithRepresentation(opts.Representation)(c); err != nil {
			return fmt.Errorf("access options: %w", err)
		}
		c.access.Routing = opts.Routing
		return nil
	}
}
