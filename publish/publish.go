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

// Package publish forwards polled device values to message brokers.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mcprotocol/polling"
)

// Message is the JSON document sent for one changed device range.
type Message struct {
	PLC       string `json:"plc"`
	Device    string `json:"device"`
	Timestamp string `json:"timestamp"`
	Words     []int  `json:"words,omitempty"`
	Bits      []bool `json:"bits,omitempty"`
}

// NewMessage builds a message from a polling sample.
func NewMessage(plc string, s polling.Sample) Message {
	return Message{
		PLC:       plc,
		Device:    s.Head,
		Words:     s.Words,
		Bits:      s.Bits,
		Timestamp: s.Time.UTC().Format(time.RFC3339Nano),
	}
}

// Encode returns the JSON form of m.
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s/%s: %w", m.PLC, m.Device, err)
	}
	return data, nil
}

// Publisher delivers messages to one broker.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, m Message) error
	Close() error
}

// Fanout sends every message to all publishers.
type Fanout struct {
	publishers []Publisher
	plc        string
	timeout    time.Duration
}

// NewFanout returns a Fanout labelling messages with plc. Each delivery is
// bounded by timeout.
func NewFanout(plc string, timeout time.Duration, publishers ...Publisher) *Fanout {
	return &Fanout{plc: plc, timeout: timeout, publishers: publishers}
}

// Len returns the number of publishers.
func (f *Fanout) Len() int {
	return len(f.publishers)
}

// Publish sends m everywhere and joins the failures.
func (f *Fanout) Publish(ctx context.Context, m Message) error {
	var errs []error
	for _, p := range f.publishers {
		pctx, cancel := context.WithTimeout(ctx, f.timeout)
		if err := p.Publish(pctx, m); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
		cancel()
	}
	return errors.Join(errs...)
}

// OnChange adapts the fanout to polling.Monitor.OnChange.
func (f *Fanout) OnChange(s polling.Sample) error {
	return f.Publish(context.Background(), NewMessage(f.plc, s))
}

// Close closes every publisher.
func (f *Fanout) Close() error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
