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

// Package serial carries MC protocol 3E/4E frames over a serial line, such
// as a C24 module in format 5 or a serial-to-Ethernet bridge.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/ZaparooProject/go-mcprotocol/internal/frame"
	"go.bug.st/serial"
)

// DefaultTimeout is used until the client applies its monitoring timer.
const DefaultTimeout = 2 * time.Second

var errReadTimeout = errors.New("serial read timed out")

// Config holds the line settings.
type Config struct {
	Parity   string
	BaudRate int
	DataBits int
	StopBits int
}

// DefaultConfig is 19200 8-O-1, the factory setting of the C24 modules.
func DefaultConfig() Config {
	return Config{BaudRate: 19200, DataBits: 8, Parity: "odd", StopBits: 1}
}

// Mode converts c to a go.bug.st/serial mode.
func (c Config) Mode() (*serial.Mode, error) {
	mode := &serial.Mode{BaudRate: c.BaudRate, DataBits: c.DataBits}
	if mode.BaudRate <= 0 {
		return nil, &mcprotocol.ConfigurationError{Field: "baud_rate", Reason: "must be positive"}
	}
	if mode.DataBits != 7 && mode.DataBits != 8 {
		return nil, &mcprotocol.ConfigurationError{Field: "data_bits", Reason: "must be 7 or 8"}
	}

	switch c.Parity {
	case "", "none":
		mode.Parity = serial.NoParity
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		return nil, &mcprotocol.ConfigurationError{Field: "parity", Reason: fmt.Sprintf("unknown parity %q", c.Parity)}
	}

	switch c.StopBits {
	case 0, 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, &mcprotocol.ConfigurationError{Field: "stop_bits", Reason: "must be 1 or 2"}
	}
	return mode, nil
}

// port is the part of serial.Port the transport uses.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Transport implements the mcprotocol.Transport interface for serial lines.
type Transport struct {
	port     port
	portName string
	timeout  time.Duration
	mu       sync.Mutex
	closed   atomic.Bool
}

// New opens portName with cfg.
func New(portName string, cfg Config) (*Transport, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, mcprotocol.NewTransportError("open", portName, err, mcprotocol.ErrorTypePermanent)
	}
	mcprotocol.Debugf("opened %s at %d baud", portName, cfg.BaudRate)
	return newTransport(p, portName), nil
}

func newTransport(p port, portName string) *Transport {
	return &Transport{port: p, portName: portName, timeout: DefaultTimeout}
}

// Factory returns a mcprotocol.TransportFactory that opens serial ports with cfg.
func Factory(cfg Config) mcprotocol.TransportFactory {
	return func(address string) (mcprotocol.Transport, error) {
		return New(address, cfg)
	}
}

// Exchange writes one request frame and reads one response frame. Stale
// bytes from an earlier, abandoned exchange are discarded first.
func (t *Transport) Exchange(request []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Load() {
		return nil, mcprotocol.NewTransportError("exchange", t.portName, mcprotocol.ErrTransportClosed,
			mcprotocol.ErrorTypeTransient)
	}
	if err := t.port.ResetInputBuffer(); err != nil {
		return nil, mcprotocol.NewTransportError("reset", t.portName, err, mcprotocol.ErrorTypeTransient)
	}
	if _, err := t.port.Write(request); err != nil {
		return nil, mcprotocol.NewTransportError("write", t.portName,
			fmt.Errorf("%w: %w", mcprotocol.ErrTransportWrite, err), mcprotocol.ErrorTypeTransient)
	}

	r := &deadlineReader{port: t.port, deadline: time.Now().Add(t.timeout)}
	resp, err := frame.ReadFrame(r)
	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, errReadTimeout):
		return nil, mcprotocol.NewTimeoutError("read", t.portName)
	case errors.Is(err, frame.ErrUnknownTag), errors.Is(err, frame.ErrMalformedFrame),
		errors.Is(err, frame.ErrFrameTooLarge):
		return nil, err
	default:
		return nil, mcprotocol.NewTransportError("read", t.portName,
			fmt.Errorf("%w: %w", mcprotocol.ErrTransportRead, err), mcprotocol.ErrorTypeTransient)
	}
}

// ExchangeContext is Exchange bounded by ctx; ending ctx closes the port.
func (t *Transport) ExchangeContext(ctx context.Context, request []byte) ([]byte, error) {
	return mcprotocol.AsTransportContext(transportOnly{t}).ExchangeContext(ctx, request)
}

// transportOnly hides ExchangeContext so AsTransportContext wraps the
// plain Exchange instead of recursing.
type transportOnly struct {
	mcprotocol.Transport
}

// SetTimeout sets how long Exchange waits for the whole response.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return &mcprotocol.ConfigurationError{Field: "timeout", Reason: "must be positive"}
	}
	t.mu.Lock()
	t.timeout = timeout
	t.mu.Unlock()
	return nil
}

// Close closes the port. Closing twice is not an error.
func (t *Transport) Close() error {
	// Closing the port unblocks a pending read, so t.mu is not taken.
	if t.port == nil || t.closed.Swap(true) {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true while the port is open.
func (t *Transport) IsConnected() bool {
	return t.port != nil && !t.closed.Load()
}

// Type returns the transport type.
func (*Transport) Type() mcprotocol.TransportType {
	return mcprotocol.TransportSerial
}

// PortName returns the device path.
func (t *Transport) PortName() string {
	return t.portName
}

// deadlineReader turns go.bug.st/serial's (0, nil) read timeout into an
// error and shares one deadline across all reads of a frame.
type deadlineReader struct {
	port     port
	deadline time.Time
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	remaining := time.Until(r.deadline)
	if remaining <= 0 {
		return 0, errReadTimeout
	}
	if err := r.port.SetReadTimeout(remaining); err != nil {
		return 0, err
	}
	n, err := r.port.Read(p)
	if n == 0 && err == nil {
		return 0, errReadTimeout
	}
	return n, err
}
