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
	"sync"
	"time"
)

// MockTransport is an in-memory Transport for tests. It records every
// request frame and answers from ResponseFunc, or else from the queued
// responses in order.
type MockTransport struct {
	ResponseFunc func(request []byte) ([]byte, error)
	err          error
	requests     [][]byte
	responses    [][]byte
	timeout      time.Duration
	mu           sync.Mutex
	closed       bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{timeout: time.Second}
}

// NewMockTransportWithFunc creates a mock transport that answers with fn
func NewMockTransportWithFunc(fn func(request []byte) ([]byte, error)) *MockTransport {
	m := NewMockTransport()
	m.ResponseFunc = fn
	return m
}

// Exchange records the request and returns the next response
func (m *MockTransport) Exchange(request []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrTransportClosed
	}
	m.requests = append(m.requests, append([]byte(nil), request...))

	if m.ResponseFunc != nil {
		return m.ResponseFunc(request)
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, NewTimeoutError("exchange", "mock")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return append([]byte(nil), resp...), nil
}

// QueueResponse adds a response frame returned by a later Exchange
func (m *MockTransport) QueueResponse(response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
}

// SetError makes every Exchange fail with err until cleared with nil
func (m *MockTransport) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns copies of the request frames seen so far
func (m *MockTransport) Requests() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request frame, or nil
func (m *MockTransport) LastRequest() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetTimeout records the timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Timeout returns the last timeout set by the client
func (m *MockTransport) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

// IsConnected returns true until Close is called
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// BlockingMockTransport is a mock transport whose Exchange blocks until
// Unblock or Close is called. It is used for context cancellation tests.
type BlockingMockTransport struct {
	blockChan chan struct{}
	Response  []byte
	mu        sync.Mutex
	closed    bool
}

// NewBlockingMockTransport creates a new blocking mock transport
func NewBlockingMockTransport() *BlockingMockTransport {
	return &BlockingMockTransport{blockChan: make(chan struct{})}
}

// Exchange blocks until Unblock() is called or the transport is closed
func (m *BlockingMockTransport) Exchange([]byte) ([]byte, error) {
	m.mu.Lock()
	blockChan := m.blockChan
	closed := m.closed
	m.mu.Unlock()

	if closed {
		return nil, ErrTransportClosed
	}

	<-blockChan

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrTransportClosed
	}
	return append([]byte(nil), m.Response...), nil
}

// Unblock allows one blocked Exchange to proceed
func (m *BlockingMockTransport) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		close(m.blockChan)
		m.blockChan = make(chan struct{})
	}
}

// Close unblocks all operations and marks transport as closed
func (m *BlockingMockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.blockChan)
	}
	return nil
}

// SetTimeout is a no-op; Exchange only returns when unblocked
func (*BlockingMockTransport) SetTimeout(time.Duration) error {
	return nil
}

// IsConnected returns true until Close is called
func (m *BlockingMockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*BlockingMockTransport) Type() TransportType {
	return TransportMock
}
