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

package serial

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	testutil "github.com/ZaparooProject/go-mcprotocol/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// fakePort answers each written frame through handle and serves the reply
// a few bytes at a time, the way a slow line delivers it.
type fakePort struct {
	handle  func([]byte) ([]byte, error)
	pending bytes.Buffer
	mu      sync.Mutex
	chunk   int
	closed  bool
	resets  int
	block   chan struct{}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return len(b), nil
	}
	resp, err := p.handle(b)
	if err == nil {
		p.pending.Write(resp)
	}
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if p.pending.Len() == 0 {
		block := p.block
		p.mu.Unlock()
		if block != nil {
			<-block
		}
		return 0, nil
	}
	defer p.mu.Unlock()
	if p.chunk > 0 && len(b) > p.chunk {
		b = b[:p.chunk]
	}
	return p.pending.Read(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.block != nil {
		close(p.block)
	}
	return nil
}

func (*fakePort) SetReadTimeout(time.Duration) error { return nil }

func (p *fakePort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets++
	return nil
}

func TestConfig_Mode(t *testing.T) {
	t.Parallel()

	mode, err := DefaultConfig().Mode()
	require.NoError(t, err)
	assert.Equal(t, 19200, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.OddParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)

	mode, err = Config{BaudRate: 9600, DataBits: 7, Parity: "even", StopBits: 2}.Mode()
	require.NoError(t, err)
	assert.Equal(t, serial.EvenParity, mode.Parity)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)

	bad := []Config{
		{BaudRate: 0, DataBits: 8},
		{BaudRate: 9600, DataBits: 6},
		{BaudRate: 9600, DataBits: 8, Parity: "mark"},
		{BaudRate: 9600, DataBits: 8, StopBits: 3},
	}
	for _, cfg := range bad {
		_, err := cfg.Mode()
		assert.ErrorIs(t, err, mcprotocol.ErrInvalidParameter, "%+v", cfg)
	}
}

func TestClientOverSerial(t *testing.T) {
	t.Parallel()

	for _, rep := range []mcprotocol.Representation{mcprotocol.Binary, mcprotocol.ASCII} {
		plc := testutil.NewVirtualPLC(mcprotocol.FamilyQ)
		p := &fakePort{handle: plc.Handle, chunk: 3}
		transport := newTransport(p, "/dev/ttyUSB0")

		client, err := mcprotocol.New(transport, mcprotocol.WithRepresentation(rep))
		require.NoError(t, err)

		require.NoError(t, client.WriteWords("D10", []int{42, 43}))
		words, err := client.ReadWords("D10", 2)
		require.NoError(t, err)
		assert.Equal(t, []int{42, 43}, words)
		assert.Equal(t, 2, p.resets)

		require.NoError(t, client.Close())
		assert.False(t, transport.IsConnected())
	}
}

func TestExchange_TimeoutWithoutReply(t *testing.T) {
	t.Parallel()

	transport := newTransport(&fakePort{}, "/dev/ttyUSB0")
	require.NoError(t, transport.SetTimeout(20*time.Millisecond))

	_, err := transport.Exchange([]byte{0x50, 0x00})
	require.Error(t, err)
	assert.True(t, mcprotocol.IsTimeout(err))
}

func TestExchange_AfterClose(t *testing.T) {
	t.Parallel()

	transport := newTransport(&fakePort{}, "/dev/ttyUSB0")
	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close())

	_, err := transport.Exchange([]byte{0x50, 0x00})
	assert.ErrorIs(t, err, mcprotocol.ErrTransportClosed)
}

func TestExchangeContext_Cancel(t *testing.T) {
	t.Parallel()

	p := &fakePort{block: make(chan struct{})}
	transport := newTransport(p, "/dev/ttyUSB0")
	require.NoError(t, transport.SetTimeout(10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := transport.ExchangeContext(ctx, []byte{0x50, 0x00})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Eventually(t, func() bool { return !transport.IsConnected() }, time.Second, 5*time.Millisecond)
}

func TestTransport_Properties(t *testing.T) {
	t.Parallel()

	transport := newTransport(&fakePort{}, "COM3")
	assert.Equal(t, mcprotocol.TransportSerial, transport.Type())
	assert.Equal(t, "COM3", transport.PortName())
	assert.True(t, transport.IsConnected())
	assert.ErrorIs(t, transport.SetTimeout(-time.Second), mcprotocol.ErrInvalidParameter)
}

func TestParseVIDPID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "VID:0403 PID:6001", want: "0403:6001"},
		{in: "vendor=067b product=2303", want: "067B:2303"},
		{in: "0403:6001", want: "0403:6001"},
		{in: "1a86:7523", want: "1A86:7523"},
		{in: "not a device", want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseVIDPID(tt.in), tt.in)
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{"0403:6001", " 1a86:7523 "}
	assert.True(t, IsBlocked("0403:6001", blocklist))
	assert.True(t, IsBlocked("1A86:7523", blocklist))
	assert.False(t, IsBlocked("067B:2303", blocklist))
	assert.False(t, IsBlocked("0403:6001", nil))
}

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "empty ignore list", devicePath: "/dev/ttyUSB0", expected: false},
		{name: "empty device path", ignorePaths: []string{"/dev/ttyUSB0"}, expected: false},
		{name: "exact match", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/dev/ttyUSB0"}, expected: true},
		{name: "windows case", devicePath: "COM2", ignorePaths: []string{"com2"}, expected: true},
		{name: "unclean path", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/dev/../dev/ttyUSB0"}, expected: true},
		{name: "no match", devicePath: "/dev/ttyUSB1", ignorePaths: []string{"", "/dev/ttyUSB0"}, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

func TestFilterPorts(t *testing.T) {
	t.Parallel()

	details := []*enumerator.PortDetails{
		{Name: "/dev/ttyUSB1", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"},
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
	}

	ports := filterPorts(details, ListOptions{
		Blocklist:   []string{"1A86:7523"},
		IgnorePaths: []string{"/dev/ttyS0"},
	})
	require.Len(t, ports, 2)
	assert.Equal(t, "/dev/ttyACM0", ports[0].Path)
	assert.Equal(t, "/dev/ttyUSB1", ports[1].Path)
	assert.Equal(t, "0403:6001", ports[1].VIDPID)
	assert.Equal(t, "FT232R", ports[1].Product)
	assert.True(t, ports[1].IsUSB)
}
