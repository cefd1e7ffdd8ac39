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
	"encoding/hex"
	"errors"
	"testing"
	"time"

	testutil "github.com/ZaparooProject/go-mcprotocol/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireCombo struct {
	name    string
	variant Variant
	rep     Representation
}

var allCombos = []wireCombo{
	{name: "3E binary", variant: Frame3E, rep: Binary},
	{name: "3E ascii", variant: Frame3E, rep: ASCII},
	{name: "4E binary", variant: Frame4E, rep: Binary},
	{name: "4E ascii", variant: Frame4E, rep: ASCII},
}

// newVirtualClient wires a client to an in-memory PLC through MockTransport.
func newVirtualClient(
	t *testing.T, family Family, variant Variant, rep Representation, opts ...Option,
) (*Client, *testutil.VirtualPLC, *MockTransport) {
	t.Helper()
	plc := testutil.NewVirtualPLC(family)
	mock := NewMockTransportWithFunc(plc.Handle)
	base := []Option{WithFamily(family), WithHeader(variant), WithRepresentation(rep), WithSerial(0x00AB)}
	client, err := New(mock, append(base, opts...)...)
	require.NoError(t, err)
	return client, plc, mock
}

func decodeGolden(t *testing.T, rep Representation, want string) []byte {
	t.Helper()
	if rep == ASCII {
		return []byte(want)
	}
	b, err := hex.DecodeString(want)
	require.NoError(t, err)
	return b
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	client, err := New(mock)
	require.NoError(t, err)

	assert.Equal(t, FamilyQ, client.Family())
	assert.Equal(t, Frame3E, client.Variant())
	assert.Equal(t, AccessOptions{Routing: DefaultRouting(), Representation: Binary}, client.AccessOptions())
	assert.Equal(t, 2*time.Second, mock.Timeout(), "timer 4 is one second, plus one second margin")
	assert.Same(t, mock, client.Transport())
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		opt   Option
		field string
	}{
		{name: "family", opt: WithFamily(Family(42)), field: "family"},
		{name: "representation", opt: WithRepresentation(Representation(7)), field: "representation"},
		{name: "header", opt: WithHeader(Variant(5)), field: "frame"},
		{
			name:  "access options",
			opt:   WithAccessOptions(AccessOptions{Representation: Representation(3)}),
			field: "representation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(NewMockTransport(), tt.opt)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}

	_, err := New(nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestSetAccessOptions(t *testing.T) {
	t.Parallel()
	client, _, mock := newVirtualClient(t, FamilyQ, Frame3E, Binary, WithTimer(8))
	assert.Equal(t, 3*time.Second, mock.Timeout())

	routing := DefaultRouting()
	routing.Timer = 0
	require.NoError(t, client.SetAccessOptions(AccessOptions{Routing: routing, Representation: ASCII}))
	assert.Equal(t, time.Second, mock.Timeout())
	assert.Equal(t, time.Second, client.Timeout())

	require.NoError(t, client.WriteWords("D0", []int{7}))
	assert.Equal(t, "500000FF03FF00", string(mock.LastRequest()[:14]), "ascii header after switching")

	err := client.SetAccessOptions(AccessOptions{Representation: Representation(9)})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestConnect(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	var gotAddress string
	client, err := Connect("192.168.3.39:1025", func(address string) (Transport, error) {
		gotAddress = address
		return mock, nil
	}, WithFamily(FamilyIQR))
	require.NoError(t, err)
	assert.Equal(t, "192.168.3.39:1025", gotAddress)
	assert.Equal(t, FamilyIQR, client.Family())
	require.NoError(t, client.Close())
	assert.False(t, mock.IsConnected())

	rejected := NewMockTransport()
	_, err = Connect("x", func(string) (Transport, error) { return rejected, nil }, WithHeader(Variant(9)))
	require.Error(t, err)
	assert.False(t, rejected.IsConnected(), "transport closed when options fail")

	_, err = Connect("x", func(string) (Transport, error) { return nil, errors.New("refused") })
	assert.ErrorContains(t, err, "refused")

	_, err = Connect("x", nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestGoldenRequests(t *testing.T) {
	t.Parallel()
	tests := []struct {
		call    func(c *Client) error
		name    string
		want    string
		family  Family
		variant Variant
		rep     Representation
	}{
		{
			name: "batch read words", family: FamilyQ, variant: Frame3E, rep: Binary,
			call: func(c *Client) error { _, err := c.ReadWords("D100", 3); return err },
			want: "500000FFFF03000C00040001040000640000A80300",
		},
		{
			name: "batch read bits", family: FamilyQ, variant: Frame3E, rep: Binary,
			call: func(c *Client) error { _, err := c.ReadBits("M30", 4); return err },
			want: "500000FFFF03000C000400010401001E0000900400",
		},
		{
			name: "batch write bits", family: FamilyQ, variant: Frame3E, rep: Binary,
			call: func(c *Client) error { return c.WriteBits("M30", []bool{true, true, true, true}) },
			want: "500000FFFF03000E000400011401001E00009004001111",
		},
		{
			name: "batch write words iQ-R ascii", family: FamilyIQR, variant: Frame3E, rep: ASCII,
			call: func(c *Client) error { return c.WriteWords("D100", []int{1, -1}) },
			want: "500000FF03FF000024000414010002D***0000010000020001FFFF",
		},
		{
			name: "random write bits iQ-R", family: FamilyIQR, variant: Frame3E, rep: Binary,
			call: func(c *Client) error { return c.RandomWriteBits([]string{"M40", "M45"}, []bool{true, false}) },
			want: "500000FFFF0300170004000214030002280000009000" + "0100" + "2D0000009000" + "0000",
		},
		{
			name: "random read Q", family: FamilyQ, variant: Frame3E, rep: Binary,
			call: func(c *Client) error { _, _, err := c.RandomRead([]string{"D0"}, []string{"D2"}); return err },
			want: "500000FFFF0300100004000304000001010000" + "00A8" + "020000A8",
		},
		{
			name: "remote run forced clear all", family: FamilyQ, variant: Frame3E, rep: Binary,
			call: func(c *Client) error { return c.RemoteRun(ClearAll, true) },
			want: "500000FFFF03000A000400011000000300" + "0200",
		},
		{
			name: "remote stop ascii", family: FamilyL, variant: Frame3E, rep: ASCII,
			call: func(c *Client) error { return c.RemoteStop() },
			want: "500000FF03FF000010000410020000" + "0001",
		},
		{
			name: "remote unlock ascii", family: FamilyQ, variant: Frame3E, rep: ASCII,
			call: func(c *Client) error { return c.RemoteUnlock(testutil.TestQPassword) },
			want: "500000FF03FF000014000416300000" + "0004abcd",
		},
		{
			name: "echo test 4E", family: FamilyQ, variant: Frame4E, rep: Binary,
			call: func(c *Client) error { _, err := c.EchoTest("AB"); return err },
			want: "5400AB000000" + "00FFFF0300" + "0A000400" + "19060000" + "0200" + "4142",
		},
		{
			name: "read cpu type 4E ascii", family: FamilyQnA, variant: Frame4E, rep: ASCII,
			call: func(c *Client) error { _, err := c.ReadCPUType(); return err },
			want: "540000AB0000" + "00FF03FF00" + "000C" + "0004" + "01010000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, plc, mock := newVirtualClient(t, tt.family, tt.variant, tt.rep)
			plc.Password = testutil.TestQPassword

			require.NoError(t, tt.call(client))
			assert.Equal(t, decodeGolden(t, tt.rep, tt.want), mock.LastRequest())
		})
	}
}
