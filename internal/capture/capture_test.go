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

package capture

import (
	"bytes"
	"errors"
	"testing"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	testutil "github.com/ZaparooProject/go-mcprotocol/internal/testing"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readPackets decodes every TCP packet in a pcap stream.
func readPackets(t *testing.T, data []byte) []*layers.TCP {
	t.Helper()
	r, err := pcapgo.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeEthernet, r.LinkType())

	var out []*layers.TCP
	for {
		raw, _, err := r.ReadPacketData()
		if err != nil {
			break
		}
		packet := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
		tcp, ok := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
		require.True(t, ok, "packet has no TCP layer")
		out = append(out, tcp)
	}
	return out
}

func TestWriter_SequencesFollowPayload(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, 0)
	require.NoError(t, err)
	w.now = func() time.Time { return time.Unix(1700000000, 0) }

	require.NoError(t, w.WriteRequest([]byte{0x50, 0x00, 0x01}))
	require.NoError(t, w.WriteResponse([]byte{0xD0, 0x00}))
	require.NoError(t, w.WriteRequest([]byte{0x50, 0x00}))
	require.NoError(t, w.Close())

	packets := readPackets(t, buf.Bytes())
	require.Len(t, packets, 3)

	assert.Equal(t, layers.TCPPort(DefaultPLCPort), packets[0].DstPort)
	assert.Equal(t, []byte{0x50, 0x00, 0x01}, packets[0].Payload)
	assert.Equal(t, layers.TCPPort(DefaultPLCPort), packets[1].SrcPort)
	assert.Equal(t, []byte{0xD0, 0x00}, packets[1].Payload)

	assert.Equal(t, packets[0].Seq+3, packets[2].Seq)
	assert.Equal(t, packets[0].Seq+3, packets[1].Ack)
	assert.Equal(t, packets[1].Seq+2, packets[2].Ack)
}

func TestTransport_RecordsExchanges(t *testing.T) {
	t.Parallel()

	plc := testutil.NewVirtualPLC(mcprotocol.FamilyQ)
	mock := mcprotocol.NewMockTransportWithFunc(plc.Handle)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, 5000)
	require.NoError(t, err)

	client, err := mcprotocol.New(Wrap(mock, w))
	require.NoError(t, err)
	require.NoError(t, client.WriteWords("D0", []int{7}))
	_, err = client.ReadWords("D0", 1)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	packets := readPackets(t, buf.Bytes())
	require.Len(t, packets, 4)
	requests := mock.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, requests[0], []byte(packets[0].Payload))
	assert.Equal(t, requests[1], []byte(packets[2].Payload))
	assert.Equal(t, layers.TCPPort(5000), packets[2].DstPort)
	assert.False(t, mock.IsConnected())
}

func TestTransport_FailedExchangeKeepsRequest(t *testing.T) {
	t.Parallel()

	mock := mcprotocol.NewMockTransport()
	mock.SetError(errors.New("boom"))

	var buf bytes.Buffer
	w, err := NewWriter(&buf, 0)
	require.NoError(t, err)

	_, err = Wrap(mock, w).Exchange([]byte{0x50, 0x00})
	require.Error(t, err)
	assert.Len(t, readPackets(t, buf.Bytes()), 1)
}
