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

package config

import (
	"path/filepath"
	"testing"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/ZaparooProject/go-mcprotocol/polling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FullProfile(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join("testdata", "line1.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "line1", p.Name)
	assert.Equal(t, "line1.pcap", p.Capture)
	assert.Equal(t, uint16(0x12), p.SerialNumber)

	routing := p.HeaderRouting()
	assert.Equal(t, uint8(1), routing.Network)
	assert.Equal(t, uint8(2), routing.Station)
	assert.Equal(t, uint16(0x03FF), routing.ModuleIO, "unset fields keep their defaults")
	assert.Equal(t, uint16(8), routing.Timer)

	assert.Equal(t, []polling.Watch{
		{Head: "D100", Count: 4},
		{Head: "M0", Count: 16, Bits: true},
	}, p.Watches())
	poll := p.PollingConfig()
	assert.Equal(t, 200*time.Millisecond, poll.PollInterval)
	assert.Equal(t, 3, poll.OfflineAfter)
	assert.Equal(t, 3*time.Second, poll.RequestTimeout, "follows routing timer 8")
	assert.Equal(t, 6*time.Second, poll.CycleTimeout, "two watches at three seconds each")

	require.NotNil(t, p.MQTT())
	assert.Equal(t, "plant", p.MQTT().RootTopic)
	assert.Equal(t, byte(1), p.MQTT().QoS)
	require.NotNil(t, p.Redis())
	assert.Equal(t, time.Minute, p.Redis().KeyTTL)
	require.NotNil(t, p.Kafka())
	assert.Equal(t, []string{"localhost:9092"}, p.Kafka().Brokers)
}

func TestProfile_ClientOptions(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join("testdata", "line1.yaml"))
	require.NoError(t, err)
	opts, err := p.ClientOptions()
	require.NoError(t, err)

	client, err := mcprotocol.New(mcprotocol.NewMockTransport(), opts...)
	require.NoError(t, err)
	assert.Equal(t, mcprotocol.FamilyIQR, client.Family())
	assert.Equal(t, mcprotocol.Frame4E, client.Variant())
	assert.Equal(t, mcprotocol.ASCII, client.AccessOptions().Representation)
	assert.Equal(t, 3*time.Second, client.Timeout(), "timer 8 is two seconds plus one")
}

func TestDefault(t *testing.T) {
	t.Parallel()

	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, "Q", p.Family)
	assert.Equal(t, "3E", p.Frame)
	assert.Equal(t, "binary", p.Representation)
	assert.Equal(t, TransportTCP, p.Transport.Type)
	assert.Equal(t, 19200, p.SerialConfig().BaudRate)
	assert.Equal(t, mcprotocol.DefaultRouting(), p.HeaderRouting())
	assert.Nil(t, p.MQTT())
	assert.Nil(t, p.Redis())
	assert.Nil(t, p.Kafka())
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{name: "family", yaml: "family: FX5", field: "family"},
		{name: "frame", yaml: "frame: 1E", field: "frame"},
		{name: "representation", yaml: "representation: hex", field: "representation"},
		{name: "transport", yaml: "transport: {type: udp}", field: "transport.type"},
		{name: "parity", yaml: "transport: {type: serial, serial: {parity: mark}}", field: "parity"},
		{name: "watch count", yaml: "poll: {watches: [{device: D0, count: 0}]}", field: "poll.watches[0].count"},
		{name: "watch device", yaml: "poll: {watches: [{device: ZZ9, count: 1}]}", field: "poll.watches[0].device"},
		{name: "iQ-R only device", yaml: "poll: {watches: [{device: LTN0, count: 1}]}", field: "poll.watches[0].device"},
		{name: "poll interval", yaml: "poll: {interval_ms: 900, idle_interval_ms: 100}", field: "poll"},
		{name: "cycle below request timeout", yaml: "routing: {timer: 40}\npoll: {cycle_timeout_ms: 5000}", field: "poll"},
		{name: "mqtt broker", yaml: "publish: {mqtt: {qos: 1}}", field: "publish.mqtt.broker"},
		{name: "mqtt qos", yaml: "publish: {mqtt: {broker: 'tcp://x:1883', qos: 5}}", field: "publish.mqtt.qos"},
		{name: "redis", yaml: "publish: {redis: {db: 1}}", field: "publish.redis.address"},
		{name: "kafka", yaml: "publish: {kafka: {topic: t}}", field: "publish.kafka"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, mcprotocol.ErrInvalidParameter)
			var cfgErr *mcprotocol.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestPollingConfig_CycleTimeout(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte("routing: {timer: 40}\n"))
	require.NoError(t, err)
	poll := p.PollingConfig()
	assert.Equal(t, 11*time.Second, poll.RequestTimeout)
	assert.Equal(t, 11*time.Second, poll.CycleTimeout, "sized for at least one watch")

	p, err = Parse([]byte("poll: {cycle_timeout_ms: 30000}\n"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, p.PollingConfig().CycleTimeout)
}

func TestParse_UnknownKey(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("famliy: Q\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "famliy")
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile not found")
}

func TestProfile_MarshalRoundTrip(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join("testdata", "line1.yaml"))
	require.NoError(t, err)
	data, err := p.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestParseFrameAndRepresentation(t *testing.T) {
	t.Parallel()

	v, err := ParseFrame(" 4e ")
	require.NoError(t, err)
	assert.Equal(t, mcprotocol.Frame4E, v)

	r, err := ParseRepresentation("TEXT")
	require.NoError(t, err)
	assert.Equal(t, mcprotocol.ASCII, r)
}
