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

package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig configures an MQTT publisher.
type MQTTConfig struct {
	// Broker is a URL such as "tcp://localhost:1883" or "ssl://host:8883".
	Broker    string
	ClientID  string
	Username  string
	Password  string
	RootTopic string
	QoS       byte
	Retain    bool
}

// mqttClient is the part of pahomqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes messages to "<root>/<plc>/devices/<device>".
type MQTT struct {
	client mqttClient
	config MQTTConfig
}

// DialMQTT connects to the broker.
func DialMQTT(cfg MQTTConfig) (*MQTT, error) {
	if cfg.Broker == "" {
		return nil, &mcprotocol.ConfigurationError{Field: "mqtt.broker", Reason: "must not be empty"}
	}
	if cfg.QoS > 2 {
		return nil, &mcprotocol.ConfigurationError{Field: "mqtt.qos", Reason: "must be 0, 1 or 2"}
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(30 * time.Second)
	opts.SetConnectTimeout(5 * time.Second)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	mcprotocol.Debugf("connected to MQTT broker %s", cfg.Broker)
	return newMQTT(client, cfg), nil
}

func newMQTT(client mqttClient, cfg MQTTConfig) *MQTT {
	if cfg.RootTopic == "" {
		cfg.RootTopic = "mc"
	}
	return &MQTT{client: client, config: cfg}
}

// Name identifies the publisher in errors.
func (p *MQTT) Name() string {
	return "mqtt " + p.config.Broker
}

// Topic returns the topic a device range is published on.
func (p *MQTT) Topic(plc, device string) string {
	return strings.Join([]string{p.config.RootTopic, plc, "devices", device}, "/")
}

// Publish sends m and waits for the broker's acknowledgement or ctx.
func (p *MQTT) Publish(ctx context.Context, m Message) error {
	payload, err := m.Encode()
	if err != nil {
		return err
	}
	token := p.client.Publish(p.Topic(m.PLC, m.Device), p.config.QoS, p.config.Retain, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish: %w", ctx.Err())
	}
}

// Close disconnects, giving in-flight messages a quarter second.
func (p *MQTT) Close() error {
	if p.client == nil {
		return errors.New("mqtt publisher not connected")
	}
	p.client.Disconnect(250)
	return nil
}
