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

// Package config loads connection profiles for the command line tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/polling"
	"github.com/ZaparooProject/go-mcprotocol/publish"
	"github.com/ZaparooProject/go-mcprotocol/transport/serial"
	"gopkg.in/yaml.v3"
)

// Profile describes one PLC connection.
type Profile struct {
	Name           string          `yaml:"name"`
	Family         string          `yaml:"family"`
	Frame          string          `yaml:"frame"`
	Representation string          `yaml:"representation"`
	Capture        string          `yaml:"capture"`
	Transport      TransportConfig `yaml:"transport"`
	Poll           PollConfig      `yaml:"poll"`
	Publish        PublishConfig   `yaml:"publish"`
	Routing        RoutingConfig   `yaml:"routing"`
	SerialNumber   uint16          `yaml:"serial_number"`
}

// TransportConfig selects the byte stream.
type TransportConfig struct {
	Type    string       `yaml:"type"`
	Address string       `yaml:"address"`
	Serial  SerialConfig `yaml:"serial"`
}

// SerialConfig holds serial line settings.
type SerialConfig struct {
	Parity   string `yaml:"parity"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
}

// RoutingConfig holds the header routing fields. Nil fields keep the
// defaults (network 0, station 0xFF, module I/O 0x03FF, module station 0,
// timer 4).
type RoutingConfig struct {
	Network       *uint8  `yaml:"network"`
	Station       *uint8  `yaml:"station"`
	ModuleIO      *uint16 `yaml:"module_io"`
	ModuleStation *uint8  `yaml:"module_station"`
	Timer         *uint16 `yaml:"timer"`
}

// PollConfig configures mcctl watch.
type PollConfig struct {
	Watches        []WatchConfig `yaml:"watches"`
	IntervalMs     int           `yaml:"interval_ms"`
	IdleIntervalMs int           `yaml:"idle_interval_ms"`
	IdleAfterMs    int           `yaml:"idle_after_ms"`
	OfflineAfter   int           `yaml:"offline_after"`
	// CycleTimeoutMs of zero sizes the cycle to the watches and the
	// routing timer.
	CycleTimeoutMs int `yaml:"cycle_timeout_ms"`
}

// WatchConfig is one polled range.
type WatchConfig struct {
	Device string `yaml:"device"`
	Count  int    `yaml:"count"`
	Bits   bool   `yaml:"bits"`
}

// PublishConfig lists the brokers watched values go to.
type PublishConfig struct {
	MQTT  *MQTTConfig  `yaml:"mqtt"`
	Redis *RedisConfig `yaml:"redis"`
	Kafka *KafkaConfig `yaml:"kafka"`
}

// MQTTConfig mirrors publish.MQTTConfig.
type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	ClientID  string `yaml:"client_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	RootTopic string `yaml:"root_topic"`
	QoS       byte   `yaml:"qos"`
	Retain    bool   `yaml:"retain"`
}

// RedisConfig mirrors publish.RedisConfig.
type RedisConfig struct {
	Address        string `yaml:"address"`
	Password       string `yaml:"password"`
	Prefix         string `yaml:"prefix"`
	DB             int    `yaml:"db"`
	KeyTTLSeconds  int    `yaml:"key_ttl_seconds"`
	PublishChanges bool   `yaml:"publish_changes"`
}

// KafkaConfig mirrors publish.KafkaConfig.
type KafkaConfig struct {
	Topic           string   `yaml:"topic"`
	Brokers         []string `yaml:"brokers"`
	AutoCreateTopic bool     `yaml:"auto_create_topic"`
}

// Transport types.
const (
	TransportTCP    = "tcp"
	TransportSerial = "serial"
)

// Default returns the profile used when no file is given.
func Default() *Profile {
	p := &Profile{}
	p.applyDefaults()
	return p
}

// Load reads, defaults and validates a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("profile not found: %s", path)
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML profile. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Marshal renders the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return data, nil
}

func (p *Profile) applyDefaults() {
	if p.Family == "" {
		p.Family = device.FamilyQ.String()
	}
	if p.Frame == "" {
		p.Frame = mcprotocol.Frame3E.String()
	}
	if p.Representation == "" {
		p.Representation = mcprotocol.Binary.String()
	}
	if p.Transport.Type == "" {
		p.Transport.Type = TransportTCP
	}
	line, lineDef := &p.Transport.Serial, serial.DefaultConfig()
	if line.BaudRate == 0 {
		line.BaudRate = lineDef.BaudRate
	}
	if line.DataBits == 0 {
		line.DataBits = lineDef.DataBits
	}
	if line.Parity == "" {
		line.Parity = lineDef.Parity
	}
	if line.StopBits == 0 {
		line.StopBits = lineDef.StopBits
	}
	def := polling.DefaultConfig()
	if p.Poll.IntervalMs == 0 {
		p.Poll.IntervalMs = int(def.PollInterval / time.Millisecond)
	}
	if p.Poll.IdleIntervalMs == 0 {
		p.Poll.IdleIntervalMs = int(def.IdleInterval / time.Millisecond)
	}
	if p.Poll.IdleAfterMs == 0 {
		p.Poll.IdleAfterMs = int(def.IdleAfter / time.Millisecond)
	}
	if p.Poll.OfflineAfter == 0 {
		p.Poll.OfflineAfter = def.OfflineAfter
	}
}

// Validate checks every field and returns the first problem as a
// *mcprotocol.ConfigurationError. It does not modify the profile.
func (p *Profile) Validate() error {
	family, err := device.ParseFamily(p.Family)
	if err != nil {
		return &mcprotocol.ConfigurationError{Field: "family", Reason: err.Error()}
	}
	if _, err := ParseFrame(p.Frame); err != nil {
		return err
	}
	if _, err := ParseRepresentation(p.Representation); err != nil {
		return err
	}

	switch p.Transport.Type {
	case TransportTCP, TransportSerial:
	default:
		return &mcprotocol.ConfigurationError{Field: "transport.type",
			Reason: fmt.Sprintf("%q is not tcp or serial", p.Transport.Type)}
	}
	if p.Transport.Type == TransportSerial {
		if _, err := p.SerialConfig().Mode(); err != nil {
			return err
		}
	}

	if err := p.PollingConfig().Validate(); err != nil {
		return &mcprotocol.ConfigurationError{Field: "poll", Reason: err.Error()}
	}
	for i, w := range p.Poll.Watches {
		field := fmt.Sprintf("poll.watches[%d]", i)
		if w.Count < 1 {
			return &mcprotocol.ConfigurationError{Field: field + ".count", Reason: "must be at least 1"}
		}
		if _, err := device.ParseReference(family, w.Device); err != nil {
			return &mcprotocol.ConfigurationError{Field: field + ".device", Reason: err.Error()}
		}
	}

	if m := p.Publish.MQTT; m != nil {
		if m.Broker == "" {
			return &mcprotocol.ConfigurationError{Field: "publish.mqtt.broker", Reason: "must not be empty"}
		}
		if m.QoS > 2 {
			return &mcprotocol.ConfigurationError{Field: "publish.mqtt.qos", Reason: "must be 0, 1 or 2"}
		}
	}
	if r := p.Publish.Redis; r != nil && r.Address == "" {
		return &mcprotocol.ConfigurationError{Field: "publish.redis.address", Reason: "must not be empty"}
	}
	if k := p.Publish.Kafka; k != nil && (k.Topic == "" || len(k.Brokers) == 0) {
		return &mcprotocol.ConfigurationError{Field: "publish.kafka", Reason: "topic and brokers are required"}
	}
	return nil
}

// ParseFrame converts "3E" or "4E" to a frame variant.
func ParseFrame(s string) (mcprotocol.Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "3E":
		return mcprotocol.Frame3E, nil
	case "4E":
		return mcprotocol.Frame4E, nil
	default:
		return 0, &mcprotocol.ConfigurationError{Field: "frame", Reason: fmt.Sprintf("%q is not 3E or 4E", s)}
	}
}

// ParseRepresentation converts "binary" or "ascii" to a representation.
func ParseRepresentation(s string) (mcprotocol.Representation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "bin":
		return mcprotocol.Binary, nil
	case "ascii", "text":
		return mcprotocol.ASCII, nil
	default:
		return 0, &mcprotocol.ConfigurationError{Field: "representation",
			Reason: fmt.Sprintf("%q is not binary or ascii", s)}
	}
}

// HeaderRouting returns the header routing with the profile's overrides applied.
func (p *Profile) HeaderRouting() mcprotocol.Routing {
	r := mcprotocol.DefaultRouting()
	if p.Routing.Network != nil {
		r.Network = *p.Routing.Network
	}
	if p.Routing.Station != nil {
		r.Station = *p.Routing.Station
	}
	if p.Routing.ModuleIO != nil {
		r.ModuleIO = *p.Routing.ModuleIO
	}
	if p.Routing.ModuleStation != nil {
		r.ModuleStation = *p.Routing.ModuleStation
	}
	if p.Routing.Timer != nil {
		r.Timer = *p.Routing.Timer
	}
	return r
}

// ClientOptions converts the profile to client options.
func (p *Profile) ClientOptions() ([]mcprotocol.Option, error) {
	family, err := device.ParseFamily(p.Family)
	if err != nil {
		return nil, &mcprotocol.ConfigurationError{Field: "family", Reason: err.Error()}
	}
	variant, err := ParseFrame(p.Frame)
	if err != nil {
		return nil, err
	}
	rep, err := ParseRepresentation(p.Representation)
	if err != nil {
		return nil, err
	}
	return []mcprotocol.Option{
		mcprotocol.WithFamily(family),
		mcprotocol.WithHeader(variant),
		mcprotocol.WithRepresentation(rep),
		mcprotocol.WithRouting(p.HeaderRouting()),
		mcprotocol.WithSerial(p.SerialNumber),
	}, nil
}

// SerialConfig returns the serial line settings.
func (p *Profile) SerialConfig() serial.Config {
	s := p.Transport.Serial
	return serial.Config{BaudRate: s.BaudRate, DataBits: s.DataBits, Parity: s.Parity, StopBits: s.StopBits}
}

// PollingConfig returns the monitor settings. The request timeout follows
// the routing timer the same way the client's does.
func (p *Profile) PollingConfig() *polling.Config {
	cfg := polling.DefaultConfig()
	cfg.PollInterval = time.Duration(p.Poll.IntervalMs) * time.Millisecond
	cfg.IdleInterval = time.Duration(p.Poll.IdleIntervalMs) * time.Millisecond
	cfg.IdleAfter = time.Duration(p.Poll.IdleAfterMs) * time.Millisecond
	cfg.OfflineAfter = p.Poll.OfflineAfter
	cfg.RequestTimeout = mcprotocol.TimeoutForTimer(p.HeaderRouting().Timer)
	if p.Poll.CycleTimeoutMs > 0 {
		cfg.CycleTimeout = time.Duration(p.Poll.CycleTimeoutMs) * time.Millisecond
	} else {
		cfg.FitCycleTimeout(max(len(p.Poll.Watches), 1))
	}
	return cfg
}

// Watches returns the polled ranges.
func (p *Profile) Watches() []polling.Watch {
	out := make([]polling.Watch, 0, len(p.Poll.Watches))
	for _, w := range p.Poll.Watches {
		out = append(out, polling.Watch{Head: w.Device, Count: w.Count, Bits: w.Bits})
	}
	return out
}

// MQTT returns the MQTT publisher settings, or nil.
func (p *Profile) MQTT() *publish.MQTTConfig {
	m := p.Publish.MQTT
	if m == nil {
		return nil
	}
	return &publish.MQTTConfig{Broker: m.Broker, ClientID: m.ClientID, Username: m.Username,
		Password: m.Password, RootTopic: m.RootTopic, QoS: m.QoS, Retain: m.Retain}
}

// Redis returns the Redis publisher settings, or nil.
func (p *Profile) Redis() *publish.RedisConfig {
	r := p.Publish.Redis
	if r == nil {
		return nil
	}
	return &publish.RedisConfig{Address: r.Address, Password: r.Password, Prefix: r.Prefix, DB: r.DB,
		KeyTTL: time.Duration(r.KeyTTLSeconds) * time.Second, PublishChanges: r.PublishChanges}
}

// Kafka returns the Kafka publisher settings, or nil.
func (p *Profile) Kafka() *publish.KafkaConfig {
	k := p.Publish.Kafka
	if k == nil {
		return nil
	}
	return &publish.KafkaConfig{Topic: k.Topic, Brokers: k.Brokers, AutoCreateTopic: k.AutoCreateTopic}
}
