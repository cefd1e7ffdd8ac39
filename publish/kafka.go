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
	"fmt"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/segmentio/kafka-go"
)

// KafkaConfig configures a Kafka publisher.
type KafkaConfig struct {
	Topic   string
	Brokers []string
	// AutoCreateTopic lets the broker create Topic on first write.
	AutoCreateTopic bool
}

// kafkaWriter is the part of *kafka.Writer the publisher uses.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes each message to one topic, keyed by "<plc>/<device>" so
// changes to a range stay ordered within a partition.
type Kafka struct {
	writer kafkaWriter
	config KafkaConfig
}

// NewKafka creates a synchronous writer. Connections are opened lazily on
// the first Publish.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, &mcprotocol.ConfigurationError{Field: "kafka.brokers", Reason: "must not be empty"}
	}
	if cfg.Topic == "" {
		return nil, &mcprotocol.ConfigurationError{Field: "kafka.topic", Reason: "must not be empty"}
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: cfg.AutoCreateTopic,
	}
	return newKafka(writer, cfg), nil
}

func newKafka(writer kafkaWriter, cfg KafkaConfig) *Kafka {
	return &Kafka{writer: writer, config: cfg}
}

// Name identifies the publisher in errors.
func (p *Kafka) Name() string {
	return "kafka " + p.config.Topic
}

// Publish writes m and waits for the broker.
func (p *Kafka) Publish(ctx context.Context, m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(m.PLC + "/" + m.Device),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka produce failed: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Kafka) Close() error {
	return p.writer.Close()
}
