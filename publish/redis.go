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
	"strings"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis (or Valkey) publisher.
type RedisConfig struct {
	Address  string
	Password string
	Prefix   string
	DB       int
	// KeyTTL expires stored values; zero keeps them forever.
	KeyTTL time.Duration
	// PublishChanges also sends each message on "<prefix>:<plc>:changes".
	PublishChanges bool
}

// redisClient is the part of *redis.Client the publisher uses.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Redis stores the latest value of each device range under
// "<prefix>:<plc>:devices:<device>".
type Redis struct {
	client redisClient
	config RedisConfig
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Address == "" {
		return nil, &mcprotocol.ConfigurationError{Field: "redis.address", Reason: "must not be empty"}
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}
	mcprotocol.Debugf("connected to redis %s (db %d)", cfg.Address, cfg.DB)
	return newRedis(client, cfg), nil
}

func newRedis(client redisClient, cfg RedisConfig) *Redis {
	if cfg.Prefix == "" {
		cfg.Prefix = "mc"
	}
	return &Redis{client: client, config: cfg}
}

// Name identifies the publisher in errors.
func (p *Redis) Name() string {
	return "redis " + p.config.Address
}

// Key returns the key a device range is stored under.
func (p *Redis) Key(plc, device string) string {
	return strings.Join([]string{p.config.Prefix, plc, "devices", device}, ":")
}

// Channel returns the pub/sub channel for a PLC's changes.
func (p *Redis) Channel(plc string) string {
	return strings.Join([]string{p.config.Prefix, plc, "changes"}, ":")
}

// Publish stores m and optionally announces it.
func (p *Redis) Publish(ctx context.Context, m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if err := p.client.Set(ctx, p.Key(m.PLC, m.Device), data, p.config.KeyTTL).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	if p.config.PublishChanges {
		if err := p.client.Publish(ctx, p.Channel(m.PLC), data).Err(); err != nil {
			return fmt.Errorf("failed to publish change: %w", err)
		}
	}
	return nil
}

// Close closes the connection pool.
func (p *Redis) Close() error {
	return p.client.Close()
}
