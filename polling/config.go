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

package polling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config controls how often a Monitor reads the PLC.
type Config struct {
	// PollInterval is the delay between cycles while values are changing.
	PollInterval time.Duration
	// IdleAfter is how long values must stay unchanged before the monitor
	// slows down to IdleInterval.
	IdleAfter time.Duration
	// IdleInterval is the delay between cycles once idle.
	IdleInterval time.Duration
	// CycleTimeout bounds one full cycle over every watch. It is checked
	// between reads, so a cycle that overruns it ends after the read in
	// flight and the transport stays open.
	CycleTimeout time.Duration
	// RequestTimeout is how long a single read may take, normally the
	// client's Timeout. Zero means unknown.
	RequestTimeout time.Duration
	// OfflineAfter is the number of consecutive failed cycles that mark the
	// PLC offline.
	OfflineAfter int
}

// DefaultConfig returns the defaults used when NewMonitor gets nil.
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 100 * time.Millisecond,
		IdleAfter:    5 * time.Second,
		IdleInterval: 500 * time.Millisecond,
		CycleTimeout: 5 * time.Second,
		OfflineAfter: 3,
	}
}

// Validate checks that every duration is usable.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.IdleInterval < c.PollInterval {
		return fmt.Errorf("idle interval %v is shorter than poll interval %v", c.IdleInterval, c.PollInterval)
	}
	if c.CycleTimeout <= 0 {
		return fmt.Errorf("cycle timeout must be positive, got %v", c.CycleTimeout)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %v", c.RequestTimeout)
	}
	if c.CycleTimeout < c.RequestTimeout {
		return fmt.Errorf("cycle timeout %v is shorter than the request timeout %v", c.CycleTimeout, c.RequestTimeout)
	}
	if c.OfflineAfter < 1 {
		return fmt.Errorf("offline threshold must be at least 1, got %d", c.OfflineAfter)
	}
	return nil
}

// FitCycleTimeout raises CycleTimeout so that each of watches reads may
// use the full RequestTimeout.
func (c *Config) FitCycleTimeout(watches int) {
	if need := time.Duration(watches) * c.RequestTimeout; c.CycleTimeout < need {
		c.CycleTimeout = need
	}
}

// Watch is one contiguous device range read every cycle.
type Watch struct {
	// Head is the first device, e.g. "D100" or "M0".
	Head  string
	Count int
	// Bits reads the range in bit units instead of word units.
	Bits bool
}

// String returns "D100x4" or "M0x16/bits".
func (w Watch) String() string {
	if w.Bits {
		return fmt.Sprintf("%sx%d/bits", w.Head, w.Count)
	}
	return fmt.Sprintf("%sx%d", w.Head, w.Count)
}

// ParseWatch is the inverse of Watch.String. A missing count means 1.
func ParseWatch(s string) (Watch, error) {
	var w Watch
	if head, ok := strings.CutSuffix(s, "/bits"); ok {
		w.Bits = true
		s = head
	}
	w.Head, w.Count = s, 1
	if i := strings.LastIndexByte(s, 'x'); i > 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return Watch{}, fmt.Errorf("watch %q: invalid count: %w", s, err)
		}
		w.Head, w.Count = s[:i], n
	}
	if w.Head == "" || w.Count < 1 {
		return Watch{}, fmt.Errorf("watch %q: expected DEVICE[xCOUNT][/bits]", s)
	}
	return w, nil
}

// Sample is the values of one Watch at one point in time. Exactly one of
// Words and Bits is set.
type Sample struct {
	Time  time.Time `json:"time"`
	Head  string    `json:"head"`
	Words []int     `json:"words,omitempty"`
	Bits  []bool    `json:"bits,omitempty"`
}

// equal reports whether two samples carry the same values.
func (s Sample) equal(other Sample) bool {
	if len(s.Words) != len(other.Words) || len(s.Bits) != len(other.Bits) {
		return false
	}
	for i := range s.Words {
		if s.Words[i] != other.Words[i] {
			return false
		}
	}
	for i := range s.Bits {
		if s.Bits[i] != other.Bits[i] {
			return false
		}
	}
	return true
}
