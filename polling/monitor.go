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

// Package polling watches PLC device ranges and reports value changes.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/ZaparooProject/go-mcprotocol/device"
)

// Reader is the part of *mcprotocol.Client a Monitor needs.
type Reader interface {
	ReadWordsContext(ctx context.Context, head string, count int) ([]int, error)
	ReadBitsContext(ctx context.Context, head string, count int) ([]bool, error)
}

// requestTimer is implemented by readers that bound each request, such as
// *mcprotocol.Client.
type requestTimer interface {
	Timeout() time.Duration
}

// ErrCycleOverrun is returned for a cycle that used up its CycleTimeout
// before every watch was read. The samples of that cycle are dropped.
var ErrCycleOverrun = errors.New("poll cycle overran its timeout")

// Metrics are the monitor's operational counters.
type Metrics struct {
	PollCycles      int64         // Completed polling cycles
	PollErrors      int64         // Cycles that failed
	Changes         int64         // Samples reported through OnChange
	CallbackErrors  int64         // OnChange calls that returned an error
	LastPollLatency time.Duration // Duration of the last cycle
}

// Monitor polls a fixed set of watches. Callbacks run on the polling
// goroutine; a slow callback delays the next cycle.
type Monitor struct {
	reader    Reader
	config    *Config
	OnChange  func(Sample) error
	OnOnline  func()
	OnOffline func(err error)
	now       func() time.Time
	watches   []Watch
	status    Status
	statusMu  sync.Mutex

	// wake is signalled whenever isPaused changes; the loop always
	// re-reads isPaused, so coalesced signals lose nothing.
	wake     chan struct{}
	isPaused atomic.Bool

	pollCycles      atomic.Int64
	pollErrors      atomic.Int64
	changes         atomic.Int64
	callbackErrors  atomic.Int64
	lastPollLatency atomic.Int64
	currentInterval atomic.Int64
}

// NewMonitor creates a monitor over reader. A nil config uses DefaultConfig.
// When reader reports its request timeout (as *mcprotocol.Client does) and
// config leaves RequestTimeout zero, the monitor adopts it, and a
// CycleTimeout too short for every watch to use its full request timeout
// is raised to fit. config itself is not modified.
func NewMonitor(reader Reader, config *Config, watches ...Watch) (*Monitor, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if len(watches) == 0 {
		return nil, errors.New("at least one watch is required")
	}
	for _, w := range watches {
		if w.Count < 1 {
			return nil, fmt.Errorf("watch %s: count must be at least 1", w)
		}
	}

	cfg := *config
	if rt, ok := reader.(requestTimer); ok && cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = rt.Timeout()
		cfg.FitCycleTimeout(len(watches))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid polling config: %w", err)
	}

	m := &Monitor{
		reader:  reader,
		config:  &cfg,
		watches: append([]Watch(nil), watches...),
		status:  newStatus(),
		now:     time.Now,
		wake:    make(chan struct{}, 1),
	}
	m.currentInterval.Store(int64(cfg.PollInterval))
	return m, nil
}

// Start polls until ctx ends or the transport is gone for good. It returns
// ctx.Err() on cancellation; a closed or misconfigured client ends the
// loop with that error since nothing reconnects it.
func (m *Monitor) Start(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.wake:
		case <-timer.C:
		}
		if err := m.waitWhilePaused(ctx); err != nil {
			return err
		}

		if err := m.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isFatal(err) {
				return err
			}
		}
		m.adjustPollInterval()
		timer.Reset(m.CurrentPollInterval())
	}
}

func (m *Monitor) waitWhilePaused(ctx context.Context) error {
	for m.isPaused.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.wake:
		}
	}
	return nil
}

func (m *Monitor) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Pause stops polling after the current cycle. Pausing twice is a no-op.
func (m *Monitor) Pause() {
	if m.isPaused.CompareAndSwap(false, true) {
		m.signal()
	}
}

// Resume restarts polling immediately. Resuming an active monitor is a no-op.
func (m *Monitor) Resume() {
	if m.isPaused.CompareAndSwap(true, false) {
		m.signal()
	}
}

// IsPaused reports whether Pause is in effect.
func (m *Monitor) IsPaused() bool {
	return m.isPaused.Load()
}

// cycle reads every watch once. A failure of any watch fails the cycle and
// no samples from it are reported. CycleTimeout is checked between reads
// rather than attached to ctx: cancelling an exchange closes the transport,
// and each read is already bounded by the reader's own request timeout.
func (m *Monitor) cycle(ctx context.Context) error {
	start := m.now()
	began := time.Now()
	samples := make([]Sample, 0, len(m.watches))
	var err error
	for i, w := range m.watches {
		if i > 0 && time.Since(began) > m.config.CycleTimeout {
			err = fmt.Errorf("%w: %d of %d watches read in %v", ErrCycleOverrun, i, len(m.watches),
				m.config.CycleTimeout)
			break
		}
		var s Sample
		s, err = m.read(ctx, w)
		if err != nil {
			err = fmt.Errorf("poll %s: %w", w, err)
			break
		}
		s.Time = start
		samples = append(samples, s)
	}
	m.pollCycles.Add(1)
	m.lastPollLatency.Store(int64(m.now().Sub(start)))

	if err != nil {
		m.pollErrors.Add(1)
		m.statusMu.Lock()
		wentOffline := m.status.RecordError(err, m.config.OfflineAfter)
		m.statusMu.Unlock()
		if wentOffline && m.OnOffline != nil {
			m.OnOffline(err)
		}
		mcprotocol.Debugf("polling: %v", err)
		return err
	}

	m.statusMu.Lock()
	cameOnline := m.status.TransitionToOnline(start)
	changed := make([]Sample, 0, len(samples))
	for i, s := range samples {
		if m.status.update(m.watches[i].String(), s) {
			changed = append(changed, s)
		}
	}
	m.statusMu.Unlock()

	if cameOnline && m.OnOnline != nil {
		m.OnOnline()
	}
	for _, s := range changed {
		m.changes.Add(1)
		if m.OnChange == nil {
			continue
		}
		if cbErr := m.OnChange(s); cbErr != nil {
			m.callbackErrors.Add(1)
			mcprotocol.Debugf("polling: change callback for %s: %v", s.Head, cbErr)
		}
	}
	return nil
}

func (m *Monitor) read(ctx context.Context, w Watch) (Sample, error) {
	if w.Bits {
		bits, err := m.reader.ReadBitsContext(ctx, w.Head, w.Count)
		return Sample{Head: w.Head, Bits: bits}, err
	}
	words, err := m.reader.ReadWordsContext(ctx, w.Head, w.Count)
	return Sample{Head: w.Head, Words: words}, err
}

// adjustPollInterval slows polling down once values have stopped changing.
func (m *Monitor) adjustPollInterval() {
	m.statusMu.Lock()
	lastChange := m.status.LastChangeTime
	m.statusMu.Unlock()

	interval := m.config.PollInterval
	if !lastChange.IsZero() && m.now().Sub(lastChange) > m.config.IdleAfter {
		interval = m.config.IdleInterval
	}
	m.currentInterval.Store(int64(interval))
}

// CurrentPollInterval returns the delay before the next cycle.
func (m *Monitor) CurrentPollInterval() time.Duration {
	return time.Duration(m.currentInterval.Load())
}

// GetStatus returns a copy of the link state.
func (m *Monitor) GetStatus() Status {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	s := m.status
	s.last = make(map[string]Sample, len(m.status.last))
	for k, v := range m.status.last {
		s.last[k] = v
	}
	return s
}

// GetMetrics returns current operational metrics.
func (m *Monitor) GetMetrics() Metrics {
	return Metrics{
		PollCycles:      m.pollCycles.Load(),
		PollErrors:      m.pollErrors.Load(),
		Changes:         m.changes.Load(),
		CallbackErrors:  m.callbackErrors.Load(),
		LastPollLatency: time.Duration(m.lastPollLatency.Load()),
	}
}

// Watches returns the monitored ranges.
func (m *Monitor) Watches() []Watch {
	return append([]Watch(nil), m.watches...)
}

// isFatal reports errors that no later cycle can recover from.
func isFatal(err error) bool {
	var unknown *mcprotocol.UnknownDeviceError
	return errors.Is(err, mcprotocol.ErrNotConnected) ||
		errors.Is(err, mcprotocol.ErrTransportClosed) ||
		errors.Is(err, mcprotocol.ErrInvalidParameter) ||
		errors.Is(err, device.ErrInvalidReference) ||
		errors.As(err, &unknown)
}
