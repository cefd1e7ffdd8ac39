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
	"time"
)

// LinkState is the monitor's view of the PLC.
type LinkState int

const (
	// StateUnknown is the state before the first cycle completes.
	StateUnknown LinkState = iota
	// StateOnline means the last cycle read every watch.
	StateOnline
	// StateDegraded means recent cycles failed but fewer than the offline
	// threshold.
	StateDegraded
	// StateOffline means OfflineAfter cycles in a row failed.
	StateOffline
)

func (s LinkState) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateDegraded:
		return "degraded"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Status tracks the link state and the last values seen per watch.
type Status struct {
	LastSeenTime      time.Time
	LastChangeTime    time.Time
	LastError         error
	last              map[string]Sample
	State             LinkState
	ConsecutiveErrors int
}

func newStatus() Status {
	return Status{last: make(map[string]Sample)}
}

// TransitionToOnline records a successful cycle. It reports whether the
// link was not online before.
func (s *Status) TransitionToOnline(now time.Time) bool {
	wasOnline := s.State == StateOnline
	s.State = StateOnline
	s.LastSeenTime = now
	s.ConsecutiveErrors = 0
	s.LastError = nil
	return !wasOnline
}

// RecordError records a failed cycle. It reports whether this failure
// crossed the offline threshold.
func (s *Status) RecordError(err error, offlineAfter int) bool {
	s.ConsecutiveErrors++
	s.LastError = err
	if s.ConsecutiveErrors >= offlineAfter {
		wasOffline := s.State == StateOffline
		s.State = StateOffline
		// Forget values so the first cycle after recovery reports all of them.
		s.last = make(map[string]Sample)
		return !wasOffline
	}
	s.State = StateDegraded
	return false
}

// update stores a sample and reports whether it differs from the last one
// stored for the same watch.
func (s *Status) update(key string, sample Sample) bool {
	prev, seen := s.last[key]
	s.last[key] = sample
	if seen && prev.equal(sample) {
		return false
	}
	s.LastChangeTime = sample.Time
	return true
}

// Last returns the most recent sample of a watch.
func (s Status) Last(w Watch) (Sample, bool) {
	sample, ok := s.last[w.String()]
	return sample, ok
}
