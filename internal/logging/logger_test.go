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

package logging

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, err := ParseLevel(" Debug ")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, level)

	_, err = ParseLevel("trace")
	assert.Error(t, err)
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		level      LogLevel
		wantStdout []string
		wantStderr bool
	}{
		{name: "silent", level: LogLevelSilent},
		{name: "error", level: LogLevelError, wantStderr: true},
		{name: "info", level: LogLevelInfo, wantStderr: true},
		{name: "verbose", level: LogLevelVerbose, wantStderr: true,
			wantStdout: []string{"INFO: i", "VERBOSE: v"}},
		{name: "debug", level: LogLevelDebug, wantStderr: true,
			wantStdout: []string{"INFO: i", "VERBOSE: v", "DEBUG: d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			l := NewLoggerTo(tt.level, &stdout, &stderr)
			l.Error("e")
			l.Info("i")
			l.Verbose("v")
			l.Debug("d")

			for _, want := range tt.wantStdout {
				assert.Contains(t, stdout.String(), want)
			}
			if len(tt.wantStdout) == 0 {
				assert.Empty(t, stdout.String())
			}
			assert.Equal(t, tt.wantStderr, stderr.String() == "ERROR: e\n")
		})
	}
}

func TestLogger_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mcctl.log")
	l, err := NewLogger(LogLevelInfo, path)
	require.NoError(t, err)
	l.Info("connected to %s", "plc")
	l.Verbose("hidden")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO: connected to plc")
	assert.NotContains(t, string(data), "hidden")

	_, err = NewLogger(LogLevelInfo, filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

func TestLogger_LogOperation(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	l := NewLoggerTo(LogLevelVerbose, &stdout, &bytes.Buffer{})
	l.LogOperation("read-words", "D100", 1500*time.Microsecond, nil)
	l.LogOperation("read-words", "D100", time.Millisecond, errors.New("end code 0xC051"))

	assert.Contains(t, stdout.String(), "SUCCESS read-words on D100 (1.500ms)")
	assert.Contains(t, stdout.String(), "FAILED read-words on D100 (1.000ms) - error: end code 0xC051")
}

func TestLogger_HexAndWriter(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	l := NewLoggerTo(LogLevelDebug, &stdout, &bytes.Buffer{})
	l.LogHex("TX", []byte{0x50, 0x00, 0xFF})
	assert.Contains(t, stdout.String(), "DEBUG: TX: 50 00 FF")

	std := log.New(l.Writer(), "", 0)
	std.Println("[MC] >> 5000")
	assert.Contains(t, stdout.String(), "DEBUG: [MC] >> 5000")

	l.SetLevel(LogLevelInfo)
	assert.Equal(t, LogLevelInfo, l.GetLevel())
	stdout.Reset()
	l.LogHex("TX", []byte{0x01})
	assert.Empty(t, stdout.String())
}
