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

package mcprotocol

import (
	"testing"

	testutil "github.com/ZaparooProject/go-mcprotocol/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteStateChanges(t *testing.T) {
	t.Parallel()
	for _, combo := range allCombos {
		t.Run(combo.name, func(t *testing.T) {
			t.Parallel()
			client, plc, _ := newVirtualClient(t, FamilyQ, combo.variant, combo.rep)

			require.NoError(t, client.RemoteStop())
			assert.Equal(t, testutil.StateStop, plc.State)

			require.NoError(t, client.RemoteLatchClear())

			require.NoError(t, client.RemotePause(false))
			assert.Equal(t, testutil.StatePause, plc.State)

			require.NoError(t, client.RemoteRun(ClearNone, false))
			assert.Equal(t, testutil.StateRun, plc.State)

			require.NoError(t, client.RemoteStop())
			require.NoError(t, client.RemoteReset())
			assert.Equal(t, testutil.StateRun, plc.State)
		})
	}
}

func TestRemoteRunClearsMemory(t *testing.T) {
	t.Parallel()
	client, _, _ := newVirtualClient(t, FamilyQ, Frame3E, Binary)

	require.NoError(t, client.WriteWords("D0", []int{99}))
	require.NoError(t, client.RemoteRun(ClearAll, false))
	words, err := client.ReadWords("D0", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, words)

	err = client.RemoteRun(ClearMode(3), false)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRemoteReset(t *testing.T) {
	t.Parallel()

	t.Run("silent reset is success", func(t *testing.T) {
		t.Parallel()
		client, plc, mock := newVirtualClient(t, FamilyQ, Frame3E, Binary)
		plc.ResetReply = false
		require.NoError(t, client.RemoteReset())
		assert.Len(t, mock.Requests(), 1)
	})

	t.Run("answered reset", func(t *testing.T) {
		t.Parallel()
		client, plc, _ := newVirtualClient(t, FamilyQ, Frame4E, ASCII)
		plc.ResetReply = true
		require.NoError(t, client.RemoteReset())
	})

	t.Run("end code is still an error", func(t *testing.T) {
		t.Parallel()
		client, plc, _ := newVirtualClient(t, FamilyQ, Frame3E, Binary)
		plc.InjectEndCode(0x4013)
		err := client.RemoteReset()
		var protoErr *ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, uint16(0x4013), protoErr.Code)
	})
}

func TestRemotePasswords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		family   Family
		valid    bool
	}{
		{name: "Q four characters", family: FamilyQ, password: testutil.TestQPassword, valid: true},
		{name: "Q too short", family: FamilyQ, password: "abc"},
		{name: "Q too long", family: FamilyQ, password: "abcde"},
		{name: "iQ-L four characters", family: FamilyIQL, password: "wxyz", valid: true},
		{name: "iQ-R six characters", family: FamilyIQR, password: testutil.TestIQRPassword, valid: true},
		{name: "iQ-R thirty two characters", family: FamilyIQR, password: "0123456789abcdef0123456789abcdef", valid: true},
		{name: "iQ-R too short", family: FamilyIQR, password: "abcd"},
		{name: "iQ-R too long", family: FamilyIQR, password: "0123456789abcdef0123456789abcdefX"},
		{name: "non ascii", family: FamilyQ, password: "abé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, plc, mock := newVirtualClient(t, tt.family, Frame3E, ASCII)
			plc.Password = tt.password

			err := client.RemoteUnlock(tt.password)
			if !tt.valid {
				require.ErrorIs(t, err, ErrInvalidParameter)
				assert.Empty(t, mock.Requests())
				return
			}
			require.NoError(t, err)
			assert.False(t, plc.Locked)

			require.NoError(t, client.RemoteLock(tt.password))
			assert.True(t, plc.Locked)
		})
	}
}

func TestRemoteWrongPassword(t *testing.T) {
	t.Parallel()
	client, plc, _ := newVirtualClient(t, FamilyIQR, Frame3E, Binary)
	plc.Password = testutil.TestIQRPassword

	err := client.RemoteUnlock("wrongpw")
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, testutil.EndCodePasswordMismatch, protoErr.Code)
}
