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

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token      string
		family     Family
		wantName   string
		wantOffset uint32
		wantErr    bool
	}{
		{token: "D1000", family: FamilyQ, wantName: "D", wantOffset: 1000},
		{token: "d1000", family: FamilyQ, wantName: "D", wantOffset: 1000},
		{token: " M10 ", family: FamilyL, wantName: "M", wantOffset: 10},
		{token: "X1F", family: FamilyQ, wantName: "X", wantOffset: 0x1F},
		{token: "X0FFF", family: FamilyQ, wantName: "X", wantOffset: 0xFFF},
		{token: "ZR100", family: FamilyQ, wantName: "ZR", wantOffset: 0x100},
		{token: "SM400", family: FamilyQ, wantName: "SM", wantOffset: 400},
		{token: "STS7", family: FamilyQnA, wantName: "STS", wantOffset: 7},
		{token: "LZ2", family: FamilyIQR, wantName: "LZ", wantOffset: 2},
		{token: "D0", family: FamilyIQR, wantName: "D", wantOffset: 0},

		{token: "XFFF", family: FamilyQ, wantErr: true},  // hex number must start with a digit
		{token: "D1F", family: FamilyQ, wantErr: true},   // D is decimal
		{token: "LZ2", family: FamilyQ, wantErr: true},   // iQ-R only
		{token: "Q100", family: FamilyQ, wantErr: true},  // not an MC device
		{token: "1000", family: FamilyQ, wantErr: true},  // no name
		{token: "", family: FamilyQ, wantErr: true},      // empty
		{token: "D", family: FamilyQ, wantErr: true},     // no number
		{token: "D99999999999", family: FamilyQ, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			ref, err := ParseReference(tt.family, tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, ref.Name)
			assert.Equal(t, tt.wantOffset, ref.Offset)
		})
	}
}

func TestParseReference_UnknownDeviceIsTyped(t *testing.T) {
	t.Parallel()

	_, err := ParseReference(FamilyQ, "XFFF")
	var unknown *UnknownDeviceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "XFFF", unknown.Name)

	_, err = ParseReference(FamilyL, "RD5")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "RD", unknown.Name)
	assert.Equal(t, FamilyL, unknown.Family)
}

func TestParseReference_InvalidNumber(t *testing.T) {
	t.Parallel()

	_, err := ParseReference(FamilyQ, "D12A")
	require.ErrorIs(t, err, ErrInvalidReference)
	assert.Contains(t, err.Error(), "base 10")
}

func TestReference_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "D1000", MustParseReference(FamilyQ, "d1000").String())
	assert.Equal(t, "X1F", MustParseReference(FamilyQ, "X01f").String())
	assert.Equal(t, "LZ3", MustParseReference(FamilyIQR, "LZ3").String())
}

func TestMustParseReference_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustParseReference(FamilyQ, "nope") })
}
