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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allFamilies = []Family{FamilyQ, FamilyL, FamilyQnA, FamilyIQL, FamilyIQR}

type tableRow struct {
	name string
	code uint16
	base int
	kind Kind
}

var commonDevices = []tableRow{
	{"SM", 0x91, 10, KindBit},
	{"SD", 0xA9, 10, KindWord},
	{"X", 0x9C, 16, KindBit},
	{"Y", 0x9D, 16, KindBit},
	{"M", 0x90, 10, KindBit},
	{"L", 0x92, 10, KindBit},
	{"F", 0x93, 10, KindBit},
	{"V", 0x94, 10, KindBit},
	{"B", 0xA0, 16, KindBit},
	{"D", 0xA8, 10, KindWord},
	{"W", 0xB4, 16, KindWord},
	{"TS", 0xC1, 10, KindBit},
	{"TC", 0xC0, 10, KindBit},
	{"TN", 0xC2, 10, KindWord},
	{"STS", 0xC7, 10, KindBit},
	{"STC", 0xC6, 10, KindBit},
	{"STN", 0xC8, 10, KindWord},
	{"CS", 0xC4, 10, KindBit},
	{"CC", 0xC3, 10, KindBit},
	{"CN", 0xC5, 10, KindWord},
	{"SB", 0xA1, 16, KindBit},
	{"SW", 0xB5, 16, KindWord},
	{"DX", 0xA2, 16, KindBit},
	{"DY", 0xA3, 16, KindBit},
	{"R", 0xAF, 10, KindWord},
	{"ZR", 0xB0, 16, KindWord},
}

var iqrDevices = []tableRow{
	{"LTS", 0x51, 10, KindBit},
	{"LTC", 0x50, 10, KindBit},
	{"LTN", 0x52, 10, KindBit},
	{"LSTS", 0x59, 10, KindBit},
	{"LSTC", 0x58, 10, KindBit},
	{"LSTN", 0x5A, 10, KindDWord},
	{"LCS", 0x55, 10, KindBit},
	{"LCC", 0x54, 10, KindBit},
	{"LCN", 0x56, 10, KindDWord},
	{"LZ", 0x62, 10, KindDWord},
	{"RD", 0x2C, 10, KindWord},
}

func TestResolve_CommonDevices(t *testing.T) {
	t.Parallel()

	for _, family := range allFamilies {
		for _, row := range commonDevices {
			desc, err := Resolve(family, row.name)
			require.NoError(t, err, "%s on %s", row.name, family)
			assert.Equal(t, row.name, desc.Name)
			assert.Equal(t, row.code, desc.Code, "%s on %s", row.name, family)
			assert.Equal(t, row.base, desc.Base, "%s on %s", row.name, family)
			assert.Equal(t, row.kind, desc.Kind, "%s on %s", row.name, family)
		}
	}
}

func TestResolve_IQROnlyDevices(t *testing.T) {
	t.Parallel()

	for _, row := range iqrDevices {
		desc, err := Resolve(FamilyIQR, row.name)
		require.NoError(t, err, row.name)
		assert.Equal(t, row.code, desc.Code, row.name)
		assert.Equal(t, row.base, desc.Base, row.name)
		assert.Equal(t, row.kind, desc.Kind, row.name)

		for _, family := range allFamilies[:4] {
			_, err := Resolve(family, row.name)
			var unknown *UnknownDeviceError
			require.ErrorAs(t, err, &unknown, "%s must not resolve on %s", row.name, family)
			assert.Equal(t, row.name, unknown.Name)
			assert.Equal(t, family, unknown.Family)
		}
	}
}

func TestResolve_Unknown(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "Q", "P", "d", "ZZ", "XFFF", "LSTNX"} {
		_, err := Resolve(FamilyQ, name)
		var unknown *UnknownDeviceError
		assert.ErrorAs(t, err, &unknown, name)
	}

	_, err := Resolve(Family(42), "D")
	var unknown *UnknownDeviceError
	assert.ErrorAs(t, err, &unknown)
}

func TestResolve_Mnemonics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		family Family
		want   string
	}{
		{"D", FamilyQ, "D*"},
		{"SM", FamilyL, "SM"},
		{"STS", FamilyQ, "SS"},
		{"STC", FamilyQnA, "SC"},
		{"STN", FamilyIQL, "SN"},
		{"D", FamilyIQR, "D***"},
		{"STS", FamilyIQR, "STS*"},
		{"STN", FamilyIQR, "STN*"},
		{"LSTN", FamilyIQR, "LSTN"},
		{"ZR", FamilyIQR, "ZR**"},
	}

	for _, tt := range tests {
		t.Run(tt.family.String()+"/"+tt.name, func(t *testing.T) {
			t.Parallel()
			desc, err := Resolve(tt.family, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, desc.Mnemonic)
		})
	}
}

func TestNames_Exhaustive(t *testing.T) {
	t.Parallel()

	assert.Len(t, Names(FamilyQ), len(commonDevices))
	assert.Len(t, Names(FamilyIQR), len(commonDevices)+len(iqrDevices))

	for _, family := range allFamilies {
		for _, name := range Names(family) {
			_, err := Resolve(family, name)
			assert.NoError(t, err, "%s listed for %s but does not resolve", name, family)
		}
	}
}

func TestLookupCode(t *testing.T) {
	t.Parallel()

	desc, ok := LookupCode(FamilyQ, 0xA8)
	require.True(t, ok)
	assert.Equal(t, "D", desc.Name)

	_, ok = LookupCode(FamilyQ, 0x62)
	assert.False(t, ok, "LZ is iQ-R only")

	desc, ok = LookupCode(FamilyIQR, 0x62)
	require.True(t, ok)
	assert.Equal(t, "LZ", desc.Name)
}

func TestLookupMnemonic(t *testing.T) {
	t.Parallel()

	desc, ok := LookupMnemonic(FamilyQ, "SS")
	require.True(t, ok)
	assert.Equal(t, "STS", desc.Name)

	desc, ok = LookupMnemonic(FamilyIQR, "STS*")
	require.True(t, ok)
	assert.Equal(t, "STS", desc.Name)

	desc, ok = LookupMnemonic(FamilyQ, "D*")
	require.True(t, ok)
	assert.Equal(t, "D", desc.Name)

	_, ok = LookupMnemonic(FamilyQ, "LZ")
	assert.False(t, ok)
}

func TestParseFamily(t *testing.T) {
	t.Parallel()

	tests := map[string]Family{
		"Q":    FamilyQ,
		"l":    FamilyL,
		"QnA":  FamilyQnA,
		"QNA":  FamilyQnA,
		"iQ-L": FamilyIQL,
		"iq-r": FamilyIQR,
		"IQR":  FamilyIQR,
	}
	for in, want := range tests {
		got, err := ParseFamily(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFamily("FX5")
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	for _, family := range allFamilies[:4] {
		caps := Capabilities(family)
		assert.Equal(t, uint16(0x0000), caps.WordSubcommand)
		assert.Equal(t, uint16(0x0001), caps.BitSubcommand)
		assert.Equal(t, 3, caps.NumberWidth)
		assert.Equal(t, 1, caps.CodeWidth)
	}

	caps := Capabilities(FamilyIQR)
	assert.Equal(t, uint16(0x0002), caps.WordSubcommand)
	assert.Equal(t, uint16(0x0003), caps.BitSubcommand)
	assert.Equal(t, 4, caps.NumberWidth)
	assert.Equal(t, 2, caps.CodeWidth)
	assert.Equal(t, 6, caps.PasswordMin)
	assert.Equal(t, 32, caps.PasswordMax)
}

func TestUnknownDeviceError_Message(t *testing.T) {
	t.Parallel()

	err := error(&UnknownDeviceError{Name: "XFFF", Family: FamilyQ})
	assert.Contains(t, err.Error(), `"XFFF"`)
	assert.Contains(t, err.Error(), "Q series")
	assert.Contains(t, err.Error(), "X0FFF")

	var target *UnknownDeviceError
	assert.True(t, errors.As(err, &target))
}
