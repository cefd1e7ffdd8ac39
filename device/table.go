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
	"fmt"
	"sort"
	"strings"
)

// Kind is the natural access unit of a device.
type Kind int

const (
	KindBit Kind = iota
	KindWord
	KindDWord
)

// String returns "bit", "word" or "dword".
func (k Kind) String() string {
	switch k {
	case KindBit:
		return "bit"
	case KindWord:
		return "word"
	case KindDWord:
		return "dword"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Descriptor describes one device as seen by a specific PLC family.
type Descriptor struct {
	// Name is the canonical device name, e.g. "D" or "STS".
	Name string
	// Mnemonic is the text-mode device code, padded with '*' to the
	// family's mnemonic width.
	Mnemonic string
	// Code is the binary device code.
	Code uint16
	// Base is the radix device numbers are written in (10 or 16).
	Base int
	// Kind is the access unit of the device.
	Kind Kind
}

// UnknownDeviceError is returned when a device name does not exist or is
// not available on the requested family.
type UnknownDeviceError struct {
	Name   string
	Family Family
}

func (e *UnknownDeviceError) Error() string {
	return fmt.Sprintf("device %q is not supported on %s series PLCs "+
		"(hexadecimal devices X, Y, B, W, SB, SW, DX, DY, ZR need a 0 before a "+
		"number that starts with a letter, e.g. X0FFF)", e.Name, e.Family)
}

type entry struct {
	legacyMnemonic string // text code on non-iQ-R families when it differs from the name
	code           uint16
	base           int
	kind           Kind
	iqrOnly        bool
}

// table is keyed by device name.
var table = map[string]entry{
	"SM": {code: 0x91, base: 10, kind: KindBit},
	"SD": {code: 0xA9, base: 10, kind: KindWord},
	"X":  {code: 0x9C, base: 16, kind: KindBit},
	"Y":  {code: 0x9D, base: 16, kind: KindBit},
	"M":  {code: 0x90, base: 10, kind: KindBit},
	"L":  {code: 0x92, base: 10, kind: KindBit},
	"F":  {code: 0x93, base: 10, kind: KindBit},
	"V":  {code: 0x94, base: 10, kind: KindBit},
	"B":  {code: 0xA0, base: 16, kind: KindBit},
	"D":  {code: 0xA8, base: 10, kind: KindWord},
	"W":  {code: 0xB4, base: 16, kind: KindWord},
	"TS": {code: 0xC1, base: 10, kind: KindBit},
	"TC": {code: 0xC0, base: 10, kind: KindBit},
	"TN": {code: 0xC2, base: 10, kind: KindWord},

	"STS": {code: 0xC7, base: 10, kind: KindBit, legacyMnemonic: "SS"},
	"STC": {code: 0xC6, base: 10, kind: KindBit, legacyMnemonic: "SC"},
	"STN": {code: 0xC8, base: 10, kind: KindWord, legacyMnemonic: "SN"},

	"CS": {code: 0xC4, base: 10, kind: KindBit},
	"CC": {code: 0xC3, base: 10, kind: KindBit},
	"CN": {code: 0xC5, base: 10, kind: KindWord},
	"SB": {code: 0xA1, base: 16, kind: KindBit},
	"SW": {code: 0xB5, base: 16, kind: KindWord},
	"DX": {code: 0xA2, base: 16, kind: KindBit},
	"DY": {code: 0xA3, base: 16, kind: KindBit},
	"R":  {code: 0xAF, base: 10, kind: KindWord},
	"ZR": {code: 0xB0, base: 16, kind: KindWord},

	"LTS":  {code: 0x51, base: 10, kind: KindBit, iqrOnly: true},
	"LTC":  {code: 0x50, base: 10, kind: KindBit, iqrOnly: true},
	"LTN":  {code: 0x52, base: 10, kind: KindBit, iqrOnly: true},
	"LSTS": {code: 0x59, base: 10, kind: KindBit, iqrOnly: true},
	"LSTC": {code: 0x58, base: 10, kind: KindBit, iqrOnly: true},
	"LSTN": {code: 0x5A, base: 10, kind: KindDWord, iqrOnly: true},
	"LCS":  {code: 0x55, base: 10, kind: KindBit, iqrOnly: true},
	"LCC":  {code: 0x54, base: 10, kind: KindBit, iqrOnly: true},
	"LCN":  {code: 0x56, base: 10, kind: KindDWord, iqrOnly: true},
	"LZ":   {code: 0x62, base: 10, kind: KindDWord, iqrOnly: true},
	// TODO: RD is documented as word in one revision of the device list and
	// dword in another; confirm against the iQ-R MC protocol reference.
	"RD": {code: 0x2C, base: 10, kind: KindWord, iqrOnly: true},
}

func (e entry) availableOn(f Family) bool {
	return f.Valid() && (!e.iqrOnly || f == FamilyIQR)
}

func (e entry) descriptor(name string, f Family) Descriptor {
	caps := Capabilities(f)
	mnemonic := name
	if f != FamilyIQR && e.legacyMnemonic != "" {
		mnemonic = e.legacyMnemonic
	}
	if pad := caps.MnemonicWidth - len(mnemonic); pad > 0 {
		mnemonic += strings.Repeat("*", pad)
	}
	return Descriptor{
		Name:     name,
		Mnemonic: mnemonic,
		Code:     e.code,
		Base:     e.base,
		Kind:     e.kind,
	}
}

// Resolve looks up a device name for a family. Names are matched exactly
// (upper case). Unknown names, and iQ-R only names on other families, fail
// with *UnknownDeviceError.
func Resolve(f Family, name string) (Descriptor, error) {
	e, ok := table[name]
	if !ok || !e.availableOn(f) {
		return Descriptor{}, &UnknownDeviceError{Name: name, Family: f}
	}
	return e.descriptor(name, f), nil
}

// LookupCode finds the device that owns a binary device code.
func LookupCode(f Family, code uint16) (Descriptor, bool) {
	for name, e := range table {
		if e.code == code && e.availableOn(f) {
			return e.descriptor(name, f), true
		}
	}
	return Descriptor{}, false
}

// LookupMnemonic finds the device that owns a text-mode device code. The
// mnemonic may include its '*' padding.
func LookupMnemonic(f Family, mnemonic string) (Descriptor, bool) {
	for name, e := range table {
		if !e.availableOn(f) {
			continue
		}
		d := e.descriptor(name, f)
		if d.Mnemonic == mnemonic || strings.TrimRight(d.Mnemonic, "*") == mnemonic {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names lists every device name available on a family, sorted.
func Names(f Family) []string {
	names := make([]string, 0, len(table))
	for name, e := range table {
		if e.availableOn(f) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
