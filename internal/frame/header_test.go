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

package frame

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchReadD100 is the payload of a three word batch read of D100 on a Q CPU.
func batchReadD100(rep Representation) []byte {
	if rep == ASCII {
		return []byte("04010000D*0001000003")
	}
	return []byte{0x01, 0x04, 0x00, 0x00, 0x64, 0x00, 0x00, 0xA8, 0x03, 0x00}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestAssemble(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		want    string
		variant Variant
		rep     Representation
		binary  bool
	}{
		{
			name: "3E binary", variant: Frame3E, rep: Binary, binary: true,
			want: "500000FFFF03000C00040001040000640000A80300",
		},
		{
			name: "3E ascii", variant: Frame3E, rep: ASCII,
			want: "500000FF03FF000018000404010000D*0001000003",
		},
		{
			name: "4E binary", variant: Frame4E, rep: Binary, binary: true,
			want: "54003412000000FFFF03000C00040001040000640000A80300",
		},
		{
			name: "4E ascii", variant: Frame4E, rep: ASCII,
			want: "54001234000000FF03FF000018000404010000D*0001000003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := Header{Variant: tt.variant, Representation: tt.rep, Routing: DefaultRouting(), Serial: 0x1234}
			got := Assemble(h, batchReadD100(tt.rep))
			if tt.binary {
				assert.Equal(t, mustHex(t, tt.want), got)
			} else {
				assert.Equal(t, tt.want, string(got))
			}

			req, err := ParseRequest(got)
			require.NoError(t, err)
			if tt.variant == Frame3E {
				h.Serial = 0
			}
			assert.Equal(t, h, req.Header)
			assert.Equal(t, batchReadD100(tt.rep), req.Payload)
		})
	}
}

func TestLayoutOffsets(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 9, LayoutFor(Frame3E).StatusOffset(Binary))
	assert.Equal(t, 18, LayoutFor(Frame3E).StatusOffset(ASCII))
	assert.Equal(t, 13, LayoutFor(Frame4E).StatusOffset(Binary))
	assert.Equal(t, 26, LayoutFor(Frame4E).StatusOffset(ASCII))
	assert.Equal(t, 11, LayoutFor(Frame3E).PayloadOffset(Binary))
	assert.Equal(t, 30, LayoutFor(Frame4E).PayloadOffset(ASCII))
	assert.Equal(t, LayoutFor(Frame3E), LayoutFor(Variant(9)))
}

func TestParseResponse(t *testing.T) {
	t.Parallel()
	h := Header{Variant: Frame3E, Representation: Binary, Routing: DefaultRouting()}
	raw := mustHex(t, "D00000FFFF03000800000000E80318FC")

	payload, err := CheckResponse(raw, h)
	require.NoError(t, err)
	words, err := DecodeWords(Binary, payload, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1000, -1000}, words)

	h.Representation = ASCII
	payload, err = CheckResponse([]byte("D00000FF03FF00001000000000"+"03E8FC18"), h)
	require.NoError(t, err)
	words, err = DecodeWords(ASCII, payload, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1000, -1000}, words)
}

func TestCheckResponseStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		raw         []byte
		header      Header
		code        uint16
		unsupported bool
	}{
		{
			name:        "unsupported binary",
			header:      Header{Variant: Frame3E, Representation: Binary},
			raw:         []byte{0xD0, 0x00, 0x00, 0xFF, 0xFF, 0x03, 0x00, 0x02, 0x00, 0x59, 0xC0},
			code:        0xC059,
			unsupported: true,
		},
		{
			name:        "unsupported ascii",
			header:      Header{Variant: Frame3E, Representation: ASCII},
			raw:         []byte("D00000FF03FF000004C059"),
			code:        0xC059,
			unsupported: true,
		},
		{
			name:   "other code 4E ascii",
			header: Header{Variant: Frame4E, Representation: ASCII, Serial: 7},
			raw:    []byte("D4000007000000FF03FF000004C051"),
			code:   0xC051,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := CheckResponse(tt.raw, tt.header)

			var protoErr *ProtocolError
			require.ErrorAs(t, err, &protoErr)
			assert.Equal(t, tt.code, protoErr.Code)

			var unsupported *UnsupportedCommandError
			assert.Equal(t, tt.unsupported, errors.As(err, &unsupported))
		})
	}
}

func TestCheckResponseHeaderErrors(t *testing.T) {
	t.Parallel()

	_, err := CheckResponse([]byte{0xD0, 0x00, 0x00}, Header{Variant: Frame3E})
	require.ErrorIs(t, err, ErrShortFrame)

	_, err = CheckResponse([]byte{0xD4, 0x00, 0x00, 0xFF, 0xFF, 0x03, 0x00, 0x02, 0x00, 0x00, 0x00}, Header{Variant: Frame3E})
	require.ErrorIs(t, err, ErrVariantMismatch)

	raw := assemble4EResponse(t, 0x0002)
	_, err = CheckResponse(raw, Header{Variant: Frame4E, Serial: 0x0001})
	require.ErrorIs(t, err, ErrSerialMismatch)

	_, err = CheckResponse(raw, Header{Variant: Frame4E, Serial: 0x0002})
	require.NoError(t, err)
}

func assemble4EResponse(t *testing.T, serial uint16) []byte {
	t.Helper()
	return AssembleResponse(Header{Variant: Frame4E, Representation: Binary, Serial: serial, Routing: DefaultRouting()},
		EndCodeOK, nil)
}

func TestReadFrame(t *testing.T) {
	t.Parallel()
	reqBinary := Assemble(Header{Variant: Frame4E, Representation: Binary, Routing: DefaultRouting(), Serial: 3},
		batchReadD100(Binary))
	reqASCII := Assemble(Header{Variant: Frame3E, Representation: ASCII, Routing: DefaultRouting()},
		batchReadD100(ASCII))
	resp := AssembleResponse(Header{Variant: Frame3E, Representation: ASCII, Routing: DefaultRouting()},
		EndCodeOK, []byte("0001"))

	stream := bytes.NewReader(bytes.Join([][]byte{reqBinary, reqASCII, resp}, nil))

	for _, want := range [][]byte{reqBinary, reqASCII, resp} {
		got, err := ReadFrame(stream)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ReadFrame(stream)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameErrors(t *testing.T) {
	t.Parallel()

	_, err := ReadFrame(bytes.NewReader([]byte{0x12, 0x34, 0x00}))
	require.ErrorIs(t, err, ErrUnknownTag)

	_, err = ReadFrame(bytes.NewReader([]byte{0x50, 0x00, 0x00, 0xFF, 0xFF, 0x03, 0x00, 0xFF, 0xFF}))
	require.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = ReadFrame(bytes.NewReader([]byte{0x50, 0x00, 0x00, 0xFF}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestIdentify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		prefix []byte
		want   Kind
	}{
		{name: "3E binary request", prefix: []byte{0x50, 0x00}, want: Kind{Frame3E, Binary, true}},
		{name: "4E binary response", prefix: []byte{0xD4, 0x00}, want: Kind{Frame4E, Binary, false}},
		{name: "3E ascii response", prefix: []byte("D0"), want: Kind{Frame3E, ASCII, false}},
		{name: "4E ascii request", prefix: []byte("54"), want: Kind{Frame4E, ASCII, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Identify(tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequestErrors(t *testing.T) {
	t.Parallel()

	resp := AssembleResponse(Header{Variant: Frame3E, Representation: Binary}, EndCodeOK, nil)
	_, err := ParseRequest(resp)
	require.ErrorIs(t, err, ErrMalformedFrame)

	req := Assemble(Header{Variant: Frame3E, Representation: Binary, Routing: DefaultRouting()}, []byte{0x01, 0x02})
	_, err = ParseRequest(req[:len(req)-1])
	require.ErrorIs(t, err, ErrMalformedFrame)
}
