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
	"fmt"
)

// Response is a parsed response frame.
type Response struct {
	Payload []byte
	Header  Header
	Status  uint16
}

// ParseResponse splits a raw response into header fields, end code and
// payload. The end code is not interpreted; see CheckResponse.
func ParseResponse(raw []byte, v Variant, rep Representation) (*Response, error) {
	layout := LayoutFor(v)
	statusAt := layout.StatusOffset(rep)
	payloadAt := layout.PayloadOffset(rep)
	if len(raw) < payloadAt {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d for a %s %s response",
			ErrShortFrame, len(raw), payloadAt, v, rep)
	}

	h, err := parseHeader(raw, layout, rep, false)
	if err != nil {
		return nil, err
	}

	status, err := DecodeValue(rep, raw[statusAt:payloadAt], Word, false)
	if err != nil {
		return nil, fmt.Errorf("%w: end code: %w", ErrMalformedFrame, err)
	}

	return &Response{
		Header:  h,
		Status:  uint16(status),
		Payload: raw[payloadAt:],
	}, nil
}

// CheckResponse parses a response for a request sent with h and returns its
// payload. A non-zero end code becomes a *ProtocolError (or
// *UnsupportedCommandError); a 4E serial that differs from the request's is
// ErrSerialMismatch.
func CheckResponse(raw []byte, h Header) ([]byte, error) {
	resp, err := ParseResponse(raw, h.Variant, h.Representation)
	if err != nil {
		return nil, err
	}
	if LayoutFor(h.Variant).HasSerial && resp.Header.Serial != h.Serial {
		return nil, fmt.Errorf("%w: sent 0x%04X, got 0x%04X", ErrSerialMismatch, h.Serial, resp.Header.Serial)
	}
	if err := StatusError(resp.Status); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// parseHeader decodes the fields in front of the data length word.
func parseHeader(raw []byte, layout Layout, rep Representation, request bool) (Header, error) {
	want := layout.ResponseTag
	if request {
		want = layout.RequestTag
	}
	tag, err := readTag(raw, rep)
	if err != nil {
		return Header{}, err
	}
	if tag != want {
		return Header{}, fmt.Errorf("%w: subheader 0x%04X, expected 0x%04X", ErrVariantMismatch, tag, want)
	}

	r := fieldReader{data: raw, rep: rep, pos: 2 * rep.scale()}
	h := Header{Variant: layout.Variant, Representation: rep}
	if layout.HasSerial {
		h.Serial = uint16(r.next(Word))
		r.next(Word) // reserved
	}
	h.Routing.Network = uint8(r.next(Byte))
	h.Routing.Station = uint8(r.next(Byte))
	h.Routing.ModuleIO = uint16(r.next(Word))
	h.Routing.ModuleStation = uint8(r.next(Byte))
	if r.err != nil {
		return Header{}, fmt.Errorf("%w: header: %w", ErrMalformedFrame, r.err)
	}
	return h, nil
}

func readTag(raw []byte, rep Representation) (uint16, error) {
	if rep == ASCII {
		if len(raw) < 4 {
			return 0, ErrShortFrame
		}
		v, err := DecodeValue(ASCII, raw[:4], Word, false)
		if err != nil {
			return 0, fmt.Errorf("%w: subheader: %w", ErrMalformedFrame, err)
		}
		return uint16(v), nil
	}
	if len(raw) < 2 {
		return 0, ErrShortFrame
	}
	return uint16(raw[0])<<8 | uint16(raw[1]), nil
}

// fieldReader walks fixed-width fields and keeps the first error.
type fieldReader struct {
	err  error
	data []byte
	rep  Representation
	pos  int
}

func (r *fieldReader) next(width int) uint64 {
	if r.err != nil {
		return 0
	}
	size := width * r.rep.scale()
	if r.pos+size > len(r.data) {
		r.err = ErrShortFrame
		return 0
	}
	v, err := DecodeValue(r.rep, r.data[r.pos:r.pos+size], width, false)
	if err != nil {
		r.err = err
		return 0
	}
	r.pos += size
	return uint64(v)
}

// DecodeWords decodes count signed 16-bit values from a payload.
func DecodeWords(rep Representation, payload []byte, count int) ([]int, error) {
	return decodeSigned(rep, payload, count, Word)
}

// DecodeDWords decodes count signed 32-bit values from a payload.
func DecodeDWords(rep Representation, payload []byte, count int) ([]int, error) {
	return decodeSigned(rep, payload, count, DWord)
}

func decodeSigned(rep Representation, payload []byte, count, width int) ([]int, error) {
	stride := width * rep.scale()
	if len(payload) < count*stride {
		return nil, fmt.Errorf("%w: %d values of %d bytes need %d bytes, got %d",
			ErrShortFrame, count, width, count*stride, len(payload))
	}
	values := make([]int, count)
	for i := range values {
		v, err := DecodeValue(rep, payload[i*stride:(i+1)*stride], width, true)
		if err != nil {
			return nil, err
		}
		values[i] = int(v)
	}
	return values, nil
}
