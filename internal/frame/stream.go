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
	"io"
)

// Kind tells what a frame's subheader says it is.
type Kind struct {
	Variant        Variant
	Representation Representation
	Request        bool
}

// Identify classifies a frame from its first two bytes.
func Identify(prefix []byte) (Kind, error) {
	if len(prefix) < 2 {
		return Kind{}, ErrShortFrame
	}
	b0, b1 := prefix[0], prefix[1]

	if b1 == 0x00 {
		switch b0 {
		case byte(Subheader3E >> 8):
			return Kind{Variant: Frame3E, Representation: Binary, Request: true}, nil
		case byte(Subheader4E >> 8):
			return Kind{Variant: Frame4E, Representation: Binary, Request: true}, nil
		case byte(ResponseSubheader3E >> 8):
			return Kind{Variant: Frame3E, Representation: Binary}, nil
		case byte(ResponseSubheader4E >> 8):
			return Kind{Variant: Frame4E, Representation: Binary}, nil
		}
	}

	if (b0 == '5' || b0 == 'D') && (b1 == '0' || b1 == '4') {
		k := Kind{Representation: ASCII, Request: b0 == '5', Variant: Frame3E}
		if b1 == '4' {
			k.Variant = Frame4E
		}
		return k, nil
	}

	return Kind{}, fmt.Errorf("%w: % X", ErrUnknownTag, prefix[:2])
}

// ReadFrame reads exactly one request or response frame from r, using the
// subheader to pick the layout and the data length field to find the end.
func ReadFrame(r io.Reader) ([]byte, error) {
	prefix := make([]byte, 2, 64)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, err
	}
	kind, err := Identify(prefix)
	if err != nil {
		return nil, err
	}

	layout := LayoutFor(kind.Variant)
	rep := kind.Representation
	headerSize := layout.HeaderSize(rep)

	buf := append(prefix, make([]byte, headerSize-len(prefix))...)
	if _, err := io.ReadFull(r, buf[len(prefix):]); err != nil {
		return nil, fmt.Errorf("failed to read %s %s header: %w", kind.Variant, rep, err)
	}

	length, err := DecodeValue(rep, buf[headerSize-rep.WordSize():headerSize], Word, false)
	if err != nil {
		return nil, fmt.Errorf("%w: data length: %w", ErrMalformedFrame, err)
	}
	if headerSize+int(length) > MaxFrameLength {
		return nil, fmt.Errorf("%w: data length %d", ErrFrameTooLarge, length)
	}

	frame := append(buf, make([]byte, length)...)
	if _, err := io.ReadFull(r, frame[headerSize:]); err != nil {
		return nil, fmt.Errorf("failed to read %d data bytes: %w", length, err)
	}
	return frame, nil
}

// Request is a parsed request frame.
type Request struct {
	Payload []byte
	Header  Header
}

// ParseRequest decodes a request frame built by Assemble.
func ParseRequest(raw []byte) (*Request, error) {
	kind, err := Identify(raw)
	if err != nil {
		return nil, err
	}
	if !kind.Request {
		return nil, fmt.Errorf("%w: frame is a response", ErrMalformedFrame)
	}

	layout := LayoutFor(kind.Variant)
	rep := kind.Representation
	headerSize := layout.HeaderSize(rep)
	if len(raw) < headerSize+rep.WordSize() {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(raw))
	}

	h, err := parseHeader(raw, layout, rep, true)
	if err != nil {
		return nil, err
	}
	length, err := DecodeValue(rep, raw[headerSize-rep.WordSize():headerSize], Word, false)
	if err != nil {
		return nil, fmt.Errorf("%w: data length: %w", ErrMalformedFrame, err)
	}
	if int(length) != len(raw)-headerSize {
		return nil, fmt.Errorf("%w: data length %d, frame carries %d", ErrMalformedFrame, length, len(raw)-headerSize)
	}
	timer, err := DecodeValue(rep, raw[headerSize:headerSize+rep.WordSize()], Word, false)
	if err != nil {
		return nil, fmt.Errorf("%w: timer: %w", ErrMalformedFrame, err)
	}
	h.Routing.Timer = uint16(timer)

	return &Request{Header: h, Payload: raw[headerSize+rep.WordSize():]}, nil
}
