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

// Package capture records client exchanges to a pcap file so they can be
// inspected with Wireshark's MELSEC dissector.
package capture

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const (
	snapLen = 65535

	// DefaultPLCPort is the port written into synthetic packets when the
	// transport does not expose a TCP address.
	DefaultPLCPort = 5007
	clientPort     = 50007
)

var (
	clientIP = net.IPv4(10, 0, 0, 1)
	plcIP    = net.IPv4(10, 0, 0, 2)

	clientMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	plcMAC    = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)

// Writer turns frames into a synthetic TCP flow between a fixed client and
// PLC address pair.
type Writer struct {
	w        *pcapgo.Writer
	closer   io.Closer
	now      func() time.Time
	plcPort  uint16
	clientSq uint32
	plcSq    uint32
	mu       sync.Mutex
}

// NewWriter writes the pcap file header to w. plcPort is the server port
// the frames appear to travel to.
func NewWriter(w io.Writer, plcPort uint16) (*Writer, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("write pcap header: %w", err)
	}
	if plcPort == 0 {
		plcPort = DefaultPLCPort
	}
	writer := &Writer{
		w:        pw,
		now:      time.Now,
		plcPort:  plcPort,
		clientSq: 1000,
		plcSq:    2000,
	}
	if c, ok := w.(io.Closer); ok {
		writer.closer = c
	}
	return writer, nil
}

// Create opens path and returns a Writer on it.
func Create(path string, plcPort uint16) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create pcap file: %w", err)
	}
	w, err := NewWriter(file, plcPort)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

// WriteRequest records a client to PLC frame.
func (w *Writer) WriteRequest(data []byte) error {
	return w.write(data, true)
}

// WriteResponse records a PLC to client frame.
func (w *Writer) WriteResponse(data []byte) error {
	return w.write(data, false)
}

func (w *Writer) write(data []byte, toPLC bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	eth := &layers.Ethernet{EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolTCP}
	tcp := &layers.TCP{PSH: true, ACK: true, Window: 65535}

	if toPLC {
		eth.SrcMAC, eth.DstMAC = clientMAC, plcMAC
		ip.SrcIP, ip.DstIP = clientIP, plcIP
		tcp.SrcPort, tcp.DstPort = layers.TCPPort(clientPort), layers.TCPPort(w.plcPort)
		tcp.Seq, tcp.Ack = w.clientSq, w.plcSq
		w.clientSq += uint32(len(data))
	} else {
		eth.SrcMAC, eth.DstMAC = plcMAC, clientMAC
		ip.SrcIP, ip.DstIP = plcIP, clientIP
		tcp.SrcPort, tcp.DstPort = layers.TCPPort(w.plcPort), layers.TCPPort(clientPort)
		tcp.Seq, tcp.Ack = w.plcSq, w.clientSq
		w.plcSq += uint32(len(data))
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return fmt.Errorf("set checksum layer: %w", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(data)); err != nil {
		return fmt.Errorf("serialize packet: %w", err)
	}

	packet := buf.Bytes()
	info := gopacket.CaptureInfo{
		Timestamp:     w.now(),
		CaptureLength: len(packet),
		Length:        len(packet),
	}
	if err := w.w.WritePacket(info, packet); err != nil {
		return fmt.Errorf("write packet: %w", err)
	}
	return nil
}

// Close closes the underlying file when the Writer owns one.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Transport is a mcprotocol.Transport that copies every exchanged frame to
// a Writer. Frames are recorded even when the exchange itself fails, so a
// malformed reply can be inspected.
type Transport struct {
	mcprotocol.Transport
	inner  mcprotocol.TransportContext
	writer *Writer
}

// Wrap records traffic of t to w.
func Wrap(t mcprotocol.Transport, w *Writer) *Transport {
	return &Transport{Transport: t, inner: mcprotocol.AsTransportContext(t), writer: w}
}

// Exchange implements mcprotocol.Transport.
func (t *Transport) Exchange(request []byte) ([]byte, error) {
	return t.ExchangeContext(context.Background(), request)
}

// ExchangeContext implements mcprotocol.TransportContext.
func (t *Transport) ExchangeContext(ctx context.Context, request []byte) ([]byte, error) {
	if err := t.writer.WriteRequest(request); err != nil {
		mcprotocol.Debugf("capture: %v", err)
	}
	resp, err := t.inner.ExchangeContext(ctx, request)
	if len(resp) > 0 {
		if werr := t.writer.WriteResponse(resp); werr != nil {
			mcprotocol.Debugf("capture: %v", werr)
		}
	}
	return resp, err
}

// Close closes the wrapped transport and then the capture file.
func (t *Transport) Close() error {
	err := t.Transport.Close()
	if cerr := t.writer.Close(); err == nil {
		err = cerr
	}
	return err
}
