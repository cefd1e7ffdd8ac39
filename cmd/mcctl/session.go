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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/ZaparooProject/go-mcprotocol/internal/capture"
	"github.com/ZaparooProject/go-mcprotocol/internal/config"
	"github.com/ZaparooProject/go-mcprotocol/internal/logging"
	"github.com/ZaparooProject/go-mcprotocol/transport/serial"
	"github.com/ZaparooProject/go-mcprotocol/transport/tcp"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	profile        string
	address        string
	family         string
	frame          string
	representation string
	transport      string
	capture        string
	logLevel       string
	logFile        string
	timeout        time.Duration
	timer          uint16
	debug          bool
}

func (f *globalFlags) register(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&f.profile, "profile", "", "YAML connection profile")
	pf.StringVarP(&f.address, "address", "a", "", "PLC address (host:port) or serial device path")
	pf.StringVar(&f.family, "family", "", "PLC family: Q, L, QnA, iQ-L or iQ-R (default Q)")
	pf.StringVar(&f.frame, "frame", "", "Frame header: 3E or 4E (default 3E)")
	pf.StringVar(&f.representation, "representation", "", "Field representation: binary or ascii (default binary)")
	pf.StringVar(&f.transport, "transport", "", "Transport: tcp or serial (default tcp)")
	pf.Uint16Var(&f.timer, "timer", 4, "PLC monitoring timer in 250 ms units")
	pf.DurationVar(&f.timeout, "timeout", 0, "Overall timeout per command (0 for none)")
	pf.StringVar(&f.capture, "capture", "", "Write exchanged frames to this pcap file")
	pf.StringVar(&f.logLevel, "log-level", "error", "Log level: silent, error, info, verbose or debug")
	pf.StringVar(&f.logFile, "log-file", "", "Also write log messages to this file")
	pf.BoolVar(&f.debug, "debug", false, "Log every frame (implies --log-level debug)")
}

// loadProfile reads --profile, or the defaults, and applies flag overrides.
func (f *globalFlags) loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	p := config.Default()
	if f.profile != "" {
		var err error
		if p, err = config.Load(f.profile); err != nil {
			return nil, err
		}
	}

	overrides := []struct {
		dst *string
		val string
	}{
		{&p.Transport.Address, f.address},
		{&p.Family, f.family},
		{&p.Frame, f.frame},
		{&p.Representation, f.representation},
		{&p.Transport.Type, f.transport},
		{&p.Capture, f.capture},
	}
	for _, o := range overrides {
		if o.val != "" {
			*o.dst = o.val
		}
	}
	if flag := cmd.Flag("timer"); flag != nil && flag.Changed {
		timer := f.timer
		p.Routing.Timer = &timer
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *globalFlags) newLogger() (*logging.Logger, error) {
	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return nil, err
	}
	if f.debug {
		level = logging.LogLevelDebug
	}
	logger, err := logging.NewLogger(level, f.logFile)
	if err != nil {
		return nil, err
	}
	if f.debug {
		mcprotocol.SetDebugEnabled(true)
		log.SetFlags(0)
		log.SetOutput(logger.Writer())
	}
	return logger, nil
}

// session is one connected client plus everything that must be closed
// with it.
type session struct {
	client  *mcprotocol.Client
	profile *config.Profile
	log     *logging.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func (f *globalFlags) open(cmd *cobra.Command) (*session, error) {
	p, err := f.loadProfile(cmd)
	if err != nil {
		return nil, err
	}
	if p.Transport.Address == "" {
		return nil, errors.New("no PLC address: use --address or set transport.address in the profile")
	}
	logger, err := f.newLogger()
	if err != nil {
		return nil, err
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(cmd.Context(), f.timeout)
	} else {
		ctx, cancel = context.WithCancel(cmd.Context())
	}

	s := &session{profile: p, log: logger, ctx: ctx, cancel: cancel}
	transport, err := s.dial()
	if err != nil {
		s.close()
		return nil, err
	}

	opts, err := p.ClientOptions()
	if err != nil {
		_ = transport.Close()
		s.close()
		return nil, err
	}
	client, err := mcprotocol.New(transport, opts...)
	if err != nil {
		_ = transport.Close()
		s.close()
		return nil, err
	}
	s.client = client
	logger.Verbose("connected to %s (%s %s %s, %s)", p.Transport.Address, p.Family, p.Frame,
		p.Representation, p.Transport.Type)
	return s, nil
}

func (s *session) dial() (mcprotocol.Transport, error) {
	p := s.profile
	var transport mcprotocol.Transport
	switch p.Transport.Type {
	case config.TransportSerial:
		t, err := serial.New(p.Transport.Address, p.SerialConfig())
		if err != nil {
			return nil, err
		}
		transport = t
	default:
		t, err := tcp.DialContext(s.ctx, p.Transport.Address)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	if p.Capture == "" {
		return transport, nil
	}
	w, err := capture.Create(p.Capture, capturePort(transport))
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	s.log.Info("capturing frames to %s", p.Capture)
	return capture.Wrap(transport, w), nil
}

// capturePort is the server port written into captured packets.
func capturePort(t mcprotocol.Transport) uint16 {
	if tt, ok := t.(*tcp.Transport); ok {
		if port, err := tcp.Port(tt.Address()); err == nil {
			return port
		}
	}
	return capture.DefaultPLCPort
}

func (s *session) close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.log.Error("close: %v", err)
		}
	}
	s.cancel()
	_ = s.log.Close()
}

// run opens a session, runs fn and logs the outcome.
func (f *globalFlags) run(cmd *cobra.Command, op, target string, fn func(*session) error) error {
	s, err := f.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	start := time.Now()
	err = fn(s)
	s.log.LogOperation(op, target, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
