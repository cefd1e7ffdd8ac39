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

// mcsim serves a virtual MELSEC CPU over MC protocol TCP, with an optional
// HTTP view of its device memory.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-mcprotocol/device"
	"github.com/ZaparooProject/go-mcprotocol/internal/logging"
	testutil "github.com/ZaparooProject/go-mcprotocol/internal/testing"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	listen   string
	httpAddr string
	family   string
	password string
	logLevel string
	logFile  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "mcsim",
		Short: "Virtual MELSEC CPU for testing MC protocol clients",
		Long: `mcsim answers 3E and 4E frames, binary or ASCII, from an in-memory CPU.
Each TCP connection may use its own frame format. With --http the device
memory can be inspected and changed over a small JSON API.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.listen, "listen", "l", ":5007", "MC protocol TCP listen address")
	f.StringVar(&opts.httpAddr, "http", "", "HTTP API listen address (disabled when empty)")
	f.StringVar(&opts.family, "family", "Q", "CPU family: Q, L, QnA, iQ-L or iQ-R")
	f.StringVar(&opts.password, "password", "", "Remote password for lock and unlock")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: silent, error, info, verbose or debug")
	f.StringVar(&opts.logFile, "log-file", "", "Also write log messages to this file")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(level, opts.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	family, err := device.ParseFamily(opts.family)
	if err != nil {
		return err
	}
	plc := testutil.NewVirtualPLC(family)
	plc.Password = opts.password

	l, err := net.Listen("tcp", opts.listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.listen, err)
	}
	logger.Info("%s CPU %s listening on %s", family, plc.CPUName, l.Addr())

	var srv *http.Server
	if opts.httpAddr != "" {
		srv = &http.Server{
			Addr:              opts.httpAddr,
			Handler:           newRouter(plc, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("HTTP API on %s", opts.httpAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http: %v", err)
			}
		}()
	}

	done := make(chan error, 1)
	go func() {
		done <- plc.ServeListener(l, func(err error) { logger.Verbose("connection: %v", err) })
	}()

	select {
	case <-ctx.Done():
	case err := <-done:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Error("serve: %v", err)
		}
	}
	_ = l.Close()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	snap := plc.Snapshot()
	logger.Info("stopped after %d requests", snap.Requests)
	return nil
}
