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
	"fmt"

	mcprotocol "github.com/ZaparooProject/go-mcprotocol"
	"github.com/spf13/cobra"
)

func newRemoteCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Remote CPU control",
	}

	var (
		clear string
		force bool
	)
	run := &cobra.Command{
		Use:   "run",
		Short: "Switch the CPU to RUN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := parseClearMode(clear)
			if err != nil {
				return err
			}
			return flags.run(cmd, "remote run", mode.String(), func(s *session) error {
				return s.client.RemoteRunContext(s.ctx, mode, force)
			})
		},
	}
	run.Flags().StringVar(&clear, "clear", "none", "Device memory to clear: none, outside-latch or all")
	run.Flags().BoolVar(&force, "force", false, "Run even if another station holds the CPU stopped or paused")

	var pauseForce bool
	pause := &cobra.Command{
		Use:   "pause",
		Short: "Switch the CPU to PAUSE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, "remote pause", "", func(s *session) error {
				return s.client.RemotePauseContext(s.ctx, pauseForce)
			})
		},
	}
	pause.Flags().BoolVar(&pauseForce, "force", false, "Pause even if another station holds the CPU")

	cmd.AddCommand(
		run,
		pause,
		simpleRemote(flags, "stop", "Switch the CPU to STOP", (*mcprotocol.Client).RemoteStopContext),
		simpleRemote(flags, "latch-clear", "Clear latched device memory (CPU must be stopped)",
			(*mcprotocol.Client).RemoteLatchClearContext),
		simpleRemote(flags, "reset", "Reset the CPU (CPU must be stopped)", (*mcprotocol.Client).RemoteResetContext),
		passwordRemote(flags, "unlock", "Unlock the CPU with its remote password",
			(*mcprotocol.Client).RemoteUnlockContext),
		passwordRemote(flags, "lock", "Lock the CPU with its remote password", (*mcprotocol.Client).RemoteLockContext),
	)
	return cmd
}

func simpleRemote(
	flags *globalFlags,
	name, short string,
	op func(*mcprotocol.Client, context.Context) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, "remote "+name, "", func(s *session) error {
				return op(s.client, s.ctx)
			})
		},
	}
}

func passwordRemote(
	flags *globalFlags,
	name, short string,
	op func(*mcprotocol.Client, context.Context, string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <password>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd, "remote "+name, "", func(s *session) error {
				return op(s.client, s.ctx, args[0])
			})
		},
	}
}

func parseClearMode(s string) (mcprotocol.ClearMode, error) {
	for _, m := range []mcprotocol.ClearMode{mcprotocol.ClearNone, mcprotocol.ClearOutsideLatch, mcprotocol.ClearAll} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown clear mode %q (want none, outside-latch or all)", s)
}

func newCPUTypeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cpu-type",
		Short: "Read the CPU model name and code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, "cpu-type", "", func(s *session) error {
				cpu, err := s.client.ReadCPUTypeContext(s.ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t0x%s\n", cpu.Name, cpu.Code)
				return nil
			})
		},
	}
}

func newEchoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "echo <data>",
		Short: "Loopback test: the CPU returns the data unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd, "echo", args[0], func(s *session) error {
				got, err := s.client.EchoTestContext(s.ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), got)
				return nil
			})
		},
	}
}
