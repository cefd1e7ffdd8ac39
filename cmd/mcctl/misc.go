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
	"fmt"
	"text/tabwriter"

	"github.com/ZaparooProject/go-mcprotocol/internal/config"
	"github.com/ZaparooProject/go-mcprotocol/transport/serial"
	"github.com/spf13/cobra"
)

func newPortsCmd() *cobra.Command {
	var (
		all       bool
		blocklist []string
	)
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports a PLC could be attached to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := serial.ListPorts(serial.ListOptions{Blocklist: blocklist})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PATH\tVID:PID\tPRODUCT\tSERIAL")
			for _, p := range ports {
				if !all && !p.IsUSB {
					continue
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Path, orDash(p.VIDPID), orDash(p.Product),
					orDash(p.SerialNumber))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include non-USB ports")
	cmd.Flags().StringSliceVar(&blocklist, "block", nil, "VID:PID pairs to hide")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newProfileCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the effective connection profile as YAML",
		Long: `profile prints the profile mcctl would use: the file named by --profile,
or the defaults, with command-line overrides applied. Redirect the output
to start a new profile file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := flags.loadProfile(cmd)
			if err != nil {
				return err
			}
			return writeProfile(cmd, p)
		},
	}
	return cmd
}

func writeProfile(cmd *cobra.Command, p *config.Profile) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
