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

// mcctl talks to a MELSEC PLC over MC protocol 3E/4E frames.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "mcctl",
		Short: "MC protocol client for MELSEC PLCs",
		Long: `mcctl reads and writes PLC devices, controls the CPU remotely and
watches device ranges using the MELSEC communication protocol (3E/4E frames,
binary or ASCII) over TCP or a serial line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.register(root)

	root.AddCommand(
		newReadCmd(flags),
		newWriteCmd(flags),
		newRandomReadCmd(flags),
		newRandomWriteCmd(flags),
		newRandomWriteBitsCmd(flags),
		newRemoteCmd(flags),
		newCPUTypeCmd(flags),
		newEchoCmd(flags),
		newWatchCmd(flags),
		newPortsCmd(),
		newProfileCmd(flags),
	)
	return root
}
