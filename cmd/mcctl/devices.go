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
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newReadCmd(flags *globalFlags) *cobra.Command {
	var (
		count int
		bits  bool
	)
	cmd := &cobra.Command{
		Use:   "read <head-device>",
		Short: "Batch read consecutive devices",
		Example: `  mcctl read D100 -n 4 -a 192.168.0.10:5007
  mcctl read M0 -n 16 --bits`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			head := args[0]
			return flags.run(cmd, "read", head, func(s *session) error {
				out := cmd.OutOrStdout()
				if bits {
					values, err := s.client.ReadBitsContext(s.ctx, head, count)
					if err != nil {
						return err
					}
					printBits(out, values)
					return nil
				}
				values, err := s.client.ReadWordsContext(s.ctx, head, count)
				if err != nil {
					return err
				}
				printWords(out, values)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of devices to read")
	cmd.Flags().BoolVar(&bits, "bits", false, "Read in bit units")
	return cmd
}

func newWriteCmd(flags *globalFlags) *cobra.Command {
	var bits bool
	cmd := &cobra.Command{
		Use:   "write <head-device> <value>...",
		Short: "Batch write consecutive devices",
		Example: `  mcctl write D100 1 2 0x10
  mcctl write M0 1 0 1 --bits`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			head := args[0]
			if bits {
				values, err := parseBits(args[1:])
				if err != nil {
					return err
				}
				return flags.run(cmd, "write", head, func(s *session) error {
					return s.client.WriteBitsContext(s.ctx, head, values)
				})
			}
			values, err := parseInts(args[1:])
			if err != nil {
				return err
			}
			return flags.run(cmd, "write", head, func(s *session) error {
				return s.client.WriteWordsContext(s.ctx, head, values)
			})
		},
	}
	cmd.Flags().BoolVar(&bits, "bits", false, "Write in bit units")
	return cmd
}

func newRandomReadCmd(flags *globalFlags) *cobra.Command {
	var words, dwords []string
	cmd := &cobra.Command{
		Use:     "random-read",
		Short:   "Read scattered word and double-word devices",
		Example: `  mcctl random-read --words D0,W1F --dwords D100`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := strings.Join(append(append([]string{}, words...), dwords...), ",")
			return flags.run(cmd, "random-read", target, func(s *session) error {
				w, d, err := s.client.RandomReadContext(s.ctx, words, dwords)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, dev := range words {
					_, _ = fmt.Fprintf(out, "%s\t%d\n", dev, w[i])
				}
				for i, dev := range dwords {
					_, _ = fmt.Fprintf(out, "%s\t%d\n", dev, d[i])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&words, "words", nil, "Word devices to read")
	cmd.Flags().StringSliceVar(&dwords, "dwords", nil, "Double-word devices to read")
	return cmd
}

func newRandomWriteCmd(flags *globalFlags) *cobra.Command {
	var words, dwords []string
	cmd := &cobra.Command{
		Use:     "random-write",
		Short:   "Write scattered word and double-word devices",
		Example: `  mcctl random-write --word D0=1 --word W1F=0x20 --dword D100=70000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wordDevs, wordVals, err := parseAssignments(words)
			if err != nil {
				return err
			}
			dwordDevs, dwordVals, err := parseAssignments(dwords)
			if err != nil {
				return err
			}
			target := strings.Join(append(append([]string{}, wordDevs...), dwordDevs...), ",")
			return flags.run(cmd, "random-write", target, func(s *session) error {
				return s.client.RandomWriteContext(s.ctx, wordDevs, wordVals, dwordDevs, dwordVals)
			})
		},
	}
	cmd.Flags().StringArrayVar(&words, "word", nil, "Word assignment DEVICE=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&dwords, "dword", nil, "Double-word assignment DEVICE=VALUE (repeatable)")
	return cmd
}

func newRandomWriteBitsCmd(flags *globalFlags) *cobra.Command {
	var assignments []string
	cmd := &cobra.Command{
		Use:     "random-write-bits",
		Short:   "Set or reset scattered bit devices",
		Example: `  mcctl random-write-bits --bit M0=1 --bit Y2F=0`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devs, vals, err := parseAssignments(assignments)
			if err != nil {
				return err
			}
			values := make([]bool, len(vals))
			for i, v := range vals {
				if v != 0 && v != 1 {
					return fmt.Errorf("bit %s: value must be 0 or 1, got %d", devs[i], v)
				}
				values[i] = v == 1
			}
			return flags.run(cmd, "random-write-bits", strings.Join(devs, ","), func(s *session) error {
				return s.client.RandomWriteBitsContext(s.ctx, devs, values)
			})
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "bit", nil, "Bit assignment DEVICE=0|1 (repeatable)")
	return cmd
}

func printWords(w io.Writer, values []int) {
	for i, v := range values {
		_, _ = fmt.Fprintf(w, "%d\t%d\t0x%04X\n", i, v, uint16(v))
	}
}

func printBits(w io.Writer, values []bool) {
	for i, v := range values {
		n := 0
		if v {
			n = 1
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\n", i, n)
	}
}

// parseInts accepts decimal, 0x hex, 0o octal and 0b binary values.
func parseInts(args []string) ([]int, error) {
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", arg, err)
		}
		values[i] = int(v)
	}
	return values, nil
}

func parseBits(args []string) ([]bool, error) {
	values := make([]bool, len(args))
	for i, arg := range args {
		switch strings.ToLower(arg) {
		case "1", "on", "true":
			values[i] = true
		case "0", "off", "false":
		default:
			return nil, fmt.Errorf("bit value %q: expected 0 or 1", arg)
		}
	}
	return values, nil
}

// parseAssignments splits "DEVICE=VALUE" pairs.
func parseAssignments(args []string) (devices []string, values []int, err error) {
	for _, arg := range args {
		dev, raw, ok := strings.Cut(arg, "=")
		if !ok || dev == "" {
			return nil, nil, fmt.Errorf("assignment %q: expected DEVICE=VALUE", arg)
		}
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("assignment %q: %w", arg, err)
		}
		devices = append(devices, dev)
		values = append(values, int(v))
	}
	return devices, values, nil
}
