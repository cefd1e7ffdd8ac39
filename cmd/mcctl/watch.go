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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-mcprotocol/internal/config"
	"github.com/ZaparooProject/go-mcprotocol/polling"
	"github.com/ZaparooProject/go-mcprotocol/publish"
	"github.com/spf13/cobra"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var (
		watches   []string
		duration  time.Duration
		interval  time.Duration
		asJSON    bool
		noPublish bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll device ranges and report changes",
		Long: `watch reads each range every poll interval and prints the ranges whose
values changed. Ranges come from --watch or the profile's poll.watches.
Publishers configured under the profile's publish section receive every
change. The command ends on Ctrl-C, after --duration, or when the
connection is lost.`,
		Example: `  mcctl watch -a 192.168.0.10:5007 --watch D100x4 --watch M0x16/bits
  mcctl watch --profile line1.yaml --duration 1m --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			list, err := watchList(s.profile, watches)
			if err != nil {
				return err
			}
			pollCfg := s.profile.PollingConfig()
			pollCfg.RequestTimeout = s.client.Timeout()
			if s.profile.Poll.CycleTimeoutMs == 0 {
				pollCfg.FitCycleTimeout(len(list))
			}
			if interval > 0 {
				pollCfg.PollInterval = interval
				if pollCfg.IdleInterval < interval {
					pollCfg.IdleInterval = interval
				}
			}
			monitor, err := polling.NewMonitor(s.client, pollCfg, list...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			var fanout *publish.Fanout
			if !noPublish {
				if fanout, err = openPublishers(ctx, s.profile); err != nil {
					return err
				}
				defer func() {
					if err := fanout.Close(); err != nil {
						s.log.Error("close publishers: %v", err)
					}
				}()
			}

			out := cmd.OutOrStdout()
			monitor.OnChange = func(sample polling.Sample) error {
				printSample(out, sample, asJSON)
				if fanout == nil || fanout.Len() == 0 {
					return nil
				}
				if err := fanout.OnChange(sample); err != nil {
					s.log.Error("publish %s: %v", sample.Head, err)
					return err
				}
				return nil
			}
			monitor.OnOnline = func() { s.log.Info("PLC online") }
			monitor.OnOffline = func(err error) { s.log.Error("PLC offline: %v", err) }

			s.log.Verbose("watching %d range(s) every %v", len(list), pollCfg.PollInterval)
			err = monitor.Start(ctx)
			m := monitor.GetMetrics()
			s.log.Info("%d cycles, %d errors, %d changes", m.PollCycles, m.PollErrors, m.Changes)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&watches, "watch", "w", nil, "Range to poll, DEVICE[xCOUNT][/bits] (repeatable)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (overrides the profile)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per change")
	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Ignore the profile's publishers")
	return cmd
}

func watchList(p *config.Profile, args []string) ([]polling.Watch, error) {
	if len(args) == 0 {
		list := p.Watches()
		if len(list) == 0 {
			return nil, errors.New("nothing to watch: use --watch or poll.watches in the profile")
		}
		return list, nil
	}
	list := make([]polling.Watch, 0, len(args))
	for _, arg := range args {
		w, err := polling.ParseWatch(arg)
		if err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, nil
}

// openPublishers connects every broker in the profile. Publishers opened
// before a failure are closed again.
func openPublishers(ctx context.Context, p *config.Profile) (*publish.Fanout, error) {
	var pubs []publish.Publisher
	fail := func(err error) (*publish.Fanout, error) {
		_ = publish.NewFanout("", 0, pubs...).Close()
		return nil, err
	}

	if cfg := p.MQTT(); cfg != nil {
		m, err := publish.DialMQTT(*cfg)
		if err != nil {
			return fail(err)
		}
		pubs = append(pubs, m)
	}
	if cfg := p.Redis(); cfg != nil {
		r, err := publish.DialRedis(ctx, *cfg)
		if err != nil {
			return fail(err)
		}
		pubs = append(pubs, r)
	}
	if cfg := p.Kafka(); cfg != nil {
		k, err := publish.NewKafka(*cfg)
		if err != nil {
			return fail(err)
		}
		pubs = append(pubs, k)
	}
	return publish.NewFanout(plcName(p), 2*time.Second, pubs...), nil
}

func plcName(p *config.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return strings.NewReplacer(":", "_", "/", "_").Replace(p.Transport.Address)
}

func printSample(w io.Writer, s polling.Sample, asJSON bool) {
	if asJSON {
		data, err := json.Marshal(s)
		if err == nil {
			_, _ = fmt.Fprintln(w, string(data))
		}
		return
	}
	stamp := s.Time.Format("15:04:05.000")
	if s.Bits != nil {
		var b strings.Builder
		for _, v := range s.Bits {
			if v {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		_, _ = fmt.Fprintf(w, "%s %s %s\n", stamp, s.Head, b.String())
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s %v\n", stamp, s.Head, s.Words)
}
