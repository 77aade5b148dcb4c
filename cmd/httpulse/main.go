/*
 * MIT License
 *
 * Copyright (c) 2026 DennySORA
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command httpulse wires the probing core (internal/state,
// internal/worker, internal/probe, internal/aggregate,
// internal/metrics) to a CLI surface. It drives the same AppState an
// interactive renderer would, logging windowed summaries at the
// configured refresh rate, so the binary is independently useful
// headless (e.g. under a supervisor, in CI, or piped to a log
// collector).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/DennySORA/httpulse/internal/aggregate"
	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/obslog"
	"github.com/DennySORA/httpulse/internal/probe"
	"github.com/DennySORA/httpulse/internal/profile"
	"github.com/DennySORA/httpulse/internal/state"
	"github.com/DennySORA/httpulse/internal/tlsver"
	"github.com/DennySORA/httpulse/internal/worker"
)

var flags struct {
	targets   []string
	refreshHz uint16
	ebpf      string
	window    time.Duration
	verbose   bool
}

// targetHandle pairs an added target's runtime id with the URL it was
// created from, purely for the headless summary log below.
type targetHandle struct {
	id  ids.TargetId
	url string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "httpulse",
		Short: "Real-time HTTP latency and network quality monitor",
		Long: "httpulse continuously probes one or more HTTP(S) targets under one or more\n" +
			"transport profiles, windows the results, and reports reachability, latency\n" +
			"breakdown, transport-level quality, and goodput.",
		RunE:         runMain,
		SilenceUsage: true,
	}

	cmd.Flags().StringArrayVarP(&flags.targets, "target", "t", nil, "target URL to probe (repeatable)")
	cmd.Flags().Uint16Var(&flags.refreshHz, "refresh-hz", 10, "UI/summary refresh rate in Hz, must be > 0")
	cmd.Flags().StringVar(&flags.ebpf, "ebpf", "off", "eBPF collection mode: off|minimal|full")
	cmd.Flags().DurationVar(&flags.window, "window", time.Minute, "windowed-statistics interval (e.g. 1m, 5m, 15m, 60m)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")

	return cmd
}

func runMain(cmd *cobra.Command, _ []string) error {
	if flags.verbose {
		obslog.SetLevel(logrus.DebugLevel)
	}

	settings, err := settingsFromFlags(flags.targets, flags.refreshHz, flags.ebpf)
	if err != nil {
		return err
	}

	// C8: detect TLS 1.3 support once, before any worker spawns, so
	// profile selection below never produces a profile doomed to fail
	// every single probe for lack of stack support.
	tls13 := probe.DetectTLS13Support()
	obslog.NewEntry(logrus.InfoLevel, "tls1.3 capability detected").
		FieldAdd("supported", tls13).Log()
	obslog.NewEntry(logrus.InfoLevel, "starting").
		FieldAdd("refresh_hz", settings.RefreshHz).
		FieldAdd("ebpf_mode", string(settings.EbpfMode)).Log()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outbound := make(chan metrics.ProbeSample, 64)
	store := metrics.NewStore()
	aggregator := aggregate.New(store, metrics.SystemClock{})

	clientFactory := func() worker.ProbeClient { return probe.New() }
	app := state.New(store, aggregator, clientFactory, outbound, flags.window, nil)

	var handles []targetHandle

	for _, rawURL := range settings.Targets {
		url := profile.NormalizeURL(rawURL)
		targetCfg := profile.DefaultTargetConfig(url)
		if verr := targetCfg.Validate(); verr != nil {
			return verr
		}
		targetID := app.AddTarget(ctx, targetCfg, defaultProfiles(tls13))
		handles = append(handles, targetHandle{id: targetID, url: url})
		obslog.NewEntry(logrus.InfoLevel, "target added").
			FieldAdd("url", url).FieldAdd("target_id", targetID.String()).Log()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	summaryInterval := time.Second / time.Duration(settings.RefreshHz)
	summaryTick := time.NewTicker(summaryInterval)
	defer summaryTick.Stop()

	for {
		select {
		case sample, ok := <-outbound:
			if !ok {
				return nil
			}
			app.ApplySample(sample)

		case <-summaryTick.C:
			logSummaries(app, handles)

		case <-sigCh:
			obslog.NewEntry(logrus.InfoLevel, "shutting down").Log()
			for _, h := range handles {
				if rerr := app.RemoveTarget(h.id); rerr != nil {
					obslog.NewEntry(logrus.WarnLevel, "error removing target").
						ErrorAdd(true, rerr).Log()
				}
			}
			cancel()
			return nil
		}
	}
}

// defaultProfiles returns the two profiles the binary probes every added
// target under (the command line has no flag to choose others): a warm
// HTTP/1.1 HEAD probe and a warm HTTP/2 GET probe, both under the
// strongest TLS version this runtime can actually negotiate.
func defaultProfiles(tls13Supported bool) []profile.ProfileConfig {
	version := tlsver.VersionTLS12
	if tls13Supported {
		version = tlsver.VersionTLS13
	}

	return []profile.ProfileConfig{
		{
			Name:         "h1-warm-head",
			HTTP:         profile.HTTP1,
			TLS:          version,
			ConnReuse:    profile.Warm,
			Method:       profile.MethodHead,
			MaxReadBytes: 0,
		},
		{
			Name:         "h2-warm-get",
			HTTP:         profile.HTTP2,
			TLS:          version,
			ConnReuse:    profile.Warm,
			Method:       profile.MethodGet,
			MaxReadBytes: 64 * 1024,
		},
	}
}

// logSummaries emits one structured log line per target, the headless
// stand-in for the out-of-scope terminal renderer's target list.
func logSummaries(app *state.AppState, handles []targetHandle) {
	for _, h := range handles {
		summary, err := app.TargetSummary(h.id)
		if err != nil {
			continue
		}
		entry := obslog.NewEntry(logrus.InfoLevel, "target summary").
			FieldAdd("url", h.url).
			FieldAdd("requests", summary.Requests).
			FieldAdd("successes", summary.Successes).
			FieldAdd("timeouts", summary.Timeouts).
			FieldAdd("samples", summary.Samples)
		if len(summary.Errors) > 0 {
			entry.FieldAdd("errors", formatErrorBreakdown(summary.Errors))
		}
		entry.Log()
	}
}

func formatErrorBreakdown(errors map[metrics.ProbeErrorKind]uint64) string {
	kinds := make([]metrics.ProbeErrorKind, 0, len(errors))
	for k := range errors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%s=%d", k.Label(), errors[k])
	}
	return out
}
