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

// Package probe implements the probe client: the single-call
// "produce one ProbeSample" contract every profile worker drives. It
// composes transport (wire-level attempt), classify (error taxonomy),
// and tcpinfo (kernel socket state); across calls it keeps only the
// warm connection pool of its transport, and the resolved-IP override
// is threaded in by the caller.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/DennySORA/httpulse/internal/classify"
	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/profile"
	"github.com/DennySORA/httpulse/internal/tcpinfo"
	"github.com/DennySORA/httpulse/internal/transport"
)

// Client executes single HTTP probes. It is reusable across calls; each
// Probe invocation rebuilds its transport configuration from scratch
// rather than carrying state forward.
type Client struct {
	transport transport.HttpTransport
	tcpReader tcpinfo.Reader
}

// New returns a production Client backed by the real network.
func New() *Client {
	return &Client{transport: transport.NewClient(), tcpReader: tcpinfo.Default}
}

// NewWithTransport builds a Client over a caller-supplied transport and
// TCP-info reader, letting tests substitute deterministic fakes without
// touching the network.
func NewWithTransport(t transport.HttpTransport, r tcpinfo.Reader) *Client {
	if r == nil {
		r = tcpinfo.Default
	}
	return &Client{transport: t, tcpReader: r}
}

// Probe produces exactly one ProbeSample for (targetID, profileID) under
// the given configs. It never fails without producing a sample.
// resolvedIP, if non-empty, is used as a host override when
// target.DNSEnabled is false and target.URL's host is not already an IP.
func (c *Client) Probe(ctx context.Context, targetID ids.TargetId, profileID ids.ProfileId, target profile.TargetConfig, prof profile.ProfileConfig, resolvedIP string) metrics.ProbeSample {
	now := time.Now()
	url := profile.NormalizeURL(target.URL)
	hostIsIP := transport.IsLiteralIP(url)

	cfg := c.buildConfig(url, target, prof, resolvedIP, hostIsIP, false)

	outcome, ts := c.transport.Perform(ctx, cfg)

	if outcome.Err != nil && metrics.MatchesDNSTimeoutSignature(outcome.Err.Error()) {
		if target.DNSEnabled && !hostIsIP {
			retryCfg := c.buildConfig(url, target, prof, resolvedIP, hostIsIP, true)
			outcome, ts = c.transport.Perform(ctx, retryCfg)
		} else {
			return c.buildSample(targetID, profileID, now, prof, outcome, ts, &metrics.ProbeError{
				Kind:    metrics.DnsTimeout,
				Message: outcome.Err.Error(),
			})
		}
	}

	return c.buildSample(targetID, profileID, now, prof, outcome, ts, nil)
}

func (c *Client) buildConfig(url string, target profile.TargetConfig, prof profile.ProfileConfig, resolvedIP string, hostIsIP, forceIPv4 bool) transport.Config {
	cfg := transport.Config{
		URL:           url,
		Method:        prof.Method,
		HTTP:          prof.HTTP,
		TLS:           int(prof.TLS.Uint16()),
		ConnReuse:     prof.ConnReuse,
		MaxReadBytes:  prof.EffectiveMaxReadBytes(),
		Headers:       prof.Headers,
		TimeoutTotal:  target.TimeoutTotal,
		DNSEnabled:    target.DNSEnabled,
		ForceIPv4Only: forceIPv4,
	}
	if target.TimeoutBreakdown != nil {
		cfg.ConnectTimeout = target.TimeoutBreakdown.Connect
	}
	if !target.DNSEnabled && !hostIsIP {
		cfg.ResolvedIP = resolvedIP
	}
	return cfg
}

// buildSample turns a transport outcome into the final ProbeSample,
// applying the HTTP-status-override rule, the read-cap/limit_reached
// discipline, classification, and phase-timing derivation. forcedErr, if
// non-nil, skips classification (used for the non-retryable DNS-timeout
// case).
func (c *Client) buildSample(targetID ids.TargetId, profileID ids.ProfileId, ts time.Time, prof profile.ProfileConfig, outcome transport.Outcome, timings transport.Timestamps, forcedErr *metrics.ProbeError) metrics.ProbeSample {
	sample := metrics.ProbeSample{
		Ts:         ts,
		TargetId:   targetID,
		ProfileId:  profileID,
		HttpStatus: outcome.HttpStatus,
		Protocol:   outcome.Protocol,
		Phases:     derivePhases(timings),
		Downloaded: outcome.Downloaded,
		LocalAddr:  outcome.LocalAddr,
		RemoteAddr: outcome.RemoteAddr,
		TcpInfo:    c.tcpReader.Read(outcome.Conn),
	}

	// The transport does not portably expose the negotiated TLS version,
	// so it is reported as configured. Known limitation, not a bug.
	if v := prof.TLS.String(); v != "" {
		sample.Protocol.TLSVersion = &v
	}

	switch {
	case forcedErr != nil:
		sample.Ok = false
		sample.Err = forcedErr

	case outcome.Err != nil && outcome.LimitReached:
		// A write/abort error that follows hitting the read cap is not a
		// probe failure.
		sample.Ok = true

	case outcome.Err != nil:
		classified := classify.Classify(outcome.Err)
		sample.Ok = false
		sample.Err = &classified

	case outcome.HttpStatus != nil && *outcome.HttpStatus >= 400:
		sample.Ok = false
		sample.Err = &metrics.ProbeError{
			Kind:    metrics.HttpStatusError,
			Message: fmt.Sprintf("HTTP status %d", *outcome.HttpStatus),
		}

	default:
		sample.Ok = true
	}

	return sample
}

// derivePhases turns cumulative transfer timestamps into non-overlapping
// phase durations by successive saturating subtraction. Each phase's base
// is the latest available earlier checkpoint, not always the immediately
// preceding named one, so a missing intermediate timestamp cannot zero
// out the phase after it.
func derivePhases(ts transport.Timestamps) metrics.PhaseDurations {
	sat := func(a, b time.Time) time.Duration {
		d := a.Sub(b)
		if d < 0 {
			return 0
		}
		return d
	}
	later := func(a, b time.Time) time.Time {
		if b.After(a) {
			return b
		}
		return a
	}

	prev := ts.Start

	var tDns *time.Duration
	if ts.DNSDone != nil {
		d := sat(*ts.DNSDone, prev)
		tDns = &d
		prev = later(prev, *ts.DNSDone)
	}

	tConnect := sat(ts.ConnectDone, prev)
	prev = later(prev, ts.ConnectDone)

	var tTls *time.Duration
	if ts.TLSDone != nil {
		d := sat(*ts.TLSDone, prev)
		tTls = &d
		prev = later(prev, *ts.TLSDone)
	}

	tTtfb := sat(ts.FirstByte, prev)
	prev = later(prev, ts.FirstByte)

	tDownload := sat(ts.Done, prev)
	tTotal := sat(ts.Done, ts.Start)

	return metrics.PhaseDurations{
		TDns:      tDns,
		TConnect:  tConnect,
		TTls:      tTls,
		TTtfb:     tTtfb,
		TDownload: tDownload,
		TTotal:    tTotal,
	}
}
