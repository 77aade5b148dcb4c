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

package aggregate

import (
	"time"

	"github.com/DennySORA/httpulse/internal/metrics"
)

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// extractMetrics applies the per-sample metric-extraction rules to one
// Ok sample, appending each applicable value to values.
func extractMetrics(s metrics.ProbeSample, values map[metrics.MetricKind][]float64, linkCapacityMbps *float64) {
	if s.Phases.TDns != nil {
		values[metrics.Dns] = append(values[metrics.Dns], durationMs(*s.Phases.TDns))
	}
	values[metrics.Connect] = append(values[metrics.Connect], durationMs(s.Phases.TConnect))
	if s.Phases.TTls != nil {
		values[metrics.Tls] = append(values[metrics.Tls], durationMs(*s.Phases.TTls))
	}
	values[metrics.Ttfb] = append(values[metrics.Ttfb], durationMs(s.Phases.TTtfb))
	values[metrics.Download] = append(values[metrics.Download], durationMs(s.Phases.TDownload))
	values[metrics.Total] = append(values[metrics.Total], durationMs(s.Phases.TTotal))

	if s.TcpInfo != nil {
		if s.TcpInfo.RttUs != nil {
			values[metrics.Rtt] = append(values[metrics.Rtt], float64(*s.TcpInfo.RttUs)/1000)
		}
		if s.TcpInfo.RttVarUs != nil {
			values[metrics.RttVar] = append(values[metrics.RttVar], float64(*s.TcpInfo.RttVarUs)/1000)
		}
		if s.TcpInfo.Reordering != nil {
			values[metrics.Reordering] = append(values[metrics.Reordering], float64(*s.TcpInfo.Reordering))
		}
		if s.TcpInfo.SndCwnd != nil {
			values[metrics.Cwnd] = append(values[metrics.Cwnd], float64(*s.TcpInfo.SndCwnd))
		}
		if s.TcpInfo.SndSsthresh != nil {
			values[metrics.Ssthresh] = append(values[metrics.Ssthresh], float64(*s.TcpInfo.SndSsthresh))
		}
		if s.TcpInfo.Lost != nil {
			values[metrics.TransportLoss] = append(values[metrics.TransportLoss], float64(*s.TcpInfo.Lost))
		}
	}

	switch {
	case s.Ebpf != nil && s.Ebpf.Retrans != nil:
		values[metrics.Retrans] = append(values[metrics.Retrans], float64(*s.Ebpf.Retrans))
	case s.TcpInfo != nil && s.TcpInfo.TotalRetrans != nil:
		values[metrics.Retrans] = append(values[metrics.Retrans], float64(*s.TcpInfo.TotalRetrans))
	}

	if s.Ebpf != nil && s.Ebpf.DupAcks != nil {
		values[metrics.DupAcks] = append(values[metrics.DupAcks], float64(*s.Ebpf.DupAcks))
	}

	if s.Phases.TDownload > 0 {
		seconds := s.Phases.TDownload.Seconds()
		goodput := float64(s.Downloaded) * 8 / seconds
		values[metrics.GoodputBps] = append(values[metrics.GoodputBps], goodput)

		if linkCapacityMbps != nil && *linkCapacityMbps > 0 {
			util := goodput / (*linkCapacityMbps * 1e6) * 100
			values[metrics.BandwidthUtilization] = append(values[metrics.BandwidthUtilization], util)
		}
	}
}

// extractOne extracts a single metric's value from one Ok sample, for
// the Timeseries query. Jitter and ProbeLossRate are derived/scalar
// series that do not extract per-sample, so they report ok=false here.
func extractOne(s metrics.ProbeSample, metric metrics.MetricKind, linkCapacityMbps *float64) (float64, bool) {
	tmp := map[metrics.MetricKind][]float64{}
	extractMetrics(s, tmp, linkCapacityMbps)
	vals, ok := tmp[metric]
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}
