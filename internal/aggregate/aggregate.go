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

// Package aggregate computes windowed statistics: a single pass over a
// window's samples producing per-metric MetricStats and per-error-kind
// counts, plus the timeseries and timeout-event queries the chart view
// reads. Latency-class metrics are percentiled through an HDR histogram
// (github.com/HdrHistogram/hdrhistogram-go); every other metric uses an
// exact nearest-rank quantile over its sorted values, since counts and
// window-fraction metrics are not usefully bounded the way latencies
// are.
package aggregate

import (
	"math"
	"sort"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"

	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
)

// HistogramConfig carries the per-target histogram bounds and precision
// used for latency-class percentiles.
type HistogramConfig struct {
	LowMs  float64
	HighMs float64
	Sigfig int
}

// Aggregator computes WindowedAggregate values from a metrics.Store.
type Aggregator struct {
	store *metrics.Store
	clock metrics.Clock
}

// New builds an Aggregator over store, using clock for "now" (the system
// clock if clock is nil).
func New(store *metrics.Store, clock metrics.Clock) *Aggregator {
	if clock == nil {
		clock = metrics.SystemClock{}
	}
	return &Aggregator{store: store, clock: clock}
}

// Query computes the WindowedAggregate for key over window, using hist
// for latency-metric percentiles and linkCapacityMbps (if non-nil) for
// BandwidthUtilization.
func (a *Aggregator) Query(key ids.Key, window time.Duration, hist HistogramConfig, linkCapacityMbps *float64) metrics.WindowedAggregate {
	samples := a.store.InWindow(key, window, a.clock)
	agg := metrics.NewWindowedAggregate(window)

	values := make(map[metrics.MetricKind][]float64, 18)
	for _, k := range []metrics.MetricKind{
		metrics.Dns, metrics.Connect, metrics.Tls, metrics.Ttfb, metrics.Download, metrics.Total,
		metrics.Rtt, metrics.RttVar, metrics.Jitter, metrics.Retrans, metrics.Reordering, metrics.DupAcks,
		metrics.TransportLoss, metrics.GoodputBps, metrics.BandwidthUtilization, metrics.Cwnd, metrics.Ssthresh,
	} {
		values[k] = nil
	}

	var totalSamples, errorSamples uint64

	for _, s := range samples {
		totalSamples++
		if !s.Ok {
			errorSamples++
			if s.Err != nil {
				agg.ErrorBreakdown[s.Err.Kind]++
			}
			continue
		}
		extractMetrics(s, values, linkCapacityMbps)
	}

	if jitter := deriveJitter(values[metrics.Total]); jitter != nil {
		values[metrics.Jitter] = jitter
	}

	for kind, vals := range values {
		agg.Metrics[kind] = computeStats(vals, kind.IsLatencyMetric(), hist)
	}

	agg.Metrics[metrics.ProbeLossRate] = probeLossRateStats(totalSamples, errorSamples)

	return agg
}

// Timeseries returns the ordered (x, y) points for metric within window,
// x measured in seconds-into-window. linkCapacityMbps is
// only consulted for BandwidthUtilization.
func (a *Aggregator) Timeseries(key ids.Key, window time.Duration, metric metrics.MetricKind, linkCapacityMbps *float64) []Point {
	now := a.clock.Now()
	samples := a.store.InWindow(key, window, a.clock)

	out := make([]Point, 0, len(samples))
	for _, s := range samples {
		if !s.Ok {
			continue
		}
		val, ok := extractOne(s, metric, linkCapacityMbps)
		if !ok {
			continue
		}
		x := s.Ts.Sub(now.Add(-window)).Seconds()
		out = append(out, Point{X: x, Y: val})
	}
	return out
}

// Point is one (x, y) timeseries observation.
type Point struct {
	X float64
	Y float64
}

// TimeoutEvents returns the ordered x-offsets (seconds-into-window) of
// every in-window sample whose error kind is_timeout().
func (a *Aggregator) TimeoutEvents(key ids.Key, window time.Duration) []float64 {
	now := a.clock.Now()
	samples := a.store.InWindow(key, window, a.clock)

	out := make([]float64, 0)
	for _, s := range samples {
		if s.Ok || s.Err == nil || !s.Err.Kind.IsTimeout() {
			continue
		}
		out = append(out, s.Ts.Sub(now.Add(-window)).Seconds())
	}
	return out
}

// deriveJitter builds the derived jitter series: the absolute
// first-difference sequence of Total, only when at least two Total
// values exist in-window.
func deriveJitter(total []float64) []float64 {
	if len(total) < 2 {
		return nil
	}
	out := make([]float64, 0, len(total)-1)
	for i := 1; i < len(total); i++ {
		out = append(out, math.Abs(total[i]-total[i-1]))
	}
	return out
}

// probeLossRateStats implements the ProbeLossRate scalar: mean = error_samples/total_samples over all in-window samples,
// n = total_samples, stddev forced to 0, every percentile/min/max/last
// equal to the scalar itself.
func probeLossRateStats(totalSamples, errorSamples uint64) metrics.MetricStats {
	if totalSamples == 0 {
		return metrics.MetricStats{N: 0}
	}
	rate := float64(errorSamples) / float64(totalSamples)
	zero := 0.0
	return metrics.MetricStats{
		N: totalSamples, Last: &rate, Min: &rate, Max: &rate, Mean: &rate,
		Stddev: &zero, P50: &rate, P90: &rate, P99: &rate,
	}
}

// computeStats builds a MetricStats over values, selecting an HDR
// histogram percentile backend for latency-class metrics and exact
// nearest-rank for everything else.
func computeStats(values []float64, latency bool, hist HistogramConfig) metrics.MetricStats {
	n := len(values)
	if n == 0 {
		return metrics.EmptyMetricStats()
	}

	last := values[n-1]
	min, max, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(n)

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	stddev := math.Sqrt(variance)

	var p50, p90, p99 float64
	if latency {
		p50, p90, p99 = histogramPercentiles(values, hist)
	} else {
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		p50 = nearestRank(sorted, 50)
		p90 = nearestRank(sorted, 90)
		p99 = nearestRank(sorted, 99)
	}

	return metrics.MetricStats{
		N: uint64(n), Last: &last, Min: &min, Max: &max, Mean: &mean, Stddev: &stddev,
		P50: &p50, P90: &p90, P99: &p99,
	}
}

// nearestRank returns the p-th percentile of sorted (ascending) using
// the rounded-index nearest-rank method.
func nearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// histogramPercentiles records every value (milliseconds, scaled to
// microseconds) into a fresh HDR histogram bounded by hist, then reads
// back p50/p90/p99 in milliseconds.
func histogramPercentiles(valuesMs []float64, hist HistogramConfig) (p50, p90, p99 float64) {
	lowUs := int64(hist.LowMs * 1000)
	highUs := int64(hist.HighMs * 1000)
	if lowUs < 1 {
		lowUs = 1
	}
	if highUs <= lowUs {
		highUs = lowUs + 1
	}
	sigfig := hist.Sigfig
	if sigfig < 1 {
		sigfig = 3
	}

	h := hdrhistogram.New(lowUs, highUs, sigfig)
	for _, v := range valuesMs {
		us := int64(math.Round(v * 1000))
		if us < lowUs {
			us = lowUs
		}
		if us > highUs {
			us = highUs
		}
		_ = h.RecordValue(us)
	}

	return float64(h.ValueAtQuantile(50)) / 1000, float64(h.ValueAtQuantile(90)) / 1000, float64(h.ValueAtQuantile(99)) / 1000
}
