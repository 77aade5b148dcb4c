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

package metrics

import "time"

// MetricStats summarizes one metric's in-window values. N is
// always populated; the rest are nil only when N==0, except for
// scalar-valued stats (ProbeLossRate) where Stddev is forced to 0 rather
// than left nil.
type MetricStats struct {
	N      uint64
	Last   *float64
	Min    *float64
	Max    *float64
	Mean   *float64
	Stddev *float64
	P50    *float64
	P90    *float64
	P99    *float64
}

// EmptyMetricStats is the zero-sample stats value.
func EmptyMetricStats() MetricStats { return MetricStats{} }

// WindowedAggregate is the result of one aggregation query:
// a window spec plus per-metric stats and per-error-kind counts.
type WindowedAggregate struct {
	Window         time.Duration
	Metrics        map[MetricKind]MetricStats
	ErrorBreakdown map[ProbeErrorKind]uint64
}

// NewWindowedAggregate returns an aggregate with empty maps ready to
// populate.
func NewWindowedAggregate(window time.Duration) WindowedAggregate {
	return WindowedAggregate{
		Window:         window,
		Metrics:        make(map[MetricKind]MetricStats),
		ErrorBreakdown: make(map[ProbeErrorKind]uint64),
	}
}

// TargetSummary is the rolled-up per-target view shown in the target
// list.
type TargetSummary struct {
	Requests  uint64
	Successes uint64
	Timeouts  uint64
	Errors    map[ProbeErrorKind]uint64
	Samples   uint64
}
