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

package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DennySORA/httpulse/internal/aggregate"
	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

func okSample(ts time.Time, totalMs float64) metrics.ProbeSample {
	return metrics.ProbeSample{
		Ts: ts, Ok: true,
		Phases: metrics.PhaseDurations{TTotal: time.Duration(totalMs * float64(time.Millisecond))},
	}
}

func errSample(ts time.Time, kind metrics.ProbeErrorKind) metrics.ProbeSample {
	return metrics.ProbeSample{Ts: ts, Ok: false, Err: &metrics.ProbeError{Kind: kind}}
}

func defaultHist() aggregate.HistogramConfig {
	return aggregate.HistogramConfig{LowMs: 1, HighMs: 60000, Sigfig: 3}
}

func TestFIFOEvictionKeepsNewestSamples(t *testing.T) {
	store := metrics.NewStore()
	key := ids.Key{Target: "t1", Profile: "p1"}
	base := time.Now()

	store.Push(key, okSample(base, 10), 2)
	store.Push(key, okSample(base.Add(time.Second), 20), 2)
	store.Push(key, okSample(base.Add(2*time.Second), 30), 2)

	agg := aggregate.New(store, fixedClock{now: base.Add(time.Hour)})
	result := agg.Query(key, 2*time.Hour, defaultHist(), nil)

	total := result.Metrics[metrics.Total]
	require.EqualValues(t, 2, total.N)
	assert.InDelta(t, 20.0, *total.Min, 1e-6)
	assert.InDelta(t, 30.0, *total.Max, 1e-6)
	assert.InDelta(t, 30.0, *total.Last, 1e-6)
}

func TestLossRateWithMixedOutcomes(t *testing.T) {
	store := metrics.NewStore()
	key := ids.Key{Target: "t1", Profile: "p1"}
	base := time.Now()

	store.Push(key, okSample(base, 120), 100)
	store.Push(key, errSample(base.Add(time.Second), metrics.HttpTimeout), 100)
	store.Push(key, okSample(base.Add(2*time.Second), 240), 100)

	agg := aggregate.New(store, fixedClock{now: base.Add(time.Hour)})
	result := agg.Query(key, 2*time.Hour, defaultHist(), nil)

	loss := result.Metrics[metrics.ProbeLossRate]
	require.EqualValues(t, 3, loss.N)
	require.NotNil(t, loss.Mean)
	assert.InDelta(t, 1.0/3.0, *loss.Mean, 1e-6)

	require.EqualValues(t, 2, result.Metrics[metrics.Total].N)
	assert.EqualValues(t, 1, result.ErrorBreakdown[metrics.HttpTimeout])
}

func TestTimeoutEventsFilterOnlyTimeoutKinds(t *testing.T) {
	store := metrics.NewStore()
	key := ids.Key{Target: "t1", Profile: "p1"}
	base := time.Now()

	store.Push(key, errSample(base, metrics.HttpTimeout), 100)
	store.Push(key, errSample(base.Add(time.Second), metrics.HttpStatusError), 100)

	agg := aggregate.New(store, fixedClock{now: base.Add(time.Hour)})
	events := agg.TimeoutEvents(key, 2*time.Hour)

	require.Len(t, events, 1)
}

func TestTimeseriesXCoordinateUnderFixedClock(t *testing.T) {
	store := metrics.NewStore()
	key := ids.Key{Target: "t1", Profile: "p1"}
	now := time.Now()

	store.Push(key, okSample(now.Add(-10*time.Second), 42), 100)

	agg := aggregate.New(store, fixedClock{now: now})
	points := agg.Timeseries(key, 60*time.Second, metrics.Total, nil)

	require.Len(t, points, 1)
	assert.InDelta(t, 50.0, points[0].X, 1e-6)
}

func TestJitterLengthAndValues(t *testing.T) {
	store := metrics.NewStore()
	key := ids.Key{Target: "t1", Profile: "p1"}
	base := time.Now()

	store.Push(key, okSample(base, 100), 100)
	store.Push(key, okSample(base.Add(time.Second), 130), 100)
	store.Push(key, okSample(base.Add(2*time.Second), 110), 100)

	agg := aggregate.New(store, fixedClock{now: base.Add(time.Hour)})
	result := agg.Query(key, 2*time.Hour, defaultHist(), nil)

	jitter := result.Metrics[metrics.Jitter]
	require.EqualValues(t, 2, jitter.N)
	assert.InDelta(t, 30.0, *jitter.Max, 1.0)
}

func TestQueryOnEmptyWindowYieldsEmptyStats(t *testing.T) {
	store := metrics.NewStore()
	key := ids.Key{Target: "t1", Profile: "p1"}

	agg := aggregate.New(store, fixedClock{now: time.Now()})
	result := agg.Query(key, time.Minute, defaultHist(), nil)

	require.EqualValues(t, 0, result.Metrics[metrics.Total].N)
	assert.Nil(t, result.Metrics[metrics.Total].Mean)
	require.EqualValues(t, 0, result.Metrics[metrics.ProbeLossRate].N)
	assert.Nil(t, result.Metrics[metrics.ProbeLossRate].Mean)
}

func TestPercentileWithinHDRPrecision(t *testing.T) {
	store := metrics.NewStore()
	key := ids.Key{Target: "t1", Profile: "p1"}
	base := time.Now()

	for i := 0; i < 100; i++ {
		store.Push(key, okSample(base.Add(time.Duration(i)*time.Millisecond), float64(i+1)), 200)
	}

	agg := aggregate.New(store, fixedClock{now: base.Add(time.Hour)})
	result := agg.Query(key, 2*time.Hour, defaultHist(), nil)

	total := result.Metrics[metrics.Total]
	require.NotNil(t, total.P50)
	assert.InDelta(t, 50.0, *total.P50, 1.0)
	assert.InDelta(t, 90.0, *total.P90, 1.0)
	assert.InDelta(t, 99.0, *total.P99, 1.0)
}
