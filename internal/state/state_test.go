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

package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DennySORA/httpulse/internal/aggregate"
	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/profile"
	"github.com/DennySORA/httpulse/internal/state"
	"github.com/DennySORA/httpulse/internal/tlsver"
	"github.com/DennySORA/httpulse/internal/worker"
)

type fakeClient struct{}

func (fakeClient) Probe(_ context.Context, targetID ids.TargetId, profileID ids.ProfileId, _ profile.TargetConfig, _ profile.ProfileConfig, _ string) metrics.ProbeSample {
	return metrics.ProbeSample{Ts: time.Now(), TargetId: targetID, ProfileId: profileID, Ok: true}
}

func newTestState(t *testing.T, outbound chan metrics.ProbeSample) *state.AppState {
	t.Helper()
	store := metrics.NewStore()
	agg := aggregate.New(store, metrics.SystemClock{})
	return state.New(store, agg, func() worker.ProbeClient { return fakeClient{} }, outbound, time.Minute, nil)
}

func testProfile() profile.ProfileConfig {
	return profile.ProfileConfig{HTTP: profile.HTTP1, TLS: tlsver.VersionTLS12, ConnReuse: profile.Warm, Method: profile.MethodGet}
}

func TestAddTargetAndApplySample(t *testing.T) {
	outbound := make(chan metrics.ProbeSample, 10)
	st := newTestState(t, outbound)

	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = time.Hour

	targetID := st.AddTarget(context.Background(), target, []profile.ProfileConfig{testProfile()})
	require.NotEmpty(t, targetID)

	sample := <-outbound
	st.ApplySample(sample)

	agg, err := st.TargetAggregate(targetID, sample.ProfileId)
	require.Nil(t, err)
	assert.EqualValues(t, 1, agg.Metrics[metrics.Total].N)
}

func TestApplySampleSilentlyDropsUnknownIDs(t *testing.T) {
	outbound := make(chan metrics.ProbeSample, 10)
	st := newTestState(t, outbound)

	st.ApplySample(metrics.ProbeSample{TargetId: "nonexistent", ProfileId: "nonexistent", Ok: true})
	// No panic and nothing observable: target_aggregate on the unknown
	// id should fail with ErrTargetNotFound, not report a phantom sample.
	_, err := st.TargetAggregate("nonexistent", "nonexistent")
	require.NotNil(t, err)
}

func TestRemoveTargetJoinsWorkersAndDropsSamples(t *testing.T) {
	outbound := make(chan metrics.ProbeSample, 10)
	st := newTestState(t, outbound)

	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = time.Hour

	targetID := st.AddTarget(context.Background(), target, []profile.ProfileConfig{testProfile()})
	sample := <-outbound

	err := st.RemoveTarget(targetID)
	require.Nil(t, err)

	// After RemoveTarget returns, no further sample with that target's
	// id is accepted.
	st.ApplySample(sample)
	_, aggErr := st.TargetAggregate(targetID, sample.ProfileId)
	require.NotNil(t, aggErr)
}

func TestRemoveTargetUnknownIDErrors(t *testing.T) {
	outbound := make(chan metrics.ProbeSample, 10)
	st := newTestState(t, outbound)

	err := st.RemoveTarget("nonexistent")
	require.NotNil(t, err)
}

func TestTargetSummaryAggregatesAcrossProfiles(t *testing.T) {
	outbound := make(chan metrics.ProbeSample, 10)
	st := newTestState(t, outbound)

	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = time.Hour

	targetID := st.AddTarget(context.Background(), target, []profile.ProfileConfig{testProfile(), testProfile()})

	s1 := <-outbound
	s2 := <-outbound
	st.ApplySample(s1)
	st.ApplySample(s2)

	summary, err := st.TargetSummary(targetID)
	require.Nil(t, err)
	assert.EqualValues(t, 2, summary.Requests)
	assert.EqualValues(t, 2, summary.Successes)
	assert.EqualValues(t, 0, summary.Timeouts)
}

func TestSelectionReseatsOnAddAndClampsOnRemove(t *testing.T) {
	outbound := make(chan metrics.ProbeSample, 10)
	st := newTestState(t, outbound)

	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = time.Hour

	first := st.AddTarget(context.Background(), target, nil)
	assert.Equal(t, 0, st.SelectedTarget())

	second := st.AddTarget(context.Background(), target, nil)
	assert.Equal(t, 1, st.SelectedTarget())

	require.Nil(t, st.RemoveTarget(second))
	assert.Equal(t, 0, st.SelectedTarget())
	require.Nil(t, st.RemoveTarget(first))
	assert.Equal(t, 0, st.SelectedTarget())
}

func TestTargetTimeseriesAndTimeoutEvents(t *testing.T) {
	outbound := make(chan metrics.ProbeSample, 10)
	st := newTestState(t, outbound)

	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = time.Hour

	targetID := st.AddTarget(context.Background(), target, []profile.ProfileConfig{testProfile()})
	sample := <-outbound
	sample.Phases.TTotal = 25 * time.Millisecond
	st.ApplySample(sample)

	points, err := st.TargetTimeseries(targetID, sample.ProfileId, metrics.Total)
	require.Nil(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 25.0, points[0].Y, 1e-6)

	events, err := st.TargetTimeoutEvents(targetID, sample.ProfileId)
	require.Nil(t, err)
	assert.Empty(t, events)

	_, err = st.TargetTimeseries("nonexistent", sample.ProfileId, metrics.Total)
	require.NotNil(t, err)
}
