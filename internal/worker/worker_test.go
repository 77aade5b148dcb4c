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

package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/profile"
	"github.com/DennySORA/httpulse/internal/worker"
)

type countingClient struct {
	count int32
}

func (c *countingClient) Probe(_ context.Context, targetID ids.TargetId, profileID ids.ProfileId, _ profile.TargetConfig, _ profile.ProfileConfig, _ string) metrics.ProbeSample {
	atomic.AddInt32(&c.count, 1)
	return metrics.ProbeSample{Ts: time.Now(), TargetId: targetID, ProfileId: profileID, Ok: true}
}

func TestWorkerEmitsImmediateSampleBeforePacing(t *testing.T) {
	out := make(chan metrics.ProbeSample, 10)
	client := &countingClient{}
	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = time.Hour // long enough that only the immediate probe fires

	w := worker.New("t1", "p1", target, profile.ProfileConfig{}, client, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	select {
	case s := <-out:
		assert.True(t, s.Ok)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for immediate sample")
	}

	w.Control() <- worker.Stop{}
	cancel()
	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.count))
}

func TestWorkerPauseStopsProbing(t *testing.T) {
	out := make(chan metrics.ProbeSample, 10)
	client := &countingClient{}
	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = 20 * time.Millisecond

	w := worker.New("t1", "p1", target, profile.ProfileConfig{}, client, out)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	<-out // immediate sample
	w.Control() <- worker.Pause{Paused: true}
	time.Sleep(100 * time.Millisecond)

	countAfterPause := atomic.LoadInt32(&client.count)
	assert.Equal(t, int32(1), countAfterPause)
	assert.Equal(t, worker.Paused, w.State())

	w.Control() <- worker.Stop{}
	cancel()
	<-done
}

func TestWorkerStopTerminatesCleanly(t *testing.T) {
	out := make(chan metrics.ProbeSample, 10)
	client := &countingClient{}
	target := profile.DefaultTargetConfig("https://example.com")
	target.Interval = time.Hour

	w := worker.New("t1", "p1", target, profile.ProfileConfig{}, client, out)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	<-out
	w.Control() <- worker.Stop{}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not terminate after Stop")
	}
	assert.Equal(t, worker.Terminated, w.State())
}

func TestWorkerNilClientEmitsSyntheticErrorAndTerminates(t *testing.T) {
	out := make(chan metrics.ProbeSample, 1)
	target := profile.DefaultTargetConfig("https://example.com")

	w := worker.New("t1", "p1", target, profile.ProfileConfig{}, nil, out)
	done := make(chan struct{})
	go func() { w.Run(context.Background()); close(done) }()

	select {
	case s := <-out:
		require.False(t, s.Ok)
		require.NotNil(t, s.Err)
		assert.Equal(t, metrics.IoError, s.Err.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for synthetic error sample")
	}

	<-done
}
