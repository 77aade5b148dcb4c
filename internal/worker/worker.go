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

// Package worker implements the per-profile probe loop: one goroutine
// per (target, profile) pair, owning a single probe client for its
// entire life and driven purely by channel hand-off with main. No
// locks; the only state other goroutines read is the lifecycle state,
// published through an atomic cell.
package worker

import (
	"context"
	"net"
	"time"

	"github.com/DennySORA/httpulse/internal/atomicval"
	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/profile"
)

// ProbeClient is the narrow capability a worker needs from
// internal/probe, kept as an interface so tests can substitute a fake.
type ProbeClient interface {
	Probe(ctx context.Context, targetID ids.TargetId, profileID ids.ProfileId, target profile.TargetConfig, prof profile.ProfileConfig, resolvedIP string) metrics.ProbeSample
}

// ControlMessage is the closed set of messages main sends a worker.
type ControlMessage interface{ isControlMessage() }

type UpdateTarget struct{ Config profile.TargetConfig }
type UpdateProfile struct{ Config profile.ProfileConfig }
type Pause struct{ Paused bool }
type Stop struct{}

func (UpdateTarget) isControlMessage()  {}
func (UpdateProfile) isControlMessage() {}
func (Pause) isControlMessage()         {}
func (Stop) isControlMessage()          {}

// State is the worker's externally-observable lifecycle state.
type State uint8

const (
	Running State = iota
	Paused
	Terminated
)

// Worker runs the probe loop for one (target, profile) pair.
type Worker struct {
	targetID  ids.TargetId
	profileID ids.ProfileId
	target    profile.TargetConfig
	prof      profile.ProfileConfig
	client    ProbeClient
	control   chan ControlMessage
	out       chan<- metrics.ProbeSample
	resolved  string
	state     *atomicval.Value[State]
}

// New constructs a Worker. client may be nil only to exercise the
// init-failure path in tests; production callers always pass a real
// probe.Client.
func New(targetID ids.TargetId, profileID ids.ProfileId, target profile.TargetConfig, prof profile.ProfileConfig, client ProbeClient, out chan<- metrics.ProbeSample) *Worker {
	return &Worker{
		targetID:  targetID,
		profileID: profileID,
		target:    target,
		prof:      prof,
		client:    client,
		control:   make(chan ControlMessage, 8),
		out:       out,
		state:     atomicval.New[State](),
	}
}

// Control returns the send side of the worker's control channel.
func (w *Worker) Control() chan<- ControlMessage { return w.control }

// State reports the worker's last-known lifecycle state. Safe to read
// from any goroutine; only the worker goroutine ever writes it.
func (w *Worker) State() State { return w.state.Load() }

// Run drives the worker's full lifecycle until Stop, channel closure, a
// failed send, or ctx cancellation. It emits one sample immediately
// before entering the pacing loop.
func (w *Worker) Run(ctx context.Context) {
	if w.client == nil {
		w.emit(ctx, metrics.ProbeSample{
			Ts:        time.Now(),
			TargetId:  w.targetID,
			ProfileId: w.profileID,
			Ok:        false,
			Err:       &metrics.ProbeError{Kind: metrics.IoError, Message: "probe client failed to initialize"},
		})
		w.state.Store(Terminated)
		return
	}

	if !w.probeAndSend(ctx) {
		w.state.Store(Terminated)
		return
	}

	deadline := time.Now().Add(w.target.Interval)

	for {
		switch w.state.Load() {
		case Paused:
			select {
			case <-ctx.Done():
				w.state.Store(Terminated)
				return
			case msg, ok := <-w.control:
				if !ok {
					w.state.Store(Terminated)
					return
				}
				if !w.handleControl(msg) {
					w.state.Store(Terminated)
					return
				}
			}

		default: // Running
			timer := time.NewTimer(time.Until(deadline))
			select {
			case <-ctx.Done():
				timer.Stop()
				w.state.Store(Terminated)
				return

			case msg, ok := <-w.control:
				timer.Stop()
				if !ok {
					w.state.Store(Terminated)
					return
				}
				if !w.handleControl(msg) {
					w.state.Store(Terminated)
					return
				}
				// A reconfig never shortens the interval already in
				// progress; the deadline is left untouched.

			case <-timer.C:
				if !w.probeAndSend(ctx) {
					w.state.Store(Terminated)
					return
				}
				deadline = time.Now().Add(w.target.Interval)
			}
		}
	}
}

// handleControl applies one ControlMessage and reports whether the
// worker should continue running.
func (w *Worker) handleControl(msg ControlMessage) bool {
	switch m := msg.(type) {
	case Stop:
		return false
	case Pause:
		if m.Paused {
			w.state.Store(Paused)
		} else {
			w.state.Store(Running)
		}
	case UpdateTarget:
		w.target = m.Config
	case UpdateProfile:
		w.prof = m.Config
	}
	return true
}

// probeAndSend runs one probe and forwards the sample, updating the
// resolved-IP cache on success. Reports false if the send failed (the
// outbound channel was closed) so Run can terminate.
func (w *Worker) probeAndSend(ctx context.Context) bool {
	sample := w.client.Probe(ctx, w.targetID, w.profileID, w.target, w.prof, w.resolved)

	if sample.Ok && sample.RemoteAddr != nil {
		if host, _, err := net.SplitHostPort(*sample.RemoteAddr); err == nil && host != "" {
			w.resolved = host
		}
	}

	return w.emit(ctx, sample)
}

// emit sends sample on the outbound channel, reporting false if the
// channel is closed (a send-failure is a terminal worker condition).
func (w *Worker) emit(ctx context.Context, sample metrics.ProbeSample) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case w.out <- sample:
		return true
	case <-ctx.Done():
		return false
	}
}
