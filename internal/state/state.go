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

// Package state holds the application's runtime state: a single
// main-goroutine-owned structure carrying the global config, the
// metrics store, and every target's profile runtimes along with their
// worker handles. Nothing outside main ever mutates it.
package state

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/DennySORA/httpulse/internal/aggregate"
	"github.com/DennySORA/httpulse/internal/errs"
	"github.com/DennySORA/httpulse/internal/ids"
	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/profile"
	"github.com/DennySORA/httpulse/internal/worker"
)

var errCodes = map[errs.CodeError]string{
	errs.MinPkgState + 0: "state: target not found",
	errs.MinPkgState + 1: "state: profile not found",
}

const (
	ErrTargetNotFound errs.CodeError = errs.MinPkgState + iota
	ErrProfileNotFound
)

func init() {
	errs.RegisterMessages(errCodes)
}

// ProfileClientFactory constructs the single ProbeClient a new worker
// will own for its entire life.
type ProfileClientFactory func() worker.ProbeClient

// profileRuntime is one profile's live worker plus the last sample/error
// main has observed for it.
type profileRuntime struct {
	id         ids.ProfileId
	config     profile.ProfileConfig
	w          *worker.Worker
	cancel     context.CancelFunc
	done       chan struct{}
	lastSample *metrics.ProbeSample
	lastError  *metrics.ProbeError
}

// targetRuntime is one target's live state: its config, pause flag,
// cached resolved IP, and the set of profile runtimes probing it.
type targetRuntime struct {
	id       ids.TargetId
	config   profile.TargetConfig
	paused   bool
	lastIP   string
	profiles []*profileRuntime
}

// AppState is the single owner of all runtime state.
type AppState struct {
	mu sync.Mutex

	store      *metrics.Store
	aggregator *aggregate.Aggregator
	clientFor  ProfileClientFactory
	outbound   chan<- metrics.ProbeSample

	window           time.Duration
	linkCapacityMbps *float64

	targets []*targetRuntime

	selectedTarget  int
	selectedMetric  metrics.MetricKind
	selectedMetrics []metrics.MetricKind
}

// New constructs an AppState. outbound is the shared MPSC channel every
// spawned worker sends samples on; main is expected to drain it and call
// ApplySample for each received sample.
func New(store *metrics.Store, aggregator *aggregate.Aggregator, clientFor ProfileClientFactory, outbound chan<- metrics.ProbeSample, window time.Duration, linkCapacityMbps *float64) *AppState {
	return &AppState{
		store:            store,
		aggregator:       aggregator,
		clientFor:        clientFor,
		outbound:         outbound,
		window:           window,
		linkCapacityMbps: linkCapacityMbps,
		selectedMetric:   metrics.Total,
		selectedMetrics:  []metrics.MetricKind{metrics.Total},
	}
}

// SelectedTarget reports the index of the currently selected target.
func (a *AppState) SelectedTarget() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectedTarget
}

// SelectTarget moves the selection, clamped to the current target list.
func (a *AppState) SelectTarget(idx int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectedTarget = clampIndex(idx, len(a.targets))
}

// SelectedMetrics reports the current metric selection set.
func (a *AppState) SelectedMetrics() (metrics.MetricKind, []metrics.MetricKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]metrics.MetricKind, len(a.selectedMetrics))
	copy(out, a.selectedMetrics)
	return a.selectedMetric, out
}

// SelectMetrics replaces the metric selection set. An empty set keeps
// the primary metric alone.
func (a *AppState) SelectMetrics(primary metrics.MetricKind, set []metrics.MetricKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectedMetric = primary
	if len(set) == 0 {
		set = []metrics.MetricKind{primary}
	}
	a.selectedMetrics = append([]metrics.MetricKind(nil), set...)
}

func clampIndex(idx, n int) int {
	if n == 0 || idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// SetWindow changes the window used by TargetAggregate/TargetSummary.
func (a *AppState) SetWindow(window time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.window = window
}

// AddTarget creates a TargetRuntime for url, spawning one worker per
// profile. An empty profiles slice still
// creates the target with no active workers.
func (a *AppState) AddTarget(ctx context.Context, targetConfig profile.TargetConfig, profiles []profile.ProfileConfig) ids.TargetId {
	a.mu.Lock()
	defer a.mu.Unlock()

	targetID := ids.NewTargetId()
	rt := &targetRuntime{id: targetID, config: targetConfig}

	for _, p := range profiles {
		a.spawnProfileLocked(ctx, rt, p)
	}

	a.targets = append(a.targets, rt)
	// Reseat the selection onto the target just added.
	a.selectedTarget = len(a.targets) - 1
	return targetID
}

// AddProfile attaches one more profile (and worker) to an existing
// target.
func (a *AppState) AddProfile(ctx context.Context, targetID ids.TargetId, p profile.ProfileConfig) (ids.ProfileId, errs.Error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rt := a.findTargetLocked(targetID)
	if rt == nil {
		return "", errs.New(ErrTargetNotFound)
	}
	pr := a.spawnProfileLocked(ctx, rt, p)
	return pr.id, nil
}

func (a *AppState) spawnProfileLocked(ctx context.Context, rt *targetRuntime, p profile.ProfileConfig) *profileRuntime {
	profileID := ids.NewProfileId()
	workerCtx, cancel := context.WithCancel(ctx)

	var client worker.ProbeClient
	if a.clientFor != nil {
		client = a.clientFor()
	}

	w := worker.New(rt.id, profileID, rt.config, p, client, a.outbound)
	pr := &profileRuntime{id: profileID, config: p, w: w, cancel: cancel, done: make(chan struct{})}

	go func() {
		w.Run(workerCtx)
		close(pr.done)
	}()

	rt.profiles = append(rt.profiles, pr)
	return pr
}

// RemoveTarget stops and joins every worker of targetID, then drops its
// state. Removal blocks, bounded by the time it takes the workers to
// observe Stop; after it returns the store holds nothing further
// addressable by targetID.
func (a *AppState) RemoveTarget(targetID ids.TargetId) errs.Error {
	a.mu.Lock()
	idx := a.indexOfTargetLocked(targetID)
	if idx < 0 {
		a.mu.Unlock()
		return errs.New(ErrTargetNotFound)
	}
	rt := a.targets[idx]
	a.targets = append(a.targets[:idx], a.targets[idx+1:]...)
	a.selectedTarget = clampIndex(a.selectedTarget, len(a.targets))
	a.mu.Unlock()

	for _, pr := range rt.profiles {
		pr.w.Control() <- worker.Stop{}
	}
	for _, pr := range rt.profiles {
		<-pr.done
		pr.cancel()
	}

	a.store.DropTarget(targetID)
	return nil
}

// TogglePause flips targetID's paused flag and broadcasts Pause to every
// one of its workers.
func (a *AppState) TogglePause(targetID ids.TargetId) errs.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rt := a.findTargetLocked(targetID)
	if rt == nil {
		return errs.New(ErrTargetNotFound)
	}
	rt.paused = !rt.paused
	for _, pr := range rt.profiles {
		pr.w.Control() <- worker.Pause{Paused: rt.paused}
	}
	return nil
}

// UpdateTargetConfig replaces targetID's config and broadcasts
// UpdateTarget to every one of its workers.
func (a *AppState) UpdateTargetConfig(targetID ids.TargetId, newConfig profile.TargetConfig) errs.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rt := a.findTargetLocked(targetID)
	if rt == nil {
		return errs.New(ErrTargetNotFound)
	}
	rt.config = newConfig
	for _, pr := range rt.profiles {
		pr.w.Control() <- worker.UpdateTarget{Config: newConfig}
	}
	return nil
}

// UpdateProfileConfig replaces one profile's config and notifies its
// worker.
func (a *AppState) UpdateProfileConfig(targetID ids.TargetId, profileID ids.ProfileId, newConfig profile.ProfileConfig) errs.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rt := a.findTargetLocked(targetID)
	if rt == nil {
		return errs.New(ErrTargetNotFound)
	}
	pr := findProfile(rt, profileID)
	if pr == nil {
		return errs.New(ErrProfileNotFound)
	}
	pr.config = newConfig
	pr.w.Control() <- worker.UpdateProfile{Config: newConfig}
	return nil
}

// ApplySample is AppState's sample-intake path. Samples whose ids match
// no current target/profile are silently dropped, which covers the race
// where a sample arrives just after its target was removed.
func (a *AppState) ApplySample(sample metrics.ProbeSample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rt := a.findTargetLocked(sample.TargetId)
	if rt == nil {
		return
	}
	pr := findProfile(rt, sample.ProfileId)
	if pr == nil {
		return
	}

	sampleCopy := sample
	pr.lastSample = &sampleCopy
	if sample.Ok {
		pr.lastError = nil
	} else {
		pr.lastError = sample.Err
	}

	if sample.RemoteAddr != nil {
		if host, _, err := net.SplitHostPort(*sample.RemoteAddr); err == nil && host != "" {
			rt.lastIP = host
		}
	}

	key := ids.Key{Target: sample.TargetId, Profile: sample.ProfileId}
	a.store.Push(key, sample, rt.config.MaxPointsPerWindow)
}

// TargetAggregate returns the current WindowedAggregate for one
// (target, profile) pair.
func (a *AppState) TargetAggregate(targetID ids.TargetId, profileID ids.ProfileId) (metrics.WindowedAggregate, errs.Error) {
	a.mu.Lock()
	rt := a.findTargetLocked(targetID)
	if rt == nil {
		a.mu.Unlock()
		return metrics.WindowedAggregate{}, errs.New(ErrTargetNotFound)
	}
	if findProfile(rt, profileID) == nil {
		a.mu.Unlock()
		return metrics.WindowedAggregate{}, errs.New(ErrProfileNotFound)
	}
	window := a.window
	hist := aggregate.HistogramConfig{LowMs: rt.config.LatencyLowMs, HighMs: rt.config.LatencyHighMs, Sigfig: rt.config.Sigfig}
	linkCap := a.linkCapacityMbps
	a.mu.Unlock()

	key := ids.Key{Target: targetID, Profile: profileID}
	return a.aggregator.Query(key, window, hist, linkCap), nil
}

// TargetTimeseries returns the charted (x, y) points for one metric of
// one (target, profile) pair over the current window.
func (a *AppState) TargetTimeseries(targetID ids.TargetId, profileID ids.ProfileId, metric metrics.MetricKind) ([]aggregate.Point, errs.Error) {
	a.mu.Lock()
	if a.findTargetLocked(targetID) == nil {
		a.mu.Unlock()
		return nil, errs.New(ErrTargetNotFound)
	}
	window := a.window
	linkCap := a.linkCapacityMbps
	a.mu.Unlock()

	key := ids.Key{Target: targetID, Profile: profileID}
	return a.aggregator.Timeseries(key, window, metric, linkCap), nil
}

// TargetTimeoutEvents returns the x-offsets of timeout-class errors for
// one (target, profile) pair over the current window.
func (a *AppState) TargetTimeoutEvents(targetID ids.TargetId, profileID ids.ProfileId) ([]float64, errs.Error) {
	a.mu.Lock()
	if a.findTargetLocked(targetID) == nil {
		a.mu.Unlock()
		return nil, errs.New(ErrTargetNotFound)
	}
	window := a.window
	a.mu.Unlock()

	key := ids.Key{Target: targetID, Profile: profileID}
	return a.aggregator.TimeoutEvents(key, window), nil
}

// TargetSummary rolls up every profile of targetID into one summary.
func (a *AppState) TargetSummary(targetID ids.TargetId) (metrics.TargetSummary, errs.Error) {
	a.mu.Lock()
	rt := a.findTargetLocked(targetID)
	if rt == nil {
		a.mu.Unlock()
		return metrics.TargetSummary{}, errs.New(ErrTargetNotFound)
	}
	profileIDs := make([]ids.ProfileId, len(rt.profiles))
	for i, pr := range rt.profiles {
		profileIDs[i] = pr.id
	}
	a.mu.Unlock()

	summary := metrics.TargetSummary{Errors: make(map[metrics.ProbeErrorKind]uint64)}

	for _, profileID := range profileIDs {
		wa, err := a.TargetAggregate(targetID, profileID)
		if err != nil {
			continue
		}
		summary.Requests += wa.Metrics[metrics.Total].N
		summary.Samples += wa.Metrics[metrics.ProbeLossRate].N
		for kind, count := range wa.ErrorBreakdown {
			summary.Errors[kind] += count
			if kind.IsTimeout() {
				summary.Timeouts += count
			}
		}
	}

	var totalErrors uint64
	for _, c := range summary.Errors {
		totalErrors += c
	}
	if totalErrors > summary.Requests {
		summary.Successes = 0
	} else {
		summary.Successes = summary.Requests - totalErrors
	}

	return summary, nil
}

func (a *AppState) findTargetLocked(targetID ids.TargetId) *targetRuntime {
	idx := a.indexOfTargetLocked(targetID)
	if idx < 0 {
		return nil
	}
	return a.targets[idx]
}

func (a *AppState) indexOfTargetLocked(targetID ids.TargetId) int {
	for i, t := range a.targets {
		if t.id == targetID {
			return i
		}
	}
	return -1
}

func findProfile(rt *targetRuntime, profileID ids.ProfileId) *profileRuntime {
	for _, pr := range rt.profiles {
		if pr.id == profileID {
			return pr
		}
	}
	return nil
}
