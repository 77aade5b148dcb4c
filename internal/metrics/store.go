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

import (
	"sync"
	"time"

	"github.com/DennySORA/httpulse/internal/ids"
)

// Clock abstracts "now" so windowed queries are deterministic under
// test. SystemClock is the production default.
type Clock interface {
	Now() time.Time
}

// SystemClock binds Now to the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Key identifies one (target, profile) sample stream.
type Key = ids.Key

// Store is a bounded, FIFO-evicting, per-key queue of ProbeSample.
// Samples under one key are held in insertion order with monotonically
// non-decreasing timestamps, and the oldest are evicted once a key
// exceeds its configured point cap.
type Store struct {
	mu   sync.RWMutex
	data map[Key][]ProbeSample
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{data: make(map[Key][]ProbeSample)}
}

// Push appends sample to key's queue, evicting from the front (FIFO)
// until the queue length is at most maxPoints. Amortized O(1).
func (s *Store) Push(key Key, sample ProbeSample, maxPoints int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := append(s.data[key], sample)
	if maxPoints > 0 && len(q) > maxPoints {
		excess := len(q) - maxPoints
		q = q[excess:]
	}
	s.data[key] = q
}

// Len reports the current queue length for key (test/inspection helper).
func (s *Store) Len(key Key) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[key])
}

// All returns a copy of key's full queue in insertion order.
func (s *Store) All(key Key) []ProbeSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProbeSample, len(s.data[key]))
	copy(out, s.data[key])
	return out
}

// InWindow returns the subset of key's queue with Ts >= now-window, in
// insertion order, as of clock.Now().
func (s *Store) InWindow(key Key, window time.Duration, clock Clock) []ProbeSample {
	if clock == nil {
		clock = SystemClock{}
	}
	cutoff := clock.Now().Add(-window)

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.data[key]
	out := make([]ProbeSample, 0, len(all))
	for _, sample := range all {
		if !sample.Ts.Before(cutoff) {
			out = append(out, sample)
		}
	}
	return out
}

// DropKey removes all samples for key, so the store holds nothing
// further addressable by a removed target's id.
func (s *Store) DropKey(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// DropTarget removes every key belonging to targetID, regardless of
// profile (used when an entire target is removed).
func (s *Store) DropTarget(targetID ids.TargetId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if k.Target == targetID {
			delete(s.data, k)
		}
	}
}
