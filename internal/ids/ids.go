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

// Package ids defines the opaque, universally-unique identifiers used
// for targets and profiles. Both wrap google/uuid behind a domain-named
// type so business logic never passes raw UUIDs around.
package ids

import "github.com/google/uuid"

// TargetId opaquely identifies a TargetRuntime. Never reused once a target
// is removed.
type TargetId string

// ProfileId opaquely identifies a ProfileRuntime within a target. Never
// reused once a profile is removed.
type ProfileId string

// NewTargetId generates a fresh random TargetId.
func NewTargetId() TargetId {
	return TargetId(uuid.NewString())
}

// NewProfileId generates a fresh random ProfileId.
func NewProfileId() ProfileId {
	return ProfileId(uuid.NewString())
}

func (t TargetId) String() string  { return string(t) }
func (p ProfileId) String() string { return string(p) }

// Key pairs a TargetId and ProfileId into the composite key the metrics
// store and sample routing use.
type Key struct {
	Target  TargetId
	Profile ProfileId
}
