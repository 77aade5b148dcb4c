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

// Package atomicval provides a generic, lock-free typed wrapper around
// sync/atomic.Value, used where a single cell is written by one
// goroutine and read by others without a mutex, such as a worker's
// lifecycle state.
package atomicval

import "sync/atomic"

// Value is a type-safe atomic cell for T.
type Value[T any] struct {
	v atomic.Value
}

type box[T any] struct {
	val T
}

// New returns a Value with no stored value; Load returns the zero value of
// T until the first Store.
func New[T any]() *Value[T] {
	return &Value[T]{}
}

// Load returns the current value, or the zero value of T if nothing has
// been stored yet.
func (o *Value[T]) Load() T {
	var zero T
	if b, ok := o.v.Load().(box[T]); ok {
		return b.val
	}
	return zero
}

// Loaded is Load plus a boolean indicating whether a value has ever been
// stored.
func (o *Value[T]) Loaded() (T, bool) {
	if b, ok := o.v.Load().(box[T]); ok {
		return b.val, true
	}
	var zero T
	return zero, false
}

// Store sets the current value.
func (o *Value[T]) Store(val T) {
	o.v.Store(box[T]{val: val})
}

// Swap atomically stores new and returns the previous value (the zero
// value of T if nothing was stored before).
func (o *Value[T]) Swap(new T) T {
	old, _ := o.v.Swap(box[T]{val: new}).(box[T])
	return old.val
}
