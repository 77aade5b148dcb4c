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

package atomicval_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DennySORA/httpulse/internal/atomicval"
)

func TestZeroValueBeforeStore(t *testing.T) {
	v := atomicval.New[string]()
	assert.Equal(t, "", v.Load())

	_, ok := v.Loaded()
	assert.False(t, ok)
}

func TestStoreAndLoad(t *testing.T) {
	v := atomicval.New[int]()
	v.Store(42)
	got, ok := v.Loaded()
	assert.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestSwap(t *testing.T) {
	v := atomicval.New[int]()
	v.Store(1)
	old := v.Swap(2)
	assert.Equal(t, 1, old)
	assert.Equal(t, 2, v.Load())
}

func TestConcurrentAccess(t *testing.T) {
	v := atomicval.New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v.Store(n)
			_ = v.Load()
		}(i)
	}
	wg.Wait()
}
