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

package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DennySORA/httpulse/internal/errs"
)

func init() {
	errs.RegisterMessages(map[errs.CodeError]string{
		9999: "test sentinel error",
	})
}

func TestNewAndError(t *testing.T) {
	e := errs.New(9999)
	require.Error(t, e)
	assert.Equal(t, errs.CodeError(9999), e.Code())
	assert.Equal(t, "test sentinel error", e.Error())
}

func TestWrapChainsParent(t *testing.T) {
	parent := errors.New("boom")
	e := errs.Wrap(9999, parent)
	assert.Contains(t, e.Error(), "boom")
	assert.Same(t, parent, e.Parent())
	assert.True(t, errors.Is(e, parent))
}

func TestHasCode(t *testing.T) {
	e := errs.Wrap(9999, errors.New("inner"))
	assert.True(t, errs.HasCode(e, 9999))
	assert.False(t, errs.HasCode(e, 1))
}

func TestContainsString(t *testing.T) {
	e := errs.Wrap(9999, errors.New("needle in haystack"))
	assert.True(t, errs.ContainsString(e, "needle"))
	assert.False(t, errs.ContainsString(e, "absent"))
	assert.False(t, errs.ContainsString(nil, "x"))
}

func TestRegisterMessagesCollisionPanics(t *testing.T) {
	assert.Panics(t, func() {
		errs.RegisterMessages(map[errs.CodeError]string{9999: "dup"})
	})
}
