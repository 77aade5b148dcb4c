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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DennySORA/httpulse/internal/errs"
)

func TestSettingsFromFlagsDefaultsTargetAndEbpfOff(t *testing.T) {
	got, err := settingsFromFlags(nil, 10, "off")
	require.Nil(t, err)

	assert.Equal(t, []string{defaultTarget}, got.Targets)
	assert.Equal(t, uint16(10), got.RefreshHz)
	assert.Equal(t, EbpfOff, got.EbpfMode)
}

func TestSettingsFromFlagsUnknownEbpfCollapsesToOff(t *testing.T) {
	got, err := settingsFromFlags([]string{"https://example.com"}, 10, "bogus")
	require.Nil(t, err)

	assert.Equal(t, EbpfOff, got.EbpfMode)
}

func TestSettingsFromFlagsRecognizesMinimalAndFull(t *testing.T) {
	got, err := settingsFromFlags(nil, 10, "minimal")
	require.Nil(t, err)
	assert.Equal(t, EbpfMinimal, got.EbpfMode)

	got, err = settingsFromFlags(nil, 10, "FULL")
	require.Nil(t, err)
	assert.Equal(t, EbpfFull, got.EbpfMode)
}

func TestSettingsFromFlagsRejectsZeroRefreshHz(t *testing.T) {
	_, err := settingsFromFlags(nil, 0, "off")
	require.NotNil(t, err)
	assert.True(t, errs.HasCode(err, ErrInvalidRefreshHz))
}

func TestSettingsFromFlagsKeepsExplicitTargets(t *testing.T) {
	got, err := settingsFromFlags([]string{"https://a.example", "https://b.example"}, 20, "off")
	require.Nil(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got.Targets)
}
