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

package secret_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DennySORA/httpulse/internal/secret"
)

func TestExposeReturnsWrappedValue(t *testing.T) {
	s := secret.New("api-token-123")
	assert.Equal(t, "api-token-123", s.Expose())
}

func TestStringAndGoStringAreRedacted(t *testing.T) {
	s := secret.New("api-token-123")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", s.GoString())
	assert.Equal(t, "[REDACTED]", s.Redacted())

	formatted := fmt.Sprintf("%s / %v / %#v", s, s, s)
	assert.NotContains(t, formatted, "api-token-123")
}

func TestJSONRoundTripsRealValue(t *testing.T) {
	s := secret.New("api-token-123")
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var out secret.String
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "api-token-123", out.Expose())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, secret.New("").IsEmpty())
	assert.False(t, secret.New("x").IsEmpty())
}
