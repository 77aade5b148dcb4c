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

package tlsver_test

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DennySORA/httpulse/internal/tlsver"
)

func TestParseRecognizesCommonForms(t *testing.T) {
	cases := map[string]tlsver.Version{
		"1.2":     tlsver.VersionTLS12,
		"tls1.3":  tlsver.VersionTLS13,
		"TLS 1.2": tlsver.VersionTLS12,
		"TLSv1_3": tlsver.VersionTLS13,
		"ssl1.0":  tlsver.VersionTLS10,
		"garbage": tlsver.VersionUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, tlsver.Parse(in), "input %q", in)
	}
}

func TestUint16MapsToCryptoTLS(t *testing.T) {
	assert.Equal(t, uint16(tls.VersionTLS12), tlsver.VersionTLS12.Uint16())
	assert.Equal(t, uint16(tls.VersionTLS13), tlsver.VersionTLS13.Uint16())
	assert.Equal(t, uint16(0), tlsver.VersionUnknown.Uint16())
}

func TestJSONRoundTrip(t *testing.T) {
	b, err := tlsver.VersionTLS13.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"TLS 1.3"`, string(b))

	var v tlsver.Version
	assert.NoError(t, v.UnmarshalJSON(b))
	assert.Equal(t, tlsver.VersionTLS13, v)
}
