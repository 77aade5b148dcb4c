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

// Package tlsver defines the TLS protocol versions httpulse can pin a
// probe profile to.
// Only TLS 1.2 and 1.3 are meaningful profile choices, but Parse
// recognizes the legacy versions too so config round-trips don't
// silently collapse an out-of-range value to zero.
package tlsver

import (
	"crypto/tls"
	"strings"
)

// Version represents a TLS protocol version.
type Version int

const (
	VersionUnknown Version = iota
	VersionTLS10            = Version(tls.VersionTLS10)
	VersionTLS11            = Version(tls.VersionTLS11)
	VersionTLS12            = Version(tls.VersionTLS12)
	VersionTLS13            = Version(tls.VersionTLS13)
)

func (v Version) String() string {
	switch v {
	case VersionTLS10:
		return "TLS 1.0"
	case VersionTLS11:
		return "TLS 1.1"
	case VersionTLS12:
		return "TLS 1.2"
	case VersionTLS13:
		return "TLS 1.3"
	default:
		return ""
	}
}

// Uint16 returns the crypto/tls numeric constant for v, or 0 if unknown.
func (v Version) Uint16() uint16 {
	switch v {
	case VersionTLS10, VersionTLS11, VersionTLS12, VersionTLS13:
		return uint16(v)
	default:
		return 0
	}
}

// Parse converts a loosely-formatted string ("1.2", "tls1.3", "TLS 1.2",
// "TLSv1_3", ...) into a Version, returning VersionUnknown if nothing
// matches.
func Parse(s string) Version {
	s = strings.ToLower(s)
	for _, cut := range []string{"\"", "'", "tls", "ssl", "v", ".", "-", "_", " "} {
		s = strings.ReplaceAll(s, cut, "")
	}
	s = strings.TrimSpace(s)

	switch s {
	case "1", "10":
		return VersionTLS10
	case "11":
		return VersionTLS11
	case "12":
		return VersionTLS12
	case "13":
		return VersionTLS13
	default:
		return VersionUnknown
	}
}

// MarshalJSON renders the version as its canonical string form.
func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON parses the version from its canonical string form.
func (v *Version) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*v = Parse(s)
	return nil
}
