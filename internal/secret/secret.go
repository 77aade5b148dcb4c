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

// Package secret wraps values that must never escape into logs or debug
// output in the clear — e.g. header values configured on a ProfileConfig.
// The explicit Expose method reads the wrapped value; String/GoString/
// Redacted all yield a fixed sentinel. MarshalJSON/UnmarshalJSON carry
// the real value so persisted state round-trips it.
package secret

import "encoding/json"

const redacted = "[REDACTED]"

// String holds a secret string value. The zero value is an empty secret.
type String struct {
	value string
}

// New wraps v as a secret value.
func New(v string) String {
	return String{value: v}
}

// Expose is the only accessor that returns the wrapped value. Call sites
// must use it only at the point the value is actually needed (e.g. setting
// an HTTP request header), never to build a log line.
func (s String) Expose() string {
	return s.value
}

// Redacted always returns the fixed sentinel, regardless of the wrapped
// value — the safe thing to hand to a logger or a display projection.
func (s String) Redacted() string {
	return redacted
}

// String implements fmt.Stringer with the redaction sentinel, so that an
// accidental %s/%v of a String in a log call can't leak the value.
func (s String) String() string {
	return redacted
}

// GoString implements fmt.GoStringer for the same reason %#v would
// otherwise reach into the struct.
func (s String) GoString() string {
	return redacted
}

// MarshalJSON round-trips the secret as-is — persisted state keeps the
// real value on disk — but any debug/display path must route through
// Redacted instead of json-marshalling for display.
func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// UnmarshalJSON restores the wrapped value from persisted state.
func (s *String) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.value = v
	return nil
}

// IsEmpty reports whether the wrapped value is the empty string.
func (s String) IsEmpty() bool {
	return s.value == ""
}
