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

// Package obslog wraps logrus behind a small fluent Entry builder:
// FieldAdd/ErrorAdd chain onto an Entry and Log flushes it. httpulse
// never logs a secret.String's wrapped value, only its Redacted()
// projection, so callers pass that explicitly.
package obslog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultOnce sync.Once
	defaultLog  *logrus.Logger
)

// Default returns the process-wide logger, created with sane defaults
// (text formatter, info level) on first use.
func Default() *logrus.Logger {
	defaultOnce.Do(func() {
		defaultLog = logrus.New()
		defaultLog.SetLevel(logrus.InfoLevel)
	})
	return defaultLog
}

// SetLevel adjusts the default logger's verbosity.
func SetLevel(lvl logrus.Level) {
	Default().SetLevel(lvl)
}

// Fields is a typed alias kept distinct from logrus.Fields so call sites
// depend on obslog, not logrus, directly.
type Fields map[string]any

// Entry is a fluent log-record builder.
type Entry struct {
	log    *logrus.Logger
	level  logrus.Level
	msg    string
	fields Fields
	errs   []error
}

// NewEntry starts a new Entry at the given level with message msg.
func NewEntry(level logrus.Level, msg string) *Entry {
	return &Entry{
		log:    Default(),
		level:  level,
		msg:    msg,
		fields: Fields{},
	}
}

// FieldAdd adds one key/value pair to the entry and returns it for
// chaining.
func (e *Entry) FieldAdd(key string, val any) *Entry {
	e.fields[key] = val
	return e
}

// FieldMerge merges another Fields map into the entry.
func (e *Entry) FieldMerge(f Fields) *Entry {
	for k, v := range f {
		e.fields[k] = v
	}
	return e
}

// ErrorAdd appends non-nil errors to the entry; they are rendered under
// the "error" field on Log.
func (e *Entry) ErrorAdd(cleanNil bool, errs ...error) *Entry {
	for _, er := range errs {
		if cleanNil && er == nil {
			continue
		}
		e.errs = append(e.errs, er)
	}
	return e
}

// Log flushes the entry to the underlying logrus logger.
func (e *Entry) Log() {
	fields := logrus.Fields{}
	for k, v := range e.fields {
		fields[k] = v
	}

	if len(e.errs) > 0 {
		msgs := make([]string, 0, len(e.errs))
		for _, er := range e.errs {
			if er == nil {
				continue
			}
			msgs = append(msgs, er.Error())
		}
		if len(msgs) > 0 {
			fields["error"] = msgs
		}
	}

	e.log.WithFields(fields).Log(e.level, e.msg)
}
