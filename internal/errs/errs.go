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

// Package errs provides a small CodeError-keyed error type shared by
// every httpulse package: a numeric code namespaced per package, an
// optional parent chain, and a registered message table so Error()
// renders a human string without the call site having to repeat it.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// CodeError is a package-namespaced numeric error code.
type CodeError uint32

// Per-package code ranges. Each package reserves a block of 100 and
// registers its own messages in an init().
const (
	MinPkgTransport CodeError = 100 * (iota + 1)
	MinPkgProbe
	MinPkgClassify
	MinPkgWorker
	MinPkgMetrics
	MinPkgAggregate
	MinPkgState
	MinPkgPersist
	MinPkgCLI
	MinPkgProfile
)

var messages = map[CodeError]string{}

// RegisterMessages merges a package's code->message table into the global
// registry, panicking on collision since that indicates two packages chose
// overlapping code ranges — a build-time programmer error, not a runtime one.
func RegisterMessages(table map[CodeError]string) {
	for code, msg := range table {
		if _, exists := messages[code]; exists {
			panic(fmt.Errorf("errs: code collision registering %d (%q)", code, msg))
		}
		messages[code] = msg
	}
}

func messageFor(code CodeError) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "unknown error"
}

// Error is the error type returned throughout httpulse. It carries a code,
// an optional wrapped parent, and supports errors.Is/As via Unwrap.
type Error interface {
	error
	Code() CodeError
	Parent() error
	Unwrap() error
	Is(target error) bool
}

type codeErr struct {
	code   CodeError
	msg    string
	parent error
}

// New builds an Error for code with no parent.
func New(code CodeError) Error {
	return &codeErr{code: code, msg: messageFor(code)}
}

// Wrap builds an Error for code around a parent error. A nil parent is
// equivalent to New.
func Wrap(code CodeError, parent error) Error {
	return &codeErr{code: code, msg: messageFor(code), parent: parent}
}

// Wrapf builds an Error for code with a formatted detail message appended
// to the registered one, around an optional parent.
func Wrapf(code CodeError, parent error, format string, args ...any) Error {
	return &codeErr{code: code, msg: messageFor(code) + ": " + fmt.Sprintf(format, args...), parent: parent}
}

func (e *codeErr) Code() CodeError { return e.code }
func (e *codeErr) Parent() error   { return e.parent }
func (e *codeErr) Unwrap() error   { return e.parent }

func (e *codeErr) Error() string {
	if e.parent == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *codeErr) Is(target error) bool {
	var other *codeErr
	if errors.As(target, &other) {
		return other.code == e.code
	}
	return false
}

// HasCode reports whether err, or any error in its Unwrap chain, is an
// Error with the given code.
func HasCode(err error, code CodeError) bool {
	for err != nil {
		if ce, ok := err.(Error); ok && ce.Code() == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ContainsString reports whether err's message, including parent chain,
// contains s (case-sensitive).
func ContainsString(err error, s string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), s)
}
