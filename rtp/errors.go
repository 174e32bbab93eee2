// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import "fmt"

// ParseError reports a fatal problem with script syntax: an invalid time
// field, an unrecognized top-level line type, or an unrecognized RTCP leaf
// at record level. The CLI shell maps ParseError to exit status 2.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(line string, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Err: fmt.Errorf(format, args...)}
}

// SetupError reports a fatal problem acquiring a resource needed before the
// pacer can run: creating, binding or connecting a socket, or setting its
// multicast TTL or router-alert option. The CLI shell maps SetupError to
// exit status 1.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }
func (e *SetupError) Unwrap() error { return e.Err }

func newSetupError(format string, args ...any) *SetupError {
	return &SetupError{Err: fmt.Errorf(format, args...)}
}
