// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
)

var (
	// ErrHelp is returned if help is requested.
	ErrHelp = errors.New("help requested")

	// ErrNoSources is returned if no sources are given.
	ErrNoSources = errors.New("no sources given")

	// ErrArgFileCycle is returned if an argument file includes itself.
	ErrArgFileCycle = errors.New("argument file includes itself")
)

// MalformedOptionError is returned for memgo options that can not be parsed.
type MalformedOptionError struct {
	Option string
	Err    error
}

// Error implements the [error] interface.
func (e *MalformedOptionError) Error() string {
	if e.Err == nil {
		return "malformed option " + e.Option
	}

	return fmt.Sprintf("malformed option %s: %v", e.Option, e.Err)
}

// Is implements the [errors.Is] interface.
func (*MalformedOptionError) Is(other error) bool {
	_, ok := other.(*MalformedOptionError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *MalformedOptionError) Unwrap() error {
	return e.Err
}
