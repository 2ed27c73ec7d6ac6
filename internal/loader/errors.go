// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidName is returned if a program name is not a valid slash
	// separated relative path.
	ErrInvalidName = errors.New("invalid program name")

	// ErrNotAbsolute is returned for classpath entries that are not absolute
	// URLs.
	ErrNotAbsolute = errors.New("classpath entry is not an absolute URL")

	// ErrUnsupportedPlatform is returned by [Program.Invoke] on platforms
	// programs can not be executed from memory on.
	ErrUnsupportedPlatform = errors.New("in-memory execution not supported on this platform")
)

// ClassNotFoundError is returned if no classpath entry has a program with the
// requested name.
type ClassNotFoundError struct {
	Name      string
	Classpath []Entry
	Err       error
}

// Error implements the [error] interface.
func (e *ClassNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("program %s not found: %v", e.Name, e.Err)
	}

	entries := make([]string, len(e.Classpath))
	for idx, entry := range e.Classpath {
		entries[idx] = entry.String()
	}

	return fmt.Sprintf("program %s not found in [%s]", e.Name, strings.Join(entries, " "))
}

// Is implements the [errors.Is] interface.
func (*ClassNotFoundError) Is(other error) bool {
	_, ok := other.(*ClassNotFoundError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ClassNotFoundError) Unwrap() error {
	return e.Err
}

// EntryPointNotFoundError is returned if a program has been found but its
// content can not be executed.
type EntryPointNotFoundError struct {
	Name   string
	Source Entry
	Err    error
}

// Error implements the [error] interface.
func (e *EntryPointNotFoundError) Error() string {
	return fmt.Sprintf("program %s from %s has no entry point: %v", e.Name, e.Source, e.Err)
}

// Is implements the [errors.Is] interface.
func (*EntryPointNotFoundError) Is(other error) bool {
	_, ok := other.(*EntryPointNotFoundError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *EntryPointNotFoundError) Unwrap() error {
	return e.Err
}

// InvocationError is returned if a program could not be started or did not
// finish successfully.
type InvocationError struct {
	Name string
	// ExitCode is the exit code of the program. For programs terminated by
	// a signal it is 128 plus the signal number. It is -1 if the program
	// has not been started.
	ExitCode int
	Err      error
}

// Error implements the [error] interface.
func (e *InvocationError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("start program %s: %v", e.Name, e.Err)
	}

	return fmt.Sprintf("program %s failed with exit code %d: %v", e.Name, e.ExitCode, e.Err)
}

// Is implements the [errors.Is] interface.
func (*InvocationError) Is(other error) bool {
	_, ok := other.(*InvocationError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *InvocationError) Unwrap() error {
	return e.Err
}
