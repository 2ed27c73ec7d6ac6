// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/aibor/memgo/internal/pathmap"
)

var (
	// ErrAlreadyExists is returned if an artifact is created for a key that
	// was created before and not removed since.
	ErrAlreadyExists = errors.New("artifact already exists")

	// ErrNotFound is returned if there is no complete artifact for a key.
	ErrNotFound = errors.New("artifact not found")

	// ErrNotMapped is returned if an artifact has no host path binding and
	// can not be flushed.
	ErrNotMapped = errors.New("artifact has no host path")

	// ErrClosed is returned on writes to a closed artifact writer.
	ErrClosed = fs.ErrClosed

	// ErrCodecInvalid is returned for unknown codec names.
	ErrCodecInvalid = errors.New("unknown codec")
)

// Error records an error and the operation and key that caused it.
type Error struct {
	Op   string
	Path pathmap.VirtualPath
	Err  error
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Is implements the [errors.Is] interface.
func (*Error) Is(other error) bool {
	_, ok := other.(*Error)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// FlushError is returned by [Store.Flush] for the first artifact that could
// not be written to its host path.
type FlushError struct {
	Virtual pathmap.VirtualPath
	Host    pathmap.HostPath
	Err     error
}

// Error implements the [error] interface.
func (e *FlushError) Error() string {
	return fmt.Sprintf("flush %s to %q: %v", e.Virtual, e.Host, e.Err)
}

// Is implements the [errors.Is] interface.
func (*FlushError) Is(other error) bool {
	_, ok := other.(*FlushError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *FlushError) Unwrap() error {
	return e.Err
}
