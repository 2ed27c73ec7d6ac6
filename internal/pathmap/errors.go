// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pathmap

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRoot is returned if no root component can be determined for a
	// host path, e.g. because it is relative.
	ErrNoRoot = errors.New("no root component")

	// ErrEmptyName is returned if the binary name has no trailing element.
	ErrEmptyName = errors.New("empty binary name")

	// ErrNotVirtual is returned if a path is not below [Root].
	ErrNotVirtual = errors.New("not a virtual path")

	// ErrConflict is returned if a path is already bound to a different
	// partner in a [Table].
	ErrConflict = errors.New("path already mapped")
)

// PathError records an error and the operation and path that caused it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the [error] interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Is implements the [errors.Is] interface.
func (*PathError) Is(other error) bool {
	_, ok := other.(*PathError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *PathError) Unwrap() error {
	return e.Err
}
