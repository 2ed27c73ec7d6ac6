// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package toolchain defines the narrow interface memgo uses to drive an
// external compiler and provides the implementation for the go command.
//
// A toolchain never writes artifacts itself. For every unit it emits, it asks
// the [OutputResolver] for a sink and writes the artifact into it.
package toolchain

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable is returned if the toolchain can not be found or started.
var ErrUnavailable = errors.New("toolchain unavailable")

// Unit is a single compiled artifact.
type Unit struct {
	// Name is the binary name of the unit. It is a slash separated import
	// path whose last element names the artifact file.
	Name string
	// Dir is the absolute host directory the artifact is emitted into.
	Dir string
	// Sources are the source files or the package directory of the unit.
	Sources []string
}

// OutputResolver resolves the sink a unit's artifact is written to.
//
// Implementations must be safe for concurrent use.
type OutputResolver interface {
	ResolveOutput(unit Unit) (io.WriteCloser, error)
}

// Request is a compile request.
type Request struct {
	// Flags are passed to the toolchain unchanged.
	Flags []string
	// Sources are source files or package directories.
	Sources []string
	// Dir is the working directory relative paths are resolved against.
	Dir string
}

// Toolchain compiles source units.
type Toolchain interface {
	// Compile compiles the given request and writes each artifact into the
	// sink resolved by out. Compiler diagnostics are written to diag. It
	// returns false if compilation failed for any unit. Errors are returned
	// only for failures that are not about the compiled sources, like
	// [ErrUnavailable] or output resolution failures.
	Compile(ctx context.Context, req Request, out OutputResolver, diag io.Writer) (bool, error)
}

// Func adapts a function to the [Toolchain] interface.
type Func func(ctx context.Context, req Request, out OutputResolver, diag io.Writer) (bool, error)

// Compile implements [Toolchain].
func (f Func) Compile(ctx context.Context, req Request, out OutputResolver, diag io.Writer) (bool, error) {
	return f(ctx, req, out, diag)
}

// Emit resolves the sink for the given unit and writes the artifact to it.
func Emit(out OutputResolver, unit Unit, artifact io.Reader) error {
	sink, err := out.ResolveOutput(unit)
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = io.Copy(sink, artifact)

	return errors.Join(err, sink.Close())
}
