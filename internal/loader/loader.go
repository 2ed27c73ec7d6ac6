// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package loader loads programs from an ordered classpath and executes them
// from memory.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/aibor/memgo/internal/archive"
	"github.com/aibor/memgo/internal/scheme"
	"github.com/aibor/memgo/internal/sys"
)

const defaultPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// RunRequest is a request to run a program.
type RunRequest struct {
	// Name is the slash separated program name relative to the classpath
	// entries.
	Name string
	// Args are passed to the program.
	Args []string
	// Classpath is searched in order.
	Classpath []Entry
}

// Option configures a [Loader].
type Option func(*Loader)

// WithEnv adds environment variables in the form "key=value" to the
// environment of programs.
func WithEnv(env ...string) Option {
	return func(l *Loader) {
		l.env = append(l.env, env...)
	}
}

// Loader finds programs in its classpath.
//
// Programs do not inherit the environment of the current process. They get
// a minimal environment with PATH, HOME and TMPDIR, plus the variables given
// with [WithEnv].
type Loader struct {
	classpath []Entry
	env       []string
}

// New creates a new [Loader] for the given classpath.
func New(classpath []Entry, opts ...Option) *Loader {
	loader := &Loader{
		classpath: slices.Clone(classpath),
		env: []string{
			"PATH=" + defaultPath,
			"HOME=/",
			"TMPDIR=" + os.TempDir(),
		},
	}

	for _, opt := range opts {
		opt(loader)
	}

	return loader
}

// Classpath returns the classpath of the loader.
func (l *Loader) Classpath() []Entry {
	return slices.Clone(l.classpath)
}

// Load returns the [Program] with the given name from the first classpath
// entry that has it.
//
// It returns a [ClassNotFoundError] if no entry has the program and an
// [EntryPointNotFoundError] if the first found content is not executable on
// this host.
func (l *Loader) Load(ctx context.Context, name string) (*Program, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, &ClassNotFoundError{Name: name, Err: ErrInvalidName}
	}

	for _, entry := range l.classpath {
		content, err := l.read(ctx, entry, name)
		if isNotFound(err) {
			slog.Debug("Program not in classpath entry",
				slog.String("name", name),
				slog.String("entry", entry.String()))

			continue
		} else if err != nil {
			return nil, fmt.Errorf("load %s from %s: %w", name, entry, err)
		}

		exe, err := sys.Inspect(content, sys.Native)
		if err != nil {
			return nil, &EntryPointNotFoundError{Name: name, Source: entry, Err: err}
		}

		program := &Program{
			Name:       name,
			Source:     entry,
			Executable: exe,
			content:    content,
			env:        slices.Clone(l.env),
		}

		slog.Debug("Program loaded",
			slog.String("name", name),
			slog.String("entry", entry.String()),
			slog.String("format", exe.Format.String()),
			slog.String("interpreter", exe.Interpreter),
			slog.Int("size", program.Size()))

		return program, nil
	}

	return nil, &ClassNotFoundError{Name: name, Classpath: l.Classpath()}
}

// Run loads the requested program and invokes it.
func Run(ctx context.Context, req RunRequest, stdio Stdio, opts ...Option) error {
	program, err := New(req.Classpath, opts...).Load(ctx, req.Name)
	if err != nil {
		return err
	}

	return program.Invoke(ctx, req.Args, stdio)
}

func (l *Loader) read(ctx context.Context, entry Entry, name string) ([]byte, error) {
	if entry.IsArchive() {
		reader, err := scheme.Open(ctx, entry.URL)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		defer reader.Close()

		return archive.ReadFile(reader, name) //nolint:wrapcheck
	}

	reader, err := scheme.Open(ctx, entry.URL.JoinPath(name))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return content, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, scheme.ErrNotFound) || errors.Is(err, archive.ErrNotFound)
}
