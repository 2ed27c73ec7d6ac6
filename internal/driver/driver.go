// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package driver orchestrates a compile session: compile into the store,
// optionally flush the store to the host, export it and run a program from
// it.
package driver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aibor/memgo/internal/archive"
	"github.com/aibor/memgo/internal/intercept"
	"github.com/aibor/memgo/internal/loader"
	"github.com/aibor/memgo/internal/pathmap"
	"github.com/aibor/memgo/internal/scheme"
	"github.com/aibor/memgo/internal/store"
	"github.com/aibor/memgo/internal/toolchain"
)

var (
	// ErrCompileFailed is returned if the toolchain reported failures for
	// the compiled sources or artifacts could not be captured.
	ErrCompileFailed = errors.New("compilation failed")

	// ErrInvalidState is returned if a session step is requested in a state
	// it is not allowed in.
	ErrInvalidState = errors.New("invalid session state")
)

// RunSpec names the program to run after compilation.
type RunSpec struct {
	Name string
	Args []string
}

// Config is the configuration of a [Session].
type Config struct {
	// Toolchain compiles the request.
	Toolchain toolchain.Toolchain
	// Request is passed to the toolchain.
	Request toolchain.Request
	// Output enables flushing the captured artifacts to their host paths.
	Output bool
	// Run is the program to run. Nil if nothing should be run.
	Run *RunSpec
	// Classpath are the host locations programs are searched in. Defaults
	// to the request directory.
	Classpath []string
	// Archive is the path of the cpio archive the store is exported to.
	// Empty if no archive should be written.
	Archive string
	// Codec is the codec of the store.
	Codec store.Codec
	// Authority is the authority the store is mounted at. Defaults to
	// [scheme.DefaultAuthority].
	Authority string
	// Mapper maps output locations to virtual paths. Defaults to
	// [pathmap.NewMapper].
	Mapper *pathmap.Mapper
	// Env is added to the environment of the run program.
	Env []string
	// Stdio are the standard streams of the run program.
	Stdio loader.Stdio
	// Diagnostics receives the toolchain diagnostics. Discarded if nil.
	Diagnostics io.Writer
}

// Capture returns true if artifacts must be captured into the store.
func (c *Config) Capture() bool {
	return c.Output || c.Run != nil || c.Archive != ""
}

// Session is a single compile session with its own store.
//
// Create a new instance with [NewSession]. Sessions are not safe for
// concurrent use.
type Session struct {
	cfg         Config
	mapper      pathmap.Mapper
	state       State
	store       *store.Store
	interceptor *intercept.Interceptor
	unmount     func()
}

// NewSession creates a new [Session] for the given configuration and mounts
// its store.
//
// It returns [scheme.ErrAuthorityInUse] if another session uses the same
// authority.
func NewSession(cfg Config) (*Session, error) {
	cfg.Authority = cmp.Or(cfg.Authority, scheme.DefaultAuthority)

	if cfg.Diagnostics == nil {
		cfg.Diagnostics = io.Discard
	}

	mapper := pathmap.NewMapper()
	if cfg.Mapper != nil {
		mapper = *cfg.Mapper
	}

	mode := intercept.PassThrough
	if cfg.Capture() {
		mode = intercept.Capture
	}

	artifacts := store.New(new(pathmap.Table), store.WithCodec(cfg.Codec))

	unmount, err := scheme.Mount(cfg.Authority, artifacts)
	if err != nil {
		return nil, fmt.Errorf("mount store: %w", err)
	}

	slog.Debug("Session created",
		slog.String("authority", cfg.Authority),
		slog.String("codec", artifacts.Codec().String()),
		slog.String("mode", mode.String()))

	return &Session{
		cfg:         cfg,
		mapper:      mapper,
		store:       artifacts,
		interceptor: intercept.New(mode, mapper, artifacts),
		unmount:     unmount,
	}, nil
}

// State returns the current [State] of the session.
func (s *Session) State() State {
	return s.state
}

// Store returns the store of the session.
func (s *Session) Store() *store.Store {
	return s.store
}

// Close unmounts the store of the session.
func (s *Session) Close() {
	s.unmount()
}

// Execute runs all steps requested by the configuration: compile, flush,
// export and run.
func (s *Session) Execute(ctx context.Context) error {
	if err := s.Compile(ctx); err != nil {
		return err
	}

	if s.cfg.Output {
		if err := s.Flush(); err != nil {
			return err
		}
	}

	if s.cfg.Archive != "" {
		if err := s.Export(); err != nil {
			return err
		}
	}

	if s.cfg.Run != nil {
		return s.Run(ctx)
	}

	return nil
}

// Compile runs the toolchain with the session's interceptor.
//
// It returns [ErrCompileFailed] if the toolchain reported failures or an
// artifact could not be captured. Toolchain diagnostics are not errors. They
// are written to the configured diagnostics writer.
func (s *Session) Compile(ctx context.Context) error {
	if s.state != Idle {
		return fmt.Errorf("%w: compile in state %s", ErrInvalidState, s.state)
	}

	s.state = Compiling

	slog.Debug("Compile",
		slog.Any("sources", s.cfg.Request.Sources),
		slog.Any("flags", s.cfg.Request.Flags),
		slog.String("mode", s.interceptor.Mode().String()))

	ok, err := s.cfg.Toolchain.Compile(ctx, s.cfg.Request, s.interceptor, s.cfg.Diagnostics)
	if err != nil {
		s.state = Failed

		if isCaptureError(err) {
			return fmt.Errorf("%w: %w", ErrCompileFailed, err)
		}

		return fmt.Errorf("compile: %w", err)
	}

	if !ok {
		s.state = Failed
		return ErrCompileFailed
	}

	s.state = Succeeded

	slog.Debug("Compile succeeded", slog.Int("artifacts", s.store.Len()))

	return nil
}

// Flush writes all captured artifacts to their host paths.
//
// It returns a [store.FlushError] for the first artifact that could not be
// written.
func (s *Session) Flush() error {
	if s.state != Succeeded {
		return fmt.Errorf("%w: flush in state %s", ErrInvalidState, s.state)
	}

	s.state = Flushing

	err := s.store.Flush()
	if err != nil {
		s.state = Failed
		return fmt.Errorf("flush: %w", err)
	}

	s.state = Flushed

	return nil
}

// Export writes all captured artifacts into the configured cpio archive.
func (s *Session) Export() error {
	if !s.state.compiled() {
		return fmt.Errorf("%w: export in state %s", ErrInvalidState, s.state)
	}

	path := s.cfg.Archive
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.cfg.Request.Dir, path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	count, err := archive.Export(file, s.store)
	if err != nil {
		_ = file.Close()
		return err //nolint:wrapcheck
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	slog.Debug("Store exported",
		slog.String("path", path),
		slog.Int("artifacts", count))

	return nil
}

// Run runs the configured program.
//
// Errors of the loader are returned unchanged, like
// [loader.ClassNotFoundError], [loader.EntryPointNotFoundError] and
// [loader.InvocationError].
func (s *Session) Run(ctx context.Context) error {
	if !s.state.compiled() {
		return fmt.Errorf("%w: run in state %s", ErrInvalidState, s.state)
	}

	if s.cfg.Run == nil {
		return fmt.Errorf("%w: no program to run", ErrInvalidState)
	}

	s.state = Running

	dirs := s.cfg.Classpath
	if len(dirs) == 0 {
		dirs = []string{s.cfg.Request.Dir}
	}

	classpath, err := loader.Classpath(s.mapper, s.cfg.Authority, dirs, s.cfg.Request.Dir)
	if err != nil {
		s.state = RunFailed
		return err //nolint:wrapcheck
	}

	req := loader.RunRequest{
		Name:      s.cfg.Run.Name,
		Args:      s.cfg.Run.Args,
		Classpath: classpath,
	}

	err = loader.Run(ctx, req, s.cfg.Stdio, loader.WithEnv(s.cfg.Env...))
	if err != nil {
		s.state = RunFailed
		return err //nolint:wrapcheck
	}

	s.state = RunSucceeded

	return nil
}

func isCaptureError(err error) bool {
	return errors.Is(err, &pathmap.PathError{}) || errors.Is(err, &store.Error{})
}
