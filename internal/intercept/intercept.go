// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package intercept diverts the artifacts emitted by a toolchain.
package intercept

import (
	"io"
	"log/slog"

	"github.com/aibor/memgo/internal/pathmap"
	"github.com/aibor/memgo/internal/store"
	"github.com/aibor/memgo/internal/toolchain"
)

// Mode selects where an [Interceptor] sends artifacts.
type Mode int

const (
	// PassThrough discards artifacts. Only diagnostics are of interest.
	PassThrough Mode = iota
	// Capture writes artifacts into the store.
	Capture
)

// String implements [fmt.Stringer].
func (m Mode) String() string {
	if m == Capture {
		return "capture"
	}

	return "pass-through"
}

// Interceptor is the [toolchain.OutputResolver] that captures artifacts into
// a [store.Store]. It is safe for concurrent use.
type Interceptor struct {
	mode   Mode
	mapper pathmap.Mapper
	store  *store.Store
}

var _ toolchain.OutputResolver = (*Interceptor)(nil)

// New creates a new [Interceptor]. In [Capture] mode, artifacts are bound in
// the store's table using the given mapper.
func New(mode Mode, mapper pathmap.Mapper, artifacts *store.Store) *Interceptor {
	return &Interceptor{
		mode:   mode,
		mapper: mapper,
		store:  artifacts,
	}
}

// Mode returns the [Mode] of the interceptor.
func (i *Interceptor) Mode() Mode {
	return i.mode
}

// ResolveOutput implements [toolchain.OutputResolver].
//
// Mapping failures are returned as [*pathmap.PathError]. There is no
// fallback to the host file system.
func (i *Interceptor) ResolveOutput(unit toolchain.Unit) (io.WriteCloser, error) {
	if i.mode == PassThrough {
		slog.Debug("Discard artifact", slog.String("name", unit.Name))
		return discard{}, nil
	}

	virtual, host, err := i.mapper.Map(unit.Dir, unit.Name)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	err = i.store.Table().Add(virtual, host)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	sink, err := i.store.CreateForWrite(virtual)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	slog.Debug("Capture artifact",
		slog.String("name", unit.Name),
		slog.String("virtual", virtual.String()),
		slog.String("host", host.String()))

	return &captured{WriteCloser: sink, store: i.store, key: virtual}, nil
}

// captured logs the committed artifact once its sink is closed.
type captured struct {
	io.WriteCloser

	store *store.Store
	key   pathmap.VirtualPath
}

func (c *captured) Close() error {
	if err := c.WriteCloser.Close(); err != nil {
		return err //nolint:wrapcheck
	}

	entry, err := c.store.Stat(c.key)
	if err != nil {
		return err //nolint:wrapcheck
	}

	slog.Debug("Artifact captured",
		slog.String("virtual", entry.Virtual.String()),
		slog.Int64("size", entry.Size),
		slog.String("digest", entry.Digest.String()))

	return nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Close() error                { return nil }
