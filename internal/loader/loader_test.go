// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader_test

import (
	"context"
	"debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/memgo/internal/archive"
	"github.com/aibor/memgo/internal/loader"
	"github.com/aibor/memgo/internal/pathmap"
	"github.com/aibor/memgo/internal/scheme"
	"github.com/aibor/memgo/internal/store"
	"github.com/aibor/memgo/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is a host directory with a store mounted for it.
type fixture struct {
	dir       string
	authority string
	store     *store.Store
}

func newFixture(tb testing.TB) *fixture {
	tb.Helper()

	f := &fixture{
		dir:       tb.TempDir(),
		authority: "loader-" + filepath.Base(tb.Name()),
		store:     store.New(new(pathmap.Table)),
	}

	unmount, err := scheme.Mount(f.authority, f.store)
	require.NoError(tb, err)
	tb.Cleanup(unmount)

	return f
}

func (f *fixture) capture(tb testing.TB, name string, content []byte) {
	tb.Helper()

	vp, hp, err := unixMapper.Map(f.dir, name)
	require.NoError(tb, err)
	require.NoError(tb, f.store.Table().Add(vp, hp))

	w, err := f.store.CreateForWrite(vp)
	require.NoError(tb, err)
	_, err = w.Write(content)
	require.NoError(tb, err)
	require.NoError(tb, w.Close())
}

func (f *fixture) writeFile(tb testing.TB, name string, content []byte) {
	tb.Helper()

	path := filepath.Join(f.dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(tb, os.WriteFile(path, content, 0o600))
}

func (f *fixture) loader(tb testing.TB, opts ...loader.Option) *loader.Loader {
	tb.Helper()

	entries, err := loader.Classpath(unixMapper, f.authority, []string{f.dir}, "/")
	require.NoError(tb, err)

	return loader.New(entries, opts...)
}

func script(body string) []byte {
	return []byte("#!/bin/sh\n" + body + "\n")
}

func TestLoader_Load(t *testing.T) {
	elfContent := sys.ELFHeader(t, elf.FileHeader{
		Machine: sys.NativeMachine(t),
		Type:    elf.ET_EXEC,
		Entry:   0x401000,
	})

	f := newFixture(t)
	f.capture(t, "shadowed", script("echo store"))
	f.writeFile(t, "shadowed", script("echo host"))
	f.writeFile(t, "hostonly", script("echo host"))
	f.capture(t, "elf", elfContent)
	f.capture(t, "text", []byte("no program"))
	f.writeFile(t, "sub/nested", script("echo nested"))

	l := f.loader(t)

	tests := []struct {
		name           string
		program        string
		expectedScheme string
		expectedFormat sys.Format
		expectedErr    error
	}{
		{
			name:           "store shadows host",
			program:        "shadowed",
			expectedScheme: scheme.Scheme,
			expectedFormat: sys.FormatScript,
		},
		{
			name:           "host only",
			program:        "hostonly",
			expectedScheme: "file",
			expectedFormat: sys.FormatScript,
		},
		{
			name:           "nested",
			program:        "sub/nested",
			expectedScheme: "file",
			expectedFormat: sys.FormatScript,
		},
		{
			name:           "elf",
			program:        "elf",
			expectedScheme: scheme.Scheme,
			expectedFormat: sys.FormatELF,
		},
		{
			name:        "missing",
			program:     "missing",
			expectedErr: &loader.ClassNotFoundError{},
		},
		{
			name:        "directory",
			program:     "sub",
			expectedErr: &loader.ClassNotFoundError{},
		},
		{
			name:        "escaping name",
			program:     "../outside",
			expectedErr: loader.ErrInvalidName,
		},
		{
			name:        "not executable",
			program:     "text",
			expectedErr: &loader.EntryPointNotFoundError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := l.Load(context.Background(), tt.program)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr != nil {
				return
			}

			assert.Equal(t, tt.program, program.Name)
			assert.Equal(t, tt.expectedScheme, program.Source.URL.Scheme)
			assert.Equal(t, tt.expectedFormat, program.Executable.Format)
		})
	}
}

func TestLoader_LoadNotExecutable(t *testing.T) {
	f := newFixture(t)
	f.capture(t, "text", []byte("no program"))

	_, err := f.loader(t).Load(context.Background(), "text")

	var entryErr *loader.EntryPointNotFoundError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, "text", entryErr.Name)
	assert.Equal(t, scheme.Scheme, entryErr.Source.URL.Scheme)
	require.ErrorIs(t, err, sys.ErrNotExecutable)
}

func TestLoader_LoadFromArchive(t *testing.T) {
	f := newFixture(t)
	f.capture(t, "archived", script("echo archived"))

	archiveFile := filepath.Join(t.TempDir(), "programs.cpio")

	file, err := os.Create(archiveFile)
	require.NoError(t, err)

	_, err = archive.Export(file, f.store)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	name, err := archive.Name(pathmap.VirtualPath("/classes" + f.dir + "/archived"))
	require.NoError(t, err)

	entries, err := loader.Classpath(unixMapper, "unmounted", []string{archiveFile}, "/")
	require.NoError(t, err)
	require.True(t, entries[1].IsArchive())

	program, err := loader.New(entries).Load(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "file", program.Source.URL.Scheme)
	assert.Equal(t, len(script("echo archived")), program.Size())
}

func TestClassNotFoundError_Message(t *testing.T) {
	entry, err := loader.ParseEntry("file:///tmp/")
	require.NoError(t, err)

	_, err = loader.New([]loader.Entry{entry}).Load(context.Background(), "nothing/here")
	require.Error(t, err)
	assert.Equal(t, "program nothing/here not found in [file:///tmp/]", err.Error())
}
