// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package intercept_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/aibor/memgo/internal/intercept"
	"github.com/aibor/memgo/internal/pathmap"
	"github.com/aibor/memgo/internal/store"
	"github.com/aibor/memgo/internal/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unixMapper = pathmap.Mapper{Convention: pathmap.Unix}

func TestInterceptor_Capture(t *testing.T) {
	artifacts := store.New(new(pathmap.Table))
	interceptor := intercept.New(intercept.Capture, unixMapper, artifacts)

	unit := toolchain.Unit{Name: "example.com/tools/hello", Dir: "/w/bin"}

	require.NoError(t, toolchain.Emit(interceptor, unit, strings.NewReader("binary")))

	content, err := artifacts.ReadFile("/classes/w/bin/hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary"), content)

	host, exists := artifacts.Table().Host("/classes/w/bin/hello")
	require.True(t, exists)
	assert.Equal(t, pathmap.HostPath("/w/bin/hello"), host)
}

func TestInterceptor_CaptureLogsDigest(t *testing.T) {
	var logs bytes.Buffer

	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	artifacts := store.New(new(pathmap.Table))
	interceptor := intercept.New(intercept.Capture, unixMapper, artifacts)

	unit := toolchain.Unit{Name: "hello", Dir: "/w"}
	require.NoError(t, toolchain.Emit(interceptor, unit, strings.NewReader("binary")))

	entries := artifacts.List()
	require.Len(t, entries, 1)

	assert.Contains(t, logs.String(), "Artifact captured")
	assert.Contains(t, logs.String(), "digest="+entries[0].Digest.String())
	assert.Contains(t, logs.String(), "size=6")
}

func TestInterceptor_CaptureErrors(t *testing.T) {
	tests := []struct {
		name        string
		unit        toolchain.Unit
		expectedErr error
	}{
		{
			name:        "relative dir",
			unit:        toolchain.Unit{Name: "a", Dir: "rel"},
			expectedErr: pathmap.ErrNoRoot,
		},
		{
			name:        "empty name",
			unit:        toolchain.Unit{Name: "a/", Dir: "/w"},
			expectedErr: pathmap.ErrEmptyName,
		},
		{
			name:        "emitted twice",
			unit:        toolchain.Unit{Name: "dup", Dir: "/w"},
			expectedErr: store.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifacts := store.New(new(pathmap.Table))
			interceptor := intercept.New(intercept.Capture, unixMapper, artifacts)

			_, _ = interceptor.ResolveOutput(toolchain.Unit{Name: "dup", Dir: "/w"})

			_, err := interceptor.ResolveOutput(tt.unit)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestInterceptor_PassThrough(t *testing.T) {
	artifacts := store.New(new(pathmap.Table))
	interceptor := intercept.New(intercept.PassThrough, unixMapper, artifacts)

	require.NoError(t, toolchain.Emit(interceptor, toolchain.Unit{Name: "a", Dir: "rel"}, strings.NewReader("x")))
	assert.Zero(t, artifacts.Len())
	assert.Zero(t, artifacts.Table().Len())
}

func TestInterceptor_Concurrent(t *testing.T) {
	artifacts := store.New(new(pathmap.Table))
	interceptor := intercept.New(intercept.Capture, unixMapper, artifacts)

	var wg sync.WaitGroup

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, name := range names {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unit := toolchain.Unit{Name: name, Dir: "/w"}
			assert.NoError(t, toolchain.Emit(interceptor, unit, strings.NewReader(name)))
		}()
	}

	wg.Wait()

	assert.Equal(t, len(names), artifacts.Len())
	assert.Equal(t, len(names), artifacts.Table().Len())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "capture", intercept.Capture.String())
	assert.Equal(t, "pass-through", intercept.PassThrough.String())
}
