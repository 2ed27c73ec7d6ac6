// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/aibor/memgo/internal/loader"
	"github.com/aibor/memgo/internal/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptToolchain emits a shell script for each source that echoes its
// arguments and exits with the first argument if it is numeric.
var scriptToolchain = toolchain.Func(func(
	_ context.Context,
	req toolchain.Request,
	out toolchain.OutputResolver,
	diag io.Writer,
) (bool, error) {
	for _, source := range req.Sources {
		if strings.Contains(source, "broken") {
			_, _ = io.WriteString(diag, source+":1:1: expected 'package'\n")
			return false, nil
		}

		unit := toolchain.Unit{
			Name: strings.TrimSuffix(filepath.Base(source), ".go"),
			Dir:  req.Dir,
		}

		script := "#!/bin/sh\necho \"$*\"\ncase \"$1\" in [0-9]*) exit \"$1\" ;; esac\n"

		err := toolchain.Emit(out, unit, strings.NewReader(script))
		if err != nil {
			return false, err
		}
	}

	return true, nil
})

func chdir(tb testing.TB) string {
	tb.Helper()

	dir := tb.TempDir()
	tb.Chdir(dir)

	return dir
}

func TestRun(t *testing.T) {
	tests := []struct {
		name             string
		cmdline          []string
		linuxOnly        bool
		expectedExitCode int
		expectedStdout   string
		expectedStderr   string
		expectedFiles    []string
	}{
		{
			name:           "help",
			cmdline:        []string{"-memgo-help", "a.go"},
			expectedStdout: "Usage: memgo",
		},
		{
			name:             "malformed option",
			cmdline:          []string{"-memgo-nope", "a.go"},
			expectedExitCode: exitMalformed,
			expectedStderr:   "malformed option -memgo-nope",
		},
		{
			name:             "no sources",
			cmdline:          []string{"-memgo-out"},
			expectedExitCode: exitMalformed,
			expectedStderr:   "no sources given",
		},
		{
			name:             "missing argument file",
			cmdline:          []string{"@missing"},
			expectedExitCode: exitFailure,
			expectedStderr:   "argument file",
		},
		{
			name:          "output",
			cmdline:       []string{"-memgo-out", "hello.go"},
			expectedFiles: []string{"hello"},
		},
		{
			name:             "compile failure",
			cmdline:          []string{"-memgo-out", "broken.go"},
			expectedExitCode: exitFailure,
			expectedStderr:   "expected 'package'",
		},
		{
			name:             "class not found",
			cmdline:          []string{"-memgo-run:other", "hello.go"},
			expectedExitCode: exitFailure,
			expectedStderr:   "program other not found",
		},
		{
			name:           "run",
			cmdline:        []string{"-memgo-run:hello::x:y", "hello.go"},
			linuxOnly:      true,
			expectedStdout: "x y\n",
		},
		{
			name:             "run failure",
			cmdline:          []string{"-memgo-run:hello:3", "hello.go"},
			linuxOnly:        true,
			expectedExitCode: 3,
			expectedStdout:   "3\n",
			expectedStderr:   "exit code 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.linuxOnly && runtime.GOOS != "linux" {
				t.Skip("in-memory execution requires linux")
			}

			dir := chdir(t)

			var stdout, stderr bytes.Buffer

			exitCode := run(context.Background(), tt.cmdline, scriptToolchain, IO{
				Stdin:  strings.NewReader(""),
				Stdout: &stdout,
				Stderr: &stderr,
			})

			assert.Equal(t, tt.expectedExitCode, exitCode, "exit code")
			assert.Contains(t, stdout.String(), tt.expectedStdout, "stdout")
			assert.Contains(t, stderr.String(), tt.expectedStderr, "stderr")

			for _, name := range tt.expectedFiles {
				assert.FileExists(t, filepath.Join(dir, name))
			}
		})
	}
}

func TestRun_FlushFailure(t *testing.T) {
	dir := chdir(t)

	// A non-empty directory occupies the host path of the artifact.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hello", "sub"), 0o700))

	var stdout, stderr bytes.Buffer

	exitCode := run(context.Background(), []string{"-memgo-out", "-memgo-run:hello:ran", "hello.go"},
		scriptToolchain, IO{
			Stdout: &stdout,
			Stderr: &stderr,
		})

	assert.Equal(t, exitFailure, exitCode)
	assert.Empty(t, stdout.String(), "run skipped")
	assert.Contains(t, stderr.String(), "flush /classes")
	assert.DirExists(t, filepath.Join(dir, "hello", "sub"))
}

func TestRun_EnvClasspath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("in-memory execution requires linux")
	}

	dir := chdir(t)

	other := filepath.Join(dir, "other")
	require.NoError(t, os.Mkdir(other, 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(other, "tool"),
		[]byte("#!/bin/sh\necho from host\n"),
		0o600,
	))

	t.Setenv("MEMGO_CLASSPATH", other)

	var stdout bytes.Buffer

	exitCode := run(context.Background(), []string{"-memgo-run:tool", "hello.go"}, scriptToolchain, IO{
		Stdout: &stdout,
		Stderr: io.Discard,
	})
	assert.Equal(t, exitOK, exitCode)
	assert.Equal(t, "from host\n", stdout.String())
}

func TestHandleRunError(t *testing.T) {
	assert.Equal(t, 42, handleRunError(&loader.InvocationError{ExitCode: 42}))
	assert.Equal(t, exitFailure, handleRunError(&loader.InvocationError{ExitCode: -1}))
	assert.Equal(t, exitFailure, handleRunError(&loader.ClassNotFoundError{Name: "x"}))
}
