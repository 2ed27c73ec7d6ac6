// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package toolchain

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// goStdout is the output path the go command streams the linked executable
// to. The go command copies its result to non-regular destinations instead
// of renaming it, so nothing is written to the file system.
const goStdout = "/dev/stdout"

// ErrOutputFlag is returned if the output flag is given without a value.
var ErrOutputFlag = errors.New("output flag requires a directory")

// Go is the [Toolchain] for the go command. Each unit is built with its own
// "go build" invocation. Units are built in parallel.
type Go struct {
	// Executable is the go command. Defaults to "go" looked up in PATH.
	Executable string
	// Env is appended to the current environment of the go command.
	Env []string
	// Jobs is the maximum number of parallel builds. Defaults to
	// [runtime.GOMAXPROCS].
	Jobs int
}

var _ Toolchain = (*Go)(nil)

// Units groups the sources of the given request into units.
//
// Go files are grouped by directory, and the unit is named after the first
// file like "go build" does. Each package directory is a unit named like
// "go build" names its executable. Like "go build", artifacts are emitted into
// the working directory, unless an output directory is given with the "-o"
// flag.
func (g *Go) Units(req Request) ([]Unit, []string, error) {
	outDir, flags, err := splitOutputFlag(req.Flags)
	if err != nil {
		return nil, nil, err
	}

	outDir = absolute(req.Dir, cmp.Or(outDir, "."))

	var (
		units   []Unit
		fileIdx = make(map[string]int)
	)

	for _, source := range req.Sources {
		source = absolute(req.Dir, source)

		if !strings.HasSuffix(source, ".go") {
			units = append(units, Unit{
				Name:    execName(source),
				Dir:     outDir,
				Sources: []string{source},
			})

			continue
		}

		dir := filepath.Dir(source)

		idx, exists := fileIdx[dir]
		if !exists {
			idx = len(units)
			fileIdx[dir] = idx
			units = append(units, Unit{
				Name: strings.TrimSuffix(filepath.Base(source), ".go"),
				Dir:  outDir,
			})
		}

		units[idx].Sources = append(units[idx].Sources, source)
	}

	return units, flags, nil
}

// Compile implements [Toolchain].
func (g *Go) Compile(
	ctx context.Context,
	req Request,
	out OutputResolver,
	diag io.Writer,
) (bool, error) {
	executable, err := exec.LookPath(cmp.Or(g.Executable, "go"))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	units, flags, err := g.Units(req)
	if err != nil {
		return false, err
	}

	var (
		failed  atomic.Bool
		diagMu  sync.Mutex
		group   errgroup.Group
		jobs    = g.Jobs
		builder = func(unit Unit) error {
			var stdout, stderr bytes.Buffer

			args := slices.Concat([]string{"build"}, flags, []string{"-o", goStdout}, unit.Sources)

			cmd := exec.CommandContext(ctx, executable, args...)
			cmd.Dir = req.Dir
			cmd.Env = append(os.Environ(), g.Env...)
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			slog.Debug("Build unit",
				slog.String("name", unit.Name),
				slog.String("command", cmd.String()))

			err := cmd.Run()
			if ctx.Err() != nil {
				return ctx.Err() //nolint:wrapcheck
			}

			diagMu.Lock()
			_, _ = diag.Write(stderr.Bytes())
			diagMu.Unlock()

			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				failed.Store(true)
				return nil
			} else if err != nil {
				return fmt.Errorf("%w: %w", ErrUnavailable, err)
			}

			return Emit(out, unit, &stdout)
		}
	)

	if jobs < 1 {
		jobs = runtime.GOMAXPROCS(0)
	}

	group.SetLimit(jobs)

	for _, unit := range units {
		group.Go(func() error {
			return builder(unit)
		})
	}

	err = group.Wait()
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	return !failed.Load(), nil
}

// splitOutputFlag removes the "-o" flag from the given flags and returns its
// value.
func splitOutputFlag(flags []string) (string, []string, error) {
	var (
		outDir string
		rest   = make([]string, 0, len(flags))
	)

	for idx := 0; idx < len(flags); idx++ {
		flag := flags[idx]

		switch {
		case flag == "-o" || flag == "--o":
			if idx+1 >= len(flags) {
				return "", nil, ErrOutputFlag
			}

			idx++
			outDir = flags[idx]
		case strings.HasPrefix(flag, "-o=") || strings.HasPrefix(flag, "--o="):
			_, outDir, _ = strings.Cut(flag, "=")
		default:
			rest = append(rest, flag)
		}
	}

	if strings.TrimSpace(outDir) == "" && len(rest) != len(flags) {
		return "", nil, ErrOutputFlag
	}

	return outDir, rest, nil
}

// execName returns the executable name "go build" uses for the package in
// the given directory. A trailing major version element like "v2" is
// skipped in favor of its parent. The directory stands in for the import
// path here, so a module root whose directory name differs from its module
// path is named after the directory.
func execName(dir string) string {
	name := filepath.Base(dir)
	if !isMajorVersion(name) {
		return name
	}

	parent := filepath.Base(filepath.Dir(dir))
	if parent == "." || parent == string(filepath.Separator) {
		return name
	}

	return parent
}

// isMajorVersion reports whether elem is a major version suffix "vN" with
// N >= 2.
func isMajorVersion(elem string) bool {
	if len(elem) < 2 || elem[0] != 'v' || elem[1] == '0' {
		return false
	}

	for _, r := range elem[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return elem != "v1"
}

func absolute(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	if dir == "" {
		abs, err := filepath.Abs(path)
		if err == nil {
			return abs
		}
	}

	return filepath.Join(dir, path)
}
