// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aibor/memgo/internal/driver"
	"github.com/aibor/memgo/internal/loader"
	"github.com/aibor/memgo/internal/scheme"
	"github.com/aibor/memgo/internal/toolchain"
)

// Exit codes of [Run]. If a program ran and failed, its exit code is used.
const (
	exitOK        = 0
	exitFailure   = 1
	exitMalformed = 2
)

const usageMessage = `Usage: memgo [memgo options] [go build flags] sources...

Compiles the given go files or package directories with "go build". The
executables are captured in memory instead of being written to disk.

memgo options:
  -memgo-help                  show this help and exit
  -memgo-out                   write captured executables to their output paths
  -memgo-run:<name>[:<arg>...] run the captured executable <name> with the
                               given arguments
  -memgo-classpath:<dirs>      directories and cpio archives <name> is searched
                               in, separated by the OS path list separator
                               (default: $MEMGO_CLASSPATH or working directory)
  -memgo-archive:<file>        write captured executables into a cpio archive
  -memgo-compress:<codec>      keep executables compressed in memory: none,
                               lz4, zstd (default: none)
  -memgo-debug                 enable debug output

Sources are arguments ending with ".go" and existing directories given with
"./", "../" or "/" prefix. All other arguments are passed to "go build".

@<file> is replaced by the lines of <file>.

Options may also be given via environment variable MEMGO_ARGS and via file
./.memgo-args with one argument per line.
`

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func usage(w io.Writer) {
	fmt.Fprint(w, usageMessage)
}

func newConfig(parsed *args, cwd string, tc toolchain.Toolchain, cfg IO) driver.Config {
	classpath := parsed.classpath
	if len(classpath) == 0 {
		classpath = EnvClasspath()
	}

	return driver.Config{
		Toolchain: tc,
		Request: toolchain.Request{
			Flags:   parsed.buildFlags,
			Sources: parsed.sources,
			Dir:     cwd,
		},
		Output:    parsed.out,
		Run:       parsed.run,
		Classpath: classpath,
		Archive:   parsed.archive,
		Codec:     parsed.codec,
		Stdio: loader.Stdio{
			In:  cfg.Stdin,
			Out: cfg.Stdout,
			Err: cfg.Stderr,
		},
		Diagnostics: cfg.Stderr,
	}
}

func run(ctx context.Context, cmdline []string, tc toolchain.Toolchain, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	parsed, err := defaultParser.parse(cmdline)
	if err != nil {
		return handleParseArgsError(err, cfg)
	}

	setupLogging(cfg.Stderr, parsed.debug)

	if parsed.help {
		usage(cfg.Stdout)
		return exitOK
	}

	if len(parsed.sources) == 0 {
		fmt.Fprintln(cfg.Stderr, ErrNoSources.Error())
		usage(cfg.Stderr)

		return exitMalformed
	}

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("Failed to get working directory", slog.Any("error", err))
		return exitFailure
	}

	session, err := driver.NewSession(newConfig(parsed, cwd, tc, cfg))
	if err != nil {
		slog.Error(err.Error())
		return exitFailure
	}
	defer session.Close()

	err = session.Execute(ctx)
	if err != nil {
		return handleRunError(err)
	}

	return exitOK
}

func handleParseArgsError(err error, cfg IO) int {
	var malformedErr *MalformedOptionError
	if errors.As(err, &malformedErr) {
		fmt.Fprintln(cfg.Stderr, err.Error())
		usage(cfg.Stderr)

		return exitMalformed
	}

	slog.Error(err.Error())

	return exitFailure
}

func handleRunError(err error) int {
	slog.Error(err.Error())

	var invErr *loader.InvocationError
	if errors.As(err, &invErr) && invErr.ExitCode > 0 {
		return invErr.ExitCode
	}

	return exitFailure
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	scheme.Install()
	setupLogging(cfg.Stderr, false)

	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		slog.Error(err.Error())
		return exitFailure
	}

	return run(ctx, args, &toolchain.Go{}, cfg)
}
