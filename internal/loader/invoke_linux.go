// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// execPath is the path the program is executed from in the child process.
// The memory file is passed as first extra file, which is fd 3.
const execPath = "/proc/self/fd/3"

// Invoke executes the program with the given arguments. The content is
// written into an anonymous memory file that is executed directly, so
// nothing is written to the file system.
//
// It returns an [InvocationError] if the program can not be started or does
// not exit with 0.
func (p *Program) Invoke(ctx context.Context, args []string, stdio Stdio) error {
	file, err := memoryFile(p.argv0(), p.content)
	if err != nil {
		return &InvocationError{Name: p.Name, ExitCode: -1, Err: err}
	}
	defer file.Close()

	cmd := exec.CommandContext(ctx, execPath, args...)
	cmd.Args[0] = p.argv0()
	cmd.Env = p.env
	cmd.ExtraFiles = []*os.File{file}
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	slog.Debug("Invoke program",
		slog.String("name", p.Name),
		slog.Any("args", args))

	err = cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return &InvocationError{Name: p.Name, ExitCode: -1, Err: err}
	}

	exitCode := exitErr.ExitCode()

	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		exitCode = 128 + int(status.Signal())
	}

	return &InvocationError{Name: p.Name, ExitCode: exitCode, Err: err}
}

// memoryFile returns a read only file descriptor of an anonymous memory file
// with the given content.
func memoryFile(name string, content []byte) (*os.File, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}

	rwFile := os.NewFile(uintptr(fd), "memfd:"+name)
	defer rwFile.Close()

	_, err = rwFile.Write(content)
	if err != nil {
		return nil, fmt.Errorf("write memory file: %w", err)
	}

	// Files open for writing can not be executed (ETXTBSY).
	roFile, err := os.Open(fmt.Sprintf("/proc/self/fd/%d", fd))
	if err != nil {
		return nil, fmt.Errorf("reopen memory file: %w", err)
	}

	return roFile, nil
}
