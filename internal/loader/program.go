// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"io"
	"path"

	"github.com/aibor/memgo/internal/sys"
)

// Stdio are the standard streams of a program. Nil streams are connected to
// the null device.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Program is a loaded program ready to be invoked.
type Program struct {
	Name       string
	Source     Entry
	Executable sys.Executable

	content []byte
	env     []string
}

// Size returns the size of the program content.
func (p *Program) Size() int {
	return len(p.content)
}

// argv0 is the name the program sees itself invoked with.
func (p *Program) argv0() string {
	return path.Base(p.Name)
}
