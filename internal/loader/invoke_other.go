// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux

package loader

import "context"

// Invoke returns [ErrUnsupportedPlatform] as programs can be executed from
// memory on linux only.
func (p *Program) Invoke(_ context.Context, _ []string, _ Stdio) error {
	return &InvocationError{Name: p.Name, ExitCode: -1, Err: ErrUnsupportedPlatform}
}
