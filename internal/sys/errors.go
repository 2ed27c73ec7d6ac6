// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "errors"

var (
	// ErrNotExecutable is returned if content is neither an ELF file nor a
	// script with an interpreter line.
	ErrNotExecutable = errors.New("not an executable")

	// ErrNoInterpreter is returned if a script has an empty interpreter
	// line.
	ErrNoInterpreter = errors.New("no interpreter in script")

	// ErrOSABINotSupported is returned if the OS ABI of an ELF file is not
	// supported.
	ErrOSABINotSupported = errors.New("OSABI not supported")

	// ErrMachineNotSupported is returned if the machine type of an ELF file
	// is not supported.
	ErrMachineNotSupported = errors.New("machine type not supported")

	// ErrTypeNotSupported is returned if an ELF file is neither an
	// executable nor a position independent executable.
	ErrTypeNotSupported = errors.New("ELF type not supported")

	// ErrNoEntry is returned if an ELF file has no entry address.
	ErrNoEntry = errors.New("no entry address")
)
