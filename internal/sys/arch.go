// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"debug/elf"
	"fmt"
	"runtime"
)

// Arch is a CPU architecture executables are built for.
type Arch string

// Architectures executables can be validated for.
const (
	AMD64   Arch = "amd64"
	ARM64   Arch = "arm64"
	RISCV64 Arch = "riscv64"
	I386    Arch = "386"
)

// Native is the architecture of the host.
const Native Arch = Arch(runtime.GOARCH)

var machines = map[elf.Machine]Arch{
	elf.EM_X86_64:  AMD64,
	elf.EM_AARCH64: ARM64,
	elf.EM_RISCV:   RISCV64,
	elf.EM_386:     I386,
}

func (a Arch) String() string {
	return string(a)
}

// IsNative returns true if the architecture is the one of the host.
func (a Arch) IsNative() bool {
	return Native == a
}

// ArchOf returns the [Arch] of the given ELF machine.
//
// It returns [ErrMachineNotSupported] for unknown machines.
func ArchOf(machine elf.Machine) (Arch, error) {
	arch, exists := machines[machine]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrMachineNotSupported, machine)
	}

	return arch, nil
}
