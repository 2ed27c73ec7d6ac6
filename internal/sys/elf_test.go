// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"debug/elf"
	"os"
	"testing"

	"github.com/aibor/memgo/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateELF(t *testing.T) {
	tests := []struct {
		name        string
		hdr         elf.FileHeader
		arch        sys.Arch
		expectedErr error
	}{
		{
			name: "amd64 executable",
			hdr: elf.FileHeader{
				OSABI:   elf.ELFOSABI_NONE,
				Machine: elf.EM_X86_64,
				Type:    elf.ET_EXEC,
				Entry:   0x401000,
			},
			arch: sys.AMD64,
		},
		{
			name: "arm64 pie linux",
			hdr: elf.FileHeader{
				OSABI:   elf.ELFOSABI_LINUX,
				Machine: elf.EM_AARCH64,
				Type:    elf.ET_DYN,
				Entry:   0x1000,
			},
			arch: sys.ARM64,
		},
		{
			name: "freebsd",
			hdr: elf.FileHeader{
				OSABI:   elf.ELFOSABI_FREEBSD,
				Machine: elf.EM_X86_64,
				Type:    elf.ET_EXEC,
				Entry:   0x1000,
			},
			arch:        sys.AMD64,
			expectedErr: sys.ErrOSABINotSupported,
		},
		{
			name: "wrong machine",
			hdr: elf.FileHeader{
				Machine: elf.EM_RISCV,
				Type:    elf.ET_EXEC,
				Entry:   0x1000,
			},
			arch:        sys.AMD64,
			expectedErr: sys.ErrMachineNotSupported,
		},
		{
			name: "unknown machine",
			hdr: elf.FileHeader{
				Machine: elf.EM_SPARC,
				Type:    elf.ET_EXEC,
				Entry:   0x1000,
			},
			arch:        sys.AMD64,
			expectedErr: sys.ErrMachineNotSupported,
		},
		{
			name: "relocatable",
			hdr: elf.FileHeader{
				Machine: elf.EM_X86_64,
				Type:    elf.ET_REL,
			},
			arch:        sys.AMD64,
			expectedErr: sys.ErrTypeNotSupported,
		},
		{
			name: "shared object without entry",
			hdr: elf.FileHeader{
				Machine: elf.EM_X86_64,
				Type:    elf.ET_DYN,
			},
			arch:        sys.AMD64,
			expectedErr: sys.ErrNoEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sys.ValidateELF(tt.hdr, tt.arch)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestInspect(t *testing.T) {
	machine := sys.NativeMachine(t)

	tests := []struct {
		name        string
		content     []byte
		expected    sys.Executable
		expectedErr error
	}{
		{
			name:     "script",
			content:  []byte("#!/bin/sh -e\necho hi\n"),
			expected: sys.Executable{Format: sys.FormatScript, Interpreter: "/bin/sh"},
		},
		{
			name:     "script without newline",
			content:  []byte("#! /usr/bin/env python3"),
			expected: sys.Executable{Format: sys.FormatScript, Interpreter: "/usr/bin/env"},
		},
		{
			name:        "script without interpreter",
			content:     []byte("#!\necho hi\n"),
			expectedErr: sys.ErrNoInterpreter,
		},
		{
			name:        "plain text",
			content:     []byte("hello"),
			expectedErr: sys.ErrNotExecutable,
		},
		{
			name:        "empty",
			content:     []byte{},
			expectedErr: sys.ErrNotExecutable,
		},
		{
			name:        "truncated ELF",
			content:     []byte(elf.ELFMAG + "\x02"),
			expectedErr: sys.ErrNotExecutable,
		},
		{
			name: "static ELF",
			content: sys.ELFHeader(t, elf.FileHeader{
				Machine: machine,
				Type:    elf.ET_EXEC,
				Entry:   0x401000,
			}),
			expected: sys.Executable{Format: sys.FormatELF},
		},
		{
			name: "ELF object file",
			content: sys.ELFHeader(t, elf.FileHeader{
				Machine: machine,
				Type:    elf.ET_REL,
			}),
			expectedErr: sys.ErrTypeNotSupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := sys.Inspect(tt.content, sys.Native)
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestInspect_Self(t *testing.T) {
	self, err := os.Executable()
	require.NoError(t, err)

	content, err := os.ReadFile(self)
	require.NoError(t, err)

	exe, err := sys.Inspect(content, sys.Native)
	if err != nil {
		t.Skipf("test binary not inspectable: %v", err)
	}

	assert.Equal(t, sys.FormatELF, exe.Format)
}

func TestArchOf(t *testing.T) {
	arch, err := sys.ArchOf(elf.EM_AARCH64)
	require.NoError(t, err)
	assert.Equal(t, sys.ARM64, arch)

	_, err = sys.ArchOf(elf.EM_MIPS)
	require.ErrorIs(t, err, sys.ErrMachineNotSupported)
}
