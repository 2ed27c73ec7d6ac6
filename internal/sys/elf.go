// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sys inspects executable content.
package sys

import (
	"bufio"
	"bytes"
	"debug/elf"
	"fmt"
	"strings"
)

// Format is the kind of an executable.
type Format int

const (
	// FormatELF is an ELF executable.
	FormatELF Format = iota + 1
	// FormatScript is a script starting with a "#!" interpreter line.
	FormatScript
)

func (f Format) String() string {
	switch f {
	case FormatELF:
		return "elf"
	case FormatScript:
		return "script"
	default:
		return "unknown"
	}
}

// Executable describes validated executable content.
type Executable struct {
	Format Format
	// Interpreter is the program interpreter. It is the dynamic linker for
	// dynamically linked ELF files, the interpreter line for scripts and
	// empty for statically linked ELF files.
	Interpreter string
}

// Inspect validates that the given content can be executed on a host of the
// given architecture.
//
// It returns [ErrNotExecutable] if the content is neither ELF nor script. ELF
// files are validated with [ValidateELF].
func Inspect(content []byte, arch Arch) (Executable, error) {
	if bytes.HasPrefix(content, []byte("#!")) {
		return inspectScript(content)
	}

	if !bytes.HasPrefix(content, []byte(elf.ELFMAG)) {
		return Executable{}, ErrNotExecutable
	}

	file, err := elf.NewFile(bytes.NewReader(content))
	if err != nil {
		return Executable{}, fmt.Errorf("%w: %w", ErrNotExecutable, err)
	}
	defer file.Close()

	err = ValidateELF(file.FileHeader, arch)
	if err != nil {
		return Executable{}, err
	}

	exe := Executable{Format: FormatELF}

	for _, prog := range file.Progs {
		if prog.Type != elf.PT_INTERP {
			continue
		}

		interp := make([]byte, prog.Filesz)

		_, err := prog.ReadAt(interp, 0)
		if err != nil {
			return Executable{}, fmt.Errorf("read interpreter: %w", err)
		}

		exe.Interpreter = string(bytes.TrimRight(interp, "\x00"))
	}

	return exe, nil
}

// ValidateELF validates that ELF attributes match the requested architecture
// and that the file can be started.
func ValidateELF(hdr elf.FileHeader, arch Arch) error {
	switch hdr.OSABI {
	case elf.ELFOSABI_NONE, elf.ELFOSABI_LINUX:
		// supported, pass
	default:
		return fmt.Errorf("%w: %s", ErrOSABINotSupported, hdr.OSABI)
	}

	fileArch, err := ArchOf(hdr.Machine)
	if err != nil {
		return err
	}

	if fileArch != arch {
		return fmt.Errorf(
			"%w: %s on %s",
			ErrMachineNotSupported,
			hdr.Machine,
			arch,
		)
	}

	switch hdr.Type {
	case elf.ET_EXEC, elf.ET_DYN:
		// supported, pass
	default:
		return fmt.Errorf("%w: %s", ErrTypeNotSupported, hdr.Type)
	}

	if hdr.Entry == 0 {
		return ErrNoEntry
	}

	return nil
}

func inspectScript(content []byte) (Executable, error) {
	line, _, err := bufio.NewReader(bytes.NewReader(content[2:])).ReadLine()
	if err != nil && len(line) == 0 {
		return Executable{}, ErrNoInterpreter
	}

	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return Executable{}, ErrNoInterpreter
	}

	return Executable{Format: FormatScript, Interpreter: fields[0]}, nil
}
