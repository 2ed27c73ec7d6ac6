// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

// ELFHeader returns a minimal little endian 64 bit ELF file consisting of the
// file header only.
func ELFHeader(tb testing.TB, hdr elf.FileHeader) []byte {
	tb.Helper()

	raw := elf.Header64{
		Type:      uint16(hdr.Type),
		Machine:   uint16(hdr.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     hdr.Entry,
		Ehsize:    64,
		Phentsize: 56,
		Shentsize: 64,
	}

	copy(raw.Ident[:], elf.ELFMAG)
	raw.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	raw.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	raw.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	raw.Ident[elf.EI_OSABI] = byte(hdr.OSABI)

	var buf bytes.Buffer

	err := binary.Write(&buf, binary.LittleEndian, raw)
	if err != nil {
		tb.Fatalf("encode ELF header: %v", err)
	}

	return buf.Bytes()
}

// NativeMachine returns the ELF machine of the host.
func NativeMachine(tb testing.TB) elf.Machine {
	tb.Helper()

	for machine, arch := range machines {
		if arch.IsNative() {
			return machine
		}
	}

	tb.Skipf("architecture %s not supported", Native)

	return elf.EM_NONE
}
