// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pathmap

import (
	"path"
	"strings"
)

// Root is the logical root every [VirtualPath] starts with.
const Root = "/classes"

// VirtualPath is the platform independent store key of an artifact.
type VirtualPath string

// HostPath is the absolute host path an artifact would have been written to.
type HostPath string

func (p VirtualPath) String() string { return string(p) }
func (p HostPath) String() string    { return string(p) }

// Mapper maps host locations to virtual paths.
//
// The zero value maps unix paths without artifact extension.
type Mapper struct {
	// Convention is the host path convention.
	Convention Convention
	// Extension is appended to the binary name to form the artifact file
	// name, e.g. ".exe".
	Extension string
}

// NewMapper creates a [Mapper] for the running host.
func NewMapper() Mapper {
	mapper := Mapper{Convention: Native()}
	if mapper.Convention == Windows {
		mapper.Extension = ".exe"
	}

	return mapper
}

// FileName returns the artifact file name for the given binary name. It is
// the trailing slash separated element of the binary name with
// [Mapper.Extension] appended.
//
// It returns [ErrEmptyName] if there is no trailing element.
func (m Mapper) FileName(binaryName string) (string, error) {
	name := binaryName[strings.LastIndexByte(binaryName, '/')+1:]
	if name == "" || name == "." || name == ".." {
		return "", ErrEmptyName
	}

	return name + m.Extension, nil
}

// Map returns the virtual and host path of the artifact for the given binary
// name that is emitted into the given host output directory.
//
// It returns a [PathError] if the binary name is empty or the directory has
// no root component.
func (m Mapper) Map(dir, binaryName string) (VirtualPath, HostPath, error) {
	name, err := m.FileName(binaryName)
	if err != nil {
		return "", "", &PathError{Op: "map", Path: binaryName, Err: err}
	}

	root, rest, ok := m.Convention.Split(dir)
	if !ok {
		return "", "", &PathError{Op: "map", Path: dir, Err: ErrNoRoot}
	}

	rest = path.Join(rest, name)

	return virtualPath(m.Convention, root, rest), HostPath(m.Convention.Join(root, rest)), nil
}

// MapDir returns the virtual path of the given host directory. It is used to
// derive store backed scan roots from host directories.
//
// It returns a [PathError] if the directory has no root component.
func (m Mapper) MapDir(dir string) (VirtualPath, error) {
	root, rest, ok := m.Convention.Split(dir)
	if !ok {
		return "", &PathError{Op: "map", Path: dir, Err: ErrNoRoot}
	}

	return virtualPath(m.Convention, root, rest), nil
}

// Reverse returns the host path for the given virtual path. It is the inverse
// of [Mapper.Map] and [Mapper.MapDir].
//
// It returns a [PathError] if the path is not below [Root] or, for the
// [Windows] convention, has no drive element.
func (m Mapper) Reverse(vp VirtualPath) (HostPath, error) {
	rest, ok := strings.CutPrefix(string(vp), Root)
	if !ok || (rest != "" && rest[0] != '/') {
		return "", &PathError{Op: "reverse", Path: string(vp), Err: ErrNotVirtual}
	}

	rest = cleanRemainder(rest)

	if m.Convention != Windows {
		return HostPath(m.Convention.Join("/", rest)), nil
	}

	drive, rest, _ := strings.Cut(rest, "/")
	if len(drive) != 1 || !isDriveLetter(drive[0]) {
		return "", &PathError{Op: "reverse", Path: string(vp), Err: ErrNoRoot}
	}

	return HostPath(m.Convention.Join(drive, rest)), nil
}

func virtualPath(c Convention, root, rest string) VirtualPath {
	if c == Windows {
		rest = path.Join(root, rest)
	}

	if rest == "" {
		return Root
	}

	return VirtualPath(Root + "/" + rest)
}
