// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pathmap

import (
	"path"
	"path/filepath"
	"strings"
)

// Convention is a host path convention.
type Convention int

const (
	// Unix paths have a single root "/". It is stripped by prefix length.
	Unix Convention = iota
	// Windows paths have drive letter roots like "C:\". The drive marker is
	// dropped and separators are translated.
	Windows
)

// Native returns the [Convention] of the running host.
func Native() Convention {
	if filepath.Separator == '\\' {
		return Windows
	}

	return Unix
}

func (c Convention) String() string {
	switch c {
	case Unix:
		return "unix"
	case Windows:
		return "windows"
	default:
		return "unknown"
	}
}

// Split splits the given host path into its root component and the cleaned,
// slash separated remainder. ok is false if there is no root component.
//
// For [Unix] the root is "/", for [Windows] it is the upper case drive
// letter. UNC paths are not supported.
func (c Convention) Split(hostPath string) (string, string, bool) {
	switch c {
	case Unix:
		if !strings.HasPrefix(hostPath, "/") {
			return "", "", false
		}

		return "/", cleanRemainder(hostPath), true
	case Windows:
		if len(hostPath) < 3 || !isDriveLetter(hostPath[0]) ||
			hostPath[1] != ':' || !isWindowsSeparator(hostPath[2]) {
			return "", "", false
		}

		drive := strings.ToUpper(hostPath[:1])
		rest := strings.ReplaceAll(hostPath[3:], `\`, "/")

		return drive, cleanRemainder(rest), true
	default:
		return "", "", false
	}
}

// Join is the inverse of [Convention.Split].
func (c Convention) Join(root, rest string) string {
	rest = cleanRemainder(rest)

	switch c {
	case Windows:
		return root + `:\` + strings.ReplaceAll(rest, "/", `\`)
	default:
		return "/" + rest
	}
}

// cleanRemainder cleans a slash separated path and strips any leading
// separator. The root itself results in an empty string.
func cleanRemainder(p string) string {
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func isDriveLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isWindowsSeparator(b byte) bool {
	return b == '\\' || b == '/'
}
