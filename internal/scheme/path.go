// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scheme

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileURL returns the "file" URL for the given absolute host path. If dir is
// true, the URL gets a trailing slash.
func FileURL(hostPath string, dir bool) *url.URL {
	p := filepath.ToSlash(hostPath)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths.
		p = "/" + p
	}

	if dir && !strings.HasSuffix(p, "/") {
		p += "/"
	}

	return &url.URL{Scheme: "file", Path: p}
}

func fromSlash(p string) string {
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}

	return filepath.FromSlash(p)
}
