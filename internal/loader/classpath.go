// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aibor/memgo/internal/pathmap"
	"github.com/aibor/memgo/internal/scheme"
)

// Entry is a classpath entry. URLs with a trailing slash are scan roots,
// others are cpio archives.
type Entry struct {
	URL *url.URL
}

// ParseEntry parses the given absolute URL into an [Entry].
func ParseEntry(rawURL string) (Entry, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Entry{}, fmt.Errorf("parse classpath entry: %w", err)
	}

	if !u.IsAbs() {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotAbsolute, rawURL)
	}

	return Entry{URL: u}, nil
}

// IsArchive returns true if the entry is an archive and not a scan root.
func (e Entry) IsArchive() bool {
	return !strings.HasSuffix(e.URL.Path, "/")
}

func (e Entry) String() string {
	if e.URL == nil {
		return ""
	}

	return e.URL.String()
}

// Classpath returns the classpath entries for the given host locations.
//
// For each location, a store backed scan root on the given authority is
// added. Those come first, so artifacts captured into the store shadow files
// of the same name on the host. Real entries follow in the same order.
// Relative locations are resolved against cwd. Existing regular files are
// archives, everything else is a scan root. Locations given as URLs, like
// "memgo://other/classes/w/", are used as they are and keep their position
// among the real entries.
func Classpath(mapper pathmap.Mapper, authority string, dirs []string, cwd string) ([]Entry, error) {
	virtual := make([]Entry, 0, len(dirs))
	host := make([]Entry, 0, len(dirs))

	for _, dir := range dirs {
		if strings.Contains(dir, "://") {
			entry, err := ParseEntry(dir)
			if err != nil {
				return nil, fmt.Errorf("classpath: %w", err)
			}

			host = append(host, entry)

			continue
		}

		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}

		dir = filepath.Clean(dir)

		vp, err := mapper.MapDir(dir)
		if err != nil {
			return nil, fmt.Errorf("classpath: %w", err)
		}

		virtual = append(virtual, Entry{URL: scheme.URL(authority, vp, true)})

		info, err := os.Stat(dir)
		isArchive := err == nil && info.Mode().IsRegular()

		host = append(host, Entry{URL: scheme.FileURL(dir, !isArchive)})
	}

	return append(virtual, host...), nil
}
