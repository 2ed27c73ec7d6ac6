// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheme resolves "memgo" URLs to artifacts of mounted stores.
//
// The scheme is registered process wide on [http.DefaultTransport] by
// [Install], so any consumer using [http.DefaultClient] can fetch artifacts.
// [Open] resolves "memgo" and "file" URLs directly.
package scheme

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"sync"

	"github.com/aibor/memgo/internal/pathmap"
	"github.com/aibor/memgo/internal/store"
)

const (
	// Scheme is the URL scheme of store backed URLs.
	Scheme = "memgo"
	// DefaultAuthority is the authority the session store is mounted at.
	DefaultAuthority = "root"
)

var (
	// ErrNotFound is returned if a URL can not be resolved to an artifact or
	// file.
	ErrNotFound = errors.New("not found")

	// ErrAuthorityInUse is returned if an authority is mounted already.
	ErrAuthorityInUse = errors.New("authority in use")

	// ErrUnsupportedScheme is returned for URLs that are neither "memgo" nor
	// "file" URLs.
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// Opener provides the content of artifacts. [store.Store] is an Opener.
type Opener interface {
	OpenForRead(key pathmap.VirtualPath) (io.ReadCloser, error)
}

var _ Opener = (*store.Store)(nil)

var mounts = struct {
	sync.RWMutex
	openers map[string]Opener
}{
	openers: make(map[string]Opener),
}

// Mount routes URLs with the given authority to the given [Opener]. The
// returned function removes the mount again. It is safe to call more than
// once.
//
// It returns [ErrAuthorityInUse] if the authority is mounted already.
func Mount(authority string, opener Opener) (func(), error) {
	mounts.Lock()
	defer mounts.Unlock()

	if _, exists := mounts.openers[authority]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAuthorityInUse, authority)
	}

	mounts.openers[authority] = opener

	slog.Debug("Mount store", slog.String("authority", authority))

	var once sync.Once

	unmount := func() {
		once.Do(func() {
			mounts.Lock()
			delete(mounts.openers, authority)
			mounts.Unlock()

			slog.Debug("Unmount store", slog.String("authority", authority))
		})
	}

	return unmount, nil
}

// URL returns the URL of the given virtual path on the given authority. If
// dir is true, the URL gets a trailing slash, so it can be used as scan root.
func URL(authority string, vp pathmap.VirtualPath, dir bool) *url.URL {
	u := &url.URL{
		Scheme: Scheme,
		Host:   authority,
		Path:   string(vp),
	}

	if dir && !isDir(u) {
		u.Path += "/"
	}

	return u
}

// Open returns the content the given URL refers to. "memgo" URLs are resolved
// through the mounted stores and "file" URLs through the file system.
//
// It returns [ErrNotFound] if there is no such artifact or regular file.
func Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	switch u.Scheme {
	case Scheme:
		return openArtifact(u)
	case "file":
		return openFile(u)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

func openArtifact(u *url.URL) (io.ReadCloser, error) {
	mounts.RLock()
	opener, exists := mounts.openers[u.Host]
	mounts.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s: authority not mounted", ErrNotFound, u)
	}

	if isDir(u) {
		return nil, fmt.Errorf("%w: %s: is a directory", ErrNotFound, u)
	}

	reader, err := opener.OpenForRead(pathmap.VirtualPath(path.Clean(u.Path)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	} else if err != nil {
		return nil, fmt.Errorf("open %s: %w", u, err)
	}

	return reader, nil
}

func openFile(u *url.URL) (io.ReadCloser, error) {
	if u.Host != "" && u.Host != "localhost" {
		return nil, fmt.Errorf("%w: %s: remote file host", ErrUnsupportedScheme, u)
	}

	name := fromSlash(u.Path)

	file, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	} else if err != nil {
		return nil, fmt.Errorf("open %s: %w", u, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat %s: %w", u, err)
	}

	if !info.Mode().IsRegular() {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s: not a regular file", ErrNotFound, u)
	}

	return file, nil
}

func isDir(u *url.URL) bool {
	return u.Path == "" || u.Path[len(u.Path)-1] == '/'
}
