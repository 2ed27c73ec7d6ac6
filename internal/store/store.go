// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"bytes"
	"cmp"
	"encoding/hex"
	"io"
	"slices"
	"sync"

	"github.com/aibor/memgo/internal/pathmap"
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// partitionN is the number of store partitions. Keys are spread across them
// by hash.
const partitionN = 16

// Digest is the BLAKE3-256 digest of an artifact's uncompressed content.
type Digest [32]byte

// String returns the hex encoded digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Entry describes a complete artifact.
type Entry struct {
	Virtual pathmap.VirtualPath
	// Host is empty if the virtual path has no binding in the table.
	Host   pathmap.HostPath
	Size   int64
	Digest Digest
}

type artifact struct {
	data      []byte
	size      int64
	digest    Digest
	committed bool
}

type partition struct {
	mu        sync.RWMutex
	artifacts map[pathmap.VirtualPath]*artifact
}

// Option configures a [Store].
type Option func(*Store)

// WithCodec sets the [Codec] artifacts are kept in.
func WithCodec(codec Codec) Option {
	return func(s *Store) {
		s.codec = codec
	}
}

// Store is the in-memory artifact store. It is safe for concurrent use.
//
// Create a new instance with [New].
type Store struct {
	table      *pathmap.Table
	codec      Codec
	partitions [partitionN]partition
}

// New creates a new empty [Store] that resolves host paths using the given
// table.
func New(table *pathmap.Table, opts ...Option) *Store {
	store := &Store{table: table}

	for idx := range store.partitions {
		store.partitions[idx].artifacts = make(map[pathmap.VirtualPath]*artifact)
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Table returns the [pathmap.Table] of the store.
func (s *Store) Table() *pathmap.Table {
	return s.table
}

// Codec returns the [Codec] artifacts are kept in.
func (s *Store) Codec() Codec {
	return s.codec
}

func (s *Store) partition(key pathmap.VirtualPath) *partition {
	return &s.partitions[xxhash.Sum64String(string(key))%partitionN]
}

// CreateForWrite creates a new artifact with the given key and returns its
// writer. The content becomes visible once the writer is closed.
//
// It returns [ErrAlreadyExists] if the key has been created before and not
// been removed since.
func (s *Store) CreateForWrite(key pathmap.VirtualPath) (io.WriteCloser, error) {
	part := s.partition(key)

	part.mu.Lock()
	defer part.mu.Unlock()

	if _, exists := part.artifacts[key]; exists {
		return nil, &Error{Op: "create", Path: key, Err: ErrAlreadyExists}
	}

	art := &artifact{}
	part.artifacts[key] = art

	return &writer{store: s, key: key, artifact: art}, nil
}

// OpenForRead returns a reader for the artifact with the given key.
//
// It returns [ErrNotFound] if there is no artifact with the given key or if
// its writer has not been closed yet.
func (s *Store) OpenForRead(key pathmap.VirtualPath) (io.ReadCloser, error) {
	data, err := s.ReadFile(key)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// ReadFile returns the content of the artifact with the given key. The
// returned slice must not be modified.
//
// It returns [ErrNotFound] like [Store.OpenForRead] does.
func (s *Store) ReadFile(key pathmap.VirtualPath) ([]byte, error) {
	art, err := s.lookup(key)
	if err != nil {
		return nil, &Error{Op: "open", Path: key, Err: err}
	}

	data, err := s.codec.decode(art.data, art.size)
	if err != nil {
		return nil, &Error{Op: "open", Path: key, Err: err}
	}

	return data, nil
}

// Stat returns the [Entry] for the artifact with the given key.
//
// It returns [ErrNotFound] like [Store.OpenForRead] does.
func (s *Store) Stat(key pathmap.VirtualPath) (Entry, error) {
	art, err := s.lookup(key)
	if err != nil {
		return Entry{}, &Error{Op: "stat", Path: key, Err: err}
	}

	return s.entry(key, art), nil
}

// Remove removes the artifact with the given key, so the key can be created
// again.
//
// It returns [ErrNotFound] if the key does not exist.
func (s *Store) Remove(key pathmap.VirtualPath) error {
	part := s.partition(key)

	part.mu.Lock()
	defer part.mu.Unlock()

	if _, exists := part.artifacts[key]; !exists {
		return &Error{Op: "remove", Path: key, Err: ErrNotFound}
	}

	delete(part.artifacts, key)

	return nil
}

// List returns all complete artifacts sorted by virtual path.
func (s *Store) List() []Entry {
	var entries []Entry

	for idx := range s.partitions {
		part := &s.partitions[idx]

		part.mu.RLock()

		for key, art := range part.artifacts {
			if art.committed {
				entries = append(entries, s.entry(key, art))
			}
		}

		part.mu.RUnlock()
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Virtual, b.Virtual)
	})

	return entries
}

// Len returns the number of complete artifacts.
func (s *Store) Len() int {
	var count int

	for idx := range s.partitions {
		part := &s.partitions[idx]

		part.mu.RLock()

		for _, art := range part.artifacts {
			if art.committed {
				count++
			}
		}

		part.mu.RUnlock()
	}

	return count
}

func (s *Store) lookup(key pathmap.VirtualPath) (*artifact, error) {
	part := s.partition(key)

	part.mu.RLock()
	defer part.mu.RUnlock()

	art, exists := part.artifacts[key]
	if !exists || !art.committed {
		return nil, ErrNotFound
	}

	return art, nil
}

func (s *Store) entry(key pathmap.VirtualPath, art *artifact) Entry {
	host, _ := s.table.Host(key)

	return Entry{
		Virtual: key,
		Host:    host,
		Size:    art.size,
		Digest:  art.digest,
	}
}

func (s *Store) commit(key pathmap.VirtualPath, art *artifact, content []byte) error {
	data, err := s.codec.encode(content)
	if err != nil {
		return err
	}

	digest := Digest(blake3.Sum256(content))

	part := s.partition(key)

	part.mu.Lock()
	defer part.mu.Unlock()

	// The key might have been removed, and maybe even created again, while
	// the writer was open.
	if part.artifacts[key] != art {
		return ErrNotFound
	}

	art.data = data
	art.size = int64(len(content))
	art.digest = digest
	art.committed = true

	return nil
}

type writer struct {
	store    *Store
	key      pathmap.VirtualPath
	artifact *artifact
	buf      bytes.Buffer
	closed   bool
}

// Write implements [io.Writer].
func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, &Error{Op: "write", Path: w.key, Err: ErrClosed}
	}

	return w.buf.Write(p) //nolint:wrapcheck
}

// Close implements [io.Closer]. It commits the written content.
func (w *writer) Close() error {
	if w.closed {
		return &Error{Op: "close", Path: w.key, Err: ErrClosed}
	}

	w.closed = true

	err := w.store.commit(w.key, w.artifact, w.buf.Bytes())
	if err != nil {
		return &Error{Op: "close", Path: w.key, Err: err}
	}

	return nil
}
