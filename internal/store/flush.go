// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const flushFileMode = 0o755

// Flush writes every artifact to its host path. Missing parent directories
// are created. Existing files are replaced, never merged.
//
// Artifacts are written in virtual path order. Flush stops at the first
// artifact that fails and returns a [FlushError] for it. Artifacts written
// before stay in place.
func (s *Store) Flush() error {
	for _, entry := range s.List() {
		err := s.flushEntry(entry)
		if err != nil {
			return &FlushError{
				Virtual: entry.Virtual,
				Host:    entry.Host,
				Err:     err,
			}
		}

		slog.Debug("Flushed artifact",
			slog.String("virtual", entry.Virtual.String()),
			slog.String("host", entry.Host.String()),
			slog.Int64("size", entry.Size))
	}

	return nil
}

func (s *Store) flushEntry(entry Entry) error {
	if entry.Host == "" {
		return ErrNotMapped
	}

	data, err := s.ReadFile(entry.Virtual)
	if err != nil {
		return err
	}

	return replaceFile(string(entry.Host), data)
}

// replaceFile writes the data to a temporary file next to the destination and
// renames it to the destination. So the destination either has its old or its
// new content, never a mix.
func replaceFile(dest string, data []byte) error {
	dir := filepath.Dir(dest)

	err := os.MkdirAll(dir, flushFileMode)
	if err != nil {
		return fmt.Errorf("create parent: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".memgo-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(flushFileMode)
	}

	err = errors.Join(err, tmp.Close())
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}

	err = os.Rename(tmp.Name(), dest)
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace: %w", err)
	}

	return nil
}
