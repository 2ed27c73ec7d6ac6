// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package archive converts between artifact stores and newc cpio archives.
//
// Archive entry names are the virtual paths relative to [pathmap.Root], so
// "/classes/w/bin/hello" is archived as "w/bin/hello".
package archive

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aibor/memgo/internal/pathmap"
	"github.com/aibor/memgo/internal/store"
	"github.com/cavaliergopher/cpio"
)

const (
	numLinks     = 2
	artifactMode = cpio.FileMode(0o755)
	typeMask     = cpio.FileMode(0o170000)
)

// ErrNotFound is returned if an archive has no regular file with the
// requested name.
var ErrNotFound = errors.New("not in archive")

// Writer writes artifacts into a cpio archive. Parent directories are added
// once before their first artifact.
type Writer struct {
	cpioWriter *cpio.Writer
	dirs       map[string]bool
}

// NewWriter creates a new archive writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		cpioWriter: cpio.NewWriter(w),
		dirs:       make(map[string]bool),
	}
}

// Close writes the archive trailer. It does not close the underlying writer.
func (w *Writer) Close() error {
	err := w.cpioWriter.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return nil
}

func (w *Writer) writeHeader(hdr *cpio.Header) error {
	if err := w.cpioWriter.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}

	return nil
}

func (w *Writer) writeDirectory(name string) error {
	if name == "." || w.dirs[name] {
		return nil
	}

	if err := w.writeDirectory(path.Dir(name)); err != nil {
		return err
	}

	header := &cpio.Header{
		Name:  name,
		Mode:  cpio.TypeDir | cpio.ModePerm,
		Links: numLinks,
	}

	if err := w.writeHeader(header); err != nil {
		return err
	}

	w.dirs[name] = true

	return nil
}

// WriteArtifact adds the given content as executable regular file for the
// given virtual path.
func (w *Writer) WriteArtifact(vp pathmap.VirtualPath, content []byte) error {
	name, err := Name(vp)
	if err != nil {
		return err
	}

	if err := w.writeDirectory(path.Dir(name)); err != nil {
		return err
	}

	header := &cpio.Header{
		Name:  name,
		Mode:  cpio.TypeReg | artifactMode,
		Size:  int64(len(content)),
		Links: 1,
	}

	if err := w.writeHeader(header); err != nil {
		return err
	}

	if _, err := w.cpioWriter.Write(content); err != nil {
		return fmt.Errorf("write body for %s: %w", name, err)
	}

	return nil
}

// Name returns the archive entry name for the given virtual path.
func Name(vp pathmap.VirtualPath) (string, error) {
	rest, ok := strings.CutPrefix(path.Clean(string(vp)), pathmap.Root+"/")
	if !ok {
		return "", &pathmap.PathError{Op: "archive", Path: string(vp), Err: pathmap.ErrNotVirtual}
	}

	return rest, nil
}

// Export writes all complete artifacts of the given store into a cpio
// archive written to w. It returns the number of artifacts written.
func Export(w io.Writer, artifacts *store.Store) (int, error) {
	writer := NewWriter(w)

	var count int

	for _, entry := range artifacts.List() {
		content, err := artifacts.ReadFile(entry.Virtual)
		if err != nil {
			return count, fmt.Errorf("export: %w", err)
		}

		if err := writer.WriteArtifact(entry.Virtual, content); err != nil {
			return count, fmt.Errorf("export: %w", err)
		}

		count++
	}

	return count, writer.Close()
}

// ReadFile returns the content of the regular file with the given name from
// the cpio archive read from r. The name is slash separated and relative to
// the archive root.
//
// It returns [ErrNotFound] if there is no such regular file.
func ReadFile(r io.Reader, name string) ([]byte, error) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	reader := cpio.NewReader(r)

	for {
		hdr, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		} else if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}

		if hdr.Mode&typeMask != cpio.TypeReg || entryName(hdr.Name) != name {
			continue
		}

		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		return content, nil
	}
}

func entryName(name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}
