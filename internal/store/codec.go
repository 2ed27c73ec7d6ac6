// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is the encoding artifacts are kept in while they are in the store.
type Codec int

const (
	// CodecNone keeps artifacts as they are.
	CodecNone Codec = iota
	// CodecLZ4 keeps artifacts as LZ4 frames. Fast, moderate ratio.
	CodecLZ4
	// CodecZstd keeps artifacts zstd compressed. Slower, better ratio.
	CodecZstd
)

var codecNames = map[Codec]string{
	CodecNone: "none",
	CodecLZ4:  "lz4",
	CodecZstd: "zstd",
}

// String implements [fmt.Stringer].
func (c Codec) String() string {
	name, exists := codecNames[c]
	if !exists {
		return fmt.Sprintf("unknown(%d)", int(c))
	}

	return name
}

// MarshalText implements [encoding.TextMarshaler].
func (c Codec) MarshalText() ([]byte, error) {
	if _, exists := codecNames[c]; !exists {
		return nil, fmt.Errorf("%w: %d", ErrCodecInvalid, int(c))
	}

	return []byte(c.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *Codec) UnmarshalText(text []byte) error {
	for codec, name := range codecNames {
		if name == string(text) {
			*c = codec
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrCodecInvalid, text)
}

func (c Codec) encode(data []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return data, nil
	case CodecLZ4:
		var buf bytes.Buffer

		writer := lz4.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 write: %w", err)
		}

		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 close: %w", err)
		}

		return buf.Bytes(), nil
	case CodecZstd:
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithZeroFrames(true),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		defer encoder.Close()

		return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrCodecInvalid, int(c))
	}
}

func (c Codec) decode(data []byte, size int64) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	switch c {
	case CodecNone:
		return data, nil
	case CodecLZ4:
		buf := bytes.NewBuffer(make([]byte, 0, size))

		_, err := io.Copy(buf, lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 read: %w", err)
		}

		return buf.Bytes(), nil
	case CodecZstd:
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer decoder.Close()

		decoded, err := decoder.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}

		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrCodecInvalid, int(c))
	}
}
