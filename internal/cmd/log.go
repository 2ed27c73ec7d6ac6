// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"io"
	"log/slog"
)

// setupLogging sets the default logger. Only warnings and errors are logged
// unless debug is enabled. Debug output carries timestamps and sources.
func setupLogging(writer io.Writer, debug bool) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelWarn,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 && attr.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return attr
		},
	}

	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
		opts.ReplaceAttr = nil
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(writer, opts)))
}
