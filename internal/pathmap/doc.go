// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pathmap translates between host paths, the real absolute locations
// artifacts would occupy, and virtual paths, the platform independent keys
// used by the in-memory artifact store.
//
// A virtual path always starts with [Root] followed by the host path with its
// root component stripped. Host path conventions ([Unix] and [Windows]) are
// handled exclusively in this package, so every other package can treat
// virtual paths as plain slash separated strings.
//
// [Table] records which virtual path was created for which host path. It is
// append-only and safe for concurrent use.
package pathmap
