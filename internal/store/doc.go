// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides the in-memory artifact store. Artifacts are keyed
// by [pathmap.VirtualPath] and written exactly once. The store is partitioned
// by key hash, so writers and readers of distinct keys do not contend on a
// single lock.
//
// The host location of each artifact is looked up in the [pathmap.Table] the
// store is created with. [Store.Flush] uses it to replicate the store into
// the real file tree.
package store
