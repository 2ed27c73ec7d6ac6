// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pathmap

import (
	"cmp"
	"slices"
	"sync"
)

// Binding is a single [Table] entry.
type Binding struct {
	Virtual VirtualPath
	Host    HostPath
}

// Table records the 1:1 relation of virtual and host paths. Entries can only
// be added. It is safe for concurrent use.
type Table struct {
	mu        sync.RWMutex
	byVirtual map[VirtualPath]HostPath
	byHost    map[HostPath]VirtualPath
}

// Add binds the given virtual path to the given host path.
//
// Adding an identical binding again is a no-op. It returns a [PathError]
// wrapping [ErrConflict] if either path is already bound to another partner.
// A failed binding is never visible.
func (t *Table) Add(vp VirtualPath, hp HostPath) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if bound, exists := t.byVirtual[vp]; exists {
		if bound != hp {
			return &PathError{Op: "bind", Path: string(vp), Err: ErrConflict}
		}

		return nil
	}

	if bound, exists := t.byHost[hp]; exists && bound != vp {
		return &PathError{Op: "bind", Path: string(hp), Err: ErrConflict}
	}

	if t.byVirtual == nil {
		t.byVirtual = make(map[VirtualPath]HostPath)
		t.byHost = make(map[HostPath]VirtualPath)
	}

	t.byVirtual[vp] = hp
	t.byHost[hp] = vp

	return nil
}

// Host returns the host path bound to the given virtual path.
func (t *Table) Host(vp VirtualPath) (HostPath, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	hp, exists := t.byVirtual[vp]

	return hp, exists
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.byVirtual)
}

// Bindings returns all bindings sorted by virtual path.
func (t *Table) Bindings() []Binding {
	t.mu.RLock()

	bindings := make([]Binding, 0, len(t.byVirtual))
	for vp, hp := range t.byVirtual {
		bindings = append(bindings, Binding{Virtual: vp, Host: hp})
	}

	t.mu.RUnlock()

	slices.SortFunc(bindings, func(a, b Binding) int {
		return cmp.Compare(a.Virtual, b.Virtual)
	})

	return bindings
}
