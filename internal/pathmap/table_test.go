// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pathmap_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/aibor/memgo/internal/pathmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Add(t *testing.T) {
	var table pathmap.Table

	require.NoError(t, table.Add("/classes/a", "/a"))
	require.NoError(t, table.Add("/classes/a", "/a"), "identical binding")

	err := table.Add("/classes/a", "/b")
	require.ErrorIs(t, err, pathmap.ErrConflict, "virtual rebinding")

	err = table.Add("/classes/b", "/a")
	require.ErrorIs(t, err, pathmap.ErrConflict, "host rebinding")

	_, exists := table.Host("/classes/b")
	assert.False(t, exists, "failed binding must not be visible")

	expected := []pathmap.Binding{{Virtual: "/classes/a", Host: "/a"}}
	assert.Equal(t, expected, table.Bindings())
	assert.Equal(t, 1, table.Len())
}

func TestTable_AddConcurrentHostConflict(t *testing.T) {
	var (
		table pathmap.Table
		wg    sync.WaitGroup
	)

	require.NoError(t, table.Add("/classes/bound", "/bound"))

	for idx := range 16 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			vp := pathmap.VirtualPath(fmt.Sprintf("/classes/other%02d", idx))
			err := table.Add(vp, "/bound")
			assert.ErrorIs(t, err, pathmap.ErrConflict)
		}()

		go func() {
			defer wg.Done()

			vp := pathmap.VirtualPath(fmt.Sprintf("/classes/other%02d", idx))
			_, exists := table.Host(vp)
			assert.False(t, exists, "rejected binding visible")
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, table.Len())
}

func TestTable_Bindings(t *testing.T) {
	var (
		table pathmap.Table
		wg    sync.WaitGroup
	)

	for idx := range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			name := fmt.Sprintf("%02d", idx)
			err := table.Add(pathmap.VirtualPath("/classes/"+name), pathmap.HostPath("/"+name))
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	bindings := table.Bindings()
	require.Len(t, bindings, 32)
	assert.Equal(t, 32, table.Len())

	for idx, binding := range bindings {
		name := fmt.Sprintf("%02d", idx)
		assert.Equal(t, pathmap.VirtualPath("/classes/"+name), binding.Virtual)
		assert.Equal(t, pathmap.HostPath("/"+name), binding.Host)
	}
}
