package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/testutil"
)

func TestPushCapsAtTen(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestKV(t)
	h, err := Load(ctx, store)
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		require.NoError(t, h.Push(ctx, fmt.Sprintf("/admin/%d", i)))
	}

	entries := h.Entries()
	assert.Len(t, entries, MaxEntries)
	assert.Equal(t, "/admin/5", entries[0])
	assert.Equal(t, "/admin/14", entries[9])

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, entries, reloaded.Entries())
}

func TestBack(t *testing.T) {
	ctx := context.Background()
	h, err := Load(ctx, testutil.NewTestKV(t))
	require.NoError(t, err)

	_, ok, err := h.Back(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, p := range []string{"/admin", "/admin/clients", "/admin/clients", "/admin/clients/c1"} {
		require.NoError(t, h.Push(ctx, p))
	}
	assert.Equal(t, []string{"/admin", "/admin/clients", "/admin/clients/c1"}, h.Entries())

	path, ok, err := h.Back(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/admin/clients", path)

	path, ok, err = h.Back(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/admin", path)

	_, ok, err = h.Back(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
