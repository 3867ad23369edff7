package files

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/kv"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/testutil"
)

func link(t model.EntityType, id, rec string) *model.FileLink {
	return &model.FileLink{Type: t, ID: id, RecordID: rec}
}

func TestRegistry_AddAndLookup(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, nil, nil)
	require.NoError(t, err)

	a, err := r.AddFile(ctx, model.StoredFile{Name: "a.jpg", Size: 10, LinkedTo: link(model.EntityClient, "c1", "f1")})
	require.NoError(t, err)
	b, err := r.AddFile(ctx, model.StoredFile{Name: "b.pdf", Size: 20, LinkedTo: link(model.EntityClient, "c1", "f2")})
	require.NoError(t, err)
	_, err = r.AddFile(ctx, model.StoredFile{Name: "c.png", Size: 30, LinkedTo: link(model.EntityProject, "c1", "")})
	require.NoError(t, err)
	_, err = r.AddFile(ctx, model.StoredFile{Name: "loose.txt", Size: 1})
	require.NoError(t, err)
	_, err = r.AddFile(ctx, model.StoredFile{Name: "broken.jpg", Size: -400, LinkedTo: link(model.EntityClient, "c1", "f1")})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Len(t, r.Files(), 4, "a negative size is never stored")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.UploadedAt.IsZero())

	tests := []struct {
		name     string
		typ      model.EntityType
		id       string
		recordID string
		want     []string
	}{
		{name: "whole entity", typ: model.EntityClient, id: "c1", want: []string{"a.jpg", "b.pdf"}},
		{name: "one record", typ: model.EntityClient, id: "c1", recordID: "f2", want: []string{"b.pdf"}},
		{name: "type must match", typ: model.EntityProject, id: "c1", want: []string{"c.png"}},
		{name: "no match", typ: model.EntityLabour, id: "c1", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, f := range r.FilesByLink(tt.typ, tt.id, tt.recordID) {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestRegistry_Delete(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, nil, nil)
	require.NoError(t, err)

	var ids []string
	for _, n := range []string{"a", "b", "c"} {
		f, err := r.AddFile(ctx, model.StoredFile{Name: n, Size: 1})
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}

	require.NoError(t, r.DeleteFile(ctx, "missing"))
	assert.Len(t, r.Files(), 3)

	require.NoError(t, r.DeleteFile(ctx, ids[1]))
	assert.Len(t, r.Files(), 2)
	_, ok := r.File(ids[1])
	assert.False(t, ok)

	require.NoError(t, r.DeleteFiles(ctx, []string{ids[0], "missing", ids[2]}))
	assert.Empty(t, r.Files())
}

func TestRegistry_BlobRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range map[string]kv.Store{
		"sqlite": testutil.NewTestKV(t),
		"badger": testutil.NewBadgerKV(t),
	} {
		t.Run(name, func(t *testing.T) {
			r, err := New(ctx, s, nil)
			require.NoError(t, err)
			r.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

			_, err = r.AddFile(ctx, model.StoredFile{Name: "site.jpg", Size: 850, Type: "image/jpeg", URL: "data:,x", LinkedTo: link(model.EntityClient, "c1", "rec")})
			require.NoError(t, err)
			_, err = r.AddFile(ctx, model.StoredFile{Name: "plan.pdf", Size: 100, Type: "application/pdf"})
			require.NoError(t, err)

			reloaded, err := New(ctx, s, nil)
			require.NoError(t, err)
			assert.Equal(t, r.Files(), reloaded.Files())
		})
	}
}
