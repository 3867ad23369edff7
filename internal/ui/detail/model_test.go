package detail

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/store"
)

func TestLoadRendersMembersAndFiles(t *testing.T) {
	ctx := context.Background()
	reg, err := files.New(ctx, nil, nil)
	require.NoError(t, err)
	st := store.New(reg)

	p, err := st.CreateProject(ctx, model.Project{Name: "Greenview", Status: model.ProjectOngoing, Progress: 35})
	require.NoError(t, err)
	_, err = st.CreateClient(ctx, model.Client{Name: "Anita", ProjectID: &p.ID})
	require.NoError(t, err)
	_, err = st.CreateResource(ctx, model.Resource{
		Type: "Cement", Unit: "bags", QuantityPurchased: decimal.NewFromInt(500), ProjectID: &p.ID,
	})
	require.NoError(t, err)
	_, err = reg.AddFile(ctx, model.StoredFile{
		Name: "site-plan.pdf", Size: 1536,
		LinkedTo: &model.FileLink{Type: model.EntityProject, ID: p.ID},
	})
	require.NoError(t, err)

	m := New(st, reg, 80, 40)
	msg := m.Load(p.ID)()
	m, _ = m.Update(msg)
	require.Equal(t, p.ID, m.ProjectID())

	out := Render(m.detail)
	assert.Contains(t, out, "Greenview")
	assert.Contains(t, out, "35%")
	assert.Contains(t, out, "Clients (1)")
	assert.Contains(t, out, "Anita")
	assert.Contains(t, out, "Cement  500 of 500 bags left")
	assert.Contains(t, out, "site-plan.pdf  1.5 KB")
}

func TestLoadMissingProject(t *testing.T) {
	reg, err := files.New(context.Background(), nil, nil)
	require.NoError(t, err)

	m := New(store.New(reg), reg, 80, 40)
	m, _ = m.Update(m.Load("gone")())
	assert.Equal(t, "", m.ProjectID())
	assert.Contains(t, m.View(), "Project not found")
}
