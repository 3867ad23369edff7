package filelist

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/keys"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
)

func TestRows(t *testing.T) {
	rows := Rows([]model.StoredFile{
		{Name: "plan.pdf", Type: "application/pdf", Size: 1536, UploadedAt: time.Now().Add(-2 * time.Hour)},
		{
			Name: "receipt.jpg", Type: "image/jpeg", Size: 0, UploadedAt: time.Now(),
			LinkedTo: &model.FileLink{Type: model.EntityClient, ID: "c1", RecordID: "r1"},
		},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "1.5 KB", rows[0][2])
	assert.Equal(t, "-", rows[0][3])
	assert.Equal(t, "2 hours ago", rows[0][4])
	assert.Equal(t, "0 Bytes", rows[1][2])
	assert.Equal(t, "client record", rows[1][3])
}

func TestDeleteSelected(t *testing.T) {
	ctx := context.Background()
	reg, err := files.New(ctx, nil, nil)
	require.NoError(t, err)
	_, err = reg.AddFile(ctx, model.StoredFile{Name: "a.txt", Size: 10})
	require.NoError(t, err)
	_, err = reg.AddFile(ctx, model.StoredFile{Name: "b.txt", Size: 20})
	require.NoError(t, err)

	ledger := quota.New(100)
	m := New(reg, func() quota.Usage { return ledger.Compute(reg.Files()) }, keys.DefaultKeyMap(), 100, 30)
	m, _ = m.Update(m.Init()())
	require.Len(t, m.files, 2)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, deletedMsg{name: "a.txt"}, msg)

	m, _ = m.Update(msg)
	m, _ = m.Update(m.Load()())
	require.Len(t, m.files, 1)
	assert.Equal(t, "b.txt", m.files[0].Name)
	assert.EqualValues(t, 20, m.total.Used)
}
