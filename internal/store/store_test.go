package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/testutil"
)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	reg, err := files.New(context.Background(), testutil.NewTestKV(t), nil)
	require.NoError(t, err)
	return New(reg)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(n int) time.Time { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }

func requireConsistent(t *testing.T, s *MemStore) {
	t.Helper()
	assert.Empty(t, s.CheckConsistency(context.Background()))
}

func mustProject(t *testing.T, s *MemStore, p model.Project) model.Project {
	t.Helper()
	out, err := s.CreateProject(context.Background(), p)
	require.NoError(t, err)
	return out
}

func mustClient(t *testing.T, s *MemStore, c model.Client) model.Client {
	t.Helper()
	out, err := s.CreateClient(context.Background(), c)
	require.NoError(t, err)
	return out
}

func mustLabourer(t *testing.T, s *MemStore, name string) model.Labourer {
	t.Helper()
	out, err := s.CreateLabourer(context.Background(), model.Labourer{Name: name, Phone: "9876543210"})
	require.NoError(t, err)
	return out
}

func mustResource(t *testing.T, s *MemStore, typ, purchased string) model.Resource {
	t.Helper()
	out, err := s.CreateResource(context.Background(), model.Resource{Type: typ, Unit: "bags", QuantityPurchased: dec(purchased)})
	require.NoError(t, err)
	return out
}

func TestCreateClientWithProjectAssigns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p1 := mustProject(t, s, model.Project{Name: "Tower A"})
	assert.Empty(t, p1.ClientIDs)

	c1 := mustClient(t, s, model.Client{Name: "Asha", Phone: "9000000001", ProjectID: &p1.ID})

	got, ok := s.GetProjectByID(ctx, p1.ID)
	require.True(t, ok)
	assert.Equal(t, []string{c1.ID}, got.ClientIDs)
	assert.Equal(t, p1.ID, model.Deref(c1.ProjectID))
	requireConsistent(t, s)
}

func TestCreateWithUnknownProjectLeavesUnassigned(t *testing.T) {
	s := newTestStore(t)
	missing := "no-such-project"

	c := mustClient(t, s, model.Client{Name: "Ravi", ProjectID: &missing})
	assert.Nil(t, c.ProjectID)
	requireConsistent(t, s)
}

func TestFinancialRecordConsumptionAppliesDelta(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r1 := mustResource(t, s, "Cement", "100")
	c1 := mustClient(t, s, model.Client{Name: "Asha"})

	rec, err := s.AddFinancialRecord(ctx, c1.ID, model.FinancialRecord{
		Date: day(1), Amount: dec("1500"), Type: model.FinancialReceived,
		ResourceType: r1.Type, ResourceQuantity: dec("30"),
	})
	require.NoError(t, err)

	r, _ := s.GetResourceByID(ctx, r1.ID)
	assert.True(t, r.Used.Equal(dec("30")), "used = %s", r.Used)
	assert.True(t, r.Remaining.Equal(dec("70")), "remaining = %s", r.Remaining)

	_, err = s.UpdateFinancialRecord(ctx, c1.ID, rec.ID, model.FinancialRecordPatch{ResourceQuantity: model.Some(dec("50"))})
	require.NoError(t, err)
	r, _ = s.GetResourceByID(ctx, r1.ID)
	assert.True(t, r.Used.Equal(dec("50")), "used = %s", r.Used)

	require.NoError(t, s.DeleteFinancialRecord(ctx, c1.ID, rec.ID))
	r, _ = s.GetResourceByID(ctx, r1.ID)
	assert.True(t, r.Used.IsZero(), "used = %s", r.Used)
	assert.True(t, r.Remaining.Equal(dec("100")))
	requireConsistent(t, s)
}

func TestUpdateProjectReplacesLabourMembership(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l1 := mustLabourer(t, s, "L1")
	l2 := mustLabourer(t, s, "L2")
	l3 := mustLabourer(t, s, "L3")
	p2 := mustProject(t, s, model.Project{Name: "P2", LabourIDs: []string{l1.ID, l2.ID}})
	assert.Equal(t, []string{l1.ID, l2.ID}, p2.LabourIDs)

	p2, err := s.UpdateProject(ctx, p2.ID, model.ProjectPatch{LabourIDs: model.Some([]string{l2.ID, l3.ID})})
	require.NoError(t, err)
	assert.Equal(t, []string{l2.ID, l3.ID}, p2.LabourIDs)

	got, _ := s.GetLabourerByID(ctx, l1.ID)
	assert.Nil(t, got.ProjectID)
	got, _ = s.GetLabourerByID(ctx, l2.ID)
	assert.Equal(t, p2.ID, model.Deref(got.ProjectID))
	got, _ = s.GetLabourerByID(ctx, l3.ID)
	assert.Equal(t, p2.ID, model.Deref(got.ProjectID))
	requireConsistent(t, s)
}

func TestDeleteProjectUnlinksMembers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r5 := mustResource(t, s, "Steel", "10")
	p3 := mustProject(t, s, model.Project{Name: "P3", ResourceIDs: []string{r5.ID}})

	require.NoError(t, s.DeleteProject(ctx, p3.ID))

	got, ok := s.GetResourceByID(ctx, r5.ID)
	require.True(t, ok, "resource must survive project deletion")
	assert.Nil(t, got.ProjectID)
	_, ok = s.GetProjectByID(ctx, p3.ID)
	assert.False(t, ok)
	assert.Empty(t, s.LinkedEntities(ctx, p3.ID).Resources)
	requireConsistent(t, s)
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pa := mustProject(t, s, model.Project{Name: "A"})
	pb := mustProject(t, s, model.Project{Name: "B"})
	c := mustClient(t, s, model.Client{Name: "C"})

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, s.Assign(ctx, model.EntityClient, c.ID, pa.ID))
		once := s.Snapshot(ctx)
		require.NoError(t, s.Assign(ctx, model.EntityClient, c.ID, pa.ID))
		assert.Equal(t, once, s.Snapshot(ctx))
	})

	t.Run("moves between projects", func(t *testing.T) {
		require.NoError(t, s.Assign(ctx, model.EntityClient, c.ID, pb.ID))
		a, _ := s.GetProjectByID(ctx, pa.ID)
		b, _ := s.GetProjectByID(ctx, pb.ID)
		assert.Empty(t, a.ClientIDs)
		assert.Equal(t, []string{c.ID}, b.ClientIDs)
		requireConsistent(t, s)
	})

	t.Run("stale ids are no-ops", func(t *testing.T) {
		before := s.Snapshot(ctx)
		assert.NoError(t, s.Assign(ctx, model.EntityClient, "ghost", pa.ID))
		assert.NoError(t, s.Assign(ctx, model.EntityClient, c.ID, "ghost"))
		assert.NoError(t, s.Unassign(ctx, model.EntityLabour, "ghost"))
		assert.Equal(t, before, s.Snapshot(ctx))
	})

	t.Run("rejects non-member kind", func(t *testing.T) {
		assert.ErrorIs(t, s.Assign(ctx, model.EntityProject, pa.ID, pb.ID), model.ErrValidation)
	})

	t.Run("patch with empty project unassigns", func(t *testing.T) {
		got, err := s.UpdateClient(ctx, c.ID, model.ClientPatch{ProjectID: model.Some("")})
		require.NoError(t, err)
		assert.Nil(t, got.ProjectID)
		b, _ := s.GetProjectByID(ctx, pb.ID)
		assert.Empty(t, b.ClientIDs)
		requireConsistent(t, s)
	})
}

func TestUpdateProjectDoesNotClobberReassignedMember(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l1 := mustLabourer(t, s, "L1")
	p1 := mustProject(t, s, model.Project{Name: "P1", LabourIDs: []string{l1.ID}})
	p2 := mustProject(t, s, model.Project{Name: "P2"})

	require.NoError(t, s.Assign(ctx, model.EntityLabour, l1.ID, p2.ID))
	_, err := s.UpdateProject(ctx, p1.ID, model.ProjectPatch{LabourIDs: model.Some([]string{})})
	require.NoError(t, err)

	got, _ := s.GetLabourerByID(ctx, l1.ID)
	assert.Equal(t, p2.ID, model.Deref(got.ProjectID))
	requireConsistent(t, s)
}

func TestCreateProjectStealsMember(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := mustResource(t, s, "Sand", "5")
	p1 := mustProject(t, s, model.Project{Name: "P1", ResourceIDs: []string{r.ID}})
	p2 := mustProject(t, s, model.Project{Name: "P2", ResourceIDs: []string{r.ID, "ghost"}})

	assert.Equal(t, []string{r.ID}, p2.ResourceIDs)
	got, _ := s.GetProjectByID(ctx, p1.ID)
	assert.Empty(t, got.ResourceIDs)
	requireConsistent(t, s)
}

func TestProjectNumericBounds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := mustProject(t, s, model.Project{Name: "P", Progress: 40, Budget: dec("1000")})
	before := s.Snapshot(ctx)

	tests := []struct {
		name string
		call func() error
	}{
		{"create progress above 100", func() error {
			_, err := s.CreateProject(ctx, model.Project{Name: "X", Progress: 150})
			return err
		}},
		{"create negative progress", func() error {
			_, err := s.CreateProject(ctx, model.Project{Name: "X", Progress: -1})
			return err
		}},
		{"create negative budget", func() error {
			_, err := s.CreateProject(ctx, model.Project{Name: "X", Budget: dec("-500")})
			return err
		}},
		{"update progress above 100", func() error {
			_, err := s.UpdateProject(ctx, p.ID, model.ProjectPatch{Progress: model.Some(101)})
			return err
		}},
		{"update negative budget", func() error {
			_, err := s.UpdateProject(ctx, p.ID, model.ProjectPatch{Name: model.Some("renamed"), Budget: model.Some(dec("-0.01"))})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), model.ErrValidation)
			assert.Equal(t, before, s.Snapshot(ctx), "state must be unchanged")
		})
	}

	got, err := s.UpdateProject(ctx, p.ID, model.ProjectPatch{Progress: model.Some(100), Budget: model.Some(decimal.Zero)})
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
}

func TestConsistencyProblemNamesMember(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, model.Client{Name: "Asha"})

	c.ProjectID = model.StringPtr("gone")
	s.clients.put(c.ID, c)

	errs := s.CheckConsistency(context.Background())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "(Asha) points at missing project gone")
}

func TestUpdateOnStaleIDReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := mustClient(t, s, model.Client{Name: "C"})

	tests := []struct {
		name string
		call func() error
	}{
		{"project", func() error { _, err := s.UpdateProject(ctx, "x", model.ProjectPatch{}); return err }},
		{"client", func() error { _, err := s.UpdateClient(ctx, "x", model.ClientPatch{}); return err }},
		{"labourer", func() error { _, err := s.UpdateLabourer(ctx, "x", model.LabourerPatch{}); return err }},
		{"resource", func() error { _, err := s.UpdateResource(ctx, "x", model.ResourcePatch{}); return err }},
		{"record on missing client", func() error {
			_, err := s.AddFinancialRecord(ctx, "x", model.FinancialRecord{Amount: dec("1")})
			return err
		}},
		{"missing record", func() error {
			_, err := s.UpdateFinancialRecord(ctx, c.ID, "x", model.FinancialRecordPatch{})
			return err
		}},
		{"missing attendance", func() error {
			_, err := s.UpdateAttendance(ctx, "x", "y", model.AttendancePatch{})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), model.ErrNotFound)
		})
	}

	assert.NoError(t, s.DeleteClient(ctx, "x"))
	assert.NoError(t, s.DeleteProject(ctx, "x"))
	assert.NoError(t, s.DeleteFinancialRecord(ctx, c.ID, "x"))
	assert.NoError(t, s.DeletePayment(ctx, "x", "y"))
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := mustProject(t, s, model.Project{Name: "P"})
	c := mustClient(t, s, model.Client{Name: "C", ProjectID: &p.ID})

	*c.ProjectID = "tampered"
	got, _ := s.GetClientByID(ctx, c.ID)
	assert.Equal(t, p.ID, model.Deref(got.ProjectID))

	p, _ = s.GetProjectByID(ctx, p.ID)
	require.Len(t, p.ClientIDs, 1)
	p.ClientIDs[0] = "tampered"
	gotP, _ := s.GetProjectByID(ctx, p.ID)
	assert.Equal(t, []string{c.ID}, gotP.ClientIDs)
}

func TestMutationHook(t *testing.T) {
	ctx := context.Background()
	var ops []string
	s := New(nil, WithMutationHook(func(entity model.EntityType, op string) {
		ops = append(ops, string(entity)+":"+op)
	}))

	p := mustProject(t, s, model.Project{Name: "P"})
	c := mustClient(t, s, model.Client{Name: "C"})
	require.NoError(t, s.Assign(ctx, model.EntityClient, c.ID, p.ID))
	require.NoError(t, s.Assign(ctx, model.EntityClient, c.ID, p.ID))
	require.NoError(t, s.DeleteProject(ctx, p.ID))

	assert.Equal(t, []string{"project:create", "client:create", "client:assign", "project:delete"}, ops)
}
