package store

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/model"
)

func recordIDs(recs []model.FinancialRecord) []string {
	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestFinancialRecordOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := mustClient(t, s, model.Client{Name: "C"})

	add := func(id string, d int) {
		_, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{ID: id, Date: day(d), Amount: dec("1")})
		require.NoError(t, err)
	}
	add("old", 1)
	add("mid-first", 5)
	add("new", 9)
	add("mid-second", 5)

	got, _ := s.GetClientByID(ctx, c.ID)
	assert.Equal(t, []string{"new", "mid-second", "mid-first", "old"}, recordIDs(got.FinancialRecords))

	// Moving a record onto an existing date keeps insertion order for the tie.
	_, err := s.UpdateFinancialRecord(ctx, c.ID, "old", model.FinancialRecordPatch{Date: model.Some(day(5))})
	require.NoError(t, err)
	got, _ = s.GetClientByID(ctx, c.ID)
	assert.Equal(t, []string{"new", "mid-second", "mid-first", "old"}, recordIDs(got.FinancialRecords))

	_, err = s.UpdateFinancialRecord(ctx, c.ID, "mid-first", model.FinancialRecordPatch{Date: model.Some(day(10))})
	require.NoError(t, err)
	got, _ = s.GetClientByID(ctx, c.ID)
	assert.Equal(t, []string{"mid-first", "new", "mid-second", "old"}, recordIDs(got.FinancialRecords))
}

func TestFinancialRecordRejectsOverdraw(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := mustResource(t, s, "Cement", "10")
	c := mustClient(t, s, model.Client{Name: "C"})

	rec, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "cement", ResourceQuantity: dec("8")})
	require.NoError(t, err)
	before := s.Snapshot(ctx)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"add beyond purchased", func() error {
			_, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "Cement", ResourceQuantity: dec("3")})
			return err
		}, model.ErrInvalidQuantity},
		{"update beyond purchased", func() error {
			_, err := s.UpdateFinancialRecord(ctx, c.ID, rec.ID, model.FinancialRecordPatch{ResourceQuantity: model.Some(dec("11"))})
			return err
		}, model.ErrInvalidQuantity},
		{"negative quantity", func() error {
			_, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "Cement", ResourceQuantity: dec("-1")})
			return err
		}, model.ErrInvalidQuantity},
		{"unknown type", func() error {
			_, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "Bricks", ResourceQuantity: dec("1")})
			return err
		}, model.ErrUnknownResourceType},
		{"purchased below used", func() error {
			_, err := s.UpdateResource(ctx, r.ID, model.ResourcePatch{QuantityPurchased: model.Some(dec("7"))})
			return err
		}, model.ErrInvalidQuantity},
		{"used beyond purchased", func() error {
			_, err := s.UpdateResource(ctx, r.ID, model.ResourcePatch{Used: model.Some(dec("10.01"))})
			return err
		}, model.ErrInvalidQuantity},
		{"zero purchased", func() error {
			_, err := s.UpdateResource(ctx, r.ID, model.ResourcePatch{QuantityPurchased: model.Some(decimal.Zero), Used: model.Some(decimal.Zero)})
			return err
		}, model.ErrInvalidQuantity},
		{"negative amount", func() error {
			_, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("-20")})
			return err
		}, model.ErrValidation},
		{"zero amount", func() error {
			_, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: decimal.Zero})
			return err
		}, model.ErrValidation},
		{"update to negative amount", func() error {
			_, err := s.UpdateFinancialRecord(ctx, c.ID, rec.ID, model.FinancialRecordPatch{Amount: model.Some(dec("-1"))})
			return err
		}, model.ErrValidation},
		{"client with negative amount", func() error {
			_, err := s.CreateClient(ctx, model.Client{Name: "D", FinancialRecords: []model.FinancialRecord{{Amount: dec("-5")}}})
			return err
		}, model.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
			assert.Equal(t, before, s.Snapshot(ctx), "state must be unchanged")
		})
	}
}

func TestUpdateResourceRaisesPurchasedAndUsedTogether(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := mustResource(t, s, "Cement", "10")

	got, err := s.UpdateResource(ctx, r.ID, model.ResourcePatch{
		QuantityPurchased: model.Some(dec("20")),
		Used:              model.Some(dec("15")),
	})
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(dec("5")))
}

func TestFinancialRecordChangingResourceType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cement := mustResource(t, s, "Cement", "100")
	sand := mustResource(t, s, "Sand", "50")
	c := mustClient(t, s, model.Client{Name: "C"})

	rec, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "Cement", ResourceQuantity: dec("40")})
	require.NoError(t, err)

	_, err = s.UpdateFinancialRecord(ctx, c.ID, rec.ID, model.FinancialRecordPatch{
		ResourceType:     model.Some("Sand"),
		ResourceQuantity: model.Some(dec("20")),
	})
	require.NoError(t, err)

	gotCement, _ := s.GetResourceByID(ctx, cement.ID)
	gotSand, _ := s.GetResourceByID(ctx, sand.ID)
	assert.True(t, gotCement.Used.IsZero())
	assert.True(t, gotSand.Used.Equal(dec("20")))

	// Moving to a type that would overdraw fails without touching either.
	_, err = s.UpdateFinancialRecord(ctx, c.ID, rec.ID, model.FinancialRecordPatch{
		ResourceType:     model.Some("Cement"),
		ResourceQuantity: model.Some(dec("101")),
	})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	gotSand, _ = s.GetResourceByID(ctx, sand.ID)
	assert.True(t, gotSand.Used.Equal(dec("20")))

	got, _ := s.GetClientByID(ctx, c.ID)
	require.Len(t, got.ResourceUsage, 1)
	assert.Equal(t, "Sand", got.ResourceUsage[0].ResourceType)
}

func TestRevertAgainstDeletedResourceIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := mustResource(t, s, "Cement", "100")
	c := mustClient(t, s, model.Client{Name: "C"})

	rec, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "Cement", ResourceQuantity: dec("5")})
	require.NoError(t, err)
	require.NoError(t, s.DeleteResource(ctx, r.ID))

	assert.NoError(t, s.DeleteFinancialRecord(ctx, c.ID, rec.ID))
	requireConsistent(t, s)
}

func TestUpdateRecordOfDeletedResource(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := mustResource(t, s, "Cement", "100")
	c := mustClient(t, s, model.Client{Name: "C"})

	rec, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "Cement", ResourceQuantity: dec("5")})
	require.NoError(t, err)
	require.NoError(t, s.DeleteResource(ctx, r.ID))

	tests := []struct {
		name  string
		patch model.FinancialRecordPatch
	}{
		{name: "notes only", patch: model.FinancialRecordPatch{Notes: model.Some("second delivery")}},
		{name: "same type other case", patch: model.FinancialRecordPatch{ResourceType: model.Some(" cement ")}},
		{name: "quantity", patch: model.FinancialRecordPatch{ResourceQuantity: model.Some(dec("9"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateFinancialRecord(ctx, c.ID, rec.ID, tt.patch)
			require.NoError(t, err)
			requireConsistent(t, s)
		})
	}

	got, ok := s.GetClientByID(ctx, c.ID)
	require.True(t, ok)
	assert.Equal(t, "second delivery", got.FinancialRecords[0].Notes)

	_, err = s.UpdateFinancialRecord(ctx, c.ID, rec.ID, model.FinancialRecordPatch{ResourceType: model.Some("Sand")})
	assert.ErrorIs(t, err, model.ErrUnknownResourceType, "switching to another missing type still fails")
}

func addFile(t *testing.T, s *MemStore, typ model.EntityType, id, recordID string) model.StoredFile {
	t.Helper()
	f, err := s.Files().AddFile(context.Background(), model.StoredFile{
		Name: "f", Size: 10, LinkedTo: &model.FileLink{Type: typ, ID: id, RecordID: recordID},
	})
	require.NoError(t, err)
	return f
}

func TestDeleteRecordCascadesAttachments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := mustClient(t, s, model.Client{Name: "C"})

	rec, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1")})
	require.NoError(t, err)
	linked := addFile(t, s, model.EntityClient, c.ID, rec.ID)
	other := addFile(t, s, model.EntityClient, c.ID, "other-record")

	_, err = s.UpdateFinancialRecord(ctx, c.ID, rec.ID, model.FinancialRecordPatch{Attachments: model.Some([]string{linked.ID})})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFinancialRecord(ctx, c.ID, rec.ID))
	_, ok := s.Files().File(linked.ID)
	assert.False(t, ok)
	_, ok = s.Files().File(other.ID)
	assert.True(t, ok, "files of other records stay")
}

func TestDroppedAttachmentIsDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	l := mustLabourer(t, s, "L")

	a := addFile(t, s, model.EntityLabour, l.ID, "")
	b := addFile(t, s, model.EntityLabour, l.ID, "")
	rec, err := s.AddPayment(ctx, l.ID, model.LabourPayment{Paid: dec("100"), Attachments: []string{a.ID, b.ID}})
	require.NoError(t, err)

	_, err = s.UpdatePayment(ctx, l.ID, rec.ID, model.LabourPaymentPatch{Attachments: model.Some([]string{b.ID})})
	require.NoError(t, err)

	_, ok := s.Files().File(a.ID)
	assert.False(t, ok)
	_, ok = s.Files().File(b.ID)
	assert.True(t, ok)
}

func TestDeleteClientCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := mustResource(t, s, "Cement", "100")
	p := mustProject(t, s, model.Project{Name: "P"})
	c := mustClient(t, s, model.Client{Name: "C", ProjectID: &p.ID})

	rec, err := s.AddFinancialRecord(ctx, c.ID, model.FinancialRecord{Amount: dec("1"), ResourceType: "Cement", ResourceQuantity: dec("25")})
	require.NoError(t, err)
	attachment := addFile(t, s, model.EntityClient, c.ID, rec.ID)
	profile := addFile(t, s, model.EntityClient, c.ID, "")
	unrelated := addFile(t, s, model.EntityProject, p.ID, "")

	require.NoError(t, s.DeleteClient(ctx, c.ID))

	got, _ := s.GetResourceByID(ctx, r.ID)
	assert.True(t, got.Used.IsZero(), "consumption must be given back")
	for _, id := range []string{attachment.ID, profile.ID} {
		_, ok := s.Files().File(id)
		assert.False(t, ok)
	}
	_, ok := s.Files().File(unrelated.ID)
	assert.True(t, ok)

	gotP, _ := s.GetProjectByID(ctx, p.ID)
	assert.Empty(t, gotP.ClientIDs)
	requireConsistent(t, s)
}

func TestDeleteLabourerCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	l := mustLabourer(t, s, "L")

	rec, err := s.AddAttendance(ctx, l.ID, model.AttendanceRecord{Date: day(2), Status: model.AttendanceHalfDay})
	require.NoError(t, err)
	f := addFile(t, s, model.EntityLabour, l.ID, rec.ID)

	require.NoError(t, s.DeleteLabourer(ctx, l.ID))
	_, ok := s.Files().File(f.ID)
	assert.False(t, ok)
	assert.Empty(t, s.Files().Files())
}

func TestAttendanceValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	l := mustLabourer(t, s, "L")

	_, err := s.AddAttendance(ctx, l.ID, model.AttendanceRecord{Status: "Sick"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = s.AddPayment(ctx, l.ID, model.LabourPayment{Advance: dec("-5")})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestRandomMutationsStayConsistent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rng := rand.New(rand.NewSource(7))

	var projects, members []string
	kinds := map[string]model.EntityType{}
	for i := 0; i < 4; i++ {
		projects = append(projects, mustProject(t, s, model.Project{Name: fmt.Sprintf("P%d", i)}).ID)
	}
	for i := 0; i < 6; i++ {
		c := mustClient(t, s, model.Client{Name: fmt.Sprintf("C%d", i)})
		l := mustLabourer(t, s, fmt.Sprintf("L%d", i))
		r := mustResource(t, s, fmt.Sprintf("R%d", i), "100")
		members = append(members, c.ID, l.ID, r.ID)
		kinds[c.ID], kinds[l.ID], kinds[r.ID] = model.EntityClient, model.EntityLabour, model.EntityResource
	}

	pick := func(ids []string) string { return ids[rng.Intn(len(ids))] }
	for step := 0; step < 500; step++ {
		switch rng.Intn(7) {
		case 0, 1:
			m := pick(members)
			require.NoError(t, s.Assign(ctx, kinds[m], m, pick(projects)))
		case 2:
			m := pick(members)
			require.NoError(t, s.Unassign(ctx, kinds[m], m))
		case 3:
			var ids []string
			for _, m := range members {
				if kinds[m] == model.EntityLabour && rng.Intn(2) == 0 {
					ids = append(ids, m)
				}
			}
			_, err := s.UpdateProject(ctx, pick(projects), model.ProjectPatch{LabourIDs: model.Some(ids)})
			require.NoError(t, err)
		case 4:
			p := pick(projects)
			require.NoError(t, s.DeleteProject(ctx, p))
			np := mustProject(t, s, model.Project{Name: "again", ClientIDs: []string{pick(members)}})
			for i := range projects {
				if projects[i] == p {
					projects[i] = np.ID
				}
			}
		case 5:
			m := pick(members)
			var err error
			switch kinds[m] {
			case model.EntityClient:
				_, err = s.UpdateClient(ctx, m, model.ClientPatch{ProjectID: model.Some(pick(append(projects, "")))})
			case model.EntityLabour:
				_, err = s.UpdateLabourer(ctx, m, model.LabourerPatch{ProjectID: model.Some(pick(append(projects, "")))})
			case model.EntityResource:
				_, err = s.UpdateResource(ctx, m, model.ResourcePatch{ProjectID: model.Some(pick(append(projects, "")))})
			}
			require.NoError(t, err)
		default:
			m := pick(members)
			if kinds[m] != model.EntityClient {
				continue
			}
			_, err := s.AddFinancialRecord(ctx, m, model.FinancialRecord{
				Amount: dec("1"), ResourceType: fmt.Sprintf("r%d", rng.Intn(6)), ResourceQuantity: dec("7"),
			})
			if err != nil {
				require.ErrorIs(t, err, model.ErrInvalidQuantity)
			}
		}
		require.Empty(t, s.CheckConsistency(ctx), "step %d", step)
	}
}
