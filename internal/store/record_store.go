package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/siteledger/internal/model"
)

type recordKey struct {
	id   string
	date time.Time
}

// sortRecords orders records newest date first; records on the same date
// are ordered most recently inserted first.
func sortRecords[T any](recs []T, key func(T) recordKey, seq map[string]uint64) {
	slices.SortStableFunc(recs, func(a, b T) int {
		ka, kb := key(a), key(b)
		if c := kb.date.Compare(ka.date); c != 0 {
			return c
		}
		return cmp.Compare(seq[kb.id], seq[ka.id])
	})
}

// droppedAttachments returns ids present in before but not in after.
func droppedAttachments(before, after []string) []string {
	var out []string
	for _, id := range before {
		if !slices.Contains(after, id) {
			out = append(out, id)
		}
	}
	return out
}

// === Client financial records ===

// AddFinancialRecord appends a record to a client's ledger. A record naming
// a resource type consumes that quantity from the matching resource.
func (s *MemStore) AddFinancialRecord(ctx context.Context, clientID string, rec model.FinancialRecord) (model.FinancialRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Type == "" {
		rec.Type = model.FinancialReceived
	}
	rec.Attachments = slices.Clone(rec.Attachments)
	if err := checkFinancialRecord(rec); err != nil {
		return model.FinancialRecord{}, fmt.Errorf("adding financial record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients.get(clientID)
	if !ok {
		return model.FinancialRecord{}, fmt.Errorf("adding financial record to client %s: %w", clientID, model.ErrNotFound)
	}

	stage := s.newResourceStage()
	if rec.ConsumesResource() {
		if err := stage.consume(rec.ResourceType, rec.ResourceQuantity); err != nil {
			return model.FinancialRecord{}, fmt.Errorf("adding financial record to client %s: %w", clientID, err)
		}
	}

	stage.commit()
	s.nextSeq(rec.ID)
	c = cloneClient(c)
	c.FinancialRecords = append(c.FinancialRecords, rec)
	s.normalizeClient(&c)
	s.clients.put(clientID, c)

	s.log.Info("financial record added", "client", clientID, "record", rec.ID, "amount", rec.Amount)
	s.observe(model.EntityClient, "add_record")
	rec.Attachments = slices.Clone(rec.Attachments)
	return rec, nil
}

// UpdateFinancialRecord applies patch to one record. A changed resource
// quantity applies only the difference; a changed resource type gives the
// old quantity back before consuming the new one. Attachments dropped from
// the record are deleted.
func (s *MemStore) UpdateFinancialRecord(ctx context.Context, clientID, recordID string, patch model.FinancialRecordPatch) (model.FinancialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients.get(clientID)
	if !ok {
		return model.FinancialRecord{}, fmt.Errorf("updating financial record %s: client %s: %w", recordID, clientID, model.ErrNotFound)
	}
	i := slices.IndexFunc(c.FinancialRecords, func(r model.FinancialRecord) bool { return r.ID == recordID })
	if i < 0 {
		return model.FinancialRecord{}, fmt.Errorf("updating financial record %s: %w", recordID, model.ErrNotFound)
	}

	old := c.FinancialRecords[i]
	next := old
	patch.Date.Apply(&next.Date)
	patch.Amount.Apply(&next.Amount)
	patch.Type.Apply(&next.Type)
	patch.Notes.Apply(&next.Notes)
	patch.Attachments.Apply(&next.Attachments)
	patch.ResourceType.Apply(&next.ResourceType)
	patch.ResourceQuantity.Apply(&next.ResourceQuantity)
	next.Attachments = slices.Clone(next.Attachments)
	if err := checkFinancialRecord(next); err != nil {
		return model.FinancialRecord{}, fmt.Errorf("updating financial record %s: %w", recordID, err)
	}

	stage := s.newResourceStage()
	if err := stage.move(old, next); err != nil {
		return model.FinancialRecord{}, fmt.Errorf("updating financial record %s: %w", recordID, err)
	}
	if err := s.deleteFiles(ctx, droppedAttachments(old.Attachments, next.Attachments)); err != nil {
		return model.FinancialRecord{}, fmt.Errorf("updating financial record %s: %w", recordID, err)
	}

	stage.commit()
	c = cloneClient(c)
	c.FinancialRecords[i] = next
	s.normalizeClient(&c)
	s.clients.put(clientID, c)

	s.log.Info("financial record updated", "client", clientID, "record", recordID)
	s.observe(model.EntityClient, "update_record")
	next.Attachments = slices.Clone(next.Attachments)
	return next, nil
}

// DeleteFinancialRecord removes a record, gives back its resource usage
// and deletes its attachments. Stale ids are ignored.
func (s *MemStore) DeleteFinancialRecord(ctx context.Context, clientID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients.get(clientID)
	if !ok {
		return nil
	}
	i := slices.IndexFunc(c.FinancialRecords, func(r model.FinancialRecord) bool { return r.ID == recordID })
	if i < 0 {
		return nil
	}
	rec := c.FinancialRecords[i]

	stage := s.newResourceStage()
	if rec.ConsumesResource() {
		stage.revert(rec.ResourceType, rec.ResourceQuantity)
	}
	fileIDs := append(s.linkedFileIDs(model.EntityClient, clientID, recordID), rec.Attachments...)
	if err := s.deleteFiles(ctx, fileIDs); err != nil {
		return fmt.Errorf("deleting financial record %s: %w", recordID, err)
	}

	stage.commit()
	c = cloneClient(c)
	c.FinancialRecords = slices.Delete(c.FinancialRecords, i, i+1)
	s.normalizeClient(&c)
	s.clients.put(clientID, c)
	delete(s.recordSeq, recordID)

	s.log.Info("financial record deleted", "client", clientID, "record", recordID)
	s.observe(model.EntityClient, "delete_record")
	return nil
}

// === Labour attendance ===

// AddAttendance appends an attendance entry to a labourer.
func (s *MemStore) AddAttendance(ctx context.Context, labourerID string, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = model.AttendancePresent
	}
	if !rec.Status.Valid() {
		return model.AttendanceRecord{}, fmt.Errorf("adding attendance: status %q: %w", rec.Status, model.ErrValidation)
	}
	rec.Attachments = slices.Clone(rec.Attachments)

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(labourerID)
	if !ok {
		return model.AttendanceRecord{}, fmt.Errorf("adding attendance to labourer %s: %w", labourerID, model.ErrNotFound)
	}

	s.nextSeq(rec.ID)
	l = cloneLabourer(l)
	l.Attendance = append(l.Attendance, rec)
	s.normalizeLabourer(&l)
	s.labourers.put(labourerID, l)

	s.log.Info("attendance added", "labourer", labourerID, "record", rec.ID, "status", rec.Status)
	s.observe(model.EntityLabour, "add_record")
	rec.Attachments = slices.Clone(rec.Attachments)
	return rec, nil
}

// UpdateAttendance applies patch to one attendance entry.
func (s *MemStore) UpdateAttendance(ctx context.Context, labourerID, recordID string, patch model.AttendancePatch) (model.AttendanceRecord, error) {
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return model.AttendanceRecord{}, fmt.Errorf("updating attendance %s: status %q: %w", recordID, patch.Status.Value, model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(labourerID)
	if !ok {
		return model.AttendanceRecord{}, fmt.Errorf("updating attendance %s: labourer %s: %w", recordID, labourerID, model.ErrNotFound)
	}
	i := slices.IndexFunc(l.Attendance, func(r model.AttendanceRecord) bool { return r.ID == recordID })
	if i < 0 {
		return model.AttendanceRecord{}, fmt.Errorf("updating attendance %s: %w", recordID, model.ErrNotFound)
	}

	old := l.Attendance[i]
	next := old
	patch.Date.Apply(&next.Date)
	patch.Status.Apply(&next.Status)
	patch.Notes.Apply(&next.Notes)
	patch.Attachments.Apply(&next.Attachments)
	next.Attachments = slices.Clone(next.Attachments)

	if err := s.deleteFiles(ctx, droppedAttachments(old.Attachments, next.Attachments)); err != nil {
		return model.AttendanceRecord{}, fmt.Errorf("updating attendance %s: %w", recordID, err)
	}

	l = cloneLabourer(l)
	l.Attendance[i] = next
	s.normalizeLabourer(&l)
	s.labourers.put(labourerID, l)

	s.observe(model.EntityLabour, "update_record")
	next.Attachments = slices.Clone(next.Attachments)
	return next, nil
}

// DeleteAttendance removes an attendance entry and its attachments.
func (s *MemStore) DeleteAttendance(ctx context.Context, labourerID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(labourerID)
	if !ok {
		return nil
	}
	i := slices.IndexFunc(l.Attendance, func(r model.AttendanceRecord) bool { return r.ID == recordID })
	if i < 0 {
		return nil
	}

	fileIDs := append(s.linkedFileIDs(model.EntityLabour, labourerID, recordID), l.Attendance[i].Attachments...)
	if err := s.deleteFiles(ctx, fileIDs); err != nil {
		return fmt.Errorf("deleting attendance %s: %w", recordID, err)
	}

	l = cloneLabourer(l)
	l.Attendance = slices.Delete(l.Attendance, i, i+1)
	s.labourers.put(labourerID, l)
	delete(s.recordSeq, recordID)

	s.observe(model.EntityLabour, "delete_record")
	return nil
}

// === Labour payments ===

// AddPayment appends a payment entry to a labourer.
func (s *MemStore) AddPayment(ctx context.Context, labourerID string, rec model.LabourPayment) (model.LabourPayment, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Attachments = slices.Clone(rec.Attachments)
	if err := checkPayment(rec); err != nil {
		return model.LabourPayment{}, fmt.Errorf("adding payment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(labourerID)
	if !ok {
		return model.LabourPayment{}, fmt.Errorf("adding payment to labourer %s: %w", labourerID, model.ErrNotFound)
	}

	s.nextSeq(rec.ID)
	l = cloneLabourer(l)
	l.Payments = append(l.Payments, rec)
	s.normalizeLabourer(&l)
	s.labourers.put(labourerID, l)

	s.log.Info("payment added", "labourer", labourerID, "record", rec.ID, "paid", rec.Paid)
	s.observe(model.EntityLabour, "add_record")
	rec.Attachments = slices.Clone(rec.Attachments)
	return rec, nil
}

// UpdatePayment applies patch to one payment entry.
func (s *MemStore) UpdatePayment(ctx context.Context, labourerID, recordID string, patch model.LabourPaymentPatch) (model.LabourPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(labourerID)
	if !ok {
		return model.LabourPayment{}, fmt.Errorf("updating payment %s: labourer %s: %w", recordID, labourerID, model.ErrNotFound)
	}
	i := slices.IndexFunc(l.Payments, func(r model.LabourPayment) bool { return r.ID == recordID })
	if i < 0 {
		return model.LabourPayment{}, fmt.Errorf("updating payment %s: %w", recordID, model.ErrNotFound)
	}

	old := l.Payments[i]
	next := old
	patch.Date.Apply(&next.Date)
	patch.Advance.Apply(&next.Advance)
	patch.Paid.Apply(&next.Paid)
	patch.Due.Apply(&next.Due)
	patch.Notes.Apply(&next.Notes)
	patch.Attachments.Apply(&next.Attachments)
	next.Attachments = slices.Clone(next.Attachments)
	if err := checkPayment(next); err != nil {
		return model.LabourPayment{}, fmt.Errorf("updating payment %s: %w", recordID, err)
	}

	if err := s.deleteFiles(ctx, droppedAttachments(old.Attachments, next.Attachments)); err != nil {
		return model.LabourPayment{}, fmt.Errorf("updating payment %s: %w", recordID, err)
	}

	l = cloneLabourer(l)
	l.Payments[i] = next
	s.normalizeLabourer(&l)
	s.labourers.put(labourerID, l)

	s.observe(model.EntityLabour, "update_record")
	next.Attachments = slices.Clone(next.Attachments)
	return next, nil
}

// DeletePayment removes a payment entry and its attachments.
func (s *MemStore) DeletePayment(ctx context.Context, labourerID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(labourerID)
	if !ok {
		return nil
	}
	i := slices.IndexFunc(l.Payments, func(r model.LabourPayment) bool { return r.ID == recordID })
	if i < 0 {
		return nil
	}

	fileIDs := append(s.linkedFileIDs(model.EntityLabour, labourerID, recordID), l.Payments[i].Attachments...)
	if err := s.deleteFiles(ctx, fileIDs); err != nil {
		return fmt.Errorf("deleting payment %s: %w", recordID, err)
	}

	l = cloneLabourer(l)
	l.Payments = slices.Delete(l.Payments, i, i+1)
	s.labourers.put(labourerID, l)
	delete(s.recordSeq, recordID)

	s.observe(model.EntityLabour, "delete_record")
	return nil
}
