package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/siteledger/internal/model"
)

// CreateLabourer adds a labourer, assigning it to ProjectID when set.
func (s *MemStore) CreateLabourer(ctx context.Context, labourer model.Labourer) (model.Labourer, error) {
	labourer = cloneLabourer(labourer)
	if labourer.ID == "" {
		labourer.ID = uuid.New().String()
	}
	if labourer.DateJoined.IsZero() {
		labourer.DateJoined = s.now()
	}
	if labourer.Status == "" {
		labourer.Status = model.LabourActive
	}
	if !labourer.Status.Valid() {
		return model.Labourer{}, fmt.Errorf("creating labourer: status %q: %w", labourer.Status, model.ErrValidation)
	}
	projectID := model.Deref(labourer.ProjectID)
	labourer.ProjectID = nil

	for i := range labourer.Attendance {
		if labourer.Attendance[i].ID == "" {
			labourer.Attendance[i].ID = uuid.New().String()
		}
	}
	for i := range labourer.Payments {
		if labourer.Payments[i].ID == "" {
			labourer.Payments[i].ID = uuid.New().String()
		}
		if err := checkPayment(labourer.Payments[i]); err != nil {
			return model.Labourer{}, fmt.Errorf("creating labourer: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.labourers.has(labourer.ID) {
		return model.Labourer{}, fmt.Errorf("creating labourer: id %s already exists: %w", labourer.ID, model.ErrValidation)
	}

	for _, rec := range labourer.Attendance {
		s.nextSeq(rec.ID)
	}
	for _, rec := range labourer.Payments {
		s.nextSeq(rec.ID)
	}
	s.normalizeLabourer(&labourer)
	s.labourers.put(labourer.ID, labourer)
	if projectID != "" {
		s.assignLocked(model.EntityLabour, labourer.ID, projectID)
	}

	s.log.Info("labourer created", "id", labourer.ID, "name", labourer.Name)
	s.observe(model.EntityLabour, "create")
	return cloneLabourer(s.labourers.rows[labourer.ID]), nil
}

// UpdateLabourer applies patch to the labourer's own fields.
func (s *MemStore) UpdateLabourer(ctx context.Context, id string, patch model.LabourerPatch) (model.Labourer, error) {
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return model.Labourer{}, fmt.Errorf("updating labourer %s: status %q: %w", id, patch.Status.Value, model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(id)
	if !ok {
		return model.Labourer{}, fmt.Errorf("updating labourer %s: %w", id, model.ErrNotFound)
	}

	patch.Name.Apply(&l.Name)
	patch.Phone.Apply(&l.Phone)
	patch.Address.Apply(&l.Address)
	patch.Status.Apply(&l.Status)
	patch.Notes.Apply(&l.Notes)
	s.labourers.put(id, l)
	s.applyProjectRefLocked(model.EntityLabour, id, patch.ProjectID)

	s.log.Info("labourer updated", "id", id)
	s.observe(model.EntityLabour, "update")
	return cloneLabourer(s.labourers.rows[id]), nil
}

// DeleteLabourer removes a labourer along with the attachments of its
// records and any file linked to it.
func (s *MemStore) DeleteLabourer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labourers.get(id)
	if !ok {
		return nil
	}

	fileIDs := s.linkedFileIDs(model.EntityLabour, id, "")
	for _, rec := range l.Attendance {
		fileIDs = append(fileIDs, rec.Attachments...)
	}
	for _, rec := range l.Payments {
		fileIDs = append(fileIDs, rec.Attachments...)
	}
	if err := s.deleteFiles(ctx, fileIDs); err != nil {
		return fmt.Errorf("deleting labourer %s: %w", id, err)
	}

	s.unassignLocked(model.EntityLabour, id)
	for _, rec := range l.Attendance {
		delete(s.recordSeq, rec.ID)
	}
	for _, rec := range l.Payments {
		delete(s.recordSeq, rec.ID)
	}
	s.labourers.remove(id)

	s.log.Info("labourer deleted", "id", id)
	s.observe(model.EntityLabour, "delete")
	return nil
}

// GetLabourerByID returns a copy of the labourer.
func (s *MemStore) GetLabourerByID(_ context.Context, id string) (model.Labourer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.labourers.get(id)
	if !ok {
		return model.Labourer{}, false
	}
	return cloneLabourer(l), true
}

// GetLabourers returns all labourers in creation order.
func (s *MemStore) GetLabourers(_ context.Context) []model.Labourer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labourersLocked()
}

func (s *MemStore) normalizeLabourer(l *model.Labourer) {
	sortRecords(l.Attendance, func(r model.AttendanceRecord) recordKey {
		return recordKey{r.ID, r.Date}
	}, s.recordSeq)
	sortRecords(l.Payments, func(r model.LabourPayment) recordKey {
		return recordKey{r.ID, r.Date}
	}, s.recordSeq)
}

func checkPayment(p model.LabourPayment) error {
	if p.Advance.IsNegative() || p.Paid.IsNegative() || p.Due.IsNegative() {
		return fmt.Errorf("payment %s has a negative amount: %w", p.ID, model.ErrInvalidQuantity)
	}
	return nil
}
