package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/siteledger/internal/model"
)

// CreateClient adds a client. Initial financial records are applied to the
// resource ledger as if added one by one, and a set ProjectID assigns the
// client to that project.
func (s *MemStore) CreateClient(ctx context.Context, client model.Client) (model.Client, error) {
	client = cloneClient(client)
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	if client.DateAdded.IsZero() {
		client.DateAdded = s.now()
	}
	projectID := model.Deref(client.ProjectID)
	client.ProjectID = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clients.has(client.ID) {
		return model.Client{}, fmt.Errorf("creating client: id %s already exists: %w", client.ID, model.ErrValidation)
	}

	stage := s.newResourceStage()
	for i := range client.FinancialRecords {
		rec := &client.FinancialRecords[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if err := checkFinancialRecord(*rec); err != nil {
			return model.Client{}, fmt.Errorf("creating client: %w", err)
		}
		if rec.ConsumesResource() {
			if err := stage.consume(rec.ResourceType, rec.ResourceQuantity); err != nil {
				return model.Client{}, fmt.Errorf("creating client: %w", err)
			}
		}
	}

	stage.commit()
	for _, rec := range client.FinancialRecords {
		s.nextSeq(rec.ID)
	}
	s.normalizeClient(&client)
	s.clients.put(client.ID, client)
	if projectID != "" {
		s.assignLocked(model.EntityClient, client.ID, projectID)
	}

	s.log.Info("client created", "id", client.ID, "name", client.Name)
	s.observe(model.EntityClient, "create")
	return cloneClient(s.clients.rows[client.ID]), nil
}

// UpdateClient applies patch to the client's own fields. Records are
// changed through the financial record operations.
func (s *MemStore) UpdateClient(ctx context.Context, id string, patch model.ClientPatch) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients.get(id)
	if !ok {
		return model.Client{}, fmt.Errorf("updating client %s: %w", id, model.ErrNotFound)
	}

	patch.Name.Apply(&c.Name)
	patch.Phone.Apply(&c.Phone)
	patch.Email.Apply(&c.Email)
	patch.Address.Apply(&c.Address)
	patch.Notes.Apply(&c.Notes)
	s.clients.put(id, c)
	s.applyProjectRefLocked(model.EntityClient, id, patch.ProjectID)

	s.log.Info("client updated", "id", id)
	s.observe(model.EntityClient, "update")
	return cloneClient(s.clients.rows[id]), nil
}

// DeleteClient removes a client. The resource usage of its financial
// records is given back, and the attachments of those records and any file
// linked to the client are deleted.
func (s *MemStore) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients.get(id)
	if !ok {
		return nil
	}

	stage := s.newResourceStage()
	fileIDs := s.linkedFileIDs(model.EntityClient, id, "")
	for _, rec := range c.FinancialRecords {
		if rec.ConsumesResource() {
			stage.revert(rec.ResourceType, rec.ResourceQuantity)
		}
		fileIDs = append(fileIDs, rec.Attachments...)
	}
	if err := s.deleteFiles(ctx, fileIDs); err != nil {
		return fmt.Errorf("deleting client %s: %w", id, err)
	}

	stage.commit()
	s.unassignLocked(model.EntityClient, id)
	for _, rec := range c.FinancialRecords {
		delete(s.recordSeq, rec.ID)
	}
	s.clients.remove(id)

	s.log.Info("client deleted", "id", id, "records", len(c.FinancialRecords))
	s.observe(model.EntityClient, "delete")
	return nil
}

// GetClientByID returns a copy of the client.
func (s *MemStore) GetClientByID(_ context.Context, id string) (model.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients.get(id)
	if !ok {
		return model.Client{}, false
	}
	return cloneClient(c), true
}

// GetClients returns all clients in creation order.
func (s *MemStore) GetClients(_ context.Context) []model.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientsLocked()
}

// normalizeClient orders records newest first and rebuilds the usage
// summary from them.
func (s *MemStore) normalizeClient(c *model.Client) {
	sortRecords(c.FinancialRecords, func(r model.FinancialRecord) recordKey {
		return recordKey{r.ID, r.Date}
	}, s.recordSeq)

	c.ResourceUsage = nil
	for _, rec := range c.FinancialRecords {
		if rec.ConsumesResource() {
			c.ResourceUsage = append(c.ResourceUsage, model.ResourceUsage{
				ResourceType: rec.ResourceType,
				Quantity:     rec.ResourceQuantity,
				Date:         rec.Date,
			})
		}
	}
}

func checkFinancialRecord(rec model.FinancialRecord) error {
	if !rec.Amount.IsPositive() {
		return fmt.Errorf("record %s amount %s must be positive: %w", rec.ID, rec.Amount, model.ErrValidation)
	}
	if rec.ResourceQuantity.IsNegative() {
		return fmt.Errorf("record %s quantity %s: %w", rec.ID, rec.ResourceQuantity, model.ErrInvalidQuantity)
	}
	if rec.Type != "" && !rec.Type.Valid() {
		return fmt.Errorf("record %s type %q: %w", rec.ID, rec.Type, model.ErrValidation)
	}
	return nil
}
