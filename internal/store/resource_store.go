package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/siteledger/internal/inventory"
	"github.com/nhle/siteledger/internal/model"
)

// CreateResource adds a resource with nothing used yet.
func (s *MemStore) CreateResource(ctx context.Context, resource model.Resource) (model.Resource, error) {
	resource = cloneResource(resource)
	if resource.ID == "" {
		resource.ID = uuid.New().String()
	}
	if resource.PurchaseDate.IsZero() {
		resource.PurchaseDate = s.now()
	}
	resource, err := inventory.Init(resource)
	if err != nil {
		return model.Resource{}, fmt.Errorf("creating resource: %w", err)
	}
	projectID := model.Deref(resource.ProjectID)
	resource.ProjectID = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resources.has(resource.ID) {
		return model.Resource{}, fmt.Errorf("creating resource: id %s already exists: %w", resource.ID, model.ErrValidation)
	}

	s.resources.put(resource.ID, resource)
	if projectID != "" {
		s.assignLocked(model.EntityResource, resource.ID, projectID)
	}

	s.log.Info("resource created", "id", resource.ID, "type", resource.Type, "purchased", resource.QuantityPurchased)
	s.observe(model.EntityResource, "create")
	return cloneResource(s.resources.rows[resource.ID]), nil
}

// UpdateResource applies patch. Purchased and used quantities are checked
// together, so a patch may raise both at once; anything leaving used
// outside [0, purchased] fails with model.ErrInvalidQuantity.
func (s *MemStore) UpdateResource(ctx context.Context, id string, patch model.ResourcePatch) (model.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resources.get(id)
	if !ok {
		return model.Resource{}, fmt.Errorf("updating resource %s: %w", id, model.ErrNotFound)
	}

	patch.Type.Apply(&r.Type)
	patch.Unit.Apply(&r.Unit)
	patch.PurchaseDate.Apply(&r.PurchaseDate)
	patch.Price.Apply(&r.Price)
	patch.Notes.Apply(&r.Notes)

	used, purchased := r.Used, r.QuantityPurchased
	patch.Used.Apply(&used)
	patch.QuantityPurchased.Apply(&purchased)
	r, err := inventory.SetQuantities(r, purchased, used)
	if err != nil {
		return model.Resource{}, fmt.Errorf("updating resource %s: %w", id, err)
	}

	s.resources.put(id, r)
	s.applyProjectRefLocked(model.EntityResource, id, patch.ProjectID)

	s.log.Info("resource updated", "id", id, "used", r.Used, "remaining", r.Remaining)
	s.observe(model.EntityResource, "update")
	return cloneResource(s.resources.rows[id]), nil
}

// DeleteResource unassigns and removes a resource and the files linked to
// it. Financial records naming its type are kept; later reverts against it
// do nothing.
func (s *MemStore) DeleteResource(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.resources.has(id) {
		return nil
	}
	if err := s.deleteFiles(ctx, s.linkedFileIDs(model.EntityResource, id, "")); err != nil {
		return fmt.Errorf("deleting resource %s: %w", id, err)
	}

	s.unassignLocked(model.EntityResource, id)
	s.resources.remove(id)

	s.log.Info("resource deleted", "id", id)
	s.observe(model.EntityResource, "delete")
	return nil
}

// GetResourceByID returns a copy of the resource.
func (s *MemStore) GetResourceByID(_ context.Context, id string) (model.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources.get(id)
	if !ok {
		return model.Resource{}, false
	}
	return cloneResource(r), true
}

// GetResources returns all resources in creation order.
func (s *MemStore) GetResources(_ context.Context) []model.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resourcesLocked()
}
