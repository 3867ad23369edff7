package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nhle/siteledger/internal/inventory"
	"github.com/nhle/siteledger/internal/model"
)

// resourceStage collects resource changes for one mutation so they can be
// validated together and committed only when the whole mutation succeeds.
type resourceStage struct {
	s      *MemStore
	order  []model.Resource
	staged map[string]model.Resource
}

func (s *MemStore) newResourceStage() *resourceStage {
	return &resourceStage{s: s, order: s.resources.list(), staged: make(map[string]model.Resource)}
}

func (st *resourceStage) find(resourceType string) (model.Resource, bool) {
	i := inventory.FindByType(st.order, resourceType)
	if i < 0 {
		return model.Resource{}, false
	}
	r := st.order[i]
	if staged, ok := st.staged[r.ID]; ok {
		return staged, true
	}
	return r, true
}

// consume applies qty units of usage to the resource matching resourceType.
func (st *resourceStage) consume(resourceType string, qty decimal.Decimal) error {
	r, ok := st.find(resourceType)
	if !ok {
		return fmt.Errorf("resource %q: %w", resourceType, model.ErrUnknownResourceType)
	}
	next, err := inventory.Consume(r, qty)
	if err != nil {
		return err
	}
	st.staged[r.ID] = next
	return nil
}

// revert gives qty units back. A resource that no longer exists is skipped.
func (st *resourceStage) revert(resourceType string, qty decimal.Decimal) {
	r, ok := st.find(resourceType)
	if !ok {
		return
	}
	st.staged[r.ID] = inventory.Revert(r, qty)
}

// move replaces the consumption of old with that of next. Records naming
// the same resource apply only the difference, and nothing at all when
// that resource no longer exists.
func (st *resourceStage) move(old, next model.FinancialRecord) error {
	if old.ConsumesResource() && next.ConsumesResource() &&
		inventory.NormalizeType(old.ResourceType) == inventory.NormalizeType(next.ResourceType) {
		if _, ok := st.find(next.ResourceType); !ok {
			// The resource was deleted; the record keeps pointing at nothing.
			return nil
		}
		return st.consume(next.ResourceType, next.ResourceQuantity.Sub(old.ResourceQuantity))
	}
	if old.ConsumesResource() {
		st.revert(old.ResourceType, old.ResourceQuantity)
	}
	if next.ConsumesResource() {
		return st.consume(next.ResourceType, next.ResourceQuantity)
	}
	return nil
}

func (st *resourceStage) commit() {
	for id, r := range st.staged {
		st.s.resources.put(id, r)
		st.s.observe(model.EntityResource, "consume")
	}
}
