package store

import (
	"context"
	"fmt"

	"github.com/nhle/siteledger/internal/inventory"
	"github.com/nhle/siteledger/internal/model"
)

// CheckConsistency verifies that every project's member lists agree with
// the members' back-pointers in both directions and that every resource's
// quantities add up. It returns one error per violation.
func (s *MemStore) CheckConsistency(_ context.Context) []error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error

	for projectID, byKind := range s.links {
		if !s.projects.has(projectID) {
			errs = append(errs, fmt.Errorf("link index holds unknown project %s", projectID))
		}
		for kind, ids := range byKind {
			seen := make(map[string]bool, len(ids))
			for _, id := range ids {
				if seen[id] {
					errs = append(errs, fmt.Errorf("project %s lists %s %s twice", projectID, kind, id))
				}
				seen[id] = true

				ref, ok := s.projectRef(kind, id)
				switch {
				case !ok:
					errs = append(errs, fmt.Errorf("project %s lists missing %s %s", projectID, kind, id))
				case ref != projectID:
					errs = append(errs, fmt.Errorf("project %s lists %s %s whose project is %q", projectID, kind, id, ref))
				}
			}
		}
	}

	check := func(m model.Member) {
		ref := model.Deref(m.GetProjectID())
		if ref == "" {
			return
		}
		if !s.projects.has(ref) {
			errs = append(errs, fmt.Errorf("%s %s (%s) points at missing project %s", m.Kind(), m.GetID(), m.GetName(), ref))
			return
		}
		found := false
		for _, id := range s.links[ref][m.Kind()] {
			if id == m.GetID() {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Errorf("%s %s (%s) points at project %s which does not list it", m.Kind(), m.GetID(), m.GetName(), ref))
		}
	}
	for _, c := range s.clients.list() {
		check(c)
	}
	for _, l := range s.labourers.list() {
		check(l)
	}
	for _, r := range s.resources.list() {
		check(r)
		if err := inventory.Check(r); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
