package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/nhle/siteledger/internal/model"
)

// linkIndex maps a project id to its member ids per kind, in assignment
// order. It is derived from the members' back-pointers, which are
// authoritative, and only assignLocked and unassignLocked write to it.
type linkIndex map[string]map[model.EntityType][]string

func newLinkIndex() linkIndex {
	return make(linkIndex)
}

func (ix linkIndex) members(projectID string, kind model.EntityType) []string {
	ids := ix[projectID][kind]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (ix linkIndex) add(projectID string, kind model.EntityType, id string) {
	byKind, ok := ix[projectID]
	if !ok {
		byKind = make(map[model.EntityType][]string)
		ix[projectID] = byKind
	}
	if !slices.Contains(byKind[kind], id) {
		byKind[kind] = append(byKind[kind], id)
	}
}

func (ix linkIndex) remove(projectID string, kind model.EntityType, id string) {
	ids := ix[projectID][kind]
	if i := slices.Index(ids, id); i >= 0 {
		ix[projectID][kind] = slices.Delete(ids, i, i+1)
	}
}

// projectRef returns the back-pointer of a member and whether the member
// exists.
func (s *MemStore) projectRef(kind model.EntityType, id string) (string, bool) {
	switch kind {
	case model.EntityClient:
		c, ok := s.clients.get(id)
		return model.Deref(c.ProjectID), ok
	case model.EntityLabour:
		l, ok := s.labourers.get(id)
		return model.Deref(l.ProjectID), ok
	case model.EntityResource:
		r, ok := s.resources.get(id)
		return model.Deref(r.ProjectID), ok
	}
	return "", false
}

func (s *MemStore) setProjectRef(kind model.EntityType, id, projectID string) {
	ref := model.StringPtr(projectID)
	switch kind {
	case model.EntityClient:
		c := s.clients.rows[id]
		c.ProjectID = ref
		s.clients.rows[id] = c
	case model.EntityLabour:
		l := s.labourers.rows[id]
		l.ProjectID = ref
		s.labourers.rows[id] = l
	case model.EntityResource:
		r := s.resources.rows[id]
		r.ProjectID = ref
		s.resources.rows[id] = r
	}
}

// assignLocked moves a member to projectID, leaving any previous project
// first. Unknown members or projects are skipped.
func (s *MemStore) assignLocked(kind model.EntityType, id, projectID string) bool {
	current, ok := s.projectRef(kind, id)
	if !ok {
		s.log.Debug("assign skipped: unknown member", "kind", kind, "id", id)
		return false
	}
	if !s.projects.has(projectID) {
		s.log.Debug("assign skipped: unknown project", "project", projectID)
		return false
	}
	if current == projectID {
		return false
	}
	if current != "" {
		s.links.remove(current, kind, id)
	}
	s.links.add(projectID, kind, id)
	s.setProjectRef(kind, id, projectID)
	return true
}

// unassignLocked clears a member's project. Unassigned or unknown members
// are skipped.
func (s *MemStore) unassignLocked(kind model.EntityType, id string) bool {
	current, ok := s.projectRef(kind, id)
	if !ok || current == "" {
		return false
	}
	s.links.remove(current, kind, id)
	s.setProjectRef(kind, id, "")
	return true
}

// applyProjectRefLocked handles a ProjectID patch field: "" unassigns, any
// other value assigns.
func (s *MemStore) applyProjectRefLocked(kind model.EntityType, id string, f model.Field[string]) {
	if !f.Set {
		return
	}
	if f.Value == "" {
		s.unassignLocked(kind, id)
		return
	}
	s.assignLocked(kind, id, f.Value)
}

// Assign moves a member to a project. Stale ids are ignored.
func (s *MemStore) Assign(_ context.Context, kind model.EntityType, entityID, projectID string) error {
	if !kind.IsMemberKind() {
		return fmt.Errorf("assigning %s: %w", kind, model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assignLocked(kind, entityID, projectID) {
		s.observe(kind, "assign")
	}
	return nil
}

// Unassign clears a member's project. Stale ids are ignored.
func (s *MemStore) Unassign(_ context.Context, kind model.EntityType, entityID string) error {
	if !kind.IsMemberKind() {
		return fmt.Errorf("unassigning %s: %w", kind, model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unassignLocked(kind, entityID) {
		s.observe(kind, "unassign")
	}
	return nil
}
