package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/nhle/siteledger/internal/model"
)

// CreateProject adds a project and assigns every listed member to it.
// Members already on another project move here; unknown ids are skipped.
func (s *MemStore) CreateProject(ctx context.Context, project model.Project) (model.Project, error) {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.Status == "" {
		project.Status = model.ProjectPlanning
	}
	if !project.Status.Valid() {
		return model.Project{}, fmt.Errorf("creating project: status %q: %w", project.Status, model.ErrValidation)
	}
	if err := checkProject(project); err != nil {
		return model.Project{}, fmt.Errorf("creating project: %w", err)
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projects.has(project.ID) {
		return model.Project{}, fmt.Errorf("creating project: id %s already exists: %w", project.ID, model.ErrValidation)
	}

	members := make(map[model.EntityType][]string, len(model.MemberKinds))
	for _, kind := range model.MemberKinds {
		members[kind] = project.MemberIDs(kind)
	}
	project.ClientIDs, project.LabourIDs, project.ResourceIDs = nil, nil, nil
	s.projects.put(project.ID, project)

	for _, kind := range model.MemberKinds {
		for _, id := range members[kind] {
			s.assignLocked(kind, id, project.ID)
		}
	}

	s.log.Info("project created", "id", project.ID, "name", project.Name)
	s.observe(model.EntityProject, "create")
	return s.projectLocked(project.ID), nil
}

// UpdateProject applies patch. A set member id list replaces the project's
// membership of that kind: dropped ids are unassigned, new ids assigned.
func (s *MemStore) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error) {
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return model.Project{}, fmt.Errorf("updating project %s: status %q: %w", id, patch.Status.Value, model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects.get(id)
	if !ok {
		return model.Project{}, fmt.Errorf("updating project %s: %w", id, model.ErrNotFound)
	}

	patch.Name.Apply(&p.Name)
	patch.Location.Apply(&p.Location)
	patch.Description.Apply(&p.Description)
	patch.Status.Apply(&p.Status)
	patch.Progress.Apply(&p.Progress)
	patch.StartDate.Apply(&p.StartDate)
	patch.EndDate.Apply(&p.EndDate)
	patch.Budget.Apply(&p.Budget)
	patch.Notes.Apply(&p.Notes)
	if err := checkProject(p); err != nil {
		return model.Project{}, fmt.Errorf("updating project %s: %w", id, err)
	}
	s.projects.put(id, p)

	for _, kind := range model.MemberKinds {
		f := patch.MemberIDs(kind)
		if !f.Set {
			continue
		}
		for _, old := range s.links.members(id, kind) {
			if !slices.Contains(f.Value, old) {
				s.unassignLocked(kind, old)
			}
		}
		for _, next := range f.Value {
			s.assignLocked(kind, next, id)
		}
	}

	s.log.Info("project updated", "id", id)
	s.observe(model.EntityProject, "update")
	return s.projectLocked(id), nil
}

// DeleteProject unassigns every member, removes files linked to the
// project, and drops it. Members themselves are kept.
func (s *MemStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.projects.has(id) {
		return nil
	}
	if err := s.deleteFiles(ctx, s.linkedFileIDs(model.EntityProject, id, "")); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}

	for _, kind := range model.MemberKinds {
		for _, member := range s.links.members(id, kind) {
			s.unassignLocked(kind, member)
		}
	}
	delete(s.links, id)
	s.projects.remove(id)

	s.log.Info("project deleted", "id", id)
	s.observe(model.EntityProject, "delete")
	return nil
}

// GetProjectByID returns the project with its member ids filled in.
func (s *MemStore) GetProjectByID(_ context.Context, id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.projects.has(id) {
		return model.Project{}, false
	}
	return s.projectLocked(id), true
}

// GetProjects returns all projects in creation order.
func (s *MemStore) GetProjects(_ context.Context) []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectsLocked()
}

// LinkedEntities returns the members assigned to a project, read from the
// link index alone.
func (s *MemStore) LinkedEntities(_ context.Context, projectID string) model.ProjectMembers {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out model.ProjectMembers
	for _, id := range s.links.members(projectID, model.EntityClient) {
		if c, ok := s.clients.get(id); ok {
			out.Clients = append(out.Clients, cloneClient(c))
		}
	}
	for _, id := range s.links.members(projectID, model.EntityLabour) {
		if l, ok := s.labourers.get(id); ok {
			out.Labourers = append(out.Labourers, cloneLabourer(l))
		}
	}
	for _, id := range s.links.members(projectID, model.EntityResource) {
		if r, ok := s.resources.get(id); ok {
			out.Resources = append(out.Resources, cloneResource(r))
		}
	}
	return out
}

func (s *MemStore) projectLocked(id string) model.Project {
	p := s.projects.rows[id]
	p.ClientIDs = s.links.members(id, model.EntityClient)
	p.LabourIDs = s.links.members(id, model.EntityLabour)
	p.ResourceIDs = s.links.members(id, model.EntityResource)
	return p
}

func (s *MemStore) projectsLocked() []model.Project {
	out := make([]model.Project, 0, s.projects.len())
	for _, id := range s.projects.order {
		out = append(out, s.projectLocked(id))
	}
	return out
}

// checkProject enforces progress in [0, 100] and a non-negative budget.
func checkProject(p model.Project) error {
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("progress %d outside 0..100: %w", p.Progress, model.ErrValidation)
	}
	if p.Budget.IsNegative() {
		return fmt.Errorf("budget %s is negative: %w", p.Budget, model.ErrValidation)
	}
	return nil
}
