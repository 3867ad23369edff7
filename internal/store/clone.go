package store

import (
	"slices"

	"github.com/nhle/siteledger/internal/model"
)

// Values handed out by the store never share slices or pointers with its
// internal state.

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneClient(c model.Client) model.Client {
	c.ProjectID = clonePtr(c.ProjectID)
	c.FinancialRecords = slices.Clone(c.FinancialRecords)
	for i := range c.FinancialRecords {
		c.FinancialRecords[i].Attachments = slices.Clone(c.FinancialRecords[i].Attachments)
	}
	c.ResourceUsage = slices.Clone(c.ResourceUsage)
	return c
}

func cloneLabourer(l model.Labourer) model.Labourer {
	l.ProjectID = clonePtr(l.ProjectID)
	l.Attendance = slices.Clone(l.Attendance)
	for i := range l.Attendance {
		l.Attendance[i].Attachments = slices.Clone(l.Attendance[i].Attachments)
	}
	l.Payments = slices.Clone(l.Payments)
	for i := range l.Payments {
		l.Payments[i].Attachments = slices.Clone(l.Payments[i].Attachments)
	}
	return l
}

func cloneResource(r model.Resource) model.Resource {
	r.ProjectID = clonePtr(r.ProjectID)
	return r
}

func (s *MemStore) clientsLocked() []model.Client {
	out := make([]model.Client, 0, s.clients.len())
	for _, c := range s.clients.list() {
		out = append(out, cloneClient(c))
	}
	return out
}

func (s *MemStore) labourersLocked() []model.Labourer {
	out := make([]model.Labourer, 0, s.labourers.len())
	for _, l := range s.labourers.list() {
		out = append(out, cloneLabourer(l))
	}
	return out
}

func (s *MemStore) resourcesLocked() []model.Resource {
	out := make([]model.Resource, 0, s.resources.len())
	for _, r := range s.resources.list() {
		out = append(out, cloneResource(r))
	}
	return out
}
