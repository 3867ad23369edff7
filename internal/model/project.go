package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus is the lifecycle stage of a construction project.
type ProjectStatus string

// Project status constants.
const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectOngoing   ProjectStatus = "Ongoing"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectOnHold    ProjectStatus = "On Hold"
)

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectOngoing, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Project is a construction job that clients, labourers and resources
// are assigned to.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Status      ProjectStatus   `json:"status"`
	Progress    int             `json:"progress"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Budget      decimal.Decimal `json:"budget"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`

	// Member ids are read from the store's link index. On create they are
	// applied as assignments; they are never stored independently.
	ClientIDs   []string `json:"client_ids"`
	LabourIDs   []string `json:"labour_ids"`
	ResourceIDs []string `json:"resource_ids"`
}

// MemberIDs returns the member id slice for the given kind.
func (p Project) MemberIDs(kind EntityType) []string {
	switch kind {
	case EntityClient:
		return p.ClientIDs
	case EntityLabour:
		return p.LabourIDs
	case EntityResource:
		return p.ResourceIDs
	}
	return nil
}

// ProjectPatch carries the fields an update may change. Member id fields,
// when set, replace the project's membership for that kind.
type ProjectPatch struct {
	Name        Field[string]          `json:"name"`
	Location    Field[string]          `json:"location"`
	Description Field[string]          `json:"description"`
	Status      Field[ProjectStatus]   `json:"status"`
	Progress    Field[int]             `json:"progress"`
	StartDate   Field[time.Time]       `json:"start_date"`
	EndDate     Field[time.Time]       `json:"end_date"`
	Budget      Field[decimal.Decimal] `json:"budget"`
	Notes       Field[string]          `json:"notes"`

	ClientIDs   Field[[]string] `json:"client_ids"`
	LabourIDs   Field[[]string] `json:"labour_ids"`
	ResourceIDs Field[[]string] `json:"resource_ids"`
}

// MemberIDs returns the member id field for the given kind.
func (p ProjectPatch) MemberIDs(kind EntityType) Field[[]string] {
	switch kind {
	case EntityClient:
		return p.ClientIDs
	case EntityLabour:
		return p.LabourIDs
	case EntityResource:
		return p.ResourceIDs
	}
	return Field[[]string]{}
}

// ProjectMembers holds the entities currently assigned to a project.
type ProjectMembers struct {
	Clients   []Client   `json:"clients"`
	Labourers []Labourer `json:"labourers"`
	Resources []Resource `json:"resources"`
}
