package model

// Member is the common interface for entities that can be assigned to a
// project. Client, Labourer and Resource implement it.
type Member interface {
	GetID() string
	GetName() string
	Kind() EntityType
	GetProjectID() *string
}

// Client implements Member.

func (c Client) GetID() string         { return c.ID }
func (c Client) GetName() string       { return c.Name }
func (c Client) Kind() EntityType      { return EntityClient }
func (c Client) GetProjectID() *string { return c.ProjectID }

// Labourer implements Member.

func (l Labourer) GetID() string         { return l.ID }
func (l Labourer) GetName() string       { return l.Name }
func (l Labourer) Kind() EntityType      { return EntityLabour }
func (l Labourer) GetProjectID() *string { return l.ProjectID }

// Resource implements Member.

func (r Resource) GetID() string         { return r.ID }
func (r Resource) GetName() string       { return r.Type }
func (r Resource) Kind() EntityType      { return EntityResource }
func (r Resource) GetProjectID() *string { return r.ProjectID }

// Snapshot is a read-only copy of every entity collection, in insertion
// order.
type Snapshot struct {
	Projects  []Project  `json:"projects"`
	Clients   []Client   `json:"clients"`
	Labourers []Labourer `json:"labourers"`
	Resources []Resource `json:"resources"`
}
