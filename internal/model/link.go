package model

import "time"

// EntityType names one of the four first-class record kinds.
type EntityType string

// Entity type constants. Clients, labourers and resources can be members of
// a project; all four can own files.
const (
	EntityClient   EntityType = "client"
	EntityLabour   EntityType = "labour"
	EntityResource EntityType = "resource"
	EntityProject  EntityType = "project"
)

// MemberKinds lists the entity types that can be assigned to a project.
var MemberKinds = []EntityType{EntityClient, EntityLabour, EntityResource}

// IsMemberKind reports whether t can be assigned to a project.
func (t EntityType) IsMemberKind() bool {
	return t == EntityClient || t == EntityLabour || t == EntityResource
}

// FileLink ties a stored file to its owning entity and, optionally, to one
// record on that entity.
type FileLink struct {
	Type     EntityType `json:"type"`
	ID       string     `json:"id"`
	RecordID string     `json:"recordId,omitempty"`
}

// StoredFile is the metadata of an uploaded file. Its JSON shape is the
// persisted app_stored_files blob.
type StoredFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
	LinkedTo   *FileLink `json:"linkedTo,omitempty"`
}
