package store

import (
	"context"

	"github.com/nhle/siteledger/internal/model"
)

// Store is the single writer of projects, clients, labourers and resources.
// It keeps each member's project back-pointer and the projects' member id
// lists in agreement, and routes record-level changes into the resource
// ledger and the file registry.
//
// Update and record operations addressed at a missing entity return
// model.ErrNotFound. Deletes and assignment changes on stale ids do nothing.
type Store interface {
	// === Projects ===

	CreateProject(ctx context.Context, project model.Project) (model.Project, error)
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	GetProjectByID(ctx context.Context, id string) (model.Project, bool)
	GetProjects(ctx context.Context) []model.Project
	LinkedEntities(ctx context.Context, projectID string) model.ProjectMembers

	// === Clients ===

	CreateClient(ctx context.Context, client model.Client) (model.Client, error)
	UpdateClient(ctx context.Context, id string, patch model.ClientPatch) (model.Client, error)
	DeleteClient(ctx context.Context, id string) error
	GetClientByID(ctx context.Context, id string) (model.Client, bool)
	GetClients(ctx context.Context) []model.Client

	// === Labourers ===

	CreateLabourer(ctx context.Context, labourer model.Labourer) (model.Labourer, error)
	UpdateLabourer(ctx context.Context, id string, patch model.LabourerPatch) (model.Labourer, error)
	DeleteLabourer(ctx context.Context, id string) error
	GetLabourerByID(ctx context.Context, id string) (model.Labourer, bool)
	GetLabourers(ctx context.Context) []model.Labourer

	// === Resources ===

	CreateResource(ctx context.Context, resource model.Resource) (model.Resource, error)
	UpdateResource(ctx context.Context, id string, patch model.ResourcePatch) (model.Resource, error)
	DeleteResource(ctx context.Context, id string) error
	GetResourceByID(ctx context.Context, id string) (model.Resource, bool)
	GetResources(ctx context.Context) []model.Resource

	// === Assignment ===

	Assign(ctx context.Context, kind model.EntityType, entityID, projectID string) error
	Unassign(ctx context.Context, kind model.EntityType, entityID string) error

	// === Client financial records ===

	AddFinancialRecord(ctx context.Context, clientID string, rec model.FinancialRecord) (model.FinancialRecord, error)
	UpdateFinancialRecord(ctx context.Context, clientID, recordID string, patch model.FinancialRecordPatch) (model.FinancialRecord, error)
	DeleteFinancialRecord(ctx context.Context, clientID, recordID string) error

	// === Labour attendance and payments ===

	AddAttendance(ctx context.Context, labourerID string, rec model.AttendanceRecord) (model.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, labourerID, recordID string, patch model.AttendancePatch) (model.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, labourerID, recordID string) error

	AddPayment(ctx context.Context, labourerID string, rec model.LabourPayment) (model.LabourPayment, error)
	UpdatePayment(ctx context.Context, labourerID, recordID string, patch model.LabourPaymentPatch) (model.LabourPayment, error)
	DeletePayment(ctx context.Context, labourerID, recordID string) error

	// === Consistency ===

	CheckConsistency(ctx context.Context) []error
	Snapshot(ctx context.Context) model.Snapshot
}
