package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialType distinguishes money received from money owed.
type FinancialType string

// Financial record type constants.
const (
	FinancialReceived FinancialType = "Received"
	FinancialDue      FinancialType = "Due"
)

// Valid reports whether t is one of the known financial types.
func (t FinancialType) Valid() bool {
	return t == FinancialReceived || t == FinancialDue
}

// Client is a customer of the company.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	DateAdded time.Time `json:"date_added"`
	Notes     string    `json:"notes"`
	ProjectID *string   `json:"project_id,omitempty"`

	// FinancialRecords is ordered newest first.
	FinancialRecords []FinancialRecord `json:"financial_records"`

	// ResourceUsage is a display summary only. Inventory is tracked on the
	// Resource itself.
	ResourceUsage []ResourceUsage `json:"resource_usage,omitempty"`
}

// FinancialRecord is one payment event on a client's ledger. When
// ResourceType is set the event also consumes ResourceQuantity units of
// that resource.
type FinancialRecord struct {
	ID               string          `json:"id"`
	Date             time.Time       `json:"date"`
	Amount           decimal.Decimal `json:"amount"`
	Type             FinancialType   `json:"type"`
	Notes            string          `json:"notes"`
	Attachments      []string        `json:"attachments,omitempty"`
	ResourceType     string          `json:"resource_type,omitempty"`
	ResourceQuantity decimal.Decimal `json:"resource_quantity"`
}

// ConsumesResource reports whether the record is a consumption event.
func (r FinancialRecord) ConsumesResource() bool {
	return r.ResourceType != "" && r.ResourceQuantity.IsPositive()
}

// ResourceUsage summarises material handed to a client.
type ResourceUsage struct {
	ResourceType string          `json:"resource_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         time.Time       `json:"date"`
}

// ClientPatch carries the fields an update may change. ProjectID set to ""
// unassigns the client.
type ClientPatch struct {
	Name      Field[string] `json:"name"`
	Phone     Field[string] `json:"phone"`
	Email     Field[string] `json:"email"`
	Address   Field[string] `json:"address"`
	Notes     Field[string] `json:"notes"`
	ProjectID Field[string] `json:"project_id"`
}

// FinancialRecordPatch carries the fields a record update may change.
type FinancialRecordPatch struct {
	Date             Field[time.Time]       `json:"date"`
	Amount           Field[decimal.Decimal] `json:"amount"`
	Type             Field[FinancialType]   `json:"type"`
	Notes            Field[string]          `json:"notes"`
	Attachments      Field[[]string]        `json:"attachments"`
	ResourceType     Field[string]          `json:"resource_type"`
	ResourceQuantity Field[decimal.Decimal] `json:"resource_quantity"`
}

// ClientTotals sums a client's received and due amounts.
func ClientTotals(c Client) (received, due decimal.Decimal) {
	for _, r := range c.FinancialRecords {
		switch r.Type {
		case FinancialReceived:
			received = received.Add(r.Amount)
		case FinancialDue:
			due = due.Add(r.Amount)
		}
	}
	return received, due
}
