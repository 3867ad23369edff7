package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resource is a line of purchased inventory. Remaining is always
// QuantityPurchased minus Used, and Used never exceeds QuantityPurchased.
type Resource struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Unit              string          `json:"unit"`
	QuantityPurchased decimal.Decimal `json:"quantity_purchased"`
	Used              decimal.Decimal `json:"used"`
	Remaining         decimal.Decimal `json:"remaining"`
	PurchaseDate      time.Time       `json:"purchase_date"`
	Price             decimal.Decimal `json:"price"`
	Notes             string          `json:"notes"`
	ProjectID         *string         `json:"project_id,omitempty"`
}

// ResourcePatch carries the fields an update may change. ProjectID set to
// "" unassigns the resource.
type ResourcePatch struct {
	Type              Field[string]          `json:"type"`
	Unit              Field[string]          `json:"unit"`
	QuantityPurchased Field[decimal.Decimal] `json:"quantity_purchased"`
	Used              Field[decimal.Decimal] `json:"used"`
	PurchaseDate      Field[time.Time]       `json:"purchase_date"`
	Price             Field[decimal.Decimal] `json:"price"`
	Notes             Field[string]          `json:"notes"`
	ProjectID         Field[string]          `json:"project_id"`
}
