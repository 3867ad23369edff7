package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabourStatus marks whether a labourer is currently employed.
type LabourStatus string

// Labour status constants.
const (
	LabourActive   LabourStatus = "Active"
	LabourInactive LabourStatus = "Inactive"
)

// Valid reports whether s is a known labour status.
func (s LabourStatus) Valid() bool {
	return s == LabourActive || s == LabourInactive
}

// AttendanceStatus is the outcome of one working day.
type AttendanceStatus string

// Attendance status constants.
const (
	AttendancePresent  AttendanceStatus = "Present"
	AttendanceAbsent   AttendanceStatus = "Absent"
	AttendanceOvertime AttendanceStatus = "Overtime"
	AttendanceHalfDay  AttendanceStatus = "Half day"
)

// Valid reports whether s is one of the known attendance statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceOvertime, AttendanceHalfDay:
		return true
	}
	return false
}

// Labourer is a worker on the company payroll.
type Labourer struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Phone      string       `json:"phone"`
	Address    string       `json:"address"`
	DateJoined time.Time    `json:"date_joined"`
	Status     LabourStatus `json:"status"`
	Notes      string       `json:"notes"`
	ProjectID  *string      `json:"project_id,omitempty"`

	// Attendance and Payments are ordered newest first.
	Attendance []AttendanceRecord `json:"attendance"`
	Payments   []LabourPayment    `json:"payments"`
}

// AttendanceRecord is one day's attendance entry.
type AttendanceRecord struct {
	ID          string           `json:"id"`
	Date        time.Time        `json:"date"`
	Status      AttendanceStatus `json:"status"`
	Notes       string           `json:"notes"`
	Attachments []string         `json:"attachments,omitempty"`
}

// LabourPayment is one entry on a labourer's payment ledger.
type LabourPayment struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Advance     decimal.Decimal `json:"advance"`
	Paid        decimal.Decimal `json:"paid"`
	Due         decimal.Decimal `json:"due"`
	Notes       string          `json:"notes"`
	Attachments []string        `json:"attachments,omitempty"`
}

// LabourerPatch carries the fields an update may change. ProjectID set to
// "" unassigns the labourer.
type LabourerPatch struct {
	Name      Field[string]       `json:"name"`
	Phone     Field[string]       `json:"phone"`
	Address   Field[string]       `json:"address"`
	Status    Field[LabourStatus] `json:"status"`
	Notes     Field[string]       `json:"notes"`
	ProjectID Field[string]       `json:"project_id"`
}

// AttendancePatch carries the fields an attendance update may change.
type AttendancePatch struct {
	Date        Field[time.Time]        `json:"date"`
	Status      Field[AttendanceStatus] `json:"status"`
	Notes       Field[string]           `json:"notes"`
	Attachments Field[[]string]         `json:"attachments"`
}

// LabourPaymentPatch carries the fields a payment update may change.
type LabourPaymentPatch struct {
	Date        Field[time.Time]       `json:"date"`
	Advance     Field[decimal.Decimal] `json:"advance"`
	Paid        Field[decimal.Decimal] `json:"paid"`
	Due         Field[decimal.Decimal] `json:"due"`
	Notes       Field[string]          `json:"notes"`
	Attachments Field[[]string]        `json:"attachments"`
}

// LabourerPaid sums the paid amounts of a labourer's payments.
func LabourerPaid(l Labourer) decimal.Decimal {
	var total decimal.Decimal
	for _, p := range l.Payments {
		total = total.Add(p.Paid)
	}
	return total
}
