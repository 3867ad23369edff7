package httpapi

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nhle/siteledger/internal/model"
)

// newValidator returns a validator that understands decimal fields and the
// domain status enums.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Decimals are validated as floats so gte/lte apply.
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	enum := func(valid func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}
	}
	_ = v.RegisterValidation("project_status", enum(func(s string) bool { return model.ProjectStatus(s).Valid() }))
	_ = v.RegisterValidation("labour_status", enum(func(s string) bool { return model.LabourStatus(s).Valid() }))
	_ = v.RegisterValidation("attendance_status", enum(func(s string) bool { return model.AttendanceStatus(s).Valid() }))
	_ = v.RegisterValidation("financial_type", enum(func(s string) bool { return model.FinancialType(s).Valid() }))
	return v
}

// bind decodes the JSON body into dst and validates it.
func (s *Server) bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("decoding request: %v: %w", err, model.ErrValidation)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%v: %w", err, model.ErrValidation)
	}
	return nil
}

// decode reads a patch body. Patches are checked by the store.
func decode(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("decoding request: %v: %w", err, model.ErrValidation)
	}
	return nil
}

func (s *Server) checkVar(field string, value any, tag string) error {
	if err := s.validate.Var(value, tag); err != nil {
		return fmt.Errorf("%s: %v: %w", field, err, model.ErrValidation)
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type assignRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
}

type projectRequest struct {
	Name        string          `json:"name" validate:"required"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Status      string          `json:"status" validate:"omitempty,project_status"`
	Progress    int             `json:"progress" validate:"gte=0,lte=100"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Budget      decimal.Decimal `json:"budget" validate:"gte=0"`
	Notes       string          `json:"notes"`
	ClientIDs   []string        `json:"client_ids" validate:"dive,required"`
	LabourIDs   []string        `json:"labour_ids" validate:"dive,required"`
	ResourceIDs []string        `json:"resource_ids" validate:"dive,required"`
}

func (r projectRequest) model() model.Project {
	return model.Project{
		Name:        r.Name,
		Location:    r.Location,
		Description: r.Description,
		Status:      model.ProjectStatus(r.Status),
		Progress:    r.Progress,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Budget:      r.Budget,
		Notes:       r.Notes,
		ClientIDs:   r.ClientIDs,
		LabourIDs:   r.LabourIDs,
		ResourceIDs: r.ResourceIDs,
	}
}

type financialRecordRequest struct {
	Date             time.Time       `json:"date"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	Type             string          `json:"type" validate:"required,financial_type"`
	Notes            string          `json:"notes"`
	Attachments      []string        `json:"attachments"`
	ResourceType     string          `json:"resource_type"`
	ResourceQuantity decimal.Decimal `json:"resource_quantity" validate:"gte=0"`
}

func (r financialRecordRequest) model() model.FinancialRecord {
	return model.FinancialRecord{
		Date:             r.Date,
		Amount:           r.Amount,
		Type:             model.FinancialType(r.Type),
		Notes:            r.Notes,
		Attachments:      r.Attachments,
		ResourceType:     r.ResourceType,
		ResourceQuantity: r.ResourceQuantity,
	}
}

type clientRequest struct {
	Name             string                   `json:"name" validate:"required"`
	Phone            string                   `json:"phone"`
	Email            string                   `json:"email" validate:"omitempty,email"`
	Address          string                   `json:"address"`
	Notes            string                   `json:"notes"`
	ProjectID        string                   `json:"project_id"`
	FinancialRecords []financialRecordRequest `json:"financial_records" validate:"dive"`
}

func (r clientRequest) model() model.Client {
	c := model.Client{
		Name:      r.Name,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
		Notes:     r.Notes,
		ProjectID: model.StringPtr(r.ProjectID),
	}
	for _, rec := range r.FinancialRecords {
		c.FinancialRecords = append(c.FinancialRecords, rec.model())
	}
	return c
}

const phoneTag = "len=10,numeric"

type labourerRequest struct {
	Name       string    `json:"name" validate:"required"`
	Phone      string    `json:"phone" validate:"required,len=10,numeric"`
	Address    string    `json:"address"`
	DateJoined time.Time `json:"date_joined"`
	Status     string    `json:"status" validate:"omitempty,labour_status"`
	Notes      string    `json:"notes"`
	ProjectID  string    `json:"project_id"`
}

func (r labourerRequest) model() model.Labourer {
	return model.Labourer{
		Name:       r.Name,
		Phone:      r.Phone,
		Address:    r.Address,
		DateJoined: r.DateJoined,
		Status:     model.LabourStatus(r.Status),
		Notes:      r.Notes,
		ProjectID:  model.StringPtr(r.ProjectID),
	}
}

type resourceRequest struct {
	Type              string          `json:"type" validate:"required"`
	Unit              string          `json:"unit" validate:"required"`
	QuantityPurchased decimal.Decimal `json:"quantity_purchased" validate:"gt=0"`
	Used              decimal.Decimal `json:"used" validate:"gte=0"`
	PurchaseDate      time.Time       `json:"purchase_date"`
	Price             decimal.Decimal `json:"price" validate:"gte=0"`
	Notes             string          `json:"notes"`
	ProjectID         string          `json:"project_id"`
}

func (r resourceRequest) model() model.Resource {
	return model.Resource{
		Type:              r.Type,
		Unit:              r.Unit,
		QuantityPurchased: r.QuantityPurchased,
		Used:              r.Used,
		PurchaseDate:      r.PurchaseDate,
		Price:             r.Price,
		Notes:             r.Notes,
		ProjectID:         model.StringPtr(r.ProjectID),
	}
}

type attendanceRequest struct {
	Date        time.Time `json:"date"`
	Status      string    `json:"status" validate:"required,attendance_status"`
	Notes       string    `json:"notes"`
	Attachments []string  `json:"attachments"`
}

func (r attendanceRequest) model() model.AttendanceRecord {
	return model.AttendanceRecord{
		Date:        r.Date,
		Status:      model.AttendanceStatus(r.Status),
		Notes:       r.Notes,
		Attachments: r.Attachments,
	}
}

type paymentRequest struct {
	Date        time.Time       `json:"date"`
	Advance     decimal.Decimal `json:"advance" validate:"gte=0"`
	Paid        decimal.Decimal `json:"paid" validate:"gte=0"`
	Due         decimal.Decimal `json:"due" validate:"gte=0"`
	Notes       string          `json:"notes"`
	Attachments []string        `json:"attachments"`
}

func (r paymentRequest) model() model.LabourPayment {
	return model.LabourPayment{
		Date:        r.Date,
		Advance:     r.Advance,
		Paid:        r.Paid,
		Due:         r.Due,
		Notes:       r.Notes,
		Attachments: r.Attachments,
	}
}
