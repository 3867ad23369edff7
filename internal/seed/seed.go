// Package seed loads the bundled sample data through the store so every
// link and ledger rule applies to it.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/store"
)

//go:embed mock.yaml
var mockYAML []byte

const dateLayout = "2006-01-02"

// Data is the seed document. Entities reference projects by Key.
type Data struct {
	Projects  []Project  `yaml:"projects"`
	Resources []Resource `yaml:"resources"`
	Clients   []Client   `yaml:"clients"`
	Labourers []Labourer `yaml:"labourers"`
}

type Project struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Progress    int    `yaml:"progress"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
	Budget      string `yaml:"budget"`
	Notes       string `yaml:"notes"`
}

type Resource struct {
	Type              string `yaml:"type"`
	Unit              string `yaml:"unit"`
	QuantityPurchased string `yaml:"quantity_purchased"`
	PurchaseDate      string `yaml:"purchase_date"`
	Price             string `yaml:"price"`
	Notes             string `yaml:"notes"`
	Project           string `yaml:"project"`
}

type Client struct {
	Name      string   `yaml:"name"`
	Phone     string   `yaml:"phone"`
	Email     string   `yaml:"email"`
	Address   string   `yaml:"address"`
	DateAdded string   `yaml:"date_added"`
	Notes     string   `yaml:"notes"`
	Project   string   `yaml:"project"`
	Records   []Record `yaml:"records"`
}

type Record struct {
	Date             string `yaml:"date"`
	Amount           string `yaml:"amount"`
	Type             string `yaml:"type"`
	Notes            string `yaml:"notes"`
	ResourceType     string `yaml:"resource_type"`
	ResourceQuantity string `yaml:"resource_quantity"`
}

type Labourer struct {
	Name       string       `yaml:"name"`
	Phone      string       `yaml:"phone"`
	Address    string       `yaml:"address"`
	DateJoined string       `yaml:"date_joined"`
	Status     string       `yaml:"status"`
	Notes      string       `yaml:"notes"`
	Project    string       `yaml:"project"`
	Attendance []Attendance `yaml:"attendance"`
	Payments   []Payment    `yaml:"payments"`
}

type Attendance struct {
	Date   string `yaml:"date"`
	Status string `yaml:"status"`
	Notes  string `yaml:"notes"`
}

type Payment struct {
	Date    string `yaml:"date"`
	Advance string `yaml:"advance"`
	Paid    string `yaml:"paid"`
	Due     string `yaml:"due"`
	Notes   string `yaml:"notes"`
}

// Summary counts what Load created.
type Summary struct {
	Projects  int
	Clients   int
	Labourers int
	Resources int
}

// Parse decodes a seed document.
func Parse(b []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Data{}, fmt.Errorf("parsing seed data: %w", err)
	}
	return d, nil
}

// Default returns the bundled sample data.
func Default() (Data, error) {
	return Parse(mockYAML)
}

// Load creates every entity in d through st. Projects come first so members
// can be assigned on creation, and resources before clients so their
// records consume stock.
func Load(ctx context.Context, st store.Store, d Data, log *logger.Logger) (Summary, error) {
	log = logger.OrNop(log)
	var sum Summary
	projectIDs := make(map[string]string, len(d.Projects))

	projectRef := func(key string) (*string, error) {
		if key == "" {
			return nil, nil
		}
		id, ok := projectIDs[key]
		if !ok {
			return nil, fmt.Errorf("unknown project key %q", key)
		}
		return &id, nil
	}

	for _, p := range d.Projects {
		var c conv
		project := model.Project{
			Name:        p.Name,
			Location:    p.Location,
			Description: p.Description,
			Status:      model.ProjectStatus(p.Status),
			Progress:    p.Progress,
			StartDate:   c.date(p.StartDate),
			EndDate:     c.date(p.EndDate),
			Budget:      c.decimal(p.Budget),
			Notes:       p.Notes,
		}
		if c.err != nil {
			return sum, fmt.Errorf("seeding project %q: %w", p.Name, c.err)
		}
		created, err := st.CreateProject(ctx, project)
		if err != nil {
			return sum, fmt.Errorf("seeding project %q: %w", p.Name, err)
		}
		if p.Key != "" {
			projectIDs[p.Key] = created.ID
		}
		sum.Projects++
	}

	for _, r := range d.Resources {
		var c conv
		ref, err := projectRef(r.Project)
		if err != nil {
			return sum, fmt.Errorf("seeding resource %q: %w", r.Type, err)
		}
		resource := model.Resource{
			Type:              r.Type,
			Unit:              r.Unit,
			QuantityPurchased: c.decimal(r.QuantityPurchased),
			PurchaseDate:      c.date(r.PurchaseDate),
			Price:             c.decimal(r.Price),
			Notes:             r.Notes,
			ProjectID:         ref,
		}
		if c.err != nil {
			return sum, fmt.Errorf("seeding resource %q: %w", r.Type, c.err)
		}
		if _, err := st.CreateResource(ctx, resource); err != nil {
			return sum, fmt.Errorf("seeding resource %q: %w", r.Type, err)
		}
		sum.Resources++
	}

	for _, cl := range d.Clients {
		var c conv
		ref, err := projectRef(cl.Project)
		if err != nil {
			return sum, fmt.Errorf("seeding client %q: %w", cl.Name, err)
		}
		client := model.Client{
			Name:      cl.Name,
			Phone:     cl.Phone,
			Email:     cl.Email,
			Address:   cl.Address,
			DateAdded: c.date(cl.DateAdded),
			Notes:     cl.Notes,
			ProjectID: ref,
		}
		for _, r := range cl.Records {
			client.FinancialRecords = append(client.FinancialRecords, model.FinancialRecord{
				Date:             c.date(r.Date),
				Amount:           c.decimal(r.Amount),
				Type:             model.FinancialType(r.Type),
				Notes:            r.Notes,
				ResourceType:     r.ResourceType,
				ResourceQuantity: c.decimal(r.ResourceQuantity),
			})
		}
		if c.err != nil {
			return sum, fmt.Errorf("seeding client %q: %w", cl.Name, c.err)
		}
		if _, err := st.CreateClient(ctx, client); err != nil {
			return sum, fmt.Errorf("seeding client %q: %w", cl.Name, err)
		}
		sum.Clients++
	}

	for _, l := range d.Labourers {
		var c conv
		ref, err := projectRef(l.Project)
		if err != nil {
			return sum, fmt.Errorf("seeding labourer %q: %w", l.Name, err)
		}
		labourer := model.Labourer{
			Name:       l.Name,
			Phone:      l.Phone,
			Address:    l.Address,
			DateJoined: c.date(l.DateJoined),
			Status:     model.LabourStatus(l.Status),
			Notes:      l.Notes,
			ProjectID:  ref,
		}
		for _, a := range l.Attendance {
			labourer.Attendance = append(labourer.Attendance, model.AttendanceRecord{
				Date:   c.date(a.Date),
				Status: model.AttendanceStatus(a.Status),
				Notes:  a.Notes,
			})
		}
		for _, p := range l.Payments {
			labourer.Payments = append(labourer.Payments, model.LabourPayment{
				Date:    c.date(p.Date),
				Advance: c.decimal(p.Advance),
				Paid:    c.decimal(p.Paid),
				Due:     c.decimal(p.Due),
				Notes:   p.Notes,
			})
		}
		if c.err != nil {
			return sum, fmt.Errorf("seeding labourer %q: %w", l.Name, c.err)
		}
		if _, err := st.CreateLabourer(ctx, labourer); err != nil {
			return sum, fmt.Errorf("seeding labourer %q: %w", l.Name, err)
		}
		sum.Labourers++
	}

	log.Info("seed data loaded",
		"projects", sum.Projects, "clients", sum.Clients,
		"labourers", sum.Labourers, "resources", sum.Resources)
	return sum, nil
}

// conv parses seed scalars, keeping the first error.
type conv struct {
	err error
}

func (c *conv) date(s string) time.Time {
	if s == "" || c.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		c.err = fmt.Errorf("date %q: %w", s, err)
	}
	return t
}

func (c *conv) decimal(s string) decimal.Decimal {
	if s == "" || c.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		c.err = fmt.Errorf("number %q: %w", s, err)
	}
	return d
}
