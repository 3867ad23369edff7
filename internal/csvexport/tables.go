package csvexport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
)

// Kinds lists the exportable tables.
var Kinds = []string{"projects", "clients", "labourers", "resources", "files"}

const dateLayout = "2006-01-02"

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Build returns the table for kind.
func Build(kind string, snap model.Snapshot, files []model.StoredFile) (Table, error) {
	projectNames := make(map[string]string, len(snap.Projects))
	for _, p := range snap.Projects {
		projectNames[p.ID] = p.Name
	}
	project := func(id *string) string { return projectNames[model.Deref(id)] }

	switch kind {
	case "projects":
		return projectTable(snap.Projects), nil
	case "clients":
		return clientTable(snap.Clients, project), nil
	case "labourers":
		return labourerTable(snap.Labourers, project), nil
	case "resources":
		return resourceTable(snap.Resources, project), nil
	case "files":
		return fileTable(files), nil
	}
	return Table{}, fmt.Errorf("unknown export %q: %w", kind, model.ErrValidation)
}

func projectTable(projects []model.Project) Table {
	t := Table{Name: "Projects", Columns: []Column{
		{"name", "Name"}, {"location", "Location"}, {"status", "Status"},
		{"progress", "Progress (%)"}, {"start", "Start Date"}, {"end", "End Date"},
		{"budget", "Budget"}, {"clients", "Clients"}, {"labourers", "Labourers"},
		{"resources", "Resources"}, {"notes", "Notes"},
	}}
	for _, p := range projects {
		t.Rows = append(t.Rows, Row{
			"name":      p.Name,
			"location":  p.Location,
			"status":    string(p.Status),
			"progress":  strconv.Itoa(p.Progress),
			"start":     date(p.StartDate),
			"end":       date(p.EndDate),
			"budget":    p.Budget.StringFixed(2),
			"clients":   strconv.Itoa(len(p.ClientIDs)),
			"labourers": strconv.Itoa(len(p.LabourIDs)),
			"resources": strconv.Itoa(len(p.ResourceIDs)),
			"notes":     p.Notes,
		})
	}
	return t
}

func clientTable(clients []model.Client, project func(*string) string) Table {
	t := Table{Name: "Clients", Columns: []Column{
		{"name", "Name"}, {"phone", "Phone"}, {"email", "Email"}, {"address", "Address"},
		{"project", "Project"}, {"added", "Date Added"}, {"received", "Total Received"},
		{"due", "Total Due"}, {"notes", "Notes"},
	}}
	for _, c := range clients {
		received, due := model.ClientTotals(c)
		t.Rows = append(t.Rows, Row{
			"name":     c.Name,
			"phone":    c.Phone,
			"email":    c.Email,
			"address":  c.Address,
			"project":  project(c.ProjectID),
			"added":    date(c.DateAdded),
			"received": received.StringFixed(2),
			"due":      due.StringFixed(2),
			"notes":    c.Notes,
		})
	}
	return t
}

func labourerTable(labourers []model.Labourer, project func(*string) string) Table {
	t := Table{Name: "Labourers", Columns: []Column{
		{"name", "Name"}, {"phone", "Phone"}, {"address", "Address"}, {"status", "Status"},
		{"project", "Project"}, {"joined", "Date Joined"}, {"present", "Days Present"},
		{"paid", "Total Paid"}, {"notes", "Notes"},
	}}
	for _, l := range labourers {
		present := 0
		for _, a := range l.Attendance {
			if a.Status == model.AttendancePresent || a.Status == model.AttendanceOvertime {
				present++
			}
		}
		paid := model.LabourerPaid(l)
		t.Rows = append(t.Rows, Row{
			"name":    l.Name,
			"phone":   l.Phone,
			"address": l.Address,
			"status":  string(l.Status),
			"project": project(l.ProjectID),
			"joined":  date(l.DateJoined),
			"present": strconv.Itoa(present),
			"paid":    paid.StringFixed(2),
			"notes":   l.Notes,
		})
	}
	return t
}

func resourceTable(resources []model.Resource, project func(*string) string) Table {
	t := Table{Name: "Resources", Columns: []Column{
		{"type", "Type"}, {"unit", "Unit"}, {"purchased", "Purchased"}, {"used", "Used"},
		{"remaining", "Remaining"}, {"price", "Price"}, {"date", "Purchase Date"},
		{"project", "Project"}, {"notes", "Notes"},
	}}
	for _, r := range resources {
		t.Rows = append(t.Rows, Row{
			"type":      r.Type,
			"unit":      r.Unit,
			"purchased": r.QuantityPurchased.String(),
			"used":      r.Used.String(),
			"remaining": r.Remaining.String(),
			"price":     r.Price.StringFixed(2),
			"date":      date(r.PurchaseDate),
			"project":   project(r.ProjectID),
			"notes":     r.Notes,
		})
	}
	return t
}

func fileTable(files []model.StoredFile) Table {
	t := Table{Name: "Files", Columns: []Column{
		{"name", "Name"}, {"type", "Type"}, {"size", "Size"}, {"uploaded", "Uploaded"},
		{"linked", "Linked To"},
	}}
	for _, f := range files {
		linked := ""
		if f.LinkedTo != nil {
			parts := []string{string(f.LinkedTo.Type), f.LinkedTo.ID}
			if f.LinkedTo.RecordID != "" {
				parts = append(parts, f.LinkedTo.RecordID)
			}
			linked = strings.Join(parts, "/")
		}
		t.Rows = append(t.Rows, Row{
			"name":     f.Name,
			"type":     f.Type,
			"size":     quota.FormatBytes(f.Size),
			"uploaded": f.UploadedAt.Format(time.RFC3339),
			"linked":   linked,
		})
	}
	return t
}
