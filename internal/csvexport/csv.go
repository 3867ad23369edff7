// Package csvexport renders entity lists as CSV downloads.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/gosimple/slug"
)

// Column maps a row key to its header text.
type Column struct {
	Key    string
	Header string
}

// Row holds one line's values by column key. Missing keys render empty.
type Row map[string]string

// Table is a set of columns and the rows rendered under them.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// Write renders the header line and rows. Fields containing a comma, quote
// or newline are quoted, with embedded quotes doubled.
func Write(w io.Writer, columns []Column, rows []Row) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	record := make([]string, len(columns))
	for n, row := range rows {
		for i, c := range columns {
			record[i] = row[c.Key]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", n+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteTable writes t.
func WriteTable(w io.Writer, t Table) error {
	return Write(w, t.Columns, t.Rows)
}

// Filename returns "<slug>_<YYYY-MM-DD>.csv".
func Filename(name string, now time.Time) string {
	base := slug.Make(name)
	if base == "" {
		base = "export"
	}
	return base + "_" + now.Format("2006-01-02") + ".csv"
}
