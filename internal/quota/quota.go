// Package quota computes storage usage against a fixed byte capacity. Usage
// is always derived from the current file list and never cached.
package quota

import (
	"math"
	"strconv"

	"github.com/nhle/siteledger/internal/model"
)

// Default thresholds as usage ratios.
const (
	DefaultWarningRatio  = 0.80
	DefaultCriticalRatio = 0.90
)

// Ledger holds the capacity and thresholds usage is measured against.
type Ledger struct {
	Total         int64
	WarningRatio  float64
	CriticalRatio float64
}

// New returns a ledger with the default thresholds.
func New(total int64) Ledger {
	return Ledger{
		Total:         total,
		WarningRatio:  DefaultWarningRatio,
		CriticalRatio: DefaultCriticalRatio,
	}
}

// FromConfig builds a ledger from the storage section of the app config.
func FromConfig(cfg model.StorageConfig) Ledger {
	l := New(cfg.CapacityBytes)
	if cfg.WarningRatio > 0 {
		l.WarningRatio = cfg.WarningRatio
	}
	if cfg.CriticalRatio > 0 {
		l.CriticalRatio = cfg.CriticalRatio
	}
	return l
}

// Usage is a point-in-time view of consumed storage.
type Usage struct {
	Total      int64   `json:"total"`
	Used       int64   `json:"used"`
	Remaining  int64   `json:"remaining"`
	Ratio      float64 `json:"ratio"`
	IsWarning  bool    `json:"is_warning"`
	IsCritical bool    `json:"is_critical"`
}

// Percent returns the usage ratio scaled to 0-100.
func (u Usage) Percent() float64 {
	return u.Ratio * 100
}

// Fits reports whether size more bytes can be stored.
func (u Usage) Fits(size int64) bool {
	return u.Remaining >= size
}

// Compute sums the file sizes and derives the usage flags.
func (l Ledger) Compute(files []model.StoredFile) Usage {
	var used int64
	for _, f := range files {
		used += f.Size
	}

	u := Usage{
		Total:     l.Total,
		Used:      used,
		Remaining: l.Total - used,
	}
	if l.Total > 0 {
		u.Ratio = float64(used) / float64(l.Total)
	} else if used > 0 {
		u.Ratio = 1
	}
	u.IsWarning = u.Ratio >= l.WarningRatio
	u.IsCritical = u.Ratio >= l.CriticalRatio
	return u
}

var units = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders b in base-1024 units rounded to two decimals, e.g.
// "0 Bytes", "1.5 KB", "5 GB". Values beyond GB stay in GB.
func FormatBytes(b int64) string {
	if b <= 0 {
		return "0 Bytes"
	}

	k := 0
	div := float64(1)
	for k < len(units)-1 && float64(b) >= div*1024 {
		div *= 1024
		k++
	}

	v := math.Round(float64(b)/div*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[k]
}
