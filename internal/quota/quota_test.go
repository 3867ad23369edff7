package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/siteledger/internal/model"
)

func files(sizes ...int64) []model.StoredFile {
	out := make([]model.StoredFile, len(sizes))
	for i, s := range sizes {
		out[i] = model.StoredFile{ID: string(rune('a' + i)), Size: s}
	}
	return out
}

func TestCompute(t *testing.T) {
	l := New(1000)

	tests := []struct {
		name     string
		files    []model.StoredFile
		used     int64
		warning  bool
		critical bool
	}{
		{"empty", nil, 0, false, false},
		{"below warning", files(500, 100), 600, false, false},
		{"exactly warning", files(800), 800, true, false},
		{"warning only", files(850), 850, true, false},
		{"critical", files(850, 100), 950, true, true},
		{"full", files(1000), 1000, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := l.Compute(tt.files)
			assert.Equal(t, tt.used, u.Used)
			assert.Equal(t, int64(1000)-tt.used, u.Remaining)
			assert.InDelta(t, float64(tt.used)/1000, u.Ratio, 1e-9)
			assert.Equal(t, tt.warning, u.IsWarning)
			assert.Equal(t, tt.critical, u.IsCritical)
		})
	}
}

func TestUsageFits(t *testing.T) {
	u := New(1000).Compute(files(950))
	assert.True(t, u.Fits(50))
	assert.False(t, u.Fits(100))
	assert.InDelta(t, 95.0, u.Percent(), 1e-9)
}

func TestFromConfig(t *testing.T) {
	l := FromConfig(model.StorageConfig{CapacityBytes: 10})
	assert.Equal(t, DefaultWarningRatio, l.WarningRatio)
	assert.Equal(t, DefaultCriticalRatio, l.CriticalRatio)

	l = FromConfig(model.StorageConfig{CapacityBytes: 10, WarningRatio: 0.5, CriticalRatio: 0.7})
	assert.True(t, l.Compute(files(5)).IsWarning)
	assert.False(t, l.Compute(files(5)).IsCritical)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1048576, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3072 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}
