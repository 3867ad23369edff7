package metrics

import (
	"fmt"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
)

func TestQuotaCollectorReadsAtScrape(t *testing.T) {
	files := []model.StoredFile{{Size: 850}}
	ledger := quota.New(1000)
	m := New(func() quota.Usage { return ledger.Compute(files) })

	expected := `
# HELP siteledger_storage_used_bytes Bytes held by stored files
# TYPE siteledger_storage_used_bytes gauge
siteledger_storage_used_bytes %d
# HELP siteledger_storage_critical 1 when usage is at or above the critical threshold
# TYPE siteledger_storage_critical gauge
siteledger_storage_critical %d
`
	require.NoError(t, promtest.GatherAndCompare(m.Registry,
		strings.NewReader(fmt.Sprintf(expected, 850, 0)),
		"siteledger_storage_used_bytes", "siteledger_storage_critical"))

	files = append(files, model.StoredFile{Size: 100})
	require.NoError(t, promtest.GatherAndCompare(m.Registry,
		strings.NewReader(fmt.Sprintf(expected, 950, 1)),
		"siteledger_storage_used_bytes", "siteledger_storage_critical"))
}

func TestCounters(t *testing.T) {
	m := New(func() quota.Usage { return quota.Usage{} })

	m.ObserveMutation(model.EntityClient, "create")
	m.ObserveMutation(model.EntityClient, "create")
	m.ObserveUpload(nil)
	m.ObserveUpload(fmt.Errorf("wrapped: %w", model.ErrQuotaExceeded))
	m.ObserveLogin(false)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.mutations.WithLabelValues("client", "create")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.uploads.WithLabelValues("stored")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.uploads.WithLabelValues("quota_exceeded")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.logins.WithLabelValues("rejected")))
}
