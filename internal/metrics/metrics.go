// Package metrics exposes storage usage and mutation counts to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
)

const namespace = "siteledger"

// Metrics owns a registry with the application's collectors.
type Metrics struct {
	Registry *prometheus.Registry

	mutations *prometheus.CounterVec
	uploads   *prometheus.CounterVec
	logins    *prometheus.CounterVec
}

// New registers the collectors. usage is read on every scrape.
func New(usage func() quota.Usage) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Committed store mutations by entity and operation",
		}, []string{"entity", "op"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "results_total",
			Help:      "Finished uploads by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.mutations, m.uploads, m.logins,
		newQuotaCollector(usage),
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveMutation counts a committed store mutation. It has the shape of a
// store.MutationHook.
func (m *Metrics) ObserveMutation(entity model.EntityType, op string) {
	m.mutations.WithLabelValues(string(entity), op).Inc()
}

// ObserveUpload counts an upload outcome.
func (m *Metrics) ObserveUpload(err error) {
	m.uploads.WithLabelValues(uploadOutcome(err)).Inc()
}

// ObserveLogin counts a login attempt.
func (m *Metrics) ObserveLogin(ok bool) {
	result := "rejected"
	if ok {
		result = "ok"
	}
	m.logins.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return "stored"
	case errors.Is(err, model.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, model.ErrUploadAborted):
		return "aborted"
	case errors.Is(err, model.ErrCompressionFailed):
		return "compression_failed"
	default:
		return "error"
	}
}

// quotaCollector reports storage usage computed at scrape time.
type quotaCollector struct {
	usage    func() quota.Usage
	used     *prometheus.Desc
	capacity *prometheus.Desc
	ratio    *prometheus.Desc
	warning  *prometheus.Desc
	critical *prometheus.Desc
}

func newQuotaCollector(usage func() quota.Usage) *quotaCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "storage", name), help, nil, nil)
	}
	return &quotaCollector{
		usage:    usage,
		used:     desc("used_bytes", "Bytes held by stored files"),
		capacity: desc("capacity_bytes", "Storage capacity in bytes"),
		ratio:    desc("usage_ratio", "Used bytes over capacity"),
		warning:  desc("warning", "1 when usage is at or above the warning threshold"),
		critical: desc("critical", "1 when usage is at or above the critical threshold"),
	}
}

func (c *quotaCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.used
	ch <- c.capacity
	ch <- c.ratio
	ch <- c.warning
	ch <- c.critical
}

func (c *quotaCollector) Collect(ch chan<- prometheus.Metric) {
	u := c.usage()
	ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(u.Used))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(u.Total))
	ch <- prometheus.MustNewConstMetric(c.ratio, prometheus.GaugeValue, u.Ratio)
	ch <- prometheus.MustNewConstMetric(c.warning, prometheus.GaugeValue, boolFloat(u.IsWarning))
	ch <- prometheus.MustNewConstMetric(c.critical, prometheus.GaugeValue, boolFloat(u.IsCritical))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
