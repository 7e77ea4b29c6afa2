package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name, job string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	return findCounter(t, families, name, job)
}

func findCounter(t *testing.T, families []*dto.MetricFamily, name, job string) float64 {
	t.Helper()
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{job=%q} not found", name, job)
	return 0
}

func TestCronJobMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("expire-reservations")
	m.IncSuccess("expire-reservations")
	m.IncFailure("expire-reservations")
	m.AddSwept("expire-reservations", 3)
	m.ObserveDuration("expire-reservations", 150*time.Millisecond)

	if got := gatherCounter(t, reg, "job_success", "expire-reservations"); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := gatherCounter(t, reg, "job_failure", "expire-reservations"); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := gatherCounter(t, reg, "reservations_swept_total", "expire-reservations"); got != 3 {
		t.Fatalf("expected 3 swept, got %v", got)
	}
}

func TestCronJobMetricsNormalizesEmptyJob(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("")
	if got := gatherCounter(t, reg, "job_success", "unknown"); got != 1 {
		t.Fatalf("expected 1 success under unknown, got %v", got)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.IncSuccess("x")
	m.IncFailure("x")
	m.AddSwept("x", 1)
	m.ObserveDuration("x", time.Second)

	unregistered := NewCronJobMetrics(nil)
	unregistered.IncSuccess("x")
}
