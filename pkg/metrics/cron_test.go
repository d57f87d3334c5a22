package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "open-visit-watchdog"

	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)
	metrics.IncFailure(job)

	if got := testutil.ToFloat64(metrics.success.WithLabelValues(job)); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.failure.WithLabelValues(job)); got != 2 {
		t.Fatalf("expected failure=2, got %f", got)
	}

	count, err := testutil.GatherAndCount(reg, "fieldmark_cron_job_duration_seconds")
	if err != nil {
		t.Fatalf("gather histogram: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one duration series, got %d", count)
	}
}

func TestCronJobMetricsNoopWithoutRegistry(t *testing.T) {
	metrics := NewCronJobMetrics(nil)

	// Must not panic when the metrics were never registered.
	metrics.ObserveDuration("job", time.Second)
	metrics.IncSuccess("job")
	metrics.IncFailure("job")

	var nilMetrics *CronJobMetrics
	nilMetrics.IncSuccess("job")
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := normalizeLabel("hours-report"); got != "hours-report" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
