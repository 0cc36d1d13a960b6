package sds011dash

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsFromReporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	deliverer := &fakeDeliverer{}
	reporter := NewReporter(deliverer, nil, metrics, nil)

	table, _ := TableFor(PM10)
	band, _ := table.Classify(260)
	reporter.Report(context.Background(), PM10, 260, band, table)

	if got := testutil.ToFloat64(metrics.reading.WithLabelValues("10")); got != 260 {
		t.Errorf("reading gauge %v", got)
	}
	if got := testutil.ToFloat64(metrics.band.WithLabelValues("10")); got != 3 {
		t.Errorf("band gauge %v, Unhealthy is index 3", got)
	}
	if got := testutil.ToFloat64(metrics.reports.WithLabelValues("10", "ok")); got != 1 {
		t.Errorf("ok reports %v", got)
	}

	deliverer.err = errors.New("down")
	reporter.Report(context.Background(), PM10, 260, band, table)
	if got := testutil.ToFloat64(metrics.reports.WithLabelValues("10", "error")); got != 1 {
		t.Errorf("failed reports %v", got)
	}
}

func TestMetricsQuietFetches(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	src := &fakeQuietSource{err: errors.New("refused")}
	q := NewQuietHours(src, nil, metrics)
	q.MaybeRefresh(context.Background(), at(17, 12, 0))
	if got := testutil.ToFloat64(metrics.quietFetches.WithLabelValues("error")); got != 1 {
		t.Errorf("quiet fetch errors %v", got)
	}
	if n := testutil.CollectAndCount(metrics.quietFetches); n != 1 {
		t.Errorf("expected one quiet fetch series, got %v", n)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.reported(PM25, true)
	m.frameRead("ok")
	m.quietFetched(false)
	m.setQuiet(true)
	m.observeCycle(1)
	table, _ := TableFor(PM25)
	m.classified(PM25, 1, table, table.Bands()[0])
}
