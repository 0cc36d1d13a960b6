package sds011dash

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics methods are safe on nil receiver, metrics are optional
type Metrics struct {
	reading       *prometheus.GaugeVec
	band          *prometheus.GaugeVec
	reports       *prometheus.CounterVec
	frames        *prometheus.CounterVec
	quietFetches  *prometheus.CounterVec
	quietActive   prometheus.Gauge
	cycleDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sds011_pm_ugm3",
			Help: "Latest particulate reading in µg/m³.",
		}, []string{"channel"}),
		band: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sds011_aqi_band",
			Help: "Index of the air quality band of the latest reading, 0 is Good.",
		}, []string{"channel"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sds011_reports_total",
			Help: "Dashboard deliveries by result.",
		}, []string{"channel", "result"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sds011_frames_total",
			Help: "Sensor frames read by result.",
		}, []string{"result"}),
		quietFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sds011_quiet_fetches_total",
			Help: "Quiet hours fetch attempts by result.",
		}, []string{"result"}),
		quietActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sds011_quiet_active",
			Help: "1 while polling is suppressed by quiet hours.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sds011_cycle_duration_seconds",
			Help:    "Time from frame read start to last report.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}
	reg.MustRegister(m.reading, m.band, m.reports, m.frames, m.quietFetches, m.quietActive, m.cycleDuration)
	return m
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (m *Metrics) classified(ch Channel, reading float64, table *RangeTable, band Band) {
	if m == nil {
		return
	}
	m.reading.WithLabelValues(ch.String()).Set(reading)
	for i, b := range table.bands {
		if b.Lower == band.Lower {
			m.band.WithLabelValues(ch.String()).Set(float64(i))
			break
		}
	}
}

func (m *Metrics) reported(ch Channel, ok bool) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(ch.String(), resultLabel(ok)).Inc()
}

// frameRead result is ok, malformed or error
func (m *Metrics) frameRead(result string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(result).Inc()
}

func (m *Metrics) quietFetched(ok bool) {
	if m == nil {
		return
	}
	m.quietFetches.WithLabelValues(resultLabel(ok)).Inc()
}

func (m *Metrics) setQuiet(quiet bool) {
	if m == nil {
		return
	}
	if quiet {
		m.quietActive.Set(1)
	} else {
		m.quietActive.Set(0)
	}
}

func (m *Metrics) observeCycle(seconds float64) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(seconds)
}
