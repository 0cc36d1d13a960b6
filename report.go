package sds011dash

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	SECTION_TEXT  = "text"
	SECTION_GAUGE = "gauge"
)

// Section is display block. Text has color string, gauge has list of colors
type Section struct {
	Type  string `json:"type"`
	Color any    `json:"color"`
	Range []int  `json:"range,omitempty"`
	Value any    `json:"value"`
}

type Payload struct {
	Module   string    `json:"module"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

type Deliverer interface {
	Deliver(ctx context.Context, payload Payload) error
}

func ModuleName(ch Channel) string {
	return fmt.Sprintf("photo-dash-sds011-pm%v", ch)
}

/*
BuildPayload has text, focused gauge on matched band and full scale gauge.
Last band has no upper bound, focused gauge ends to soft upper of the scale then
*/
func BuildPayload(ch Channel, reading float64, band Band, table *RangeTable) Payload {
	upper := band.Upper
	if upper == Unbounded {
		upper = table.SoftUpper()
	}
	return Payload{
		Module: ModuleName(ch),
		Title:  fmt.Sprintf("Air Quality - PM%v", ch),
		Sections: []Section{
			{Type: SECTION_TEXT, Color: band.Color, Value: "Quality: " + band.Label},
			{Type: SECTION_GAUGE, Color: []string{band.Color}, Range: []int{band.Lower, upper}, Value: reading},
			{Type: SECTION_GAUGE, Color: table.Colors(), Range: table.Scale(), Value: reading},
		},
	}
}

// Reporter is best effort. At most once, no retry, never returns error
type Reporter struct {
	deliverer Deliverer
	logger    *slog.Logger
	metrics   *Metrics
	status    *StatusBoard
}

func NewReporter(deliverer Deliverer, logger *slog.Logger, metrics *Metrics, status *StatusBoard) *Reporter {
	return &Reporter{
		deliverer: deliverer,
		logger:    orDiscard(logger),
		metrics:   metrics,
		status:    status,
	}
}

func (r *Reporter) Report(ctx context.Context, ch Channel, reading float64, band Band, table *RangeTable) {
	payload := BuildPayload(ch, reading, band, table)
	r.metrics.classified(ch, reading, table, band)

	errDeliver := r.deliverer.Deliver(ctx, payload)
	r.status.recordReport(ch, reading, band, errDeliver)
	if errDeliver != nil {
		r.logger.Error("dashboard delivery failed", "channel", ch.String(), "stage", "report", "module", payload.Module, "error", errDeliver)
		r.metrics.reported(ch, false)
		return
	}
	r.logger.Info("reported", "channel", ch.String(), "reading", reading, "label", band.Label)
	r.metrics.reported(ch, true)
}
