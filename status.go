/*
Status server

/status gives last report of each channel and quiet hours state as JSON
/metrics is prometheus
*/

package sds011dash

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ChannelStatus struct {
	Module    string    `json:"module"`
	Reading   float64   `json:"reading"`
	Label     string    `json:"label"`
	Color     string    `json:"color"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

type QuietState struct {
	Status    string       `json:"status"`
	Window    *QuietWindow `json:"window,omitempty"`
	FetchedAt time.Time    `json:"fetchedAt"`
	Active    bool         `json:"active"`
}

type StatusSnapshot struct {
	Channels map[string]ChannelStatus `json:"channels"`
	Quiet    QuietState               `json:"quiet"`
	LinkOpen bool                     `json:"linkOpen"`
}

// StatusBoard is written by poll loop and read by http server. Safe on nil receiver
type StatusBoard struct {
	mu       sync.RWMutex
	channels map[Channel]ChannelStatus
	quiet    QuietState
	linkOpen bool
	now      func() time.Time
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		channels: make(map[Channel]ChannelStatus),
		quiet:    QuietState{Status: QuietUninitialized.String()},
		now:      time.Now,
	}
}

func (s *StatusBoard) recordReport(ch Channel, reading float64, band Band, errDeliver error) {
	if s == nil {
		return
	}
	st := ChannelStatus{
		Module:    ModuleName(ch),
		Reading:   reading,
		Label:     band.Label,
		Color:     band.Color,
		Delivered: errDeliver == nil,
		At:        s.now(),
	}
	if errDeliver != nil {
		st.Error = errDeliver.Error()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch] = st
}

func (s *StatusBoard) recordQuiet(q *QuietHours, active bool) {
	if s == nil {
		return
	}
	st := QuietState{Status: q.Status().String(), FetchedAt: q.FetchedAt(), Active: active}
	if w, ok := q.Window(); ok {
		st.Window = &w
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiet = st
}

func (s *StatusBoard) recordLink(open bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkOpen = open
}

func (s *StatusBoard) Snapshot() StatusSnapshot {
	if s == nil {
		return StatusSnapshot{Channels: map[string]ChannelStatus{}}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := StatusSnapshot{
		Channels: make(map[string]ChannelStatus, len(s.channels)),
		Quiet:    s.quiet,
		LinkOpen: s.linkOpen,
	}
	for ch, st := range s.channels {
		result.Channels["pm"+ch.String()] = st
	}
	return result
}

func NewStatusRouter(board *StatusBoard, gatherer prometheus.Gatherer, logger *slog.Logger) *mux.Router {
	logger = orDiscard(logger)
	r := mux.NewRouter()
	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(board.Snapshot()); err != nil {
			logger.Warn("status encode failed", "error", err)
		}
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}
