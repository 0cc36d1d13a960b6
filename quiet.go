/*
Quiet hours

Window is fetched from dashboard once per day. Failed fetch counts as attempt, so
broken endpoint is not hammered on every cycle.
*/

package sds011dash

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const QUIETREFRESHINTERVAL = 24 * time.Hour

// QuietWindow hours are 0-23. StartHour > EndHour means window spans midnight
type QuietWindow struct {
	StartHour int `json:"quiet_start"`
	EndHour   int `json:"quiet_end"`
}

func (w QuietWindow) Validate() error {
	if w.StartHour < 0 || 23 < w.StartHour {
		return fmt.Errorf("quiet_start %v not in 0-23", w.StartHour)
	}
	if w.EndHour < 0 || 23 < w.EndHour {
		return fmt.Errorf("quiet_end %v not in 0-23", w.EndHour)
	}
	return nil
}

// Contains checks hour only, minutes do not matter
func (w QuietWindow) Contains(hour int) bool {
	if w.StartHour > w.EndHour {
		return w.StartHour <= hour || hour < w.EndHour
	}
	return w.StartHour <= hour && hour < w.EndHour
}

type QuietSource interface {
	FetchQuietHours(ctx context.Context) (QuietWindow, error)
}

type QuietStatus int

const (
	QuietUninitialized QuietStatus = iota
	QuietCached
	QuietUnavailable
)

func (s QuietStatus) String() string {
	switch s {
	case QuietUninitialized:
		return "uninitialized"
	case QuietCached:
		return "cached"
	case QuietUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("QuietStatus(%d)", int(s))
}

// QuietHours is used only from poll loop, no locking
type QuietHours struct {
	source  QuietSource
	logger  *slog.Logger
	metrics *Metrics

	status    QuietStatus
	window    QuietWindow
	fetchedAt time.Time
}

func NewQuietHours(source QuietSource, logger *slog.Logger, metrics *Metrics) *QuietHours {
	return &QuietHours{
		source:  source,
		logger:  orDiscard(logger),
		metrics: metrics,
	}
}

func (q *QuietHours) Status() QuietStatus {
	return q.status
}

// Window is last successfully fetched window. Valid only while status is QuietCached
func (q *QuietHours) Window() (QuietWindow, bool) {
	return q.window, q.status == QuietCached
}

func (q *QuietHours) FetchedAt() time.Time {
	return q.fetchedAt
}

func (q *QuietHours) MaybeRefresh(ctx context.Context, now time.Time) {
	if q.status != QuietUninitialized && now.Before(q.fetchedAt.Add(QUIETREFRESHINTERVAL)) {
		return
	}
	q.fetchedAt = now

	window, errFetch := q.source.FetchQuietHours(ctx)
	if errFetch == nil {
		errFetch = window.Validate()
	}
	if errFetch != nil {
		q.status = QuietUnavailable
		q.logger.Warn("quiet hours not available", "stage", "quiet", "error", errFetch, "next_attempt", now.Add(QUIETREFRESHINTERVAL))
		q.metrics.quietFetched(false)
		return
	}
	q.logger.Info("updating quiet hours", "quiet_start", window.StartHour, "quiet_end", window.EndHour)
	q.status = QuietCached
	q.window = window
	q.metrics.quietFetched(true)
}

func (q *QuietHours) IsQuiet(now time.Time) bool {
	if q.status != QuietCached {
		return false
	}
	return q.window.Contains(now.Hour())
}

/*
UntilQuietEnds is meaningful only when IsQuiet is true.
Quiet ends at EndHour:00 today, or tomorrow if that hour already passed
*/
func (q *QuietHours) UntilQuietEnds(now time.Time) time.Duration {
	days := 0
	if now.Hour() > q.window.EndHour {
		days = 1
	}
	y, m, d := now.Date()
	end := time.Date(y, m, d+days, q.window.EndHour, 0, 0, 0, now.Location())
	left := end.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
