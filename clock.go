package sds011dash

import (
	"context"
	"time"
)

// Clock is the only place where poll loop suspends
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error //ctx error if cancelled before d
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
