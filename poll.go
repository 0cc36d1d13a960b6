/*
Poll loop

Sleep, check quiet hours, read one frame, decode classify and report both channels.
Malformed frame is skipped as whole. Frame cut short by read error still reports channels it covers.
Sleeping comes first so sensor has time to start up before the first read.
Channels are independent, failure on one is logged and the other one continues.
*/

package sds011dash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type PollSettings struct {
	Interval               time.Duration //Before every cycle
	ChannelPause           time.Duration //Before each channel report, gives endpoint some time
	DisconnectInQuietHours bool
	Humidity               *float64 //Relative humidity % for compensation, nil=off
}

type Poller struct {
	settings   PollSettings
	source     ByteSource
	quiet      *QuietHours
	classifier *Classifier
	reporter   *Reporter
	clock      Clock
	logger     *slog.Logger
	metrics    *Metrics
	status     *StatusBoard
}

func NewPoller(settings PollSettings, source ByteSource, quiet *QuietHours, reporter *Reporter, clock Clock, logger *slog.Logger, metrics *Metrics, status *StatusBoard) *Poller {
	logger = orDiscard(logger)
	if clock == nil {
		clock = SystemClock{}
	}
	return &Poller{
		settings:   settings,
		source:     source,
		quiet:      quiet,
		classifier: NewClassifier(logger),
		reporter:   reporter,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		status:     status,
	}
}

/*
Run opens the link and loops until ctx is cancelled.
Only failing to open sensor link at start is returned as error
*/
func (p *Poller) Run(ctx context.Context) error {
	if !p.source.IsOpen() {
		if errOpen := p.source.Open(); errOpen != nil {
			return fmt.Errorf("opening sensor link failed: %w", errOpen)
		}
	}
	p.status.recordLink(true)
	p.logger.Info("poll loop started", "interval", p.settings.Interval, "disconnect_in_quiet_hours", p.settings.DisconnectInQuietHours)

	for {
		if p.clock.Sleep(ctx, p.settings.Interval) != nil {
			break
		}
		if p.Cycle(ctx) != nil {
			break
		}
	}
	p.logger.Info("poll loop stopped", "reason", context.Cause(ctx))
	return nil
}

// Cycle is one round after the inter-cycle sleep. Error only when ctx is done
func (p *Poller) Cycle(ctx context.Context) error {
	log := p.logger.With("cycle", uuid.NewString())
	now := p.clock.Now()

	p.quiet.MaybeRefresh(ctx, now)
	quiet := p.quiet.IsQuiet(now)
	p.status.recordQuiet(p.quiet, quiet)
	p.metrics.setQuiet(quiet)

	if quiet {
		if p.settings.DisconnectInQuietHours && p.source.IsOpen() {
			if errClose := p.source.Close(); errClose != nil {
				log.Warn("closing sensor link for quiet hours failed", "stage", "link", "error", errClose)
			} else {
				log.Info("sensor link closed for quiet hours")
			}
			p.status.recordLink(p.source.IsOpen())
		}
		wait := p.quiet.UntilQuietEnds(now)
		log.Info("quiet hours, sleeping", "for", wait)
		return p.clock.Sleep(ctx, wait)
	}

	//Link may be closed by quiet hours. Opening already open link is error
	if !p.source.IsOpen() {
		if errOpen := p.source.Open(); errOpen != nil {
			log.Error("reopening sensor link failed, skipping cycle", "stage", "link", "error", errOpen)
			return nil
		}
		log.Info("sensor link reopened")
		p.status.recordLink(true)
	}

	log.Info("woke up after sleeping, reading sensor")
	tStart := p.clock.Now()
	frame, skipped, errRead := ReadFrame(p.source)
	if 0 < skipped {
		log.Warn("line noise before frame start", "stage", "read", "skipped", skipped)
	}
	switch {
	case errRead != nil:
		log.Error("reading sensor frame failed", "stage", "read", "bytes", len(frame), "error", errRead)
		p.metrics.frameRead("error")
		if len(frame) == 0 {
			return nil
		}
	default:
		if errCheck := CheckFrame(frame); errCheck != nil {
			log.Warn("malformed sensor frame, skipping cycle", "stage", "read", "frame", fmt.Sprintf("%X", []byte(frame)), "error", errCheck)
			p.metrics.frameRead("malformed")
			return nil
		}
		p.metrics.frameRead("ok")
	}

	for _, ch := range Channels {
		if 0 < p.settings.ChannelPause {
			if errSleep := p.clock.Sleep(ctx, p.settings.ChannelPause); errSleep != nil {
				return errSleep
			}
		}
		p.processChannel(ctx, log, frame, ch)
	}
	p.metrics.observeCycle(p.clock.Now().Sub(tStart).Seconds())
	return nil
}

func (p *Poller) processChannel(ctx context.Context, log *slog.Logger, frame Frame, ch Channel) {
	reading, errDecode := DecodeReading(frame, ch.FrameOffset())
	if errDecode != nil {
		level := slog.LevelError
		if errors.Is(errDecode, ErrShortFrame) {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "decoding reading failed", "channel", ch.String(), "stage", "decode", "error", errDecode)
		return
	}
	if p.settings.Humidity != nil {
		raw := reading
		reading = Compensate(ch, reading, *p.settings.Humidity)
		log.Debug("humidity compensated", "channel", ch.String(), "raw", raw, "compensated", reading)
	}

	band, table, errClassify := p.classifier.Classify(ch, reading)
	if errClassify != nil {
		return //Classifier logs
	}
	p.reporter.Report(ctx, ch, reading, band, table)
}
