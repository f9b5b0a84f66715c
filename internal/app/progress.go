package app

import (
	"context"
	"time"

	"github.com/yourusername/fileconv-go/internal/domain"
)

// DefaultFrameInterval is roughly one display frame
const DefaultFrameInterval = 16 * time.Millisecond

// Presenter interpolates a displayed percentage over wall-clock time.
// It is cosmetic and never observes transfer bytes.
type Presenter struct {
	frameInterval time.Duration
	now           func() time.Time
}

// NewPresenter creates a new presenter
func NewPresenter(frameInterval time.Duration) *Presenter {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Presenter{frameInterval: frameInterval, now: time.Now}
}

// Animate moves from -> to over duration, emitting one event per frame.
// The last event is always exactly to, and no event overshoots it.
func (p *Presenter) Animate(ctx context.Context, stage domain.Stage, from, to float64, duration time.Duration, sink domain.ProgressSink) error {
	if sink == nil {
		sink = domain.NopSink
	}
	emit := func(percent float64) {
		sink.OnProgress(domain.ProgressEvent{Stage: stage, Percent: percent, Label: stage.Label()})
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if duration <= 0 {
		emit(to)
		return nil
	}

	start := p.now()
	emit(from)

	ticker := time.NewTicker(p.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			elapsed := p.now().Sub(start)
			if elapsed >= duration {
				emit(to)
				return nil
			}
			emit(interpolate(from, to, float64(elapsed)/float64(duration)))
		}
	}
}

// interpolate is linear and clamped to [from, to]
func interpolate(from, to, fraction float64) float64 {
	if fraction <= 0 {
		return from
	}
	if fraction >= 1 {
		return to
	}
	v := from + (to-from)*fraction
	if (to >= from && v > to) || (to < from && v < to) {
		return to
	}
	return v
}
