package service

import (
	"context"
	"time"
)

// Pacer spaces out consecutive upstream requests by a fixed delay. The first
// Wait returns immediately; every later Wait sleeps for the delay. One Pacer
// is shared by page and diff requests so the gap applies across both.
type Pacer struct {
	delay   time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	started bool
}

// NewPacer creates a Pacer. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay, sleep: sleepContext}
}

// Wait blocks until the next request may be issued.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.started {
		p.started = true
		return nil
	}
	if p.delay <= 0 {
		return nil
	}
	return p.sleep(ctx, p.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
