package main

import (
	"context"
	"time"
)

const backendPollInterval = 2 * time.Second

// pinger checks whether the conversion service is reachable
type pinger interface {
	Ping(ctx context.Context) error
}

// waitForBackend pings until the service answers or wait has elapsed.
// The hosted service sleeps when idle, so the first pings may fail while
// it spins up. A zero wait pings once.
func waitForBackend(ctx context.Context, p pinger, wait, interval time.Duration) error {
	deadline := time.Now().Add(wait)

	for {
		err := p.Ping(ctx)
		if err == nil || !time.Now().Add(interval).Before(deadline) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
