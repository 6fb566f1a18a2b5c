// Package tick drives the race service at a coarse host cadence.
package tick

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/ghostrace/pkg/logger"
	"github.com/okian/ghostrace/pkg/metrics"
)

const defaultInterval = time.Second

// Advancer catches the race up to the current time.
type Advancer interface {
	Advance(ctx context.Context)
}

// Driver calls Advance on every tick until stopped.
type Driver struct {
	target   Advancer
	interval time.Duration
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewDriver returns a driver for target.
func NewDriver(target Advancer, opts ...Option) *Driver {
	d := &Driver{
		target:   target,
		interval: defaultInterval,
		name:     "tick",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named(d.name)
	return d
}

// Run ticks until ctx is cancelled or Shutdown is called.
func (d *Driver) Run(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info(ctx, "tick driver started", logger.String("interval", d.interval.String()))
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Driver) tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(ctx, "tick panicked", logger.Any("panic", r))
		}
		metrics.RecordTickLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	d.target.Advance(ctx)
}

// Shutdown stops the loop and waits for it to exit.
func (d *Driver) Shutdown(ctx context.Context) error {
	select {
	case <-d.shutdown:
	default:
		close(d.shutdown)
	}

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
