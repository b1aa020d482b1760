package timectrl

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/signalsfoundry/gridwalk-simulator/core"
)

// Stepper advances a simulation by one tick. *core.Scene implements it.
type Stepper interface {
	Update(ctx context.Context) core.TickReport
}

// Mode describes how the Driver paces ticks.
type Mode int

const (
	// RealTime waits Tick of wall-clock time between updates.
	RealTime Mode = iota
	// Accelerated runs updates back to back as fast as the loop can go.
	Accelerated
)

func (m Mode) String() string {
	switch m {
	case RealTime:
		return "realtime"
	case Accelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

// Driver repeatedly calls Update on a Stepper and notifies registered
// listeners after each tick.
type Driver struct {
	Tick     time.Duration
	Mode     Mode
	MaxTicks uint64 // zero runs until the context is cancelled

	stepper   Stepper
	ticks     atomic.Uint64
	listeners []func(core.TickReport)
}

// NewDriver constructs a driver for s.
func NewDriver(s Stepper, tick time.Duration, mode Mode) *Driver {
	return &Driver{
		Tick:    tick,
		Mode:    mode,
		stepper: s,
	}
}

// AddListener registers a callback invoked after every tick. Listeners must
// be added before Run.
func (d *Driver) AddListener(fn func(core.TickReport)) {
	d.listeners = append(d.listeners, fn)
}

// Ticks reports how many updates have completed. Safe for concurrent use.
func (d *Driver) Ticks() uint64 {
	return d.ticks.Load()
}

// Run drives the stepper on the calling goroutine until MaxTicks is reached
// (returning nil) or ctx is cancelled (returning ctx.Err()). Each Update runs
// to completion; cancellation is only observed between ticks.
func (d *Driver) Run(ctx context.Context) error {
	var tickC <-chan time.Time
	if d.Mode == RealTime && d.Tick > 0 {
		ticker := time.NewTicker(d.Tick)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		if d.MaxTicks > 0 && d.ticks.Load() >= d.MaxTicks {
			return nil
		}

		if tickC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		report := d.stepper.Update(ctx)
		d.ticks.Add(1)

		for _, fn := range d.listeners {
			fn(report)
		}
	}
}

// Start runs the driver in a separate goroutine. It returns a channel that
// receives Run's result and is then closed.
func (d *Driver) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- d.Run(ctx)
	}()
	return done
}
