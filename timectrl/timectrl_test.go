package timectrl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalsfoundry/gridwalk-simulator/core"
)

type countingStepper struct {
	updates int
}

func (c *countingStepper) Update(context.Context) core.TickReport {
	c.updates++
	return core.TickReport{Tick: uint64(c.updates)}
}

func TestDriverStopsAtMaxTicks(t *testing.T) {
	s := &countingStepper{}
	d := NewDriver(s, 0, Accelerated)
	d.MaxTicks = 25

	var seen []uint64
	d.AddListener(func(r core.TickReport) { seen = append(seen, r.Tick) })

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if s.updates != 25 || d.Ticks() != 25 {
		t.Fatalf("updates = %d, Ticks() = %d, want 25", s.updates, d.Ticks())
	}
	if len(seen) != 25 || seen[0] != 1 || seen[24] != 25 {
		t.Fatalf("listener saw %v, want ticks 1..25", seen)
	}
}

func TestDriverRealTimeHonoursCancel(t *testing.T) {
	s := &countingStepper{}
	d := NewDriver(s, 5*time.Millisecond, RealTime)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := <-d.Start(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() = %v, want DeadlineExceeded", err)
	}
	if s.updates == 0 {
		t.Fatalf("expected at least one update before cancellation")
	}
	if uint64(s.updates) != d.Ticks() {
		t.Fatalf("Ticks() = %d, updates = %d", d.Ticks(), s.updates)
	}
}

func TestDriverAcceleratedHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &countingStepper{}
	d := NewDriver(s, time.Hour, Accelerated)
	d.AddListener(func(r core.TickReport) {
		if r.Tick == 3 {
			cancel()
		}
	})

	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want Canceled", err)
	}
	if s.updates != 3 {
		t.Fatalf("updates = %d, want 3", s.updates)
	}
}
