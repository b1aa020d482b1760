package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidStepRange is returned when a StepRange bound is inverted or an
// axis is wider than an int can hold.
var ErrInvalidStepRange = errors.New("invalid step range")

// StepRange bounds the random displacement an entity takes per tick. Each
// axis delta is drawn from the half-open interval [Min, Max).
//
// A StepRange is shared by reference between entities and must not be
// modified once a scene is running.
type StepRange struct {
	MinX int
	MaxX int
	MinY int
	MaxY int
}

// DefaultStepRange yields a delta of -1 or 0 on each axis.
func DefaultStepRange() *StepRange {
	return &StepRange{MinX: -1, MaxX: 1, MinY: -1, MaxY: 1}
}

// Validate checks that neither axis has Min > Max and that Max-Min fits in
// an int. Min == Max is allowed and pins that axis delta to Min.
func (r *StepRange) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: step range is required", ErrInvalidStepRange)
	}
	if err := validateAxis("x", r.MinX, r.MaxX); err != nil {
		return err
	}
	return validateAxis("y", r.MinY, r.MaxY)
}

func validateAxis(axis string, lo, hi int) error {
	if lo > hi {
		return fmt.Errorf("%w: %s bound [%d, %d) is inverted", ErrInvalidStepRange, axis, lo, hi)
	}
	if lo < 0 && hi > lo+math.MaxInt {
		return fmt.Errorf("%w: %s bound [%d, %d) is too wide", ErrInvalidStepRange, axis, lo, hi)
	}
	return nil
}

func (r *StepRange) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%d,%d)x[%d,%d)", r.MinX, r.MaxX, r.MinY, r.MaxY)
}
