// Package display draws the live entities of a scene onto a character grid.
package display

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// Sink draws text at a grid cell, overwriting what was there. Coordinates
// are zero-based and non-negative.
type Sink interface {
	Draw(x, y int, text string)
}

// FrameSink is a Sink that wants to know where a frame starts and ends.
// Clearing stale draws is the sink's job, not the renderer's.
type FrameSink interface {
	Sink
	BeginFrame()
	EndFrame()
}

const (
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
)

// Terminal is a FrameSink that addresses an ANSI terminal. Grid cell (0, 0)
// is the top-left character.
type Terminal struct {
	mu    sync.Mutex
	w     *bufio.Writer
	clear bool
	err   error
}

// NewTerminal wraps w. When clear is set every frame starts with a blank
// screen; otherwise earlier draws stay visible as trails.
func NewTerminal(w io.Writer, clear bool) *Terminal {
	t := &Terminal{w: bufio.NewWriter(w), clear: clear}
	t.write(ansiHideCursor)
	return t
}

func (t *Terminal) BeginFrame() {
	if t.clear {
		t.write(ansiClear)
	}
}

func (t *Terminal) Draw(x, y int, text string) {
	// ANSI rows and columns are one-based.
	t.write(fmt.Sprintf("\x1b[%d;%dH%s", y+1, x+1, text))
}

func (t *Terminal) EndFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.Flush(); err != nil && t.err == nil {
		t.err = err
	}
}

// Close restores the cursor and flushes pending output.
func (t *Terminal) Close() error {
	t.write(ansiShowCursor + "\n")
	t.EndFrame()
	return t.Err()
}

// Err returns the first write error seen. Drawing never fails loudly; the
// simulation keeps running when the terminal goes away.
func (t *Terminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.w.WriteString(s); err != nil && t.err == nil {
		t.err = err
	}
}

// Stroke is one recorded Draw call.
type Stroke struct {
	X, Y int
	Text string
}

// Recorder is an in-memory FrameSink that keeps the strokes of each frame.
type Recorder struct {
	mu     sync.Mutex
	frames [][]Stroke
	open   bool
}

func (r *Recorder) BeginFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, nil)
	r.open = true
}

func (r *Recorder) Draw(x, y int, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		r.frames = append(r.frames, nil)
		r.open = true
	}
	last := len(r.frames) - 1
	r.frames[last] = append(r.frames[last], Stroke{X: x, Y: y, Text: text})
}

func (r *Recorder) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = false
}

// Frames returns a copy of every recorded frame.
func (r *Recorder) Frames() [][]Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([][]Stroke, len(r.frames))
	for i, f := range r.frames {
		res[i] = append([]Stroke(nil), f...)
	}
	return res
}

// LastFrame returns the most recent frame, or nil if none was drawn.
func (r *Recorder) LastFrame() []Stroke {
	frames := r.Frames()
	if len(frames) == 0 {
		return nil
	}
	return frames[len(frames)-1]
}
