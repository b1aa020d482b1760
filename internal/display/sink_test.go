package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTerminalDrawUsesOneBasedCursor(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, false)
	term.BeginFrame()
	term.Draw(0, 0, "a")
	term.Draw(4, 2, "bc")
	term.EndFrame()

	out := buf.String()
	if !strings.Contains(out, "\x1b[1;1Ha") {
		t.Fatalf("output %q missing origin draw", out)
	}
	if !strings.Contains(out, "\x1b[3;5Hbc") {
		t.Fatalf("output %q missing (4, 2) draw", out)
	}
	if strings.Contains(out, ansiClear) {
		t.Fatalf("non-clearing terminal emitted a clear sequence")
	}
}

func TestTerminalClearsEachFrame(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, true)
	for range 2 {
		term.BeginFrame()
		term.Draw(1, 1, "x")
		term.EndFrame()
	}
	if got := strings.Count(buf.String(), ansiClear); got != 2 {
		t.Fatalf("clear sequences = %d, want 2", got)
	}
	if err := term.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !strings.Contains(buf.String(), ansiShowCursor) {
		t.Fatalf("Close should restore the cursor")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("gone") }

func TestTerminalRemembersWriteError(t *testing.T) {
	term := NewTerminal(failingWriter{}, false)
	term.Draw(0, 0, "a")
	term.EndFrame()
	if term.Err() == nil {
		t.Fatalf("expected the flush error to be kept")
	}
}

func TestRecorderGroupsStrokesByFrame(t *testing.T) {
	var rec Recorder
	rec.BeginFrame()
	rec.Draw(1, 2, "a")
	rec.EndFrame()
	rec.BeginFrame()
	rec.EndFrame()
	rec.Draw(3, 4, "b")

	frames := rec.Frames()
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(frames))
	}
	if len(frames[1]) != 0 {
		t.Fatalf("frame 1 = %v, want empty", frames[1])
	}
	if got := rec.LastFrame(); len(got) != 1 || got[0] != (Stroke{X: 3, Y: 4, Text: "b"}) {
		t.Fatalf("LastFrame() = %v", got)
	}
}
