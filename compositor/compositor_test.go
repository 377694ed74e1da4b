package compositor

import (
	"bytes"
	"testing"

	"github.com/consolewm/consolewm/buffer"
	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/control"
	"github.com/consolewm/consolewm/theme"
	"github.com/consolewm/consolewm/wm"
)

func newWindow(left, top, w, h int, z int64) *wm.Window {
	win := &wm.Window{Left: left, Top: top, Width: w, Height: h, Z: z}
	win.Controls = []control.Control{control.NewText("x")}
	win.Flags.IsInvalidated = true
	win.Flags.IsDirty = true
	return win
}

// TestFrameFlushesAndClearsDirty checks that a frame pass paints the working set and leaves no window dirty afterward.
func TestFrameFlushesAndClearsDirty(t *testing.T) {
	state := wm.NewState()
	w1 := newWindow(0, 0, 10, 5, 0)
	state.Register(w1, true)

	c := New(40, 20, state, theme.Default(), buffer.Line)
	var out bytes.Buffer
	if _, err := c.FlushTo(&out); err != nil {
		t.Fatalf("FlushTo returned error: %v", err)
	}

	w1.Lock()
	dirty := w1.Flags.IsDirty
	w1.Unlock()
	if dirty {
		t.Errorf("expected window to be clean after a frame pass")
	}
}

// TestMoveExposesBackgroundWindow models spec.md scenario S1: moving a
// foreground window invalidates the window it used to cover.
func TestMoveExposesBackgroundWindow(t *testing.T) {
	state := wm.NewState()
	back := newWindow(0, 0, 20, 10, 0)
	front := newWindow(0, 0, 20, 10, 1)
	state.Register(back, false)
	state.Register(front, true)

	c := New(40, 20, state, theme.Default(), buffer.Line)
	var out bytes.Buffer
	if _, err := c.FlushTo(&out); err != nil {
		t.Fatalf("initial FlushTo returned error: %v", err)
	}

	back.Lock()
	back.Flags.IsDirty = false
	back.Unlock()

	front.Lock()
	front.Left = 15
	front.Flags.IsDirty = true
	front.Flags.IsInvalidated = true
	front.Unlock()

	if _, err := c.FlushTo(&out); err != nil {
		t.Fatalf("second FlushTo returned error: %v", err)
	}

	back.Lock()
	exposedDirty := back.Flags.IsDirty
	back.Unlock()
	if !exposedDirty {
		t.Errorf("expected the background window to be marked dirty once the foreground window moved off it")
	}
}

// TestStatusBarCacheSkipsUnchangedContent covers SPEC_FULL.md §12's
// resolution of spec.md §9 open question 3.
func TestStatusBarCacheSkipsUnchangedContent(t *testing.T) {
	state := wm.NewState()
	c := New(40, 20, state, theme.Default(), buffer.Line)
	c.TopStatus = "ready"

	var out bytes.Buffer
	if _, err := c.FlushTo(&out); err != nil {
		t.Fatalf("FlushTo returned error: %v", err)
	}
	if c.cachedTop != "ready" {
		t.Fatalf("expected top status to be cached after first frame")
	}

	before := c.cachedTop
	c.paintStatusBars()
	if c.cachedTop != before {
		t.Errorf("expected unchanged status text to leave the cache untouched")
	}
}

// TestThemeSwapInvalidatesWindowsAndBars covers the live-recoloring
// contract theme.Theme documents: a Signal.Set on a palette field the
// bindTheme effect reads invalidates every open window and drops the
// status-bar cache, instead of requiring an unrelated dirty flag to
// force the next repaint.
func TestThemeSwapInvalidatesWindowsAndBars(t *testing.T) {
	state := wm.NewState()
	w1 := newWindow(0, 0, 10, 5, 0)
	state.Register(w1, true)

	th := theme.Default()
	c := New(40, 20, state, th, buffer.Line)
	c.TopStatus = "ready"

	var out bytes.Buffer
	if _, err := c.FlushTo(&out); err != nil {
		t.Fatalf("FlushTo returned error: %v", err)
	}

	w1.Lock()
	w1.Flags.IsDirty = false
	w1.Flags.IsInvalidated = false
	w1.Unlock()
	c.cachedTop = "ready"

	th.ActiveBorderFg.Set(cellgrid.Palette256(200))

	w1.Lock()
	dirty := w1.Flags.IsDirty
	invalidated := w1.Flags.IsInvalidated
	w1.Unlock()
	if !dirty || !invalidated {
		t.Errorf("expected a theme swap to invalidate the open window, got dirty=%v invalidated=%v", dirty, invalidated)
	}
	if c.cachedTop != "" {
		t.Errorf("expected a theme swap to drop the status-bar cache, got %q", c.cachedTop)
	}
}
