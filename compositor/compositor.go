// Package compositor implements the frame algorithm (spec.md §4.C8):
// Z-ordered window iteration, exposed-region invalidation on
// move/resize, status-bar/desktop-fill repaint, and the final flush
// through the double buffer.
//
// Grounded on the teacher's tui/screen.go Frame/renderUnlocked pair
// (single render lock held across one frame's worth of mutation, then
// one flush at the end), generalized from one screen-filling template
// to many Z-ordered windows using the region package for occlusion and
// paint package for per-window rendering.
package compositor

import (
	"sort"
	"time"

	"github.com/consolewm/consolewm/ansitext"
	"github.com/consolewm/consolewm/buffer"
	"github.com/consolewm/consolewm/cellgrid"
	"github.com/consolewm/consolewm/paint"
	"github.com/consolewm/consolewm/region"
	"github.com/consolewm/consolewm/signals"
	"github.com/consolewm/consolewm/theme"
	"github.com/consolewm/consolewm/wm"
	"github.com/consolewm/consolewm/wmmetrics"
)

// Compositor owns the shared double buffer and draws every registered
// window into it once per frame.
type Compositor struct {
	Buffer *buffer.DoubleBuffer
	State  *wm.State
	Theme  *theme.Theme
	Mode   buffer.Mode

	TopStatus    string
	BottomStatus string

	width, height  int
	lastBounds     map[wm.ID]cellgrid.Rect
	cachedTop      string
	cachedBottom   string
	themeEffect    *signals.Effect
}

// New returns a Compositor sized w x h.
func New(w, h int, state *wm.State, th *theme.Theme, mode buffer.Mode) *Compositor {
	c := &Compositor{
		Buffer:     buffer.New(w, h),
		State:      state,
		Theme:      th,
		Mode:       mode,
		width:      w,
		height:     h,
		lastBounds: make(map[wm.ID]cellgrid.Rect),
	}
	c.themeEffect = c.bindTheme()
	return c
}

// bindTheme is the compositor's end of theme.Theme's live-recoloring
// contract: it reads every Signal the render path consults through
// Get rather than Peek, so it subscribes, and on a subsequent theme
// swap it invalidates every open window and drops the status-bar cache
// so the next frame repaints with the new palette. The render path
// itself keeps reading through Peek — this Effect is the only
// subscriber, firing once per Batch-ed theme change rather than once
// per window per frame.
func (c *Compositor) bindTheme() *signals.Effect {
	th := c.Theme
	ran := false
	return signals.CreateEffect(func() {
		th.DesktopChar.Get()
		th.DesktopFg.Get()
		th.DesktopBg.Get()
		th.TopBarFg.Get()
		th.TopBarBg.Get()
		th.BottomBarFg.Get()
		th.BottomBarBg.Get()
		th.ActiveBorderFg.Get()
		th.InactiveBorderFg.Get()
		th.FlashColor.Get()

		if !ran {
			ran = true
			return
		}
		c.cachedTop, c.cachedBottom = "", ""
		for _, w := range c.State.Windows() {
			w.Invalidate()
		}
	})
}

// Resize clamps every window inside the new desktop, forces a full
// redraw, and repaints the desktop fill (spec.md §4.C8 step 1).
func (c *Compositor) Resize(w, h int) {
	c.width, c.height = w, h
	c.Buffer.Resize(w, h)
	for _, win := range c.State.Windows() {
		win.Lock()
		if win.Left+win.Width > w {
			win.Left = maxi(0, w-win.Width)
		}
		if win.Top+win.Height > h {
			win.Top = maxi(0, h-win.Height)
		}
		win.Flags.IsDirty = true
		win.Flags.IsInvalidated = true
		win.Unlock()
	}
	c.cachedTop, c.cachedBottom = "", ""
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Frame runs one compositor pass: status bars, exposed-region
// invalidation, working-set determination, Z-ascending paint with the
// active window last, and a buffer flush. Returns the flush stats.
func (c *Compositor) Frame() (buffer.FlushStats, error) {
	return c.FlushTo(nopWriter{})
}

// FlushTo performs one compositor pass and writes the emitted bytes to
// w (the console driver). Frame metrics (spec.md §8 S2) are recorded
// regardless of destination.
func (c *Compositor) FlushTo(w writer) (buffer.FlushStats, error) {
	start := time.Now()

	c.paintDesktop()
	c.paintStatusBars()

	windows := c.State.Windows()
	c.invalidateExposedRegions(windows)

	working := c.workingSet(windows)
	c.paintWorkingSet(windows, working)

	for _, win := range windows {
		c.lastBounds[win.ID] = win.Bounds()
	}

	wmmetrics.SetOpenWindows(len(windows))

	stats, err := c.Buffer.Flush(w, c.Mode)
	wmmetrics.RecordFrame(time.Since(start), stats.BytesWritten, stats.CellsWritten)
	return stats, err
}

type writer interface {
	Write(p []byte) (n int, err error)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (c *Compositor) paintDesktop() {
	bg := c.Theme.DesktopBg.Peek()
	fg := c.Theme.DesktopFg.Peek()
	ch := c.Theme.DesktopChar.Peek()
	for y := 1; y < c.height-1; y++ {
		for x := 0; x < c.width; x++ {
			c.Buffer.Back.Set(x, y, ch, fg, bg, cellgrid.Attrs{})
		}
	}
}

// paintStatusBars repaints the top/bottom bars only if their
// formatted content changed (spec.md §4.C8 step 2). It caches on the
// formatted row (see DESIGN.md "Open Question Decisions" for why,
// resolving spec.md §9 open question 3).
func (c *Compositor) paintStatusBars() {
	top := ansitext.TruncateMarkup(c.TopStatus, c.width)
	if top != c.cachedTop {
		c.cachedTop = top
		c.Buffer.StageAt(0, 0, top, c.Theme.TopBarFg.Peek(), c.Theme.TopBarBg.Peek())
	}
	bottom := ansitext.TruncateMarkup(c.BottomStatus, c.width)
	if bottom != c.cachedBottom {
		c.cachedBottom = bottom
		c.Buffer.StageAt(0, c.height-1, bottom, c.Theme.BottomBarFg.Peek(), c.Theme.BottomBarBg.Peek())
	}
}

// invalidateExposedRegions clears the exposed region (old bounds minus
// new bounds) with the desktop fill and marks every lower-Z
// overlapping window dirty (spec.md §4.C8 step 4, invariant 7).
func (c *Compositor) invalidateExposedRegions(windows []*wm.Window) {
	bg := c.Theme.DesktopBg.Peek()
	fg := c.Theme.DesktopFg.Peek()
	ch := c.Theme.DesktopChar.Peek()

	for _, w := range windows {
		old, ok := c.lastBounds[w.ID]
		if !ok {
			continue
		}
		now := w.Bounds()
		if old == now {
			continue
		}
		exposed := region.ExposedBySymmetricDifference(old, now)
		for _, r := range exposed {
			for y := r.Y; y < r.Y+r.H; y++ {
				for x := r.X; x < r.X+r.W; x++ {
					c.Buffer.Back.Set(x, y, ch, fg, bg, cellgrid.Attrs{})
				}
			}
			for _, other := range windows {
				if other.Z < w.Z && !other.Bounds().Intersect(r).Empty() {
					other.Invalidate()
				}
			}
		}
	}
}

// workingSet returns every window that needs painting this frame:
// dirty-and-not-fully-covered windows, plus any window of equal or
// higher Z overlapping one of those (spec.md §4.C8 step 3).
func (c *Compositor) workingSet(windows []*wm.Window) map[wm.ID]bool {
	set := make(map[wm.ID]bool)
	sorted := append([]*wm.Window(nil), windows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Z < sorted[j].Z })

	for _, w := range sorted {
		w.Lock()
		dirty := w.Flags.IsDirty
		w.Unlock()
		if !dirty {
			continue
		}
		occluders := higherOccluders(sorted, w)
		if region.FullyCovered(w.Bounds(), occluders) {
			continue
		}
		set[w.ID] = true
		for _, other := range sorted {
			if other.Z >= w.Z && !other.Bounds().Intersect(w.Bounds()).Empty() {
				set[other.ID] = true
			}
		}
	}
	return set
}

func higherOccluders(sorted []*wm.Window, w *wm.Window) []cellgrid.Rect {
	var out []cellgrid.Rect
	for _, o := range sorted {
		if o.Z > w.Z {
			out = append(out, o.Bounds())
		}
	}
	return out
}

// paintWorkingSet paints every window in the set, ascending Z, with
// the active window last (spec.md §4.C8 step 5, §5 ordering
// guarantee).
func (c *Compositor) paintWorkingSet(windows []*wm.Window, working map[wm.ID]bool) {
	sorted := append([]*wm.Window(nil), windows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Z < sorted[j].Z })

	activeID := c.State.Active()
	var activeWin *wm.Window

	for _, w := range sorted {
		if !working[w.ID] {
			continue
		}
		if w.ID == activeID {
			activeWin = w
			continue
		}
		c.paintOne(sorted, w)
	}
	if activeWin != nil {
		c.paintOne(sorted, activeWin)
	}
}

func (c *Compositor) paintOne(sorted []*wm.Window, w *wm.Window) {
	occluders := higherOccluders(sorted, w)
	visible := region.Subtract(w.Bounds(), occluders)
	if len(visible) == 0 {
		w.Lock()
		w.Flags.IsDirty = false
		w.Unlock()
		return
	}
	paint.Render(c.Buffer.Back, w, c.Theme, visible)
	for _, r := range visible {
		for y := r.Y; y < r.Y+r.H; y++ {
			c.Buffer.MarkDirty(y)
		}
	}
}
