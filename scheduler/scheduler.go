// Package scheduler implements the cooperative main loop (spec.md
// §4.C11): drain input, process system keys, dispatch to the active
// window, repaint, sleep; plus the background-task grace period that
// turns a slow-to-close window into a persistent error boundary.
//
// Grounded on the teacher's cmd/demo/main.go + tui/screen.go OnKey loop
// (a goroutine draining a key channel, driving a single shared Screen)
// generalized from "one key channel, one render" to "drain a tagged
// driver.Event channel, route by kind, composite, then sleep a fixed
// interval" per spec.md's pseudocode loop.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/consolewm/consolewm/compositor"
	"github.com/consolewm/consolewm/control"
	"github.com/consolewm/consolewm/dispatch"
	"github.com/consolewm/consolewm/driver"
	"github.com/consolewm/consolewm/wm"
	"github.com/consolewm/consolewm/wmerrors"
	"github.com/consolewm/consolewm/wmlog"
	"github.com/consolewm/consolewm/wmmetrics"
)

// defaultMaxFlushFailures is how many consecutive FlushTo failures the
// scheduler tolerates before giving up on the driver (spec.md §7
// DriverIOFault: "retry the flush next frame... shut down if
// persistent").
const defaultMaxFlushFailures = 5

// Config holds the scheduler's tunables (spec.md §4.C11,
// SPEC_FULL.md §10 Config).
type Config struct {
	FrameInterval time.Duration // default ~10ms, per spec.md's loop
	GracePeriod   time.Duration // default a few seconds (spec.md §4.C11)

	// MaxFlushFailures caps consecutive driver write failures before
	// Run gives up and returns a nonzero exit code. Zero means
	// defaultMaxFlushFailures.
	MaxFlushFailures int
}

// DefaultConfig matches spec.md's stated defaults.
func DefaultConfig() Config {
	return Config{
		FrameInterval:    10 * time.Millisecond,
		GracePeriod:      3 * time.Second,
		MaxFlushFailures: defaultMaxFlushFailures,
	}
}

// Task is a window's optional background job. It must observe
// ctx.Done and return promptly; one that doesn't is abandoned at the
// grace period timeout and its window becomes an error boundary
// (spec.md §7 HungBackgroundTask, scenario S8).
type Task func(ctx context.Context) error

// Scheduler owns the cooperative loop and the per-window task/grace
// bookkeeping.
type Scheduler struct {
	State      *wm.State
	Dispatcher *dispatch.Dispatcher
	Compositor *compositor.Compositor
	Driver     driver.Driver
	Config     Config

	tasks map[wm.ID]*taskHandle

	exitRequested bool
	exitCode      int
	flushFailures int
}

type taskHandle struct {
	cancel context.CancelFunc
	done   chan error
}

// New wires a Scheduler; Dispatcher.SystemKeys is overwritten to route
// through the scheduler's system-level key handling.
func New(state *wm.State, disp *dispatch.Dispatcher, comp *compositor.Compositor, drv driver.Driver, cfg Config) *Scheduler {
	s := &Scheduler{
		State:      state,
		Dispatcher: disp,
		Compositor: comp,
		Driver:     drv,
		Config:     cfg,
		tasks:      make(map[wm.ID]*taskHandle),
	}
	disp.SystemKeys = s.handleSystemKey
	return s
}

// RunTask starts a background task for w, cancelled automatically when
// Close(w) is called (spec.md §5 "Cancellation & timeouts").
func (s *Scheduler) RunTask(w *wm.Window, task Task) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &taskHandle{cancel: cancel, done: make(chan error, 1)}
	s.tasks[w.ID] = h
	go func() {
		h.done <- task(ctx)
	}()
}

// Run drains driver events and composites frames until ctx is
// cancelled or a system key requests shutdown, returning the exit code
// (spec.md §4.C11).
func (s *Scheduler) Run(ctx context.Context) int {
	events := s.Driver.Events()
	out := driverWriter{s.Driver}

	ticker := time.NewTicker(s.Config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.exitCode
		case ev, ok := <-events:
			if !ok {
				return s.exitCode
			}
			s.handleEvent(ev)
			if s.exitRequested {
				return s.exitCode
			}
		case <-ticker.C:
			s.tickFlash()
			if _, err := s.Compositor.FlushTo(out); err != nil {
				s.handleFlushError(err)
			} else {
				s.flushFailures = 0
			}
			s.updateCursor()
			if s.exitRequested {
				return s.exitCode
			}
		}
	}
}

// handleFlushError implements spec.md §7's DriverIOFault policy: log
// the write failure, let the loop retry on the next tick, and once
// failures persist past Config.MaxFlushFailures, request a shutdown
// with a nonzero exit code instead of spinning forever against a dead
// driver.
func (s *Scheduler) handleFlushError(err error) {
	s.flushFailures++
	wmErr := wmerrors.New(wmerrors.DriverIOFault, "console write failed").WithDetails(err.Error())
	wmlog.Get().Error("driver io fault", "consecutive_failures", s.flushFailures, "error", wmErr)

	threshold := s.Config.MaxFlushFailures
	if threshold <= 0 {
		threshold = defaultMaxFlushFailures
	}
	if s.flushFailures >= threshold {
		wmlog.Get().Error("console write persistently failing, shutting down", "consecutive_failures", s.flushFailures)
		s.exitRequested = true
		s.exitCode = 1
	}
}

type driverWriter struct{ d driver.Driver }

func (w driverWriter) Write(p []byte) (int, error) {
	if err := w.d.WriteToConsole(0, 0, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// tickFlash counts down every window's flash timer, marking it dirty
// for one more frame on expiry so the border repaints back to normal
// (spec.md §4.C11 "flash", scenario S7).
func (s *Scheduler) tickFlash() {
	for _, w := range s.State.Windows() {
		w.Lock()
		if w.FlashFrames > 0 {
			w.FlashFrames--
			w.Flags.IsDirty = true
		}
		w.Unlock()
	}
}

func (s *Scheduler) handleEvent(ev driver.Event) {
	switch ev.Kind {
	case driver.EventKey:
		wmmetrics.RecordInputEvent("key")
		s.Dispatcher.DispatchKey(ev.Key)
	case driver.EventMouse:
		wmmetrics.RecordInputEvent("mouse")
		s.Dispatcher.DispatchMouse(ev.Mouse)
	case driver.EventResize:
		s.Compositor.Resize(ev.Width, ev.Height)
	}
}

// updateCursor shows/positions the cursor at the focused control's
// cursor position, if any is currently active (spec.md §4.C11
// update_cursor).
func (s *Scheduler) updateCursor() {
	id := s.State.Active()
	w := s.State.Get(s.State.EffectiveActivationTarget(id))
	if w == nil {
		return
	}
	w.Lock()
	focused := w.LastFocused
	w.Unlock()
	if focused == nil {
		return
	}
	if x, y, ok := focused.CursorPosition(); ok {
		s.Driver.WriteToConsole(w.Left+x, w.Top+y, "\x1b[?25h")
	}
}

// handleSystemKey implements spec.md §4.C10's system-level key table.
func (s *Scheduler) handleSystemKey(ev driver.KeyEvent) bool {
	switch {
	case ev.Key == driver.KeyChar && ev.Rune == 't' && ev.Mod&driver.ModCtrl != 0:
		s.State.CycleActive(1)
		return true
	case ev.Key == driver.KeyChar && ev.Rune == 'q' && ev.Mod&driver.ModCtrl != 0:
		s.exitRequested = true
		return true
	case ev.Key == driver.KeyChar && ev.Rune == 'x' && ev.Mod&driver.ModCtrl != 0:
		s.closeActive()
		return true
	case ev.Key == driver.KeyArrowUp && ev.Mod&driver.ModShift != 0:
		s.resizeActive(0, -1)
		return true
	case ev.Key == driver.KeyArrowDown && ev.Mod&driver.ModShift != 0:
		s.resizeActive(0, 1)
		return true
	case ev.Key == driver.KeyArrowLeft && ev.Mod&driver.ModShift != 0:
		s.resizeActive(-1, 0)
		return true
	case ev.Key == driver.KeyArrowRight && ev.Mod&driver.ModShift != 0:
		s.resizeActive(1, 0)
		return true
	case ev.Key == driver.KeyArrowUp && ev.Mod&driver.ModCtrl != 0:
		s.moveActive(0, -1)
		return true
	case ev.Key == driver.KeyArrowDown && ev.Mod&driver.ModCtrl != 0:
		s.moveActive(0, 1)
		return true
	case ev.Key == driver.KeyArrowLeft && ev.Mod&driver.ModCtrl != 0:
		s.moveActive(-1, 0)
		return true
	case ev.Key == driver.KeyArrowRight && ev.Mod&driver.ModCtrl != 0:
		s.moveActive(1, 0)
		return true
	case ev.Key == driver.KeyChar && ev.Mod&driver.ModAlt != 0 && ev.Rune >= '1' && ev.Rune <= '9':
		s.activateNth(int(ev.Rune - '1'))
		return true
	}
	return false
}

func (s *Scheduler) activeWindow() *wm.Window {
	id := s.State.Active()
	return s.State.Get(s.State.EffectiveActivationTarget(id))
}

func (s *Scheduler) resizeActive(dw, dh int) {
	w := s.activeWindow()
	if w == nil || !w.Flags.Resizable {
		return
	}
	w.Lock()
	w.Width += dw
	w.Height += dh
	if w.Width < 1 {
		w.Width = 1
	}
	if w.Height < 1 {
		w.Height = 1
	}
	w.Flags.IsInvalidated = true
	w.Flags.IsDirty = true
	w.Unlock()
}

func (s *Scheduler) moveActive(dx, dy int) {
	w := s.activeWindow()
	if w == nil || !w.Flags.Movable {
		return
	}
	w.Lock()
	w.Left += dx
	w.Top += dy
	w.Flags.IsDirty = true
	w.Unlock()
}

func (s *Scheduler) activateNth(n int) {
	windows := s.State.Windows()
	if n < 0 || n >= len(windows) {
		return
	}
	s.State.SetActive(windows[n].ID)
}

func (s *Scheduler) closeActive() {
	if w := s.activeWindow(); w != nil {
		s.Close(w)
	}
}

// Close begins the grace period for w (spec.md §4.C11): the window is
// locked down and given a closing status line, a background goroutine
// then waits for either the task to finish or the grace period to
// elapse.
func (s *Scheduler) Close(w *wm.Window) {
	if err := w.TryClose(); err != nil {
		wmlog.Get().Info("close vetoed", "window", w.Title, "error", err)
		return
	}

	h, hasTask := s.tasks[w.ID]

	w.Lock()
	w.Title = w.Title + " [Closing...]"
	status := control.NewText("Waiting for background work to finish…")
	w.Controls = append(w.Controls, status)
	w.Flags.Resizable = false
	w.Flags.Movable = false
	w.Flags.Closable = false
	w.Flags.IsInvalidated = true
	w.Flags.IsDirty = true
	w.Unlock()

	if !hasTask {
		s.completeClose(w)
		return
	}

	go func() {
		select {
		case <-h.done:
			s.completeClose(w)
		case <-time.After(s.Config.GracePeriod):
			h.cancel()
			s.becomeErrorBoundary(w)
		}
	}()
}

func (s *Scheduler) completeClose(w *wm.Window) {
	delete(s.tasks, w.ID)
	s.State.Unregister(w.ID)
	w.CompleteClose()
}

// becomeErrorBoundary transforms w per spec.md scenario S8: a
// persistent, always-on-top, movable-but-not-closable window with
// diagnostic text and a force-quit control.
func (s *Scheduler) becomeErrorBoundary(w *wm.Window) {
	w.Lock()
	defer w.Unlock()

	originalTitle := w.Title
	w.Title = "⚠ HUNG THREAD ERROR"
	w.Flags.AlwaysOnTop = true
	w.Flags.Movable = true
	w.Flags.Closable = false
	w.Flags.Resizable = false

	wmErr := wmerrors.New(wmerrors.HungBackgroundTask, "background task ignored cancellation within the grace period").WithDetails(originalTitle)
	wmlog.Get().Error("hung background task", "window", originalTitle, "error", wmErr)

	diagnostic := control.NewText(fmt.Sprintf("[bold]%s[/] did not respond to cancellation within the grace period.", originalTitle))
	quit := newForceQuitButton(s)
	w.Controls = []control.Control{diagnostic, quit}
	w.Flags.IsInvalidated = true
	w.Flags.IsDirty = true
}

// forceQuitButton is the error boundary's "Force Quit Application"
// control; Enter/click requests shutdown.
type forceQuitButton struct {
	control.Base
	s *Scheduler
}

func newForceQuitButton(s *Scheduler) *forceQuitButton {
	b := &forceQuitButton{s: s}
	b.Base.Margin = control.Margin{Top: 1}
	return b
}

func (b *forceQuitButton) MeasureDesired(availW, availH int) (int, int) {
	return len("[ Force Quit Application ]"), 1
}

func (b *forceQuitButton) Render(availW, availH int) []string {
	return []string{"\x1b[7m[ Force Quit Application ]\x1b[0m"}
}

func (b *forceQuitButton) CanFocus() bool          { return true }
func (b *forceQuitButton) CanFocusWithMouse() bool { return true }
func (b *forceQuitButton) WantsMouse() bool        { return true }

func (b *forceQuitButton) ProcessKey(ev driver.KeyEvent) bool {
	if ev.Key == driver.KeyEnter {
		b.s.exitRequested = true
		return true
	}
	return false
}

func (b *forceQuitButton) ProcessMouse(ev driver.MouseEvent) bool {
	if ev.Action == driver.ActionClicked && ev.Button == driver.Button1 {
		b.s.exitRequested = true
		return true
	}
	return false
}
