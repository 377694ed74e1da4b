package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/consolewm/consolewm/buffer"
	"github.com/consolewm/consolewm/compositor"
	"github.com/consolewm/consolewm/control"
	"github.com/consolewm/consolewm/dispatch"
	"github.com/consolewm/consolewm/driver"
	"github.com/consolewm/consolewm/theme"
	"github.com/consolewm/consolewm/wm"
)

func newTestScheduler() (*Scheduler, *wm.Window) {
	state := wm.NewState()
	w := &wm.Window{Width: 20, Height: 10}
	w.Flags.Resizable = true
	w.Flags.Movable = true
	w.Flags.Closable = true
	state.Register(w, true)

	disp := dispatch.New(state, nil, func() int64 { return 0 })
	comp := compositor.New(40, 20, state, theme.Default(), buffer.Line)
	cfg := Config{FrameInterval: time.Millisecond, GracePeriod: 20 * time.Millisecond}
	s := New(state, disp, comp, nil, cfg)
	return s, w
}

// TestCloseWithNoTaskCompletesImmediately covers the common case of
// spec.md §4.C11's grace period: a window with no background task is
// unregistered right away.
func TestCloseWithNoTaskCompletesImmediately(t *testing.T) {
	s, w := newTestScheduler()
	s.Close(w)
	if s.State.Get(w.ID) != nil {
		t.Errorf("expected window with no background task to be unregistered immediately")
	}
}

// TestHungTaskBecomesErrorBoundary is spec.md scenario S8: a task that
// ignores cancellation causes the window to survive as an error
// boundary instead of being removed.
func TestHungTaskBecomesErrorBoundary(t *testing.T) {
	s, w := newTestScheduler()
	w.Title = "Downloader"
	s.RunTask(w, func(ctx context.Context) error {
		<-make(chan struct{}) // never returns, ignores ctx.Done
		return nil
	})

	s.Close(w)
	time.Sleep(60 * time.Millisecond)

	if s.State.Get(w.ID) == nil {
		t.Fatalf("expected the hung window to remain registered as an error boundary")
	}
	w.Lock()
	title := w.Title
	alwaysOnTop := w.Flags.AlwaysOnTop
	movable := w.Flags.Movable
	closable := w.Flags.Closable
	diagnostic, _ := w.Controls[0].(*control.Text)
	w.Unlock()

	if title != "⚠ HUNG THREAD ERROR" {
		t.Errorf("expected error boundary title, got %q", title)
	}
	if !alwaysOnTop || !movable || closable {
		t.Errorf("expected always_on_top=true, movable=true, closable=false, got %+v/%v/%v", alwaysOnTop, movable, closable)
	}
	if diagnostic == nil || !strings.Contains(diagnostic.Markup, "Downloader") {
		t.Errorf("expected the diagnostic text to name the original window title, got %+v", diagnostic)
	}
}

// TestHandleFlushErrorShutsDownAfterThreshold covers spec.md §7's
// DriverIOFault policy: the scheduler tolerates transient console write
// failures but shuts down with a nonzero exit code once they persist
// past Config.MaxFlushFailures.
func TestHandleFlushErrorShutsDownAfterThreshold(t *testing.T) {
	s, _ := newTestScheduler()
	s.Config.MaxFlushFailures = 3
	writeErr := errors.New("write failed")

	for i := 0; i < 2; i++ {
		s.handleFlushError(writeErr)
		if s.exitRequested {
			t.Fatalf("did not expect shutdown before the failure threshold, attempt %d", i+1)
		}
	}

	s.handleFlushError(writeErr)
	if !s.exitRequested {
		t.Errorf("expected shutdown once failures reached the threshold")
	}
	if s.exitCode == 0 {
		t.Errorf("expected a nonzero exit code after persistent driver failure")
	}
}

// TestCloseVetoedLeavesWindowRegistered covers spec.md §7 CloseVetoed:
// an OnClosing handler that declines the close leaves the window
// exactly as it was, without starting the grace period.
func TestCloseVetoedLeavesWindowRegistered(t *testing.T) {
	s, w := newTestScheduler()
	w.OnClosing = func(*wm.Window) bool { return false }

	s.Close(w)

	if s.State.Get(w.ID) == nil {
		t.Errorf("expected a vetoed close to leave the window registered")
	}
	w.Lock()
	defer w.Unlock()
	if !w.Flags.Closable {
		t.Errorf("expected a vetoed close to leave the window's flags untouched")
	}
}

// TestTaskCompletingBeforeGracePeriodClosesNormally exercises the
// success path of spec.md §4.C11: a cooperative task finishing within
// the grace period lets the window close.
func TestTaskCompletingBeforeGracePeriodClosesNormally(t *testing.T) {
	s, w := newTestScheduler()
	s.RunTask(w, func(ctx context.Context) error {
		return nil
	})

	s.Close(w)
	time.Sleep(10 * time.Millisecond)

	if s.State.Get(w.ID) != nil {
		t.Errorf("expected window to be unregistered once its task completed within the grace period")
	}
}

// TestCtrlQRequestsExit covers the Ctrl+Q system key.
func TestCtrlQRequestsExit(t *testing.T) {
	s, _ := newTestScheduler()
	ev := driver.KeyEvent{Key: driver.KeyChar, Rune: 'q', Mod: driver.ModCtrl}
	handled := s.handleSystemKey(ev)
	if !handled || !s.exitRequested {
		t.Errorf("expected Ctrl+Q to request shutdown")
	}
}

// TestTickFlashCountsDownAndStaysDirty is scenario S7: a flashed window
// keeps repainting until its flash timer expires.
func TestTickFlashCountsDownAndStaysDirty(t *testing.T) {
	s, w := newTestScheduler()
	w.Flash(2)

	s.tickFlash()
	w.Lock()
	frames := w.FlashFrames
	w.Unlock()
	if frames != 1 {
		t.Fatalf("expected 1 frame remaining, got %d", frames)
	}

	s.tickFlash()
	w.Lock()
	frames = w.FlashFrames
	dirty := w.Flags.IsDirty
	w.Unlock()
	if frames != 0 {
		t.Fatalf("expected flash to reach 0, got %d", frames)
	}
	if !dirty {
		t.Errorf("expected window to repaint once more on flash expiry")
	}
}

