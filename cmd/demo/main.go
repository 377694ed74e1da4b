// Command demo wires the console window manager end to end: two
// windows (a counter driven by a signals.Effect and a scrollable log)
// on a stdio driver, composited at ~100fps by the scheduler.
//
// Grounded on the teacher's cmd/demo/main.go (a signals.New counter
// mutated from a goroutine, rendered through a template), generalized
// from "one full-screen template" to "two independently focusable,
// movable windows managed by the window-state service."
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/consolewm/consolewm/buffer"
	"github.com/consolewm/consolewm/compositor"
	"github.com/consolewm/consolewm/control"
	"github.com/consolewm/consolewm/dispatch"
	"github.com/consolewm/consolewm/driver/stdio"
	"github.com/consolewm/consolewm/scheduler"
	"github.com/consolewm/consolewm/signals"
	"github.com/consolewm/consolewm/theme"
	"github.com/consolewm/consolewm/wm"
	"github.com/consolewm/consolewm/wmmetrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	reg := prometheus.NewRegistry()
	wmmetrics.Register(reg)

	drv := stdio.New()
	if err := drv.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to start driver:", err)
		os.Exit(1)
	}
	defer drv.Stop()
	drv.Clear()

	w, h := drv.ScreenSize()

	state := wm.NewState()
	th := theme.Default()
	comp := compositor.New(w, h, state, th, buffer.Line)
	comp.TopStatus = "[bold]consolewm demo[/]  Ctrl+T cycle  Ctrl+X close  Ctrl+Q quit"
	disp := dispatch.New(state, nil, func() int64 { return time.Now().UnixMilli() })
	sched := scheduler.New(state, disp, comp, drv, scheduler.DefaultConfig())

	count := signals.New(0)
	counterText := control.NewTemplate("Count: **%v**\n\nPress Ctrl+T to switch windows.", nil, count)
	counter := &wm.Window{
		Title: "Counter", Left: 2, Top: 2, Width: 30, Height: 8,
		BorderStyle: theme.BorderRounded,
		Controls:    []control.Control{counterText},
	}
	counter.Flags = wm.Flags{Resizable: true, Movable: true, Closable: true, ShowTitle: true, ShowClose: true}
	state.Register(counter, true)

	signals.CreateEffect(func() {
		count.Get()
		counter.Invalidate()
	})

	logText := control.NewText("Log window.\nScroll with arrow keys.")
	logWindow := &wm.Window{
		Title: "Log", Left: 36, Top: 2, Width: 30, Height: 10,
		BorderStyle: theme.BorderSingle,
		Controls:    []control.Control{logText},
	}
	logWindow.Flags = wm.Flags{Resizable: true, Movable: true, Closable: true, Scrollable: true, ShowTitle: true, ShowClose: true}
	state.Register(logWindow, false)

	sched.RunTask(logWindow, func(ctx context.Context) error {
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				logWindow.Lock()
				logText.Markup += fmt.Sprintf("\ntick %d", i)
				logWindow.Invalidate()
				logWindow.Unlock()
			}
		}
	})

	go func() {
		for {
			time.Sleep(time.Second)
			count.Set(count.Get() + 1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	os.Exit(sched.Run(ctx))
}
