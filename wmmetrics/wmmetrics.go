// Package wmmetrics wires frame-level instrumentation (spec.md §8 "S2
// frame metrics", SPEC_FULL.md §10) into Prometheus client_golang,
// using a package-level registry instead of a shared http.Handler
// since the console window manager has no HTTP surface of its own.
//
// Grounded on the pack's claude-monitor metrics.go (package-level
// prometheus.NewCounterVec/NewGaugeVec/NewHistogramVec declarations,
// an Init that MustRegisters them, and small Record*/Set* wrapper
// functions so callers never touch the prometheus API directly).
package wmmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consolewm_frames_total",
		Help: "Total compositor frames rendered.",
	})

	frameDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "consolewm_frame_duration_seconds",
		Help:    "Wall time of one compositor frame pass.",
		Buckets: []float64{.0005, .001, .002, .004, .008, .016, .033, .066, .13},
	})

	bytesFlushedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consolewm_bytes_flushed_total",
		Help: "Total bytes written to the console driver by buffer.Flush.",
	})

	cellsFlushedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consolewm_cells_flushed_total",
		Help: "Total cells re-emitted by buffer.Flush.",
	})

	openWindows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "consolewm_open_windows",
		Help: "Number of windows currently registered with the window-state service.",
	})

	renderFaultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consolewm_render_faults_total",
		Help: "Total control Render panics recovered by the renderer.",
	}, []string{"window_title"})

	inputEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consolewm_input_events_total",
		Help: "Total dispatcher events by kind.",
	}, []string{"kind"})
)

// Register adds every collector to reg. Call once at startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		framesTotal,
		frameDuration,
		bytesFlushedTotal,
		cellsFlushedTotal,
		openWindows,
		renderFaultsTotal,
		inputEventsTotal,
	)
}

// RecordFrame records one compositor pass's duration and flush stats.
func RecordFrame(d time.Duration, bytesWritten, cellsWritten int) {
	framesTotal.Inc()
	frameDuration.Observe(d.Seconds())
	bytesFlushedTotal.Add(float64(bytesWritten))
	cellsFlushedTotal.Add(float64(cellsWritten))
}

// SetOpenWindows reports the current window count.
func SetOpenWindows(n int) {
	openWindows.Set(float64(n))
}

// RecordRenderFault records a recovered Render panic for title (spec.md
// §7 RenderFault).
func RecordRenderFault(windowTitle string) {
	renderFaultsTotal.WithLabelValues(windowTitle).Inc()
}

// RecordInputEvent records one dispatched key or mouse event.
func RecordInputEvent(kind string) {
	inputEventsTotal.WithLabelValues(kind).Inc()
}
