// Package views implements the two interactive dashboard views. Each view
// owns its user-selected parameters and a derived payload recomputed
// synchronously from the shared read-only store whenever a parameter
// changes: Idle -> Recomputing -> Idle, with no hidden history. The two
// views share the skeleton in this file and differ only in their parameter
// set and recompute function.
package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"epiwatch/internal/dataset"
	"epiwatch/pkg/logging"
	"epiwatch/pkg/metrics"
)

// Status is the recompute cycle state of a view.
type Status int

const (
	Idle Status = iota
	Recomputing
)

func (s Status) String() string {
	if s == Recomputing {
		return "recomputing"
	}
	return "idle"
}

// ParamError reports an invalid user-selected parameter value.
type ParamError struct {
	Param   string
	Value   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s=%q: %s", e.Param, e.Value, e.Message)
}

// ChartKind selects the mark type of a rendered chart.
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartBar     ChartKind = "bar"
	ChartScatter ChartKind = "scatter"
)

// ChartSpec carries the rendering hints the plot region needs. The axis
// styling is fixed: ticks every 5 weeks, no gridlines, bordered frame.
type ChartSpec struct {
	Kind       ChartKind `json:"kind"`
	Title      string    `json:"title"`
	XLabel     string    `json:"x_label"`
	YLabel     string    `json:"y_label"`
	XTickEvery int       `json:"x_tick_every,omitempty"`
	Gridlines  bool      `json:"gridlines"`
	Border     bool      `json:"border"`
}

// base is the shared view skeleton: the immutable store, the parameter
// guard, and the synchronous recompute cycle with its telemetry.
type base struct {
	name    string
	store   *dataset.Store
	logger  *logging.Logger
	metrics *metrics.Collector

	mu     sync.Mutex
	status Status
}

// recompute runs fn as one full recompute cycle. The caller holds mu.
func (b *base) recompute(fn func()) {
	b.status = Recomputing
	start := time.Now()

	fn()

	duration := time.Since(start)
	b.status = Idle

	if b.metrics != nil {
		b.metrics.ObserveRecompute(b.name, duration)
	}
	if b.logger != nil {
		b.logger.Debug(context.Background(), "[VIEW_RECOMPUTE] View recomputed", logging.Fields{
			"view":        b.name,
			"duration_us": duration.Microseconds(),
		})
	}
}

// Status returns the current cycle state of the view.
func (b *base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}
