package views

import (
	"context"
	"errors"

	"epiwatch/internal/dataset"
	"epiwatch/internal/stats"
	"epiwatch/pkg/logging"
	"epiwatch/pkg/metrics"
)

// CorrelationParams are the user-selected parameters of the correlation view.
type CorrelationParams struct {
	Disease  string `json:"disease"`
	Variable string `json:"climate_variable"`
}

// CorrelationPatch is a partial parameter update for the correlation view.
type CorrelationPatch struct {
	Disease  *string `json:"disease,omitempty"`
	Variable *string `json:"climate_variable,omitempty"`
}

// ScatterPoint pairs one week's mean climate value with its case count.
type ScatterPoint struct {
	X    float64 `json:"mean_value"`
	Y    int     `json:"cases"`
	Week int     `json:"week"`
}

// CorrelationData is the derived payload of the correlation view. When
// fewer than two valid paired points survive the filter, InsufficientData
// is set and the regression fields stay empty.
type CorrelationData struct {
	Params           CorrelationParams `json:"params"`
	VariableLabel    string            `json:"variable_label"`
	Points           []ScatterPoint    `json:"points"`
	Regression       *stats.Regression `json:"regression,omitempty"`
	ConfidenceBand   []stats.BandPoint `json:"confidence_band,omitempty"`
	InsufficientData bool              `json:"insufficient_data"`
	Chart            ChartSpec         `json:"chart"`
}

// CorrelationView shows one disease's weekly case counts against the weekly
// mean of one climate variable, with a fitted regression line, its 95%
// confidence band, and the Pearson correlation test.
type CorrelationView struct {
	base
	params CorrelationParams
	data   CorrelationData
}

// NewCorrelationView creates the view with its defaults (first disease,
// first climate variable) and computes the initial payload.
func NewCorrelationView(store *dataset.Store, logger *logging.Logger, collector *metrics.Collector) *CorrelationView {
	v := &CorrelationView{
		base: base{
			name:    "correlation",
			store:   store,
			logger:  logger,
			metrics: collector,
		},
		params: CorrelationParams{
			Variable: VariableNames()[0],
		},
	}
	if diseases := store.Diseases(); len(diseases) > 0 {
		v.params.Disease = diseases[0]
	}

	v.mu.Lock()
	v.recompute(v.recomputeLocked)
	v.mu.Unlock()

	return v
}

// Params returns a snapshot of the current parameters.
func (v *CorrelationView) Params() CorrelationParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// Data returns the current derived payload.
func (v *CorrelationView) Data() CorrelationData {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.data
}

// SetParams validates and applies a parameter patch, recomputes, and
// returns the fresh payload. Invalid patches change nothing.
func (v *CorrelationView) SetParams(patch CorrelationPatch) (CorrelationData, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := v.params

	if patch.Disease != nil {
		if !v.store.HasDisease(*patch.Disease) {
			return CorrelationData{}, &ParamError{
				Param:   "disease",
				Value:   *patch.Disease,
				Message: "unknown disease",
			}
		}
		next.Disease = *patch.Disease
	}

	if patch.Variable != nil {
		if _, ok := VariableLabel(*patch.Variable); !ok {
			return CorrelationData{}, &ParamError{
				Param:   "climate_variable",
				Value:   *patch.Variable,
				Message: "unknown climate variable",
			}
		}
		next.Variable = *patch.Variable
	}

	v.params = next
	v.recompute(v.recomputeLocked)

	return v.data, nil
}

// recomputeLocked rebuilds the payload from (store, params). Caller holds mu.
// Rows with an undefined mean or missing case count are dropped before the
// fit: an all-missing climate week must not enter the correlation as zero.
func (v *CorrelationView) recomputeLocked() {
	label, _ := VariableLabel(v.params.Variable)

	points := make([]ScatterPoint, 0)
	var xs, ys []float64

	for _, m := range v.store.Merged() {
		if m.Disease == nil || *m.Disease != v.params.Disease {
			continue
		}
		if m.Variable != v.params.Variable {
			continue
		}
		if m.Mean == nil || m.Cases == nil {
			continue
		}

		points = append(points, ScatterPoint{X: *m.Mean, Y: *m.Cases, Week: m.Week})
		xs = append(xs, *m.Mean)
		ys = append(ys, float64(*m.Cases))
	}

	data := CorrelationData{
		Params:        v.params,
		VariableLabel: label,
		Points:        points,
		Chart: ChartSpec{
			Kind:      ChartScatter,
			Title:     v.params.Disease + " vs " + label,
			XLabel:    label,
			YLabel:    "Cases",
			Gridlines: false,
			Border:    true,
		},
	}

	reg, err := stats.Fit(xs, ys)
	switch {
	case errors.Is(err, stats.ErrInsufficientData):
		data.InsufficientData = true
		if v.metrics != nil {
			v.metrics.RecordInsufficientData(v.name)
		}
		if v.logger != nil {
			v.logger.Info(context.Background(), "[VIEW_INSUFFICIENT_DATA] Too few points for regression", logging.Fields{
				"view":     v.name,
				"disease":  v.params.Disease,
				"variable": v.params.Variable,
				"points":   len(points),
			})
		}
	case err != nil:
		data.InsufficientData = true
	default:
		data.Regression = reg
		data.ConfidenceBand = reg.ConfidenceBand()
	}

	v.data = data
}
