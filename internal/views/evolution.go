package views

import (
	"sort"

	"epiwatch/internal/dataset"
	"epiwatch/pkg/logging"
	"epiwatch/pkg/metrics"
)

// Aggregation selects how weekly totals are presented.
type Aggregation string

const (
	AggregationTotal      Aggregation = "total"
	AggregationCumulative Aggregation = "cumulative"
)

// EvolutionParams are the user-selected parameters of the evolution view.
type EvolutionParams struct {
	Disease     string      `json:"disease"`
	WeekRange   [2]int      `json:"week_range"`
	ChartKind   ChartKind   `json:"chart_kind"`
	Aggregation Aggregation `json:"aggregation"`
}

// EvolutionPatch is a partial parameter update; nil fields keep their
// current value. Applying a patch triggers one synchronous recompute.
type EvolutionPatch struct {
	Disease     *string      `json:"disease,omitempty"`
	WeekMin     *int         `json:"week_min,omitempty"`
	WeekMax     *int         `json:"week_max,omitempty"`
	ChartKind   *ChartKind   `json:"chart_kind,omitempty"`
	Aggregation *Aggregation `json:"aggregation,omitempty"`
}

// EvolutionPoint is one week on the evolution chart.
type EvolutionPoint struct {
	Week  int `json:"week"`
	Cases int `json:"cases"`
}

// EvolutionData is the derived payload of the evolution view.
type EvolutionData struct {
	Params EvolutionParams  `json:"params"`
	Points []EvolutionPoint `json:"points"`
	Chart  ChartSpec        `json:"chart"`
}

// EvolutionView shows case counts per week for one disease, either as
// weekly totals or as a running cumulative sum.
type EvolutionView struct {
	base
	params EvolutionParams
	data   EvolutionData
}

// NewEvolutionView creates the view with its defaults (first disease, full
// data week range, line chart of weekly totals) and computes the initial
// payload.
func NewEvolutionView(store *dataset.Store, logger *logging.Logger, collector *metrics.Collector) *EvolutionView {
	minWeek, maxWeek := store.WeekBounds()

	v := &EvolutionView{
		base: base{
			name:    "evolution",
			store:   store,
			logger:  logger,
			metrics: collector,
		},
		params: EvolutionParams{
			WeekRange:   [2]int{minWeek, maxWeek},
			ChartKind:   ChartLine,
			Aggregation: AggregationTotal,
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
func (v *EvolutionView) Params() EvolutionParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// Data returns the current derived payload.
func (v *EvolutionView) Data() EvolutionData {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.data
}

// SetParams validates and applies a parameter patch, recomputes, and
// returns the fresh payload. Invalid patches change nothing.
func (v *EvolutionView) SetParams(patch EvolutionPatch) (EvolutionData, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := v.params

	if patch.Disease != nil {
		if !v.store.HasDisease(*patch.Disease) {
			return EvolutionData{}, &ParamError{
				Param:   "disease",
				Value:   *patch.Disease,
				Message: "unknown disease",
			}
		}
		next.Disease = *patch.Disease
	}

	if patch.WeekMin != nil {
		next.WeekRange[0] = *patch.WeekMin
	}
	if patch.WeekMax != nil {
		next.WeekRange[1] = *patch.WeekMax
	}
	next.WeekRange[0], next.WeekRange[1] = v.store.ClampWeekRange(next.WeekRange[0], next.WeekRange[1])

	if patch.ChartKind != nil {
		switch *patch.ChartKind {
		case ChartLine, ChartBar:
			next.ChartKind = *patch.ChartKind
		default:
			return EvolutionData{}, &ParamError{
				Param:   "chart_kind",
				Value:   string(*patch.ChartKind),
				Message: "must be line or bar",
			}
		}
	}

	if patch.Aggregation != nil {
		switch *patch.Aggregation {
		case AggregationTotal, AggregationCumulative:
			next.Aggregation = *patch.Aggregation
		default:
			return EvolutionData{}, &ParamError{
				Param:   "aggregation",
				Value:   string(*patch.Aggregation),
				Message: "must be total or cumulative",
			}
		}
	}

	v.params = next
	v.recompute(v.recomputeLocked)

	return v.data, nil
}

// recomputeLocked rebuilds the payload from (store, params). Caller holds mu.
func (v *EvolutionView) recomputeLocked() {
	totals := make(map[int]int)
	for _, c := range v.store.Cases() {
		if c.Disease != v.params.Disease {
			continue
		}
		if c.Week < v.params.WeekRange[0] || c.Week > v.params.WeekRange[1] {
			continue
		}
		totals[c.Week] += c.CaseCount()
	}

	weeks := make([]int, 0, len(totals))
	for week := range totals {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	points := make([]EvolutionPoint, 0, len(weeks))
	running := 0
	for _, week := range weeks {
		value := totals[week]
		if v.params.Aggregation == AggregationCumulative {
			running += value
			value = running
		}
		points = append(points, EvolutionPoint{Week: week, Cases: value})
	}

	yLabel := "Cases"
	if v.params.Aggregation == AggregationCumulative {
		yLabel = "Cumulative cases"
	}

	v.data = EvolutionData{
		Params: v.params,
		Points: points,
		Chart: ChartSpec{
			Kind:       v.params.ChartKind,
			Title:      v.params.Disease + " case evolution",
			XLabel:     "Epidemiological week",
			YLabel:     yLabel,
			XTickEvery: 5,
			Gridlines:  false,
			Border:     true,
		},
	}
}
