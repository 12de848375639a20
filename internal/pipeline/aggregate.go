package pipeline

import (
	"epiwatch/internal/epiweek"
	"epiwatch/internal/models"
)

// groupKey identifies one weekly aggregation group.
type groupKey struct {
	Year     int
	Week     int
	Variable string
}

// AggregateClimate reduces raw observations to per-(year, week, variable)
// means. Rows survive the filter when the location matches exactly, the
// calendar year equals year, and the variable is not in exclude (the climate
// source carries disease-tagged pseudo-variables that must not be averaged).
//
// The mean ignores nil readings. A group whose readings are all nil keeps a
// nil mean: "no data" has to stay distinguishable from a measured zero.
// Output order follows first appearance of each group in the input, which
// makes repeated runs over the same input yield identical slices.
func AggregateClimate(obs []models.ClimateObservation, locationID string, year int, exclude map[string]struct{}) []models.WeeklyClimateAggregate {
	type accumulator struct {
		sum float64
		n   int
	}

	groups := make(map[groupKey]*accumulator)
	order := make([]groupKey, 0)

	for _, o := range obs {
		if o.LocationID != locationID || o.Date.Year() != year {
			continue
		}
		if _, excluded := exclude[o.Variable]; excluded {
			continue
		}

		key := groupKey{Year: year, Week: epiweek.Week(o.Date), Variable: o.Variable}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{}
			groups[key] = acc
			order = append(order, key)
		}

		if o.Value != nil {
			acc.sum += *o.Value
			acc.n++
		}
	}

	out := make([]models.WeeklyClimateAggregate, 0, len(order))
	for _, key := range order {
		agg := models.WeeklyClimateAggregate{
			Year:     key.Year,
			Week:     key.Week,
			Variable: key.Variable,
		}
		if acc := groups[key]; acc.n > 0 {
			mean := acc.sum / float64(acc.n)
			agg.Mean = &mean
		}
		out = append(out, agg)
	}

	return out
}
