package pipeline

import "epiwatch/internal/models"

// joinKey is the (year, epidemiological week) equality key of the join.
type joinKey struct {
	Year int
	Week int
}

// Join left-joins weekly climate aggregates onto case records by
// (year, week). Every aggregate row appears in the output: once per matching
// case row when the week has case records for several diseases (a left join
// fans out on multiple matches), or exactly once with nil case fields when
// the week has climate data but no reported cases. No deduplication and no
// secondary sort is applied.
//
// An aggregate without a variable tag is stamped with models.AbsentVariable
// so the defect stays visible instead of masquerading as a real variable.
func Join(aggs []models.WeeklyClimateAggregate, cases []models.CaseRecord) []models.MergedRecord {
	byWeek := make(map[joinKey][]models.CaseRecord, len(cases))
	for _, c := range cases {
		key := joinKey{Year: c.Year, Week: c.Week}
		byWeek[key] = append(byWeek[key], c)
	}

	out := make([]models.MergedRecord, 0, len(aggs))
	for _, agg := range aggs {
		variable := agg.Variable
		if variable == "" {
			variable = models.AbsentVariable
		}

		matches := byWeek[joinKey{Year: agg.Year, Week: agg.Week}]
		if len(matches) == 0 {
			out = append(out, models.MergedRecord{
				Year:     agg.Year,
				Week:     agg.Week,
				Variable: variable,
				Mean:     agg.Mean,
			})
			continue
		}

		for _, c := range matches {
			disease := c.Disease
			out = append(out, models.MergedRecord{
				Year:     agg.Year,
				Week:     agg.Week,
				Variable: variable,
				Mean:     agg.Mean,
				Disease:  &disease,
				Cases:    c.Cases,
			})
		}
	}

	return out
}
