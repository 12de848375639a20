// Package pipeline contains the pure in-memory transforms that build the
// unified analysis table: case preparation, weekly climate aggregation and
// the (year, week) left join. Every function here is deterministic; the
// reporting date is injected by the caller instead of read from the clock.
package pipeline

import (
	"time"

	"epiwatch/internal/epiweek"
	"epiwatch/internal/models"
)

// PrepareCases filters case records to the current reporting week and
// normalizes missing counts to zero. The cutoff week is derived from the
// injected date with the same rule used to tag climate observations. Cases
// are intentionally not filtered by year, only by the week cutoff.
func PrepareCases(raw []models.CaseRecord, today time.Time) []models.CaseRecord {
	currentWeek := epiweek.Week(today)

	out := make([]models.CaseRecord, 0, len(raw))
	for _, rec := range raw {
		if rec.Week > currentWeek {
			continue
		}
		if rec.Cases == nil {
			zero := 0
			rec.Cases = &zero
		}
		out = append(out, rec)
	}

	return out
}
