// Package epiweek derives epidemiological week numbers from calendar dates.
//
// The convention is Sunday-first 7-day buckets over the ordinal day of the
// year, numbered from 1. It matches the strftime %U week of year plus one,
// so a year can span weeks 1 through 54. The same function must be used for
// the reporting cutoff and for tagging observations: the weekly join between
// cases and climate aggregates only aligns when both sides share the rule.
package epiweek

import "time"

// Week returns the epidemiological week number for t, in [1, 54].
func Week(t time.Time) int {
	yday := t.YearDay() - 1          // 0-based ordinal day
	wday := int(t.Weekday())         // Sunday = 0
	return (yday+7-wday)/7 + 1
}

// YearWeek returns the calendar year of t together with its epidemiological
// week, the composite key used to align case and climate tables.
func YearWeek(t time.Time) (year, week int) {
	return t.Year(), Week(t)
}
