package dataset

import (
	"sort"
	"strings"

	textcases "golang.org/x/text/cases"
	"golang.org/x/text/language"

	"epiwatch/internal/models"
)

// Store is the shared read-only copy of the analysis tables. It is built
// once after the pipeline runs and never written again, so concurrent
// readers need no locking. Disease names are normalized to title case here,
// in one place, so views and parameters always compare like with like.
type Store struct {
	cases    []models.CaseRecord
	merged   []models.MergedRecord
	diseases []string
	minWeek  int
	maxWeek  int
}

// MergedFilter selects rows from the merged diagnostic listing.
type MergedFilter struct {
	Disease  *string
	Variable *string
	Limit    int
	Offset   int
}

var titleCaser = textcases.Title(language.Und)

// TitleCase normalizes a disease name for display and comparison.
func TitleCase(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// NewStore builds the store from the prepared case table and the merged
// analysis table. Input slices are copied; callers may discard theirs.
func NewStore(cases []models.CaseRecord, merged []models.MergedRecord) *Store {
	s := &Store{
		cases:  make([]models.CaseRecord, len(cases)),
		merged: make([]models.MergedRecord, len(merged)),
	}

	distinct := make(map[string]struct{})
	s.minWeek, s.maxWeek = 0, 0

	for i, c := range cases {
		c.Disease = TitleCase(c.Disease)
		s.cases[i] = c
		distinct[c.Disease] = struct{}{}

		if s.minWeek == 0 || c.Week < s.minWeek {
			s.minWeek = c.Week
		}
		if c.Week > s.maxWeek {
			s.maxWeek = c.Week
		}
	}

	if s.minWeek == 0 {
		// No cases loaded; fall back to the full epidemiological year.
		s.minWeek, s.maxWeek = 1, 54
	}

	for i, m := range merged {
		if m.Disease != nil {
			name := TitleCase(*m.Disease)
			m.Disease = &name
		}
		s.merged[i] = m
	}

	s.diseases = make([]string, 0, len(distinct))
	for name := range distinct {
		s.diseases = append(s.diseases, name)
	}
	sort.Strings(s.diseases)

	return s
}

// Cases returns the prepared case table. Callers must not mutate it.
func (s *Store) Cases() []models.CaseRecord {
	return s.cases
}

// Merged returns the unified analysis table. Callers must not mutate it.
func (s *Store) Merged() []models.MergedRecord {
	return s.merged
}

// Diseases returns the distinct title-cased disease names, sorted.
func (s *Store) Diseases() []string {
	return s.diseases
}

// HasDisease reports whether name is a known disease.
func (s *Store) HasDisease(name string) bool {
	for _, d := range s.diseases {
		if d == name {
			return true
		}
	}
	return false
}

// WeekBounds returns the [min, max] epidemiological weeks present in the
// case table; view week ranges are clamped to these bounds.
func (s *Store) WeekBounds() (min, max int) {
	return s.minWeek, s.maxWeek
}

// ClampWeekRange clamps [lo, hi] to the data bounds, swapping if reversed.
func (s *Store) ClampWeekRange(lo, hi int) (int, int) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < s.minWeek {
		lo = s.minWeek
	}
	if hi > s.maxWeek {
		hi = s.maxWeek
	}
	return lo, hi
}

// MergedPage returns one page of the merged table plus the total row count
// matching the filter. Climate-only rows (nil case fields) are visible here.
func (s *Store) MergedPage(filter MergedFilter) ([]models.MergedRecord, int) {
	matched := make([]models.MergedRecord, 0, len(s.merged))
	for _, m := range s.merged {
		if filter.Disease != nil && (m.Disease == nil || *m.Disease != *filter.Disease) {
			continue
		}
		if filter.Variable != nil && m.Variable != *filter.Variable {
			continue
		}
		matched = append(matched, m)
	}

	total := len(matched)

	if filter.Offset >= total {
		return []models.MergedRecord{}, total
	}
	matched = matched[filter.Offset:]

	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total
}
