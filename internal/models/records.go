package models

import (
	"strconv"
	"strings"
	"time"
)

// AbsentVariable marks a merged row whose climate aggregate carried no
// variable tag. The upstream pipeline used a literal 0 here, which mixed a
// numeric sentinel into a string column; rows tagged with this marker should
// be reported back to the data producer rather than analyzed.
const AbsentVariable = "(absent)"

// CaseRecord is one weekly case count for one disease.
// NULL counts represented as pointers, normalized to 0 by the preparer.
type CaseRecord struct {
	Disease string `json:"disease"`
	Year    int    `json:"year"`
	Week    int    `json:"epidemiological_week"`
	Cases   *int   `json:"case_count,omitempty"`
}

// CaseCount returns the count with the missing-equals-zero policy applied.
func (c *CaseRecord) CaseCount() int {
	if c.Cases == nil {
		return 0
	}
	return *c.Cases
}

// ClimateObservation is a single raw climate or air-quality reading.
type ClimateObservation struct {
	LocationID string    `json:"location_id"`
	Date       time.Time `json:"date"`
	Variable   string    `json:"variable"`
	Value      *float64  `json:"value,omitempty"`
}

// WeeklyClimateAggregate is the mean of one variable over one
// epidemiological week. Mean is nil when every reading in the group was
// missing; that state must never be coerced to zero, or correlations
// downstream would be biased toward the origin.
type WeeklyClimateAggregate struct {
	Year     int      `json:"year"`
	Week     int      `json:"epidemiological_week"`
	Variable string   `json:"variable"`
	Mean     *float64 `json:"mean_value,omitempty"`
}

// MergedRecord is one row of the unified analysis table: a weekly climate
// aggregate left-joined onto case records by (year, week). Disease and Cases
// are nil when the week had climate data but no reported cases.
type MergedRecord struct {
	Year     int      `json:"year"`
	Week     int      `json:"epidemiological_week"`
	Variable string   `json:"variable"`
	Mean     *float64 `json:"mean_value,omitempty"`
	Disease  *string  `json:"disease,omitempty"`
	Cases    *int     `json:"case_count,omitempty"`
}

// RawCaseRow is a single line from the cases source before normalization.
// Fields hold the untrimmed cell text; empty Count means a missing value.
type RawCaseRow struct {
	Disease string
	Week    string
	Count   string
	Year    string // optional column; empty falls back to the loader's year
}

// ToCaseRecord converts RawCaseRow to CaseRecord.
// Missing counts stay nil here; zero-filling is the preparer's decision.
func (r *RawCaseRow) ToCaseRecord(defaultYear int) (*CaseRecord, error) {
	week, err := strconv.Atoi(strings.TrimSpace(r.Week))
	if err != nil {
		return nil, &ValidationError{
			Field:   "epidemiological_week",
			Value:   r.Week,
			Message: "invalid epidemiological week, expected integer",
		}
	}

	rec := &CaseRecord{
		Disease: strings.TrimSpace(r.Disease),
		Year:    defaultYear,
		Week:    week,
	}

	if y := strings.TrimSpace(r.Year); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return nil, &ValidationError{
				Field:   "year",
				Value:   r.Year,
				Message: "invalid year, expected integer",
			}
		}
		rec.Year = year
	}

	if c := strings.TrimSpace(r.Count); c != "" {
		count, err := strconv.Atoi(c)
		if err != nil {
			return nil, &ValidationError{
				Field:   "case_count",
				Value:   r.Count,
				Message: "invalid case count, expected integer",
			}
		}
		rec.Cases = &count
	}

	return rec, nil
}

// RawClimateRow is a single line from the climate source.
type RawClimateRow struct {
	LocationID string
	Date       string
	Variable   string
	Value      string
}

// ToObservation converts RawClimateRow to ClimateObservation.
// A malformed date is a hard error: week derivation is impossible without it.
// Empty and NA cells become nil values, which aggregation later ignores.
func (r *RawClimateRow) ToObservation() (*ClimateObservation, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date))
	if err != nil {
		return nil, &ValidationError{
			Field:   "date",
			Value:   r.Date,
			Message: "invalid date format, expected YYYY-MM-DD",
		}
	}

	obs := &ClimateObservation{
		LocationID: strings.TrimSpace(r.LocationID),
		Date:       date,
		Variable:   strings.TrimSpace(r.Variable),
	}

	switch v := strings.TrimSpace(r.Value); v {
	case "", "NA", "NaN":
		// missing reading
	default:
		value, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &ValidationError{
				Field:   "value",
				Value:   r.Value,
				Message: "invalid value, expected float",
			}
		}
		obs.Value = &value
	}

	return obs, nil
}

// ValidationError represents a data validation error in a source row.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
