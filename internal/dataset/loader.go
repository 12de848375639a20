// Package dataset loads the two tabular sources and holds the unified
// in-memory tables the dashboard serves. Both sources are read exactly once
// at startup; everything in the Store is read-only afterwards.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"epiwatch/internal/models"
)

// Cases source columns. NOMBRE/SE/N follow the upstream surveillance export;
// the year column is optional and falls back to the configured year.
const (
	colDisease = "NOMBRE"
	colWeek    = "SE"
	colCount   = "N"
	colYear    = "ANO"
)

// Climate source columns.
const (
	colLocation = "ccpp_ubigeo"
	colDay      = "day"
	colVariable = "variable"
	colValue    = "value"
)

// ParseError reports a malformed row. Any ParseError is fatal at load time:
// the pipeline cannot derive week numbers from rows it cannot read.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %v", e.Source, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadCases reads the case-count source from path.
func LoadCases(path string, defaultYear int) ([]models.CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cases source: %w", err)
	}
	defer f.Close()

	return ReadCases(f, path, defaultYear)
}

// ReadCases parses case records from r. The first row must be a header
// containing at least the NOMBRE, SE and N columns.
func ReadCases(r io.Reader, source string, defaultYear int) ([]models.CaseRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read cases header: %w", err)
	}

	idx, err := columnIndex(header, source, colDisease, colWeek, colCount)
	if err != nil {
		return nil, err
	}
	yearIdx, hasYear := optionalColumn(header, colYear)

	var records []models.CaseRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Source: source, Line: line, Err: err}
		}

		raw := models.RawCaseRow{
			Disease: row[idx[colDisease]],
			Week:    row[idx[colWeek]],
			Count:   row[idx[colCount]],
		}
		if hasYear {
			raw.Year = row[yearIdx]
		}

		rec, err := raw.ToCaseRecord(defaultYear)
		if err != nil {
			return nil, &ParseError{Source: source, Line: line, Err: err}
		}
		records = append(records, *rec)
	}

	return records, nil
}

// LoadClimate reads the climate/air-quality source from path.
func LoadClimate(path string) ([]models.ClimateObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open climate source: %w", err)
	}
	defer f.Close()

	return ReadClimate(f, path)
}

// ReadClimate parses climate observations from r. A malformed date anywhere
// aborts the load.
func ReadClimate(r io.Reader, source string) ([]models.ClimateObservation, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read climate header: %w", err)
	}

	idx, err := columnIndex(header, source, colLocation, colDay, colVariable, colValue)
	if err != nil {
		return nil, err
	}

	var observations []models.ClimateObservation
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Source: source, Line: line, Err: err}
		}

		raw := models.RawClimateRow{
			LocationID: row[idx[colLocation]],
			Date:       row[idx[colDay]],
			Variable:   row[idx[colVariable]],
			Value:      row[idx[colValue]],
		}

		obs, err := raw.ToObservation()
		if err != nil {
			return nil, &ParseError{Source: source, Line: line, Err: err}
		}
		observations = append(observations, *obs)
	}

	return observations, nil
}

// columnIndex maps required column names to their positions in header.
func columnIndex(header []string, source string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(required))
	for _, name := range required {
		pos, ok := optionalColumn(header, name)
		if !ok {
			return nil, fmt.Errorf("%s: missing required column %q", source, name)
		}
		idx[name] = pos
	}
	return idx, nil
}

func optionalColumn(header []string, name string) (int, bool) {
	for i, col := range header {
		if col == name {
			return i, true
		}
	}
	return 0, false
}
