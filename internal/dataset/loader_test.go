package dataset

import (
	"errors"
	"strings"
	"testing"
	"time"

	"epiwatch/internal/models"
)

const casesCSV = `NOMBRE,SE,N
LEISHMANIASIS,1,5
LEISHMANIASIS,2,
LEPTOSPIROSIS,1,3
`

const casesCSVWithYear = `NOMBRE,SE,N,ANO
LEISHMANIASIS,1,5,2023
`

const climateCSV = `ccpp_ubigeo,day,variable,value
1000000000,2024-01-15,rain,2.5
1000000000,2024-01-16,rain,
1000000000,2024-01-16,temp_out,21.3
`

func TestReadCases(t *testing.T) {
	records, err := ReadCases(strings.NewReader(casesCSV), "cases.csv", 2024)
	if err != nil {
		t.Fatalf("ReadCases() error = %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}

	first := records[0]
	if first.Disease != "LEISHMANIASIS" || first.Week != 1 || first.Year != 2024 {
		t.Errorf("first record = %+v", first)
	}
	if first.Cases == nil || *first.Cases != 5 {
		t.Errorf("first count = %v, want 5", first.Cases)
	}

	if records[1].Cases != nil {
		t.Errorf("empty count cell should stay nil until prepared, got %v", *records[1].Cases)
	}
}

func TestReadCases_YearColumn(t *testing.T) {
	records, err := ReadCases(strings.NewReader(casesCSVWithYear), "cases.csv", 2024)
	if err != nil {
		t.Fatalf("ReadCases() error = %v", err)
	}
	if records[0].Year != 2023 {
		t.Errorf("Year = %d, want 2023 from the ANO column", records[0].Year)
	}
}

func TestReadCases_MissingColumn(t *testing.T) {
	_, err := ReadCases(strings.NewReader("NOMBRE,SE\nX,1\n"), "cases.csv", 2024)
	if err == nil {
		t.Fatal("ReadCases() should fail when the N column is missing")
	}
}

func TestReadCases_MalformedWeekIsFatal(t *testing.T) {
	_, err := ReadCases(strings.NewReader("NOMBRE,SE,N\nX,abc,1\n"), "cases.csv", 2024)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if parseErr.Line != 2 {
		t.Errorf("Line = %d, want 2", parseErr.Line)
	}
}

func TestReadClimate(t *testing.T) {
	observations, err := ReadClimate(strings.NewReader(climateCSV), "climate.csv")
	if err != nil {
		t.Fatalf("ReadClimate() error = %v", err)
	}

	if len(observations) != 3 {
		t.Fatalf("len = %d, want 3", len(observations))
	}

	first := observations[0]
	if first.LocationID != "1000000000" || first.Variable != "rain" {
		t.Errorf("first observation = %+v", first)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", first.Date, want)
	}
	if first.Value == nil || *first.Value != 2.5 {
		t.Errorf("Value = %v, want 2.5", first.Value)
	}

	if observations[1].Value != nil {
		t.Errorf("empty value cell should be nil, got %v", *observations[1].Value)
	}
}

func TestReadClimate_MalformedDateIsFatal(t *testing.T) {
	input := "ccpp_ubigeo,day,variable,value\n1000000000,15/01/2024,rain,2.5\n"

	_, err := ReadClimate(strings.NewReader(input), "climate.csv")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}

	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("ParseError should wrap the ValidationError, got %v", parseErr.Err)
	}
	if validationErr.Field != "date" {
		t.Errorf("Field = %q, want date", validationErr.Field)
	}
}
