package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"epiwatch/internal/config"
	"epiwatch/internal/dataset"
	"epiwatch/internal/pipeline"
	"epiwatch/internal/stats"
	"epiwatch/internal/views"
	"epiwatch/pkg/logging"
)

// diseaseSummary is the per-disease section of the report.
type diseaseSummary struct {
	Disease      string            `json:"disease"`
	TotalCases   int               `json:"total_cases"`
	WeeklyTotals map[int]int       `json:"weekly_totals"`
	Correlations []variableSummary `json:"correlations"`
}

// variableSummary is one disease/climate-variable pairing.
type variableSummary struct {
	Variable         string            `json:"variable"`
	Label            string            `json:"label"`
	Points           int               `json:"points"`
	Regression       *stats.Regression `json:"regression,omitempty"`
	InsufficientData bool              `json:"insufficient_data"`
}

// report is the full JSON document written to stdout.
type report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	AsOf        time.Time        `json:"as_of"`
	Year        int              `json:"year"`
	LocationID  string           `json:"location_id"`
	CaseRecords int              `json:"case_records"`
	MergedRows  int              `json:"merged_rows"`
	Diseases    []diseaseSummary `json:"diseases"`
}

func main() {
	// Parse command-line flags
	casesPath := flag.String("cases", "", "Path to the case-count CSV (NOMBRE,SE,N)")
	climatePath := flag.String("climate", "", "Path to the climate CSV (ccpp_ubigeo,day,variable,value)")
	year := flag.Int("year", time.Now().Year(), "Year the climate aggregation is restricted to")
	location := flag.String("location", config.DefaultLocationID, "Location identifier the climate source is filtered to")
	asOfStr := flag.String("as-of", "", "Reporting date in 2006-01-02 form, defaults to today")
	flag.Parse()

	logger := logging.New("epiwatch-report", "1.0.0", logging.InfoLevel)
	ctx := context.Background()

	if *casesPath == "" || *climatePath == "" {
		fmt.Fprintln(os.Stderr, "both -cases and -climate are required")
		flag.Usage()
		os.Exit(1)
	}

	asOf := time.Now()
	if *asOfStr != "" {
		parsed, err := time.Parse("2006-01-02", *asOfStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -as-of date: %v\n", err)
			os.Exit(1)
		}
		asOf = parsed
	}

	logger.Info(ctx, "[REPORT_START] Running offline pipeline", logging.Fields{
		"cases":    *casesPath,
		"climate":  *climatePath,
		"year":     *year,
		"location": *location,
		"as_of":    asOf.Format("2006-01-02"),
	})

	rawCases, err := dataset.LoadCases(*casesPath, *year)
	if err != nil {
		logger.Fatal(ctx, "[REPORT_ERROR] Failed to load cases source", logging.Fields{
			"path": *casesPath,
		}, err)
	}

	observations, err := dataset.LoadClimate(*climatePath)
	if err != nil {
		logger.Fatal(ctx, "[REPORT_ERROR] Failed to load climate source", logging.Fields{
			"path": *climatePath,
		}, err)
	}

	excluded := make(map[string]struct{})
	for _, v := range []string{"dengue", "leptospirosis", "malaria"} {
		excluded[v] = struct{}{}
	}

	cases := pipeline.PrepareCases(rawCases, asOf)
	aggregates := pipeline.AggregateClimate(observations, *location, *year, excluded)
	merged := pipeline.Join(aggregates, cases)
	store := dataset.NewStore(cases, merged)

	doc := report{
		GeneratedAt: time.Now().UTC(),
		AsOf:        asOf,
		Year:        *year,
		LocationID:  *location,
		CaseRecords: len(cases),
		MergedRows:  len(merged),
	}

	for _, disease := range store.Diseases() {
		doc.Diseases = append(doc.Diseases, summarize(store, disease))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		logger.Fatal(ctx, "[REPORT_ERROR] Failed to write report", logging.Fields{}, err)
	}

	logger.Info(ctx, "[REPORT_COMPLETE] Report written", logging.Fields{
		"diseases":    len(doc.Diseases),
		"merged_rows": doc.MergedRows,
	})
}

// summarize builds one disease section: weekly totals plus the regression of
// case counts on every climate variable that has enough paired points.
func summarize(store *dataset.Store, disease string) diseaseSummary {
	s := diseaseSummary{
		Disease:      disease,
		WeeklyTotals: make(map[int]int),
	}

	for _, c := range store.Cases() {
		if c.Disease != disease {
			continue
		}
		s.WeeklyTotals[c.Week] += c.CaseCount()
		s.TotalCases += c.CaseCount()
	}

	for _, variable := range views.VariableNames() {
		label, _ := views.VariableLabel(variable)

		var xs, ys []float64
		for _, m := range store.Merged() {
			if m.Disease == nil || *m.Disease != disease || m.Variable != variable {
				continue
			}
			if m.Mean == nil || m.Cases == nil {
				continue
			}
			xs = append(xs, *m.Mean)
			ys = append(ys, float64(*m.Cases))
		}

		vs := variableSummary{
			Variable: variable,
			Label:    label,
			Points:   len(xs),
		}

		reg, err := stats.Fit(xs, ys)
		switch {
		case errors.Is(err, stats.ErrInsufficientData):
			vs.InsufficientData = true
		case err != nil:
			vs.InsufficientData = true
		default:
			vs.Regression = reg
		}

		s.Correlations = append(s.Correlations, vs)
	}

	return s
}
