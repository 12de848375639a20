package dataset

import (
	"reflect"
	"testing"

	"epiwatch/internal/models"
)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func testStore() *Store {
	cases := []models.CaseRecord{
		{Disease: "LEISHMANIASIS", Year: 2024, Week: 3, Cases: intPtr(5)},
		{Disease: "LEPTOSPIROSIS", Year: 2024, Week: 7, Cases: intPtr(2)},
		{Disease: "LEISHMANIASIS", Year: 2024, Week: 12, Cases: intPtr(1)},
	}
	merged := []models.MergedRecord{
		{Year: 2024, Week: 3, Variable: "rain", Mean: floatPtr(2.0), Disease: strPtr("LEISHMANIASIS"), Cases: intPtr(5)},
		{Year: 2024, Week: 7, Variable: "rain", Mean: floatPtr(4.0), Disease: strPtr("LEPTOSPIROSIS"), Cases: intPtr(2)},
		{Year: 2024, Week: 10, Variable: "rain", Mean: floatPtr(3.0)},
		{Year: 2024, Week: 3, Variable: "temp_out", Mean: floatPtr(21.0), Disease: strPtr("LEISHMANIASIS"), Cases: intPtr(5)},
	}
	return NewStore(cases, merged)
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LEISHMANIASIS", "Leishmaniasis"},
		{"leptospirosis", "Leptospirosis"},
		{" Mixed Case ", "Mixed Case"},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStore_Diseases(t *testing.T) {
	s := testStore()

	want := []string{"Leishmaniasis", "Leptospirosis"}
	if !reflect.DeepEqual(s.Diseases(), want) {
		t.Errorf("Diseases() = %v, want %v", s.Diseases(), want)
	}
	if !s.HasDisease("Leishmaniasis") || s.HasDisease("Dengue") {
		t.Error("HasDisease misreports membership")
	}
}

func TestStore_WeekBounds(t *testing.T) {
	s := testStore()

	min, max := s.WeekBounds()
	if min != 3 || max != 12 {
		t.Errorf("WeekBounds() = [%d, %d], want [3, 12]", min, max)
	}
}

func TestStore_ClampWeekRange(t *testing.T) {
	s := testStore()

	tests := []struct {
		lo, hi         int
		wantLo, wantHi int
	}{
		{1, 54, 3, 12},
		{5, 10, 5, 10},
		{10, 5, 5, 10}, // reversed inputs are swapped
		{0, 8, 3, 8},
	}
	for _, tt := range tests {
		lo, hi := s.ClampWeekRange(tt.lo, tt.hi)
		if lo != tt.wantLo || hi != tt.wantHi {
			t.Errorf("ClampWeekRange(%d, %d) = [%d, %d], want [%d, %d]",
				tt.lo, tt.hi, lo, hi, tt.wantLo, tt.wantHi)
		}
	}
}

func TestStore_NormalizesMergedDiseases(t *testing.T) {
	s := testStore()

	for _, m := range s.Merged() {
		if m.Disease != nil && *m.Disease != TitleCase(*m.Disease) {
			t.Errorf("merged disease %q not normalized", *m.Disease)
		}
	}
}

func TestStore_MergedPage(t *testing.T) {
	s := testStore()

	// Unfiltered: all rows, including the climate-only week 10 row.
	rows, total := s.MergedPage(MergedFilter{Limit: 100})
	if total != 4 || len(rows) != 4 {
		t.Fatalf("unfiltered page: len=%d total=%d, want 4/4", len(rows), total)
	}

	climateOnly := 0
	for _, m := range rows {
		if m.Disease == nil {
			climateOnly++
		}
	}
	if climateOnly != 1 {
		t.Errorf("climate-only rows visible = %d, want 1", climateOnly)
	}

	// Disease filter excludes climate-only rows.
	disease := "Leishmaniasis"
	rows, total = s.MergedPage(MergedFilter{Disease: &disease, Limit: 100})
	if total != 2 {
		t.Errorf("disease filter total = %d, want 2", total)
	}
	for _, m := range rows {
		if m.Disease == nil || *m.Disease != disease {
			t.Errorf("row %+v does not match disease filter", m)
		}
	}

	// Variable filter.
	variable := "temp_out"
	_, total = s.MergedPage(MergedFilter{Variable: &variable, Limit: 100})
	if total != 1 {
		t.Errorf("variable filter total = %d, want 1", total)
	}

	// Pagination.
	rows, total = s.MergedPage(MergedFilter{Limit: 2, Offset: 3})
	if total != 4 || len(rows) != 1 {
		t.Errorf("page beyond end: len=%d total=%d, want 1/4", len(rows), total)
	}
	rows, _ = s.MergedPage(MergedFilter{Limit: 2, Offset: 10})
	if len(rows) != 0 {
		t.Errorf("offset past total should yield empty page, got %d rows", len(rows))
	}
}

func TestStore_EmptyCasesFallBackToFullYear(t *testing.T) {
	s := NewStore(nil, nil)
	min, max := s.WeekBounds()
	if min != 1 || max != 54 {
		t.Errorf("WeekBounds() = [%d, %d], want [1, 54]", min, max)
	}
}
