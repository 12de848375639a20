package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"epiwatch/internal/dataset"
	"epiwatch/internal/models"
	"epiwatch/internal/views"
	"epiwatch/pkg/logging"
	"epiwatch/pkg/metrics"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func testRow(week int, variable string, mean float64, disease string, count int) models.MergedRecord {
	return models.MergedRecord{
		Year:     2024,
		Week:     week,
		Variable: variable,
		Mean:     floatPtr(mean),
		Disease:  strPtr(disease),
		Cases:    intPtr(count),
	}
}

func setupRouter(t *testing.T) *mux.Router {
	t.Helper()

	cases := []models.CaseRecord{
		{Disease: "LEISHMANIASIS", Year: 2024, Week: 1, Cases: intPtr(3)},
		{Disease: "LEISHMANIASIS", Year: 2024, Week: 2, Cases: intPtr(5)},
		{Disease: "LEISHMANIASIS", Year: 2024, Week: 4, Cases: intPtr(2)},
		{Disease: "LEPTOSPIROSIS", Year: 2024, Week: 1, Cases: intPtr(1)},
	}
	merged := []models.MergedRecord{
		testRow(1, "rain", 1.0, "LEISHMANIASIS", 3),
		testRow(2, "rain", 2.0, "LEISHMANIASIS", 5),
		testRow(4, "rain", 4.0, "LEISHMANIASIS", 2),
		testRow(1, "rain", 1.0, "LEPTOSPIROSIS", 1),
		// Climate week with no case record stays visible in the listing.
		{Year: 2024, Week: 9, Variable: "rain", Mean: floatPtr(7.0)},
	}

	store := dataset.NewStore(cases, merged)

	logger := logging.New("epiwatch-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	collector := metrics.NewCollectorWith(prometheus.NewRegistry(), "epiwatch_test")

	evolution := views.NewEvolutionView(store, logger, collector)
	correlation := views.NewCorrelationView(store, logger, collector)

	handler := NewDashboardHandler(store, evolution, correlation, logger, collector)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGetMeta(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/api/dashboard/meta", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var meta MetaResponse
	if err := json.NewDecoder(rr.Body).Decode(&meta); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(meta.Diseases) != 2 {
		t.Errorf("diseases = %v, want 2 entries", meta.Diseases)
	}
	if meta.WeekMin != 1 || meta.WeekMax != 4 {
		t.Errorf("week bounds = [%d, %d], want [1, 4]", meta.WeekMin, meta.WeekMax)
	}
	if len(meta.Variables) != 9 {
		t.Errorf("climate variables = %d, want the fixed set of 9", len(meta.Variables))
	}
}

func TestGetEvolution(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/api/dashboard/evolution", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var data views.EvolutionData
	if err := json.NewDecoder(rr.Body).Decode(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if data.Params.Disease == "" {
		t.Error("default disease not selected")
	}
	if len(data.Points) == 0 {
		t.Error("initial payload has no points")
	}
}

func TestUpdateEvolutionParams(t *testing.T) {
	router := setupRouter(t)

	patch := map[string]interface{}{
		"disease":     "Leptospirosis",
		"aggregation": "cumulative",
	}
	rr := doRequest(t, router, "PUT", "/api/dashboard/evolution/params", patch)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	var data views.EvolutionData
	if err := json.NewDecoder(rr.Body).Decode(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Params.Disease != "Leptospirosis" {
		t.Errorf("disease = %q, want Leptospirosis", data.Params.Disease)
	}
	if data.Params.Aggregation != views.AggregationCumulative {
		t.Errorf("aggregation = %q, want cumulative", data.Params.Aggregation)
	}
}

func TestUpdateEvolutionParams_Invalid(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name  string
		patch map[string]interface{}
	}{
		{"unknown disease", map[string]interface{}{"disease": "Dengue"}},
		{"unknown chart kind", map[string]interface{}{"chart_kind": "pie"}},
		{"unknown aggregation", map[string]interface{}{"aggregation": "median"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, "PUT", "/api/dashboard/evolution/params", tt.patch)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if errResp.Code != http.StatusBadRequest {
				t.Errorf("error code = %d, want 400", errResp.Code)
			}
		})
	}
}

func TestUpdateEvolutionParams_MalformedJSON(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest("PUT", "/api/dashboard/evolution/params", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetCorrelation(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/api/dashboard/correlation", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var data views.CorrelationData
	if err := json.NewDecoder(rr.Body).Decode(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Params.Variable == "" {
		t.Error("default climate variable not selected")
	}
}

func TestUpdateCorrelationParams(t *testing.T) {
	router := setupRouter(t)

	patch := map[string]interface{}{"climate_variable": "rain"}
	rr := doRequest(t, router, "PUT", "/api/dashboard/correlation/params", patch)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	var data views.CorrelationData
	if err := json.NewDecoder(rr.Body).Decode(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Params.Variable != "rain" {
		t.Errorf("variable = %q, want rain", data.Params.Variable)
	}
	if data.InsufficientData {
		t.Error("InsufficientData = true with three valid pairs")
	}
	if data.Regression == nil {
		t.Error("regression missing from payload")
	}
}

func TestUpdateCorrelationParams_Invalid(t *testing.T) {
	router := setupRouter(t)

	patch := map[string]interface{}{"climate_variable": "sunshine"}
	rr := doRequest(t, router, "PUT", "/api/dashboard/correlation/params", patch)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetMerged(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/api/dashboard/merged", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp PaginatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 5 {
		t.Errorf("total = %d, want 5 merged rows", resp.Total)
	}
	if resp.Page != 1 || resp.Limit != 100 {
		t.Errorf("pagination defaults = page %d limit %d, want 1/100", resp.Page, resp.Limit)
	}
}

func TestGetMerged_Filters(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/api/dashboard/merged?disease=Leptospirosis", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp PaginatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1 row for Leptospirosis", resp.Total)
	}

	rr = doRequest(t, router, "GET", "/api/dashboard/merged?disease=Dengue", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown disease status = %d, want 400", rr.Code)
	}
}

func TestGetMerged_Pagination(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/api/dashboard/merged?page=2&limit=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp PaginatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Page != 2 || resp.Limit != 2 {
		t.Errorf("pagination = page %d limit %d, want 2/2", resp.Page, resp.Limit)
	}
	if resp.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", resp.TotalPages)
	}

	rows, ok := resp.Data.([]interface{})
	if !ok {
		t.Fatalf("data is %T, want array", resp.Data)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var status map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", status["status"])
	}
}

func TestOpenAPISpec(t *testing.T) {
	router := setupRouter(t)

	rr := doRequest(t, router, "GET", "/api/docs/openapi.json", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var spec map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec["openapi"] != "3.0.0" {
		t.Errorf("openapi version = %v, want 3.0.0", spec["openapi"])
	}
	paths, ok := spec["paths"].(map[string]interface{})
	if !ok {
		t.Fatal("paths missing from spec")
	}
	for _, p := range []string{"/api/dashboard/meta", "/api/dashboard/evolution", "/api/dashboard/correlation", "/api/dashboard/merged"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("path %s missing from spec", p)
		}
	}
}
