package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Epiwatch Dashboard API",
			"description": "Epidemiological surveillance dashboard joining weekly disease-case counts with climate and air-quality time series",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/dashboard/meta": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get parameter space",
					"description": "Distinct diseases, epidemiological week bounds, and the climate variable label map",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"diseases":          map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
											"week_min":          map[string]string{"type": "integer"},
											"week_max":          map[string]string{"type": "integer"},
											"climate_variables": map[string]interface{}{"type": "object", "additionalProperties": map[string]string{"type": "string"}},
										},
									},
								},
							},
						},
					},
				},
			},
			"/api/dashboard/evolution": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get case evolution view",
					"description": "Per-week case totals for the selected disease, total or cumulative, with chart rendering hints",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Current evolution payload"},
					},
				},
			},
			"/api/dashboard/evolution/params": map[string]interface{}{
				"put": map[string]interface{}{
					"summary":     "Update evolution view parameters",
					"description": "Partial update of disease, week range, chart kind, or aggregation; recomputes synchronously and returns the fresh payload",
					"requestBody": map[string]interface{}{
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"disease":     map[string]string{"type": "string"},
										"week_min":    map[string]string{"type": "integer"},
										"week_max":    map[string]string{"type": "integer"},
										"chart_kind":  map[string]interface{}{"type": "string", "enum": []string{"line", "bar"}},
										"aggregation": map[string]interface{}{"type": "string", "enum": []string{"total", "cumulative"}},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Fresh evolution payload"},
						"400": map[string]interface{}{"description": "Invalid parameter value"},
					},
				},
			},
			"/api/dashboard/correlation": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get case-vs-climate correlation view",
					"description": "Scatter of weekly mean climate value against case count with regression line, 95% confidence band, Pearson r and p-value; insufficient_data is set when fewer than two valid points remain",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Current correlation payload"},
					},
				},
			},
			"/api/dashboard/correlation/params": map[string]interface{}{
				"put": map[string]interface{}{
					"summary": "Update correlation view parameters",
					"requestBody": map[string]interface{}{
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"disease":          map[string]string{"type": "string"},
										"climate_variable": map[string]string{"type": "string"},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Fresh correlation payload"},
						"400": map[string]interface{}{"description": "Invalid parameter value"},
					},
				},
			},
			"/api/dashboard/merged": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get merged diagnostic listing",
					"description": "Paginated rows of the unified analysis table, including climate weeks without case records",
					"parameters": []map[string]interface{}{
						{
							"name":     "disease",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "string"},
						},
						{
							"name":     "variable",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "string"},
						},
						{
							"name":     "page",
							"in":       "query",
							"required": false,
							"schema":   map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":     "limit",
							"in":       "query",
							"required": false,
							"schema":   map[string]interface{}{"type": "integer", "default": 100},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Paginated merged rows"},
						"400": map[string]interface{}{"description": "Unknown disease"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service is healthy"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
