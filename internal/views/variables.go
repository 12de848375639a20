package views

import "sort"

// ClimateVariables is the fixed set of selectable climate variables mapped
// to their human-readable display labels.
var ClimateVariables = map[string]string{
	"high_temp":  "High temperature (°C)",
	"low_temp":   "Low temperature (°C)",
	"out_humm":   "Outdoor humidity (%)",
	"p_10_0_um":  "Particulate matter 10 µm (µg/m³)",
	"p_2_5_um":   "Particulate matter 2.5 µm (µg/m³)",
	"rain":       "Rain (mm)",
	"rain_rate":  "Rain rate (mm/h)",
	"temp_out":   "Outdoor temperature (°C)",
	"wind_speed": "Wind speed (km/h)",
}

// VariableLabel returns the display label for a climate variable.
func VariableLabel(name string) (string, bool) {
	label, ok := ClimateVariables[name]
	return label, ok
}

// VariableNames returns the selectable variable names, sorted.
func VariableNames() []string {
	names := make([]string, 0, len(ClimateVariables))
	for name := range ClimateVariables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
