package kpi

import (
	"encoding/csv"
	"strings"

	"kpireport/models"
)

var csvHeader = []string{"Area", "KPI", "Direction", "View", "Value"}

// FormatCSV serializes records as CSV with a header line, one line per record
func FormatCSV(records []models.Record) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	// Write only fails on the underlying writer, and strings.Builder never does
	_ = w.Write(csvHeader)
	for _, r := range records {
		_ = w.Write([]string{r.Area, r.KPI, r.Direction, r.View, r.Value})
	}
	w.Flush()
	return b.String()
}

// Areas returns the distinct areas in first-seen order
func Areas(records []models.Record) []string {
	seen := make(map[string]struct{})
	var areas []string
	for _, r := range records {
		if _, ok := seen[r.Area]; ok {
			continue
		}
		seen[r.Area] = struct{}{}
		areas = append(areas, r.Area)
	}
	return areas
}

// FilterByArea returns the records belonging to one area, order preserved
func FilterByArea(records []models.Record, area string) []models.Record {
	var out []models.Record
	for _, r := range records {
		if r.Area == area {
			out = append(out, r)
		}
	}
	return out
}

// KPINames returns the distinct "<kpi> (<direction>)" labels in first-seen order
func KPINames(records []models.Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		name := r.KPI + " (" + r.Direction + ")"
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
