package kpi

import (
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"kpireport/models"

	"github.com/montanaflynn/stats"
)

// Thresholds mark a development as severe. A wow change counts when its
// magnitude reaches WowChange; a variation counts when it exceeds Variation.
// Both are in percentage points.
type Thresholds struct {
	WowChange float64
	Variation float64
}

// DefaultThresholds are the severity rules given to the analyst
func DefaultThresholds() Thresholds {
	return Thresholds{WowChange: 10, Variation: 50}
}

// IsSevere reports whether a record crosses its view's threshold.
// Views other than wow and variation are never severe.
func (t Thresholds) IsSevere(r models.Record) bool {
	v, ok := ParsePercent(r.Value)
	if !ok {
		return false
	}
	switch strings.ToLower(r.View) {
	case "wow":
		return math.Abs(v) >= t.WowChange
	case "variation":
		return v > t.Variation
	}
	return false
}

// Flagged returns the records that cross a severity threshold
func Flagged(records []models.Record, t Thresholds) []models.Record {
	var out []models.Record
	for _, r := range records {
		if t.IsSevere(r) {
			out = append(out, r)
		}
	}
	return out
}

// Overview aggregates every (kpi, direction, view) triple across areas.
// Triples keep first-seen order; NaN values are left out of the statistics.
func Overview(records []models.Record, t Thresholds) []models.KPIOverview {
	type key struct{ kpi, direction, view string }

	var order []key
	values := make(map[key]stats.Float64Data)
	flagged := make(map[key]int)

	for _, r := range records {
		k := key{r.KPI, r.Direction, r.View}
		if _, ok := values[k]; !ok {
			order = append(order, k)
			values[k] = stats.Float64Data{}
		}
		v, ok := ParsePercent(r.Value)
		if !ok {
			continue
		}
		values[k] = append(values[k], v)
		if t.IsSevere(r) {
			flagged[k]++
		}
	}

	out := make([]models.KPIOverview, 0, len(order))
	for _, k := range order {
		data := values[k]
		ov := models.KPIOverview{
			KPI:       k.kpi,
			Direction: k.direction,
			View:      k.view,
			Areas:     data.Len(),
			Flagged:   flagged[k],
		}
		if data.Len() > 0 {
			ov.Median, _ = stats.Median(data)
			ov.Min, _ = stats.Min(data)
			ov.Max, _ = stats.Max(data)
		}
		out = append(out, ov)
	}
	return out
}

// FormatOverviewCSV renders the overview with one line per triple
func FormatOverviewCSV(overview []models.KPIOverview) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"KPI", "Direction", "View", "Median", "Min", "Max", "Areas", "Severe"})
	for _, ov := range overview {
		_ = w.Write([]string{
			ov.KPI,
			ov.Direction,
			ov.View,
			percent(ov.Median),
			percent(ov.Min),
			percent(ov.Max),
			strconv.Itoa(ov.Areas),
			strconv.Itoa(ov.Flagged),
		})
	}
	w.Flush()
	return b.String()
}

func percent(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64) + "%"
}
