package kpi

import (
	"strings"
	"testing"

	"kpireport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholds_IsSevere(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		view  string
		value string
		want  bool
	}{
		{"wow", "10%", true},
		{"wow", "-10%", true},
		{"wow", "9%", false},
		{"WoW", "-25%", true},
		{"variation", "50%", false},
		{"variation", "51%", true},
		{"variation", "NaN%", false},
		{"mom", "90%", false},
	}

	for _, tt := range tests {
		r := models.Record{View: tt.view, Value: tt.value}
		assert.Equal(t, tt.want, th.IsSevere(r), "%s=%s", tt.view, tt.value)
	}
}

func TestFlagged(t *testing.T) {
	flagged := Flagged(sampleRecords(), DefaultThresholds())
	require.Len(t, flagged, 2)
	assert.Equal(t, "-11%", flagged[0].Value)
	assert.Equal(t, "63%", flagged[1].Value)
}

func TestOverview(t *testing.T) {
	records := append(sampleRecords(),
		models.Record{Area: "Essen", KPI: "ADT Wolt", Direction: "less is better", View: "wow", Value: "NaN%"},
	)

	ov := Overview(records, DefaultThresholds())
	require.Len(t, ov, 3)

	assert.Equal(t, "nOrders", ov[0].KPI)
	assert.Equal(t, "variation", ov[0].View)
	assert.Equal(t, 2, ov[0].Areas)
	assert.InDelta(t, 37.5, ov[0].Median, 1e-9)
	assert.InDelta(t, 12, ov[0].Min, 1e-9)
	assert.InDelta(t, 63, ov[0].Max, 1e-9)
	assert.Equal(t, 1, ov[0].Flagged)

	assert.Equal(t, "ADT Wolt", ov[2].KPI)
	assert.Equal(t, 2, ov[2].Areas)
	assert.InDelta(t, 3, ov[2].Median, 1e-9)
	assert.Equal(t, 0, ov[2].Flagged)
}

func TestFormatOverviewCSV(t *testing.T) {
	out := FormatOverviewCSV(Overview(sampleRecords(), DefaultThresholds()))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "KPI,Direction,View,Median,Min,Max,Areas,Severe", lines[0])
	assert.Equal(t, "nOrders,more is better,variation,37.5%,12%,63%,2,1", lines[1])
}
