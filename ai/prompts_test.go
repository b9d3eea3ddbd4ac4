package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kpireport/domain/kpi"
	"kpireport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptManager_BuiltInTemplates(t *testing.T) {
	pm := NewPromptManager("")

	for _, name := range []string{PromptSystem, PromptAreaAnalysis, PromptExecutiveSummary} {
		content, err := pm.LoadPrompt(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, content, name)
	}

	_, err := pm.LoadPrompt("does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt template not found")
}

func TestPromptManager_OverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "area_analysis.txt"), []byte("custom {CSV}"), 0o644))

	pm := NewPromptManager(dir)

	out, err := pm.RenderPrompt(PromptAreaAnalysis, map[string]string{"CSV": "a,b"})
	require.NoError(t, err)
	assert.Equal(t, "custom a,b", out)

	// Templates missing from the override directory fall back to the built-ins
	system, err := pm.LoadPrompt(PromptSystem)
	require.NoError(t, err)
	assert.Contains(t, system, "{KPI_LIST}")
}

func TestPromptManager_ValuesAreNotReexpanded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.txt"), []byte("{A}|{B}"), 0o644))

	out, err := NewPromptManager(dir).RenderPrompt("t", map[string]string{"A": "{B}", "B": "x"})
	require.NoError(t, err)
	assert.Equal(t, "{B}|x", out)
}

func testRecords() []models.Record {
	return []models.Record{
		{Area: "Berlin", KPI: "nOrders", Direction: "more is better", View: "variation", Value: "12%"},
		{Area: "Berlin", KPI: "nOrders", Direction: "more is better", View: "wow", Value: "-11%"},
		{Area: "Munich", KPI: "ADT Wolt", Direction: "less is better", View: "wow", Value: "2%"},
	}
}

func TestPromptBuilder_SystemPrompt(t *testing.T) {
	b := NewPromptBuilder(NewPromptManager(""), models.DefaultViews(), kpi.DefaultThresholds())

	out, err := b.SystemPrompt(testRecords())
	require.NoError(t, err)

	assert.Contains(t, out, "nOrders (more is better)\nADT Wolt (less is better).")
	assert.Contains(t, out, "I will give you 2 values:")
	assert.Contains(t, out, "variation: Percentage of (max - min) / average")
	assert.Contains(t, out, "\nwow: Percentage of average weekly change")
	assert.NotContains(t, out, "{")
}

func TestPromptBuilder_AreaPrompt(t *testing.T) {
	b := NewPromptBuilder(NewPromptManager(""), models.DefaultViews(), kpi.DefaultThresholds())

	out, err := b.AreaPrompt(kpi.FilterByArea(testRecords(), "Berlin"))
	require.NoError(t, err)

	assert.Contains(t, out, "wow change of +/- 10% happened, or a variation of > 50%")
	assert.True(t, strings.HasSuffix(out, "Area,KPI,Direction,View,Value\n"+
		"Berlin,nOrders,more is better,variation,12%\n"+
		"Berlin,nOrders,more is better,wow,-11%\n\n"))
	assert.NotContains(t, out, "Munich")
}

func TestPromptBuilder_ExecutivePrompt(t *testing.T) {
	b := NewPromptBuilder(NewPromptManager(""), models.DefaultViews(), kpi.Thresholds{WowChange: 15, Variation: 40})

	out, err := b.ExecutivePrompt([]string{"Berlin: all good", "Munich: ADT up"}, "KPI,Direction\n")
	require.NoError(t, err)

	assert.Contains(t, out, "wow change of +/- 15% happened, or a variation of > 40%")
	assert.Contains(t, out, "KPI,Direction\n")
	assert.Contains(t, out, "Berlin: all good\n\nMunich: ADT up")
	assert.Less(t, strings.Index(out, "KPI,Direction"), strings.Index(out, "Berlin: all good"))
}
