package ai

import (
	"strconv"
	"strings"

	"kpireport/domain/kpi"
	"kpireport/models"
)

// PromptBuilder assembles the analyst prompts from records and prior answers
type PromptBuilder struct {
	manager    *PromptManager
	views      []models.View
	thresholds kpi.Thresholds
}

// NewPromptBuilder creates a builder over the given templates, view
// definitions and severity thresholds
func NewPromptBuilder(manager *PromptManager, views []models.View, thresholds kpi.Thresholds) *PromptBuilder {
	return &PromptBuilder{manager: manager, views: views, thresholds: thresholds}
}

// SystemPrompt describes the KPIs and views. It is built from the full record
// set so every area call sees the same KPI list.
func (b *PromptBuilder) SystemPrompt(records []models.Record) (string, error) {
	descriptions := make([]string, 0, len(b.views))
	for _, v := range b.views {
		descriptions = append(descriptions, v.Name+": "+v.Description)
	}

	return b.manager.RenderPrompt(PromptSystem, map[string]string{
		"KPI_LIST":          strings.Join(kpi.KPINames(records), "\n"),
		"VIEW_COUNT":        strconv.Itoa(len(b.views)),
		"VIEW_DESCRIPTIONS": strings.Join(descriptions, "\n"),
	})
}

// AreaPrompt asks for the severity-ranked findings of one area
func (b *PromptBuilder) AreaPrompt(areaRecords []models.Record) (string, error) {
	return b.manager.RenderPrompt(PromptAreaAnalysis, b.withThresholds(map[string]string{
		"CSV": kpi.FormatCSV(areaRecords),
	}))
}

// ExecutivePrompt asks for the cross-area brief. analyses must be in area order.
func (b *PromptBuilder) ExecutivePrompt(analyses []string, overviewCSV string) (string, error) {
	return b.manager.RenderPrompt(PromptExecutiveSummary, b.withThresholds(map[string]string{
		"OVERVIEW": overviewCSV,
		"ANALYSES": strings.Join(analyses, "\n\n"),
	}))
}

func (b *PromptBuilder) withThresholds(m map[string]string) map[string]string {
	m["WOW_THRESHOLD"] = strconv.FormatFloat(b.thresholds.WowChange, 'f', -1, 64)
	m["VARIATION_THRESHOLD"] = strconv.FormatFloat(b.thresholds.Variation, 'f', -1, 64)
	return m
}
