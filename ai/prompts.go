package ai

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

//go:embed prompts/*.txt
var defaultPrompts embed.FS

// Prompt template names
const (
	PromptSystem           = "system"
	PromptAreaAnalysis     = "area_analysis"
	PromptExecutiveSummary = "executive_summary"
)

// PromptManager loads prompt templates, preferring an override directory
// over the templates compiled into the binary
type PromptManager struct {
	PromptsDir string
}

// NewPromptManager creates a prompt manager. An empty promptsDir means only
// the built-in templates are used.
func NewPromptManager(promptsDir string) *PromptManager {
	if promptsDir != "" {
		log.Printf("[PromptManager] Initialized with override directory: %s", promptsDir)
	}
	return &PromptManager{PromptsDir: promptsDir}
}

// LoadPrompt loads a prompt template by name
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	if pm.PromptsDir != "" {
		path := filepath.Join(pm.PromptsDir, name+".txt")
		content, err := os.ReadFile(path)
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
		}
	}

	content, err := defaultPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	return string(content), nil
}

// RenderPrompt replaces {PLACEHOLDER} with values
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(replacements)*2)
	for placeholder, value := range replacements {
		pairs = append(pairs, "{"+placeholder+"}", value)
	}
	// A single Replacer pass keeps values that happen to contain braces intact
	return strings.NewReplacer(pairs...).Replace(template), nil
}
