package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"kpireport/domain/kpi"
	"kpireport/internal/errors"
	"kpireport/models"

	"github.com/go-playground/validator/v10"
)

// Sheet sources
const (
	SourceXLSX    = "xlsx"
	SourceGSheets = "gsheets"
)

// Config represents the complete application configuration
type Config struct {
	Sheet    SheetConfig
	AI       models.AIConfig
	Mail     MailConfig
	Report   ReportConfig
	Database DatabaseConfig
}

// SheetConfig says where the KPI sheet lives
type SheetConfig struct {
	Source          string `validate:"oneof=xlsx gsheets"`
	FilePath        string `validate:"required_if=Source xlsx"`
	SpreadsheetID   string `validate:"required_if=Source gsheets"`
	CredentialsFile string
	Name            string `validate:"required"`
	URL             string `validate:"omitempty,url"`
}

// MailConfig holds recipients and SMTP relay settings
type MailConfig struct {
	To       []string `validate:"required_unless=DryRun true,dive,email"`
	Subject  string   `validate:"required"`
	From     string   `validate:"required_unless=DryRun true"`
	FromName string
	Host     string `validate:"required_unless=DryRun true"`
	Port     int    `validate:"gt=0,lt=65536"`
	Username string
	Password string
	DryRun   bool
}

// ReportConfig holds pipeline settings
type ReportConfig struct {
	Layout     models.Layout
	Views      []models.View `validate:"required,min=1"`
	Thresholds kpi.Thresholds
	AreaLimit  int `validate:"gte=0"`
	DryRun     bool
}

// DatabaseConfig holds the optional usage ledger connection
type DatabaseConfig struct {
	URL string
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dryRun := getEnvBoolOrDefault("DRY_RUN", false)

	config := &Config{
		Sheet:    loadSheetConfig(),
		AI:       loadAIConfig(dryRun),
		Mail:     loadMailConfig(dryRun),
		Report:   loadReportConfig(dryRun),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SetDryRun switches every section to dry-run mode
func (c *Config) SetDryRun(dryRun bool) {
	c.AI.DryRun = dryRun
	c.Mail.DryRun = dryRun
	c.Report.DryRun = dryRun
}

// Validate checks the struct tags of every section
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "configuration validation failed"))
	}
	return nil
}

func loadSheetConfig() SheetConfig {
	return SheetConfig{
		Source:          strings.ToLower(getEnvOrDefault("SHEET_SOURCE", SourceXLSX)),
		FilePath:        os.Getenv("SHEET_FILE"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		Name:            getEnvOrDefault("SHEET_NAME", "analysis_overview"),
		URL:             os.Getenv("SHEET_URL"),
	}
}

func loadAIConfig(dryRun bool) models.AIConfig {
	defaults := models.DefaultAIConfig()
	return models.AIConfig{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", defaults.BaseURL),
		Model:       getEnvOrDefault("LLM_MODEL", defaults.Model),
		MaxTokens:   getEnvIntOrDefault("LLM_MAX_TOKENS", defaults.MaxTokens),
		Temperature: getEnvFloatOrDefault("LLM_TEMPERATURE", defaults.Temperature),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 0),
		PromptsDir:  os.Getenv("PROMPTS_DIR"),
		DryRun:      dryRun,
	}
}

func loadMailConfig(dryRun bool) MailConfig {
	return MailConfig{
		To:       splitList(os.Getenv("MAIL_TO")),
		Subject:  getEnvOrDefault("MAIL_SUBJECT", "Monthly KPI Report"),
		From:     os.Getenv("MAIL_FROM"),
		FromName: getEnvOrDefault("MAIL_FROM_NAME", "KPI Report"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     getEnvIntOrDefault("SMTP_PORT", 587),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		DryRun:   dryRun,
	}
}

func loadReportConfig(dryRun bool) ReportConfig {
	defaults := kpi.DefaultThresholds()
	return ReportConfig{
		Layout: models.DefaultLayout(),
		Views:  models.DefaultViews(),
		Thresholds: kpi.Thresholds{
			WowChange: getEnvFloatOrDefault("SEVERITY_WOW", defaults.WowChange),
			Variation: getEnvFloatOrDefault("SEVERITY_VARIATION", defaults.Variation),
		},
		AreaLimit: getEnvIntOrDefault("AREA_LIMIT", 0),
		DryRun:    dryRun,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
