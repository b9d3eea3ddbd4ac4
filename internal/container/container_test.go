package container

import (
	"context"
	"testing"

	"kpireport/adapters/excel"
	"kpireport/adapters/llm"
	"kpireport/adapters/mail"
	"kpireport/domain/kpi"
	"kpireport/internal/config"
	"kpireport/internal/errors"
	"kpireport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	ai := models.DefaultAIConfig()
	ai.OpenAIKey = "sk-test"
	return &config.Config{
		Sheet: config.SheetConfig{Source: config.SourceXLSX, FilePath: "kpis.xlsx", Name: "analysis_overview"},
		AI:    ai,
		Mail: config.MailConfig{
			To:      []string{"ops@example.com"},
			Subject: "Monthly KPI Report",
			From:    "reports@example.com",
			Host:    "smtp.example.com",
			Port:    587,
		},
		Report: config.ReportConfig{
			Layout:     models.DefaultLayout(),
			Views:      models.DefaultViews(),
			Thresholds: kpi.DefaultThresholds(),
		},
	}
}

func TestNew_WiresProductionAdapters(t *testing.T) {
	c, err := New(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &excel.DataReader{}, c.SheetReader)
	assert.IsType(t, &llm.OpenAIClient{}, c.LLMClient)
	assert.IsType(t, &mail.SMTPMailer{}, c.Mailer)
	assert.Nil(t, c.UsageRepo)
	assert.NotNil(t, c.ReportService)
}

func TestNew_DryRun(t *testing.T) {
	cfg := testConfig()
	cfg.SetDryRun(true)
	cfg.AI.OpenAIKey = ""
	cfg.Database.URL = "postgres://unused"

	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &llm.DebugClient{}, c.LLMClient)
	assert.IsType(t, &mail.LogMailer{}, c.Mailer)
	assert.Nil(t, c.DB)
}

func TestNew_UnknownSource(t *testing.T) {
	cfg := testConfig()
	cfg.Sheet.Source = "ftp"

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestConnectUsageLedger_RequiresURL(t *testing.T) {
	_, _, err := ConnectUsageLedger(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
