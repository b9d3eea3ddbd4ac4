package container

import (
	"context"
	"fmt"

	"kpireport/adapters/excel"
	"kpireport/adapters/gsheets"
	"kpireport/adapters/llm"
	"kpireport/adapters/mail"
	"kpireport/adapters/postgres"
	"kpireport/ai"
	"kpireport/app"
	"kpireport/internal"
	"kpireport/internal/config"
	"kpireport/internal/errors"
	"kpireport/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Collaborators
	SheetReader ports.SheetReader
	LLMClient   ports.LLMClient
	Mailer      ports.Mailer
	UsageRepo   ports.LLMUsageRepository

	ReportService *app.ReportService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initSheetReader(ctx); err != nil {
		return nil, err
	}
	if err := c.initUsageRepository(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initLLMClient(); err != nil {
		c.Close()
		return nil, err
	}
	c.initMailer()

	prompts := ai.NewPromptBuilder(ai.NewPromptManager(cfg.AI.PromptsDir), cfg.Report.Views, cfg.Report.Thresholds)
	c.ReportService = app.NewReportService(c.SheetReader, c.LLMClient, c.Mailer, prompts, app.ReportOptions{
		SheetName:  cfg.Sheet.Name,
		SheetURL:   cfg.Sheet.URL,
		Layout:     cfg.Report.Layout,
		Views:      cfg.Report.Views,
		Thresholds: cfg.Report.Thresholds,
		AreaLimit:  cfg.Report.AreaLimit,
		Subject:    cfg.Mail.Subject,
		Recipients: cfg.Mail.To,
	}, logger)
	if c.UsageRepo != nil {
		c.ReportService.WithUsageLedger(c.UsageRepo)
	}

	return c, nil
}

func (c *Container) initSheetReader(ctx context.Context) error {
	switch c.Config.Sheet.Source {
	case config.SourceGSheets:
		reader, err := gsheets.NewReader(ctx, c.Config.Sheet.SpreadsheetID, c.Config.Sheet.CredentialsFile)
		if err != nil {
			return errors.Wrap(err, "failed to initialize Google Sheets reader")
		}
		c.SheetReader = reader
	case config.SourceXLSX:
		c.SheetReader = excel.NewDataReader(c.Config.Sheet.FilePath)
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown sheet source %q", c.Config.Sheet.Source))
	}
	return nil
}

// initUsageRepository connects the usage ledger only when DATABASE_URL is set
func (c *Container) initUsageRepository(ctx context.Context) error {
	if c.Config.Database.URL == "" || c.Config.Report.DryRun {
		return nil
	}

	db, repo, err := ConnectUsageLedger(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}

	c.DB = db
	c.UsageRepo = repo
	c.Logger.Info("LLM usage ledger enabled")
	return nil
}

// ConnectUsageLedger opens the Postgres usage ledger and makes sure its table exists
func ConnectUsageLedger(ctx context.Context, databaseURL string) (*sqlx.DB, ports.LLMUsageRepository, error) {
	if databaseURL == "" {
		return nil, nil, errors.ConfigInvalid("DATABASE_URL is not set")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	if err := postgres.EnsureLLMUsageSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create llm_usage table"))
	}
	return db, postgres.NewLLMUsageRepository(db), nil
}

func (c *Container) initLLMClient() error {
	client, err := llm.NewClient(c.Config.AI)
	if err != nil {
		return err
	}
	if c.UsageRepo != nil {
		client = llm.NewUsageRecordingClient(client, c.UsageRepo, c.Logger)
	}
	c.LLMClient = client
	return nil
}

func (c *Container) initMailer() {
	if c.Config.Mail.DryRun {
		c.Mailer = mail.NewLogMailer(c.Logger)
		return
	}
	c.Mailer = mail.NewSMTPMailer(mail.Config{
		Host:     c.Config.Mail.Host,
		Port:     c.Config.Mail.Port,
		Username: c.Config.Mail.Username,
		Password: c.Config.Mail.Password,
		From:     c.Config.Mail.From,
		FromName: c.Config.Mail.FromName,
	})
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
