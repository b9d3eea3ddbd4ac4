package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kpireport/ai"
	"kpireport/domain/kpi"
	"kpireport/internal"
	"kpireport/internal/errors"
	"kpireport/models"
	"kpireport/ports"
	"kpireport/ui"

	"github.com/google/uuid"
)

// detailHeader and detailSeparator frame the plain-text attachment
const (
	detailHeader    = "Detailed Analysis by Area\n-----\n\n"
	detailSeparator = "\n\n-----\n\n"
)

// ReportOptions are the per-deployment settings of the report pipeline
type ReportOptions struct {
	SheetName  string
	SheetURL   string
	Layout     models.Layout
	Views      []models.View
	Thresholds kpi.Thresholds
	AreaLimit  int // 0 analyzes every area

	Subject    string
	Recipients []string
}

// ReportService reads the KPI sheet, asks the analyst model for per-area and
// executive summaries, and mails the result. Every step runs sequentially:
// the executive summary depends on all area summaries.
type ReportService struct {
	reader  ports.SheetReader
	llm     ports.LLMClient
	mailer  ports.Mailer
	usage   ports.LLMUsageRepository
	prompts *ai.PromptBuilder
	opts    ReportOptions
	logger  *internal.Logger
	now     func() time.Time
}

// NewReportService creates a report service
func NewReportService(reader ports.SheetReader, llm ports.LLMClient, mailer ports.Mailer, prompts *ai.PromptBuilder, opts ReportOptions, logger *internal.Logger) *ReportService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ReportService{
		reader:  reader,
		llm:     llm,
		mailer:  mailer,
		prompts: prompts,
		opts:    opts,
		logger:  logger.With("ReportService"),
		now:     time.Now,
	}
}

// WithUsageLedger makes Run log the token spend recorded for the run
func (s *ReportService) WithUsageLedger(repo ports.LLMUsageRepository) *ReportService {
	s.usage = repo
	return s
}

// LoadRecords reads the sheet and extracts its records
func (s *ReportService) LoadRecords(ctx context.Context) ([]models.Record, error) {
	grid, err := s.reader.ReadSheet(ctx, s.opts.SheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", s.opts.SheetName)
	}

	records, err := kpi.Extract(grid, s.opts.Layout, len(s.opts.Views))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse sheet %q", s.opts.SheetName)
	}

	s.logger.Info("Extracted %d records from %d rows", len(records), grid.Rows())
	return records, nil
}

// Run executes the whole pipeline and returns what was sent
func (s *ReportService) Run(ctx context.Context) (*models.Report, error) {
	report := &models.Report{
		RunID:       uuid.New(),
		GeneratedAt: s.now().UTC(),
	}
	s.logger.Info("Starting report run %s", report.RunID)

	records, err := s.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}

	areas, err := s.AnalyzeAreas(ctx, report.RunID, records)
	if err != nil {
		return nil, err
	}
	report.Areas = areas

	texts := make([]string, len(areas))
	for i, a := range areas {
		texts[i] = a.Text
	}
	report.DetailText = detailHeader + strings.Join(texts, detailSeparator)
	s.logger.Debug("Detailed analysis:\n%s", report.DetailText)

	summary, err := s.Summarize(ctx, report.RunID, records, texts)
	if err != nil {
		return nil, err
	}
	report.Summary = summary

	email, err := s.ComposeEmail(report)
	if err != nil {
		return nil, err
	}
	report.Email = email

	if err := s.mailer.Send(ctx, email); err != nil {
		return nil, errors.Wrap(err, "failed to send report email")
	}

	s.logger.Info("Report run %s finished (%d areas)", report.RunID, len(areas))
	s.logUsage(ctx, report.RunID)
	return report, nil
}

// logUsage reports the run's token spend. The ledger is audit-only, so a
// failed lookup is a warning.
func (s *ReportService) logUsage(ctx context.Context, runID uuid.UUID) {
	if s.usage == nil {
		return
	}
	summary, err := s.usage.GetRunSummary(ctx, runID)
	if err != nil {
		s.logger.Warn("Failed to read token usage for run %s: %v", runID, err)
		return
	}
	s.logger.Info("Run %s used %d tokens (%d prompt, %d completion) in %d requests",
		runID, summary.TotalTokens, summary.PromptTokens, summary.CompletionTokens, summary.RequestCount)
}

// AnalyzeAreas asks for one analysis per area, in first-seen area order
func (s *ReportService) AnalyzeAreas(ctx context.Context, runID uuid.UUID, records []models.Record) ([]models.AreaAnalysis, error) {
	system, err := s.prompts.SystemPrompt(records)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build system prompt")
	}

	areas := kpi.Areas(records)
	if s.opts.AreaLimit > 0 && len(areas) > s.opts.AreaLimit {
		areas = areas[:s.opts.AreaLimit]
	}
	s.logger.Info("Writing analysis for areas: %s", strings.Join(areas, ", "))

	analyses := make([]models.AreaAnalysis, 0, len(areas))
	for _, area := range areas {
		areaRecords := kpi.FilterByArea(records, area)
		severe := kpi.Flagged(areaRecords, s.opts.Thresholds)
		s.logger.Info(" > Analyzing area: %s (%d records, %d severe)", area, len(areaRecords), len(severe))

		prompt, err := s.prompts.AreaPrompt(areaRecords)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build prompt for %s", area)
		}

		text, err := s.complete(ctx, ports.ChatRequest{
			RunID:     runID,
			Operation: models.OperationAreaAnalysis,
			Area:      area,
			Messages: []ports.ChatMessage{
				{Role: ports.RoleSystem, Content: system},
				{Role: ports.RoleUser, Content: prompt},
			},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "analysis failed for area %s", area)
		}
		analyses = append(analyses, models.AreaAnalysis{Area: area, Text: text})
	}

	s.logger.Info("Wrote analysis for all areas")
	return analyses, nil
}

// Summarize asks for the executive brief across all area analyses
func (s *ReportService) Summarize(ctx context.Context, runID uuid.UUID, records []models.Record, analyses []string) (string, error) {
	system, err := s.prompts.SystemPrompt(records)
	if err != nil {
		return "", errors.Wrap(err, "failed to build system prompt")
	}

	overview := kpi.FormatOverviewCSV(kpi.Overview(records, s.opts.Thresholds))
	prompt, err := s.prompts.ExecutivePrompt(analyses, overview)
	if err != nil {
		return "", errors.Wrap(err, "failed to build executive prompt")
	}

	summary, err := s.complete(ctx, ports.ChatRequest{
		RunID:     runID,
		Operation: models.OperationExecutiveSummary,
		Messages: []ports.ChatMessage{
			{Role: ports.RoleSystem, Content: system},
			{Role: ports.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "executive summary failed")
	}

	s.logger.Info("Wrote general analysis")
	s.logger.Debug("%s", summary)
	return summary, nil
}

// ComposeEmail renders the HTML body and attaches the detailed analyses
func (s *ReportService) ComposeEmail(report *models.Report) (*models.Email, error) {
	attachmentName := AttachmentName(report.GeneratedAt)

	html, err := ui.RenderEmail(ui.EmailData{
		Subject:        s.opts.Subject,
		Summary:        report.Summary,
		GeneratedAt:    report.GeneratedAt,
		AreaCount:      len(report.Areas),
		AttachmentName: attachmentName,
		SheetURL:       s.opts.SheetURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render email")
	}

	return &models.Email{
		To:       s.opts.Recipients,
		Subject:  s.opts.Subject,
		HTMLBody: html,
		Attachments: []models.Attachment{{
			Filename:    attachmentName,
			ContentType: "text/plain",
			Content:     []byte(report.DetailText),
		}},
	}, nil
}

// AttachmentName is "<YYYY-MM-DD>_analysis.txt" for the UTC date of t
func AttachmentName(t time.Time) string {
	return fmt.Sprintf("%s_analysis.txt", t.UTC().Format("2006-01-02"))
}

func (s *ReportService) complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	for _, m := range req.Messages {
		s.logger.Debug("------ LLM REQUEST (%s %s) ------\n%s", req.Operation, req.Area, m.Content)
	}

	resp, err := s.llm.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	s.logger.Trace("------ LLM RESPONSE ------\n%s", resp.Content)
	return resp.Content, nil
}
