package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"kpireport/domain/kpi"
	"kpireport/internal"
	"kpireport/internal/config"
	"kpireport/internal/container"
	"kpireport/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "kpireport",
		Short: "KPI report CLI: inspect the KPI sheet and run the monthly analysis",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		newRunCmd(),
		newExtractCmd(),
		newKPIsCmd(),
		newAreasCmd(),
		newUsageCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var dryRun bool
	var areaLimit int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze every area and email the report",
		Long: `Read the KPI sheet, ask the analyst model for one analysis per area and an
executive summary, and email the summary with the detailed analyses attached.

Example: kpireport run --dry-run --area-limit 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				os.Setenv("DRY_RUN", "true")
			}
			return withContainer(cmd.Context(), func(cfg *config.Config) {
				if cmd.Flags().Changed("area-limit") {
					cfg.Report.AreaLimit = areaLimit
				}
			}, func(ctx context.Context, c *container.Container) error {
				report, err := c.ReportService.Run(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Report %s: %d areas, sent to %s\n", report.RunID, len(report.Areas), strings.Join(report.Email.To, ", "))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Use canned LLM answers and log the email instead of sending it")
	cmd.Flags().IntVar(&areaLimit, "area-limit", 0, "Analyze only the first N areas (0 = all)")

	return cmd
}

func newExtractCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the records extracted from the KPI sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd.Context(), func(records []models.Record) error {
				switch format {
				case "csv":
					fmt.Print(kpi.FormatCSV(records))
				case "json":
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				default:
					return fmt.Errorf("unknown format %q (use csv or json)", format)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or json")
	return cmd
}

func newKPIsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kpis",
		Short: "List the KPIs and their directions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(cmd.Context(), func(records []models.Record) error {
				for _, name := range kpi.KPINames(records) {
					fmt.Println(name)
				}
				return nil
			})
		},
	}
}

func newAreasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List the areas with their number of severe developments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), nil, func(ctx context.Context, c *container.Container) error {
				records, err := c.ReportService.LoadRecords(ctx)
				if err != nil {
					return err
				}
				for _, area := range kpi.Areas(records) {
					severe := kpi.Flagged(kpi.FilterByArea(records, area), c.Config.Report.Thresholds)
					fmt.Printf("%s\t%d severe\n", area, len(severe))
				}
				return nil
			})
		},
	}
}

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage <run-id>",
		Short: "Show the token spend of a report run from the usage ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			os.Setenv("DRY_RUN", "true")
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, repo, err := container.ConnectUsageLedger(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			summary, err := repo.GetRunSummary(cmd.Context(), runID)
			if err != nil {
				return err
			}
			fmt.Printf("Run %s\n  requests:          %d\n  prompt tokens:     %d\n  completion tokens: %d\n  total tokens:      %d\n",
				runID, summary.RequestCount, summary.PromptTokens, summary.CompletionTokens, summary.TotalTokens)
			return nil
		},
	}
}

// withRecords runs fn over the extracted records. Read-only commands never
// call the LLM or the mailer, so they run in dry-run mode.
func withRecords(ctx context.Context, fn func([]models.Record) error) error {
	return withContainer(ctx, nil, func(ctx context.Context, c *container.Container) error {
		records, err := c.ReportService.LoadRecords(ctx)
		if err != nil {
			return err
		}
		return fn(records)
	})
}

func withContainer(ctx context.Context, adjust func(*config.Config), fn func(context.Context, *container.Container) error) error {
	if adjust == nil {
		// Inspection commands need neither an API key nor SMTP settings
		os.Setenv("DRY_RUN", "true")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	c, err := container.New(ctx, cfg, internal.NewDefaultLogger())
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}
