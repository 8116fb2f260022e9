package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adamzambudio/rpa-lab/internal/adapters/dataset"
	"github.com/adamzambudio/rpa-lab/internal/adapters/excel"
	"github.com/adamzambudio/rpa-lab/internal/adapters/inputtable"
	"github.com/adamzambudio/rpa-lab/internal/adapters/localstorage"
	"github.com/adamzambudio/rpa-lab/internal/adapters/mailer"
	"github.com/adamzambudio/rpa-lab/internal/core/domain"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
	"github.com/adamzambudio/rpa-lab/internal/metrics"
	"github.com/adamzambudio/rpa-lab/internal/service"
)

func batchCmd(a *app) *cobra.Command {
	var (
		input      string
		dryRun     bool
		reportPath string
	)
	cmd := &cobra.Command{
		Use:     "batch",
		Short:   "Process every client in an input table",
		Example: "rpa-cli batch --input data/clientes.xlsx --dry-run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			logger := a.logger
			if reportPath == "" {
				reportPath = cfg.ReportPath
			}

			items, err := inputtable.Load(input)
			if err != nil {
				return err
			}
			logger.Info("Input table loaded", "path", input, "items", len(items))

			storage := localstorage.NewLocalStorage(cfg.OutputDir, cfg.CapturesDir)
			if err := storage.Init(ctx); err != nil {
				return err
			}

			fetcher, closeFetcher, err := buildFetcher(ctx, cfg, false, logger)
			if err != nil {
				return err
			}
			defer closeFetcher()

			var notifier ports.Notifier
			if !dryRun {
				n, err := mailer.NewNotifier(cfg.SMTP, nil, logger)
				if err != nil {
					return err
				}
				notifier = n
				logger.Info("Notifications enabled", "to", n.Recipient())
			}

			templates, err := service.NewMessageTemplates(cfg.Notify.Subject, cfg.Notify.Body)
			if err != nil {
				return err
			}

			rec := metrics.NewRecorder()
			orch, err := service.NewOrchestrator(service.Dependencies{
				Fetcher:   fetcher,
				Extractor: dataset.NewExtractor(logger),
				Builder:   excel.NewReportBuilder(cfg.OutputDir, nil, logger),
				Notifier:  notifier,
				Capturer:  buildCapturer(cfg),
				Templates: templates,
				Metrics:   rec,
			}, service.BatchConfig{
				DryRun:       dryRun,
				FetchPolicy:  policy(cfg, 0, cfg.Retry.MaxDelay),
				NotifyPolicy: policy(cfg, 0, cfg.Retry.MaxDelay),
			}, logger)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if term.IsTerminal(int(os.Stderr.Fd())) && len(items) > 0 {
				bar = progressbar.NewOptions(len(items),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("Processing clients"),
					progressbar.OptionSetWidth(24),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				orch.OnItemDone(func(index, total int, r domain.ResultRecord) {
					_ = bar.Add(1)
				})
			}

			ledger := orch.Run(ctx, items)
			if bar != nil {
				_ = bar.Finish()
			}

			if err := storage.SaveSummary(ctx, reportPath, service.Render(ledger)); err != nil {
				return err
			}
			ledgerPath, err := storage.SaveLedger(ctx, ledger)
			if err != nil {
				logger.Warn("Failed to save ledger", "error", err)
			}
			if cfg.MetricsFile != "" {
				if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
					logger.Warn("Failed to write metrics file", "path", cfg.MetricsFile, "error", err)
				}
			}

			printLedger(a.ui, ledger, reportPath, ledgerPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "input table (.csv or .xlsx) with name, city and email columns")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build reports but do not send email")
	cmd.Flags().StringVar(&reportPath, "report", "", "batch summary path (default from config)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func printLedger(u *ui, ledger *domain.Ledger, reportPath, ledgerPath string) {
	ok, failed := ledger.Counts()
	fmt.Println()
	fmt.Println(u.title("=== Batch Summary ==="))
	for _, r := range ledger.Records {
		status := u.ok(string(r.Status))
		if r.Status != domain.StatusOK {
			status = u.err(string(r.Status))
		}
		line := fmt.Sprintf("%-6s %-20s %-14s %6.2fs", status, r.Name, r.City, r.ElapsedSeconds())
		if r.Notes != "" {
			line += " " + u.dim(r.Notes)
		}
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Printf("Run ID:   %s\n", ledger.RunID)
	fmt.Printf("Items:    %d (%s ok, %s failed)\n", len(ledger.Records), u.ok(ok), u.err(failed))
	if ledger.DryRun {
		fmt.Printf("Mode:     %s\n", u.warn("dry run"))
	}
	fmt.Printf("Report:   %s\n", u.info(reportPath))
	if ledgerPath != "" {
		fmt.Printf("Ledger:   %s\n", u.info(ledgerPath))
	}
}
