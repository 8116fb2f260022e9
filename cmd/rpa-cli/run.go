package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamzambudio/rpa-lab/internal/adapters/dataset"
	"github.com/adamzambudio/rpa-lab/internal/adapters/excel"
	"github.com/adamzambudio/rpa-lab/internal/adapters/localstorage"
	"github.com/adamzambudio/rpa-lab/internal/adapters/mailer"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
	"github.com/adamzambudio/rpa-lab/internal/metrics"
	"github.com/adamzambudio/rpa-lab/internal/service"
)

func runCmd(a *app) *cobra.Command {
	var (
		opts    service.RunOptions
		retries int
	)
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the pipeline once for a single city: scrape, Excel, email",
		Example: "rpa-cli run --city Madrid --send",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			logger := a.logger

			fail := func(err error) error {
				return &exitError{code: service.ExitCode(err), err: err}
			}

			storage := localstorage.NewLocalStorage(cfg.OutputDir, "")
			if err := storage.Init(ctx); err != nil {
				return fail(err)
			}

			fetcher, closeFetcher, err := buildFetcher(ctx, cfg, opts.ForceFetch, logger)
			if err != nil {
				return fail(err)
			}
			defer closeFetcher()

			var notifier ports.Notifier
			if opts.Send && !opts.DryRun {
				n, err := mailer.NewNotifier(cfg.SMTP, nil, logger)
				if err != nil {
					return fail(err)
				}
				notifier = n
			}

			templates, err := service.NewMessageTemplates(service.RunSubjectTemplate, service.RunBodyTemplate)
			if err != nil {
				return fail(err)
			}

			rec := metrics.NewRecorder()
			pipeline := service.NewPipeline(
				fetcher,
				fetcher.OutputPath(),
				dataset.NewExtractor(logger),
				excel.NewReportBuilder(cfg.OutputDir, nil, logger).WithPrefix("informe_"),
				notifier,
				templates,
				policy(cfg, retries, cfg.Retry.RunMaxDelay),
				rec,
				logger,
			)

			result, err := pipeline.RunOnce(ctx, opts)
			if cfg.MetricsFile != "" {
				if werr := rec.WriteTextfile(cfg.MetricsFile); werr != nil {
					logger.Warn("Failed to write metrics file", "path", cfg.MetricsFile, "error", werr)
				}
			}
			if err != nil {
				return fail(err)
			}

			fmt.Println()
			fmt.Println(a.ui.title("=== Pipeline Summary ==="))
			fmt.Printf("City:     %s\n", opts.City)
			fmt.Printf("Dataset:  %s\n", result.Dataset.Path)
			fmt.Printf("Report:   %s\n", a.ui.info(result.Artifact.Path))
			fmt.Printf("Sent:     %t\n", result.Sent)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.City, "city", "c", "Madrid", "city to query")
	cmd.Flags().BoolVar(&opts.Send, "send", false, "send the report by email")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "simulate sending without contacting SMTP")
	cmd.Flags().IntVar(&retries, "retries", 0, "attempts for scrape and email (default from config)")
	cmd.Flags().BoolVar(&opts.ForceFetch, "force-scrape", false, "run the scraper even if the dataset exists")
	return cmd
}
