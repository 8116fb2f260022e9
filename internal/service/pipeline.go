package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
	"github.com/adamzambudio/rpa-lab/internal/metrics"
	"github.com/adamzambudio/rpa-lab/internal/retry"
)

// Process exit codes for a single pipeline run.
const (
	ExitOK            = 0
	ExitUnknown       = 1
	ExitFetch         = 2
	ExitMissingOutput = 4
	ExitParse         = 5
	ExitBuild         = 6
	ExitNotify        = 7
	ExitConfig        = 8
)

// RunOptions selects what a single pipeline run does.
type RunOptions struct {
	City       string
	Send       bool
	DryRun     bool
	ForceFetch bool
}

// RunResult describes a finished single run.
type RunResult struct {
	Dataset  domain.FetchedDataset
	Artifact domain.ReportArtifact
	Sent     bool
}

// Pipeline is the single-city sibling of the batch orchestrator:
// fetch (unless a dataset already exists), extract, build, optionally notify.
type Pipeline struct {
	fetcher     ports.Fetcher
	datasetPath string
	extractor   ports.Extractor
	builder     ports.ReportBuilder
	notifier    ports.Notifier
	templates   *MessageTemplates
	policy      retry.Policy
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

// NewPipeline creates a Pipeline. notifier may be nil when nothing is sent.
func NewPipeline(
	fetcher ports.Fetcher,
	datasetPath string,
	extractor ports.Extractor,
	builder ports.ReportBuilder,
	notifier ports.Notifier,
	templates *MessageTemplates,
	policy retry.Policy,
	rec *metrics.Recorder,
	logger *slog.Logger,
) *Pipeline {
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	return &Pipeline{
		fetcher:     fetcher,
		datasetPath: datasetPath,
		extractor:   extractor,
		builder:     builder,
		notifier:    notifier,
		templates:   templates,
		policy:      policy,
		metrics:     rec,
		logger:      logger,
	}
}

// RunOnce executes the pipeline for opts.City.
func (p *Pipeline) RunOnce(ctx context.Context, opts RunOptions) (*RunResult, error) {
	log := p.logger.With("city", opts.City)
	log.Info("Pipeline started", "send", opts.Send, "dry_run", opts.DryRun, "force_scrape", opts.ForceFetch)
	result := &RunResult{}

	if opts.Send && !opts.DryRun && p.notifier == nil {
		return result, &domain.ConfigError{Field: "smtp", Err: errors.New("sending requested but SMTP is not configured")}
	}

	ds, reused := p.existingDataset()
	if reused && !opts.ForceFetch {
		log.Info("Dataset already exists, skipping scraper (use --force-scrape to refresh)", "path", ds.Path)
	} else {
		var err error
		ds, err = retry.DoValue(ctx, attemptPolicy(log, p.metrics, StepFetch, p.policy), func(ctx context.Context) (domain.FetchedDataset, error) {
			return p.fetcher.Fetch(ctx, opts.City)
		})
		if err != nil {
			log.Error("Scraper failed after retries", "error", err)
			return result, err
		}
		log.Info("Scraper finished", "path", ds.Path)
	}
	result.Dataset = ds

	record, err := p.extractor.Extract(ds, opts.City)
	if err != nil {
		log.Error("Failed to read dataset", "error", err)
		return result, err
	}

	artifact, err := p.builder.Build(ctx, record)
	if err != nil {
		log.Error("Failed to build report", "error", err)
		return result, err
	}
	result.Artifact = artifact

	if !opts.Send {
		log.Info("Pipeline completed", "report", artifact.Path)
		return result, nil
	}

	subject, body, err := p.templates.Render(MessageData{
		City:        opts.City,
		GeneratedAt: artifact.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return result, err
	}
	if opts.DryRun {
		log.Info("[DRY-RUN] Would send email", "subject", subject, "attachment", artifact.Path)
		log.Info("Pipeline completed", "report", artifact.Path)
		return result, nil
	}

	msg := ports.Message{Subject: subject, HTMLBody: body, Attachment: artifact.Path}
	err = retry.Do(ctx, attemptPolicy(log, p.metrics, StepNotify, p.policy), func(ctx context.Context) error {
		return p.notifier.Notify(ctx, msg)
	})
	if err != nil {
		log.Error("Email failed after retries", "error", err)
		return result, err
	}
	result.Sent = true
	log.Info("Pipeline completed", "report", artifact.Path, "sent", true)
	return result, nil
}

func (p *Pipeline) existingDataset() (domain.FetchedDataset, bool) {
	if p.datasetPath == "" {
		return domain.FetchedDataset{}, false
	}
	info, err := os.Stat(p.datasetPath)
	if err != nil || info.IsDir() {
		return domain.FetchedDataset{}, false
	}
	return domain.FetchedDataset{Path: p.datasetPath, FetchedAt: info.ModTime(), Cached: true}, true
}

// ExitCode maps a pipeline error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrConfig):
		return ExitConfig
	case errors.Is(err, domain.ErrMissingOutput):
		return ExitMissingOutput
	case errors.Is(err, domain.ErrFetch):
		return ExitFetch
	case errors.Is(err, domain.ErrParse):
		return ExitParse
	case errors.Is(err, domain.ErrBuild):
		return ExitBuild
	case errors.Is(err, domain.ErrNotify):
		return ExitNotify
	default:
		return ExitUnknown
	}
}
