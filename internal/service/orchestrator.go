package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
	"github.com/adamzambudio/rpa-lab/internal/metrics"
	"github.com/adamzambudio/rpa-lab/internal/retry"
)

// Step names used in logs and metrics.
const (
	StepFetch   = "fetch"
	StepExtract = "extract"
	StepBuild   = "build"
	StepNotify  = "notify"
)

// Dependencies are the collaborators of the batch orchestrator.
type Dependencies struct {
	Fetcher   ports.Fetcher
	Extractor ports.Extractor
	Builder   ports.ReportBuilder
	Notifier  ports.Notifier // may be nil when DryRun is set
	Capturer  ports.Capturer // nil means no diagnostic capture
	Templates *MessageTemplates
	Metrics   *metrics.Recorder
	Clock     ports.Clock
}

// BatchConfig controls a batch run.
type BatchConfig struct {
	DryRun       bool
	FetchPolicy  retry.Policy
	NotifyPolicy retry.Policy
}

// ItemDoneFunc is invoked after each work item reaches a terminal state.
type ItemDoneFunc func(index, total int, rec domain.ResultRecord)

// Orchestrator runs fetch -> extract -> build -> notify for every work item.
// One item's failure is recorded and never aborts the batch.
type Orchestrator struct {
	deps   Dependencies
	cfg    BatchConfig
	logger *slog.Logger
	onDone ItemDoneFunc
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(deps Dependencies, cfg BatchConfig, logger *slog.Logger) (*Orchestrator, error) {
	if deps.Fetcher == nil || deps.Extractor == nil || deps.Builder == nil {
		return nil, &domain.ConfigError{Err: errors.New("fetcher, extractor and builder are required")}
	}
	if deps.Notifier == nil && !cfg.DryRun {
		return nil, &domain.ConfigError{Field: "smtp", Err: errors.New("a notifier is required unless running dry")}
	}
	if deps.Templates == nil {
		t, err := NewMessageTemplates("", "")
		if err != nil {
			return nil, err
		}
		deps.Templates = t
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRecorder()
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	return &Orchestrator{deps: deps, cfg: cfg, logger: logger}, nil
}

// OnItemDone registers a progress callback.
func (o *Orchestrator) OnItemDone(fn ItemDoneFunc) {
	o.onDone = fn
}

// Run processes items sequentially and returns one ledger record per item,
// in input order. Cancelling ctx marks the remaining items as cancelled.
func (o *Orchestrator) Run(ctx context.Context, items []domain.WorkItem) *domain.Ledger {
	ledger := &domain.Ledger{
		RunID:     uuid.New().String(),
		StartedAt: o.deps.Clock.Now().UTC(),
		DryRun:    o.cfg.DryRun,
		Records:   make([]domain.ResultRecord, 0, len(items)),
	}
	log := o.logger.With("run_id", ledger.RunID)
	log.Info("Batch started", "items", len(items), "dry_run", o.cfg.DryRun)

	for i, item := range items {
		var rec domain.ResultRecord
		if err := ctx.Err(); err != nil {
			rec = domain.ResultRecord{Name: item.Name, City: item.City, Status: domain.StatusError, Notes: "cancelled"}
			o.deps.Metrics.ObserveItem(string(rec.Status))
		} else {
			rec = o.processItem(ctx, log, item)
		}
		ledger.Records = append(ledger.Records, rec)
		if o.onDone != nil {
			o.onDone(i, len(items), rec)
		}
	}

	ledger.FinishedAt = o.deps.Clock.Now().UTC()
	o.deps.Metrics.ObserveBatch(ledger.FinishedAt.Sub(ledger.StartedAt))
	ok, failed := ledger.Counts()
	log.Info("Batch finished", "ok", ok, "failed", failed)
	return ledger
}

func (o *Orchestrator) processItem(ctx context.Context, log *slog.Logger, item domain.WorkItem) domain.ResultRecord {
	start := o.deps.Clock.Now()
	log = log.With("item", item.Name, "city", item.City)
	log.Info("Processing client")

	rec := domain.ResultRecord{Name: item.Name, City: item.City, Status: domain.StatusOK}
	artifact, err := o.runSteps(ctx, log, item)
	rec.ArtifactPath = artifact.Path
	rec.Elapsed = o.deps.Clock.Now().Sub(start)

	if err != nil {
		rec.Status = domain.StatusError
		rec.Notes = err.Error()
		log.Error("Client failed", "error", err, "elapsed", rec.Elapsed)
		rec.ScreenshotPath = o.capture(ctx, log, item)
	} else {
		log.Info("Client done", "elapsed", rec.Elapsed)
	}
	o.deps.Metrics.ObserveItem(string(rec.Status))
	return rec
}

func (o *Orchestrator) runSteps(ctx context.Context, log *slog.Logger, item domain.WorkItem) (domain.ReportArtifact, error) {
	var (
		ds       domain.FetchedDataset
		record   *domain.ClientRecord
		artifact domain.ReportArtifact
	)

	err := o.step(log, StepFetch, func() error {
		var err error
		ds, err = retry.DoValue(ctx, o.policy(log, StepFetch, o.cfg.FetchPolicy), func(ctx context.Context) (domain.FetchedDataset, error) {
			ds, err := o.deps.Fetcher.Fetch(ctx, item.City)
			return ds, classify(err, func(err error) error { return &domain.FetchError{Op: "fetch", Err: err} })
		})
		return err
	})
	if err != nil {
		return artifact, err
	}

	err = o.step(log, StepExtract, func() error {
		var err error
		record, err = o.deps.Extractor.Extract(ds, item.City)
		if err != nil {
			return classify(err, func(err error) error { return &domain.ParseError{Op: "extract", Err: err} })
		}
		record.Set("name", item.Name)
		record.Set("email", item.Email)
		return nil
	})
	if err != nil {
		return artifact, err
	}

	err = o.step(log, StepBuild, func() error {
		var err error
		artifact, err = o.deps.Builder.Build(ctx, record)
		return classify(err, func(err error) error { return &domain.BuildError{Op: "build", Err: err} })
	})
	if err != nil {
		return artifact, err
	}

	if o.cfg.DryRun {
		log.Info("[DRY-RUN] Skipping notification", "attachment", artifact.Path)
		return artifact, nil
	}

	err = o.step(log, StepNotify, func() error {
		subject, body, err := o.deps.Templates.Render(MessageData{
			Name:        item.Name,
			City:        item.City,
			Email:       item.Email,
			GeneratedAt: artifact.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		msg := ports.Message{Subject: subject, HTMLBody: body, Attachment: artifact.Path}
		return retry.Do(ctx, o.policy(log, StepNotify, o.cfg.NotifyPolicy), func(ctx context.Context) error {
			err := o.deps.Notifier.Notify(ctx, msg)
			return classify(err, func(err error) error { return &domain.NotifyError{Op: "notify", Err: err} })
		})
	})
	return artifact, err
}

// step times fn and logs the transition into and out of the named step.
func (o *Orchestrator) step(log *slog.Logger, name string, fn func() error) error {
	start := time.Now()
	log.Debug("Step started", "step", name)
	err := fn()
	o.deps.Metrics.ObserveStep(name, time.Since(start))
	if err != nil {
		log.Warn("Step failed", "step", name, "error", err)
		return err
	}
	log.Debug("Step done", "step", name)
	return nil
}

// policy decorates p with error classification, per-attempt logging and metrics.
func (o *Orchestrator) policy(log *slog.Logger, step string, p retry.Policy) retry.Policy {
	return attemptPolicy(log, o.deps.Metrics, step, p)
}

func attemptPolicy(log *slog.Logger, rec *metrics.Recorder, step string, p retry.Policy) retry.Policy {
	p.Retryable = domain.IsRetryable
	maxAttempts := p.MaxAttempts
	p.OnAttempt = func(attempt int, err error) {
		rec.ObserveAttempt(step, err)
		if err != nil {
			log.Warn("Attempt failed", "step", step, "attempt", attempt, "max_attempts", maxAttempts, "error", err)
			return
		}
		if attempt > 1 {
			log.Info("Attempt succeeded", "step", step, "attempt", attempt)
		}
	}
	return p
}

func (o *Orchestrator) capture(ctx context.Context, log *slog.Logger, item domain.WorkItem) string {
	if o.deps.Capturer == nil {
		return ""
	}
	tag := item.Name
	if tag == "" {
		tag = "error"
	}
	path, err := o.deps.Capturer.Capture(ctx, tag)
	if err != nil {
		log.Warn("Diagnostic capture failed", "error", err)
		return ""
	}
	if path != "" {
		log.Info("Diagnostic capture saved", "path", path)
	}
	return path
}

// classify wraps err with wrap unless it already belongs to the error taxonomy
// or is a context error.
func classify(err error, wrap func(error) error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{domain.ErrFetch, domain.ErrParse, domain.ErrBuild, domain.ErrNotify, domain.ErrConfig} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return wrap(err)
}
