package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// BatchDeps wires the lifecycle driver and the report sinks into the
// orchestrator.
type BatchDeps struct {
	Driver         ports.PublishDriver
	Store          ports.ReportStore
	Notifier       ports.Notifier
	Logger         *slog.Logger
	InterTaskDelay time.Duration
}

// Batch runs the article x platform matrix sequentially, isolating each
// task's failure and folding every outcome into a single report.
type Batch struct {
	driver   ports.PublishDriver
	store    ports.ReportStore
	notifier ports.Notifier
	logger   *slog.Logger
	delay    time.Duration
	sleep    func(context.Context, time.Duration) error
}

// NewBatch constructs the orchestrator.
func NewBatch(deps BatchDeps) *Batch {
	return &Batch{
		driver:   deps.Driver,
		store:    deps.Store,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		delay:    deps.InterTaskDelay,
		sleep:    sleepContext,
	}
}

// Run executes every (article, platform) pair in deterministic order:
// articles outside, platforms inside. One task's failure never aborts the
// rest of the matrix; an external interrupt is honored at task boundaries
// and still yields the partial report.
func (b *Batch) Run(ctx context.Context, articles []domain.Article, targets []domain.PlatformTarget) (domain.BatchReport, error) {
	report := domain.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Total:     len(articles) * len(targets),
	}

	b.logger.Info("batch started",
		"run", report.RunID, "articles", len(articles), "platforms", len(targets), "tasks", report.Total)

	// A platform whose interactive login timed out stays dead for the rest
	// of the run; retrying without operator action is pointless.
	loginExpired := map[string]bool{}
	task := 0

outer:
	for _, article := range articles {
		for _, target := range targets {
			if ctx.Err() != nil {
				break outer
			}
			task++
			b.logger.Info("task starting",
				"progress", fmt.Sprintf("%d/%d", task, report.Total),
				"article", article.Title, "platform", target.Name)

			var result domain.PublishResult
			if loginExpired[target.Name] {
				result = skippedResult(article, target, domain.KindLoginTimeout,
					"login timed out earlier in this run")
			} else {
				result = b.runTask(ctx, target, article)
				if !result.Success && result.ErrorKind == domain.KindLoginTimeout {
					loginExpired[target.Name] = true
				}
			}
			report.Append(result)

			if task < report.Total {
				if err := b.sleep(ctx, b.delay); err != nil {
					break outer
				}
			}
		}
	}

	report.FinishedAt = time.Now()
	b.emit(ctx, report)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// runTask invokes the driver with a panic barrier: an adapter bug on one
// platform must not take the remaining matrix down with it.
func (b *Batch) runTask(ctx context.Context, target domain.PlatformTarget, article domain.Article) (result domain.PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("task panicked",
				"platform", target.Name, "article", article.Title, "panic", r)
			result = skippedResult(article, target, domain.KindTaskPanic, fmt.Sprint(r))
		}
	}()
	return b.driver.Publish(ctx, target, article)
}

const emitTimeout = 30 * time.Second

// emit persists and announces the report. It runs on a context detached
// from the run's cancellation: an interrupted batch must still leave its
// partial report behind. Sink failures are logged, never fatal: the report
// itself already reached the caller.
func (b *Batch) emit(ctx context.Context, report domain.BatchReport) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
	defer cancel()

	b.logger.Info("batch finished",
		"run", report.RunID, "total", report.Total,
		"succeeded", report.Succeeded, "unverified", report.Unverified, "failed", report.Failed)

	if b.store != nil {
		if err := b.store.SaveReport(ctx, report); err != nil {
			b.logger.Error("report persistence failed", "run", report.RunID, "error", err)
		}
	}
	if b.notifier != nil {
		if err := b.notifier.PublishReport(ctx, report); err != nil {
			b.logger.Error("report notification failed", "run", report.RunID, "error", err)
		}
	}
}

func skippedResult(article domain.Article, target domain.PlatformTarget, kind domain.ErrorKind, reason string) domain.PublishResult {
	return domain.PublishResult{
		ArticleID: article.ID,
		Article:   article.Title,
		Platform:  target.Name,
		Status:    domain.StatusFailed,
		Success:   false,
		ErrorKind: kind,
		Error:     reason,
		Timestamp: time.Now(),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
