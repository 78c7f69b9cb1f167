package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ArticlePublisher/internal/browser"
	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/credentials"
	"ArticlePublisher/internal/infrastructure/articles"
	"ArticlePublisher/internal/infrastructure/platforms"
	"ArticlePublisher/internal/infrastructure/storage"
	"ArticlePublisher/internal/infrastructure/telegram"
	"ArticlePublisher/internal/logging"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/publisher"
	"ArticlePublisher/internal/usecase"
)

// Application wires configs to the publish use case and owns component
// lifecycles. The browser is connected lazily in Run so construction stays
// side-effect free.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	creds    ports.CredentialStore
	source   ports.ArticleSource
	store    *storage.SQLiteReportStore
	notifier ports.Notifier
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	creds, err := credentials.NewFileStore(cfg.Credentials.Dir, baseLogger.With("component", "credentials"))
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}

	store, err := storage.NewSQLiteReportStore(cfg.Report.DSN)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		creds:    creds,
		source:   articles.NewDirSource(cfg.Content.Dir, baseLogger.With("component", "articles")),
		store:    store,
		notifier: notifier,
	}, nil
}

// Run executes one full publish batch: load articles, connect the browser,
// drive every enabled platform, persist and announce the report.
func (a *Application) Run(ctx context.Context) error {
	arts, err := a.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load articles: %w", err)
	}
	if len(arts) == 0 {
		a.logger.Info("no articles to publish", "dir", a.cfg.Content.Dir)
		return nil
	}

	targets := a.cfg.EnabledTargets()
	if len(targets) == 0 {
		a.logger.Info("no platforms enabled")
		return nil
	}

	session, err := browser.Connect(ctx, a.cfg.Browser, a.logger.With("component", "browser"))
	if err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	defer session.Close()

	registry := publisher.NewRegistry()
	registry.Register(platforms.NewCSDN(a.cfg.Publish, a.logger.With("component", "platform.csdn")))
	registry.Register(platforms.NewJuejin(a.cfg.Publish, a.logger.With("component", "platform.juejin")))

	driver := publisher.NewDriver(publisher.DriverDeps{
		Session:     session,
		Credentials: a.creds,
		Registry:    registry,
		Publish:     a.cfg.Publish,
		Logger:      a.logger.With("component", "driver"),
	})

	batch := usecase.NewBatch(usecase.BatchDeps{
		Driver:         driver,
		Store:          a.store,
		Notifier:       a.notifier,
		Logger:         a.logger.With("component", "batch"),
		InterTaskDelay: a.cfg.Publish.InterTaskDelay(),
	})

	started := time.Now()
	report, err := batch.Run(ctx, arts, targets)
	a.logger.Info("run complete",
		"run_id", report.RunID, "elapsed", time.Since(started).Round(time.Second))
	fmt.Print(report.Summary())

	return err
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
