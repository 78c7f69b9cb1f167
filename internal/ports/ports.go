package ports

import (
	"context"
	"time"

	"ArticlePublisher/internal/domain"
)

// CredentialStore persists authentication cookies per platform across runs.
type CredentialStore interface {
	// Save writes cookies for the platform. Unless force is set, a save with
	// an unchanged name->value projection is skipped; the bool reports
	// whether a write actually happened.
	Save(platform string, cookies []domain.Cookie, force bool) (bool, error)
	// Load returns nil, nil when no credentials were ever saved.
	Load(platform string) ([]domain.Cookie, error)
	Clear(platform string) error
}

// BrowserSession owns one automation-controllable browser for a run.
type BrowserSession interface {
	// OpenTab creates a fresh tab so each platform publish gets its own
	// page while sharing the browser process.
	OpenTab() (Tab, error)
	Close()
}

// Tab exposes the interaction primitives adapters and the lifecycle driver
// build on. Every blocking call takes an explicit timeout; there is no
// wait-forever operation.
type Tab interface {
	Navigate(url string, timeout time.Duration) error
	Reload(timeout time.Duration) error
	// WaitVisible is the single low-level wait primitive. It does not
	// retry; retry policy belongs to the caller.
	WaitVisible(selector string, timeout time.Duration) error
	// SafeClick and SafeInput wait for the element and retry the action
	// itself on interaction failures. They report success instead of
	// raising for expected UI flakiness.
	SafeClick(selector string, timeout time.Duration, retries int) bool
	SafeInput(selector, text string, timeout time.Duration, retries int) bool
	OuterHTML(timeout time.Duration) (string, error)
	Location() (string, error)
	// DragHorizontal drags an element to the right edge of its track,
	// which is how slide-to-verify challenges are completed.
	DragHorizontal(selector string, timeout time.Duration) error
	// InjectCookies filters cookies to those matching the tab's current
	// domain, adds them one by one tolerating individual failures, and
	// reloads so the page picks up the new jar.
	InjectCookies(cookies []domain.Cookie) (added, skipped int, err error)
	Cookies() ([]domain.Cookie, error)
	Close()
}

// PublishDriver runs the generic publish lifecycle for one task.
type PublishDriver interface {
	Publish(ctx context.Context, target domain.PlatformTarget, article domain.Article) domain.PublishResult
}

// ArticleSource hands finished articles to the orchestrator; parsing the
// on-disk format is its job, not the core's.
type ArticleSource interface {
	Load(ctx context.Context) ([]domain.Article, error)
}

// ReportStore persists completed run reports for audit and re-runs.
type ReportStore interface {
	SaveReport(ctx context.Context, report domain.BatchReport) error
}

// Notifier pushes a run summary to an operator channel.
type Notifier interface {
	PublishReport(ctx context.Context, report domain.BatchReport) error
}
