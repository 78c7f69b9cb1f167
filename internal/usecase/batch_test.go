package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"ArticlePublisher/internal/domain"
)

// matrixDriver succeeds or fails per platform name, counting invocations.
type matrixDriver struct {
	failing   map[string]domain.ErrorKind
	panicking map[string]bool
	calls     []string
}

func (d *matrixDriver) Publish(_ context.Context, target domain.PlatformTarget, article domain.Article) domain.PublishResult {
	d.calls = append(d.calls, target.Name+"/"+article.ID)
	if d.panicking[target.Name] {
		panic("adapter exploded")
	}

	result := domain.PublishResult{
		ArticleID: article.ID,
		Article:   article.Title,
		Platform:  target.Name,
		Timestamp: time.Now(),
	}
	if kind, ok := d.failing[target.Name]; ok {
		result.Status = domain.StatusFailed
		result.ErrorKind = kind
		result.Error = "scripted failure"
		return result
	}
	result.Status = domain.StatusVerified
	result.Success = true
	return result
}

type recordingStore struct{ saved *domain.BatchReport }

func (s *recordingStore) SaveReport(_ context.Context, report domain.BatchReport) error {
	s.saved = &report
	return nil
}

type recordingNotifier struct{ sent *domain.BatchReport }

func (n *recordingNotifier) PublishReport(_ context.Context, report domain.BatchReport) error {
	n.sent = &report
	return nil
}

func testBatch(driver *matrixDriver, store *recordingStore, notifier *recordingNotifier) *Batch {
	deps := BatchDeps{
		Driver: driver,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if store != nil {
		deps.Store = store
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	b := NewBatch(deps)
	b.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return b
}

func articles(ids ...string) []domain.Article {
	out := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Article{ID: id, Title: "article " + id})
	}
	return out
}

func targets(names ...string) []domain.PlatformTarget {
	out := make([]domain.PlatformTarget, 0, len(names))
	for _, name := range names {
		out = append(out, domain.PlatformTarget{Name: name, EntryURL: "https://" + name + ".example.com", Enabled: true})
	}
	return out
}

func TestRunCrossProductComplete(t *testing.T) {
	t.Parallel()

	driver := &matrixDriver{}
	store := &recordingStore{}
	notifier := &recordingNotifier{}
	batch := testBatch(driver, store, notifier)

	report, err := batch.Run(context.Background(), articles("a1", "a2"), targets("A", "B", "C"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 6 || len(report.Results) != 6 {
		t.Fatalf("expected 6 results, got total=%d len=%d", report.Total, len(report.Results))
	}
	if report.Succeeded+report.Failed != report.Total {
		t.Fatalf("succeeded(%d)+failed(%d) != total(%d)", report.Succeeded, report.Failed, report.Total)
	}
	if report.Succeeded != 6 {
		t.Fatalf("expected all tasks to succeed, got %d", report.Succeeded)
	}

	// Deterministic order: articles outside, platforms inside.
	want := []string{"A/a1", "B/a1", "C/a1", "A/a2", "B/a2", "C/a2"}
	for i, call := range want {
		if driver.calls[i] != call {
			t.Fatalf("unexpected order at %d: got %s, want %s", i, driver.calls[i], call)
		}
	}

	if store.saved == nil || store.saved.RunID != report.RunID {
		t.Fatalf("report not persisted")
	}
	if notifier.sent == nil {
		t.Fatalf("report not announced")
	}
}

func TestRunFailureIsolation(t *testing.T) {
	t.Parallel()

	driver := &matrixDriver{failing: map[string]domain.ErrorKind{"B": domain.KindElementInteraction}}
	batch := testBatch(driver, nil, nil)

	report, err := batch.Run(context.Background(), articles("a1", "a2"), targets("A", "B"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Results) != 4 {
		t.Fatalf("expected 4 results despite B failing, got %d", len(report.Results))
	}
	if report.Succeeded != 2 || report.Failed != 2 {
		t.Fatalf("expected 2/2 split, got %d/%d", report.Succeeded, report.Failed)
	}
	for _, res := range report.Results {
		if res.Platform == "A" && !res.Success {
			t.Fatalf("A must be unaffected by B's failures: %+v", res)
		}
	}
}

func TestRunPanicConvertedToFailure(t *testing.T) {
	t.Parallel()

	driver := &matrixDriver{panicking: map[string]bool{"B": true}}
	batch := testBatch(driver, nil, nil)

	report, err := batch.Run(context.Background(), articles("a1"), targets("A", "B", "C"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Results) != 3 {
		t.Fatalf("a panicking platform must not abort the matrix, got %d results", len(report.Results))
	}
	var panicked *domain.PublishResult
	for i := range report.Results {
		if report.Results[i].Platform == "B" {
			panicked = &report.Results[i]
		}
	}
	if panicked == nil || panicked.ErrorKind != domain.KindTaskPanic {
		t.Fatalf("expected task_panic result for B, got %+v", panicked)
	}
}

func TestRunLoginTimeoutShortCircuitsPlatform(t *testing.T) {
	t.Parallel()

	driver := &matrixDriver{failing: map[string]domain.ErrorKind{"X": domain.KindLoginTimeout}}
	batch := testBatch(driver, nil, nil)

	report, err := batch.Run(context.Background(), articles("a1", "a2", "a3"), targets("A", "X"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(report.Results))
	}

	// The driver is only asked once for X; later X tasks are recorded
	// without re-driving the browser.
	xCalls := 0
	for _, call := range driver.calls {
		if call[0] == 'X' {
			xCalls++
		}
	}
	if xCalls != 1 {
		t.Fatalf("expected a single driver call for X, got %d", xCalls)
	}

	for _, res := range report.Results {
		switch res.Platform {
		case "X":
			if res.Success || res.ErrorKind != domain.KindLoginTimeout {
				t.Fatalf("X tasks must fail with login_timeout: %+v", res)
			}
		case "A":
			if !res.Success {
				t.Fatalf("A must be unaffected: %+v", res)
			}
		}
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	driver := &matrixDriver{}
	batch := testBatch(driver, nil, nil)
	// Cancel after the second task completes.
	calls := 0
	batch.sleep = func(context.Context, time.Duration) error {
		calls++
		if calls == 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	report, err := batch.Run(ctx, articles("a1", "a2"), targets("A", "B"))
	if err == nil {
		t.Fatalf("expected context error")
	}

	if len(report.Results) != 2 {
		t.Fatalf("expected partial report with 2 results, got %d", len(report.Results))
	}
	if report.Total != 4 {
		t.Fatalf("planned total must be preserved in the partial report, got %d", report.Total)
	}
}

// ctxStore records the state of the context it is handed, the way the real
// SQLite store would observe it through BeginTx.
type ctxStore struct {
	saved  *domain.BatchReport
	ctxErr error
}

func (s *ctxStore) SaveReport(ctx context.Context, report domain.BatchReport) error {
	s.ctxErr = ctx.Err()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.saved = &report
	return nil
}

func TestRunCancelledStillPersistsPartialReport(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	driver := &matrixDriver{}
	store := &ctxStore{}
	batch := NewBatch(BatchDeps{
		Driver: driver,
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	batch.sleep = func(context.Context, time.Duration) error {
		cancel()
		return ctx.Err()
	}

	report, err := batch.Run(ctx, articles("a1", "a2"), targets("A"))
	if err == nil {
		t.Fatalf("expected context error")
	}

	if store.ctxErr != nil {
		t.Fatalf("report sinks must not inherit the run's cancellation, got %v", store.ctxErr)
	}
	if store.saved == nil {
		t.Fatalf("partial report was not persisted")
	}
	if store.saved.RunID != report.RunID || len(store.saved.Results) != 1 {
		t.Fatalf("persisted report mismatch: %+v", store.saved)
	}
}
