package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// SQLiteReportStore persists run reports into a local SQLite file so failed
// subsets can be identified and re-run after the process exits. The system
// is explicitly single-process, so an embedded database is sufficient.
type SQLiteReportStore struct {
	db *sql.DB
}

var _ ports.ReportStore = (*SQLiteReportStore)(nil)

// NewSQLiteReportStore opens (and if needed creates) the audit database.
func NewSQLiteReportStore(dsn string) (*SQLiteReportStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open report db: %w", err)
	}

	store := &SQLiteReportStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize report schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteReportStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS publish_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		total INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		unverified INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS publish_results (
		run_id TEXT NOT NULL REFERENCES publish_runs(id),
		article_id TEXT NOT NULL,
		article TEXT NOT NULL,
		platform TEXT NOT NULL,
		status TEXT NOT NULL,
		success INTEGER NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_run ON publish_results(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveReport writes the run row and every result in one transaction.
func (s *SQLiteReportStore) SaveReport(ctx context.Context, report domain.BatchReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = sq.Insert("publish_runs").
		Columns("id", "started_at", "finished_at", "total", "succeeded", "failed", "unverified").
		Values(report.RunID, report.StartedAt, report.FinishedAt,
			report.Total, report.Succeeded, report.Failed, report.Unverified).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}

	for _, res := range report.Results {
		_, err = sq.Insert("publish_results").
			Columns("run_id", "article_id", "article", "platform", "status", "success", "error_kind", "error", "created_at").
			Values(report.RunID, res.ArticleID, res.Article, res.Platform,
				string(res.Status), res.Success, string(res.ErrorKind), res.Error, res.Timestamp).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("insert result %s/%s: %w", res.Article, res.Platform, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report %s: %w", report.RunID, err)
	}
	return nil
}

// LoadRun reconstructs a persisted report, results in insertion order. The
// report is fully rebuildable from its result rows; the run row is kept for
// cheap listing.
func (s *SQLiteReportStore) LoadRun(ctx context.Context, runID string) (domain.BatchReport, error) {
	report := domain.BatchReport{RunID: runID}

	row := sq.Select("started_at", "finished_at", "total").
		From("publish_runs").
		Where(sq.Eq{"id": runID}).
		RunWith(s.db).
		QueryRowContext(ctx)
	if err := row.Scan(&report.StartedAt, &report.FinishedAt, &report.Total); err != nil {
		return domain.BatchReport{}, fmt.Errorf("load run %s: %w", runID, err)
	}

	rows, err := sq.Select("article_id", "article", "platform", "status", "success", "error_kind", "error", "created_at").
		From("publish_results").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("rowid").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("load results of %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			res       domain.PublishResult
			status    string
			errorKind string
			ts        time.Time
		)
		if err := rows.Scan(&res.ArticleID, &res.Article, &res.Platform,
			&status, &res.Success, &errorKind, &res.Error, &ts); err != nil {
			return domain.BatchReport{}, fmt.Errorf("scan result: %w", err)
		}
		res.Status = domain.TaskStatus(status)
		res.ErrorKind = domain.ErrorKind(errorKind)
		res.Timestamp = ts
		report.Append(res)
	}
	if err := rows.Err(); err != nil {
		return domain.BatchReport{}, fmt.Errorf("iterate results: %w", err)
	}

	return report, nil
}

// FailedTasks returns the (article, platform) pairs of a run that need a
// re-run.
func (s *SQLiteReportStore) FailedTasks(ctx context.Context, runID string) ([]domain.PublishResult, error) {
	report, err := s.LoadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	var failed []domain.PublishResult
	for _, res := range report.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed, nil
}

// Close releases the database handle.
func (s *SQLiteReportStore) Close() error {
	return s.db.Close()
}
