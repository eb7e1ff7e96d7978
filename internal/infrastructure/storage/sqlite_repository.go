package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
)

const reportsTable = "reports"

const schema = `CREATE TABLE IF NOT EXISTS reports (
	slug     TEXT PRIMARY KEY,
	id       TEXT NOT NULL,
	title    TEXT NOT NULL,
	category TEXT NOT NULL,
	seq      INTEGER NOT NULL,
	payload  TEXT NOT NULL
)`

// SQLiteRepository keeps the most recent reports keyed by slug.
type SQLiteRepository struct {
	db       *sql.DB
	capacity int
}

var _ ports.ReportRepository = (*SQLiteRepository)(nil)

// OpenMemory creates a process-local in-memory store holding at most capacity reports.
func OpenMemory(ctx context.Context, capacity int) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	repo, err := NewSQLiteRepository(ctx, db, capacity)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository wires a sql.DB implementation and creates the schema.
func NewSQLiteRepository(ctx context.Context, db *sql.DB, capacity int) (*SQLiteRepository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteRepository{db: db, capacity: capacity}, nil
}

// Save upserts the report by slug and evicts the oldest beyond capacity.
func (r *SQLiteRepository) Save(ctx context.Context, report domain.Report) error {
	if r.db == nil {
		return nil
	}
	if report.Article.Slug == "" {
		return fmt.Errorf("save report: empty slug")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := sq.Insert(reportsTable).
		Columns("slug", "id", "title", "category", "seq", "payload").
		Values(
			report.Article.Slug,
			report.Article.ID,
			report.Article.Title,
			report.Article.Category,
			sq.Expr("(SELECT COALESCE(MAX(seq), 0) + 1 FROM " + reportsTable + ")"),
			string(payload),
		).
		Suffix(`ON CONFLICT (slug) DO UPDATE
			SET id = excluded.id,
			    title = excluded.title,
			    category = excluded.category,
			    seq = excluded.seq,
			    payload = excluded.payload`).
		RunWith(tx)

	if _, err := upsert.ExecContext(ctx); err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}

	if r.capacity > 0 {
		keep := sq.Select("slug").From(reportsTable).OrderBy("seq DESC").Limit(uint64(r.capacity))
		keepSQL, keepArgs, err := keep.ToSql()
		if err != nil {
			return fmt.Errorf("build eviction: %w", err)
		}
		evict := sq.Delete(reportsTable).
			Where("slug NOT IN ("+keepSQL+")", keepArgs...).
			RunWith(tx)
		if _, err := evict.ExecContext(ctx); err != nil {
			return fmt.Errorf("evict reports: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

// Get returns the report stored under slug or domain.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, slug string) (domain.Report, error) {
	if r.db == nil {
		return domain.Report{}, domain.ErrNotFound
	}

	var payload string
	err := sq.Select("payload").
		From(reportsTable).
		Where(sq.Eq{"slug": slug}).
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Report{}, fmt.Errorf("%w: %s", domain.ErrNotFound, slug)
	}
	if err != nil {
		return domain.Report{}, fmt.Errorf("query report: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return domain.Report{}, fmt.Errorf("decode report %s: %w", slug, err)
	}
	return report, nil
}

// List returns article headers, most recent first. A non-positive limit lists everything.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]domain.Article, error) {
	if r.db == nil {
		return []domain.Article{}, nil
	}

	query := sq.Select("payload").From(reportsTable).OrderBy("seq DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	articles := make([]domain.Article, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var report domain.Report
		if err := json.Unmarshal([]byte(payload), &report); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode report: %w", err)
		}
		articles = append(articles, report.Article)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return articles, nil
}

// Close releases the database.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
