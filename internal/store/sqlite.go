package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/invoice-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	input_dir   TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	summary     TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	path         TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	kind         TEXT NOT NULL,
	doc_type     TEXT NOT NULL,
	method       TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id);
CREATE INDEX IF NOT EXISTS idx_documents_path_hash ON documents(path, content_hash);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) StartRun(ctx context.Context, inputDir string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_dir, status, created_at) VALUES (?, ?, ?, ?)`,
		id, inputDir, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &model.Run{ID: id, InputDir: inputDir, Status: model.RunStatusRunning, CreatedAt: now}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, status model.RunStatus, summary *model.RunSummary) error {
	summaryJSON, err := marshalSummary(summary)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, summary = ?, finished_at = ? WHERE id = ?`,
		string(status), summaryJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_dir, status, summary, created_at, finished_at FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) RecordDocument(ctx context.Context, rec *model.DocumentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, run_id, path, content_hash, kind, doc_type, method, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Path, rec.ContentHash, string(rec.Kind), string(rec.DocType),
		string(rec.Method), rec.Reason, rec.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert document %s", rec.Path)
}

func (s *SQLiteStore) LastOutcome(ctx context.Context, path, contentHash string) (*model.DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, path, content_hash, kind, doc_type, method, reason, created_at
		 FROM documents WHERE path = ? AND content_hash = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		path, contentHash,
	)
	rec, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: last outcome %s", path)
	}
	return rec, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var (
		run      model.Run
		status   string
		summary  sql.NullString
		finished sql.NullTime
	)
	if err := row.Scan(&run.ID, &run.InputDir, &status, &summary, &run.CreatedAt, &finished); err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	if summary.Valid && summary.String != "" {
		sum, err := unmarshalSummary([]byte(summary.String))
		if err != nil {
			return nil, err
		}
		run.Summary = sum
	}
	return &run, nil
}

func scanDocument(row scannable) (*model.DocumentRecord, error) {
	var (
		rec     model.DocumentRecord
		kind    string
		docType string
		method  string
	)
	if err := row.Scan(&rec.ID, &rec.RunID, &rec.Path, &rec.ContentHash, &kind, &docType, &method, &rec.Reason, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Kind = model.OutcomeKind(kind)
	rec.DocType = model.DocumentType(docType)
	rec.Method = model.ExtractionMethod(method)
	return &rec, nil
}

func marshalSummary(summary *model.RunSummary) ([]byte, error) {
	if summary == nil {
		return nil, nil
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return nil, eris.Wrap(err, "marshal run summary")
	}
	return b, nil
}

func unmarshalSummary(b []byte) (*model.RunSummary, error) {
	var sum model.RunSummary
	if err := json.Unmarshal(b, &sum); err != nil {
		return nil, eris.Wrap(err, "unmarshal run summary")
	}
	return &sum, nil
}
