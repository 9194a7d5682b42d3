// Package store journals runs and per-document outcomes so that repeated runs
// over the same folder can skip documents that were already handled.
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
)

// Store defines the persistence interface for the run journal.
type Store interface {
	// Runs
	StartRun(ctx context.Context, inputDir string) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, status model.RunStatus, summary *model.RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Documents
	RecordDocument(ctx context.Context, rec *model.DocumentRecord) error
	// LastOutcome returns the newest record for path with the given content
	// hash, or nil when the document has not been seen.
	LastOutcome(ctx context.Context, path, contentHash string) (*model.DocumentRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// DefaultSQLiteFile is the journal file name used when store.database_url is
// empty for the sqlite driver.
const DefaultSQLiteFile = "processamento.db"

// Open creates and migrates the store selected by cfg.Driver. It returns a nil
// Store for the "none" driver. dataDir holds the sqlite file when no path is
// configured.
func Open(ctx context.Context, cfg config.StoreConfig, dataDir string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "none":
		return nil, nil
	case "sqlite", "":
		path := cfg.DatabaseURL
		if path == "" {
			path = filepath.Join(dataDir, DefaultSQLiteFile)
		}
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrapf(err, "store: create dir %s", dir)
			}
		}
		st, err = NewSQLite(path)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
