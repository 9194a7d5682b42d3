package ledger

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
)

// Delimiter separates ledger columns.
const Delimiter = ';'

// Writer appends outcomes to the success, error and unsupported ledgers.
// Each row opens, appends and closes its file, so readers never see a
// partially written ledger between rows. Appends are serialized.
type Writer struct {
	mu    sync.Mutex
	paths map[model.OutcomeKind]string
}

// NewWriter creates a Writer for the three ledger paths.
func NewWriter(successPath, errorPath, unsupportedPath string) *Writer {
	return &Writer{paths: map[model.OutcomeKind]string{
		model.OutcomeSuccess:     successPath,
		model.OutcomeError:       errorPath,
		model.OutcomeUnsupported: unsupportedPath,
	}}
}

// NewWriterFromConfig places the configured ledger files in cfg.Dir.
func NewWriterFromConfig(cfg config.OutputConfig) *Writer {
	return NewWriter(
		filepath.Join(cfg.Dir, cfg.SuccessFile),
		filepath.Join(cfg.Dir, cfg.ErrorFile),
		filepath.Join(cfg.Dir, cfg.UnsupportedFile),
	)
}

// Path returns the ledger file that receives kind.
func (w *Writer) Path(kind model.OutcomeKind) string {
	return w.paths[kind]
}

// EnsureHeaders creates any missing or empty ledger with its header row.
// Existing ledgers are left untouched.
func (w *Writer) EnsureHeaders() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, kind := range []model.OutcomeKind{model.OutcomeSuccess, model.OutcomeError, model.OutcomeUnsupported} {
		if err := appendRow(w.paths[kind], Header(kind), nil); err != nil {
			return err
		}
	}
	return nil
}

// Append writes the outcome as one row of its ledger, writing the header
// first when the file is new.
func (w *Writer) Append(out *model.Outcome) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	path, ok := w.paths[out.Kind]
	if !ok {
		return eris.Errorf("ledger: unknown outcome kind %q", out.Kind)
	}
	if err := appendRow(path, Header(out.Kind), Row(out)); err != nil {
		return err
	}
	zap.L().Debug("ledger: row appended", zap.String("ledger", path), zap.String("path", out.Path))
	return nil
}

// appendRow opens path for append. A new or empty file gets a UTF-8 byte
// order mark and the header before row. A nil row only bootstraps the file.
func appendRow(path string, header, row []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "ledger: create dir for %s", path)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "ledger: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return eris.Wrapf(err, "ledger: stat %s", path)
	}
	fresh := info.Size() == 0
	if !fresh && row == nil {
		return nil
	}

	var out io.Writer = f
	var bom *transform.Writer
	if fresh {
		bom = transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
		out = bom
	}

	cw := csv.NewWriter(out)
	cw.Comma = Delimiter
	cw.UseCRLF = true
	if fresh {
		if err := cw.Write(header); err != nil {
			return eris.Wrapf(err, "ledger: write header %s", path)
		}
		zap.L().Info("ledger: header written", zap.String("ledger", path))
	}
	if row != nil {
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "ledger: write row %s", path)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrapf(err, "ledger: flush %s", path)
	}
	if bom != nil {
		if err := bom.Close(); err != nil {
			return eris.Wrapf(err, "ledger: flush %s", path)
		}
	}
	return eris.Wrapf(f.Sync(), "ledger: sync %s", path)
}
