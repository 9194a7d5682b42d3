package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/store"
)

// ErrNoDocuments is returned by RunBatch when there is nothing to process.
var ErrNoDocuments = eris.New("no PDF documents found")

// Processor turns one document into one outcome. *Pipeline satisfies it.
type Processor interface {
	Process(ctx context.Context, path string) *model.Outcome
}

// Sink receives every outcome of a batch. *ledger.Writer satisfies it.
type Sink interface {
	Append(out *model.Outcome) error
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	InputDir      string
	Concurrency   int
	SkipProcessed bool
}

// BatchResult summarizes a finished batch.
type BatchResult struct {
	RunID   string
	Summary model.RunSummary
}

// RunBatch processes paths through proc and appends each outcome to sink.
// With Concurrency > 1 documents are processed by a bounded worker pool and
// sink appends are serialized. A failing document never aborts the batch.
// When st is non-nil the run and every document are journaled, and with
// SkipProcessed documents whose content already reached a non-error outcome
// are skipped. Cancelling ctx stops scheduling new documents; in-flight ones
// finish on a context detached from the cancellation.
func RunBatch(ctx context.Context, proc Processor, sink Sink, st store.Store, paths []string, opts BatchOptions) (*BatchResult, error) {
	if len(paths) == 0 {
		return nil, eris.Wrapf(ErrNoDocuments, "pipeline: %s", opts.InputDir)
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	result := &BatchResult{}
	if st != nil {
		run, err := st.StartRun(context.WithoutCancel(ctx), opts.InputDir)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: start run")
		}
		result.RunID = run.ID
	}

	total := len(paths)
	zap.L().Info("pipeline: processing batch",
		zap.String("run_id", result.RunID),
		zap.String("input_dir", opts.InputDir),
		zap.Int("documents", total),
		zap.Int("concurrency", concurrency),
		zap.Bool("skip_processed", opts.SkipProcessed && st != nil),
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		if gctx.Err() != nil {
			zap.L().Warn("pipeline: batch cancelled, not scheduling remaining documents",
				zap.Int("remaining", total-i),
			)
			break
		}

		g.Go(func() error {
			log := zap.L().With(
				zap.String("progress", fmt.Sprintf("%d/%d", i+1, total)),
				zap.String("path", path),
			)
			log.Info("pipeline: processing document", zap.String("file", filepath.Base(path)))

			hash := ""
			if st != nil {
				h, err := contentHash(path)
				if err != nil {
					log.Warn("pipeline: hash document", zap.Error(err))
				}
				hash = h
			}

			docCtx := context.WithoutCancel(gctx)

			if opts.SkipProcessed && st != nil && hash != "" {
				prev, err := st.LastOutcome(docCtx, path, hash)
				if err != nil {
					log.Warn("pipeline: journal lookup failed", zap.Error(err))
				} else if prev != nil && prev.Kind != model.OutcomeError {
					log.Info("pipeline: already processed, skipping",
						zap.String("kind", string(prev.Kind)),
						zap.String("previous_run", prev.RunID),
					)
					mu.Lock()
					result.Summary.Total++
					result.Summary.Skipped++
					mu.Unlock()
					return nil
				}
			}

			out := proc.Process(docCtx, path)

			mu.Lock()
			result.Summary.Add(out.Kind)
			if err := sink.Append(out); err != nil {
				log.Error("pipeline: ledger append failed", zap.String("kind", string(out.Kind)), zap.Error(err))
			}
			mu.Unlock()

			if st != nil {
				rec := &model.DocumentRecord{
					RunID:       result.RunID,
					Path:        path,
					ContentHash: hash,
					Kind:        out.Kind,
					DocType:     out.DocType,
					Method:      out.Method,
					Reason:      out.Reason,
				}
				if err := st.RecordDocument(docCtx, rec); err != nil {
					log.Warn("pipeline: journal document", zap.Error(err))
				}
			}

			log.Info("pipeline: document done",
				zap.String("kind", string(out.Kind)),
				zap.String("doc_type", string(out.DocType)),
			)
			return nil // don't abort batch on individual failure
		})
	}

	if err := g.Wait(); err != nil {
		return result, eris.Wrap(err, "pipeline: batch processing")
	}

	status := model.RunStatusComplete
	if ctx.Err() != nil {
		status = model.RunStatusFailed
	}
	if st != nil {
		if err := st.FinishRun(context.WithoutCancel(ctx), result.RunID, status, &result.Summary); err != nil {
			zap.L().Warn("pipeline: finish run", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	zap.L().Info("pipeline: batch complete",
		zap.String("run_id", result.RunID),
		zap.String("status", string(status)),
		zap.Int("total", result.Summary.Total),
		zap.Int("succeeded", result.Summary.Succeeded),
		zap.Int("unsupported", result.Summary.Unsupported),
		zap.Int("failed", result.Summary.Failed),
		zap.Int("skipped", result.Summary.Skipped),
	)

	if ctx.Err() != nil {
		return result, eris.Wrap(ctx.Err(), "pipeline: batch interrupted")
	}
	return result, nil
}

// contentHash returns the hex SHA-256 of the file at path.
func contentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "pipeline: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", eris.Wrapf(err, "pipeline: read %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
