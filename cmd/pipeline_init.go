package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/extract"
	"github.com/sells-group/invoice-cli/internal/ledger"
	"github.com/sells-group/invoice-cli/internal/ocr"
	"github.com/sells-group/invoice-cli/internal/pipeline"
	"github.com/sells-group/invoice-cli/internal/store"
)

// pipelineEnv holds the assembled cascade and its sinks for the run, extract
// and serve commands.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Ledger   *ledger.Writer
	Store    store.Store // nil when store.driver is "none"
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates cfg and wires text source, OCR, remote extractor,
// ledgers and journal. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	text, err := ocr.NewTextSource(cfg.Text)
	if err != nil {
		return nil, eris.Wrap(err, "init text source")
	}

	recognizer, err := ocr.NewRecognizer(cfg.OCR)
	if err != nil {
		return nil, eris.Wrap(err, "init ocr")
	}
	if recognizer == nil {
		zap.L().Info("ocr disabled, scanned documents keep their text layer")
	}

	structured, err := extract.NewStructuredFromConfig(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "init remote extractor")
	}
	// Keep the interface nil when no remote extractor is configured.
	var remote pipeline.RemoteExtractor
	if structured != nil {
		remote = structured
		zap.L().Info("remote extractor enabled", zap.String("provider", structured.Provider()))
	} else {
		zap.L().Info("remote extractor disabled, using pattern rules only")
	}

	quality := pipeline.NewQualityGate(ocr.PdfcpuPageCounter{}, cfg.Quality)
	p := pipeline.New(text, quality, recognizer, remote, cfg.File)

	st, err := store.Open(ctx, cfg.Store, cfg.Output.Dir)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	return &pipelineEnv{
		Pipeline: p,
		Ledger:   ledger.NewWriterFromConfig(cfg.Output),
		Store:    st,
	}, nil
}
