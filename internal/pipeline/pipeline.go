package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/extract"
	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/ocr"
	"github.com/sells-group/invoice-cli/internal/resilience"
)

// RemoteExtractor is the structured extractor consulted before the pattern
// rules. *extract.Structured satisfies it.
type RemoteExtractor interface {
	Extract(ctx context.Context, text string) (model.FieldSet, error)
}

// Pipeline runs the extraction cascade for one document at a time. It holds
// no per-document state and is safe for concurrent use when its collaborators
// are.
type Pipeline struct {
	text       ocr.TextSource
	quality    *QualityGate
	recognizer ocr.Recognizer
	remote     RemoteExtractor
	pattern    extract.Pattern
	fileWait   resilience.RetryConfig
}

// New assembles a Pipeline. recognizer and remote may be nil, which disables
// OCR and the remote extractor respectively.
func New(text ocr.TextSource, quality *QualityGate, recognizer ocr.Recognizer, remote RemoteExtractor, fileCfg config.FileConfig) *Pipeline {
	wait := resilience.FixedRetry(fileCfg.WaitAttempts, time.Duration(fileCfg.WaitDelayMs)*time.Millisecond)
	return &Pipeline{
		text:       text,
		quality:    quality,
		recognizer: recognizer,
		remote:     remote,
		fileWait:   wait,
	}
}

// Process runs the cascade on path and returns exactly one outcome. It never
// returns an error: expected failures become error or unsupported outcomes,
// and a panic is recovered into an error outcome.
func (p *Pipeline) Process(ctx context.Context, path string) (out *model.Outcome) {
	doc := &model.Document{Path: path, Type: model.DocTypeUnknown}
	log := zap.L().With(zap.String("path", path))

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: panic while processing document",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			out = model.ErrorOutcome(path, doc.Type, fmt.Sprintf(reasonUnexpected, r))
			out.OCR = doc.OCRApplied
		}
	}()

	// START -> TEXT_EXTRACTED
	if err := p.waitForFile(ctx, path); err != nil {
		log.Error("pipeline: file unavailable", zap.String("stage", "wait"), zap.Error(err))
		return model.ErrorOutcome(path, doc.Type, fmt.Sprintf(reasonFileUnavailable, path))
	}

	text, err := p.text.ExtractText(ctx, path)
	if err != nil {
		log.Warn("pipeline: text layer extraction failed", zap.String("stage", "text"), zap.Error(err))
		text = ""
	}
	doc.Text = text

	// TEXT_EXTRACTED -> OCR_EXTRACTED
	if p.quality.NeedsOCR(ctx, doc.Text, path) {
		p.applyOCR(ctx, doc, log)
	}

	// -> TYPE_CLASSIFIED
	doc.Type = ClassifyDocument(doc.Text)
	log.Info("pipeline: document classified", zap.String("doc_type", string(doc.Type)), zap.Bool("ocr", doc.OCRApplied))

	if doc.Type == model.DocTypeCheck {
		err := eris.Wrapf(model.ErrUnsupportedDocument, "pipeline: %s", doc.Type)
		log.Info("pipeline: skipping field extraction", zap.Error(err))
		out := model.UnsupportedOutcome(path, doc.Type, reasonCheck)
		out.OCR = doc.OCRApplied
		return out
	}

	// -> FIELDS_EXTRACTED
	fields, method := p.extractFields(ctx, doc, log)

	if err := Validate(fields, method, doc.Type); err != nil {
		log.Warn("pipeline: extraction rejected", zap.String("stage", "validate"), zap.Error(err))
		out := model.ErrorOutcome(path, doc.Type, extractionFailureReason(method, doc.Type))
		out.OCR = doc.OCRApplied
		return out
	}

	// -> NORMALIZED -> SUCCESS
	fields, net := Normalize(fields, path, doc.Text)
	log.Info("pipeline: fields extracted",
		zap.String("method", string(method)),
		zap.String("provider", fields.ProviderName),
		zap.String("invoice_number", fields.InvoiceNumber),
		zap.Float64("net_amount", net),
	)

	out = model.SuccessOutcome(path, doc.Type, fields, net, method)
	out.OCR = doc.OCRApplied
	return out
}

// waitForFile retries opening path until it is readable or the attempts
// run out.
func (p *Pipeline) waitForFile(ctx context.Context, path string) error {
	cfg := p.fileWait
	cfg.OnRetry = func(attempt int, err error) {
		zap.L().Warn("pipeline: waiting for file",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Error(err),
		)
	}

	err := resilience.Do(ctx, cfg, func(_ context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		return f.Close()
	})
	if err != nil {
		return eris.Wrapf(model.ErrFileUnavailable, "pipeline: %s: %v", path, err)
	}
	return nil
}

// applyOCR replaces doc.Text with recognized text. Failures are logged and
// the text layer is kept.
func (p *Pipeline) applyOCR(ctx context.Context, doc *model.Document, log *zap.Logger) {
	if p.recognizer == nil {
		log.Info("pipeline: OCR disabled, keeping text layer")
		return
	}

	pages, err := p.recognizer.Recognize(ctx, doc.Path)
	if err != nil {
		kind := "recognition"
		if errors.Is(err, model.ErrRenderFailure) {
			kind = "render"
		}
		log.Warn("pipeline: OCR failed, keeping text layer",
			zap.String("stage", "ocr"),
			zap.String("failure", kind),
			zap.Error(err),
		)
		return
	}

	recognized := ocr.JoinPages(pages)
	if recognized == "" {
		log.Warn("pipeline: OCR recognized no text, keeping text layer",
			zap.String("stage", "ocr"),
			zap.Int("pages", len(pages)),
			zap.Error(model.ErrRecognitionFailure),
		)
		return
	}

	doc.Text = recognized
	doc.OCRApplied = true
	log.Info("pipeline: OCR applied", zap.Int("pages", len(pages)), zap.Int("chars", len(recognized)))
}

// extractFields asks the remote extractor first and falls back to the pattern
// rules. Exactly one of them produces the returned set.
func (p *Pipeline) extractFields(ctx context.Context, doc *model.Document, log *zap.Logger) (model.FieldSet, model.ExtractionMethod) {
	switch {
	case p.remote == nil:
		log.Debug("pipeline: no remote extractor configured")
	case strings.TrimSpace(doc.Text) == "":
		// Blank text is not sent to the remote extractor; the pattern rules
		// produce the same empty set without a paid round trip.
		log.Info("pipeline: empty text, skipping remote extractor")
	default:
		fields, err := p.remote.Extract(ctx, doc.Text)
		if err == nil {
			return fields, model.MethodRemote
		}
		log.Warn("pipeline: remote extractor failed, using pattern rules",
			zap.String("stage", "extract"),
			zap.Error(err),
		)
	}
	return p.pattern.Extract(doc.Text), model.MethodPattern
}
