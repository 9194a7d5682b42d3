package pipeline

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/ocr"
)

// QualityGate decides whether a text layer is good enough or OCR must run.
type QualityGate struct {
	pages      ocr.PageCounter
	minChars   int
	minDensity float64
}

// NewQualityGate creates a QualityGate with the configured thresholds.
func NewQualityGate(pages ocr.PageCounter, cfg config.QualityConfig) *QualityGate {
	return &QualityGate{pages: pages, minChars: cfg.MinChars, minDensity: cfg.MinDensity}
}

// NeedsOCR reports whether text looks like it came from an image-only PDF:
// too short overall, or too few characters per page. When the page count
// cannot be read the text layer is kept.
func (g *QualityGate) NeedsOCR(ctx context.Context, text, path string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < g.minChars {
		zap.L().Info("pipeline: text layer too short, OCR needed",
			zap.String("path", path),
			zap.Int("chars", n),
		)
		return true
	}
	if g.pages == nil {
		return false
	}

	pages, err := g.pages.PageCount(ctx, path)
	if err != nil {
		zap.L().Warn("pipeline: page count failed, keeping text layer",
			zap.String("path", path),
			zap.Error(err),
		)
		return false
	}

	density := float64(n) / float64(max(1, pages))
	if density < g.minDensity {
		zap.L().Info("pipeline: low text density, OCR needed",
			zap.String("path", path),
			zap.Float64("chars_per_page", density),
			zap.Int("pages", pages),
		)
		return true
	}
	return false
}
