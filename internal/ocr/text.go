// Package ocr reads text out of PDF files: the embedded text layer first,
// and page images through an OCR engine when that layer is unusable.
package ocr

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/config"
)

// TextSource returns the text layer embedded in a PDF.
type TextSource interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// NewTextSource creates a TextSource based on config.
func NewTextSource(cfg config.TextConfig) (TextSource, error) {
	switch cfg.Provider {
	case "native", "":
		return NativeText{}, nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath, nil), nil
	default:
		return nil, eris.Errorf("ocr: unknown text provider %q", cfg.Provider)
	}
}

// NativeText reads the text layer in-process with ledongthuc/pdf.
type NativeText struct{}

// ExtractText concatenates the plain text of every page, one page per line
// block, trimmed. Malformed files that make the reader panic are reported as
// errors.
func (NativeText) ExtractText(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", eris.Errorf("ocr: pdf reader panicked on %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: open pdf %s", path)
	}
	defer f.Close() //nolint:errcheck

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "ocr: extract text")
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			zap.L().Debug("ocr: skip unreadable page", zap.String("path", path), zap.Int("page", i), zap.Error(err))
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// PdfToText reads the text layer with poppler's pdftotext.
type PdfToText struct {
	binPath string
	runner  Runner
}

// NewPdfToText creates a PdfToText source. Empty binPath means "pdftotext";
// nil runner means ExecRunner.
func NewPdfToText(binPath string, runner Runner) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdfToText{binPath: binPath, runner: runner}
}

// ExtractText runs pdftotext -layout and returns its trimmed output with page
// breaks turned into newlines.
func (p *PdfToText) ExtractText(ctx context.Context, path string) (string, error) {
	out, stderr, err := p.runner.Run(ctx, p.binPath, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", eris.Wrapf(err, "ocr: pdftotext failed for %s: %s", path, strings.TrimSpace(string(stderr)))
	}
	return strings.TrimSpace(strings.ReplaceAll(string(out), "\f", "\n")), nil
}
