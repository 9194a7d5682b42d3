package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
)

// Recognizer runs OCR over a PDF and returns the text of each page in order.
// Every error wraps one of two sentinels. A document that could not be read
// or rasterized wraps model.ErrRenderFailure; an engine that could not be
// reached or whose output could not be read wraps model.ErrRecognitionFailure.
type Recognizer interface {
	Recognize(ctx context.Context, path string) ([]string, error)
}

// NewRecognizer creates a Recognizer based on config. The "off" provider
// returns a nil Recognizer, which disables OCR.
func NewRecognizer(cfg config.OCRConfig) (Recognizer, error) {
	switch cfg.Provider {
	case "tesseract", "":
		return NewTesseract(cfg, nil), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	case "off":
		return nil, nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// Tesseract rasterizes pages with poppler's pdftoppm and reads each image
// with the tesseract CLI.
type Tesseract struct {
	runner    Runner
	pdftoppm  string
	tesseract string
	language  string
	dpi       int
	psm       int
}

// NewTesseract creates a Tesseract recognizer. A nil runner means ExecRunner.
func NewTesseract(cfg config.OCRConfig, runner Runner) *Tesseract {
	if runner == nil {
		runner = ExecRunner{}
	}
	t := &Tesseract{
		runner:    runner,
		pdftoppm:  "pdftoppm",
		tesseract: cfg.TesseractPath,
		language:  cfg.Language,
		dpi:       cfg.DPI,
		psm:       cfg.PSM,
	}
	if cfg.PopplerPath != "" {
		t.pdftoppm = filepath.Join(cfg.PopplerPath, "pdftoppm")
	}
	if t.tesseract == "" {
		t.tesseract = "tesseract"
	}
	if t.language == "" {
		t.language = "por"
	}
	if t.dpi <= 0 {
		t.dpi = 300
	}
	if t.psm <= 0 {
		t.psm = 6
	}
	return t
}

// Recognize renders every page to PNG and OCRs them one by one. A page the
// engine fails on contributes an empty string.
func (t *Tesseract) Recognize(ctx context.Context, path string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "invoice-ocr-*")
	if err != nil {
		return nil, eris.Wrap(err, "ocr: create temp dir")
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	prefix := filepath.Join(tmpDir, "page")
	_, stderr, err := t.runner.Run(ctx, t.pdftoppm, "-r", strconv.Itoa(t.dpi), "-png", path, prefix)
	if err != nil {
		return nil, eris.Wrapf(model.ErrRenderFailure, "ocr: pdftoppm failed for %s: %v: %s", path, err, strings.TrimSpace(string(stderr)))
	}

	images, _ := filepath.Glob(prefix + "-*.png")
	if len(images) == 0 {
		return nil, eris.Wrapf(model.ErrRenderFailure, "ocr: pdftoppm produced no images for %s", path)
	}
	// pdftoppm zero-pads page numbers to a common width.
	sort.Strings(images)

	pages := make([]string, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "ocr: recognize")
		}
		out, stderr, err := t.runner.Run(ctx, t.tesseract, img, "stdout", "-l", t.language, "--psm", strconv.Itoa(t.psm))
		if err != nil {
			zap.L().Warn("ocr: tesseract failed on page",
				zap.String("path", path),
				zap.Int("page", i+1),
				zap.String("stderr", truncate(string(stderr), 512)),
				zap.Error(err),
			)
			continue
		}
		pages[i] = string(out)
	}
	return pages, nil
}

// JoinPages joins per-page text with newlines and trims the result.
func JoinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n"))
}

// String describes the recognizer for logs.
func (t *Tesseract) String() string {
	return fmt.Sprintf("tesseract(lang=%s, dpi=%d, psm=%d)", t.language, t.dpi, t.psm)
}
