package ocr

import (
	"context"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
)

// PageCounter reports how many pages a PDF has.
type PageCounter interface {
	PageCount(ctx context.Context, path string) (int, error)
}

// PdfcpuPageCounter counts pages with pdfcpu.
type PdfcpuPageCounter struct{}

func (PdfcpuPageCounter) PageCount(_ context.Context, path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, eris.Errorf("ocr: pdfcpu panicked on %s: %v", path, r)
		}
	}()

	n, err = api.PageCountFile(path)
	if err != nil {
		return 0, eris.Wrapf(err, "ocr: count pages %s", path)
	}
	return n, nil
}
