package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/invoice-cli/internal/config"
)

func TestNewTextSource(t *testing.T) {
	src, err := NewTextSource(config.TextConfig{Provider: "native"})
	require.NoError(t, err)
	assert.IsType(t, NativeText{}, src)

	src, err = NewTextSource(config.TextConfig{})
	require.NoError(t, err)
	assert.IsType(t, NativeText{}, src)

	src, err = NewTextSource(config.TextConfig{Provider: "pdftotext", PdfToTextPath: "/usr/bin/pdftotext"})
	require.NoError(t, err)
	require.IsType(t, &PdfToText{}, src)
	assert.Equal(t, "/usr/bin/pdftotext", src.(*PdfToText).binPath)

	_, err = NewTextSource(config.TextConfig{Provider: "word"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown text provider "word"`)
}

func TestNativeText_ReadsEveryPage(t *testing.T) {
	path := writeTestPDF(t, t.TempDir(), "nf.pdf", "NOTA FISCAL DE SERVICOS", "Valor Total da Nota 100,00")

	text, err := NativeText{}.ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "NOTA FISCAL")
	assert.Contains(t, text, "Valor Total")
}

func TestNativeText_MissingFile(t *testing.T) {
	_, err := NativeText{}.ExtractText(context.Background(), "/nonexistent/file.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pdf")
}

func TestNativeText_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some bytes"), 0o644))

	_, err := NativeText{}.ExtractText(context.Background(), path)
	assert.Error(t, err)
}

func TestPdfToText_BinPath(t *testing.T) {
	assert.Equal(t, "pdftotext", NewPdfToText("", nil).binPath)
	assert.Equal(t, "/custom/pdftotext", NewPdfToText("/custom/pdftotext", nil).binPath)
}

func TestPdfToText_ArgsAndPageBreaks(t *testing.T) {
	r := &fakeRunner{fn: func(_ string, _ []string) ([]byte, []byte, error) {
		return []byte("  page one\fpage two\f\n"), nil, nil
	}}

	text, err := NewPdfToText("pdftotext", r).ExtractText(context.Background(), "/in/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "page one\npage two", text)
	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"pdftotext", "-layout", "-enc", "UTF-8", "/in/a.pdf", "-"}, r.calls[0])
}

func TestPdfToText_Failure(t *testing.T) {
	r := &fakeRunner{fn: func(_ string, _ []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't find trailer"), errors.New("exit status 1")
	}}

	_, err := NewPdfToText("", r).ExtractText(context.Background(), "/in/a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed for /in/a.pdf")
	assert.Contains(t, err.Error(), "Couldn't find trailer")
}

func TestPdfToText_FakeBinary(t *testing.T) {
	fakeBin := filepath.Join(t.TempDir(), "pdftotext")
	require.NoError(t, os.WriteFile(fakeBin, []byte("#!/bin/sh\necho 'Extracted text content'\n"), 0o755))

	text, err := NewPdfToText(fakeBin, nil).ExtractText(context.Background(), "/tmp/dummy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Extracted text content", text)
}

func TestPdfToText_BinaryNotFound(t *testing.T) {
	_, err := NewPdfToText("/nonexistent/pdftotext", nil).ExtractText(context.Background(), "/tmp/test.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestPdfcpuPageCounter(t *testing.T) {
	path := writeTestPDF(t, t.TempDir(), "three.pdf", "one", "two", "three")

	n, err := PdfcpuPageCounter{}.PageCount(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPdfcpuPageCounter_Missing(t *testing.T) {
	_, err := PdfcpuPageCounter{}.PageCount(context.Background(), "/nonexistent/file.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count pages")
}
