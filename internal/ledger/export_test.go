package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestExportXLSX(t *testing.T) {
	w, dir := newTestWriter(t)
	require.NoError(t, w.Append(successOutcome("in/NF001.pdf", "001")))
	require.NoError(t, w.Append(successOutcome("in/NF002.pdf", "002")))

	out := filepath.Join(dir, "notas.xlsx")
	n, err := ExportXLSX(filepath.Join(dir, "notas_fiscais_extraidas.csv"), out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, ExportSheetName, sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "DATA EMISSÃO NF", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "001", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "1.234,50", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "in/NF002.pdf", sheet.Rows[2].Cells[7].String())
}

func TestExportXLSX_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := ExportXLSX(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger: open")
}

func TestExportXLSX_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ExportXLSX(path, filepath.Join(dir, "out.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestReadLedger_WithoutBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\r\n1;\"x;y\"\r\n"), 0o644))

	rows, err := ReadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x;y"}}, rows)
}
