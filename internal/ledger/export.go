package ledger

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ExportSheetName is the worksheet written by ExportXLSX.
const ExportSheetName = "Notas Fiscais"

// ReadLedger reads every row of a ledger, header included, dropping the byte
// order mark.
func ReadLedger(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	r.Comma = Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "ledger: read %s", path)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// ExportXLSX converts a CSV ledger into a single-sheet workbook and returns
// the number of data rows written.
func ExportXLSX(csvPath, xlsxPath string) (int, error) {
	rows, err := ReadLedger(csvPath)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, eris.Errorf("ledger: %s is empty", csvPath)
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(ExportSheetName)
	if err != nil {
		return 0, eris.Wrap(err, "ledger: add sheet")
	}
	for i, rec := range rows {
		row := sheet.AddRow()
		for _, v := range rec {
			cell := row.AddCell()
			cell.SetString(v)
			if i == 0 {
				style := xlsx.NewStyle()
				style.Font.Bold = true
				style.ApplyFont = true
				cell.SetStyle(style)
			}
		}
	}

	if err := f.Save(xlsxPath); err != nil {
		return 0, eris.Wrapf(err, "ledger: save %s", xlsxPath)
	}
	return len(rows) - 1, nil
}
