package export

import (
	"bytes"
	"fmt"

	"github.com/raine/reseller-lens/internal/batch"
	"github.com/raine/reseller-lens/internal/listing"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds exported listings.
const SheetName = "Listings"

// columnWidths keeps long text columns readable in spreadsheet apps.
var columnWidths = []float64{40, 12, 60, 40, 50}

// EncodeXLSX renders a batch result as an Excel workbook with the same
// header and rows as EncodeCSV.
func EncodeXLSX(result batch.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeXLSXRow(f, 1, Header()); err != nil {
		return nil, err
	}
	for i, rec := range result.Records() {
		if err := writeXLSXRow(f, i+2, recordToRow(rec)); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSXRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// DecodeXLSX reads records back from an EncodeXLSX workbook.
func DecodeXLSX(data []byte) ([]listing.Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", SheetName, err)
	}
	// GetRows drops trailing empty cells; pad so absent trailing fields stay absent.
	for i, row := range rows {
		for len(row) < len(columns) {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rowsToRecords(rows)
}
