package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Report"

// XLSXRenderer writes a Document to a single-sheet workbook.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *XLSXRenderer) Extension() string { return FormatXLSX }

func (r *XLSXRenderer) Render(doc Document) ([]byte, error) {
	if err := doc.Table.validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	row := 1
	if doc.Title != "" {
		if err := setRow(f, row, []string{doc.Title}, bold); err != nil {
			return nil, err
		}
		row += 2
	}
	for _, field := range doc.Header {
		if err := setRow(f, row, []string{field.Label, field.Value}, 0); err != nil {
			return nil, err
		}
		row++
	}
	row++

	if err := setRow(f, row, doc.Table.Headers, bold); err != nil {
		return nil, err
	}
	row++
	for _, values := range doc.Table.Rows {
		if err := setRow(f, row, values, 0); err != nil {
			return nil, err
		}
		row++
	}
	row++

	for _, field := range append(append([]Field{}, doc.Footer...), doc.Remarks...) {
		if err := setRow(f, row, []string{field.Label, field.Value}, 0); err != nil {
			return nil, err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string, style int) error {
	for i, v := range values {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(xlsxSheet, name, v); err != nil {
			return fmt.Errorf("set cell %s: %w", name, err)
		}
		if style != 0 {
			if err := f.SetCellStyle(xlsxSheet, name, name, style); err != nil {
				return fmt.Errorf("style cell %s: %w", name, err)
			}
		}
	}
	return nil
}
