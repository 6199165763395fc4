package export

import (
	"fmt"
	"strings"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// Field is a labelled value printed above or below the table.
type Field struct {
	Label string
	Value string
}

// Table is the tabular body of a document.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Document is a format-independent printable report.
type Document struct {
	Title   string
	Header  []Field
	Table   Table
	Footer  []Field
	Remarks []Field
}

// Renderer turns a Document into bytes of a single format.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer registered for format.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return NewCSVRenderer(), nil
	case FormatPDF, "":
		return NewPDFRenderer(), nil
	case FormatXLSX:
		return NewXLSXRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (t Table) validate() error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("table requires at least one header")
	}
	for i, row := range t.Rows {
		if len(row) > len(t.Headers) {
			return fmt.Errorf("row %d has %d cells, expected at most %d", i, len(row), len(t.Headers))
		}
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
