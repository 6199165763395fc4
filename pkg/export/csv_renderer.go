package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVRenderer writes the header fields, the table and the footer as CSV records.
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (r *CSVRenderer) ContentType() string { return "text/csv" }

func (r *CSVRenderer) Extension() string { return FormatCSV }

func (r *CSVRenderer) Render(doc Document) ([]byte, error) {
	if err := doc.Table.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if doc.Title != "" {
		if err := w.Write([]string{doc.Title}); err != nil {
			return nil, fmt.Errorf("write csv title: %w", err)
		}
	}
	if err := writeFields(w, doc.Header); err != nil {
		return nil, err
	}
	if err := w.Write(doc.Table.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range doc.Table.Rows {
		record := make([]string, len(doc.Table.Headers))
		for i := range record {
			record[i] = cell(row, i)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := writeFields(w, doc.Footer); err != nil {
		return nil, err
	}
	if err := writeFields(w, doc.Remarks); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFields(w *csv.Writer, fields []Field) error {
	for _, f := range fields {
		if err := w.Write([]string{f.Label, f.Value}); err != nil {
			return fmt.Errorf("write csv field %s: %w", f.Label, err)
		}
	}
	return nil
}
