package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDocument() Document {
	return Document{
		Title:  "Monthly Report 03/2025",
		Header: []Field{{Label: "Student", Value: "An"}},
		Table: Table{
			Headers: []string{"Week", "Date", "Status"},
			Rows: [][]string{
				{"1", "03/03/2025", "COMPLETE"},
				{"2", "10/03/2025"},
			},
		},
		Footer:  []Field{{Label: "Total sessions", Value: "1"}},
		Remarks: []Field{{Label: "Summary", Value: "Good progress"}},
	}
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", r.Extension())

	r, err = ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", r.ContentType())

	_, err = ForFormat("docx")
	assert.Error(t, err)
}

func TestCSVRendererPadsShortRows(t *testing.T) {
	out, err := NewCSVRenderer().Render(sampleDocument())
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Monthly Report 03/2025"}, records[0])
	assert.Equal(t, []string{"Week", "Date", "Status"}, records[2])
	assert.Equal(t, []string{"2", "10/03/2025", ""}, records[4])
	assert.Equal(t, []string{"Summary", "Good progress"}, records[len(records)-1])
}

func TestRenderersRejectEmptyTable(t *testing.T) {
	for _, r := range []Renderer{NewCSVRenderer(), NewPDFRenderer(), NewXLSXRenderer()} {
		_, err := r.Render(Document{Title: "x"})
		assert.Error(t, err, r.Extension())
	}
}

func TestPDFRenderer(t *testing.T) {
	out, err := NewPDFRenderer().Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRenderer(t *testing.T) {
	out, err := NewXLSXRenderer().Render(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	title, err := f.GetCellValue(xlsxSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Monthly Report 03/2025", title)

	header, err := f.GetCellValue(xlsxSheet, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Week", header)
}
