package dataprocessing

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeTestWorkbook builds an xlsx shaped like a real clinic export:
// a title block, the three-tier header on rows 4-6 with merged category
// and metadata cells, data rows, and an eight-row footer. The first
// column holds a row index.
func writeTestWorkbook(t *testing.T, dataRows [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "B1", "Clinic Daily Revenue Report"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "All figures net of deductions"))

	categories := UniqueRevenueCategories()

	// Category columns start at B; each category spans two columns
	// (Net Cash, Net Ins.) with the category and "Net" labels merged.
	col := 2
	for _, cat := range categories {
		start, err := excelize.CoordinatesToCellName(col, 4)
		require.NoError(t, err)
		end, err := excelize.CoordinatesToCellName(col+1, 4)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, start, cat))
		require.NoError(t, f.MergeCell(sheet, start, end))

		start, err = excelize.CoordinatesToCellName(col, 5)
		require.NoError(t, err)
		end, err = excelize.CoordinatesToCellName(col+1, 5)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, start, "Net"))
		require.NoError(t, f.MergeCell(sheet, start, end))

		cash, err := excelize.CoordinatesToCellName(col, 6)
		require.NoError(t, err)
		ins, err := excelize.CoordinatesToCellName(col+1, 6)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cash, "Cash"))
		require.NoError(t, f.SetCellValue(sheet, ins, "Ins."))

		col += 2
	}

	// Metadata columns follow, each merged vertically across the three
	// header rows so the lower tiers stay blank.
	for _, meta := range MetadataColumns {
		top, err := excelize.CoordinatesToCellName(col, 4)
		require.NoError(t, err)
		bottom, err := excelize.CoordinatesToCellName(col, 6)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, top, meta))
		require.NoError(t, f.MergeCell(sheet, top, bottom))
		col++
	}

	row := 7
	for i, data := range dataRows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, i+1))
		for j, value := range data {
			cell, err := excelize.CoordinatesToCellName(j+2, row)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
		row++
	}

	// Footer block: grand totals and sign-off lines.
	for i := 0; i < footerRowCount; i++ {
		cell, err := excelize.CoordinatesToCellName(2, row)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, fmt.Sprintf("Footer line %d", i+1)))
		row++
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return bytes.NewReader(buf.Bytes())
}

// testDataRow returns the category pairs and metadata cells for one visit,
// matching the column order of writeTestWorkbook.
func testDataRow(cats map[string][2]float64, netRevenue, insurance float64, policy string, newReg, oldReg int, specialty, doctor, date string) []interface{} {
	row := make([]interface{}, 0)
	for _, cat := range UniqueRevenueCategories() {
		pair := cats[cat]
		row = append(row, pair[0], pair[1])
	}
	row = append(row, netRevenue, insurance, policy, newReg, oldReg, specialty, doctor, date)
	return row
}

func TestParseReport(t *testing.T) {
	reader := writeTestWorkbook(t, [][]interface{}{
		testDataRow(map[string][2]float64{"Consultation": {60, 40}}, 100, 40, "Acme Health", 1, 0, "Cardiology", "Dr. Ahmed", "2024-03-14"),
		testDataRow(map[string][2]float64{"Lab": {50, 0}}, 50, 0, "", 0, 1, "Cardiology", "Dr. Layla", "2024-03-14"),
	})

	raw, err := ParseReport(reader)
	require.NoError(t, err)

	require.Len(t, raw.Headers, 3)
	assert.Len(t, raw.Rows, 2)

	// Index column is gone: the first column is the first category.
	assert.Equal(t, "Consultation", raw.Headers[0][0])
	// Horizontal merges are expanded across their span.
	assert.Equal(t, "Consultation", raw.Headers[0][1])
	assert.Equal(t, "Net", raw.Headers[1][0])
	assert.Equal(t, "Cash", raw.Headers[2][0])
	assert.Equal(t, "Ins.", raw.Headers[2][1])

	// Vertically merged metadata labels keep their lower tiers blank.
	specialtyCol := -1
	for i, label := range raw.Headers[0] {
		if label == ColSpecialty {
			specialtyCol = i
		}
	}
	require.GreaterOrEqual(t, specialtyCol, 0)
	assert.Equal(t, "", strings.TrimSpace(raw.Headers[1][specialtyCol]))
	assert.Equal(t, "", strings.TrimSpace(raw.Headers[2][specialtyCol]))
	assert.Equal(t, "Cardiology", raw.Rows[0][specialtyCol])
}

func TestParseReportThenNormalize(t *testing.T) {
	reader := writeTestWorkbook(t, [][]interface{}{
		testDataRow(map[string][2]float64{"Consultation": {60, 40}}, 100, 40, "Acme Health", 1, 0, "Cardiology", "Dr. Ahmed", "2024-03-14"),
		testDataRow(map[string][2]float64{"Lab": {50, 0}}, 50, 0, "", 0, 1, "Cardiology", "Dr. Layla", "2024-03-14"),
	})

	raw, err := ParseReport(reader)
	require.NoError(t, err)

	table, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, 100.0, table.Records[0].Categories["Consultation"])
	assert.Equal(t, 50.0, table.Records[1].Categories["Lab"])
	assert.Equal(t, "2024-03-14", table.Records[0].VisitDate)
}

func TestParseReportTooFewRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "not a report"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "still not a report"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	_, err := ParseReport(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadShape)
}

func TestParseReportNotASpreadsheet(t *testing.T) {
	_, err := ParseReport(strings.NewReader("definitely,not,an,xlsx"))
	require.Error(t, err)
}
