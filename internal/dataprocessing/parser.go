package dataprocessing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// ErrBadShape reports a spreadsheet that does not match the expected
// report geometry (header rows 4-6, data rows, eight footer rows).
var ErrBadShape = errors.New("spreadsheet does not match report shape")

// ParseReport reads an exported revenue report and extracts the raw table:
// three header tiers, the data rows, no footer and no index column.
// Merged header cells are expanded across their horizontal span so every
// data column carries its full tier path; cells left blank by vertical
// merges stay blank and are treated as placeholders downstream.
func ParseReport(r io.Reader) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrBadShape)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	minRows := headerStartRow + headerRowCount + footerRowCount
	if len(rows) < minRows {
		return nil, fmt.Errorf("%w: sheet %q has %d rows, need at least %d",
			ErrBadShape, sheet, len(rows), minRows)
	}

	width := maxWidth(rows)
	if width < 2 {
		return nil, fmt.Errorf("%w: sheet %q has no data columns", ErrBadShape, sheet)
	}
	padRows(rows, width)

	if err := expandMergedHeaders(f, sheet, rows); err != nil {
		return nil, fmt.Errorf("failed to expand merged headers: %w", err)
	}

	headers := make([][]string, headerRowCount)
	for i := 0; i < headerRowCount; i++ {
		// Column 0 is the row index; drop it here.
		headers[i] = rows[headerStartRow+i][1:]
	}

	dataStart := headerStartRow + headerRowCount
	dataEnd := len(rows) - footerRowCount
	data := make([][]string, 0, dataEnd-dataStart)
	for _, row := range rows[dataStart:dataEnd] {
		data = append(data, row[1:])
	}

	slog.Debug("parsed report sheet",
		slog.String("sheet", sheet),
		slog.Int("columns", width-1),
		slog.Int("data_rows", len(data)))

	return &RawTable{Headers: headers, Rows: data}, nil
}

// expandMergedHeaders copies each merged header cell's value across the
// columns it spans. Only the anchor row of a merge range is filled, so a
// vertically merged label still leaves its lower tiers blank.
func expandMergedHeaders(f *excelize.File, sheet string, rows [][]string) error {
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return err
	}

	headerEnd := headerStartRow + headerRowCount
	for _, merge := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(merge.GetStartAxis())
		if err != nil {
			return err
		}
		endCol, _, err := excelize.CellNameToCoordinates(merge.GetEndAxis())
		if err != nil {
			return err
		}

		rowIdx := startRow - 1
		if rowIdx < headerStartRow || rowIdx >= headerEnd {
			continue
		}

		value := merge.GetCellValue()
		for col := startCol - 1; col < endCol && col < len(rows[rowIdx]); col++ {
			rows[rowIdx][col] = value
		}
	}

	return nil
}

func maxWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// padRows right-pads every row with blanks to the given width; GetRows
// returns ragged rows when trailing cells are empty.
func padRows(rows [][]string, width int) {
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
}
