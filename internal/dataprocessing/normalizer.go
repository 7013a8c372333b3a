package dataprocessing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumn reports a required column absent from the extract.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNotDate reports a visit-date cell that is not a date value.
	ErrNotDate = errors.New("value is not a date")
	// ErrNotNumeric reports a revenue cell that is not a number.
	ErrNotNumeric = errors.New("value is not numeric")
)

// Normalize converts a raw report extract into the flat one-row-per-visit
// table. The sequence is fixed: empty columns are pruned, the three header
// tiers are flattened, the category and metadata columns are selected, the
// visit date is reformatted, and finally each category's cash and insurance
// sub-columns are folded into a single value. Any missing column or
// malformed value aborts the whole run; there is no partial success.
func Normalize(raw *RawTable) (*NormalizedTable, error) {
	pruned := dropEmptyColumns(raw)
	names := flattenHeaders(pruned.Headers)

	flat, err := selectColumns(names, pruned.Rows)
	if err != nil {
		return nil, err
	}

	if err := formatDates(flat); err != nil {
		return nil, err
	}

	records, err := foldCategoryTotals(flat)
	if err != nil {
		return nil, err
	}

	return &NormalizedTable{Records: records}, nil
}

// dropEmptyColumns removes columns whose every data value is blank. Runs
// before column selection so that empty placeholder columns can never be
// picked up as spurious category columns. A table with no data rows is
// left untouched; the empty-input failure surfaces at report build time.
func dropEmptyColumns(raw *RawTable) *RawTable {
	if len(raw.Rows) == 0 {
		return raw
	}

	keep := make([]int, 0, raw.Columns())
	for col := 0; col < raw.Columns(); col++ {
		for _, row := range raw.Rows {
			if col < len(row) && strings.TrimSpace(row[col]) != "" {
				keep = append(keep, col)
				break
			}
		}
	}

	headers := make([][]string, len(raw.Headers))
	for tier, labels := range raw.Headers {
		headers[tier] = pick(labels, keep)
	}
	rows := make([][]string, len(raw.Rows))
	for i, row := range raw.Rows {
		rows[i] = pick(row, keep)
	}

	return &RawTable{Headers: headers, Rows: rows}
}

// flattenHeaders joins the header tiers of each column with underscores,
// skipping blank placeholder tiers. A column whose every tier is blank
// flattens to the empty name; such a column can never be selected.
func flattenHeaders(headers [][]string) []string {
	if len(headers) == 0 {
		return nil
	}

	names := make([]string, len(headers[0]))
	for col := range names {
		parts := make([]string, 0, len(headers))
		for _, tier := range headers {
			if col >= len(tier) {
				continue
			}
			label := strings.TrimSpace(tier[col])
			if label == "" {
				continue
			}
			parts = append(parts, label)
		}
		names[col] = strings.Join(parts, "_")
	}
	return names
}

// flatTable is the intermediate single-header table between column
// selection and category folding.
type flatTable struct {
	names []string
	rows  [][]string
}

func (t *flatTable) index(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

// selectColumns retains the per-category net revenue columns (any column
// whose flattened name contains the net marker) plus the fixed metadata
// fields, in that order. A missing metadata field aborts normalization.
func selectColumns(names []string, rows [][]string) (*flatTable, error) {
	keep := make([]int, 0, len(names))
	kept := make([]string, 0, len(names))

	for i, name := range names {
		if strings.Contains(name, netMarker) {
			keep = append(keep, i)
			kept = append(kept, name)
		}
	}

	for _, meta := range MetadataColumns {
		idx := -1
		for i, name := range names {
			if name == meta {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, meta)
		}
		keep = append(keep, idx)
		kept = append(kept, meta)
	}

	out := &flatTable{names: kept, rows: make([][]string, len(rows))}
	for i, row := range rows {
		out.rows[i] = pick(row, keep)
	}
	return out, nil
}

// formatDates rewrites every visit-date cell as YYYY-MM-DD. The input is
// expected to be a date or datetime value, either as a formatted string or
// an Excel serial number; anything else is a fatal type error.
func formatDates(t *flatTable) error {
	col := t.index(ColVisitDate)
	if col < 0 {
		return fmt.Errorf("%w: %q", ErrMissingColumn, ColVisitDate)
	}

	for i, row := range t.rows {
		parsed, err := parseDate(row[col])
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		row[col] = parsed.Format("2006-01-02")
	}
	return nil
}

// dateLayouts covers the formatted-string shapes excelize produces for
// styled date cells, plus plain ISO dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06 15:04",
	"01/02/2006",
	"1/2/2006",
	"2-Jan-06",
	time.RFC3339,
}

func parseDate(cell string) (time.Time, error) {
	value := strings.TrimSpace(cell)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty cell", ErrNotDate)
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}

	// Unstyled date cells surface as raw Excel serial numbers.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrNotDate, cell)
}

// foldCategoryTotals builds the final visit records: each category's value
// is the sum of its cash-net and insurance-net sub-columns, which are
// consumed by the fold and do not survive into the normalized table.
// Folding runs last because column selection depends on the unfolded
// sub-column names.
func foldCategoryTotals(t *flatTable) ([]VisitRecord, error) {
	categories := UniqueRevenueCategories()

	type catCols struct {
		name      string
		cash, ins int
	}
	cols := make([]catCols, 0, len(categories))
	for _, cat := range categories {
		cash := t.index(cat + cashSuffix)
		if cash < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cat+cashSuffix)
		}
		ins := t.index(cat + insSuffix)
		if ins < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cat+insSuffix)
		}
		cols = append(cols, catCols{name: cat, cash: cash, ins: ins})
	}

	var meta struct {
		netRevenue, insurance, policy, newReg, oldReg, specialty, doctor, date int
	}
	meta.netRevenue = t.index(ColNetRevenue)
	meta.insurance = t.index(ColInsurance)
	meta.policy = t.index(ColPolicyName)
	meta.newReg = t.index(ColNewReg)
	meta.oldReg = t.index(ColOldReg)
	meta.specialty = t.index(ColSpecialty)
	meta.doctor = t.index(ColDoctorName)
	meta.date = t.index(ColVisitDate)

	records := make([]VisitRecord, 0, len(t.rows))
	for i, row := range t.rows {
		rec := VisitRecord{
			Categories: make(map[string]float64, len(cols)),
			PolicyName: strings.TrimSpace(row[meta.policy]),
			Specialty:  strings.TrimSpace(row[meta.specialty]),
			DoctorName: strings.TrimSpace(row[meta.doctor]),
			VisitDate:  row[meta.date],
		}

		var err error
		for _, c := range cols {
			var cash, ins float64
			if cash, err = parseNumber(row[c.cash]); err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+1, c.name+cashSuffix, err)
			}
			if ins, err = parseNumber(row[c.ins]); err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+1, c.name+insSuffix, err)
			}
			rec.Categories[c.name] = cash + ins
		}

		if rec.NetRevenue, err = parseNumber(row[meta.netRevenue]); err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", i+1, ColNetRevenue, err)
		}
		if rec.Insurance, err = parseNumber(row[meta.insurance]); err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", i+1, ColInsurance, err)
		}
		if rec.NewReg, err = parseNumber(row[meta.newReg]); err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", i+1, ColNewReg, err)
		}
		if rec.OldReg, err = parseNumber(row[meta.oldReg]); err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", i+1, ColOldReg, err)
		}

		records = append(records, rec)
	}

	return records, nil
}

// parseNumber parses a numeric cell, tolerating thousands separators and
// treating blank cells as zero.
func parseNumber(cell string) (float64, error) {
	value := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, cell)
	}
	return parsed, nil
}

// pick returns the elements of row at the given indexes, in order.
func pick(row []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		if j < len(row) {
			out[i] = row[j]
		}
	}
	return out
}
