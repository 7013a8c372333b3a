package report

import (
	"errors"
	"sort"

	"clinicpulse/internal/dataprocessing"
)

// ErrEmptyTable reports a normalized table with no visit rows; the as-of
// caption reads the first row, so an empty table cannot be charted.
var ErrEmptyTable = errors.New("normalized table has no rows")

// Figure dimensions and the display width of specialty labels.
const (
	figureWidth         = 1000
	figureHeight        = 800
	specialtyLabelWidth = 6
	pieTextInfo         = "label+value"
)

// EpisodeCount counts the revenue generating episodes: every non-zero
// category cell over all rows. A patient contributes one episode per
// category with revenue, so a single visit can count several times.
func EpisodeCount(t *dataprocessing.NormalizedTable) Indicator {
	count := 0
	for _, rec := range t.Records {
		for _, cat := range dataprocessing.UniqueRevenueCategories() {
			if rec.Categories[cat] != 0 {
				count++
			}
		}
	}
	return Indicator{Value: float64(count), Title: "Revenue Generating<br>Episodes"}
}

// PatientCount counts the visit rows of the table.
func PatientCount(t *dataprocessing.NormalizedTable) Indicator {
	return Indicator{Value: float64(t.Len()), Title: "Number of Patients"}
}

// NetRevenueTotal sums the total net revenue column.
func NetRevenueTotal(t *dataprocessing.NormalizedTable) Indicator {
	total := 0.0
	for _, rec := range t.Records {
		total += rec.NetRevenue
	}
	return Indicator{Value: total, Title: "Net Revenue"}
}

// NewVsOldRegistrations sums the new and old registration flags.
func NewVsOldRegistrations(t *dataprocessing.NormalizedTable) PieChart {
	var newReg, oldReg float64
	for _, rec := range t.Records {
		newReg += rec.NewReg
		oldReg += rec.OldReg
	}
	return PieChart{
		Labels:   []string{"New", "Old"},
		Values:   []float64{newReg, oldReg},
		TextInfo: pieTextInfo,
	}
}

// RevenuePerSpecialty groups net revenue by specialty. Labels are
// truncated for display and the groups are ordered by specialty name so
// the output is deterministic.
func RevenuePerSpecialty(t *dataprocessing.NormalizedTable) PieChart {
	totals := make(map[string]float64)
	for _, rec := range t.Records {
		totals[rec.Specialty] += rec.NetRevenue
	}

	specialties := make([]string, 0, len(totals))
	for specialty := range totals {
		specialties = append(specialties, specialty)
	}
	sort.Strings(specialties)

	chart := PieChart{TextInfo: pieTextInfo}
	for _, specialty := range specialties {
		chart.Labels = append(chart.Labels, truncateLabel(specialty, specialtyLabelWidth))
		chart.Values = append(chart.Values, totals[specialty])
	}
	return chart
}

// InsuranceVsNonInsurance splits total net revenue into the insurance
// covered amount and the remainder.
func InsuranceVsNonInsurance(t *dataprocessing.NormalizedTable) PieChart {
	var insurance, netRevenue float64
	for _, rec := range t.Records {
		insurance += rec.Insurance
		netRevenue += rec.NetRevenue
	}
	return PieChart{
		Labels:   []string{"Non Ins", "Ins"},
		Values:   []float64{netRevenue - insurance, insurance},
		TextInfo: pieTextInfo,
	}
}

// EpisodesPerCategory counts the non-zero entries of each category column.
// Categories with no episodes are left out entirely rather than drawn as
// zero-valued slices, so the label set is a subset of the fixed list.
func EpisodesPerCategory(t *dataprocessing.NormalizedTable) PieChart {
	chart := PieChart{TextInfo: pieTextInfo}
	for _, cat := range dataprocessing.UniqueRevenueCategories() {
		count := 0
		for _, rec := range t.Records {
			if rec.Categories[cat] != 0 {
				count++
			}
		}
		if count == 0 {
			continue
		}
		chart.Labels = append(chart.Labels, cat)
		chart.Values = append(chart.Values, float64(count))
	}
	return chart
}

// Build assembles the composed report figure: three indicators on the top
// row, three distributions on the middle row, and the insurance split in
// the bottom-right cell. The caption beneath the grid carries the as-of
// date taken from the first visit row.
func Build(t *dataprocessing.NormalizedTable) (*Figure, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}
	asOf := t.Records[0].VisitDate

	fig := &Figure{
		Layout: Layout{
			Grid:       Grid{Rows: 3, Columns: 3, Pattern: "independent"},
			Width:      figureWidth,
			Height:     figureHeight,
			ShowLegend: false,
			Annotations: []Annotation{{
				Text:      asOf,
				X:         0.5,
				Y:         -0.06,
				XRef:      "paper",
				YRef:      "paper",
				ShowArrow: false,
			}},
		},
	}

	indicators := []Indicator{
		EpisodeCount(t),
		PatientCount(t),
		NetRevenueTotal(t),
	}
	for col, ind := range indicators {
		fig.Data = append(fig.Data, IndicatorTrace{
			Type:   "indicator",
			Mode:   "number",
			Value:  ind.Value,
			Title:  TraceTitle{Text: ind.Title},
			Domain: GridRef{Row: 0, Column: col},
		})
	}

	middle := []PieChart{
		EpisodesPerCategory(t),
		NewVsOldRegistrations(t),
		RevenuePerSpecialty(t),
	}
	for col, pie := range middle {
		fig.Data = append(fig.Data, newPieTrace(pie, GridRef{Row: 1, Column: col}))
	}

	fig.Data = append(fig.Data, newPieTrace(InsuranceVsNonInsurance(t), GridRef{Row: 2, Column: 2}))

	return fig, nil
}

func newPieTrace(pie PieChart, pos GridRef) PieTrace {
	return PieTrace{
		Type:     "pie",
		Labels:   pie.Labels,
		Values:   pie.Values,
		TextInfo: pie.TextInfo,
		Domain:   pos,
	}
}

// truncateLabel shortens a label to at most width runes.
func truncateLabel(label string, width int) string {
	runes := []rune(label)
	if len(runes) <= width {
		return label
	}
	return string(runes[:width])
}
