package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicpulse/internal/dataprocessing"
)

// visit builds one normalized visit row with the given category revenues.
func visit(cats map[string]float64, netRevenue, insurance, newReg, oldReg float64, specialty, date string) dataprocessing.VisitRecord {
	categories := make(map[string]float64, len(dataprocessing.UniqueRevenueCategories()))
	for _, cat := range dataprocessing.UniqueRevenueCategories() {
		categories[cat] = cats[cat]
	}
	return dataprocessing.VisitRecord{
		Categories: categories,
		NetRevenue: netRevenue,
		Insurance:  insurance,
		NewReg:     newReg,
		OldReg:     oldReg,
		Specialty:  specialty,
		VisitDate:  date,
	}
}

// twoVisitTable is the canonical minimal table: one insured consultation
// and one cash lab visit, both cardiology.
func twoVisitTable() *dataprocessing.NormalizedTable {
	return &dataprocessing.NormalizedTable{Records: []dataprocessing.VisitRecord{
		visit(map[string]float64{"Consultation": 100}, 100, 40, 1, 0, "Cardiology", "2024-03-14"),
		visit(map[string]float64{"Lab": 50}, 50, 0, 0, 1, "Cardiology", "2024-03-14"),
	}}
}

func TestAggregates(t *testing.T) {
	table := twoVisitTable()

	assert.Equal(t, 2.0, EpisodeCount(table).Value)
	assert.Equal(t, "Revenue Generating<br>Episodes", EpisodeCount(table).Title)

	assert.Equal(t, 2.0, PatientCount(table).Value)
	assert.Equal(t, "Number of Patients", PatientCount(table).Title)

	assert.Equal(t, 150.0, NetRevenueTotal(table).Value)
	assert.Equal(t, "Net Revenue", NetRevenueTotal(table).Title)

	reg := NewVsOldRegistrations(table)
	assert.Equal(t, []string{"New", "Old"}, reg.Labels)
	assert.Equal(t, []float64{1, 1}, reg.Values)

	ins := InsuranceVsNonInsurance(table)
	assert.Equal(t, []string{"Non Ins", "Ins"}, ins.Labels)
	assert.Equal(t, []float64{110, 40}, ins.Values)

	spec := RevenuePerSpecialty(table)
	assert.Equal(t, []string{"Cardio"}, spec.Labels)
	assert.Equal(t, []float64{150}, spec.Values)
	assert.Equal(t, "label+value", spec.TextInfo)
}

func TestAggregatesOrderIndependent(t *testing.T) {
	table := twoVisitTable()
	reversed := &dataprocessing.NormalizedTable{Records: []dataprocessing.VisitRecord{
		table.Records[1],
		table.Records[0],
	}}

	assert.Equal(t, PatientCount(table).Value, PatientCount(reversed).Value)
	assert.Equal(t, NetRevenueTotal(table).Value, NetRevenueTotal(reversed).Value)
	assert.Equal(t, EpisodeCount(table).Value, EpisodeCount(reversed).Value)
	assert.Equal(t, RevenuePerSpecialty(table), RevenuePerSpecialty(reversed))
	assert.Equal(t, InsuranceVsNonInsurance(table), InsuranceVsNonInsurance(reversed))
}

func TestEpisodesPerCategoryExcludesZeroCounts(t *testing.T) {
	table := twoVisitTable()

	pie := EpisodesPerCategory(table)
	assert.Equal(t, []string{"Consultation", "Lab"}, pie.Labels)
	assert.Equal(t, []float64{1, 1}, pie.Values)

	// The label set is always a subset of the fixed category list.
	unique := dataprocessing.UniqueRevenueCategories()
	set := make(map[string]bool, len(unique))
	for _, cat := range unique {
		set[cat] = true
	}
	for _, label := range pie.Labels {
		assert.True(t, set[label], "unexpected label %q", label)
	}
}

func TestEpisodesPerCategoryEmptyTable(t *testing.T) {
	pie := EpisodesPerCategory(&dataprocessing.NormalizedTable{})
	assert.Empty(t, pie.Labels)
	assert.Empty(t, pie.Values)
}

func TestRegistrationSplitBoundedByPatients(t *testing.T) {
	table := twoVisitTable()
	reg := NewVsOldRegistrations(table)
	assert.LessOrEqual(t, reg.Values[0]+reg.Values[1], PatientCount(table).Value)
}

func TestRevenuePerSpecialtyMultipleGroups(t *testing.T) {
	table := &dataprocessing.NormalizedTable{Records: []dataprocessing.VisitRecord{
		visit(map[string]float64{"Drug": 20}, 20, 0, 1, 0, "Ophthalmology", "2024-03-14"),
		visit(map[string]float64{"Consultation": 80}, 80, 0, 0, 1, "ENT", "2024-03-14"),
		visit(map[string]float64{"Consultation": 30}, 30, 0, 0, 1, "ENT", "2024-03-14"),
	}}

	pie := RevenuePerSpecialty(table)
	// Groups are ordered by specialty name; labels truncated to six runes.
	assert.Equal(t, []string{"ENT", "Ophtha"}, pie.Labels)
	assert.Equal(t, []float64{110, 20}, pie.Values)
}

func TestBuild(t *testing.T) {
	fig, err := Build(twoVisitTable())
	require.NoError(t, err)

	require.Len(t, fig.Data, 7)

	assert.Equal(t, 3, fig.Layout.Grid.Rows)
	assert.Equal(t, 3, fig.Layout.Grid.Columns)
	assert.Equal(t, 1000, fig.Layout.Width)
	assert.Equal(t, 800, fig.Layout.Height)
	assert.False(t, fig.Layout.ShowLegend)

	require.Len(t, fig.Layout.Annotations, 1)
	assert.Equal(t, "2024-03-14", fig.Layout.Annotations[0].Text)

	// Top row: indicators in fixed order.
	episodes, ok := fig.Data[0].(IndicatorTrace)
	require.True(t, ok)
	assert.Equal(t, "indicator", episodes.Type)
	assert.Equal(t, "number", episodes.Mode)
	assert.Equal(t, GridRef{Row: 0, Column: 0}, episodes.Domain)
	assert.Equal(t, 2.0, episodes.Value)

	patients, ok := fig.Data[1].(IndicatorTrace)
	require.True(t, ok)
	assert.Equal(t, GridRef{Row: 0, Column: 1}, patients.Domain)

	revenue, ok := fig.Data[2].(IndicatorTrace)
	require.True(t, ok)
	assert.Equal(t, 150.0, revenue.Value)
	assert.Equal(t, GridRef{Row: 0, Column: 2}, revenue.Domain)

	// Middle row: distributions in fixed order.
	categories, ok := fig.Data[3].(PieTrace)
	require.True(t, ok)
	assert.Equal(t, "pie", categories.Type)
	assert.Equal(t, GridRef{Row: 1, Column: 0}, categories.Domain)
	assert.Equal(t, []string{"Consultation", "Lab"}, categories.Labels)

	registrations, ok := fig.Data[4].(PieTrace)
	require.True(t, ok)
	assert.Equal(t, GridRef{Row: 1, Column: 1}, registrations.Domain)

	specialties, ok := fig.Data[5].(PieTrace)
	require.True(t, ok)
	assert.Equal(t, GridRef{Row: 1, Column: 2}, specialties.Domain)

	// Bottom row: insurance split alone in the last column.
	insurance, ok := fig.Data[6].(PieTrace)
	require.True(t, ok)
	assert.Equal(t, GridRef{Row: 2, Column: 2}, insurance.Domain)
	assert.Equal(t, []float64{110, 40}, insurance.Values)
}

func TestBuildEmptyTable(t *testing.T) {
	_, err := Build(&dataprocessing.NormalizedTable{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "ENT", truncateLabel("ENT", 6))
	assert.Equal(t, "Cardio", truncateLabel("Cardiology", 6))
	assert.Equal(t, "Ophtha", truncateLabel("Ophthalmology", 6))
}
