package dataprocessing

// RawTable is the rectangular extract of an exported revenue report:
// three header tiers (category, transaction type, currency bucket) and the
// data rows between header and footer. It exists only as the input to
// Normalize and is never mutated afterwards.
type RawTable struct {
	// Headers holds one row per header tier; each tier has one label per
	// column. Blank labels mark placeholder cells left by merged headers.
	Headers [][]string
	// Rows holds the data rows, one per patient visit.
	Rows [][]string
}

// Columns returns the column count of the table.
func (t *RawTable) Columns() int {
	if len(t.Headers) == 0 {
		return 0
	}
	return len(t.Headers[0])
}

// VisitRecord is one normalized patient visit row.
type VisitRecord struct {
	// Categories maps each revenue category to its folded net revenue
	// (cash net + insurance net).
	Categories map[string]float64 `json:"categories"`
	// NetRevenue is the visit's total net revenue across all categories.
	NetRevenue float64 `json:"net_revenue"`
	// Insurance is the insurance-covered amount of the visit.
	Insurance  float64 `json:"insurance"`
	PolicyName string  `json:"policy_name"`
	NewReg     float64 `json:"new_reg"`
	OldReg     float64 `json:"old_reg"`
	Specialty  string  `json:"specialty"`
	DoctorName string  `json:"doctor_name"`
	// VisitDate is the calendar date of the visit, formatted YYYY-MM-DD.
	VisitDate string `json:"visit_date"`
}

// NormalizedTable is the flat one-row-per-visit table consumed by the
// report builder. Value semantics: built once per run, never mutated.
type NormalizedTable struct {
	Records []VisitRecord `json:"records"`
}

// Len returns the number of visit rows.
func (t *NormalizedTable) Len() int {
	return len(t.Records)
}
