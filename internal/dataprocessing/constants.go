package dataprocessing

// RevenueCategories is the fixed list of revenue generating categories as
// defined by the upstream report template. The template lists "Lab" twice;
// the duplicate is preserved here verbatim so the constant stays a faithful
// copy of the template, and UniqueRevenueCategories deduplicates it before
// any folding or counting so Lab revenue enters the report exactly once.
var RevenueCategories = []string{
	"Consultation",
	"Lab",
	"Radiology",
	"Procedure",
	"Lab",
	"Consumable",
	"Drug",
}

// UniqueRevenueCategories returns RevenueCategories with duplicates removed,
// preserving first-seen order.
func UniqueRevenueCategories() []string {
	seen := make(map[string]bool, len(RevenueCategories))
	out := make([]string, 0, len(RevenueCategories))
	for _, cat := range RevenueCategories {
		if seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

// Metadata column names, exactly as they appear in the exported report
// after header flattening.
const (
	ColNetRevenue = "Net Revenue"
	ColInsurance  = "Ins."
	ColPolicyName = "Policy Name"
	ColNewReg     = "New Reg."
	ColOldReg     = "Old Reg."
	ColSpecialty  = "Speciality"
	ColDoctorName = "Doctor Name"
	ColVisitDate  = "(CVR) Date"
)

// MetadataColumns is the fixed list of required non-category columns,
// in the order they are retained during column selection.
var MetadataColumns = []string{
	ColNetRevenue,
	ColInsurance,
	ColPolicyName,
	ColNewReg,
	ColOldReg,
	ColSpecialty,
	ColDoctorName,
	ColVisitDate,
}

// Flattened-header markers for the per-category net revenue sub-columns.
const (
	netMarker  = "_Net_"
	cashSuffix = "_Net_Cash"
	insSuffix  = "_Net_Ins."
)

// Sheet geometry of the exported report: the three-tier header occupies
// sheet rows 4-6, the last eight rows are a footer, and the first column
// is a row index. All are discarded during parsing.
const (
	headerStartRow = 3 // zero-based index of sheet row 4
	headerRowCount = 3
	footerRowCount = 8
)
