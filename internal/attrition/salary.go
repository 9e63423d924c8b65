package attrition

// SalaryBand is the engineered categorical feature derived from MonthlyIncome.
type SalaryBand string

const (
	SalaryBandLow      SalaryBand = "Low"
	SalaryBandMedium   SalaryBand = "Medium"
	SalaryBandHigh     SalaryBand = "High"
	SalaryBandVeryHigh SalaryBand = "Very High"
)

const (
	// FeatureMonthlyIncome is the raw field SalaryBand is derived from.
	FeatureMonthlyIncome = "MonthlyIncome"
	// FeatureSalaryBand is the engineered field added to every record.
	FeatureSalaryBand = "SalaryBand"
)

// SalaryBandFor buckets a monthly income into half-open intervals:
// [.., 4000) Low, [4000, 8000) Medium, [8000, 12000) High, [12000, ..) Very High.
// Negative incomes land in Low since only the upper bound is checked.
func SalaryBandFor(income float64) SalaryBand {
	switch {
	case income < 4000:
		return SalaryBandLow
	case income < 8000:
		return SalaryBandMedium
	case income < 12000:
		return SalaryBandHigh
	default:
		return SalaryBandVeryHigh
	}
}

func (b SalaryBand) String() string {
	return string(b)
}
