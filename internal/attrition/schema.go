package attrition

// Validate checks that every feature required by the encoder and the scaler
// is present in the record. All absent names are reported in required order.
func Validate(record Record, categorical, numerical []string) error {
	var missing []string
	seen := make(map[string]struct{})

	for _, group := range [][]string{categorical, numerical} {
		for _, name := range group {
			if _, ok := record[name]; ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return &MissingFeatureError{Names: missing}
	}
	return nil
}

// RequiredFeatures returns the union of encoder and scaler inputs plus the raw
// income field SalaryBand is derived from, without duplicates. The engineered
// SalaryBand itself is never required from callers.
func RequiredFeatures(categorical, numerical []string) []string {
	out := make([]string, 0, len(categorical)+len(numerical)+1)
	seen := map[string]struct{}{FeatureSalaryBand: {}}

	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, name := range categorical {
		add(name)
	}
	for _, name := range numerical {
		add(name)
	}
	add(FeatureMonthlyIncome)

	return out
}
