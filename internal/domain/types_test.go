package domain

import "testing"

func TestSeverityOrder(t *testing.T) {
	ordered := []Severity{SeverityNone, SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical}

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("expected %s to rank above %s", ordered[i], ordered[i-1])
		}
	}
}

func TestSeverityRankUnknown(t *testing.T) {
	if Severity("bogus").Rank() >= SeverityNone.Rank() {
		t.Error("unknown severity must rank below none")
	}
}

func TestMaxSeverity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Severity
		expected Severity
	}{
		{"none vs critical", SeverityNone, SeverityCritical, SeverityCritical},
		{"high vs moderate", SeverityHigh, SeverityModerate, SeverityHigh},
		{"equal", SeverityLow, SeverityLow, SeverityLow},
		{"unknown never wins", SeverityNone, Severity("bogus"), SeverityNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxSeverity(tt.a, tt.b); got != tt.expected {
				t.Errorf("MaxSeverity(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestZygosityConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    Zygosity
		expected string
	}{
		{"Homozygous reference", HomozygousRef, "homozygous_ref"},
		{"Heterozygous", Heterozygous, "heterozygous"},
		{"Homozygous alternate", HomozygousAlt, "homozygous_alt"},
		{"Unknown", ZygosityUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.value)
			}
		})
	}

	if Zygosity("hemizygous").IsValid() {
		t.Error("unexpected zygosity must be invalid")
	}
}

func TestPhenotypeFullNames(t *testing.T) {
	tests := []struct {
		code     PhenotypeCode
		expected string
	}{
		{PoorMetabolizer, "Poor Metabolizer"},
		{IntermediateMetabolizer, "Intermediate Metabolizer"},
		{NormalMetabolizer, "Normal Metabolizer"},
		{RapidMetabolizer, "Rapid Metabolizer"},
		{UltrarapidMetabolizer, "Ultrarapid Metabolizer"},
		{PhenotypeUnknown, "Unknown Metabolizer"},
		{PhenotypeCode("XX"), "Unknown Metabolizer"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.FullName(); got != tt.expected {
				t.Errorf("FullName(%s) = %s, want %s", tt.code, got, tt.expected)
			}
		})
	}
}

func TestRiskCategoryValidity(t *testing.T) {
	for _, r := range []RiskCategory{RiskSafe, RiskAdjustDosage, RiskToxic, RiskIneffective, RiskUnknown} {
		if !r.IsValid() {
			t.Errorf("Expected %s to be valid", r)
		}
	}
	if RiskCategory("Dangerous").IsValid() {
		t.Error("unexpected risk category must be invalid")
	}
}
