// Package domain contains core business entities and types for pharmacogenomic
// drug-response risk assessment following CPIC (Clinical Pharmacogenetics
// Implementation Consortium) guidelines.
//
// Reference: Relling & Klein (2011) CPIC: Clinical Pharmacogenetics Implementation
// Consortium of the Pharmacogenomics Research Network. Clin Pharmacol Ther. 89(3):464-7.
package domain

import "errors"

// Zygosity represents the allelic state of a variant call at a single site.
type Zygosity string

const (
	HomozygousRef   Zygosity = "homozygous_ref"
	Heterozygous    Zygosity = "heterozygous"
	HomozygousAlt   Zygosity = "homozygous_alt"
	ZygosityUnknown Zygosity = "unknown"
)

// PhenotypeCode represents a metabolizer phenotype class derived from a
// diplotype activity score.
type PhenotypeCode string

const (
	PoorMetabolizer         PhenotypeCode = "PM"
	IntermediateMetabolizer PhenotypeCode = "IM"
	NormalMetabolizer       PhenotypeCode = "NM"
	RapidMetabolizer        PhenotypeCode = "RM"
	UltrarapidMetabolizer   PhenotypeCode = "UM"
	PhenotypeUnknown        PhenotypeCode = "Unknown"
)

// RiskCategory represents the clinical action class for a drug-gene pair.
type RiskCategory string

const (
	RiskSafe         RiskCategory = "Safe"
	RiskAdjustDosage RiskCategory = "Adjust Dosage"
	RiskToxic        RiskCategory = "Toxic"
	RiskIneffective  RiskCategory = "Ineffective"
	RiskUnknown      RiskCategory = "Unknown"
)

// Severity represents the severity tier of a drug risk assessment.
// Tiers are totally ordered: none < low < moderate < high < critical.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Validation errors for clinical data integrity.
var (
	ErrInvalidZygosity  = errors.New("invalid zygosity")
	ErrInvalidPhenotype = errors.New("invalid phenotype code")
	ErrInvalidSeverity  = errors.New("invalid severity tier")
)

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityLow:      1,
	SeverityModerate: 2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the position of the severity in the fixed total order.
// Unknown severities rank below none so a malformed rule entry can never
// dominate the aggregated verdict.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// IsValid reports whether the severity is one of the five known tiers.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

func (s Severity) String() string {
	return string(s)
}

// MaxSeverity returns the higher of two severity tiers.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// IsValid reports whether the zygosity is a known classification.
func (z Zygosity) IsValid() bool {
	switch z {
	case HomozygousRef, Heterozygous, HomozygousAlt, ZygosityUnknown:
		return true
	default:
		return false
	}
}

func (z Zygosity) String() string {
	return string(z)
}

// IsValid reports whether the phenotype code is a known metabolizer class.
func (p PhenotypeCode) IsValid() bool {
	switch p {
	case PoorMetabolizer, IntermediateMetabolizer, NormalMetabolizer,
		RapidMetabolizer, UltrarapidMetabolizer, PhenotypeUnknown:
		return true
	default:
		return false
	}
}

func (p PhenotypeCode) String() string {
	return string(p)
}

// FullName returns the human-readable metabolizer class name.
func (p PhenotypeCode) FullName() string {
	switch p {
	case PoorMetabolizer:
		return "Poor Metabolizer"
	case IntermediateMetabolizer:
		return "Intermediate Metabolizer"
	case NormalMetabolizer:
		return "Normal Metabolizer"
	case RapidMetabolizer:
		return "Rapid Metabolizer"
	case UltrarapidMetabolizer:
		return "Ultrarapid Metabolizer"
	default:
		return "Unknown Metabolizer"
	}
}

// IsValid reports whether the risk category is a known clinical action class.
func (r RiskCategory) IsValid() bool {
	switch r {
	case RiskSafe, RiskAdjustDosage, RiskToxic, RiskIneffective, RiskUnknown:
		return true
	default:
		return false
	}
}

func (r RiskCategory) String() string {
	return string(r)
}
