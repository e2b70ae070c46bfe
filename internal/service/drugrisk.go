package service

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-server/internal/domain"
	"github.com/pgx-risk-server/internal/knowledge"
)

// Phenotype confidence assumed when a drug's governing gene has no prediction:
// absence of variants implies presumed-normal function at reduced certainty.
const confidenceAssumedNormal = 0.65

// Rule base confidence used when neither the phenotype's rule nor the NM
// fallback exists for a drug.
const confidenceNoRule = 0.5

const genericRecommendation = "Consult clinical pharmacist for dosing guidance."

// RiskEngine assesses per-drug risk from phenotype predictions and the CPIC
// rule tables.
type RiskEngine struct {
	kb     *knowledge.Base
	logger *logrus.Logger
}

// NewRiskEngine creates a drug risk engine backed by the knowledge base.
func NewRiskEngine(kb *knowledge.Base, logger *logrus.Logger) *RiskEngine {
	return &RiskEngine{kb: kb, logger: logger}
}

// Assess returns one risk assessment per requested drug, in input order.
// Drug names are trimmed and lowercased before lookup.
func (e *RiskEngine) Assess(phenotypes []domain.PhenotypePrediction, drugs []string) []domain.DrugRiskAssessment {
	byGene := make(map[string]domain.PhenotypePrediction, len(phenotypes))
	for _, p := range phenotypes {
		byGene[p.Gene] = p
	}

	assessments := make([]domain.DrugRiskAssessment, 0, len(drugs))
	for _, raw := range drugs {
		drug := strings.ToLower(strings.TrimSpace(raw))

		interaction, ok := e.kb.Drug(drug)
		if !ok {
			assessments = append(assessments, domain.DrugRiskAssessment{
				Drug:            drug,
				Gene:            "Unknown",
				RiskCategory:    domain.RiskUnknown,
				Severity:        domain.SeverityLow,
				ConfidenceScore: 0.0,
				CPICGuideline:   "Not in CPIC database",
				Recommendation: "No pharmacogenomic interaction data found for '" + drug +
					"'. Consult prescribing information and clinical pharmacist.",
			})
			continue
		}

		phenotype := domain.NormalMetabolizer
		phenoConfidence := confidenceAssumedNormal
		if p, ok := byGene[interaction.Gene]; ok {
			phenotype = p.Phenotype
			phenoConfidence = p.Confidence
		}

		rule, ok := interaction.PhenotypeRules[phenotype]
		if !ok {
			rule, ok = interaction.PhenotypeRules[domain.NormalMetabolizer]
		}
		if !ok {
			rule = knowledge.PhenotypeRule{
				RiskCategory:   domain.RiskUnknown,
				Severity:       domain.SeverityLow,
				ConfidenceBase: confidenceNoRule,
				Recommendation: genericRecommendation,
			}
		}

		// Compounding uncertainty: genotype calling times rule applicability.
		confidence := round3(phenoConfidence * rule.ConfidenceBase)

		assessments = append(assessments, domain.DrugRiskAssessment{
			Drug:            drug,
			Gene:            interaction.Gene,
			RiskCategory:    rule.RiskCategory,
			Severity:        rule.Severity,
			ConfidenceScore: confidence,
			CPICGuideline:   "CPIC Level " + cpicLevel(interaction.CPICLevel),
			Recommendation:  rule.Recommendation,
			Mechanism:       rule.Mechanism,
		})

		e.logger.WithFields(logrus.Fields{
			"drug":      drug,
			"gene":      interaction.Gene,
			"phenotype": phenotype,
			"risk":      rule.RiskCategory,
			"severity":  rule.Severity,
		}).Debug("Assessed drug risk")
	}

	return assessments
}

func cpicLevel(level string) string {
	if level == "" {
		return "Unknown"
	}
	return level
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
