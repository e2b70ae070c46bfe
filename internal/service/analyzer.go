// Package service implements the pharmacogenomic inference pipeline:
// variants to phenotypes, phenotypes to per-drug risk assessments, and
// assessment aggregation into an overall risk verdict.
//
// The pipeline is stateless per invocation; the knowledge base is the only
// shared input and is read-only after load, so any number of analyses may run
// concurrently against the same tables.
package service

import (
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-server/internal/domain"
	"github.com/pgx-risk-server/internal/knowledge"
)

// Analyzer orchestrates the phenotype resolver, risk engine and aggregator.
type Analyzer struct {
	resolver *PhenotypeResolver
	engine   *RiskEngine
	logger   *logrus.Logger
}

// NewAnalyzer creates the full analysis pipeline over a loaded knowledge base.
func NewAnalyzer(kb *knowledge.Base, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		resolver: NewPhenotypeResolver(kb, logger),
		engine:   NewRiskEngine(kb, logger),
		logger:   logger,
	}
}

// Analyze runs the inference pipeline over an extracted variant set and a
// normalized drug list. It has no fatal error path: absence of variants or
// drugs degrades to neutral outcomes.
func (a *Analyzer) Analyze(variants []domain.Variant, drugs []string) domain.AnalysisResult {
	phenotypes := a.resolver.Resolve(variants)
	assessments := a.engine.Assess(phenotypes, drugs)
	overall := AggregateRisk(assessments)

	a.logger.WithFields(logrus.Fields{
		"variants":     len(variants),
		"phenotypes":   len(phenotypes),
		"drugs":        len(drugs),
		"overall_risk": overall.Level,
	}).Info("Analysis complete")

	return domain.AnalysisResult{
		Phenotypes:  phenotypes,
		Assessments: assessments,
		Overall:     overall,
	}
}
