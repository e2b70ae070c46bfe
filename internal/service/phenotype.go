package service

import (
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-server/internal/domain"
	"github.com/pgx-risk-server/internal/knowledge"
)

// Confidence assigned to a phenotype call depending on whether any
// contributing variant carried an explicit star-allele annotation.
const (
	confidenceStarAllele   = 0.92
	confidenceRSIDFallback = 0.72
)

// rsidToStar maps well-characterized PGx rsIDs to the star allele they tag,
// used when a variant carries no explicit star-allele annotation.
var rsidToStar = map[string]string{
	"rs3892097":  "*4",
	"rs1065852":  "*10",
	"rs5030655":  "*6",
	"rs16947":    "*2",
	"rs28371706": "*41",
	"rs28371725": "*9",
	"rs4244285":  "*2",
	"rs4986893":  "*3",
	"rs1799853":  "*2",
	"rs1057910":  "*3",
	"rs1800460":  "*3B",
	"rs1142345":  "*3C",
	"rs1800462":  "*2",
	"rs3918290":  "*2A",
	"rs55886062": "*13",
	"rs4148323":  "*6",
	"rs8175347":  "*28",
}

// PhenotypeResolver infers a metabolizer phenotype per gene from the variant
// set by building a diplotype and summing allele activity values.
type PhenotypeResolver struct {
	kb     *knowledge.Base
	logger *logrus.Logger
}

// NewPhenotypeResolver creates a phenotype resolver backed by the knowledge base.
func NewPhenotypeResolver(kb *knowledge.Base, logger *logrus.Logger) *PhenotypeResolver {
	return &PhenotypeResolver{kb: kb, logger: logger}
}

// Resolve returns one phenotype prediction per distinct gene present in the
// variant set, in first-encounter order. Genes absent from the input are not
// reported at all: no variant evidence means no phenotype claim.
func (r *PhenotypeResolver) Resolve(variants []domain.Variant) []domain.PhenotypePrediction {
	var genes []string
	seen := make(map[string]bool)
	for _, v := range variants {
		if !seen[v.Gene] {
			seen[v.Gene] = true
			genes = append(genes, v.Gene)
		}
	}

	predictions := make([]domain.PhenotypePrediction, 0, len(genes))
	for _, gene := range genes {
		diplotype, score := r.buildDiplotype(variants, gene)
		code, full := r.kb.PhenotypeForScore(gene, score)

		confidence := confidenceRSIDFallback
		for _, v := range variants {
			if v.Gene == gene && v.StarAllele != "" {
				confidence = confidenceStarAllele
				break
			}
		}

		predictions = append(predictions, domain.PhenotypePrediction{
			Gene:          gene,
			Diplotype:     diplotype,
			Phenotype:     code,
			PhenotypeFull: full,
			ActivityScore: score,
			Confidence:    confidence,
		})

		r.logger.WithFields(logrus.Fields{
			"gene":      gene,
			"diplotype": diplotype,
			"phenotype": code,
			"score":     score,
		}).Debug("Resolved phenotype")
	}

	return predictions
}

// buildDiplotype derives the diploid allele pair and total activity score for
// one gene. Star alleles come from explicit annotations first, then from the
// rsID table. A single derived allele is paired with an assumed wildtype *1;
// with more than two derived alleles only the first two in encounter order
// are used.
func (r *PhenotypeResolver) buildDiplotype(variants []domain.Variant, gene string) (string, float64) {
	var stars []string
	found := false
	for _, v := range variants {
		if v.Gene != gene {
			continue
		}
		found = true
		switch {
		case v.StarAllele != "":
			stars = append(stars, v.StarAllele)
		case v.RSID != "":
			if star, ok := rsidToStar[v.RSID]; ok {
				stars = append(stars, star)
			}
		}
	}
	if !found {
		// No variants for this gene: wildtype homozygous.
		return "*1/*1", 2.0
	}

	if len(stars) == 0 {
		stars = []string{"*1"}
	}
	if len(stars) == 1 {
		// Single variant found: the second chromosome copy is presumed
		// unaffected absent contrary evidence.
		stars = []string{"*1", stars[0]}
	}

	a1, a2 := stars[0], stars[1]
	score := r.kb.AlleleActivity(gene, a1) + r.kb.AlleleActivity(gene, a2)
	return a1 + "/" + a2, score
}
