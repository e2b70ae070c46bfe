// Package knowledge loads and serves the CPIC rule tables: the per-gene
// diplotype/phenotype map and the per-drug interaction table. Both are loaded
// once at process start and are read-only afterwards, so concurrent lookups
// need no locking.
package knowledge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-server/internal/domain"
)

const (
	diplotypeMapFile    = "diplotype_phenotype_map.json"
	drugInteractionFile = "drug_gene_interactions.json"
)

// AlleleInfo describes a single star allele of a pharmacogene.
type AlleleInfo struct {
	ActivityValue float64 `json:"activity_value"`
	Function      string  `json:"function,omitempty"`
}

// PhenotypeRange maps an inclusive [Min, Max] activity-score interval to a
// metabolizer phenotype.
type PhenotypeRange struct {
	Min       float64              `json:"min"`
	Max       float64              `json:"max"`
	Phenotype domain.PhenotypeCode `json:"phenotype"`
	FullName  string               `json:"full_name"`
}

// GeneTable holds the allele activity values and phenotype ranges for one gene.
type GeneTable struct {
	Alleles        map[string]AlleleInfo `json:"alleles"`
	ActivityRanges []PhenotypeRange      `json:"activity_score_to_phenotype"`
}

// PhenotypeRule is the CPIC rule for one (drug, phenotype) pair.
type PhenotypeRule struct {
	RiskCategory   domain.RiskCategory `json:"risk_category"`
	Severity       domain.Severity     `json:"severity"`
	ConfidenceBase float64             `json:"confidence_base"`
	Recommendation string              `json:"recommendation"`
	Mechanism      string              `json:"mechanism,omitempty"`
}

// DrugInteraction holds the governing gene and phenotype rules for one drug.
type DrugInteraction struct {
	Gene           string                                 `json:"gene"`
	CPICLevel      string                                 `json:"cpic_level"`
	PhenotypeRules map[domain.PhenotypeCode]PhenotypeRule `json:"phenotype_rules"`
}

// Base is the in-memory knowledge base. A missing or unreadable table file
// degrades to an empty table: downstream lookups then fall through to
// "no interaction known" outcomes instead of crashing the process.
type Base struct {
	diplotypes map[string]GeneTable
	drugs      map[string]DrugInteraction
}

// New constructs a knowledge base directly from in-memory tables. Drug keys
// are lowercased on insertion.
func New(diplotypes map[string]GeneTable, drugs map[string]DrugInteraction) *Base {
	b := &Base{
		diplotypes: make(map[string]GeneTable, len(diplotypes)),
		drugs:      make(map[string]DrugInteraction, len(drugs)),
	}
	for gene, table := range diplotypes {
		b.diplotypes[gene] = table
	}
	for name, interaction := range drugs {
		b.drugs[strings.ToLower(name)] = interaction
	}
	return b
}

// Load reads both rule tables from dataDir. Load failures are logged and
// produce empty tables, never an error.
func Load(dataDir string, logger *logrus.Logger) *Base {
	b := &Base{
		diplotypes: make(map[string]GeneTable),
		drugs:      make(map[string]DrugInteraction),
	}

	if err := loadJSON(filepath.Join(dataDir, diplotypeMapFile), &b.diplotypes); err != nil {
		logger.WithError(err).WithField("file", diplotypeMapFile).Error("Knowledge base table unavailable, using empty diplotype map")
		b.diplotypes = make(map[string]GeneTable)
	}

	raw := make(map[string]json.RawMessage)
	if err := loadJSON(filepath.Join(dataDir, drugInteractionFile), &raw); err != nil {
		logger.WithError(err).WithField("file", drugInteractionFile).Error("Knowledge base table unavailable, using empty drug interaction table")
	} else {
		for name, entry := range raw {
			// Reserved metadata keys are not drug entries.
			if strings.HasPrefix(name, "_") {
				continue
			}
			var interaction DrugInteraction
			if err := json.Unmarshal(entry, &interaction); err != nil {
				logger.WithError(err).WithField("drug", name).Error("Skipping malformed drug interaction entry")
				continue
			}
			b.drugs[strings.ToLower(name)] = interaction
		}
	}

	logger.WithFields(logrus.Fields{
		"genes": len(b.diplotypes),
		"drugs": len(b.drugs),
	}).Info("Knowledge base loaded")

	return b
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Gene returns the diplotype table for a gene.
func (b *Base) Gene(gene string) (GeneTable, bool) {
	t, ok := b.diplotypes[gene]
	return t, ok
}

// Drug returns the interaction entry for a drug name (already lowercased).
func (b *Base) Drug(name string) (DrugInteraction, bool) {
	d, ok := b.drugs[name]
	return d, ok
}

// AlleleActivity returns the activity value for a star allele of a gene.
// Alleles absent from the table default to normal activity 1.0.
func (b *Base) AlleleActivity(gene, star string) float64 {
	if t, ok := b.diplotypes[gene]; ok {
		if a, ok := t.Alleles[star]; ok {
			return a.ActivityValue
		}
	}
	return 1.0
}

// PhenotypeForScore maps an activity score to a phenotype via the gene's
// range table. The first range whose inclusive bounds contain the score wins;
// no match yields the Unknown phenotype.
func (b *Base) PhenotypeForScore(gene string, score float64) (domain.PhenotypeCode, string) {
	if t, ok := b.diplotypes[gene]; ok {
		for _, r := range t.ActivityRanges {
			if score >= r.Min && score <= r.Max {
				return r.Phenotype, r.FullName
			}
		}
	}
	return domain.PhenotypeUnknown, "Unknown Metabolizer"
}

// Drugs returns all known drug names in sorted order.
func (b *Base) Drugs() []string {
	names := make([]string, 0, len(b.drugs))
	for name := range b.drugs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
