package knowledge

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-server/internal/domain"
)

const diplotypeFixture = `{
  "CYP2D6": {
    "alleles": {
      "*1": {"activity_value": 1.0, "function": "normal"},
      "*4": {"activity_value": 0.0, "function": "no function"},
      "*10": {"activity_value": 0.25, "function": "decreased"}
    },
    "activity_score_to_phenotype": [
      {"min": 0.0, "max": 0.25, "phenotype": "PM", "full_name": "Poor Metabolizer"},
      {"min": 0.26, "max": 1.0, "phenotype": "IM", "full_name": "Intermediate Metabolizer"},
      {"min": 1.01, "max": 2.25, "phenotype": "NM", "full_name": "Normal Metabolizer"}
    ]
  }
}`

const drugFixture = `{
  "_meta": {"source": "CPIC", "version": "test"},
  "Codeine": {
    "gene": "CYP2D6",
    "cpic_level": "A",
    "phenotype_rules": {
      "PM": {
        "risk_category": "Ineffective",
        "severity": "high",
        "confidence_base": 0.9,
        "recommendation": "Avoid codeine; use a non-tramadol alternative.",
        "mechanism": "No CYP2D6 activity, no conversion to morphine."
      },
      "NM": {
        "risk_category": "Safe",
        "severity": "none",
        "confidence_base": 0.95,
        "recommendation": "Standard dosing."
      }
    }
  },
  "broken": "not an object"
}`

func writeFixtures(t *testing.T, diplotypes, drugs string) string {
	t.Helper()
	dir := t.TempDir()
	if diplotypes != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, diplotypeMapFile), []byte(diplotypes), 0o644))
	}
	if drugs != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, drugInteractionFile), []byte(drugs), 0o644))
	}
	return dir
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLoadTables(t *testing.T) {
	dir := writeFixtures(t, diplotypeFixture, drugFixture)
	b := Load(dir, discardLogger())

	table, ok := b.Gene("CYP2D6")
	require.True(t, ok)
	assert.Len(t, table.Alleles, 3)
	assert.Len(t, table.ActivityRanges, 3)

	drug, ok := b.Drug("codeine")
	require.True(t, ok, "drug keys must be lowercased on load")
	assert.Equal(t, "CYP2D6", drug.Gene)
	assert.Equal(t, "A", drug.CPICLevel)

	rule, ok := drug.PhenotypeRules[domain.PoorMetabolizer]
	require.True(t, ok)
	assert.Equal(t, domain.RiskIneffective, rule.RiskCategory)
	assert.Equal(t, domain.SeverityHigh, rule.Severity)
	assert.InDelta(t, 0.9, rule.ConfidenceBase, 1e-9)

	_, ok = b.Drug("_meta")
	assert.False(t, ok, "reserved keys must not become drug entries")
	_, ok = b.Drug("broken")
	assert.False(t, ok, "malformed entries are skipped, not fatal")
}

func TestLoadMissingFilesDegradesToEmpty(t *testing.T) {
	b := Load(t.TempDir(), discardLogger())

	_, ok := b.Gene("CYP2D6")
	assert.False(t, ok)
	assert.Empty(t, b.Drugs())

	// Lookups against empty tables still produce neutral answers.
	assert.Equal(t, 1.0, b.AlleleActivity("CYP2D6", "*4"))
	code, full := b.PhenotypeForScore("CYP2D6", 1.5)
	assert.Equal(t, domain.PhenotypeUnknown, code)
	assert.Equal(t, "Unknown Metabolizer", full)
}

func TestAlleleActivityDefaults(t *testing.T) {
	dir := writeFixtures(t, diplotypeFixture, drugFixture)
	b := Load(dir, discardLogger())

	assert.Equal(t, 0.0, b.AlleleActivity("CYP2D6", "*4"))
	assert.Equal(t, 0.25, b.AlleleActivity("CYP2D6", "*10"))
	assert.Equal(t, 1.0, b.AlleleActivity("CYP2D6", "*99"), "unlisted alleles default to normal activity")
	assert.Equal(t, 1.0, b.AlleleActivity("TPMT", "*2"), "unlisted genes default to normal activity")
}

func TestPhenotypeForScoreInclusiveBounds(t *testing.T) {
	dir := writeFixtures(t, diplotypeFixture, drugFixture)
	b := Load(dir, discardLogger())

	tests := []struct {
		name     string
		score    float64
		expected domain.PhenotypeCode
	}{
		{"lower bound", 0.0, domain.PoorMetabolizer},
		{"upper bound", 0.25, domain.PoorMetabolizer},
		{"next range lower bound", 0.26, domain.IntermediateMetabolizer},
		{"mid range", 1.5, domain.NormalMetabolizer},
		{"beyond all ranges", 99.0, domain.PhenotypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := b.PhenotypeForScore("CYP2D6", tt.score)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestDrugsSorted(t *testing.T) {
	b := New(nil, map[string]DrugInteraction{
		"Warfarin": {Gene: "CYP2C9"},
		"codeine":  {Gene: "CYP2D6"},
		"Tramadol": {Gene: "CYP2D6"},
	})

	names := b.Drugs()
	assert.Equal(t, []string{"codeine", "tramadol", "warfarin"}, names)
	assert.True(t, sort.StringsAreSorted(names))
}
