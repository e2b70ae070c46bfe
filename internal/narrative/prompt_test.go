package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-server/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(
		[]domain.Variant{{
			Gene: "CYP2D6", RSID: "rs3892097", StarAllele: "*4",
			Chromosome: "22", Position: 42130692,
			RefAllele: "G", AltAllele: "A", Zygosity: domain.Heterozygous,
		}},
		[]domain.PhenotypePrediction{{
			Gene: "CYP2D6", Diplotype: "*1/*4",
			Phenotype: domain.IntermediateMetabolizer, PhenotypeFull: "Intermediate Metabolizer",
			ActivityScore: 1.0, Confidence: 0.92,
		}},
		[]domain.DrugRiskAssessment{{
			Drug: "codeine", Gene: "CYP2D6",
			RiskCategory: domain.RiskAdjustDosage, Severity: domain.SeverityModerate,
			ConfidenceScore: 0.828, CPICGuideline: "CPIC Level A",
		}},
		[]string{"codeine", "tramadol"},
	)

	assert.Contains(t, prompt, "CYP2D6 rs3892097 star_allele=*4 chr22:42130692 G>A zygosity=heterozygous")
	assert.Contains(t, prompt, "*1/*4: IM (Intermediate Metabolizer)")
	assert.Contains(t, prompt, "codeine (CYP2D6): Adjust Dosage, severity moderate")
	assert.Contains(t, prompt, "Drugs under review: codeine, tramadol")
}

func TestBuildPromptNoVariants(t *testing.T) {
	prompt := buildPrompt(nil, nil, nil, []string{"warfarin"})
	assert.Contains(t, prompt, "(none)")
	assert.Contains(t, prompt, "Drugs under review: warfarin")
}

func TestParseNarrative(t *testing.T) {
	text := `{"clinical_summary": "Reduced CYP2D6 activity detected.",
"mechanism_explanation": "One null allele halves enzymatic capacity.",
"dosing_recommendations": ["Consider alternative analgesic."],
"variant_citations": [{"variant": "CYP2D6*4", "pmid": "24458010", "note": "defining SNV"}],
"llm_confidence": 0.85}`

	n, err := parseNarrative(text, "claude-sonnet-4-5")
	require.NoError(t, err)
	assert.Equal(t, "Reduced CYP2D6 activity detected.", n.ClinicalSummary)
	assert.Equal(t, []string{"Consider alternative analgesic."}, n.DosingRecommendations)
	require.Len(t, n.VariantCitations, 1)
	assert.Equal(t, "CYP2D6*4", n.VariantCitations[0].Variant)
	assert.Equal(t, "claude-sonnet-4-5", n.Model)
	assert.InDelta(t, 0.85, n.Confidence, 1e-9)
}

func TestParseNarrativeToleratesFencesAndProse(t *testing.T) {
	text := "Here is the analysis:\n```json\n" +
		`{"clinical_summary": "Summary.", "llm_confidence": 0.7}` +
		"\n```\nLet me know if you need more."

	n, err := parseNarrative(text, "m")
	require.NoError(t, err)
	assert.Equal(t, "Summary.", n.ClinicalSummary)
}

func TestParseNarrativeClampsConfidence(t *testing.T) {
	n, err := parseNarrative(`{"clinical_summary": "S", "llm_confidence": 4.2}`, "m")
	require.NoError(t, err)
	assert.Equal(t, 1.0, n.Confidence)

	n, err = parseNarrative(`{"clinical_summary": "S", "llm_confidence": -0.5}`, "m")
	require.NoError(t, err)
	assert.Equal(t, 0.0, n.Confidence)
}

func TestParseNarrativeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no JSON object", "I cannot comply with that request."},
		{"malformed JSON", `{"clinical_summary": `},
		{"missing summary", `{"mechanism_explanation": "only this"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseNarrative(tt.text, "m")
			assert.Error(t, err)
		})
	}
}

func TestSystemPromptNamesResponseKeys(t *testing.T) {
	for _, key := range []string{
		"clinical_summary", "mechanism_explanation", "dosing_recommendations",
		"variant_citations", "llm_confidence",
	} {
		assert.True(t, strings.Contains(systemPrompt, key), "system prompt must name %s", key)
	}
}
