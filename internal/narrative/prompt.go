package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pgx-risk-server/internal/domain"
)

const systemPrompt = `You are a clinical pharmacogenomics specialist. You write
concise, guideline-grounded narratives for prescribing clinicians based on
structured CPIC-style analysis results. You never invent variants or drugs that
are not in the provided data, and you clearly mark uncertainty. Respond with a
single JSON object and nothing else, using exactly these keys:
"clinical_summary" (string), "mechanism_explanation" (string),
"dosing_recommendations" (array of strings), "variant_citations" (array of
objects with "variant", "pmid", "note"), "llm_confidence" (number 0-1).`

// buildPrompt renders the structured analysis results into the user prompt.
func buildPrompt(
	variants []domain.Variant,
	phenotypes []domain.PhenotypePrediction,
	assessments []domain.DrugRiskAssessment,
	drugs []string,
) string {
	var b strings.Builder

	b.WriteString("Generate a clinical pharmacogenomic narrative for the following patient results.\n\n")

	b.WriteString("Detected variants:\n")
	if len(variants) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, v := range variants {
		fmt.Fprintf(&b, "  - %s %s star_allele=%s chr%s:%d %s>%s zygosity=%s\n",
			v.Gene, orDash(v.RSID), orDash(v.StarAllele),
			v.Chromosome, v.Position, v.RefAllele, v.AltAllele, v.Zygosity)
	}

	b.WriteString("\nPhenotype predictions:\n")
	for _, p := range phenotypes {
		fmt.Fprintf(&b, "  - %s %s: %s (%s), activity score %.2f, confidence %.2f\n",
			p.Gene, p.Diplotype, p.Phenotype, p.PhenotypeFull, p.ActivityScore, p.Confidence)
	}

	b.WriteString("\nDrug risk assessments:\n")
	for _, a := range assessments {
		fmt.Fprintf(&b, "  - %s (%s): %s, severity %s, confidence %.3f, %s\n",
			a.Drug, a.Gene, a.RiskCategory, a.Severity, a.ConfidenceScore, a.CPICGuideline)
	}

	fmt.Fprintf(&b, "\nDrugs under review: %s\n", strings.Join(drugs, ", "))

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// narrativePayload is the JSON shape the model is instructed to return.
type narrativePayload struct {
	ClinicalSummary       string                   `json:"clinical_summary"`
	MechanismExplanation  string                   `json:"mechanism_explanation"`
	DosingRecommendations []string                 `json:"dosing_recommendations"`
	VariantCitations      []domain.VariantCitation `json:"variant_citations"`
	Confidence            float64                  `json:"llm_confidence"`
}

// parseNarrative extracts the JSON payload from the model response, tolerating
// surrounding prose and markdown code fences.
func parseNarrative(text, model string) (*domain.NarrativeAnalysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var payload narrativePayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if payload.ClinicalSummary == "" {
		return nil, fmt.Errorf("model response missing clinical summary")
	}

	if payload.Confidence < 0 {
		payload.Confidence = 0
	}
	if payload.Confidence > 1 {
		payload.Confidence = 1
	}

	return &domain.NarrativeAnalysis{
		ClinicalSummary:       payload.ClinicalSummary,
		MechanismExplanation:  payload.MechanismExplanation,
		DosingRecommendations: payload.DosingRecommendations,
		VariantCitations:      payload.VariantCitations,
		Model:                 model,
		Confidence:            payload.Confidence,
	}, nil
}
