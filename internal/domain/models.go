package domain

import "time"

// Annotations holds the retained INFO-column annotations for a variant call.
// Only a fixed whitelist of keys survives parsing; everything else in the
// INFO column is discarded.
type Annotations struct {
	Gene            string `json:"GENE,omitempty"`
	Star            string `json:"STAR,omitempty"`
	RS              string `json:"RS,omitempty"`
	AlleleFrequency string `json:"AF,omitempty"`
	ReadDepth       string `json:"DP,omitempty"`
	Haplotype       string `json:"HAPLOTYPE,omitempty"`
}

// Variant represents one pharmacogenomically relevant variant call extracted
// from a VCF file. Immutable once produced; owned by the request that
// created it.
type Variant struct {
	Gene        string      `json:"gene"`
	RSID        string      `json:"rsid,omitempty"`
	StarAllele  string      `json:"star_allele,omitempty"`
	Chromosome  string      `json:"chromosome"`
	Position    int64       `json:"position"`
	RefAllele   string      `json:"ref_allele"`
	AltAllele   string      `json:"alt_allele"`
	Zygosity    Zygosity    `json:"zygosity"`
	Annotations Annotations `json:"raw_info"`
}

// FileMetadata describes the parsed VCF file as a whole.
type FileMetadata struct {
	FileName         string `json:"file_name"`
	VCFVersion       string `json:"vcf_version"`
	TotalVariants    int    `json:"total_variants"`
	PGxVariantsFound int    `json:"pgx_variants_found"`
}

// PhenotypePrediction is the inferred metabolizer phenotype for one gene
// present in the variant set.
type PhenotypePrediction struct {
	Gene          string        `json:"gene"`
	Diplotype     string        `json:"diplotype"`
	Phenotype     PhenotypeCode `json:"phenotype"`
	PhenotypeFull string        `json:"phenotype_full"`
	ActivityScore float64       `json:"activity_score"`
	Confidence    float64       `json:"confidence"`
}

// DrugRiskAssessment is the per-drug risk verdict derived from the patient's
// phenotype and the CPIC rule tables.
type DrugRiskAssessment struct {
	Drug            string       `json:"drug"`
	Gene            string       `json:"gene"`
	RiskCategory    RiskCategory `json:"risk_category"`
	Severity        Severity     `json:"severity"`
	ConfidenceScore float64      `json:"confidence_score"`
	CPICGuideline   string       `json:"cpic_guideline"`
	Recommendation  string       `json:"recommendation_brief"`
	Mechanism       string       `json:"mechanism,omitempty"`
}

// OverallRisk aggregates all drug risk assessments into a single verdict.
type OverallRisk struct {
	Level Severity `json:"level"`
	Flags []string `json:"flags"`
}

// AnalysisResult bundles the outputs of one analysis invocation.
type AnalysisResult struct {
	Phenotypes  []PhenotypePrediction `json:"phenotype_predictions"`
	Assessments []DrugRiskAssessment  `json:"drug_risk_assessments"`
	Overall     OverallRisk           `json:"overall_risk"`
}

// VariantCitation links a variant to supporting literature in a narrative.
type VariantCitation struct {
	Variant string `json:"variant"`
	PMID    string `json:"pmid,omitempty"`
	Note    string `json:"note"`
}

// NarrativeAnalysis is the free-text clinical narrative produced by the
// language-model service.
type NarrativeAnalysis struct {
	ClinicalSummary       string            `json:"clinical_summary"`
	MechanismExplanation  string            `json:"mechanism_explanation"`
	DosingRecommendations []string          `json:"dosing_recommendations"`
	VariantCitations      []VariantCitation `json:"variant_citations"`
	Model                 string            `json:"llm_model_used"`
	Confidence            float64           `json:"llm_confidence"`
}

// AnalysisResponse is the full API response for an analysis request.
type AnalysisResponse struct {
	Status           string                `json:"status"`
	PatientID        string                `json:"patient_id,omitempty"`
	Timestamp        time.Time             `json:"analysis_timestamp"`
	Metadata         FileMetadata          `json:"vcf_metadata"`
	Variants         []Variant             `json:"detected_variants"`
	Phenotypes       []PhenotypePrediction `json:"phenotype_predictions"`
	Assessments      []DrugRiskAssessment  `json:"drug_risk_assessments"`
	Narrative        *NarrativeAnalysis    `json:"llm_analysis,omitempty"`
	Overall          OverallRisk           `json:"overall_risk"`
	ProcessingTimeMS int64                 `json:"processing_time_ms"`
}
