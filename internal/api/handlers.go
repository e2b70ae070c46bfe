package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-server/internal/config"
	"github.com/pgx-risk-server/internal/domain"
	"github.com/pgx-risk-server/internal/knowledge"
	"github.com/pgx-risk-server/internal/service"
	"github.com/pgx-risk-server/internal/vcf"
)

// Version is the API version reported by the health endpoint.
const Version = "1.0.0"

// narrativeGenerator is the boundary to the clinical narrative service.
type narrativeGenerator interface {
	Generate(ctx context.Context, variants []domain.Variant, phenotypes []domain.PhenotypePrediction,
		assessments []domain.DrugRiskAssessment, drugs []string) (*domain.NarrativeAnalysis, error)
	Model() string
}

// Handler holds the request handlers and their pipeline dependencies.
type Handler struct {
	cfg       *config.Config
	parser    *vcf.Parser
	analyzer  *service.Analyzer
	kb        *knowledge.Base
	narrative narrativeGenerator
	logger    *logrus.Logger
}

// NewHandler creates the API handler. narrative may be nil when narrative
// generation is disabled.
func NewHandler(
	cfg *config.Config,
	parser *vcf.Parser,
	analyzer *service.Analyzer,
	kb *knowledge.Base,
	narrative narrativeGenerator,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		cfg:       cfg,
		parser:    parser,
		analyzer:  analyzer,
		kb:        kb,
		narrative: narrative,
		logger:    logger,
	}
}

// Health reports service status and the supported genes and drugs.
func (h *Handler) Health(c *gin.Context) {
	model := "disabled"
	if h.narrative != nil {
		model = h.narrative.Model()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"version":         Version,
		"llm_model":       model,
		"genes_supported": vcf.SupportedGenes(),
		"drugs_supported": h.kb.Drugs(),
	})
}

// Analyze runs the full pharmacogenomic analysis on an uploaded VCF file and
// a comma-separated drug list.
func (h *Handler) Analyze(c *gin.Context) {
	h.analyze(c, c.PostForm("skip_llm") == "true")
}

// AnalyzeBatch is the screening variant of Analyze: narrative generation is
// always skipped.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	h.analyze(c, true)
}

func (h *Handler) analyze(c *gin.Context, skipNarrative bool) {
	start := time.Now()

	fileHeader, err := c.FormFile("vcf_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vcf_file upload is required"})
		return
	}

	if fileHeader.Size > h.cfg.Server.MaxUploadBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("VCF file exceeds maximum size of %d MB", h.cfg.Server.MaxUploadMB),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.cfg.Server.MaxUploadBytes()+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	drugs := splitDrugs(c.PostForm("drugs"))
	if len(drugs) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "at least one drug name must be provided"})
		return
	}

	filename := fileHeader.Filename
	if filename == "" {
		filename = "uploaded.vcf"
	}

	variants, metadata, err := h.parser.Parse(content, filename)
	if err != nil {
		if domain.IsParseError(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "VCF parse error: " + err.Error()})
			return
		}
		h.logger.WithError(err).Error("Unexpected VCF parse failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error during VCF parsing"})
		return
	}

	result := h.analyzer.Analyze(variants, drugs)

	var narrative *domain.NarrativeAnalysis
	if h.narrative != nil && !skipNarrative {
		narrative, err = h.narrative.Generate(c.Request.Context(), variants, result.Phenotypes, result.Assessments, drugs)
		if err != nil {
			// Narrative failure never fails the analysis.
			h.logger.WithError(err).Warn("Narrative generation unavailable")
			narrative = nil
		}
	}

	patientID := c.PostForm("patient_id")

	h.logger.WithFields(logrus.Fields{
		"patient":      orAnon(patientID),
		"variants":     len(variants),
		"drugs":        drugs,
		"overall_risk": result.Overall.Level,
		"elapsed_ms":   time.Since(start).Milliseconds(),
	}).Info("Analysis request complete")

	c.JSON(http.StatusOK, domain.AnalysisResponse{
		Status:           "success",
		PatientID:        patientID,
		Timestamp:        time.Now().UTC(),
		Metadata:         metadata,
		Variants:         variants,
		Phenotypes:       result.Phenotypes,
		Assessments:      result.Assessments,
		Narrative:        narrative,
		Overall:          result.Overall,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	})
}

// splitDrugs normalizes a free-text, comma-separated drug string.
func splitDrugs(raw string) []string {
	var drugs []string
	for _, part := range strings.Split(raw, ",") {
		if d := strings.ToLower(strings.TrimSpace(part)); d != "" {
			drugs = append(drugs, d)
		}
	}
	return drugs
}

func orAnon(patientID string) string {
	if patientID == "" {
		return "anon"
	}
	return patientID
}
