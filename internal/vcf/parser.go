// Package vcf extracts pharmacogenomically relevant variant calls from
// VCF v4.x text. It is deliberately not a full VCF implementation: one sample
// column at most, first ALT allele only, no structural variants.
package vcf

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-server/internal/domain"
)

// infoTags lists the gene annotation tags scanned when no explicit GENE tag
// is present, in priority order.
var infoTags = []string{"PHARMVAR_GENE", "PGX_GENE", "ANN"}

// Parser extracts pharmacogenomic variants from raw VCF content.
type Parser struct {
	logger *logrus.Logger
}

// NewParser creates a new VCF parser.
func NewParser(logger *logrus.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads raw VCF file content and returns the pharmacogenomically
// relevant variants plus file metadata.
//
// Fatal failures return a *domain.ParseError: EMPTY_INPUT when the file has
// no lines, MISSING_HEADER when no #CHROM column header exists, and
// TOO_MANY_MALFORMED_LINES when more than half of the data lines are
// unparseable. Individually malformed lines are logged and skipped.
func (p *Parser) Parse(content []byte, filename string) ([]domain.Variant, domain.FileMetadata, error) {
	text := decode(content)
	if text == "" {
		return nil, domain.FileMetadata{}, domain.NewParseError(domain.ErrCodeEmptyInput, "empty VCF file provided")
	}
	lines := splitLines(text)

	version := "unknown"
	headerFound := false
	hasSample := false
	var dataLines []string

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "##fileformat=VCFv"):
			version = strings.TrimSpace(line[strings.LastIndex(line, "VCFv")+len("VCFv"):])
		case strings.HasPrefix(line, "#CHROM"):
			cols := strings.Split(strings.TrimLeft(line, "#"), "\t")
			headerFound = true
			hasSample = len(cols) > 9
		case !strings.HasPrefix(line, "#"):
			dataLines = append(dataLines, line)
		}
	}

	if !headerFound {
		return nil, domain.FileMetadata{}, domain.NewParseError(domain.ErrCodeMissingHeader, "invalid VCF: missing #CHROM header line")
	}
	if !strings.HasPrefix(version, "4") {
		p.logger.WithField("vcf_version", version).Warn("VCF version outside the supported v4.x range")
	}

	total := 0
	parseErrors := 0
	var variants []domain.Variant

	for lineno, raw := range dataLines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		total++

		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			parseErrors++
			p.logger.WithFields(logrus.Fields{
				"line":    lineno + 1,
				"columns": len(fields),
			}).Warn("Insufficient columns, skipping line")
			continue
		}

		chrom := strings.TrimPrefix(fields[0], "chr")
		pos, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			parseErrors++
			p.logger.WithFields(logrus.Fields{
				"line":     lineno + 1,
				"position": fields[1],
			}).Warn("Unparseable position, skipping line")
			continue
		}

		rsid := ""
		if fields[2] != "." {
			rsid = fields[2]
		}
		ref := fields[3]
		alt, _, _ := strings.Cut(fields[4], ",")
		info := parseInfo(fields[7])

		zygosity := domain.ZygosityUnknown
		if hasSample && len(fields) > 9 {
			zygosity = determineZygosity(fields[9])
		}

		star := info["STAR"]
		if star == "" {
			star = info["star"]
		}
		if star == "" {
			star = info["HAPLOTYPE"]
		}

		gene := resolveGene(info, rsid)
		if gene == "" || !IsPGxGene(gene) {
			continue
		}

		variants = append(variants, domain.Variant{
			Gene:       gene,
			RSID:       rsid,
			StarAllele: star,
			Chromosome: chrom,
			Position:   pos,
			RefAllele:  ref,
			AltAllele:  alt,
			Zygosity:   zygosity,
			Annotations: domain.Annotations{
				Gene:            info["GENE"],
				Star:            info["STAR"],
				RS:              info["RS"],
				AlleleFrequency: info["AF"],
				ReadDepth:       info["DP"],
				Haplotype:       info["HAPLOTYPE"],
			},
		})
	}

	if total > 0 && parseErrors*2 > total {
		return nil, domain.FileMetadata{}, domain.NewParseError(domain.ErrCodeTooManyMalformed,
			"too many malformed lines (%d/%d): the file may not be a valid VCF", parseErrors, total)
	}

	metadata := domain.FileMetadata{
		FileName:         filename,
		VCFVersion:       version,
		TotalVariants:    total,
		PGxVariantsFound: len(variants),
	}

	p.logger.WithFields(logrus.Fields{
		"file":           filename,
		"total_variants": total,
		"pgx_variants":   len(variants),
	}).Info("VCF parse complete")

	return variants, metadata, nil
}

// decode interprets raw bytes as UTF-8, falling back to Latin-1. Latin-1
// decoding is total, so decoding never fails.
func decode(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// parseInfo parses the INFO column into key/value pairs. Entries without '='
// are boolean flags recorded as the literal "true".
func parseInfo(s string) map[string]string {
	result := make(map[string]string)
	if s == "." || s == "" {
		return result
	}
	for _, token := range strings.Split(s, ";") {
		if k, v, found := strings.Cut(token, "="); found {
			result[strings.TrimSpace(k)] = strings.TrimSpace(v)
		} else if t := strings.TrimSpace(token); t != "" {
			result[t] = "true"
		}
	}
	return result
}

// determineZygosity classifies the first colon-delimited subfield of the
// genotype column. Single-allele, missing or malformed genotypes are unknown.
func determineZygosity(sample string) domain.Zygosity {
	gt, _, _ := strings.Cut(sample, ":")
	alleles := strings.FieldsFunc(gt, func(r rune) bool {
		return r == '/' || r == '|'
	})
	if len(alleles) < 2 {
		return domain.ZygosityUnknown
	}
	if alleles[0] == alleles[1] {
		if alleles[0] != "0" {
			return domain.HomozygousAlt
		}
		return domain.HomozygousRef
	}
	return domain.Heterozygous
}

// resolveGene resolves the gene symbol for a data line. Priority: explicit
// GENE tag, then annotation tags containing a whitelisted symbol, then the
// fixed rsID table.
func resolveGene(info map[string]string, rsid string) string {
	gene := info["GENE"]
	if gene == "" {
		gene = info["gene"]
	}
	if gene != "" {
		return strings.ToUpper(gene)
	}
	for _, tag := range infoTags {
		val, ok := info[tag]
		if !ok {
			continue
		}
		upper := strings.ToUpper(val)
		for _, g := range SupportedGenes() {
			if strings.Contains(upper, g) {
				return g
			}
		}
	}
	if rsid != "" {
		return rsidToGene[strings.ToLower(rsid)]
	}
	return ""
}
