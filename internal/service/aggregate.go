package service

import (
	"fmt"
	"strings"

	"github.com/pgx-risk-server/internal/domain"
)

// AggregateRisk reduces all drug risk assessments to a single verdict: the
// maximum severity tier plus a deduplicated, order-preserving list of
// human-readable warning flags.
func AggregateRisk(assessments []domain.DrugRiskAssessment) domain.OverallRisk {
	if len(assessments) == 0 {
		return domain.OverallRisk{Level: domain.SeverityNone, Flags: []string{}}
	}

	level := domain.SeverityNone
	var flags []string
	seen := make(map[string]bool)

	appendFlag := func(flag string) {
		if !seen[flag] {
			seen[flag] = true
			flags = append(flags, flag)
		}
	}

	for _, a := range assessments {
		level = domain.MaxSeverity(level, a.Severity)

		if a.Severity == domain.SeverityHigh || a.Severity == domain.SeverityCritical {
			appendFlag(fmt.Sprintf("%s required for %s (%s: %s risk)",
				a.RiskCategory, a.Drug, a.Gene, a.Severity))
		}
		if a.RiskCategory == domain.RiskToxic || a.RiskCategory == domain.RiskIneffective {
			appendFlag(fmt.Sprintf("%s may be %s — %s variant detected",
				a.Drug, strings.ToLower(string(a.RiskCategory)), a.Gene))
		}
	}

	if flags == nil {
		flags = []string{}
	}
	return domain.OverallRisk{Level: level, Flags: flags}
}
