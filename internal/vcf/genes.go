package vcf

import "sort"

// pgxGenes is the fixed whitelist of pharmacogenes this service reports on.
var pgxGenes = map[string]struct{}{
	"CYP2D6":  {},
	"CYP2C19": {},
	"CYP2C9":  {},
	"TPMT":    {},
	"DPYD":    {},
	"UGT1A1":  {},
}

// rsidToGene maps well-characterized PGx rsIDs to their gene, used as a
// fallback when a data line carries no gene annotation. Keys are lowercase.
var rsidToGene = map[string]string{
	"rs3892097":  "CYP2D6",
	"rs1065852":  "CYP2D6",
	"rs5030655":  "CYP2D6",
	"rs16947":    "CYP2D6",
	"rs28371706": "CYP2D6",
	"rs28371725": "CYP2D6",
	"rs4244285":  "CYP2C19",
	"rs4986893":  "CYP2C19",
	"rs28399504": "CYP2C19",
	"rs56337013": "CYP2C19",
	"rs72552267": "CYP2C19",
	"rs12248560": "CYP2C19",
	"rs1799853":  "CYP2C9",
	"rs1057910":  "CYP2C9",
	"rs28371686": "CYP2C9",
	"rs7900194":  "CYP2C9",
	"rs2256871":  "CYP2C9",
	"rs1800460":  "TPMT",
	"rs1142345":  "TPMT",
	"rs1800462":  "TPMT",
	"rs1051334":  "TPMT",
	"rs3918290":  "DPYD",
	"rs55886062": "DPYD",
	"rs67376798": "DPYD",
	"rs75017182": "DPYD",
	"rs4148323":  "UGT1A1",
	"rs35350960": "UGT1A1",
	"rs887829":   "UGT1A1",
	"rs8175347":  "UGT1A1",
}

// IsPGxGene reports whether symbol is one of the supported pharmacogenes.
func IsPGxGene(symbol string) bool {
	_, ok := pgxGenes[symbol]
	return ok
}

// SupportedGenes returns the gene whitelist in sorted order.
func SupportedGenes() []string {
	genes := make([]string, 0, len(pgxGenes))
	for g := range pgxGenes {
		genes = append(genes, g)
	}
	sort.Strings(genes)
	return genes
}
