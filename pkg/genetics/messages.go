package genetics

import "fmt"

// MessageCode identifies a user-facing message independently of its wording.
// Translators key their catalogs on these codes.
type MessageCode string

const (
	CodeLettersOnly     MessageCode = "genotype.letters_only"
	CodeMonoLength      MessageCode = "genotype.mono.length"
	CodeDiLength        MessageCode = "genotype.di.length"
	CodeDiGeneCount     MessageCode = "genotype.di.gene_count"
	CodePolyOddLength   MessageCode = "genotype.poly.odd_length"
	CodePairMismatch    MessageCode = "genotype.pair.mismatch"
	CodeDuplicateGene   MessageCode = "genotype.gene.duplicate"
	CodeUnknownArity    MessageCode = "genotype.arity.unknown"
	CodeParentGeneCount MessageCode = "parents.gene_count"
	CodeParentGeneMiss  MessageCode = "parents.gene_missing"
	CodeDesiredGenes    MessageCode = "probability.gene_count"
	CodeImpossible      MessageCode = "probability.impossible"
	CodeSelectionCount  MessageCode = "probability.selection_count"
	CodeUnknownTarget   MessageCode = "probability.unknown_target"
	CodeTooManyGenes    MessageCode = "probability.too_many_genes"
)

// DefaultMessages holds the English templates rendered into Message fields.
// Arguments are always strings and substituted positionally.
var DefaultMessages = map[MessageCode]string{
	CodeLettersOnly:     "Genotype may only contain allele letters; found '%s'.",
	CodeMonoLength:      "Invalid monohybrid genotype: expected 2 alleles, got %s. Use one allele pair (e.g. AA, Aa).",
	CodeDiLength:        "Invalid dihybrid genotype: expected 4 alleles, got %s. Use two allele pairs (e.g. AaBb).",
	CodeDiGeneCount:     "A dihybrid genotype must contain exactly 2 different genes.",
	CodePolyOddLength:   "Genotype must have an even number of alleles; got %s.",
	CodePairMismatch:    "Alleles '%s' do not form a pair for the same gene.",
	CodeDuplicateGene:   "Gene '%s' is duplicated.",
	CodeUnknownArity:    "Unknown cross type '%s'.",
	CodeParentGeneCount: "Parents must have the same number of genes.",
	CodeParentGeneMiss:  "Both parents must carry gene '%s'.",
	CodeDesiredGenes:    "The desired genotype must have the same number of genes as the parents (expected %s, got %s).",
	CodeImpossible:      "Genotype '%s' is not possible in this cross.",
	CodeSelectionCount:  "Select one phenotype per gene (expected %s, got %s).",
	CodeUnknownTarget:   "Unknown phenotype '%s' for gene '%s'.",
	CodeTooManyGenes:    "Exact probabilities support at most %s genes; got %s.",
}

// RenderMessage formats a code with its arguments using DefaultMessages.
func RenderMessage(code MessageCode, args ...string) string {
	tmpl, ok := DefaultMessages[code]
	if !ok {
		return string(code)
	}
	if len(args) == 0 {
		return tmpl
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return fmt.Sprintf(tmpl, vals...)
}
