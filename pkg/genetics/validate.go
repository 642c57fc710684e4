package genetics

import (
	"strconv"
	"strings"
	"unicode"
)

// CrossArity is the number of genes a cross is declared to follow.
type CrossArity string

const (
	Mono CrossArity = "mono"
	Di   CrossArity = "di"
	Poly CrossArity = "poly"
)

// ParseCrossArity accepts "mono", "di" or "poly" in any case.
func ParseCrossArity(s string) (CrossArity, bool) {
	switch CrossArity(strings.ToLower(strings.TrimSpace(s))) {
	case Mono:
		return Mono, true
	case Di:
		return Di, true
	case Poly:
		return Poly, true
	}
	return "", false
}

// Law names the Mendelian law a simple cross of this arity demonstrates.
// Poly crosses are decomposed per gene and have no single law.
func (a CrossArity) Law() string {
	switch a {
	case Mono:
		return "Primeira Lei de Mendel (Segregação)"
	case Di:
		return "Segunda Lei de Mendel (Assortimento Independente)"
	}
	return ""
}

// Validation is the outcome of a structural or compatibility check.
type Validation struct {
	Valid   bool        `json:"valid"`
	Code    MessageCode `json:"code,omitempty"`
	Args    []string    `json:"args,omitempty"`
	Message string      `json:"message,omitempty"`
}

func valid() Validation { return Validation{Valid: true} }

func invalid(code MessageCode, args ...string) Validation {
	return Validation{Code: code, Args: args, Message: RenderMessage(code, args...)}
}

// Validate checks that raw is a well-formed genotype for the cross arity.
// Empty or whitespace-only input is valid: it means nothing was entered yet.
func Validate(raw string, arity CrossArity) Validation {
	cleaned := stripSpace(raw)
	if cleaned == "" {
		return valid()
	}
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			return invalid(CodeLettersOnly, string(r))
		}
	}
	count := len([]rune(cleaned))
	n := strconv.Itoa(count)
	pairs := Pairs(Normalize(cleaned))

	switch arity {
	case Mono:
		if count != 2 {
			return invalid(CodeMonoLength, n)
		}
		if !pairs[0].SameGene() {
			return invalid(CodePairMismatch, pairs[0].String())
		}
	case Di:
		if count != 4 {
			return invalid(CodeDiLength, n)
		}
		// Dihybrid input must already be written as two consecutive pairs.
		for _, p := range Pairs(cleaned) {
			if !p.SameGene() {
				return invalid(CodePairMismatch, p.String())
			}
		}
		if v := checkPairs(pairs); !v.Valid {
			if v.Code == CodeDuplicateGene {
				return invalid(CodeDiGeneCount)
			}
			return v
		}
	case Poly:
		if count%2 != 0 {
			return invalid(CodePolyOddLength, n)
		}
		return checkPairs(pairs)
	default:
		return invalid(CodeUnknownArity, string(arity))
	}
	return valid()
}

// checkPairs requires every pair to be one gene and every gene to appear once.
func checkPairs(pairs []GenePair) Validation {
	seen := make(map[GeneID]struct{}, len(pairs))
	for _, p := range pairs {
		if !p.SameGene() {
			return invalid(CodePairMismatch, p.String())
		}
		if _, dup := seen[p.Gene]; dup {
			return invalid(CodeDuplicateGene, p.Gene.Upper())
		}
		seen[p.Gene] = struct{}{}
	}
	return valid()
}

// ValidateParentCompatibility requires both parents to carry the same set of
// genes. Callers validate each parent first; when either is empty the check
// is skipped and reported valid.
func ValidateParentCompatibility(parent1, parent2 string) Validation {
	p1 := stripSpace(parent1)
	p2 := stripSpace(parent2)
	if p1 == "" || p2 == "" {
		return valid()
	}
	genes1 := Genes(Normalize(p1))
	genes2 := Genes(Normalize(p2))
	if len(genes1) != len(genes2) {
		return invalid(CodeParentGeneCount)
	}
	if missing, ok := firstMissing(genes1, genes2); ok {
		return invalid(CodeParentGeneMiss, missing.Upper())
	}
	if missing, ok := firstMissing(genes2, genes1); ok {
		return invalid(CodeParentGeneMiss, missing.Upper())
	}
	return valid()
}

func firstMissing(from, in []GeneID) (GeneID, bool) {
	set := make(map[GeneID]struct{}, len(in))
	for _, g := range in {
		set[g] = struct{}{}
	}
	for _, g := range from {
		if _, ok := set[g]; !ok {
			return g, true
		}
	}
	return 0, false
}
