package genetics

// Gametes enumerates the distinct gametes a genotype can produce under
// independent assortment. The genotype is read as consecutive allele pairs,
// so it should already be normalized.
//
// Expansion starts from a single empty gamete and extends every partial
// gamete with each distinct allele of the next pair. A homozygous pair adds
// one allele rather than two identical branches, so "AaBB" yields
// ["AB", "aB"], not four gametes.
func Gametes(genotype string) []string {
	pairs := Pairs(genotype)
	if len(pairs) == 0 {
		return nil
	}
	partial := [][]rune{{}}
	for _, pair := range pairs {
		alleles := pair.Alleles()
		next := make([][]rune, 0, len(partial)*len(alleles))
		for _, prefix := range partial {
			for _, allele := range alleles {
				g := make([]rune, len(prefix), len(prefix)+1)
				copy(g, prefix)
				next = append(next, append(g, allele))
			}
		}
		partial = next
	}
	out := make([]string, len(partial))
	for i, g := range partial {
		out[i] = string(g)
	}
	return out
}

// GameteCount returns how many distinct gametes Gametes would produce
// without building them.
func GameteCount(genotype string) int {
	pairs := Pairs(genotype)
	if len(pairs) == 0 {
		return 0
	}
	n := 1
	for _, p := range pairs {
		n *= len(p.Alleles())
	}
	return n
}
