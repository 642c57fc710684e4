package genetics

import (
	"sort"
	"strings"
	"unicode"
)

// GeneID names one locus. It is always the lowercase form of an allele.
type GeneID rune

// GeneOf returns the gene identifier an allele belongs to.
func GeneOf(allele rune) GeneID {
	return GeneID(unicode.ToLower(allele))
}

// String returns the gene identifier as a one-letter string.
func (g GeneID) String() string { return string(rune(g)) }

// Upper returns the uppercase letter used when naming the gene in messages.
func (g GeneID) Upper() string { return string(unicode.ToUpper(rune(g))) }

// GenePair is the parsed form of two consecutive alleles of a genotype.
// Second is zero when the genotype has an odd trailing allele.
type GenePair struct {
	Gene   GeneID
	First  rune
	Second rune
}

// String renders the pair back to its two-letter spelling.
func (p GenePair) String() string {
	if p.Second == 0 {
		return string(p.First)
	}
	return string([]rune{p.First, p.Second})
}

// SameGene reports whether both alleles name the same locus.
func (p GenePair) SameGene() bool {
	return p.Second != 0 && GeneOf(p.First) == GeneOf(p.Second)
}

// Alleles returns the distinct alleles of the pair in first-seen order.
func (p GenePair) Alleles() []rune {
	if p.Second == 0 || p.Second == p.First {
		return []rune{p.First}
	}
	return []rune{p.First, p.Second}
}

// Pairs splits a genotype into consecutive two-allele records. It does not
// normalize; pass the output of Normalize when a canonical order matters.
func Pairs(genotype string) []GenePair {
	alleles := []rune(genotype)
	pairs := make([]GenePair, 0, (len(alleles)+1)/2)
	for i := 0; i < len(alleles); i += 2 {
		pair := GenePair{Gene: GeneOf(alleles[i]), First: alleles[i]}
		if i+1 < len(alleles) {
			pair.Second = alleles[i+1]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// JoinPairs is the inverse of Pairs.
func JoinPairs(pairs []GenePair) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.String())
	}
	return b.String()
}

// Genes returns the gene identifiers of a normalized genotype in order,
// without duplicates.
func Genes(genotype string) []GeneID {
	var out []GeneID
	seen := make(map[GeneID]struct{})
	for _, p := range Pairs(genotype) {
		if _, ok := seen[p.Gene]; ok {
			continue
		}
		seen[p.Gene] = struct{}{}
		out = append(out, p.Gene)
	}
	return out
}

// Normalize canonicalizes a genotype string. Whitespace is dropped, alleles
// are grouped by gene, each group is ordered uppercase first and groups are
// concatenated by ascending gene identifier. Two spellings of the same
// biological genotype always normalize to the same string.
//
// Normalize never fails. Input that is not a valid genotype still produces
// a deterministic string, but only Validate can say whether it means
// anything.
func Normalize(raw string) string {
	groups := make(map[GeneID][]rune)
	var genes []GeneID
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		gene := GeneOf(r)
		if _, ok := groups[gene]; !ok {
			genes = append(genes, gene)
		}
		groups[gene] = append(groups[gene], r)
	}
	sort.Slice(genes, func(i, j int) bool { return genes[i] < genes[j] })

	var b strings.Builder
	for _, gene := range genes {
		alleles := groups[gene]
		// Uppercase sorts before lowercase for the same letter.
		sort.Slice(alleles, func(i, j int) bool { return alleles[i] < alleles[j] })
		b.WriteString(string(alleles))
	}
	return b.String()
}

func stripSpace(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}
