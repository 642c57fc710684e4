package genetics

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// InheritanceType is the dominance model governing how a heterozygous pair
// is expressed.
type InheritanceType string

const (
	Complete    InheritanceType = "complete"
	Incomplete  InheritanceType = "incomplete"
	Codominance InheritanceType = "codominance"
)

// ParseInheritanceType accepts the three model names in any case.
func ParseInheritanceType(s string) (InheritanceType, bool) {
	switch InheritanceType(strings.ToLower(strings.TrimSpace(s))) {
	case Complete:
		return Complete, true
	case Incomplete:
		return Incomplete, true
	case Codominance:
		return Codominance, true
	}
	return "", false
}

// Labels are the display texts for the three phenotype classes of a gene.
// Codominant heterozygotes share the Intermediate slot.
type Labels struct {
	Dominant     string `json:"dominant"`
	Intermediate string `json:"intermediate"`
	Recessive    string `json:"recessive"`
}

// DefaultLabels are used for genes the caller never configured.
var DefaultLabels = Labels{
	Dominant:     "Dominante",
	Intermediate: "Intermediário",
	Recessive:    "Recessivo",
}

// GeneInheritance configures one gene.
type GeneInheritance struct {
	Type   InheritanceType `json:"type"`
	Labels Labels          `json:"phenotypes"`
}

// DefaultGeneInheritance is complete dominance with DefaultLabels.
func DefaultGeneInheritance() GeneInheritance {
	return GeneInheritance{Type: Complete, Labels: DefaultLabels}
}

// InheritanceConfig maps genes to their dominance model. It belongs to a
// session; resolvers only read it.
type InheritanceConfig map[GeneID]GeneInheritance

// Lookup returns the configuration for gene, falling back to complete
// dominance with default labels. Blank labels fall back individually.
func (c InheritanceConfig) Lookup(gene GeneID) GeneInheritance {
	gi, ok := c[gene]
	if !ok {
		return DefaultGeneInheritance()
	}
	if gi.Type == "" {
		gi.Type = Complete
	}
	if gi.Labels.Dominant == "" {
		gi.Labels.Dominant = DefaultLabels.Dominant
	}
	if gi.Labels.Intermediate == "" {
		gi.Labels.Intermediate = DefaultLabels.Intermediate
	}
	if gi.Labels.Recessive == "" {
		gi.Labels.Recessive = DefaultLabels.Recessive
	}
	return gi
}

// Ensure adds default entries for genes seen for the first time and reports
// whether anything was added. Existing entries are left untouched.
func (c InheritanceConfig) Ensure(genes ...GeneID) bool {
	added := false
	for _, g := range genes {
		if _, ok := c[g]; ok {
			continue
		}
		c[g] = DefaultGeneInheritance()
		added = true
	}
	return added
}

// Set replaces the entry for gene. Blank fields keep their current value.
func (c InheritanceConfig) Set(gene GeneID, gi GeneInheritance) {
	cur := c.Lookup(gene)
	if gi.Type != "" {
		cur.Type = gi.Type
	}
	if gi.Labels.Dominant != "" {
		cur.Labels.Dominant = gi.Labels.Dominant
	}
	if gi.Labels.Intermediate != "" {
		cur.Labels.Intermediate = gi.Labels.Intermediate
	}
	if gi.Labels.Recessive != "" {
		cur.Labels.Recessive = gi.Labels.Recessive
	}
	c[gene] = cur
}

// Clone returns an independent copy.
func (c InheritanceConfig) Clone() InheritanceConfig {
	if c == nil {
		return nil
	}
	out := make(InheritanceConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// PairClass is the zygosity of a single gene pair.
type PairClass int

const (
	HomozygousRecessive PairClass = iota
	Heterozygous
	HomozygousDominant
)

// Classify applies the per-gene rule: differing alleles are heterozygous,
// equal uppercase alleles are homozygous dominant, anything else is
// homozygous recessive.
func Classify(p GenePair) PairClass {
	switch {
	case p.First != p.Second:
		return Heterozygous
	case unicode.IsUpper(p.First):
		return HomozygousDominant
	default:
		return HomozygousRecessive
	}
}

// ResolvePair returns the phenotype label of one pair under gi.
func ResolvePair(p GenePair, gi GeneInheritance) string {
	class := Classify(p)
	if class == Heterozygous && (gi.Type == Incomplete || gi.Type == Codominance) {
		return gi.Labels.Intermediate
	}
	if class == HomozygousDominant || class == Heterozygous {
		return gi.Labels.Dominant
	}
	return gi.Labels.Recessive
}

// Phenotype resolves every pair of a normalized genotype and joins the
// labels with " / " in pair order.
func Phenotype(genotype string, cfg InheritanceConfig) string {
	pairs := Pairs(genotype)
	labels := make([]string, len(pairs))
	for i, p := range pairs {
		labels[i] = ResolvePair(p, cfg.Lookup(p.Gene))
	}
	return strings.Join(labels, " / ")
}

// MarshalText encodes the gene as its letter so configurations serialize
// as {"a": {...}}.
func (g GeneID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText accepts a single letter in either case.
func (g *GeneID) UnmarshalText(b []byte) error {
	r, size := utf8.DecodeRune(b)
	if size == 0 || size != len(b) || !unicode.IsLetter(r) {
		return fmt.Errorf("invalid gene identifier %q", string(b))
	}
	*g = GeneOf(r)
	return nil
}
