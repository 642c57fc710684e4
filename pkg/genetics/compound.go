package genetics

import (
	"sort"
	"strconv"
	"strings"
)

// Frequency is an exact count out of a total.
type Frequency struct {
	Count int `json:"count"`
	Total int `json:"total"`
}

// Fraction returns the frequency as an unreduced fraction.
func (f Frequency) Fraction() Fraction {
	return Fraction{Num: int64(f.Count), Den: int64(f.Total)}
}

// String renders "count/total".
func (f Frequency) String() string {
	return strconv.Itoa(f.Count) + "/" + strconv.Itoa(f.Total)
}

// CrossRecord is the independent single-gene cross that a poly-hybrid cross
// decomposes into. Probabilities is keyed by normalized genotype pair.
type CrossRecord struct {
	Index         int                  `json:"index"`
	Parent1Pair   string               `json:"parent1"`
	Parent2Pair   string               `json:"parent2"`
	Gene          GeneID               `json:"gene"`
	Probabilities map[string]Frequency `json:"probabilities"`
}

// Label is the list caption of a record, e.g. "1. Aa × Aa".
func (r CrossRecord) Label() string {
	return strconv.Itoa(r.Index+1) + ". " + r.Parent1Pair + " × " + r.Parent2Pair
}

// Square returns the Punnett square of the record's single-gene cross.
func (r CrossRecord) Square() PunnettSquare {
	return Square(r.Parent1Pair, r.Parent2Pair)
}

// Distribution rebuilds the record's genotype distribution.
func (r CrossRecord) Distribution() Distribution {
	d := Distribution{Counts: make(map[string]int, len(r.Probabilities))}
	for g, f := range r.Probabilities {
		d.Counts[g] = f.Count
		d.Total = f.Total
	}
	return d
}

// BuildCrossRecords decomposes two compatible normalized parents into one
// record per gene, pairing the parents' allele pairs by position.
func BuildCrossRecords(parent1, parent2 string) []CrossRecord {
	p1 := Pairs(parent1)
	p2 := Pairs(parent2)
	n := len(p1)
	if len(p2) < n {
		n = len(p2)
	}
	records := make([]CrossRecord, n)
	for i := 0; i < n; i++ {
		a, b := p1[i].String(), p2[i].String()
		d := Aggregate(Offspring(a, b))
		probs := make(map[string]Frequency, len(d.Counts))
		for g := range d.Counts {
			probs[g] = d.Frequency(g)
		}
		records[i] = CrossRecord{
			Index:         i,
			Parent1Pair:   a,
			Parent2Pair:   b,
			Gene:          p1[i].Gene,
			Probabilities: probs,
		}
	}
	return records
}

func findRecord(records []CrossRecord, gene GeneID) (CrossRecord, bool) {
	for _, r := range records {
		if r.Gene == gene {
			return r, true
		}
	}
	return CrossRecord{}, false
}

// MaxCompoundGenes bounds compound queries so the unreduced denominator,
// at most 4 per gene, fits in an int64.
const MaxCompoundGenes = 31

func checkGeneBound(records []CrossRecord) (ProbabilityResult, bool) {
	if len(records) > MaxCompoundGenes {
		return invalidResult(CodeTooManyGenes, strconv.Itoa(MaxCompoundGenes), strconv.Itoa(len(records))), false
	}
	return ProbabilityResult{}, true
}

// Fraction is an exact rational. A zero denominator is the explicit
// undefined value.
type Fraction struct {
	Num int64 `json:"numerator"`
	Den int64 `json:"denominator"`
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Reduce divides both terms by their greatest common divisor. Undefined and
// zero-over-zero fractions are returned unchanged.
func (f Fraction) Reduce() Fraction {
	if f.Den == 0 {
		return f
	}
	d := gcd(f.Num, f.Den)
	if d == 0 {
		return f
	}
	return Fraction{Num: f.Num / d, Den: f.Den / d}
}

// Mul multiplies without reducing.
func (f Fraction) Mul(o Fraction) Fraction {
	return Fraction{Num: f.Num * o.Num, Den: f.Den * o.Den}
}

// Undefined reports a zero denominator.
func (f Fraction) Undefined() bool { return f.Den == 0 }

func (f Fraction) String() string {
	if f.Den == 0 {
		return "undefined"
	}
	return strconv.FormatInt(f.Num, 10) + "/" + strconv.FormatInt(f.Den, 10)
}

// Float64 returns the decimal value, or 0 when undefined.
func (f Fraction) Float64() float64 {
	if f.Den == 0 {
		return 0
	}
	return float64(f.Num) / float64(f.Den)
}

// PhenotypeTarget is the phenotype class requested for one gene.
type PhenotypeTarget string

const (
	TargetDominant     PhenotypeTarget = "dominant"
	TargetRecessive    PhenotypeTarget = "recessive"
	TargetIntermediate PhenotypeTarget = "intermediate"
)

// ParsePhenotypeTarget accepts the three keywords in any case.
func ParsePhenotypeTarget(s string) (PhenotypeTarget, bool) {
	switch PhenotypeTarget(strings.ToLower(strings.TrimSpace(s))) {
	case TargetDominant:
		return TargetDominant, true
	case TargetRecessive:
		return TargetRecessive, true
	case TargetIntermediate:
		return TargetIntermediate, true
	}
	return "", false
}

// Matches reports whether a pair of the given class counts toward target
// under the inheritance type t.
func (target PhenotypeTarget) Matches(class PairClass, t InheritanceType) bool {
	switch target {
	case TargetDominant:
		return class == HomozygousDominant || (class == Heterozygous && t == Complete)
	case TargetRecessive:
		return class == HomozygousRecessive
	case TargetIntermediate:
		return class == Heterozygous && (t == Incomplete || t == Codominance)
	}
	return false
}

// ProbabilityResult is the outcome of a compound query. Invalid results carry
// only the message fields.
type ProbabilityResult struct {
	Valid         bool        `json:"valid"`
	Code          MessageCode `json:"code,omitempty"`
	Args          []string    `json:"args,omitempty"`
	Message       string      `json:"message,omitempty"`
	Target        string      `json:"target,omitempty"`
	Steps         []string    `json:"steps,omitempty"`
	FractionSteps []string    `json:"fractionSteps,omitempty"`
	Fraction      Fraction    `json:"fraction"`
	Raw           Fraction    `json:"raw"`
	Probability   float64     `json:"probability"`
	Percentage    string      `json:"percentage,omitempty"`
}

// Simplified renders the reduced fraction.
func (r ProbabilityResult) Simplified() string { return r.Fraction.String() }

func invalidResult(code MessageCode, args ...string) ProbabilityResult {
	return ProbabilityResult{Code: code, Args: args, Message: RenderMessage(code, args...)}
}

// product accumulates a decimal running product and an exact integer
// product side by side.
type product struct {
	decimal  float64
	exact    Fraction
	steps    []string
	fraction []string
}

func newProduct() *product {
	return &product{decimal: 1, exact: Fraction{Num: 1, Den: 1}}
}

func (p *product) multiply(step string, f Frequency) {
	if f.Total == 0 {
		p.decimal = 0
	} else {
		p.decimal *= float64(f.Count) / float64(f.Total)
	}
	p.exact = p.exact.Mul(f.Fraction())
	p.steps = append(p.steps, step)
	p.fraction = append(p.fraction, f.String())
}

func (p *product) result(target string) ProbabilityResult {
	return ProbabilityResult{
		Valid:         true,
		Target:        target,
		Steps:         p.steps,
		FractionSteps: p.fraction,
		Fraction:      p.exact.Reduce(),
		Raw:           p.exact,
		Probability:   p.decimal,
		Percentage:    strconv.FormatFloat(p.decimal*100, 'f', 4, 64),
	}
}

// GenotypeProbability computes the probability of a fully specified
// multi-gene genotype as the product of each gene's independent frequency.
// The desired genotype should already pass Validate with Poly.
func GenotypeProbability(desired string, records []CrossRecord) ProbabilityResult {
	if res, ok := checkGeneBound(records); !ok {
		return res
	}
	normalized := Normalize(desired)
	pairs := Pairs(normalized)
	if len(pairs) != len(records) {
		return invalidResult(CodeDesiredGenes, strconv.Itoa(len(records)), strconv.Itoa(len(pairs)))
	}
	acc := newProduct()
	for _, pair := range pairs {
		key := pair.String()
		rec, ok := findRecord(records, pair.Gene)
		if !ok {
			return invalidResult(CodeImpossible, key)
		}
		f, ok := rec.Probabilities[key]
		if !ok {
			return invalidResult(CodeImpossible, key)
		}
		acc.multiply("P("+key+")", f)
	}
	return acc.result(normalized)
}

// PhenotypeProbability computes the probability that an offspring shows the
// selected phenotype class for every gene. Selections are matched to records
// by position.
func PhenotypeProbability(selections []PhenotypeTarget, records []CrossRecord, cfg InheritanceConfig) ProbabilityResult {
	if res, ok := checkGeneBound(records); !ok {
		return res
	}
	if len(selections) != len(records) {
		return invalidResult(CodeSelectionCount, strconv.Itoa(len(records)), strconv.Itoa(len(selections)))
	}
	acc := newProduct()
	targets := make([]string, len(records))
	for i, rec := range records {
		target, ok := ParsePhenotypeTarget(string(selections[i]))
		if !ok {
			return invalidResult(CodeUnknownTarget, string(selections[i]), rec.Gene.Upper())
		}
		gi := cfg.Lookup(rec.Gene)
		matched, total := 0, 0
		for _, key := range sortedKeys(rec.Probabilities) {
			f := rec.Probabilities[key]
			total = f.Total
			pairs := Pairs(key)
			if len(pairs) != 1 {
				continue
			}
			if target.Matches(Classify(pairs[0]), gi.Type) {
				matched += f.Count
			}
		}
		targets[i] = rec.Gene.Upper() + ":" + string(target)
		acc.multiply("P("+targets[i]+")", Frequency{Count: matched, Total: total})
	}
	return acc.result(strings.Join(targets, " "))
}

func sortedKeys(m map[string]Frequency) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
