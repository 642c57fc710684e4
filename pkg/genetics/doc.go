// Package genetics implements the Mendelian cross engine: genotype
// normalization and validation, gamete enumeration, Punnett-square
// combination, frequency aggregation, phenotype resolution under configurable
// dominance models and exact compound probabilities for poly-hybrid crosses.
//
// A genotype is written as a string of allele letters, two per gene. The
// gene identifier is the lowercase form of either allele, so "Aa" is one
// heterozygous gene a and "AaBB" is heterozygous at a and homozygous
// dominant at b. Normalize produces the canonical spelling used for every
// equality test in the package:
//
//	genetics.Normalize("bBaA") // "AaBb"
//
// Every function in this package is pure and synchronous. Malformed input is
// never a panic: Normalize is best effort, Validate reports structural
// problems as a Validation value, and the compound calculators return an
// invalid ProbabilityResult. Callers are expected to run Validate before
// feeding user input into Gametes, Offspring or BuildCrossRecords.
//
// The inheritance configuration (InheritanceConfig) is an explicit value
// owned by the caller. Nothing here keeps package-level mutable state.
package genetics
