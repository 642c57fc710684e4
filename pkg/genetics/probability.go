package genetics

import (
	"sort"
	"strconv"
	"strings"
)

// Distribution counts how often each distinct key appears in an offspring
// set. Keys are normalized genotypes or phenotype labels.
type Distribution struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Entry is one row of a rendered distribution.
type Entry struct {
	Key        string `json:"key"`
	Count      int    `json:"count"`
	Total      int    `json:"total"`
	Percentage string `json:"percentage"`
}

// Aggregate counts genotypes. Total is the number of offspring, so the
// counts always sum to Total.
func Aggregate(offspring []string) Distribution {
	d := Distribution{Counts: make(map[string]int), Total: len(offspring)}
	for _, g := range offspring {
		d.Counts[g]++
	}
	return d
}

// AggregatePhenotypes resolves each genotype through cfg and counts the
// resulting phenotype labels.
func AggregatePhenotypes(offspring []string, cfg InheritanceConfig) Distribution {
	labels := make([]string, len(offspring))
	for i, g := range offspring {
		labels[i] = Phenotype(g, cfg)
	}
	return Aggregate(labels)
}

// Distinct returns the number of different keys observed.
func (d Distribution) Distinct() int { return len(d.Counts) }

// ShowPhenotypes reports whether a phenotype distribution is worth
// displaying, i.e. whether the cross produces more than one phenotype.
func (d Distribution) ShowPhenotypes() bool { return d.Distinct() > 1 }

// Frequency returns the count/total pair for key.
func (d Distribution) Frequency(key string) Frequency {
	return Frequency{Count: d.Counts[key], Total: d.Total}
}

// Entries lists the distribution sorted by key.
func (d Distribution) Entries() []Entry {
	keys := make([]string, 0, len(d.Counts))
	for k := range d.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		c := d.Counts[k]
		out[i] = Entry{Key: k, Count: c, Total: d.Total, Percentage: FormatPercentage(c, d.Total)}
	}
	return out
}

// FormatPercentage renders count/total*100 with at most two decimals,
// dropping a trailing ".00". A zero total renders as "0".
func FormatPercentage(count, total int) string {
	if total == 0 {
		return "0"
	}
	s := strconv.FormatFloat(float64(count)/float64(total)*100, 'f', 2, 64)
	return strings.TrimSuffix(s, ".00")
}
