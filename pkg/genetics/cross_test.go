package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGametes(t *testing.T) {
	assert.Equal(t, []string{"A", "a"}, Gametes("Aa"))
	assert.Equal(t, []string{"A"}, Gametes("AA"))
	assert.Equal(t, []string{"AB", "Ab", "aB", "ab"}, Gametes("AaBb"))
	assert.Equal(t, []string{"AB", "aB"}, Gametes("AaBB"))
	assert.Len(t, Gametes("AaBbCc"), 8)
	assert.Nil(t, Gametes(""))

	assert.Equal(t, 8, GameteCount("AaBbCc"))
	assert.Equal(t, 2, GameteCount("AaBBcc"))
	assert.Equal(t, 0, GameteCount(""))
}

func TestScenarioAMonohybrid(t *testing.T) {
	offspring := Offspring("Aa", "Aa")
	assert.Equal(t, []string{"AA", "Aa", "Aa", "aa"}, offspring)

	d := Aggregate(offspring)
	assert.Equal(t, 4, d.Total)
	assert.Equal(t, map[string]int{"AA": 1, "Aa": 2, "aa": 1}, d.Counts)

	entries := d.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Key: "AA", Count: 1, Total: 4, Percentage: "25"}, entries[0])
	assert.Equal(t, Entry{Key: "Aa", Count: 2, Total: 4, Percentage: "50"}, entries[1])
	assert.Equal(t, Entry{Key: "aa", Count: 1, Total: 4, Percentage: "25"}, entries[2])
}

func TestScenarioBDihybrid(t *testing.T) {
	offspring := Offspring("AaBb", "AaBb")
	require.Len(t, offspring, 16)

	d := Aggregate(offspring)
	assert.Equal(t, 4, d.Counts["AaBb"])
	assert.Equal(t, "25", FormatPercentage(d.Counts["AaBb"], d.Total))

	ph := AggregatePhenotypes(offspring, InheritanceConfig{})
	assert.Equal(t, 16, ph.Total)
	assert.Equal(t, map[string]int{
		"Dominante / Dominante": 9,
		"Dominante / Recessivo": 3,
		"Recessivo / Dominante": 3,
		"Recessivo / Recessivo": 1,
	}, ph.Counts)
	assert.True(t, ph.ShowPhenotypes())
}

func TestCountConservation(t *testing.T) {
	parents := [][2]string{
		{"Aa", "Aa"},
		{"AA", "aa"},
		{"AaBb", "aabb"},
		{"AaBBcc", "AaBbCc"},
		{"AaBbCcDd", "AaBbCcDd"},
	}
	for _, p := range parents {
		d := Aggregate(Offspring(p[0], p[1]))
		sum := 0
		for _, c := range d.Counts {
			sum += c
		}
		assert.Equal(t, d.Total, sum, "%v", p)
		assert.Equal(t, GameteCount(p[0])*GameteCount(p[1]), d.Total, "%v", p)
	}
}

func TestSquare(t *testing.T) {
	sq := Square("Aa", "aa")
	assert.Equal(t, []string{"A", "a"}, sq.Rows)
	assert.Equal(t, []string{"a"}, sq.Columns)
	require.Len(t, sq.Cells, 2)
	assert.Equal(t, Cell{Genotype: "Aa", Zygosity: ZygosityHeterozygous}, sq.Cells[0][0])
	assert.Equal(t, Cell{Genotype: "aa", Zygosity: ZygosityRecessive}, sq.Cells[1][0])
	assert.Equal(t, Offspring("Aa", "aa"), sq.Offspring())

	assert.Equal(t, ZygosityDominant, ZygosityOf("AAbb"))
	assert.Equal(t, ZygosityHeterozygous, ZygosityOf(""))
}

func TestSinglePhenotypeHidden(t *testing.T) {
	ph := AggregatePhenotypes(Offspring("AA", "aa"), nil)
	assert.Equal(t, 1, ph.Distinct())
	assert.False(t, ph.ShowPhenotypes())
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "25", FormatPercentage(1, 4))
	assert.Equal(t, "33.33", FormatPercentage(1, 3))
	assert.Equal(t, "56.25", FormatPercentage(9, 16))
	assert.Equal(t, "0", FormatPercentage(0, 0))
}
