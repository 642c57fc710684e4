package genetics

import "unicode"

// Combine fuses one gamete from each parent into a normalized offspring
// genotype.
func Combine(gamete1, gamete2 string) string {
	return Normalize(gamete1 + gamete2)
}

// Offspring returns every cell of the Punnett square of two normalized
// parents, parent-1 gametes outer and parent-2 gametes inner. Its length is
// always GameteCount(p1) * GameteCount(p2).
func Offspring(parent1, parent2 string) []string {
	g1 := Gametes(parent1)
	g2 := Gametes(parent2)
	out := make([]string, 0, len(g1)*len(g2))
	for _, a := range g1 {
		for _, b := range g2 {
			out = append(out, Combine(a, b))
		}
	}
	return out
}

// Zygosity classifies a whole genotype for display. A genotype is dominant
// or recessive only when its first pair is homozygous, mirroring how a grid
// cell is shaded by its leading gene.
type Zygosity string

const (
	ZygosityDominant     Zygosity = "dominant"
	ZygosityRecessive    Zygosity = "recessive"
	ZygosityHeterozygous Zygosity = "heterozygous"
)

// ZygosityOf returns the display class of a genotype.
func ZygosityOf(genotype string) Zygosity {
	pairs := Pairs(genotype)
	if len(pairs) == 0 {
		return ZygosityHeterozygous
	}
	p := pairs[0]
	if p.First != p.Second {
		return ZygosityHeterozygous
	}
	if unicode.IsUpper(p.First) {
		return ZygosityDominant
	}
	return ZygosityRecessive
}

// Cell is one offspring entry of a Punnett square.
type Cell struct {
	Genotype string   `json:"genotype"`
	Zygosity Zygosity `json:"zygosity"`
}

// PunnettSquare lays a cross out as a grid: one row per parent-1 gamete,
// one column per parent-2 gamete.
type PunnettSquare struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Cells   [][]Cell `json:"cells"`
}

// Square builds the Punnett square of two normalized parents.
func Square(parent1, parent2 string) PunnettSquare {
	sq := PunnettSquare{
		Rows:    Gametes(parent1),
		Columns: Gametes(parent2),
	}
	sq.Cells = make([][]Cell, len(sq.Rows))
	for i, row := range sq.Rows {
		cells := make([]Cell, len(sq.Columns))
		for j, col := range sq.Columns {
			g := Combine(row, col)
			cells[j] = Cell{Genotype: g, Zygosity: ZygosityOf(g)}
		}
		sq.Cells[i] = cells
	}
	return sq
}

// Offspring flattens the square row by row, matching the package-level
// Offspring ordering.
func (s PunnettSquare) Offspring() []string {
	out := make([]string, 0, len(s.Rows)*len(s.Columns))
	for _, row := range s.Cells {
		for _, c := range row {
			out = append(out, c.Genotype)
		}
	}
	return out
}
