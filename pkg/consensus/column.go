package consensus

import "math"

// Symbols observed at a column, in byte order so plurality ties resolve deterministically.
const (
	symDeletion = iota
	symA
	symC
	symG
	symN
	symT
	numSymbols
)

// Deletion is the symbol recorded for a reference position a read deletes.
const Deletion byte = '-'

var symbolBytes = [numSymbols]byte{Deletion, 'A', 'C', 'G', 'N', 'T'}

func symbolIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return symA
	case 'C', 'c':
		return symC
	case 'G', 'g':
		return symG
	case 'T', 't':
		return symT
	case Deletion:
		return symDeletion
	}
	return symN
}

type tally struct {
	count [numSymbols]int
	qual  [numSymbols]int
}

// Column accumulates every observation at one reference position.
type Column struct {
	Pos int

	depth      int
	considered int
	insertions int
	mapQSum    int

	all  tally
	high tally // observations passing the base and mapping quality thresholds
}

func (c *Column) add(sym int, qual, mapQ byte, consider bool) {
	c.depth++
	c.mapQSum += int(mapQ)
	c.all.count[sym]++
	c.all.qual[sym] += int(qual)
	if consider {
		c.considered++
		c.high.count[sym]++
		c.high.qual[sym] += int(qual)
	}
}

// Depth returns the number of reads observed at the column.
func (c *Column) Depth() int { return c.depth }

// Considered returns the number of observations that passed the quality thresholds.
func (c *Column) Considered() int { return c.considered }

// Count returns the considered observations of base b.
func (c *Column) Count(b byte) int { return c.high.count[symbolIndex(b)] }

// Variable reports whether the column is a candidate polymorphic site. Columns at or
// above the depth ceiling are never variable.
func (c *Column) Variable(cfg Config) bool {
	if c.depth >= cfg.AverageDepthAtVariableSites || c.considered == 0 {
		return false
	}
	top := 0
	for _, n := range c.high.count {
		top = max(top, n)
	}
	n := float64(c.considered)
	if float64(c.considered-top)/n >= cfg.MinAltProportion {
		return true
	}
	return c.insertions > 0 && float64(c.insertions)/n >= cfg.MinAltProportion
}

// Plurality returns the most observed symbol and its aggregated quality: the sum of the
// qualities of its observations, capped at MaxConsensusQual. Only considered observations
// vote unless there are none. Ties go to the lowest byte.
func (c *Column) Plurality(cfg Config) (byte, byte) {
	t := &c.high
	if c.considered == 0 {
		t = &c.all
	}
	best := 0
	for i := 1; i < numSymbols; i++ {
		if t.count[i] > t.count[best] {
			best = i
		}
	}
	qual := min(t.qual[best], cfg.MaxConsensusQual, math.MaxUint8)
	return symbolBytes[best], byte(qual)
}

// ClosedColumn is a classified column handed to the emitter.
type ClosedColumn struct {
	RefID    int
	Contig   string
	Pos      int
	Variable bool
	Base     byte // plurality symbol, Deletion for a deleted position
	Qual     byte
	Depth    int
	MapQSum  int
}

func (c *Column) close(refID int, contig string, cfg Config) ClosedColumn {
	base, qual := c.Plurality(cfg)
	return ClosedColumn{
		RefID:    refID,
		Contig:   contig,
		Pos:      c.Pos,
		Variable: c.Variable(cfg),
		Base:     base,
		Qual:     qual,
		Depth:    c.depth,
		MapQSum:  c.mapQSum,
	}
}
