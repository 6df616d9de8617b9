package consensus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/biogo/hts/sam"

	"github.com/ava-labs/readreducer/pkg/reads"
)

// ReducedSuffix is appended to a read group ID to name the group of its consensus reads.
const ReducedSuffix = ".reduced"

// ReducedID returns the read group ID consensus reads of readGroup are written under.
func ReducedID(readGroup string) string { return readGroup + ReducedSuffix }

// run is a maximal stretch of contiguous columns sharing one classification.
type run struct {
	refID    int
	contig   string
	variable bool
	start    int
	end      int

	columns []ClosedColumn      // consensus runs
	reads   map[uint64]*Tracked // variable runs, keyed by Seq
}

// Emitter turns classified columns into output reads. The open run survives across
// window batches so contiguous columns of one class always produce one output unit.
type Emitter struct {
	cfg       Config
	readGroup string
	reduced   string
	count     int
	open      *run
}

// NewEmitter returns an emitter for readGroup.
func NewEmitter(cfg Config, readGroup string) *Emitter {
	return &Emitter{
		cfg:       cfg,
		readGroup: readGroup,
		reduced:   ReducedID(readGroup),
	}
}

// Emit appends col to the open run, first finishing the run when col breaks it by class,
// contig or a gap in coverage, or when the run already spans MaxRunLength columns.
// covering holds the tracked reads aligned over col.
func (e *Emitter) Emit(col ClosedColumn, covering []*Tracked) []reads.Read {
	var out []reads.Read
	if o := e.open; o != nil && (o.refID != col.RefID || o.variable != col.Variable || col.Pos != o.end+1 || e.full(o, col)) {
		out = e.Flush()
	}
	if e.open == nil {
		e.open = &run{
			refID:    col.RefID,
			contig:   col.Contig,
			variable: col.Variable,
			start:    col.Pos,
		}
		if col.Variable {
			e.open.reads = make(map[uint64]*Tracked)
		}
	}
	o := e.open
	o.end = col.Pos
	if o.variable {
		for _, t := range covering {
			o.reads[t.Seq] = t
		}
	} else {
		o.columns = append(o.columns, col)
	}
	return out
}

// full reports whether o reached the run length cap and col may open the next run.
// Consensus runs are only split between two bases, so neither side loses a deletion to
// edge trimming.
func (e *Emitter) full(o *run, col ClosedColumn) bool {
	if o.end-o.start+1 < e.cfg.MaxRunLength {
		return false
	}
	if o.variable {
		return true
	}
	return col.Base != Deletion && o.columns[len(o.columns)-1].Base != Deletion
}

// Flush finishes the open run, if any.
func (e *Emitter) Flush() []reads.Read {
	o := e.open
	if o == nil {
		return nil
	}
	e.open = nil
	if o.variable {
		return e.finishVariable(o)
	}
	if r, ok := e.finishConsensus(o); ok {
		return []reads.Read{r}
	}
	return nil
}

// Seal finishes the open run when it cannot reach next, the first position that may
// still be emitted. Positions between the run end and next are known to be uncovered.
func (e *Emitter) Seal(next int) []reads.Read {
	if e.open == nil || e.open.end+1 >= next {
		return nil
	}
	return e.Flush()
}

// OpenStart returns the first position of the open run.
func (e *Emitter) OpenStart() (int, bool) {
	if e.open == nil {
		return 0, false
	}
	return e.open.start, true
}

// finishVariable emits every read that covered the run, clipped to the run so the parts
// belonging to neighbouring runs are not written twice.
func (e *Emitter) finishVariable(o *run) []reads.Read {
	tracked := make([]*Tracked, 0, len(o.reads))
	for _, t := range o.reads {
		tracked = append(tracked, t)
	}
	sort.Slice(tracked, func(i, j int) bool { return tracked[i].Seq < tracked[j].Seq })

	out := make([]reads.Read, 0, len(tracked))
	for _, t := range tracked {
		r := reads.HardClipToRegion(t.Read, o.start, o.end)
		if r.Empty() {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func (e *Emitter) finishConsensus(o *run) (reads.Read, bool) {
	cols := o.columns
	for len(cols) > 0 && cols[0].Base == Deletion {
		cols = cols[1:]
	}
	for len(cols) > 0 && cols[len(cols)-1].Base == Deletion {
		cols = cols[:len(cols)-1]
	}
	if len(cols) == 0 {
		return reads.Read{}, false
	}

	var (
		bases, quals []byte
		cigar        sam.Cigar
		mapQSum, obs int
		op           = sam.CigarMatch
		opLen        int
	)
	for _, c := range cols {
		t := sam.CigarMatch
		if c.Base == Deletion {
			t = sam.CigarDeletion
		} else {
			bases = append(bases, c.Base)
			quals = append(quals, c.Qual)
		}
		if t != op && opLen > 0 {
			cigar = append(cigar, sam.NewCigarOp(op, opLen))
			opLen = 0
		}
		op = t
		opLen++
		mapQSum += c.MapQSum
		obs += c.Depth
	}
	cigar = append(cigar, sam.NewCigarOp(op, opLen))

	e.count++
	var mapQ byte
	if obs > 0 {
		mapQ = byte(mapQSum / obs)
	}
	return reads.Read{
		Name:      fmt.Sprintf("consensus.%s.%d", e.readGroup, e.count),
		RefID:     o.refID,
		Contig:    o.contig,
		Start:     cols[0].Pos,
		Cigar:     cigar,
		Bases:     bases,
		Quals:     quals,
		MapQ:      mapQ,
		ReadGroup: e.reduced,
		MateRefID: -1,
		MateStart: 0,
	}, true
}

// IsConsensus reports whether r is a synthetic consensus read.
func IsConsensus(r reads.Read) bool { return strings.HasSuffix(r.ReadGroup, ReducedSuffix) }
