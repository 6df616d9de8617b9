package reads

import (
	"math"

	"github.com/biogo/hts/sam"
)

// element is one expanded cigar position: either a query base, a reference-only
// position (deletion or skip), or both.
type element struct {
	op     sam.CigarOpType
	ref    int
	hasRef bool
	query  int // -1 when the element consumes no query base
}

func aligned(op sam.CigarOpType) bool {
	return op == sam.CigarMatch || op == sam.CigarEqual || op == sam.CigarMismatch
}

// edgeDroppable reports whether an element may not sit at a freshly clipped read edge.
func edgeDroppable(op sam.CigarOpType) bool {
	return op == sam.CigarDeletion || op == sam.CigarSkipped || op == sam.CigarInsertion
}

func expand(r Read) (elems []element, leadH, trailH int) {
	pos, q := r.Start, 0
	seen := false
	for _, co := range r.Cigar {
		t, n := co.Type(), co.Len()
		switch t {
		case sam.CigarHardClipped:
			if seen {
				trailH += n
			} else {
				leadH += n
			}
			continue
		case sam.CigarPadded, sam.CigarBack:
			continue
		}
		seen = true
		con := t.Consumes()
		for i := 0; i < n; i++ {
			e := element{op: t, query: -1}
			if con.Reference > 0 {
				e.ref, e.hasRef = pos, true
				pos++
			}
			if con.Query > 0 {
				e.query = q
				q++
			}
			elems = append(elems, e)
		}
	}
	return elems, leadH, trailH
}

// cut keeps elems[lo..hi] and rebuilds r around them, turning everything outside into
// hard clips. Deletions, skips and insertions left at a clipped edge are removed too.
func cut(r Read, elems []element, leadH, trailH, lo, hi int) Read {
	last := len(elems) - 1
	if lo > 0 {
		for lo <= hi && edgeDroppable(elems[lo].op) {
			lo++
		}
	}
	if hi < last {
		for hi >= lo && edgeDroppable(elems[hi].op) {
			hi--
		}
	}
	if lo > hi {
		return r.discard()
	}

	q0, q1 := -1, -1
	start, hasAligned := r.Start, false
	startSet := false
	for i := lo; i <= hi; i++ {
		e := elems[i]
		if aligned(e.op) {
			hasAligned = true
		}
		if e.query >= 0 {
			if q0 < 0 {
				q0 = e.query
			}
			q1 = e.query
		}
		if e.hasRef && !startSet {
			start, startSet = e.ref, true
		}
	}
	if !hasAligned || q0 < 0 || q1 >= len(r.Bases) {
		return r.discard()
	}

	out := r
	out.Start = start
	out.Bases = append([]byte(nil), r.Bases[q0:q1+1]...)
	if len(r.Quals) == len(r.Bases) {
		out.Quals = append([]byte(nil), r.Quals[q0:q1+1]...)
	}
	if len(r.Optional.OriginalQuals) == len(r.Bases) {
		out.Optional.OriginalQuals = append([]byte(nil), r.Optional.OriginalQuals[q0:q1+1]...)
	}
	// Both depend on the aligned bases and are stale once any base is removed.
	out.Optional.MD = ""
	out.Optional.EditDistance = nil
	out.Cigar = rebuild(elems[lo:hi+1], leadH+q0, trailH+len(r.Bases)-1-q1)
	return out
}

func rebuild(elems []element, leftH, rightH int) sam.Cigar {
	var c sam.Cigar
	if leftH > 0 {
		c = append(c, sam.NewCigarOp(sam.CigarHardClipped, leftH))
	}
	for i := 0; i < len(elems); {
		j := i
		for j < len(elems) && elems[j].op == elems[i].op {
			j++
		}
		c = append(c, sam.NewCigarOp(elems[i].op, j-i))
		i = j
	}
	if rightH > 0 {
		c = append(c, sam.NewCigarOp(sam.CigarHardClipped, rightH))
	}
	return c
}

// HardClipToRegion removes every base aligned outside [start, end] (1-based, inclusive).
// The result is the zero-length sentinel when no aligned base is left.
func HardClipToRegion(r Read, start, end int) Read {
	if r.Empty() {
		return r
	}
	if start <= r.Start && end >= r.End() {
		return r
	}
	elems, leadH, trailH := expand(r)
	lo, hi := 0, len(elems)-1
	if start > r.Start {
		lo = -1
		for i, e := range elems {
			if aligned(e.op) && e.ref >= start {
				lo = i
				break
			}
		}
	}
	if end < r.End() {
		hi = -1
		for i := len(elems) - 1; i >= 0; i-- {
			if aligned(elems[i].op) && elems[i].ref <= end {
				hi = i
				break
			}
		}
	}
	if lo < 0 || hi < 0 || lo > hi {
		return r.discard()
	}
	return cut(r, elems, leadH, trailH, lo, hi)
}

// HardClipLeftTail clips every base aligned at or before refStop.
func HardClipLeftTail(r Read, refStop int) Read {
	return HardClipToRegion(r, refStop+1, math.MaxInt)
}

// HardClipRightTail clips every base aligned at or after refStart.
func HardClipRightTail(r Read, refStart int) Read {
	return HardClipToRegion(r, math.MinInt, refStart-1)
}

// HardClipBothEnds clips bases aligned at or before left and at or after right.
func HardClipBothEnds(r Read, left, right int) Read {
	return HardClipToRegion(r, left+1, right-1)
}

// HardClipLowQualEnds clips bases from each end of the read while their quality is
// below minQual, stopping at the first base that meets it. Reads without qualities are
// returned unchanged.
func HardClipLowQualEnds(r Read, minQual byte) Read {
	if r.Empty() || len(r.Quals) != len(r.Bases) {
		return r
	}
	qi, qj := 0, len(r.Quals)-1
	for qi <= qj && r.Quals[qi] < minQual {
		qi++
	}
	for qj >= qi && r.Quals[qj] < minQual {
		qj--
	}
	if qi > qj {
		return r.discard()
	}
	if qi == 0 && qj == len(r.Quals)-1 {
		return r
	}
	elems, leadH, trailH := expand(r)
	lo, hi := 0, len(elems)-1
	for i, e := range elems {
		if qi > 0 && e.query == qi {
			lo = i
		}
		if qj < len(r.Quals)-1 && e.query == qj {
			hi = i
		}
	}
	return cut(r, elems, leadH, trailH, lo, hi)
}
