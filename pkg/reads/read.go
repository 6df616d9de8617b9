package reads

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
)

// ErrOrderingViolation is returned when reads or regions break the coordinate sort order
// (RefID, then Start) the engine depends on. The engine cannot re-sort its input.
var ErrOrderingViolation = errors.New("ordering violation: input is not coordinate sorted")

// Read is an aligned sequencing fragment. Start is the 1-based reference position of
// the first aligned base; the reference span is derived from the cigar.
//
// A Read without bases is the zero-length sentinel produced when clipping removes
// every aligned base. Such reads are dropped before they reach a compressor.
type Read struct {
	Name      string
	RefID     int
	Contig    string
	Start     int
	Cigar     sam.Cigar
	Bases     []byte
	Quals     []byte
	MapQ      byte
	Flags     sam.Flags
	ReadGroup string

	MateRefID      int
	MateStart      int
	TemplateLength int

	Optional Optional
}

// Optional holds the small closed set of per-read attributes carried through from the
// input. None of them is needed for consensus calling.
type Optional struct {
	OriginalQuals []byte // OQ
	EditDistance  *int   // NM
	MD            string // MD
}

// Len returns the number of bases held by the read.
func (r Read) Len() int { return len(r.Bases) }

// Empty reports whether the read is the zero-length sentinel.
func (r Read) Empty() bool { return len(r.Bases) == 0 }

// RefLen returns the number of reference positions covered by the alignment.
func (r Read) RefLen() int {
	n := 0
	for _, co := range r.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarDeletion, sam.CigarSkipped, sam.CigarEqual, sam.CigarMismatch:
			n += co.Len()
		}
	}
	return n
}

// End returns the 1-based inclusive reference position of the last aligned base.
// For a read covering no reference positions End is Start-1.
func (r Read) End() int { return r.Start + r.RefLen() - 1 }

// Covers reports whether r has a base or a deletion aligned at pos. Positions inside a
// skipped (N) stretch are not covered.
func (r Read) Covers(pos int) bool {
	if r.Empty() || pos < r.Start {
		return false
	}
	ref := r.Start
	for _, co := range r.Cigar {
		t, n := co.Type(), co.Len()
		if t.Consumes().Reference == 0 {
			continue
		}
		if pos < ref+n {
			return t != sam.CigarSkipped
		}
		ref += n
	}
	return false
}

func (r Read) Unmapped() bool  { return r.Flags&sam.Unmapped != 0 || r.RefID < 0 }
func (r Read) Duplicate() bool { return r.Flags&sam.Duplicate != 0 }
func (r Read) Secondary() bool { return r.Flags&sam.Secondary != 0 }
func (r Read) QCFail() bool    { return r.Flags&sam.QCFail != 0 }

// Validate checks that the cigar, bases and qualities agree with each other.
func (r Read) Validate() error {
	q := 0
	for _, co := range r.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarInsertion, sam.CigarSoftClipped, sam.CigarEqual, sam.CigarMismatch:
			q += co.Len()
		}
	}
	if q != len(r.Bases) {
		return fmt.Errorf("read %q: cigar %s consumes %d bases, read has %d", r.Name, r.Cigar, q, len(r.Bases))
	}
	if len(r.Quals) != 0 && len(r.Quals) != len(r.Bases) {
		return fmt.Errorf("read %q: %d qualities for %d bases", r.Name, len(r.Quals), len(r.Bases))
	}
	return nil
}

// Clone returns a deep copy of the read.
func (r Read) Clone() Read {
	out := r
	out.Cigar = append(sam.Cigar(nil), r.Cigar...)
	out.Bases = append([]byte(nil), r.Bases...)
	out.Quals = append([]byte(nil), r.Quals...)
	out.Optional.OriginalQuals = append([]byte(nil), r.Optional.OriginalQuals...)
	if r.Optional.EditDistance != nil {
		nm := *r.Optional.EditDistance
		out.Optional.EditDistance = &nm
	}
	return out
}

// Simplify drops the optional attributes a reduced file does not need.
func Simplify(r Read) Read {
	r.Optional = Optional{}
	return r
}

// discard returns the zero-length sentinel for r, keeping its identity and position.
func (r Read) discard() Read {
	return Read{
		Name:      r.Name,
		RefID:     r.RefID,
		Contig:    r.Contig,
		Start:     r.Start,
		MapQ:      r.MapQ,
		Flags:     r.Flags,
		ReadGroup: r.ReadGroup,
		MateRefID: r.MateRefID,
		MateStart: r.MateStart,
	}
}

// Discard returns the zero-length sentinel for r.
func Discard(r Read) Read { return r.discard() }

// ComparePosition orders two (refID, pos) coordinates. Negative refIDs (unmapped) sort last.
func ComparePosition(aRef, aPos, bRef, bPos int) int {
	if aRef != bRef {
		switch {
		case aRef < 0:
			return 1
		case bRef < 0:
			return -1
		case aRef < bRef:
			return -1
		default:
			return 1
		}
	}
	switch {
	case aPos < bPos:
		return -1
	case aPos > bPos:
		return 1
	}
	return 0
}
