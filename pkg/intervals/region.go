package intervals

import (
	"fmt"

	"github.com/ava-labs/readreducer/pkg/reads"
)

// Region is an interval of interest on one contig, 1-based and inclusive.
type Region struct {
	Contig string
	RefID  int
	Start  int
	End    int
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Contig, r.Start, r.End)
}

// Contains reports whether pos on refID lies inside the region.
func (r Region) Contains(refID, pos int) bool {
	return refID == r.RefID && pos >= r.Start && pos <= r.End
}

// Overlap classifies how a read sits relative to a region.
type Overlap int

const (
	NoOverlapContig     Overlap = iota // read is on another contig
	NoOverlapLeft                      // read ends before the region starts
	NoOverlapRight                     // read starts after the region ends
	OverlapLeft                        // read crosses the region start only
	OverlapRight                       // read crosses the region end only
	OverlapLeftAndRight                // region lies strictly inside the read
	OverlapContained                   // read lies inside the region
)

var overlapNames = [...]string{
	NoOverlapContig:     "no_overlap_contig",
	NoOverlapLeft:       "no_overlap_left",
	NoOverlapRight:      "no_overlap_right",
	OverlapLeft:         "overlap_left",
	OverlapRight:        "overlap_right",
	OverlapLeftAndRight: "overlap_left_and_right",
	OverlapContained:    "overlap_contained",
}

func (o Overlap) String() string {
	if o < 0 || int(o) >= len(overlapNames) {
		return fmt.Sprintf("overlap(%d)", int(o))
	}
	return overlapNames[o]
}

// Classify returns the overlap between r and region.
func Classify(r reads.Read, region Region) Overlap {
	if r.RefID != region.RefID {
		return NoOverlapContig
	}
	end := r.End()
	switch {
	case end < region.Start:
		return NoOverlapLeft
	case r.Start > region.End:
		return NoOverlapRight
	}
	left, right := r.Start < region.Start, end > region.End
	switch {
	case left && right:
		return OverlapLeftAndRight
	case left:
		return OverlapLeft
	case right:
		return OverlapRight
	}
	return OverlapContained
}
