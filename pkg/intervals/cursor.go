package intervals

import (
	"fmt"

	"github.com/ava-labs/readreducer/pkg/reads"
)

// Cursor walks a sorted region list in step with a coordinate-sorted read stream.
// It is a value: Clip returns the advanced cursor instead of mutating the receiver,
// so a saved Cursor can be replayed from the same position.
type Cursor struct {
	regions []Region
	next    int
}

// NewCursor validates that regions are sorted by (RefID, Start) and well formed.
func NewCursor(regions []Region) (Cursor, error) {
	for i, r := range regions {
		if r.Start > r.End {
			return Cursor{}, fmt.Errorf("%w: region %s starts after it ends", reads.ErrOrderingViolation, r)
		}
		if i > 0 {
			prev := regions[i-1]
			if reads.ComparePosition(prev.RefID, prev.Start, r.RefID, r.Start) > 0 {
				return Cursor{}, fmt.Errorf("%w: region %s follows %s", reads.ErrOrderingViolation, r, prev)
			}
		}
	}
	return Cursor{regions: regions}, nil
}

// Len returns the number of regions the cursor was built with.
func (c Cursor) Len() int { return len(c.regions) }

// Current returns the region the cursor points at. ok is false once every region
// has been passed.
func (c Cursor) Current() (region Region, ok bool) {
	if c.next >= len(c.regions) {
		return Region{}, false
	}
	return c.regions[c.next], true
}

// Clip hard clips r to the first region it overlaps and returns the advanced cursor.
// Regions entirely behind the read are passed for good; reads with no remaining
// overlap come back as the zero-length sentinel. A read overlapping several regions is
// clipped to the first of them.
func (c Cursor) Clip(r reads.Read) (Cursor, reads.Read) {
	for c.next < len(c.regions) {
		region := c.regions[c.next]
		switch Classify(r, region) {
		case NoOverlapContig:
			// A read on an earlier contig has no region left; do not skip ahead of it.
			if reads.ComparePosition(r.RefID, 0, region.RefID, 0) < 0 {
				return c, reads.Discard(r)
			}
			c.next++
		case NoOverlapRight:
			c.next++
		case NoOverlapLeft:
			return c, reads.Discard(r)
		case OverlapLeft:
			return c, reads.HardClipLeftTail(r, region.Start-1)
		case OverlapRight:
			return c, reads.HardClipRightTail(r, region.End+1)
		case OverlapLeftAndRight:
			return c, reads.HardClipBothEnds(r, region.Start-1, region.End+1)
		default:
			return c, r
		}
	}
	return c, reads.Discard(r)
}
