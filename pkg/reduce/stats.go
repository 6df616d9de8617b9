package reduce

import "fmt"

// Stats summarizes one traversal.
type Stats struct {
	TotalReads     int64
	FilteredReads  int64
	Filtered       map[string]int64 // by filter name
	DroppedReads   int64            // no bases left after clipping
	EmittedReads   int64
	ConsensusReads int64
	OriginalReads  int64

	VariableColumns  int64
	ConsensusColumns int64

	BaseQualities [256]int64
}

// CompressionPercent returns emitted reads as a percentage of input reads.
func (s Stats) CompressionPercent() float64 {
	if s.TotalReads == 0 {
		return 0
	}
	return 100 * float64(s.EmittedReads) / float64(s.TotalReads)
}

// QualityHistogram renders the base quality counts, one "qual : count" row per quality,
// up to the highest quality seen.
func (s Stats) QualityHistogram() []string {
	last := -1
	for q, n := range s.BaseQualities {
		if n > 0 {
			last = q
		}
	}
	rows := make([]string, 0, last+1)
	for q := 0; q <= last; q++ {
		rows = append(rows, fmt.Sprintf("%3d : %10d", q, s.BaseQualities[q]))
	}
	return rows
}

func (s *Stats) filtered(name string) {
	if s.Filtered == nil {
		s.Filtered = make(map[string]int64)
	}
	s.Filtered[name]++
	s.FilteredReads++
}

func (s Stats) clone() Stats {
	out := s
	if s.Filtered != nil {
		out.Filtered = make(map[string]int64, len(s.Filtered))
		for k, v := range s.Filtered {
			out.Filtered[k] = v
		}
	}
	return out
}
