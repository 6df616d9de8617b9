package reduce

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ava-labs/readreducer/pkg/intervals"
	"github.com/ava-labs/readreducer/pkg/reads"
)

// Preprocessor normalizes reads before they reach a consensus window.
type Preprocessor struct {
	minTailQual byte
	cursor      intervals.Cursor
	clip        bool
	log         *zap.SugaredLogger
	trace       bool
}

// NewPreprocessor builds a preprocessor. With no regions reads are never interval clipped.
func NewPreprocessor(minTailQual int, regions []intervals.Region, log *zap.SugaredLogger) (*Preprocessor, error) {
	if minTailQual < 0 || minTailQual > 255 {
		return nil, fmt.Errorf("invalid min tail quality: must be in [0,255], got %d", minTailQual)
	}
	cursor, err := intervals.NewCursor(regions)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Preprocessor{
		minTailQual: byte(minTailQual),
		cursor:      cursor,
		clip:        len(regions) > 0,
		log:         log,
		trace:       log.Desugar().Core().Enabled(zapcore.DebugLevel),
	}, nil
}

// Normalize drops optional attributes, hard clips low quality tails and clips the read to
// the regions of interest. The result is the zero-length sentinel when nothing is left.
//
// The cursor advances on the unclipped coordinates so it follows input order. The region
// bounds are then applied to the tail-clipped read. When tail clipping moved the read past
// that region, the later regions are searched without committing the cursor, since the
// next read may still overlap the current one.
func (p *Preprocessor) Normalize(r reads.Read) reads.Read {
	simple := reads.Simplify(r)
	out := reads.HardClipLowQualEnds(simple, p.minTailQual)
	tail := out
	if p.clip {
		var inRegion reads.Read
		p.cursor, inRegion = p.cursor.Clip(simple)
		switch {
		case inRegion.Empty():
			out = inRegion
		case !out.Empty():
			clipped := reads.HardClipToRegion(out, inRegion.Start, inRegion.End())
			if clipped.Empty() && out.End() > inRegion.End() {
				_, clipped = p.cursor.Clip(out)
			}
			out = clipped
		}
	}
	if p.trace {
		p.log.Debugw("normalized read",
			"read", r.Name,
			"original", span(r),
			"tailClipped", span(tail),
			"intervalClipped", span(out),
		)
	}
	return out
}

func span(r reads.Read) string {
	if r.Empty() {
		return "-"
	}
	return fmt.Sprintf("%s:%d-%d %s", r.Contig, r.Start, r.End(), r.Cigar)
}
