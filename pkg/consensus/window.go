package consensus

import (
	"fmt"

	"github.com/biogo/hts/sam"

	"github.com/ava-labs/readreducer/pkg/reads"
)

// Tracked is a read held by a window while any of its columns is open. Seq orders
// tracked reads by arrival.
type Tracked struct {
	Read reads.Read
	Seq  uint64
}

// ColumnStats counts the columns a window has classified.
type ColumnStats struct {
	Variable  int
	Consensus int
}

func (s *ColumnStats) add(o ColumnStats) {
	s.Variable += o.Variable
	s.Consensus += o.Consensus
}

// Window folds the reads of one read group into per-position columns and closes the
// columns no later read can reach.
//
// The watermark is the smallest start any future read may have. Once it has moved at
// least ContextSize bases past windowStart, every column below it is classified and
// handed to the emitter, and windowStart moves up to the watermark.
type Window struct {
	cfg     Config
	emitter *Emitter

	active      bool
	refID       int
	contig      string
	windowStart int
	watermark   int

	columns []Column // columns[i].Pos == base+i
	base    int
	tracked []*Tracked
	seq     uint64

	stats ColumnStats
}

// NewWindow returns an empty window for readGroup. cfg must already be validated.
func NewWindow(cfg Config, readGroup string) *Window {
	return &Window{
		cfg:     cfg,
		emitter: NewEmitter(cfg, readGroup),
	}
}

// AddAlignment folds r into the window using its start as the sort watermark.
func (w *Window) AddAlignment(r reads.Read) ([]reads.Read, error) {
	return w.AddAlignmentAt(r, r.Start)
}

// AddAlignmentAt folds r into the window. watermark is the position the input was
// sorted on, which is r's start before any clipping moved it right.
func (w *Window) AddAlignmentAt(r reads.Read, watermark int) ([]reads.Read, error) {
	if watermark > r.Start && !r.Empty() {
		return nil, fmt.Errorf("%w: read %q starts at %d, before its sort position %d",
			reads.ErrOrderingViolation, r.Name, r.Start, watermark)
	}
	var out []reads.Read
	if w.active {
		switch c := reads.ComparePosition(r.RefID, watermark, w.refID, w.watermark); {
		case c < 0:
			return nil, fmt.Errorf("%w: read %q at %d:%d arrived after %d:%d",
				reads.ErrOrderingViolation, r.Name, r.RefID, watermark, w.refID, w.watermark)
		case r.RefID != w.refID:
			out = w.Close()
		default:
			out = w.Advance(r.RefID, watermark)
		}
	}
	if r.Empty() {
		return out, nil
	}
	if !w.active {
		w.active = true
		w.refID, w.contig = r.RefID, r.Contig
		w.windowStart, w.watermark = watermark, watermark
	}

	w.seq++
	w.tracked = append(w.tracked, &Tracked{Read: r, Seq: w.seq})
	w.fold(r)
	return out, nil
}

// Advance moves the watermark to pos on refID and closes whatever became final. A
// position on a later contig closes the window. Stale positions are ignored.
func (w *Window) Advance(refID, pos int) []reads.Read {
	if !w.active {
		return nil
	}
	if refID != w.refID {
		if reads.ComparePosition(refID, pos, w.refID, w.watermark) > 0 {
			return w.Close()
		}
		return nil
	}
	if pos <= w.watermark {
		return nil
	}
	w.watermark = pos
	if pos-w.windowStart < w.cfg.ContextSize {
		return nil
	}
	out := w.closeBefore(pos)
	w.windowStart = pos
	return out
}

// Close classifies and emits every remaining column and resets the window. Closing an
// already closed window yields nothing.
func (w *Window) Close() []reads.Read {
	if !w.active {
		return nil
	}
	out := w.closeBefore(w.base + len(w.columns))
	out = append(out, w.emitter.Flush()...)
	w.active = false
	w.columns, w.tracked = nil, nil
	return out
}

// LowWatermark returns the smallest position this window may still emit a read at.
// ok is false when the window holds nothing.
func (w *Window) LowWatermark() (refID, pos int, ok bool) {
	if !w.active {
		return 0, 0, false
	}
	if start, open := w.emitter.OpenStart(); open {
		return w.refID, start, true
	}
	for i := range w.columns {
		if w.columns[i].depth > 0 {
			return w.refID, min(w.columns[i].Pos, w.watermark), true
		}
	}
	return w.refID, w.watermark, true
}

// OpenColumns returns the number of columns held in memory.
func (w *Window) OpenColumns() int { return len(w.columns) }

// Stats returns the classified column counts so far.
func (w *Window) Stats() ColumnStats { return w.stats }

func (w *Window) closeBefore(limit int) []reads.Read {
	var out []reads.Read
	n := 0
	for n < len(w.columns) && w.columns[n].Pos < limit {
		col := &w.columns[n]
		n++
		if col.depth == 0 {
			continue
		}
		closed := col.close(w.refID, w.contig, w.cfg)
		if closed.Variable {
			w.stats.Variable++
		} else {
			w.stats.Consensus++
		}
		out = append(out, w.emitter.Emit(closed, w.covering(col.Pos))...)
	}
	w.columns = w.columns[n:]
	w.base += n
	if len(w.columns) == 0 {
		w.columns = nil
	}
	out = append(out, w.emitter.Seal(limit)...)

	kept := w.tracked[:0]
	for _, t := range w.tracked {
		if t.Read.End() >= limit {
			kept = append(kept, t)
		}
	}
	clear(w.tracked[len(kept):])
	w.tracked = kept
	return out
}

func (w *Window) covering(pos int) []*Tracked {
	var out []*Tracked
	for _, t := range w.tracked {
		if t.Read.Covers(pos) {
			out = append(out, t)
		}
	}
	return out
}

// column returns the column at pos, growing the slice as needed.
func (w *Window) column(pos int) *Column {
	if len(w.columns) == 0 {
		w.base = pos
	}
	if pos < w.base {
		grown := make([]Column, w.base-pos, w.base-pos+len(w.columns))
		for i := range grown {
			grown[i].Pos = pos + i
		}
		w.columns = append(grown, w.columns...)
		w.base = pos
	}
	for i := len(w.columns); w.base+i <= pos; i++ {
		w.columns = append(w.columns, Column{Pos: w.base + i})
	}
	return &w.columns[pos-w.base]
}

func (w *Window) fold(r reads.Read) {
	mapQOK := int(r.MapQ) >= w.cfg.MinMappingQuality
	pos, q := r.Start, 0
	for _, co := range r.Cigar {
		t, n := co.Type(), co.Len()
		switch t {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for i := 0; i < n; i++ {
				var qual byte
				if q < len(r.Quals) {
					qual = r.Quals[q]
				}
				consider := mapQOK && int(qual) >= w.cfg.MinBaseQual
				w.column(pos).add(symbolIndex(r.Bases[q]), qual, r.MapQ, consider)
				pos++
				q++
			}
		case sam.CigarDeletion:
			for i := 0; i < n; i++ {
				w.column(pos).add(symDeletion, 0, r.MapQ, mapQOK)
				pos++
			}
		case sam.CigarSkipped:
			pos += n
		case sam.CigarInsertion:
			if pos > r.Start && mapQOK {
				w.column(pos-1).insertions++
			}
			q += n
		case sam.CigarSoftClipped:
			q += n
		}
	}
}
