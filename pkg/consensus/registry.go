package consensus

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ava-labs/readreducer/pkg/reads"
)

// ReadGroup is a read group declared by the input header.
type ReadGroup struct {
	ID     string
	Sample string
}

// Registry routes reads to one Window per read group. Windows are created on the first
// read of their group and dropped by CloseAll.
type Registry struct {
	cfg      Config
	log      *zap.SugaredLogger
	declared map[string]string
	order    []string
	windows  map[string]*Window
	stats    ColumnStats
}

// NewRegistry validates cfg and the declared read groups.
func NewRegistry(cfg Config, groups []ReadGroup, log *zap.SugaredLogger) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	declared := make(map[string]string, len(groups))
	for _, g := range groups {
		if g.ID == "" {
			return nil, fmt.Errorf("%w: read group with empty ID", ErrConfiguration)
		}
		if _, dup := declared[g.ID]; dup {
			return nil, fmt.Errorf("%w: read group %q declared twice", ErrConfiguration, g.ID)
		}
		declared[g.ID] = g.Sample
	}
	order := make([]string, 0, len(declared))
	for id := range declared {
		order = append(order, id)
	}
	sort.Strings(order)

	return &Registry{
		cfg:      cfg,
		log:      log,
		declared: declared,
		order:    order,
		windows:  make(map[string]*Window),
	}, nil
}

// Route folds r into the window of its read group.
func (g *Registry) Route(r reads.Read) ([]reads.Read, error) {
	return g.RouteAt(r, r.Start)
}

// RouteAt folds r into the window of its read group with an explicit sort watermark.
func (g *Registry) RouteAt(r reads.Read, watermark int) ([]reads.Read, error) {
	w, err := g.window(r.ReadGroup)
	if err != nil {
		return nil, err
	}
	return w.AddAlignmentAt(r, watermark)
}

func (g *Registry) window(id string) (*Window, error) {
	if w, ok := g.windows[id]; ok {
		return w, nil
	}
	if _, ok := g.declared[id]; !ok {
		return nil, fmt.Errorf("%w: unknown read group %q", ErrConfiguration, id)
	}
	w := NewWindow(g.cfg, id)
	g.windows[id] = w
	g.log.Debugw("opened consensus window", "readGroup", id)
	return w, nil
}

// ReadGroups returns the declared read group IDs in sorted order.
func (g *Registry) ReadGroups() []string {
	return append([]string(nil), g.order...)
}

// ReducedReadGroups returns the read groups consensus reads are written under. They must
// reach the output header before any read does.
func (g *Registry) ReducedReadGroups() []ReadGroup {
	out := make([]ReadGroup, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, ReadGroup{ID: ReducedID(id), Sample: g.declared[id]})
	}
	return out
}

// Advance moves the watermark of every open window to (refID, pos).
func (g *Registry) Advance(refID, pos int) []reads.Read {
	var out []reads.Read
	for _, id := range g.order {
		if w, ok := g.windows[id]; ok {
			out = append(out, w.Advance(refID, pos)...)
		}
	}
	return out
}

// CloseAll flushes every window in read group order and discards them.
func (g *Registry) CloseAll() []reads.Read {
	var out []reads.Read
	for _, id := range g.order {
		w, ok := g.windows[id]
		if !ok {
			continue
		}
		flushed := w.Close()
		out = append(out, flushed...)
		g.stats.add(w.Stats())
		delete(g.windows, id)
		g.log.Debugw("closed consensus window", "readGroup", id, "outputs", len(flushed))
	}
	return out
}

// LowWatermark returns the smallest position any window may still emit at.
func (g *Registry) LowWatermark() (refID, pos int, ok bool) {
	for _, w := range g.windows {
		wr, wp, wok := w.LowWatermark()
		if !wok {
			continue
		}
		if !ok || reads.ComparePosition(wr, wp, refID, pos) < 0 {
			refID, pos, ok = wr, wp, true
		}
	}
	return refID, pos, ok
}

// OpenColumns returns the columns held across all windows.
func (g *Registry) OpenColumns() int {
	n := 0
	for _, w := range g.windows {
		n += w.OpenColumns()
	}
	return n
}

// Stats returns the classified column counts of every window, open or closed.
func (g *Registry) Stats() ColumnStats {
	s := g.stats
	for _, w := range g.windows {
		s.add(w.Stats())
	}
	return s
}
