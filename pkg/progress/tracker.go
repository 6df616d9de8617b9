package progress

import "sync/atomic"

// Tracker holds the traversal position. The engine updates it on its own goroutine and
// the reporter loop reads it concurrently.
type Tracker struct {
	reads    atomic.Int64
	emitted  atomic.Int64
	refID    atomic.Int64
	position atomic.Int64
	contig   atomic.Pointer[string]
}

// NewTracker returns a Tracker positioned before the first read.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.refID.Store(-1)
	return t
}

// Observe records that a read at contig:pos was consumed.
func (t *Tracker) Observe(refID int, contig string, pos int) {
	if t == nil {
		return
	}
	t.reads.Add(1)
	if int64(refID) != t.refID.Load() {
		t.contig.Store(&contig)
		t.refID.Store(int64(refID))
	}
	t.position.Store(int64(pos))
}

// AddEmitted records n reads written to the output.
func (t *Tracker) AddEmitted(n int) {
	if t == nil {
		return
	}
	t.emitted.Add(int64(n))
}

// Snapshot is a point-in-time copy of a Tracker.
type Snapshot struct {
	Reads    int64  `json:"reads"`
	Emitted  int64  `json:"emitted"`
	RefID    int    `json:"ref_id"`
	Contig   string `json:"contig"`
	Position int    `json:"position"`
}

// Snapshot returns the current position.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Reads:    t.reads.Load(),
		Emitted:  t.emitted.Load(),
		RefID:    int(t.refID.Load()),
		Position: int(t.position.Load()),
	}
	if c := t.contig.Load(); c != nil {
		s.Contig = *c
	}
	return s
}
