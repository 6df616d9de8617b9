package reduce

import (
	"container/heap"

	"github.com/ava-labs/readreducer/pkg/reads"
)

type pending struct {
	read reads.Read
	seq  uint64
}

// releaseQueue holds reads from all read groups until no window can still emit a read
// sorting before them. Ties keep arrival order.
type releaseQueue struct {
	items []pending
	seq   uint64
}

func (q *releaseQueue) Len() int { return len(q.items) }

func (q *releaseQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if c := reads.ComparePosition(a.read.RefID, a.read.Start, b.read.RefID, b.read.Start); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

func (q *releaseQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *releaseQueue) Push(x any) { q.items = append(q.items, x.(pending)) }

func (q *releaseQueue) Pop() any {
	n := len(q.items) - 1
	it := q.items[n]
	q.items[n] = pending{}
	q.items = q.items[:n]
	return it
}

func (q *releaseQueue) add(rs []reads.Read) {
	for _, r := range rs {
		q.seq++
		heap.Push(q, pending{read: r, seq: q.seq})
	}
}

// releaseUpTo pops every read at or before (refID, pos) in coordinate order.
func (q *releaseQueue) releaseUpTo(refID, pos int) []reads.Read {
	var out []reads.Read
	for q.Len() > 0 {
		top := q.items[0].read
		if reads.ComparePosition(top.RefID, top.Start, refID, pos) > 0 {
			break
		}
		out = append(out, heap.Pop(q).(pending).read)
	}
	return out
}

func (q *releaseQueue) drain() []reads.Read {
	out := make([]reads.Read, 0, q.Len())
	for q.Len() > 0 {
		out = append(out, heap.Pop(q).(pending).read)
	}
	return out
}
