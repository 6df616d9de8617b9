package reduce

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/readreducer/pkg/reads"
)

func TestReleaseQueue(t *testing.T) {
	t.Parallel()
	at := func(name string, refID, start int) reads.Read {
		return reads.Read{Name: name, RefID: refID, Start: start}
	}
	var q releaseQueue
	q.add([]reads.Read{at("c", 0, 30), at("a", 0, 10)})
	q.add([]reads.Read{at("b1", 0, 20), at("b2", 0, 20), at("d", 1, 5)})

	names := func(rs []reads.Read) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}
	require.Equal(t, []string{"a", "b1", "b2"}, names(q.releaseUpTo(0, 20)))
	require.Empty(t, q.releaseUpTo(0, 25))
	require.Equal(t, 2, q.Len())
	require.Equal(t, []string{"c", "d"}, names(q.drain()))
	require.Zero(t, q.Len())
}

func TestStats(t *testing.T) {
	t.Parallel()
	var s Stats
	require.Zero(t, s.CompressionPercent())
	require.Empty(t, s.QualityHistogram())

	s.TotalReads, s.EmittedReads = 200, 50
	require.InDelta(t, 25.0, s.CompressionPercent(), 1e-9)

	s.filtered("duplicate")
	c := s.clone()
	c.Filtered["duplicate"] = 9
	require.Equal(t, int64(1), s.Filtered["duplicate"])
}
