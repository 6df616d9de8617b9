package reduce

import (
	"errors"
	"io"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/readreducer/pkg/consensus"
	"github.com/ava-labs/readreducer/pkg/reads"
)

func newRead(t *testing.T, name, rg string, refID, start int, cigar, bases string) reads.Read {
	t.Helper()
	c, err := sam.ParseCigar([]byte(cigar))
	require.NoError(t, err)
	quals := make([]byte, len(bases))
	for i := range quals {
		quals[i] = 30
	}
	r := reads.Read{
		Name:      name,
		RefID:     refID,
		Contig:    []string{"chr1", "chr2", "chr3"}[refID],
		Start:     start,
		Cigar:     c,
		Bases:     []byte(bases),
		Quals:     quals,
		MapQ:      60,
		ReadGroup: rg,
	}
	require.NoError(t, r.Validate())
	return r
}

type memSink struct {
	groups  []consensus.ReadGroup
	written []reads.Read
	// writesBeforeGroups counts writes that arrived before AddReadGroups.
	writesBeforeGroups int
	registered         bool
	failWrites         bool
}

func (s *memSink) AddReadGroups(groups []consensus.ReadGroup) error {
	s.groups = append(s.groups, groups...)
	s.registered = true
	return nil
}

func (s *memSink) Write(r reads.Read) error {
	if s.failWrites {
		return errors.New("disk full")
	}
	if !s.registered {
		s.writesBeforeGroups++
	}
	s.written = append(s.written, r)
	return nil
}

type sliceSource struct {
	reads []reads.Read
	err   error
}

func (s *sliceSource) Next() (reads.Read, error) {
	if len(s.reads) == 0 {
		if s.err != nil {
			return reads.Read{}, s.err
		}
		return reads.Read{}, io.EOF
	}
	r := s.reads[0]
	s.reads = s.reads[1:]
	return r, nil
}
