package reduce

import (
	"github.com/ava-labs/readreducer/pkg/consensus"
	"github.com/ava-labs/readreducer/pkg/reads"
)

// Source supplies coordinate-sorted reads one at a time. Next returns io.EOF after the
// last read.
type Source interface {
	Next() (reads.Read, error)
}

// Sink receives the reduced stream. AddReadGroups is called once, before the first Write.
type Sink interface {
	AddReadGroups(groups []consensus.ReadGroup) error
	Write(r reads.Read) error
}
