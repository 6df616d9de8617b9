package samio

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/shenwei356/xopen"

	"github.com/ava-labs/readreducer/pkg/consensus"
	"github.com/ava-labs/readreducer/pkg/intervals"
	"github.com/ava-labs/readreducer/pkg/reads"
)

type recordReader interface {
	Read() (*sam.Record, error)
	Header() *sam.Header
}

// Reader streams Reads out of a SAM or BAM file.
type Reader struct {
	rr     recordReader
	closer io.Closer
}

// Open opens path for reading. SAM files may be gzip compressed.
func Open(path string) (*Reader, error) {
	format := FormatFor(path)
	var (
		in  io.ReadCloser
		err error
	)
	if format == FormatSAM {
		in, err = xopen.Ropen(path)
	} else {
		in, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r, err := NewReader(in, format)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	r.closer = multiCloser{r.closer, in}
	return r, nil
}

// NewReader reads the header from in and positions the reader at the first record.
func NewReader(in io.Reader, format Format) (*Reader, error) {
	switch format {
	case FormatBAM:
		br, err := bam.NewReader(in, 0)
		if err != nil {
			return nil, err
		}
		return &Reader{rr: br, closer: br}, nil
	case FormatSAM:
		sr, err := sam.NewReader(in)
		if err != nil {
			return nil, err
		}
		return &Reader{rr: sr}, nil
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}

// Header returns the input header.
func (r *Reader) Header() *sam.Header { return r.rr.Header() }

// Next returns the next read, or io.EOF after the last one.
func (r *Reader) Next() (reads.Read, error) {
	rec, err := r.rr.Read()
	if err != nil {
		return reads.Read{}, err
	}
	return FromRecord(rec), nil
}

// ReadGroups returns the read groups declared in the header.
func (r *Reader) ReadGroups() []consensus.ReadGroup {
	return ReadGroups(r.Header())
}

// Contigs returns the sequence dictionary of the header.
func (r *Reader) Contigs() []intervals.Contig {
	refs := r.Header().Refs()
	out := make([]intervals.Contig, len(refs))
	for i, ref := range refs {
		out[i] = intervals.Contig{Name: ref.Name(), Length: ref.Len()}
	}
	return out
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadGroups returns the read groups declared in h.
func ReadGroups(h *sam.Header) []consensus.ReadGroup {
	var out []consensus.ReadGroup
	for _, rg := range h.RGs() {
		out = append(out, consensus.ReadGroup{ID: rg.Name(), Sample: rg.Get(tagSM)})
	}
	return out
}

var tagSM = sam.NewTag("SM")

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
