package samio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/shenwei356/xopen"

	"github.com/ava-labs/readreducer/pkg/consensus"
	"github.com/ava-labs/readreducer/pkg/reads"
)

var errWriterClosed = errors.New("writer is closed")

type recordWriter interface {
	Write(*sam.Record) error
}

// Writer writes Reads to a SAM or BAM stream. The header is written when the first read
// arrives or on AddReadGroups, whichever comes first, so read groups added by the engine
// end up in it.
type Writer struct {
	out     io.Writer
	format  Format
	header  *sam.Header
	workers int

	rw     recordWriter
	bw     *bam.Writer
	closer io.Closer
	closed bool
}

// NewWriter writes to out. header is cloned; the caller's copy is not modified. workers is
// the number of concurrent BGZF compressors for BAM output, 0 meaning GOMAXPROCS.
func NewWriter(out io.Writer, header *sam.Header, format Format, workers int) *Writer {
	return &Writer{
		out:     out,
		format:  format,
		header:  header.Clone(),
		workers: workers,
	}
}

// Create opens path for writing. SAM output is gzip compressed when path ends in ".gz".
func Create(path string, header *sam.Header, workers int) (*Writer, error) {
	format := FormatFor(path)
	var (
		out io.WriteCloser
		err error
	)
	if format == FormatSAM {
		out, err = xopen.Wopen(path)
	} else {
		out, err = os.Create(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := NewWriter(out, header, format, workers)
	w.closer = out
	return w, nil
}

// AddReadGroups adds groups to the output header and writes the header.
func (w *Writer) AddReadGroups(groups []consensus.ReadGroup) error {
	if w.rw != nil {
		return errors.New("read groups must be added before the header is written")
	}
	for _, g := range groups {
		rg, err := sam.NewReadGroup(g.ID, "", "", "", "", "", "", g.Sample, "", "", time.Time{}, 0)
		if err != nil {
			return fmt.Errorf("invalid read group %q: %w", g.ID, err)
		}
		if err := w.header.AddReadGroup(rg); err != nil {
			return fmt.Errorf("failed to add read group %q: %w", g.ID, err)
		}
	}
	return w.open()
}

// Write converts r and writes it.
func (w *Writer) Write(r reads.Read) error {
	if err := w.open(); err != nil {
		return err
	}
	rec, err := ToRecord(r, w.header)
	if err != nil {
		return err
	}
	return w.rw.Write(rec)
}

// Header returns the output header.
func (w *Writer) Header() *sam.Header { return w.header }

// Close flushes the output. The underlying file is closed when the writer was built with
// Create.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	err := w.open()
	w.closed = true
	if w.bw != nil {
		err = errors.Join(err, w.bw.Close())
	}
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	return err
}

func (w *Writer) open() error {
	if w.closed {
		return errWriterClosed
	}
	if w.rw != nil {
		return nil
	}
	switch w.format {
	case FormatBAM:
		bw, err := bam.NewWriter(w.out, w.header, w.workers)
		if err != nil {
			return fmt.Errorf("failed to write bam header: %w", err)
		}
		w.bw, w.rw = bw, bw
	case FormatSAM:
		sw, err := sam.NewWriter(w.out, w.header, sam.FlagDecimal)
		if err != nil {
			return fmt.Errorf("failed to write sam header: %w", err)
		}
		w.rw = sw
	default:
		return fmt.Errorf("unsupported format %s", w.format)
	}
	return nil
}
