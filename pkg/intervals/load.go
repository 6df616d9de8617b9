package intervals

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shenwei356/xopen"
)

var ErrUnknownContig = errors.New("region on a contig missing from the sequence dictionary")

// Format selects the coordinate convention of a region file.
type Format int

const (
	// FormatBED is zero-based, half-open: "chr<TAB>start<TAB>end".
	FormatBED Format = iota
	// FormatIntervalList is one-based, inclusive: "chr:start-end", "chr", or tab
	// separated "chr<TAB>start<TAB>end" rows following '@' header lines.
	FormatIntervalList
)

// Contig is one entry of the sequence dictionary; its index is the RefID.
type Contig struct {
	Name   string
	Length int
}

// FormatFor picks the format from the file name, defaulting to an interval list.
func FormatFor(path string) Format {
	p := strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".bgz")
	if strings.HasSuffix(strings.ToLower(p), ".bed") {
		return FormatBED
	}
	return FormatIntervalList
}

// Load reads a region file (plain or compressed) and resolves it against contigs.
func Load(path string, contigs []Contig) ([]Region, error) {
	f, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open region file %s: %w", path, err)
	}
	defer f.Close()

	regions, err := Parse(f, FormatFor(path), contigs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse region file %s: %w", path, err)
	}
	return regions, nil
}

// Parse reads regions in the given format. Rows keep their file order.
func Parse(r io.Reader, format Format, contigs []Contig) ([]Region, error) {
	index := make(map[string]int, len(contigs))
	for i, c := range contigs {
		index[c.Name] = i
	}

	var regions []Region
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || text[0] == '@' ||
			strings.HasPrefix(text, "track") || strings.HasPrefix(text, "browser") {
			continue
		}
		name, start, end, err := parseLine(text, format)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		id, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrUnknownContig, name)
		}
		if end == 0 {
			start, end = 1, contigs[id].Length
		}
		regions = append(regions, Region{Contig: name, RefID: id, Start: start, End: end})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

// parseLine returns 1-based inclusive bounds; end == 0 means the whole contig.
func parseLine(text string, format Format) (name string, start, end int, err error) {
	fields := strings.Fields(text)
	if len(fields) >= 3 {
		start, err = strconv.Atoi(fields[1])
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid start %q: %w", fields[1], err)
		}
		end, err = strconv.Atoi(fields[2])
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid end %q: %w", fields[2], err)
		}
		if format == FormatBED {
			start++
		}
		if start < 1 || end < start {
			return "", 0, 0, fmt.Errorf("invalid bounds %d-%d", start, end)
		}
		return fields[0], start, end, nil
	}
	if format == FormatBED {
		return "", 0, 0, fmt.Errorf("expected at least 3 columns, got %d", len(fields))
	}

	loc := fields[0]
	colon := strings.LastIndexByte(loc, ':')
	if colon < 0 {
		return loc, 0, 0, nil
	}
	name = loc[:colon]
	bounds := strings.ReplaceAll(loc[colon+1:], ",", "")
	s, e, found := strings.Cut(bounds, "-")
	if start, err = strconv.Atoi(s); err != nil {
		return "", 0, 0, fmt.Errorf("invalid start %q: %w", s, err)
	}
	end = start
	if found {
		if end, err = strconv.Atoi(e); err != nil {
			return "", 0, 0, fmt.Errorf("invalid end %q: %w", e, err)
		}
	}
	if start < 1 || end < start {
		return "", 0, 0, fmt.Errorf("invalid bounds %d-%d", start, end)
	}
	return name, start, end, nil
}
