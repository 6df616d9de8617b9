// Package samio adapts SAM and BAM files, through biogo/hts, to the reduction engine.
package samio

import (
	"fmt"
	"strings"
)

// Format is an alignment file encoding.
type Format int

const (
	FormatBAM Format = iota
	FormatSAM
)

func (f Format) String() string {
	switch f {
	case FormatBAM:
		return "bam"
	case FormatSAM:
		return "sam"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// FormatFor picks the encoding from a file name. ".sam" and ".sam.gz" are SAM; anything
// else is read and written as BAM.
func FormatFor(path string) Format {
	p := strings.ToLower(strings.TrimSuffix(path, ".gz"))
	if strings.HasSuffix(p, ".sam") {
		return FormatSAM
	}
	return FormatBAM
}
