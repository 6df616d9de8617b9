// Package reads defines the aligned read model shared by the interval cursor, the
// consensus compressor and the SAM/BAM adapters, together with the hard-clipping
// operations used to trim reads by quality or by reference coordinates.
//
// Coordinates are 1-based and inclusive. Cigars use the biogo/hts representation so
// that records convert to and from SAM/BAM without translation.
package reads
