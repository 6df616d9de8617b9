package reads

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/require"
)

func mustCigar(t *testing.T, s string) sam.Cigar {
	t.Helper()
	c, err := sam.ParseCigar([]byte(s))
	require.NoError(t, err)
	return c
}

func newRead(t *testing.T, start int, cigar, bases string, quals []byte) Read {
	t.Helper()
	if quals == nil {
		quals = make([]byte, len(bases))
		for i := range quals {
			quals[i] = 30
		}
	}
	r := Read{
		Name:      "r1",
		RefID:     0,
		Contig:    "chr1",
		Start:     start,
		Cigar:     mustCigar(t, cigar),
		Bases:     []byte(bases),
		Quals:     quals,
		MapQ:      60,
		ReadGroup: "rg1",
	}
	require.NoError(t, r.Validate())
	return r
}

func TestRead_EndAndRefLen(t *testing.T) {
	t.Parallel()
	r := newRead(t, 100, "3S5M2D4M", "AAACCCCCGGGG", nil)
	require.Equal(t, 11, r.RefLen())
	require.Equal(t, 110, r.End())
	require.False(t, r.Empty())
	require.True(t, Discard(r).Empty())
}

func TestRead_Covers(t *testing.T) {
	t.Parallel()
	r := newRead(t, 100, "2S3M2D2M4N2M", "AACCCGGTT", nil)
	tests := []struct {
		pos  int
		want bool
	}{
		{pos: 99, want: false},
		{pos: 100, want: true},
		{pos: 103, want: true},
		{pos: 104, want: true},
		{pos: 106, want: true},
		{pos: 107, want: false},
		{pos: 110, want: false},
		{pos: 111, want: true},
		{pos: 112, want: true},
		{pos: 113, want: false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, r.Covers(tt.pos), "pos %d", tt.pos)
	}
	require.False(t, Discard(r).Covers(100))
}

func TestHardClipToRegion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		start     int
		cigar     string
		bases     string
		lo, hi    int
		wantStart int
		wantCigar string
		wantBases string
		wantEmpty bool
	}{
		{
			name:  "both sides",
			start: 100, cigar: "10M", bases: "ACGTACGTAC",
			lo: 103, hi: 106,
			wantStart: 103, wantCigar: "3H4M3H", wantBases: "TACG",
		},
		{
			name:  "contained is untouched",
			start: 100, cigar: "10M", bases: "ACGTACGTAC",
			lo: 50, hi: 200,
			wantStart: 100, wantCigar: "10M", wantBases: "ACGTACGTAC",
		},
		{
			name:  "deletion at the left edge is dropped",
			start: 100, cigar: "5M2D5M", bases: "AAAAACCCCC",
			lo: 106, hi: 200,
			wantStart: 107, wantCigar: "5H5M", wantBases: "CCCCC",
		},
		{
			name:  "soft clip kept when only the right side is clipped",
			start: 100, cigar: "2S8M", bases: "TTAAAAAAAA",
			lo: 90, hi: 104,
			wantStart: 100, wantCigar: "2S5M3H", wantBases: "TTAAAAA",
		},
		{
			name:  "insertion at the left edge becomes a hard clip",
			start: 100, cigar: "4M2I4M", bases: "AAAATTCCCC",
			lo: 104, hi: 200,
			wantStart: 104, wantCigar: "6H4M", wantBases: "CCCC",
		},
		{
			name:  "existing hard clips accumulate",
			start: 100, cigar: "2H6M1H", bases: "ACGTAC",
			lo: 101, hi: 104,
			wantStart: 101, wantCigar: "3H4M2H", wantBases: "CGTA",
		},
		{
			name:  "no aligned base left",
			start: 100, cigar: "10M", bases: "ACGTACGTAC",
			lo: 200, hi: 300,
			wantEmpty: true,
		},
		{
			name:  "region falls inside a deletion",
			start: 100, cigar: "3M4D3M", bases: "AAACCC",
			lo: 104, hi: 105,
			wantEmpty: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newRead(t, tt.start, tt.cigar, tt.bases, nil)
			got := HardClipToRegion(r, tt.lo, tt.hi)
			if tt.wantEmpty {
				require.True(t, got.Empty())
				return
			}
			require.NoError(t, got.Validate())
			require.Equal(t, tt.wantStart, got.Start)
			require.Equal(t, tt.wantCigar, got.Cigar.String())
			require.Equal(t, tt.wantBases, string(got.Bases))
			require.GreaterOrEqual(t, got.Start, min(tt.lo, r.Start))
		})
	}
}

func TestHardClipTails(t *testing.T) {
	t.Parallel()
	r := newRead(t, 100, "10M", "ACGTACGTAC", nil)

	left := HardClipLeftTail(r, 104)
	require.Equal(t, 105, left.Start)
	require.Equal(t, "5H5M", left.Cigar.String())

	right := HardClipRightTail(r, 105)
	require.Equal(t, 100, right.Start)
	require.Equal(t, 104, right.End())
	require.Equal(t, "5M5H", right.Cigar.String())

	both := HardClipBothEnds(r, 101, 108)
	require.Equal(t, 102, both.Start)
	require.Equal(t, 107, both.End())
}

func TestHardClipLowQualEnds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		quals     []byte
		wantStart int
		wantCigar string
		wantEmpty bool
	}{
		{name: "both ends", quals: []byte{1, 1, 30, 30, 30, 30, 1}, wantStart: 102, wantCigar: "2H4M1H"},
		{name: "nothing to clip", quals: []byte{2, 30, 30, 30, 30, 30, 2}, wantStart: 100, wantCigar: "7M"},
		{name: "all low", quals: []byte{0, 1, 1, 1, 0, 1, 1}, wantEmpty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newRead(t, 100, "7M", "ACGTACG", tt.quals)
			got := HardClipLowQualEnds(r, 2)
			if tt.wantEmpty {
				require.True(t, got.Empty())
				return
			}
			require.Equal(t, tt.wantStart, got.Start)
			require.Equal(t, tt.wantCigar, got.Cigar.String())
			require.NoError(t, got.Validate())
		})
	}
}

func TestHardClipLowQualEnds_InvalidatesOptionalTags(t *testing.T) {
	t.Parallel()
	r := newRead(t, 100, "4M", "ACGT", []byte{1, 30, 30, 30})
	nm := 1
	r.Optional = Optional{OriginalQuals: []byte{5, 6, 7, 8}, EditDistance: &nm, MD: "4"}

	got := HardClipLowQualEnds(r, 2)
	require.Equal(t, []byte{6, 7, 8}, got.Optional.OriginalQuals)
	require.Nil(t, got.Optional.EditDistance)
	require.Empty(t, got.Optional.MD)
	// the input read is left alone
	require.Equal(t, "ACGT", string(r.Bases))
}
