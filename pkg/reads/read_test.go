package reads

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/require"
)

func TestRead_Validate(t *testing.T) {
	t.Parallel()
	r := Read{Name: "bad", Start: 1, Cigar: mustCigar(t, "5M"), Bases: []byte("ACG")}
	require.Error(t, r.Validate())

	r = Read{Name: "badqual", Start: 1, Cigar: mustCigar(t, "3M"), Bases: []byte("ACG"), Quals: []byte{1}}
	require.Error(t, r.Validate())

	r = Read{Name: "noqual", Start: 1, Cigar: mustCigar(t, "1S2M"), Bases: []byte("ACG")}
	require.NoError(t, r.Validate())
}

func TestComparePosition(t *testing.T) {
	t.Parallel()
	require.Equal(t, 0, ComparePosition(1, 10, 1, 10))
	require.Equal(t, -1, ComparePosition(0, 500, 1, 1))
	require.Equal(t, 1, ComparePosition(1, 11, 1, 10))
	require.Equal(t, 1, ComparePosition(-1, 0, 3, 10))
	require.Equal(t, -1, ComparePosition(3, 10, -1, 0))
}

func TestSimplifyAndClone(t *testing.T) {
	t.Parallel()
	nm := 2
	r := newRead(t, 10, "4M", "ACGT", nil)
	r.Optional = Optional{OriginalQuals: []byte{1, 2, 3, 4}, EditDistance: &nm, MD: "4"}

	c := r.Clone()
	c.Bases[0] = 'T'
	*c.Optional.EditDistance = 9
	require.Equal(t, byte('A'), r.Bases[0])
	require.Equal(t, 2, *r.Optional.EditDistance)

	s := Simplify(r)
	require.Equal(t, Optional{}, s.Optional)
	require.Equal(t, r.Bases, s.Bases)
}

func TestFilters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		flags sam.Flags
		refID int
		want  string
	}{
		{name: "passes", flags: 0, refID: 0, want: ""},
		{name: "unmapped flag", flags: sam.Unmapped, refID: 0, want: "unmapped"},
		{name: "no reference", flags: 0, refID: -1, want: "unmapped"},
		{name: "secondary", flags: sam.Secondary, refID: 0, want: "secondary"},
		{name: "duplicate", flags: sam.Duplicate, refID: 0, want: "duplicate"},
		{name: "qc fail", flags: sam.QCFail, refID: 0, want: "qc_fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, rejected := Rejected(DefaultFilters(), Read{Flags: tt.flags, RefID: tt.refID})
			require.Equal(t, tt.want, name)
			require.Equal(t, tt.want != "", rejected)
		})
	}
}
