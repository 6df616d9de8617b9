package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumn_Plurality(t *testing.T) {
	t.Parallel()
	type obs struct {
		base     byte
		qual     byte
		consider bool
	}
	tests := []struct {
		name     string
		obs      []obs
		wantBase byte
		wantQual byte
	}{
		{name: "majority", obs: []obs{{'C', 30, true}, {'C', 30, true}, {'A', 30, true}}, wantBase: 'C', wantQual: 60},
		{name: "tie goes to lowest byte", obs: []obs{{'T', 30, true}, {'G', 30, true}}, wantBase: 'G', wantQual: 30},
		{name: "deletion sorts first", obs: []obs{{'A', 30, true}, {Deletion, 0, true}}, wantBase: Deletion, wantQual: 0},
		{name: "quality saturates", obs: []obs{{'A', 60, true}, {'A', 60, true}}, wantBase: 'A', wantQual: 99},
		{name: "only considered vote", obs: []obs{{'T', 10, false}, {'T', 10, false}, {'A', 30, true}}, wantBase: 'A', wantQual: 30},
		{name: "falls back to all", obs: []obs{{'T', 10, false}, {'T', 12, false}, {'A', 10, false}}, wantBase: 'T', wantQual: 22},
		{name: "ambiguous bases become N", obs: []obs{{'R', 30, true}}, wantBase: 'N', wantQual: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var c Column
			for _, o := range tt.obs {
				c.add(symbolIndex(o.base), o.qual, 60, o.consider)
			}
			base, qual := c.Plurality(DefaultConfig())
			require.Equal(t, string(tt.wantBase), string(base))
			require.Equal(t, tt.wantQual, qual)
			require.Equal(t, len(tt.obs), c.Depth())
		})
	}
}

func TestColumn_Variable(t *testing.T) {
	t.Parallel()
	build := func(bases string, insertions int) *Column {
		c := &Column{}
		for i := 0; i < len(bases); i++ {
			c.add(symbolIndex(bases[i]), 30, 60, true)
		}
		c.insertions = insertions
		return c
	}
	tests := []struct {
		name   string
		col    *Column
		mutate func(*Config)
		want   bool
	}{
		{name: "uniform", col: build("AAAAA", 0), want: false},
		{name: "alt above threshold", col: build("AAACC", 0), want: true},
		{name: "alt below threshold", col: build("AAAAAAAAAC", 0), want: false},
		{name: "alt at threshold", col: build("AAAAAAACCC", 0), want: true},
		{name: "insertions", col: build("AAAA", 2), want: true},
		{name: "depth ceiling", col: build("AACC", 0), mutate: func(c *Config) { c.AverageDepthAtVariableSites = 4 }, want: false},
		{name: "nothing considered", col: &Column{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			require.Equal(t, tt.want, tt.col.Variable(cfg))
		})
	}
}
