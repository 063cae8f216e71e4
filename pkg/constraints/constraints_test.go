package constraints

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

// closet returns a 4-column closet holding shelves (catch-all) and drawers
func closet(height int, drawerTarget float64) types.ClosetConfig {
	return types.ClosetConfig{
		Width:   2540,
		Height:  height,
		Columns: 4,
		Components: []types.ComponentConfig{
			{Name: "shelves", MinHeight: 32},
			{Name: "drawers", Target: drawerTarget, MinHeight: 224},
		},
		CatchAll: "shelves",
		Heuristics: []types.HeuristicConfig{
			{Component: "drawers", EqualSize: true, Centre: true, FullUtilisation: true},
		},
	}
}

func resolve(t *testing.T, cfg types.ClosetConfig) *layout.Layout {
	t.Helper()
	l, err := layout.Resolve(cfg)
	require.NoError(t, err)
	return l
}

// genes interleaves per-column shelf and drawer heights
func genes(shelves, drawers []int) []int {
	out := make([]int, 0, 2*len(shelves))
	for col := range shelves {
		out = append(out, shelves[col], drawers[col])
	}
	return out
}

func TestPercentage(t *testing.T) {
	l := resolve(t, closet(2000, 30))

	exact := genes([]int{1400, 1400, 1400, 1400}, []int{600, 600, 600, 600})
	assert.Equal(t, 0.0, Percentage(exact, l))

	// Same totals spread differently are still exact
	shifted := genes([]int{2000, 800, 1400, 1400}, []int{0, 1200, 600, 600})
	assert.Equal(t, 0.0, Percentage(shifted, l))

	// Moving 80 units from shelves to drawers is 1% off for both components
	off := genes([]int{1320, 1400, 1400, 1400}, []int{680, 600, 600, 600})
	assert.InDelta(t, 2.0, Percentage(off, l), 1e-9)

	empty := make([]int, l.Size())
	assert.InDelta(t, 100.0, Percentage(empty, l), 1e-9)
}

func TestTotalSpace(t *testing.T) {
	l := resolve(t, closet(2176, 30))
	penalty := TotalSpace(1.0)

	// All zero is maximum under-utilisation
	assert.Equal(t, float64(4*2176), penalty(make([]int, l.Size()), l))

	full := genes([]int{1280, 1280, 1280, 1280}, []int{896, 896, 896, 896})
	assert.Equal(t, 0.0, penalty(full, l))

	over := genes([]int{2176, 2176, 2176, 2176}, []int{224, 0, 0, 0})
	assert.Equal(t, 100.0, penalty(over, l))

	under := genes([]int{1280, 1280, 1280, 1280}, []int{672, 896, 896, 896})
	assert.Equal(t, 224.0, penalty(under, l))
	assert.Equal(t, 112.0, TotalSpace(0.5)(under, l))
}

func TestColumnOverflow(t *testing.T) {
	l := resolve(t, closet(2176, 30))

	// Column 0 exceeds the height by 50
	candidate := genes([]int{2002, 1280, 1280, 0}, []int{224, 896, 896, 0})
	assert.Equal(t, 150.0, ColumnOverflow(candidate, l))

	// Two overflowing columns are charged independently
	candidate = genes([]int{2002, 2176, 1280, 0}, []int{224, 224, 896, 0})
	assert.Equal(t, 150.0+324.0, ColumnOverflow(candidate, l))

	fits := genes([]int{1280, 1280, 1280, 2176}, []int{896, 896, 896, 0})
	assert.Equal(t, 0.0, ColumnOverflow(fits, l))
}

func TestQuantization(t *testing.T) {
	l := resolve(t, closet(2176, 30))

	assert.Equal(t, 0.0, Quantization(make([]int, l.Size()), l))

	valid := genes([]int{1280, 32, 0, 2176}, []int{896, 224, 0, 0})
	assert.Equal(t, 0.0, Quantization(valid, l))

	// 33 is off the shelf lattice, 300 is off the drawer lattice, 32 is not a drawer multiple
	invalid := genes([]int{33, 32, 0, 2176}, []int{300, 32, 0, 0})
	assert.Equal(t, 300.0, Quantization(invalid, l))

	negative := genes([]int{-32, 0, 0, 0}, []int{0, 0, 0, 0})
	assert.Equal(t, 100.0, Quantization(negative, l))
}

func TestEqualSize(t *testing.T) {
	l := resolve(t, closet(2176, 30))
	penalty := EqualSize("drawers")

	equal := genes([]int{0, 0, 0, 0}, []int{672, 672, 0, 672})
	assert.Equal(t, 0.0, penalty(equal, l))

	single := genes([]int{0, 0, 0, 0}, []int{0, 896, 0, 0})
	assert.Equal(t, 0.0, penalty(single, l))

	// mean 746.67, deviations 149.33 + 74.67 + 74.67, averaged over three columns
	uneven := genes([]int{0, 0, 0, 0}, []int{896, 0, 672, 672})
	assert.InDelta(t, 9.9556, penalty(uneven, l), 1e-3)

	// One odd column among four: deviations 56 * 3 + 168, averaged over four
	oneOff := genes([]int{0, 0, 0, 0}, []int{672, 448, 448, 448})
	assert.InDelta(t, 8.4, penalty(oneOff, l), 1e-9)

	assert.Equal(t, 0.0, EqualSize("long_hanging")(uneven, l))
}

func TestIdealPositions(t *testing.T) {
	tests := []struct {
		columns  int
		target   float64
		expected []int
	}{
		{4, 25, []int{1, 2}},
		{4, 10, []int{1, 2}},
		{4, 30, []int{0, 1, 2, 3}},
		{4, 100, []int{0, 1, 2, 3}},
		{5, 10, []int{2}},
		{5, 20, []int{1, 2, 3}},
		{3, 50, []int{0, 1, 2}},
		{4, 0, nil},
		{0, 50, nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IdealPositions(tt.columns, tt.target),
			"columns=%d target=%g", tt.columns, tt.target)
	}
}

func TestCentre(t *testing.T) {
	l := resolve(t, closet(2176, 25))
	penalty := Centre("drawers")

	middle := genes([]int{2176, 1280, 1280, 2176}, []int{0, 896, 896, 0})
	assert.Equal(t, 0.0, penalty(middle, l))

	outer := genes([]int{1280, 2176, 2176, 1280}, []int{896, 0, 0, 896})
	assert.Equal(t, 20.0, penalty(outer, l))
	assert.Greater(t, penalty(outer, l), penalty(middle, l))

	// One column shifted by one position
	shifted := genes([]int{2176, 1280, 2176, 1280}, []int{0, 896, 0, 896})
	assert.Equal(t, 10.0, penalty(shifted, l))

	// Two misaligned columns plus two beyond the ideal count
	all := genes([]int{1280, 1280, 1280, 1280}, []int{896, 896, 896, 896})
	assert.Equal(t, 20.0+100.0, penalty(all, l))

	none := genes([]int{2176, 2176, 2176, 2176}, []int{0, 0, 0, 0})
	assert.Equal(t, 0.0, penalty(none, l))
}

func TestFullUtilisation(t *testing.T) {
	l := resolve(t, closet(2176, 30))
	penalty := FullUtilisation("drawers")

	// The cap is 896, the largest multiple of 224 not above 1088
	within := genes([]int{0, 0, 0, 0}, []int{896, 672, 0, 224})
	assert.Equal(t, 0.0, penalty(within, l))

	over := genes([]int{0, 0, 0, 0}, []int{1120, 896, 0, 1344})
	assert.Equal(t, float64((224+448)*5), penalty(over, l))
}

func TestPenaltiesTolerateShortGenomes(t *testing.T) {
	l := resolve(t, closet(2176, 30))
	short := []int{32, 224}

	r, err := Standard(closet(2176, 30))
	require.NoError(t, err)
	r.Each(func(name string, penalty Penalty) {
		assert.NotPanics(t, func() {
			assert.GreaterOrEqual(t, penalty(short, l), 0.0, name)
		})
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())

	require.NoError(t, r.Register("b", ColumnOverflow))
	require.NoError(t, r.Register("a", Quantization))

	err := r.Register("a", Percentage)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, r.Register("", Percentage))
	assert.Error(t, r.Register("c", nil))

	assert.Equal(t, []string{"a", "b"}, r.Names())

	visited := make([]string, 0)
	r.Each(func(name string, _ Penalty) {
		visited = append(visited, name)
	})
	assert.Equal(t, []string{"a", "b"}, visited)

	assert.True(t, r.Unregister("a"))
	assert.False(t, r.Unregister("a"))
	assert.Equal(t, []string{"b"}, r.Names())
}

func TestStandardRegistry(t *testing.T) {
	r, err := Standard(closet(2176, 30))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"column_overflow",
		"drawers.centre",
		"drawers.equal_size",
		"drawers.full_utilisation",
		"percentage",
		"quantization",
		"total_space",
	}, r.Names())

	cfg := closet(2176, 30)
	cfg.Heuristics = nil
	r, err = Standard(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
}

func TestStandardRejectsRepeatedHeuristics(t *testing.T) {
	cfg := closet(2176, 30)
	cfg.Heuristics = append(cfg.Heuristics, types.HeuristicConfig{Component: "drawers", Centre: true})

	_, err := Standard(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.Contains(t, err.Error(), "drawers.centre")

	// Entries for different components coexist
	cfg = closet(2176, 30)
	cfg.Heuristics = append(cfg.Heuristics, types.HeuristicConfig{Component: "shelves", EqualSize: true})
	r, err := Standard(cfg)
	require.NoError(t, err)
	assert.Contains(t, r.Names(), "shelves.equal_size")
}
