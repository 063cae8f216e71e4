package constraints

import (
	"math"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

// EqualSize encourages a component to have the same height in every column
// that holds it: the mean absolute deviation of those heights, divided by 10.
// Components outside the Component Set score zero.
func EqualSize(component string) Penalty {
	return func(genes []int, l *layout.Layout) float64 {
		i, ok := l.Index(component)
		if !ok {
			return 0
		}

		heights := make([]int, 0, l.Columns)
		for _, h := range l.ComponentHeights(genes, i) {
			if h > 0 {
				heights = append(heights, h)
			}
		}
		if len(heights) < 2 {
			return 0
		}

		sum := 0
		for _, h := range heights {
			sum += h
		}
		mean := float64(sum) / float64(len(heights))

		deviation := 0.0
		for _, h := range heights {
			deviation += math.Abs(float64(h) - mean)
		}
		return deviation / float64(len(heights)) / constants.EqualSizeDivisor
	}
}

// Centre encourages a component to occupy a symmetric block of columns around
// the middle of the closet, sized by its target percentage.
func Centre(component string) Penalty {
	return func(genes []int, l *layout.Layout) float64 {
		i, ok := l.Index(component)
		if !ok {
			return 0
		}

		ideal := IdealPositions(l.Columns, l.Components[i].Target)

		occupied := make([]int, 0, l.Columns)
		for col, h := range l.ComponentHeights(genes, i) {
			if h > 0 {
				occupied = append(occupied, col)
			}
		}

		penalty := 0.0
		for k := 0; k < len(occupied) && k < len(ideal); k++ {
			penalty += math.Abs(float64(occupied[k]-ideal[k])) * constants.CentreMisalignWeight
		}
		if extra := len(occupied) - len(ideal); extra > 0 {
			penalty += float64(extra) * constants.CentreExtraColumnWeight
		}
		return penalty
	}
}

// IdealPositions returns the columns a component should occupy to be centred.
// The required width is ceil(columns * target * 2 / 100); the block grows
// symmetrically from the middle column (odd counts) or the two middle columns
// (even counts) and is clipped to the closet.
func IdealPositions(columns int, target float64) []int {
	if columns <= 0 {
		return nil
	}
	required := int(math.Ceil(float64(columns)*target*2/100 - 1e-9))
	if required <= 0 {
		return nil
	}

	mid := columns / 2
	var lo, hi int
	if columns%2 == 0 {
		lo = mid - 1 - (required-1)/2
		hi = mid + (required-1)/2
	} else {
		lo = mid - required/2
		hi = mid + required/2
	}
	if lo < 0 {
		lo = 0
	}
	if hi > columns-1 {
		hi = columns - 1
	}

	positions := make([]int, 0, hi-lo+1)
	for col := lo; col <= hi; col++ {
		positions = append(positions, col)
	}
	return positions
}

// FullUtilisation caps a component at the largest multiple of its unit not
// exceeding half the height, and charges every unit of height above the cap.
func FullUtilisation(component string) Penalty {
	return func(genes []int, l *layout.Layout) float64 {
		i, ok := l.Index(component)
		if !ok {
			return 0
		}

		unit := l.Components[i].MinHeight
		if unit <= 0 {
			return 0
		}
		limit := (l.Height / 2 / unit) * unit

		penalty := 0.0
		for _, h := range l.ComponentHeights(genes, i) {
			if h > limit {
				penalty += float64(h-limit) * constants.FullUtilisationWeight
			}
		}
		return penalty
	}
}
