package constraints

import (
	"math"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

// Percentage penalises the absolute deviation of each component's share of
// the total capacity from its target percentage.
func Percentage(genes []int, l *layout.Layout) float64 {
	capacity := float64(l.Capacity())
	if capacity <= 0 {
		return 0
	}

	penalty := 0.0
	for i, comp := range l.Components {
		total := 0
		for _, h := range l.ComponentHeights(genes, i) {
			total += h
		}
		allocated := 100 * float64(total) / capacity
		penalty += math.Abs(allocated - comp.Target)
	}
	return penalty
}

// TotalSpace charges a flat penalty when the layout exceeds capacity and
// otherwise charges every unused unit of height, scaled by weight.
func TotalSpace(weight float64) Penalty {
	return func(genes []int, l *layout.Layout) float64 {
		used := 0
		for _, h := range genes {
			used += h
		}
		unused := l.Capacity() - used
		if unused < 0 {
			return constants.OverCapacityPenalty
		}
		return float64(unused) * weight
	}
}

// ColumnOverflow charges every column whose contents exceed the height
func ColumnOverflow(genes []int, l *layout.Layout) float64 {
	penalty := 0.0
	for col := 0; col < l.Columns; col++ {
		total := l.ColumnTotal(genes, col)
		if total > l.Height {
			penalty += constants.ColumnOverflowPenalty + float64(total-l.Height)
		}
	}
	return penalty
}

// Quantization charges every nonzero height that is off its component's lattice
func Quantization(genes []int, l *layout.Layout) float64 {
	if len(l.Components) == 0 {
		return 0
	}

	penalty := 0.0
	for pos, h := range genes {
		if h == 0 {
			continue
		}
		unit := l.ComponentAt(pos).MinHeight
		if h < 0 || unit <= 0 || h%unit != 0 {
			penalty += constants.QuantizationPenalty
		}
	}
	return penalty
}
