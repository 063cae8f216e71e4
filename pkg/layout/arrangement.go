package layout

import (
	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
)

// ToArrangement reshapes a flat genome into per-column allocations.
// It refuses genomes produced under a different Component Set.
func ToArrangement(genes []int, l *Layout) (*types.Arrangement, error) {
	if len(genes) != l.Size() {
		return nil, &types.ShapeMismatchError{Got: len(genes), Want: l.Size()}
	}

	arrangement := &types.Arrangement{
		Width:   l.Width,
		Height:  l.Height,
		Columns: make([]types.ColumnArrangement, l.Columns),
	}
	for col := 0; col < l.Columns; col++ {
		allocations := make([]types.Allocation, len(l.Components))
		for i, comp := range l.Components {
			allocations[i] = types.Allocation{
				Component: comp.Name,
				Height:    genes[l.Offset(col, i)],
			}
		}
		arrangement.Columns[col] = types.ColumnArrangement{
			Index:       col,
			Allocations: allocations,
		}
	}

	return arrangement, nil
}
