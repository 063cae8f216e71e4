package layout

import (
	"math/rand"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
)

// Component is a member of the Component Set with its resolved target share
type Component struct {
	Name      string
	Target    float64
	MinHeight int
}

// Layout is the resolved, immutable view of a closet configuration.
// The order of Components fixes the genome encoding for one run.
type Layout struct {
	Width      int
	Height     int
	Columns    int
	CatchAll   string
	Components []Component
}

// Resolve validates a closet configuration and derives its Component Set.
// Zero-target components are dropped, except the catch-all which always stays
// and absorbs whatever share the other targets leave over.
func Resolve(cfg types.ClosetConfig) (*Layout, error) {
	if cfg.Height <= 0 {
		return nil, types.NewConfigurationError("height", "must be positive, got %d", cfg.Height)
	}
	if cfg.Width < 0 {
		return nil, types.NewConfigurationError("width", "must not be negative, got %d", cfg.Width)
	}
	if cfg.Columns <= 0 {
		return nil, types.NewConfigurationError("columns", "must be positive, got %d", cfg.Columns)
	}
	if cfg.CatchAll == "" {
		return nil, types.NewConfigurationError("catch_all", "a catch-all component is required")
	}

	seen := make(map[string]bool, len(cfg.Components))
	var otherTotal float64
	catchAllUnit := 0
	for _, comp := range cfg.Components {
		if comp.Name == "" {
			return nil, types.NewConfigurationError("components", "component name is empty")
		}
		if seen[comp.Name] {
			return nil, types.NewConfigurationError("components", "component %q declared twice", comp.Name)
		}
		seen[comp.Name] = true

		if comp.MinHeight <= 0 {
			return nil, types.NewConfigurationError("components."+comp.Name+".min_height",
				"minimum unit must be positive, got %d", comp.MinHeight)
		}
		if comp.Target < 0 {
			return nil, types.NewConfigurationError("components."+comp.Name+".target",
				"target percentage must not be negative, got %g", comp.Target)
		}

		if comp.Name == cfg.CatchAll {
			catchAllUnit = comp.MinHeight
			continue
		}
		otherTotal += comp.Target
	}

	heuristics := make(map[string]bool, len(cfg.Heuristics))
	for _, h := range cfg.Heuristics {
		if h.Component == "" {
			return nil, types.NewConfigurationError("heuristics", "heuristic entry has no component")
		}
		if heuristics[h.Component] {
			return nil, types.NewConfigurationError("heuristics", "component %q listed twice", h.Component)
		}
		heuristics[h.Component] = true
	}

	if catchAllUnit == 0 {
		return nil, types.NewConfigurationError("catch_all", "catch-all component %q has no minimum unit", cfg.CatchAll)
	}
	if otherTotal > 100 {
		return nil, types.NewConfigurationError("components", "target percentages sum to %g, more than 100", otherTotal)
	}

	l := &Layout{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Columns:  cfg.Columns,
		CatchAll: cfg.CatchAll,
	}
	for _, comp := range cfg.Components {
		if comp.Name == cfg.CatchAll {
			l.Components = append(l.Components, Component{
				Name:      comp.Name,
				Target:    100 - otherTotal,
				MinHeight: comp.MinHeight,
			})
			continue
		}
		if comp.Target == 0 {
			continue
		}
		l.Components = append(l.Components, Component{
			Name:      comp.Name,
			Target:    comp.Target,
			MinHeight: comp.MinHeight,
		})
	}

	return l, nil
}

// NumComponents returns the size of the Component Set
func (l *Layout) NumComponents() int {
	return len(l.Components)
}

// Size returns the genome length, columns * |Component Set|
func (l *Layout) Size() int {
	return l.Columns * len(l.Components)
}

// Capacity returns the total height available across all columns
func (l *Layout) Capacity() int {
	return l.Columns * l.Height
}

// Index returns the Component Set position of the named component
func (l *Layout) Index(name string) (int, bool) {
	for i, comp := range l.Components {
		if comp.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Offset returns the genome position of component i in column col
func (l *Layout) Offset(col, i int) int {
	return col*len(l.Components) + i
}

// ComponentAt returns the component owning a genome position
func (l *Layout) ComponentAt(pos int) Component {
	return l.Components[pos%len(l.Components)]
}

// Names returns the Component Set in encoding order
func (l *Layout) Names() []string {
	names := make([]string, len(l.Components))
	for i, comp := range l.Components {
		names[i] = comp.Name
	}
	return names
}

// ComponentHeights returns the height of component i in every column
func (l *Layout) ComponentHeights(genes []int, i int) []int {
	heights := make([]int, l.Columns)
	for col := 0; col < l.Columns; col++ {
		pos := l.Offset(col, i)
		if pos < len(genes) {
			heights[col] = genes[pos]
		}
	}
	return heights
}

// ColumnTotal sums the heights in one column
func (l *Layout) ColumnTotal(genes []int, col int) int {
	total := 0
	for i := range l.Components {
		pos := l.Offset(col, i)
		if pos < len(genes) {
			total += genes[pos]
		}
	}
	return total
}

// RandomGene draws a fresh quantized height for genome position pos:
// a uniform multiple of the owning unit in [0, height].
func (l *Layout) RandomGene(pos int, rng *rand.Rand) int {
	unit := l.ComponentAt(pos).MinHeight
	return rng.Intn(l.Height/unit+1) * unit
}

// RandomCandidate builds a candidate whose every gene is a quantized random height
func RandomCandidate(l *Layout, rng *rand.Rand) (*types.Candidate, error) {
	if len(l.Components) == 0 {
		return nil, types.NewConfigurationError("components", "component set is empty")
	}
	for _, comp := range l.Components {
		if comp.MinHeight <= 0 {
			return nil, types.NewConfigurationError("components."+comp.Name+".min_height",
				"minimum unit must be positive, got %d", comp.MinHeight)
		}
	}

	genes := make([]int, l.Size())
	for pos := range genes {
		genes[pos] = l.RandomGene(pos, rng)
	}
	return types.NewCandidate(genes), nil
}
