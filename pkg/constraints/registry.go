package constraints

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

// Penalty scores one concern of a genome. It must be pure and total:
// zero means fully satisfied, and it never returns a negative value.
type Penalty func(genes []int, l *layout.Layout) float64

// Registry holds the named penalties applied to every candidate of a run
type Registry struct {
	mu        sync.RWMutex
	penalties map[string]Penalty
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		penalties: make(map[string]Penalty),
	}
}

// Register adds a named penalty
func (r *Registry) Register(name string, penalty Penalty) error {
	if name == "" {
		return fmt.Errorf("penalty name is required")
	}
	if penalty == nil {
		return fmt.Errorf("penalty %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.penalties[name]; exists {
		return fmt.Errorf("penalty %q already registered", name)
	}
	r.penalties[name] = penalty
	return nil
}

// Unregister removes a penalty, returning whether it was present
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.penalties[name]
	delete(r.penalties, name)
	return exists
}

// Names returns the registered penalty names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.penalties))
	for name := range r.penalties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered penalties
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.penalties)
}

// Each visits every penalty in name order, so float sums are reproducible
func (r *Registry) Each(fn func(name string, penalty Penalty)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.penalties))
	for name := range r.penalties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fn(name, r.penalties[name])
	}
}

// Standard builds the production registry for a closet configuration:
// percentage adherence, total space, per-column overflow, quantization, and
// the placement heuristics enabled for each component. A component listed in
// more than one heuristics entry is a ConfigurationError.
func Standard(cfg types.ClosetConfig) (*Registry, error) {
	weight := cfg.UnusedSpaceWeight
	if weight <= 0 {
		weight = constants.DefaultUnusedSpaceWeight
	}

	r := NewRegistry()
	base := []struct {
		name    string
		penalty Penalty
	}{
		{constants.PenaltyPercentage, Percentage},
		{constants.PenaltyTotalSpace, TotalSpace(weight)},
		{constants.PenaltyColumnOverflow, ColumnOverflow},
		{constants.PenaltyQuantization, Quantization},
	}
	for _, p := range base {
		if err := r.Register(p.name, p.penalty); err != nil {
			return nil, err
		}
	}

	for _, h := range cfg.Heuristics {
		enabled := []struct {
			on      bool
			name    string
			penalty Penalty
		}{
			{h.EqualSize, constants.PenaltyEqualSize, EqualSize(h.Component)},
			{h.Centre, constants.PenaltyCentre, Centre(h.Component)},
			{h.FullUtilisation, constants.PenaltyFullUtilisation, FullUtilisation(h.Component)},
		}
		for _, e := range enabled {
			if !e.on {
				continue
			}
			if err := r.Register(heuristicName(h.Component, e.name), e.penalty); err != nil {
				return nil, types.NewConfigurationError("heuristics", "%v", err)
			}
		}
	}

	return r, nil
}

func heuristicName(component, penalty string) string {
	return component + "." + penalty
}
