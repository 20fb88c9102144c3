package core

import (
	"sort"

	"m3m/internal/domain"
)

// Resolver computes the load order for a set of enabled mods. The order is
// deterministic: load_early mods come first, dependency edges are honored
// with a stable topological sort, and ties fall back to the caller's
// explicit ordering.
type Resolver struct{}

// NewResolver creates a load-order resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the mod IDs of the enabled set in load order. explicitOrder
// supplies the tie-break rank (typically the profile's enabled sequence);
// known reports whether an ID exists at all, letting missing dependencies be
// distinguished from merely disabled ones.
//
// A dependency on a mod outside the enabled set fails with
// MissingDependencyError. A dependency cycle fails with CycleError naming
// the cycle members.
func (r *Resolver) Resolve(enabled []domain.Mod, explicitOrder []string, known func(id string) bool) ([]string, error) {
	byID := make(map[string]domain.Mod, len(enabled))
	for _, m := range enabled {
		byID[m.ID] = m
	}

	rank := make(map[string]int, len(explicitOrder))
	for i, id := range explicitOrder {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}
	for _, m := range enabled {
		if _, ok := rank[m.ID]; !ok {
			rank[m.ID] = len(rank)
		}
	}

	// load_early partitions the order outright: every flagged mod sorts
	// before every unflagged one regardless of dependency edges, so edges
	// crossing the partition boundary are already satisfied (or overridden)
	// by the partition itself and only same-partition edges enter the graph.
	early := make(map[string]bool, len(enabled))
	for _, m := range enabled {
		early[m.ID] = m.LoadEarly
	}

	indeg := make(map[string]int, len(enabled))
	succ := make(map[string][]string, len(enabled))
	for _, m := range enabled {
		indeg[m.ID] += 0
		for _, dep := range m.Dependencies {
			if _, ok := byID[dep]; !ok {
				disabled := known != nil && known(dep)
				return nil, &domain.MissingDependencyError{ModID: m.ID, DepID: dep, Disabled: disabled}
			}
			if early[dep] != early[m.ID] {
				continue
			}
			succ[dep] = append(succ[dep], m.ID)
			indeg[m.ID]++
		}
	}

	less := func(a, b string) bool {
		if early[a] != early[b] {
			return early[a]
		}
		return rank[a] < rank[b]
	}

	var ready []string
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })

	order := make([]string, 0, len(enabled))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, next := range succ[id] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = insertSorted(ready, next, less)
			}
		}
	}

	if len(order) != len(enabled) {
		var cycle []string
		for id, d := range indeg {
			if d > 0 {
				cycle = append(cycle, id)
			}
		}
		sort.Slice(cycle, func(i, j int) bool { return rank[cycle[i]] < rank[cycle[j]] })
		return nil, &domain.CycleError{Cycle: cycle}
	}
	return order, nil
}

func insertSorted(list []string, id string, less func(a, b string) bool) []string {
	i := sort.Search(len(list), func(i int) bool { return less(id, list[i]) })
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = id
	return list
}
