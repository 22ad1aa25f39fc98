package graph

import (
	"fmt"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
)

// FirstParentRecursive walks parents breadth-first, nearest first, and
// returns the first ancestor of kind.
func (s *Store) FirstParentRecursive(id ID, kind Kind) (ID, error) {
	ancestors, err := s.Ancestors(id)
	if err != nil {
		return 0, err
	}
	for _, a := range ancestors {
		if n, err := s.node(a); err == nil && n.kind == kind {
			return a, nil
		}
	}
	return 0, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("node %d has no %s ancestor", id, kind))
}

// CollectKindChildrenRecursive returns every descendant of kind in
// breadth-first order.
func (s *Store) CollectKindChildrenRecursive(id ID, kind Kind) ([]ID, error) {
	descendants, err := s.Descendants(id)
	if err != nil {
		return nil, err
	}
	return s.filterKind(descendants, kind), nil
}

// Descendants returns every node reachable through child links, breadth
// first, excluding id itself.
func (s *Store) Descendants(id ID) ([]ID, error) {
	return s.walk(id, s.Children)
}

// Ancestors returns every node reachable through parent links, breadth
// first and nearest first, excluding id itself.
func (s *Store) Ancestors(id ID) ([]ID, error) {
	return s.walk(id, s.Parents)
}

func (s *Store) walk(start ID, next func(ID) ([]ID, error)) ([]ID, error) {
	if !s.Exists(start) {
		return nil, notFound(start)
	}
	visited := map[ID]struct{}{start: {}}
	frontier := []ID{start}
	var out []ID
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		neighbours, err := next(current)
		if err != nil {
			continue
		}
		for _, n := range neighbours {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			out = append(out, n)
			frontier = append(frontier, n)
		}
	}
	return out, nil
}
