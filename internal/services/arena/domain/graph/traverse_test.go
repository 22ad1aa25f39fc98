package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestTraversal(t *testing.T) {
	s := buildTree(t)

	fusion, err := s.FirstParentRecursive(5, KindFusion)
	if err != nil || fusion != 3 {
		t.Fatalf("fusion of repr = %d, %v", fusion, err)
	}
	if _, err := s.FirstParentRecursive(1, KindTeam); !errors.Is(err, ErrNotFound) {
		t.Fatalf("root ancestor err = %v", err)
	}

	units, err := s.CollectKindChildrenRecursive(1, KindUnit)
	if err != nil || !slices.Equal(units, []ID{4, 6}) {
		t.Fatalf("units = %v, %v", units, err)
	}
	desc, err := s.Descendants(3)
	if err != nil || !slices.Equal(desc, []ID{4, 6, 5}) {
		t.Fatalf("descendants = %v, %v (want breadth first)", desc, err)
	}
	anc, err := s.Ancestors(5)
	if err != nil || !slices.Equal(anc, []ID{4, 3, 2, 1}) {
		t.Fatalf("ancestors = %v, %v", anc, err)
	}
}

func TestTraversalSurvivesCycles(t *testing.T) {
	s := buildTree(t)
	if err := s.AddLink(5, 3); err != nil {
		t.Fatalf("link: %v", err)
	}
	desc, err := s.Descendants(3)
	if err != nil {
		t.Fatalf("descendants: %v", err)
	}
	if slices.Contains(desc, 3) {
		t.Fatalf("start node revisited: %v", desc)
	}
	if len(desc) != 3 {
		t.Fatalf("descendants = %v", desc)
	}
}
