package graph

import (
	"errors"
	"slices"
	"testing"
)

type unitData struct{ name string }

func buildTree(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	steps := []struct {
		id, owner ID
		kind      Kind
		data      any
	}{
		{1, 0, KindBattle, nil},
		{2, 1, KindTeam, nil},
		{3, 2, KindFusion, nil},
		{4, 3, KindUnit, unitData{name: "knight"}},
		{5, 4, KindRepresentation, nil},
		{6, 3, KindUnit, unitData{name: "archer"}},
	}
	for _, step := range steps {
		if err := s.Insert(step.id, step.owner, step.kind, step.data); err != nil {
			t.Fatalf("insert %d: %v", step.id, err)
		}
	}
	return s
}

func TestInsert(t *testing.T) {
	s := buildTree(t)

	if got := s.Len(); got != 6 {
		t.Fatalf("len = %d, want 6", got)
	}
	if err := s.Insert(4, 1, KindUnit, nil); !errors.Is(err, ErrCustom) {
		t.Fatalf("duplicate insert err = %v, want custom", err)
	}
	if err := s.Insert(9, 42, KindUnit, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing owner err = %v, want not found", err)
	}
	if err := s.Insert(0, 1, KindUnit, nil); !errors.Is(err, ErrCustom) {
		t.Fatalf("zero id err = %v, want custom", err)
	}
	if got := s.NextID(); got != 7 {
		t.Fatalf("next id = %d, want 7", got)
	}
}

func TestGet(t *testing.T) {
	s := buildTree(t)

	u, err := Get[unitData](s, 4, KindUnit)
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if u.name != "knight" {
		t.Fatalf("name = %q, want knight", u.name)
	}
	if _, err := Get[unitData](s, 3, KindUnit); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("fusion as unit err = %v, want wrong kind", err)
	}
	if _, err := Get[string](s, 4, KindUnit); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("payload mismatch err = %v, want wrong kind", err)
	}
	if _, err := Get[unitData](s, 99, KindUnit); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing err = %v, want not found", err)
	}
}

func TestDeleteRemovesOwnedSubtree(t *testing.T) {
	s := buildTree(t)
	if err := s.Insert(7, 1, KindStatus, nil); err != nil {
		t.Fatalf("insert status: %v", err)
	}
	if err := s.AddLink(7, 5); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := s.Delete(4); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, id := range []ID{4, 5} {
		if s.Exists(id) {
			t.Fatalf("node %d survived delete", id)
		}
	}
	children, err := s.Children(3)
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if !slices.Equal(children, []ID{6}) {
		t.Fatalf("fusion children = %v, want [6]", children)
	}
	refs, err := s.Children(7)
	if err != nil {
		t.Fatalf("status children: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("status still references %v", refs)
	}
	if !slices.Equal(s.IDs(), []ID{1, 2, 3, 6, 7}) {
		t.Fatalf("ids = %v", s.IDs())
	}
}

func TestDeleteKeepsReferencedNodes(t *testing.T) {
	s := buildTree(t)
	if err := s.Insert(7, 4, KindStatus, nil); err != nil {
		t.Fatalf("insert status: %v", err)
	}
	if err := s.Insert(8, 1, KindRepresentation, nil); err != nil {
		t.Fatalf("insert repr: %v", err)
	}
	if err := s.AddLink(7, 8); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := s.Delete(7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !s.Exists(8) {
		t.Fatal("referenced representation was deleted")
	}
	parents, err := s.Parents(8)
	if err != nil {
		t.Fatalf("parents: %v", err)
	}
	if !slices.Equal(parents, []ID{1}) {
		t.Fatalf("parents = %v, want [1]", parents)
	}
}

func TestLinks(t *testing.T) {
	s := buildTree(t)

	if err := s.AddLink(6, 5); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if err := s.AddLink(6, 5); err != nil {
		t.Fatalf("relink: %v", err)
	}
	parents, err := s.Parents(5)
	if err != nil {
		t.Fatalf("parents: %v", err)
	}
	if !slices.Equal(parents, []ID{4, 6}) {
		t.Fatalf("parents = %v, want [4 6]", parents)
	}
	units, err := s.ParentsOfKind(5, KindUnit)
	if err != nil {
		t.Fatalf("parents of kind: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("unit parents = %v", units)
	}
	if !s.IsLinked(5, 6) || !s.IsLinked(4, 5) {
		t.Fatal("expected linked pairs")
	}
	if s.IsLinked(4, 6) {
		t.Fatal("siblings reported as linked")
	}
	if err := s.RemoveLink(6, 5); err != nil {
		t.Fatalf("remove link: %v", err)
	}
	if err := s.RemoveLink(6, 5); !errors.Is(err, ErrCustom) {
		t.Fatalf("double unlink err = %v, want custom", err)
	}
	if err := s.AddLink(5, 5); !errors.Is(err, ErrCustom) {
		t.Fatalf("self link err = %v, want custom", err)
	}
	if err := s.AddLink(5, 77); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing child err = %v, want not found", err)
	}
}

func TestVars(t *testing.T) {
	s := buildTree(t)

	changed, err := s.SetVar(4, "hp", 0, 0, Int(10))
	if err != nil || !changed {
		t.Fatalf("set hp = %v, %v", changed, err)
	}
	changed, err = s.SetVar(4, "hp", 1, 0, Int(10))
	if err != nil || changed {
		t.Fatalf("redundant set = %v, %v", changed, err)
	}
	if _, err := s.SetVar(4, "hp", 2, 0, Int(7)); err != nil {
		t.Fatalf("set hp: %v", err)
	}

	v, err := s.Var(4, "hp")
	if err != nil || v != Int(7) {
		t.Fatalf("hp = %v, %v", v, err)
	}
	v, err = s.VarAt(4, "hp", 1.5)
	if err != nil || v != Int(10) {
		t.Fatalf("hp@1.5 = %v, %v", v, err)
	}
	if _, err := s.Var(4, "pwr"); !errors.Is(err, ErrVarNotFound) {
		t.Fatalf("missing var err = %v", err)
	}
	if _, err := s.Var(99, "hp"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing node err = %v", err)
	}
	names, err := s.VarNames(4)
	if err != nil || !slices.Equal(names, []string{"hp"}) {
		t.Fatalf("names = %v, %v", names, err)
	}
}
