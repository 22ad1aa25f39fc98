package scope

import (
	"errors"
	"testing"

	"github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"
)

func newStore(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	for _, n := range []struct {
		id, owner graph.ID
		kind      graph.Kind
	}{
		{1, 0, graph.KindBattle},
		{2, 1, graph.KindFusion},
		{3, 2, graph.KindUnit},
		{4, 2, graph.KindUnit},
		{5, 1, graph.KindFusion},
	} {
		if err := s.Insert(n.id, n.owner, n.kind, nil); err != nil {
			t.Fatalf("insert %d: %v", n.id, err)
		}
	}
	set := func(id graph.ID, name string, v graph.Value) {
		if _, err := s.SetVar(id, name, 0, 0, v); err != nil {
			t.Fatalf("set %s on %d: %v", name, id, err)
		}
	}
	set(1, "arena", graph.String("pit"))
	set(2, "slot", graph.Int(0))
	set(3, "pwr", graph.Int(2))
	set(4, "pwr", graph.Int(3))
	set(5, "hp", graph.Int(9))
	return s
}

func TestWithLayersIsBalanced(t *testing.T) {
	c := New(newStore(t))

	err := c.WithLayers([]Layer{Owner(3), Target(5)}, func() error {
		if c.Depth() != 2 {
			t.Fatalf("depth = %d, want 2", c.Depth())
		}
		return c.WithLayer(Var("value", graph.Int(1)), func() error {
			if c.Depth() != 3 {
				t.Fatalf("nested depth = %d, want 3", c.Depth())
			}
			return errors.New("boom")
		})
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Depth() != 0 {
		t.Fatalf("depth after error = %d", c.Depth())
	}

	func() {
		defer func() { _ = recover() }()
		_ = c.WithLayer(Owner(3), func() error { panic("reaction failed") })
	}()
	if c.Depth() != 0 {
		t.Fatalf("depth after panic = %d", c.Depth())
	}
}

func TestRoles(t *testing.T) {
	c := New(newStore(t))
	if _, err := c.Owner(); !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("empty owner err = %v", err)
	}
	_ = c.WithLayers([]Layer{Owner(3), Caster(4), Owner(5)}, func() error {
		if id, _ := c.Owner(); id != 5 {
			t.Fatalf("owner = %d, want topmost 5", id)
		}
		if id, _ := c.Caster(); id != 4 {
			t.Fatalf("caster = %d, want 4", id)
		}
		if _, err := c.Target(); !errors.Is(err, graph.ErrNotFound) {
			t.Fatalf("target err = %v", err)
		}
		return nil
	})
}

func TestGetVar(t *testing.T) {
	c := New(newStore(t))

	tests := []struct {
		name   string
		layers []Layer
		lookup string
		want   graph.Value
	}{
		{name: "named layer wins", layers: []Layer{Owner(3), Var("pwr", graph.Int(40))}, lookup: "pwr", want: graph.Int(40)},
		{name: "owner own var", layers: []Layer{Owner(3)}, lookup: "pwr", want: graph.Int(2)},
		{name: "owner parent fallback", layers: []Layer{Owner(3)}, lookup: "slot", want: graph.Int(0)},
		{name: "owner root fallback", layers: []Layer{Owner(3)}, lookup: "arena", want: graph.String("pit")},
		{name: "target after owner", layers: []Layer{Owner(3), Target(5)}, lookup: "hp", want: graph.Int(9)},
		{name: "caster last", layers: []Layer{Owner(5), Caster(4)}, lookup: "pwr", want: graph.Int(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = c.WithLayers(tt.layers, func() error {
				got, err := c.GetVar(tt.lookup)
				if err != nil {
					t.Fatalf("get %s: %v", tt.lookup, err)
				}
				if got != tt.want {
					t.Fatalf("get %s = %v, want %v", tt.lookup, got, tt.want)
				}
				return nil
			})
		})
	}

	_ = c.WithLayer(Owner(3), func() error {
		if _, err := c.GetVar("mana"); !errors.Is(err, graph.ErrVarNotFound) {
			t.Fatalf("missing var err = %v", err)
		}
		return nil
	})
}

func TestSumVar(t *testing.T) {
	c := New(newStore(t))
	_ = c.WithLayers([]Layer{Owner(3), Owner(4), Owner(5)}, func() error {
		got, err := c.SumVar("pwr")
		if err != nil || got != 5 {
			t.Fatalf("sum pwr = %d, %v; want 5", got, err)
		}
		return nil
	})
	_ = c.WithLayer(Owner(3), func() error {
		got, err := c.SumVar("slot")
		if err != nil || got != 0 {
			t.Fatalf("sum ignores parents: got %d, %v", got, err)
		}
		return nil
	})
	_ = c.WithLayer(Owner(1), func() error {
		if _, err := c.SumVar("arena"); !errors.Is(err, graph.ErrWrongKind) {
			t.Fatalf("non numeric err = %v", err)
		}
		return nil
	})
}
