// Package scope resolves entity roles and variables against a LIFO stack of
// context layers.
//
// Reactions and effects run "as" some entity: the owner whose behavior
// fires, an optional target of the triggering event and an optional caster
// (the holder of a status). Variables are looked up first in named
// bindings, then on those entities and their ancestors in the graph.
package scope

import (
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"
)

// LayerKind identifies a layer variant.
type LayerKind uint8

const (
	LayerOwner LayerKind = iota + 1
	LayerTarget
	LayerCaster
	LayerVar
)

func (k LayerKind) String() string {
	switch k {
	case LayerOwner:
		return "owner"
	case LayerTarget:
		return "target"
	case LayerCaster:
		return "caster"
	case LayerVar:
		return "var"
	}
	return "unknown"
}

// Layer is one entry on the context stack.
type Layer struct {
	Kind  LayerKind
	ID    graph.ID
	Name  string
	Value graph.Value
}

func Owner(id graph.ID) Layer  { return Layer{Kind: LayerOwner, ID: id} }
func Target(id graph.ID) Layer { return Layer{Kind: LayerTarget, ID: id} }
func Caster(id graph.ID) Layer { return Layer{Kind: LayerCaster, ID: id} }

// Var binds name to value for the duration of a call.
func Var(name string, value graph.Value) Layer {
	return Layer{Kind: LayerVar, Name: name, Value: value}
}

// Context is the layer stack bound to a graph store.
type Context struct {
	store  *graph.Store
	layers []Layer
}

func New(store *graph.Store) *Context {
	return &Context{store: store}
}

// Store returns the store lookups resolve against.
func (c *Context) Store() *graph.Store { return c.store }

// Depth returns the number of pushed layers.
func (c *Context) Depth() int { return len(c.layers) }

// WithLayer pushes layer, runs fn and pops the layer again.
func (c *Context) WithLayer(layer Layer, fn func() error) error {
	return c.WithLayers([]Layer{layer}, fn)
}

// WithLayers pushes layers in order, runs fn and pops exactly those layers
// on every exit path, panics included.
func (c *Context) WithLayers(layers []Layer, fn func() error) error {
	depth := len(c.layers)
	c.layers = append(c.layers, layers...)
	defer func() { c.layers = c.layers[:depth] }()
	return fn()
}

// Owner returns the topmost owner.
func (c *Context) Owner() (graph.ID, error) { return c.top(LayerOwner) }

// Target returns the topmost target.
func (c *Context) Target() (graph.ID, error) { return c.top(LayerTarget) }

// Caster returns the topmost caster.
func (c *Context) Caster() (graph.ID, error) { return c.top(LayerCaster) }

func (c *Context) top(kind LayerKind) (graph.ID, error) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if c.layers[i].Kind == kind {
			return c.layers[i].ID, nil
		}
	}
	return 0, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("no %s in context", kind))
}

// GetVar resolves name: named bindings top-down, then the owner, target and
// caster, each falling back to its ancestors nearest first.
func (c *Context) GetVar(name string) (graph.Value, error) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if l := c.layers[i]; l.Kind == LayerVar && l.Name == name {
			return l.Value, nil
		}
	}
	for _, kind := range []LayerKind{LayerOwner, LayerTarget, LayerCaster} {
		id, err := c.top(kind)
		if err != nil {
			continue
		}
		if v, ok := c.lookupRecursive(id, name); ok {
			return v, nil
		}
	}
	return graph.Value{}, apperrors.WithMetadata(apperrors.CodeVarNotFound,
		fmt.Sprintf("var %q not found in context", name),
		map[string]string{"var": name})
}

func (c *Context) lookupRecursive(id graph.ID, name string) (graph.Value, bool) {
	if v, err := c.store.Var(id, name); err == nil {
		return v, true
	}
	ancestors, err := c.store.Ancestors(id)
	if err != nil {
		return graph.Value{}, false
	}
	for _, a := range ancestors {
		if v, err := c.store.Var(a, name); err == nil {
			return v, true
		}
	}
	return graph.Value{}, false
}

// SumVar adds up name across every owner layer, reading only each owner's
// own variable. Missing variables count as zero.
func (c *Context) SumVar(name string) (int64, error) {
	var total int64
	for _, l := range c.layers {
		if l.Kind != LayerOwner {
			continue
		}
		v, err := c.store.Var(l.ID, name)
		if err != nil {
			if errors.Is(err, graph.ErrVarNotFound) {
				continue
			}
			return 0, err
		}
		n, ok := v.AsInt()
		if !ok {
			return 0, apperrors.New(apperrors.CodeWrongKind,
				fmt.Sprintf("var %q on %d is not numeric", name, l.ID))
		}
		total += n
	}
	return total, nil
}

// GetInt resolves name and converts it to an integer.
func (c *Context) GetInt(name string) (int64, error) {
	v, err := c.GetVar(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, apperrors.New(apperrors.CodeWrongKind, fmt.Sprintf("var %q is not numeric", name))
	}
	return n, nil
}
