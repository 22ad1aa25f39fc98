package graph

import (
	"slices"
	"sort"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"
)

// node is the link and payload component of every entity.
type node struct {
	id      ID
	kind    Kind
	owner   ID
	owned   []ID
	refsOut []ID
	refsIn  []ID
	data    any
}

// NodeState holds the variable histories of an entity.
type NodeState struct {
	vars map[string]*History
}

var (
	nodeComponent  = donburi.NewComponentType[node]()
	stateComponent = donburi.NewComponentType[NodeState]()
)

// Store is the entity graph of a single battle. It is not safe for
// concurrent use.
type Store struct {
	world   donburi.World
	handles map[ID]donburi.Entity
	order   []ID
	last    ID
	nodes   *query.Query
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		world:   donburi.NewWorld(),
		handles: make(map[ID]donburi.Entity),
		nodes:   query.NewQuery(filter.Contains(nodeComponent)),
	}
}

// NextID allocates an unused ID. IDs increase monotonically.
func (s *Store) NextID() ID {
	s.last++
	for s.Exists(s.last) {
		s.last++
	}
	return s.last
}

// Len returns the number of live nodes.
func (s *Store) Len() int {
	return s.nodes.Count(s.world)
}

func (s *Store) Exists(id ID) bool {
	e, ok := s.handles[id]
	return ok && s.world.Valid(e)
}

// Insert adds a node owned by owner. An owner of zero makes a root node.
func (s *Store) Insert(id, owner ID, kind Kind, data any) error {
	if id == 0 {
		return customf("insert: id 0 is reserved")
	}
	if s.Exists(id) {
		return customf("insert: node %d already exists", id)
	}
	if owner != 0 && !s.Exists(owner) {
		return notFound(owner)
	}

	entity := s.world.Create(nodeComponent, stateComponent)
	entry := s.world.Entry(entity)
	nodeComponent.SetValue(entry, node{id: id, kind: kind, owner: owner, data: data})
	stateComponent.SetValue(entry, NodeState{vars: make(map[string]*History)})
	s.handles[id] = entity
	s.order = append(s.order, id)
	if id > s.last {
		s.last = id
	}

	if owner != 0 {
		parent, _ := s.node(owner)
		parent.owned = append(parent.owned, id)
	}
	return nil
}

// Delete removes id and, depth-first, everything it owns. Reference links
// touching removed nodes are unlinked; referenced nodes survive.
func (s *Store) Delete(id ID) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	if n.owner != 0 {
		if parent, err := s.node(n.owner); err == nil {
			parent.owned = removeID(parent.owned, id)
		}
	}
	s.deleteTree(id)
	return nil
}

func (s *Store) deleteTree(id ID) {
	n, err := s.node(id)
	if err != nil {
		return
	}
	owned := slices.Clone(n.owned)
	refsOut := slices.Clone(n.refsOut)
	refsIn := slices.Clone(n.refsIn)

	for _, child := range owned {
		s.deleteTree(child)
	}
	for _, child := range refsOut {
		s.unlink(id, child)
	}
	for _, parent := range refsIn {
		s.unlink(parent, id)
	}

	s.world.Remove(s.handles[id])
	delete(s.handles, id)
	s.order = removeID(s.order, id)
}

// Kind returns the kind of id.
func (s *Store) Kind(id ID) (Kind, error) {
	n, err := s.node(id)
	if err != nil {
		return KindUnknown, err
	}
	return n.kind, nil
}

// Data returns the payload stored with id.
func (s *Store) Data(id ID) (any, error) {
	n, err := s.node(id)
	if err != nil {
		return nil, err
	}
	return n.data, nil
}

// SetData replaces the payload stored with id.
func (s *Store) SetData(id ID, data any) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	n.data = data
	return nil
}

// Owner returns the owning parent of id, or zero for a root.
func (s *Store) Owner(id ID) (ID, error) {
	n, err := s.node(id)
	if err != nil {
		return 0, err
	}
	return n.owner, nil
}

// Get returns the payload of id as T, failing with ErrWrongKind when the
// node kind or payload type does not match.
func Get[T any](s *Store, id ID, kind Kind) (T, error) {
	var zero T
	n, err := s.node(id)
	if err != nil {
		return zero, err
	}
	if n.kind != kind {
		return zero, wrongKind(id, kind, n.kind)
	}
	v, ok := n.data.(T)
	if !ok {
		return zero, wrongKind(id, kind, n.kind)
	}
	return v, nil
}

// IDs returns every live node in insertion order.
func (s *Store) IDs() []ID {
	return slices.Clone(s.order)
}

// IDsOfKind returns every live node of kind in insertion order.
func (s *Store) IDsOfKind(kind Kind) []ID {
	var out []ID
	for _, id := range s.order {
		if n, err := s.node(id); err == nil && n.kind == kind {
			out = append(out, id)
		}
	}
	return out
}

// Children returns owned children followed by reference children.
func (s *Store) Children(id ID) ([]ID, error) {
	n, err := s.node(id)
	if err != nil {
		return nil, err
	}
	out := make([]ID, 0, len(n.owned)+len(n.refsOut))
	out = append(out, n.owned...)
	out = append(out, n.refsOut...)
	return out, nil
}

func (s *Store) ChildrenOfKind(id ID, kind Kind) ([]ID, error) {
	children, err := s.Children(id)
	if err != nil {
		return nil, err
	}
	return s.filterKind(children, kind), nil
}

// Parents returns the owner (if any) followed by reference parents in link
// order.
func (s *Store) Parents(id ID) ([]ID, error) {
	n, err := s.node(id)
	if err != nil {
		return nil, err
	}
	out := make([]ID, 0, len(n.refsIn)+1)
	if n.owner != 0 {
		out = append(out, n.owner)
	}
	out = append(out, n.refsIn...)
	return out, nil
}

func (s *Store) ParentsOfKind(id ID, kind Kind) ([]ID, error) {
	parents, err := s.Parents(id)
	if err != nil {
		return nil, err
	}
	return s.filterKind(parents, kind), nil
}

// AddLink adds a reference link from parent to child. Linking an already
// linked pair is a no-op.
func (s *Store) AddLink(parent, child ID) error {
	if parent == child {
		return customf("link: node %d cannot reference itself", parent)
	}
	p, err := s.node(parent)
	if err != nil {
		return err
	}
	if !s.Exists(child) {
		return notFound(child)
	}
	if slices.Contains(p.refsOut, child) {
		return nil
	}
	p.refsOut = append(p.refsOut, child)
	c, _ := s.node(child)
	c.refsIn = append(c.refsIn, parent)
	return nil
}

// RemoveLink removes the reference link from parent to child.
func (s *Store) RemoveLink(parent, child ID) error {
	p, err := s.node(parent)
	if err != nil {
		return err
	}
	if !slices.Contains(p.refsOut, child) {
		return customf("unlink: %d does not reference %d", parent, child)
	}
	s.unlink(parent, child)
	return nil
}

// IsLinked reports whether a and b share an owned or reference link in
// either direction.
func (s *Store) IsLinked(a, b ID) bool {
	na, err := s.node(a)
	if err != nil || !s.Exists(b) {
		return false
	}
	if na.owner == b || slices.Contains(na.owned, b) {
		return true
	}
	return slices.Contains(na.refsOut, b) || slices.Contains(na.refsIn, b)
}

func (s *Store) unlink(parent, child ID) {
	if p, err := s.node(parent); err == nil {
		p.refsOut = removeID(p.refsOut, child)
	}
	if c, err := s.node(child); err == nil {
		c.refsIn = removeID(c.refsIn, parent)
	}
}

// Var returns the current value of a variable on id.
func (s *Store) Var(id ID, name string) (Value, error) {
	st, err := s.state(id)
	if err != nil {
		return Value{}, err
	}
	h, ok := st.vars[name]
	if !ok {
		return Value{}, varNotFound(id, name)
	}
	v, ok := h.Current()
	if !ok {
		return Value{}, varNotFound(id, name)
	}
	return v, nil
}

// VarAt returns the value a variable held at time t.
func (s *Store) VarAt(id ID, name string, t float64) (Value, error) {
	st, err := s.state(id)
	if err != nil {
		return Value{}, err
	}
	h, ok := st.vars[name]
	if !ok {
		return Value{}, varNotFound(id, name)
	}
	v, ok := h.At(t)
	if !ok {
		return Value{}, varNotFound(id, name)
	}
	return v, nil
}

// HasVar reports whether id has ever written name.
func (s *Store) HasVar(id ID, name string) bool {
	st, err := s.state(id)
	if err != nil {
		return false
	}
	_, ok := st.vars[name]
	return ok
}

// SetVar writes a variable at time t and reports whether it changed.
func (s *Store) SetVar(id ID, name string, t, blend float64, value Value) (bool, error) {
	st, err := s.state(id)
	if err != nil {
		return false, err
	}
	h, ok := st.vars[name]
	if !ok {
		h = &History{}
		st.vars[name] = h
	}
	return h.Insert(t, blend, value), nil
}

// History returns a copy of the write history of a variable.
func (s *Store) History(id ID, name string) ([]Entry, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	h, ok := st.vars[name]
	if !ok {
		return nil, varNotFound(id, name)
	}
	return h.Entries(), nil
}

// VarNames returns the variables written on id, sorted by name.
func (s *Store) VarNames(id ID) ([]string, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(st.vars))
	for name := range st.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// node returns the live component of id. The pointer is only valid until
// the next Insert or Delete.
func (s *Store) node(id ID) (*node, error) {
	entity, ok := s.handles[id]
	if !ok || !s.world.Valid(entity) {
		return nil, notFound(id)
	}
	return nodeComponent.Get(s.world.Entry(entity)), nil
}

func (s *Store) state(id ID) (*NodeState, error) {
	entity, ok := s.handles[id]
	if !ok || !s.world.Valid(entity) {
		return nil, notFound(id)
	}
	return stateComponent.Get(s.world.Entry(entity)), nil
}

func (s *Store) filterKind(ids []ID, kind Kind) []ID {
	var out []ID
	for _, id := range ids {
		if n, err := s.node(id); err == nil && n.kind == kind {
			out = append(out, id)
		}
	}
	return out
}

func removeID(ids []ID, id ID) []ID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
