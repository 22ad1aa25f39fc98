package battle

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sort"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/scope"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

// Side identifies a roster.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return "none"
}

// Opposite returns the other roster.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return SideNone
}

const (
	stateConstructing = "constructing"
	stateStarted      = "started"
	stateRunning      = "running"
	stateEnded        = "ended"

	eventStart = "start"
	eventRun   = "run"
	eventEnd   = "end"
)

// Variable names written by the engine.
const (
	VarPwr     = "pwr"
	VarHP      = "hp"
	VarDmg     = "dmg"
	VarVisible = "visible"
	VarSlot    = "slot"
	VarSide    = "side"
	VarCharges = "charges"
	VarColor   = "color"
)

// ErrTurnLimit reports that RunToEnd gave up before a roster emptied.
var ErrTurnLimit = apperrors.New(apperrors.CodeTurnLimit, "turn limit reached")

type battleData struct {
	ID   uint64
	Seed int64
}

type teamData struct {
	Name string
	Side Side
}

type fusionData struct {
	Team      string
	Side      Side
	Slot      int
	Reactions []team.Reaction
}

type statusData struct {
	Def team.StatusDef
}

// Simulation is one battle. It is single threaded and must not be shared
// between goroutines.
type Simulation struct {
	id       uint64
	seed     int64
	store    *graph.Store
	scope    *scope.Context
	root     graph.ID
	left     []graph.ID
	right    []graph.ID
	statuses map[string]team.StatusDef
	rng      *rand.Rand
	clock    float64
	turn     int
	log      Log
	fsm      *fsm.FSM
	logger   *zap.Logger
	timing   Timing
	catalog  AnimationCatalog
	budget   int
}

// New validates both teams and unpacks them into a fresh graph.
func New(left, right team.Team, opts ...Option) (*Simulation, error) {
	if err := left.Validate(); err != nil {
		return nil, fmt.Errorf("left team: %w", err)
	}
	if err := right.Validate(); err != nil {
		return nil, fmt.Errorf("right team: %w", err)
	}
	o := buildOptions(opts)

	store := graph.NewStore()
	s := &Simulation{
		id:       o.battleID,
		seed:     o.seed,
		store:    store,
		scope:    scope.New(store),
		statuses: statusLibrary(left, right),
		rng:      rand.New(rand.NewSource(o.seed)),
		logger:   o.logger.With(zap.Uint64("battle_id", o.battleID)),
		timing:   o.timing,
		catalog:  o.catalog,
		budget:   o.actionBudget,
	}
	s.fsm = fsm.NewFSM(stateConstructing,
		fsm.Events{
			{Name: eventStart, Src: []string{stateConstructing}, Dst: stateStarted},
			{Name: eventRun, Src: []string{stateStarted}, Dst: stateRunning},
			{Name: eventEnd, Src: []string{stateStarted, stateRunning}, Dst: stateEnded},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.logger.Debug("battle state", zap.String("from", e.Src), zap.String("to", e.Dst))
			},
		},
	)

	for _, t := range []team.Team{left, right} {
		if err := checkStatusRefs(t, s.statuses); err != nil {
			return nil, err
		}
	}

	s.root = store.NextID()
	if err := store.Insert(s.root, 0, graph.KindBattle, battleData{ID: o.battleID, Seed: o.seed}); err != nil {
		return nil, fmt.Errorf("insert battle: %w", err)
	}
	var err error
	if s.left, err = s.unpackTeam(left, SideLeft); err != nil {
		return nil, fmt.Errorf("unpack left team: %w", err)
	}
	if s.right, err = s.unpackTeam(right, SideRight); err != nil {
		return nil, fmt.Errorf("unpack right team: %w", err)
	}
	return s, nil
}

// statusLibrary indexes status definitions by name. When both teams
// define the same name the left definition wins.
func statusLibrary(teams ...team.Team) map[string]team.StatusDef {
	lib := make(map[string]team.StatusDef)
	for _, t := range teams {
		for _, def := range t.Statuses {
			if _, ok := lib[def.Name]; !ok {
				lib[def.Name] = def
			}
		}
	}
	return lib
}

func checkStatusRefs(t team.Team, lib map[string]team.StatusDef) error {
	check := func(reactions []team.Reaction) error {
		for _, r := range reactions {
			for _, e := range r.Effects {
				if e.Kind != team.EffectApplyStatus {
					continue
				}
				if _, ok := lib[e.Status]; !ok {
					return apperrors.WithMetadata(apperrors.CodeTeamInvalid,
						fmt.Sprintf("team %q: unknown status %q", t.Name, e.Status),
						map[string]string{"team": t.Name, "reason": fmt.Sprintf("unknown status %q", e.Status)})
				}
			}
		}
		return nil
	}
	for _, f := range t.Fusions {
		for _, u := range f.Units {
			if err := check(u.Reactions); err != nil {
				return err
			}
		}
	}
	for _, def := range t.Statuses {
		if err := check(def.Reactions); err != nil {
			return err
		}
	}
	return nil
}

// unpackTeam inserts team → fusion → unit → representation nodes and
// returns the roster ordered by slot. Fusions without units are skipped.
func (s *Simulation) unpackTeam(t team.Team, side Side) ([]graph.ID, error) {
	tid := s.store.NextID()
	if err := s.store.Insert(tid, s.root, graph.KindTeam, teamData{Name: t.Name, Side: side}); err != nil {
		return nil, err
	}
	fusions := slices.Clone(t.Fusions)
	sort.SliceStable(fusions, func(i, j int) bool { return fusions[i].Slot < fusions[j].Slot })

	var roster []graph.ID
	for _, f := range fusions {
		if len(f.Units) == 0 {
			continue
		}
		var reactions []team.Reaction
		for _, u := range f.Units {
			reactions = append(reactions, u.Reactions...)
		}
		fid := s.store.NextID()
		data := fusionData{Team: t.Name, Side: side, Slot: f.Slot, Reactions: reactions}
		if err := s.store.Insert(fid, tid, graph.KindFusion, data); err != nil {
			return nil, err
		}
		for _, u := range f.Units {
			uid := s.store.NextID()
			if err := s.store.Insert(uid, fid, graph.KindUnit, u); err != nil {
				return nil, err
			}
			if _, err := s.store.SetVar(uid, VarPwr, 0, 0, graph.Int(u.Pwr)); err != nil {
				return nil, err
			}
			if _, err := s.store.SetVar(uid, VarHP, 0, 0, graph.Int(u.HP)); err != nil {
				return nil, err
			}
			rid := s.store.NextID()
			if err := s.store.Insert(rid, uid, graph.KindRepresentation, u.Representation); err != nil {
				return nil, err
			}
		}
		roster = append(roster, fid)
	}
	return roster, nil
}

// Start spawns both rosters pairwise, syncs slots and fires BattleStart.
// It does nothing once the battle has started.
func (s *Simulation) Start() {
	if !s.fsm.Is(stateConstructing) {
		return
	}
	s.transition(eventStart)

	var spawns []Action
	for i := 0; i < max(len(s.left), len(s.right)); i++ {
		if i < len(s.left) {
			spawns = append(spawns, Spawn{Entity: s.left[i]})
		}
		if i < len(s.right) {
			spawns = append(spawns, Spawn{Entity: s.right[i]})
		}
	}
	s.process(spawns...)
	s.process(s.slotSync()...)
	s.process(SendEvent{Event: BattleStartEvent()})
	s.checkDeaths()
	s.checkEnded()
}

// Run plays one turn. It starts the battle first if needed and does
// nothing once the battle has ended.
func (s *Simulation) Run() {
	if s.fsm.Is(stateConstructing) {
		s.Start()
	}
	if s.Ended() {
		return
	}
	if s.fsm.Is(stateStarted) {
		s.transition(eventRun)
	}
	s.turn++

	s.refreshStats()
	if len(s.left) > 0 && len(s.right) > 0 {
		s.process(Strike{A: s.left[0], B: s.right[0]})
	}
	s.checkDeaths()
	s.process(s.slotSync()...)
	s.process(SendEvent{Event: TurnEndEvent()})
	s.checkDeaths()
	s.checkEnded()
}

// RunToEnd runs turns until the battle ends. It returns the number of
// turns played and ErrTurnLimit when maxTurns is reached first. A
// non-positive maxTurns uses DefaultMaxTurns.
func (s *Simulation) RunToEnd(maxTurns int) (int, error) {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	for !s.Ended() {
		if s.turn >= maxTurns {
			return s.turn, apperrors.WithMetadata(apperrors.CodeTurnLimit,
				fmt.Sprintf("battle %d did not end within %d turns", s.id, maxTurns),
				map[string]string{"turns": fmt.Sprint(maxTurns)})
		}
		s.Run()
	}
	return s.turn, nil
}

func (s *Simulation) transition(event string) {
	if err := s.fsm.Event(context.Background(), event); err != nil {
		s.logger.Error("battle transition", zap.String("event", event), zap.Error(err))
	}
}

func (s *Simulation) checkEnded() {
	if s.Ended() {
		return
	}
	if len(s.left) == 0 || len(s.right) == 0 {
		s.transition(eventEnd)
	}
}

// checkDeaths kills every fusion whose damage reached its health, repeating
// until death reactions stop producing new deaths.
func (s *Simulation) checkDeaths() {
	for {
		var deaths []Action
		for _, roster := range [][]graph.ID{s.left, s.right} {
			for _, id := range roster {
				if s.intVar(id, VarDmg) >= s.intVar(id, VarHP) {
					deaths = append(deaths, Death{Entity: id})
				}
			}
		}
		if len(deaths) == 0 {
			return
		}
		s.process(deaths...)
	}
}

// refreshStats recomputes every fusion's pwr and hp from its units and
// folds them through update_stat reactions.
func (s *Simulation) refreshStats() {
	var sets []Action
	for _, id := range s.rosterOrder() {
		for _, stat := range []string{VarPwr, VarHP} {
			base, err := s.unitSum(id, stat)
			if err != nil {
				s.logger.Error("refresh stat", zap.Uint64("entity", uint64(id)), zap.String("var", stat), zap.Error(err))
				continue
			}
			value := s.updateValue(UpdateStatEvent(id, stat), base)
			sets = append(sets, VarSet{Entity: id, Var: stat, Value: graph.Int(value)})
		}
	}
	s.process(sets...)
}

// unitSum adds stat across the units of a fusion.
func (s *Simulation) unitSum(fusion graph.ID, stat string) (int64, error) {
	units, err := s.store.ChildrenOfKind(fusion, graph.KindUnit)
	if err != nil {
		return 0, err
	}
	layers := make([]scope.Layer, 0, len(units))
	for _, u := range units {
		layers = append(layers, scope.Owner(u))
	}
	var total int64
	err = s.scope.WithLayers(layers, func() error {
		var err error
		total, err = s.scope.SumVar(stat)
		return err
	})
	return total, err
}

func (s *Simulation) slotSync() []Action {
	var sets []Action
	for _, side := range []Side{SideLeft, SideRight} {
		for i, id := range s.roster(side) {
			sets = append(sets,
				VarSet{Entity: id, Var: VarSlot, Value: graph.Int(int64(i))},
				VarSet{Entity: id, Var: VarSide, Value: graph.String(side.String())},
			)
		}
	}
	return sets
}

func (s *Simulation) intVar(id graph.ID, name string) int64 {
	v, err := s.store.Var(id, name)
	if err != nil {
		return 0
	}
	n, _ := v.AsInt()
	return n
}

func (s *Simulation) roster(side Side) []graph.ID {
	switch side {
	case SideLeft:
		return s.left
	case SideRight:
		return s.right
	}
	return nil
}

func (s *Simulation) rosterOrder() []graph.ID {
	out := make([]graph.ID, 0, len(s.left)+len(s.right))
	out = append(out, s.left...)
	return append(out, s.right...)
}

// sideOf returns the side a fusion was unpacked on, dead or alive.
func (s *Simulation) sideOf(id graph.ID) Side {
	data, err := graph.Get[fusionData](s.store, id, graph.KindFusion)
	if err != nil {
		return SideNone
	}
	return data.Side
}

func (s *Simulation) inRoster(id graph.ID) (Side, int, bool) {
	if i := slices.Index(s.left, id); i >= 0 {
		return SideLeft, i, true
	}
	if i := slices.Index(s.right, id); i >= 0 {
		return SideRight, i, true
	}
	return SideNone, -1, false
}

// ID returns the battle id.
func (s *Simulation) ID() uint64 { return s.id }

// Seed returns the RNG seed.
func (s *Simulation) Seed() int64 { return s.seed }

// State returns the lifecycle state name.
func (s *Simulation) State() string { return s.fsm.Current() }

func (s *Simulation) Ended() bool { return s.fsm.Is(stateEnded) }

// Duration returns the logical time elapsed so far.
func (s *Simulation) Duration() float64 { return s.clock }

func (s *Simulation) Turn() int { return s.turn }

func (s *Simulation) Log() *Log { return &s.log }

// Graph exposes the battle graph for read-only playback queries.
func (s *Simulation) Graph() *graph.Store { return s.store }

func (s *Simulation) FusionsLeft() []graph.ID  { return slices.Clone(s.left) }
func (s *Simulation) FusionsRight() []graph.ID { return slices.Clone(s.right) }

// Winner returns the side still standing once the battle ended, or
// SideNone for a draw or an unfinished battle.
func (s *Simulation) Winner() Side {
	if !s.Ended() {
		return SideNone
	}
	switch {
	case len(s.left) > 0 && len(s.right) == 0:
		return SideLeft
	case len(s.right) > 0 && len(s.left) == 0:
		return SideRight
	}
	return SideNone
}

// OffsetUnit returns the fusion offset slots away from id in its roster.
func (s *Simulation) OffsetUnit(id graph.ID, offset int) (graph.ID, error) {
	side, i, ok := s.inRoster(id)
	if !ok {
		return 0, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("fusion %d is not in a roster", id))
	}
	roster := s.roster(side)
	j := i + offset
	if j < 0 || j >= len(roster) {
		return 0, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("no fusion at offset %d from %d", offset, id))
	}
	return roster[j], nil
}

// AllAllies returns id's roster, id included.
func (s *Simulation) AllAllies(id graph.ID) []graph.ID {
	return slices.Clone(s.roster(s.sideOf(id)))
}

// AllEnemies returns the opposing roster.
func (s *Simulation) AllEnemies(id graph.ID) []graph.ID {
	return slices.Clone(s.roster(s.sideOf(id).Opposite()))
}

// Statuses returns the status instances held by id in creation order.
func (s *Simulation) Statuses(id graph.ID) []graph.ID {
	ids, _ := s.store.ChildrenOfKind(id, graph.KindStatus)
	return ids
}
