package battle

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/scope"
)

// apply performs one action. It returns the follow-ups to run next and the
// action to log, which is nil when nothing observable happened.
func (s *Simulation) apply(a Action) ([]Action, Action, error) {
	switch a := a.(type) {
	case Strike:
		return s.applyStrike(a)
	case Damage:
		return s.applyDamage(a)
	case Heal:
		return s.applyHeal(a)
	case Death:
		return s.applyDeath(a)
	case Spawn:
		return s.applySpawn(a)
	case VarSet:
		return s.applyVarSet(a)
	case ApplyStatus:
		return s.applyStatus(a)
	case SendEvent:
		return s.applySendEvent(a)
	case PlayEffect:
		return s.applyPlayEffect(a)
	case Wait:
		s.advance(a.T)
		return nil, nil, nil
	}
	return nil, nil, apperrors.New(apperrors.CodeCustom, fmt.Sprintf("unknown action %T", a))
}

func (s *Simulation) advance(dt float64) {
	if dt > 0 {
		s.clock += dt
	}
}

func (s *Simulation) applyStrike(a Strike) ([]Action, Action, error) {
	pa, err := s.power(a.A)
	if err != nil {
		return nil, nil, fmt.Errorf("strike power of %d: %w", a.A, err)
	}
	pb, err := s.power(a.B)
	if err != nil {
		return nil, nil, fmt.Errorf("strike power of %d: %w", a.B, err)
	}
	followUps := []Action{
		Damage{A: a.A, B: a.B, Amount: pa},
		Damage{A: a.B, B: a.A, Amount: pb},
	}
	return append(followUps, s.slotSync()...), a, nil
}

func (s *Simulation) power(id graph.ID) (int64, error) {
	var pwr int64
	err := s.scope.WithLayer(scope.Owner(id), func() error {
		var err error
		pwr, err = s.scope.SumVar(VarPwr)
		return err
	})
	return pwr, err
}

func (s *Simulation) applyDamage(a Damage) ([]Action, Action, error) {
	if !s.store.Exists(a.B) {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("damage target %d not found", a.B))
	}
	amount := max(s.updateValue(OutgoingDamageEvent(a.A, a.B), a.Amount), 0)
	a.Amount = amount
	if amount == 0 {
		return nil, a, nil
	}
	s.advance(s.timing.Damage)
	dmg := s.intVar(a.B, VarDmg)
	total := dmg + amount
	if total < dmg {
		total = math.MaxInt64
	}
	return []Action{VarSet{Entity: a.B, Var: VarDmg, Value: graph.Int(total)}}, a, nil
}

func (s *Simulation) applyHeal(a Heal) ([]Action, Action, error) {
	if !s.store.Exists(a.B) {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("heal target %d not found", a.B))
	}
	a.Amount = max(a.Amount, 0)
	s.advance(s.timing.Heal)
	dmg := max(s.intVar(a.B, VarDmg)-a.Amount, 0)
	return []Action{VarSet{Entity: a.B, Var: VarDmg, Value: graph.Int(dmg)}}, a, nil
}

func (s *Simulation) applyDeath(a Death) ([]Action, Action, error) {
	side, i, ok := s.inRoster(a.Entity)
	if !ok {
		return nil, nil, nil
	}
	switch side {
	case SideLeft:
		s.left = append(s.left[:i:i], s.left[i+1:]...)
	case SideRight:
		s.right = append(s.right[:i:i], s.right[i+1:]...)
	}

	descendants, err := s.store.Descendants(a.Entity)
	if err != nil {
		return nil, nil, fmt.Errorf("death of %d: %w", a.Entity, err)
	}
	followUps := make([]Action, 0, len(descendants)+3)
	followUps = append(followUps, VarSet{Entity: a.Entity, Var: VarVisible, Value: graph.Bool(false)})
	for _, id := range descendants {
		followUps = append(followUps, VarSet{Entity: id, Var: VarVisible, Value: graph.Bool(false)})
	}
	followUps = append(followUps,
		Wait{T: s.timing.Death},
		SendEvent{Event: DeathEvent(a.Entity)},
	)
	return followUps, a, nil
}

func (s *Simulation) applySpawn(a Spawn) ([]Action, Action, error) {
	if _, _, ok := s.inRoster(a.Entity); !ok {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("spawn: fusion %d is not in a roster", a.Entity))
	}
	pwr, err := s.unitSum(a.Entity, VarPwr)
	if err != nil {
		return nil, nil, fmt.Errorf("spawn pwr: %w", err)
	}
	hp, err := s.unitSum(a.Entity, VarHP)
	if err != nil {
		return nil, nil, fmt.Errorf("spawn hp: %w", err)
	}
	defaults := []struct {
		name  string
		value graph.Value
	}{
		{VarDmg, graph.Int(0)},
		{VarPwr, graph.Int(pwr)},
		{VarHP, graph.Int(hp)},
	}
	for _, d := range defaults {
		if _, err := s.store.SetVar(a.Entity, d.name, s.clock, 0, d.value); err != nil {
			return nil, nil, fmt.Errorf("spawn %s: %w", d.name, err)
		}
	}

	descendants, err := s.store.Descendants(a.Entity)
	if err != nil {
		return nil, nil, fmt.Errorf("spawn: %w", err)
	}
	followUps := []Action{VarSet{Entity: a.Entity, Var: VarVisible, Value: graph.Bool(true)}}
	for _, id := range descendants {
		followUps = append(followUps, VarSet{Entity: id, Var: VarVisible, Value: graph.Bool(true)})
	}
	return followUps, a, nil
}

func (s *Simulation) applyVarSet(a VarSet) ([]Action, Action, error) {
	changed, err := s.store.SetVar(a.Entity, a.Var, s.clock, 0, a.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("set %s on %d: %w", a.Var, a.Entity, err)
	}
	if !changed {
		return nil, nil, nil
	}
	return nil, a, nil
}

func (s *Simulation) applyStatus(a ApplyStatus) ([]Action, Action, error) {
	def, ok := s.statuses[a.Status]
	if !ok {
		return nil, nil, apperrors.New(apperrors.CodeCustom, fmt.Sprintf("unknown status %q", a.Status))
	}
	if _, _, ok := s.inRoster(a.Target); !ok {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("status target %d is not in a roster", a.Target))
	}
	if a.Color == "" {
		a.Color = def.Color
	}

	existing, err := s.findStatus(a.Target, a.Status)
	if err != nil {
		return nil, nil, err
	}
	if existing != 0 {
		charges := s.intVar(existing, VarCharges) + a.Charges
		if _, err := s.store.SetVar(existing, VarCharges, s.clock, 0, graph.Int(charges)); err != nil {
			return nil, nil, err
		}
		s.advance(s.timing.Status)
		return nil, a, nil
	}

	id := s.store.NextID()
	if err := s.store.Insert(id, a.Target, graph.KindStatus, statusData{Def: def}); err != nil {
		return nil, nil, fmt.Errorf("insert status: %w", err)
	}
	rep := s.store.NextID()
	if err := s.store.Insert(rep, s.root, graph.KindRepresentation, def.Representation); err != nil {
		return nil, nil, fmt.Errorf("insert status representation: %w", err)
	}
	if err := s.store.AddLink(id, rep); err != nil {
		return nil, nil, fmt.Errorf("link status representation: %w", err)
	}
	writes := []struct {
		id    graph.ID
		name  string
		value graph.Value
	}{
		{id, VarCharges, graph.Int(a.Charges)},
		{id, VarColor, graph.String(a.Color)},
		{rep, VarVisible, graph.Bool(true)},
	}
	for _, w := range writes {
		if _, err := s.store.SetVar(w.id, w.name, s.clock, 0, w.value); err != nil {
			return nil, nil, err
		}
	}
	s.advance(s.timing.Status)
	return nil, a, nil
}

func (s *Simulation) findStatus(holder graph.ID, name string) (graph.ID, error) {
	ids, err := s.store.ChildrenOfKind(holder, graph.KindStatus)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		data, err := graph.Get[statusData](s.store, id, graph.KindStatus)
		if err != nil {
			return 0, err
		}
		if data.Def.Name == name {
			return id, nil
		}
	}
	return 0, nil
}

func (s *Simulation) applySendEvent(a SendEvent) ([]Action, Action, error) {
	actions := s.react(a.Event)
	if len(actions) == 0 {
		return nil, nil, nil
	}
	return actions, a, nil
}

func (s *Simulation) applyPlayEffect(a PlayEffect) ([]Action, Action, error) {
	d, ok := s.catalog.Duration(a.Name)
	if !ok {
		return nil, nil, apperrors.New(apperrors.CodeCustom, fmt.Sprintf("unknown animation %q", a.Name))
	}
	s.advance(d)
	s.logger.Debug("play effect", zap.String("name", a.Name), zap.Uint64("entity", uint64(a.Entity)))
	return nil, a, nil
}
