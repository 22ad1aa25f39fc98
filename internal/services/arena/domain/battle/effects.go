package battle

import (
	"fmt"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

// runEffects turns effect templates into actions for every selected
// target.
func (s *Simulation) runEffects(l listener, eventTarget graph.ID, effects []team.Effect) ([]Action, error) {
	var actions []Action
	for _, e := range effects {
		targets, err := s.selectTargets(l, eventTarget, e.TargetOrSelf())
		if err != nil {
			return nil, err
		}
		for _, target := range targets {
			a, err := s.instantiate(l, target, e)
			if err != nil {
				return nil, err
			}
			actions = append(actions, a)
		}
	}
	return actions, nil
}

func (s *Simulation) selectTargets(l listener, eventTarget graph.ID, kind team.TargetKind) ([]graph.ID, error) {
	switch kind {
	case team.TargetSelf:
		return []graph.ID{l.holder}, nil
	case team.TargetFrontEnemy:
		enemies := s.AllEnemies(l.holder)
		if len(enemies) == 0 {
			return nil, nil
		}
		return enemies[:1], nil
	case team.TargetRandomEnemy:
		enemies := s.AllEnemies(l.holder)
		if len(enemies) == 0 {
			return nil, nil
		}
		return []graph.ID{enemies[s.rng.Intn(len(enemies))]}, nil
	case team.TargetAllEnemies:
		return s.AllEnemies(l.holder), nil
	case team.TargetAllAllies:
		return s.AllAllies(l.holder), nil
	case team.TargetEventTarget:
		if eventTarget == 0 {
			return nil, apperrors.New(apperrors.CodeNotFound, "event has no target")
		}
		return []graph.ID{eventTarget}, nil
	case team.TargetCaster:
		caster, err := s.scope.Caster()
		if err != nil {
			return nil, err
		}
		return []graph.ID{caster}, nil
	}
	return nil, apperrors.New(apperrors.CodeCustom, fmt.Sprintf("unknown target %q", kind))
}

func (s *Simulation) instantiate(l listener, target graph.ID, e team.Effect) (Action, error) {
	amount := func(fallback int64) (int64, error) {
		if e.Amount == nil {
			return fallback, nil
		}
		return s.eval(l, *e.Amount)
	}
	switch e.Kind {
	case team.EffectDamage:
		n, err := amount(0)
		if err != nil {
			return nil, err
		}
		return Damage{A: l.holder, B: target, Amount: n}, nil
	case team.EffectHeal:
		n, err := amount(0)
		if err != nil {
			return nil, err
		}
		return Heal{A: l.holder, B: target, Amount: n}, nil
	case team.EffectApplyStatus:
		n, err := amount(1)
		if err != nil {
			return nil, err
		}
		return ApplyStatus{Target: target, Status: e.Status, Charges: n}, nil
	case team.EffectSetVar:
		n, err := amount(0)
		if err != nil {
			return nil, err
		}
		return VarSet{Entity: target, Var: e.Var, Value: graph.Int(n)}, nil
	case team.EffectVFX:
		return PlayEffect{Name: e.Name, Entity: target}, nil
	case team.EffectWait:
		return Wait{T: e.Duration}, nil
	}
	return nil, apperrors.New(apperrors.CodeCustom, fmt.Sprintf("unknown effect %q", e.Kind))
}
