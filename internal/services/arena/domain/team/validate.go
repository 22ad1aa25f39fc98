package team

import (
	"fmt"
	"math"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
)

func invalid(teamName, format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	return apperrors.WithMetadata(apperrors.CodeTeamInvalid,
		fmt.Sprintf("team %q: %s", teamName, reason),
		map[string]string{"team": teamName, "reason": reason})
}

// Validate checks the team is well formed.
func (t Team) Validate() error {
	if t.Name == "" {
		return invalid(t.Name, "name is required")
	}
	slots := make(map[int]bool, len(t.Fusions))
	for i, f := range t.Fusions {
		if f.Slot < 0 {
			return invalid(t.Name, "fusion %d: negative slot %d", i, f.Slot)
		}
		if slots[f.Slot] {
			return invalid(t.Name, "fusion %d: duplicate slot %d", i, f.Slot)
		}
		slots[f.Slot] = true
		for j, u := range f.Units {
			if err := u.Validate(); err != nil {
				return invalid(t.Name, "fusion %d unit %d: %v", i, j, err)
			}
		}
	}
	names := make(map[string]bool, len(t.Statuses))
	for _, s := range t.Statuses {
		if err := s.Validate(); err != nil {
			return invalid(t.Name, "%v", err)
		}
		if names[s.Name] {
			return invalid(t.Name, "duplicate status %q", s.Name)
		}
		names[s.Name] = true
	}
	return nil
}

// Validate checks the unit stats and reactions.
func (u Unit) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("unit name is required")
	}
	if u.Pwr < 0 {
		return fmt.Errorf("unit %s: negative pwr", u.Name)
	}
	if u.HP <= 0 {
		return fmt.Errorf("unit %s: hp must be positive", u.Name)
	}
	for i, r := range u.Reactions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("unit %s reaction %d: %w", u.Name, i, err)
		}
	}
	return nil
}

// Validate checks the status definition.
func (s StatusDef) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("status name is required")
	}
	for i, r := range s.Reactions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("status %s reaction %d: %w", s.Name, i, err)
		}
	}
	return nil
}

// Validate checks the trigger, effects and modifier agree.
func (r Reaction) Validate() error {
	switch r.Trigger.Kind {
	case TriggerBattleStart, TriggerTurnEnd, TriggerAllyDeath, TriggerEnemyDeath,
		TriggerAnyDeath, TriggerOutgoingDamage, TriggerIncomingDamage:
	case TriggerUpdateStat:
		if r.Trigger.Var == "" {
			return fmt.Errorf("update_stat trigger needs a var")
		}
	default:
		return fmt.Errorf("unknown trigger %q", r.Trigger.Kind)
	}
	if r.Trigger.Kind.ModifiesValue() {
		if r.Modifier == nil {
			return fmt.Errorf("%s reaction needs a modifier", r.Trigger.Kind)
		}
		if len(r.Effects) > 0 {
			return fmt.Errorf("%s reaction cannot have effects", r.Trigger.Kind)
		}
		return r.Modifier.Validate()
	}
	if r.Modifier != nil {
		return fmt.Errorf("%s reaction cannot have a modifier", r.Trigger.Kind)
	}
	if len(r.Effects) == 0 {
		return fmt.Errorf("%s reaction has no effects", r.Trigger.Kind)
	}
	for i, e := range r.Effects {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks the effect carries the fields its kind needs.
func (e Effect) Validate() error {
	switch e.TargetOrSelf() {
	case TargetSelf, TargetFrontEnemy, TargetRandomEnemy, TargetAllEnemies,
		TargetAllAllies, TargetEventTarget, TargetCaster:
	default:
		return fmt.Errorf("unknown target %q", e.Target)
	}
	switch e.Kind {
	case EffectDamage, EffectHeal:
		if e.Amount == nil {
			return fmt.Errorf("%s needs an amount", e.Kind)
		}
	case EffectApplyStatus:
		if e.Status == "" {
			return fmt.Errorf("apply_status needs a status")
		}
	case EffectSetVar:
		if e.Var == "" || e.Amount == nil {
			return fmt.Errorf("set_var needs a var and an amount")
		}
	case EffectVFX:
		if e.Name == "" {
			return fmt.Errorf("vfx needs a name")
		}
	case EffectWait:
		if e.Duration <= 0 {
			return fmt.Errorf("wait needs a positive duration")
		}
	default:
		return fmt.Errorf("unknown effect %q", e.Kind)
	}
	if e.Amount != nil {
		return e.Amount.Validate()
	}
	return nil
}

// Validate checks the expression tree.
func (x Expr) Validate() error {
	switch x.Op {
	case OpConst, OpValue, OpAllyCount, OpEnemyCount:
	case OpVar:
		if x.Var == "" {
			return fmt.Errorf("var expression needs a name")
		}
	case OpSum, OpMul:
		if len(x.Args) == 0 {
			return fmt.Errorf("%s expression needs arguments", x.Op)
		}
		for _, arg := range x.Args {
			if err := arg.Validate(); err != nil {
				return err
			}
		}
	case OpRandomInt:
		if x.Min > x.Max {
			return fmt.Errorf("random_int min %d exceeds max %d", x.Min, x.Max)
		}
		if RandomSpan(x.Min, x.Max) == 0 {
			return fmt.Errorf("random_int range %d..%d is too wide", x.Min, x.Max)
		}
	default:
		return fmt.Errorf("unknown expression op %q", x.Op)
	}
	return nil
}

// RandomSpan returns how many values lo..hi holds, or 0 when the range is
// empty or wider than a random draw can cover.
func RandomSpan(lo, hi int64) int64 {
	if lo > hi {
		return 0
	}
	width := uint64(hi) - uint64(lo)
	if width >= math.MaxInt64 {
		return 0
	}
	return int64(width) + 1
}
