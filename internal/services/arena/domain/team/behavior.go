package team

// TriggerKind names the event a reaction listens to.
type TriggerKind string

const (
	TriggerBattleStart    TriggerKind = "battle_start"
	TriggerTurnEnd        TriggerKind = "turn_end"
	TriggerAllyDeath      TriggerKind = "ally_death"
	TriggerEnemyDeath     TriggerKind = "enemy_death"
	TriggerAnyDeath       TriggerKind = "any_death"
	TriggerUpdateStat     TriggerKind = "update_stat"
	TriggerOutgoingDamage TriggerKind = "outgoing_damage"
	TriggerIncomingDamage TriggerKind = "incoming_damage"
)

// ModifiesValue reports whether reactions on this trigger fold a value
// rather than emit effects.
func (k TriggerKind) ModifiesValue() bool {
	switch k {
	case TriggerUpdateStat, TriggerOutgoingDamage, TriggerIncomingDamage:
		return true
	}
	return false
}

// Trigger selects the events a reaction fires on. Var narrows
// update_stat to a single stat.
type Trigger struct {
	Kind TriggerKind `yaml:"kind" json:"kind" mapstructure:"kind"`
	Var  string      `yaml:"var,omitempty" json:"var,omitempty" mapstructure:"var"`
}

// Reaction is a trigger with either effects to run or a modifier to fold
// into a value.
type Reaction struct {
	Trigger  Trigger  `yaml:"trigger" json:"trigger" mapstructure:"trigger"`
	Effects  []Effect `yaml:"effects,omitempty" json:"effects,omitempty" mapstructure:"effects"`
	Modifier *Expr    `yaml:"modifier,omitempty" json:"modifier,omitempty" mapstructure:"modifier"`
}

// EffectKind names an effect template.
type EffectKind string

const (
	EffectDamage      EffectKind = "damage"
	EffectHeal        EffectKind = "heal"
	EffectApplyStatus EffectKind = "apply_status"
	EffectSetVar      EffectKind = "set_var"
	EffectVFX         EffectKind = "vfx"
	EffectWait        EffectKind = "wait"
)

// TargetKind selects who an effect lands on.
type TargetKind string

const (
	TargetSelf        TargetKind = "self"
	TargetFrontEnemy  TargetKind = "front_enemy"
	TargetRandomEnemy TargetKind = "random_enemy"
	TargetAllEnemies  TargetKind = "all_enemies"
	TargetAllAllies   TargetKind = "all_allies"
	TargetEventTarget TargetKind = "event_target"
	TargetCaster      TargetKind = "caster"
)

// Effect is a template turned into battle actions when a reaction fires.
//
// Amount is the damage, heal, status charges or the value written by
// set_var. Name is the animation played by vfx. Duration is the pause
// introduced by wait.
type Effect struct {
	Kind     EffectKind `yaml:"kind" json:"kind" mapstructure:"kind"`
	Target   TargetKind `yaml:"target,omitempty" json:"target,omitempty" mapstructure:"target"`
	Amount   *Expr      `yaml:"amount,omitempty" json:"amount,omitempty" mapstructure:"amount"`
	Status   string     `yaml:"status,omitempty" json:"status,omitempty" mapstructure:"status"`
	Var      string     `yaml:"var,omitempty" json:"var,omitempty" mapstructure:"var"`
	Name     string     `yaml:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	Duration float64    `yaml:"duration,omitempty" json:"duration,omitempty" mapstructure:"duration"`
}

// TargetOrSelf returns the effect target, defaulting to self.
func (e Effect) TargetOrSelf() TargetKind {
	if e.Target == "" {
		return TargetSelf
	}
	return e.Target
}

// ExprOp names an expression operator.
type ExprOp string

const (
	OpConst      ExprOp = "const"
	OpVar        ExprOp = "var"
	OpValue      ExprOp = "value"
	OpSum        ExprOp = "sum"
	OpMul        ExprOp = "mul"
	OpRandomInt  ExprOp = "random_int"
	OpAllyCount  ExprOp = "ally_count"
	OpEnemyCount ExprOp = "enemy_count"
)

// Expr is a small integer expression evaluated in the context of the
// reacting entity.
type Expr struct {
	Op    ExprOp `yaml:"op" json:"op" mapstructure:"op"`
	Value int64  `yaml:"value,omitempty" json:"value,omitempty" mapstructure:"value"`
	Var   string `yaml:"var,omitempty" json:"var,omitempty" mapstructure:"var"`
	Args  []Expr `yaml:"args,omitempty" json:"args,omitempty" mapstructure:"args"`
	Min   int64  `yaml:"min,omitempty" json:"min,omitempty" mapstructure:"min"`
	Max   int64  `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
}

// Const returns a constant expression.
func Const(v int64) *Expr { return &Expr{Op: OpConst, Value: v} }

// VarRef returns an expression reading a context variable.
func VarRef(name string) *Expr { return &Expr{Op: OpVar, Var: name} }
