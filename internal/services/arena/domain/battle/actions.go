package battle

import "github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"

// ActionType names an Action variant.
type ActionType string

const (
	ActionStrike      ActionType = "strike"
	ActionDamage      ActionType = "damage"
	ActionHeal        ActionType = "heal"
	ActionDeath       ActionType = "death"
	ActionSpawn       ActionType = "spawn"
	ActionVarSet      ActionType = "var_set"
	ActionApplyStatus ActionType = "apply_status"
	ActionSendEvent   ActionType = "send_event"
	ActionPlayEffect  ActionType = "play_effect"
	ActionWait        ActionType = "wait"
)

// Action is one atomic battle effect. The set of actions is closed.
type Action interface {
	Type() ActionType
	isAction()
}

// Strike makes A and B hit each other with their current power.
type Strike struct {
	A graph.ID `json:"a"`
	B graph.ID `json:"b"`
}

// Damage deals Amount from A to B.
type Damage struct {
	A      graph.ID `json:"a"`
	B      graph.ID `json:"b"`
	Amount int64    `json:"amount"`
}

// Heal removes up to Amount damage from B.
type Heal struct {
	A      graph.ID `json:"a"`
	B      graph.ID `json:"b"`
	Amount int64    `json:"amount"`
}

// Death removes Entity from its roster.
type Death struct {
	Entity graph.ID `json:"entity"`
}

// Spawn brings Entity onto the field.
type Spawn struct {
	Entity graph.ID `json:"entity"`
}

// VarSet writes Value to Var on Entity at the current time.
type VarSet struct {
	Entity graph.ID    `json:"entity"`
	Var    string      `json:"var"`
	Value  graph.Value `json:"value"`
}

// ApplyStatus adds Charges of Status to Target.
type ApplyStatus struct {
	Target  graph.ID `json:"target"`
	Status  string   `json:"status"`
	Charges int64    `json:"charges"`
	Color   string   `json:"color,omitempty"`
}

// SendEvent dispatches Event to every reaction listening for it.
type SendEvent struct {
	Event Event `json:"event"`
}

// PlayEffect records that the named animation played on Entity.
type PlayEffect struct {
	Name   string   `json:"name"`
	Entity graph.ID `json:"entity"`
}

// Wait advances the clock by T without being logged.
type Wait struct {
	T float64 `json:"t"`
}

func (Strike) Type() ActionType      { return ActionStrike }
func (Damage) Type() ActionType      { return ActionDamage }
func (Heal) Type() ActionType        { return ActionHeal }
func (Death) Type() ActionType       { return ActionDeath }
func (Spawn) Type() ActionType       { return ActionSpawn }
func (VarSet) Type() ActionType      { return ActionVarSet }
func (ApplyStatus) Type() ActionType { return ActionApplyStatus }
func (SendEvent) Type() ActionType   { return ActionSendEvent }
func (PlayEffect) Type() ActionType  { return ActionPlayEffect }
func (Wait) Type() ActionType        { return ActionWait }

func (Strike) isAction()      {}
func (Damage) isAction()      {}
func (Heal) isAction()        {}
func (Death) isAction()       {}
func (Spawn) isAction()       {}
func (VarSet) isAction()      {}
func (ApplyStatus) isAction() {}
func (SendEvent) isAction()   {}
func (PlayEffect) isAction()  {}
func (Wait) isAction()        {}
