package battle

import (
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

// EventKind names a battle event.
type EventKind string

const (
	EventBattleStart    EventKind = "battle_start"
	EventTurnEnd        EventKind = "turn_end"
	EventDeath          EventKind = "death"
	EventUpdateStat     EventKind = "update_stat"
	EventOutgoingDamage EventKind = "outgoing_damage"
)

// Event is something reactions can listen for. Entity is the dead fusion,
// the fusion whose stat is refreshed or the attacker; Other is the
// defender of a damage event.
type Event struct {
	Kind   EventKind `json:"kind"`
	Entity graph.ID  `json:"entity,omitempty"`
	Other  graph.ID  `json:"other,omitempty"`
	Var    string    `json:"var,omitempty"`
}

func BattleStartEvent() Event { return Event{Kind: EventBattleStart} }
func TurnEndEvent() Event     { return Event{Kind: EventTurnEnd} }

func DeathEvent(id graph.ID) Event {
	return Event{Kind: EventDeath, Entity: id}
}

func UpdateStatEvent(id graph.ID, stat string) Event {
	return Event{Kind: EventUpdateStat, Entity: id, Var: stat}
}

func OutgoingDamageEvent(a, b graph.ID) Event {
	return Event{Kind: EventOutgoingDamage, Entity: a, Other: b}
}

// matches reports whether trigger fires for holder on e. It also returns
// the entity bound as the event target for that holder.
func (s *Simulation) matches(e Event, trigger team.Trigger, holder graph.ID) (graph.ID, bool) {
	switch e.Kind {
	case EventBattleStart:
		return 0, trigger.Kind == team.TriggerBattleStart
	case EventTurnEnd:
		return 0, trigger.Kind == team.TriggerTurnEnd
	case EventDeath:
		switch trigger.Kind {
		case team.TriggerAnyDeath:
			return e.Entity, true
		case team.TriggerAllyDeath:
			return e.Entity, s.sideOf(holder) == s.sideOf(e.Entity)
		case team.TriggerEnemyDeath:
			return e.Entity, s.sideOf(holder) == s.sideOf(e.Entity).Opposite()
		}
	case EventUpdateStat:
		return 0, trigger.Kind == team.TriggerUpdateStat && trigger.Var == e.Var && holder == e.Entity
	case EventOutgoingDamage:
		switch trigger.Kind {
		case team.TriggerOutgoingDamage:
			return e.Other, holder == e.Entity
		case team.TriggerIncomingDamage:
			return e.Entity, holder == e.Other
		}
	}
	return 0, false
}
