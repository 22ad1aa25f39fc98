package battle

import (
	"go.uber.org/zap"

	"github.com/louisbranch/fusionarena/internal/services/arena/domain/graph"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/scope"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

// listener is a set of reactions run on behalf of a fusion, either its
// own or those of a status it holds.
type listener struct {
	holder    graph.ID
	status    graph.ID
	reactions []team.Reaction
}

func (l listener) layers(target graph.ID) []scope.Layer {
	var layers []scope.Layer
	if l.status != 0 {
		layers = []scope.Layer{scope.Caster(l.holder), scope.Owner(l.status)}
	} else {
		layers = []scope.Layer{scope.Owner(l.holder)}
	}
	if target != 0 {
		layers = append(layers, scope.Target(target))
	}
	return layers
}

// listeners returns left fusions, right fusions, then every status held by
// a living fusion in id order.
func (s *Simulation) listeners() []listener {
	var out []listener
	for _, id := range s.rosterOrder() {
		data, err := graph.Get[fusionData](s.store, id, graph.KindFusion)
		if err != nil {
			s.logger.Error("fusion data", zap.Uint64("entity", uint64(id)), zap.Error(err))
			continue
		}
		out = append(out, listener{holder: id, reactions: data.Reactions})
	}
	for _, id := range s.store.IDsOfKind(graph.KindStatus) {
		data, err := graph.Get[statusData](s.store, id, graph.KindStatus)
		if err != nil {
			continue
		}
		holder, err := s.store.Owner(id)
		if err != nil {
			continue
		}
		if _, _, ok := s.inRoster(holder); !ok {
			continue
		}
		out = append(out, listener{holder: holder, status: id, reactions: data.Def.Reactions})
	}
	return out
}

// react runs the effects of every reaction matching e and returns the
// resulting actions in dispatch order. A failing reaction contributes
// nothing.
func (s *Simulation) react(e Event) []Action {
	var actions []Action
	for _, l := range s.listeners() {
		for _, r := range l.reactions {
			if r.Trigger.Kind.ModifiesValue() {
				continue
			}
			target, ok := s.matches(e, r.Trigger, l.holder)
			if !ok {
				continue
			}
			var produced []Action
			err := s.scope.WithLayers(l.layers(target), func() error {
				var err error
				produced, err = s.runEffects(l, target, r.Effects)
				return err
			})
			if err != nil {
				s.logger.Warn("reaction failed",
					zap.String("event", string(e.Kind)),
					zap.Uint64("entity", uint64(l.holder)),
					zap.Error(err))
				continue
			}
			actions = append(actions, produced...)
		}
	}
	return actions
}

// updateValue folds value through the modifier of every reaction matching
// e. The running value is bound to the "value" variable.
func (s *Simulation) updateValue(e Event, value int64) int64 {
	for _, l := range s.listeners() {
		for _, r := range l.reactions {
			if r.Modifier == nil {
				continue
			}
			target, ok := s.matches(e, r.Trigger, l.holder)
			if !ok {
				continue
			}
			layers := append(l.layers(target), scope.Var("value", graph.Int(value)))
			var next int64
			err := s.scope.WithLayers(layers, func() error {
				var err error
				next, err = s.eval(l, *r.Modifier)
				return err
			})
			if err != nil {
				s.logger.Warn("modifier failed",
					zap.String("event", string(e.Kind)),
					zap.Uint64("entity", uint64(l.holder)),
					zap.Error(err))
				continue
			}
			value = next
		}
	}
	return value
}
