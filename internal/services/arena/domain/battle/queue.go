package battle

import "go.uber.org/zap"

// actionQueue is a deque of pending actions. Follow-ups go to the front in
// order, so an action's consequences resolve depth-first before anything
// queued behind it.
type actionQueue struct {
	items []Action
}

func (q *actionQueue) pushBack(actions ...Action) {
	q.items = append(q.items, actions...)
}

func (q *actionQueue) pushFront(actions ...Action) {
	if len(actions) == 0 {
		return
	}
	items := make([]Action, 0, len(actions)+len(q.items))
	items = append(items, actions...)
	q.items = append(items, q.items...)
}

func (q *actionQueue) popFront() (Action, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	a := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return a, true
}

func (q *actionQueue) len() int { return len(q.items) }

// process applies actions and everything they cause. Failed actions are
// logged and skipped; the rest of the queue still runs.
func (s *Simulation) process(actions ...Action) {
	var q actionQueue
	q.pushBack(actions...)
	applied := 0
	for {
		a, ok := q.popFront()
		if !ok {
			return
		}
		if applied >= s.budget {
			s.logger.Error("action budget exhausted",
				zap.Int("budget", s.budget), zap.Int("dropped", q.len()+1))
			return
		}
		applied++

		t := s.clock
		followUps, logged, err := s.apply(a)
		if err != nil {
			s.logger.Warn("action failed", zap.String("action", string(a.Type())), zap.Error(err))
			continue
		}
		if logged != nil {
			s.log.append(logged, t)
		}
		q.pushFront(followUps...)
	}
}
