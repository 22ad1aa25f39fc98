package battle

import (
	"fmt"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

// eval computes x in the current scope on behalf of l.
func (s *Simulation) eval(l listener, x team.Expr) (int64, error) {
	switch x.Op {
	case team.OpConst:
		return x.Value, nil
	case team.OpVar:
		return s.scope.GetInt(x.Var)
	case team.OpValue:
		return s.scope.GetInt("value")
	case team.OpSum, team.OpMul:
		acc := int64(0)
		if x.Op == team.OpMul {
			acc = 1
		}
		for _, arg := range x.Args {
			v, err := s.eval(l, arg)
			if err != nil {
				return 0, err
			}
			if x.Op == team.OpMul {
				acc *= v
			} else {
				acc += v
			}
		}
		return acc, nil
	case team.OpRandomInt:
		span := team.RandomSpan(x.Min, x.Max)
		if span <= 0 {
			return 0, apperrors.New(apperrors.CodeCustom, fmt.Sprintf("random_int range %d..%d", x.Min, x.Max))
		}
		return x.Min + s.rng.Int63n(span), nil
	case team.OpAllyCount:
		return int64(len(s.AllAllies(l.holder))), nil
	case team.OpEnemyCount:
		return int64(len(s.AllEnemies(l.holder))), nil
	}
	return 0, apperrors.New(apperrors.CodeCustom, fmt.Sprintf("unknown expression op %q", x.Op))
}
