package battle

import "go.uber.org/zap"

const (
	// DefaultMaxTurns bounds RunToEnd when no limit is given.
	DefaultMaxTurns = 1000
	// defaultActionBudget bounds the actions a single queue drain may apply.
	defaultActionBudget = 100000
)

type options struct {
	battleID     uint64
	seed         int64
	seeded       bool
	logger       *zap.Logger
	timing       Timing
	catalog      AnimationCatalog
	actionBudget int
}

// Option configures a Simulation.
type Option func(*options)

// WithBattleID sets the battle id. The RNG is seeded from it unless
// WithSeed is also given.
func WithBattleID(id uint64) Option {
	return func(o *options) { o.battleID = id }
}

// WithSeed overrides the RNG seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithTiming(t Timing) Option {
	return func(o *options) { o.timing = t }
}

// WithCatalog sets the catalog PlayEffect looks animations up in.
func WithCatalog(c AnimationCatalog) Option {
	return func(o *options) {
		if c != nil {
			o.catalog = c
		}
	}
}

// WithActionBudget caps how many actions one queue drain may apply before
// the remainder is dropped.
func WithActionBudget(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.actionBudget = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:       zap.NewNop(),
		timing:       DefaultTiming(),
		catalog:      Catalog{},
		actionBudget: defaultActionBudget,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = int64(o.battleID)
	}
	return o
}
