package battle

// Timing holds the logical durations, in seconds, that actions advance the
// battle clock by.
type Timing struct {
	Damage float64 `env:"FUSION_ARENA_TIMING_DAMAGE" envDefault:"0.3"`
	Heal   float64 `env:"FUSION_ARENA_TIMING_HEAL" envDefault:"0.3"`
	Status float64 `env:"FUSION_ARENA_TIMING_STATUS" envDefault:"0.3"`
	Death  float64 `env:"FUSION_ARENA_TIMING_DEATH" envDefault:"0.5"`
}

// DefaultTiming returns the standard action durations.
func DefaultTiming() Timing {
	return Timing{Damage: 0.3, Heal: 0.3, Status: 0.3, Death: 0.5}
}
