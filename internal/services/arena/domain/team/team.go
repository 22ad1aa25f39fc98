// Package team defines the data a side brings into the arena: fusions of
// units, their behaviors and the status effects they can inflict.
//
// Teams are plain data. They are built in code, decoded from YAML or JSON,
// or assembled by the Lua scenario loader, and validated before a battle
// unpacks them into its graph.
package team

// Team is one side of a battle.
type Team struct {
	Name     string      `yaml:"name" json:"name" mapstructure:"name"`
	Fusions  []Fusion    `yaml:"fusions" json:"fusions" mapstructure:"fusions"`
	Statuses []StatusDef `yaml:"statuses,omitempty" json:"statuses,omitempty" mapstructure:"statuses"`
}

// Fusion is a roster slot holding one or more units that act as one.
type Fusion struct {
	Slot  int    `yaml:"slot" json:"slot" mapstructure:"slot"`
	Units []Unit `yaml:"units" json:"units" mapstructure:"units"`
}

// Unit is a combatant contributing stats and reactions to its fusion.
type Unit struct {
	Name           string         `yaml:"name" json:"name" mapstructure:"name"`
	Pwr            int64          `yaml:"pwr" json:"pwr" mapstructure:"pwr"`
	HP             int64          `yaml:"hp" json:"hp" mapstructure:"hp"`
	Reactions      []Reaction     `yaml:"reactions,omitempty" json:"reactions,omitempty" mapstructure:"reactions"`
	Representation Representation `yaml:"representation,omitempty" json:"representation,omitempty" mapstructure:"representation"`
}

// Representation is the opaque visual description handed to playback.
type Representation struct {
	Material string            `yaml:"material,omitempty" json:"material,omitempty" mapstructure:"material"`
	Params   map[string]string `yaml:"params,omitempty" json:"params,omitempty" mapstructure:"params"`
}

// StatusDef describes a status effect that can be applied to a fusion.
type StatusDef struct {
	Name           string         `yaml:"name" json:"name" mapstructure:"name"`
	Color          string         `yaml:"color,omitempty" json:"color,omitempty" mapstructure:"color"`
	Representation Representation `yaml:"representation,omitempty" json:"representation,omitempty" mapstructure:"representation"`
	Reactions      []Reaction     `yaml:"reactions,omitempty" json:"reactions,omitempty" mapstructure:"reactions"`
}

// UnitCount returns the number of units across all fusions.
func (t Team) UnitCount() int {
	n := 0
	for _, f := range t.Fusions {
		n += len(f.Units)
	}
	return n
}
