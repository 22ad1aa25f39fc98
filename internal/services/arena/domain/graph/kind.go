package graph

// ID addresses a node in the store. Zero is reserved for "no node".
type ID uint64

// Kind classifies a node.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBattle
	KindTeam
	KindFusion
	KindUnit
	KindStatus
	KindRepresentation
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindBattle:         "battle",
	KindTeam:           "team",
	KindFusion:         "fusion",
	KindUnit:           "unit",
	KindStatus:         "status",
	KindRepresentation: "representation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
