package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown         = "UNKNOWN"
	CodeNotFound        = "NOT_FOUND"
	CodeVarNotFound     = "VAR_NOT_FOUND"
	CodeWrongKind       = "WRONG_KIND"
	CodeCustom          = "CUSTOM"
	CodeTeamInvalid     = "TEAM_INVALID"
	CodeScenarioInvalid = "SCENARIO_INVALID"
	CodeTurnLimit       = "TURN_LIMIT"
	CodeHashMismatch    = "HASH_MISMATCH"
)

var enUSMessages = map[Code]string{
	CodeUnknown:         "Something went wrong while simulating the battle.",
	CodeNotFound:        "The requested battle entity does not exist.",
	CodeVarNotFound:     "The variable {{.var}} is not defined here.",
	CodeWrongKind:       "The entity is not of the expected kind.",
	CodeCustom:          "The battle rejected this operation.",
	CodeTeamInvalid:     "The team {{.team}} cannot enter the arena: {{.reason}}.",
	CodeScenarioInvalid: "The scenario could not be loaded: {{.reason}}.",
	CodeTurnLimit:       "The battle did not finish within {{.turns}} turns.",
	CodeHashMismatch:    "The battle result does not match the recorded hash.",
}
