// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Graph and scope errors
	CodeNotFound    Code = "NOT_FOUND"
	CodeVarNotFound Code = "VAR_NOT_FOUND"
	CodeWrongKind   Code = "WRONG_KIND"
	CodeCustom      Code = "CUSTOM"

	// Team and scenario errors
	CodeTeamInvalid     Code = "TEAM_INVALID"
	CodeScenarioInvalid Code = "SCENARIO_INVALID"

	// Simulation errors
	CodeTurnLimit Code = "TURN_LIMIT"

	// Archive errors
	CodeHashMismatch Code = "HASH_MISMATCH"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeTeamInvalid,
		CodeScenarioInvalid,
		CodeWrongKind:
		return codes.InvalidArgument

	case CodeTurnLimit,
		CodeHashMismatch:
		return codes.FailedPrecondition

	case CodeNotFound,
		CodeVarNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
