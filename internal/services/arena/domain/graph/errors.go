package graph

import (
	"fmt"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
)

// Error is the coded error returned by graph and scope lookups.
type Error = apperrors.Error

var (
	// ErrNotFound indicates a missing node, link or layer.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "not found")
	// ErrVarNotFound indicates a variable could not be resolved.
	ErrVarNotFound = apperrors.New(apperrors.CodeVarNotFound, "var not found")
	// ErrWrongKind indicates a node or value has an unexpected kind.
	ErrWrongKind = apperrors.New(apperrors.CodeWrongKind, "wrong kind")
	// ErrCustom covers every other graph failure.
	ErrCustom = apperrors.New(apperrors.CodeCustom, "graph error")
)

func notFound(id ID) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound,
		fmt.Sprintf("node %d not found", id),
		map[string]string{"id": fmt.Sprint(id)})
}

func wrongKind(id ID, want, got Kind) error {
	return apperrors.New(apperrors.CodeWrongKind,
		fmt.Sprintf("node %d is %s, want %s", id, got, want))
}

func varNotFound(id ID, name string) error {
	return apperrors.WithMetadata(apperrors.CodeVarNotFound,
		fmt.Sprintf("var %q not found on node %d", name, id),
		map[string]string{"var": name})
}

func customf(format string, args ...any) error {
	return apperrors.New(apperrors.CodeCustom, fmt.Sprintf(format, args...))
}
