package services

import (
	"errors"
	"fmt"
)

// Errors shared by the services and the HTTP error mapping.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrCourtRequired          = errors.New("court name is required")
	ErrInvalidFormat          = errors.New("invalid tournament format")

	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamNameConflict       = errors.New("team name is already used in this tournament")
	ErrVersionConflict        = errors.New("tournament was modified concurrently, reload and retry")

	ErrRegistrationClosed     = errors.New("tournament registration is closed")
	ErrTournamentNotCompleted = errors.New("tournament is not completed")
	ErrArchiveDisabled        = errors.New("tournament archiving is not configured")

	// ErrBracketCorrupted wraps structural faults found while propagating
	// winners. The stored tournament is left untouched.
	ErrBracketCorrupted = errors.New("tournament bracket is inconsistent")
)

// PreconditionError is an operation the engine declined without changing
// anything, e.g. advancing before every match of the stage is completed.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }
