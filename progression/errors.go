package progression

import (
	"errors"
	"fmt"
)

// Precondition failures. They come back in Update.Warning, never as the error
// result, and the tournament is left unchanged.
var (
	ErrStageIncomplete  = errors.New("not every match of the current stage is completed")
	ErrNotStarted       = errors.New("tournament has not started")
	ErrWrongFormat      = errors.New("operation does not apply to this tournament format")
	ErrCourtNotAssigned = errors.New("match has no court assigned")
)

var ErrMatchNotFound = errors.New("match not found")

// StructuralError means the match graph itself is broken, e.g. a progression
// link to a match that does not exist. It is always returned as an error.
type StructuralError struct {
	MatchID  string
	TargetID string
	Reason   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural inconsistency: match %s -> %s: %s", e.MatchID, e.TargetID, e.Reason)
}
