package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMatchClosed   = errors.New("match is already completed or cancelled")
	ErrSetInProgress = errors.New("current set is not complete")
	ErrNoActiveSet   = errors.New("no set in progress")
	ErrScoreAtZero   = errors.New("score is already zero")
	ErrTeamsNotReady = errors.New("match does not have two teams yet")
	ErrInvalidSlot   = errors.New("invalid team slot")
)

// ValidationError reports bad scoring settings. Nothing is mutated when it is
// returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scoring settings: %s", strings.Join(e.Problems, "; "))
}
