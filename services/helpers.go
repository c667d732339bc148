package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/Dosada05/tournament-engine/seeding"
)

// Broadcaster pushes tournament events to subscribed clients.
type Broadcaster interface {
	Publish(tournamentID string, event realtime.EventType, payload any)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(string, realtime.EventType, any) {}

// OperationResult is the outcome of a state-changing tournament operation.
type OperationResult struct {
	Tournament       *models.Tournament `json:"tournament"`
	PreviousStage    models.Stage       `json:"previous_stage"`
	StageChanged     bool               `json:"stage_changed"`
	CreatedMatches   []string           `json:"created_matches,omitempty"`
	CompletedMatches []string           `json:"completed_matches,omitempty"`
	ReadyMatches     []string           `json:"ready_matches,omitempty"`
}

func resultFromUpdate(u *progression.Update) *OperationResult {
	return &OperationResult{
		Tournament:       u.Tournament,
		PreviousStage:    u.PreviousStage,
		StageChanged:     u.StageChanged,
		CreatedMatches:   u.CreatedMatches,
		CompletedMatches: u.CompletedMatches,
		ReadyMatches:     u.ReadyMatches,
	}
}

type StageChangedPayload struct {
	TournamentID  string       `json:"tournament_id"`
	PreviousStage models.Stage `json:"previous_stage"`
	CurrentStage  models.Stage `json:"current_stage"`
	ChampionID    string       `json:"champion_id,omitempty"`

	// CategoryChampions is set when several categories finish together.
	CategoryChampions map[string]string `json:"category_champions,omitempty"`
}

type MatchCompletedPayload struct {
	TournamentID string        `json:"tournament_id"`
	Match        *models.Match `json:"match"`
}

func handleRepositoryError(err error, tournamentID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return fmt.Errorf("%w: %s", ErrTournamentNotFound, tournamentID)
	case errors.Is(err, repositories.ErrVersionConflict):
		return fmt.Errorf("%w: %s", ErrVersionConflict, tournamentID)
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	}
	return fmt.Errorf("tournament %s: %w", tournamentID, err)
}

// handleEngineError sorts engine errors into the service error classes.
func handleEngineError(op string, err error) error {
	var (
		validation   *scoring.ValidationError
		insufficient *brackets.InsufficientTeamsError
		structural   *progression.StructuralError
	)
	switch {
	case errors.As(err, &validation),
		errors.As(err, &insufficient),
		errors.Is(err, scoring.ErrInvalidSlot),
		errors.Is(err, seeding.ErrInvalidSeed),
		errors.Is(err, seeding.ErrDuplicateSeed):
		return fmt.Errorf("%s: %w: %w", op, ErrValidationFailed, err)
	case errors.Is(err, progression.ErrMatchNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrMatchNotFound, err)
	case errors.As(err, &structural):
		return fmt.Errorf("%s: %w: %w", op, ErrBracketCorrupted, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
