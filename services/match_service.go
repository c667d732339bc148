package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/charmbracelet/log"
)

type AssignCourtInput struct {
	Court    string     `json:"court"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

type ListMatchesFilter struct {
	Stage    *models.Stage
	Status   *models.MatchStatus
	Category string
}

type MatchService interface {
	RecordPoint(ctx context.Context, tournamentID, matchID string, slot models.TeamSlot) (*OperationResult, error)
	UndoPoint(ctx context.Context, tournamentID, matchID string, slot models.TeamSlot) (*OperationResult, error)
	StartSet(ctx context.Context, tournamentID, matchID string) (*OperationResult, error)
	RecordWalkover(ctx context.Context, tournamentID, matchID string, winner models.TeamSlot) (*OperationResult, error)
	AssignCourt(ctx context.Context, tournamentID, matchID string, input AssignCourtInput) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID string, filter ListMatchesFilter) ([]*models.Match, error)
}

type matchService struct {
	*engineRunner
}

func NewMatchService(
	repo repositories.TournamentRepository,
	controller *progression.Controller,
	broadcaster Broadcaster,
	m metrics.Metrics,
	logger *log.Logger,
) MatchService {
	if logger == nil {
		logger = log.Default()
	}
	return &matchService{
		engineRunner: newEngineRunner(repo, controller, broadcaster, m, logger.WithPrefix("matches")),
	}
}

func (s *matchService) RecordPoint(ctx context.Context, tournamentID, matchID string, slot models.TeamSlot) (*OperationResult, error) {
	res, err := s.run(ctx, tournamentID, "record point", func(t *models.Tournament) (*progression.Update, error) {
		return s.controller.RecordPoint(t, matchID, slot)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncPointsRecorded(string(res.Tournament.Format))
	return res, nil
}

func (s *matchService) UndoPoint(ctx context.Context, tournamentID, matchID string, slot models.TeamSlot) (*OperationResult, error) {
	return s.run(ctx, tournamentID, "undo point", func(t *models.Tournament) (*progression.Update, error) {
		return s.controller.UndoPoint(t, matchID, slot)
	})
}

func (s *matchService) StartSet(ctx context.Context, tournamentID, matchID string) (*OperationResult, error) {
	return s.run(ctx, tournamentID, "start set", func(t *models.Tournament) (*progression.Update, error) {
		return s.controller.StartSet(t, matchID)
	})
}

func (s *matchService) RecordWalkover(ctx context.Context, tournamentID, matchID string, winner models.TeamSlot) (*OperationResult, error) {
	return s.run(ctx, tournamentID, "walkover", func(t *models.Tournament) (*progression.Update, error) {
		return s.controller.RecordWalkover(t, matchID, winner)
	})
}

// AssignCourt is the scheduling side's write: it only touches Match.Court.
func (s *matchService) AssignCourt(ctx context.Context, tournamentID, matchID string, input AssignCourtInput) (*models.Match, error) {
	court := strings.TrimSpace(input.Court)
	if court == "" {
		return nil, ErrCourtRequired
	}
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	m := t.MatchByID(matchID)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Status.IsClosed() {
		return nil, &PreconditionError{Op: "assign court", Err: fmt.Errorf("match %s: %w", matchID, scoring.ErrMatchClosed)}
	}

	m.Court = &models.CourtAssignment{Court: court, StartsAt: input.StartsAt}
	t.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	s.broadcaster.Publish(t.ID, realtime.EventTournamentUpdated, t.Summary())
	return m, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID string, filter ListMatchesFilter) ([]*models.Match, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		if filter.Stage != nil && m.Stage != *filter.Stage {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
