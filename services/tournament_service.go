package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/Dosada05/tournament-engine/seeding"
	"github.com/Dosada05/tournament-engine/standings"
	"github.com/Dosada05/tournament-engine/storage"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name     string                  `json:"name"`
	Format   string                  `json:"format"`
	Scoring  *models.ScoringSettings `json:"scoring,omitempty"`
	Seeding  models.SeedingConfig    `json:"seeding"`
	Settings models.FormatSettings   `json:"settings"`
	Teams    []AddTeamInput          `json:"teams,omitempty"`
}

type AddTeamInput struct {
	Name     string          `json:"name"`
	Players  []models.Player `json:"players,omitempty"`
	Category string          `json:"category,omitempty"`
	Ranking  float64         `json:"ranking"`
	Seed     *int            `json:"seed,omitempty"`
}

type ListTournamentsFilter struct {
	Format *models.Format
	Stage  *models.Stage
	Limit  int
	Offset int
}

type ArchiveResult struct {
	TournamentID string                `json:"tournament_id"`
	Version      int64                 `json:"version"`
	JSON         *storage.UploadResult `json:"json"`
	Msgpack      *storage.UploadResult `json:"msgpack"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.TournamentSummary, error)
	AddTeam(ctx context.Context, tournamentID string, input AddTeamInput) (*models.Team, error)
	StartTournament(ctx context.Context, id string) (*OperationResult, error)
	AdvanceStage(ctx context.Context, id string) (*OperationResult, error)
	GetStandings(ctx context.Context, id string, category string) ([]models.Standing, error)
	ArchiveTournament(ctx context.Context, id string) (*ArchiveResult, error)
}

type tournamentService struct {
	*engineRunner
	uploader storage.FileUploader
}

// NewTournamentService wires the tournament operations. uploader may be nil,
// in which case ArchiveTournament returns ErrArchiveDisabled.
func NewTournamentService(
	repo repositories.TournamentRepository,
	controller *progression.Controller,
	uploader storage.FileUploader,
	broadcaster Broadcaster,
	m metrics.Metrics,
	logger *log.Logger,
) TournamentService {
	if logger == nil {
		logger = log.Default()
	}
	return &tournamentService{
		engineRunner: newEngineRunner(repo, controller, broadcaster, m, logger.WithPrefix("tournaments")),
		uploader:     uploader,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	format, err := models.ParseFormat(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	settings := models.DefaultScoringSettings()
	if input.Scoring != nil {
		settings = *input.Scoring
	}
	if err := scoring.ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	now := time.Now().UTC()
	t := &models.Tournament{
		ID:           uuid.NewString(),
		Name:         name,
		Format:       format,
		CurrentStage: models.StageRegistration,
		Teams:        []*models.Team{},
		Matches:      []*models.Match{},
		Scoring:      settings,
		Seeding:      input.Seeding,
		Settings:     input.Settings,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, in := range input.Teams {
		if _, err := addTeam(t, in); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, handleRepositoryError(err, t.ID)
	}
	s.logger.Info("tournament created", "tournament", t.ID, "format", t.Format, "teams", len(t.Teams))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	return s.load(ctx, id)
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.TournamentSummary, error) {
	tournaments, err := s.repo.List(ctx, repositories.ListTournamentsFilter{
		Format: filter.Format,
		Stage:  filter.Stage,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	out := make([]models.TournamentSummary, len(tournaments))
	for i, t := range tournaments {
		out[i] = t.Summary()
	}
	return out, nil
}

func (s *tournamentService) AddTeam(ctx context.Context, tournamentID string, input AddTeamInput) (*models.Team, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.CurrentStage != models.StageRegistration {
		return nil, &PreconditionError{Op: "add team", Err: ErrRegistrationClosed}
	}

	team, err := addTeam(t, input)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	s.broadcaster.Publish(t.ID, realtime.EventTournamentUpdated, t.Summary())
	return team, nil
}

func addTeam(t *models.Tournament, input AddTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	for _, existing := range t.Teams {
		if strings.EqualFold(existing.Name, name) && existing.Category == input.Category {
			return nil, fmt.Errorf("%w: %q", ErrTeamNameConflict, name)
		}
	}

	team := &models.Team{
		ID:       uuid.NewString(),
		Name:     name,
		Players:  input.Players,
		Category: input.Category,
		Ranking:  input.Ranking,
		Seed:     input.Seed,
	}
	if err := seeding.ValidateSeeds(append(t.Teams[:len(t.Teams):len(t.Teams)], team)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	t.Teams = append(t.Teams, team)
	return team, nil
}

func (s *tournamentService) StartTournament(ctx context.Context, id string) (*OperationResult, error) {
	return s.run(ctx, id, "start", s.controller.Start)
}

func (s *tournamentService) AdvanceStage(ctx context.Context, id string) (*OperationResult, error) {
	return s.run(ctx, id, "advance", s.controller.Advance)
}

// GetStandings ranks the teams of a tournament. category selects either a
// match category (a group or a division) or a team category; empty means
// every team and every match.
func (s *tournamentService) GetStandings(ctx context.Context, id string, category string) ([]models.Standing, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return standings.Compute(t.Teams, t.Matches), nil
	}

	var matches []*models.Match
	for _, m := range t.Matches {
		if m.Category == category {
			matches = append(matches, m)
		}
	}
	if len(matches) > 0 {
		return standings.Compute(standings.TeamsIn(t.Teams, matches), matches), nil
	}

	var teams []*models.Team
	for _, team := range t.Teams {
		if team.Category == category {
			teams = append(teams, team)
		}
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: category %q", ErrNotFound, category)
	}
	return standings.Compute(teams, t.Matches), nil
}

// ArchiveTournament uploads JSON and msgpack snapshots of a completed
// tournament concurrently and records the JSON key.
func (s *tournamentService) ArchiveTournament(ctx context.Context, id string) (*ArchiveResult, error) {
	if s.uploader == nil {
		return nil, ErrArchiveDisabled
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CurrentStage != models.StageCompleted {
		return nil, &PreconditionError{Op: "archive", Err: ErrTournamentNotCompleted}
	}

	res := &ArchiveResult{TournamentID: t.ID, Version: t.Version}
	g, gctx := errgroup.WithContext(ctx)
	upload := func(codec storage.Codec, dst **storage.UploadResult) {
		g.Go(func() error {
			data, err := storage.EncodeSnapshot(t, codec)
			if err != nil {
				return fmt.Errorf("encode %s snapshot: %w", codec, err)
			}
			out, err := s.uploader.Upload(gctx, storage.SnapshotKey(t, codec), codec.ContentType(), bytes.NewReader(data))
			s.metrics.IncArchiveUpload(string(codec), err == nil)
			if err != nil {
				return err
			}
			*dst = out
			return nil
		})
	}
	upload(storage.CodecJSON, &res.JSON)
	upload(storage.CodecMsgpack, &res.Msgpack)
	if err := g.Wait(); err != nil {
		s.logger.Error("archive upload failed", "tournament", t.ID, "err", err)
		return nil, fmt.Errorf("archive tournament %s: %w", t.ID, err)
	}

	if err := s.repo.UpdateArchiveKey(ctx, t.ID, res.JSON.Key); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, handleRepositoryError(err, t.ID)
		}
		return nil, fmt.Errorf("record archive key for %s: %w", t.ID, err)
	}
	s.logger.Info("tournament archived", "tournament", t.ID, "key", res.JSON.Key)
	return res, nil
}
