package services

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/Dosada05/tournament-engine/realtime"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/charmbracelet/log"
)

type noopMetrics struct{}

func (noopMetrics) IncPointsRecorded(string)                 {}
func (noopMetrics) IncMatchesCompleted(string, int)          {}
func (noopMetrics) IncStageTransition(string, string)        {}
func (noopMetrics) IncWarning(string)                        {}
func (noopMetrics) IncVersionConflict()                      {}
func (noopMetrics) IncArchiveUpload(string, bool)            {}
func (noopMetrics) ObserveOperationDuration(string, float64) {}

// engineRunner is the load, engine call, save and broadcast cycle every
// mutating operation goes through. Saves are compare-and-swap on the
// tournament version; a lost race surfaces as ErrVersionConflict and is not
// retried.
type engineRunner struct {
	repo        repositories.TournamentRepository
	controller  *progression.Controller
	broadcaster Broadcaster
	metrics     metrics.Metrics
	logger      *log.Logger
}

func newEngineRunner(
	repo repositories.TournamentRepository,
	controller *progression.Controller,
	broadcaster Broadcaster,
	m metrics.Metrics,
	logger *log.Logger,
) *engineRunner {
	if logger == nil {
		logger = log.Default()
	}
	if controller == nil {
		controller = progression.NewController(logger)
	}
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	if m == nil {
		m = noopMetrics{}
	}
	return &engineRunner{
		repo:        repo,
		controller:  controller,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
	}
}

type engineOp func(t *models.Tournament) (*progression.Update, error)

func (r *engineRunner) load(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := r.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, tournamentID)
	}
	return t, nil
}

func (r *engineRunner) run(ctx context.Context, tournamentID, op string, apply engineOp) (*OperationResult, error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveOperationDuration(op, time.Since(started).Seconds())
	}()

	t, err := r.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	u, err := apply(t)
	if err != nil {
		var structural *progression.StructuralError
		if errors.As(err, &structural) {
			r.logger.Error("bracket structure fault", "tournament", tournamentID, "op", op, "err", err)
		}
		return nil, handleEngineError(op, err)
	}
	if u.Warning != nil {
		r.metrics.IncWarning(op)
		return nil, &PreconditionError{Op: op, Err: u.Warning}
	}
	if !u.Changed {
		return resultFromUpdate(u), nil
	}

	if err := r.save(ctx, u.Tournament); err != nil {
		return nil, err
	}
	r.record(u)
	r.publish(u)
	return resultFromUpdate(u), nil
}

func (r *engineRunner) save(ctx context.Context, t *models.Tournament) error {
	if err := r.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			r.metrics.IncVersionConflict()
			r.logger.Warn("version conflict", "tournament", t.ID, "version", t.Version)
		}
		return handleRepositoryError(err, t.ID)
	}
	return nil
}

func (r *engineRunner) record(u *progression.Update) {
	t := u.Tournament
	r.metrics.IncMatchesCompleted(string(t.Format), len(u.CompletedMatches))
	if u.StageChanged {
		r.metrics.IncStageTransition(string(u.PreviousStage), string(t.CurrentStage))
		r.logger.Info("stage changed", "tournament", t.ID, "from", u.PreviousStage, "to", t.CurrentStage)
	}
}

func (r *engineRunner) publish(u *progression.Update) {
	t := u.Tournament
	if u.StageChanged {
		r.broadcaster.Publish(t.ID, realtime.EventStageChanged, StageChangedPayload{
			TournamentID:      t.ID,
			PreviousStage:     u.PreviousStage,
			CurrentStage:      t.CurrentStage,
			ChampionID:        t.ChampionID,
			CategoryChampions: t.CategoryChampions,
		})
	}
	for _, id := range u.CompletedMatches {
		if m := t.MatchByID(id); m != nil {
			r.broadcaster.Publish(t.ID, realtime.EventMatchCompleted, MatchCompletedPayload{TournamentID: t.ID, Match: m})
		}
	}
	r.broadcaster.Publish(t.ID, realtime.EventTournamentUpdated, t.Summary())
}
