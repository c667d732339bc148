// Package progression drives a tournament through its stages: it starts it,
// gates stage transitions on match completion, runs scoring through the
// scoring engine and propagates bracket winners.
//
// Every operation takes a tournament, never modifies it, and returns an
// Update holding a new tournament value.
package progression

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/Dosada05/tournament-engine/seeding"
	"github.com/Dosada05/tournament-engine/standings"
	"github.com/charmbracelet/log"
)

// Update is the result of a controller operation and the diff the
// notification side needs.
type Update struct {
	Tournament    *models.Tournament
	PreviousStage models.Stage
	StageChanged  bool
	// Changed is false for no-ops; Tournament is then the input value.
	Changed          bool
	CreatedMatches   []string
	CompletedMatches []string
	// ReadyMatches got their second team and can be scheduled.
	ReadyMatches []string
	Warning      error
}

func (u *Update) setStage(t *models.Tournament, stage models.Stage) {
	if t.CurrentStage == stage {
		return
	}
	t.CurrentStage = stage
	u.StageChanged = true
}

type Controller struct {
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(logger *log.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	c := &Controller{logger: logger.WithPrefix("progression"), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) unchanged(t *models.Tournament) *Update {
	return &Update{Tournament: t, PreviousStage: t.CurrentStage}
}

func (c *Controller) reject(t *models.Tournament, op string, warning error) *Update {
	c.logger.Warn("operation rejected", "op", op, "tournament", t.ID, "stage", t.CurrentStage, "reason", warning)
	u := c.unchanged(t)
	u.Warning = warning
	return u
}

func (c *Controller) begin(t *models.Tournament) (*models.Tournament, *Update) {
	next := t.Clone()
	next.UpdatedAt = c.now()
	return next, &Update{Tournament: next, PreviousStage: t.CurrentStage, Changed: true}
}

// firstStage is where a format goes when it leaves registration.
func firstStage(f models.Format) models.Stage {
	switch f {
	case models.FormatMultiStage:
		return models.StageInitialRound
	case models.FormatGroupKnockout:
		return models.StageGroupStage
	}
	return models.StageInProgress
}

func stageRank(s models.Stage) int {
	switch s {
	case "", models.StageRegistration:
		return 0
	case models.StageInProgress, models.StageInitialRound, models.StageGroupStage:
		return 1
	case models.StageDivisionPlacement:
		return 2
	case models.StagePlayoffKnockout:
		return 3
	}
	return 4
}

// Start validates the configuration, seeds when the first stage is seeded and
// generates the first batch of matches, one bracket per team category.
// Starting a started tournament is a no-op.
func (c *Controller) Start(t *models.Tournament) (*Update, error) {
	if stageRank(t.CurrentStage) > 0 {
		return c.unchanged(t), nil
	}
	if !t.Format.Valid() {
		return nil, fmt.Errorf("start tournament %s: unknown format %q", t.ID, t.Format)
	}
	if err := scoring.ValidateSettings(t.Scoring); err != nil {
		return nil, err
	}
	if err := seeding.ValidateSeeds(t.Teams); err != nil {
		return nil, fmt.Errorf("start tournament %s: %w", t.ID, err)
	}

	next, u := c.begin(t)
	stage := firstStage(t.Format)
	gen, err := brackets.NewGenerator(next.Format, next.Settings)
	if err != nil {
		return nil, err
	}

	fields := fieldsOf(next)
	var matches []*models.Match
	for _, f := range fields {
		order, seeded := c.orderTeams(next, f.teams, stage)
		if !seeded {
			entrySeeds(order)
		}
		params := c.params(next, order)
		params.Category = f.category
		params.Seeded = seeded
		params.Round = 1
		if stage != models.StageInProgress {
			params.Stage = stage
		}
		batch, err := gen.GenerateBracket(context.Background(), params)
		if err != nil {
			return nil, f.wrap(err, len(fields))
		}
		matches = append(matches, batch...)
	}

	c.appendMatches(next, u, matches)
	u.setStage(next, stage)
	c.logger.Info("tournament started", "tournament", next.ID, "format", next.Format, "stage", stage,
		"teams", len(next.Teams), "categories", len(fields), "matches", len(matches), "generator", gen.GetName())
	return u, nil
}

// entrySeeds numbers an unseeded field in entry order, which then serves as
// the seed tie-break in standings. A field with any manual seed keeps it.
func entrySeeds(teams []*models.Team) {
	for _, team := range teams {
		if team.Seed != nil {
			return
		}
	}
	for i, team := range teams {
		seed := i + 1
		team.Seed = &seed
	}
}

// orderTeams applies seeding when the stage is seeded: seeds are assigned by
// ranking per category, written onto the tournament's teams, and the teams
// come back in seed order. Otherwise the given order is kept.
func (c *Controller) orderTeams(t *models.Tournament, teams []*models.Team, stage models.Stage) ([]*models.Team, bool) {
	if !seeding.ShouldSeed(t.Seeding, stage) {
		return slices.Clone(teams), false
	}
	for _, seeded := range seeding.AssignSeedingByCategory(teams, seeding.ByRanking) {
		if team := t.TeamByID(seeded.ID); team != nil {
			team.Seed = seeded.Seed
		}
	}
	return seeding.OrderForStage(teams, t.Seeding, stage), true
}

func (c *Controller) params(t *models.Tournament, teams []*models.Team) brackets.GenerateBracketParams {
	return brackets.GenerateBracketParams{
		TournamentID: t.ID,
		Teams:        teams,
		Settings:     t.Settings,
		Now:          c.now(),
	}
}

func (c *Controller) appendMatches(t *models.Tournament, u *Update, matches []*models.Match) {
	for _, m := range matches {
		t.Matches = append(t.Matches, m)
		u.CreatedMatches = append(u.CreatedMatches, m.ID)
	}
}

// Advance performs whatever transition the tournament is waiting for.
func (c *Controller) Advance(t *models.Tournament) (*Update, error) {
	if stageRank(t.CurrentStage) == 0 {
		return c.Start(t)
	}
	switch {
	case t.CurrentStage == models.StageCompleted:
		return c.unchanged(t), nil
	case t.Format == models.FormatSwiss:
		return c.AdvanceSwissRound(t)
	case t.CurrentStage == models.StageInitialRound:
		return c.AdvanceToDivisionPlacement(t)
	case t.CurrentStage == models.StageDivisionPlacement, t.CurrentStage == models.StageGroupStage:
		return c.AdvanceToPlayoffKnockout(t)
	}
	return c.finish(t)
}

// finish completes a tournament whose last stage is fully played. Completion
// normally happens with the last point; this covers documents edited outside
// the engine.
func (c *Controller) finish(t *models.Tournament) (*Update, error) {
	if pending := openMatches(t.Matches); len(pending) > 0 {
		return c.reject(t, "finish", fmt.Errorf("%w: %s", ErrStageIncomplete, describeOpen(pending))), nil
	}
	next, u := c.begin(t)
	if !c.checkCompletion(next, u) {
		return c.unchanged(t), nil
	}
	return u, nil
}

// advance is the shared gate of the multi-stage transitions: a no-op once the
// target is reached, a warning while the source stage has open matches.
func (c *Controller) advance(t *models.Tournament, from, to models.Stage, build func(next *models.Tournament) ([]*models.Match, error)) (*Update, error) {
	op := "advance to " + string(to)
	if stageRank(t.CurrentStage) >= stageRank(to) {
		return c.unchanged(t), nil
	}
	if t.CurrentStage != from {
		return c.reject(t, op, fmt.Errorf("%w: stage is %s", ErrNotStarted, t.CurrentStage)), nil
	}
	source := t.MatchesInStage(from)
	if pending := openMatches(source); len(pending) > 0 {
		return c.reject(t, op, fmt.Errorf("%w: %s in %s", ErrStageIncomplete, describeOpen(pending), from)), nil
	}

	next, u := c.begin(t)
	matches, err := build(next)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.appendMatches(next, u, matches)
	u.setStage(next, to)
	c.logger.Info("stage advanced", "tournament", next.ID, "from", from, "to", to, "matches", len(matches))
	return u, nil
}

// AdvanceToDivisionPlacement ranks the initial round and places the teams
// into divisions, each playing a round robin.
func (c *Controller) AdvanceToDivisionPlacement(t *models.Tournament) (*Update, error) {
	if t.Format != models.FormatMultiStage {
		return c.reject(t, "advance to division placement", ErrWrongFormat), nil
	}
	return c.advance(t, models.StageInitialRound, models.StageDivisionPlacement, func(next *models.Tournament) ([]*models.Match, error) {
		fields := fieldsOf(next)
		var matches []*models.Match
		for _, f := range fields {
			batch, err := c.placeDivisions(next, f)
			if err != nil {
				return nil, f.wrap(err, len(fields))
			}
			matches = append(matches, batch...)
		}
		return matches, nil
	})
}

// placeDivisions ranks one field on its initial round: pool tables are
// interleaved place by place, a knockout initial round is ranked as a whole.
func (c *Controller) placeDivisions(next *models.Tournament, f *field) ([]*models.Match, error) {
	initial := f.matches(next.MatchesInStage(models.StageInitialRound))
	var table []models.Standing
	if pools := categoriesOf(initial); len(pools) > 1 {
		var tables [][]models.Standing
		for _, pool := range pools {
			played := inCategory(initial, pool)
			tables = append(tables, standings.Compute(standings.TeamsIn(f.teams, played), played))
		}
		table = standings.Interleave(tables...)
	} else {
		table = standings.Compute(f.teams, initial)
	}

	ranked, seeded := c.orderTeams(next, standings.Order(f.teams, table), models.StageDivisionPlacement)
	params := c.params(next, ranked)
	params.Stage = models.StageDivisionPlacement
	params.Category = f.category
	params.Seeded = seeded
	matches, err := brackets.NewDivisionGenerator().GenerateBracket(context.Background(), params)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		for _, id := range []string{m.Team1ID, m.Team2ID} {
			if team := next.TeamByID(id); team != nil {
				team.Division = m.Category
			}
		}
	}
	return matches, nil
}

// AdvanceToPlayoffKnockout builds the knockout: one single elimination per
// division for multi-stage tournaments, or one bracket of group qualifiers
// for group + knockout.
func (c *Controller) AdvanceToPlayoffKnockout(t *models.Tournament) (*Update, error) {
	switch t.Format {
	case models.FormatMultiStage:
		return c.advance(t, models.StageDivisionPlacement, models.StagePlayoffKnockout, c.divisionPlayoffs)
	case models.FormatGroupKnockout:
		return c.advance(t, models.StageGroupStage, models.StagePlayoffKnockout, c.groupPlayoff)
	}
	return c.reject(t, "advance to playoff knockout", ErrWrongFormat), nil
}

func (c *Controller) divisionPlayoffs(next *models.Tournament) ([]*models.Match, error) {
	placement := next.MatchesInStage(models.StageDivisionPlacement)
	se := brackets.NewSingleEliminationGenerator()
	var matches []*models.Match
	for _, division := range categoriesOf(placement) {
		played := inCategory(placement, division)
		teams := standings.TeamsIn(next.Teams, played)
		ranked := standings.Order(teams, standings.Compute(teams, played))
		if k := next.Settings.PlayoffTeamsPerDivision; k >= 2 && k < len(ranked) {
			ranked = ranked[:k]
		}
		ranked, seeded := c.orderTeams(next, ranked, models.StagePlayoffKnockout)

		params := c.params(next, ranked)
		params.Stage = models.StagePlayoffKnockout
		params.Category = division
		params.Seeded = seeded
		batch, err := se.GenerateBracket(context.Background(), params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", division, err)
		}
		matches = append(matches, batch...)
	}
	return matches, nil
}

// groupPlayoff seeds each field's group qualifiers into its own knockout.
// A group of one shows up through its bye and sends its team as group winner.
func (c *Controller) groupPlayoff(next *models.Tournament) ([]*models.Match, error) {
	fields := fieldsOf(next)
	se := brackets.NewSingleEliminationGenerator()
	var matches []*models.Match
	for _, f := range fields {
		groupMatches := f.matches(next.MatchesInStage(models.StageGroupStage))
		var groups [][]*models.Team
		for _, group := range categoriesOf(groupMatches) {
			played := inCategory(groupMatches, group)
			teams := standings.TeamsIn(f.teams, played)
			groups = append(groups, standings.Order(teams, standings.Compute(teams, played)))
		}
		qualifiers, seeded := c.orderTeams(next, brackets.Qualifiers(groups, next.Settings.Advancing()), models.StagePlayoffKnockout)

		params := c.params(next, qualifiers)
		params.Stage = models.StagePlayoffKnockout
		params.Category = f.category
		params.Seeded = seeded
		batch, err := se.GenerateBracket(context.Background(), params)
		if err != nil {
			return nil, f.wrap(err, len(fields))
		}
		matches = append(matches, batch...)
	}
	return matches, nil
}

// AdvanceSwissRound pairs the next swiss round once the current one is fully
// played. The tournament completes by itself after the last round.
func (c *Controller) AdvanceSwissRound(t *models.Tournament) (*Update, error) {
	const op = "advance swiss round"
	if t.Format != models.FormatSwiss {
		return c.reject(t, op, ErrWrongFormat), nil
	}
	if stageRank(t.CurrentStage) == 0 {
		return c.reject(t, op, ErrNotStarted), nil
	}
	if t.CurrentStage == models.StageCompleted {
		return c.unchanged(t), nil
	}
	round := currentRound(t.Matches)
	if pending := openMatches(t.Matches); len(pending) > 0 {
		return c.reject(t, op, fmt.Errorf("%w: %s in round %d", ErrStageIncomplete, describeOpen(pending), round)), nil
	}
	if round >= swissRounds(t) {
		return c.finish(t)
	}

	next, u := c.begin(t)
	fields := fieldsOf(next)
	var matches []*models.Match
	for _, f := range fields {
		if round >= next.Settings.SwissRoundCount(len(f.teams)) {
			continue
		}
		history := f.matches(next.Matches)
		params := c.params(next, standings.Order(f.teams, standings.Compute(f.teams, history)))
		params.Category = f.category
		params.Round = round + 1
		params.History = history
		params.Seeded = true
		batch, err := brackets.NewSwissGenerator().GenerateBracket(context.Background(), params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, f.wrap(err, len(fields)))
		}
		matches = append(matches, batch...)
	}
	c.appendMatches(next, u, matches)
	c.logger.Info("swiss round paired", "tournament", next.ID, "round", round+1, "matches", len(matches))
	return u, nil
}

func openMatches(matches []*models.Match) []*models.Match {
	var open []*models.Match
	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted {
			open = append(open, m)
		}
	}
	return open
}

// describeOpen counts the matches holding a stage back. Cancelled matches are
// counted apart since the engine never completes them.
func describeOpen(open []*models.Match) string {
	cancelled := 0
	for _, m := range open {
		if m.Status == models.MatchStatusCancelled {
			cancelled++
		}
	}
	if cancelled == 0 {
		return fmt.Sprintf("%d match(es) open", len(open))
	}
	return fmt.Sprintf("%d match(es) open (%d cancelled)", len(open), cancelled)
}

func currentRound(matches []*models.Match) int {
	round := 0
	for _, m := range matches {
		round = max(round, m.BracketRound)
	}
	return round
}

// categoriesOf lists match categories in order of first appearance.
func categoriesOf(matches []*models.Match) []string {
	var out []string
	for _, m := range matches {
		if !slices.Contains(out, m.Category) {
			out = append(out, m.Category)
		}
	}
	return out
}

func inCategory(matches []*models.Match, category string) []*models.Match {
	var out []*models.Match
	for _, m := range matches {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// IsWarning reports whether err is a precondition failure rather than a
// validation or structural error.
func IsWarning(err error) bool {
	for _, target := range []error{
		ErrStageIncomplete, ErrNotStarted, ErrWrongFormat, ErrCourtNotAssigned,
		scoring.ErrMatchClosed, scoring.ErrSetInProgress, scoring.ErrNoActiveSet,
		scoring.ErrScoreAtZero, scoring.ErrTeamsNotReady,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
