package progression

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/Dosada05/tournament-engine/standings"
)

type matchOp func(m *models.Match, s models.ScoringSettings) (*models.Match, error)

// RecordPoint adds a point for slot. Completing the match propagates the
// winner and may complete the tournament.
func (c *Controller) RecordPoint(t *models.Tournament, matchID string, slot models.TeamSlot) (*Update, error) {
	return c.scoreMatch(t, matchID, "record point", true, func(m *models.Match, s models.ScoringSettings) (*models.Match, error) {
		return scoring.ApplyPoint(m, slot, s)
	})
}

// UndoPoint removes the last point of slot from the set in progress.
func (c *Controller) UndoPoint(t *models.Tournament, matchID string, slot models.TeamSlot) (*Update, error) {
	return c.scoreMatch(t, matchID, "undo point", false, func(m *models.Match, s models.ScoringSettings) (*models.Match, error) {
		return scoring.RemovePoint(m, slot, s)
	})
}

// StartSet opens the next set of a match explicitly.
func (c *Controller) StartSet(t *models.Tournament, matchID string) (*Update, error) {
	return c.scoreMatch(t, matchID, "start set", true, scoring.StartSet)
}

// RecordWalkover awards the match to winner without play.
func (c *Controller) RecordWalkover(t *models.Tournament, matchID string, winner models.TeamSlot) (*Update, error) {
	return c.scoreMatch(t, matchID, "walkover", false, func(m *models.Match, _ models.ScoringSettings) (*models.Match, error) {
		return scoring.Walkover(m, winner)
	})
}

func (c *Controller) scoreMatch(t *models.Tournament, matchID, op string, starts bool, apply matchOp) (*Update, error) {
	idx := -1
	for i, m := range t.Matches {
		if m.ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrMatchNotFound, matchID)
	}
	current := t.Matches[idx]

	if starts && t.Settings.RequireCourtToStart && current.Status == models.MatchStatusScheduled &&
		(current.Court == nil || current.Court.Court == "") {
		return c.reject(t, op, fmt.Errorf("%w: match %s", ErrCourtNotAssigned, matchID)), nil
	}

	updated, err := apply(current, t.Scoring)
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) || errors.Is(err, scoring.ErrInvalidSlot) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return c.reject(t, op, fmt.Errorf("match %s: %w", matchID, err)), nil
	}

	next, u := c.begin(t)
	next.Matches[idx] = updated
	if updated.Status == models.MatchStatusCompleted && current.Status != models.MatchStatusCompleted {
		u.CompletedMatches = append(u.CompletedMatches, updated.ID)
		c.logger.Info("match completed", "tournament", next.ID, "match", updated.ID,
			"winner", updated.WinnerID, "walkover", updated.IsWalkover)
		if err := c.propagate(next, updated, u); err != nil {
			c.logger.Error("winner propagation failed", "tournament", next.ID, "match", updated.ID, "err", err)
			return nil, err
		}
		c.checkCompletion(next, u)
	}
	return u, nil
}

type route struct {
	link   *models.ProgressionLink
	teamID string
}

// propagate writes the winner (and loser) of a completed match into the slots
// its progression links point at. A bye that receives its team completes at
// once and propagates in turn.
func (c *Controller) propagate(t *models.Tournament, from *models.Match, u *Update) error {
	ts := c.now()
	queue := []*models.Match{from}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		for _, r := range []route{{m.Progression.Winner, m.WinnerID}, {m.Progression.Loser, m.LoserID}} {
			if r.link == nil || r.teamID == "" {
				continue
			}
			target := t.MatchByID(r.link.MatchID)
			if target == nil {
				return &StructuralError{MatchID: m.ID, TargetID: r.link.MatchID, Reason: "progression target does not exist"}
			}
			if !r.link.Slot.Valid() {
				return &StructuralError{MatchID: m.ID, TargetID: target.ID, Reason: fmt.Sprintf("invalid slot %q", r.link.Slot)}
			}
			switch occupant := target.TeamID(r.link.Slot); occupant {
			case r.teamID:
				continue
			case "":
			default:
				return &StructuralError{MatchID: m.ID, TargetID: target.ID,
					Reason: fmt.Sprintf("slot %s already holds team %s", r.link.Slot, occupant)}
			}

			target.SetTeam(r.link.Slot, r.teamID)
			if brackets.CompleteBye(target, ts) {
				u.CompletedMatches = append(u.CompletedMatches, target.ID)
				queue = append(queue, target)
			} else if target.HasBothTeams() {
				u.ReadyMatches = append(u.ReadyMatches, target.ID)
			}
		}
	}
	return nil
}

// checkCompletion moves the tournament to COMPLETED once its final stage is
// fully played and records the champion of every category. It reports
// whether it did.
func (c *Controller) checkCompletion(t *models.Tournament, u *Update) bool {
	if t.CurrentStage == models.StageCompleted {
		return false
	}

	var final []*models.Match
	switch t.Format {
	case models.FormatMultiStage, models.FormatGroupKnockout:
		if t.CurrentStage != models.StagePlayoffKnockout {
			return false
		}
		final = t.MatchesInStage(models.StagePlayoffKnockout)
	case models.FormatSwiss:
		if currentRound(t.Matches) < swissRounds(t) {
			return false
		}
		final = t.Matches
	default:
		final = t.Matches
	}
	if len(final) == 0 || len(openMatches(final)) > 0 {
		return false
	}

	fields := fieldsOf(t)
	t.ChampionID = ""
	t.CategoryChampions = nil
	for i, f := range fields {
		winner := champion(t, f, f.matches(final))
		if i == 0 {
			t.ChampionID = winner
		}
		if len(fields) > 1 {
			if t.CategoryChampions == nil {
				t.CategoryChampions = make(map[string]string, len(fields))
			}
			t.CategoryChampions[f.category] = winner
		}
	}
	u.setStage(t, models.StageCompleted)
	c.logger.Info("tournament completed", "tournament", t.ID, "champion", t.ChampionID, "categories", len(fields))
	return true
}

// champion is the field's winner: the winner of its first bracket final for
// knockout stages, the standings leader otherwise.
func champion(t *models.Tournament, f *field, matches []*models.Match) string {
	switch t.Format {
	case models.FormatRoundRobin, models.FormatSwiss:
		return standings.Leader(standings.Compute(f.teams, matches))
	}
	for _, m := range matches {
		if m.Progression.Winner == nil {
			return m.WinnerID
		}
	}
	return ""
}
