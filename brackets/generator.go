package brackets

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/google/uuid"
)

var newID = uuid.NewString

type GenerateBracketParams struct {
	TournamentID string
	Category     string
	Stage        models.Stage
	// Teams in seed order: index 0 is the top seed.
	Teams    []*models.Team
	Settings models.FormatSettings
	// Seeded is false when Teams carries no meaningful order (swiss shuffles
	// the first round in that case).
	Seeded bool
	// Round and History are read by the swiss generator only.
	Round   int
	History []*models.Match
	Now     time.Time
}

func (p GenerateBracketParams) now() time.Time {
	if p.Now.IsZero() {
		return time.Now()
	}
	return p.Now
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}

// NewGenerator returns the generator that produces the first batch of matches
// for a format. Multi-stage tournaments open with their initial round format.
func NewGenerator(format models.Format, settings models.FormatSettings) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatSwiss:
		return NewSwissGenerator(), nil
	case models.FormatGroupKnockout:
		return NewGroupStageGenerator(), nil
	case models.FormatMultiStage:
		if settings.InitialFormat() == models.FormatSingleElimination {
			return NewSingleEliminationGenerator(), nil
		}
		return NewPoolGenerator(), nil
	}
	return nil, fmt.Errorf("no bracket generator for format %q", format)
}

// InsufficientTeamsError is returned before any match is produced.
type InsufficientTeamsError struct {
	Generator string
	Teams     int
	Reason    string
}

func (e *InsufficientTeamsError) Error() string {
	return fmt.Sprintf("%s: insufficient teams (%d): %s", e.Generator, e.Teams, e.Reason)
}

func requireTeams(generator string, teams []*models.Team) error {
	if len(teams) < 2 {
		return &InsufficientTeamsError{Generator: generator, Teams: len(teams), Reason: "at least 2 teams are required"}
	}
	return nil
}

func newMatch(p GenerateBracketParams, ts time.Time, round, position int) *models.Match {
	return &models.Match{
		ID:              newID(),
		TournamentID:    p.TournamentID,
		Category:        p.Category,
		Stage:           p.Stage,
		BracketRound:    round,
		BracketPosition: position,
		Status:          models.MatchStatusScheduled,
		Scores:          []models.MatchScore{},
		CreatedAt:       ts,
	}
}

// CompleteBye closes a bye match whose only team is known. It reports false
// when the match is not a pending bye or still waits for its team.
func CompleteBye(m *models.Match, ts time.Time) bool {
	if !m.IsBye || m.Status == models.MatchStatusCompleted || m.Team1ID == "" {
		return false
	}
	m.Status = models.MatchStatusCompleted
	m.WinnerID = m.Team1ID
	m.CompletedAt = &ts
	return true
}

// settleByes completes byes and pushes their winners forward inside a freshly
// generated batch until nothing changes.
func settleByes(matches []*models.Match, ts time.Time) {
	byID := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	for changed := true; changed; {
		changed = false
		for _, m := range matches {
			if CompleteBye(m, ts) {
				changed = true
			}
			if m.Status != models.MatchStatusCompleted || m.Progression.Winner == nil {
				continue
			}
			next, ok := byID[m.Progression.Winner.MatchID]
			if ok && next.TeamID(m.Progression.Winner.Slot) == "" {
				next.SetTeam(m.Progression.Winner.Slot, m.WinnerID)
				changed = true
			}
		}
	}
}

func teamIDs(teams []*models.Team) []string {
	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}
