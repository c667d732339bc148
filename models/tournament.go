package models

import (
	"maps"
	"slices"
	"time"
)

// Stage is both the tournament lifecycle state and the tag on the matches a
// stage produced. Simple formats leave the match tag empty.
type Stage string

const (
	StageRegistration      Stage = "REGISTRATION"
	StageInProgress        Stage = "IN_PROGRESS"
	StageInitialRound      Stage = "INITIAL_ROUND"
	StageDivisionPlacement Stage = "DIVISION_PLACEMENT"
	StagePlayoffKnockout   Stage = "PLAYOFF_KNOCKOUT"
	StageGroupStage        Stage = "GROUP_STAGE"
	StageCompleted         Stage = "COMPLETED"
)

// ScoringSettings configures set and match completion.
type ScoringSettings struct {
	MaxPoints            int  `json:"max_points" msgpack:"max_points"`
	MaxSets              int  `json:"max_sets" msgpack:"max_sets"`
	RequireTwoPointLead  bool `json:"require_two_point_lead" msgpack:"require_two_point_lead"`
	MaxTwoPointLeadScore int  `json:"max_two_point_lead_score" msgpack:"max_two_point_lead_score"`
}

func DefaultScoringSettings() ScoringSettings {
	return ScoringSettings{
		MaxPoints:            21,
		MaxSets:              3,
		RequireTwoPointLead:  true,
		MaxTwoPointLeadScore: 30,
	}
}

// SetsToWin is ceil(MaxSets / 2): best of 3 needs 2, best of 5 needs 3.
func (s ScoringSettings) SetsToWin() int {
	return (s.MaxSets + 1) / 2
}

type SeedingConfig struct {
	UseSeeding   bool    `json:"use_seeding" msgpack:"use_seeding"`
	StagesToSeed []Stage `json:"stages_to_seed,omitempty" msgpack:"stages_to_seed,omitempty"`
}

type Tournament struct {
	ID           string          `json:"id" msgpack:"id"`
	Name         string          `json:"name" msgpack:"name"`
	Format       Format          `json:"format" msgpack:"format"`
	CurrentStage Stage           `json:"current_stage" msgpack:"current_stage"`
	Teams        []*Team         `json:"teams" msgpack:"teams"`
	Matches      []*Match        `json:"matches" msgpack:"matches"`
	Scoring      ScoringSettings `json:"scoring" msgpack:"scoring"`
	Seeding      SeedingConfig   `json:"seeding" msgpack:"seeding"`
	Settings     FormatSettings  `json:"settings" msgpack:"settings"`
	ChampionID   string          `json:"champion_id,omitempty" msgpack:"champion_id,omitempty"`

	// CategoryChampions maps each team category to its winner when the
	// tournament runs more than one category.
	CategoryChampions map[string]string `json:"category_champions,omitempty" msgpack:"category_champions,omitempty"`

	Version   int64     `json:"version" msgpack:"version"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
}

// TournamentSummary is the list view of a tournament.
type TournamentSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Format       Format    `json:"format"`
	CurrentStage Stage     `json:"current_stage"`
	TeamCount    int       `json:"team_count"`
	MatchCount   int       `json:"match_count"`
	ChampionID   string    `json:"champion_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *Tournament) Summary() TournamentSummary {
	return TournamentSummary{
		ID:           t.ID,
		Name:         t.Name,
		Format:       t.Format,
		CurrentStage: t.CurrentStage,
		TeamCount:    len(t.Teams),
		MatchCount:   len(t.Matches),
		ChampionID:   t.ChampionID,
		UpdatedAt:    t.UpdatedAt,
	}
}

// Clone returns a deep copy; engine operations work on clones so the caller's
// value stays an immutable snapshot.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.Teams = make([]*Team, len(t.Teams))
	for i, team := range t.Teams {
		c.Teams[i] = team.Clone()
	}
	c.Matches = make([]*Match, len(t.Matches))
	for i, m := range t.Matches {
		c.Matches[i] = m.Clone()
	}
	c.Seeding.StagesToSeed = slices.Clone(t.Seeding.StagesToSeed)
	c.CategoryChampions = maps.Clone(t.CategoryChampions)
	return &c
}

func (t *Tournament) MatchByID(id string) *Match {
	for _, m := range t.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (t *Tournament) TeamByID(id string) *Team {
	for _, team := range t.Teams {
		if team.ID == id {
			return team
		}
	}
	return nil
}

// MatchesInStage returns the matches tagged with stage, in creation order.
func (t *Tournament) MatchesInStage(stage Stage) []*Match {
	var out []*Match
	for _, m := range t.Matches {
		if m.Stage == stage {
			out = append(out, m)
		}
	}
	return out
}
