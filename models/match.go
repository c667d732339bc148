package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "SCHEDULED"
	MatchStatusInProgress MatchStatus = "IN_PROGRESS"
	MatchStatusCompleted  MatchStatus = "COMPLETED"
	MatchStatusCancelled  MatchStatus = "CANCELLED"
)

// IsClosed reports whether no more points can be recorded.
func (s MatchStatus) IsClosed() bool {
	return s == MatchStatusCompleted || s == MatchStatusCancelled
}

// TeamSlot identifies one side of a match.
type TeamSlot string

const (
	SlotTeam1 TeamSlot = "team1"
	SlotTeam2 TeamSlot = "team2"
)

func (s TeamSlot) Valid() bool {
	return s == SlotTeam1 || s == SlotTeam2
}

func (s TeamSlot) Other() TeamSlot {
	if s == SlotTeam1 {
		return SlotTeam2
	}
	return SlotTeam1
}

// BracketSide separates the winners and losers halves of a double elimination
// bracket. Empty for every other format.
type BracketSide string

const (
	BracketWinners    BracketSide = "WINNERS"
	BracketLosers     BracketSide = "LOSERS"
	BracketGrandFinal BracketSide = "GRAND_FINAL"
)

type ScoreAction string

const (
	ScoreActionPoint ScoreAction = "point"
	ScoreActionUndo  ScoreAction = "undo"
)

// ScoreLogEntry is one audit record of a set.
type ScoreLogEntry struct {
	Action     ScoreAction `json:"action" msgpack:"action"`
	Slot       TeamSlot    `json:"slot" msgpack:"slot"`
	Team1Score int         `json:"team1_score" msgpack:"team1_score"`
	Team2Score int         `json:"team2_score" msgpack:"team2_score"`
	At         time.Time   `json:"at" msgpack:"at"`
}

// MatchScore is a single set. Once IsComplete is true the scores are frozen.
type MatchScore struct {
	Team1Score int             `json:"team1_score" msgpack:"team1_score"`
	Team2Score int             `json:"team2_score" msgpack:"team2_score"`
	IsComplete bool            `json:"is_complete" msgpack:"is_complete"`
	Winner     *TeamSlot       `json:"winner,omitempty" msgpack:"winner,omitempty"`
	StartedAt  time.Time       `json:"started_at" msgpack:"started_at"`
	EndedAt    *time.Time      `json:"ended_at,omitempty" msgpack:"ended_at,omitempty"`
	Log        []ScoreLogEntry `json:"log,omitempty" msgpack:"log,omitempty"`
}

func (s MatchScore) Score(slot TeamSlot) int {
	if slot == SlotTeam1 {
		return s.Team1Score
	}
	return s.Team2Score
}

// Duration is zero until the set has ended.
func (s MatchScore) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// ProgressionLink points at the slot of a follow-on match.
type ProgressionLink struct {
	MatchID string   `json:"match_id" msgpack:"match_id"`
	Slot    TeamSlot `json:"slot" msgpack:"slot"`
}

// Progression holds where the winner and (double elimination only) the loser
// of a match go next.
type Progression struct {
	Winner *ProgressionLink `json:"winner,omitempty" msgpack:"winner,omitempty"`
	Loser  *ProgressionLink `json:"loser,omitempty" msgpack:"loser,omitempty"`
}

// CourtAssignment is written by the scheduling collaborator.
type CourtAssignment struct {
	Court    string     `json:"court" msgpack:"court"`
	StartsAt *time.Time `json:"starts_at,omitempty" msgpack:"starts_at,omitempty"`
}

type Match struct {
	ID              string           `json:"id" msgpack:"id"`
	TournamentID    string           `json:"tournament_id" msgpack:"tournament_id"`
	Category        string           `json:"category,omitempty" msgpack:"category,omitempty"`
	Stage           Stage            `json:"stage,omitempty" msgpack:"stage,omitempty"`
	Bracket         BracketSide      `json:"bracket,omitempty" msgpack:"bracket,omitempty"`
	BracketRound    int              `json:"bracket_round" msgpack:"bracket_round"`
	BracketPosition int              `json:"bracket_position" msgpack:"bracket_position"`
	Team1ID         string           `json:"team1_id,omitempty" msgpack:"team1_id,omitempty"`
	Team2ID         string           `json:"team2_id,omitempty" msgpack:"team2_id,omitempty"`
	Status          MatchStatus      `json:"status" msgpack:"status"`
	Scores          []MatchScore     `json:"scores" msgpack:"scores"`
	WinnerID        string           `json:"winner_id,omitempty" msgpack:"winner_id,omitempty"`
	LoserID         string           `json:"loser_id,omitempty" msgpack:"loser_id,omitempty"`
	IsBye           bool             `json:"is_bye,omitempty" msgpack:"is_bye,omitempty"`
	IsWalkover      bool             `json:"is_walkover,omitempty" msgpack:"is_walkover,omitempty"`
	Court           *CourtAssignment `json:"court,omitempty" msgpack:"court,omitempty"`
	Progression     Progression      `json:"progression" msgpack:"progression"`
	CreatedAt       time.Time        `json:"created_at" msgpack:"created_at"`
	StartedAt       *time.Time       `json:"started_at,omitempty" msgpack:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty" msgpack:"completed_at,omitempty"`
}

func (m *Match) TeamID(slot TeamSlot) string {
	if slot == SlotTeam1 {
		return m.Team1ID
	}
	return m.Team2ID
}

func (m *Match) SetTeam(slot TeamSlot, teamID string) {
	if slot == SlotTeam1 {
		m.Team1ID = teamID
	} else {
		m.Team2ID = teamID
	}
}

// SlotOf returns the slot the team occupies, or false when it is not in the match.
func (m *Match) SlotOf(teamID string) (TeamSlot, bool) {
	switch {
	case teamID == "":
		return "", false
	case m.Team1ID == teamID:
		return SlotTeam1, true
	case m.Team2ID == teamID:
		return SlotTeam2, true
	}
	return "", false
}

func (m *Match) HasBothTeams() bool {
	return m.Team1ID != "" && m.Team2ID != ""
}

// IsPlayable reports whether points may be recorded: two real teams, not a bye,
// not closed.
func (m *Match) IsPlayable() bool {
	return !m.IsBye && m.HasBothTeams() && !m.Status.IsClosed()
}

// ActiveSet returns the last set when it is still being played.
func (m *Match) ActiveSet() *MatchScore {
	if len(m.Scores) == 0 {
		return nil
	}
	last := &m.Scores[len(m.Scores)-1]
	if last.IsComplete {
		return nil
	}
	return last
}

func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	if m.Scores != nil {
		c.Scores = make([]MatchScore, len(m.Scores))
		for i, s := range m.Scores {
			c.Scores[i] = s.clone()
		}
	}
	if m.Court != nil {
		court := *m.Court
		court.StartsAt = cloneTime(m.Court.StartsAt)
		c.Court = &court
	}
	if m.Progression.Winner != nil {
		l := *m.Progression.Winner
		c.Progression.Winner = &l
	}
	if m.Progression.Loser != nil {
		l := *m.Progression.Loser
		c.Progression.Loser = &l
	}
	c.StartedAt = cloneTime(m.StartedAt)
	c.CompletedAt = cloneTime(m.CompletedAt)
	return &c
}

func (s MatchScore) clone() MatchScore {
	c := s
	if s.Winner != nil {
		w := *s.Winner
		c.Winner = &w
	}
	c.EndedAt = cloneTime(s.EndedAt)
	if s.Log != nil {
		c.Log = append([]ScoreLogEntry(nil), s.Log...)
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
