// Package scoring implements the set/match state machine: points, sets,
// win-by-two with a hard cap, and match completion.
package scoring

import (
	"fmt"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

var now = time.Now

type SetResult struct {
	Complete bool
	Winner   *models.TeamSlot
}

type MatchResult struct {
	Complete bool
	Winner   *models.TeamSlot
}

func ValidateSettings(s models.ScoringSettings) error {
	var problems []string
	if s.MaxPoints < 1 {
		problems = append(problems, fmt.Sprintf("max points must be at least 1, got %d", s.MaxPoints))
	}
	if s.MaxSets < 1 {
		problems = append(problems, fmt.Sprintf("max sets must be at least 1, got %d", s.MaxSets))
	}
	if s.RequireTwoPointLead && s.MaxTwoPointLeadScore <= s.MaxPoints {
		problems = append(problems, fmt.Sprintf("two point lead cap (%d) must be greater than max points (%d)",
			s.MaxTwoPointLeadScore, s.MaxPoints))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsSetComplete decides whether a set with the given running score is over.
// If both sides would qualify (only possible for scores that cannot occur in
// play) the set is reported incomplete, so a winner is never ambiguous.
func IsSetComplete(team1Score, team2Score int, s models.ScoringSettings) SetResult {
	t1 := sideWinsSet(team1Score, team2Score, s)
	t2 := sideWinsSet(team2Score, team1Score, s)
	switch {
	case t1 && !t2:
		return SetResult{Complete: true, Winner: slotPtr(models.SlotTeam1)}
	case t2 && !t1:
		return SetResult{Complete: true, Winner: slotPtr(models.SlotTeam2)}
	}
	return SetResult{}
}

func sideWinsSet(score, opponent int, s models.ScoringSettings) bool {
	if !s.RequireTwoPointLead {
		return score >= s.MaxPoints && score > opponent
	}
	if score >= s.MaxPoints && score-opponent >= 2 {
		return true
	}
	// first to the cap wins outright
	return score == s.MaxTwoPointLeadScore && opponent < score
}

// CountSetsWon counts sets with a recorded winner equal to slot.
func CountSetsWon(scores []models.MatchScore, slot models.TeamSlot) int {
	n := 0
	for _, set := range scores {
		if set.Winner != nil && *set.Winner == slot {
			n++
		}
	}
	return n
}

func IsMatchComplete(scores []models.MatchScore, s models.ScoringSettings) MatchResult {
	need := s.SetsToWin()
	switch {
	case CountSetsWon(scores, models.SlotTeam1) >= need:
		return MatchResult{Complete: true, Winner: slotPtr(models.SlotTeam1)}
	case CountSetsWon(scores, models.SlotTeam2) >= need:
		return MatchResult{Complete: true, Winner: slotPtr(models.SlotTeam2)}
	}
	return MatchResult{}
}

// ApplyPoint records one point for slot and returns the updated copy of the
// match. On error the original match is returned untouched.
func ApplyPoint(match *models.Match, slot models.TeamSlot, s models.ScoringSettings) (*models.Match, error) {
	if err := ValidateSettings(s); err != nil {
		return match, err
	}
	if err := checkScorable(match, slot); err != nil {
		return match, err
	}

	m := match.Clone()
	ts := now()
	if m.ActiveSet() == nil {
		m.Scores = append(m.Scores, models.MatchScore{StartedAt: ts})
	}
	set := m.ActiveSet()
	if slot == models.SlotTeam1 {
		set.Team1Score++
	} else {
		set.Team2Score++
	}
	set.Log = append(set.Log, logEntry(models.ScoreActionPoint, slot, set, ts))

	if m.Status == models.MatchStatusScheduled {
		m.Status = models.MatchStatusInProgress
		m.StartedAt = &ts
	}

	if res := IsSetComplete(set.Team1Score, set.Team2Score, s); res.Complete {
		set.IsComplete = true
		set.Winner = res.Winner
		set.EndedAt = &ts
	}
	if res := IsMatchComplete(m.Scores, s); res.Complete {
		finish(m, *res.Winner, ts)
	}
	return m, nil
}

// RemovePoint undoes one point of slot in the active set. Completed sets are
// never reopened.
func RemovePoint(match *models.Match, slot models.TeamSlot, s models.ScoringSettings) (*models.Match, error) {
	if err := ValidateSettings(s); err != nil {
		return match, err
	}
	if err := checkScorable(match, slot); err != nil {
		return match, err
	}
	if match.ActiveSet() == nil {
		return match, ErrNoActiveSet
	}
	if match.ActiveSet().Score(slot) == 0 {
		return match, ErrScoreAtZero
	}

	m := match.Clone()
	set := m.ActiveSet()
	if slot == models.SlotTeam1 {
		set.Team1Score--
	} else {
		set.Team2Score--
	}
	set.Log = append(set.Log, logEntry(models.ScoreActionUndo, slot, set, now()))
	return m, nil
}

// StartSet opens a new set explicitly. ApplyPoint does this on its own when
// the previous set is complete.
func StartSet(match *models.Match, s models.ScoringSettings) (*models.Match, error) {
	if err := ValidateSettings(s); err != nil {
		return match, err
	}
	if err := checkScorable(match, models.SlotTeam1); err != nil {
		return match, err
	}
	if match.ActiveSet() != nil {
		return match, ErrSetInProgress
	}
	m := match.Clone()
	ts := now()
	m.Scores = append(m.Scores, models.MatchScore{StartedAt: ts})
	if m.Status == models.MatchStatusScheduled {
		m.Status = models.MatchStatusInProgress
		m.StartedAt = &ts
	}
	return m, nil
}

// Walkover completes the match for winner without play.
func Walkover(match *models.Match, winner models.TeamSlot) (*models.Match, error) {
	if err := checkScorable(match, winner); err != nil {
		return match, err
	}
	m := match.Clone()
	m.IsWalkover = true
	finish(m, winner, now())
	return m, nil
}

func checkScorable(m *models.Match, slot models.TeamSlot) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	if m.Status.IsClosed() {
		return ErrMatchClosed
	}
	if m.IsBye || !m.HasBothTeams() {
		return ErrTeamsNotReady
	}
	return nil
}

func finish(m *models.Match, winner models.TeamSlot, ts time.Time) {
	m.Status = models.MatchStatusCompleted
	m.WinnerID = m.TeamID(winner)
	m.LoserID = m.TeamID(winner.Other())
	m.CompletedAt = &ts
	// drop an opened but unplayed set
	if set := m.ActiveSet(); set != nil && set.Team1Score == 0 && set.Team2Score == 0 {
		m.Scores = m.Scores[:len(m.Scores)-1]
	}
}

func logEntry(action models.ScoreAction, slot models.TeamSlot, set *models.MatchScore, ts time.Time) models.ScoreLogEntry {
	return models.ScoreLogEntry{
		Action:     action,
		Slot:       slot,
		Team1Score: set.Team1Score,
		Team2Score: set.Team2Score,
		At:         ts,
	}
}

func slotPtr(s models.TeamSlot) *models.TeamSlot {
	return &s
}
