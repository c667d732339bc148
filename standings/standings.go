// Package standings computes ranking tables from completed matches. It only
// reads its inputs, so it can run alongside any mutation.
package standings

import (
	"cmp"
	"math"
	"slices"

	"github.com/Dosada05/tournament-engine/models"
)

// Compute ranks teams by wins, then set difference, then point difference,
// then seed, then input order. Only COMPLETED matches between listed teams
// count. A bye counts as a win but not as a match played.
func Compute(teams []*models.Team, matches []*models.Match) []models.Standing {
	rows := make([]models.Standing, len(teams))
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		index[t.ID] = i
		rows[i] = models.Standing{TeamID: t.ID, TeamName: t.Name, Category: t.Category, Seed: t.Seed}
	}

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted {
			continue
		}
		if m.IsBye {
			if i, ok := index[m.WinnerID]; ok {
				rows[i].Wins++
				rows[i].Byes++
			}
			continue
		}
		i1, ok1 := index[m.Team1ID]
		i2, ok2 := index[m.Team2ID]
		if !ok1 || !ok2 {
			continue
		}
		tally(&rows[i1], m, models.SlotTeam1)
		tally(&rows[i2], m, models.SlotTeam2)
	}

	order := make([]int, len(rows))
	for i := range rows {
		rows[i].SetDifference = rows[i].SetsWon - rows[i].SetsLost
		rows[i].PointDifference = rows[i].PointsFor - rows[i].PointsAgainst
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return Compare(rows[a], rows[b])
	})

	out := make([]models.Standing, len(rows))
	for rank, i := range order {
		out[rank] = rows[i]
		out[rank].Rank = rank + 1
	}
	return out
}

func tally(row *models.Standing, m *models.Match, slot models.TeamSlot) {
	row.Played++
	if m.WinnerID == row.TeamID {
		row.Wins++
	} else {
		row.Losses++
	}
	for _, set := range m.Scores {
		row.PointsFor += set.Score(slot)
		row.PointsAgainst += set.Score(slot.Other())
		if set.Winner == nil {
			continue
		}
		if *set.Winner == slot {
			row.SetsWon++
		} else {
			row.SetsLost++
		}
	}
}

// Compare orders two rows by performance alone; 0 means a full tie.
func Compare(a, b models.Standing) int {
	if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SetsWon-b.SetsLost, a.SetsWon-a.SetsLost); c != 0 {
		return c
	}
	if c := cmp.Compare(b.PointsFor-b.PointsAgainst, a.PointsFor-a.PointsAgainst); c != 0 {
		return c
	}
	return cmp.Compare(seedOf(a), seedOf(b))
}

func seedOf(s models.Standing) int {
	if s.Seed == nil {
		return math.MaxInt
	}
	return *s.Seed
}

// Interleave merges the tables of parallel groups into one ranking: every
// group's first place, then every second place, and so on. Rows of the same
// place are ordered by Compare. Ranks are rewritten 1..N.
func Interleave(tables ...[]models.Standing) []models.Standing {
	var out []models.Standing
	for _, table := range tables {
		out = append(out, table...)
	}
	slices.SortStableFunc(out, func(a, b models.Standing) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return Compare(a, b)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Order returns the teams in table order. Teams missing from the table are
// dropped.
func Order(teams []*models.Team, table []models.Standing) []*models.Team {
	byID := make(map[string]*models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	out := make([]*models.Team, 0, len(table))
	for _, row := range table {
		if t, ok := byID[row.TeamID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// TeamsIn returns the teams that appear in any of the matches, in the order of
// teams.
func TeamsIn(teams []*models.Team, matches []*models.Match) []*models.Team {
	present := make(map[string]bool)
	for _, m := range matches {
		present[m.Team1ID] = true
		present[m.Team2ID] = true
	}
	var out []*models.Team
	for _, t := range teams {
		if present[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// Leader is the team ranked first, or "" for an empty table.
func Leader(table []models.Standing) string {
	if len(table) == 0 {
		return ""
	}
	return table[0].TeamID
}
