package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/Dosada05/tournament-engine/standings"
)

const maxSimulationSteps = 1_000_000

var errStalled = errors.New("simulation stalled: nothing to play and the stage cannot advance")

// simulate starts the tournament and plays every match rally by rally until a
// champion is crowned.
func simulate(c *progression.Controller, t *models.Tournament, rng *rand.Rand) (*models.Tournament, error) {
	u, err := c.Start(t)
	if err != nil {
		return nil, err
	}
	if u.Warning != nil {
		return nil, u.Warning
	}
	t = u.Tournament

	for step := 0; step < maxSimulationSteps; step++ {
		if t.CurrentStage == models.StageCompleted {
			return t, nil
		}

		m := nextPlayable(t)
		if m == nil {
			u, err := c.Advance(t)
			if err != nil {
				return nil, err
			}
			if u.Warning != nil {
				return nil, fmt.Errorf("%w: %w", errStalled, u.Warning)
			}
			if !u.Changed {
				return nil, errStalled
			}
			logger.Debug("stage advanced", "from", u.PreviousStage, "to", u.Tournament.CurrentStage, "new_matches", len(u.CreatedMatches))
			t = u.Tournament
			continue
		}

		slot := models.SlotTeam1
		if rng.IntN(2) == 1 {
			slot = models.SlotTeam2
		}
		u, err := c.RecordPoint(t, m.ID, slot)
		if err != nil {
			return nil, err
		}
		if u.Warning != nil {
			return nil, fmt.Errorf("match %s: %w", m.ID, u.Warning)
		}
		for _, id := range u.CompletedMatches {
			if done := u.Tournament.MatchByID(id); done != nil {
				logger.Debug("match completed", "match", id, "winner", done.WinnerID)
			}
		}
		t = u.Tournament
	}
	return nil, fmt.Errorf("simulation did not finish within %d rallies", maxSimulationSteps)
}

func nextPlayable(t *models.Tournament) *models.Match {
	for _, m := range t.Matches {
		if m.IsPlayable() {
			return m
		}
	}
	return nil
}

// finalStandings puts the champion first and ranks everyone else over every
// match they played.
func finalStandings(t *models.Tournament) []models.Standing {
	table := standings.Compute(t.Teams, t.Matches)
	i := slices.IndexFunc(table, func(s models.Standing) bool { return s.TeamID == t.ChampionID })
	if i > 0 {
		champion := table[i]
		table = slices.Delete(table, i, i+1)
		table = slices.Insert(table, 0, champion)
	}
	for rank := range table {
		table[rank].Rank = rank + 1
	}
	return table
}
