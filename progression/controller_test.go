package progression_test

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newController() *progression.Controller {
	return progression.NewController(log.New(io.Discard), progression.WithClock(func() time.Time { return clock }))
}

func newTournament(format models.Format, n int) *models.Tournament {
	teams := make([]*models.Team, n)
	for i := range teams {
		teams[i] = &models.Team{
			ID:      fmt.Sprintf("t%d", i+1),
			Name:    fmt.Sprintf("Team %d", i+1),
			Ranking: float64(1000 - i),
		}
	}
	return &models.Tournament{
		ID:           "tour-1",
		Name:         "Spring Open",
		Format:       format,
		CurrentStage: models.StageRegistration,
		Teams:        teams,
		Scoring:      models.DefaultScoringSettings(),
	}
}

func start(t *testing.T, c *progression.Controller, tour *models.Tournament) *models.Tournament {
	t.Helper()
	u, err := c.Start(tour)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	return u.Tournament
}

func firstPlayable(tour *models.Tournament, stage models.Stage) *models.Match {
	for _, m := range tour.Matches {
		if m.Stage == stage && m.IsPlayable() {
			return m
		}
	}
	return nil
}

// playStage awards every playable match of the stage to team1 by walkover,
// including matches that only become playable along the way.
func playStage(t *testing.T, c *progression.Controller, tour *models.Tournament, stage models.Stage) *models.Tournament {
	t.Helper()
	for i := 0; i < 10000; i++ {
		m := firstPlayable(tour, stage)
		if m == nil {
			return tour
		}
		u, err := c.RecordWalkover(tour, m.ID, models.SlotTeam1)
		require.NoError(t, err)
		require.NoError(t, u.Warning)
		tour = u.Tournament
	}
	t.Fatal("stage never finished")
	return nil
}

func winSet(t *testing.T, c *progression.Controller, tour *models.Tournament, matchID string, slot models.TeamSlot) *models.Tournament {
	t.Helper()
	for i := 0; i < tour.Scoring.MaxPoints; i++ {
		u, err := c.RecordPoint(tour, matchID, slot)
		require.NoError(t, err)
		require.NoError(t, u.Warning)
		tour = u.Tournament
	}
	return tour
}

func countStage(tour *models.Tournament, stage models.Stage) int {
	return len(tour.MatchesInStage(stage))
}

func TestStart(t *testing.T) {
	c := newController()
	tour := newTournament(models.FormatSingleElimination, 5)

	u, err := c.Start(tour)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	assert.True(t, u.Changed)
	assert.True(t, u.StageChanged)
	assert.Equal(t, models.StageRegistration, u.PreviousStage)
	assert.Equal(t, models.StageInProgress, u.Tournament.CurrentStage)
	assert.Len(t, u.Tournament.Matches, 6)
	assert.Len(t, u.CreatedMatches, 6)
	for _, m := range u.Tournament.Matches {
		assert.Equal(t, "tour-1", m.TournamentID)
		assert.Equal(t, clock, m.CreatedAt)
	}

	assert.Equal(t, models.StageRegistration, tour.CurrentStage, "input is not modified")
	assert.Empty(t, tour.Matches)

	again, err := c.Start(u.Tournament)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Same(t, u.Tournament, again.Tournament)
}

func TestStartFirstStagePerFormat(t *testing.T) {
	tests := []struct {
		format models.Format
		stage  models.Stage
		tag    models.Stage
	}{
		{models.FormatSingleElimination, models.StageInProgress, ""},
		{models.FormatDoubleElimination, models.StageInProgress, ""},
		{models.FormatRoundRobin, models.StageInProgress, ""},
		{models.FormatSwiss, models.StageInProgress, ""},
		{models.FormatGroupKnockout, models.StageGroupStage, models.StageGroupStage},
		{models.FormatMultiStage, models.StageInitialRound, models.StageInitialRound},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			tour := start(t, newController(), newTournament(tt.format, 8))
			assert.Equal(t, tt.stage, tour.CurrentStage)
			require.NotEmpty(t, tour.Matches)
			for _, m := range tour.Matches {
				assert.Equal(t, tt.tag, m.Stage)
			}
		})
	}
}

func TestStartValidation(t *testing.T) {
	c := newController()

	tour := newTournament(models.FormatRoundRobin, 4)
	tour.Scoring.MaxPoints = 0
	_, err := c.Start(tour)
	var verr *scoring.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, tour.Matches)

	_, err = c.Start(newTournament(models.FormatSingleElimination, 1))
	var insufficient *brackets.InsufficientTeamsError
	assert.ErrorAs(t, err, &insufficient)

	groups := newTournament(models.FormatGroupKnockout, 3)
	groups.Settings.GroupCount = 4
	_, err = c.Start(groups)
	assert.ErrorAs(t, err, &insufficient)
}

func TestStartAppliesSeeding(t *testing.T) {
	tour := newTournament(models.FormatSingleElimination, 4)
	// reverse the rankings so seeding changes the order
	for i, team := range tour.Teams {
		team.Ranking = float64(i)
	}
	tour.Seeding = models.SeedingConfig{UseSeeding: true, StagesToSeed: []models.Stage{models.StageInProgress}}

	started := start(t, newController(), tour)
	assert.Equal(t, 1, *started.TeamByID("t4").Seed)
	assert.Equal(t, 4, *started.TeamByID("t1").Seed)
	assert.Equal(t, "t4", started.Matches[0].Team1ID)
	assert.Equal(t, "t1", started.Matches[0].Team2ID)
	assert.Nil(t, tour.Teams[0].Seed)
}

func TestWinnerPropagatesIntoOneSlot(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatSingleElimination, 4))
	first := tour.Matches[0]
	require.Equal(t, "t1", first.Team1ID)
	final := tour.MatchByID(first.Progression.Winner.MatchID)
	require.NotNil(t, final)

	before := tour
	tour = winSet(t, c, tour, first.ID, models.SlotTeam1)
	for i := 1; i < tour.Scoring.MaxPoints; i++ {
		u, err := c.RecordPoint(tour, first.ID, models.SlotTeam1)
		require.NoError(t, err)
		require.Empty(t, u.CompletedMatches)
		tour = u.Tournament
	}
	u, err := c.RecordPoint(tour, first.ID, models.SlotTeam1)
	require.NoError(t, err)
	require.NoError(t, u.Warning)

	assert.Equal(t, []string{first.ID}, u.CompletedMatches)
	done := u.Tournament.MatchByID(first.ID)
	assert.Equal(t, models.MatchStatusCompleted, done.Status)
	assert.Len(t, done.Scores, 2, "best of three ends after two set wins")

	final = u.Tournament.MatchByID(final.ID)
	assert.Equal(t, "t1", final.TeamID(first.Progression.Winner.Slot))
	assert.Empty(t, final.TeamID(first.Progression.Winner.Slot.Other()), "other slot waits for its feeder")
	assert.Equal(t, models.MatchStatusScheduled, final.Status)

	assert.Empty(t, before.MatchByID(final.ID).Team1ID, "earlier snapshots are untouched")
	assert.Equal(t, models.StageInProgress, u.Tournament.CurrentStage)
}

func TestScoringClosedMatchIsAWarning(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatRoundRobin, 3))
	m := tour.Matches[0]

	u, err := c.RecordWalkover(tour, m.ID, models.SlotTeam2)
	require.NoError(t, err)
	tour = u.Tournament

	u, err = c.RecordPoint(tour, m.ID, models.SlotTeam1)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, scoring.ErrMatchClosed)
	assert.False(t, u.Changed)
	assert.Same(t, tour, u.Tournament)
	assert.True(t, progression.IsWarning(u.Warning))
}

func TestScoringErrors(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatSingleElimination, 3))

	_, err := c.RecordPoint(tour, "nope", models.SlotTeam1)
	assert.ErrorIs(t, err, progression.ErrMatchNotFound)

	playableMatch := firstPlayable(tour, "")
	require.NotNil(t, playableMatch)
	_, err = c.RecordPoint(tour, playableMatch.ID, models.TeamSlot("left"))
	assert.ErrorIs(t, err, scoring.ErrInvalidSlot)

	// the final still waits for a team
	final := tour.Matches[len(tour.Matches)-1]
	u, err := c.RecordPoint(tour, final.ID, models.SlotTeam1)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, scoring.ErrTeamsNotReady)
}

func TestUndoPoint(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatRoundRobin, 2))
	id := tour.Matches[0].ID

	u, err := c.RecordPoint(tour, id, models.SlotTeam2)
	require.NoError(t, err)
	u, err = c.UndoPoint(u.Tournament, id, models.SlotTeam2)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	assert.Equal(t, 0, u.Tournament.MatchByID(id).Scores[0].Team2Score)

	u, err = c.UndoPoint(u.Tournament, id, models.SlotTeam2)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, scoring.ErrScoreAtZero)
}

func TestCourtRequiredToStart(t *testing.T) {
	c := newController()
	tour := newTournament(models.FormatRoundRobin, 2)
	tour.Settings.RequireCourtToStart = true
	tour = start(t, c, tour)
	id := tour.Matches[0].ID

	u, err := c.RecordPoint(tour, id, models.SlotTeam1)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrCourtNotAssigned)

	tour.Matches[0].Court = &models.CourtAssignment{Court: "Court 3"}
	u, err = c.RecordPoint(tour, id, models.SlotTeam1)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	assert.Equal(t, models.MatchStatusInProgress, u.Tournament.MatchByID(id).Status)
}

func TestBrokenLinkIsStructuralError(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatSingleElimination, 4))
	m := tour.Matches[0]
	m.Progression.Winner.MatchID = "missing"

	_, err := c.RecordWalkover(tour, m.ID, models.SlotTeam1)
	var structural *progression.StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, "missing", structural.TargetID)
	assert.False(t, progression.IsWarning(err))
}

func TestSingleEliminationCompletes(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatSingleElimination, 6))
	tour = playStage(t, c, tour, "")

	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	assert.Equal(t, "t1", tour.ChampionID)
	for _, m := range tour.Matches {
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
	}

	u, err := c.Advance(tour)
	require.NoError(t, err)
	assert.False(t, u.Changed)
}

func TestDoubleEliminationCompletes(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatDoubleElimination, 6))
	tour = playStage(t, c, tour, "")

	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	played := 0
	for _, m := range tour.Matches {
		require.Equal(t, models.MatchStatusCompleted, m.Status)
		if !m.IsBye {
			played++
		}
		if m.Bracket == models.BracketGrandFinal {
			assert.Equal(t, m.WinnerID, tour.ChampionID)
		}
	}
	assert.Equal(t, 10, played)
	assert.NotEmpty(t, tour.ChampionID)
}

func TestRoundRobinChampionIsStandingsLeader(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatRoundRobin, 4))

	// t3 wins every match it plays, everything else goes to team1
	for _, m := range tour.Matches {
		slot := models.SlotTeam1
		if m.Team2ID == "t3" {
			slot = models.SlotTeam2
		}
		u, err := c.RecordWalkover(tour, m.ID, slot)
		require.NoError(t, err)
		tour = u.Tournament
	}
	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	assert.Equal(t, "t3", tour.ChampionID)
}

func TestMultiStageFlow(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatMultiStage, 12))
	require.Equal(t, models.StageInitialRound, tour.CurrentStage)
	initial := countStage(tour, models.StageInitialRound)
	assert.Equal(t, 18, initial, "three pools of four")

	u, err := c.AdvanceToDivisionPlacement(tour)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrStageIncomplete)
	assert.False(t, u.Changed)
	assert.Len(t, u.Tournament.Matches, initial)

	tour = playStage(t, c, tour, models.StageInitialRound)

	u, err = c.AdvanceToDivisionPlacement(tour)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	assert.True(t, u.StageChanged)
	tour = u.Tournament
	assert.Equal(t, models.StageDivisionPlacement, tour.CurrentStage)
	assert.Equal(t, 12, countStage(tour, models.StageDivisionPlacement), "four divisions of three")
	assert.Equal(t, initial, countStage(tour, models.StageInitialRound), "earlier matches are kept")
	for _, team := range tour.Teams {
		assert.NotEmpty(t, team.Division)
	}

	for i := 0; i < 2; i++ {
		again, err := c.AdvanceToDivisionPlacement(tour)
		require.NoError(t, err)
		assert.NoError(t, again.Warning)
		assert.False(t, again.Changed)
		assert.Len(t, again.Tournament.Matches, len(tour.Matches))
	}

	tour = playStage(t, c, tour, models.StageDivisionPlacement)
	u, err = c.AdvanceToPlayoffKnockout(tour)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	tour = u.Tournament
	assert.Equal(t, models.StagePlayoffKnockout, tour.CurrentStage)

	divisions := make(map[string]int)
	for _, m := range tour.MatchesInStage(models.StagePlayoffKnockout) {
		if !m.IsBye {
			divisions[m.Category]++
		}
	}
	assert.Equal(t, map[string]int{"Division 1": 2, "Division 2": 2, "Division 3": 2, "Division 4": 2}, divisions)

	tour = playStage(t, c, tour, models.StagePlayoffKnockout)
	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	assert.Equal(t, "Division 1", tour.TeamByID(tour.ChampionID).Division)
}

func TestMultiStageDefaultThirtyEightTeams(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatMultiStage, 38))

	for _, stage := range []models.Stage{models.StageInitialRound, models.StageDivisionPlacement} {
		tour = playStage(t, c, tour, stage)
		u, err := c.Advance(tour)
		require.NoError(t, err)
		require.NoError(t, u.Warning)
		tour = u.Tournament
	}
	require.Equal(t, models.StagePlayoffKnockout, tour.CurrentStage)

	tour = playStage(t, c, tour, models.StagePlayoffKnockout)
	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	assert.NotEmpty(t, tour.ChampionID)
}

func TestMultiStageSingleEliminationInitialRound(t *testing.T) {
	c := newController()
	tour := newTournament(models.FormatMultiStage, 10)
	tour.Settings = models.FormatSettings{InitialRoundFormat: models.FormatSingleElimination, DivisionCount: 2, PlayoffTeamsPerDivision: 4}
	tour = start(t, c, tour)

	tour = playStage(t, c, tour, models.StageInitialRound)
	u, err := c.Advance(tour)
	require.NoError(t, err)
	tour = u.Tournament
	require.Equal(t, models.StageDivisionPlacement, tour.CurrentStage)

	tour = playStage(t, c, tour, models.StageDivisionPlacement)
	u, err = c.Advance(tour)
	require.NoError(t, err)
	tour = u.Tournament

	playoffTeams := make(map[string]bool)
	for _, m := range tour.MatchesInStage(models.StagePlayoffKnockout) {
		for _, id := range []string{m.Team1ID, m.Team2ID} {
			if id != "" {
				playoffTeams[id] = true
			}
		}
	}
	assert.Len(t, playoffTeams, 8, "top four of each division")
}

func TestAdvanceWrongFormat(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatRoundRobin, 4))

	u, err := c.AdvanceToDivisionPlacement(tour)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrWrongFormat)

	u, err = c.AdvanceSwissRound(tour)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrWrongFormat)

	u, err = c.AdvanceToDivisionPlacement(newTournament(models.FormatMultiStage, 8))
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrNotStarted)
}

func TestSwissRounds(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatSwiss, 8))
	require.Len(t, tour.Matches, 4)

	u, err := c.AdvanceSwissRound(tour)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrStageIncomplete)

	for round := 1; round <= 3; round++ {
		tour = playStage(t, c, tour, "")
		if round < 3 {
			assert.Equal(t, models.StageInProgress, tour.CurrentStage)
			u, err := c.Advance(tour)
			require.NoError(t, err)
			require.NoError(t, u.Warning)
			tour = u.Tournament
			assert.Len(t, tour.Matches, 4*(round+1))
		}
	}

	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	wins := 0
	for _, m := range tour.Matches {
		if m.WinnerID == tour.ChampionID {
			wins++
		}
	}
	assert.Equal(t, 3, wins)

	met := make(map[[2]string]bool)
	for _, m := range tour.Matches {
		key := [2]string{m.Team1ID, m.Team2ID}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		assert.False(t, met[key], "rematch %v", key)
		met[key] = true
	}

	u, err = c.AdvanceSwissRound(tour)
	require.NoError(t, err)
	assert.False(t, u.Changed)
}

func TestGroupKnockoutFlow(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatGroupKnockout, 8))
	assert.Equal(t, 12, countStage(tour, models.StageGroupStage))

	tour = playStage(t, c, tour, models.StageGroupStage)
	u, err := c.Advance(tour)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	tour = u.Tournament
	require.Equal(t, models.StagePlayoffKnockout, tour.CurrentStage)

	knockout := tour.MatchesInStage(models.StagePlayoffKnockout)
	require.Len(t, knockout, 3)
	groupOf := make(map[string]string)
	for _, m := range tour.MatchesInStage(models.StageGroupStage) {
		groupOf[m.Team1ID] = m.Category
		groupOf[m.Team2ID] = m.Category
	}
	// group winners meet the other group's runner-up
	for _, m := range knockout[:2] {
		assert.NotEqual(t, groupOf[m.Team1ID], groupOf[m.Team2ID])
	}

	again, err := c.AdvanceToPlayoffKnockout(tour)
	require.NoError(t, err)
	assert.False(t, again.Changed)

	tour = playStage(t, c, tour, models.StagePlayoffKnockout)
	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	assert.Equal(t, knockout[0].Team1ID, tour.ChampionID)
}

func TestSingleEliminationSixTeamsByeGoesToTopSeedPath(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatSingleElimination, 6))

	var round1, round2 []*models.Match
	for _, m := range tour.Matches {
		switch m.BracketRound {
		case 1:
			round1 = append(round1, m)
		case 2:
			round2 = append(round2, m)
		}
	}
	require.Len(t, round1, 3)
	var pairs [][2]string
	for _, m := range round1 {
		assert.False(t, m.IsBye, "six teams need no bye in round one")
		pairs = append(pairs, [2]string{m.Team1ID, m.Team2ID})
	}
	assert.Equal(t, [][2]string{{"t1", "t6"}, {"t2", "t5"}, {"t3", "t4"}}, pairs)

	require.Len(t, round2, 2)
	bye := round2[0]
	require.True(t, bye.IsBye)
	assert.False(t, round2[1].IsBye)
	assert.Equal(t, bye.ID, round1[0].Progression.Winner.MatchID, "the winner of 1 v 6 takes the bye")
	assert.Equal(t, round2[1].ID, round1[1].Progression.Winner.MatchID)
	assert.Equal(t, round2[1].ID, round1[2].Progression.Winner.MatchID)

	u, err := c.RecordWalkover(tour, round1[0].ID, models.SlotTeam1)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	assert.Contains(t, u.CompletedMatches, bye.ID)
	done := u.Tournament.MatchByID(bye.ID)
	assert.Equal(t, "t1", done.WinnerID)
	final := u.Tournament.MatchByID(done.Progression.Winner.MatchID)
	require.NotNil(t, final)
	assert.Equal(t, "t1", final.Team1ID)
}

func TestGroupKnockoutThreeTeams(t *testing.T) {
	c := newController()
	tour := start(t, c, newTournament(models.FormatGroupKnockout, 3))

	groupStage := tour.MatchesInStage(models.StageGroupStage)
	require.Len(t, groupStage, 2)
	assert.Equal(t, "Group A", groupStage[0].Category)
	assert.True(t, groupStage[0].IsBye, "a group of one plays nothing")
	assert.Equal(t, models.MatchStatusCompleted, groupStage[0].Status)

	tour = playStage(t, c, tour, models.StageGroupStage)
	u, err := c.Advance(tour)
	require.NoError(t, err)
	require.NoError(t, u.Warning)
	tour = u.Tournament
	require.Equal(t, models.StagePlayoffKnockout, tour.CurrentStage)

	knockout := tour.MatchesInStage(models.StagePlayoffKnockout)
	require.NotEmpty(t, knockout)
	assert.True(t, knockout[0].IsBye)
	assert.Equal(t, "t1", knockout[0].WinnerID, "the lone group winner takes the knockout bye")

	tour = playStage(t, c, tour, models.StagePlayoffKnockout)
	assert.Equal(t, models.StageCompleted, tour.CurrentStage)
	assert.Equal(t, "t1", tour.ChampionID)
}

func TestCancelledMatchIsNamedInStageWarning(t *testing.T) {
	c := newController()

	groups := start(t, c, newTournament(models.FormatGroupKnockout, 8))
	groups.MatchesInStage(models.StageGroupStage)[0].Status = models.MatchStatusCancelled
	groups = playStage(t, c, groups, models.StageGroupStage)

	u, err := c.Advance(groups)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrStageIncomplete)
	assert.Contains(t, u.Warning.Error(), "1 match(es) open (1 cancelled) in GROUP_STAGE")
	assert.False(t, u.Changed)

	swiss := start(t, c, newTournament(models.FormatSwiss, 4))
	swiss.Matches[0].Status = models.MatchStatusCancelled
	swiss = playStage(t, c, swiss, "")

	u, err = c.AdvanceSwissRound(swiss)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrStageIncomplete)
	assert.Contains(t, u.Warning.Error(), "(1 cancelled) in round 1")

	rr := start(t, c, newTournament(models.FormatRoundRobin, 3))
	rr.Matches[0].Status = models.MatchStatusCancelled
	rr = playStage(t, c, rr, "")
	require.Equal(t, models.StageInProgress, rr.CurrentStage)

	u, err = c.Advance(rr)
	require.NoError(t, err)
	assert.ErrorIs(t, u.Warning, progression.ErrStageIncomplete)
	assert.Contains(t, u.Warning.Error(), "(1 cancelled)")
}

func TestStartWritesEntryOrderSeedsWhenUnseeded(t *testing.T) {
	tour := newTournament(models.FormatRoundRobin, 4)
	started := start(t, newController(), tour)
	for i, team := range started.Teams {
		require.NotNil(t, team.Seed)
		assert.Equal(t, i+1, *team.Seed)
	}
	assert.Nil(t, tour.Teams[0].Seed, "input is not modified")

	// a field with a manual seed is left as entered
	manual := newTournament(models.FormatRoundRobin, 4)
	two := 2
	manual.Teams[3].Seed = &two
	started = start(t, newController(), manual)
	assert.Nil(t, started.TeamByID("t1").Seed)
	assert.Equal(t, 2, *started.TeamByID("t4").Seed)
}
