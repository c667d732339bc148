package brackets_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTeams(n int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := range teams {
		teams[i] = &models.Team{ID: fmt.Sprintf("t%d", i+1), Name: fmt.Sprintf("Team %d", i+1)}
	}
	return teams
}

func generate(t *testing.T, g brackets.BracketGenerator, params brackets.GenerateBracketParams) []*models.Match {
	t.Helper()
	if params.TournamentID == "" {
		params.TournamentID = "tour-1"
	}
	matches, err := g.GenerateBracket(context.Background(), params)
	require.NoError(t, err)
	return matches
}

func playable(matches []*models.Match) int {
	n := 0
	for _, m := range matches {
		if !m.IsBye {
			n++
		}
	}
	return n
}

func inRound(matches []*models.Match, side models.BracketSide, round int) []*models.Match {
	var out []*models.Match
	for _, m := range matches {
		if m.Bracket == side && m.BracketRound == round {
			out = append(out, m)
		}
	}
	return out
}

// assertWellFormed checks the link graph: targets exist, no slot is fed
// twice, and every TBD slot has exactly one feeder.
func assertWellFormed(t *testing.T, matches []*models.Match) {
	t.Helper()
	byID := make(map[string]*models.Match)
	for _, m := range matches {
		byID[m.ID] = m
	}
	fed := make(map[models.ProgressionLink]int)
	for _, m := range matches {
		for _, link := range []*models.ProgressionLink{m.Progression.Winner, m.Progression.Loser} {
			if link == nil {
				continue
			}
			_, ok := byID[link.MatchID]
			require.True(t, ok, "link from %s to unknown match %s", m.ID, link.MatchID)
			fed[*link]++
		}
	}
	for link, n := range fed {
		assert.Equal(t, 1, n, "slot %s/%s fed %d times", link.MatchID, link.Slot, n)
	}
	for _, m := range matches {
		slots := []models.TeamSlot{models.SlotTeam1, models.SlotTeam2}
		if m.IsBye {
			slots = slots[:1]
		}
		for _, slot := range slots {
			key := models.ProgressionLink{MatchID: m.ID, Slot: slot}
			if m.TeamID(slot) == "" {
				assert.Equal(t, 1, fed[key], "TBD slot %s/%s has no feeder", m.ID, slot)
			}
		}
	}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		format   models.Format
		settings models.FormatSettings
		want     string
	}{
		{models.FormatSingleElimination, models.FormatSettings{}, "SingleElimination"},
		{models.FormatDoubleElimination, models.FormatSettings{}, "DoubleElimination"},
		{models.FormatRoundRobin, models.FormatSettings{}, "RoundRobin"},
		{models.FormatSwiss, models.FormatSettings{}, "Swiss"},
		{models.FormatGroupKnockout, models.FormatSettings{}, "GroupStage"},
		{models.FormatMultiStage, models.FormatSettings{}, "InitialPools"},
		{models.FormatMultiStage, models.FormatSettings{InitialRoundFormat: models.FormatSingleElimination}, "SingleElimination"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			g, err := brackets.NewGenerator(tt.format, tt.settings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.GetName())
		})
	}

	_, err := brackets.NewGenerator("LADDER", models.FormatSettings{})
	assert.Error(t, err)
}

func TestInsufficientTeams(t *testing.T) {
	generators := []brackets.BracketGenerator{
		brackets.NewSingleEliminationGenerator(),
		brackets.NewDoubleEliminationGenerator(),
		brackets.NewRoundRobinGenerator(),
		brackets.NewSwissGenerator(),
		brackets.NewGroupStageGenerator(),
		brackets.NewPoolGenerator(),
		brackets.NewDivisionGenerator(),
	}
	for _, g := range generators {
		for _, n := range []int{0, 1} {
			t.Run(fmt.Sprintf("%s/%d", g.GetName(), n), func(t *testing.T) {
				matches, err := g.GenerateBracket(context.Background(), brackets.GenerateBracketParams{Teams: makeTeams(n)})
				var insufficient *brackets.InsufficientTeamsError
				require.ErrorAs(t, err, &insufficient)
				assert.Equal(t, n, insufficient.Teams)
				assert.Nil(t, matches)
			})
		}
	}
}

func TestRoundRobinCoversEveryPairOnce(t *testing.T) {
	for n := 2; n <= 11; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			matches := generate(t, brackets.NewRoundRobinGenerator(), brackets.GenerateBracketParams{Teams: makeTeams(n)})
			require.Len(t, matches, n*(n-1)/2)

			pairs := make(map[[2]string]int)
			busy := make(map[int]map[string]bool)
			for _, m := range matches {
				assert.NotEmpty(t, m.Team1ID)
				assert.NotEmpty(t, m.Team2ID)
				assert.NotEqual(t, m.Team1ID, m.Team2ID)
				assert.Nil(t, m.Progression.Winner)
				assert.Equal(t, models.MatchStatusScheduled, m.Status)

				key := [2]string{m.Team1ID, m.Team2ID}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				pairs[key]++

				if busy[m.BracketRound] == nil {
					busy[m.BracketRound] = make(map[string]bool)
				}
				assert.False(t, busy[m.BracketRound][m.Team1ID], "team plays twice in round %d", m.BracketRound)
				assert.False(t, busy[m.BracketRound][m.Team2ID], "team plays twice in round %d", m.BracketRound)
				busy[m.BracketRound][m.Team1ID] = true
				busy[m.BracketRound][m.Team2ID] = true
			}
			assert.Len(t, pairs, n*(n-1)/2)
			for pair, count := range pairs {
				assert.Equal(t, 1, count, "pair %v", pair)
			}
		})
	}
}

func TestRoundRobinSecondLeg(t *testing.T) {
	matches := generate(t, brackets.NewRoundRobinGenerator(), brackets.GenerateBracketParams{
		Teams:    makeTeams(4),
		Settings: models.FormatSettings{RoundRobinLegs: 2},
	})
	require.Len(t, matches, 12)

	ordered := make(map[[2]string]int)
	for _, m := range matches {
		ordered[[2]string{m.Team1ID, m.Team2ID}]++
	}
	assert.Len(t, ordered, 12, "the second leg swaps sides")
	assert.Equal(t, 6, matches[len(matches)-1].BracketRound)
}

func TestSingleEliminationFiveTeams(t *testing.T) {
	teams := makeTeams(5)
	matches := generate(t, brackets.NewSingleEliminationGenerator(), brackets.GenerateBracketParams{Teams: teams})
	assertWellFormed(t, matches)

	round1 := inRound(matches, "", 1)
	require.Len(t, round1, 3)
	byes := 0
	for _, m := range round1 {
		if m.IsBye {
			byes++
			assert.Equal(t, "t1", m.Team1ID, "the top seed takes the bye")
			assert.Equal(t, models.MatchStatusCompleted, m.Status)
			assert.Equal(t, "t1", m.WinnerID)
		}
	}
	assert.Equal(t, 1, byes)
	assert.Equal(t, 2, playable(round1))
	assert.Equal(t, [2]string{"t2", "t5"}, [2]string{round1[1].Team1ID, round1[1].Team2ID})
	assert.Equal(t, [2]string{"t3", "t4"}, [2]string{round1[2].Team1ID, round1[2].Team2ID})

	assert.Len(t, inRound(matches, "", 2), 2)
	final := inRound(matches, "", 3)
	require.Len(t, final, 1)
	assert.Nil(t, final[0].Progression.Winner)
	assert.Equal(t, "t1", final[0].Team1ID, "bye winners are carried to the final")
	assert.Empty(t, final[0].Team2ID)

	assert.Equal(t, 4, playable(matches))
}

func TestSingleEliminationPowerOfTwo(t *testing.T) {
	matches := generate(t, brackets.NewSingleEliminationGenerator(), brackets.GenerateBracketParams{Teams: makeTeams(8)})
	assertWellFormed(t, matches)
	require.Len(t, matches, 7)

	round1 := inRound(matches, "", 1)
	require.Len(t, round1, 4)
	want := [][2]string{{"t1", "t8"}, {"t2", "t7"}, {"t3", "t6"}, {"t4", "t5"}}
	for i, m := range round1 {
		assert.False(t, m.IsBye)
		assert.Equal(t, i, m.BracketPosition)
		assert.Equal(t, want[i], [2]string{m.Team1ID, m.Team2ID})
	}

	// 1/8 meets 4/5 in the semi final
	assert.Equal(t, round1[0].Progression.Winner.MatchID, round1[3].Progression.Winner.MatchID)
	assert.NotEqual(t, round1[0].Progression.Winner.Slot, round1[3].Progression.Winner.Slot)
}

func TestSingleEliminationPlayableMatches(t *testing.T) {
	for n := 2; n <= 33; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			matches := generate(t, brackets.NewSingleEliminationGenerator(), brackets.GenerateBracketParams{Teams: makeTeams(n)})
			assertWellFormed(t, matches)
			assert.Equal(t, n-1, playable(matches))

			finals := 0
			for _, m := range matches {
				if m.Progression.Winner == nil {
					finals++
				}
				assert.Nil(t, m.Progression.Loser)
			}
			assert.Equal(t, 1, finals)
		})
	}
}

func TestDoubleEliminationShape(t *testing.T) {
	for n := 2; n <= 20; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			matches := generate(t, brackets.NewDoubleEliminationGenerator(), brackets.GenerateBracketParams{Teams: makeTeams(n)})
			assertWellFormed(t, matches)
			assert.Equal(t, 2*n-2, playable(matches))

			var winners, losers, finals int
			for _, m := range matches {
				switch m.Bracket {
				case models.BracketWinners:
					if !m.IsBye {
						winners++
						assert.NotNil(t, m.Progression.Loser, "every winners bracket loss drops down")
					}
				case models.BracketLosers:
					losers++
					assert.False(t, m.IsBye)
					assert.Nil(t, m.Progression.Loser, "a losers bracket loss eliminates")
				case models.BracketGrandFinal:
					finals++
					assert.Nil(t, m.Progression.Winner)
				default:
					t.Fatalf("match %s has no bracket side", m.ID)
				}
			}
			assert.Equal(t, n-1, winners)
			assert.Equal(t, n-2, losers)
			assert.Equal(t, 1, finals)
		})
	}
}

func TestSwissFirstRoundSeeded(t *testing.T) {
	matches := generate(t, brackets.NewSwissGenerator(), brackets.GenerateBracketParams{
		Teams:  makeTeams(8),
		Seeded: true,
		Round:  1,
	})
	require.Len(t, matches, 4)
	for i, m := range matches {
		assert.Equal(t, fmt.Sprintf("t%d", i+1), m.Team1ID)
		assert.Equal(t, fmt.Sprintf("t%d", i+5), m.Team2ID)
		assert.Equal(t, 1, m.BracketRound)
	}
}

func TestSwissOddCountGivesByeToTopTeam(t *testing.T) {
	matches := generate(t, brackets.NewSwissGenerator(), brackets.GenerateBracketParams{
		Teams:  makeTeams(5),
		Seeded: true,
	})
	require.Len(t, matches, 3)
	assert.True(t, matches[0].IsBye)
	assert.Equal(t, "t1", matches[0].WinnerID)
	assert.Equal(t, models.MatchStatusCompleted, matches[0].Status)

	// t1 already had a bye, so the next highest placed team gets it
	next := generate(t, brackets.NewSwissGenerator(), brackets.GenerateBracketParams{
		Teams:   makeTeams(5),
		Round:   2,
		History: matches,
	})
	require.True(t, next[0].IsBye)
	assert.Equal(t, "t2", next[0].Team1ID)
}

func TestSwissUnseededShuffleIsDeterministic(t *testing.T) {
	params := brackets.GenerateBracketParams{TournamentID: "swiss-open", Teams: makeTeams(16)}
	a := generate(t, brackets.NewSwissGenerator(), params)
	b := generate(t, brackets.NewSwissGenerator(), params)
	require.Len(t, a, 8)
	for i := range a {
		assert.Equal(t, a[i].Team1ID, b[i].Team1ID)
		assert.Equal(t, a[i].Team2ID, b[i].Team2ID)
	}
	assert.Equal(t, "t1", params.Teams[0].ID, "the caller's slice is not shuffled")
}

func TestSwissAvoidsRematches(t *testing.T) {
	teams := makeTeams(8)
	history := generate(t, brackets.NewSwissGenerator(), brackets.GenerateBracketParams{Teams: teams, Seeded: true})
	for _, m := range history {
		m.Status = models.MatchStatusCompleted
		m.WinnerID = m.Team1ID
		m.LoserID = m.Team2ID
	}

	// winners t1..t4 first, then losers t5..t8
	round2 := generate(t, brackets.NewSwissGenerator(), brackets.GenerateBracketParams{
		Teams:   teams,
		Round:   2,
		History: history,
	})
	require.Len(t, round2, 4)

	met := make(map[[2]string]bool)
	for _, m := range history {
		met[[2]string{m.Team1ID, m.Team2ID}] = true
		met[[2]string{m.Team2ID, m.Team1ID}] = true
	}
	wins := map[string]int{"t1": 1, "t2": 1, "t3": 1, "t4": 1}
	for _, m := range round2 {
		assert.False(t, met[[2]string{m.Team1ID, m.Team2ID}], "rematch %s vs %s", m.Team1ID, m.Team2ID)
		assert.Equal(t, wins[m.Team1ID], wins[m.Team2ID], "records should match")
		assert.Equal(t, 2, m.BracketRound)
	}
}

func TestSwissAllowsRematchWhenUnavoidable(t *testing.T) {
	teams := makeTeams(2)
	history := generate(t, brackets.NewSwissGenerator(), brackets.GenerateBracketParams{Teams: teams, Seeded: true})
	round2 := generate(t, brackets.NewSwissGenerator(), brackets.GenerateBracketParams{Teams: teams, Round: 2, History: history})
	require.Len(t, round2, 1)
	assert.ElementsMatch(t, []string{"t1", "t2"}, []string{round2[0].Team1ID, round2[0].Team2ID})
}

func TestPartitionSnake(t *testing.T) {
	groups, err := brackets.Partition("test", makeTeams(8), 2)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	ids := func(teams []*models.Team) []string {
		var out []string
		for _, t := range teams {
			out = append(out, t.ID)
		}
		return out
	}
	assert.Equal(t, []string{"t1", "t4", "t5", "t8"}, ids(groups[0]))
	assert.Equal(t, []string{"t2", "t3", "t6", "t7"}, ids(groups[1]))
}

func TestPartitionErrors(t *testing.T) {
	var insufficient *brackets.InsufficientTeamsError

	_, err := brackets.Partition("test", makeTeams(3), 4)
	assert.ErrorAs(t, err, &insufficient, "more groups than teams")

	groups, err := brackets.Partition("test", makeTeams(3), 2)
	require.NoError(t, err, "a group of one is allowed")
	assert.Len(t, groups[0], 1)
	assert.Len(t, groups[1], 2)
}

func TestGroupStageGroupOfOne(t *testing.T) {
	matches := generate(t, brackets.NewGroupStageGenerator(), brackets.GenerateBracketParams{
		Teams:    makeTeams(3),
		Settings: models.FormatSettings{GroupCount: 2},
	})
	require.Len(t, matches, 2)

	solo := matches[0]
	assert.Equal(t, "Group A", solo.Category)
	assert.True(t, solo.IsBye)
	assert.Equal(t, models.MatchStatusCompleted, solo.Status)
	assert.Equal(t, "t1", solo.WinnerID)
	assert.Equal(t, 0, playable(matches[:1]))

	assert.Equal(t, "Group B", matches[1].Category)
	assert.ElementsMatch(t, []string{"t2", "t3"}, []string{matches[1].Team1ID, matches[1].Team2ID})
}

func TestSubcategory(t *testing.T) {
	assert.Equal(t, "Group A", brackets.Subcategory("", "Group A"))
	assert.Equal(t, "Women / Division 2", brackets.Subcategory("Women", "Division 2"))
}

func TestGroupAndDivisionNamesKeepCategory(t *testing.T) {
	groups := generate(t, brackets.NewGroupStageGenerator(), brackets.GenerateBracketParams{
		Category: "Women",
		Teams:    makeTeams(4),
		Settings: models.FormatSettings{GroupCount: 2},
	})
	for _, m := range groups {
		assert.Contains(t, []string{"Women / Group A", "Women / Group B"}, m.Category)
	}

	divisions := generate(t, brackets.NewDivisionGenerator(), brackets.GenerateBracketParams{
		Category: "Women",
		Teams:    makeTeams(4),
		Settings: models.FormatSettings{DivisionCount: 2},
	})
	for _, m := range divisions {
		assert.Contains(t, []string{"Women / Division 1", "Women / Division 2"}, m.Category)
	}
}

func TestGroupStage(t *testing.T) {
	matches := generate(t, brackets.NewGroupStageGenerator(), brackets.GenerateBracketParams{
		Teams:    makeTeams(8),
		Settings: models.FormatSettings{GroupCount: 2},
	})
	require.Len(t, matches, 12)

	perGroup := make(map[string]int)
	for _, m := range matches {
		assert.Equal(t, models.StageGroupStage, m.Stage)
		perGroup[m.Category]++
	}
	assert.Equal(t, map[string]int{"Group A": 6, "Group B": 6}, perGroup)
}

func TestGroupStageNeedsQualifiers(t *testing.T) {
	_, err := brackets.NewGroupStageGenerator().GenerateBracket(context.Background(), brackets.GenerateBracketParams{
		Teams:    makeTeams(4),
		Settings: models.FormatSettings{GroupCount: 1, AdvancePerGroup: 1},
	})
	var insufficient *brackets.InsufficientTeamsError
	assert.ErrorAs(t, err, &insufficient)
}

func TestQualifiersWinnersFirst(t *testing.T) {
	teams := makeTeams(6)
	groups := [][]*models.Team{teams[0:3], teams[3:6]}
	got := brackets.Qualifiers(groups, 2)
	require.Len(t, got, 4)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t4", got[1].ID)
	assert.Equal(t, "t2", got[2].ID)
	assert.Equal(t, "t5", got[3].ID)
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "Group A", brackets.GroupName("Group", 0))
	assert.Equal(t, "Pool C", brackets.GroupName("Pool", 2))
	assert.Equal(t, "Group 27", brackets.GroupName("Group", 26))
}

func TestPlaceDivisions(t *testing.T) {
	divisions, err := brackets.PlaceDivisions(makeTeams(38), 4)
	require.NoError(t, err)
	var sizes []int
	for _, d := range divisions {
		sizes = append(sizes, len(d))
	}
	assert.Equal(t, []int{10, 10, 9, 9}, sizes)
	assert.Equal(t, "t1", divisions[0][0].ID)
	assert.Equal(t, "t11", divisions[1][0].ID)

	_, err = brackets.PlaceDivisions(makeTeams(5), 3)
	var insufficient *brackets.InsufficientTeamsError
	assert.ErrorAs(t, err, &insufficient)
}

func TestDivisionGenerator(t *testing.T) {
	matches := generate(t, brackets.NewDivisionGenerator(), brackets.GenerateBracketParams{
		Teams:    makeTeams(10),
		Settings: models.FormatSettings{DivisionCount: 2},
	})
	perDivision := make(map[string]int)
	for _, m := range matches {
		assert.Equal(t, models.StageDivisionPlacement, m.Stage)
		perDivision[m.Category]++
	}
	assert.Equal(t, map[string]int{"Division 1": 10, "Division 2": 10}, perDivision)
}
