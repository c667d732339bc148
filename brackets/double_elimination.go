package brackets

import (
	"context"
	"slices"

	"github.com/Dosada05/tournament-engine/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket builds the winners bracket like single elimination, a losers
// bracket fed by loser links, and a grand final between both champions. There
// is no bracket reset, so N teams give 2N-2 playable matches.
func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := requireTeams(g.GetName(), params.Teams); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts := params.now()
	entries := make([]node, len(params.Teams))
	for i, t := range params.Teams {
		entries[i] = node{teamID: t.ID}
	}

	matches, winnersChampion, roundLosers := buildElimination(params, entries, models.BracketWinners, ts)

	var pool []node
	lbRound := 0
	playRound := func(pairs [][2]node) []node {
		lbRound++
		winners := make([]node, 0, len(pairs))
		for i, pair := range pairs {
			m := newMatch(params, ts, lbRound, i)
			m.Bracket = models.BracketLosers
			pair[0].place(m, models.SlotTeam1)
			pair[1].place(m, models.SlotTeam2)
			matches = append(matches, m)
			winners = append(winners, node{source: m})
		}
		return winners
	}

	for r, incoming := range roundLosers {
		incoming = slices.Clone(incoming)
		// crossing the drop order keeps early rematches apart
		if r%2 == 1 {
			slices.Reverse(incoming)
		}

		switch {
		case len(pool) == 0:
			pool = incoming
		case len(pool) == len(incoming):
			pairs := make([][2]node, len(pool))
			for i := range pool {
				pairs[i] = [2]node{pool[i], incoming[i]}
			}
			pool = playRound(pairs)
		default:
			pool = append(pool, incoming...)
		}

		target := 1
		if r+1 < len(roundLosers) {
			target = len(roundLosers[r+1])
		}
		for len(pool) > target {
			var carried []node
			if len(pool)%2 == 1 {
				carried = append(carried, pool[0])
				pool = pool[1:]
			}
			half := len(pool) / 2
			pairs := make([][2]node, half)
			for i := 0; i < half; i++ {
				pairs[i] = [2]node{pool[i], pool[len(pool)-1-i]}
			}
			pool = append(carried, playRound(pairs)...)
		}
	}

	final := newMatch(params, ts, 1, 0)
	final.Bracket = models.BracketGrandFinal
	winnersChampion.place(final, models.SlotTeam1)
	pool[0].place(final, models.SlotTeam2)
	matches = append(matches, final)

	settleByes(matches, ts)
	return matches, nil
}
