package brackets

import (
	"context"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

// node is one entry of a round: a known team, or the winner (or loser) of an
// earlier match that is not decided yet.
type node struct {
	teamID string
	source *models.Match
	loser  bool
}

// place puts the entry into a slot of m. Entries that come from another match
// leave the slot TBD and link the source match to it instead.
func (n node) place(m *models.Match, slot models.TeamSlot) {
	if n.source == nil {
		m.SetTeam(slot, n.teamID)
		return
	}
	link := &models.ProgressionLink{MatchID: m.ID, Slot: slot}
	if n.loser {
		n.source.Progression.Loser = link
	} else {
		n.source.Progression.Winner = link
	}
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket pre-creates every round. Within a round the top entry takes
// the bye when the entry count is odd and the rest are folded 1 vs N, 2 vs N-1.
// N teams always give N-1 playable matches.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
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

	matches, _, _ := buildElimination(params, entries, "", ts)
	settleByes(matches, ts)
	return matches, nil
}

// buildElimination lays out a knockout tree over entries. It returns the
// matches in round order, the node holding the bracket winner, and per round
// the loser nodes of the playable matches.
func buildElimination(params GenerateBracketParams, entries []node, side models.BracketSide, ts time.Time) ([]*models.Match, node, [][]node) {
	var (
		matches     []*models.Match
		roundLosers [][]node
	)

	for round := 1; len(entries) > 1; round++ {
		next := make([]node, 0, (len(entries)+1)/2)
		var losers []node
		position := 0

		if len(entries)%2 == 1 {
			bye := newMatch(params, ts, round, position)
			bye.Bracket = side
			bye.IsBye = true
			entries[0].place(bye, models.SlotTeam1)
			matches = append(matches, bye)
			next = append(next, node{source: bye})
			entries = entries[1:]
			position++
		}

		half := len(entries) / 2
		for i := 0; i < half; i++ {
			m := newMatch(params, ts, round, position)
			m.Bracket = side
			entries[i].place(m, models.SlotTeam1)
			entries[len(entries)-1-i].place(m, models.SlotTeam2)
			matches = append(matches, m)
			next = append(next, node{source: m})
			losers = append(losers, node{source: m, loser: true})
			position++
		}

		roundLosers = append(roundLosers, losers)
		entries = next
	}
	return matches, entries[0], roundLosers
}
