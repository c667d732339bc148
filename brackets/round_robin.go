package brackets

import (
	"context"

	"github.com/Dosada05/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules every pair once per leg with the circle method:
// the first team stays fixed and the rest rotate, so each BracketRound is a
// full round in which no team plays twice. With an odd count one team sits
// out each round. No progression links are created.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := requireTeams(g.GetName(), params.Teams); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts := params.now()
	ids := teamIDs(params.Teams)
	if len(ids)%2 == 1 {
		ids = append(ids, "")
	}
	size := len(ids)
	rounds := size - 1
	legs := params.Settings.Legs()

	matches := make([]*models.Match, 0, legs*len(params.Teams)*(len(params.Teams)-1)/2)
	for leg := 0; leg < legs; leg++ {
		order := append([]string(nil), ids...)
		for r := 0; r < rounds; r++ {
			position := 0
			for i := 0; i < size/2; i++ {
				home, away := order[i], order[size-1-i]
				if home == "" || away == "" {
					continue
				}
				// the fixed team alternates sides
				if i == 0 && r%2 == 1 {
					home, away = away, home
				}
				if leg == 1 {
					home, away = away, home
				}
				m := newMatch(params, ts, leg*rounds+r+1, position)
				m.Team1ID = home
				m.Team2ID = away
				matches = append(matches, m)
				position++
			}
			last := order[size-1]
			copy(order[2:], order[1:size-1])
			order[1] = last
		}
	}
	return matches, nil
}
