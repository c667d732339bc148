package brackets

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"slices"

	"github.com/Dosada05/tournament-engine/models"
)

type SwissGenerator struct{}

func NewSwissGenerator() BracketGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GenerateBracket produces one swiss round. Teams must be in current standings
// order (seed order for round 1). Round 1 pairs the top half against the
// bottom half; later rounds pair the closest records without rematches when
// any rematch-free pairing exists. An odd count gives a bye to the highest
// placed team that has not had one.
func (g *SwissGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := requireTeams(g.GetName(), params.Teams); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts := params.now()
	round := max(params.Round, 1)
	order := slices.Clone(params.Teams)
	if round == 1 && !params.Seeded {
		shuffleTeams(order, params.TournamentID)
	}
	h := newSwissHistory(params.History)

	var matches []*models.Match
	position := 0
	if len(order)%2 == 1 {
		idx := h.byeCandidate(order)
		bye := newMatch(params, ts, round, position)
		bye.IsBye = true
		bye.Team1ID = order[idx].ID
		CompleteBye(bye, ts)
		matches = append(matches, bye)
		order = slices.Delete(order, idx, idx+1)
		position++
	}

	var pairs [][2]*models.Team
	if round == 1 {
		half := len(order) / 2
		for i := 0; i < half; i++ {
			pairs = append(pairs, [2]*models.Team{order[i], order[i+half]})
		}
	} else {
		var ok bool
		if pairs, ok = h.pair(order, false); !ok {
			pairs, _ = h.pair(order, true)
		}
	}

	for _, pair := range pairs {
		m := newMatch(params, ts, round, position)
		m.Team1ID = pair[0].ID
		m.Team2ID = pair[1].ID
		matches = append(matches, m)
		position++
	}
	return matches, nil
}

type swissHistory struct {
	wins   map[string]int
	byes   map[string]bool
	played map[[2]string]bool
}

func newSwissHistory(matches []*models.Match) *swissHistory {
	h := &swissHistory{
		wins:   make(map[string]int),
		byes:   make(map[string]bool),
		played: make(map[[2]string]bool),
	}
	for _, m := range matches {
		if m.IsBye {
			h.byes[m.Team1ID] = true
		} else if m.HasBothTeams() {
			h.played[pairKey(m.Team1ID, m.Team2ID)] = true
		}
		if m.Status == models.MatchStatusCompleted && m.WinnerID != "" {
			h.wins[m.WinnerID]++
		}
	}
	return h
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func (h *swissHistory) byeCandidate(order []*models.Team) int {
	for i, t := range order {
		if !h.byes[t.ID] {
			return i
		}
	}
	return 0
}

// pair backtracks over the standings order: the first unpaired team takes the
// opponent with the closest record that still leaves the rest pairable.
func (h *swissHistory) pair(order []*models.Team, allowRematch bool) ([][2]*models.Team, bool) {
	if len(order) == 0 {
		return nil, true
	}
	first := order[0]
	candidates := make([]int, 0, len(order)-1)
	for i := 1; i < len(order); i++ {
		candidates = append(candidates, i)
	}
	slices.SortStableFunc(candidates, func(a, b int) int {
		return h.distance(first, order[a]) - h.distance(first, order[b])
	})

	for _, i := range candidates {
		opponent := order[i]
		if !allowRematch && h.played[pairKey(first.ID, opponent.ID)] {
			continue
		}
		rest := make([]*models.Team, 0, len(order)-2)
		rest = append(rest, order[1:i]...)
		rest = append(rest, order[i+1:]...)
		if sub, ok := h.pair(rest, allowRematch); ok {
			return append([][2]*models.Team{{first, opponent}}, sub...), true
		}
	}
	return nil, false
}

func (h *swissHistory) distance(a, b *models.Team) int {
	d := h.wins[a.ID] - h.wins[b.ID]
	if d < 0 {
		return -d
	}
	return d
}

// shuffleTeams orders an unseeded field deterministically per tournament.
func shuffleTeams(teams []*models.Team, tournamentID string) {
	f := fnv.New64a()
	f.Write([]byte(tournamentID))
	seed := f.Sum64()
	r := rand.New(rand.NewPCG(seed, seed>>1|1))
	r.Shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})
}
