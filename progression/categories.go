package progression

import (
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// field is the teams of one category. Categories never meet: every stage
// brackets each field on its own and tags its matches with the category.
type field struct {
	category string
	teams    []*models.Team
	ids      map[string]bool
}

// fieldsOf groups the tournament's teams by category in order of first
// appearance. A tournament without categories is a single field.
func fieldsOf(t *models.Tournament) []*field {
	var out []*field
	byCategory := make(map[string]*field)
	for _, team := range t.Teams {
		f, ok := byCategory[team.Category]
		if !ok {
			f = &field{category: team.Category, ids: make(map[string]bool)}
			byCategory[team.Category] = f
			out = append(out, f)
		}
		f.teams = append(f.teams, team)
		f.ids[team.ID] = true
	}
	return out
}

// matches keeps the matches one of the field's teams is placed in. A match
// with both slots still TBD belongs to no field yet.
func (f *field) matches(all []*models.Match) []*models.Match {
	var out []*models.Match
	for _, m := range all {
		if f.ids[m.Team1ID] || f.ids[m.Team2ID] || f.ids[m.WinnerID] {
			out = append(out, m)
		}
	}
	return out
}

// wrap names the category in errors once there is more than one.
func (f *field) wrap(err error, fields int) error {
	if fields < 2 {
		return err
	}
	return fmt.Errorf("category %q: %w", f.category, err)
}

// swissRounds is the round count of the largest field; smaller fields stop
// pairing once their own count is reached.
func swissRounds(t *models.Tournament) int {
	rounds := 0
	for _, f := range fieldsOf(t) {
		rounds = max(rounds, t.Settings.SwissRoundCount(len(f.teams)))
	}
	return rounds
}
