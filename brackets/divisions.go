package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// DivisionGenerator re-buckets a ranked field into skill divisions and plays a
// round robin inside each one.
type DivisionGenerator struct{}

func NewDivisionGenerator() BracketGenerator {
	return &DivisionGenerator{}
}

func (g *DivisionGenerator) GetName() string {
	return "DivisionPlacement"
}

// GenerateBracket expects Teams in provisional ranking order.
func (g *DivisionGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := requireTeams(g.GetName(), params.Teams); err != nil {
		return nil, err
	}
	divisions, err := PlaceDivisions(params.Teams, params.Settings.Divisions(len(params.Teams)))
	if err != nil {
		return nil, err
	}
	if params.Stage == "" {
		params.Stage = models.StageDivisionPlacement
	}

	rr := NewRoundRobinGenerator()
	var matches []*models.Match
	for i, division := range divisions {
		sub := params
		sub.Category = Subcategory(params.Category, DivisionName(i))
		sub.Teams = division
		batch, err := rr.GenerateBracket(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sub.Category, err)
		}
		matches = append(matches, batch...)
	}
	return matches, nil
}

// PlaceDivisions cuts the ranking into count contiguous divisions of near
// equal size; the top divisions take the remainder. Each division needs at
// least two teams.
func PlaceDivisions(ranked []*models.Team, count int) ([][]*models.Team, error) {
	if count < 1 {
		count = 1
	}
	if len(ranked) < 2*count {
		return nil, &InsufficientTeamsError{
			Generator: "DivisionPlacement",
			Teams:     len(ranked),
			Reason:    fmt.Sprintf("%d divisions need at least %d teams", count, 2*count),
		}
	}

	size, extra := len(ranked)/count, len(ranked)%count
	divisions := make([][]*models.Team, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		n := size
		if i < extra {
			n++
		}
		divisions = append(divisions, ranked[start:start+n])
		start += n
	}
	return divisions, nil
}

func DivisionName(index int) string {
	return fmt.Sprintf("Division %d", index+1)
}
