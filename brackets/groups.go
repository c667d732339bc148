package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// GroupGenerator splits the field into round-robin groups. It serves both the
// group stage of group + knockout and the pools of a multi-stage initial round.
type GroupGenerator struct {
	name  string
	label string
	stage models.Stage
	count func(s models.FormatSettings, teams int) int
	// advancing checks that the groups can feed a knockout
	advancing bool
}

func NewGroupStageGenerator() BracketGenerator {
	return &GroupGenerator{
		name:      "GroupStage",
		label:     "Group",
		stage:     models.StageGroupStage,
		count:     func(s models.FormatSettings, _ int) int { return s.Groups() },
		advancing: true,
	}
}

func NewPoolGenerator() BracketGenerator {
	return &GroupGenerator{
		name:  "InitialPools",
		label: "Pool",
		stage: models.StageInitialRound,
		count: func(s models.FormatSettings, teams int) int { return s.InitialPools(teams) },
	}
}

func (g *GroupGenerator) GetName() string {
	return g.name
}

func (g *GroupGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := requireTeams(g.GetName(), params.Teams); err != nil {
		return nil, err
	}
	groups, err := Partition(g.GetName(), params.Teams, g.count(params.Settings, len(params.Teams)))
	if err != nil {
		return nil, err
	}
	if g.advancing {
		qualifiers := 0
		for _, group := range groups {
			qualifiers += min(params.Settings.Advancing(), len(group))
		}
		if qualifiers < 2 {
			return nil, &InsufficientTeamsError{
				Generator: g.GetName(),
				Teams:     len(params.Teams),
				Reason:    fmt.Sprintf("%d group(s) advancing %d each cannot fill a knockout", len(groups), params.Settings.Advancing()),
			}
		}
	}

	if params.Stage == "" {
		params.Stage = g.stage
	}
	rr := NewRoundRobinGenerator()
	var matches []*models.Match
	for i, group := range groups {
		sub := params
		sub.Category = Subcategory(params.Category, GroupName(g.label, i))
		sub.Teams = group
		if len(group) == 1 {
			matches = append(matches, soloBye(sub, group[0]))
			continue
		}
		batch, err := rr.GenerateBracket(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", g.GetName(), sub.Category, err)
		}
		matches = append(matches, batch...)
	}
	return matches, nil
}

// soloBye stands in for a group of one: its team plays nothing and tops the
// group through a completed bye.
func soloBye(p GenerateBracketParams, team *models.Team) *models.Match {
	ts := p.now()
	m := newMatch(p, ts, 1, 0)
	m.IsBye = true
	m.Team1ID = team.ID
	CompleteBye(m, ts)
	return m
}

// Partition deals teams into count groups in snake order (A B C C B A ...) so
// every group gets a similar spread of seeds. Small fields may leave groups of
// one.
func Partition(generator string, teams []*models.Team, count int) ([][]*models.Team, error) {
	if count < 1 {
		count = 1
	}
	if count > len(teams) {
		return nil, &InsufficientTeamsError{
			Generator: generator,
			Teams:     len(teams),
			Reason:    fmt.Sprintf("%d groups requested", count),
		}
	}

	groups := make([][]*models.Team, count)
	for i, t := range teams {
		row, col := i/count, i%count
		if row%2 == 1 {
			col = count - 1 - col
		}
		groups[col] = append(groups[col], t)
	}
	return groups, nil
}

// GroupName gives "Group A", "Pool B" and so on; numbers past Z.
func GroupName(label string, index int) string {
	if index < 26 {
		return fmt.Sprintf("%s %c", label, 'A'+index)
	}
	return fmt.Sprintf("%s %d", label, index+1)
}

// Subcategory nests a group or division name under the team category that
// owns it: "Women / Group A". Without a category the name stands alone.
func Subcategory(category, name string) string {
	if category == "" {
		return name
	}
	return category + " / " + name
}

// Qualifiers takes the top perGroup teams of each group (each group in
// standings order), all group winners first, then all runners-up.
func Qualifiers(groups [][]*models.Team, perGroup int) []*models.Team {
	var out []*models.Team
	for place := 0; place < perGroup; place++ {
		for _, group := range groups {
			if place < len(group) {
				out = append(out, group[place])
			}
		}
	}
	return out
}
