package models

import (
	"fmt"
	"math"
	"strings"
)

type Format string

const (
	FormatSingleElimination Format = "SINGLE_ELIMINATION"
	FormatDoubleElimination Format = "DOUBLE_ELIMINATION"
	FormatRoundRobin        Format = "ROUND_ROBIN"
	FormatSwiss             Format = "SWISS"
	FormatGroupKnockout     Format = "GROUP_KNOCKOUT"
	FormatMultiStage        Format = "MULTI_STAGE"
)

func (f Format) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin,
		FormatSwiss, FormatGroupKnockout, FormatMultiStage:
		return true
	}
	return false
}

// ParseFormat accepts the canonical upper-case names and their lower-case forms.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if f.Valid() {
		return f, nil
	}
	for _, candidate := range []Format{FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin,
		FormatSwiss, FormatGroupKnockout, FormatMultiStage} {
		if strings.EqualFold(string(candidate), strings.ReplaceAll(s, "-", "_")) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown tournament format %q", s)
}

// IsElimination reports whether the format ends with a bracket final.
func (f Format) IsElimination() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}

// FormatSettings carries the format-specific knobs. Zero values mean "use the
// default for the team count".
type FormatSettings struct {
	RoundRobinLegs          int    `json:"round_robin_legs,omitempty" msgpack:"round_robin_legs,omitempty"` // 1 or 2
	SwissRounds             int    `json:"swiss_rounds,omitempty" msgpack:"swiss_rounds,omitempty"`
	GroupCount              int    `json:"group_count,omitempty" msgpack:"group_count,omitempty"`
	AdvancePerGroup         int    `json:"advance_per_group,omitempty" msgpack:"advance_per_group,omitempty"`
	InitialRoundFormat      Format `json:"initial_round_format,omitempty" msgpack:"initial_round_format,omitempty"`
	InitialRoundGroups      int    `json:"initial_round_groups,omitempty" msgpack:"initial_round_groups,omitempty"`
	DivisionCount           int    `json:"division_count,omitempty" msgpack:"division_count,omitempty"`
	PlayoffTeamsPerDivision int    `json:"playoff_teams_per_division,omitempty" msgpack:"playoff_teams_per_division,omitempty"`
	RequireCourtToStart     bool   `json:"require_court_to_start,omitempty" msgpack:"require_court_to_start,omitempty"`
}

func (s FormatSettings) Legs() int {
	if s.RoundRobinLegs == 2 {
		return 2
	}
	return 1
}

func (s FormatSettings) SwissRoundCount(teams int) int {
	if s.SwissRounds > 0 {
		return s.SwissRounds
	}
	if teams < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(teams))))
}

func (s FormatSettings) Groups() int {
	if s.GroupCount > 0 {
		return s.GroupCount
	}
	return 2
}

func (s FormatSettings) Advancing() int {
	if s.AdvancePerGroup > 0 {
		return s.AdvancePerGroup
	}
	return 2
}

func (s FormatSettings) InitialFormat() Format {
	if s.InitialRoundFormat == FormatSingleElimination {
		return FormatSingleElimination
	}
	return FormatRoundRobin
}

// InitialPools is the number of round-robin pools of the initial round. Pools
// of about five keep a 38-team event to a few dozen matches per pool stage.
func (s FormatSettings) InitialPools(teams int) int {
	if s.InitialRoundGroups > 0 {
		return s.InitialRoundGroups
	}
	pools := (teams + 4) / 5
	if pools < 1 {
		pools = 1
	}
	return pools
}

func (s FormatSettings) Divisions(teams int) int {
	d := s.DivisionCount
	if d <= 0 {
		d = 4
	}
	if limit := teams / 2; d > limit {
		d = limit
	}
	if d < 1 {
		d = 1
	}
	return d
}
