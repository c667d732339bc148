// Package seeding assigns ordinal seeds to teams and decides which stages use
// them.
package seeding

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrInvalidSeed   = errors.New("seed must be a positive integer")
	ErrDuplicateSeed = errors.New("seed is already taken in this category")
)

// RankingKey extracts the value teams are seeded by; higher is better.
type RankingKey func(*models.Team) float64

func ByRanking(t *models.Team) float64 {
	return t.Ranking
}

// AssignSeeding returns copies of teams ordered by descending key, ties kept
// in input order, with Seed set to 1..N. The input is not modified.
func AssignSeeding(teams []*models.Team, key RankingKey) []*models.Team {
	if key == nil {
		key = ByRanking
	}
	out := make([]*models.Team, len(teams))
	for i, t := range teams {
		out[i] = t.Clone()
	}
	slices.SortStableFunc(out, func(a, b *models.Team) int {
		return cmp.Compare(key(b), key(a))
	})
	for i, t := range out {
		seed := i + 1
		t.Seed = &seed
	}
	return out
}

// AssignSeedingByCategory seeds every category independently. Teams come back
// grouped by category in order of first appearance, each group in seed order.
func AssignSeedingByCategory(teams []*models.Team, key RankingKey) []*models.Team {
	var (
		categories []string
		byCategory = make(map[string][]*models.Team)
	)
	for _, t := range teams {
		if _, ok := byCategory[t.Category]; !ok {
			categories = append(categories, t.Category)
		}
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	out := make([]*models.Team, 0, len(teams))
	for _, c := range categories {
		out = append(out, AssignSeeding(byCategory[c], key)...)
	}
	return out
}

// ShouldSeed reports whether the stage is listed in the seeding config.
func ShouldSeed(cfg models.SeedingConfig, stage models.Stage) bool {
	return cfg.UseSeeding && slices.Contains(cfg.StagesToSeed, stage)
}

// OrderForStage returns the teams in the order a generator should take them:
// by seed when the stage is seeded, otherwise in the order given (standings
// order for later stages). Unseeded teams go after seeded ones.
func OrderForStage(teams []*models.Team, cfg models.SeedingConfig, stage models.Stage) []*models.Team {
	out := slices.Clone(teams)
	if !ShouldSeed(cfg, stage) {
		return out
	}
	slices.SortStableFunc(out, func(a, b *models.Team) int {
		return cmp.Compare(a.SeedOr(math.MaxInt), b.SeedOr(math.MaxInt))
	})
	return out
}

// ValidateSeeds checks that seeds are positive and unique per category.
func ValidateSeeds(teams []*models.Team) error {
	taken := make(map[string]map[int]string)
	for _, t := range teams {
		if t.Seed == nil {
			continue
		}
		if *t.Seed < 1 {
			return fmt.Errorf("team %s: %w (got %d)", t.ID, ErrInvalidSeed, *t.Seed)
		}
		if taken[t.Category] == nil {
			taken[t.Category] = make(map[int]string)
		}
		if other, ok := taken[t.Category][*t.Seed]; ok {
			return fmt.Errorf("team %s: %w (seed %d held by %s)", t.ID, ErrDuplicateSeed, *t.Seed, other)
		}
		taken[t.Category][*t.Seed] = t.ID
	}
	return nil
}
