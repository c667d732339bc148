package models

type Player struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
}

type Team struct {
	ID       string   `json:"id" msgpack:"id"`
	Name     string   `json:"name" msgpack:"name"`
	Players  []Player `json:"players,omitempty" msgpack:"players,omitempty"`
	Seed     *int     `json:"seed,omitempty" msgpack:"seed,omitempty"`
	Category string   `json:"category,omitempty" msgpack:"category,omitempty"`
	Division string   `json:"division,omitempty" msgpack:"division,omitempty"`
	Ranking  float64  `json:"ranking" msgpack:"ranking"`
}

// SeedOr returns the seed, or fallback for unseeded teams.
func (t *Team) SeedOr(fallback int) int {
	if t.Seed == nil {
		return fallback
	}
	return *t.Seed
}

func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	if t.Players != nil {
		c.Players = append([]Player(nil), t.Players...)
	}
	if t.Seed != nil {
		s := *t.Seed
		c.Seed = &s
	}
	return &c
}
