package models

// Standing is one row of a standings table. It is a read model computed from
// the match list and never stored inside the tournament document.
type Standing struct {
	TeamID          string `json:"team_id"`
	TeamName        string `json:"team_name"`
	Category        string `json:"category,omitempty"`
	Rank            int    `json:"rank"`
	Played          int    `json:"played"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	Byes            int    `json:"byes"`
	SetsWon         int    `json:"sets_won"`
	SetsLost        int    `json:"sets_lost"`
	SetDifference   int    `json:"set_difference"`
	PointsFor       int    `json:"points_for"`
	PointsAgainst   int    `json:"points_against"`
	PointDifference int    `json:"point_difference"`
	Seed            *int   `json:"seed,omitempty"`
}
