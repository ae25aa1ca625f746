package models

import "github.com/uptrace/bun"

// RaceResult stores the winner of a single race. Winner identity fields are
// kept inline so the read endpoint never needs a join; uniqueness on
// (season, round) is enforced by the race_results_no_dupes constraint.
type RaceResult struct {
	bun.BaseModel `bun:"table:race_results,alias:rr"`

	ID               int    `bun:"id,pk,autoincrement" json:"id"`
	Season           string `bun:"season,notnull" json:"season"`
	Round            string `bun:"round,notnull" json:"round"`
	GpName           string `bun:"gp_name,notnull" json:"gpName"`
	WinnerID         string `bun:"winner_id,notnull" json:"winnerId"`
	WinnerGivenName  string `bun:"winner_given_name,notnull" json:"winnerGivenName"`
	WinnerFamilyName string `bun:"winner_family_name,notnull" json:"winnerFamilyName"`
}
