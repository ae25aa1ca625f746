package models

import "github.com/uptrace/bun"

// SeasonChampion links a championship season to its winning driver.
// At most one row exists per season.
type SeasonChampion struct {
	bun.BaseModel `bun:"table:season_champions,alias:sc"`

	ID       int    `bun:"id,pk,autoincrement" json:"id"`
	Season   string `bun:"season,notnull,unique" json:"season"`
	DriverID string `bun:"driver_id,notnull" json:"driverId"`

	Driver *Driver `bun:"rel:belongs-to,join:driver_id=driver_id" json:"-"`
}
