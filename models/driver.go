package models

import "github.com/uptrace/bun"

// Driver is a single competitor, keyed by the stable upstream driver slug.
type Driver struct {
	bun.BaseModel `bun:"table:drivers,alias:d"`

	DriverID   string `bun:"driver_id,pk" json:"driverId"`
	GivenName  string `bun:"given_name,notnull" json:"givenName"`
	FamilyName string `bun:"family_name,notnull" json:"familyName"`
}
