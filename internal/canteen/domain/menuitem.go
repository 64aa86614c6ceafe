package domain

import "time"

// MenuItem is a purchasable dish. Prices are whole coins. Orders copy the
// fields they need at submission time, so editing or deleting an item never
// rewrites history.
type MenuItem struct {
	ID        string
	Name      string
	Emoji     string
	Tagline   string
	Price     int // coins, never negative
	CreatedAt time.Time
	UpdatedAt time.Time
}
