package model

import "time"

// PnlRow is one tenant-scoped PnL bucket as written by the settlement
// pipeline.
type PnlRow struct {
	ID         string    `json:"id" db:"id"`
	Symbol     string    `json:"symbol" db:"symbol"`
	Realized   float64   `json:"realized" db:"realized"`
	Unrealized float64   `json:"unrealized" db:"unrealized"`
	Funding    float64   `json:"funding" db:"funding"`
	Fees       float64   `json:"fees" db:"fees"`
	BucketDate time.Time `json:"bucket_date" db:"bucket_date"`
}

// PnlSummary is the component sums over a row set. Fees are reported as a
// positive cost and subtracted from Net.
type PnlSummary struct {
	Realized   float64 `json:"realized"`
	Unrealized float64 `json:"unrealized"`
	Funding    float64 `json:"funding"`
	Fees       float64 `json:"fees"`
	Net        float64 `json:"net"`
}

// InventoryItem is one venue asset balance for a tenant.
type InventoryItem struct {
	VenueID   string    `json:"venue_id" db:"venue_id"`
	Venue     string    `json:"venue" db:"venue"`
	Asset     string    `json:"asset" db:"asset"`
	Total     float64   `json:"total" db:"total"`
	Available float64   `json:"available" db:"available"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
