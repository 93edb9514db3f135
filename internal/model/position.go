package model

import "time"

type PositionStatus string

const (
	PositionOpen    PositionStatus = "open"
	PositionClosing PositionStatus = "closing"
	PositionClosed  PositionStatus = "closed"
)

// BasisPosition is an open funding-arb position (spot plus perp hedge). The
// venue identifiers recorded here are authoritative when building a close
// intent.
type BasisPosition struct {
	ID            string         `json:"id" db:"id"`
	TenantID      string         `json:"tenant_id" db:"tenant_id"`
	InstrumentID  string         `json:"instrument_id" db:"instrument_id"`
	Symbol        string         `json:"symbol" db:"symbol"`
	Direction     BasisDirection `json:"direction" db:"direction"`
	SpotVenueID   string         `json:"spot_venue_id" db:"spot_venue_id"`
	SpotVenue     string         `json:"spot_venue" db:"spot_venue"`
	PerpVenueID   string         `json:"perp_venue_id" db:"perp_venue_id"`
	PerpVenue     string         `json:"perp_venue" db:"perp_venue"`
	SpotSize      float64        `json:"spot_size" db:"spot_size"`
	PerpSize      float64        `json:"perp_size" db:"perp_size"`
	EntryBasisBps float64        `json:"entry_basis_bps" db:"entry_basis_bps"`
	Status        PositionStatus `json:"status" db:"status"`
	OpenedAt      time.Time      `json:"opened_at" db:"opened_at"`
}
