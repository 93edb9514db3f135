package model

import "time"

// ArbitrageOpportunity is one ranked cross-exchange spot opportunity. Rows
// are recomputed continuously by the upstream pricing pipeline; this core
// only filters and ranks them.
type ArbitrageOpportunity struct {
	ID                  string    `json:"id" db:"id"`
	InstrumentID        string    `json:"instrument_id" db:"instrument_id"`
	Symbol              string    `json:"symbol" db:"symbol"`
	BuyVenueID          string    `json:"buy_venue_id" db:"buy_venue_id"`
	SellVenueID         string    `json:"sell_venue_id" db:"sell_venue_id"`
	BuyVenue            string    `json:"buy_venue" db:"buy_venue"`
	SellVenue           string    `json:"sell_venue" db:"sell_venue"`
	ExecutableSpreadBps float64   `json:"executable_spread_bps" db:"executable_spread_bps"`
	NetEdgeBps          float64   `json:"net_edge_bps" db:"net_edge_bps"`
	LiquidityScore      float64   `json:"liquidity_score" db:"liquidity_score"`
	LatencyScore        float64   `json:"latency_score" db:"latency_score"`
	Timestamp           time.Time `json:"timestamp" db:"ts"`
}

// BasisOpportunity is one funding/basis opportunity. FundingRate is the
// latest hourly rate for the instrument; the annualized rate and estimated
// APY are computed by the scanner, not stored.
type BasisOpportunity struct {
	ID                    string    `json:"id" db:"id"`
	InstrumentID          string    `json:"instrument_id" db:"instrument_id"`
	Symbol                string    `json:"symbol" db:"symbol"`
	SpotVenueID           string    `json:"spot_venue_id" db:"spot_venue_id"`
	DerivVenueID          string    `json:"deriv_venue_id" db:"deriv_venue_id"`
	SpotVenue             string    `json:"spot_venue" db:"spot_venue"`
	DerivVenue            string    `json:"deriv_venue" db:"deriv_venue"`
	BasisBps              float64   `json:"basis_bps" db:"basis_bps"`
	BasisZ                float64   `json:"basis_z" db:"basis_z"`
	FundingRate           float64   `json:"funding_rate" db:"-"`
	FundingRateAnnualized float64   `json:"funding_rate_annualized" db:"-"`
	EstimatedApy          float64   `json:"estimated_apy" db:"-"`
	SpotBid               float64   `json:"spot_bid" db:"spot_bid"`
	SpotAsk               float64   `json:"spot_ask" db:"spot_ask"`
	PerpBid               float64   `json:"perp_bid" db:"perp_bid"`
	PerpAsk               float64   `json:"perp_ask" db:"perp_ask"`
	Timestamp             time.Time `json:"timestamp" db:"ts"`
}

// FundingRate is one observed funding payment rate for a perp instrument.
type FundingRate struct {
	InstrumentID string    `json:"instrument_id" db:"instrument_id"`
	Rate         float64   `json:"rate" db:"rate"`
	FundingTime  time.Time `json:"funding_time" db:"funding_time"`
}

// Quote is a venue-level top-of-book snapshot for an instrument.
type Quote struct {
	InstrumentID string    `json:"instrument_id" db:"instrument_id"`
	VenueID      string    `json:"venue_id" db:"venue_id"`
	Venue        string    `json:"venue" db:"venue"`
	Symbol       string    `json:"symbol" db:"symbol"`
	Bid          float64   `json:"bid" db:"bid"`
	Ask          float64   `json:"ask" db:"ask"`
	BidSize      float64   `json:"bid_size" db:"bid_size"`
	AskSize      float64   `json:"ask_size" db:"ask_size"`
	Timestamp    time.Time `json:"timestamp" db:"ts"`
}
