package model

import "time"

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentSubmitted IntentStatus = "submitted"
	IntentFilled    IntentStatus = "filled"
	IntentCancelled IntentStatus = "cancelled"
	IntentFailed    IntentStatus = "failed"
)

// BasisDirection selects which side of a basis trade is long.
type BasisDirection string

const (
	LongSpotShortPerp BasisDirection = "long_spot_short_perp"
	ShortSpotLongPerp BasisDirection = "short_spot_long_perp"
)

// LegDefinition is one leg of a multi-leg trade, immutable once embedded in
// an intent.
type LegDefinition struct {
	Venue      string    `json:"venue"`
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"side"`
	Size       float64   `json:"size"`
	Price      *float64  `json:"price,omitempty"`
	OrderType  OrderType `json:"order_type"`
	ReduceOnly bool      `json:"reduce_only,omitempty"`
}

// MultiLegIntent is the durable record of a desired multi-leg trade. This
// core creates it exactly once in pending status; every later status
// transition belongs to the external OMS. The pair (TenantID,
// IdempotencyKey) is unique.
type MultiLegIntent struct {
	TenantID       string                   `json:"tenant_id"`
	IntentID       string                   `json:"intent_id"`
	Legs           map[string]LegDefinition `json:"legs"`
	Status         IntentStatus             `json:"status"`
	IdempotencyKey string                   `json:"idempotency_key"`
	CreatedAt      time.Time                `json:"created_at"`
}
