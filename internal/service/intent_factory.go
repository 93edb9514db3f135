package service

import (
	"context"
	"fmt"
	"time"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/pkg/metrics"
	"github.com/google/uuid"
)

// IntentRepo is the insert-if-absent capability the idempotency guarantee
// rests on. Implementations must enforce uniqueness of (tenant id,
// idempotency key) and report the existing intent id on a duplicate instead
// of surfacing a constraint error.
type IntentRepo interface {
	InsertIfAbsent(ctx context.Context, intent *model.MultiLegIntent) (created bool, existingID string, err error)
}

// IntentResult is what the caller gets back. Duplicate submissions are
// success-shaped: the underlying action already happened.
type IntentResult struct {
	IntentID string                         `json:"intent_id"`
	Status   string                         `json:"status"` // pending | duplicate
	Legs     map[string]model.LegDefinition `json:"legs"`
}

const (
	StatusDuplicate = "duplicate"

	OpCrossExchange = "cross_exchange"
	OpBasisArb      = "basis_arb"
	OpBasisClose    = "basis_close"
)

// IntentFactory builds multi-leg intents and hands them to the store. It
// never guesses missing leg fields; inputs are validated before they reach
// the factory.
type IntentFactory struct {
	repo IntentRepo
}

func NewIntentFactory(repo IntentRepo) *IntentFactory {
	return &IntentFactory{repo: repo}
}

// DeriveIdempotencyKey buckets the "same" user action to one key: retries
// within the bucket collapse, genuinely different actions diverge.
func DeriveIdempotencyKey(operation, symbol string, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", operation, symbol, at.UTC().Unix()/60)
}

type CrossExchangeInput struct {
	OpportunityID  string
	Symbol         string
	BuyVenue       string
	SellVenue      string
	Size           float64
	IdempotencyKey string
}

// CreateCrossExchange builds the two-leg spot intent: a buy on one venue
// and a sell of the same size on the other.
func (f *IntentFactory) CreateCrossExchange(ctx context.Context, tenant *model.TenantContext, in CrossExchangeInput) (*IntentResult, error) {
	legs := map[string]model.LegDefinition{
		"buy_leg": {
			Venue:     in.BuyVenue,
			Symbol:    in.Symbol,
			Side:      model.SideBuy,
			Size:      in.Size,
			OrderType: model.OrderTypeMarket,
		},
		"sell_leg": {
			Venue:     in.SellVenue,
			Symbol:    in.Symbol,
			Side:      model.SideSell,
			Size:      in.Size,
			OrderType: model.OrderTypeMarket,
		},
	}
	key := in.IdempotencyKey
	if key == "" {
		key = DeriveIdempotencyKey(OpCrossExchange, in.Symbol, time.Now())
	}
	return f.create(ctx, tenant, OpCrossExchange, key, legs)
}

type BasisArbInput struct {
	OpportunityID  string
	Symbol         string
	Direction      model.BasisDirection
	SpotVenue      string
	PerpVenue      string
	SpotSize       float64
	PerpSize       float64
	IdempotencyKey string
}

// CreateBasisArb builds the spot+perp pair. long_spot_short_perp buys spot
// and sells the perp; the reverse direction flips both sides.
func (f *IntentFactory) CreateBasisArb(ctx context.Context, tenant *model.TenantContext, in BasisArbInput) (*IntentResult, error) {
	spotSide, perpSide := model.SideBuy, model.SideSell
	if in.Direction != model.LongSpotShortPerp {
		spotSide, perpSide = model.SideSell, model.SideBuy
	}

	legs := map[string]model.LegDefinition{
		"spot_leg": {
			Venue:     in.SpotVenue,
			Symbol:    in.Symbol,
			Side:      spotSide,
			Size:      in.SpotSize,
			OrderType: model.OrderTypeMarket,
		},
		"perp_leg": {
			Venue:     in.PerpVenue,
			Symbol:    in.Symbol,
			Side:      perpSide,
			Size:      in.PerpSize,
			OrderType: model.OrderTypeMarket,
		},
	}
	key := in.IdempotencyKey
	if key == "" {
		key = DeriveIdempotencyKey(OpBasisArb, in.Symbol, time.Now())
	}
	return f.create(ctx, tenant, OpBasisArb, key, legs)
}

// CreateBasisClose unwinds an open position: both legs reverse their entry
// sides, venues come from the position record and the perp leg is marked
// reduce-only.
func (f *IntentFactory) CreateBasisClose(ctx context.Context, tenant *model.TenantContext, pos *model.BasisPosition) (*IntentResult, error) {
	spotSide, perpSide := model.SideSell, model.SideBuy
	if pos.Direction != model.LongSpotShortPerp {
		spotSide, perpSide = model.SideBuy, model.SideSell
	}

	legs := map[string]model.LegDefinition{
		"spot_leg": {
			Venue:     pos.SpotVenue,
			Symbol:    pos.Symbol,
			Side:      spotSide,
			Size:      pos.SpotSize,
			OrderType: model.OrderTypeMarket,
		},
		"perp_leg": {
			Venue:      pos.PerpVenue,
			Symbol:     pos.Symbol,
			Side:       perpSide,
			Size:       pos.PerpSize,
			OrderType:  model.OrderTypeMarket,
			ReduceOnly: true,
		},
	}
	key := DeriveIdempotencyKey(OpBasisClose, pos.ID, time.Now())
	return f.create(ctx, tenant, OpBasisClose, key, legs)
}

func (f *IntentFactory) create(ctx context.Context, tenant *model.TenantContext, operation, idempotencyKey string, legs map[string]model.LegDefinition) (*IntentResult, error) {
	if tenant == nil || tenant.TenantID == "" {
		return nil, fmt.Errorf("intent factory: tenant id is required")
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("intent factory: at least one leg is required")
	}

	intent := &model.MultiLegIntent{
		TenantID:       tenant.TenantID,
		IntentID:       uuid.New().String(),
		Legs:           legs,
		Status:         model.IntentPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	created, existingID, err := f.repo.InsertIfAbsent(ctx, intent)
	if err != nil {
		return nil, err
	}

	if !created {
		metrics.IntentsTotal.WithLabelValues(operation, "duplicate").Inc()
		return &IntentResult{IntentID: existingID, Status: StatusDuplicate, Legs: legs}, nil
	}

	metrics.IntentsTotal.WithLabelValues(operation, "created").Inc()
	return &IntentResult{IntentID: intent.IntentID, Status: string(model.IntentPending), Legs: legs}, nil
}
