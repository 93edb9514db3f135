package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memIntentRepo enforces the (tenant, idempotency key) uniqueness the same
// way the postgres constraint does.
type memIntentRepo struct {
	mu    sync.Mutex
	byKey map[string]*model.MultiLegIntent
}

func newMemIntentRepo() *memIntentRepo {
	return &memIntentRepo{byKey: make(map[string]*model.MultiLegIntent)}
}

func (r *memIntentRepo) InsertIfAbsent(_ context.Context, intent *model.MultiLegIntent) (bool, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := intent.TenantID + "|" + intent.IdempotencyKey
	if existing, ok := r.byKey[k]; ok {
		return false, existing.IntentID, nil
	}
	cp := *intent
	r.byKey[k] = &cp
	return true, intent.IntentID, nil
}

func (r *memIntentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

var testTenant = &model.TenantContext{UserID: "user-1", TenantID: "tenant-a"}

func TestCreateCrossExchangeBuildsOppositeLegs(t *testing.T) {
	repo := newMemIntentRepo()
	factory := NewIntentFactory(repo)

	result, err := factory.CreateCrossExchange(context.Background(), testTenant, CrossExchangeInput{
		Symbol:         "BTC-USD",
		BuyVenue:       "binance",
		SellVenue:      "kraken",
		Size:           0.5,
		IdempotencyKey: "k-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.IntentPending), result.Status)
	assert.NotEmpty(t, result.IntentID)

	require.Len(t, result.Legs, 2)
	buy := result.Legs["buy_leg"]
	sell := result.Legs["sell_leg"]
	assert.Equal(t, model.SideBuy, buy.Side)
	assert.Equal(t, "binance", buy.Venue)
	assert.Equal(t, model.SideSell, sell.Side)
	assert.Equal(t, "kraken", sell.Venue)
	assert.Equal(t, buy.Size, sell.Size)
}

func TestCreateIntentIsIdempotent(t *testing.T) {
	repo := newMemIntentRepo()
	factory := NewIntentFactory(repo)

	in := CrossExchangeInput{
		Symbol:         "ETH-USD",
		BuyVenue:       "okx",
		SellVenue:      "bybit",
		Size:           2,
		IdempotencyKey: "retry-key",
	}

	first, err := factory.CreateCrossExchange(context.Background(), testTenant, in)
	require.NoError(t, err)

	second, err := factory.CreateCrossExchange(context.Background(), testTenant, in)
	require.NoError(t, err)

	assert.Equal(t, first.IntentID, second.IntentID)
	assert.Equal(t, StatusDuplicate, second.Status)
	assert.Equal(t, 1, repo.count())
}

func TestSameKeyDifferentTenantsCreateDistinctIntents(t *testing.T) {
	repo := newMemIntentRepo()
	factory := NewIntentFactory(repo)

	in := CrossExchangeInput{Symbol: "BTC-USD", BuyVenue: "a", SellVenue: "b", Size: 1, IdempotencyKey: "shared"}

	first, err := factory.CreateCrossExchange(context.Background(), testTenant, in)
	require.NoError(t, err)

	other := &model.TenantContext{UserID: "user-2", TenantID: "tenant-b"}
	second, err := factory.CreateCrossExchange(context.Background(), other, in)
	require.NoError(t, err)

	assert.NotEqual(t, first.IntentID, second.IntentID)
	assert.Equal(t, 2, repo.count())
}

func TestCreateBasisArbDirections(t *testing.T) {
	repo := newMemIntentRepo()
	factory := NewIntentFactory(repo)

	result, err := factory.CreateBasisArb(context.Background(), testTenant, BasisArbInput{
		Symbol:         "BTC-USD",
		Direction:      model.LongSpotShortPerp,
		SpotVenue:      "coinbase",
		PerpVenue:      "deribit",
		SpotSize:       1,
		PerpSize:       1,
		IdempotencyKey: "b-1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SideBuy, result.Legs["spot_leg"].Side)
	assert.Equal(t, model.SideSell, result.Legs["perp_leg"].Side)
	assert.False(t, result.Legs["perp_leg"].ReduceOnly)

	reversed, err := factory.CreateBasisArb(context.Background(), testTenant, BasisArbInput{
		Symbol:         "BTC-USD",
		Direction:      model.ShortSpotLongPerp,
		SpotVenue:      "coinbase",
		PerpVenue:      "deribit",
		SpotSize:       1,
		PerpSize:       1,
		IdempotencyKey: "b-2",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SideSell, reversed.Legs["spot_leg"].Side)
	assert.Equal(t, model.SideBuy, reversed.Legs["perp_leg"].Side)
}

func TestCreateBasisCloseUsesPositionVenues(t *testing.T) {
	repo := newMemIntentRepo()
	factory := NewIntentFactory(repo)

	pos := &model.BasisPosition{
		ID:        "5f0c28aa-6a3f-4f0e-9c34-6a8c2f1d9b11",
		TenantID:  testTenant.TenantID,
		Symbol:    "BTC-USD",
		Direction: model.LongSpotShortPerp,
		SpotVenue: "coinbase",
		PerpVenue: "deribit",
		SpotSize:  1.5,
		PerpSize:  1.5,
		Status:    model.PositionOpen,
	}

	result, err := factory.CreateBasisClose(context.Background(), testTenant, pos)
	require.NoError(t, err)

	spot := result.Legs["spot_leg"]
	perp := result.Legs["perp_leg"]
	// entry sides reversed, venues resolved from the position record
	assert.Equal(t, model.SideSell, spot.Side)
	assert.Equal(t, "coinbase", spot.Venue)
	assert.Equal(t, model.SideBuy, perp.Side)
	assert.Equal(t, "deribit", perp.Venue)
	assert.True(t, perp.ReduceOnly)
	assert.False(t, spot.ReduceOnly)
}

func TestDeriveIdempotencyKey(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 30, 15, 0, time.UTC)

	// stable within the same bucket, distinct across actions
	assert.Equal(t,
		DeriveIdempotencyKey(OpBasisArb, "BTC-USD", at),
		DeriveIdempotencyKey(OpBasisArb, "BTC-USD", at.Add(30*time.Second)))
	assert.NotEqual(t,
		DeriveIdempotencyKey(OpBasisArb, "BTC-USD", at),
		DeriveIdempotencyKey(OpBasisArb, "ETH-USD", at))
	assert.NotEqual(t,
		DeriveIdempotencyKey(OpBasisArb, "BTC-USD", at),
		DeriveIdempotencyKey(OpCrossExchange, "BTC-USD", at))
	assert.NotEqual(t,
		DeriveIdempotencyKey(OpBasisArb, "BTC-USD", at),
		DeriveIdempotencyKey(OpBasisArb, "BTC-USD", at.Add(2*time.Minute)))
}

func TestCreateRequiresTenantAndLegs(t *testing.T) {
	factory := NewIntentFactory(newMemIntentRepo())

	_, err := factory.CreateCrossExchange(context.Background(), nil, CrossExchangeInput{Symbol: "BTC-USD"})
	assert.Error(t, err)

	_, err = factory.create(context.Background(), testTenant, OpCrossExchange, "k", nil)
	assert.Error(t, err)
}
