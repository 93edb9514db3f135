package handler

import (
	"net/http"
	"testing"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotScanFiltersAndRanks(t *testing.T) {
	h := newHarness(t)
	h.oppRepo.spreads = []model.ArbitrageOpportunity{
		{ID: "wide", Symbol: "BTC-USD", NetEdgeBps: 25},
		{ID: "thin", Symbol: "ETH-USD", NetEdgeBps: 3},
	}

	w := h.do(t, http.MethodPost, "/v1/spot/scan", map[string]interface{}{"min_spread_bps": 10})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	opps := data["opportunities"].([]interface{})
	require.Len(t, opps, 1)
	assert.Equal(t, "wide", opps[0].(map[string]interface{})["id"])
}

func TestSpotScanRejectsOutOfRangeParams(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/v1/spot/scan", map[string]interface{}{
		"min_spread_bps": -5,
		"limit":          500,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	code, details := decodeError(t, w)
	assert.Equal(t, "VALIDATION_FAILED", code)
	assert.Len(t, details, 2)
}

func TestSpotExecuteCreatesPendingIntent(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/v1/spot/execute", map[string]interface{}{
		"symbol":          "BTC-USD",
		"buy_venue":       "kraken",
		"sell_venue":      "coinbase",
		"size":            0.5,
		"idempotency_key": "order-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "pending", data["status"])
	assert.NotEmpty(t, data["intent_id"])

	legs := data["legs"].(map[string]interface{})
	buy := legs["buy_leg"].(map[string]interface{})
	sell := legs["sell_leg"].(map[string]interface{})
	assert.Equal(t, "kraken", buy["venue"])
	assert.Equal(t, "buy", buy["side"])
	assert.Equal(t, "coinbase", sell["venue"])
	assert.Equal(t, "sell", sell["side"])
	assert.Equal(t, 1, h.intentRepo.count())
}

func TestSpotExecuteDuplicateReturnsSameIntent(t *testing.T) {
	h := newHarness(t)
	body := map[string]interface{}{
		"symbol":          "BTC-USD",
		"buy_venue":       "kraken",
		"sell_venue":      "coinbase",
		"size":            0.5,
		"idempotency_key": "order-1",
	}

	first := decodeData(t, h.do(t, http.MethodPost, "/v1/spot/execute", body))
	second := decodeData(t, h.do(t, http.MethodPost, "/v1/spot/execute", body))

	assert.Equal(t, first["intent_id"], second["intent_id"])
	assert.Equal(t, "duplicate", second["status"])
	assert.Equal(t, 1, h.intentRepo.count())
}

func TestSpotExecuteReportsAllViolations(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/v1/spot/execute", map[string]interface{}{
		"symbol":     "btc usd!!",
		"buy_venue":  "kraken",
		"sell_venue": "kraken",
		"size":       -1,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	code, details := decodeError(t, w)
	assert.Equal(t, "VALIDATION_FAILED", code)
	require.Len(t, details, 3)
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.(map[string]interface{})["field"].(string))
	}
	assert.ElementsMatch(t, []string{"symbol", "size", "sell_venue"}, fields)
	assert.Equal(t, 0, h.intentRepo.count())
}

func TestSpotExecuteBlockedByKillSwitch(t *testing.T) {
	h := newHarness(t)
	activateGlobalKillSwitch(h, "exchange outage")

	w := h.do(t, http.MethodPost, "/v1/spot/execute", map[string]interface{}{
		"symbol":     "BTC-USD",
		"buy_venue":  "kraken",
		"sell_venue": "coinbase",
		"size":       0.5,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	code, _ := decodeError(t, w)
	assert.Equal(t, "TRADING_HALTED", code)
	assert.Equal(t, 0, h.intentRepo.count())
}

func TestSpotQuotesRejectsBadInstrumentID(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/v1/spot/quotes/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "VALIDATION_FAILED", code)
}

func TestSpotStatusReportsKillSwitchAndPnl(t *testing.T) {
	h := newHarness(t)
	activateGlobalKillSwitch(h, "maintenance")

	w := h.do(t, http.MethodGet, "/v1/spot/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	ks := data["kill_switch"].(map[string]interface{})
	assert.Equal(t, true, ks["active"])
	assert.Equal(t, "maintenance", ks["reason"])
	assert.Contains(t, data, "pnl_today")
}

func TestSpotPnlRejectsMalformedDates(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/v1/spot/pnl?start_date=31-08-2026", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "VALIDATION_FAILED", code)
}
