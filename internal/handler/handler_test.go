package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/arbdesk/arbgate/internal/config"
	"github.com/arbdesk/arbgate/internal/middleware"
	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/repository"
	"github.com/arbdesk/arbgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testTenant = &model.TenantContext{UserID: "user-1", TenantID: "tenant-a", Email: "a@example.com"}

type fakeOppRepo struct {
	spreads []model.ArbitrageOpportunity
	quotes  []model.Quote
}

func (r *fakeOppRepo) ListSpreads(_ context.Context, tenantID string, minEdgeBps float64, limit int) ([]model.ArbitrageOpportunity, error) {
	if tenantID != testTenant.TenantID {
		return nil, nil
	}
	out := []model.ArbitrageOpportunity{}
	for _, row := range r.spreads {
		if row.NetEdgeBps >= minEdgeBps && len(out) < limit {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeOppRepo) ListQuotes(_ context.Context, tenantID, instrumentID, venueID string) ([]model.Quote, error) {
	if tenantID != testTenant.TenantID {
		return nil, nil
	}
	return r.quotes, nil
}

type fakeBasisRepo struct {
	rows  []model.BasisOpportunity
	rates map[string]model.FundingRate
}

func (r *fakeBasisRepo) ListBasis(_ context.Context, tenantID string, minBasisBps float64, limit int) ([]model.BasisOpportunity, error) {
	if tenantID != testTenant.TenantID {
		return nil, nil
	}
	out := []model.BasisOpportunity{}
	for _, row := range r.rows {
		if row.BasisBps >= minBasisBps && len(out) < limit {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeBasisRepo) LatestRates(_ context.Context, tenantID string, instrumentIDs []string) (map[string]model.FundingRate, error) {
	out := map[string]model.FundingRate{}
	for _, id := range instrumentIDs {
		if fr, ok := r.rates[id]; ok {
			out[id] = fr
		}
	}
	return out, nil
}

func (r *fakeBasisRepo) History(_ context.Context, tenantID, instrumentID string, limit int) ([]model.FundingRate, error) {
	return nil, nil
}

type fakeKSRepo struct {
	switches map[string]model.KillSwitchConfig
}

func (r *fakeKSRepo) Get(_ context.Context, scope string) (model.KillSwitchConfig, error) {
	return r.switches[scope], nil
}

type fakeIntentRepo struct {
	mu      sync.Mutex
	intents map[string]*model.MultiLegIntent
}

func newFakeIntentRepo() *fakeIntentRepo {
	return &fakeIntentRepo{intents: make(map[string]*model.MultiLegIntent)}
}

func (r *fakeIntentRepo) InsertIfAbsent(_ context.Context, intent *model.MultiLegIntent) (bool, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := intent.TenantID + "|" + intent.IdempotencyKey
	if existing, ok := r.intents[key]; ok {
		return false, existing.IntentID, nil
	}
	r.intents[key] = intent
	return true, intent.IntentID, nil
}

func (r *fakeIntentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.intents)
}

type fakePnlRepo struct {
	rows []model.PnlRow
}

func (r *fakePnlRepo) List(_ context.Context, tenantID string, from, to *time.Time, limit int) ([]model.PnlRow, error) {
	if tenantID != testTenant.TenantID {
		return nil, nil
	}
	return r.rows, nil
}

func (r *fakePnlRepo) ListInventory(_ context.Context, tenantID string) ([]model.InventoryItem, error) {
	return nil, nil
}

type fakePositionRepo struct {
	positions map[string]*model.BasisPosition
}

func (r *fakePositionRepo) Get(_ context.Context, tenantID, positionID string) (*model.BasisPosition, error) {
	pos, ok := r.positions[positionID]
	if !ok || pos.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return pos, nil
}

func (r *fakePositionRepo) ListOpen(_ context.Context, tenantID string) ([]model.BasisPosition, error) {
	out := []model.BasisPosition{}
	for _, pos := range r.positions {
		if pos.TenantID == tenantID && pos.Status == model.PositionOpen {
			out = append(out, *pos)
		}
	}
	return out, nil
}

// harness wires handlers over in-memory fakes behind a router that injects
// the tenant the way the auth middleware would.
type harness struct {
	router     *gin.Engine
	intentRepo *fakeIntentRepo
	ksRepo     *fakeKSRepo
	oppRepo    *fakeOppRepo
	basisRepo  *fakeBasisRepo
	posRepo    *fakePositionRepo
	audit      *service.AuditService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		intentRepo: newFakeIntentRepo(),
		ksRepo:     &fakeKSRepo{switches: map[string]model.KillSwitchConfig{}},
		oppRepo:    &fakeOppRepo{},
		basisRepo:  &fakeBasisRepo{rates: map[string]model.FundingRate{}},
		posRepo:    &fakePositionRepo{positions: map[string]*model.BasisPosition{}},
	}

	audit, err := service.NewAuditService(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(audit.Close)
	h.audit = audit

	gate := service.NewKillSwitchGate(h.ksRepo, nil, 0)
	factory := service.NewIntentFactory(h.intentRepo)
	pnl := service.NewPnlAggregator(&fakePnlRepo{})
	scanCfg := config.ScanConfig{DefaultLimit: 20, MaxLimit: 50}

	spot := NewSpotHandler(service.NewSpotScanner(h.oppRepo), gate, factory, pnl, audit, scanCfg)
	basis := NewBasisHandler(service.NewBasisScanner(h.basisRepo, 4.0, 10.0), gate, factory, pnl, audit, h.posRepo, scanCfg)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextTenantKey, testTenant)
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/spot/scan", spot.Scan)
		v1.GET("/spot/quotes/:instrument_id", spot.GetQuotes)
		v1.POST("/spot/execute", spot.Execute)
		v1.GET("/spot/pnl", spot.GetPnl)
		v1.GET("/spot/inventory", spot.GetInventory)
		v1.GET("/spot/status", spot.Status)

		v1.POST("/basis/scan", basis.Scan)
		v1.GET("/basis/funding/:instrument_id", basis.GetFundingHistory)
		v1.POST("/basis/execute", basis.Execute)
		v1.GET("/basis/positions", basis.GetPositions)
		v1.POST("/basis/positions/:id/close", basis.ClosePosition)
		v1.GET("/basis/pnl", basis.GetPnl)
	}

	h.router = r
	return h
}

func (h *harness) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, []interface{}) {
	t.Helper()
	var envelope struct {
		Error   string        `json:"error"`
		Code    string        `json:"code"`
		Details []interface{} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Code, envelope.Details
}

func activateGlobalKillSwitch(h *harness, reason string) {
	h.ksRepo.switches[model.KillSwitchScopeGlobal] = model.KillSwitchConfig{Active: true, Reason: reason}
}
