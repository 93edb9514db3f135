package handler

import (
	"github.com/arbdesk/arbgate/internal/config"
	"github.com/arbdesk/arbgate/internal/middleware"
	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/service"
	"github.com/arbdesk/arbgate/internal/validate"
	"github.com/gin-gonic/gin"
)

// SpotHandler serves the cross-exchange spot action family. Each action is
// its own route and typed request; adding one is a compile-time change.
type SpotHandler struct {
	scanner *service.SpotScanner
	gate    *service.KillSwitchGate
	factory *service.IntentFactory
	pnl     *service.PnlAggregator
	audit   *service.AuditService
	scanCfg config.ScanConfig
}

func NewSpotHandler(scanner *service.SpotScanner, gate *service.KillSwitchGate, factory *service.IntentFactory, pnl *service.PnlAggregator, audit *service.AuditService, scanCfg config.ScanConfig) *SpotHandler {
	return &SpotHandler{
		scanner: scanner,
		gate:    gate,
		factory: factory,
		pnl:     pnl,
		audit:   audit,
		scanCfg: scanCfg,
	}
}

type SpotScanRequest struct {
	MinSpreadBps *float64 `json:"min_spread_bps"`
	Limit        *int     `json:"limit"`
}

func (h *SpotHandler) Scan(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var req SpotScanRequest
	if !bindJSON(c, &req) {
		return
	}

	var col validate.Collector
	params := service.ScanParams{MinSpreadBps: 0, Limit: h.scanCfg.DefaultLimit}
	if req.MinSpreadBps != nil {
		params.MinSpreadBps = col.Number(*req.MinSpreadBps, "min_spread_bps", validate.NumberOpts{Min: validate.Bound(0)})
	}
	if req.Limit != nil {
		params.Limit = int(col.Number(float64(*req.Limit), "limit", validate.NumberOpts{
			Min: validate.Bound(1),
			Max: validate.Bound(float64(h.scanCfg.MaxLimit)),
		}))
	}
	if !col.OK() {
		failValidation(c, col.Errors())
		return
	}

	result, err := h.scanner.Scan(c.Request.Context(), tenant, params)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, result)
}

func (h *SpotHandler) GetQuotes(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var col validate.Collector
	instrumentID := col.UUID(c.Param("instrument_id"), "instrument_id")
	venueID := col.OptionalUUID(c.Query("venue_id"), "venue_id")
	if !col.OK() {
		failValidation(c, col.Errors())
		return
	}

	quotes, err := h.scanner.Quotes(c.Request.Context(), tenant, instrumentID, venueID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"quotes": quotes})
}

type SpotExecuteRequest struct {
	OpportunityID  string  `json:"opportunity_id"`
	Symbol         string  `json:"symbol"`
	BuyVenue       string  `json:"buy_venue"`
	SellVenue      string  `json:"sell_venue"`
	Size           float64 `json:"size"`
	IdempotencyKey string  `json:"idempotency_key"`
}

func (h *SpotHandler) Execute(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var req SpotExecuteRequest
	if !bindJSON(c, &req) {
		return
	}

	var col validate.Collector
	in := service.CrossExchangeInput{
		OpportunityID:  col.OptionalUUID(req.OpportunityID, "opportunity_id"),
		Symbol:         col.Symbol(req.Symbol, "symbol"),
		BuyVenue:       validate.Sanitize(req.BuyVenue, 64),
		SellVenue:      validate.Sanitize(req.SellVenue, 64),
		Size:           col.Number(req.Size, "size", validate.NumberOpts{Min: validate.Bound(1e-9)}),
		IdempotencyKey: validate.Sanitize(req.IdempotencyKey, 128),
	}
	if in.BuyVenue == "" {
		col.Addf("buy_venue", "buy_venue is required")
	}
	if in.SellVenue == "" {
		col.Addf("sell_venue", "sell_venue is required")
	}
	if in.BuyVenue != "" && in.BuyVenue == in.SellVenue {
		col.Addf("sell_venue", "sell_venue must differ from buy_venue")
	}
	if !col.OK() {
		failValidation(c, col.Errors())
		return
	}

	// The interlock runs after validation and strictly before any write.
	if err := h.gate.AssertTradingAllowed(c.Request.Context(), tenant.TenantID); err != nil {
		h.audit.Record(&model.AuditEvent{
			TenantID:     tenant.TenantID,
			UserID:       tenant.UserID,
			Action:       "intent_blocked_kill_switch",
			ResourceType: "trade_intent",
			AfterState:   map[string]interface{}{"operation": service.OpCrossExchange, "symbol": in.Symbol},
		})
		fail(c, err)
		return
	}

	result, err := h.factory.CreateCrossExchange(c.Request.Context(), tenant, in)
	if err != nil {
		fail(c, err)
		return
	}

	if result.Status != service.StatusDuplicate {
		h.audit.Record(&model.AuditEvent{
			TenantID:     tenant.TenantID,
			UserID:       tenant.UserID,
			Action:       "spot_arb_intent_created",
			ResourceType: "trade_intent",
			ResourceID:   result.IntentID,
			AfterState: map[string]interface{}{
				"opportunity_id": in.OpportunityID,
				"symbol":         in.Symbol,
				"buy_venue":      in.BuyVenue,
				"sell_venue":     in.SellVenue,
				"size":           in.Size,
				"legs":           result.Legs,
				"status":         result.Status,
			},
		})
	}
	respond(c, result)
}

func (h *SpotHandler) GetPnl(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var col validate.Collector
	from := col.OptionalDate(c.Query("start_date"), "start_date")
	to := col.OptionalDate(c.Query("end_date"), "end_date")
	if !col.OK() {
		failValidation(c, col.Errors())
		return
	}

	report, err := h.pnl.Report(c.Request.Context(), tenant, from, to)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, report)
}

func (h *SpotHandler) GetInventory(c *gin.Context) {
	tenant := middleware.Tenant(c)

	items, err := h.pnl.Inventory(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"inventory": items})
}

// Status reports the effective kill switch plus today's PnL summary.
func (h *SpotHandler) Status(c *gin.Context) {
	tenant := middleware.Tenant(c)

	state, err := h.gate.State(c.Request.Context(), tenant.TenantID)
	if err != nil {
		fail(c, err)
		return
	}
	report, err := h.pnl.TodayReport(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{
		"kill_switch": state,
		"pnl_today":   report.Summary,
	})
}
