package handler

import (
	"context"

	"github.com/arbdesk/arbgate/internal/config"
	"github.com/arbdesk/arbgate/internal/middleware"
	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/service"
	"github.com/arbdesk/arbgate/internal/validate"
	"github.com/gin-gonic/gin"
)

// PositionRepo is the tenant-scoped position read the close flow needs.
type PositionRepo interface {
	Get(ctx context.Context, tenantID, positionID string) (*model.BasisPosition, error)
	ListOpen(ctx context.Context, tenantID string) ([]model.BasisPosition, error)
}

// BasisHandler serves the funding/basis action family.
type BasisHandler struct {
	scanner   *service.BasisScanner
	gate      *service.KillSwitchGate
	factory   *service.IntentFactory
	pnl       *service.PnlAggregator
	audit     *service.AuditService
	positions PositionRepo
	scanCfg   config.ScanConfig
}

func NewBasisHandler(scanner *service.BasisScanner, gate *service.KillSwitchGate, factory *service.IntentFactory, pnl *service.PnlAggregator, audit *service.AuditService, positions PositionRepo, scanCfg config.ScanConfig) *BasisHandler {
	return &BasisHandler{
		scanner:   scanner,
		gate:      gate,
		factory:   factory,
		pnl:       pnl,
		audit:     audit,
		positions: positions,
		scanCfg:   scanCfg,
	}
}

type BasisScanRequest struct {
	MinBasisBps *float64 `json:"min_basis_bps"`
	Limit       *int     `json:"limit"`
}

func (h *BasisHandler) Scan(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var req BasisScanRequest
	if !bindJSON(c, &req) {
		return
	}

	var col validate.Collector
	params := service.BasisScanParams{MinBasisBps: 0, Limit: h.scanCfg.DefaultLimit}
	if req.MinBasisBps != nil {
		params.MinBasisBps = col.Number(*req.MinBasisBps, "min_basis_bps", validate.NumberOpts{Min: validate.Bound(0)})
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

func (h *BasisHandler) GetFundingHistory(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var col validate.Collector
	instrumentID := col.UUID(c.Param("instrument_id"), "instrument_id")
	if !col.OK() {
		failValidation(c, col.Errors())
		return
	}

	history, err := h.scanner.FundingHistory(c.Request.Context(), tenant, instrumentID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"funding_rates": history})
}

type BasisExecuteRequest struct {
	OpportunityID  string  `json:"opportunity_id"`
	Symbol         string  `json:"symbol"`
	Direction      string  `json:"direction"`
	SpotVenue      string  `json:"spot_venue"`
	PerpVenue      string  `json:"perp_venue"`
	SpotSize       float64 `json:"spot_size"`
	PerpSize       float64 `json:"perp_size"`
	IdempotencyKey string  `json:"idempotency_key"`
}

func (h *BasisHandler) Execute(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var req BasisExecuteRequest
	if !bindJSON(c, &req) {
		return
	}

	var col validate.Collector
	direction := col.Enum(req.Direction, "direction", string(model.LongSpotShortPerp), string(model.ShortSpotLongPerp))
	in := service.BasisArbInput{
		OpportunityID:  col.OptionalUUID(req.OpportunityID, "opportunity_id"),
		Symbol:         col.Symbol(req.Symbol, "symbol"),
		Direction:      model.BasisDirection(direction),
		SpotVenue:      validate.Sanitize(req.SpotVenue, 64),
		PerpVenue:      validate.Sanitize(req.PerpVenue, 64),
		SpotSize:       col.Number(req.SpotSize, "spot_size", validate.NumberOpts{Min: validate.Bound(1e-9)}),
		PerpSize:       col.Number(req.PerpSize, "perp_size", validate.NumberOpts{Min: validate.Bound(1e-9)}),
		IdempotencyKey: validate.Sanitize(req.IdempotencyKey, 128),
	}
	if in.SpotVenue == "" {
		col.Addf("spot_venue", "spot_venue is required")
	}
	if in.PerpVenue == "" {
		col.Addf("perp_venue", "perp_venue is required")
	}
	if !col.OK() {
		failValidation(c, col.Errors())
		return
	}

	if err := h.gate.AssertTradingAllowed(c.Request.Context(), tenant.TenantID); err != nil {
		h.audit.Record(&model.AuditEvent{
			TenantID:     tenant.TenantID,
			UserID:       tenant.UserID,
			Action:       "intent_blocked_kill_switch",
			ResourceType: "trade_intent",
			AfterState:   map[string]interface{}{"operation": service.OpBasisArb, "symbol": in.Symbol},
		})
		fail(c, err)
		return
	}

	result, err := h.factory.CreateBasisArb(c.Request.Context(), tenant, in)
	if err != nil {
		fail(c, err)
		return
	}

	if result.Status != service.StatusDuplicate {
		h.audit.Record(&model.AuditEvent{
			TenantID:     tenant.TenantID,
			UserID:       tenant.UserID,
			Action:       "basis_arb_intent_created",
			ResourceType: "trade_intent",
			ResourceID:   result.IntentID,
			AfterState: map[string]interface{}{
				"opportunity_id": in.OpportunityID,
				"symbol":         in.Symbol,
				"direction":      string(in.Direction),
				"spot_venue":     in.SpotVenue,
				"perp_venue":     in.PerpVenue,
				"spot_size":      in.SpotSize,
				"perp_size":      in.PerpSize,
				"legs":           result.Legs,
				"status":         result.Status,
			},
		})
	}
	respond(c, result)
}

func (h *BasisHandler) GetPositions(c *gin.Context) {
	tenant := middleware.Tenant(c)

	positions, err := h.positions.ListOpen(c.Request.Context(), tenant.TenantID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"positions": positions})
}

// ClosePosition builds a reduce-only unwind intent. Ownership of the
// client-supplied position id is re-checked by the tenant-scoped read;
// venues come from the stored position, never from the request.
func (h *BasisHandler) ClosePosition(c *gin.Context) {
	tenant := middleware.Tenant(c)

	var col validate.Collector
	positionID := col.UUID(c.Param("id"), "position_id")
	if !col.OK() {
		failValidation(c, col.Errors())
		return
	}

	pos, err := h.positions.Get(c.Request.Context(), tenant.TenantID, positionID)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.gate.AssertTradingAllowed(c.Request.Context(), tenant.TenantID); err != nil {
		h.audit.Record(&model.AuditEvent{
			TenantID:     tenant.TenantID,
			UserID:       tenant.UserID,
			Action:       "intent_blocked_kill_switch",
			ResourceType: "basis_position",
			ResourceID:   pos.ID,
			AfterState:   map[string]interface{}{"operation": service.OpBasisClose, "symbol": pos.Symbol},
		})
		fail(c, err)
		return
	}

	result, err := h.factory.CreateBasisClose(c.Request.Context(), tenant, pos)
	if err != nil {
		fail(c, err)
		return
	}

	if result.Status != service.StatusDuplicate {
		h.audit.Record(&model.AuditEvent{
			TenantID:     tenant.TenantID,
			UserID:       tenant.UserID,
			Action:       "basis_position_close_intent_created",
			ResourceType: "trade_intent",
			ResourceID:   result.IntentID,
			AfterState: map[string]interface{}{
				"position_id": pos.ID,
				"symbol":      pos.Symbol,
				"direction":   string(pos.Direction),
				"spot_venue":  pos.SpotVenue,
				"perp_venue":  pos.PerpVenue,
				"legs":        result.Legs,
				"status":      result.Status,
			},
		})
	}
	respond(c, result)
}

func (h *BasisHandler) GetPnl(c *gin.Context) {
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
