package service

import (
	"context"
	"time"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/shopspring/decimal"
)

type PnlRepo interface {
	List(ctx context.Context, tenantID string, from, to *time.Time, limit int) ([]model.PnlRow, error)
	ListInventory(ctx context.Context, tenantID string) ([]model.InventoryItem, error)
}

type PnlReport struct {
	Rows    []model.PnlRow   `json:"rows"`
	Summary model.PnlSummary `json:"summary"`
}

// PnlAggregator is a pure read: tenant-scoped rows, optionally
// date-filtered, summed component-wise. Sums run through decimal so a long
// row set does not accumulate float error.
type PnlAggregator struct {
	repo PnlRepo
}

func NewPnlAggregator(repo PnlRepo) *PnlAggregator {
	return &PnlAggregator{repo: repo}
}

func (a *PnlAggregator) Report(ctx context.Context, tenant *model.TenantContext, from, to *time.Time) (*PnlReport, error) {
	rows, err := a.repo.List(ctx, tenant.TenantID, from, to, 100)
	if err != nil {
		return nil, err
	}
	return &PnlReport{Rows: rows, Summary: Summarize(rows)}, nil
}

// TodayReport is the status-endpoint view: today's buckets only.
func (a *PnlAggregator) TodayReport(ctx context.Context, tenant *model.TenantContext) (*PnlReport, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return a.Report(ctx, tenant, &today, nil)
}

func (a *PnlAggregator) Inventory(ctx context.Context, tenant *model.TenantContext) ([]model.InventoryItem, error) {
	return a.repo.ListInventory(ctx, tenant.TenantID)
}

func Summarize(rows []model.PnlRow) model.PnlSummary {
	var realized, unrealized, funding, fees decimal.Decimal
	for _, row := range rows {
		realized = realized.Add(decimal.NewFromFloat(row.Realized))
		unrealized = unrealized.Add(decimal.NewFromFloat(row.Unrealized))
		funding = funding.Add(decimal.NewFromFloat(row.Funding))
		fees = fees.Add(decimal.NewFromFloat(row.Fees))
	}
	net := realized.Add(unrealized).Add(funding).Sub(fees)
	return model.PnlSummary{
		Realized:   realized.InexactFloat64(),
		Unrealized: unrealized.InexactFloat64(),
		Funding:    funding.InexactFloat64(),
		Fees:       fees.InexactFloat64(),
		Net:        net.InexactFloat64(),
	}
}
