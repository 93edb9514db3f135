package service

import (
	"context"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/pkg/metrics"
)

type OpportunityRepo interface {
	ListSpreads(ctx context.Context, tenantID string, minEdgeBps float64, limit int) ([]model.ArbitrageOpportunity, error)
	ListQuotes(ctx context.Context, tenantID, instrumentID, venueID string) ([]model.Quote, error)
}

type ScanParams struct {
	MinSpreadBps float64
	Limit        int
}

type ScanResult struct {
	Opportunities []model.ArbitrageOpportunity `json:"opportunities"`
}

// SpotScanner ranks cross-exchange spot opportunities. The store does the
// filtering and ordering; nothing is re-scored here.
type SpotScanner struct {
	repo OpportunityRepo
}

func NewSpotScanner(repo OpportunityRepo) *SpotScanner {
	return &SpotScanner{repo: repo}
}

func (s *SpotScanner) Scan(ctx context.Context, tenant *model.TenantContext, params ScanParams) (*ScanResult, error) {
	rows, err := s.repo.ListSpreads(ctx, tenant.TenantID, params.MinSpreadBps, params.Limit)
	if err != nil {
		return nil, err
	}
	metrics.ScansTotal.WithLabelValues("spot").Inc()
	return &ScanResult{Opportunities: rows}, nil
}

func (s *SpotScanner) Quotes(ctx context.Context, tenant *model.TenantContext, instrumentID, venueID string) ([]model.Quote, error) {
	return s.repo.ListQuotes(ctx, tenant.TenantID, instrumentID, venueID)
}
