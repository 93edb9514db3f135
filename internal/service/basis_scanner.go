package service

import (
	"context"
	"math"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/pkg/metrics"
)

// hoursPerYear converts an hourly funding rate to an annualized percentage.
const hoursPerYear = 24 * 365

type BasisRepo interface {
	ListBasis(ctx context.Context, tenantID string, minBasisBps float64, limit int) ([]model.BasisOpportunity, error)
	LatestRates(ctx context.Context, tenantID string, instrumentIDs []string) (map[string]model.FundingRate, error)
	History(ctx context.Context, tenantID, instrumentID string, limit int) ([]model.FundingRate, error)
}

type BasisScanParams struct {
	MinBasisBps float64
	Limit       int
}

type BasisScanResult struct {
	Opportunities []model.BasisOpportunity `json:"opportunities"`
	Actionable    int                      `json:"actionable"`
	Total         int                      `json:"total"`
}

// BasisScanner ranks funding/basis opportunities and enriches each with the
// latest funding rate for its instrument. Yield parameters come from
// configuration, not constants.
type BasisScanner struct {
	repo          BasisRepo
	feePctPoints  float64
	actionableAPY float64
}

func NewBasisScanner(repo BasisRepo, feePctPoints, actionableAPY float64) *BasisScanner {
	return &BasisScanner{
		repo:          repo,
		feePctPoints:  feePctPoints,
		actionableAPY: actionableAPY,
	}
}

// AnnualizeFunding converts an hourly funding rate to percent per year.
func AnnualizeFunding(hourlyRate float64) float64 {
	return hourlyRate * hoursPerYear * 100
}

// EstimateAPY is the absolute annualized funding yield minus the round-trip
// fee deduction in percentage points.
func (s *BasisScanner) EstimateAPY(fundingRateAnnualized float64) float64 {
	return math.Abs(fundingRateAnnualized) - s.feePctPoints
}

// Actionable reports whether an estimated APY clears the configured bar.
func (s *BasisScanner) Actionable(estimatedAPY float64) bool {
	return estimatedAPY > s.actionableAPY
}

func (s *BasisScanner) Scan(ctx context.Context, tenant *model.TenantContext, params BasisScanParams) (*BasisScanResult, error) {
	rows, err := s.repo.ListBasis(ctx, tenant.TenantID, params.MinBasisBps, params.Limit)
	if err != nil {
		return nil, err
	}

	// One batched funding lookup over the instrument-id set.
	instrumentIDs := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.InstrumentID]; ok {
			continue
		}
		seen[row.InstrumentID] = struct{}{}
		instrumentIDs = append(instrumentIDs, row.InstrumentID)
	}
	rates, err := s.repo.LatestRates(ctx, tenant.TenantID, instrumentIDs)
	if err != nil {
		return nil, err
	}

	actionable := 0
	for i := range rows {
		if fr, ok := rates[rows[i].InstrumentID]; ok {
			rows[i].FundingRate = fr.Rate
		}
		rows[i].FundingRateAnnualized = AnnualizeFunding(rows[i].FundingRate)
		rows[i].EstimatedApy = s.EstimateAPY(rows[i].FundingRateAnnualized)
		if s.Actionable(rows[i].EstimatedApy) {
			actionable++
		}
	}

	metrics.ScansTotal.WithLabelValues("basis").Inc()
	return &BasisScanResult{
		Opportunities: rows,
		Actionable:    actionable,
		Total:         len(rows),
	}, nil
}

func (s *BasisScanner) FundingHistory(ctx context.Context, tenant *model.TenantContext, instrumentID string) ([]model.FundingRate, error) {
	return s.repo.History(ctx, tenant.TenantID, instrumentID, 100)
}
