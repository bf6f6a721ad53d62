package services

import (
	"context"
	"fmt"

	"github.com/cleberMargarida/fora-financial/internal/core"
)

// CompanyLister loads persisted companies, optionally filtered by name prefix.
type CompanyLister interface {
	GetAll(ctx context.Context, namePrefix string) ([]*core.Company, error)
}

// FundingService computes fundable amounts over the persisted companies.
type FundingService struct {
	companies CompanyLister
}

func NewFundingService(companies CompanyLister) *FundingService {
	return &FundingService{companies: companies}
}

// List returns a funding calculation for every company whose name starts with
// the given prefix (case-sensitive, empty matches all), ordered by company id
// ascending. Ineligible companies are included with zero amounts.
func (s *FundingService) List(ctx context.Context, namePrefix string) ([]core.FundingCalculation, error) {
	companies, err := s.companies.GetAll(ctx, namePrefix)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	out := make([]core.FundingCalculation, 0, len(companies))
	for _, c := range companies {
		calc, err := c.CalculateFunding()
		if err != nil {
			return nil, fmt.Errorf("calculate funding for company %d: %w", c.ID, err)
		}
		out = append(out, calc)
	}
	return out, nil
}
