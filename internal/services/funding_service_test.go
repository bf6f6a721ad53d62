package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleberMargarida/fora-financial/internal/core"
)

type fakeLister struct {
	companies []*core.Company
	err       error
}

func (l *fakeLister) GetAll(_ context.Context, namePrefix string) ([]*core.Company, error) {
	if l.err != nil {
		return nil, l.err
	}
	if namePrefix == "" {
		return l.companies, nil
	}
	var out []*core.Company
	for _, c := range l.companies {
		if len(c.Name) >= len(namePrefix) && c.Name[:len(namePrefix)] == namePrefix {
			out = append(out, c)
		}
	}
	return out, nil
}

func fundedCompany(t *testing.T, id, cik int64, name string, amounts map[int]int64) *core.Company {
	t.Helper()
	c, err := core.NewCompany(cik, name)
	require.NoError(t, err)
	c.ID = id
	for year, amount := range amounts {
		inc, err := core.NewIncome(year, core.NewUSD(decimal.NewFromInt(amount)))
		require.NoError(t, err)
		c.AddIncome(inc)
	}
	return c
}

func TestFundingService_List(t *testing.T) {
	eligible := fundedCompany(t, 1, 100, "Ocean Corp", map[int]int64{
		2018: 1_000_000_000,
		2019: 2_000_000_000,
		2020: 3_000_000_000,
		2021: 4_000_000_000,
		2022: 5_000_000_000,
	})
	// Missing 2018, so never eligible.
	ineligible := fundedCompany(t, 2, 200, "Gap Industries", map[int]int64{
		2019: 1_000_000_000,
		2020: 1_000_000_000,
		2021: 1_000_000_000,
		2022: 1_000_000_000,
	})

	svc := NewFundingService(&fakeLister{companies: []*core.Company{eligible, ineligible}})
	calcs, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, calcs, 2)

	assert.Equal(t, int64(1), calcs[0].CompanyID)
	assert.Equal(t, "Ocean Corp", calcs[0].CompanyName)
	assert.Equal(t, "1075500000.00", calcs[0].StandardFundableAmount.StringFixed(2))
	assert.Equal(t, "1236825000.00", calcs[0].SpecialFundableAmount.StringFixed(2))

	assert.Equal(t, int64(2), calcs[1].CompanyID)
	assert.True(t, calcs[1].StandardFundableAmount.IsZero())
	assert.True(t, calcs[1].SpecialFundableAmount.IsZero())
}

func TestFundingService_ListForwardsPrefix(t *testing.T) {
	a := fundedCompany(t, 1, 100, "Alpha Inc.", nil)
	b := fundedCompany(t, 2, 200, "Beta LLC", nil)

	svc := NewFundingService(&fakeLister{companies: []*core.Company{a, b}})
	calcs, err := svc.List(context.Background(), "Alpha")
	require.NoError(t, err)
	require.Len(t, calcs, 1)
	assert.Equal(t, "Alpha Inc.", calcs[0].CompanyName)
}

func TestFundingService_ListStorageError(t *testing.T) {
	svc := NewFundingService(&fakeLister{err: errors.New("disk gone")})
	_, err := svc.List(context.Background(), "")
	require.Error(t, err)
}
