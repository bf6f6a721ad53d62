package core

import (
	"fmt"
	"unicode"

	"github.com/shopspring/decimal"
)

// Funding rule constants. The threshold and both derived amounts are US
// dollars; income data outside USD never reaches these rules in practice.
var (
	HighIncomeThreshold = NewUSD(decimal.New(10_000_000_000, 0))
	HighIncomeRate      = decimal.RequireFromString("0.1233")
	LowIncomeRate       = decimal.RequireFromString("0.2151")
	VowelBonus          = decimal.RequireFromString("0.15")
	DeclinePenalty      = decimal.RequireFromString("0.25")
)

// RequiredYears are the fiscal years a company must report to be eligible.
var RequiredYears = []int{2018, 2019, 2020, 2021, 2022}

// FundingCalculation is the derived read-model row for one company. It is
// recomputed on every read and never persisted.
type FundingCalculation struct {
	CompanyID              int64           `json:"id"`
	CompanyName            string          `json:"name"`
	StandardFundableAmount decimal.Decimal `json:"standardFundableAmount"`
	SpecialFundableAmount  decimal.Decimal `json:"specialFundableAmount"`
}

// IsEligibleForFunding reports whether the company reported every required
// year and had strictly positive income in both 2021 and 2022.
func (c *Company) IsEligibleForFunding() bool {
	for _, year := range RequiredYears {
		if _, ok := c.incomes[year]; !ok {
			return false
		}
	}
	return c.incomes[2021].Amount.IsPositive() && c.incomes[2022].Amount.IsPositive()
}

// StandardFundableAmount derives the base fundable figure: the maximum income
// among the required years, scaled by the high rate at or above the $10B
// threshold and by the low rate below it. Ineligible companies get Zero.
func (c *Company) StandardFundableAmount() (Money, error) {
	if !c.IsEligibleForFunding() {
		return Zero(), nil
	}

	max := c.incomes[RequiredYears[0]].Amount
	for _, year := range RequiredYears[1:] {
		amount := c.incomes[year].Amount
		greater, err := amount.GreaterThan(max)
		if err != nil {
			return Money{}, fmt.Errorf("select max income: %w", err)
		}
		if greater {
			max = amount
		}
	}

	high, err := max.GreaterThanOrEqual(HighIncomeThreshold)
	if err != nil {
		return Money{}, fmt.Errorf("compare against threshold: %w", err)
	}
	if high {
		return max.Mul(HighIncomeRate), nil
	}
	return max.Mul(LowIncomeRate), nil
}

// SpecialFundableAmount applies the name and decline modifiers to a standard
// amount. Both deltas are computed from the original standard figure, so a
// vowel bonus and a decline penalty can apply in the same calculation. The
// result may be negative; no floor is applied.
func (c *Company) SpecialFundableAmount(standard Money) (Money, error) {
	result := standard

	if startsWithVowel(c.Name) {
		var err error
		result, err = result.Add(standard.Mul(VowelBonus))
		if err != nil {
			return Money{}, fmt.Errorf("apply vowel bonus: %w", err)
		}
	}

	in2021, ok2021 := c.incomes[2021]
	in2022, ok2022 := c.incomes[2022]
	if ok2021 && ok2022 {
		declined, err := in2022.Amount.LessThan(in2021.Amount)
		if err != nil {
			return Money{}, fmt.Errorf("detect income decline: %w", err)
		}
		if declined {
			result, err = result.Sub(standard.Mul(DeclinePenalty))
			if err != nil {
				return Money{}, fmt.Errorf("apply decline penalty: %w", err)
			}
		}
	}

	return result, nil
}

// CalculateFunding computes both fundable amounts from the company's current
// state, rounded to 2 decimal places (half away from zero).
func (c *Company) CalculateFunding() (FundingCalculation, error) {
	standard, err := c.StandardFundableAmount()
	if err != nil {
		return FundingCalculation{}, fmt.Errorf("standard fundable amount for cik %d: %w", c.CIK, err)
	}
	special, err := c.SpecialFundableAmount(standard)
	if err != nil {
		return FundingCalculation{}, fmt.Errorf("special fundable amount for cik %d: %w", c.CIK, err)
	}

	return FundingCalculation{
		CompanyID:              c.ID,
		CompanyName:            c.Name,
		StandardFundableAmount: standard.Round(2).Amount,
		SpecialFundableAmount:  special.Round(2).Amount,
	}, nil
}

func startsWithVowel(name string) bool {
	for _, r := range name {
		switch unicode.ToUpper(r) {
		case 'A', 'E', 'I', 'O', 'U':
			return true
		}
		return false
	}
	return false
}
