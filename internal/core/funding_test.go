package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func companyWithIncomes(t *testing.T, name string, amounts map[int]string) *Company {
	t.Helper()
	c, err := NewCompany(12345, name)
	if err != nil {
		t.Fatal(err)
	}
	for year, amount := range amounts {
		inc, err := NewIncome(year, usd(amount))
		if err != nil {
			t.Fatal(err)
		}
		c.AddIncome(inc)
	}
	return c
}

func TestIsEligibleForFunding(t *testing.T) {
	cases := []struct {
		name    string
		amounts map[int]string
		want    bool
	}{
		{
			name:    "all years positive",
			amounts: map[int]string{2018: "1", 2019: "1", 2020: "1", 2021: "1", 2022: "1"},
			want:    true,
		},
		{
			name:    "missing required year",
			amounts: map[int]string{2018: "1", 2019: "1", 2020: "1", 2021: "1"},
			want:    false,
		},
		{
			name:    "no incomes at all",
			amounts: map[int]string{},
			want:    false,
		},
		{
			name:    "2021 not positive",
			amounts: map[int]string{2018: "1", 2019: "1", 2020: "1", 2021: "0", 2022: "1"},
			want:    false,
		},
		{
			name:    "2022 negative",
			amounts: map[int]string{2018: "1", 2019: "1", 2020: "1", 2021: "1", 2022: "-1"},
			want:    false,
		},
		{
			name:    "earlier years may be negative",
			amounts: map[int]string{2018: "-100", 2019: "-50", 2020: "1", 2021: "1", 2022: "1"},
			want:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := companyWithIncomes(t, "Acme", tc.amounts)
			if got := c.IsEligibleForFunding(); got != tc.want {
				t.Fatalf("eligible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCalculateFunding_IneligibleIsZero(t *testing.T) {
	c := companyWithIncomes(t, "Acme", map[int]string{2021: "100", 2022: "200"})
	calc, err := c.CalculateFunding()
	if err != nil {
		t.Fatal(err)
	}
	if !calc.StandardFundableAmount.IsZero() || !calc.SpecialFundableAmount.IsZero() {
		t.Fatalf("ineligible company: standard=%v special=%v, want zeros",
			calc.StandardFundableAmount, calc.SpecialFundableAmount)
	}
}

func TestCalculateFunding_OceanCorpScenario(t *testing.T) {
	// 2018..2022 = $1B..$5B, vowel name, income growing so no penalty.
	c := companyWithIncomes(t, "Ocean Corp", map[int]string{
		2018: "1000000000",
		2019: "2000000000",
		2020: "3000000000",
		2021: "4000000000",
		2022: "5000000000",
	})

	calc, err := c.CalculateFunding()
	if err != nil {
		t.Fatal(err)
	}
	wantStandard := decimal.RequireFromString("1075500000.00")
	wantSpecial := decimal.RequireFromString("1236825000.00")
	if !calc.StandardFundableAmount.Equal(wantStandard) {
		t.Fatalf("standard = %v, want %v", calc.StandardFundableAmount, wantStandard)
	}
	if !calc.SpecialFundableAmount.Equal(wantSpecial) {
		t.Fatalf("special = %v, want %v", calc.SpecialFundableAmount, wantSpecial)
	}
}

func TestCalculateFunding_HighIncomeRate(t *testing.T) {
	// Max income exactly at the $10B threshold uses the high rate.
	c := companyWithIncomes(t, "Zeta Corp", map[int]string{
		2018: "10000000000",
		2019: "1",
		2020: "1",
		2021: "1",
		2022: "2",
	})
	calc, err := c.CalculateFunding()
	if err != nil {
		t.Fatal(err)
	}
	want := decimal.RequireFromString("1233000000.00")
	if !calc.StandardFundableAmount.Equal(want) {
		t.Fatalf("standard = %v, want %v", calc.StandardFundableAmount, want)
	}
}

func TestCalculateFunding_DeclinePenalty(t *testing.T) {
	// Non-vowel name, 2022 below 2021: special = standard * 0.75.
	c := companyWithIncomes(t, "Zeta Corp", map[int]string{
		2018: "1000000000",
		2019: "1000000000",
		2020: "1000000000",
		2021: "4000000000",
		2022: "3000000000",
	})
	calc, err := c.CalculateFunding()
	if err != nil {
		t.Fatal(err)
	}
	// standard = 4e9 * 0.2151 = 860,400,000
	wantStandard := decimal.RequireFromString("860400000.00")
	wantSpecial := decimal.RequireFromString("645300000.00")
	if !calc.StandardFundableAmount.Equal(wantStandard) {
		t.Fatalf("standard = %v, want %v", calc.StandardFundableAmount, wantStandard)
	}
	if !calc.SpecialFundableAmount.Equal(wantSpecial) {
		t.Fatalf("special = %v, want %v", calc.SpecialFundableAmount, wantSpecial)
	}
}

func TestCalculateFunding_VowelAndDeclineAreIndependent(t *testing.T) {
	// Both modifiers apply off the base standard amount: net factor 0.90.
	c := companyWithIncomes(t, "Echo Industries", map[int]string{
		2018: "1000000000",
		2019: "1000000000",
		2020: "1000000000",
		2021: "4000000000",
		2022: "3000000000",
	})
	calc, err := c.CalculateFunding()
	if err != nil {
		t.Fatal(err)
	}
	wantSpecial := decimal.RequireFromString("774360000.00") // 860,400,000 * 0.90
	if !calc.SpecialFundableAmount.Equal(wantSpecial) {
		t.Fatalf("special = %v, want %v", calc.SpecialFundableAmount, wantSpecial)
	}
}

func TestStartsWithVowel(t *testing.T) {
	cases := map[string]bool{
		"Apple":  true,
		"echo":   true,
		"Ocean":  true,
		"uBuy":   true,
		"IBM":    true,
		"Zeta":   false,
		"3M":     false,
		"":       false,
		"Amazon": true,
	}
	for name, want := range cases {
		if got := startsWithVowel(name); got != want {
			t.Fatalf("startsWithVowel(%q) = %v, want %v", name, got, want)
		}
	}
}
