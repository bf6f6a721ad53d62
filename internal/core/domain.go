package core

import (
	"errors"
	"sort"
	"strings"
)

const (
	MinIncomeYear = 1900
	MaxIncomeYear = 2100
)

var (
	ErrInvalidYear = errors.New("invalid income year")
	ErrInvalidCIK  = errors.New("cik must be positive")
	ErrEmptyName   = errors.New("empty company name")
)

// Income is a single (company, fiscal year, amount) fact. It is owned by
// exactly one Company and never shared between aggregates.
type Income struct {
	CompanyID int64
	Year      int
	Amount    Money
}

// NewIncome creates an income fact for a fiscal year between 1900 and 2100
// inclusive. Negative amounts are legal data.
func NewIncome(year int, amount Money) (Income, error) {
	if year < MinIncomeYear || year > MaxIncomeYear {
		return Income{}, ErrInvalidYear
	}
	return Income{Year: year, Amount: amount}, nil
}

// ReplaceAmount swaps the recorded amount. This is the only mutation an
// income supports after construction.
func (i *Income) ReplaceAmount(amount Money) {
	i.Amount = amount
}

// Company is the aggregate root. Incomes are keyed by fiscal year so the
// at-most-one-per-year invariant holds structurally.
type Company struct {
	// ID is assigned by persistence; zero until the aggregate is stored.
	ID int64
	// CIK is the external disclosure-system identifier, positive and unique.
	CIK  int64
	Name string

	incomes map[int]Income
}

// NewCompany creates a company with no incomes. CIK must be positive and the
// name non-blank.
func NewCompany(cik int64, name string) (*Company, error) {
	if cik <= 0 {
		return nil, ErrInvalidCIK
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	return &Company{
		CIK:     cik,
		Name:    name,
		incomes: make(map[int]Income),
	}, nil
}

// AddIncome records an income fact. An existing fact for the same year is
// replaced (last write wins).
func (c *Company) AddIncome(inc Income) {
	inc.CompanyID = c.ID
	c.incomes[inc.Year] = inc
}

// IncomeByYear returns the income recorded for a fiscal year, if any.
func (c *Company) IncomeByYear(year int) (Income, bool) {
	inc, ok := c.incomes[year]
	return inc, ok
}

// Incomes returns all income facts ordered by fiscal year.
func (c *Company) Incomes() []Income {
	out := make([]Income, 0, len(c.incomes))
	for _, inc := range c.incomes {
		out = append(out, inc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
