package report

import (
	"context"

	"github.com/cleberMargarida/fora-financial/internal/core"
)

// FundingWriter appends a funding calculation row to an external report.
type FundingWriter interface {
	Append(ctx context.Context, calc core.FundingCalculation) (rowRef string, err error)
}
