package edgar

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/cleberMargarida/fora-financial/internal/core"
)

const (
	annualReportForm = "10-K"
	frameLen         = 6
	framePrefix      = "CY"
)

// ExtractAnnualIncomes turns a company-concept payload into at most one
// income fact per calendar year.
//
// Only facts reported on a 10-K with a plain calendar-year frame ("CY2022")
// are considered. Within a year, the fact with the greatest absolute value
// wins; ties keep the first fact in payload order. The emitted income carries
// the selected fact's signed value; absolute value is used for selection only.
//
// A frame whose year suffix does not parse is a data error for that fact
// alone: it is logged and skipped, never aborting the extraction.
func ExtractAnnualIncomes(payload *CompanyConcept) []core.Income {
	if payload == nil {
		return nil
	}
	facts := payload.Units[string(core.USD)]
	if len(facts) == 0 {
		return nil
	}

	best := make(map[int]core.Income)
	var years []int

	for _, fact := range facts {
		if fact.Form != annualReportForm {
			continue
		}
		if len(fact.Frame) != frameLen || !strings.HasPrefix(fact.Frame, framePrefix) {
			continue
		}
		year, err := strconv.Atoi(fact.Frame[len(framePrefix):])
		if err != nil {
			slog.Warn("Skipping fact with unparseable calendar-year frame",
				"cik", payload.CIK, "frame", fact.Frame)
			continue
		}

		income, err := core.NewIncome(year, core.NewUSD(fact.Val))
		if err != nil {
			slog.Warn("Skipping fact with out-of-range year",
				"cik", payload.CIK, "frame", fact.Frame, "error", err)
			continue
		}

		current, seen := best[year]
		if !seen {
			best[year] = income
			years = append(years, year)
			continue
		}
		// Strictly greater absolute value replaces; ties keep the earlier fact.
		if fact.Val.Abs().GreaterThan(current.Amount.Amount.Abs()) {
			best[year] = income
		}
	}

	sort.Ints(years)
	out := make([]core.Income, 0, len(years))
	for _, year := range years {
		out = append(out, best[year])
	}
	return out
}
