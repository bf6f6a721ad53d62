package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cleberMargarida/fora-financial/internal/core"
	"github.com/cleberMargarida/fora-financial/internal/services"
)

// companyResponse is the wire shape of one funding calculation. Amounts are
// emitted as plain JSON numbers with two decimal places.
type companyResponse struct {
	ID                     int64       `json:"id"`
	Name                   string      `json:"name"`
	StandardFundableAmount json.Number `json:"standardFundableAmount"`
	SpecialFundableAmount  json.Number `json:"specialFundableAmount"`
}

func toCompanyResponse(calc core.FundingCalculation) companyResponse {
	return companyResponse{
		ID:                     calc.CompanyID,
		Name:                   calc.CompanyName,
		StandardFundableAmount: json.Number(calc.StandardFundableAmount.StringFixed(2)),
		SpecialFundableAmount:  json.Number(calc.SpecialFundableAmount.StringFixed(2)),
	}
}

// handleListCompanies serves GET /companies?startsWith=<prefix>.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prefix := r.URL.Query().Get("startsWith")

	calcs, err := s.funding.List(r.Context(), prefix)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list companies",
			"prefix", prefix, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]companyResponse, 0, len(calcs))
	for _, calc := range calcs {
		out = append(out, toCompanyResponse(calc))
	}

	writeJSON(w, http.StatusOK, out)
}

type importResponse struct {
	RunID         string `json:"runId"`
	Imported      int    `json:"imported"`
	AlreadyExists int    `json:"alreadyExists"`
	NoData        int    `json:"noData"`
	Failed        int    `json:"failed"`
}

// handleImport serves POST /import. Runs are serialized, a concurrent
// request gets 409.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.importer == nil {
		http.Error(w, "import not configured", http.StatusServiceUnavailable)
		return
	}

	report, err := s.importer.Run(r.Context())
	if errors.Is(err, services.ErrImportBusy) {
		http.Error(w, "import already running", http.StatusConflict)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Import run failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		RunID:         report.RunID.String(),
		Imported:      report.Count(services.OutcomeImported),
		AlreadyExists: report.Count(services.OutcomeAlreadyExists),
		NoData:        report.Count(services.OutcomeNoData),
		Failed:        report.Count(services.OutcomeFailed),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
