package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cleberMargarida/fora-financial/internal/core"
	"github.com/cleberMargarida/fora-financial/internal/edgar"
)

// CompanyStore is the persistence surface the importer needs.
type CompanyStore interface {
	ExistsByCIK(ctx context.Context, cik int64) (bool, error)
	Add(ctx context.Context, c *core.Company) error
}

// DisclosureFetcher retrieves the raw concept payload for one company.
// A nil payload with a nil error means the registry has no data for the CIK.
type DisclosureFetcher interface {
	FetchNetIncome(ctx context.Context, cik int64) (*edgar.CompanyConcept, error)
}

// EventPublisher announces imported companies to downstream consumers.
type EventPublisher interface {
	PublishCompanyImported(ctx context.Context, companyID, cik int64, name string, incomeYears int) error
}

// ImportOutcome is the per-CIK result of an import run.
type ImportOutcome string

const (
	OutcomeImported      ImportOutcome = "imported"
	OutcomeAlreadyExists ImportOutcome = "already_exists"
	OutcomeNoData        ImportOutcome = "no_data"
	OutcomeFailed        ImportOutcome = "failed"
)

// ImportResult records what happened to a single CIK.
type ImportResult struct {
	CIK     int64
	Outcome ImportOutcome
	Name    string
	Err     error
}

// ImportReport summarizes one import run.
type ImportReport struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time
	Results  []ImportResult
}

// Count returns how many results ended with the given outcome.
func (r ImportReport) Count(outcome ImportOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// ImportService fetches disclosure data for a fixed set of companies and
// persists the ones not seen before. Runs are serialized: a second Run while
// one is in flight returns ErrImportBusy.
type ImportService struct {
	store     CompanyStore
	fetcher   DisclosureFetcher
	publisher EventPublisher
	ciks      []int64

	mu      sync.Mutex
	running bool
}

// ErrImportBusy is returned when an import run is already in progress.
var ErrImportBusy = fmt.Errorf("import already running")

func NewImportService(store CompanyStore, fetcher DisclosureFetcher, publisher EventPublisher, ciks []int64) *ImportService {
	return &ImportService{
		store:     store,
		fetcher:   fetcher,
		publisher: publisher,
		ciks:      ciks,
	}
}

// Run imports every configured CIK in order. A failure on one company is
// recorded and the run continues with the next. Context cancellation aborts
// the run between companies.
func (s *ImportService) Run(ctx context.Context) (ImportReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ImportReport{}, ErrImportBusy
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report := ImportReport{
		RunID:   uuid.New(),
		Started: time.Now(),
	}

	slog.InfoContext(ctx, "Import run started",
		"run_id", report.RunID, "companies", len(s.ciks))

	for _, cik := range s.ciks {
		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, fmt.Errorf("import run aborted: %w", err)
		}
		report.Results = append(report.Results, s.importOne(ctx, cik))
	}

	report.Finished = time.Now()
	slog.InfoContext(ctx, "Import run finished",
		"run_id", report.RunID,
		"imported", report.Count(OutcomeImported),
		"already_exists", report.Count(OutcomeAlreadyExists),
		"no_data", report.Count(OutcomeNoData),
		"failed", report.Count(OutcomeFailed),
		"duration", report.Finished.Sub(report.Started).String())

	return report, nil
}

// IsRunning reports whether an import run is currently in flight.
func (s *ImportService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ImportService) importOne(ctx context.Context, cik int64) ImportResult {
	exists, err := s.store.ExistsByCIK(ctx, cik)
	if err != nil {
		return ImportResult{CIK: cik, Outcome: OutcomeFailed, Err: fmt.Errorf("check existing company: %w", err)}
	}
	if exists {
		slog.DebugContext(ctx, "Company already imported, skipping", "cik", cik)
		return ImportResult{CIK: cik, Outcome: OutcomeAlreadyExists}
	}

	payload, err := s.fetcher.FetchNetIncome(ctx, cik)
	if err != nil {
		return ImportResult{CIK: cik, Outcome: OutcomeFailed, Err: fmt.Errorf("fetch disclosure data: %w", err)}
	}
	if payload == nil {
		slog.WarnContext(ctx, "No disclosure data for company", "cik", cik)
		return ImportResult{CIK: cik, Outcome: OutcomeNoData}
	}

	company, err := core.NewCompany(cik, payload.EntityName)
	if err != nil {
		return ImportResult{CIK: cik, Outcome: OutcomeFailed, Err: fmt.Errorf("build company: %w", err)}
	}
	for _, inc := range edgar.ExtractAnnualIncomes(payload) {
		company.AddIncome(inc)
	}

	if err := s.store.Add(ctx, company); err != nil {
		return ImportResult{CIK: cik, Outcome: OutcomeFailed, Err: fmt.Errorf("save company: %w", err)}
	}

	s.publishImported(ctx, company)

	return ImportResult{CIK: cik, Outcome: OutcomeImported, Name: company.Name}
}

func (s *ImportService) publishImported(ctx context.Context, c *core.Company) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCompanyImported(ctx, c.ID, c.CIK, c.Name, len(c.Incomes())); err != nil {
		// The company is saved either way, downstream just misses the event.
		slog.ErrorContext(ctx, "Failed to publish company imported event",
			"company_id", c.ID, "cik", c.CIK, "error", err)
	}
}
