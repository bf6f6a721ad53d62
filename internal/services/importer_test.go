package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleberMargarida/fora-financial/internal/core"
	"github.com/cleberMargarida/fora-financial/internal/edgar"
)

type fakeStore struct {
	companies map[int64]*core.Company
	nextID    int64
	addErr    error
	existsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{companies: make(map[int64]*core.Company)}
}

func (s *fakeStore) ExistsByCIK(_ context.Context, cik int64) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.companies[cik]
	return ok, nil
}

func (s *fakeStore) Add(_ context.Context, c *core.Company) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.nextID++
	c.ID = s.nextID
	s.companies[c.CIK] = c
	return nil
}

type fakeFetcher struct {
	payloads map[int64]*edgar.CompanyConcept
	errs     map[int64]error
	calls    int
}

func (f *fakeFetcher) FetchNetIncome(_ context.Context, cik int64) (*edgar.CompanyConcept, error) {
	f.calls++
	if err, ok := f.errs[cik]; ok {
		return nil, err
	}
	return f.payloads[cik], nil
}

type fakePublisher struct {
	published []int64
	err       error
}

func (p *fakePublisher) PublishCompanyImported(_ context.Context, companyID, _ int64, _ string, _ int) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, companyID)
	return nil
}

func conceptFor(name string, years ...int) *edgar.CompanyConcept {
	facts := make([]edgar.Fact, 0, len(years))
	for _, y := range years {
		facts = append(facts, edgar.Fact{
			Val:   decimal.NewFromInt(1_000_000),
			Form:  "10-K",
			Frame: fmt.Sprintf("CY%d", y),
		})
	}
	return &edgar.CompanyConcept{
		EntityName: name,
		Units:      map[string][]edgar.Fact{"USD": facts},
	}
}

func TestImportService_Run(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{payloads: map[int64]*edgar.CompanyConcept{
		100: conceptFor("Alpha Inc.", 2020, 2021, 2022),
		200: conceptFor("Beta LLC", 2021),
	}}
	publisher := &fakePublisher{}

	svc := NewImportService(store, fetcher, publisher, []int64{100, 200, 300})
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, OutcomeImported, report.Results[0].Outcome)
	assert.Equal(t, "Alpha Inc.", report.Results[0].Name)
	assert.Equal(t, OutcomeImported, report.Results[1].Outcome)
	assert.Equal(t, OutcomeNoData, report.Results[2].Outcome)
	assert.NotEqual(t, report.RunID.String(), "00000000-0000-0000-0000-000000000000")

	alpha := store.companies[100]
	require.NotNil(t, alpha)
	assert.Len(t, alpha.Incomes(), 3)

	assert.Equal(t, []int64{1, 2}, publisher.published)
}

func TestImportService_RunSkipsExistingWithoutFetching(t *testing.T) {
	store := newFakeStore()
	existing, err := core.NewCompany(100, "Alpha Inc.")
	require.NoError(t, err)
	require.NoError(t, store.Add(context.Background(), existing))

	fetcher := &fakeFetcher{}
	svc := NewImportService(store, fetcher, nil, []int64{100})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeAlreadyExists, report.Results[0].Outcome)
	assert.Zero(t, fetcher.calls, "existing company must not trigger a fetch")
}

func TestImportService_RunContinuesPastFailures(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{
		payloads: map[int64]*edgar.CompanyConcept{200: conceptFor("Beta LLC", 2022)},
		errs:     map[int64]error{100: errors.New("registry unavailable")},
	}

	svc := NewImportService(store, fetcher, nil, []int64{100, 200})
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.Error(t, report.Results[0].Err)
	assert.Equal(t, OutcomeImported, report.Results[1].Outcome)
	assert.Equal(t, 1, report.Count(OutcomeImported))
	assert.Equal(t, 1, report.Count(OutcomeFailed))
}

func TestImportService_RunAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewImportService(newFakeStore(), &fakeFetcher{}, nil, []int64{100})
	_, err := svc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestImportService_RunRejectsConcurrentRuns(t *testing.T) {
	svc := NewImportService(newFakeStore(), &fakeFetcher{}, nil, nil)
	svc.running = true

	_, err := svc.Run(context.Background())
	require.ErrorIs(t, err, ErrImportBusy)
	assert.True(t, svc.IsRunning())
}

func TestImportService_PublishFailureDoesNotFailImport(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{payloads: map[int64]*edgar.CompanyConcept{
		100: conceptFor("Alpha Inc.", 2022),
	}}
	publisher := &fakePublisher{err: errors.New("broker down")}

	svc := NewImportService(store, fetcher, publisher, []int64{100})
	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeImported, report.Results[0].Outcome)
	require.NotNil(t, store.companies[100])
}
