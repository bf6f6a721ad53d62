package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cleberMargarida/fora-financial/internal/core"
)

// Store is an in-memory funding report, useful for local runs without
// Google credentials and for tests.
type Store struct {
	mu    sync.Mutex
	items []core.FundingCalculation
}

func New() *Store {
	return &Store{}
}

// Append stores the calculation and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, calc core.FundingCalculation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, calc)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []core.FundingCalculation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FundingCalculation(nil), s.items...)
}
