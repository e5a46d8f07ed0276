package store

import (
	"sync"
	"time"

	"github.com/efreitasn/limitbook/internal/domain"
)

// TradeStore is a thread-safe in-memory tape of executions.
// Records are append-only and chronological.
type TradeStore struct {
	mu         sync.RWMutex
	executions []domain.Execution
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{}
}

// Append adds an execution to the tape.
func (s *TradeStore) Append(e domain.Execution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions = append(s.executions, e)
}

// Recent returns up to n most recent executions, newest last.
// Returns an empty slice when the tape is empty.
func (s *TradeStore) Recent(n int) []domain.Execution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.executions) {
		n = len(s.executions)
	}
	result := make([]domain.Execution, n)
	copy(result, s.executions[len(s.executions)-n:])
	return result
}

// Last returns the most recent execution, if any.
func (s *TradeStore) Last() (domain.Execution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.executions) == 0 {
		return domain.Execution{}, false
	}
	return s.executions[len(s.executions)-1], true
}

// Since returns all executions at or after cutoff, in chronological order.
func (s *TradeStore) Since(cutoff time.Time) []domain.Execution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Execution
	for _, e := range s.executions {
		if !e.ExecutedAt.Before(cutoff) {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of executions on the tape.
func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.executions)
}
