package crawler

import (
	"sync"

	"github.com/go-scripts/journals/internal/types"
)

// State is the ordered record sequence accumulated during a harvest.
type State struct {
	records []types.JournalRecord
	every   int
	mu      sync.Mutex
}

// NewState creates an empty State that asks for a checkpoint every `every`
// records.
func NewState(every int) *State {
	return &State{every: every}
}

// Append adds records in order and reports whether the running length
// crossed a multiple of the checkpoint interval.
func (s *State) Append(records ...types.JournalRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.records)
	s.records = append(s.records, records...)
	after := len(s.records)

	if s.every <= 0 || after == before {
		return false
	}
	return after/s.every > before/s.every
}

// Records returns a copy of the accumulated records.
func (s *State) Records() []types.JournalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.JournalRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of accumulated records.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
