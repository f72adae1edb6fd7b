package queue

import (
	"sync"

	"github.com/go-scripts/journals/internal/types"
)

// Queue holds the category pairs still to be walked, in walk order
type Queue struct {
	pairs   []types.CategoryPair
	visited map[types.CategoryPair]bool
	mu      sync.Mutex
}

// New creates a Queue over the cross product of categories and tiers,
// category-major: every tier of the first category comes before the second.
func New(categories, tiers []int) *Queue {
	q := &Queue{
		pairs:   make([]types.CategoryPair, 0, len(categories)*len(tiers)),
		visited: make(map[types.CategoryPair]bool),
	}
	for _, c := range categories {
		for _, t := range tiers {
			q.Add(types.CategoryPair{RawCategory: c, RawTier: t})
		}
	}
	return q
}

// Add appends a pair unless it is already queued or was walked.
func (q *Queue) Add(p types.CategoryPair) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.visited[p] {
		return false
	}
	for _, queued := range q.pairs {
		if queued == p {
			return false
		}
	}

	q.pairs = append(q.pairs, p)
	return true
}

// Next returns the next pair and marks it as visited
func (q *Queue) Next() (types.CategoryPair, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pairs) == 0 {
		return types.CategoryPair{}, false
	}

	p := q.pairs[0]
	q.pairs = q.pairs[1:]
	q.visited[p] = true

	return p, true
}

// Len returns the number of pairs still queued
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pairs)
}

// VisitedCount returns the number of pairs handed out so far
func (q *Queue) VisitedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.visited)
}
