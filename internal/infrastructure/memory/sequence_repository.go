package memory

import (
	"context"
	"sync"
)

type SequenceRepository struct {
	mu       sync.Mutex
	counters map[string]int
}

func NewSequenceRepository() *SequenceRepository {
	return &SequenceRepository{counters: make(map[string]int)}
}

func (r *SequenceRepository) Next(ctx context.Context, scope, date string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	key := scope + "|" + date
	r.counters[key]++
	return r.counters[key], nil
}
